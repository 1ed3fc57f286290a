package userdata

import (
	"context"
	"net/http"
	"time"

	"sofa/db"
	"sofa/structs"
	"sofa/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
)

var validEntityTypes = map[string]bool{
	"event-created":   true,
	"event-attending": true,
	"ticket":          true,
}

func IsValidEntityType(entityType string) bool {
	return validEntityTypes[entityType]
}

// SetUserData records a back-reference (eventsCreated, eventsAttending,
// purchased tickets) for a user.
func SetUserData(entityType, entityID, userID string) {
	content := structs.UserData{
		EntityType: entityType,
		EntityID:   entityID,
		UserID:     userID,
		CreatedAt:  time.Now().Format(time.RFC3339),
	}
	_, err := db.UserDataCollection.InsertOne(context.TODO(), content)
	if err != nil {
		logrus.Errorf("error inserting user data: %v", err)
	}
}

func DelUserData(entityType, entityID, userID string) {
	_, err := db.UserDataCollection.DeleteOne(context.TODO(), bson.M{
		"entity_id":   entityID,
		"entity_type": entityType,
		"userid":      userID,
	})
	if err != nil {
		logrus.Errorf("error deleting user data: %v", err)
	}
}

func GetUserProfileData(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID := ps.ByName("userid")

	entityType := r.URL.Query().Get("entity_type")
	if entityType == "" {
		http.Error(w, "Entity type is required", http.StatusBadRequest)
		return
	}
	if !IsValidEntityType(entityType) {
		http.Error(w, "Invalid entity type", http.StatusBadRequest)
		return
	}

	filter := bson.M{"entity_type": entityType, "userid": userID}
	cursor, err := db.UserDataCollection.Find(r.Context(), filter)
	if err != nil {
		logrus.Errorf("error fetching user data: %v", err)
		http.Error(w, "Failed to fetch user data", http.StatusInternalServerError)
		return
	}
	defer cursor.Close(context.TODO())

	var results []structs.UserData
	if err := cursor.All(r.Context(), &results); err != nil {
		http.Error(w, "Failed to decode user data", http.StatusInternalServerError)
		return
	}
	if len(results) == 0 {
		results = []structs.UserData{}
	}

	utils.SendJSONResponse(w, http.StatusOK, results)
}
