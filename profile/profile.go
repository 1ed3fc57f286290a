package profile

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"sofa/db"
	"sofa/globals"
	"sofa/rdx"
	"sofa/structs"
	"sofa/utils"

	"github.com/disintegration/imaging"
	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

const userpicUploadPath = "./static/userpic"

// Profile caching (Redis)

func cacheProfile(userID, profileJSON string) error {
	return rdx.RdxSet("profile:"+userID, profileJSON)
}

func getCachedProfile(userID string) (string, error) {
	return rdx.RdxGet("profile:" + userID)
}

func invalidateCachedProfile(userID string) error {
	_, err := rdx.RdxDel("profile:" + userID)
	return err
}

func GetProfile(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, ok := r.Context().Value(globals.UserIDKey).(string)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	// Check Redis cache
	cached, err := getCachedProfile(userID)
	if err == nil && cached != "" {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(cached))
		return
	}

	var user structs.User
	err = db.UserCollection.FindOne(r.Context(), bson.M{"userid": userID}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			http.Error(w, "User not found", http.StatusNotFound)
			return
		}
		logrus.Errorf("error fetching profile %s: %v", userID, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	user.Password = "" // Do not return the password

	profileJSON, _ := json.Marshal(user)
	_ = cacheProfile(userID, string(profileJSON))

	w.Header().Set("Content-Type", "application/json")
	w.Write(profileJSON)
}

func GetUserProfile(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	username := ps.ByName("username")

	var user structs.User
	err := db.UserCollection.FindOne(r.Context(), bson.M{"username": username}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			http.Error(w, "User not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	response := structs.UserProfileResponse{
		UserID:         user.UserID,
		Username:       user.Username,
		Email:          user.Email,
		Role:           user.Role,
		Bio:            user.Bio,
		ProfilePicture: user.ProfilePicture,
	}
	utils.SendJSONResponse(w, http.StatusOK, response)
}

func EditProfile(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, ok := r.Context().Value(globals.UserIDKey).(string)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "Unable to parse form", http.StatusBadRequest)
		return
	}

	_ = invalidateCachedProfile(userID)

	update := bson.M{}
	if username := r.FormValue("username"); username != "" {
		update["username"] = username
		_ = rdx.RdxHset("users", userID, username)
	}
	if bio := r.FormValue("bio"); bio != "" {
		update["bio"] = bio
	}
	if password := r.FormValue("password"); password != "" {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			http.Error(w, "Failed to hash password", http.StatusInternalServerError)
			return
		}
		update["password"] = string(hashedPassword)
	}

	if len(update) == 0 {
		http.Error(w, "No changes provided", http.StatusBadRequest)
		return
	}
	update["updated_at"] = time.Now()

	_, err := db.UserCollection.UpdateOne(r.Context(), bson.M{"userid": userID}, bson.M{"$set": update})
	if err != nil {
		logrus.Errorf("error updating profile %s: %v", userID, err)
		http.Error(w, "Failed to update profile", http.StatusInternalServerError)
		return
	}

	respondWithProfile(w, r, userID)
}

func EditProfilePic(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, ok := r.Context().Value(globals.UserIDKey).(string)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "Unable to parse form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("avatar")
	if err != nil {
		http.Error(w, "Avatar file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if !utils.ValidateImageFileType(w, header) {
		return
	}

	img, err := imaging.Decode(file)
	if err != nil {
		http.Error(w, "Failed to decode avatar image", http.StatusBadRequest)
		return
	}

	if err := os.MkdirAll(userpicUploadPath, 0755); err != nil {
		http.Error(w, "Failed to store avatar", http.StatusInternalServerError)
		return
	}

	fileName := userID + ".jpg"
	avatar := imaging.Fill(img, 256, 256, imaging.Center, imaging.Lanczos)
	if err := imaging.Save(avatar, filepath.Join(userpicUploadPath, fileName)); err != nil {
		http.Error(w, "Failed to store avatar", http.StatusInternalServerError)
		return
	}

	_ = invalidateCachedProfile(userID)

	_, err = db.UserCollection.UpdateOne(
		r.Context(),
		bson.M{"userid": userID},
		bson.M{"$set": bson.M{"profile_picture": fileName, "updated_at": time.Now()}},
	)
	if err != nil {
		logrus.Errorf("error updating avatar for %s: %v", userID, err)
		http.Error(w, "Failed to update profile picture", http.StatusInternalServerError)
		return
	}

	respondWithProfile(w, r, userID)
}

func respondWithProfile(w http.ResponseWriter, r *http.Request, userID string) {
	var user structs.User
	err := db.UserCollection.FindOne(r.Context(), bson.M{"userid": userID}).Decode(&user)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	user.Password = ""
	utils.SendJSONResponse(w, http.StatusOK, user)
}
