package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"sofa/agi"
	"sofa/db"
	"sofa/globals"
	"sofa/mq"
	"sofa/structs"
	"sofa/tz"
	"sofa/userdata"
	"sofa/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Gen is the text-generation collaborator. Swappable in tests.
var Gen agi.Generator = agi.NewClient()

type eventPayload struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Date        string           `json:"date"` // YYYY-MM-DD
	Time        string           `json:"time"` // HH:MM
	Timezone    string           `json:"timezone"`
	Location    structs.Location `json:"location"`
	Capacity    int              `json:"capacity"`
	Type        string           `json:"type"`
	Tags        []string         `json:"tags"`
	Status      string           `json:"status"`
}

// parseEventForm reads the "event" JSON field of a multipart form.
func parseEventForm(r *http.Request) (*eventPayload, error) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		return nil, fmt.Errorf("unable to parse form: %v", err)
	}

	eventJSON := r.FormValue("event")
	if eventJSON == "" {
		return nil, fmt.Errorf("missing event data")
	}

	var payload eventPayload
	if err := json.Unmarshal([]byte(eventJSON), &payload); err != nil {
		return nil, fmt.Errorf("invalid JSON format: %v", err)
	}
	return &payload, nil
}

// regenerateAnalysis refreshes the stored AI analysis. Generator
// failures only cost the analysis text, never the request.
func regenerateAnalysis(event *structs.Event) {
	location := []string{event.Location.Address, event.Location.City, event.Location.Country}
	text, err := Gen.GenerateAnalysis(event.Title, event.Description, location, event.Tags)
	if err != nil {
		logrus.Errorf("analysis generation failed for event %s: %v", event.EventID, err)
		return
	}
	event.AIAnalysis = text
}

func CreateEvent(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	requestingUserID, ok := r.Context().Value(globals.UserIDKey).(string)
	if !ok {
		http.Error(w, "Invalid user", http.StatusUnauthorized)
		return
	}

	payload, err := parseEventForm(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// The organizer must resolve to an existing user
	err = db.UserCollection.FindOne(r.Context(), bson.M{"userid": requestingUserID}).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			http.Error(w, "Organizer not found", http.StatusNotFound)
			return
		}
		logrus.Errorf("organizer lookup failed: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	event := structs.Event{
		EventID:     utils.GenerateID(14),
		Title:       payload.Title,
		Description: payload.Description,
		Timezone:    payload.Timezone,
		Location:    payload.Location,
		Capacity:    payload.Capacity,
		Type:        payload.Type,
		Tags:        utils.NormalizeTags(payload.Tags),
		Status:      payload.Status,
		OrganizerID: requestingUserID,
		Attendees:   []string{},
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if event.Status == "" {
		event.Status = structs.StatusDraft
	}

	if payload.Date != "" {
		instant, err := tz.ToUTC(payload.Date, payload.Time, payload.Timezone)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		event.Date = instant
	}

	// Drafts bypass validation entirely
	if event.Status != structs.StatusDraft {
		if result := Validate(event); !result.IsValid {
			utils.SendJSONResponse(w, http.StatusBadRequest, result)
			return
		}
	}

	bannerImage, err := saveBannerImage(r, event.EventID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	event.BannerImage = bannerImage

	if event.Title != "" || event.Description != "" || event.Location != (structs.Location{}) || len(event.Tags) > 0 {
		regenerateAnalysis(&event)
	}

	if _, err := db.EventsCollection.InsertOne(r.Context(), event); err != nil {
		logrus.Errorf("error inserting event: %v", err)
		http.Error(w, "Error saving event", http.StatusInternalServerError)
		return
	}

	userdata.SetUserData("event-created", event.EventID, requestingUserID)

	m := mq.Index{EntityType: "event", EntityId: event.EventID, Action: "POST"}
	go mq.Emit("event-created", m)

	utils.SendJSONResponse(w, http.StatusCreated, event)
}

func EditEvent(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	eventID := ps.ByName("eventid")
	if eventID == "" {
		http.Error(w, "Missing event ID", http.StatusBadRequest)
		return
	}

	requestingUserID, ok := r.Context().Value(globals.UserIDKey).(string)
	if !ok {
		http.Error(w, "Invalid user", http.StatusUnauthorized)
		return
	}

	payload, err := parseEventForm(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var existing structs.Event
	err = db.EventsCollection.FindOne(r.Context(), bson.M{"eventid": eventID}).Decode(&existing)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			http.Error(w, "Event not found", http.StatusNotFound)
			return
		}
		logrus.Errorf("error fetching event %s: %v", eventID, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	// Only the organizer may mutate the event
	if existing.OrganizerID != requestingUserID {
		logrus.Warnf("user %s attempted to edit event %s they do not own", requestingUserID, eventID)
		http.Error(w, "Unauthorized to edit this event", http.StatusForbidden)
		return
	}

	merged, updateFields, analysisDirty, err := applyPatch(existing, payload)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if payload.Status != "" && !CanTransition(existing.Status, payload.Status) {
		http.Error(w, fmt.Sprintf("Cannot move event from %s to %s", existing.Status, payload.Status), http.StatusConflict)
		return
	}

	// Validation gates on the status the event will end up in
	if merged.Status != structs.StatusDraft {
		if result := Validate(merged); !result.IsValid {
			utils.SendJSONResponse(w, http.StatusBadRequest, result)
			return
		}
	}

	bannerImage, err := saveBannerImage(r, eventID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if bannerImage != "" {
		updateFields["banner_image"] = bannerImage
	}

	if analysisDirty {
		regenerateAnalysis(&merged)
		updateFields["ai_analysis"] = merged.AIAnalysis
	}

	updateFields["updated_at"] = time.Now()

	result, err := db.EventsCollection.UpdateOne(
		r.Context(),
		bson.M{"eventid": eventID},
		bson.M{"$set": updateFields},
	)
	if err != nil {
		logrus.Errorf("error updating event %s: %v", eventID, err)
		http.Error(w, "Error updating event", http.StatusInternalServerError)
		return
	}
	if result.MatchedCount == 0 {
		http.Error(w, "Event not found", http.StatusNotFound)
		return
	}

	var updated structs.Event
	if err := db.EventsCollection.FindOne(r.Context(), bson.M{"eventid": eventID}).Decode(&updated); err != nil {
		logrus.Errorf("error retrieving updated event %s: %v", eventID, err)
		http.Error(w, "Error retrieving updated event", http.StatusInternalServerError)
		return
	}

	m := mq.Index{EntityType: "event", EntityId: eventID, Action: "PUT"}
	go mq.Emit("event-updated", m)

	utils.SendJSONResponse(w, http.StatusOK, updated)
}

// applyPatch merges non-empty patch fields into a copy of the stored
// event and builds the matching $set document. The third return
// reports whether any analysis-relevant field changed.
func applyPatch(existing structs.Event, payload *eventPayload) (structs.Event, bson.M, bool, error) {
	merged := existing
	updateFields := bson.M{}
	analysisDirty := false

	if payload.Title != "" {
		merged.Title = payload.Title
		updateFields["title"] = payload.Title
		analysisDirty = true
	}
	if payload.Description != "" {
		merged.Description = payload.Description
		updateFields["description"] = payload.Description
		analysisDirty = true
	}
	if payload.Timezone != "" {
		merged.Timezone = payload.Timezone
		updateFields["timezone"] = payload.Timezone
	}
	if payload.Date != "" {
		instant, err := tz.ToUTC(payload.Date, payload.Time, merged.Timezone)
		if err != nil {
			return merged, nil, false, err
		}
		merged.Date = instant
		updateFields["date"] = instant
	}
	if payload.Location != (structs.Location{}) {
		merged.Location = payload.Location
		updateFields["location"] = payload.Location
		analysisDirty = true
	}
	if payload.Capacity > 0 {
		merged.Capacity = payload.Capacity
		updateFields["capacity"] = payload.Capacity
	}
	if payload.Type != "" {
		merged.Type = payload.Type
		updateFields["type"] = payload.Type
	}
	if len(payload.Tags) > 0 {
		tags := utils.NormalizeTags(payload.Tags)
		merged.Tags = tags
		updateFields["tags"] = tags
		analysisDirty = true
	}
	if payload.Status != "" {
		merged.Status = payload.Status
		updateFields["status"] = payload.Status
	}

	return merged, updateFields, analysisDirty, nil
}

func CancelEvent(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	eventID := ps.ByName("eventid")

	requestingUserID, ok := r.Context().Value(globals.UserIDKey).(string)
	if !ok {
		http.Error(w, "Invalid user", http.StatusUnauthorized)
		return
	}

	var event structs.Event
	err := db.EventsCollection.FindOne(r.Context(), bson.M{"eventid": eventID}).Decode(&event)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			http.Error(w, "Event not found", http.StatusNotFound)
			return
		}
		logrus.Errorf("error fetching event %s: %v", eventID, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if event.OrganizerID != requestingUserID {
		http.Error(w, "Unauthorized to cancel this event", http.StatusForbidden)
		return
	}

	if !CanTransition(event.Status, structs.StatusCancelled) {
		http.Error(w, fmt.Sprintf("Cannot cancel a %s event", event.Status), http.StatusConflict)
		return
	}

	_, err = db.EventsCollection.UpdateOne(
		r.Context(),
		bson.M{"eventid": eventID},
		bson.M{"$set": bson.M{"status": structs.StatusCancelled, "updated_at": time.Now()}},
	)
	if err != nil {
		logrus.Errorf("error cancelling event %s: %v", eventID, err)
		http.Error(w, "Error cancelling event", http.StatusInternalServerError)
		return
	}

	m := mq.Index{EntityType: "event", EntityId: eventID, Action: "PUT"}
	go mq.Emit("event-cancelled", m)

	utils.SendJSONResponse(w, http.StatusOK, map[string]string{"message": "Event cancelled successfully"})
}

func GetEvent(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	eventID := ps.ByName("eventid")

	var event structs.Event
	err := db.EventsCollection.FindOne(r.Context(), bson.M{"eventid": eventID}).Decode(&event)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			http.Error(w, "Event not found", http.StatusNotFound)
			return
		}
		logrus.Errorf("error fetching event %s: %v", eventID, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	utils.SendJSONResponse(w, http.StatusOK, event)
}

func GetEvents(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit < 1 {
		limit = 10
	}

	skip := int64((page - 1) * limit)
	int64Limit := int64(limit)
	opts := &options.FindOptions{
		Skip:  &skip,
		Limit: &int64Limit,
		Sort:  bson.D{{Key: "created_at", Value: -1}},
	}

	filter := bson.M{}
	if status := r.URL.Query().Get("status"); status != "" {
		filter["status"] = status
	}

	cursor, err := db.EventsCollection.Find(r.Context(), filter, opts)
	if err != nil {
		logrus.Errorf("error fetching events: %v", err)
		http.Error(w, "Failed to fetch events", http.StatusInternalServerError)
		return
	}
	defer cursor.Close(context.TODO())

	var events []structs.Event
	if err := cursor.All(r.Context(), &events); err != nil {
		http.Error(w, "Failed to decode events", http.StatusInternalServerError)
		return
	}
	if events == nil {
		events = []structs.Event{}
	}

	utils.SendJSONResponse(w, http.StatusOK, events)
}

func GetEventsCount(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	count, err := db.EventsCollection.CountDocuments(r.Context(), bson.M{})
	if err != nil {
		logrus.Errorf("error counting events: %v", err)
		http.Error(w, "Failed to count events", http.StatusInternalServerError)
		return
	}

	utils.SendJSONResponse(w, http.StatusOK, map[string]int64{"count": count})
}
