package insights

import (
	"context"
	"encoding/json"
	"errors"

	"sofa/agi"
	"sofa/db"
	"sofa/rdx"
	"sofa/structs"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mongoStore backs the insight cache with the insights collection and
// a redis mirror in front of it.
type mongoStore struct{}

func newMongoStore() *mongoStore {
	return &mongoStore{}
}

func (s *mongoStore) OwnedEvents(ctx context.Context, userID string) ([]agi.EventProjection, error) {
	opts := options.Find().SetProjection(bson.M{
		"eventid":    1,
		"attendees":  1,
		"updated_at": 1,
	})

	cursor, err := db.EventsCollection.Find(ctx, bson.M{"organizerid": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []structs.Event
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}

	projections := make([]agi.EventProjection, 0, len(events))
	for _, e := range events {
		projections = append(projections, agi.EventProjection{
			EventID:       e.EventID,
			AttendeeCount: len(e.Attendees),
			UpdatedAt:     e.UpdatedAt,
		})
	}
	return projections, nil
}

func (s *mongoStore) Entry(ctx context.Context, userID string) (*structs.InsightEntry, error) {
	// Redis holds the hot copy; a miss falls through to mongo
	if cached, err := rdx.RdxGet("insights:" + userID); err == nil && cached != "" {
		var entry structs.InsightEntry
		if err := json.Unmarshal([]byte(cached), &entry); err == nil {
			return &entry, nil
		}
	}

	var entry structs.InsightEntry
	err := db.InsightsCollection.FindOne(ctx, bson.M{"userid": userID}).Decode(&entry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

func (s *mongoStore) Upsert(ctx context.Context, entry structs.InsightEntry) error {
	opts := options.Replace().SetUpsert(true)
	_, err := db.InsightsCollection.ReplaceOne(ctx, bson.M{"userid": entry.UserID}, entry, opts)
	if err != nil {
		return err
	}

	if entryJSON, err := json.Marshal(entry); err == nil {
		if err := rdx.RdxSetWithTTL("insights:"+entry.UserID, string(entryJSON), cacheTTL); err != nil {
			logrus.Warnf("redis insight cache write failed for user %s: %v", entry.UserID, err)
		}
	}
	return nil
}
