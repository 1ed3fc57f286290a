package db

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// createIndexes declares every index once at startup, right after the
// collections are bound.
func createIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	collectionsAndIndexes := map[*mongo.Collection][]mongo.IndexModel{
		UserCollection: {
			{Keys: bson.D{{Key: "userid", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		EventsCollection: {
			{Keys: bson.D{{Key: "eventid", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "organizerid", Value: 1}}},
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
		},
		TicketsCollection: {
			{Keys: bson.D{{Key: "eventid", Value: 1}, {Key: "ticketid", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		InsightsCollection: {
			{Keys: bson.D{{Key: "userid", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		UserDataCollection: {
			{Keys: bson.D{{Key: "userid", Value: 1}, {Key: "entity_type", Value: 1}}},
		},
	}

	for collection, indexes := range collectionsAndIndexes {
		if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
			return err
		}
		logrus.Infof("Indexes created for collection %s", collection.Name())
	}
	return nil
}
