package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	UserCollection     *mongo.Collection
	EventsCollection   *mongo.Collection
	TicketsCollection  *mongo.Collection
	InsightsCollection *mongo.Collection
	UserDataCollection *mongo.Collection
	Client             *mongo.Client
)

// Connect opens the mongo client exactly once at process start and
// binds the named collections. Reused for the process lifetime;
// Disconnect is called from main on shutdown.
func Connect(ctx context.Context, uri string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return err
	}

	Client = client
	database := client.Database("sofadb")
	UserCollection = database.Collection("users")
	EventsCollection = database.Collection("events")
	TicketsCollection = database.Collection("ticks")
	InsightsCollection = database.Collection("insights")
	UserDataCollection = database.Collection("userdata")

	return createIndexes(ctx)
}

func Disconnect(ctx context.Context) error {
	if Client == nil {
		return nil
	}
	return Client.Disconnect(ctx)
}
