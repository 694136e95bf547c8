package config

import (
	"context"
	"errors"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var MongoClient *mongo.Client

// InitMongo connects to MongoDB with a bounded number of retries so a
// service can come up while the database is still starting.
func InitMongo() error {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		return errors.New("MONGO_URI environment variable is not set")
	}

	clientOpts := options.Client().ApplyURI(uri).
		SetServerSelectionTimeout(20 * time.Second).
		SetConnectTimeout(15 * time.Second).
		SetRetryWrites(true).
		SetMaxPoolSize(10).
		SetMinPoolSize(1)

	var lastErr error
	for attempt := 0; attempt < 5; attempt++ {
		if attempt > 0 {
			time.Sleep(5 * time.Second)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		client, err := mongo.Connect(ctx, clientOpts)
		if err == nil {
			err = client.Ping(ctx, nil)
			if err == nil {
				cancel()
				MongoClient = client
				return nil
			}
			_ = client.Disconnect(ctx)
		}
		cancel()
		lastErr = err
	}
	return lastErr
}

// MongoDatabase returns the platform database handle.
func MongoDatabase() *mongo.Database {
	name := os.Getenv("MONGO_DB")
	if name == "" {
		name = "interview"
	}
	return MongoClient.Database(name)
}
