package config

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func EnsureMongoIndexes() error {
	if MongoClient == nil {
		return errors.New("MongoClient is nil; call InitMongo() first")
	}
	db := MongoDatabase()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// participants: single live record per (room, user) pair
	participants := db.Collection("participants")
	_, err := participants.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "room_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().
				SetName("uniq_room_user").
				SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "room_id", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("by_room_status"),
		},
	})
	if err != nil {
		return err
	}

	rooms := db.Collection("rooms")
	_, err = rooms.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "room_id", Value: 1}},
			Options: options.Index().
				SetName("uniq_room_id").
				SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "scheduled_time", Value: 1}},
			Options: options.Index().SetName("by_scheduled"),
		},
	})
	if err != nil {
		return err
	}

	live := db.Collection("live_interviews")
	_, err = live.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "interview_id", Value: 1}},
			Options: options.Index().
				SetName("uniq_interview_id").
				SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "candidate.user_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("by_candidate_created"),
		},
		{
			Keys:    bson.D{{Key: "interviewer.user_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("by_interviewer_created"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}},
			Options: options.Index().SetName("by_status"),
		},
	})
	if err != nil {
		return err
	}

	mock := db.Collection("mock_interviews")
	_, err = mock.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "start_time", Value: -1}},
			Options: options.Index().SetName("by_user_started"),
		},
	})
	return err
}
