package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/lanbix/interview-backend/internal/models"
	"github.com/lanbix/interview-backend/internal/utils"
)

type RoomRepository interface {
	Create(ctx context.Context, r *models.Room) error
	GetByRoomID(ctx context.Context, roomID string) (*models.Room, error)
	AddParticipant(ctx context.Context, roomID string, participantID primitive.ObjectID) error
	// TransitionStatus performs a compare-and-set: the status moves to
	// `to` only if it currently is one of `from`. Returns true when this
	// call performed the move.
	TransitionStatus(ctx context.Context, roomID string, from []models.RoomStatus, to models.RoomStatus) (bool, error)
}

type roomRepo struct {
	col *mongo.Collection
}

func NewRoomRepo(db *mongo.Database) RoomRepository {
	return &roomRepo{col: db.Collection("rooms")}
}

func (r *roomRepo) Create(ctx context.Context, room *models.Room) error {
	if room.CreatedAt.IsZero() {
		room.CreatedAt = time.Now().UTC()
	}
	_, err := r.col.InsertOne(ctx, room)
	return err
}

func (r *roomRepo) GetByRoomID(ctx context.Context, roomID string) (*models.Room, error) {
	var room models.Room
	err := r.col.FindOne(ctx, bson.M{"room_id": roomID}).Decode(&room)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *roomRepo) AddParticipant(ctx context.Context, roomID string, participantID primitive.ObjectID) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"room_id": roomID},
		bson.M{"$addToSet": bson.M{"participants": participantID}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func (r *roomRepo) TransitionStatus(ctx context.Context, roomID string, from []models.RoomStatus, to models.RoomStatus) (bool, error) {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"room_id": roomID, "status": bson.M{"$in": from}},
		bson.M{"$set": bson.M{"status": to}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}
