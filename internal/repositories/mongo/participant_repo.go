package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lanbix/interview-backend/internal/models"
	"github.com/lanbix/interview-backend/internal/utils"
)

type ParticipantRepository interface {
	// UpsertJoin writes the single live record for (roomID, userID),
	// creating it on first join and updating it in place on rejoin.
	UpsertJoin(ctx context.Context, roomID, userID, name string, role models.Role, at time.Time) (*models.Participant, error)
	UpsertLeave(ctx context.Context, roomID, userID string, status models.ParticipantStatus, at time.Time) (*models.Participant, error)
	FindJoined(ctx context.Context, roomID, userID string) (*models.Participant, error)
	ListActive(ctx context.Context, roomID string) ([]models.Participant, error)
	ListJoined(ctx context.Context, roomID string) ([]models.Participant, error)
	ListByRoom(ctx context.Context, roomID string) ([]models.Participant, error)
	MarkAllLeft(ctx context.Context, at time.Time) error
}

type participantRepo struct {
	col *mongo.Collection
}

func NewParticipantRepo(db *mongo.Database) ParticipantRepository {
	return &participantRepo{col: db.Collection("participants")}
}

func (r *participantRepo) UpsertJoin(ctx context.Context, roomID, userID, name string, role models.Role, at time.Time) (*models.Participant, error) {
	// Single atomic upsert; concurrent joins from the same user resolve
	// last-write-wins on the one document.
	filter := bson.M{"room_id": roomID, "user_id": userID}
	update := bson.M{
		"$set": bson.M{
			"name":        name,
			"role":        role,
			"status":      models.ParticipantJoined,
			"joined_at":   at.UTC(),
			"last_active": at.UTC(),
		},
		"$setOnInsert": bson.M{"_id": primitive.NewObjectID()},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var p models.Participant
	if err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *participantRepo) UpsertLeave(ctx context.Context, roomID, userID string, status models.ParticipantStatus, at time.Time) (*models.Participant, error) {
	filter := bson.M{"room_id": roomID, "user_id": userID}
	update := bson.M{
		"$set": bson.M{
			"status":      status,
			"left_at":     at.UTC(),
			"last_active": at.UTC(),
		},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var p models.Participant
	err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *participantRepo) FindJoined(ctx context.Context, roomID, userID string) (*models.Participant, error) {
	var p models.Participant
	err := r.col.FindOne(ctx, bson.M{
		"room_id": roomID,
		"user_id": userID,
		"status":  models.ParticipantJoined,
	}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *participantRepo) ListActive(ctx context.Context, roomID string) ([]models.Participant, error) {
	return r.list(ctx, bson.M{
		"room_id": roomID,
		"status":  bson.M{"$in": bson.A{models.ParticipantJoined, models.ParticipantPending}},
	})
}

func (r *participantRepo) ListJoined(ctx context.Context, roomID string) ([]models.Participant, error) {
	return r.list(ctx, bson.M{"room_id": roomID, "status": models.ParticipantJoined})
}

func (r *participantRepo) ListByRoom(ctx context.Context, roomID string) ([]models.Participant, error) {
	return r.list(ctx, bson.M{"room_id": roomID})
}

func (r *participantRepo) list(ctx context.Context, filter bson.M) ([]models.Participant, error) {
	cur, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Participant
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkAllLeft is the shutdown sweep: every still-joined record is closed
// out so no participant looks live after a restart.
func (r *participantRepo) MarkAllLeft(ctx context.Context, at time.Time) error {
	_, err := r.col.UpdateMany(ctx,
		bson.M{"status": models.ParticipantJoined},
		bson.M{"$set": bson.M{"status": models.ParticipantLeft, "left_at": at.UTC()}},
	)
	return err
}
