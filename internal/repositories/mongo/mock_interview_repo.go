package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lanbix/interview-backend/internal/models"
	"github.com/lanbix/interview-backend/internal/utils"
)

type MockInterviewRepository interface {
	Create(ctx context.Context, mi *models.MockInterview) error
	GetByID(ctx context.Context, id string) (*models.MockInterview, error)
	SetAnswer(ctx context.Context, id string, index int, ans models.MockAnswer, isNew bool) error
	Complete(ctx context.Context, id string, endTime time.Time) error
	SetEvaluation(ctx context.Context, id string, score float64, feedback string, perQuestion []models.QuestionFeedback) error
	ListByUser(ctx context.Context, userID string, limit int) ([]models.MockInterview, error)
}

type mockInterviewRepo struct {
	col *mongo.Collection
}

func NewMockInterviewRepo(db *mongo.Database) MockInterviewRepository {
	return &mockInterviewRepo{col: db.Collection("mock_interviews")}
}

func (r *mockInterviewRepo) Create(ctx context.Context, mi *models.MockInterview) error {
	if mi.ID.IsZero() {
		mi.ID = primitive.NewObjectID()
	}
	if mi.StartTime.IsZero() {
		mi.StartTime = time.Now().UTC()
	}
	_, err := r.col.InsertOne(ctx, mi)
	return err
}

func (r *mockInterviewRepo) GetByID(ctx context.Context, id string) (*models.MockInterview, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, utils.ErrNotFound
	}

	var mi models.MockInterview
	err = r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&mi)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &mi, nil
}

func (r *mockInterviewRepo) SetAnswer(ctx context.Context, id string, index int, ans models.MockAnswer, isNew bool) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return utils.ErrNotFound
	}

	var update bson.M
	if isNew {
		update = bson.M{"$push": bson.M{"answers": ans}}
	} else {
		update = bson.M{"$set": bson.M{fmt.Sprintf("answers.%d", index): ans}}
	}

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func (r *mockInterviewRepo) Complete(ctx context.Context, id string, endTime time.Time) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return utils.ErrNotFound
	}
	_, err = r.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"status":   models.MockCompleted,
		"end_time": endTime.UTC(),
	}})
	return err
}

func (r *mockInterviewRepo) SetEvaluation(ctx context.Context, id string, score float64, feedback string, perQuestion []models.QuestionFeedback) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return utils.ErrNotFound
	}
	_, err = r.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"status":            models.MockEvaluated,
		"overall_score":     score,
		"overall_feedback":  feedback,
		"question_feedback": perQuestion,
	}})
	return err
}

func (r *mockInterviewRepo) ListByUser(ctx context.Context, userID string, limit int) ([]models.MockInterview, error) {
	if limit <= 0 {
		limit = 20
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "start_time", Value: -1}}).
		SetLimit(int64(limit))

	cur, err := r.col.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.MockInterview
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
