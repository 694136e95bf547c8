package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lanbix/interview-backend/internal/models"
	"github.com/lanbix/interview-backend/internal/utils"
)

type LiveInterviewRepository interface {
	Create(ctx context.Context, li *models.LiveInterview) error
	GetByInterviewID(ctx context.Context, interviewID string) (*models.LiveInterview, error)

	SetJoined(ctx context.Context, interviewID string, role models.Role, at time.Time) error
	SetLeft(ctx context.Context, interviewID string, role models.Role, at time.Time) error

	// TransitionToActive fires scheduled->active iff both required roles
	// have a join timestamp while status is still scheduled. Returns true
	// when this call performed the transition.
	TransitionToActive(ctx context.Context, interviewID string, at time.Time) (bool, error)
	// TransitionToCompleted fires ->completed iff both required roles
	// have a leave timestamp and the interview is not already terminal.
	// duration < 0 means "unknown" (startedAt absent) and is not written.
	TransitionToCompleted(ctx context.Context, interviewID string, at time.Time, duration int) (bool, error)
	Cancel(ctx context.Context, interviewID string) (bool, error)

	PushQuestion(ctx context.Context, interviewID string, q models.Question) error
	SetResponse(ctx context.Context, interviewID, questionID, response string, responseTime float64, aiSuggestion string, score float64) error
	PushAIResponse(ctx context.Context, interviewID string, r models.AIResponse) error
	PushSpeechLog(ctx context.Context, interviewID string, log models.SpeechLog) error
	UpdatePerformance(ctx context.Context, interviewID string, p models.Performance) error
	SetRecording(ctx context.Context, interviewID, kind, url string) error

	// End fires ->completed with the interviewer's closing notes iff the
	// interview is not already terminal. Returns true when this call
	// performed the transition.
	End(ctx context.Context, interviewID string, at time.Time, duration int, notes, feedback, verdict string) (bool, error)
	History(ctx context.Context, userID string, role models.Role, status models.InterviewStatus, limit, page int) ([]models.LiveInterview, int64, error)
	CompleteAllActive(ctx context.Context, at time.Time) error
}

type liveInterviewRepo struct {
	col *mongo.Collection
}

func NewLiveInterviewRepo(db *mongo.Database) LiveInterviewRepository {
	return &liveInterviewRepo{col: db.Collection("live_interviews")}
}

func (r *liveInterviewRepo) Create(ctx context.Context, li *models.LiveInterview) error {
	now := time.Now().UTC()
	if li.CreatedAt.IsZero() {
		li.CreatedAt = now
	}
	li.UpdatedAt = now
	_, err := r.col.InsertOne(ctx, li)
	return err
}

func (r *liveInterviewRepo) GetByInterviewID(ctx context.Context, interviewID string) (*models.LiveInterview, error) {
	var li models.LiveInterview
	err := r.col.FindOne(ctx, bson.M{"interview_id": interviewID}).Decode(&li)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &li, nil
}

func roleField(role models.Role) string {
	switch role {
	case models.RoleCandidate:
		return "candidate"
	case models.RoleInterviewer:
		return "interviewer"
	case models.RoleObserver:
		return ""
	}
	return ""
}

func (r *liveInterviewRepo) SetJoined(ctx context.Context, interviewID string, role models.Role, at time.Time) error {
	return r.setParticipantTime(ctx, interviewID, role, "joined_at", at)
}

func (r *liveInterviewRepo) SetLeft(ctx context.Context, interviewID string, role models.Role, at time.Time) error {
	return r.setParticipantTime(ctx, interviewID, role, "left_at", at)
}

func (r *liveInterviewRepo) setParticipantTime(ctx context.Context, interviewID string, role models.Role, field string, at time.Time) error {
	prefix := roleField(role)
	if prefix == "" {
		// observers leave no mark on the embedded summaries
		return nil
	}
	res, err := r.col.UpdateOne(ctx,
		bson.M{"interview_id": interviewID},
		bson.M{"$set": bson.M{
			prefix + "." + field: at.UTC(),
			"updated_at":         time.Now().UTC(),
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func (r *liveInterviewRepo) TransitionToActive(ctx context.Context, interviewID string, at time.Time) (bool, error) {
	// The filter is the precondition; two racing join-checks cannot both
	// match, so the transition fires exactly once.
	res, err := r.col.UpdateOne(ctx,
		bson.M{
			"interview_id":          interviewID,
			"status":                models.InterviewScheduled,
			"candidate.joined_at":   bson.M{"$ne": nil},
			"interviewer.joined_at": bson.M{"$ne": nil},
		},
		bson.M{"$set": bson.M{
			"status":     models.InterviewActive,
			"started_at": at.UTC(),
			"updated_at": time.Now().UTC(),
		}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

func (r *liveInterviewRepo) TransitionToCompleted(ctx context.Context, interviewID string, at time.Time, duration int) (bool, error) {
	set := bson.M{
		"status":     models.InterviewCompleted,
		"ended_at":   at.UTC(),
		"updated_at": time.Now().UTC(),
	}
	if duration >= 0 {
		set["duration"] = duration
	}

	res, err := r.col.UpdateOne(ctx,
		bson.M{
			"interview_id": interviewID,
			"status": bson.M{"$nin": bson.A{
				models.InterviewCompleted, models.InterviewCancelled,
			}},
			"candidate.left_at":   bson.M{"$ne": nil},
			"interviewer.left_at": bson.M{"$ne": nil},
		},
		bson.M{"$set": set},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

func (r *liveInterviewRepo) Cancel(ctx context.Context, interviewID string) (bool, error) {
	res, err := r.col.UpdateOne(ctx,
		bson.M{
			"interview_id": interviewID,
			"status": bson.M{"$nin": bson.A{
				models.InterviewCompleted, models.InterviewCancelled,
			}},
		},
		bson.M{"$set": bson.M{
			"status":     models.InterviewCancelled,
			"updated_at": time.Now().UTC(),
		}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

func (r *liveInterviewRepo) PushQuestion(ctx context.Context, interviewID string, q models.Question) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"interview_id": interviewID},
		bson.M{
			"$push": bson.M{"questions": q},
			"$inc":  bson.M{"performance.total_questions": 1},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func (r *liveInterviewRepo) SetResponse(ctx context.Context, interviewID, questionID, response string, responseTime float64, aiSuggestion string, score float64) error {
	set := bson.M{
		"questions.$.candidate_response": response,
		"questions.$.response_time":      responseTime,
		"updated_at":                     time.Now().UTC(),
	}
	if aiSuggestion != "" {
		set["questions.$.ai_suggestion"] = aiSuggestion
		set["questions.$.score"] = score
	}

	res, err := r.col.UpdateOne(ctx,
		bson.M{"interview_id": interviewID, "questions.question_id": questionID},
		bson.M{"$set": set},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func (r *liveInterviewRepo) PushAIResponse(ctx context.Context, interviewID string, ar models.AIResponse) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"interview_id": interviewID},
		bson.M{
			"$push": bson.M{"ai_assistance.responses": ar},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		},
	)
	return err
}

func (r *liveInterviewRepo) PushSpeechLog(ctx context.Context, interviewID string, log models.SpeechLog) error {
	// $slice keeps only the most recent entries
	res, err := r.col.UpdateOne(ctx,
		bson.M{"interview_id": interviewID},
		bson.M{
			"$push": bson.M{"speech_logs": bson.M{
				"$each":  bson.A{log},
				"$slice": -models.MaxSpeechLogs,
			}},
			"$set": bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func (r *liveInterviewRepo) UpdatePerformance(ctx context.Context, interviewID string, p models.Performance) error {
	set := bson.M{
		"performance.answered_questions":    p.AnsweredQuestions,
		"performance.average_response_time": p.AverageResponseTime,
		"performance.average_score":         p.AverageScore,
		"updated_at":                        time.Now().UTC(),
	}
	if len(p.Strengths) > 0 || len(p.Weaknesses) > 0 || p.OverallRating > 0 {
		set["performance.strengths"] = p.Strengths
		set["performance.weaknesses"] = p.Weaknesses
		set["performance.overall_rating"] = p.OverallRating
	}
	_, err := r.col.UpdateOne(ctx, bson.M{"interview_id": interviewID}, bson.M{"$set": set})
	return err
}

func (r *liveInterviewRepo) SetRecording(ctx context.Context, interviewID, kind, url string) error {
	field := "screen_recording"
	if kind == "audio" {
		field = "audio_recording"
	}
	res, err := r.col.UpdateOne(ctx,
		bson.M{"interview_id": interviewID},
		bson.M{"$set": bson.M{
			field + ".enabled": true,
			field + ".url":     url,
			"updated_at":       time.Now().UTC(),
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func (r *liveInterviewRepo) End(ctx context.Context, interviewID string, at time.Time, duration int, notes, feedback, verdict string) (bool, error) {
	set := bson.M{
		"status":             models.InterviewCompleted,
		"ended_at":           at.UTC(),
		"interviewer_notes":  notes,
		"candidate_feedback": feedback,
		"updated_at":         time.Now().UTC(),
	}
	if duration >= 0 {
		set["duration"] = duration
	}
	if verdict != "" {
		set["final_verdict"] = verdict
	}
	res, err := r.col.UpdateOne(ctx,
		bson.M{
			"interview_id": interviewID,
			"status": bson.M{"$nin": bson.A{
				models.InterviewCompleted, models.InterviewCancelled,
			}},
		},
		bson.M{"$set": set},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

func (r *liveInterviewRepo) History(ctx context.Context, userID string, role models.Role, status models.InterviewStatus, limit, page int) ([]models.LiveInterview, int64, error) {
	var filter bson.M
	switch role {
	case models.RoleCandidate:
		filter = bson.M{"candidate.user_id": userID}
	case models.RoleInterviewer:
		filter = bson.M{"interviewer.user_id": userID}
	default:
		filter = bson.M{"$or": bson.A{
			bson.M{"candidate.user_id": userID},
			bson.M{"interviewer.user_id": userID},
		}}
	}
	if status != "" {
		filter["status"] = status
	}

	if limit <= 0 {
		limit = 10
	}
	if page <= 0 {
		page = 1
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64((page - 1) * limit)).
		SetProjection(bson.M{"ai_assistance.responses": 0})

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	var out []models.LiveInterview
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *liveInterviewRepo) CompleteAllActive(ctx context.Context, at time.Time) error {
	_, err := r.col.UpdateMany(ctx,
		bson.M{"status": models.InterviewActive},
		bson.M{"$set": bson.M{
			"status":   models.InterviewCompleted,
			"ended_at": at.UTC(),
		}},
	)
	return err
}
