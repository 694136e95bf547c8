package workers

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/lanbix/interview-backend/internal/services"
)

// AnalysisWorkerPool consumes completed-interview events from a Redis
// stream and runs the AI performance analysis in the background, so
// leave handling never blocks on the AI provider chain. Results are
// published per interview for any listening client.
type AnalysisWorkerPool struct {
	Redis      *redis.Client
	Interviews services.LiveInterviewService
	NumWorkers int

	Logger *logrus.Logger

	Stream         string
	Group          string
	ConsumerPrefix string
}

const DefaultAnalysisStream = "interview:completed"

// EnqueueAnalysis publishes a completed interview id onto the stream.
func EnqueueAnalysis(ctx context.Context, rdb *redis.Client, stream, interviewID string) error {
	if stream == "" {
		stream = DefaultAnalysisStream
	}
	return rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]any{
			"interview_id": interviewID,
			"ts_unix":      strconv.FormatInt(time.Now().UTC().Unix(), 10),
		},
	}).Err()
}

func (p *AnalysisWorkerPool) Start(ctx context.Context) error {
	if p.Redis == nil || p.Interviews == nil {
		return errors.New("AnalysisWorkerPool missing dependency: Redis/Interviews must be set")
	}
	if p.Stream == "" {
		p.Stream = DefaultAnalysisStream
	}
	if p.Group == "" {
		p.Group = "analysis-workers"
	}
	if p.ConsumerPrefix == "" {
		p.ConsumerPrefix = "c"
	}
	if p.NumWorkers <= 0 {
		p.NumWorkers = 2
	}
	if p.Logger == nil {
		p.Logger = logrus.New()
	}

	_ = p.Redis.XGroupCreateMkStream(ctx, p.Stream, p.Group, "0").Err() // ignore BUSYGROUP

	for i := 0; i < p.NumWorkers; i++ {
		consumer := p.ConsumerPrefix + "-" + strconv.Itoa(i+1)
		go p.runConsumer(ctx, consumer)
	}
	return nil
}

func (p *AnalysisWorkerPool) runConsumer(ctx context.Context, consumer string) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		res, err := p.Redis.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    p.Group,
			Consumer: consumer,
			Streams:  []string{p.Stream, ">"},
			Count:    10,
			Block:    5 * time.Second,
		}).Result()

		if err != nil {
			if err == redis.Nil {
				continue
			}
			time.Sleep(500 * time.Millisecond)
			continue
		}

		for _, stream := range res {
			for _, msg := range stream.Messages {
				p.handleMsg(ctx, msg)
				_ = p.Redis.XAck(ctx, p.Stream, p.Group, msg.ID).Err()
			}
		}
	}
}

func (p *AnalysisWorkerPool) handleMsg(ctx context.Context, msg redis.XMessage) {
	interviewID, _ := msg.Values["interview_id"].(string)
	if interviewID == "" {
		return
	}

	log := p.Logger.WithFields(logrus.Fields{
		"redis_id":     msg.ID,
		"interview_id": interviewID,
	})

	analysis, err := p.Interviews.AnalyzePerformance(ctx, interviewID)
	if err != nil {
		// nothing answered or AI out of reach; the interview record
		// keeps its running aggregates
		log.WithError(err).Warn("post-interview analysis skipped")
		return
	}

	payload, _ := json.Marshal(map[string]any{
		"type":         "analysis_complete",
		"interview_id": interviewID,
		"analysis":     analysis,
	})
	_ = p.Redis.Publish(ctx, "interview:"+interviewID+":analysis", string(payload)).Err()

	log.WithField("score", analysis.Score).Info("post-interview analysis stored")
}
