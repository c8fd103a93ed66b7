package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/murmurapp/murmur/internal/db"
	"github.com/murmurapp/murmur/internal/feed"
	"github.com/murmurapp/murmur/internal/models"
	"github.com/murmurapp/murmur/pkg/config"
	"github.com/murmurapp/murmur/pkg/logging"
	"github.com/murmurapp/murmur/pkg/telemetry"
)

// Stored engagement scores decay with age but are only rewritten on
// mutation, so quiet posts keep stale scores. This job walks recent posts
// in batches and rewrites each score from current counters, either once
// (-once) or on an interval.
func main() {
	interval := flag.Duration("interval", 10*time.Minute, "rescore interval")
	window := flag.Duration("window", 7*24*time.Hour, "rescore posts created within this window")
	batchSize := flag.Int("batch", 500, "posts per batch")
	qps := flag.Float64("qps", 200, "score updates per second")
	once := flag.Bool("once", false, "run a single pass and exit")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logging.InitLogger(&cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logging.GetLogger().Sync()

	logger := logging.GetLogger()
	logger.Info("Starting Murmur Rescore Job")

	// Initialize telemetry
	telemetryShutdown, err := telemetry.Init(&cfg.Telemetry)
	if err != nil {
		logger.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer telemetryShutdown()

	database, err := db.New(&cfg.Database, cfg.Logging.Level)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info("Shutting down rescore job...")
		cancel()
	}()

	job := &rescoreJob{
		posts:     db.NewPostRepository(db.NewRepository(database.DB)),
		limiter:   rate.NewLimiter(rate.Limit(*qps), 1),
		logger:    logger,
		window:    *window,
		batchSize: *batchSize,
	}

	if err := job.runPass(ctx); err != nil && ctx.Err() == nil {
		logger.Fatal("Rescore pass failed", zap.Error(err))
	}
	if *once {
		logger.Info("Rescore job exited")
		return
	}

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info("Rescore job exited")
			return
		case <-ticker.C:
			if err := job.runPass(ctx); err != nil && ctx.Err() == nil {
				logger.Error("Rescore pass failed", zap.Error(err))
			}
		}
	}
}

type rescoreJob struct {
	posts     *db.PostRepository
	limiter   *rate.Limiter
	logger    *zap.Logger
	window    time.Duration
	batchSize int
}

// runPass walks the window newest-first in ID batches and rewrites scores
func (j *rescoreJob) runPass(ctx context.Context) error {
	start := time.Now()
	since := start.UTC().Add(-j.window)
	var updated, afterID int64

	for {
		var batch []*models.Post
		q := j.posts.DB().WithContext(ctx).
			Where("visibility = ? AND created_at >= ?", models.VisibilityPublic, since)
		if afterID > 0 {
			q = q.Where("id > ?", afterID)
		}
		if err := q.Order("id ASC").Limit(j.batchSize).Find(&batch).Error; err != nil {
			return err
		}
		if len(batch) == 0 {
			break
		}
		afterID = batch[len(batch)-1].ID

		if err := j.posts.LoadReactionTotals(ctx, batch); err != nil {
			return err
		}

		now := time.Now().UTC()
		for _, post := range batch {
			if err := j.limiter.Wait(ctx); err != nil {
				return err
			}
			if err := j.posts.UpdateScore(ctx, post.ID, feed.Score(post, now)); err != nil {
				return err
			}
			updated++
		}
	}

	j.logger.Info("Rescore pass complete",
		zap.Int64("updated", updated),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}
