package usecase

import (
	"context"
	"log/slog"
	"time"

	"CredScore/internal/domain"
	"CredScore/internal/model"
	"CredScore/internal/ports"
)

const feedbackBatchLimit = 500

// Retrainer periodically rebuilds the model from the seed set plus
// accumulated feedback labels and publishes it atomically. Training is a
// single-writer operation; readers never observe a partial model.
type Retrainer struct {
	driver       ports.Scheduler
	trainer      *model.Trainer
	feedback     ports.FeedbackRepository
	seed         []domain.LabeledExample
	orchestrator *Orchestrator
	logger       *slog.Logger
}

// NewRetrainer wires the scheduler driver with the training use case.
func NewRetrainer(driver ports.Scheduler, trainer *model.Trainer, feedback ports.FeedbackRepository,
	seed []domain.LabeledExample, orchestrator *Orchestrator, logger *slog.Logger) *Retrainer {
	return &Retrainer{
		driver:       driver,
		trainer:      trainer,
		feedback:     feedback,
		seed:         seed,
		orchestrator: orchestrator,
		logger:       logger,
	}
}

// Start registers the retraining job with the provided scheduler.
func (r *Retrainer) Start(ctx context.Context) error {
	if r.driver == nil {
		return nil
	}

	job := func(trigger time.Time) {
		r.RetrainOnce(ctx)
	}
	return r.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (r *Retrainer) Stop(ctx context.Context) error {
	if r.driver == nil {
		return nil
	}
	return r.driver.Stop(ctx)
}

// RetrainOnce trains a fresh model and publishes it. A failed run leaves
// the previous model serving.
func (r *Retrainer) RetrainOnce(ctx context.Context) {
	examples := append([]domain.LabeledExample(nil), r.seed...)

	if r.feedback != nil {
		extra, err := r.feedback.ListExamples(ctx, feedbackBatchLimit)
		if err != nil {
			r.log(slog.LevelWarn, "feedback load failed, retraining on seed only", "error", err)
		} else {
			examples = append(examples, extra...)
		}
	}

	trained, err := r.trainer.Train(ctx, examples)
	if err != nil {
		r.log(slog.LevelError, "retraining failed, keeping current model", "error", err)
		return
	}

	r.orchestrator.PublishModel(trained)
	r.log(slog.LevelInfo, "model retrained and published", "examples", len(examples))
}

func (r *Retrainer) log(level slog.Level, msg string, args ...any) {
	if r.logger != nil {
		r.logger.Log(context.Background(), level, msg, args...)
	}
}
