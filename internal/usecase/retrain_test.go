package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"CredScore/internal/domain"
	"CredScore/internal/feature"
	"CredScore/internal/model"
)

type syncScheduler struct {
	started bool
	stopped bool
}

func (s *syncScheduler) Start(ctx context.Context, job func(time.Time)) error {
	s.started = true
	job(time.Now())
	return nil
}

func (s *syncScheduler) Stop(ctx context.Context) error {
	s.stopped = true
	return nil
}

type memoryFeedback struct {
	examples []domain.LabeledExample
	listErr  error
}

func (m *memoryFeedback) Append(ctx context.Context, example domain.LabeledExample) error {
	m.examples = append(m.examples, example)
	return nil
}

func (m *memoryFeedback) ListExamples(ctx context.Context, limit int) ([]domain.LabeledExample, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.examples, nil
}

func emptyOrchestrator() (*Orchestrator, *model.Trainer) {
	ev := testRules()
	extractor := feature.NewExtractor(ev, nil, nil)
	o := NewOrchestrator(OrchestratorDeps{
		Rules:     ev,
		Extractor: extractor,
		Blender:   NewBlender(ev, extractor, nil),
	})
	return o, model.NewTrainer(extractor, 3, 42, false, nil)
}

func TestRetrainPublishesModel(t *testing.T) {
	t.Parallel()

	o, trainer := emptyOrchestrator()
	if o.Model() != nil {
		t.Fatal("expected no model before retraining")
	}

	driver := &syncScheduler{}
	feedback := &memoryFeedback{examples: []domain.LabeledExample{
		{URL: "https://scam.example.com/miracle?utm_source=spam", Label: 0},
	}}
	r := NewRetrainer(driver, trainer, feedback, seedSet(), o, nil)

	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if !driver.started {
		t.Fatal("scheduler never started")
	}
	if o.Model() == nil {
		t.Fatal("retraining did not publish a model")
	}

	if err := r.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if !driver.stopped {
		t.Fatal("scheduler never stopped")
	}
}

func TestRetrainKeepsOldModelOnFailure(t *testing.T) {
	t.Parallel()

	o, trainer := emptyOrchestrator()
	trained, err := trainer.Train(context.Background(), seedSet())
	if err != nil {
		t.Fatalf("train: %v", err)
	}
	o.PublishModel(trained)

	// An empty example set makes training fail.
	r := NewRetrainer(nil, trainer, nil, nil, o, nil)
	r.RetrainOnce(context.Background())

	if o.Model() != trained {
		t.Fatal("failed retraining must keep the previous model")
	}
}

func TestRetrainSurvivesFeedbackError(t *testing.T) {
	t.Parallel()

	o, trainer := emptyOrchestrator()
	feedback := &memoryFeedback{listErr: errors.New("connection refused")}
	r := NewRetrainer(nil, trainer, feedback, seedSet(), o, nil)

	r.RetrainOnce(context.Background())
	if o.Model() == nil {
		t.Fatal("expected seed-only retraining to publish a model")
	}
}
