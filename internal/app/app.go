package app

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"CredScore/internal/config"
	"CredScore/internal/domain"
	"CredScore/internal/feature"
	"CredScore/internal/infrastructure/content"
	"CredScore/internal/infrastructure/httpapi"
	"CredScore/internal/infrastructure/scheduler"
	"CredScore/internal/infrastructure/storage"
	"CredScore/internal/logging"
	"CredScore/internal/model"
	"CredScore/internal/ports"
	"CredScore/internal/rules"
	"CredScore/internal/usecase"
)

// Application wires configs to the scoring stack and owns its lifecycle.
type Application struct {
	cfg          config.Config
	logger       *slog.Logger
	orchestrator *usecase.Orchestrator
	retrainer    *usecase.Retrainer
	server       *httpapi.Server
	db           *sql.DB
}

// New builds the full serving stack: rules, extractor, seed-trained model,
// optional rich artifacts, feedback storage and the HTTP surface.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	evaluator := rules.NewEvaluator(cfg.Rules)
	fetcher := content.NewFetcher(cfg.Fetch, nil)
	extractor := feature.NewExtractor(evaluator, fetcher, baseLogger.With("component", "extractor"))
	blender := usecase.NewBlender(evaluator, extractor, baseLogger.With("component", "blender"))
	trainer := model.NewTrainer(extractor, cfg.Model.DesiredFolds, cfg.Model.RandomSeed, false,
		baseLogger.With("component", "trainer"))

	rich, err := model.LoadArtifacts(cfg.Model.ArtifactDir)
	if err != nil {
		baseLogger.Warn("ignoring unreadable model artifacts", "dir", cfg.Model.ArtifactDir, "error", err)
		rich = nil
	}
	if rich != nil {
		baseLogger.Info("rich scoring artifacts loaded", "dir", cfg.Model.ArtifactDir)
	}

	orchestrator := usecase.NewOrchestrator(usecase.OrchestratorDeps{
		Rules:     evaluator,
		Extractor: extractor,
		Blender:   blender,
		Rich:      rich,
		Logger:    baseLogger.With("component", "orchestrator"),
	})

	seed := SeedExamples(cfg)
	trained, err := trainer.Train(ctx, seed)
	if err != nil {
		baseLogger.Warn("seed training failed, serving rules only", "error", err)
	} else {
		orchestrator.PublishModel(trained)
	}

	a := &Application{
		cfg:          cfg,
		logger:       baseLogger,
		orchestrator: orchestrator,
	}

	var feedback *storage.PostgresFeedback
	if cfg.Database.DSN != "" {
		db, err := storage.Open(ctx, cfg.Database.DSN)
		if err != nil {
			baseLogger.Warn("feedback storage unavailable", "error", err)
		} else {
			a.db = db
			feedback = storage.NewPostgresFeedback(db)
		}
	}

	if feedback != nil && cfg.Model.RetrainEvery() > 0 {
		a.retrainer = usecase.NewRetrainer(
			scheduler.NewIntervalScheduler(cfg.Model.RetrainEvery()),
			trainer, feedback, seed, orchestrator,
			baseLogger.With("component", "retrainer"),
		)
	}

	handler := httpapi.NewHandler(orchestrator, feedbackOrNil(feedback),
		cfg.Scoring.DefaultAlpha,
		time.Duration(cfg.Scoring.DefaultDeadlineSeconds*float64(time.Second)),
		baseLogger.With("component", "http"))
	a.server = httpapi.NewServer(handler, cfg.Server.Port)

	return a, nil
}

// Orchestrator exposes the scoring entrypoint for CLI use.
func (a *Application) Orchestrator() *usecase.Orchestrator {
	return a.orchestrator
}

// Run starts the retrainer and blocks serving HTTP until the listener fails.
func (a *Application) Run(ctx context.Context) error {
	if a.retrainer != nil {
		if err := a.retrainer.Start(ctx); err != nil {
			a.logger.Warn("retrainer did not start", "error", err)
		}
	}
	return a.server.Start()
}

// Shutdown stops the HTTP server, the retrainer and the DB pool.
func (a *Application) Shutdown(ctx context.Context) error {
	var first error
	if a.retrainer != nil {
		if err := a.retrainer.Stop(ctx); err != nil && first == nil {
			first = err
		}
	}
	if err := a.server.Shutdown(ctx); err != nil && first == nil {
		first = err
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// SeedExamples converts the configured seed set into labeled examples.
func SeedExamples(cfg config.Config) []domain.LabeledExample {
	out := make([]domain.LabeledExample, 0, len(cfg.Seed))
	for _, s := range cfg.Seed {
		out = append(out, domain.LabeledExample{URL: s.URL, Label: s.Label})
	}
	return out
}

// feedbackOrNil avoids handing a typed nil pointer to an interface field.
func feedbackOrNil(repo *storage.PostgresFeedback) ports.FeedbackRepository {
	if repo == nil {
		return nil
	}
	return repo
}
