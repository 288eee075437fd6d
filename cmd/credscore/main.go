package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"CredScore/internal/app"
	"CredScore/internal/config"
	"CredScore/internal/feature"
	"CredScore/internal/logging"
	"CredScore/internal/model"
	"CredScore/internal/rules"
	"CredScore/internal/usecase"
)

var version = "v0.1.0-dev"

func main() {
	_ = godotenv.Load()

	cliApp := &cli.App{
		Name:    "credscore",
		Version: version,
		Usage:   "hybrid URL credibility scoring",
		Commands: []*cli.Command{
			serveCmd(),
			scoreCmd(),
			evaluateCmd(),
			trainCmd(),
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the scoring HTTP server",
		Action: func(c *cli.Context) error {
			cfg := config.Load()
			logger := logging.New(cfg.Logging.Level)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			application, err := app.New(ctx, cfg, logger)
			if err != nil {
				return err
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("server starting", "port", cfg.Server.Port)
				errCh <- application.Run(ctx)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return application.Shutdown(shutdownCtx)
		},
	}
}

func scoreCmd() *cli.Command {
	return &cli.Command{
		Name:  "score",
		Usage: "score one URL through the full hybrid path",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Usage: "URL to score", Required: true},
			&cli.Float64Flag{Name: "alpha", Usage: "model weight in [0,1]", Value: -1},
			&cli.BoolFlag{Name: "fetch-content", Usage: "download the page for content features"},
			&cli.BoolFlag{Name: "json-out", Usage: "print the rating as JSON"},
		},
		Action: func(c *cli.Context) error {
			cfg := config.Load()
			logger := logging.New(cfg.Logging.Level)

			alpha := c.Float64("alpha")
			if alpha < 0 || alpha > 1 {
				alpha = cfg.Scoring.DefaultAlpha
			}

			ctx := context.Background()
			application, err := app.New(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer application.Shutdown(ctx)

			rating := application.Orchestrator().Score(ctx, usecase.ScoreRequest{
				URL:          c.String("url"),
				Alpha:        alpha,
				FetchContent: c.Bool("fetch-content"),
				Deadline:     time.Duration(cfg.Scoring.DefaultDeadlineSeconds * float64(time.Second)),
			})

			if c.Bool("json-out") {
				return printJSON(rating)
			}
			fmt.Printf("%s\nscore=%.3f stars=%d\n%s\n", rating.URL, rating.Score, rating.Stars, rating.Explanation)
			return nil
		},
	}
}

func evaluateCmd() *cli.Command {
	return &cli.Command{
		Name:  "evaluate",
		Usage: "score one URL with the rule engine only",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Usage: "URL to evaluate", Required: true},
			&cli.BoolFlag{Name: "json-out", Usage: "print the result as JSON"},
		},
		Action: func(c *cli.Context) error {
			cfg := config.Load()
			scored := rules.NewEvaluator(cfg.Rules).Evaluate(c.String("url"))

			if c.Bool("json-out") {
				return printJSON(scored)
			}
			fmt.Printf("%s\nscore=%.2f\n%s\n", scored.URL, scored.Score, scored.Explanation)
			return nil
		},
	}
}

func trainCmd() *cli.Command {
	return &cli.Command{
		Name:  "train",
		Usage: "train the rich network on the seed set and write artifacts",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Usage: "artifact directory", Value: ""},
			&cli.BoolFlag{Name: "fetch-content", Usage: "download pages for content features"},
		},
		Action: func(c *cli.Context) error {
			cfg := config.Load()
			logger := logging.New(cfg.Logging.Level)

			out := c.String("out")
			if out == "" {
				out = cfg.Model.ArtifactDir
			}

			evaluator := rules.NewEvaluator(cfg.Rules)
			extractor := feature.NewExtractor(evaluator, nil, logger.With("component", "extractor"))
			trainer := model.NewTrainer(extractor, cfg.Model.DesiredFolds, cfg.Model.RandomSeed,
				c.Bool("fetch-content"), logger.With("component", "trainer"))

			scorer, err := trainer.TrainRich(context.Background(), app.SeedExamples(cfg))
			if err != nil {
				return fmt.Errorf("train rich model: %w", err)
			}
			if err := model.SaveArtifacts(out, scorer); err != nil {
				return fmt.Errorf("save artifacts: %w", err)
			}

			logger.Info("artifacts written", "dir", out)
			return nil
		},
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
