// RoomFit: furnish a room for a client and hear what they think.
//
// The desktop studio is the default command. The same session model is
// also reachable over HTTP (serve) and from scripted layouts (describe,
// evaluate, export).
//
// Build:
//   go build -o roomfit ./cmd/roomfit
//
// Using fyne-cross (recommended for proper packaging):
//   go install github.com/fyne-io/fyne-cross@latest
//   fyne-cross windows -arch=amd64
//   fyne-cross darwin  -arch=amd64,arm64

package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/piwi3910/RoomFit/internal/engine"
	"github.com/piwi3910/RoomFit/internal/evaluation"
	"github.com/piwi3910/RoomFit/internal/export"
	"github.com/piwi3910/RoomFit/internal/importer"
	"github.com/piwi3910/RoomFit/internal/llm"
	"github.com/piwi3910/RoomFit/internal/logger"
	"github.com/piwi3910/RoomFit/internal/model"
	"github.com/piwi3910/RoomFit/internal/project"
	"github.com/piwi3910/RoomFit/internal/studio"
)

// env is the state shared by every command once flags are parsed.
type env struct {
	configPath string
	logLevel   string

	config model.AppConfig
	log    *zap.Logger
}

func main() {
	e := &env{}

	rootCmd := &cobra.Command{
		Use:          "roomfit",
		Short:        "Grid room designer with model-backed client feedback",
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return e.load()
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			return runGUI(e)
		},
	}
	rootCmd.PersistentFlags().StringVar(&e.configPath, "config", project.DefaultConfigPath(), "path to the config file")
	rootCmd.PersistentFlags().StringVar(&e.logLevel, "log-level", "", "override the configured log level")

	rootCmd.AddCommand(runCmd(e))
	rootCmd.AddCommand(serveCmd(e))
	rootCmd.AddCommand(describeCmd(e))
	rootCmd.AddCommand(evaluateCmd(e))
	rootCmd.AddCommand(exportCmd(e))
	rootCmd.AddCommand(catalogCmd(e))

	err := rootCmd.Execute()
	if e.log != nil {
		_ = e.log.Sync()
	}
	if err != nil {
		os.Exit(1)
	}
}

func (e *env) load() error {
	cfg, err := project.LoadAppConfig(e.configPath)
	if err != nil {
		return err
	}
	if e.logLevel != "" {
		cfg.LogLevel = e.logLevel
	}
	log, err := logger.New(cfg.LogLevel, cfg.LogFormat, "roomfit")
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	e.config = cfg
	e.log = log
	return nil
}

// catalog loads the configured catalog, logging non-fatal row warnings.
func (e *env) catalog() (*model.Catalog, error) {
	cat, warnings, err := importer.LoadCatalog(e.config.Catalog)
	for _, w := range warnings {
		e.log.Warn("catalog", zap.String("warning", w))
	}
	return cat, err
}

// service resolves the model backend and brief, falling back to the
// offline stub.
func (e *env) service(ctx context.Context) (llm.Service, llm.Brief) {
	primary, err := llm.NewOllama(e.config.OllamaHost, e.config.EmbeddingModel, e.config.ChatModel, e.log)
	if err != nil {
		e.log.Warn("ollama client unavailable", zap.Error(err))
		return llm.Resolve(ctx, nil, e.config.PlaceholderDims, e.log)
	}
	return llm.Resolve(ctx, primary, e.config.PlaceholderDims, e.log)
}

func (e *env) rng() *rand.Rand {
	seed := e.config.DoorSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// newStudio builds a fresh design studio: empty room, random door, and a
// worker bound to the resolved model service.
func (e *env) newStudio(ctx context.Context) (*studio.Studio, error) {
	cat, err := e.catalog()
	if err != nil {
		return nil, err
	}
	room, err := e.config.Room()
	if err != nil {
		return nil, err
	}
	rng := e.rng()
	svc, brief := e.service(ctx)

	s := engine.NewSession(room, cat, engine.RandomDoor(rng, room))
	worker := evaluation.NewWorker(evaluation.NewOrchestrator(svc, e.log), e.config.EvaluationTimeout)
	return studio.New(s, brief, worker, rng, e.log), nil
}

// loadLayout replays a layout script, read from the single argument or
// decoded from a share code, against the configured catalog.
func (e *env) loadLayout(args []string, share string) (project.LayoutFile, engine.Session, error) {
	var (
		f   project.LayoutFile
		src string
		err error
	)
	switch {
	case share != "" && len(args) > 0:
		return f, engine.Session{}, errors.New("pass a layout file or --share, not both")
	case share != "":
		src = "share code"
		f, err = export.DecodeShareCode(share)
	case len(args) == 1:
		src = args[0]
		f, err = project.LoadLayout(args[0])
	default:
		return f, engine.Session{}, errors.New("a layout file or --share code is required")
	}
	if err != nil {
		return f, engine.Session{}, err
	}

	cat, err := e.catalog()
	if err != nil {
		return f, engine.Session{}, err
	}
	room, err := e.config.Room()
	if err != nil {
		return f, engine.Session{}, err
	}
	s, warnings, err := f.Session(cat, room)
	if err != nil {
		return f, engine.Session{}, err
	}
	for _, w := range warnings {
		e.log.Warn("layout", zap.String("source", src), zap.String("warning", w))
	}
	return f, s, nil
}
