// Command orchestrator runs the patent-drafting workflow orchestrator:
// the job queue, the workflow engine, and the long-poll submission API.
//
// Usage:
//
//	orchestrator serve --config config.yaml
//	orchestrator validate --config config.yaml
//	orchestrator version
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"golang.org/x/sync/errgroup"

	"github.com/ramyatawia/docflow-orchestrator/internal/config"
	"github.com/ramyatawia/docflow-orchestrator/internal/httpapi"
	"github.com/ramyatawia/docflow-orchestrator/internal/job"
	"github.com/ramyatawia/docflow-orchestrator/internal/llm"
	"github.com/ramyatawia/docflow-orchestrator/internal/logger"
	"github.com/ramyatawia/docflow-orchestrator/internal/metrics"
	"github.com/ramyatawia/docflow-orchestrator/internal/tool"
	"github.com/ramyatawia/docflow-orchestrator/internal/tracing"
	"github.com/ramyatawia/docflow-orchestrator/internal/workflow"
)

// CLI defines the command-line interface.
type CLI struct {
	Version  VersionCmd  `cmd:"" help:"Show version information."`
	Serve    ServeCmd    `cmd:"" help:"Start the orchestrator."`
	Validate ValidateCmd `cmd:"" help:"Validate configuration file."`

	Config    string `short:"c" help:"Path to config file." type:"path" default:"config.yaml"`
	Dotenv    string `help:"Path to a .env file loaded before config expansion." type:"path" default:".env"`
	LogLevel  string `help:"Log level (debug, info, warn, error)." default:"info"`
	LogFormat string `help:"Log format (simple or verbose)." default:"simple"`
}

// VersionCmd prints the build version.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	version := "dev"
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		version = info.Main.Version
	}
	fmt.Printf("docflow-orchestrator version %s\n", version)
	return nil
}

// ValidateCmd checks that a config file parses.
type ValidateCmd struct{}

func (c *ValidateCmd) Run(cli *CLI) error {
	loader := config.NewLoader(cli.Config, config.WithDotenv(cli.Dotenv))
	if _, err := loader.Load(); err != nil {
		return fmt.Errorf("config is invalid: %w", err)
	}
	fmt.Println("config is valid")
	return nil
}

// ServeCmd starts the worker pool and the submission API.
type ServeCmd struct {
	Workers int  `help:"Number of job worker goroutines." default:"1"`
	Watch   bool `help:"Watch config file for changes."`
}

func (c *ServeCmd) Run(cli *CLI) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		slog.Info("shutting down")
		cancel()
	}()

	loader := config.NewLoader(cli.Config, config.WithDotenv(cli.Dotenv))
	cfg, err := loader.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger.Init(logger.ParseLevel(cli.LogLevel), os.Stderr, cli.LogFormat)

	shutdownTracing, err := tracing.Setup(ctx, "docflow-orchestrator")
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer shutdownTracing(context.Background())

	m := metrics.New()

	tools := buildToolRegistry(cfg)
	tools.SetMetrics(m)

	var llmClient llm.Client
	if cfg.LLM.Endpoint != "" {
		llmClient = llm.NewHTTPClient(cfg.LLM.Endpoint, cfg.LLM.TimeoutSeconds)
	}

	store := job.NewStore(job.StoreConfig{
		MaxJobs:         cfg.Queue.MaxJobs,
		JobTTL:          time.Duration(cfg.Queue.JobTTLSeconds) * time.Second,
		TerminalJobTTL:  time.Duration(cfg.Queue.TerminalJobTTLSeconds) * time.Second,
		CleanupInterval: time.Duration(cfg.Queue.CleanupIntervalSeconds) * time.Second,
		Estimates:       cfg.Queue.JobTypeEstimates,
	}, cfg.Queue.MaxJobs)

	engine := workflow.NewEngine(
		workflow.NewClassifier(llmClient),
		workflow.NewPlanner(llmClient),
		tools,
		store,
	)

	worker := job.NewWorker(store, engine, job.WorkerConfig{
		MaxAttempts:            cfg.Queue.MaxAttempts,
		ProgressUpdateInterval: time.Duration(cfg.Queue.ProgressUpdateIntervalSeconds) * time.Second,
	}, slog.Default())
	worker.SetMetrics(m)

	if c.Watch {
		watchLoader := config.NewLoader(cli.Config, config.WithDotenv(cli.Dotenv), config.WithOnChange(func(updated *config.Config) {
			slog.Info("config changed, reconciling tool registry")
			reconcileToolRegistry(tools, updated)
		}))
		stop, err := watchLoader.Watch()
		if err != nil {
			slog.Warn("config watch unavailable", "error", err)
		} else {
			defer stop()
		}
	}

	router := httpapi.NewRouter(store, m)
	httpServer := &http.Server{Addr: cfg.Server.Address, Handler: router}

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < max(1, c.Workers); i++ {
		g.Go(func() error { return worker.Run(gctx) })
	}
	g.Go(func() error {
		slog.Info("listening", "address", cfg.Server.Address)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		return err
	}
	return nil
}

// toolParameters is the common shape of parameters the Workflow Planner
// and Executor substitute into a step (see workflow.singleStep and
// workflow.heuristicPlan's two-step plan): a free-form query plus the
// optional document/prior-step context an HTTP-backed tool may reference.
type toolParameters struct {
	UserQuery           string `json:"user_query" jsonschema:"required,description=The user's request, verbatim or with context substituted"`
	ConversationContext string `json:"conversation_context,omitempty" jsonschema:"description=A prior step's output, when this step depends on one"`
	DocumentReference   string `json:"document_reference,omitempty" jsonschema:"description=The active document's content"`
}

func buildToolRegistry(cfg *config.Config) *tool.Registry {
	registry := tool.NewRegistry()
	reconcileToolRegistry(registry, cfg)
	return registry
}

// reconcileToolRegistry rebuilds registry's contents from cfg, used both
// at startup and whenever --watch detects a config change. In-flight
// tool calls hold their own adapter reference, so a reconcile never
// disrupts a call already in progress.
func reconcileToolRegistry(registry *tool.Registry, cfg *config.Config) {
	registry.Clear()
	schema := tool.GenerateSchema[toolParameters]()
	for name, t := range cfg.Tools {
		descriptor := tool.Descriptor{Name: name, Description: t.Description, InputSchema: schema}
		switch t.Kind {
		case "mcp":
			_ = registry.Register(tool.NewMCPAdapter(descriptor, t.URL))
		default:
			_ = registry.Register(tool.NewHTTPAdapter(descriptor, t.URL, 0))
		}
	}
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli, kong.Name("orchestrator"), kong.Description("patent-drafting workflow orchestrator"))
	if err := ctx.Run(&cli); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
