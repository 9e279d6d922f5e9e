package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/forgeloop/forgeloop/internal/agent"
	"github.com/forgeloop/forgeloop/internal/agentapi"
	"github.com/forgeloop/forgeloop/internal/batcher"
	"github.com/forgeloop/forgeloop/internal/config"
	"github.com/forgeloop/forgeloop/internal/recovery"
	"github.com/forgeloop/forgeloop/internal/runner"
	"github.com/forgeloop/forgeloop/internal/store"
	"github.com/forgeloop/forgeloop/internal/toolsurface"
	"github.com/forgeloop/forgeloop/internal/validator"
)

var (
	runMaxIters int
	runPort     int
	runModel    string
	runForce    bool
	runHeadless bool
	runAPIMode  bool
)

var runCmd = &cobra.Command{
	Use:   "run [project-dir]",
	Short: "Drive the outer loop against a project's store",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		projectDir := "."
		if len(args) == 1 {
			projectDir = args[0]
		}
		return runLoop(projectDir)
	},
}

func init() {
	runCmd.Flags().IntVar(&runMaxIters, "max-iterations", 0, "stop after N iterations (0 = unlimited)")
	runCmd.Flags().IntVar(&runPort, "port", 0, "dev server port to pass to the agent")
	runCmd.Flags().StringVar(&runModel, "model", "", "model shorthand, overrides config")
	runCmd.Flags().BoolVar(&runForce, "force", false, "disable the circuit breaker")
	runCmd.Flags().BoolVar(&runHeadless, "headless", false, "record headless mode in the runner config (not passed to the agent process)")
	runCmd.Flags().BoolVar(&runAPIMode, "api-mode", false, "talk to the Anthropic API directly instead of shelling out to an agent CLI")
}

func runLoop(projectDir string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := store.OpenProject(projectDir)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()
	if err := db.Migrate(); err != nil {
		return fmt.Errorf("migrate store: %w", err)
	}

	allFeatures, err := db.AllFeatures()
	if err != nil {
		return fmt.Errorf("load features: %w", err)
	}
	if err := validator.CheckContiguity(allFeatures); err != nil {
		return fmt.Errorf("category contiguity violation: %w", err)
	}

	rec := recovery.New(db, cfg.Runner.StaleAfter)
	if _, err := rec.Run(); err != nil {
		return fmt.Errorf("recovery sweep: %w", err)
	}

	model := runModel
	if model == "" {
		model = cfg.Runner.Model
	}

	if runAPIMode {
		cfg.Runner.UseDirectAPI = true
	}
	if !cfg.Runner.UseDirectAPI {
		if err := CheckAgentCLI(cfg.Runner.AgentCommand); err != nil {
			return err
		}
	}
	factory := buildInvokerFactory(cfg, db, model)

	b := batcher.New(db)
	rc := runner.Config{
		ProjectDir:   projectDir,
		Port:         runPort,
		Headless:     runHeadless,
		Model:        model,
		Command:      cfg.Runner.AgentCommand,
		MaxIters:     runMaxIters,
		BreakerLimit: cfg.Runner.BreakerThreshold,
		Force:        runForce,
	}
	r := runner.New(db, b, factory, rc)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	runner.WatchKillFile(ctx, projectDir, cancel)

	outcome, err := r.Run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "forgeloop: %v\n", err)
		os.Exit(1)
	}

	switch outcome {
	case runner.OutcomeDone:
		fmt.Println("Done — all features completed or failed out.")
	case runner.OutcomeMaxIters:
		fmt.Println("Incomplete — run again to continue.")
	case runner.OutcomeBreakerTrip:
		fmt.Println("Circuit breaker tripped after repeated failures. Run with --force to override.")
	case runner.OutcomeCancelled:
		fmt.Println("Interrupted.")
	}
	return nil
}

// buildInvokerFactory returns the runner.InvokerFactory for the configured
// backend: the default subprocess CLI, or the direct Anthropic API client
// when runner.use_direct_api is set.
func buildInvokerFactory(cfg *config.Config, db *store.DB, model string) runner.InvokerFactory {
	if !cfg.Runner.UseDirectAPI {
		return func(ctx context.Context) agent.Invoker {
			return agent.NewInvoker(ctx)
		}
	}

	client, err := agentapi.NewClient(agentapi.ClientConfig{
		APIKey:        cfg.Anthropic.APIKey,
		UseAWSBedrock: cfg.Anthropic.UseAWSBedrock,
		AWSRegion:     cfg.Anthropic.AWSRegion,
		AWSProfile:    cfg.Anthropic.AWSProfile,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "forgeloop: direct-API client: %v\n", err)
		os.Exit(1)
	}

	return func(ctx context.Context) agent.Invoker {
		handler := toolsurface.New(db, db, activeSessionID(db), cfg.Runner.MaxRetries)
		return agentapi.New(ctx, client, handler)
	}
}

// activeSessionID returns the id of the currently running session, or 0
// if none — the tool surface handler attaches note insertions to it.
func activeSessionID(db *store.DB) int64 {
	s, err := db.GetActiveSession()
	if err != nil || s == nil {
		return 0
	}
	return s.ID
}
