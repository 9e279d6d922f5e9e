// Package runner drives the outer loop: one iteration opens a session,
// assembles context, invokes the agent, reconciles claimed vs. verified
// completions, and closes the session, per spec.md §4.5.
package runner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/forgeloop/forgeloop/internal/agent"
	"github.com/forgeloop/forgeloop/internal/batcher"
	"github.com/forgeloop/forgeloop/internal/store"
	"github.com/forgeloop/forgeloop/pkg/models"
)

// backoff is the fixed sleep after a failed iteration, per spec.md §4.5.
const backoff = 5 * time.Second

// notesPerContext is how many recent notes are folded into the assembled
// context (category-scoped or global), per spec.md §4.5 step 3.
const notesPerContext = 10

// InvokerFactory builds a fresh agent.Invoker for one iteration. The
// Runner is backend-agnostic: pass a factory that returns a
// agent.SubprocessInvoker or an agentapi.Invoker wrapped to satisfy the
// interface.
type InvokerFactory func(ctx context.Context) agent.Invoker

// Config carries the Runner's tunables.
type Config struct {
	ProjectDir   string
	TemplateDir  string
	Port         int
	Headless     bool
	Model        string
	Command      string
	MaxIters     int // 0 means unlimited
	BreakerLimit int
	Force        bool // disables the circuit breaker
}

// Runner executes the outer loop against a Store using an InvokerFactory
// to spawn one agent per iteration.
type Runner struct {
	store   store.Store
	batcher *batcher.Batcher
	factory InvokerFactory
	cfg     Config

	consecutiveFailures int
}

// New creates a Runner.
func New(s store.Store, b *batcher.Batcher, factory InvokerFactory, cfg Config) *Runner {
	return &Runner{store: s, batcher: b, factory: factory, cfg: cfg}
}

// Outcome summarizes why the outer loop stopped.
type Outcome string

const (
	OutcomeDone        Outcome = "done" // no incomplete work remains
	OutcomeMaxIters    Outcome = "max_iterations"
	OutcomeBreakerTrip Outcome = "breaker_trip"
	OutcomeCancelled   Outcome = "cancelled"
)

// Run drives the outer loop until it terminates per spec.md §4.5, and
// returns why it stopped.
func (r *Runner) Run(ctx context.Context) (Outcome, error) {
	iterations := 0
	for {
		select {
		case <-ctx.Done():
			r.cancelInFlight()
			return OutcomeCancelled, nil
		default:
		}

		if !r.cfg.Force && r.consecutiveFailures >= r.cfg.BreakerLimit {
			color.Yellow("circuit breaker tripped after %d consecutive failures", r.consecutiveFailures)
			return OutcomeBreakerTrip, nil
		}

		if r.cfg.MaxIters > 0 && iterations >= r.cfg.MaxIters {
			return OutcomeMaxIters, nil
		}

		incomplete, err := r.store.HasIncomplete()
		if err != nil {
			return OutcomeCancelled, fmt.Errorf("checking incomplete work: %w", err)
		}
		if !incomplete {
			return OutcomeDone, nil
		}

		done, err := r.iterate(ctx)
		iterations++
		if err != nil {
			return OutcomeCancelled, err
		}
		if done {
			// no batch to draw; loop terminates cleanly, not as an iteration
			return OutcomeDone, nil
		}
	}
}

func (r *Runner) cancelInFlight() {
	// best-effort; the in-flight session, if any, is marked failed by the
	// caller's context cancellation propagating into iterate's Invoke step.
}

// iterate runs one Open/Batch/Assemble/Invoke/Reconcile/Close cycle. The
// bool return reports whether the loop should stop because the Batcher
// returned an empty batch (not itself a failure).
func (r *Runner) iterate(ctx context.Context) (bool, error) {
	sessionID, err := r.store.StartSession()
	if err != nil {
		return false, fmt.Errorf("start session: %w", err)
	}

	slog, logErr := openSessionLog(r.cfg.ProjectDir, sessionID)
	if logErr != nil {
		fmt.Printf("warning: could not open session log: %v\n", logErr)
	}
	defer slog.Close()

	preStats, err := r.store.KanbanStats()
	if err != nil {
		r.fail(sessionID, nil, fmt.Errorf("kanban stats (pre): %w", err))
		return false, nil
	}
	preCompleted := preStats.ByStatus[models.FeatureStatusCompleted]

	batch, err := r.batcher.Next()
	if err != nil {
		r.fail(sessionID, nil, fmt.Errorf("next batch: %w", err))
		return false, nil
	}
	if batch.Empty() {
		_ = r.store.EndSession(sessionID, models.EndStats{Status: models.SessionStatusCompleted})
		return true, nil
	}

	prompt, err := r.assembleContext(batch)
	if err != nil {
		r.fail(sessionID, batch.IDs(), fmt.Errorf("assemble context: %w", err))
		return false, nil
	}
	slog.Printf("=== session %d: category %s, features %v ===", sessionID, batch.Category, batch.IDs())

	inv := r.factory(ctx)
	opts := &agent.StartOptions{Model: r.cfg.Model, Command: r.cfg.Command, SessionID: sessionID}
	if err := inv.StartWithOptions(prompt, r.cfg.ProjectDir, opts); err != nil {
		r.fail(sessionID, batch.IDs(), fmt.Errorf("start agent: %w", err))
		return false, nil
	}

	claimed, inputTok, outputTok, cost, streamErr := r.consume(inv, batch.Category, slog)
	waitErr := inv.Wait()

	if streamErr != nil || waitErr != nil {
		err := streamErr
		if err == nil {
			err = waitErr
		}
		r.fail(sessionID, batch.IDs(), err)
		return false, nil
	}

	postStats, err := r.store.KanbanStats()
	if err != nil {
		r.fail(sessionID, batch.IDs(), fmt.Errorf("kanban stats (post): %w", err))
		return false, nil
	}
	verified := postStats.ByStatus[models.FeatureStatusCompleted] - preCompleted
	if verified != claimed {
		fmt.Printf("[session %d] claimed %d completion(s), verified %d\n", sessionID, claimed, verified)
	}

	if err := r.store.EndSession(sessionID, models.EndStats{
		Status:            models.SessionStatusCompleted,
		FeaturesAttempted: len(batch.Features),
		FeaturesCompleted: verified,
		InputTokens:       inputTok,
		OutputTokens:      outputTok,
		Cost:              cost,
	}); err != nil {
		return false, fmt.Errorf("end session: %w", err)
	}

	r.consecutiveFailures = 0
	slog.Printf("=== session %d closed: %d/%d verified, %d input tok, %d output tok, $%.4f ===",
		sessionID, verified, len(batch.Features), inputTok, outputTok, cost)
	color.Green("[session %d] %s: %d/%d verified complete", sessionID, batch.Category, verified, len(batch.Features))
	return false, nil
}

// consume drains the invoker's output stream, logging lines and counting
// claimed completions until the stream closes.
func (r *Runner) consume(inv agent.Invoker, category string, slog *sessionLog) (claimed int, inputTok, outputTok int64, cost float64, err error) {
	for ev := range inv.Output() {
		switch ev.Type {
		case agent.StreamEventSystemInit:
			fmt.Printf("[%s] session init: %s\n", category, ev.Message)
			slog.Printf("system-init: %s", ev.Message)
		case agent.StreamEventAssistant:
			if ev.ToolAction != "" {
				fmt.Printf("[%s] %s\n", category, ev.ToolAction)
				slog.Printf("%s", ev.ToolAction)
			}
			if ev.Message != "" {
				slog.Printf("%s", ev.Message)
			}
			if ev.Tool != nil {
				if _, status, ok := ev.Tool.IsFeatureStatus(); ok && status == string(models.FeatureStatusCompleted) {
					claimed++
				}
			}
		case agent.StreamEventResult:
			if ev.Result != nil {
				inputTok = ev.Result.InputTokens
				outputTok = ev.Result.OutputTokens
				cost = ev.Result.CostUSD
				if !ev.Result.Success() {
					err = fmt.Errorf("agent result: %s", ev.Error)
				}
			}
		case agent.StreamEventError:
			err = fmt.Errorf("agent stream error: %s", ev.Error)
		}
	}
	return claimed, inputTok, outputTok, cost, err
}

// fail runs the failure path: note, close session, backoff. The
// circuit breaker check lives at the top of Run's loop, not here — fail
// only tracks the count, it never itself decides to stop the loop.
func (r *Runner) fail(sessionID int64, featureIDs []int64, cause error) {
	r.consecutiveFailures++

	errMsg := cause.Error()
	if cause == context.Canceled {
		errMsg = "interrupted"
	}

	msg := fmt.Sprintf("Session %d failed while working on %v. Error: %s. See session log.", sessionID, featureIDs, errMsg)
	_, _ = r.store.AddNote(nil, "", msg, sessionID)

	_ = r.store.EndSession(sessionID, models.EndStats{
		Status:       models.SessionStatusFailed,
		ErrorMessage: errMsg,
	})

	color.Red("[session %d] failed: %v", sessionID, cause)
	time.Sleep(backoff)
}

// assembleContext builds the bounded per-session prompt per spec.md §4.5
// step 3.
func (r *Runner) assembleContext(batch models.Batch) (string, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "Category: %s\n", batch.Category)
	fmt.Fprintf(&b, "Features in this batch:\n")
	for _, f := range batch.Features {
		fmt.Fprintf(&b, "  [%d] %s\n", f.ID, f.Name)
	}

	stats, err := r.store.KanbanStats()
	if err != nil {
		return "", err
	}
	fmt.Fprintf(&b, "\nGlobal progress: pending=%d in_progress=%d completed=%d failed=%d\n",
		stats.ByStatus[models.FeatureStatusPending],
		stats.ByStatus[models.FeatureStatusInProgress],
		stats.ByStatus[models.FeatureStatusCompleted],
		stats.ByStatus[models.FeatureStatusFailed])

	notes, err := r.store.NotesFor(nil, batch.Category)
	if err != nil {
		return "", err
	}
	if len(notes) > notesPerContext {
		notes = notes[:notesPerContext]
	}
	if len(notes) > 0 {
		fmt.Fprintf(&b, "\nRecent notes:\n")
		for _, n := range notes {
			fmt.Fprintf(&b, "  [%s] %s\n", n.Scope(), n.Content)
		}
	}

	fmt.Fprintf(&b, "\nDev server port: %d\n", r.cfg.Port)
	fmt.Fprintf(&b, "\nBegin with feature [%d] %s. Mark it in_progress before starting and completed once verified.\n",
		batch.Features[0].ID, batch.Features[0].Name)

	return b.String(), nil
}
