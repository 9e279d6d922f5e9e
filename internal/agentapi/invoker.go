package agentapi

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/google/uuid"

	"github.com/forgeloop/forgeloop/internal/agent"
	"github.com/forgeloop/forgeloop/internal/toolsurface"
)

// maxIterations bounds the number of model round-trips within one run,
// mirroring the subprocess backend's single invocation per Runner iteration.
const maxIterations = 50

// Invoker drives the Anthropic API directly in place of shelling out to an
// agent CLI: it runs the same tool-call loop a subprocess backend would
// drive internally, but executes tools in-process.
type Invoker struct {
	client  *Client
	tools   *toolsurface.Handler
	exec    *fileExecutor
	outputs chan agent.StreamEvent

	ctx     context.Context
	cancel  context.CancelFunc
	mu      sync.Mutex
	started bool
	done    chan struct{}
	waitErr error
}

// New creates an Invoker bound to ctx, using client for API calls and
// tools to dispatch Control Tool Surface calls against the session's Store.
func New(ctx context.Context, client *Client, tools *toolsurface.Handler) *Invoker {
	ctx, cancel := context.WithCancel(ctx)
	return &Invoker{
		client:  client,
		tools:   tools,
		outputs: make(chan agent.StreamEvent, 100),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
}

// Verify Invoker implements agent.Invoker at compile time.
var _ agent.Invoker = (*Invoker)(nil)

// Start launches the run with the given prompt and working directory.
func (inv *Invoker) Start(prompt, workDir string) error {
	return inv.StartWithOptions(prompt, workDir, nil)
}

// StartWithOptions launches the run. opts.Model, if set, overrides the
// client's configured model for this run only.
func (inv *Invoker) StartWithOptions(prompt, workDir string, opts *agent.StartOptions) error {
	inv.mu.Lock()
	if inv.started {
		inv.mu.Unlock()
		return fmt.Errorf("agent already started")
	}
	inv.started = true
	inv.mu.Unlock()

	inv.exec = newFileExecutor(workDir)

	model := inv.client.Model()
	if opts != nil && opts.Model != "" {
		model = inv.client.TranslateModel(anthropic.Model(opts.Model))
	}

	go inv.run(prompt, model)
	return nil
}

func (inv *Invoker) run(prompt string, model anthropic.Model) {
	defer close(inv.outputs)
	defer close(inv.done)

	sessionID := uuid.NewString()
	inv.emit(agent.StreamEvent{
		Type:    agent.StreamEventSystemInit,
		Message: fmt.Sprintf("session %s model %s", sessionID, model),
	})

	messages := []anthropic.MessageParam{
		anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
	}

	var totalIn, totalOut int64
	tools := toolDefinitions()

	for i := 0; i < maxIterations; i++ {
		select {
		case <-inv.ctx.Done():
			inv.waitErr = inv.ctx.Err()
			return
		default:
		}

		resp, err := inv.client.sdk().Messages.New(inv.ctx, anthropic.MessageNewParams{
			Model:     model,
			MaxTokens: 8192,
			Messages:  messages,
			Tools:     tools,
		})
		if err != nil {
			inv.emitResult(totalIn, totalOut, "error", err.Error())
			inv.waitErr = err
			return
		}

		totalIn += resp.Usage.InputTokens
		totalOut += resp.Usage.OutputTokens
		inv.client.Tracker().Add(resp.Usage.InputTokens, resp.Usage.OutputTokens)

		var assistantBlocks []anthropic.ContentBlockParamUnion
		var toolResultBlocks []anthropic.ContentBlockParamUnion

		for _, block := range resp.Content {
			switch variant := block.AsAny().(type) {
			case anthropic.TextBlock:
				inv.emit(agent.StreamEvent{Type: agent.StreamEventAssistant, Message: variant.Text})
				assistantBlocks = append(assistantBlocks, anthropic.NewTextBlock(variant.Text))

			case anthropic.ToolUseBlock:
				call := &agent.ToolCall{Name: variant.Name, Input: decodeInput(variant.Input)}
				inv.emit(agent.StreamEvent{
					Type:       agent.StreamEventAssistant,
					Tool:       call,
					ToolAction: variant.Name,
				})
				assistantBlocks = append(assistantBlocks, anthropic.NewToolUseBlock(variant.ID, variant.Input, variant.Name))

				result := inv.dispatch(variant.Name, variant.Input)
				toolResultBlocks = append(toolResultBlocks,
					anthropic.NewToolResultBlock(variant.ID, result.Content, result.IsError))
			}
		}

		if resp.StopReason == anthropic.StopReasonEndTurn {
			inv.emitResult(totalIn, totalOut, "success", "")
			return
		}

		messages = append(messages, anthropic.NewAssistantMessage(assistantBlocks...))
		if len(toolResultBlocks) > 0 {
			messages = append(messages, anthropic.NewUserMessage(toolResultBlocks...))
		}
	}

	inv.emitResult(totalIn, totalOut, "error", fmt.Sprintf("max iterations (%d) reached", maxIterations))
	inv.waitErr = fmt.Errorf("max iterations (%d) reached", maxIterations)
}

// dispatch routes a tool call to the Control Tool Surface or the local
// file executor, whichever owns the name.
func (inv *Invoker) dispatch(name string, input json.RawMessage) toolResult {
	if toolsurface.IsSurfaceTool(name) {
		r := inv.tools.Dispatch(name, input)
		return toolResult{Content: r.Content, IsError: r.IsError}
	}
	return inv.exec.execute(inv.ctx, name, input)
}

func decodeInput(raw json.RawMessage) map[string]any {
	var m map[string]any
	json.Unmarshal(raw, &m)
	return m
}

func (inv *Invoker) emit(e agent.StreamEvent) {
	select {
	case inv.outputs <- e:
	case <-inv.ctx.Done():
	}
}

func (inv *Invoker) emitResult(inputTok, outputTok int64, subtype, errMsg string) {
	inv.emit(agent.StreamEvent{
		Type: agent.StreamEventResult,
		Result: &agent.ResultInfo{
			Subtype:      subtype,
			InputTokens:  inputTok,
			OutputTokens: outputTok,
			CostUSD:      inv.client.Tracker().Cost(),
		},
		Error: errMsg,
	})
}

// Output returns the stream event channel, closed when the run completes.
func (inv *Invoker) Output() <-chan agent.StreamEvent {
	return inv.outputs
}

// Wait blocks until the run completes and returns any error.
func (inv *Invoker) Wait() error {
	<-inv.done
	return inv.waitErr
}

// Kill cancels the run immediately.
func (inv *Invoker) Kill() error {
	inv.cancel()
	return nil
}

// Stderr always returns empty for the API backend; errors surface via the
// result event instead.
func (inv *Invoker) Stderr() string { return "" }

// PID always returns 0; there is no child process.
func (inv *Invoker) PID() int { return 0 }
