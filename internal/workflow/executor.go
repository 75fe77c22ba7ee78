package workflow

import (
	"context"
	"fmt"
	"regexp"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ramyatawia/docflow-orchestrator/internal/job"
	"github.com/ramyatawia/docflow-orchestrator/internal/tool"
	"github.com/ramyatawia/docflow-orchestrator/internal/tracing"
)

// contextRefPattern matches a parameter value of the exact shape
// "{key}" — the whole-string, single-level substitution the executor
// contract requires. Partial or nested matches are left untouched.
var contextRefPattern = regexp.MustCompile(`^\{([^{}]+)\}$`)

// CancelChecker reports whether the owning job has been cancelled.
// Satisfied by *job.Store in production, faked in tests.
type CancelChecker interface {
	IsCancelled(jobID string) bool
}

// Executor runs a workflow plan strictly in order, performing context
// substitution between steps and delegating tool calls to a
// tool.Registry.
type Executor struct {
	tools   *tool.Registry
	checker CancelChecker
}

// NewExecutor constructs an Executor.
func NewExecutor(tools *tool.Registry, checker CancelChecker) *Executor {
	return &Executor{tools: tools, checker: checker}
}

// Run executes state.WorkflowPlan against jobID, publishing progress
// through tracker. It returns the final WorkflowState; state.StepResults
// holds exactly the keys of steps that ran.
func (e *Executor) Run(ctx context.Context, jobID string, state *WorkflowState, tracker *job.Tracker) *WorkflowState {
	total := len(state.WorkflowPlan)

	for _, step := range state.WorkflowPlan {
		if e.checker.IsCancelled(jobID) {
			return state
		}

		if tracker != nil {
			start, end := job.ProportionalBounds(step.Step, total)
			tracker.SetBounds(start, end)
			if !tracker.Update(0) {
				return state
			}
		}

		params := substituteParameters(step.Parameters, state)

		result, err := e.runStep(ctx, jobID, step, params)
		if err != nil {
			state.StepResults[step.Step] = StepResult{Status: StepFailed, Error: err.Error()}
			state.CurrentStep = step.Step
			return state
		}

		if !result.Ok() {
			state.StepResults[step.Step] = StepResult{Status: StepFailed, Error: result.Error}
			state.CurrentStep = step.Step
			return state
		}

		state.StepResults[step.Step] = StepResult{Status: StepDone, Content: result.Content}
		state.CurrentStep = step.Step

		if tracker != nil {
			tracker.Update(100)
		}
	}

	return state
}

// runStep wraps a single tool call in a span, so a trace backend can
// show where a workflow spent its time across steps.
func (e *Executor) runStep(ctx context.Context, jobID string, step Step, params map[string]any) (tool.Result, error) {
	ctx, span := tracing.Tracer("orchestrator.workflow").Start(ctx, "workflow.step", trace.WithAttributes(
		attribute.String("job.id", jobID),
		attribute.Int("step.number", step.Step),
		attribute.String("step.tool", step.Tool),
	))
	defer span.End()

	result, err := e.tools.Execute(ctx, step.Tool, params)
	switch {
	case err != nil:
		span.SetStatus(codes.Error, err.Error())
	case !result.Ok():
		span.SetStatus(codes.Error, result.Error)
	default:
		span.SetStatus(codes.Ok, "")
	}
	return result, err
}

// substituteParameters resolves every "{key}" string parameter against
// an earlier step's output_key or a well-known state field. Any other
// value, string or not, passes through unchanged, byte-for-byte.
func substituteParameters(params map[string]any, state *WorkflowState) map[string]any {
	out := make(map[string]any, len(params))
	for k, v := range params {
		out[k] = substituteValue(v, state)
	}
	return out
}

func substituteValue(v any, state *WorkflowState) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	m := contextRefPattern.FindStringSubmatch(s)
	if m == nil {
		return s
	}
	key := m[1]

	switch key {
	case "document_content":
		return state.DocumentContent
	case "conversation_history":
		return formatHistory(state.ConversationHistory)
	}

	for _, step := range state.WorkflowPlan {
		if step.OutputKey != key {
			continue
		}
		res, ok := state.StepResults[step.Step]
		if !ok {
			return s
		}
		if res.Status == StepFailed {
			return fmt.Sprintf("error: %s", res.Error)
		}
		return res.Content
	}

	return s
}

func formatHistory(history []HistoryTurn) string {
	out := ""
	for _, turn := range history {
		out += fmt.Sprintf("%s: %s\n", turn.Role, turn.Content)
	}
	return out
}
