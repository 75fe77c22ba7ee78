package workflow

import (
	"context"

	"github.com/ramyatawia/docflow-orchestrator/internal/job"
	"github.com/ramyatawia/docflow-orchestrator/internal/tool"
)

// Engine implements job.Runner, routing a submitted request through
// intent classification, plan synthesis, sequential execution, and
// response assembly.
type Engine struct {
	classifier *Classifier
	planner    *Planner
	tools      *tool.Registry
	checker    CancelChecker
}

// NewEngine constructs an Engine.
func NewEngine(classifier *Classifier, planner *Planner, tools *tool.Registry, checker CancelChecker) *Engine {
	return &Engine{classifier: classifier, planner: planner, tools: tools, checker: checker}
}

// Run implements job.Runner.
func (e *Engine) Run(ctx context.Context, j *job.Job, tracker *job.Tracker) (job.Result, error) {
	history := make([]HistoryTurn, len(j.Request.ConversationHistory))
	for i, h := range j.Request.ConversationHistory {
		history[i] = HistoryTurn{Role: h.Role, Content: h.Content}
	}

	descriptors := e.tools.Descriptors()
	toolDescs := make([]ToolDescriptor, len(descriptors))
	for i, d := range descriptors {
		toolDescs[i] = ToolDescriptor{Name: d.Name, Description: d.Description, InputSchema: d.InputSchema}
	}

	state := NewWorkflowState(j.Request.Message, j.Request.DocumentContent, history, toolDescs)

	classified := e.classifier.Classify(ctx, state)
	state.IntentType = classified.Intent

	if e.checker.IsCancelled(j.ID) {
		return job.Result{}, nil
	}

	state.WorkflowPlan = e.planner.Plan(ctx, state, classified)

	executor := NewExecutor(e.tools, e.checker)
	state = executor.Run(ctx, j.ID, state, tracker)

	if e.checker.IsCancelled(j.ID) {
		return job.Result{}, nil
	}

	state.FinalResponse = Assemble(state)

	success := allStepsSucceeded(state)
	return job.Result{Content: state.FinalResponse, Success: success}, nil
}

func allStepsSucceeded(state *WorkflowState) bool {
	if state.IntentType == IntentConversation {
		return true
	}
	for _, step := range state.WorkflowPlan {
		res, ok := state.StepResults[step.Step]
		if !ok || res.Status != StepDone {
			return false
		}
	}
	return true
}

var _ job.Runner = (*Engine)(nil)
