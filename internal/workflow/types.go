// Package workflow implements the state-graph workflow engine: intent
// classification, plan synthesis, sequential multi-step execution with
// context substitution, and response assembly.
package workflow

// Intent is the classifier's verdict.
type Intent string

const (
	IntentConversation Intent = "conversation"
	IntentSingleTool   Intent = "single_tool"
	IntentMultiStep    Intent = "multi_step"
)

// ToolDescriptor is the classifier/planner-visible shape of a tool;
// InputSchema is treated as opaque by the engine.
type ToolDescriptor struct {
	Name        string
	Description string
	InputSchema any
}

// Step is one entry of a workflow plan.
type Step struct {
	Step       int            `json:"step"`
	Tool       string         `json:"tool"`
	Parameters map[string]any `json:"parameters"`
	DependsOn  *int           `json:"depends_on,omitempty"`
	OutputKey  string         `json:"output_key"`
	Description string        `json:"description,omitempty"`
}

// StepStatus tracks one step's execution state.
type StepStatus string

const (
	StepReady   StepStatus = "ready"
	StepRunning StepStatus = "running"
	StepDone    StepStatus = "done"
	StepFailed  StepStatus = "failed"
	StepSkipped StepStatus = "skipped"
)

// StepResult is the per-step outcome recorded in WorkflowState.StepResults.
type StepResult struct {
	Status  StepStatus
	Content string // Ok.content, markdown
	Error   string // set iff Status == StepFailed
}

// WorkflowState is the live record threaded through the engine while a
// job is PROCESSING. It is owned exclusively by the executing worker;
// it is never shared across jobs.
type WorkflowState struct {
	UserInput           string
	DocumentContent     string
	ConversationHistory []HistoryTurn
	AvailableTools      []ToolDescriptor

	IntentType Intent

	WorkflowPlan []Step
	CurrentStep  int // index of the step just completed, 0 before any step
	StepResults  map[int]StepResult

	FinalResponse string
}

// HistoryTurn mirrors job.HistoryTurn, so WorkflowState and the
// classifier/planner do not depend on the job record shape; Engine.Run
// converts the job's history into it.
type HistoryTurn struct {
	Role    string
	Content string
}

// NewWorkflowState seeds a fresh state for a request.
func NewWorkflowState(userInput, documentContent string, history []HistoryTurn, tools []ToolDescriptor) *WorkflowState {
	return &WorkflowState{
		UserInput:           userInput,
		DocumentContent:     documentContent,
		ConversationHistory: history,
		AvailableTools:      tools,
		StepResults:         make(map[int]StepResult),
	}
}

// ToolNames returns the descriptor names, for prompt construction and
// fallback-preference scans.
func (s *WorkflowState) ToolNames() []string {
	names := make([]string, len(s.AvailableTools))
	for i, t := range s.AvailableTools {
		names[i] = t.Name
	}
	return names
}

// HasTool reports whether name is among AvailableTools.
func (s *WorkflowState) HasTool(name string) bool {
	for _, t := range s.AvailableTools {
		if t.Name == name {
			return true
		}
	}
	return false
}
