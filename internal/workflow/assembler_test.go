package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssembleConversationReturnsCannedReply(t *testing.T) {
	state := NewWorkflowState("hello", "", nil, tools())
	state.IntentType = IntentConversation
	assert.Equal(t, conversationReply, Assemble(state))
}

func TestAssembleNoStepsPlannedReturnsUnableToProceed(t *testing.T) {
	state := NewWorkflowState("asdkjasd", "", nil, tools())
	state.IntentType = IntentSingleTool
	assert.Equal(t, noStepsReply, Assemble(state))
}

func TestAssembleConcatenatesDoneStepsUnderHeadings(t *testing.T) {
	state := NewWorkflowState("find prior art", "", nil, tools())
	state.IntentType = IntentSingleTool
	state.WorkflowPlan = []Step{
		{Step: 1, Tool: "prior_art_search_tool", OutputKey: "r1"},
	}
	state.StepResults[1] = StepResult{Status: StepDone, Content: "US1234567 discloses..."}

	out := Assemble(state)
	assert.Contains(t, out, "Prior Art Search Results")
	assert.Contains(t, out, "US1234567 discloses...")
	assert.True(t, out[:2] == "##")
}

func TestAssembleStopsAtFailedStepAndAppendsFailureSummary(t *testing.T) {
	state := NewWorkflowState("find and draft", "", nil, tools())
	state.IntentType = IntentMultiStep
	state.WorkflowPlan = []Step{
		{Step: 1, Tool: "web_search_tool", OutputKey: "r1"},
		{Step: 2, Tool: "claim_drafting_tool", OutputKey: "r2"},
	}
	state.StepResults[1] = StepResult{Status: StepDone, Content: "some search results"}
	state.StepResults[2] = StepResult{Status: StepFailed, Error: "drafting service unavailable"}

	out := Assemble(state)
	assert.Contains(t, out, "Web Search Results")
	assert.Contains(t, out, "some search results")
	assert.Contains(t, out, "Step 2 (claim_drafting_tool) failed: drafting service unavailable")
}

func TestAssembleUnknownToolFallsBackToRawNameHeading(t *testing.T) {
	state := NewWorkflowState("x", "", nil, tools())
	state.IntentType = IntentSingleTool
	state.WorkflowPlan = []Step{
		{Step: 1, Tool: "some_future_tool", OutputKey: "r1"},
	}
	state.StepResults[1] = StepResult{Status: StepDone, Content: "content"}

	out := Assemble(state)
	assert.Contains(t, out, "## some_future_tool")
}
