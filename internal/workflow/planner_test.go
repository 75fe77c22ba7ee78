package workflow

import (
	"context"
	"testing"

	"github.com/ramyatawia/docflow-orchestrator/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanConversationIsEmpty(t *testing.T) {
	p := NewPlanner(nil)
	state := NewWorkflowState("hello", "", nil, tools())
	steps := p.Plan(context.Background(), state, ClassifyResult{Intent: IntentConversation})
	assert.Empty(t, steps)
}

func TestPlanSingleToolPreferenceOrder(t *testing.T) {
	p := NewPlanner(nil)
	state := NewWorkflowState("find prior art for AI patents", "", nil, tools())
	steps := p.Plan(context.Background(), state, ClassifyResult{Intent: IntentSingleTool})
	require.Len(t, steps, 1)
	// web_search_tool is first in the fixed preference order and is
	// available, so it wins even though "prior art" was mentioned.
	assert.Equal(t, "web_search_tool", steps[0].Tool)
	assert.Equal(t, "result", steps[0].OutputKey)
}

func TestPlanTwoStepSearchThenDraft(t *testing.T) {
	p := NewPlanner(nil)
	state := NewWorkflowState("web search X then draft 3 claims", "", nil, tools())
	steps := p.Plan(context.Background(), state, ClassifyResult{Intent: IntentMultiStep})
	require.Len(t, steps, 2)
	assert.Equal(t, "web_search_tool", steps[0].Tool)
	assert.Equal(t, "web_search_results", steps[0].OutputKey)
	assert.Equal(t, "claim_drafting_tool", steps[1].Tool)
	assert.Equal(t, 1, *steps[1].DependsOn)
	assert.Equal(t, "{web_search_results}", steps[1].Parameters["conversation_context"])
}

func TestParseLLMPlanRejectsMissingFields(t *testing.T) {
	_, ok := parseLLMPlan(`{"workflow_plan": [{"step": 1, "tool": "web_search_tool"}]}`)
	assert.False(t, ok)
}

func TestParseLLMPlanAcceptsWellFormed(t *testing.T) {
	steps, ok := parseLLMPlan(`some preamble {"workflow_plan": [
		{"step": 1, "tool": "web_search_tool", "parameters": {"query": "x"}, "depends_on": null, "output_key": "r1"}
	]} trailer`)
	require.True(t, ok)
	require.Len(t, steps, 1)
	assert.Equal(t, "web_search_tool", steps[0].Tool)
	assert.Equal(t, "r1", steps[0].OutputKey)
}

func TestPlanFallsBackWhenLLMPlanReferencesUnknownTool(t *testing.T) {
	client := fakePlannerLLM{text: `{"workflow_plan": [{"step": 1, "tool": "not_a_real_tool", "parameters": {}, "output_key": "r1"}]}`}
	p := NewPlanner(client)
	state := NewWorkflowState("find prior art and draft claims", "", nil, tools())
	steps := p.Plan(context.Background(), state, ClassifyResult{Intent: IntentMultiStep})
	require.Len(t, steps, 2)
	assert.Equal(t, "web_search_tool", steps[0].Tool)
	assert.Equal(t, "claim_drafting_tool", steps[1].Tool)
}

type fakePlannerLLM struct {
	text string
}

func (f fakePlannerLLM) Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int, temperature float64) (llm.Response, error) {
	return llm.Response{Text: f.text, Success: true}, nil
}
