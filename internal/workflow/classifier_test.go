package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func tools() []ToolDescriptor {
	return []ToolDescriptor{
		{Name: "web_search_tool", Description: "search the web"},
		{Name: "prior_art_search_tool", Description: "search prior art"},
		{Name: "claim_drafting_tool", Description: "draft claims"},
		{Name: "claim_analysis_tool", Description: "analyze claims"},
	}
}

func TestClassifyConversationalGreeting(t *testing.T) {
	c := NewClassifier(nil)
	state := NewWorkflowState("hello", "", nil, tools())
	result := c.Classify(context.Background(), state)
	assert.Equal(t, IntentConversation, result.Intent)
}

func TestClassifySingleToolPriorArt(t *testing.T) {
	c := NewClassifier(nil)
	state := NewWorkflowState("find prior art for AI patents", "", nil, tools())
	result := c.Classify(context.Background(), state)
	assert.Equal(t, IntentSingleTool, result.Intent)
	assert.Equal(t, "prior_art_search_tool", result.Tool)
}

func TestClassifyMultiStepWhenTwoVerbsConnected(t *testing.T) {
	c := NewClassifier(nil)
	state := NewWorkflowState("web search X then draft 3 claims", "", nil, tools())
	result := c.Classify(context.Background(), state)
	assert.Equal(t, IntentMultiStep, result.Intent)
}

func TestClassifierNeverFailsToClassify(t *testing.T) {
	c := NewClassifier(nil)
	for _, input := range []string{"", "asdkjasd", "???", "the weather is nice today"} {
		state := NewWorkflowState(input, "", nil, tools())
		result := c.Classify(context.Background(), state)
		assert.NotEmpty(t, result.Intent)
	}
}
