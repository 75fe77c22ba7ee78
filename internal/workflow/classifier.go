package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ramyatawia/docflow-orchestrator/internal/llm"
)

// maxHistoryTokens bounds how much prior conversation the classifier
// prompt carries, so a long-running session never overflows the LLM's
// context window.
const maxHistoryTokens = 1000

// ClassifyResult is the classifier's verdict plus a tentative
// single-tool guess (only meaningful when Intent != conversation).
type ClassifyResult struct {
	Intent     Intent
	Tool       string
	Parameters map[string]any
}

// Classifier maps a user message and tool catalog to an Intent. The
// keyword fallback is not merely for resilience: it is the system's
// correctness floor, and is used directly when client is nil.
type Classifier struct {
	client llm.Client
}

// NewClassifier constructs a Classifier. client may be nil, in which
// case only the keyword fallback is used.
func NewClassifier(client llm.Client) *Classifier {
	return &Classifier{client: client}
}

func (c *Classifier) Classify(ctx context.Context, state *WorkflowState) ClassifyResult {
	if c.client != nil {
		if res, ok := c.classifyWithLLM(ctx, state); ok {
			return res
		}
	}
	return classifyByKeyword(state)
}

func (c *Classifier) classifyWithLLM(ctx context.Context, state *WorkflowState) (ClassifyResult, bool) {
	prompt := buildClassifierPrompt(state)
	resp, err := c.client.Complete(ctx, classifierSystemPrompt, prompt, 512, 0.0)
	if err != nil || !resp.Success {
		return ClassifyResult{}, false
	}
	return parseClassifierReply(resp.Text, state)
}

const classifierSystemPrompt = "You classify a user's request against a catalog of available tools."

func buildClassifierPrompt(state *WorkflowState) string {
	var b strings.Builder
	b.WriteString("Available tools:\n")
	for _, t := range state.AvailableTools {
		fmt.Fprintf(&b, "- %s: %s\n", t.Name, t.Description)
	}
	if len(state.ConversationHistory) > 0 {
		history := llm.TruncateToTokenBudget(formatHistory(state.ConversationHistory), maxHistoryTokens)
		b.WriteString("\nConversation so far:\n")
		b.WriteString(history)
	}
	b.WriteString("\nUser message: ")
	b.WriteString(state.UserInput)
	b.WriteString("\n\nReply with exactly these lines:\n")
	b.WriteString("WORKFLOW_TYPE: conversation|single_tool|multi_step\n")
	b.WriteString("INTENT: <short description>\n")
	b.WriteString("TOOLS: <comma separated tool names, or none>\n")
	b.WriteString("PARAMETERS: <JSON object of tentative parameters, or {}>\n")
	return b.String()
}

// parseClassifierReply parses the line-oriented WORKFLOW_TYPE/INTENT/
// TOOLS/PARAMETERS reply format used by the source system's
// intent-classification prompt.
func parseClassifierReply(text string, state *WorkflowState) (ClassifyResult, bool) {
	var workflowType, toolsLine, paramsLine string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "WORKFLOW_TYPE:"):
			workflowType = strings.TrimSpace(strings.TrimPrefix(line, "WORKFLOW_TYPE:"))
		case strings.HasPrefix(line, "TOOLS:"):
			toolsLine = strings.TrimSpace(strings.TrimPrefix(line, "TOOLS:"))
		case strings.HasPrefix(line, "PARAMETERS:"):
			paramsLine = strings.TrimSpace(strings.TrimPrefix(line, "PARAMETERS:"))
		}
	}

	switch Intent(workflowType) {
	case IntentConversation:
		return ClassifyResult{Intent: IntentConversation}, true
	case IntentSingleTool:
		tool := firstToken(toolsLine)
		if tool == "" || !state.HasTool(tool) {
			return ClassifyResult{}, false
		}
		var params map[string]any
		_ = json.Unmarshal([]byte(paramsLine), &params)
		return ClassifyResult{Intent: IntentSingleTool, Tool: tool, Parameters: params}, true
	case IntentMultiStep:
		return ClassifyResult{Intent: IntentMultiStep}, true
	default:
		return ClassifyResult{}, false
	}
}

func firstToken(commaList string) string {
	parts := strings.Split(commaList, ",")
	if len(parts) == 0 {
		return ""
	}
	return strings.TrimSpace(parts[0])
}

// actionVerbs are the verbs/connectors whose presence signals a
// multi-step request.
var actionVerbs = []string{"find", "search", "draft", "analyze", "create", "then"}

// toolPreferenceOrder is the fixed order in which tools are preferred
// when the specifically matched tool is unavailable (and by the
// planner's single-step fallback).
var toolPreferenceOrder = []string{"web_search_tool", "prior_art_search_tool", "claim_drafting_tool", "claim_analysis_tool"}

// classifyByKeyword is the deterministic correctness floor: no user
// input must fail to classify.
func classifyByKeyword(state *WorkflowState) ClassifyResult {
	input := strings.ToLower(state.UserInput)

	verbCount := 0
	for _, v := range actionVerbs {
		if strings.Contains(input, v) {
			verbCount++
		}
	}
	if verbCount >= 2 || strings.Contains(input, "and then") {
		return ClassifyResult{Intent: IntentMultiStep}
	}

	if tool := keywordTool(state, input); tool != "" {
		return ClassifyResult{Intent: IntentSingleTool, Tool: tool}
	}

	return ClassifyResult{Intent: IntentConversation}
}

// keywordTool maps the most specific matching keyword to a tool name,
// falling back to the general preference order when the input merely
// mentions "search" without a more specific term.
func keywordTool(state *WorkflowState, input string) string {
	switch {
	case strings.Contains(input, "prior art"):
		return firstAvailable(state, "prior_art_search_tool")
	case strings.Contains(input, "draft"):
		return firstAvailable(state, "claim_drafting_tool")
	case strings.Contains(input, "analyze") || strings.Contains(input, "claim"):
		return firstAvailable(state, "claim_analysis_tool")
	case strings.Contains(input, "search"):
		return firstAvailable(state, "web_search_tool")
	default:
		return ""
	}
}

func firstAvailable(state *WorkflowState, preferred string) string {
	if state.HasTool(preferred) {
		return preferred
	}
	for _, name := range toolPreferenceOrder {
		if state.HasTool(name) {
			return name
		}
	}
	names := state.ToolNames()
	if len(names) > 0 {
		return names[0]
	}
	return ""
}
