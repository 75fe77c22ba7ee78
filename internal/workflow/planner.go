package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/ramyatawia/docflow-orchestrator/internal/llm"
)

// maxDocumentTokens bounds how much of the active document the planner
// prompt quotes, so a large document never overflows the LLM's context
// window.
const maxDocumentTokens = 2000

// Planner produces an ordered Step sequence for a classified request.
type Planner struct {
	client llm.Client
}

// NewPlanner constructs a Planner. client may be nil, in which case
// only the deterministic heuristic fallback is used.
func NewPlanner(client llm.Client) *Planner {
	return &Planner{client: client}
}

// Plan returns the steps to execute for state, given the classifier's
// verdict. intent == conversation always yields an empty plan.
func (p *Planner) Plan(ctx context.Context, state *WorkflowState, intent ClassifyResult) []Step {
	if intent.Intent == IntentConversation {
		return nil
	}

	if p.client != nil {
		if steps, ok := p.planWithLLM(ctx, state); ok {
			return steps
		}
	}
	return heuristicPlan(state)
}

func (p *Planner) planWithLLM(ctx context.Context, state *WorkflowState) ([]Step, bool) {
	prompt := buildPlannerPrompt(state)
	resp, err := p.client.Complete(ctx, plannerSystemPrompt, prompt, 1024, 0.0)
	if err != nil || !resp.Success {
		return nil, false
	}
	steps, ok := parseLLMPlan(resp.Text)
	if !ok {
		return nil, false
	}
	for _, s := range steps {
		if !state.HasTool(s.Tool) {
			return nil, false
		}
	}
	return steps, true
}

const plannerSystemPrompt = "You plan a sequence of tool invocations to satisfy the user's request."

func buildPlannerPrompt(state *WorkflowState) string {
	var b strings.Builder
	b.WriteString("Available tools:\n")
	for _, t := range state.AvailableTools {
		fmt.Fprintf(&b, "- %s: %s\n", t.Name, t.Description)
	}
	b.WriteString("\nWell-known context keys: {document_content}, {conversation_history}.\n")
	b.WriteString("Each step's parameters may reference an earlier step's output_key wrapped in { }. At most one tool per step.\n")
	if state.DocumentContent != "" {
		b.WriteString("\nActive document (truncated):\n")
		b.WriteString(llm.TruncateToTokenBudget(state.DocumentContent, maxDocumentTokens))
		b.WriteString("\n")
	}
	b.WriteString("\nUser message: ")
	b.WriteString(state.UserInput)
	b.WriteString(`

Reply with JSON of this exact shape:
{"workflow_plan": [
  {"step": 1, "tool": "web_search_tool", "parameters": {"query": "..."}, "depends_on": null, "output_key": "step1_results", "description": "..."},
  {"step": 2, "tool": "claim_drafting_tool", "parameters": {"param1": "value1", "context": "{step1_results}"}, "depends_on": 1, "output_key": "step2_results", "description": "..."}
]}
`)
	return b.String()
}

var jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)

type llmPlanEnvelope struct {
	WorkflowPlan []llmPlanStep `json:"workflow_plan"`
}

type llmPlanStep struct {
	Step        int            `json:"step"`
	Tool        string         `json:"tool"`
	Parameters  map[string]any `json:"parameters"`
	DependsOn   *int           `json:"depends_on"`
	OutputKey   string         `json:"output_key"`
	Description string         `json:"description"`
}

// parseLLMPlan extracts and validates a JSON plan from raw LLM text.
// Every step must carry step/tool/parameters/output_key; any missing
// field rejects the whole plan (the caller falls back to heuristics).
func parseLLMPlan(text string) ([]Step, bool) {
	match := jsonObjectPattern.FindString(text)
	if match == "" {
		return nil, false
	}
	var env llmPlanEnvelope
	if err := json.Unmarshal([]byte(match), &env); err != nil {
		return nil, false
	}
	if len(env.WorkflowPlan) == 0 {
		return nil, false
	}

	steps := make([]Step, 0, len(env.WorkflowPlan))
	for _, s := range env.WorkflowPlan {
		if s.Step == 0 || s.Tool == "" || s.Parameters == nil || s.OutputKey == "" {
			return nil, false
		}
		steps = append(steps, Step{
			Step:        s.Step,
			Tool:        s.Tool,
			Parameters:  s.Parameters,
			DependsOn:   s.DependsOn,
			OutputKey:   s.OutputKey,
			Description: s.Description,
		})
	}
	return steps, true
}

var searchVerbs = []string{"find", "search"}
var draftAnalyzeVerbs = []string{"draft", "analyze"}

// heuristicPlan is the deterministic fallback described in §4.C: a
// two-step web_search_tool -> claim_drafting_tool plan when the input
// has both a search verb and a draft/analyze verb and both tools are
// available (an "analyze" request also gets claim_drafting_tool as its
// second step), otherwise a single step preferring, in order,
// web_search_tool, prior_art_search_tool, claim_drafting_tool,
// claim_analysis_tool, then the first available tool.
func heuristicPlan(state *WorkflowState) []Step {
	input := strings.ToLower(state.UserInput)

	hasSearch := containsAny(input, searchVerbs)
	hasDraftAnalyze := containsAny(input, draftAnalyzeVerbs)

	if hasSearch && hasDraftAnalyze && state.HasTool("web_search_tool") && state.HasTool("claim_drafting_tool") {
		return []Step{
			{
				Step:       1,
				Tool:       "web_search_tool",
				Parameters: map[string]any{"query": strings.TrimSpace(state.UserInput)},
				OutputKey:  "web_search_results",
			},
			{
				Step:       2,
				Tool:       "claim_drafting_tool",
				Parameters: map[string]any{"user_query": state.UserInput, "conversation_context": "{web_search_results}", "document_reference": "{document_content}"},
				DependsOn:  intPtr(1),
				OutputKey:  "draft_claims",
			},
		}
	}

	for _, name := range toolPreferenceOrder {
		if state.HasTool(name) {
			return []Step{singleStep(name, state.UserInput)}
		}
	}
	names := state.ToolNames()
	if len(names) > 0 {
		return []Step{singleStep(names[0], state.UserInput)}
	}
	return nil
}

func singleStep(tool, userInput string) Step {
	return Step{
		Step:       1,
		Tool:       tool,
		Parameters: map[string]any{"user_query": userInput},
		OutputKey:  "result",
	}
}

func containsAny(input string, words []string) bool {
	for _, w := range words {
		if strings.Contains(input, w) {
			return true
		}
	}
	return false
}

func intPtr(i int) *int { return &i }
