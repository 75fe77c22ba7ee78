package workflow

import (
	"fmt"
	"strings"
)

// conversationReply is the canned assistant reply for intent ==
// conversation, restored from the source system's general-chat path.
const conversationReply = "I'm here to help with patent research, claim drafting, and claim analysis. What would you like to work on?"

const noStepsReply = "I wasn't able to determine how to proceed with that request. Could you rephrase it?"

// toolHeadings maps a tool name to the markdown heading used when
// concatenating its output. Unknown tools fall back to their raw name.
var toolHeadings = map[string]string{
	"prior_art_search_tool": "Prior Art Search Results",
	"claim_drafting_tool":   "Drafted Claims",
	"claim_analysis_tool":   "Claim Analysis",
	"web_search_tool":       "Web Search Results",
}

// Assemble combines the final WorkflowState into a single markdown
// response. It performs no reformatting of step content, no LLM call,
// and no re-ordering: the result is deterministic given step outputs.
func Assemble(state *WorkflowState) string {
	if state.IntentType == IntentConversation {
		return conversationReply
	}

	if len(state.WorkflowPlan) == 0 {
		return noStepsReply
	}

	var b strings.Builder
	var failedStep *Step
	var failedResult StepResult

	for i := range state.WorkflowPlan {
		step := state.WorkflowPlan[i]
		res, ok := state.StepResults[step.Step]
		if !ok {
			break
		}
		if res.Status == StepFailed {
			failedStep = &state.WorkflowPlan[i]
			failedResult = res
			break
		}
		writeSection(&b, step.Tool, res.Content)
	}

	if failedStep != nil {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "Step %d (%s) failed: %s\n", failedStep.Step, failedStep.Tool, failedResult.Error)
	}

	return strings.TrimSpace(b.String())
}

func writeSection(b *strings.Builder, toolName, content string) {
	heading, ok := toolHeadings[toolName]
	if !ok {
		heading = toolName
	}
	fmt.Fprintf(b, "## %s\n\n%s\n\n", heading, content)
}
