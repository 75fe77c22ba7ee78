package llm

import (
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// defaultEncoding matches the teacher's token-accounting default.
const defaultEncoding = "cl100k_base"

// TruncateToTokenBudget trims s from the end so that its token count,
// under the cl100k_base encoding, does not exceed maxTokens. Used to
// keep conversation_history and document_content from overflowing the
// classifier/planner prompts. Falls back to a byte-length heuristic if
// the encoder cannot be constructed.
func TruncateToTokenBudget(s string, maxTokens int) string {
	if maxTokens <= 0 {
		return ""
	}
	enc, err := tiktoken.GetEncoding(defaultEncoding)
	if err != nil {
		return truncateByBytes(s, maxTokens*4)
	}
	tokens := enc.Encode(s, nil, nil)
	if len(tokens) <= maxTokens {
		return s
	}
	return enc.Decode(tokens[:maxTokens])
}

func truncateByBytes(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}
	return strings.TrimSpace(s[:maxBytes])
}
