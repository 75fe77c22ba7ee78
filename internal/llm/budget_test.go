package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateToTokenBudgetLeavesShortStringUnchanged(t *testing.T) {
	assert.Equal(t, "hello world", TruncateToTokenBudget("hello world", 100))
}

func TestTruncateToTokenBudgetShrinksLongString(t *testing.T) {
	long := strings.Repeat("word ", 5000)
	out := TruncateToTokenBudget(long, 10)
	assert.Less(t, len(out), len(long))
}

func TestTruncateToTokenBudgetZeroReturnsEmpty(t *testing.T) {
	assert.Equal(t, "", TruncateToTokenBudget("anything", 0))
}
