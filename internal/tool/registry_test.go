package tool

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAdapter struct {
	descriptor Descriptor
	result     Result
}

func (s stubAdapter) Descriptor() Descriptor { return s.descriptor }

func (s stubAdapter) Execute(ctx context.Context, parameters map[string]any) (Result, error) {
	return s.result, nil
}

func TestRegisterThenDescriptorsReflectsRegistered(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(stubAdapter{descriptor: Descriptor{Name: "web_search_tool", Description: "search"}}))

	descs := r.Descriptors()
	require.Len(t, descs, 1)
	assert.Equal(t, "web_search_tool", descs[0].Name)
}

func TestExecuteUnknownToolReturnsNonRetriableErrResultNotGoError(t *testing.T) {
	r := NewRegistry()
	result, err := r.Execute(context.Background(), "not_registered", nil)
	require.NoError(t, err)
	assert.False(t, result.Ok())
	assert.False(t, result.Retriable)
	assert.Contains(t, result.Error, "not_registered")
}

func TestExecuteDelegatesToRegisteredAdapter(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(stubAdapter{
		descriptor: Descriptor{Name: "claim_analysis_tool"},
		result:     Result{Content: "analysis complete"},
	}))

	result, err := r.Execute(context.Background(), "claim_analysis_tool", map[string]any{"claim": "1"})
	require.NoError(t, err)
	assert.True(t, result.Ok())
	assert.Equal(t, "analysis complete", result.Content)
}

func TestClearRemovesAllRegisteredAdapters(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(stubAdapter{descriptor: Descriptor{Name: "web_search_tool"}}))
	require.Len(t, r.Descriptors(), 1)

	r.Clear()
	assert.Empty(t, r.Descriptors())

	result, err := r.Execute(context.Background(), "web_search_tool", nil)
	require.NoError(t, err)
	assert.False(t, result.Ok())
}
