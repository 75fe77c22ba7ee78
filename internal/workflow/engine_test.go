package workflow

import (
	"context"
	"strings"
	"testing"

	"github.com/ramyatawia/docflow-orchestrator/internal/job"
	"github.com/ramyatawia/docflow-orchestrator/internal/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, registry *tool.Registry) (*Engine, *job.Store) {
	t.Helper()
	store := job.NewStore(job.DefaultStoreConfig(), 8)
	engine := NewEngine(NewClassifier(nil), NewPlanner(nil), registry, store)
	return engine, store
}

func newJob(id, message string) *job.Job {
	return &job.Job{ID: id, Request: job.Request{Message: message}}
}

// S1: a conversational message never plans a step and gets the canned reply.
func TestEngineConversationalRequestReturnsCannedReply(t *testing.T) {
	engine, _ := newTestEngine(t, tool.NewRegistry())
	j := newJob("job-1", "hello there")

	result, err := engine.Run(context.Background(), j, nil)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, conversationReply, result.Content)
}

// S2: a single-tool request's response begins with that tool's heading.
func TestEngineSingleToolRequestResponseBeginsWithToolHeading(t *testing.T) {
	registry := tool.NewRegistry()
	require.NoError(t, registry.Register(&fakeAdapter{name: "web_search_tool", content: "US1234567 and related art."}))
	require.NoError(t, registry.Register(&fakeAdapter{name: "prior_art_search_tool", content: "prior art found."}))
	require.NoError(t, registry.Register(&fakeAdapter{name: "claim_drafting_tool", content: "drafted."}))
	require.NoError(t, registry.Register(&fakeAdapter{name: "claim_analysis_tool", content: "analyzed."}))

	engine, _ := newTestEngine(t, registry)
	j := newJob("job-2", "find prior art for AI patents")

	result, err := engine.Run(context.Background(), j, nil)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.True(t, strings.HasPrefix(result.Content, "## Web Search Results"))
}

// S6: a step failing partway through still yields the preceding steps'
// content plus a failure summary, and Success is false.
func TestEngineStepFailureStillAssemblesPartialResponse(t *testing.T) {
	registry := tool.NewRegistry()
	require.NoError(t, registry.Register(&fakeAdapter{name: "web_search_tool", content: "found some art"}))
	require.NoError(t, registry.Register(&fakeAdapter{name: "claim_drafting_tool", errMsg: "drafting backend down"}))

	engine, _ := newTestEngine(t, registry)
	j := newJob("job-3", "find prior art and draft claims")

	result, err := engine.Run(context.Background(), j, nil)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Content, "found some art")
	assert.Contains(t, result.Content, "failed")
}

func TestEngineCancelledBeforePlanningReturnsEmptyResult(t *testing.T) {
	registry := tool.NewRegistry()
	engine, store := newTestEngine(t, registry)
	id, err := store.Submit("general_chat", job.Request{Message: "find prior art"}, "")
	require.NoError(t, err)
	store.Cancel(id)

	j := newJob(id, "find prior art")
	result, err := engine.Run(context.Background(), j, nil)
	require.NoError(t, err)
	assert.Equal(t, job.Result{}, result)
}
