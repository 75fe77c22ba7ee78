package tool

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ramyatawia/docflow-orchestrator/internal/tracing"
)

// HTTPAdapter addresses a tool by URL, POSTing its parameters as JSON
// and expecting the uniform { content, metadata } / { error,
// retriable } envelope described at the Tool Adapter boundary.
type HTTPAdapter struct {
	descriptor Descriptor
	endpoint   string
	client     *http.Client
}

// NewHTTPAdapter constructs an HTTPAdapter for descriptor, calling
// endpoint for every Execute.
func NewHTTPAdapter(descriptor Descriptor, endpoint string, timeout time.Duration) *HTTPAdapter {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPAdapter{
		descriptor: descriptor,
		endpoint:   endpoint,
		client:     &http.Client{Timeout: timeout},
	}
}

func (a *HTTPAdapter) Descriptor() Descriptor { return a.descriptor }

type httpToolResponse struct {
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Error     string         `json:"error,omitempty"`
	Retriable bool           `json:"retriable,omitempty"`
}

func (a *HTTPAdapter) Execute(ctx context.Context, parameters map[string]any) (Result, error) {
	ctx, span := tracing.Tracer("orchestrator.tool").Start(ctx, "tool.http_call", trace.WithAttributes(
		attribute.String("tool.name", a.descriptor.Name),
		attribute.String("tool.endpoint", a.endpoint),
	))
	defer span.End()

	result, err := a.doExecute(ctx, parameters)
	switch {
	case err != nil:
		span.SetStatus(codes.Error, err.Error())
	case !result.Ok():
		span.SetStatus(codes.Error, result.Error)
	default:
		span.SetStatus(codes.Ok, "")
	}
	return result, err
}

func (a *HTTPAdapter) doExecute(ctx context.Context, parameters map[string]any) (Result, error) {
	body, err := json.Marshal(parameters)
	if err != nil {
		return Result{}, fmt.Errorf("encode tool parameters: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("build tool request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return Result{Error: err.Error(), Retriable: true}, nil
	}
	defer resp.Body.Close()

	var out httpToolResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Result{Error: fmt.Sprintf("decode tool response: %v", err), Retriable: true}, nil
	}
	if out.Error != "" {
		return Result{Error: out.Error, Retriable: out.Retriable}, nil
	}
	return Result{Content: out.Content, Metadata: out.Metadata}, nil
}

var _ Adapter = (*HTTPAdapter)(nil)
