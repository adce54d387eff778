package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"

	"kulturarv/llm"
)

// fakeModel is a scripted llm.Client for orchestrator tests.
type fakeModel struct {
	mu sync.Mutex

	completions    []*llm.Response
	completionErrs []error
	completeCalls  []llm.Request

	streamText  string
	streamErr   error
	streamCalls []llm.Request
}

func (f *fakeModel) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.completeCalls = append(f.completeCalls, req)
	idx := len(f.completeCalls) - 1

	if idx < len(f.completionErrs) && f.completionErrs[idx] != nil {
		return nil, f.completionErrs[idx]
	}
	if idx < len(f.completions) {
		return f.completions[idx], nil
	}
	// Script exhausted, behave like a model with nothing more to say
	return &llm.Response{Content: "ferdig"}, nil
}

func (f *fakeModel) Stream(ctx context.Context, req llm.Request, onToken func(string)) (string, error) {
	f.mu.Lock()
	f.streamCalls = append(f.streamCalls, req)
	text := f.streamText
	err := f.streamErr
	f.mu.Unlock()

	if err != nil {
		return "", err
	}
	if onToken != nil && text != "" {
		half := len(text) / 2
		onToken(text[:half])
		onToken(text[half:])
	}
	return text, nil
}

func (f *fakeModel) ModelFor(role llm.Role) string {
	if role == llm.RoleRouter {
		return "gpt-4o-mini"
	}
	return "gpt-4o"
}

// fakeDirectory is an in-memory ToolDirectory.
type fakeDirectory struct {
	tools   []mcp.Tool
	outputs map[string]string
	errs    map[string]error
}

func newFakeDirectory(names ...string) *fakeDirectory {
	d := &fakeDirectory{
		outputs: make(map[string]string),
		errs:    make(map[string]error),
	}
	for _, name := range names {
		d.tools = append(d.tools, mcp.NewToolWithRawSchema(name, "test tool "+name,
			json.RawMessage(`{"type":"object","properties":{"query":{"type":"string"}}}`)))
		d.outputs[name] = "output from " + name
	}
	return d
}

func (d *fakeDirectory) List() []mcp.Tool { return d.tools }

func (d *fakeDirectory) Call(ctx context.Context, name string, args map[string]any) (string, error) {
	if err, ok := d.errs[name]; ok {
		return "", err
	}
	if out, ok := d.outputs[name]; ok {
		return out, nil
	}
	return "", fmt.Errorf("unknown tool: %s", name)
}

var errBoom = errors.New("boom")

func toolCallJSON(query string) string {
	b, _ := json.Marshal(map[string]any{"query": query})
	return string(b)
}
