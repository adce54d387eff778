package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"kulturarv/agent/events"
)

// ToolDirectory is the subset of the tool registry the agent depends on.
type ToolDirectory interface {
	List() []mcp.Tool
	Call(ctx context.Context, name string, args map[string]any) (string, error)
}

// Orchestrator runs one chat request, emitting lifecycle events to the sink
// in order. The stream always ends with exactly one done or error event; Run
// itself only returns an error when the request could not start at all.
type Orchestrator interface {
	Run(ctx context.Context, req ChatRequest, sink events.Sink) error
}

// Chat runs a request to completion and returns the final response, for
// callers that do not stream.
func Chat(ctx context.Context, o Orchestrator, req ChatRequest) (*ChatResponse, error) {
	var (
		response *ChatResponse
		errMsg   string
	)

	sink := events.SinkFunc(func(ev events.Event) {
		switch e := ev.(type) {
		case events.Done:
			if r, ok := e.Response.(*ChatResponse); ok {
				response = r
			}
		case events.Error:
			errMsg = e.Message
		}
	})

	if err := o.Run(ctx, req, sink); err != nil {
		return nil, err
	}
	if errMsg != "" {
		return nil, fmt.Errorf("chat failed: %s", errMsg)
	}
	if response == nil {
		return nil, errors.New("chat produced no response")
	}
	return response, nil
}
