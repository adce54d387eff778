// executor.go
//
// Parallel execution of the tool calls selected by the model. Calls execute
// concurrently with a fork-join pattern: results land in pre-allocated
// indexed slots and are assembled in deterministic order, so emitted events
// and the synthesis context never depend on goroutine scheduling.

package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"kulturarv/agent/events"
	"kulturarv/logger"
)

// previewLength bounds the tool output preview in tool_end events.
const previewLength = 150

// toolExecutionPlan contains the pre-processed data for a single tool call.
// Built sequentially before goroutines are launched.
type toolExecutionPlan struct {
	index  int
	callID string
	name   string
	args   map[string]any

	// If true, skip execution because the result is already known
	skipExecution bool
	preError      string
}

// toolExecutionResult is written by exactly one goroutine into its slot.
type toolExecutionResult struct {
	output    string
	duration  time.Duration
	succeeded bool
}

// Executor runs batches of tool calls against the tool directory.
type Executor struct {
	directory ToolDirectory
	log       logger.Logger
}

// NewExecutor creates an executor.
func NewExecutor(directory ToolDirectory, log logger.Logger) *Executor {
	if log == nil {
		log = logger.NewNoop()
	}
	return &Executor{directory: directory, log: log}
}

// Execute runs all tool calls from one model response.
//
// Phase 1 (sequential): parse arguments, emit tool_start events in call order.
// Phase 2 (parallel):   launch goroutines, each writes its indexed slot.
// Phase 3 (sequential): assemble results in order, emit tool_end events.
//
// Failed calls are not fatal: their error text becomes the tool output with
// Succeeded=false, so the responder can see what went wrong.
func (e *Executor) Execute(ctx context.Context, toolCalls []openai.ToolCall, sink events.Sink) ([]ToolResult, error) {
	plans := make([]toolExecutionPlan, len(toolCalls))
	for i, tc := range toolCalls {
		plan := toolExecutionPlan{
			index:  i,
			callID: tc.ID,
			name:   tc.Function.Name,
		}

		args, err := parseToolArguments(tc.Function.Arguments)
		if err != nil {
			e.log.Warn("Tool arguments did not parse, calling with none",
				logger.String("tool", plan.name),
				logger.Error(err))
			args = map[string]any{}
		}
		plan.args = args

		if plan.name == "" {
			plan.skipExecution = true
			plan.preError = "empty tool name in model response"
		}
		plans[i] = plan

		sink.OnEvent(events.NewToolStart(plan.name, plan.args))
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("cancelled before tool execution: %w", err)
	}

	if len(plans) > 1 {
		e.log.Info("Executing tools in parallel", logger.Int("count", len(plans)))
	}

	slots := make([]toolExecutionResult, len(plans))
	var wg sync.WaitGroup

	for i, plan := range plans {
		if plan.skipExecution {
			slots[i] = toolExecutionResult{output: plan.preError, succeeded: false}
			continue
		}

		wg.Add(1)
		go func(idx int, p toolExecutionPlan) {
			defer wg.Done()
			slots[idx] = e.executeOne(ctx, p)
		}(i, plan)
	}

	wg.Wait()

	results := make([]ToolResult, len(plans))
	for i, plan := range plans {
		slot := slots[i]
		results[i] = ToolResult{
			Tool:      plan.name,
			Arguments: plan.args,
			Output:    slot.output,
			Succeeded: slot.succeeded,
		}

		sink.OnEvent(events.NewToolEnd(plan.name, slot.succeeded, preview(slot.output)))
	}

	return results, nil
}

// executeOne runs a single tool call. Safe to call from a goroutine: it only
// reads the plan and writes nothing shared.
func (e *Executor) executeOne(ctx context.Context, plan toolExecutionPlan) toolExecutionResult {
	start := time.Now()

	output, err := e.directory.Call(ctx, plan.name, plan.args)
	duration := time.Since(start)

	if err != nil {
		e.log.Error("Tool execution failed", err,
			logger.String("tool", plan.name),
			logger.Duration("duration", duration))
		return toolExecutionResult{
			output:    fmt.Sprintf("Error executing %s: %v", plan.name, err),
			duration:  duration,
			succeeded: false,
		}
	}

	if output == "" {
		output = fmt.Sprintf("Tool '%s' executed successfully but returned no output.", plan.name)
	}

	e.log.Debug("Tool executed",
		logger.String("tool", plan.name),
		logger.Duration("duration", duration),
		logger.Int("output_bytes", len(output)))

	return toolExecutionResult{output: output, duration: duration, succeeded: true}
}

// parseToolArguments decodes the JSON argument string from a model tool call.
// An empty string decodes to no arguments.
func parseToolArguments(raw string) (map[string]any, error) {
	if raw == "" {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, fmt.Errorf("parse tool arguments: %w", err)
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}

// preview shortens tool output for tool_end events. Rune-based so multibyte
// Norwegian characters are never split.
func preview(s string) string {
	r := []rune(s)
	if len(r) > previewLength {
		return string(r[:previewLength]) + "..."
	}
	return s
}
