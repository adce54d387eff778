// runner.go
//
// The iterative orchestrator. One model both selects tools and writes the
// answer: tool calls are executed and fed back until the model stops asking
// for tools, then the final answer is streamed.

package agent

import (
	"context"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"kulturarv/agent/events"
	"kulturarv/llm"
	"kulturarv/logger"
)

const (
	// maxToolRounds bounds the tool loop. When reached the runner stops
	// executing tools and synthesizes from what it has.
	maxToolRounds = 8

	iterativeMaxTokens   = 2048
	iterativeTemperature = 0.7
)

// Runner is the iterative orchestrator.
type Runner struct {
	model    llm.Client
	executor *Executor
	log      logger.Logger
}

// NewRunner creates an iterative orchestrator.
func NewRunner(model llm.Client, directory ToolDirectory, log logger.Logger) *Runner {
	if log == nil {
		log = logger.NewNoop()
	}
	return &Runner{
		model:    model,
		executor: NewExecutor(directory, log),
		log:      log,
	}
}

// Run implements Orchestrator.
func (r *Runner) Run(ctx context.Context, req ChatRequest, sink events.Sink) error {
	start := time.Now()

	toolsUsed := []string{}
	var toolResults []ToolResult

	sink.OnEvent(events.NewStatus("Analyserer spørsmål..."))

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
	}
	for _, h := range req.ConversationHistory {
		messages = append(messages, openai.ChatCompletionMessage{Role: h.Role, Content: h.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role: openai.ChatMessageRoleUser, Content: req.Message,
	})

	tools := EnabledTools(r.executor.directory, req.Sources)
	if len(tools) == 0 {
		sink.OnEvent(events.NewError("Ingen kilder tilgjengelig"))
		return nil
	}

	var lastContent string
	rounds := 0
	for {
		if err := ctx.Err(); err != nil {
			sink.OnEvent(events.NewError(err.Error()))
			return nil
		}

		resp, err := r.model.Complete(ctx, llm.Request{
			Role:        llm.RoleResponder,
			Messages:    messages,
			Tools:       tools,
			MaxTokens:   iterativeMaxTokens,
			Temperature: iterativeTemperature,
		})
		if err != nil {
			r.log.Error("Model call failed in tool loop", err, logger.Int("round", rounds))
			sink.OnEvent(events.NewError(err.Error()))
			return nil
		}

		lastContent = resp.Content

		if len(resp.ToolCalls) == 0 {
			break
		}

		messages = append(messages, openai.ChatCompletionMessage{
			Role:      openai.ChatMessageRoleAssistant,
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})

		for _, tc := range resp.ToolCalls {
			toolsUsed = append(toolsUsed, tc.Function.Name)
		}

		results, err := r.executor.Execute(ctx, resp.ToolCalls, sink)
		if err != nil {
			sink.OnEvent(events.NewError(err.Error()))
			return nil
		}
		toolResults = append(toolResults, results...)

		for i, tc := range resp.ToolCalls {
			messages = append(messages, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				ToolCallID: tc.ID,
				Content:    results[i].Output,
			})
		}

		rounds++
		if rounds >= maxToolRounds {
			r.log.Warn("Tool round limit reached, forcing synthesis",
				logger.Int("rounds", rounds))
			break
		}
	}

	sink.OnEvent(events.NewStatus("Genererer svar..."))

	fullText, err := r.model.Stream(ctx, llm.Request{
		Role:        llm.RoleResponder,
		Messages:    messages,
		MaxTokens:   iterativeMaxTokens,
		Temperature: iterativeTemperature,
	}, func(token string) {
		sink.OnEvent(events.NewToken(token))
	})
	if err != nil {
		r.log.Error("Streaming synthesis failed", err)
		sink.OnEvent(events.NewError(err.Error()))
		return nil
	}

	// Some providers return an empty stream after a tool round. Fall back to
	// the content of the last non-streaming reply so the answer is not lost.
	if fullText == "" && lastContent != "" {
		fullText = lastContent
		sink.OnEvent(events.NewToken(fullText))
	}

	sources := ExtractSources(toolResults, fullText, true)
	related := ExtractRelatedQueries(fullText)
	cleaned := CleanResponse(fullText)

	response := &ChatResponse{
		Response:       ResponseContent{Text: cleaned},
		Sources:        sources,
		Locations:      []Location{},
		RelatedQueries: related,
		Metadata: Metadata{
			ToolsUsed:          toolsUsed,
			ProvidersConsulted: providersFor(toolsUsed),
			ProcessingTimeMS:   time.Since(start).Milliseconds(),
			Model:              r.model.ModelFor(llm.RoleResponder),
		},
	}

	sink.OnEvent(events.NewDone(response))
	return nil
}
