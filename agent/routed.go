// routed.go
//
// The routed orchestrator. A fast router model makes one tool-selection
// pass, the selected tools run in parallel, and the responder model streams
// the answer from the collected results. A shared circuit breaker bypasses
// the router model while it is rate limited.

package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"kulturarv/agent/events"
	"kulturarv/llm"
	"kulturarv/logger"
)

const (
	routerMaxTokens      = 150
	responderMaxTokens   = 1500
	responderTemperature = 0.7

	// toolContextLimit truncates each tool output in the synthesis context.
	toolContextLimit = 2000

	// historyLimit is how many previous turns the responder sees.
	historyLimit = 4
)

// RoutedRunner is the single-shot router plus responder orchestrator.
type RoutedRunner struct {
	model    llm.Client
	executor *Executor
	breaker  *RouterBreaker
	log      logger.Logger
}

// NewRoutedRunner creates a routed orchestrator. The breaker is shared
// across requests and must not be nil.
func NewRoutedRunner(model llm.Client, directory ToolDirectory, breaker *RouterBreaker, log logger.Logger) *RoutedRunner {
	if log == nil {
		log = logger.NewNoop()
	}
	return &RoutedRunner{
		model:    model,
		executor: NewExecutor(directory, log),
		breaker:  breaker,
		log:      log,
	}
}

// Run implements Orchestrator.
func (r *RoutedRunner) Run(ctx context.Context, req ChatRequest, sink events.Sink) error {
	start := time.Now()

	toolsUsed := []string{}
	var toolResults []ToolResult

	sink.OnEvent(events.NewStatus("Velger kilder..."))

	tools := EnabledTools(r.executor.directory, req.Sources)
	if len(tools) == 0 {
		sink.OnEvent(events.NewError("Ingen kilder tilgjengelig"))
		return nil
	}

	routerResp, err := r.route(ctx, req.Message, tools)
	if err != nil {
		r.log.Error("Routing failed", err)
		sink.OnEvent(events.NewError(err.Error()))
		return nil
	}

	var fullText string

	if len(routerResp.ToolCalls) == 0 {
		// Router had nothing to look up, answer directly
		sink.OnEvent(events.NewStatus("Genererer svar..."))

		fullText, err = r.model.Stream(ctx, llm.Request{
			Role: llm.RoleResponder,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: responderPrompt},
				{Role: openai.ChatMessageRoleUser, Content: req.Message},
			},
			MaxTokens: responderMaxTokens,
		}, func(token string) {
			sink.OnEvent(events.NewToken(token))
		})
		if err != nil {
			r.log.Error("Direct synthesis failed", err)
			sink.OnEvent(events.NewError(err.Error()))
			return nil
		}
	} else {
		sink.OnEvent(events.NewStatus(fmt.Sprintf("Søker i %d kilder...", len(routerResp.ToolCalls))))

		for _, tc := range routerResp.ToolCalls {
			toolsUsed = append(toolsUsed, tc.Function.Name)
		}

		toolResults, err = r.executor.Execute(ctx, routerResp.ToolCalls, sink)
		if err != nil {
			sink.OnEvent(events.NewError(err.Error()))
			return nil
		}

		sink.OnEvent(events.NewStatus("Genererer svar..."))

		fullText, err = r.model.Stream(ctx, llm.Request{
			Role:        llm.RoleResponder,
			Messages:    r.responderMessages(req, toolResults),
			MaxTokens:   responderMaxTokens,
			Temperature: responderTemperature,
		}, func(token string) {
			sink.OnEvent(events.NewToken(token))
		})
		if err != nil {
			r.log.Error("Synthesis failed", err)
			sink.OnEvent(events.NewError(err.Error()))
			return nil
		}
	}

	sources := ExtractSources(toolResults, fullText, false)
	related := ExtractRelatedQueries(fullText)
	cleaned := CleanResponse(strings.TrimSpace(fullText))

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
			RouterModel:        r.model.ModelFor(llm.RoleRouter),
		},
	}

	sink.OnEvent(events.NewDone(response))
	return nil
}

// route makes the tool-selection call. While the breaker is open the call
// goes straight to the responder model; a rate-limited router call trips the
// breaker and retries on the responder, and a successful router call closes
// the breaker again.
func (r *RoutedRunner) route(ctx context.Context, message string, tools []openai.Tool) (*llm.Response, error) {
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: routerPrompt},
		{Role: openai.ChatMessageRoleUser, Content: message},
	}

	role := llm.RoleRouter
	if r.breaker.Open() {
		r.log.Info("Router circuit breaker open, using responder model for routing")
		role = llm.RoleResponder
	}

	resp, err := r.model.Complete(ctx, llm.Request{
		Role:      role,
		Messages:  messages,
		Tools:     tools,
		MaxTokens: routerMaxTokens,
	})
	if err == nil {
		if role == llm.RoleRouter {
			r.breaker.Reset()
		}
		return resp, nil
	}

	if role == llm.RoleRouter && llm.IsRateLimit(err) {
		r.log.Warn("Router model rate limited, falling back to responder",
			logger.Error(err))
		r.breaker.Trip()

		return r.model.Complete(ctx, llm.Request{
			Role:      llm.RoleResponder,
			Messages:  messages,
			Tools:     tools,
			MaxTokens: routerMaxTokens,
		})
	}

	return nil, err
}

// responderMessages builds the synthesis conversation: system prompt, recent
// history oldest first, the question, then the search results as a user turn.
func (r *RoutedRunner) responderMessages(req ChatRequest, results []ToolResult) []openai.ChatCompletionMessage {
	contextParts := make([]string, 0, len(results))
	for _, result := range results {
		output := result.Output
		if len([]rune(output)) > toolContextLimit {
			output = string([]rune(output)[:toolContextLimit])
		}
		contextParts = append(contextParts, fmt.Sprintf("## %s\n%s", result.Tool, output))
	}
	searchContext := strings.Join(contextParts, "\n\n---\n\n")

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: responderPrompt},
	}

	history := req.ConversationHistory
	if len(history) > historyLimit {
		history = history[len(history)-historyLimit:]
	}
	for _, h := range history {
		messages = append(messages, openai.ChatCompletionMessage{Role: h.Role, Content: h.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role: openai.ChatMessageRoleUser, Content: req.Message,
	})

	messages = append(messages,
		openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleAssistant,
			Content: "I've searched the sources. Here's what I found:",
		},
		openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: fmt.Sprintf("Search results:\n\n%s\n\nPlease synthesize this into a helpful response.", searchContext),
		},
	)
	return messages
}
