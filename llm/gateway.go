// Package llm is the model gateway. It wraps the OpenAI chat completions API
// (direct or Azure) behind a small interface with two model roles: a fast
// router model for tool selection and a quality responder model for answers.
package llm

import (
	"context"
	"fmt"
	"io"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"kulturarv/config"
	"kulturarv/logger"
)

// Role selects which configured model a request runs on.
type Role string

const (
	// RoleRouter is the fast model used for tool selection.
	RoleRouter Role = "router"
	// RoleResponder is the quality model used for synthesis.
	RoleResponder Role = "responder"
)

// Request is a chat completion request against a model role.
type Request struct {
	Role        Role
	Messages    []openai.ChatCompletionMessage
	Tools       []openai.Tool
	MaxTokens   int
	Temperature float32
}

// Response is the relevant part of a chat completion.
type Response struct {
	Content      string
	ToolCalls    []openai.ToolCall
	FinishReason string
}

// Client is the model gateway interface the orchestrators depend on.
type Client interface {
	// Complete performs a non-streaming chat completion. Tools are offered
	// with tool_choice auto when present.
	Complete(ctx context.Context, req Request) (*Response, error)

	// Stream performs a streaming chat completion, invoking onToken for each
	// content delta, and returns the accumulated text.
	Stream(ctx context.Context, req Request, onToken func(token string)) (string, error)

	// ModelFor resolves the model ID a role runs on, for response metadata.
	ModelFor(role Role) string
}

// Gateway implements Client on top of go-openai.
type Gateway struct {
	client         *openai.Client
	routerModel    string
	responderModel string
	log            logger.Logger
}

// New builds a gateway from settings. Azure OpenAI is used when an Azure
// endpoint is configured; the router deployment name is derived from the main
// deployment (gpt-4o becomes gpt-4o-mini) when possible.
func New(settings *config.Settings, log logger.Logger) (*Gateway, error) {
	if settings.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("openai api key is not configured")
	}
	if log == nil {
		log = logger.NewNoop()
	}

	g := &Gateway{log: log}

	if settings.UseAzure() {
		cfg := openai.DefaultAzureConfig(settings.OpenAIAPIKey, settings.AzureOpenAIEndpoint)
		if settings.AzureOpenAIAPIVersion != "" {
			cfg.APIVersion = settings.AzureOpenAIAPIVersion
		}
		// On Azure the model name is the deployment name, pass it through as-is
		cfg.AzureModelMapperFunc = func(model string) string { return model }
		g.client = openai.NewClientWithConfig(cfg)

		deployment := settings.AzureOpenAIDeployment
		g.responderModel = deployment
		g.routerModel = deriveRouterDeployment(deployment)
		log.Info("Model gateway using Azure OpenAI",
			logger.String("endpoint", settings.AzureOpenAIEndpoint),
			logger.String("responder", g.responderModel),
			logger.String("router", g.routerModel))
	} else {
		g.client = openai.NewClient(settings.OpenAIAPIKey)
		g.responderModel = settings.ResponderModel
		g.routerModel = settings.RouterModel
		log.Info("Model gateway using OpenAI",
			logger.String("responder", g.responderModel),
			logger.String("router", g.routerModel))
	}

	return g, nil
}

// deriveRouterDeployment guesses a fast deployment name from the main one.
// Deployments that already look like a mini model, or that do not follow the
// gpt-4o naming, route through the main deployment.
func deriveRouterDeployment(deployment string) string {
	if strings.Contains(deployment, "gpt-4o") && !strings.Contains(deployment, "mini") {
		return strings.Replace(deployment, "gpt-4o", "gpt-4o-mini", 1)
	}
	return deployment
}

// ModelFor resolves the model ID used for a role.
func (g *Gateway) ModelFor(role Role) string {
	if role == RoleRouter {
		return g.routerModel
	}
	return g.responderModel
}

func (g *Gateway) buildRequest(req Request, stream bool) openai.ChatCompletionRequest {
	r := openai.ChatCompletionRequest{
		Model:       g.ModelFor(req.Role),
		Messages:    req.Messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		Stream:      stream,
	}
	if len(req.Tools) > 0 {
		r.Tools = req.Tools
		r.ToolChoice = "auto"
	}
	return r
}

// Complete implements Client.
func (g *Gateway) Complete(ctx context.Context, req Request) (*Response, error) {
	resp, err := g.client.CreateChatCompletion(ctx, g.buildRequest(req, false))
	if err != nil {
		return nil, fmt.Errorf("chat completion (%s): %w", req.Role, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion (%s): empty response", req.Role)
	}

	choice := resp.Choices[0]
	return &Response{
		Content:      choice.Message.Content,
		ToolCalls:    choice.Message.ToolCalls,
		FinishReason: string(choice.FinishReason),
	}, nil
}

// Stream implements Client.
func (g *Gateway) Stream(ctx context.Context, req Request, onToken func(token string)) (string, error) {
	stream, err := g.client.CreateChatCompletionStream(ctx, g.buildRequest(req, true))
	if err != nil {
		return "", fmt.Errorf("chat completion stream (%s): %w", req.Role, err)
	}
	defer stream.Close()

	var b strings.Builder
	for {
		chunk, err := stream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			return b.String(), fmt.Errorf("chat completion stream (%s): %w", req.Role, err)
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		token := chunk.Choices[0].Delta.Content
		if token == "" {
			continue
		}
		b.WriteString(token)
		if onToken != nil {
			onToken(token)
		}
	}
	return b.String(), nil
}
