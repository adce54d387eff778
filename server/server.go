// Package server exposes the chat agent over HTTP: a streaming SSE endpoint,
// a blocking JSON endpoint and the usual health and info probes.
package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"kulturarv/agent"
	"kulturarv/agent/events"
	"kulturarv/config"
	"kulturarv/logger"
	"kulturarv/registry"
)

const rateLimitWindow = time.Hour

type Server struct {
	settings     *config.Settings
	registry     *registry.Registry
	orchestrator agent.Orchestrator
	limiter      *RateLimiter
	log          logger.Logger
}

func New(settings *config.Settings, reg *registry.Registry, orch agent.Orchestrator, log logger.Logger) *Server {
	if log == nil {
		log = logger.NewNoop()
	}
	return &Server{
		settings:     settings,
		registry:     reg,
		orchestrator: orch,
		limiter:      NewRateLimiter(settings.ChatRateLimitPerHour, rateLimitWindow),
		log:          log,
	}
}

// Handler builds the full middleware and routing chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("POST /chat", s.handleChat)
	mux.HandleFunc("POST /chat/complete", s.handleChatComplete)

	return s.withRequestID(s.withAuth(s.withRateLimit(mux)))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":        s.settings.ServerName,
		"version":     s.settings.ServerVersion,
		"description": "Chat agent for Norwegian cultural heritage sources",
		"endpoints": map[string]string{
			"health":        "/health",
			"chat":          "/chat",
			"chat_complete": "/chat/complete",
		},
		"tools_available": s.registry.Len(),
		"strategy":        s.settings.Strategy,
	})
}

// handleChat streams the agent run as server-sent events, one event per
// lifecycle step, ending with done or error.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	req, err := decodeChatRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "streaming unsupported"})
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	stream := events.NewStream(16)
	go func() {
		defer stream.Close()
		if err := s.orchestrator.Run(r.Context(), req, stream); err != nil {
			s.log.Error("Chat run failed", err,
				logger.String("request_id", RequestID(r.Context())))
		}
	}()

	for ev := range stream.Events() {
		payload, err := json.Marshal(ev)
		if err != nil {
			s.log.Error("Event marshal failed", err)
			continue
		}
		fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.EventType(), payload)
		flusher.Flush()
	}
}

// handleChatComplete runs the agent to completion and returns the final
// structured response.
func (s *Server) handleChatComplete(w http.ResponseWriter, r *http.Request) {
	req, err := decodeChatRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	resp, err := agent.Chat(r.Context(), s.orchestrator, req)
	if err != nil {
		s.log.Error("Chat failed", err,
			logger.String("request_id", RequestID(r.Context())))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func decodeChatRequest(r *http.Request) (agent.ChatRequest, error) {
	var req agent.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, fmt.Errorf("invalid request body: %w", err)
	}
	if req.Message == "" {
		return req, fmt.Errorf("'message' is required")
	}
	return req, nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		// Headers are already out, nothing sensible left to do.
		return
	}
}
