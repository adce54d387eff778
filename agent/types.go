// Package agent contains the chat orchestration engine: source filtering,
// the two orchestrator strategies, parallel tool execution, citation
// extraction, and response cleaning.
package agent

// ChatRequest is an incoming chat message with its context.
type ChatRequest struct {
	Message string `json:"message"`

	// Sources restricts which providers the agent may consult. Valid values
	// are "wikipedia", "snl", and "riksantikvaren". Empty enables all.
	Sources []string `json:"sources"`

	// ConversationHistory holds previous turns, oldest first.
	ConversationHistory []HistoryMessage `json:"conversation_history"`
}

// HistoryMessage is one previous conversation turn.
type HistoryMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// SourceReference is a citation attached to a response.
type SourceReference struct {
	Title    string `json:"title"`
	URL      string `json:"url"`
	Provider string `json:"provider"`
	Snippet  string `json:"snippet,omitempty"`
}

// Location is a geographic place mentioned in a response.
type Location struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
	Type string  `json:"type"`
}

// ResponseContent is the main answer text.
type ResponseContent struct {
	Text    string `json:"text"`
	Summary string `json:"summary,omitempty"`
}

// Metadata describes how a response was produced.
type Metadata struct {
	ToolsUsed          []string `json:"tools_used"`
	ProvidersConsulted []string `json:"providers_consulted"`
	ProcessingTimeMS   int64    `json:"processing_time_ms"`
	Model              string   `json:"model"`
	RouterModel        string   `json:"router_model,omitempty"`
}

// ChatResponse is the final structured answer.
type ChatResponse struct {
	Response       ResponseContent   `json:"response"`
	Sources        []SourceReference `json:"sources"`
	Locations      []Location        `json:"locations"`
	RelatedQueries []string          `json:"related_queries"`
	Metadata       Metadata          `json:"metadata"`
}

// ToolResult is the outcome of one tool call, kept for citation extraction
// and synthesis context.
type ToolResult struct {
	Tool      string
	Arguments map[string]any
	Output    string
	Succeeded bool
}
