// Package events defines the chat lifecycle event stream. Events are emitted
// in order: status and tool events while the agent works, token events during
// synthesis, then exactly one done or error event.
package events

// Type identifies an event kind.
type Type string

const (
	TypeStatus    Type = "status"
	TypeToolStart Type = "tool_start"
	TypeToolEnd   Type = "tool_end"
	TypeToken     Type = "token"
	TypeDone      Type = "done"
	TypeError     Type = "error"
)

// Event is a single chat lifecycle event.
type Event interface {
	EventType() Type
}

// Status is a human-readable progress update.
type Status struct {
	Type    Type   `json:"type"`
	Message string `json:"message"`
}

func (Status) EventType() Type { return TypeStatus }

// NewStatus creates a status event.
func NewStatus(message string) Status {
	return Status{Type: TypeStatus, Message: message}
}

// ToolStart announces that a tool call is about to execute.
type ToolStart struct {
	Type      Type           `json:"type"`
	Tool      string         `json:"tool"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

func (ToolStart) EventType() Type { return TypeToolStart }

// NewToolStart creates a tool_start event.
func NewToolStart(tool string, arguments map[string]any) ToolStart {
	return ToolStart{Type: TypeToolStart, Tool: tool, Arguments: arguments}
}

// ToolEnd reports a finished tool call with a short output preview.
type ToolEnd struct {
	Type    Type   `json:"type"`
	Tool    string `json:"tool"`
	Success bool   `json:"success"`
	Preview string `json:"preview,omitempty"`
}

func (ToolEnd) EventType() Type { return TypeToolEnd }

// NewToolEnd creates a tool_end event.
func NewToolEnd(tool string, success bool, preview string) ToolEnd {
	return ToolEnd{Type: TypeToolEnd, Tool: tool, Success: success, Preview: preview}
}

// Token carries one streamed content delta of the answer.
type Token struct {
	Type    Type   `json:"type"`
	Content string `json:"content"`
}

func (Token) EventType() Type { return TypeToken }

// NewToken creates a token event.
func NewToken(content string) Token {
	return Token{Type: TypeToken, Content: content}
}

// Done carries the final structured chat response.
type Done struct {
	Type     Type `json:"type"`
	Response any  `json:"response"`
}

func (Done) EventType() Type { return TypeDone }

// NewDone creates a done event.
func NewDone(response any) Done {
	return Done{Type: TypeDone, Response: response}
}

// Error reports a failed request. It is terminal like Done.
type Error struct {
	Type    Type   `json:"type"`
	Message string `json:"message"`
}

func (Error) EventType() Type { return TypeError }

// NewError creates an error event.
func NewError(message string) Error {
	return Error{Type: TypeError, Message: message}
}
