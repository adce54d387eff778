package agent

import (
	"context"
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"kulturarv/agent/events"
	"kulturarv/llm"
)

func TestRunnerIterativeFlow(t *testing.T) {
	dir := newFakeDirectory("snl-search", "wikipedia-search")
	model := &fakeModel{
		completions: []*llm.Response{
			// Round 1: model asks for two tools
			{ToolCalls: []openai.ToolCall{
				call("1", "snl-search", toolCallJSON("Nidarosdomen")),
				call("2", "wikipedia-search", toolCallJSON("Nidaros Cathedral")),
			}},
			// Round 2: model is satisfied
			{Content: "done"},
		},
		streamText: "**Nidarosdomen** er Norges nasjonalhelligdom fra output.",
	}

	r := NewRunner(model, dir, nil)
	var collector events.Collector

	if err := r.Run(context.Background(), ChatRequest{Message: "Fortell om Nidarosdomen"}, &collector); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	evs := collector.Events()
	if len(evs) == 0 {
		t.Fatal("no events emitted")
	}

	// First event is a status, last is done
	if _, ok := evs[0].(events.Status); !ok {
		t.Errorf("first event: %T", evs[0])
	}
	done, ok := evs[len(evs)-1].(events.Done)
	if !ok {
		t.Fatalf("last event: %T", evs[len(evs)-1])
	}

	resp := done.Response.(*ChatResponse)
	if resp.Response.Text == "" {
		t.Error("empty response text")
	}
	if len(resp.Metadata.ToolsUsed) != 2 {
		t.Errorf("tools used = %v", resp.Metadata.ToolsUsed)
	}
	if resp.Metadata.Model != "gpt-4o" {
		t.Errorf("model = %q", resp.Metadata.Model)
	}

	// Token events must appear before done
	sawToken := false
	for _, ev := range evs {
		if _, ok := ev.(events.Token); ok {
			sawToken = true
		}
	}
	if !sawToken {
		t.Error("no token events emitted")
	}

	// The synthesis conversation must include the tool outputs
	if len(model.streamCalls) != 1 {
		t.Fatalf("stream calls = %d", len(model.streamCalls))
	}
	foundToolMsg := false
	for _, m := range model.streamCalls[0].Messages {
		if m.Role == openai.ChatMessageRoleTool && m.Content == "output from snl-search" {
			foundToolMsg = true
		}
	}
	if !foundToolMsg {
		t.Error("tool output missing from synthesis messages")
	}
}

func TestRunnerForceSynthesisAfterRoundLimit(t *testing.T) {
	dir := newFakeDirectory("snl-search")

	// Model always wants another tool call
	greedy := &llm.Response{ToolCalls: []openai.ToolCall{
		call("1", "snl-search", toolCallJSON("mer")),
	}}
	completions := make([]*llm.Response, maxToolRounds+5)
	for i := range completions {
		completions[i] = greedy
	}
	model := &fakeModel{completions: completions, streamText: "Oppsummering."}

	r := NewRunner(model, dir, nil)
	var collector events.Collector

	if err := r.Run(context.Background(), ChatRequest{Message: "spør"}, &collector); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(model.completeCalls) != maxToolRounds {
		t.Errorf("Complete called %d times, want %d", len(model.completeCalls), maxToolRounds)
	}

	done, ok := collector.Events()[len(collector.Events())-1].(events.Done)
	if !ok {
		t.Fatal("missing done event")
	}
	resp := done.Response.(*ChatResponse)
	if len(resp.Metadata.ToolsUsed) != maxToolRounds {
		t.Errorf("tools used = %d", len(resp.Metadata.ToolsUsed))
	}
}

func TestRunnerEmptyStreamFallsBackToCompletion(t *testing.T) {
	dir := newFakeDirectory("snl-search")
	model := &fakeModel{
		completions: []*llm.Response{
			{Content: "Nidarosdomen er Norges nasjonalhelligdom."},
		},
		streamText: "",
	}

	r := NewRunner(model, dir, nil)
	var collector events.Collector

	if err := r.Run(context.Background(), ChatRequest{Message: "Fortell om Nidarosdomen"}, &collector); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	evs := collector.Events()
	done, ok := evs[len(evs)-1].(events.Done)
	if !ok {
		t.Fatalf("last event: %T", evs[len(evs)-1])
	}
	resp := done.Response.(*ChatResponse)
	if resp.Response.Text != "Nidarosdomen er Norges nasjonalhelligdom." {
		t.Errorf("text = %q", resp.Response.Text)
	}

	// The fallback text must still reach the stream as a token event
	sawToken := false
	for _, ev := range evs {
		if tok, ok := ev.(events.Token); ok && tok.Content != "" {
			sawToken = true
		}
	}
	if !sawToken {
		t.Error("fallback text not emitted as a token event")
	}
}

func TestRunnerNoToolsAvailableEmitsError(t *testing.T) {
	dir := newFakeDirectory()
	model := &fakeModel{streamText: "skal ikke brukes"}

	r := NewRunner(model, dir, nil)
	var collector events.Collector

	if err := r.Run(context.Background(), ChatRequest{Message: "spør"}, &collector); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	evs := collector.Events()
	if _, ok := evs[len(evs)-1].(events.Error); !ok {
		t.Errorf("last event should be error, got %T", evs[len(evs)-1])
	}
	if len(model.completeCalls) != 0 || len(model.streamCalls) != 0 {
		t.Errorf("model should not be called, got %d complete and %d stream calls",
			len(model.completeCalls), len(model.streamCalls))
	}
}

func TestRunnerModelErrorEmitsErrorEvent(t *testing.T) {
	dir := newFakeDirectory("snl-search")
	model := &fakeModel{completionErrs: []error{errBoom}}

	r := NewRunner(model, dir, nil)
	var collector events.Collector

	if err := r.Run(context.Background(), ChatRequest{Message: "spør"}, &collector); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	evs := collector.Events()
	if _, ok := evs[len(evs)-1].(events.Error); !ok {
		t.Errorf("last event should be error, got %T", evs[len(evs)-1])
	}
}

func TestRunnerHistoryInMessages(t *testing.T) {
	dir := newFakeDirectory("snl-search")
	model := &fakeModel{
		completions: []*llm.Response{{Content: "svar"}},
		streamText:  "svar",
	}

	r := NewRunner(model, dir, nil)
	req := ChatRequest{
		Message: "Og hva med Bryggen?",
		ConversationHistory: []HistoryMessage{
			{Role: "user", Content: "Fortell om Bergen"},
			{Role: "assistant", Content: "Bergen er en by."},
		},
	}

	if err := r.Run(context.Background(), req, events.Discard); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	msgs := model.completeCalls[0].Messages
	if len(msgs) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(msgs))
	}
	if msgs[0].Role != openai.ChatMessageRoleSystem {
		t.Errorf("first message role = %s", msgs[0].Role)
	}
	if msgs[1].Content != "Fortell om Bergen" || msgs[2].Content != "Bergen er en by." {
		t.Error("history not passed through in order")
	}
	if msgs[3].Content != "Og hva med Bryggen?" {
		t.Errorf("last message = %q", msgs[3].Content)
	}
}

func TestChatHelperCollectsResponse(t *testing.T) {
	dir := newFakeDirectory("snl-search")
	model := &fakeModel{
		completions: []*llm.Response{{Content: "svar"}},
		streamText:  "Ferdig svar.",
	}

	resp, err := Chat(context.Background(), NewRunner(model, dir, nil), ChatRequest{Message: "hei"})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if resp.Response.Text != "Ferdig svar." {
		t.Errorf("text = %q", resp.Response.Text)
	}
}

func TestChatHelperPropagatesError(t *testing.T) {
	dir := newFakeDirectory("snl-search")
	model := &fakeModel{completionErrs: []error{errBoom}}

	_, err := Chat(context.Background(), NewRunner(model, dir, nil), ChatRequest{Message: "hei"})
	if err == nil {
		t.Fatal("expected error")
	}
}
