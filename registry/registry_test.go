package registry

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"kulturarv/logger"
)

func TestRegisterAndCall(t *testing.T) {
	r := New(logger.NewNoop())

	err := r.Register("echo", "Echoes the input", json.RawMessage(`{"type":"object","properties":{"text":{"type":"string"}}}`),
		func(ctx context.Context, args map[string]any) (string, error) {
			text, _ := args["text"].(string)
			return "echo: " + text, nil
		})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	out, err := r.Call(context.Background(), "echo", map[string]any{"text": "hei"})
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if out != "echo: hei" {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	r := New(nil)
	handler := func(ctx context.Context, args map[string]any) (string, error) { return "", nil }

	if err := r.Register("dup", "first", nil, handler); err != nil {
		t.Fatalf("first Register failed: %v", err)
	}
	if err := r.Register("dup", "second", nil, handler); err == nil {
		t.Error("expected error registering duplicate tool name")
	}
}

func TestCallUnknownTool(t *testing.T) {
	r := New(nil)
	_, err := r.Call(context.Background(), "missing", nil)
	if err == nil {
		t.Fatal("expected error for unknown tool")
	}
	if !strings.Contains(err.Error(), "unknown tool") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestCallRecoversPanic(t *testing.T) {
	r := New(nil)
	err := r.Register("boom", "Panics", nil,
		func(ctx context.Context, args map[string]any) (string, error) {
			panic("kaboom")
		})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	_, err = r.Call(context.Background(), "boom", nil)
	if err == nil {
		t.Fatal("expected error from panicking handler")
	}
	if !strings.Contains(err.Error(), "kaboom") {
		t.Errorf("panic value not propagated: %v", err)
	}
}

func TestListPreservesRegistrationOrder(t *testing.T) {
	r := New(nil)
	handler := func(ctx context.Context, args map[string]any) (string, error) { return "", nil }

	for _, name := range []string{"c-tool", "a-tool", "b-tool"} {
		if err := r.Register(name, "", nil, handler); err != nil {
			t.Fatalf("Register %s failed: %v", name, err)
		}
	}

	defs := r.List()
	if len(defs) != 3 {
		t.Fatalf("expected 3 tools, got %d", len(defs))
	}
	got := []string{defs[0].Name, defs[1].Name, defs[2].Name}
	want := []string{"c-tool", "a-tool", "b-tool"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: got %s, want %s", i, got[i], want[i])
		}
	}

	names := r.Names()
	if names[0] != "a-tool" || names[1] != "b-tool" || names[2] != "c-tool" {
		t.Errorf("Names not sorted: %v", names)
	}
}

func TestRegisterDefaultsEmptySchema(t *testing.T) {
	r := New(nil)
	err := r.Register("bare", "No schema", nil,
		func(ctx context.Context, args map[string]any) (string, error) { return "ok", nil })
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	tool, ok := r.Get("bare")
	if !ok {
		t.Fatal("tool not found after Register")
	}
	if tool.Def.Name != "bare" {
		t.Errorf("unexpected tool name: %s", tool.Def.Name)
	}
}
