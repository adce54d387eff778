package agent

import (
	"testing"
	"time"
)

func TestRouterBreaker(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	b := NewRouterBreaker()
	b.now = func() time.Time { return now }

	if b.Open() {
		t.Fatal("new breaker should be closed")
	}

	b.Trip()
	if !b.Open() {
		t.Fatal("breaker should be open after Trip")
	}

	now = now.Add(4 * time.Minute)
	if !b.Open() {
		t.Error("breaker should stay open within the cool-down")
	}

	now = now.Add(2 * time.Minute)
	if b.Open() {
		t.Error("breaker should close after the cool-down expires")
	}
}

func TestRouterBreakerReset(t *testing.T) {
	b := NewRouterBreaker()
	b.Trip()
	b.Reset()
	if b.Open() {
		t.Error("breaker should be closed after Reset")
	}
}
