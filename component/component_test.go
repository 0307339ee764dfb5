package component

import (
	"context"
	"fmt"
	"testing"
)

// mockComponent implements Component for testing.
type mockComponent struct {
	name       string
	startErr   error
	stopErr    error
	health     Health
	startOrder *[]string
	stopOrder  *[]string
}

func (m *mockComponent) Name() string { return m.name }
func (m *mockComponent) Start(ctx context.Context) error {
	if m.startOrder != nil {
		*m.startOrder = append(*m.startOrder, m.name)
	}
	return m.startErr
}
func (m *mockComponent) Stop(ctx context.Context) error {
	if m.stopOrder != nil {
		*m.stopOrder = append(*m.stopOrder, m.name)
	}
	return m.stopErr
}
func (m *mockComponent) Health(ctx context.Context) Health {
	return m.health
}

func TestRegisterDuplicate(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(&mockComponent{name: "registry"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := r.Register(&mockComponent{name: "registry"}); err == nil {
		t.Error("expected error for duplicate registration")
	}
}

func TestStartStopOrdering(t *testing.T) {
	var started, stopped []string
	r := NewRegistry()
	r.Register(&mockComponent{name: "registry", startOrder: &started, stopOrder: &stopped})
	r.Register(&mockComponent{name: "server", startOrder: &started, stopOrder: &stopped})

	ctx := context.Background()
	if err := r.StartAll(ctx); err != nil {
		t.Fatalf("StartAll failed: %v", err)
	}
	if err := r.StopAll(ctx); err != nil {
		t.Fatalf("StopAll failed: %v", err)
	}

	if len(started) != 2 || started[0] != "registry" || started[1] != "server" {
		t.Errorf("unexpected start order: %v", started)
	}
	if len(stopped) != 2 || stopped[0] != "server" || stopped[1] != "registry" {
		t.Errorf("expected reverse stop order, got %v", stopped)
	}
}

func TestStartAllAbortsOnFailure(t *testing.T) {
	var started []string
	r := NewRegistry()
	r.Register(&mockComponent{name: "a", startOrder: &started})
	r.Register(&mockComponent{name: "b", startOrder: &started, startErr: fmt.Errorf("bind failed")})
	r.Register(&mockComponent{name: "c", startOrder: &started})

	if err := r.StartAll(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if len(started) != 2 {
		t.Errorf("components after the failure must not start, got %v", started)
	}
}

func TestStopAllSkipsUnstarted(t *testing.T) {
	var stopped []string
	r := NewRegistry()
	r.Register(&mockComponent{name: "never-started", stopOrder: &stopped})

	if err := r.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll failed: %v", err)
	}
	if len(stopped) != 0 {
		t.Errorf("unstarted component must not be stopped, got %v", stopped)
	}
}

func TestStopAllCollectsErrors(t *testing.T) {
	r := NewRegistry()
	var stopped []string
	r.Register(&mockComponent{name: "a", stopOrder: &stopped, stopErr: fmt.Errorf("drain failed")})
	r.Register(&mockComponent{name: "b", stopOrder: &stopped})

	ctx := context.Background()
	r.StartAll(ctx)
	if err := r.StopAll(ctx); err == nil {
		t.Error("expected aggregated stop error")
	}
	if len(stopped) != 2 {
		t.Errorf("all components must be attempted, got %v", stopped)
	}
}

func TestHealthAll(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockComponent{name: "registry", health: Health{Name: "registry", Status: StatusHealthy}})
	r.Register(&mockComponent{name: "server", health: Health{Name: "server", Status: StatusDegraded}})

	results := r.HealthAll(context.Background())
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[1].Status != StatusDegraded {
		t.Errorf("expected degraded, got %s", results[1].Status)
	}
}

func TestGet(t *testing.T) {
	r := NewRegistry()
	c := &mockComponent{name: "registry"}
	r.Register(c)

	if got := r.Get("registry"); got != c {
		t.Error("expected registered component")
	}
	if got := r.Get("missing"); got != nil {
		t.Error("expected nil for unknown name")
	}
}
