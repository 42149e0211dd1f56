package services

import (
	"context"
	"reflect"
	"testing"
)

func TestFirstListAutoActivates(t *testing.T) {
	backend := newKMBackend()
	backend.seed("a", "A")
	backend.seed("b", "B")
	env := newTestEnv(t, backend.mux)
	ctx := context.Background()

	if _, err := env.state.Connections.List(ctx); err != nil {
		t.Fatalf("List err: %v", err)
	}

	got := env.state.Activation.ActiveIDs()
	if !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("first list should activate everything, got %v", got)
	}
}

func TestSecondListDoesNotReactivate(t *testing.T) {
	backend := newKMBackend()
	backend.seed("a", "A")
	backend.seed("b", "B")
	env := newTestEnv(t, backend.mux)
	ctx := context.Background()

	if _, err := env.state.Connections.List(ctx); err != nil {
		t.Fatalf("List err: %v", err)
	}
	env.state.Activation.ToggleActive("b")
	if got := env.state.Activation.ActiveIDs(); !reflect.DeepEqual(got, []string{"a"}) {
		t.Fatalf("expected only a active, got %v", got)
	}

	if _, err := env.state.Connections.List(ctx); err != nil {
		t.Fatalf("second List err: %v", err)
	}
	if got := env.state.Activation.ActiveIDs(); !reflect.DeepEqual(got, []string{"a"}) {
		t.Fatalf("refresh must not undo a deliberate deactivation, got %v", got)
	}
}

func TestCreateActivatesNewConnection(t *testing.T) {
	backend := newKMBackend()
	backend.seed("a", "A")
	env := newTestEnv(t, backend.mux)
	ctx := context.Background()

	if _, err := env.state.Connections.List(ctx); err != nil {
		t.Fatalf("List err: %v", err)
	}
	conn, err := env.state.Connections.Create(ctx, credsOf("Fresh"))
	if err != nil {
		t.Fatalf("Create err: %v", err)
	}

	got := env.state.Activation.ActiveIDs()
	found := false
	for _, id := range got {
		if id == conn.ID {
			found = true
		}
	}
	if !found {
		t.Fatalf("new connection %s should be active, got %v", conn.ID, got)
	}
}

func TestDeletePrunesActiveSet(t *testing.T) {
	backend := newKMBackend()
	backend.seed("a", "A")
	backend.seed("b", "B")
	env := newTestEnv(t, backend.mux)
	ctx := context.Background()

	if _, err := env.state.Connections.List(ctx); err != nil {
		t.Fatalf("List err: %v", err)
	}
	if err := env.state.Connections.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete err: %v", err)
	}

	if got := env.state.Activation.ActiveIDs(); !reflect.DeepEqual(got, []string{"b"}) {
		t.Fatalf("deleted id must leave the active set, got %v", got)
	}
}

func TestToggleUnknownIDIgnored(t *testing.T) {
	backend := newKMBackend()
	backend.seed("a", "A")
	env := newTestEnv(t, backend.mux)
	ctx := context.Background()

	if _, err := env.state.Connections.List(ctx); err != nil {
		t.Fatalf("List err: %v", err)
	}

	if env.state.Activation.ToggleActive("ghost") {
		t.Fatal("unknown id must not become active")
	}
	if got := env.state.Activation.ActiveIDs(); !reflect.DeepEqual(got, []string{"a"}) {
		t.Fatalf("active set changed by unknown toggle: %v", got)
	}
}

func TestSetActiveIntersectsWithDirectory(t *testing.T) {
	backend := newKMBackend()
	backend.seed("a", "A")
	backend.seed("b", "B")
	env := newTestEnv(t, backend.mux)
	ctx := context.Background()

	if _, err := env.state.Connections.List(ctx); err != nil {
		t.Fatalf("List err: %v", err)
	}

	env.state.Activation.SetActive([]string{"b", "ghost"})
	if got := env.state.Activation.ActiveIDs(); !reflect.DeepEqual(got, []string{"b"}) {
		t.Fatalf("expected only b active, got %v", got)
	}
}

func TestResolveForSend(t *testing.T) {
	backend := newKMBackend()
	backend.seed("a", "A")
	backend.seed("b", "B")
	env := newTestEnv(t, backend.mux)
	ctx := context.Background()

	if _, err := env.state.Connections.List(ctx); err != nil {
		t.Fatalf("List err: %v", err)
	}

	// Disabled: augmentation is omitted no matter what is active.
	if ids := env.state.Activation.ResolveForSend(); ids != nil {
		t.Fatalf("disabled toggle must resolve to nil, got %v", ids)
	}

	if err := env.state.Activation.SetEnabled(true); err != nil {
		t.Fatalf("SetEnabled err: %v", err)
	}
	if ids := env.state.Activation.ResolveForSend(); !reflect.DeepEqual(ids, []string{"a", "b"}) {
		t.Fatalf("expected both ids, got %v", ids)
	}

	// Enabled but nothing active also resolves to nil.
	env.state.Activation.SetActive(nil)
	if ids := env.state.Activation.ResolveForSend(); ids != nil {
		t.Fatalf("empty active set must resolve to nil, got %v", ids)
	}
}

func TestHasUsableSelection(t *testing.T) {
	backend := newKMBackend()
	backend.seed("a", "A")
	env := newTestEnv(t, backend.mux)
	ctx := context.Background()

	if _, err := env.state.Connections.List(ctx); err != nil {
		t.Fatalf("List err: %v", err)
	}
	if env.state.Activation.HasUsableSelection() {
		t.Fatal("no selections yet, should not be usable")
	}

	if _, err := env.state.Connections.UpdateSelections(ctx, "a", selectionOf([]string{"docs"}, nil)); err != nil {
		t.Fatalf("UpdateSelections err: %v", err)
	}
	if !env.state.Activation.HasUsableSelection() {
		t.Fatal("active connection with a selected collection should be usable")
	}
}
