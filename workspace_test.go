package shotstyle

import (
	"testing"
	"time"

	"github.com/eringen/shotstyle/editor"
	"github.com/eringen/shotstyle/render"
)

func newTestWorkspace(t *testing.T, ttl time.Duration) (*Workspace, *time.Time) {
	t.Helper()
	r, err := render.NewRenderer(render.DefaultStyle())
	if err != nil {
		t.Fatal(err)
	}
	w := NewWorkspace(ttl, func() *editor.Editor { return editor.New(r) })
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	w.now = func() time.Time { return now }
	return w, &now
}

func TestWorkspaceGetCreatesOnce(t *testing.T) {
	w, _ := newTestWorkspace(t, time.Minute)
	a := w.Get("alpha")
	if a == nil {
		t.Fatal("Get returned nil")
	}
	if w.Get("alpha") != a {
		t.Fatal("Get returned a different editor for the same id")
	}
	if w.Get("beta") == a {
		t.Fatal("different ids share an editor")
	}
	if w.Len() != 2 {
		t.Fatalf("Len = %d, want 2", w.Len())
	}
}

func TestWorkspaceSweepDropsIdle(t *testing.T) {
	w, now := newTestWorkspace(t, time.Minute)
	w.Get("idle")
	*now = now.Add(40 * time.Second)
	w.Get("active")
	*now = now.Add(30 * time.Second)

	if removed := w.Sweep(); removed != 1 {
		t.Fatalf("Sweep removed %d, want 1", removed)
	}
	if _, ok := w.Lookup("idle"); ok {
		t.Fatal("idle editor survived sweep")
	}
	if _, ok := w.Lookup("active"); !ok {
		t.Fatal("active editor was swept")
	}
}

func TestWorkspaceLookupDoesNotCreate(t *testing.T) {
	w, _ := newTestWorkspace(t, time.Minute)
	if _, ok := w.Lookup("nobody"); ok {
		t.Fatal("Lookup found an editor that was never created")
	}
	if w.Len() != 0 {
		t.Fatalf("Len = %d after Lookup, want 0", w.Len())
	}
}

func TestWorkspaceSweeperStops(t *testing.T) {
	w, _ := newTestWorkspace(t, time.Minute)
	stop := w.StartSweeper(10 * time.Millisecond)
	stop()
	stop()
}
