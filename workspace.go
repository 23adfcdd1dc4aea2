package shotstyle

import (
	"sync"
	"time"

	"github.com/eringen/shotstyle/editor"
)

// Workspace is an in-memory registry of per-session editors. Editors not
// touched for ttl are dropped by Sweep.
type Workspace struct {
	mu        sync.RWMutex
	editors   map[string]*workspaceEntry
	ttl       time.Duration
	newEditor func() *editor.Editor
	now       func() time.Time
}

type workspaceEntry struct {
	editor   *editor.Editor
	lastSeen time.Time
}

// NewWorkspace creates a Workspace that builds editors with newEditor.
func NewWorkspace(ttl time.Duration, newEditor func() *editor.Editor) *Workspace {
	return &Workspace{
		editors:   make(map[string]*workspaceEntry),
		ttl:       ttl,
		newEditor: newEditor,
		now:       time.Now,
	}
}

// Get returns the editor for id, creating it on first use, and marks it as
// recently used.
func (w *Workspace) Get(id string) *editor.Editor {
	now := w.now()

	w.mu.Lock()
	defer w.mu.Unlock()
	ent, ok := w.editors[id]
	if !ok {
		ent = &workspaceEntry{editor: w.newEditor()}
		w.editors[id] = ent
	}
	ent.lastSeen = now
	return ent.editor
}

// Lookup returns the editor for id without creating or touching it.
func (w *Workspace) Lookup(id string) (*editor.Editor, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	ent, ok := w.editors[id]
	if !ok {
		return nil, false
	}
	return ent.editor, true
}

// Len returns the number of live editors.
func (w *Workspace) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.editors)
}

// Sweep drops editors idle for longer than the TTL and returns how many
// were removed.
func (w *Workspace) Sweep() int {
	cutoff := w.now().Add(-w.ttl)

	w.mu.Lock()
	defer w.mu.Unlock()
	removed := 0
	for id, ent := range w.editors {
		if ent.lastSeen.Before(cutoff) {
			delete(w.editors, id)
			removed++
		}
	}
	return removed
}

// StartSweeper runs Sweep every interval until the returned stop function
// is called.
func (w *Workspace) StartSweeper(interval time.Duration) (stop func()) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				w.Sweep()
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()
	var once sync.Once
	return func() { once.Do(func() { close(done) }) }
}
