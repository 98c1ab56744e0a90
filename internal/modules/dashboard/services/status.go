package services

import (
	"strings"
	"sync"
	"time"
)

// Phase is where a settings page is in its load/save cycle
type Phase string

const (
	PhaseLoading       Phase = "loading"
	PhaseReady         Phase = "ready"
	PhaseSaving        Phase = "saving"
	PhaseSaveFailed    Phase = "save-failed"
	PhaseSaveSucceeded Phase = "save-succeeded"
)

// SuccessVisibleFor is how long a save confirmation stays on the page
const SuccessVisibleFor = 4 * time.Second

// Status is the save outcome shown on a page
type Status struct {
	Phase   Phase  `json:"phase"`
	Success string `json:"success,omitempty"`
	Error   string `json:"error,omitempty"`
}

// StatusBoard remembers the last save outcome per client and page. Success
// messages expire, errors stay until the next submit.
type StatusBoard struct {
	mu      sync.Mutex
	now     func() time.Time
	entries map[string]statusEntry
}

type statusEntry struct {
	status Status
	at     time.Time
}

func NewStatusBoard() *StatusBoard {
	return &StatusBoard{
		now:     time.Now,
		entries: make(map[string]statusEntry),
	}
}

// WithClock replaces the time source
func (b *StatusBoard) WithClock(now func() time.Time) *StatusBoard {
	b.now = now
	return b
}

func statusKey(clientID, page string) string {
	return clientID + "|" + page
}

// Begin marks a submit in flight and clears the previous outcome
func (b *StatusBoard) Begin(clientID, page string) {
	b.set(clientID, page, Status{Phase: PhaseSaving})
}

func (b *StatusBoard) Succeed(clientID, page, message string) {
	b.set(clientID, page, Status{Phase: PhaseSaveSucceeded, Success: message})
}

func (b *StatusBoard) Fail(clientID, page, message string) {
	b.set(clientID, page, Status{Phase: PhaseSaveFailed, Error: message})
}

// Current returns the outcome to show now
func (b *StatusBoard) Current(clientID, page string) Status {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := statusKey(clientID, page)
	e, ok := b.entries[key]
	if !ok {
		return Status{Phase: PhaseReady}
	}
	if e.status.Phase == PhaseSaveSucceeded && b.now().Sub(e.at) >= SuccessVisibleFor {
		delete(b.entries, key)
		return Status{Phase: PhaseReady}
	}
	return e.status
}

// Clear forgets every outcome of clientID, used on sign-out
func (b *StatusBoard) Clear(clientID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	prefix := clientID + "|"
	for k := range b.entries {
		if strings.HasPrefix(k, prefix) {
			delete(b.entries, k)
		}
	}
}

func (b *StatusBoard) set(clientID, page string, st Status) {
	b.mu.Lock()
	b.entries[statusKey(clientID, page)] = statusEntry{status: st, at: b.now()}
	b.mu.Unlock()
}
