package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/MuhamadAgungGumelar/rigsite-dashboard-be/internal/modules/dashboard/models"
)

// MemoryProfileRepo keeps profiles in process memory. It backs the
// DOCUMENT_STORE=memory mode and tests.
type MemoryProfileRepo struct {
	mu   sync.RWMutex
	docs map[string]*models.ClientProfile

	reads    int
	creates  int
	merges   int
	failWith error
}

// MemoryStats counts store traffic
type MemoryStats struct {
	Reads   int
	Creates int
	Merges  int
}

func NewMemoryProfileRepo() *MemoryProfileRepo {
	return &MemoryProfileRepo{docs: make(map[string]*models.ClientProfile)}
}

func (r *MemoryProfileRepo) Get(_ context.Context, clientID string) (*models.ClientProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reads++
	if r.failWith != nil {
		return nil, r.failWith
	}
	doc, ok := r.docs[clientID]
	if !ok {
		return nil, ErrProfileNotFound
	}
	return copyProfile(doc), nil
}

func (r *MemoryProfileRepo) CreateIfAbsent(_ context.Context, doc *models.ClientProfile) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return false, r.failWith
	}
	if _, ok := r.docs[doc.ClientID]; ok {
		return false, nil
	}
	if doc.CreatedAt == nil {
		now := time.Now()
		doc.CreatedAt = &now
	}
	r.docs[doc.ClientID] = copyProfile(doc)
	r.creates++
	return true, nil
}

func (r *MemoryProfileRepo) Merge(_ context.Context, clientID string, patch models.ProfilePatch) error {
	if patch.IsEmpty() {
		return ErrEmptyPatch
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	doc, ok := r.docs[clientID]
	if !ok {
		doc = &models.ClientProfile{ClientID: clientID}
		r.docs[clientID] = doc
	}
	patch.ApplyTo(doc)
	r.merges++
	return nil
}

// Put replaces a stored document as is
func (r *MemoryProfileRepo) Put(doc *models.ClientProfile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[doc.ClientID] = copyProfile(doc)
}

// Count returns the number of stored documents
func (r *MemoryProfileRepo) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.docs)
}

// Stats returns the store traffic seen so far
func (r *MemoryProfileRepo) Stats() MemoryStats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return MemoryStats{Reads: r.reads, Creates: r.creates, Merges: r.merges}
}

// FailWith makes every following operation return err. Pass nil to recover.
func (r *MemoryProfileRepo) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failWith = err
}

func copyProfile(doc *models.ClientProfile) *models.ClientProfile {
	cp := *doc
	cp.Plan = clonePtr(doc.Plan)
	cp.BasePrompt = clonePtr(doc.BasePrompt)
	cp.WelcomeMessage = clonePtr(doc.WelcomeMessage)
	cp.FallbackMessage = clonePtr(doc.FallbackMessage)
	cp.Telefono = clonePtr(doc.Telefono)
	cp.Direccion = clonePtr(doc.Direccion)
	cp.Horario = clonePtr(doc.Horario)
	cp.WhatsAppNumber = clonePtr(doc.WhatsAppNumber)
	cp.PricingInfo = clonePtr(doc.PricingInfo)
	cp.ChiropracticVideoURL = clonePtr(doc.ChiropracticVideoURL)
	cp.CalendarQueryDays = clonePtr(doc.CalendarQueryDays)
	cp.CalendarMaxUserRequestDays = clonePtr(doc.CalendarMaxUserRequestDays)
	cp.GoogleCalendarConnected = clonePtr(doc.GoogleCalendarConnected)
	cp.GoogleCalendarEmail = clonePtr(doc.GoogleCalendarEmail)
	cp.LeadCaptureEnabled = clonePtr(doc.LeadCaptureEnabled)
	cp.ClinicNameForLeadPrompt = clonePtr(doc.ClinicNameForLeadPrompt)
	cp.LeadNotificationEmail = clonePtr(doc.LeadNotificationEmail)
	cp.Clave = clonePtr(doc.Clave)
	cp.CreatedAt = clonePtr(doc.CreatedAt)
	return &cp
}

func clonePtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// MemoryLogRepo serves a fixed set of log entries
type MemoryLogRepo struct {
	mu      sync.RWMutex
	entries []models.LogEntry
}

func NewMemoryLogRepo(entries ...models.LogEntry) *MemoryLogRepo {
	return &MemoryLogRepo{entries: entries}
}

// Append adds entries
func (r *MemoryLogRepo) Append(entries ...models.LogEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entries...)
}

func (r *MemoryLogRepo) Latest(_ context.Context, limit int) ([]models.LogEntry, error) {
	r.mu.RLock()
	out := make([]models.LogEntry, len(r.entries))
	copy(out, r.entries)
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return tsOf(out[i]).After(tsOf(out[j]))
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func tsOf(l models.LogEntry) time.Time {
	if l.Timestamp == nil {
		return time.Time{}
	}
	return *l.Timestamp
}
