package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Store records and lists profile changes
type Store interface {
	LogChange(ctx context.Context, change Change) error
	History(ctx context.Context, clientID string, limit int) ([]AuditLog, error)
}

// Service provides audit logging on postgres
type Service struct {
	db *gorm.DB
}

// NewService creates a new audit service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// LogChange creates an audit log tracking a change
func (s *Service) LogChange(ctx context.Context, change Change) error {
	entry := newEntry(change)
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	return nil
}

// History returns the latest changes of a client, newest first
func (s *Service) History(ctx context.Context, clientID string, limit int) ([]AuditLog, error) {
	if limit < 1 {
		limit = 50
	}

	var logs []AuditLog
	err := s.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get audit history: %w", err)
	}
	return logs, nil
}

// MemoryStore keeps audit entries in process memory
type MemoryStore struct {
	mu   sync.RWMutex
	logs []AuditLog
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) LogChange(_ context.Context, change Change) error {
	entry := newEntry(change)
	m.mu.Lock()
	m.logs = append(m.logs, *entry)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) History(_ context.Context, clientID string, limit int) ([]AuditLog, error) {
	if limit < 1 {
		limit = 50
	}
	m.mu.RLock()
	var out []AuditLog
	for _, l := range m.logs {
		if l.ClientID == clientID {
			out = append(out, l)
		}
	}
	m.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func newEntry(change Change) *AuditLog {
	oldJSON, err := toJSON(change.OldValue)
	if err != nil {
		log.Warn().Err(err).Msg("⚠️ Failed to serialize old audit value")
	}
	newJSON, err := toJSON(change.NewValue)
	if err != nil {
		log.Warn().Err(err).Msg("⚠️ Failed to serialize new audit value")
	}

	return &AuditLog{
		ID:        uuid.New(),
		ClientID:  change.ClientID,
		ActorID:   change.ActorID,
		Action:    change.Action,
		Entity:    change.Entity,
		EntityID:  change.ClientID,
		OldValue:  oldJSON,
		NewValue:  newJSON,
		IPAddress: change.IPAddress,
		UserAgent: change.UserAgent,
		CreatedAt: time.Now(),
	}
}

func toJSON(v interface{}) (datatypes.JSON, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}
