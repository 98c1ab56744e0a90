package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/MuhamadAgungGumelar/rigsite-dashboard-be/internal/modules/dashboard/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProfileRepo reads and merge-writes client profile documents
type ProfileRepo interface {
	// Get returns ErrProfileNotFound when no document exists
	Get(ctx context.Context, clientID string) (*models.ClientProfile, error)
	// CreateIfAbsent stores doc only when no document with the same id exists.
	// It reports whether this call created it.
	CreateIfAbsent(ctx context.Context, doc *models.ClientProfile) (bool, error)
	// Merge upserts the patch fields, leaving every other field untouched
	Merge(ctx context.Context, clientID string, patch models.ProfilePatch) error
}

type profileRepo struct {
	db *gorm.DB
}

// NewProfileRepo returns the postgres backed ProfileRepo
func NewProfileRepo(db *gorm.DB) ProfileRepo {
	return &profileRepo{db: db}
}

func (r *profileRepo) Get(ctx context.Context, clientID string) (*models.ClientProfile, error) {
	var doc models.ClientProfile
	err := r.db.WithContext(ctx).Where("client_id = ?", clientID).First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, wrapStoreErr("get profile", err)
	}
	return &doc, nil
}

func (r *profileRepo) CreateIfAbsent(ctx context.Context, doc *models.ClientProfile) (bool, error) {
	if doc.CreatedAt == nil {
		now := time.Now()
		doc.CreatedAt = &now
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "client_id"}}, DoNothing: true}).
		Create(doc)
	if res.Error != nil {
		return false, wrapStoreErr("create profile", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *profileRepo) Merge(ctx context.Context, clientID string, patch models.ProfilePatch) error {
	fields := patch.Fields()
	if len(fields) == 0 {
		return ErrEmptyPatch
	}

	doc := models.ClientProfile{ClientID: clientID}
	patch.ApplyTo(&doc)

	cols := make([]string, 0, len(fields))
	for _, f := range fields {
		cols = append(cols, f.Column)
	}

	// Insert only the identity and the patch columns so an upsert never
	// writes NULL over fields the patch does not own.
	insertCols := append([]string{"client_id"}, cols...)
	if patch.Name == nil {
		insertCols = append(insertCols, "name")
	}
	if patch.Email == nil {
		insertCols = append(insertCols, "email")
	}

	err := r.db.WithContext(ctx).
		Select(insertCols).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "client_id"}},
			DoUpdates: clause.AssignmentColumns(cols),
		}).
		Create(&doc).Error
	return wrapStoreErr("merge profile", err)
}
