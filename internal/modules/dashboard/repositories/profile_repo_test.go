package repositories

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/MuhamadAgungGumelar/rigsite-dashboard-be/internal/modules/dashboard/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// sqlRecorder keeps every statement gorm builds
type sqlRecorder struct {
	mu   sync.Mutex
	stmt []string
}

func (r *sqlRecorder) LogMode(logger.LogLevel) logger.Interface { return r }
func (r *sqlRecorder) Info(context.Context, string, ...interface{}) {}
func (r *sqlRecorder) Warn(context.Context, string, ...interface{}) {}
func (r *sqlRecorder) Error(context.Context, string, ...interface{}) {}

func (r *sqlRecorder) Trace(_ context.Context, _ time.Time, fc func() (string, int64), _ error) {
	sql, _ := fc()
	r.mu.Lock()
	r.stmt = append(r.stmt, sql)
	r.mu.Unlock()
}

func (r *sqlRecorder) last(t *testing.T) string {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.stmt) == 0 {
		t.Fatal("no statement recorded")
	}
	return r.stmt[len(r.stmt)-1]
}

func dryRunDB(t *testing.T) (*gorm.DB, *sqlRecorder) {
	t.Helper()
	rec := &sqlRecorder{}
	db, err := gorm.Open(postgres.New(postgres.Config{DSN: "host=127.0.0.1 user=u dbname=rigbot sslmode=disable"}), &gorm.Config{
		DryRun:                 true,
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
		Logger:                 rec,
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return db, rec
}

func TestPostgresMergeUpdatesOnlyPatchColumns(t *testing.T) {
	db, rec := dryRunDB(t)
	repo := NewProfileRepo(db)

	patch := models.ProfilePatch{
		Telefono:          models.Ptr("+56 2 2345 6789"),
		CalendarQueryDays: models.Ptr(14),
	}
	if err := repo.Merge(context.Background(), "c1", patch); err != nil {
		t.Fatalf("merge: %v", err)
	}

	sql := rec.last(t)
	if !strings.HasPrefix(sql, `INSERT INTO "client_profiles"`) {
		t.Fatalf("sql = %s", sql)
	}
	idx := strings.Index(sql, `ON CONFLICT ("client_id") DO UPDATE SET`)
	if idx < 0 {
		t.Fatalf("no upsert clause: %s", sql)
	}
	updates := sql[idx:]
	for _, col := range []string{`"telefono"="excluded"."telefono"`, `"calendar_query_days"="excluded"."calendar_query_days"`} {
		if !strings.Contains(updates, col) {
			t.Fatalf("update set misses %s: %s", col, updates)
		}
	}
	for _, col := range []string{`"name"`, `"email"`, `"clave"`, `"lead_capture_enabled"`, `"horario"`} {
		if strings.Contains(updates, col) {
			t.Fatalf("update set writes %s: %s", col, updates)
		}
	}

	insert := sql[:idx]
	if strings.Contains(insert, `"clave"`) || strings.Contains(insert, `"horario"`) {
		t.Fatalf("insert writes unowned columns: %s", insert)
	}
}

func TestPostgresMergeRejectsEmptyPatch(t *testing.T) {
	db, rec := dryRunDB(t)
	if err := NewProfileRepo(db).Merge(context.Background(), "c1", models.ProfilePatch{}); err != ErrEmptyPatch {
		t.Fatalf("err = %v", err)
	}
	if len(rec.stmt) != 0 {
		t.Fatalf("statements built: %v", rec.stmt)
	}
}
