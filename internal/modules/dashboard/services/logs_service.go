package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MuhamadAgungGumelar/rigsite-dashboard-be/internal/core/export"
	"github.com/MuhamadAgungGumelar/rigsite-dashboard-be/internal/core/metrics"
	"github.com/MuhamadAgungGumelar/rigsite-dashboard-be/internal/modules/dashboard/models"
	"github.com/MuhamadAgungGumelar/rigsite-dashboard-be/internal/modules/dashboard/repositories"
	"github.com/rs/zerolog/log"
)

// AllowedLimits are the page sizes the log viewer offers
var AllowedLimits = []int{25, 50, 100, 200, 500}

const (
	DefaultLogLimit = 50
	exportPrefix    = "rigbot_logs"
	timestampLayout = "02-01-2006, 15:04:05"
	noTimestamp     = "-"
)

// ExportHeaders are the columns of every log export
var ExportHeaders = []string{"Document ID", "Role", "Content", "Session ID", "IP", "Formatted Timestamp"}

// LogFilter narrows the fetched entries. Empty fields match everything.
type LogFilter struct {
	Role      string
	SessionID string
}

// LogRow is a log entry ready for display
type LogRow struct {
	ID        string     `json:"id"`
	Role      string     `json:"role"`
	Content   string     `json:"content"`
	SessionID string     `json:"sessionId"`
	IP        string     `json:"ip"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
	Formatted string     `json:"formattedTimestamp"`
}

// LogsPage is the log viewer response
type LogsPage struct {
	Limit   int      `json:"limit"`
	Fetched int      `json:"fetched"`
	Rows    []LogRow `json:"rows"`
}

type LogsService struct {
	repo     repositories.LogRepo
	exporter *export.Service
	metrics  *metrics.Metrics
	loc      *time.Location
	now      func() time.Time
}

func NewLogsService(repo repositories.LogRepo, exporter *export.Service, m *metrics.Metrics, loc *time.Location) *LogsService {
	if loc == nil {
		loc = time.UTC
	}
	return &LogsService{
		repo:     repo,
		exporter: exporter,
		metrics:  m,
		loc:      loc,
		now:      time.Now,
	}
}

// WithClock replaces the time source used to date export files
func (s *LogsService) WithClock(now func() time.Time) *LogsService {
	s.now = now
	return s
}

// NormalizeLimit maps anything outside AllowedLimits to DefaultLogLimit
func NormalizeLimit(n int) int {
	for _, allowed := range AllowedLimits {
		if n == allowed {
			return n
		}
	}
	return DefaultLogLimit
}

// FilterLogs keeps entries whose role equals f.Role and whose session id
// contains f.SessionID, case-insensitively
func FilterLogs(entries []models.LogEntry, f LogFilter) []models.LogEntry {
	session := strings.ToLower(f.SessionID)
	out := make([]models.LogEntry, 0, len(entries))
	for _, e := range entries {
		if f.Role != "" && e.Role != f.Role {
			continue
		}
		if session != "" && !strings.Contains(strings.ToLower(e.SessionID), session) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// FormatTimestamp renders ts as dd-mm-yyyy, HH:MM:SS in loc, or "-"
func FormatTimestamp(ts *time.Time, loc *time.Location) string {
	if ts == nil || ts.IsZero() {
		return noTimestamp
	}
	return ts.In(loc).Format(timestampLayout)
}

// List fetches the newest limit entries, then filters them. The limit bounds
// the fetch, so fewer rows than requested may come back.
func (s *LogsService) List(ctx context.Context, limit int, f LogFilter) (*LogsPage, error) {
	limit = NormalizeLimit(limit)
	entries, err := s.repo.Latest(ctx, limit)
	if err != nil {
		log.Error().Err(err).Int("limit", limit).Msg("❌ Failed to fetch logs")
		return nil, fmt.Errorf("fetch logs: %w", err)
	}

	filtered := FilterLogs(entries, f)
	rows := make([]LogRow, 0, len(filtered))
	for _, e := range filtered {
		rows = append(rows, s.row(e))
	}
	return &LogsPage{Limit: limit, Fetched: len(entries), Rows: rows}, nil
}

// Export renders the filtered set. An empty set yields ErrNothingToExport
// and no file.
func (s *LogsService) Export(ctx context.Context, limit int, f LogFilter, format export.ExportFormat) (*export.File, error) {
	page, err := s.List(ctx, limit, f)
	if err != nil {
		return nil, err
	}
	if len(page.Rows) == 0 {
		s.observeExport(format, ErrNothingToExport)
		return nil, ErrNothingToExport
	}

	now := s.now().In(s.loc)
	table := &export.Table{
		Title:       "RigBot Logs",
		GeneratedAt: now,
		Headers:     ExportHeaders,
		Rows:        make([][]string, 0, len(page.Rows)),
		Style:       export.DefaultStyle(),
	}
	table.Style.ColumnWidths = map[int]float64{0: 26, 1: 12, 2: 70, 3: 30, 4: 16, 5: 22}
	table.Style.WrapColumns = map[int]bool{2: true}
	for _, r := range page.Rows {
		table.Rows = append(table.Rows, []string{r.ID, r.Role, r.Content, r.SessionID, r.IP, r.Formatted})
	}

	file, err := s.exporter.Export(table, format, exportPrefix, now)
	s.observeExport(format, err)
	if err != nil {
		log.Error().Err(err).Str("format", string(format)).Msg("❌ Log export failed")
		return nil, err
	}
	log.Info().Str("format", string(format)).Int("rows", len(table.Rows)).Msg("📤 Logs exported")
	return file, nil
}

func (s *LogsService) row(e models.LogEntry) LogRow {
	return LogRow{
		ID:        e.ID,
		Role:      e.Role,
		Content:   e.Content,
		SessionID: e.SessionID,
		IP:        e.IP,
		Timestamp: e.Timestamp,
		Formatted: FormatTimestamp(e.Timestamp, s.loc),
	}
}

func (s *LogsService) observeExport(format export.ExportFormat, err error) {
	if s.metrics == nil {
		return
	}
	status := outcome(err)
	if errors.Is(err, ErrNothingToExport) {
		status = "empty"
	}
	s.metrics.LogExports.WithLabelValues(string(format), status).Inc()
}
