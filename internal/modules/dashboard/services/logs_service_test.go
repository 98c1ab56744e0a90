package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/MuhamadAgungGumelar/rigsite-dashboard-be/internal/core/cache"
	"github.com/MuhamadAgungGumelar/rigsite-dashboard-be/internal/core/export"
	"github.com/MuhamadAgungGumelar/rigsite-dashboard-be/internal/modules/dashboard/models"
	"github.com/MuhamadAgungGumelar/rigsite-dashboard-be/internal/modules/dashboard/repositories"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Chile standard time, fixed so tests do not depend on tzdata
var santiago = time.FixedZone("CLT", -4*60*60)

func at(s string) *time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func sampleLogs() []models.LogEntry {
	return []models.LogEntry{
		{ID: "1", Role: models.RoleUser, Content: "Hola", SessionID: "ABC-123", IP: "1.1.1.1", Timestamp: at("2024-03-05T13:04:05Z")},
		{ID: "2", Role: models.RoleAssistant, Content: "¡Hola!\n¿En qué te ayudo?", SessionID: "abc-123", IP: "1.1.1.1", Timestamp: at("2024-03-05T13:04:06Z")},
		{ID: "3", Role: models.RoleUser, Content: `Precio "consulta"`, SessionID: "xyz-999", IP: "2.2.2.2", Timestamp: at("2024-03-05T14:00:00Z")},
		{ID: "4", Role: models.RoleAssistant, Content: "Sin fecha", SessionID: "xyz-999"},
	}
}

func TestFilterLogs(t *testing.T) {
	logs := sampleLogs()

	ids := func(entries []models.LogEntry) string {
		var out []string
		for _, e := range entries {
			out = append(out, e.ID)
		}
		return strings.Join(out, ",")
	}

	tests := []struct {
		name   string
		filter LogFilter
		want   string
	}{
		{"no filter", LogFilter{}, "1,2,3,4"},
		{"role exact", LogFilter{Role: models.RoleUser}, "1,3"},
		{"role is not a substring match", LogFilter{Role: "use"}, ""},
		{"session substring ignores case", LogFilter{SessionID: "abc"}, "1,2"},
		{"intersection", LogFilter{Role: models.RoleAssistant, SessionID: "ABC"}, "2"},
		{"session filter is not trimmed", LogFilter{SessionID: " abc "}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ids(FilterLogs(logs, tt.filter)); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeLimit(t *testing.T) {
	for in, want := range map[int]int{25: 25, 500: 500, 0: 50, 42: 50, 1000: 50} {
		if got := NormalizeLimit(in); got != want {
			t.Errorf("NormalizeLimit(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestFormatTimestamp(t *testing.T) {
	if got := FormatTimestamp(at("2024-03-05T13:04:05Z"), santiago); got != "05-03-2024, 09:04:05" {
		t.Fatalf("got %q", got)
	}
	if got := FormatTimestamp(nil, santiago); got != "-" {
		t.Fatalf("nil timestamp = %q", got)
	}
}

func TestListLimitAppliesBeforeFilter(t *testing.T) {
	var many []models.LogEntry
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 60; i++ {
		ts := base.Add(time.Duration(i) * time.Minute)
		role := models.RoleUser
		if i%2 == 1 {
			role = models.RoleAssistant
		}
		many = append(many, models.LogEntry{ID: ts.Format("1504"), Role: role, Timestamp: &ts})
	}
	svc := NewLogsService(repositories.NewMemoryLogRepo(many...), export.NewService(), nil, santiago)

	page, err := svc.List(context.Background(), 25, LogFilter{Role: models.RoleUser})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Fetched != 25 || len(page.Rows) >= 25 {
		t.Fatalf("fetched = %d rows = %d", page.Fetched, len(page.Rows))
	}
	if page.Rows[0].Timestamp.Before(*page.Rows[len(page.Rows)-1].Timestamp) {
		t.Fatal("rows should be newest first")
	}
}

func TestExportEmptySetProducesNoFile(t *testing.T) {
	svc := NewLogsService(repositories.NewMemoryLogRepo(sampleLogs()...), export.NewService(), nil, santiago)
	file, err := svc.Export(context.Background(), 50, LogFilter{SessionID: "nope"}, export.FormatCSV)
	if !errors.Is(err, ErrNothingToExport) || file != nil {
		t.Fatalf("file = %v err = %v", file, err)
	}
}

func TestExportCSV(t *testing.T) {
	svc := NewLogsService(repositories.NewMemoryLogRepo(sampleLogs()...), export.NewService(), nil, santiago).
		WithClock(func() time.Time { return time.Date(2024, 3, 6, 2, 0, 0, 0, time.UTC) })

	file, err := svc.Export(context.Background(), 50, LogFilter{SessionID: "abc"}, export.FormatCSV)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	// 02:00 UTC is still the 5th in Santiago
	if file.Name != "rigbot_logs_2024-03-05.csv" {
		t.Fatalf("name = %q", file.Name)
	}

	body := string(file.Body)
	if !strings.HasPrefix(body, "\ufeff") {
		t.Fatal("missing BOM")
	}
	lines := strings.Split(strings.TrimPrefix(body, "\ufeff"), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %q", lines)
	}
	if lines[0] != "Document ID,Role,Content,Session ID,IP,Formatted Timestamp" {
		t.Fatalf("header = %q", lines[0])
	}
	// Newest first; the embedded newline is escaped
	want := `"2","assistant","¡Hola!\n¿En qué te ayudo?","abc-123","1.1.1.1","05-03-2024, 09:04:06"`
	if lines[1] != want {
		t.Fatalf("row = %q\nwant  %q", lines[1], want)
	}
}

func TestLogsGate(t *testing.T) {
	ctx := context.Background()
	limiter := cache.NewMemoryLimiter(GateMaxFailures, GateWindow)
	gate, err := NewLogsGate("s3creto", "gate-secret", limiter, nil, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("new gate: %v", err)
	}

	token, expires, err := gate.Unlock(ctx, "9.9.9.9", "s3creto")
	if err != nil || !gate.Allowed(token) {
		t.Fatalf("unlock: token=%q err=%v", token, err)
	}
	if time.Until(expires) < 11*time.Hour {
		t.Fatalf("expires = %v", expires)
	}
	if gate.Allowed("garbage") || gate.Allowed("") {
		t.Fatal("invalid tokens must be rejected")
	}

	for i := 0; i < GateMaxFailures; i++ {
		if _, _, err := gate.Unlock(ctx, "9.9.9.9", "wrong"); !errors.Is(err, ErrWrongPassword) {
			t.Fatalf("attempt %d err = %v", i, err)
		}
	}
	if _, _, err := gate.Unlock(ctx, "9.9.9.9", "s3creto"); !errors.Is(err, ErrTooManyAttempts) {
		t.Fatalf("locked out err = %v", err)
	}
	if _, _, err := gate.Unlock(ctx, "8.8.8.8", "s3creto"); err != nil {
		t.Fatalf("other IP err = %v", err)
	}
}

func TestLogsGateNeedsSigningSecret(t *testing.T) {
	limiter := cache.NewMemoryLimiter(GateMaxFailures, GateWindow)
	if _, err := NewLogsGate("s3creto", "", limiter, nil, bcrypt.MinCost); err == nil {
		t.Fatal("gate built without a signing secret")
	}

	gate, err := NewLogsGate("s3creto", "gate-secret", limiter, nil, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("new gate: %v", err)
	}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"type": "logs",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("other-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if gate.Allowed(forged) {
		t.Fatal("pass signed with another key accepted")
	}
}
