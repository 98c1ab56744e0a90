package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MuhamadAgungGumelar/rigsite-dashboard-be/internal/core/audit"
	"github.com/MuhamadAgungGumelar/rigsite-dashboard-be/internal/core/auth"
	"github.com/MuhamadAgungGumelar/rigsite-dashboard-be/internal/modules/dashboard/models"
	"github.com/MuhamadAgungGumelar/rigsite-dashboard-be/internal/modules/dashboard/repositories"
	"github.com/MuhamadAgungGumelar/rigsite-dashboard-be/internal/modules/dashboard/session"
)

var testNow = time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC)

type settingsFixture struct {
	repo     *repositories.MemoryProfileRepo
	provider *session.Provider
	audit    *audit.MemoryStore
	board    *StatusBoard
	svc      *SettingsService
	ident    *auth.Identity
}

func newSettingsFixture(repo repositories.ProfileRepo, mem *repositories.MemoryProfileRepo) *settingsFixture {
	provider := session.NewProvider(repo).WithClock(func() time.Time { return testNow })
	store := audit.NewMemoryStore()
	board := NewStatusBoard()
	return &settingsFixture{
		repo:     mem,
		provider: provider,
		audit:    store,
		board:    board,
		svc:      NewSettingsService(provider, repo, store, board, nil, nil, "https://bot.example.com"),
		ident:    &auth.Identity{UID: "c1", DisplayName: "Clínica Sur", Email: "sur@example.com"},
	}
}

func defaultFixture() *settingsFixture {
	repo := repositories.NewMemoryProfileRepo()
	return newSettingsFixture(repo, repo)
}

func stored(t *testing.T, repo *repositories.MemoryProfileRepo, id string) *models.ClientProfile {
	t.Helper()
	doc, err := repo.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("get %s: %v", id, err)
	}
	return doc
}

func TestChatbotPageFillsMissingDayDefaultAndSavesBoth(t *testing.T) {
	f := defaultFixture()
	f.repo.Put(&models.ClientProfile{
		ClientID:          "c1",
		Name:              "Clínica Sur",
		CalendarQueryDays: models.Ptr(14),
		Telefono:          models.Ptr("+56 2 2345 6789"),
	})
	ctx := context.Background()

	view, err := f.svc.LoadChatbot(ctx, f.ident)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	form := view.Form.(ChatbotForm)
	if form.CalendarQueryDays != 14 || form.CalendarMaxUserRequestDays != 21 {
		t.Fatalf("days = %d/%d, want 14/21", form.CalendarQueryDays, form.CalendarMaxUserRequestDays)
	}
	if view.Phase != PhaseReady {
		t.Fatalf("phase = %s", view.Phase)
	}

	// Submit the form unchanged; JSON numbers decode as float64
	_, err = f.svc.SaveChatbot(ctx, f.ident, SaveChatbotRequest{
		Name:                       form.Name,
		Telefono:                   form.Telefono,
		Direccion:                  form.Direccion,
		Horario:                    form.Horario,
		BasePrompt:                 form.BasePrompt,
		WhatsAppNumber:             form.WhatsAppNumber,
		CalendarQueryDays:          float64(form.CalendarQueryDays),
		CalendarMaxUserRequestDays: float64(form.CalendarMaxUserRequestDays),
		PricingInfo:                form.PricingInfo,
		ChiropracticVideoURL:       form.ChiropracticVideoURL,
		WelcomeMessage:             form.WelcomeMessage,
		FallbackMessage:            form.FallbackMessage,
	}, RequestMeta{})
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	doc := stored(t, f.repo, "c1")
	if doc.CalendarQueryDays == nil || *doc.CalendarQueryDays != 14 {
		t.Fatalf("calendarQueryDays = %v", doc.CalendarQueryDays)
	}
	if doc.CalendarMaxUserRequestDays == nil || *doc.CalendarMaxUserRequestDays != 21 {
		t.Fatalf("calendarMaxUserRequestDays = %v", doc.CalendarMaxUserRequestDays)
	}
	if doc.Telefono == nil || *doc.Telefono != "+56 2 2345 6789" {
		t.Fatalf("telefono = %v", doc.Telefono)
	}
	// Lead fields belong to another page and stay absent
	if doc.LeadCaptureEnabled != nil || doc.Clave != nil {
		t.Fatalf("unowned fields written: lead=%v clave=%v", doc.LeadCaptureEnabled, doc.Clave)
	}
	if doc.Email != "sur@example.com" {
		t.Fatalf("email = %q, want identity email", doc.Email)
	}
}

func TestSavingOnePageLeavesOtherPagesFields(t *testing.T) {
	f := defaultFixture()
	ctx := context.Background()

	// First visit creates the document with defaults
	if _, err := f.svc.LoadChatbot(ctx, f.ident); err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := f.svc.SaveChatbot(ctx, f.ident, SaveChatbotRequest{
		Name:                       "Clínica Sur",
		Horario:                    "Lun-Vie 9:00-18:00",
		CalendarQueryDays:          "10",
		CalendarMaxUserRequestDays: "30",
	}, RequestMeta{}); err != nil {
		t.Fatalf("save chatbot: %v", err)
	}

	if _, err := f.svc.SaveLead(ctx, f.ident, SaveLeadRequest{
		LeadCaptureEnabled:      true,
		ClinicNameForLeadPrompt: "Sur",
		LeadNotificationEmail:   "leads@example.com",
	}, RequestMeta{}); err != nil {
		t.Fatalf("save lead: %v", err)
	}

	view, err := f.svc.LoadChatbot(ctx, f.ident)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	form := view.Form.(ChatbotForm)
	if form.Horario != "Lun-Vie 9:00-18:00" || form.CalendarQueryDays != 10 || form.CalendarMaxUserRequestDays != 30 {
		t.Fatalf("chatbot form changed by lead save: %+v", form)
	}

	lead, err := f.svc.LoadLead(ctx, f.ident)
	if err != nil {
		t.Fatalf("load lead: %v", err)
	}
	if lf := lead.Form.(LeadForm); !lf.LeadCaptureEnabled || lf.LeadNotificationEmail != "leads@example.com" {
		t.Fatalf("lead form = %+v", lf)
	}
}

func TestMissingFieldsShowDefaults(t *testing.T) {
	f := defaultFixture()
	f.repo.Put(&models.ClientProfile{ClientID: "c1"})

	view, err := f.svc.LoadChatbot(context.Background(), f.ident)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	form := view.Form.(ChatbotForm)
	if form.Direccion != models.DefaultDireccion || form.Horario != models.DefaultHorario ||
		form.PricingInfo != models.DefaultPricingInfo || form.WelcomeMessage != models.DefaultWelcomeMessage ||
		form.FallbackMessage != models.DefaultFallbackMessage || form.BasePrompt != models.DefaultBasePrompt {
		t.Fatalf("defaults not applied: %+v", form)
	}
	if form.Name != "Clínica Sur" {
		t.Fatalf("name = %q, want identity display name", form.Name)
	}

	lead, _ := f.svc.LoadLead(context.Background(), f.ident)
	lf := lead.Form.(LeadForm)
	if lf.ClinicNameForLeadPrompt != "Clínica Sur" || lf.LeadNotificationEmail != "sur@example.com" {
		t.Fatalf("lead defaults = %+v", lf)
	}
}

func TestSignedOutCallerIsDeniedWithoutReads(t *testing.T) {
	f := defaultFixture()
	ctx := context.Background()

	if _, err := f.svc.LoadChatbot(ctx, nil); !errors.Is(err, auth.ErrUnauthenticated) {
		t.Fatalf("chatbot err = %v", err)
	}
	if _, err := f.svc.LoadLead(ctx, nil); !errors.Is(err, auth.ErrUnauthenticated) {
		t.Fatalf("lead err = %v", err)
	}
	if _, err := f.svc.LoadMain(ctx, nil); !errors.Is(err, auth.ErrUnauthenticated) {
		t.Fatalf("main err = %v", err)
	}
	if st := f.repo.Stats(); st.Reads != 0 || st.Merges != 0 || st.Creates != 0 {
		t.Fatalf("store touched: %+v", st)
	}
}

func TestMainPageRequiresName(t *testing.T) {
	f := defaultFixture()
	_, err := f.svc.SaveMain(context.Background(), f.ident, SaveMainRequest{Name: "  "}, RequestMeta{})
	var reqErr *RequiredFieldError
	if !errors.As(err, &reqErr) || reqErr.Field != "name" {
		t.Fatalf("err = %v", err)
	}
	if f.repo.Stats().Merges != 0 {
		t.Fatal("nothing should be written")
	}
}

func TestMainPageSavesClaveIntoEmbedScript(t *testing.T) {
	f := defaultFixture()
	view, err := f.svc.SaveMain(context.Background(), f.ident, SaveMainRequest{Name: "Sur", Clave: "abc 1"}, RequestMeta{IPAddress: "10.0.0.1"})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	form := view.Form.(MainForm)
	want := `<script src="https://bot.example.com/api/widget?clientId=c1&clave=abc%201" defer></script>`
	if form.EmbedScript != want || !form.EmbedReady {
		t.Fatalf("embed = %q", form.EmbedScript)
	}
	if view.Phase != PhaseSaveSucceeded || view.Success == "" {
		t.Fatalf("status = %+v", view.Status)
	}

	logs, _ := f.audit.History(context.Background(), "c1", 10)
	if len(logs) != 1 || logs[0].Entity != PageMain || logs[0].IPAddress != "10.0.0.1" {
		t.Fatalf("audit = %+v", logs)
	}
}

func TestLeadPageRequiresEmailWhileCaptureEnabled(t *testing.T) {
	f := defaultFixture()
	ctx := context.Background()

	_, err := f.svc.SaveLead(ctx, f.ident, SaveLeadRequest{LeadCaptureEnabled: true, LeadNotificationEmail: "  "}, RequestMeta{})
	var reqErr *RequiredFieldError
	if !errors.As(err, &reqErr) || reqErr.Field != "leadNotificationEmail" {
		t.Fatalf("err = %v", err)
	}
	if f.repo.Stats().Merges != 0 {
		t.Fatal("nothing should be written")
	}

	// Capture off: the email may stay empty
	view, err := f.svc.SaveLead(ctx, f.ident, SaveLeadRequest{LeadCaptureEnabled: false}, RequestMeta{})
	if err != nil || view.Phase != PhaseSaveSucceeded {
		t.Fatalf("view = %+v err = %v", view, err)
	}
}

func TestSignOutClearsSaveOutcome(t *testing.T) {
	mem := repositories.NewMemoryProfileRepo()
	f := newSettingsFixture(failingMerge{MemoryProfileRepo: mem, err: errors.New("offline")}, mem)
	f.provider.OnSignOut(f.board.Clear)
	ctx := context.Background()

	if _, err := f.svc.SaveMain(ctx, f.ident, SaveMainRequest{Name: "Sur"}, RequestMeta{}); err == nil {
		t.Fatal("expected save error")
	}
	if st := f.board.Current("c1", PageMain); st.Phase != PhaseSaveFailed {
		t.Fatalf("status = %+v", st)
	}

	f.provider.Handle(ctx, auth.SessionChange{UID: "c1"})

	if st := f.board.Current("c1", PageMain); st.Phase != PhaseReady || st.Error != "" {
		t.Fatalf("status after sign-out = %+v", st)
	}
}

type failingMerge struct {
	*repositories.MemoryProfileRepo
	err error
}

func (f failingMerge) Merge(context.Context, string, models.ProfilePatch) error {
	return f.err
}

func TestSaveFailureKeepsErrorUntilNextSubmit(t *testing.T) {
	mem := repositories.NewMemoryProfileRepo()
	storeErr := &repositories.StoreError{Op: "merge profile", Code: "permission-denied", Err: errors.New("missing permissions")}
	f := newSettingsFixture(failingMerge{MemoryProfileRepo: mem, err: storeErr}, mem)
	ctx := context.Background()

	if _, err := f.svc.SaveLead(ctx, f.ident, SaveLeadRequest{LeadCaptureEnabled: true, LeadNotificationEmail: "leads@example.com"}, RequestMeta{}); err == nil {
		t.Fatal("expected save error")
	}

	view, err := f.svc.LoadLead(ctx, f.ident)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if view.Phase != PhaseSaveFailed || view.Error != "Error al guardar: Error (permission-denied): missing permissions" {
		t.Fatalf("status = %+v", view.Status)
	}
	if logs, _ := f.audit.History(ctx, "c1", 10); len(logs) != 0 {
		t.Fatalf("failed save audited: %+v", logs)
	}
}

func TestUnavailableProfileIsNotLoading(t *testing.T) {
	f := defaultFixture()
	f.repo.FailWith(&repositories.StoreError{Op: "get profile", Code: "unavailable", Err: errors.New("offline")})

	_, err := f.svc.LoadChatbot(context.Background(), f.ident)
	var unavailable *ProfileUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("err = %v", err)
	}
	if msg := UserMessage(err); msg != "Error (unavailable): offline" {
		t.Fatalf("message = %q", msg)
	}
}

func TestPromptPreviewSubstitutesBusinessData(t *testing.T) {
	f := defaultFixture()
	f.repo.Put(&models.ClientProfile{
		ClientID:       "c1",
		BasePrompt:     models.Ptr("Agenda hasta ${MAX_DAYS_FOR_USER_REQUEST} días. WhatsApp ${whatsappNumber}."),
		WhatsAppNumber: models.Ptr("+56911111111"),
	})

	preview, err := f.svc.PromptPreview(context.Background(), f.ident)
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if preview.Rendered != "Agenda hasta 21 días. WhatsApp +56911111111." {
		t.Fatalf("rendered = %q", preview.Rendered)
	}
	if len(preview.Placeholders) != 2 {
		t.Fatalf("placeholders = %v", preview.Placeholders)
	}
}

func TestParseDays(t *testing.T) {
	tests := []struct {
		in   interface{}
		want int
	}{
		{float64(14), 14},
		{"30", 30},
		{" 5 ", 5},
		{"abc", 7},
		{"", 7},
		{float64(0), 7},
		{float64(-3), 7},
		{nil, 7},
		{true, 7},
	}
	for _, tt := range tests {
		if got := ParseDays(tt.in, 7); got != tt.want {
			t.Errorf("ParseDays(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestStatusBoardSuccessExpires(t *testing.T) {
	now := testNow
	b := NewStatusBoard().WithClock(func() time.Time { return now })

	b.Begin("c1", PageLead)
	if st := b.Current("c1", PageLead); st.Phase != PhaseSaving {
		t.Fatalf("phase = %s", st.Phase)
	}

	b.Succeed("c1", PageLead, "ok")
	now = now.Add(3 * time.Second)
	if st := b.Current("c1", PageLead); st.Phase != PhaseSaveSucceeded {
		t.Fatalf("phase after 3s = %s", st.Phase)
	}
	now = now.Add(time.Second)
	if st := b.Current("c1", PageLead); st.Phase != PhaseReady || st.Success != "" {
		t.Fatalf("status after 4s = %+v", st)
	}

	b.Fail("c1", PageLead, "boom")
	now = now.Add(time.Hour)
	if st := b.Current("c1", PageLead); st.Phase != PhaseSaveFailed || st.Error != "boom" {
		t.Fatalf("error should persist: %+v", st)
	}

	b.Clear("c1")
	if st := b.Current("c1", PageLead); st.Phase != PhaseReady {
		t.Fatalf("after clear = %+v", st)
	}
}
