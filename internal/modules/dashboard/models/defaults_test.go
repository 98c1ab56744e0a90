package models

import (
	"testing"
	"time"
)

func TestNormalizeEmptyDocument(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	owner := Owner{ID: "uid-1", DisplayName: "Clínica Sur", Email: "sur@example.com"}

	p := Normalize(nil, owner, now)

	checks := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"clientId", p.ClientID, "uid-1"},
		{"name", p.Name, "Clínica Sur"},
		{"email", p.Email, "sur@example.com"},
		{"plan", p.Plan, PlanFree},
		{"basePrompt", p.BasePrompt, DefaultBasePrompt},
		{"welcomeMessage", p.WelcomeMessage, DefaultWelcomeMessage},
		{"fallbackMessage", p.FallbackMessage, DefaultFallbackMessage},
		{"direccion", p.Direccion, DefaultDireccion},
		{"horario", p.Horario, DefaultHorario},
		{"pricingInfo", p.PricingInfo, DefaultPricingInfo},
		{"calendarQueryDays", p.CalendarQueryDays, 7},
		{"calendarMaxUserRequestDays", p.CalendarMaxUserRequestDays, 21},
		{"googleCalendarConnected", p.GoogleCalendarConnected, false},
		{"leadCaptureEnabled", p.LeadCaptureEnabled, false},
		{"clinicNameForLeadPrompt", p.ClinicNameForLeadPrompt, "Clínica Sur"},
		{"leadNotificationEmail", p.LeadNotificationEmail, "sur@example.com"},
		{"createdAt", p.CreatedAt, now},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s: got %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestNormalizeAnonymousOwnerGetsDefaultName(t *testing.T) {
	p := Normalize(nil, Owner{ID: "x"}, time.Now())
	if p.Name != DefaultName {
		t.Fatalf("name = %q, want %q", p.Name, DefaultName)
	}
	if p.LeadNotificationEmail != "" {
		t.Fatalf("leadNotificationEmail = %q, want empty", p.LeadNotificationEmail)
	}
}

func TestNormalizeKeepsStoredValues(t *testing.T) {
	created := time.Date(2023, 1, 2, 3, 4, 5, 0, time.UTC)
	doc := &ClientProfile{
		ClientID:          "uid-2",
		Name:              "Stored",
		Email:             "stored@example.com",
		Plan:              Ptr("PREMIUM"),
		CalendarQueryDays: Ptr(14),
		Telefono:          Ptr("+56 9 1111 2222"),
		CreatedAt:         &created,
	}

	p := Normalize(doc, Owner{ID: "uid-2", DisplayName: "Other", Email: "other@example.com"}, time.Now())

	if p.Name != "Stored" || p.Email != "stored@example.com" {
		t.Fatalf("identity overwritten: %+v", p)
	}
	if p.Plan != PlanPremium {
		t.Fatalf("plan = %q", p.Plan)
	}
	if p.CalendarQueryDays != 14 || p.CalendarMaxUserRequestDays != 21 {
		t.Fatalf("days = %d/%d, want 14/21", p.CalendarQueryDays, p.CalendarMaxUserRequestDays)
	}
	if p.Telefono != "+56 9 1111 2222" {
		t.Fatalf("telefono = %q", p.Telefono)
	}
	if !p.CreatedAt.Equal(created) {
		t.Fatalf("createdAt = %v", p.CreatedAt)
	}
}

func TestNormalizeNonPositiveDaysFallBack(t *testing.T) {
	doc := &ClientProfile{CalendarQueryDays: Ptr(0), CalendarMaxUserRequestDays: Ptr(-3)}
	p := Normalize(doc, Owner{ID: "u"}, time.Now())
	if p.CalendarQueryDays != 7 || p.CalendarMaxUserRequestDays != 21 {
		t.Fatalf("days = %d/%d, want 7/21", p.CalendarQueryDays, p.CalendarMaxUserRequestDays)
	}
}

func TestNormalizeUnknownPlanIsFree(t *testing.T) {
	p := Normalize(&ClientProfile{Plan: Ptr("enterprise")}, Owner{ID: "u"}, time.Now())
	if p.Plan != PlanFree {
		t.Fatalf("plan = %q, want free", p.Plan)
	}
}

func TestNewDocumentHasNoAbsentFields(t *testing.T) {
	now := time.Now()
	doc := NewDocument(Owner{ID: "u", DisplayName: "N", Email: "e@x.cl"}, now)

	if doc.ClientID != "u" || doc.Name != "N" || doc.Email != "e@x.cl" {
		t.Fatalf("identity = %+v", doc)
	}
	if doc.Plan == nil || doc.BasePrompt == nil || doc.Direccion == nil ||
		doc.CalendarQueryDays == nil || doc.CalendarMaxUserRequestDays == nil ||
		doc.LeadCaptureEnabled == nil || doc.GoogleCalendarConnected == nil ||
		doc.CreatedAt == nil {
		t.Fatalf("new document has absent fields: %+v", doc)
	}
	if *doc.CalendarQueryDays != 7 || *doc.CalendarMaxUserRequestDays != 21 {
		t.Fatalf("days = %d/%d", *doc.CalendarQueryDays, *doc.CalendarMaxUserRequestDays)
	}
	if doc.ClinicNameForLeadPrompt != nil || doc.LeadNotificationEmail != nil || doc.Clave != nil {
		t.Fatalf("new document stores fields the client never set: %+v", doc)
	}

	view := Normalize(doc, Owner{ID: "u"}, now)
	if view.ClinicNameForLeadPrompt != "N" || view.LeadNotificationEmail != "e@x.cl" || view.Clave != "" {
		t.Fatalf("view = %+v", view)
	}
}

func TestPatchApplyLeavesOtherFieldsUntouched(t *testing.T) {
	doc := &ClientProfile{ClientID: "u", Telefono: Ptr("123"), Horario: Ptr("9-18")}
	patch := ProfilePatch{CalendarQueryDays: Ptr(14), Horario: Ptr("10-19")}

	patch.ApplyTo(doc)

	if *doc.Telefono != "123" {
		t.Fatalf("telefono changed to %q", *doc.Telefono)
	}
	if *doc.Horario != "10-19" || *doc.CalendarQueryDays != 14 {
		t.Fatalf("patch not applied: %+v", doc)
	}
	if doc.CalendarMaxUserRequestDays != nil {
		t.Fatalf("unset field written")
	}

	fields := patch.Fields()
	if len(fields) != 2 || fields[0].Key != "horario" || fields[1].Column != "calendar_query_days" {
		t.Fatalf("fields = %+v", fields)
	}
}
