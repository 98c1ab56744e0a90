package models

import (
	"strings"
	"time"

	"github.com/MuhamadAgungGumelar/rigsite-dashboard-be/internal/core/prompt"
)

// Read-time defaults for absent profile fields
const (
	DefaultName               = "Nuevo Usuario Rigbot"
	DefaultWelcomeMessage     = "¡Bienvenido a tu Rigbot! Personaliza mis respuestas desde el panel de configuración."
	DefaultFallbackMessage    = "Lo siento, no te he entendido. ¿Podrías intentarlo de nuevo?"
	DefaultDireccion          = "Dirección no configurada"
	DefaultHorario            = "Horario no configurado"
	DefaultPricingInfo        = "Información de precios no configurada."
	DefaultCalendarQueryDays  = 7
	DefaultCalendarMaxReqDays = 21
	DefaultPlan               = PlanFree
	DefaultBasePrompt         = prompt.DefaultSystemTemplate
	DefaultLeadCaptureEnabled = false
	DefaultCalendarConnected  = false
)

// Normalize turns a stored document (possibly nil) into a fully defaulted
// Profile. It is the only place where fallbacks are applied.
func Normalize(doc *ClientProfile, owner Owner, now time.Time) Profile {
	if doc == nil {
		doc = &ClientProfile{}
	}

	p := Profile{
		ClientID: firstNonEmpty(doc.ClientID, owner.ID),
		Name:     firstNonEmpty(doc.Name, owner.DisplayName, DefaultName),
		Email:    firstNonEmpty(doc.Email, owner.Email),
		Plan:     normalizePlan(doc.Plan),

		BasePrompt:      strOr(doc.BasePrompt, DefaultBasePrompt),
		WelcomeMessage:  strOr(doc.WelcomeMessage, DefaultWelcomeMessage),
		FallbackMessage: strOr(doc.FallbackMessage, DefaultFallbackMessage),

		Telefono:             strOr(doc.Telefono, ""),
		Direccion:            strOr(doc.Direccion, DefaultDireccion),
		Horario:              strOr(doc.Horario, DefaultHorario),
		WhatsAppNumber:       strOr(doc.WhatsAppNumber, ""),
		PricingInfo:          strOr(doc.PricingInfo, DefaultPricingInfo),
		ChiropracticVideoURL: strOr(doc.ChiropracticVideoURL, ""),

		CalendarQueryDays:          positiveOr(doc.CalendarQueryDays, DefaultCalendarQueryDays),
		CalendarMaxUserRequestDays: positiveOr(doc.CalendarMaxUserRequestDays, DefaultCalendarMaxReqDays),

		GoogleCalendarConnected: boolOr(doc.GoogleCalendarConnected, DefaultCalendarConnected),
		GoogleCalendarEmail:     strOr(doc.GoogleCalendarEmail, ""),

		LeadCaptureEnabled: boolOr(doc.LeadCaptureEnabled, DefaultLeadCaptureEnabled),

		Clave: strOr(doc.Clave, ""),
	}

	p.ClinicNameForLeadPrompt = strOr(doc.ClinicNameForLeadPrompt, p.Name)
	p.LeadNotificationEmail = strOr(doc.LeadNotificationEmail, p.Email)

	if doc.CreatedAt != nil && !doc.CreatedAt.IsZero() {
		p.CreatedAt = *doc.CreatedAt
	} else {
		p.CreatedAt = now
	}

	return p
}

// NewDocument builds the document persisted on first sign-in. It carries the
// default template; the lead prompt name, notification email and clave stay
// absent until the client sets them, and reads fall back for them.
func NewDocument(owner Owner, now time.Time) *ClientProfile {
	p := Normalize(nil, owner, now)
	return &ClientProfile{
		ClientID: p.ClientID,
		Name:     p.Name,
		Email:    p.Email,
		Plan:     ptr(string(p.Plan)),

		BasePrompt:      ptr(p.BasePrompt),
		WelcomeMessage:  ptr(p.WelcomeMessage),
		FallbackMessage: ptr(p.FallbackMessage),

		Telefono:             ptr(p.Telefono),
		Direccion:            ptr(p.Direccion),
		Horario:              ptr(p.Horario),
		WhatsAppNumber:       ptr(p.WhatsAppNumber),
		PricingInfo:          ptr(p.PricingInfo),
		ChiropracticVideoURL: ptr(p.ChiropracticVideoURL),

		CalendarQueryDays:          ptr(p.CalendarQueryDays),
		CalendarMaxUserRequestDays: ptr(p.CalendarMaxUserRequestDays),

		GoogleCalendarConnected: ptr(p.GoogleCalendarConnected),
		GoogleCalendarEmail:     ptr(p.GoogleCalendarEmail),

		LeadCaptureEnabled: ptr(p.LeadCaptureEnabled),

		CreatedAt: ptr(now),
	}
}

// DaysOrDefault returns def for non-positive day counts
func DaysOrDefault(n int, def int) int {
	if n <= 0 {
		return def
	}
	return n
}

func normalizePlan(v *string) Plan {
	if v == nil {
		return DefaultPlan
	}
	switch Plan(strings.ToLower(strings.TrimSpace(*v))) {
	case PlanPremium:
		return PlanPremium
	default:
		return PlanFree
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// strOr treats an empty stored string as absent
func strOr(v *string, def string) string {
	if v == nil || *v == "" {
		return def
	}
	return *v
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func positiveOr(v *int, def int) int {
	if v == nil || *v <= 0 {
		return def
	}
	return *v
}

func ptr[T any](v T) *T {
	return &v
}

// Ptr returns a pointer to v
func Ptr[T any](v T) *T {
	return ptr(v)
}
