package models

// ProfilePatch is a partial update of a ClientProfile. Only non-nil fields are
// written; everything else in the stored document is left untouched.
type ProfilePatch struct {
	Name  *string
	Email *string

	BasePrompt      *string
	WelcomeMessage  *string
	FallbackMessage *string

	Telefono             *string
	Direccion            *string
	Horario              *string
	WhatsAppNumber       *string
	PricingInfo          *string
	ChiropracticVideoURL *string

	CalendarQueryDays          *int
	CalendarMaxUserRequestDays *int

	LeadCaptureEnabled      *bool
	ClinicNameForLeadPrompt *string
	LeadNotificationEmail   *string

	Clave *string
}

// PatchField is one field carried by a ProfilePatch
type PatchField struct {
	Key    string // document key (mongo, json)
	Column string // sql column
	Value  interface{}
}

// Fields lists the set fields in a stable order
func (p ProfilePatch) Fields() []PatchField {
	var out []PatchField
	add := func(key, column string, set bool, v interface{}) {
		if set {
			out = append(out, PatchField{Key: key, Column: column, Value: v})
		}
	}

	add("name", "name", p.Name != nil, deref(p.Name))
	add("email", "email", p.Email != nil, deref(p.Email))
	add("basePrompt", "base_prompt", p.BasePrompt != nil, deref(p.BasePrompt))
	add("welcomeMessage", "welcome_message", p.WelcomeMessage != nil, deref(p.WelcomeMessage))
	add("fallbackMessage", "fallback_message", p.FallbackMessage != nil, deref(p.FallbackMessage))
	add("telefono", "telefono", p.Telefono != nil, deref(p.Telefono))
	add("direccion", "direccion", p.Direccion != nil, deref(p.Direccion))
	add("horario", "horario", p.Horario != nil, deref(p.Horario))
	add("whatsappNumber", "whatsapp_number", p.WhatsAppNumber != nil, deref(p.WhatsAppNumber))
	add("pricingInfo", "pricing_info", p.PricingInfo != nil, deref(p.PricingInfo))
	add("chiropracticVideoUrl", "chiropractic_video_url", p.ChiropracticVideoURL != nil, deref(p.ChiropracticVideoURL))
	add("calendarQueryDays", "calendar_query_days", p.CalendarQueryDays != nil, deref(p.CalendarQueryDays))
	add("calendarMaxUserRequestDays", "calendar_max_user_request_days", p.CalendarMaxUserRequestDays != nil, deref(p.CalendarMaxUserRequestDays))
	add("leadCaptureEnabled", "lead_capture_enabled", p.LeadCaptureEnabled != nil, deref(p.LeadCaptureEnabled))
	add("clinicNameForLeadPrompt", "clinic_name_for_lead_prompt", p.ClinicNameForLeadPrompt != nil, deref(p.ClinicNameForLeadPrompt))
	add("leadNotificationEmail", "lead_notification_email", p.LeadNotificationEmail != nil, deref(p.LeadNotificationEmail))
	add("clave", "clave", p.Clave != nil, deref(p.Clave))

	return out
}

// IsEmpty reports whether the patch carries no field
func (p ProfilePatch) IsEmpty() bool {
	return len(p.Fields()) == 0
}

// ApplyTo copies the set fields onto doc
func (p ProfilePatch) ApplyTo(doc *ClientProfile) {
	if p.Name != nil {
		doc.Name = *p.Name
	}
	if p.Email != nil {
		doc.Email = *p.Email
	}
	setPtr(&doc.BasePrompt, p.BasePrompt)
	setPtr(&doc.WelcomeMessage, p.WelcomeMessage)
	setPtr(&doc.FallbackMessage, p.FallbackMessage)
	setPtr(&doc.Telefono, p.Telefono)
	setPtr(&doc.Direccion, p.Direccion)
	setPtr(&doc.Horario, p.Horario)
	setPtr(&doc.WhatsAppNumber, p.WhatsAppNumber)
	setPtr(&doc.PricingInfo, p.PricingInfo)
	setPtr(&doc.ChiropracticVideoURL, p.ChiropracticVideoURL)
	setPtr(&doc.CalendarQueryDays, p.CalendarQueryDays)
	setPtr(&doc.CalendarMaxUserRequestDays, p.CalendarMaxUserRequestDays)
	setPtr(&doc.LeadCaptureEnabled, p.LeadCaptureEnabled)
	setPtr(&doc.ClinicNameForLeadPrompt, p.ClinicNameForLeadPrompt)
	setPtr(&doc.LeadNotificationEmail, p.LeadNotificationEmail)
	setPtr(&doc.Clave, p.Clave)
}

// Snapshot returns the patch fields as a key/value map, used by the audit trail
func (p ProfilePatch) Snapshot() map[string]interface{} {
	m := make(map[string]interface{})
	for _, f := range p.Fields() {
		m[f.Key] = f.Value
	}
	return m
}

// SnapshotOf reads the same keys the patch carries from a normalized profile
func (p ProfilePatch) SnapshotOf(prof Profile) map[string]interface{} {
	all := map[string]interface{}{
		"name":                       prof.Name,
		"email":                      prof.Email,
		"basePrompt":                 prof.BasePrompt,
		"welcomeMessage":             prof.WelcomeMessage,
		"fallbackMessage":            prof.FallbackMessage,
		"telefono":                   prof.Telefono,
		"direccion":                  prof.Direccion,
		"horario":                    prof.Horario,
		"whatsappNumber":             prof.WhatsAppNumber,
		"pricingInfo":                prof.PricingInfo,
		"chiropracticVideoUrl":       prof.ChiropracticVideoURL,
		"calendarQueryDays":          prof.CalendarQueryDays,
		"calendarMaxUserRequestDays": prof.CalendarMaxUserRequestDays,
		"leadCaptureEnabled":         prof.LeadCaptureEnabled,
		"clinicNameForLeadPrompt":    prof.ClinicNameForLeadPrompt,
		"leadNotificationEmail":      prof.LeadNotificationEmail,
		"clave":                      prof.Clave,
	}
	m := make(map[string]interface{})
	for _, f := range p.Fields() {
		m[f.Key] = all[f.Key]
	}
	return m
}

func setPtr[T any](dst **T, src *T) {
	if src != nil {
		v := *src
		*dst = &v
	}
}

func deref[T any](v *T) T {
	var zero T
	if v == nil {
		return zero
	}
	return *v
}
