package models

import (
	"time"
)

// Plan is the subscription tier of a client
type Plan string

const (
	PlanFree    Plan = "free"
	PlanPremium Plan = "premium"
)

// ClientProfile is the stored per-client document. Identity fields are always
// present; every other field is optional and nil means "absent from the
// document". Use Normalize to obtain a fully defaulted Profile.
type ClientProfile struct {
	ClientID string `json:"clientId" gorm:"column:client_id;type:text;primaryKey" bson:"_id"`
	Name     string `json:"name" gorm:"column:name;type:text" bson:"name"`
	Email    string `json:"email" gorm:"column:email;type:text" bson:"email"`

	Plan *string `json:"plan,omitempty" gorm:"column:plan;type:text" bson:"plan,omitempty"`

	// Chatbot behavior
	BasePrompt      *string `json:"basePrompt,omitempty" gorm:"column:base_prompt;type:text" bson:"basePrompt,omitempty"`
	WelcomeMessage  *string `json:"welcomeMessage,omitempty" gorm:"column:welcome_message;type:text" bson:"welcomeMessage,omitempty"`
	FallbackMessage *string `json:"fallbackMessage,omitempty" gorm:"column:fallback_message;type:text" bson:"fallbackMessage,omitempty"`

	// Business info
	Telefono             *string `json:"telefono,omitempty" gorm:"column:telefono;type:text" bson:"telefono,omitempty"`
	Direccion            *string `json:"direccion,omitempty" gorm:"column:direccion;type:text" bson:"direccion,omitempty"`
	Horario              *string `json:"horario,omitempty" gorm:"column:horario;type:text" bson:"horario,omitempty"`
	WhatsAppNumber       *string `json:"whatsappNumber,omitempty" gorm:"column:whatsapp_number;type:text" bson:"whatsappNumber,omitempty"`
	PricingInfo          *string `json:"pricingInfo,omitempty" gorm:"column:pricing_info;type:text" bson:"pricingInfo,omitempty"`
	ChiropracticVideoURL *string `json:"chiropracticVideoUrl,omitempty" gorm:"column:chiropractic_video_url;type:text" bson:"chiropracticVideoUrl,omitempty"`

	// Calendar scheduling knobs
	CalendarQueryDays          *int `json:"calendarQueryDays,omitempty" gorm:"column:calendar_query_days" bson:"calendarQueryDays,omitempty"`
	CalendarMaxUserRequestDays *int `json:"calendarMaxUserRequestDays,omitempty" gorm:"column:calendar_max_user_request_days" bson:"calendarMaxUserRequestDays,omitempty"`

	// Calendar connection state, written by the backend
	GoogleCalendarConnected *bool   `json:"googleCalendarConnected,omitempty" gorm:"column:google_calendar_connected" bson:"googleCalendarConnected,omitempty"`
	GoogleCalendarEmail     *string `json:"googleCalendarEmail,omitempty" gorm:"column:google_calendar_email;type:text" bson:"googleCalendarEmail,omitempty"`

	// Lead capture
	LeadCaptureEnabled      *bool   `json:"leadCaptureEnabled,omitempty" gorm:"column:lead_capture_enabled" bson:"leadCaptureEnabled,omitempty"`
	ClinicNameForLeadPrompt *string `json:"clinicNameForLeadPrompt,omitempty" gorm:"column:clinic_name_for_lead_prompt;type:text" bson:"clinicNameForLeadPrompt,omitempty"`
	LeadNotificationEmail   *string `json:"leadNotificationEmail,omitempty" gorm:"column:lead_notification_email;type:text" bson:"leadNotificationEmail,omitempty"`

	// Widget secret
	Clave *string `json:"clave,omitempty" gorm:"column:clave;type:text" bson:"clave,omitempty"`

	CreatedAt *time.Time `json:"createdAt,omitempty" gorm:"column:created_at" bson:"createdAt,omitempty"`
}

// TableName specifies the table name
func (ClientProfile) TableName() string {
	return "client_profiles"
}

// Owner is the signed-in identity a profile belongs to
type Owner struct {
	ID          string
	DisplayName string
	Email       string
}

// Profile is the normalized, fully defaulted view of a ClientProfile
type Profile struct {
	ClientID string `json:"clientId"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Plan     Plan   `json:"plan"`

	BasePrompt      string `json:"basePrompt"`
	WelcomeMessage  string `json:"welcomeMessage"`
	FallbackMessage string `json:"fallbackMessage"`

	Telefono             string `json:"telefono"`
	Direccion            string `json:"direccion"`
	Horario              string `json:"horario"`
	WhatsAppNumber       string `json:"whatsappNumber"`
	PricingInfo          string `json:"pricingInfo"`
	ChiropracticVideoURL string `json:"chiropracticVideoUrl"`

	CalendarQueryDays          int `json:"calendarQueryDays"`
	CalendarMaxUserRequestDays int `json:"calendarMaxUserRequestDays"`

	GoogleCalendarConnected bool   `json:"googleCalendarConnected"`
	GoogleCalendarEmail     string `json:"googleCalendarEmail"`

	LeadCaptureEnabled      bool   `json:"leadCaptureEnabled"`
	ClinicNameForLeadPrompt string `json:"clinicNameForLeadPrompt"`
	LeadNotificationEmail   string `json:"leadNotificationEmail"`

	Clave string `json:"clave"`

	CreatedAt time.Time `json:"createdAt"`
}
