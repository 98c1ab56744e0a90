package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/MuhamadAgungGumelar/rigsite-dashboard-be/internal/core/audit"
	"github.com/MuhamadAgungGumelar/rigsite-dashboard-be/internal/core/auth"
	"github.com/MuhamadAgungGumelar/rigsite-dashboard-be/internal/core/email"
	"github.com/MuhamadAgungGumelar/rigsite-dashboard-be/internal/core/metrics"
	"github.com/MuhamadAgungGumelar/rigsite-dashboard-be/internal/core/prompt"
	"github.com/MuhamadAgungGumelar/rigsite-dashboard-be/internal/core/widget"
	"github.com/MuhamadAgungGumelar/rigsite-dashboard-be/internal/modules/dashboard/models"
	"github.com/MuhamadAgungGumelar/rigsite-dashboard-be/internal/modules/dashboard/repositories"
	"github.com/rs/zerolog/log"
)

// Settings pages
const (
	PageMain    = "main"
	PageChatbot = "chatbot-settings"
	PageLead    = "lead-settings"
)

// RequestMeta describes who submitted a change, for the audit trail
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

// PageView is what a settings page endpoint returns
type PageView struct {
	Page   string      `json:"page"`
	Status             // phase + messages
	Form   interface{} `json:"form,omitempty"`
}

// MainForm is owned by the main dashboard page
type MainForm struct {
	ClientID    string      `json:"clientId"`
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	Plan        models.Plan `json:"plan"`
	Clave       string      `json:"clave"`
	EmbedScript string      `json:"embedScript"`
	EmbedReady  bool        `json:"embedReady"`
}

// ChatbotForm is owned by the chatbot settings page
type ChatbotForm struct {
	Name                       string `json:"name"`
	Telefono                   string `json:"telefono"`
	Direccion                  string `json:"direccion"`
	Horario                    string `json:"horario"`
	BasePrompt                 string `json:"basePrompt"`
	WhatsAppNumber             string `json:"whatsappNumber"`
	CalendarQueryDays          int    `json:"calendarQueryDays"`
	CalendarMaxUserRequestDays int    `json:"calendarMaxUserRequestDays"`
	PricingInfo                string `json:"pricingInfo"`
	ChiropracticVideoURL       string `json:"chiropracticVideoUrl"`
	WelcomeMessage             string `json:"welcomeMessage"`
	FallbackMessage            string `json:"fallbackMessage"`
}

// LeadForm is owned by the lead capture settings page
type LeadForm struct {
	LeadCaptureEnabled      bool   `json:"leadCaptureEnabled"`
	ClinicNameForLeadPrompt string `json:"clinicNameForLeadPrompt"`
	LeadNotificationEmail   string `json:"leadNotificationEmail"`
}

// SaveMainRequest is the main page submit
type SaveMainRequest struct {
	Name  string `json:"name"`
	Clave string `json:"clave"`
}

// SaveChatbotRequest is the chatbot settings submit. Day counts arrive as
// whatever the form sent (number or text).
type SaveChatbotRequest struct {
	Name                       string      `json:"name"`
	Telefono                   string      `json:"telefono"`
	Direccion                  string      `json:"direccion"`
	Horario                    string      `json:"horario"`
	BasePrompt                 string      `json:"basePrompt"`
	WhatsAppNumber             string      `json:"whatsappNumber"`
	CalendarQueryDays          interface{} `json:"calendarQueryDays"`
	CalendarMaxUserRequestDays interface{} `json:"calendarMaxUserRequestDays"`
	PricingInfo                string      `json:"pricingInfo"`
	ChiropracticVideoURL       string      `json:"chiropracticVideoUrl"`
	WelcomeMessage             string      `json:"welcomeMessage"`
	FallbackMessage            string      `json:"fallbackMessage"`
}

// SaveLeadRequest is the lead settings submit
type SaveLeadRequest struct {
	LeadCaptureEnabled      bool   `json:"leadCaptureEnabled"`
	ClinicNameForLeadPrompt string `json:"clinicNameForLeadPrompt"`
	LeadNotificationEmail   string `json:"leadNotificationEmail"`
}

// PromptPreview is the base prompt with the business data filled in
type PromptPreview struct {
	Template     string   `json:"template"`
	Rendered     string   `json:"rendered"`
	Placeholders []string `json:"placeholders"`
}

// SettingsService implements the settings pages: each loads a fresh,
// normalized profile, and saves only the fields it owns with merge semantics.
type SettingsService struct {
	profiles   ProfileSource
	repo       repositories.ProfileRepo
	audit      audit.Store
	board      *StatusBoard
	metrics    *metrics.Metrics
	mailer     *email.Service
	backendURL string
}

func NewSettingsService(
	profiles ProfileSource,
	repo repositories.ProfileRepo,
	auditStore audit.Store,
	board *StatusBoard,
	m *metrics.Metrics,
	mailer *email.Service,
	backendURL string,
) *SettingsService {
	return &SettingsService{
		profiles:   profiles,
		repo:       repo,
		audit:      auditStore,
		board:      board,
		metrics:    m,
		mailer:     mailer,
		backendURL: backendURL,
	}
}

// LoadMain returns the main dashboard page
func (s *SettingsService) LoadMain(ctx context.Context, ident *auth.Identity) (*PageView, error) {
	prof, err := currentProfile(ctx, s.profiles, ident)
	if err != nil {
		return s.failedView(PageMain, err)
	}
	return s.view(ident.UID, PageMain, s.mainForm(prof)), nil
}

// SaveMain writes the main page fields
func (s *SettingsService) SaveMain(ctx context.Context, ident *auth.Identity, req SaveMainRequest, meta RequestMeta) (*PageView, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, &RequiredFieldError{Field: "name"}
	}
	patch := models.ProfilePatch{
		Name:  &name,
		Clave: models.Ptr(strings.TrimSpace(req.Clave)),
	}
	prof, err := s.save(ctx, ident, PageMain, patch, meta, "¡Datos guardados exitosamente!")
	if err != nil {
		return s.failedView(PageMain, err)
	}
	return s.view(ident.UID, PageMain, s.mainForm(prof)), nil
}

// LoadChatbot returns the chatbot settings page
func (s *SettingsService) LoadChatbot(ctx context.Context, ident *auth.Identity) (*PageView, error) {
	prof, err := currentProfile(ctx, s.profiles, ident)
	if err != nil {
		return s.failedView(PageChatbot, err)
	}
	return s.view(ident.UID, PageChatbot, chatbotForm(prof)), nil
}

// SaveChatbot writes the chatbot settings. The email always comes from the
// signed-in identity and day counts that are not positive numbers fall back
// to the defaults.
func (s *SettingsService) SaveChatbot(ctx context.Context, ident *auth.Identity, req SaveChatbotRequest, meta RequestMeta) (*PageView, error) {
	if ident == nil {
		return nil, auth.ErrUnauthenticated
	}
	patch := models.ProfilePatch{
		Name:                       models.Ptr(req.Name),
		Email:                      models.Ptr(ident.Email),
		BasePrompt:                 models.Ptr(req.BasePrompt),
		WelcomeMessage:             models.Ptr(req.WelcomeMessage),
		FallbackMessage:            models.Ptr(req.FallbackMessage),
		Telefono:                   models.Ptr(req.Telefono),
		Direccion:                  models.Ptr(req.Direccion),
		Horario:                    models.Ptr(req.Horario),
		WhatsAppNumber:             models.Ptr(req.WhatsAppNumber),
		PricingInfo:                models.Ptr(req.PricingInfo),
		ChiropracticVideoURL:       models.Ptr(req.ChiropracticVideoURL),
		CalendarQueryDays:          models.Ptr(ParseDays(req.CalendarQueryDays, models.DefaultCalendarQueryDays)),
		CalendarMaxUserRequestDays: models.Ptr(ParseDays(req.CalendarMaxUserRequestDays, models.DefaultCalendarMaxReqDays)),
	}
	prof, err := s.save(ctx, ident, PageChatbot, patch, meta, "¡Configuración guardada exitosamente!")
	if err != nil {
		return s.failedView(PageChatbot, err)
	}
	return s.view(ident.UID, PageChatbot, chatbotForm(prof)), nil
}

// LoadLead returns the lead capture settings page
func (s *SettingsService) LoadLead(ctx context.Context, ident *auth.Identity) (*PageView, error) {
	prof, err := currentProfile(ctx, s.profiles, ident)
	if err != nil {
		return s.failedView(PageLead, err)
	}
	return s.view(ident.UID, PageLead, leadForm(prof)), nil
}

// SaveLead writes the lead capture settings. The notification email is
// required while capture is enabled.
func (s *SettingsService) SaveLead(ctx context.Context, ident *auth.Identity, req SaveLeadRequest, meta RequestMeta) (*PageView, error) {
	notify := strings.TrimSpace(req.LeadNotificationEmail)
	if req.LeadCaptureEnabled && notify == "" {
		return nil, &RequiredFieldError{Field: "leadNotificationEmail"}
	}
	patch := models.ProfilePatch{
		LeadCaptureEnabled:      models.Ptr(req.LeadCaptureEnabled),
		ClinicNameForLeadPrompt: models.Ptr(req.ClinicNameForLeadPrompt),
		LeadNotificationEmail:   models.Ptr(notify),
	}
	prof, err := s.save(ctx, ident, PageLead, patch, meta, "¡Configuración de leads guardada exitosamente!")
	if err != nil {
		return s.failedView(PageLead, err)
	}
	return s.view(ident.UID, PageLead, leadForm(prof)), nil
}

// PromptPreview renders the stored base prompt with the stored business data
func (s *SettingsService) PromptPreview(ctx context.Context, ident *auth.Identity) (*PromptPreview, error) {
	prof, err := currentProfile(ctx, s.profiles, ident)
	if err != nil {
		return nil, err
	}
	return &PromptPreview{
		Template:     prof.BasePrompt,
		Rendered:     prompt.Render(prof.BasePrompt, promptValues(prof)),
		Placeholders: prompt.Placeholders(prof.BasePrompt),
	}, nil
}

// SendLeadTest mails a sample lead notification to the stored address
func (s *SettingsService) SendLeadTest(ctx context.Context, ident *auth.Identity) (string, error) {
	prof, err := currentProfile(ctx, s.profiles, ident)
	if err != nil {
		return "", err
	}
	if s.mailer == nil || !s.mailer.Configured() {
		return "", email.ErrNoProvider
	}

	to := prof.LeadNotificationEmail
	err = s.mailer.SendLeadTest(ctx, to, email.LeadTestData{
		ClinicName: prof.ClinicNameForLeadPrompt,
		ClientName: prof.Name,
	})
	if err != nil {
		log.Error().Err(err).Str("client_id", prof.ClientID).Msg("❌ Failed to send lead test email")
		return "", err
	}
	log.Info().Str("client_id", prof.ClientID).Str("provider", s.mailer.GetProviderName()).Msg("📧 Lead test email sent")
	return to, nil
}

// History lists the recorded changes of the signed-in client
func (s *SettingsService) History(ctx context.Context, ident *auth.Identity, limit int) ([]audit.AuditLog, error) {
	if ident == nil {
		return nil, auth.ErrUnauthenticated
	}
	if s.audit == nil {
		return []audit.AuditLog{}, nil
	}
	return s.audit.History(ctx, ident.UID, limit)
}

// save runs the submit half of the page cycle: fresh read, merge write of the
// owned fields, status update, audit record, provider refresh
func (s *SettingsService) save(
	ctx context.Context,
	ident *auth.Identity,
	page string,
	patch models.ProfilePatch,
	meta RequestMeta,
	successMsg string,
) (*models.Profile, error) {
	prev, err := currentProfile(ctx, s.profiles, ident)
	if err != nil {
		return nil, err
	}

	s.board.Begin(ident.UID, page)
	if err := s.repo.Merge(ctx, ident.UID, patch); err != nil {
		log.Error().Err(err).Str("client_id", ident.UID).Str("page", page).Msg("❌ Failed to save settings")
		s.board.Fail(ident.UID, page, "Error al guardar: "+UserMessage(err))
		s.observeSave(page, "error")
		return nil, fmt.Errorf("save %s: %w", page, err)
	}
	s.board.Succeed(ident.UID, page, successMsg)
	s.observeSave(page, "ok")
	log.Info().Str("client_id", ident.UID).Str("page", page).Msg("💾 Settings saved")

	if s.audit != nil {
		err := s.audit.LogChange(ctx, audit.Change{
			ClientID:  ident.UID,
			ActorID:   ident.UID,
			Action:    audit.ActionUpdate,
			Entity:    page,
			OldValue:  patch.SnapshotOf(*prev),
			NewValue:  patch.Snapshot(),
			IPAddress: meta.IPAddress,
			UserAgent: meta.UserAgent,
		})
		if err != nil {
			log.Warn().Err(err).Str("client_id", ident.UID).Msg("⚠️ Failed to record audit entry")
		}
	}

	st, err := s.profiles.Refresh(ctx, ident)
	if err != nil || st.Profile == nil {
		// The write went through; show what was submitted on top of the old copy
		merged := applyToProfile(*prev, patch)
		return &merged, nil
	}
	return st.Profile, nil
}

// failedView maps a load/save failure. Errors that have a page rendering
// (loading, store failures) become a view; the rest go back to the caller.
func (s *SettingsService) failedView(page string, err error) (*PageView, error) {
	if errors.Is(err, ErrProfileLoading) {
		return &PageView{Page: page, Status: Status{Phase: PhaseLoading}}, nil
	}
	return nil, err
}

func (s *SettingsService) view(clientID, page string, form interface{}) *PageView {
	return &PageView{
		Page:   page,
		Status: s.board.Current(clientID, page),
		Form:   form,
	}
}

func (s *SettingsService) observeSave(page, status string) {
	if s.metrics != nil {
		s.metrics.SettingsSaves.WithLabelValues(page, status).Inc()
	}
}

func (s *SettingsService) mainForm(prof *models.Profile) MainForm {
	script, ready := widget.EmbedScript(s.backendURL, prof.ClientID, prof.Clave)
	return MainForm{
		ClientID:    prof.ClientID,
		Name:        prof.Name,
		Email:       prof.Email,
		Plan:        prof.Plan,
		Clave:       prof.Clave,
		EmbedScript: script,
		EmbedReady:  ready,
	}
}

func chatbotForm(prof *models.Profile) ChatbotForm {
	return ChatbotForm{
		Name:                       prof.Name,
		Telefono:                   prof.Telefono,
		Direccion:                  prof.Direccion,
		Horario:                    prof.Horario,
		BasePrompt:                 prof.BasePrompt,
		WhatsAppNumber:             prof.WhatsAppNumber,
		CalendarQueryDays:          prof.CalendarQueryDays,
		CalendarMaxUserRequestDays: prof.CalendarMaxUserRequestDays,
		PricingInfo:                prof.PricingInfo,
		ChiropracticVideoURL:       prof.ChiropracticVideoURL,
		WelcomeMessage:             prof.WelcomeMessage,
		FallbackMessage:            prof.FallbackMessage,
	}
}

func leadForm(prof *models.Profile) LeadForm {
	return LeadForm{
		LeadCaptureEnabled:      prof.LeadCaptureEnabled,
		ClinicNameForLeadPrompt: prof.ClinicNameForLeadPrompt,
		LeadNotificationEmail:   prof.LeadNotificationEmail,
	}
}

func promptValues(prof *models.Profile) prompt.Values {
	return prompt.Values{
		WhatsAppNumber:       prof.WhatsAppNumber,
		QueryDays:            prof.CalendarQueryDays,
		MaxRequestDays:       prof.CalendarMaxUserRequestDays,
		PricingInfo:          prof.PricingInfo,
		Direccion:            prof.Direccion,
		Horario:              prof.Horario,
		ChiropracticVideoURL: prof.ChiropracticVideoURL,
	}
}

// applyToProfile overlays a patch on a normalized profile
func applyToProfile(prof models.Profile, patch models.ProfilePatch) models.Profile {
	owner := models.Owner{ID: prof.ClientID, DisplayName: prof.Name, Email: prof.Email}
	doc := models.NewDocument(owner, prof.CreatedAt)
	fromProfile(doc, prof)
	patch.ApplyTo(doc)
	return models.Normalize(doc, owner, prof.CreatedAt)
}

// fromProfile copies a normalized profile back into a document
func fromProfile(doc *models.ClientProfile, prof models.Profile) {
	models.ProfilePatch{
		BasePrompt:                 models.Ptr(prof.BasePrompt),
		WelcomeMessage:             models.Ptr(prof.WelcomeMessage),
		FallbackMessage:            models.Ptr(prof.FallbackMessage),
		Telefono:                   models.Ptr(prof.Telefono),
		Direccion:                  models.Ptr(prof.Direccion),
		Horario:                    models.Ptr(prof.Horario),
		WhatsAppNumber:             models.Ptr(prof.WhatsAppNumber),
		PricingInfo:                models.Ptr(prof.PricingInfo),
		ChiropracticVideoURL:       models.Ptr(prof.ChiropracticVideoURL),
		CalendarQueryDays:          models.Ptr(prof.CalendarQueryDays),
		CalendarMaxUserRequestDays: models.Ptr(prof.CalendarMaxUserRequestDays),
		LeadCaptureEnabled:         models.Ptr(prof.LeadCaptureEnabled),
		ClinicNameForLeadPrompt:    models.Ptr(prof.ClinicNameForLeadPrompt),
		LeadNotificationEmail:      models.Ptr(prof.LeadNotificationEmail),
		Clave:                      models.Ptr(prof.Clave),
	}.ApplyTo(doc)
	doc.Plan = models.Ptr(string(prof.Plan))
	doc.GoogleCalendarConnected = models.Ptr(prof.GoogleCalendarConnected)
	doc.GoogleCalendarEmail = models.Ptr(prof.GoogleCalendarEmail)
}

// ParseDays reads a day count from a form value. Anything that is not a
// positive integer yields def.
func ParseDays(v interface{}, def int) int {
	var n int
	switch t := v.(type) {
	case float64:
		n = int(t)
	case int:
		n = t
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return def
		}
		n = parsed
	default:
		return def
	}
	return models.DaysOrDefault(n, def)
}
