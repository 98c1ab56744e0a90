package email

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"
)

// ErrNoProvider is returned when no email provider is configured
var ErrNoProvider = errors.New("no email provider configured")

// Provider defines the interface for email providers
type Provider interface {
	SendEmail(ctx context.Context, to, subject, htmlBody string) error
	GetProviderName() string
}

// NewProvider builds the provider named by EMAIL_PROVIDER. Unknown or
// unconfigured providers yield nil.
func NewProvider(name, brevoKey, resendKey, fromEmail, fromName string) Provider {
	switch strings.ToLower(name) {
	case "brevo":
		if brevoKey != "" {
			return NewBrevoProvider(brevoKey, fromEmail, fromName)
		}
	case "resend":
		if resendKey != "" {
			return NewResendProvider(resendKey, fromEmail, fromName)
		}
	case "":
		if brevoKey != "" {
			return NewBrevoProvider(brevoKey, fromEmail, fromName)
		}
		if resendKey != "" {
			return NewResendProvider(resendKey, fromEmail, fromName)
		}
	}
	return nil
}

// Service wraps the email provider
type Service struct {
	provider Provider
}

// NewService creates a new email service with the specified provider
func NewService(provider Provider) *Service {
	return &Service{
		provider: provider,
	}
}

// Configured reports whether a provider is set
func (s *Service) Configured() bool {
	return s.provider != nil
}

// GetProviderName returns the name of the current provider
func (s *Service) GetProviderName() string {
	if s.provider == nil {
		return "none"
	}
	return s.provider.GetProviderName()
}

// LeadTestData fills the lead notification test email
type LeadTestData struct {
	ClinicName string
	ClientName string
}

// SendLeadTest sends a sample lead notification so the client can check the
// address receives them
func (s *Service) SendLeadTest(ctx context.Context, to string, data LeadTestData) error {
	if s.provider == nil {
		return ErrNoProvider
	}
	if strings.TrimSpace(to) == "" {
		return fmt.Errorf("lead notification email is empty")
	}

	body, err := renderLeadTest(data)
	if err != nil {
		return fmt.Errorf("failed to render email: %w", err)
	}
	subject := fmt.Sprintf("Prueba de notificación de leads - %s", data.ClinicName)
	return s.provider.SendEmail(ctx, to, subject, body)
}

var leadTestTmpl = template.Must(template.New("lead-test").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #4f46e5; color: white; padding: 20px; text-align: center; }
        .content { padding: 20px; background: #f9f9f9; }
        .footer { padding: 10px; text-align: center; font-size: 12px; color: #666; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Nuevo lead de prueba</h1>
        </div>
        <div class="content">
            <p>Hola {{.ClientName}},</p>
            <p>Este es un correo de prueba. Cuando tu RigBot capture un lead para <strong>{{.ClinicName}}</strong>, la notificación llegará a esta dirección.</p>
            <ul>
                <li>Nombre: Paciente de prueba</li>
                <li>Teléfono: +56 9 0000 0000</li>
                <li>Motivo: Consulta de ejemplo</li>
            </ul>
        </div>
        <div class="footer">
            <p>Enviado desde el panel de RigBot</p>
        </div>
    </div>
</body>
</html>`))

func renderLeadTest(data LeadTestData) (string, error) {
	var buf bytes.Buffer
	if err := leadTestTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
