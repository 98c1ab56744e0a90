// Package widget builds the snippets a client pastes on their website to load
// the RigBot chat bubble, plus the WhatsApp QR shown on the dashboard.
package widget

import (
	"fmt"
	"net/url"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// DemoClientID is injected when no signed-in client is known
const DemoClientID = "demo-client"

const (
	placeholderNoClient  = "<!-- El ID de cliente no está disponible todavía. Inicia sesión para generar tu script. -->"
	placeholderNoBackend = "<!-- La URL del backend de RigBot no está configurada. -->"
)

// QRSize is the side of the generated QR image in pixels
const QRSize = 256

// EmbedScript returns the script tag that loads the widget for clientID. The
// second value is false when the tag could not be built and a placeholder
// comment was returned instead.
func EmbedScript(baseURL, clientID, clave string) (string, bool) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return placeholderNoBackend, false
	}
	if strings.TrimSpace(clientID) == "" {
		return placeholderNoClient, false
	}

	src := baseURL + "/api/widget?clientId=" + encodeComponent(clientID)
	if strings.TrimSpace(clave) != "" {
		src += "&clave=" + encodeComponent(clave)
	}
	return fmt.Sprintf(`<script src="%s" defer></script>`, src), true
}

// ClientIDScript sets window.RIGBOT_CLIENT_ID for the widget loader
func ClientIDScript(clientID string) string {
	if strings.TrimSpace(clientID) == "" {
		clientID = DemoClientID
	}
	return fmt.Sprintf("window.RIGBOT_CLIENT_ID = %q;", clientID)
}

// WhatsAppLink turns a phone number as typed by the client into a wa.me link.
// Only digits are kept.
func WhatsAppLink(number string) (string, error) {
	var digits strings.Builder
	for _, r := range number {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return "", fmt.Errorf("whatsapp number %q has no digits", number)
	}
	return "https://wa.me/" + digits.String(), nil
}

// WhatsAppQR renders the wa.me link of number as a PNG
func WhatsAppQR(number string) ([]byte, error) {
	link, err := WhatsAppLink(number)
	if err != nil {
		return nil, err
	}
	png, err := qrcode.Encode(link, qrcode.Medium, QRSize)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}
	return png, nil
}

// encodeComponent escapes like a browser's encodeURIComponent does for the
// characters we care about: spaces become %20, not +.
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
