package widget

import (
	"bytes"
	"strings"
	"testing"
)

func TestEmbedScript(t *testing.T) {
	tests := []struct {
		name     string
		base     string
		clientID string
		clave    string
		want     string
		ok       bool
	}{
		{
			name:     "without clave",
			base:     "https://bot.example.com/",
			clientID: "abc123",
			want:     `<script src="https://bot.example.com/api/widget?clientId=abc123" defer></script>`,
			ok:       true,
		},
		{
			name:     "with clave encoded",
			base:     "https://bot.example.com",
			clientID: "abc 123",
			clave:    "s3cr&t x",
			want:     `<script src="https://bot.example.com/api/widget?clientId=abc%20123&clave=s3cr%26t%20x" defer></script>`,
			ok:       true,
		},
		{
			name:     "blank clave is dropped",
			base:     "https://bot.example.com",
			clientID: "abc",
			clave:    "   ",
			want:     `<script src="https://bot.example.com/api/widget?clientId=abc" defer></script>`,
			ok:       true,
		},
		{
			name:     "no backend",
			clientID: "abc",
			want:     placeholderNoBackend,
		},
		{
			name: "no client",
			base: "https://bot.example.com",
			want: placeholderNoClient,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := EmbedScript(tt.base, tt.clientID, tt.clave)
			if got != tt.want || ok != tt.ok {
				t.Fatalf("EmbedScript() = %q, %v; want %q, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestClientIDScript(t *testing.T) {
	if got := ClientIDScript(""); got != `window.RIGBOT_CLIENT_ID = "demo-client";` {
		t.Fatalf("anonymous script = %q", got)
	}
	if got := ClientIDScript("uid-1"); got != `window.RIGBOT_CLIENT_ID = "uid-1";` {
		t.Fatalf("client script = %q", got)
	}
}

func TestWhatsAppQR(t *testing.T) {
	link, err := WhatsAppLink("+56 9 1234-5678")
	if err != nil || link != "https://wa.me/56912345678" {
		t.Fatalf("link = %q, %v", link, err)
	}

	png, err := WhatsAppQR("+56 9 1234-5678")
	if err != nil {
		t.Fatalf("qr: %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Fatal("expected PNG output")
	}

	if _, err := WhatsAppQR("n/a"); err == nil || !strings.Contains(err.Error(), "no digits") {
		t.Fatalf("expected no digits error, got %v", err)
	}
}
