package handlers

import (
	"net/http"

	"github.com/MuhamadAgungGumelar/rigsite-dashboard-be/internal/core/auth"
	"github.com/MuhamadAgungGumelar/rigsite-dashboard-be/internal/shared/config"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
)

// Routes bundles the handlers mounted by Register
type Routes struct {
	AuthService *auth.Service
	Auth        *auth.Handler
	Settings    *SettingsHandler
	Calendar    *CalendarHandler
	Logs        *LogsHandler
	Session     *SessionHandler
	Health      *HealthHandler
	Pages       *PagesHandler

	// Non-nil entries disable the routes that need them
	IdentityConfig *config.Error
	DatabaseConfig *config.Error
	LogsConfig     *config.Error
}

// Register mounts every dashboard route on app
func Register(app *fiber.App, r Routes) {
	app.Use(auth.SessionMiddleware(r.AuthService))

	// Health check
	app.Get("/health", r.Health.GetHealth)

	// Static pages
	app.Get("/", r.Pages.Home)
	app.Get("/client/login", r.Pages.Login)
	app.Get("/privacidad", r.Pages.Privacy)
	app.Get("/widget/client-id.js", r.Pages.ClientIDScript)
	app.Use("/assets", filesystem.New(filesystem.Config{
		Root:   http.FS(Assets()),
		MaxAge: 3600,
	}))

	// Authentication routes
	identity := RequireConfig(r.IdentityConfig)
	app.Post("/auth/google", identity, r.Auth.LoginWithGoogle)
	app.Post("/auth/logout", identity, r.Auth.Logout)
	app.Get("/auth/me", identity, r.Auth.Me)

	// Client pages: configuration first, then the signed-in check, so a
	// signed-out visitor never reaches a data read
	client := func(h fiber.Handler) []fiber.Handler {
		return []fiber.Handler{identity, RequireConfig(r.DatabaseConfig), auth.RequireIdentity(), h}
	}
	app.Get("/client/session", append([]fiber.Handler{identity, RequireConfig(r.DatabaseConfig)}, r.Session.GetSession)...)
	app.Post("/client/session/refresh", client(r.Session.RefreshSession)...)

	app.Get("/client", client(r.Settings.GetMain)...)
	app.Post("/client", client(r.Settings.SaveMain)...)
	app.Get("/client/embed-script", client(r.Settings.EmbedScript)...)
	app.Get("/client/whatsapp-qr.png", client(r.Settings.WhatsAppQR)...)
	app.Get("/client/history", client(r.Settings.History)...)

	app.Get("/client/chatbot-settings", client(r.Settings.GetChatbot)...)
	app.Post("/client/chatbot-settings", client(r.Settings.SaveChatbot)...)
	app.Get("/client/chatbot-settings/prompt-preview", client(r.Settings.PromptPreview)...)

	app.Get("/client/lead-settings", client(r.Settings.GetLead)...)
	app.Post("/client/lead-settings", client(r.Settings.SaveLead)...)
	app.Post("/client/lead-settings/test-email", client(r.Settings.SendLeadTest)...)

	app.Get("/client/calendar-integration", client(r.Calendar.GetStatus)...)
	app.Get("/client/calendar-integration/connect", client(r.Calendar.Connect)...)
	app.Post("/client/calendar-integration/disconnect", client(r.Calendar.Disconnect)...)

	// Log viewer
	logsGate := RequireConfig(r.LogsConfig)
	app.Post("/logs/access", logsGate, r.Logs.Access)
	app.Get("/logs", logsGate, RequireConfig(r.DatabaseConfig), r.Logs.RequirePass(), r.Logs.List)
	app.Get("/logs/export", logsGate, RequireConfig(r.DatabaseConfig), r.Logs.RequirePass(), r.Logs.Export)
}
