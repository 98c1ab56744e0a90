package handlers

import (
	"embed"
	"io/fs"

	"github.com/MuhamadAgungGumelar/rigsite-dashboard-be/internal/core/auth"
	"github.com/MuhamadAgungGumelar/rigsite-dashboard-be/internal/core/widget"
	"github.com/gofiber/fiber/v2"
)

//go:embed pages
var pagesFS embed.FS

// Assets exposes the static stylesheet and images under pages/assets
func Assets() fs.FS {
	sub, err := fs.Sub(pagesFS, "pages/assets")
	if err != nil {
		panic(err)
	}
	return sub
}

type PagesHandler struct{}

func NewPagesHandler() *PagesHandler {
	return &PagesHandler{}
}

// Home godoc
// @Summary Landing page
// @Tags Pages
// @Produce html
// @Success 200 {string} string
// @Router / [get]
func (h *PagesHandler) Home(c *fiber.Ctx) error {
	return sendPage(c, "pages/home.html")
}

// Login godoc
// @Summary Client login page
// @Tags Pages
// @Produce html
// @Success 200 {string} string
// @Router /client/login [get]
func (h *PagesHandler) Login(c *fiber.Ctx) error {
	return sendPage(c, "pages/login.html")
}

// Privacy godoc
// @Summary Privacy policy
// @Tags Pages
// @Produce html
// @Success 200 {string} string
// @Router /privacidad [get]
func (h *PagesHandler) Privacy(c *fiber.Ctx) error {
	return sendPage(c, "pages/privacidad.html")
}

// ClientIDScript godoc
// @Summary Widget client id injector
// @Description Sets window.RIGBOT_CLIENT_ID for the signed-in client, or the demo client
// @Tags Widget
// @Produce javascript
// @Success 200 {string} string
// @Router /widget/client-id.js [get]
func (h *PagesHandler) ClientIDScript(c *fiber.Ctx) error {
	clientID := ""
	if ident := auth.IdentityFrom(c); ident != nil {
		clientID = ident.UID
	}
	c.Type("js", "utf-8")
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.SendString(widget.ClientIDScript(clientID))
}

func sendPage(c *fiber.Ctx, name string) error {
	body, err := pagesFS.ReadFile(name)
	if err != nil {
		return fiber.ErrNotFound
	}
	c.Type("html", "utf-8")
	return c.Send(body)
}
