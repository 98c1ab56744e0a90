package auth

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
)

type fakeVerifier struct {
	user *GoogleUserInfo
	err  error
}

func (f *fakeVerifier) VerifyIDToken(_ context.Context, _ string) (*GoogleUserInfo, error) {
	return f.user, f.err
}

func newTestService(v TokenVerifier) *Service {
	return NewService(v, "test-secret", time.Hour)
}

func TestLoginPublishesSessionChange(t *testing.T) {
	svc := newTestService(&fakeVerifier{user: &GoogleUserInfo{GoogleID: "g-1", Email: "a@b.cl", Name: "Ana"}})
	changes, unsubscribe := svc.Subscribe()
	defer unsubscribe()

	resp, ident, err := svc.LoginWithGoogle(context.Background(), "google-token")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.AccessToken == "" || ident.UID != "g-1" {
		t.Fatalf("resp = %+v ident = %+v", resp, ident)
	}

	select {
	case ch := <-changes:
		if ch.UID != "g-1" || ch.Identity == nil || ch.Identity.DisplayName != "Ana" {
			t.Fatalf("change = %+v", ch)
		}
	case <-time.After(time.Second):
		t.Fatal("no session change published")
	}

	svc.Logout("g-1")
	select {
	case ch := <-changes:
		if ch.UID != "g-1" || ch.Identity != nil {
			t.Fatalf("sign-out change = %+v", ch)
		}
	case <-time.After(time.Second):
		t.Fatal("no sign-out published")
	}
}

func TestLoginVerifierErrorPublishesNothing(t *testing.T) {
	svc := newTestService(&fakeVerifier{err: ErrEmailNotVerified})
	changes, unsubscribe := svc.Subscribe()
	defer unsubscribe()

	if _, _, err := svc.LoginWithGoogle(context.Background(), "tok"); !errors.Is(err, ErrEmailNotVerified) {
		t.Fatalf("err = %v", err)
	}
	select {
	case ch := <-changes:
		t.Fatalf("unexpected change %+v", ch)
	default:
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	svc := newTestService(&fakeVerifier{})
	changes, unsubscribe := svc.Subscribe()
	unsubscribe()
	unsubscribe()

	if _, ok := <-changes; ok {
		t.Fatal("channel still open")
	}
	svc.Logout("anyone")
}

func TestSessionTokenRoundTrip(t *testing.T) {
	j := NewJWTService("secret", time.Hour)
	tok, ttl, err := j.GenerateSessionToken(&TokenClaims{UserID: "u1", Email: "e@x.cl", Name: "N"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if ttl != 3600 {
		t.Fatalf("ttl = %d", ttl)
	}
	claims, err := j.ValidateSessionToken(tok)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != "u1" || claims.Email != "e@x.cl" || claims.Name != "N" {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestIDTokenIsNotASessionToken(t *testing.T) {
	j := NewJWTService("secret", time.Hour)
	idTok, err := j.GenerateIDToken("u1", "e@x.cl")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := j.ValidateSessionToken(idTok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("id token accepted as session: %v", err)
	}
	sub, err := j.ValidateIDToken(idTok)
	if err != nil || sub != "u1" {
		t.Fatalf("sub = %q err = %v", sub, err)
	}
}

func TestTokenSignedWithOtherSecretRejected(t *testing.T) {
	tok, _, _ := NewJWTService("a", time.Hour).GenerateSessionToken(&TokenClaims{UserID: "u"})
	if _, err := NewJWTService("b", time.Hour).ValidateSessionToken(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v", err)
	}
}

func TestFriendlyMessages(t *testing.T) {
	cases := map[string]error{
		"auth/popup-closed-by-user":    ErrPopupClosed,
		"auth/popup-blocked":           ErrPopupBlocked,
		"auth/cancelled-popup-request": ErrPopupPending,
		"auth/internal-error":          ErrProvider,
	}
	for code, want := range cases {
		got := FromProviderCode(code)
		if !errors.Is(got, want) {
			t.Errorf("%s: got %v, want %v", code, got, want)
		}
		if FriendlyMessage(got) == "" {
			t.Errorf("%s: empty message", code)
		}
	}
	if FromProviderCode("") != nil {
		t.Error("empty code should map to nil")
	}
}

func TestMiddlewareResolvesCookieAndBearer(t *testing.T) {
	svc := newTestService(&fakeVerifier{user: &GoogleUserInfo{GoogleID: "g-9", Name: "Bea"}})
	resp, _, err := svc.LoginWithGoogle(context.Background(), "tok")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	app := fiber.New()
	app.Use(SessionMiddleware(svc))
	app.Get("/who", RequireIdentity(), func(c *fiber.Ctx) error {
		return c.SendString(IdentityFrom(c).UID)
	})

	req := httptest.NewRequest(http.MethodGet, "/who", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: resp.AccessToken})
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("cookie request: %v", err)
	}
	body, _ := io.ReadAll(res.Body)
	if res.StatusCode != fiber.StatusOK || string(body) != "g-9" {
		t.Fatalf("cookie: status %d body %s", res.StatusCode, body)
	}

	req = httptest.NewRequest(http.MethodGet, "/who", nil)
	req.Header.Set("Authorization", "Bearer "+resp.AccessToken)
	res, _ = app.Test(req)
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("bearer: status %d", res.StatusCode)
	}

	res, _ = app.Test(httptest.NewRequest(http.MethodGet, "/who", nil))
	body, _ = io.ReadAll(res.Body)
	if res.StatusCode != fiber.StatusUnauthorized || !strings.Contains(string(body), LoginPath) {
		t.Fatalf("anonymous: status %d body %s", res.StatusCode, body)
	}
}

func TestHandlerMapsPopupErrors(t *testing.T) {
	svc := newTestService(&fakeVerifier{})
	h := NewHandler(svc, false)
	app := fiber.New()
	app.Post("/auth/google", h.LoginWithGoogle)

	req := httptest.NewRequest(http.MethodPost, "/auth/google",
		strings.NewReader(`{"provider_error":"auth/popup-closed-by-user"}`))
	req.Header.Set("Content-Type", "application/json")
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	body, _ := io.ReadAll(res.Body)
	if res.StatusCode != fiber.StatusBadRequest || !strings.Contains(string(body), "cancelado") {
		t.Fatalf("status %d body %s", res.StatusCode, body)
	}
}

func TestPasswordHashVerify(t *testing.T) {
	hash, err := HashPassword("superrigo", 4)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !VerifyPassword(hash, "superrigo") {
		t.Fatal("correct password rejected")
	}
	if VerifyPassword(hash, "SUPERRIGO") {
		t.Fatal("wrong password accepted")
	}
}
