package auth

import (
	"errors"
)

var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrEmailNotVerified = errors.New("email not verified by Google")
	ErrPopupClosed      = errors.New("sign-in popup closed")
	ErrPopupBlocked     = errors.New("sign-in popup blocked")
	ErrPopupPending     = errors.New("another sign-in popup is already open")
	ErrProvider         = errors.New("identity provider error")
	ErrUnauthenticated  = errors.New("not signed in")
)

// FromProviderCode maps a browser-side sign-in error code to an error
func FromProviderCode(code string) error {
	switch code {
	case "":
		return nil
	case "auth/popup-closed-by-user":
		return ErrPopupClosed
	case "auth/popup-blocked":
		return ErrPopupBlocked
	case "auth/cancelled-popup-request":
		return ErrPopupPending
	default:
		return ErrProvider
	}
}

// FriendlyMessage returns the short string shown to the user
func FriendlyMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrPopupClosed):
		return "Inicio de sesión cancelado. Cerraste la ventana antes de terminar."
	case errors.Is(err, ErrPopupBlocked):
		return "El navegador bloqueó la ventana de inicio de sesión. Permite las ventanas emergentes e inténtalo de nuevo."
	case errors.Is(err, ErrPopupPending):
		return "Ya hay una ventana de inicio de sesión abierta."
	case errors.Is(err, ErrEmailNotVerified):
		return "Tu correo de Google no está verificado."
	case errors.Is(err, ErrInvalidToken):
		return "No pudimos verificar tu cuenta de Google. Inténtalo de nuevo."
	case errors.Is(err, ErrUnauthenticated):
		return "Debes iniciar sesión para acceder a esta página."
	default:
		return "Error al iniciar sesión. Inténtalo de nuevo."
	}
}
