package services

import (
	"errors"
	"fmt"

	"github.com/MuhamadAgungGumelar/rigsite-dashboard-be/internal/modules/dashboard/repositories"
)

var (
	// ErrConfirmationRequired is returned when a destructive action was not confirmed
	ErrConfirmationRequired = errors.New("confirmation required")
	// ErrNothingToExport is returned when the filtered log set is empty
	ErrNothingToExport = errors.New("nothing to export")
	// ErrProfileLoading is returned while the session provider still loads the profile
	ErrProfileLoading = errors.New("profile is still loading")
	// ErrTooManyAttempts is returned when the logs gate throttles a client
	ErrTooManyAttempts = errors.New("too many failed attempts")
	// ErrWrongPassword is returned when the logs gate password does not match
	ErrWrongPassword = errors.New("wrong password")
)

// ProfileUnavailableError means the profile could not be read or created
// for this session
type ProfileUnavailableError struct {
	Err error
}

func (e *ProfileUnavailableError) Error() string {
	return fmt.Sprintf("profile unavailable: %v", e.Err)
}

func (e *ProfileUnavailableError) Unwrap() error {
	return e.Err
}

// RequiredFieldError is the only validation failure pages produce
type RequiredFieldError struct {
	Field string
}

func (e *RequiredFieldError) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}

// UserMessage renders err for inline display. Store errors carry the
// provider code when one is available.
func UserMessage(err error) string {
	var storeErr *repositories.StoreError
	var reqErr *RequiredFieldError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &storeErr):
		return storeErr.UserMessage()
	case errors.As(err, &reqErr):
		return fmt.Sprintf("El campo %s es obligatorio.", reqErr.Field)
	case errors.Is(err, ErrProfileLoading):
		return "Cargando perfil..."
	case errors.Is(err, ErrNothingToExport):
		return "No hay registros para exportar."
	case errors.Is(err, ErrTooManyAttempts):
		return "Demasiados intentos fallidos. Intenta de nuevo más tarde."
	case errors.Is(err, ErrWrongPassword):
		return "Contraseña incorrecta."
	case errors.Is(err, ErrConfirmationRequired):
		return "Debes confirmar la acción."
	default:
		return fmt.Sprintf("Error (unknown): %v", err)
	}
}
