package repositories

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrProfileNotFound is returned when no document exists for a client id
	ErrProfileNotFound = errors.New("client profile not found")
	// ErrEmptyPatch is returned when a merge carries no field
	ErrEmptyPatch = errors.New("empty profile patch")
)

// StoreError wraps a document store failure together with the provider
// error code, when the driver exposes one
type StoreError struct {
	Op   string
	Code string
	Err  error
}

func (e *StoreError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: [%s] %v", e.Op, e.Code, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// UserMessage renders the error the way pages show it inline
func (e *StoreError) UserMessage() string {
	code := e.Code
	if code == "" {
		code = "unknown"
	}
	return fmt.Sprintf("Error (%s): %v", code, e.Err)
}

// wrapStoreErr attaches the driver error code, if any
func wrapStoreErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrProfileNotFound) {
		return err
	}

	se := &StoreError{Op: op, Err: err}

	var pgErr *pgconn.PgError
	var cmdErr mongo.CommandError
	var writeErr mongo.WriteException
	switch {
	case errors.As(err, &pgErr):
		se.Code = pgErr.Code
	case errors.As(err, &cmdErr):
		se.Code = cmdErr.Name
		if se.Code == "" {
			se.Code = fmt.Sprint(cmdErr.Code)
		}
	case errors.As(err, &writeErr):
		if len(writeErr.WriteErrors) > 0 {
			se.Code = fmt.Sprint(writeErr.WriteErrors[0].Code)
		}
	case mongo.IsTimeout(err), mongo.IsNetworkError(err):
		se.Code = "unavailable"
	}
	return se
}
