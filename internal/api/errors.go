package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/five82/storefront/internal/catalog"
)

// Error is a failed remote call. Status is zero when no response arrived;
// Err is set for transport and decode failures.
type Error struct {
	Method  string
	Path    string
	Status  int
	Message string // server-supplied, may be empty
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("api %s %s: %v", e.Method, e.Path, e.Err)
	case e.Message != "":
		return fmt.Sprintf("api %s %s returned status %d: %s", e.Method, e.Path, e.Status, e.Message)
	default:
		return fmt.Sprintf("api %s %s returned status %d", e.Method, e.Path, e.Status)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// NotFound reports whether the server answered 404.
func (e *Error) NotFound() bool { return e.Status == http.StatusNotFound }

// Is makes a 404 match catalog.ErrNotFound.
func (e *Error) Is(target error) bool {
	return target == catalog.ErrNotFound && e.NotFound()
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	return errors.Is(err, catalog.ErrNotFound)
}
