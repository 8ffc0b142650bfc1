package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Error kinds shared by the store and handlers. respondError maps them to
// HTTP status codes with errors.Is.
var (
	errValidation = errors.New("validation failed")
	errNotFound   = errors.New("not found")
	errConflict   = errors.New("conflict")
	errAuth       = errors.New("invalid credentials")
	// errUpstream marks a failed generation call. It is logged and replaced
	// by fallback text, never written to a response.
	errUpstream = errors.New("upstream generation failed")
)

// kindError pairs a client-facing message with one of the kinds above.
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

func validationError(msg string) error { return &kindError{kind: errValidation, msg: msg} }
func notFoundError(msg string) error   { return &kindError{kind: errNotFound, msg: msg} }
func conflictError(msg string) error   { return &kindError{kind: errConflict, msg: msg} }

// pgUniqueViolation is the SQLSTATE PostgreSQL reports for UNIQUE conflicts.
const pgUniqueViolation = "23505"

// classifyPgError translates driver errors into the error kinds above using
// the supplied messages. Anything unrecognised is returned unchanged and
// surfaces as a 500.
func classifyPgError(err error, notFoundMsg, conflictMsg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) && notFoundMsg != "" {
		return notFoundError(notFoundMsg)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation && conflictMsg != "" {
		return conflictError(conflictMsg)
	}
	return err
}

// apiError returns a consistent JSON error response: {"error": "message"}.
func apiError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// respondError writes the status matching err's kind, using the error's own
// message for known kinds. Unknown errors are logged and reported as a
// generic 500 without leaking driver details.
func (h *Handler) respondError(c *gin.Context, err error) {
	var status int
	switch {
	case errors.Is(err, errValidation):
		status = http.StatusBadRequest
	case errors.Is(err, errNotFound):
		status = http.StatusNotFound
	case errors.Is(err, errConflict):
		status = http.StatusConflict
	case errors.Is(err, errAuth):
		status = http.StatusUnauthorized
	default:
		h.log.Errorw("request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
		apiError(c, http.StatusInternalServerError, "internal server error")
		return
	}
	apiError(c, status, err.Error())
}
