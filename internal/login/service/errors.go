package service

import (
	"errors"
	"fmt"
)

// Error kinds. The text of each kind doubles as the machine-readable reason
// reported to clients.
var (
	ErrInvalidCallback        = errors.New("invalid_callback")
	ErrExchange               = errors.New("token_exchange_failed")
	ErrProfileFetch           = errors.New("profile_fetch_failed")
	ErrSessionWrite           = errors.New("session_write_failed")
	ErrPersistence            = errors.New("persistence_failed")
	ErrAuthenticationRequired = errors.New("authentication_required")
	ErrNotFound               = errors.New("not_found")
	ErrSessionDestroy         = errors.New("session_destroy_failed")
	ErrRevoke                 = errors.New("revoke_failed")
	ErrUnavailable            = errors.New("user_store_unavailable")
)

// LoginError is a failed operation. errors.Is matches both the Kind and the
// wrapped cause.
type LoginError struct {
	Kind   error
	Detail string
	Err    error
}

func newLoginError(kind error, detail string, cause error) *LoginError {
	return &LoginError{Kind: kind, Detail: detail, Err: cause}
}

func (e *LoginError) Error() string {
	switch {
	case e.Detail != "" && e.Err != nil:
		return fmt.Sprintf("%v: %s: %v", e.Kind, e.Detail, e.Err)
	case e.Detail != "":
		return fmt.Sprintf("%v: %s", e.Kind, e.Detail)
	case e.Err != nil:
		return fmt.Sprintf("%v: %v", e.Kind, e.Err)
	default:
		return e.Kind.Error()
	}
}

func (e *LoginError) Unwrap() []error {
	errs := []error{e.Kind}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// KindOf returns the kind of a *LoginError anywhere in err's chain, or nil.
func KindOf(err error) error {
	var le *LoginError
	if errors.As(err, &le) {
		return le.Kind
	}
	return nil
}

// DetailOf returns the internal detail of a failed operation. It is meant for
// non-production responses and logs only.
func DetailOf(err error) string {
	var le *LoginError
	if errors.As(err, &le) {
		if le.Err != nil && le.Detail != "" {
			return le.Detail + ": " + le.Err.Error()
		}
		if le.Err != nil {
			return le.Err.Error()
		}
		return le.Detail
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// Warning records a best-effort step that was attempted and failed without
// failing the operation around it.
type Warning struct {
	Stage string
	Err   error
}

func (w Warning) String() string {
	return w.Stage + ": " + w.Err.Error()
}
