package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/repo"
)

var (
	ErrValidation     = errors.New("validation")          // 400
	ErrUnauthorized   = errors.New("unauthorized")        // 401
	ErrForbidden      = errors.New("forbidden")           // 403
	ErrNotFound       = errors.New("not found")           // 404
	ErrConflict       = errors.New("conflict")            // 409
	ErrSignature      = errors.New("invalid signature")   // 400
	ErrUnhandledEvent = errors.New("unhandled event")     // 400
	ErrUpstream       = errors.New("upstream failure")    // 500
	ErrTimeout        = errors.New("timeout")             // 504
)

// storeErr classifies a persistence error; what names the thing that was looked up.
func storeErr(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrValidation), errors.Is(err, ErrForbidden), errors.Is(err, ErrNotFound),
		errors.Is(err, ErrConflict), errors.Is(err, ErrUnauthorized), errors.Is(err, ErrTimeout):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %s already exists", ErrConflict, what)
	case errors.Is(err, repo.ErrStale):
		return fmt.Errorf("%w: %s was modified concurrently", ErrConflict, what)
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %s: %v", ErrTimeout, what, err)
	default:
		return fmt.Errorf("%w: %s: %v", ErrUpstream, what, err)
	}
}
