package core

import (
	"errors"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	OwnerErrorNotOwner               = "OWNER_NOT_OWNER"
	OwnerErrorNotProposedOwner       = "OWNER_NOT_PROPOSED_OWNER"
	OwnerErrorNotEmergencyOwner      = "OWNER_NOT_EMERGENCY_OWNER"
	OwnerErrorStateTransition        = "OWNER_STATE_TRANSITION_INVALID"
	OwnerErrorStorage                = "OWNER_STORAGE_FAILURE"
	OwnerErrorVersionConflict        = "OWNER_VERSION_CONFLICT"
	OwnerErrorBadInput               = "OWNER_BAD_INPUT"
	OwnerErrorEmergencyOwnerDisabled = "OWNER_EMERGENCY_OWNER_DISABLED"
	OwnerErrorInternal               = "OWNER_INTERNAL_ERROR"
)

var (
	ErrNotOwner               = errors.New("core: caller is not owner")
	ErrNotProposedOwner       = errors.New("core: caller is not the proposed owner")
	ErrNotEmergencyOwner      = errors.New("core: caller is not the emergency owner")
	ErrStateTransition        = errors.New("core: owner state transition was not valid")
	ErrEmergencyOwnerDisabled = errors.New("core: emergency owner extension is disabled")
	ErrVersionConflict        = errors.New("core: owner state version conflict")
	ErrInvalidAddress         = errors.New("core: invalid address")
)

func NotOwnerError() *goerrors.Error {
	return newOwnerError(ErrNotOwner, "Caller is not owner", goerrors.CategoryAuthz, OwnerErrorNotOwner)
}

func NotProposedOwnerError() *goerrors.Error {
	return newOwnerError(ErrNotProposedOwner, "Caller is not the proposed owner", goerrors.CategoryAuthz, OwnerErrorNotProposedOwner)
}

func NotEmergencyOwnerError() *goerrors.Error {
	return newOwnerError(ErrNotEmergencyOwner, "Caller is not the emergency owner", goerrors.CategoryAuthz, OwnerErrorNotEmergencyOwner)
}

func StateTransitionError(from StateKind, event string) *goerrors.Error {
	err := newOwnerError(ErrStateTransition, "Owner state transition was not valid", goerrors.CategoryConflict, OwnerErrorStateTransition)
	err.WithMetadata(map[string]any{
		"state": string(from),
		"event": event,
	})
	return err
}

func EmergencyOwnerDisabledError(event string) *goerrors.Error {
	err := newOwnerError(ErrEmergencyOwnerDisabled, "Emergency owner extension is disabled", goerrors.CategoryOperation, OwnerErrorEmergencyOwnerDisabled).
		WithCode(http.StatusBadRequest)
	err.WithMetadata(map[string]any{"event": event})
	return err
}

func InvalidAddressError(field string, cause error) *goerrors.Error {
	source := ErrInvalidAddress
	message := "Invalid address"
	if cause != nil {
		message = cause.Error()
	}
	err := newOwnerError(source, message, goerrors.CategoryBadInput, OwnerErrorBadInput)
	err.WithMetadata(map[string]any{"field": field})
	return err
}

// StorageError wraps a failure reported by the state store. Envelopes that
// already carry a text code pass through unchanged.
func StorageError(err error) error {
	if err == nil {
		return nil
	}
	var rich *goerrors.Error
	if goerrors.As(err, &rich) && strings.TrimSpace(rich.TextCode) != "" {
		return rich
	}
	if errors.Is(err, ErrVersionConflict) {
		return goerrors.Wrap(err, goerrors.CategoryConflict, "Owner state was modified concurrently").
			WithCode(http.StatusConflict).
			WithTextCode(OwnerErrorVersionConflict)
	}
	return goerrors.Wrap(err, goerrors.CategoryInternal, "Owner state storage failed").
		WithCode(http.StatusInternalServerError).
		WithTextCode(OwnerErrorStorage)
}

func dependencyError(message string) *goerrors.Error {
	return goerrors.New(message, goerrors.CategoryInternal).
		WithCode(http.StatusInternalServerError).
		WithTextCode(OwnerErrorInternal)
}

func newOwnerError(source error, message string, category goerrors.Category, textCode string) *goerrors.Error {
	return ensureOwnerErrorEnvelope(
		goerrors.Wrap(source, category, message).
			WithTextCode(textCode),
	)
}

// ErrorCode returns the text code carried by a go-errors envelope, or "".
func ErrorCode(err error) string {
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) || rich == nil {
		return ""
	}
	return rich.TextCode
}

func IsErrorCode(err error, code string) bool {
	return err != nil && ErrorCode(err) == code
}

func ownerErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureOwnerErrorEnvelope(richErr)
	}

	switch {
	case errors.Is(err, ErrNotOwner):
		return NotOwnerError()
	case errors.Is(err, ErrNotProposedOwner):
		return NotProposedOwnerError()
	case errors.Is(err, ErrNotEmergencyOwner):
		return NotEmergencyOwnerError()
	case errors.Is(err, ErrStateTransition):
		return newOwnerError(err, "Owner state transition was not valid", goerrors.CategoryConflict, OwnerErrorStateTransition)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	if strings.Contains(msg, "required") || strings.Contains(msg, "invalid") {
		return newOwnerError(err, err.Error(), goerrors.CategoryBadInput, OwnerErrorBadInput)
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureOwnerErrorEnvelope(mapped)
}

func ensureOwnerErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = ownerHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultOwnerTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultOwnerTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return OwnerErrorBadInput
	case goerrors.CategoryAuth, goerrors.CategoryAuthz:
		return OwnerErrorNotOwner
	case goerrors.CategoryConflict:
		return OwnerErrorStateTransition
	default:
		return OwnerErrorInternal
	}
}

func ownerHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
