package core

import (
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	ErrorBadInput         = "BREVO_BAD_INPUT"
	ErrorValidation       = "BREVO_VALIDATION"
	ErrorNotFound         = "BREVO_NOT_FOUND"
	ErrorRemoteFailure    = "BREVO_REMOTE_FAILURE"
	ErrorMalformedRequest = "BREVO_MALFORMED_REQUEST"
	ErrorPartialFailure   = "BREVO_PARTIAL_FAILURE"
	ErrorInternal         = "BREVO_INTERNAL_ERROR"
	ErrorUnauthorized     = "BREVO_UNAUTHORIZED"
)

// ValidationError reports a missing or invalid input field. It is raised
// before any remote call is issued.
func ValidationError(field string, message string) error {
	return goerrors.NewValidation("brevo: validation failed", goerrors.FieldError{
		Field:   field,
		Message: message,
	}).
		WithCode(http.StatusBadRequest).
		WithTextCode(ErrorValidation).
		WithSeverity(goerrors.SeverityError)
}

func NotFoundError(message string, metadata map[string]any) error {
	err := goerrors.New(message, goerrors.CategoryNotFound).
		WithCode(http.StatusNotFound).
		WithTextCode(ErrorNotFound)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

// RemoteError reports a non-success answer from the remote service. A zero
// status is reported as a bad gateway.
func RemoteError(message string, status int, metadata map[string]any) error {
	if status <= 0 {
		status = http.StatusBadGateway
	}
	err := goerrors.New(message, goerrors.CategoryExternal).
		WithCode(status).
		WithTextCode(ErrorRemoteFailure)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func WrapRemoteError(source error, message string, metadata map[string]any) error {
	if source == nil {
		return RemoteError(message, 0, metadata)
	}
	err := goerrors.Wrap(source, goerrors.CategoryExternal, message).
		WithCode(http.StatusBadGateway).
		WithTextCode(ErrorRemoteFailure)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func MalformedRequestError(message string) error {
	if strings.TrimSpace(message) == "" {
		message = "Malformed or missing data"
	}
	return goerrors.New(message, goerrors.CategoryBadInput).
		WithCode(http.StatusBadRequest).
		WithTextCode(ErrorMalformedRequest)
}

// PartialFailureError marks a two phase operation that stopped after its
// first phase committed remotely.
func PartialFailureError(source error, message string, metadata map[string]any) error {
	var err *goerrors.Error
	if source == nil {
		err = goerrors.New(message, goerrors.CategoryOperation)
	} else {
		err = goerrors.Wrap(source, goerrors.CategoryOperation, message)
	}
	err = err.
		WithCode(http.StatusInternalServerError).
		WithTextCode(ErrorPartialFailure).
		WithSeverity(goerrors.SeverityCritical)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func InternalError(message string) error {
	return goerrors.New(message, goerrors.CategoryInternal).
		WithCode(http.StatusInternalServerError).
		WithTextCode(ErrorInternal)
}

func UnauthorizedError(message string) error {
	return goerrors.New(message, goerrors.CategoryAuth).
		WithCode(http.StatusUnauthorized).
		WithTextCode(ErrorUnauthorized)
}

func BadInputError(message string) error {
	return goerrors.New(message, goerrors.CategoryBadInput).
		WithCode(http.StatusBadRequest).
		WithTextCode(ErrorBadInput)
}

func IsValidation(err error) bool       { return HasTextCode(err, ErrorValidation) }
func IsNotFound(err error) bool         { return HasTextCode(err, ErrorNotFound) }
func IsRemote(err error) bool           { return HasTextCode(err, ErrorRemoteFailure) }
func IsMalformedRequest(err error) bool { return HasTextCode(err, ErrorMalformedRequest) }
func IsPartialFailure(err error) bool   { return HasTextCode(err, ErrorPartialFailure) }

func HasTextCode(err error, textCode string) bool {
	if err == nil {
		return false
	}
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		return false
	}
	return rich.TextCode == textCode
}

// MapError converts any error into an envelope with a status code and a
// text code.
func MapError(err error) *goerrors.Error {
	if err == nil {
		return nil
	}
	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		return ensureErrorEnvelope(rich)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "not found"):
		return ensureErrorEnvelope(goerrors.New(err.Error(), goerrors.CategoryNotFound).WithTextCode(ErrorNotFound))
	case strings.Contains(msg, "required"), strings.Contains(msg, "invalid"):
		return ensureErrorEnvelope(goerrors.New(err.Error(), goerrors.CategoryBadInput).WithTextCode(ErrorBadInput))
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureErrorEnvelope(mapped)
}

func ensureErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = errorHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput:
		return ErrorBadInput
	case goerrors.CategoryValidation:
		return ErrorValidation
	case goerrors.CategoryNotFound:
		return ErrorNotFound
	case goerrors.CategoryExternal:
		return ErrorRemoteFailure
	case goerrors.CategoryOperation:
		return ErrorPartialFailure
	case goerrors.CategoryAuth:
		return ErrorUnauthorized
	default:
		return ErrorInternal
	}
}

func errorHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
