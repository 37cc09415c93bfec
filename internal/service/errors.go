package service

import (
	"context"
	"errors"
	"net"
	"net/http"
)

// ErrorCode is the string surfaced to the front-end for toast messages.
type ErrorCode string

const (
	ErrCodeNetwork            ErrorCode = "NETWORK_ERROR"
	ErrCodeTimeout            ErrorCode = "TIMEOUT"
	ErrCodeUnauthorized       ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden          ErrorCode = "FORBIDDEN"
	ErrCodeNotFound           ErrorCode = "NOT_FOUND"
	ErrCodeValidation         ErrorCode = "VALIDATION_ERROR"
	ErrCodeInvalidCaptcha     ErrorCode = "INVALID_CAPTCHA"
	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeNafathRejected     ErrorCode = "NAFATH_REJECTED"
	ErrCodeNafathExpired      ErrorCode = "NAFATH_EXPIRED"
	ErrCodeServer             ErrorCode = "SERVER_ERROR"
	ErrCodeDecode             ErrorCode = "DECODE_ERROR"
	ErrCodeUnknown            ErrorCode = "UNKNOWN_ERROR"
)

type APIError struct {
	Code    ErrorCode
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return string(e.Code) + ": " + e.Message
	}
	return string(e.Code)
}

// CodeOf maps any error returned by this package to an ErrorCode.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrCodeTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return ErrCodeTimeout
		}
		return ErrCodeNetwork
	}
	return ErrCodeUnknown
}

func IsUnauthorized(err error) bool { return CodeOf(err) == ErrCodeUnauthorized }

func codeForStatus(status int) ErrorCode {
	switch {
	case status == http.StatusUnauthorized:
		return ErrCodeUnauthorized
	case status == http.StatusForbidden:
		return ErrCodeForbidden
	case status == http.StatusNotFound:
		return ErrCodeNotFound
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return ErrCodeValidation
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return ErrCodeTimeout
	case status >= 500:
		return ErrCodeServer
	default:
		return ErrCodeUnknown
	}
}

// HTTPStatus is the status the local API answers with for a code.
func (c ErrorCode) HTTPStatus() int {
	switch c {
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeValidation, ErrCodeInvalidCaptcha, ErrCodeInvalidCredentials,
		ErrCodeNafathRejected, ErrCodeNafathExpired:
		return http.StatusBadRequest
	case ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeNetwork, ErrCodeServer, ErrCodeDecode:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
