package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode identifies a class of application error.
type ErrorCode string

const (
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation   ErrorCode = "VALIDATION_ERROR"
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"

	// Eligibility gate codes, in user-facing priority order.
	ErrCodeWalletMissing       ErrorCode = "WALLET_MISSING"
	ErrCodeWindowNotStarted    ErrorCode = "REGISTRATION_NOT_STARTED"
	ErrCodeWindowClosed        ErrorCode = "REGISTRATION_CLOSED"
	ErrCodeCapacityReached     ErrorCode = "REGISTRATION_LIMIT_REACHED"
	ErrCodeBalanceInsufficient ErrorCode = "BALANCE_INSUFFICIENT"
	ErrCodeBalanceUnknown      ErrorCode = "BALANCE_UNKNOWN"
	ErrCodeDiscordNotConnected ErrorCode = "DISCORD_NOT_CONNECTED"
	ErrCodeFollowNotConfirmed  ErrorCode = "FOLLOW_NOT_CONFIRMED"

	// Persistence codes.
	ErrCodeDuplicateEntry ErrorCode = "DUPLICATE_ENTRY"
	ErrCodeDatabaseError  ErrorCode = "DATABASE_ERROR"

	// External collaborators.
	ErrCodeSolanaRPC  ErrorCode = "SOLANA_RPC_ERROR"
	ErrCodeDiscordAPI ErrorCode = "DISCORD_API_ERROR"
)

// AppError is a typed application error carried up to the HTTP layer.
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Cause   error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// HTTPStatus maps the error code to a response status.
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case ErrCodeValidation, ErrCodeWalletMissing:
		return http.StatusBadRequest
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden, ErrCodeWindowNotStarted, ErrCodeWindowClosed,
		ErrCodeCapacityReached, ErrCodeBalanceInsufficient,
		ErrCodeBalanceUnknown, ErrCodeDiscordNotConnected,
		ErrCodeFollowNotConfirmed:
		return http.StatusForbidden
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeDuplicateEntry:
		return http.StatusConflict
	case ErrCodeSolanaRPC, ErrCodeDiscordAPI:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

func Newf(code ErrorCode, format string, args ...interface{}) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a cause to a new typed error.
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message, Cause: err}
}

// AsAppError unwraps err to an *AppError if one is in the chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
