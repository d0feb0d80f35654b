package apperror

import (
	"errors"
	"net/http"
)

type Code string

const (
	Config       Code = "CONFIG"
	MissingIDMap Code = "MISSING_IDMAP"
	BadIDMap     Code = "BAD_IDMAP"
	Unmapped     Code = "UNMAPPED"
	Transport    Code = "TRANSPORT"
	Parse        Code = "PARSE"
	NotFound     Code = "NOT_FOUND"
	Internal     Code = "INTERNAL"
)

// Process exit statuses. 1 and 2 belong to generic failure and usage errors.
const (
	ExitOK           = 0
	ExitFailure      = 1
	ExitUsage        = 2
	ExitMissingIDMap = 3
	ExitBadIDMap     = 4
	ExitUnmapped     = 5
	ExitTransport    = 6
	ExitParse        = 7
)

type AppError struct {
	code    Code
	message string
	err     error
}

func New(code Code, message string) *AppError {
	return &AppError{code: code, message: message}
}

func Wrap(code Code, message string, err error) *AppError {
	return &AppError{code: code, message: message, err: err}
}

func (e *AppError) Error() string {
	if e.err != nil {
		return e.message + ": " + e.err.Error()
	}
	return e.message
}

func (e *AppError) Unwrap() error   { return e.err }
func (e *AppError) Code() Code      { return e.code }
func (e *AppError) Message() string { return e.message }

func (e *AppError) ExitCode() int {
	return ExitCode(e.code)
}

func (e *AppError) HTTPStatus() int {
	switch e.code {
	case Config:
		return http.StatusBadRequest
	case NotFound, Unmapped:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func ExitCode(code Code) int {
	switch code {
	case "":
		return ExitOK
	case MissingIDMap:
		return ExitMissingIDMap
	case BadIDMap:
		return ExitBadIDMap
	case Unmapped:
		return ExitUnmapped
	case Transport:
		return ExitTransport
	case Parse:
		return ExitParse
	case Config:
		return ExitUsage
	default:
		return ExitFailure
	}
}

// CodeOf returns the code of the first AppError in err's chain, or Internal.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.code
	}
	return Internal
}

// Severity ranks failure classes for choosing a run's exit status.
func Severity(code Code) int {
	switch code {
	case Unmapped:
		return 1
	case Parse:
		return 2
	case Transport:
		return 3
	case "":
		return 0
	default:
		return 4
	}
}

// Worst returns whichever of a and b ranks higher.
func Worst(a, b Code) Code {
	if Severity(b) > Severity(a) {
		return b
	}
	return a
}
