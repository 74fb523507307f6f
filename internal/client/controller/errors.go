package controller

import (
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/bookauth/internal/client/services"
	"github.com/dmitrijs2005/bookauth/internal/common"
)

// Error is a rejected controller operation. Kind is one of the sentinel
// errors in package common, or the context error when the caller gave up.
type Error struct {
	Op      string
	Kind    error
	Message string
	Fields  map[string]string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *Error) Unwrap() error { return e.Kind }

func validationError(op string, fields map[string]string, message string) *Error {
	return &Error{Op: op, Kind: common.ErrValidation, Message: message, Fields: fields}
}

// fromResult maps a failed service result onto the error taxonomy.
// serverKind is what a non-401 server rejection means for op.
func fromResult(op string, kind services.FailureKind, status int, message string, fields map[string]string, serverKind error) *Error {
	e := &Error{Op: op, Message: message, Fields: fields}
	switch kind {
	case services.FailureNetwork:
		e.Kind = common.ErrNetwork
	case services.FailureServer:
		if status == http.StatusUnauthorized && serverKind != common.ErrAuthenticationFailed {
			e.Kind = common.ErrSessionExpired
		} else {
			e.Kind = serverKind
		}
	default:
		e.Kind = common.ErrUnexpected
	}
	return e
}
