package models

import (
	"fmt"
	"sort"
	"strings"
)

// ErrorValidation carries one message per failing field.
type ErrorValidation struct {
	Message string
	Fields  map[string]string
}

func (e ErrorValidation) Error() string {
	if e.Message != "" {
		return e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, e.Fields[k])
	}
	return strings.Join(msgs, "; ")
}

type ErrorNotFound struct {
	Message string
}

func (e ErrorNotFound) Error() string { return e.Message }

type ErrorConflict struct {
	Message string
}

func (e ErrorConflict) Error() string { return e.Message }

type ErrorUnauthorized struct {
	Message string
}

func (e ErrorUnauthorized) Error() string { return e.Message }

type ErrorInternalServer struct {
	Message string
}

func (e ErrorInternalServer) Error() string { return e.Message }

// ErrorStore wraps a failure reported by the database, keeping its text.
type ErrorStore struct {
	Op  string
	Err error
}

func (e ErrorStore) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e ErrorStore) Unwrap() error { return e.Err }

func NewValidationError(message string) error {
	return ErrorValidation{Message: message}
}

func NewNotFoundError(format string, args ...interface{}) error {
	return ErrorNotFound{Message: fmt.Sprintf(format, args...)}
}

func NewConflictError(format string, args ...interface{}) error {
	return ErrorConflict{Message: fmt.Sprintf(format, args...)}
}

func NewStoreError(op string, err error) error {
	return ErrorStore{Op: op, Err: err}
}

var ErrInternal = ErrorInternalServer{Message: "Internal server error"}
