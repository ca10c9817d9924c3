package usecase

import (
	"errors"
	"fmt"
)

// エラーの種類（handlerでHTTPステータスに変換する）
type ErrorKind string

const (
	KindValidation   ErrorKind = "validation"
	KindNotFound     ErrorKind = "not_found"
	KindInvalidState ErrorKind = "invalid_state"
	KindConflict     ErrorKind = "conflict"
	KindUnauthorized ErrorKind = "unauthorized"
	KindForbidden    ErrorKind = "forbidden"
	KindStorage      ErrorKind = "storage"
	KindInternal     ErrorKind = "internal"
)

// usecaseが返すエラー。Messageはクライアントに見せてよい文言。
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewValidationError(msg string) error {
	return &Error{Kind: KindValidation, Message: msg}
}

func NewNotFoundError(msg string) error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func NewInvalidStateError(msg string) error {
	return &Error{Kind: KindInvalidState, Message: msg}
}

func NewConflictError(msg string) error {
	return &Error{Kind: KindConflict, Message: msg}
}

func NewUnauthorizedError(msg string) error {
	return &Error{Kind: KindUnauthorized, Message: msg}
}

func NewForbiddenError(msg string) error {
	return &Error{Kind: KindForbidden, Message: msg}
}

// DBの失敗。原因はErrに残してクライアントには出さない
func storageError(err error) error {
	return &Error{Kind: KindStorage, Message: "db error", Err: err}
}

func internalError(err error) error {
	return &Error{Kind: KindInternal, Message: "internal error", Err: err}
}

func AsError(err error) (*Error, bool) {
	var ue *Error
	ok := errors.As(err, &ue)
	return ue, ok
}

// IsKind はerrが指定の種類か
func IsKind(err error, kind ErrorKind) bool {
	ue, ok := AsError(err)
	return ok && ue.Kind == kind
}

// usecaseのエラーはそのまま、それ以外はstorage扱い
func passOrStorage(err error) error {
	if _, ok := AsError(err); ok {
		return err
	}
	return storageError(err)
}
