package domain

import (
	"errors"
	"fmt"
)

// Базовые виды ошибок. Проверяются через errors.Is.
var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrInternal   = errors.New("internal server error")
)

// Error ошибка с видом (Kind), операцией и человекочитаемым сообщением.
type Error struct {
	Kind    error  // ErrValidation, ErrNotFound или ErrInternal
	Op      string // например "film.Add"
	Message string
	Err     error // исходная причина, наружу не отдается
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// Unwrap позволяет errors.Is видеть и вид ошибки, и причину.
func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// NotFoundf ссылка на несуществующий объект.
func NotFoundf(op, format string, args ...any) error {
	return &Error{Kind: ErrNotFound, Op: op, Message: fmt.Sprintf(format, args...)}
}

// Validationf нарушение правила предметной области.
func Validationf(op, format string, args ...any) error {
	return &Error{Kind: ErrValidation, Op: op, Message: fmt.Sprintf(format, args...)}
}

// Internal непредвиденная ошибка хранилища.
func Internal(op string, err error) error {
	return &Error{Kind: ErrInternal, Op: op, Message: "unexpected storage failure", Err: err}
}

// Message возвращает сообщение для клиента. Для внутренних ошибок причина скрывается.
func Message(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return ErrInternal.Error()
}
