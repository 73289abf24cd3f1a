// Package apperr определяет типизированные ошибки бизнес-уровня.
// Каждая ошибка несёт вид (Kind) и безопасное для клиента сообщение;
// детали инфраструктурных сбоев остаются во вложенной ошибке и наружу
// не отдаются.
package apperr

import (
	"errors"
	"fmt"
)

// Kind классифицирует исход операции, понятный вызывающей стороне.
type Kind int

const (
	// Unauthenticated — отсутствующий, недействительный или просроченный токен.
	Unauthenticated Kind = iota + 1
	// Inactive — личность подтверждена, но учётная запись деактивирована.
	Inactive
	// Forbidden — недостаточно прав или чужой ресурс.
	Forbidden
	// NotFound — сущность с указанным идентификатором не существует.
	NotFound
	// Conflict — нарушение уникальности.
	Conflict
	// Validation — некорректный ввод или недопустимый переход состояния.
	Validation
	// InUse — удаление заблокировано живой ссылкой.
	InUse
	// Configuration — отсутствует обязательный элемент словаря статусов.
	Configuration
	// Internal — неожиданный сбой инфраструктуры.
	Internal
)

// Error — ошибка с видом и безопасным сообщением.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// New создаёт ошибку указанного вида.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf создаёт ошибку с форматированным сообщением.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap оборачивает инфраструктурную ошибку, сохраняя её для логирования,
// но не раскрывая в сообщении.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Error реализует интерфейс error.
func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap возвращает вложенную ошибку.
func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf возвращает вид ошибки. Для ошибок без вида возвращается Internal:
// всё неожиданное трактуется как сбой инфраструктуры.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// MessageOf возвращает безопасное сообщение ошибки. Для нетипизированных
// ошибок текст не раскрывается.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal server error"
}
