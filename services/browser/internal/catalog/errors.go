package catalog

import (
	"errors"
	"fmt"
)

// ErrIndexOutOfRange индекс ссылается на товар, которого уже нет в списке (например, после сброса поиска).
// Такие обновления молча отбрасываются и вызывающему не возвращаются.
var ErrIndexOutOfRange = errors.New("index out of range")

// TransportError сетевая ошибка, таймаут или не-2xx ответ фида
type TransportError struct {
	Op         string
	StatusCode int // 0, если ответа не было
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: transport: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: transport: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError ответ фида не удалось разобрать
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: decode: %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// IsTransport сообщает, что err содержит TransportError
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsDecode сообщает, что err содержит DecodeError
func IsDecode(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}
