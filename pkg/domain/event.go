package domain

// Event representa um evento no sistema.
type Event[T any] interface {
	EventName() string
	Payload() T
}

// NewEvent cria um evento com nome e payload.
func NewEvent[T any](name string, payload T) Event[T] {
	return event[T]{name: name, payload: payload}
}

type event[T any] struct {
	name    string
	payload T
}

func (e event[T]) EventName() string {
	return e.name
}

func (e event[T]) Payload() T {
	return e.payload
}
