package application

const (
	MessageValidationErrors = "Validation errors"
	MessageUnexpectedError  = "An unexpected error occurred"
	MessageDispatchError    = "An error occurred while processing the request"

	PropertyException  = "Exception"
	PropertyDispatcher = "Dispatcher"
)

// ValidationFailure é um erro associado a um campo da solicitação.
type ValidationFailure struct {
	PropertyName string `json:"propertyName"`
	ErrorMessage string `json:"errorMessage"`
}

// Envelope é o resultado uniforme de toda solicitação despachada.
// Data só tem significado quando IsSuccess é verdadeiro.
type Envelope[T any] struct {
	IsSuccess bool                `json:"isSuccess"`
	Message   string              `json:"message"`
	Data      T                   `json:"data"`
	Errors    []ValidationFailure `json:"errors,omitempty"`
}

func Success[T any](data T, message string) Envelope[T] {
	return Envelope[T]{
		IsSuccess: true,
		Message:   message,
		Data:      data,
	}
}

func Failure[T any](message string, errs ...ValidationFailure) Envelope[T] {
	return Envelope[T]{
		IsSuccess: false,
		Message:   message,
		Errors:    errs,
	}
}
