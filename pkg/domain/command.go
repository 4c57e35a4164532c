package domain

// Command representa uma solicitação que altera o estado do sistema e produz um R.
//
// Tipos de comando embutem Command[R] para fixar o tipo do resultado:
//
//	type CreateUser struct {
//		domain.Command[bool]
//		Email string
//	}
type Command[R any] struct{}

func (Command[R]) Kind() Kind {
	return KindCommand
}

func (Command[R]) resultOf(R) {}
