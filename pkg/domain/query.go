package domain

// Query representa uma consulta no sistema que apenas lê estado e produz um R.
type Query[R any] struct{}

func (Query[R]) Kind() Kind {
	return KindQuery
}

func (Query[R]) resultOf(R) {}
