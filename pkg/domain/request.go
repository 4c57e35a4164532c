package domain

// Kind classifica uma solicitação como comando ou consulta.
type Kind int

const (
	KindUnknown Kind = iota
	KindCommand
	KindQuery
)

func (k Kind) String() string {
	switch k {
	case KindCommand:
		return "command"
	case KindQuery:
		return "query"
	default:
		return "unknown"
	}
}

// Request é satisfeita por todo tipo que embute Command[R] ou Query[R].
// O método não exportado amarra o tipo do resultado em tempo de compilação.
type Request[R any] interface {
	Kind() Kind
	resultOf(R)
}

// IDGenerator gera identificadores para novas entidades.
type IDGenerator[T any] func() T
