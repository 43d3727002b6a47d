package productform

import (
	"errors"
	"fmt"
)

// Types de modifications refusées. Une modification refusée laisse le brouillon
// intact et s'affiche comme un avertissement temporaire.
var (
	ErrLastVariant         = errors.New("last variant")
	ErrDuplicateSize       = errors.New("duplicate size")
	ErrDuplicateTag        = errors.New("duplicate tag")
	ErrDuplicateCollection = errors.New("duplicate collection")
	ErrEmptyLabel          = errors.New("empty label")
	ErrLabelTooLong        = errors.New("label too long")
	ErrInvalidDraft        = errors.New("draft has validation errors")
)

var (
	ErrOutOfRange   = errors.New("index out of range")
	ErrUnknownField = errors.New("unknown field")
	ErrVariantGone  = errors.New("variant no longer exists")
)

// Notice est une modification refusée avec le message affiché à l'utilisateur.
type Notice struct {
	Kind    error
	Message string
}

func (n *Notice) Error() string { return n.Message }

func (n *Notice) Unwrap() error { return n.Kind }

func notice(kind error, format string, args ...any) *Notice {
	return &Notice{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// SubmitError est une soumission échouée. Message est ce que voit l'utilisateur :
// le message du serveur s'il en a envoyé un, un message générique sinon.
type SubmitError struct {
	Status  int
	Message string
	Err     error
}

func (e *SubmitError) Error() string { return e.Message }

func (e *SubmitError) Unwrap() error { return e.Err }
