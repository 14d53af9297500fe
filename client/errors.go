package client

import (
	"fmt"

	"github.com/pkg/errors"
)

type Kind int

const (
	// KindTransport means no usable response arrived.
	KindTransport Kind = iota + 1
	// KindServer is a non-2xx reply, usually carrying {"mensaje": ...}.
	KindServer
	// KindMalformed is a 2xx reply whose body could not be decoded.
	KindMalformed
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindServer:
		return "server"
	case KindMalformed:
		return "malformed"
	}
	return "unknown"
}

// GenericMessage is shown when the server gave no message of its own.
const GenericMessage = "Error al procesar la solicitud"

// Error is returned by every Client call that fails.
type Error struct {
	Kind    Kind
	Method  string
	URL     string
	Status  int
	Mensaje string
	Err     error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindServer:
		if e.Mensaje != "" {
			return fmt.Sprintf("%s %s: %d: %s", e.Method, e.URL, e.Status, e.Mensaje)
		}
		return fmt.Sprintf("%s %s: status %d", e.Method, e.URL, e.Status)
	case KindMalformed:
		return fmt.Sprintf("%s %s: malformed response: %v", e.Method, e.URL, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Message is the text to show the operator for err: the server's own
// message when there is one, a generic one otherwise.
func Message(err error) string {
	var ce *Error
	if errors.As(err, &ce) && ce.Mensaje != "" {
		return ce.Mensaje
	}
	return GenericMessage
}

// IsKind reports whether err is a client Error of the given kind.
func IsKind(err error, k Kind) bool {
	var ce *Error
	return errors.As(err, &ce) && ce.Kind == k
}
