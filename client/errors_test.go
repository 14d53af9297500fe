package client

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestWrappedErrorKeepsKindAndMensaje(t *testing.T) {
	cause := &Error{Kind: KindServer, Method: "POST", URL: "/api/x/", Status: 409, Mensaje: "Ya asignado"}
	err := errors.Wrap(cause, "asignar repuesto")

	assert.True(t, IsKind(err, KindServer))
	assert.False(t, IsKind(err, KindTransport))
	assert.Equal(t, "Ya asignado", Message(err))
	assert.Equal(t, cause, errors.Cause(err))
	assert.Equal(t, GenericMessage, Message(errors.New("plain")))
}
