package terminal

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfirm(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"si\n", true},
		{"Sí\n", true},
		{"yes\n", true},
		{"no\n", false},
		{"\n", false},
		{"quizas\n", false},
		{"", false},
	}
	for _, c := range cases {
		var out bytes.Buffer
		p := NewPrompter(strings.NewReader(c.input), &out)
		got, err := p.Confirm(context.Background(), "Seguro?")
		require.NoError(t, err)
		assert.Equal(t, c.want, got, "input %q", c.input)
		assert.Equal(t, "Seguro? [Si/No]: ", out.String())
	}
}

func TestPromptReadsSuccessiveLines(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("LAP-001\n\n"), &out)
	ctx := context.Background()

	text, ok, err := p.Prompt(ctx, "Triage")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "LAP-001", text)

	_, ok, err = p.Prompt(ctx, "Triage")
	require.NoError(t, err)
	assert.False(t, ok, "blank answer counts as dismissed")

	_, ok, err = p.Prompt(ctx, "Triage")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCanceledContextDoesNotRead(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := NewPrompter(strings.NewReader("si\n"), &bytes.Buffer{})

	ok, err := p.Confirm(ctx, "Seguro?")
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, ok)
}

func TestAlertAndTable(t *testing.T) {
	var out bytes.Buffer
	NewPrompter(strings.NewReader(""), &out).Alert(context.Background(), "Entrada Cuadrada")
	assert.Equal(t, "! Entrada Cuadrada\n", out.String())

	out.Reset()
	require.NoError(t, WriteTable(&out, []string{"ID", "Tipo"}, [][]string{{"1", "Laptop"}, {"22", "PC"}}))
	assert.Equal(t, "ID  Tipo\n1   Laptop\n22  PC\n", out.String())
}
