// Package terminal renders screens on a text terminal: blocking dialogs on
// stdin and grids as aligned tables.
package terminal

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"text/tabwriter"

	"github.com/pkg/errors"

	"inventario-app/types"
)

type Prompter struct {
	mu  sync.Mutex
	in  *bufio.Reader
	out io.Writer
}

func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

func (p *Prompter) readLine(ctx context.Context) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	line, err := p.in.ReadString('\n')
	if err == io.EOF {
		if line == "" {
			return "", false, nil
		}
	} else if err != nil {
		return "", false, errors.Wrap(err, "read answer")
	}
	return strings.TrimRight(line, "\r\n"), true, nil
}

// Confirm asks a yes/no question. Anything but a yes answer declines.
func (p *Prompter) Confirm(ctx context.Context, message string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "%s [Si/No]: ", message)
	line, ok, err := p.readLine(ctx)
	if err != nil || !ok {
		return false, err
	}
	yes, valid := types.ParseFlag(strings.TrimSpace(line))
	return valid && yes.Bool(), nil
}

func (p *Prompter) Prompt(ctx context.Context, message string) (string, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "%s\n> ", message)
	line, ok, err := p.readLine(ctx)
	if err != nil || !ok {
		return "", false, err
	}
	line = strings.TrimSpace(line)
	return line, line != "", nil
}

func (p *Prompter) Alert(_ context.Context, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "! %s\n", message)
}

// WriteTable prints rows under their titles, columns aligned.
func WriteTable(w io.Writer, titles []string, rows [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(titles, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}
