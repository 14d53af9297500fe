package cmd

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"inventario-app/client"
	"inventario-app/confirm"
	"inventario-app/controllers"
	"inventario-app/terminal"
)

// deps builds the screen dependencies for one command run. Dialogs go
// through the command's own input and output.
func deps(cmd *cobra.Command) (controllers.Deps, error) {
	api, err := client.New(client.Options{
		BaseURL:       cfg.BaseURL,
		CSRFToken:     cfg.CSRFToken,
		SessionCookie: cfg.SessionCookie,
		Token:         cfg.SessionToken,
		Timeout:       cfg.Timeout,
		Logger:        log.Logger,
	})
	if err != nil {
		return controllers.Deps{}, err
	}
	prompter := terminal.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
	return controllers.Deps{
		API:       api,
		Endpoints: cfg.Endpoints,
		Runner:    confirm.NewRunner(prompter, confirm.NewLogReporter(log.Logger)),
		Log:       log.Logger,
	}, nil
}

// parseForm reads clave=valor arguments into form values. A key may repeat.
func parseForm(args []string) (url.Values, error) {
	form := url.Values{}
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, errors.Errorf("argument %q is not clave=valor", arg)
		}
		form.Add(key, value)
	}
	return form, nil
}

func intArg(raw, name string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.Errorf("%s must be a number, got %q", name, raw)
	}
	return n, nil
}

func intArgs(args []string, names ...string) ([]int, error) {
	out := make([]int, 0, len(names))
	for i, name := range names {
		n, err := intArg(args[i], name)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

type table interface {
	Titles() []string
	Cells() [][]string
}

func printTable(cmd *cobra.Command, t table) error {
	return terminal.WriteTable(cmd.OutOrStdout(), t.Titles(), t.Cells())
}

// finish prints the outcome of a confirmed action. Failures were already
// shown to the operator.
func finish(cmd *cobra.Command, outcome confirm.Outcome, err error) error {
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), outcome)
	return nil
}

// exportTo writes a spreadsheet to path when one was asked for.
func exportTo(path string, write func(w io.Writer) error) error {
	if path == "" {
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create export file")
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
