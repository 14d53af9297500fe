package confirm

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"inventario-app/client"
)

// Prompter is the blocking dialog surface of the host.
type Prompter interface {
	Confirm(ctx context.Context, message string) (bool, error)
	// Prompt asks for free text. ok is false when the operator dismissed it.
	Prompt(ctx context.Context, message string) (text string, ok bool, err error)
	Alert(ctx context.Context, message string)
}

// Reporter receives every failed dispatch. It is the one place errors of
// confirmed actions end up besides the operator alert.
type Reporter interface {
	Report(ctx context.Context, op string, err error)
}

type logReporter struct {
	log zerolog.Logger
}

func NewLogReporter(log zerolog.Logger) Reporter {
	return logReporter{log: log}
}

func (r logReporter) Report(_ context.Context, op string, err error) {
	ev := r.log.Error().Err(err).Str("op", op)
	var cerr *client.Error
	if errors.As(err, &cerr) {
		ev = ev.Str("kind", cerr.Kind.String()).Int("status", cerr.Status)
	}
	ev.Msg("action failed")
}

type Outcome int

const (
	Declined Outcome = iota
	Done
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Done:
		return "done"
	case Failed:
		return "failed"
	}
	return "declined"
}

// Action is a mutation guarded by an operator confirmation.
type Action struct {
	Name   string
	Prompt string
	Do     func(ctx context.Context) error
	// OnSuccess runs after Do returned nil.
	OnSuccess func(ctx context.Context) error
	// OnFailure receives the message to show. When nil the message is
	// alerted.
	OnFailure func(ctx context.Context, message string)
	// FailurePrefix is put in front of the alerted message.
	FailurePrefix string
}

type Runner struct {
	Prompter Prompter
	Reporter Reporter
}

func NewRunner(p Prompter, r Reporter) *Runner {
	return &Runner{Prompter: p, Reporter: r}
}

// Run asks for confirmation and dispatches Do at most once. A declined
// action has no side effect. Errors from Do are reported and surfaced to the
// operator, then returned.
func (r *Runner) Run(ctx context.Context, a Action) (Outcome, error) {
	if a.Prompt != "" {
		ok, err := r.Prompter.Confirm(ctx, a.Prompt)
		if err != nil {
			return Declined, err
		}
		if !ok {
			return Declined, nil
		}
	}
	if err := a.Do(ctx); err != nil {
		r.Fail(ctx, a, err)
		return Failed, err
	}
	if a.OnSuccess != nil {
		if err := a.OnSuccess(ctx); err != nil {
			return Done, err
		}
	}
	return Done, nil
}

// Fail reports err and tells the operator.
func (r *Runner) Fail(ctx context.Context, a Action, err error) {
	if r.Reporter != nil {
		r.Reporter.Report(ctx, a.Name, err)
	}
	msg := a.FailurePrefix + client.Message(err)
	if a.OnFailure != nil {
		a.OnFailure(ctx, msg)
		return
	}
	r.Prompter.Alert(ctx, msg)
}
