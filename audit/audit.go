package audit

import (
	"context"
	"strings"
	"sync"

	"github.com/go-playground/validator"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"inventario-app/confirm"
	"inventario-app/models"
)

// FailureMessage is alerted when a comment could not be stored.
const FailureMessage = "Error al crear datos"

type JSONPoster interface {
	PostJSON(ctx context.Context, endpoint string, payload, out interface{}) error
}

// Log holds the displayed history of every entity, one container per id.
type Log struct {
	mu      sync.Mutex
	entries map[int][]models.HistoryEntry
}

func NewLog() *Log {
	return &Log{entries: make(map[int][]models.HistoryEntry)}
}

func (l *Log) Entries(entityID int) []models.HistoryEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]models.HistoryEntry(nil), l.entries[entityID]...)
}

// Rows renders the history of an entity as table rows.
func (l *Log) Rows(entityID int) [][]string {
	entries := l.Entries(entityID)
	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = e.Cells()
	}
	return rows
}

// Seed replaces the history of an entity, as rendered by the page.
func (l *Log) Seed(entityID int, entries []models.HistoryEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[entityID] = append([]models.HistoryEntry(nil), entries...)
}

func (l *Log) add(entityID int, e models.HistoryEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[entityID] = append(l.entries[entityID], e)
}

var validate = validator.New()

type Appender struct {
	poster JSONPoster
	log    *Log
	runner *confirm.Runner
	logger zerolog.Logger
}

func NewAppender(p JSONPoster, l *Log, runner *confirm.Runner, logger zerolog.Logger) *Appender {
	return &Appender{poster: p, log: l, runner: runner, logger: logger}
}

func (a *Appender) Log() *Log { return a.log }

// Append stores a comment for entityID and, once the server echoed it back,
// appends it to that entity's history. On failure the history is left as
// it was.
func (a *Appender) Append(ctx context.Context, endpoint string, entityID int, comment string) (models.HistoryEntry, error) {
	req := models.HistoryRequest{IDComentario: entityID, Comentario: comment}
	if err := validate.Struct(req); err != nil {
		return models.HistoryEntry{}, errors.Wrap(err, "invalid history comment")
	}

	var entry models.HistoryEntry
	if err := a.poster.PostJSON(ctx, endpoint, req, &entry); err != nil {
		a.runner.Fail(ctx, confirm.Action{
			Name: "historial",
			OnFailure: func(ctx context.Context, _ string) {
				a.runner.Prompter.Alert(ctx, FailureMessage)
			},
		}, err)
		return models.HistoryEntry{}, err
	}

	entry.EntityID = entityID
	a.log.add(entityID, entry)
	a.logger.Info().Int("entity", entityID).Str("usuario", entry.Usuario).Msg("history entry appended")
	return entry, nil
}

// PromptAndAppend asks the operator for a comment and appends it. A
// dismissed or blank answer stores nothing. format, when set, turns the
// answer into the stored comment.
func (a *Appender) PromptAndAppend(ctx context.Context, title, endpoint string, entityID int, format func(string) string) (bool, error) {
	text, ok, err := a.runner.Prompter.Prompt(ctx, title)
	if err != nil {
		return false, err
	}
	if !ok || strings.TrimSpace(text) == "" {
		return false, nil
	}
	if format != nil {
		text = format(text)
	}
	if _, err := a.Append(ctx, endpoint, entityID, text); err != nil {
		return false, err
	}
	return true, nil
}
