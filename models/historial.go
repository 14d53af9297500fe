package models

import (
	"fmt"
	"time"
)

// HistoryEntry is an audit comment attached to an entity. Entries are only
// ever appended.
type HistoryEntry struct {
	EntityID   int    `json:"-"`
	Fecha      string `json:"fecha"`
	Usuario    string `json:"usuario"`
	Comentario string `json:"comentario"`
}

// Cells renders the entry as the two cells of a history table: the
// comment, then "d/m/yyyy,usuario".
func (h HistoryEntry) Cells() []string {
	fecha := h.Fecha
	if t, ok := parseFecha(h.Fecha); ok {
		fecha = fmt.Sprintf("%d/%d/%d", t.Day(), int(t.Month()), t.Year())
	}
	return []string{h.Comentario, fecha + "," + h.Usuario}
}

type HistoryRequest struct {
	IDComentario int    `json:"id_comentario" validate:"required"`
	Comentario   string `json:"comentario" validate:"required"`
}

var meses = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// FormatFechaLarga formats an API timestamp as "24 de enero de 2019, 14:14".
// Values that do not parse are returned unchanged.
func FormatFechaLarga(s string) string {
	t, ok := parseFecha(s)
	if !ok {
		return s
	}
	return fmt.Sprintf("%d de %s de %d, %02d:%02d", t.Day(), meses[t.Month()-1], t.Year(), t.Hour(), t.Minute())
}

func parseFecha(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
