package sandbox

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"inventario-app/config"
	"inventario-app/sandbox/store"
)

// Notifier is told when an intake was closed.
type Notifier interface {
	EntradaCuadrada(e store.Entrada, detalles []store.Detalle, usuario string) error
}

type MailNotifier struct {
	dialer *gomail.Dialer
	from   string
	to     []string
}

func NewMailNotifier(cfg config.Sandbox) *MailNotifier {
	return &MailNotifier{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
		from:   cfg.SMTPUser,
		to:     cfg.NotifyTo,
	}
}

func (m *MailNotifier) Message(e store.Entrada, detalles []store.Detalle, usuario string) *gomail.Message {
	var rows strings.Builder
	for _, d := range detalles {
		fmt.Fprintf(&rows, "<tr><td>%s</td><td>%d</td><td>%d</td><td>%d</td><td>%d</td></tr>",
			d.TipoDispositivo, d.Util, d.Repuesto, d.Desecho, d.Total)
	}
	body := fmt.Sprintf(`<p>La entrada <b>%d</b> (%s, %s) fue cuadrada por %s.</p>
<table border="1"><tr><th>Tipo</th><th>Util</th><th>Repuesto</th><th>Desecho</th><th>Total</th></tr>%s</table>`,
		e.ID, e.Tipo, e.Proveedor, usuario, rows.String())

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", m.to...)
	msg.SetHeader("Subject", fmt.Sprintf("Entrada %d cuadrada", e.ID))
	msg.SetBody("text/html", body)
	return msg
}

func (m *MailNotifier) EntradaCuadrada(e store.Entrada, detalles []store.Detalle, usuario string) error {
	return m.dialer.DialAndSend(m.Message(e, detalles, usuario))
}

type logNotifier struct {
	log zerolog.Logger
}

func (n logNotifier) EntradaCuadrada(e store.Entrada, detalles []store.Detalle, usuario string) error {
	n.log.Info().Int("entrada", e.ID).Int("detalles", len(detalles)).Str("usuario", usuario).Msg("entrada cuadrada")
	return nil
}

// NewNotifier mails when SMTP is configured and only logs otherwise.
func NewNotifier(cfg config.Sandbox, log zerolog.Logger) Notifier {
	if cfg.SMTPHost == "" || len(cfg.NotifyTo) == 0 {
		return logNotifier{log: log}
	}
	return NewMailNotifier(cfg)
}
