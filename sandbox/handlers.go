package sandbox

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator"
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"

	"inventario-app/models"
	"inventario-app/sandbox/store"
	"inventario-app/types"
)

var validate = validator.New()

func (s *Server) fail(c *fiber.Ctx, err error) error {
	var rule store.RuleError
	switch {
	case errors.As(err, &rule):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"mensaje": rule.Error()})
	case errors.Is(err, store.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"mensaje": "No encontrado"})
	}
	s.log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"mensaje": "Error interno"})
}

func badRequest(c *fiber.Ctx, mensaje string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"mensaje": mensaje})
}

func ok(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{})
}

// intValue parses a numeric form field, query value or route param.
func intValue(raw string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	return n, err == nil
}

// intOr returns def when the value is absent or not a number.
func intOr(raw string, def int) int {
	if n, ok := intValue(raw); ok {
		return n
	}
	return def
}

func boolQuery(c *fiber.Ctx, key string) *bool {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	f, ok := types.ParseFlag(raw)
	if !ok {
		return nil
	}
	b := f.Bool()
	return &b
}

func fecha(t time.Time) string { return t.Format(time.RFC3339) }

func toEntrada(e store.Entrada) models.Entrada {
	return models.Entrada{
		ID:          e.ID,
		Tipo:        e.Tipo,
		Fecha:       e.Fecha.Format("2006-01-02"),
		EnCreacion:  types.Flag(e.EnCreacion),
		CreadaPor:   e.CreadaPor,
		RecibidaPor: e.RecibidaPor,
		Proveedor:   e.Proveedor,
		URLSi:       fmt.Sprintf("/inventario/entrada/%d/editar/", e.ID),
		URLNo:       fmt.Sprintf("/inventario/entrada/%d/", e.ID),
	}
}

func toDetalle(d store.Detalle) models.Detalle {
	return models.Detalle{
		ID:                  d.ID,
		Entrada:             d.EntradaID,
		TipoDispositivo:     d.TipoDispositivo,
		Util:                d.Util,
		Repuesto:            d.Repuesto,
		Desecho:             d.Desecho,
		Total:               d.Total,
		PrecioUnitario:      d.PrecioUnitario,
		PrecioSubtotal:      d.PrecioSubtotal,
		PrecioDescontado:    d.PrecioDescontado,
		PrecioTotal:         d.PrecioTotal,
		Descripcion:         d.Descripcion,
		CreadoPor:           d.CreadoPor,
		TipoEntrada:         d.Entrada.Tipo,
		UsaTriage:           types.Flag(d.UsaTriage),
		DispositivosCreados: types.Flag(d.DispositivosCreados),
		RepuestosCreados:    types.Flag(d.RepuestosCreados),
		QRDispositivo:       types.Flag(d.QRDispositivo),
		QRRepuestos:         types.Flag(d.QRRepuestos),
		UpdateURL:           fmt.Sprintf("/inventario/entradadetalle/%d/editar/", d.ID),
		DispositivoList:     fmt.Sprintf("/inventario/dispositivos/?detalle=%d", d.ID),
		DispositivoQR:       fmt.Sprintf("/inventario/entradadetalle/%d/qr/dispositivo/", d.ID),
		RepuestoList:        fmt.Sprintf("/inventario/repuestos/?detalle=%d", d.ID),
		RepuestoQR:          fmt.Sprintf("/inventario/entradadetalle/%d/qr/repuestos/", d.ID),
	}
}

func toDispositivo(d store.Dispositivo) models.Dispositivo {
	return models.Dispositivo{
		ID:      d.ID,
		Triage:  d.Triage,
		Tipo:    d.Tipo,
		Entrada: d.EntradaID,
		Marca:   d.Marca,
		Modelo:  d.Modelo,
		Serie:   d.Serie,
		Tarima:  d.Tarima,
		Estado:  strconv.Itoa(d.Estado),
		Etapa:   strconv.Itoa(d.Etapa),
		URL:     "/inventario/dispositivo/" + d.Triage + "/",
	}
}

func toPaquete(p store.Paquete) models.Paquete {
	out := models.Paquete{
		ID:            p.ID,
		IDPaquete:     p.ID,
		Salida:        p.SalidaID,
		TipoPaquete:   p.TipoPaquete,
		Aprobado:      types.Flag(p.Aprobado),
		FechaCreacion: fecha(p.CreatedAt),
		URLPaquete:    fmt.Sprintf("/inventario/paquete/%d/", p.ID),
		Asignacion:    []models.Asignacion{},
	}
	for _, a := range p.Asignaciones {
		var m models.Asignacion
		m.Dispositivo.Triage = a.Dispositivo.Triage
		out.Asignacion = append(out.Asignacion, m)
	}
	return out
}

func toHistory(h store.Historial) models.HistoryEntry {
	return models.HistoryEntry{
		EntityID:   h.SalidaID,
		Fecha:      fecha(h.CreatedAt),
		Usuario:    h.Usuario,
		Comentario: h.Comentario,
	}
}

func (s *Server) listEntradas(c *fiber.Ctx) error {
	rows, err := s.repo.ListEntradas(store.EntradaFilter{
		Tipo:       c.Query("tipo"),
		Proveedor:  c.Query("proveedor"),
		EnCreacion: boolQuery(c, "en_creacion"),
	})
	if err != nil {
		return s.fail(c, err)
	}
	out := make([]models.Entrada, 0, len(rows))
	for _, e := range rows {
		out = append(out, toEntrada(e))
	}
	return c.JSON(out)
}

func (s *Server) finishEntrada(c *fiber.Ctx) error {
	id, valid := intValue(c.FormValue("primary_key"))
	if !valid {
		return badRequest(c, "primary_key es obligatorio")
	}
	e, err := s.repo.FinishEntrada(id)
	if err != nil {
		return s.fail(c, err)
	}
	detalles, err := s.repo.ListDetalles(id)
	if err != nil {
		return s.fail(c, err)
	}
	if err := s.notifier.EntradaCuadrada(e, detalles, usuario(c)); err != nil {
		s.log.Error().Err(err).Int("entrada", id).Msg("notification failed")
	}
	return ok(c)
}

func (s *Server) listDetalles(c *fiber.Ctx) error {
	rows, err := s.repo.ListDetalles(intOr(c.Query("entrada"), 0))
	if err != nil {
		return s.fail(c, err)
	}
	out := make([]models.Detalle, 0, len(rows))
	for _, d := range rows {
		out = append(out, toDetalle(d))
	}
	return c.JSON(out)
}

func (s *Server) getDetalle(c *fiber.Ctx) error {
	id, valid := intValue(c.Params("id"))
	if !valid {
		return badRequest(c, "id invalido")
	}
	d, err := s.repo.GetDetalle(id)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(toDetalle(d))
}

type detalleForm struct {
	Entrada         int    `validate:"required"`
	TipoDispositivo string `validate:"required"`
	Util            int    `validate:"gte=0"`
	Repuesto        int    `validate:"gte=0"`
	Desecho         int    `validate:"gte=0"`
}

func (s *Server) addDetalle(c *fiber.Ctx) error {
	form := detalleForm{
		Entrada:         intOr(c.FormValue("entrada"), 0),
		TipoDispositivo: c.FormValue("tdispositivo"),
		Util:            intOr(c.FormValue("util"), 0),
		Repuesto:        intOr(c.FormValue("repuesto"), 0),
		Desecho:         intOr(c.FormValue("desecho"), 0),
	}
	if err := validate.Struct(form); err != nil {
		return badRequest(c, "Datos del detalle incompletos")
	}
	usaTriage, _ := types.ParseFlag(c.FormValue("usa_triage"))
	d := store.Detalle{
		EntradaID:       form.Entrada,
		TipoDispositivo: form.TipoDispositivo,
		UsaTriage:       usaTriage.Bool(),
		Util:            form.Util,
		Repuesto:        form.Repuesto,
		Desecho:         form.Desecho,
		Descripcion:     c.FormValue("descripcion"),
		CreadoPor:       usuario(c),
	}
	if err := s.repo.AddDetalle(&d); err != nil {
		return s.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": d.ID})
}

func (s *Server) updateDetalle(c *fiber.Ctx) error {
	id, valid := intValue(c.Params("id"))
	if !valid {
		return badRequest(c, "id invalido")
	}
	d, err := s.repo.UpdateDetalle(id, store.Detalle{
		Util:        intOr(c.FormValue("util"), -1),
		Repuesto:    intOr(c.FormValue("repuesto"), -1),
		Desecho:     intOr(c.FormValue("desecho"), -1),
		Descripcion: c.FormValue("descripcion"),
	})
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(toDetalle(d))
}

func (s *Server) createDispositivos(c *fiber.Ctx) error {
	id, valid := intValue(c.Params("id"))
	if !valid {
		return badRequest(c, "id invalido")
	}
	created, err := s.repo.CreateDispositivos(id)
	if err != nil {
		return s.fail(c, err)
	}
	s.log.Info().Int("detalle", id).Int("dispositivos", len(created)).Str("usuario", usuario(c)).Msg("dispositivos creados")
	return ok(c)
}

func (s *Server) createRepuestos(c *fiber.Ctx) error {
	id, valid := intValue(c.Params("id"))
	if !valid {
		return badRequest(c, "id invalido")
	}
	created, err := s.repo.CreateRepuestos(id)
	if err != nil {
		return s.fail(c, err)
	}
	s.log.Info().Int("detalle", id).Int("repuestos", len(created)).Str("usuario", usuario(c)).Msg("repuestos creados")
	return ok(c)
}

func (s *Server) printQR(c *fiber.Ctx) error {
	id, valid := intValue(c.FormValue("detalles_id"))
	if !valid {
		return badRequest(c, "detalles_id es obligatorio")
	}
	if err := s.repo.MarkPrinted(id, c.FormValue("tipo")); err != nil {
		return s.fail(c, err)
	}
	return ok(c)
}

func (s *Server) listDispositivos(c *fiber.Ctx) error {
	search := c.Query("search")
	if search == "" {
		// The picker sends "<slug>-<term>"; the term is what is searched.
		if b := c.Query("buscador"); b != "" {
			if i := strings.LastIndex(b, "-"); i >= 0 {
				search = b[i+1:]
			}
		}
	}
	rows, err := s.repo.ListDispositivos(store.DispositivoFilter{
		Tipo:       c.Query("tipo"),
		Estado:     intOr(c.Query("estado"), 0),
		Etapa:      intOr(c.Query("etapa"), 0),
		Search:     search,
		DetalleID:  intOr(c.Query("detalle"), 0),
		SinAsignar: c.Query("asignaciones") == "0",
	})
	if err != nil {
		return s.fail(c, err)
	}
	out := make([]models.Dispositivo, 0, len(rows))
	for _, d := range rows {
		out = append(out, toDispositivo(d))
	}
	return c.JSON(out)
}

func (s *Server) listRepuestos(c *fiber.Ctx) error {
	rows, err := s.repo.ListRepuestos(c.Query("tipo"), intOr(c.Query("estado"), 0))
	if err != nil {
		return s.fail(c, err)
	}
	out := make([]models.Repuesto, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.Repuesto{
			ID:          r.ID,
			Numero:      r.Numero,
			Tipo:        r.Tipo,
			Descripcion: r.Descripcion,
			Tarima:      r.Tarima,
			Estado:      strconv.Itoa(r.Estado),
		})
	}
	return c.JSON(out)
}

func (s *Server) assignRepuesto(c *fiber.Ctx) error {
	id, valid := intValue(c.FormValue("repuesto"))
	triage := strings.TrimSpace(c.FormValue("triage"))
	if !valid || triage == "" {
		return badRequest(c, "repuesto y triage son obligatorios")
	}
	if err := s.repo.AssignRepuesto(id, triage); err != nil {
		return s.fail(c, err)
	}
	return ok(c)
}

func (s *Server) listSalidaDetalles(c *fiber.Ctx) error {
	rows, err := s.repo.ListSalidaDetalles(intOr(c.Query("salida"), 0))
	if err != nil {
		return s.fail(c, err)
	}
	out := make([]models.SalidaDetalle, 0, len(rows))
	for _, d := range rows {
		out = append(out, models.SalidaDetalle{
			ID:              d.ID,
			TipoDispositivo: d.TipoDispositivo,
			Cantidad:        d.Cantidad,
			Desecho:         d.Desecho,
			EntradaDetalle:  strconv.Itoa(d.EntradaDetalleID),
		})
	}
	return c.JSON(out)
}

func (s *Server) addSalidaDetalle(c *fiber.Ctx) error {
	d := store.SalidaDetalle{
		SalidaID:         intOr(c.FormValue("salida"), 0),
		TipoDispositivo:  c.FormValue("tdispositivo"),
		Cantidad:         intOr(c.FormValue("cantidad"), 0),
		Desecho:          intOr(c.FormValue("desecho"), 0),
		EntradaDetalleID: intOr(c.FormValue("entrada_detalle"), 0),
	}
	if err := s.repo.AddSalidaDetalle(&d); err != nil {
		return s.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": d.ID})
}

func (s *Server) finishSalida(c *fiber.Ctx) error {
	id, valid := intValue(c.Params("id"))
	if !valid {
		return badRequest(c, "id invalido")
	}
	if enCreacion, _ := types.ParseFlag(c.FormValue("en_creacion")); enCreacion.Bool() {
		return ok(c)
	}
	if err := s.repo.FinishSalida(id, usuario(c)); err != nil {
		return s.fail(c, err)
	}
	return ok(c)
}

func (s *Server) listPaquetes(c *fiber.Ctx) error {
	rows, err := s.repo.ListPaquetes(store.PaqueteFilter{
		SalidaID:        intOr(c.Query("salida"), 0),
		TipoDispositivo: c.Query("tipo_dispositivo"),
		Aprobado:        boolQuery(c, "aprobado"),
	})
	if err != nil {
		return s.fail(c, err)
	}
	out := make([]models.Paquete, 0, len(rows))
	for _, p := range rows {
		out = append(out, toPaquete(p))
	}
	return c.JSON(out)
}

func (s *Server) getPaquete(c *fiber.Ctx) error {
	id, valid := intValue(c.Params("id"))
	if !valid {
		return badRequest(c, "id invalido")
	}
	p, err := s.repo.GetPaquete(id)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(toPaquete(p))
}

func (s *Server) approvePaquete(c *fiber.Ctx) error {
	id, valid := intValue(c.FormValue("paquete"))
	if !valid {
		return badRequest(c, "paquete es obligatorio")
	}
	if err := s.repo.ApprovePaquete(id); err != nil {
		return s.fail(c, err)
	}
	return ok(c)
}

func (s *Server) assignDispositivo(c *fiber.Ctx) error {
	id, valid := intValue(c.FormValue("paquete"))
	triage := strings.TrimSpace(c.FormValue("dispositivo"))
	if !valid || triage == "" {
		return badRequest(c, "paquete y dispositivo son obligatorios")
	}
	if err := s.repo.AssignDispositivo(id, triage); err != nil {
		return s.fail(c, err)
	}
	return ok(c)
}

func (s *Server) rejectDispositivo(c *fiber.Ctx) error {
	id, valid := intValue(c.FormValue("paquete"))
	triage := strings.TrimSpace(c.FormValue("triage"))
	if !valid || triage == "" {
		return badRequest(c, "paquete y triage son obligatorios")
	}
	if err := s.repo.RejectDispositivo(id, triage); err != nil {
		return s.fail(c, err)
	}
	return ok(c)
}

func (s *Server) listRevisiones(c *fiber.Ctx) error {
	rows, err := s.repo.ListRevisiones(boolQuery(c, "aprobada"))
	if err != nil {
		return s.fail(c, err)
	}
	out := make([]models.RevisionSalida, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.RevisionSalida{
			ID:            r.ID,
			FechaRevision: fecha(r.FechaRevision),
			Salida:        strconv.Itoa(r.SalidaID),
			RevisadoPor:   r.RevisadoPor,
			URLSalida:     fmt.Sprintf("/inventario/salida/%d/revisar/", r.SalidaID),
		})
	}
	return c.JSON(out)
}

func (s *Server) decideSalida(c *fiber.Ctx, aprobada bool) error {
	id, valid := intValue(c.Params("id"))
	if !valid {
		return badRequest(c, "id invalido")
	}
	if form := c.FormValue("salida"); form != "" && form != c.Params("id") {
		return badRequest(c, "La salida no coincide")
	}
	if err := s.repo.DecideSalida(id, aprobada, usuario(c)); err != nil {
		return s.fail(c, err)
	}
	return ok(c)
}

func (s *Server) approveSalida(c *fiber.Ctx) error { return s.decideSalida(c, true) }

func (s *Server) rejectSalida(c *fiber.Ctx) error { return s.decideSalida(c, false) }

func (s *Server) listHistorial(c *fiber.Ctx) error {
	id, valid := intValue(c.Query("id_comentario"))
	if !valid {
		return badRequest(c, "id_comentario es obligatorio")
	}
	rows, err := s.repo.ListHistorial(id)
	if err != nil {
		return s.fail(c, err)
	}
	out := make([]models.HistoryEntry, 0, len(rows))
	for _, h := range rows {
		out = append(out, toHistory(h))
	}
	return c.JSON(out)
}

func (s *Server) addHistorial(c *fiber.Ctx) error {
	var req models.HistoryRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Cuerpo invalido")
	}
	if err := validate.Struct(req); err != nil {
		return badRequest(c, "id_comentario y comentario son obligatorios")
	}
	h, err := s.repo.AddHistorial(req.IDComentario, usuario(c), req.Comentario)
	if err != nil {
		return s.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toHistory(h))
}
