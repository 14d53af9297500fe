package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("registro no encontrado")

// RuleError is a rejected operation. Its text is shown to the operator.
type RuleError string

func (e RuleError) Error() string { return string(e) }

const (
	ErrEntradaCerrada   RuleError = "La entrada ya fue cuadrada"
	ErrEntradaEspecial  RuleError = "Las entradas especiales no generan dispositivos ni repuestos"
	ErrSinTriage        RuleError = "El tipo de dispositivo no usa triage"
	ErrYaCreados        RuleError = "Ya fueron creados"
	ErrNoCreados        RuleError = "Aun no han sido creados"
	ErrPaqueteAprobado  RuleError = "El paquete ya fue aprobado"
	ErrNoAsignado       RuleError = "El dispositivo no pertenece al paquete"
	ErrYaAsignado       RuleError = "El dispositivo ya esta asignado a un paquete"
	ErrRepuestoAsignado RuleError = "El repuesto ya fue asignado"
	ErrSalidaCerrada    RuleError = "La salida ya fue terminada"
	ErrSalidaRevisada   RuleError = "La salida ya fue revisada"
	ErrTipoInvalido     RuleError = "Tipo de impresion invalido"
	ErrCantidadInvalida RuleError = "La cantidad debe ser mayor a cero"
	ErrComentarioVacio  RuleError = "El comentario es obligatorio"
)

const TipoEntradaEspecial = "Especial"

type Repository struct {
	DB *gorm.DB
}

func NewRepository(DB *gorm.DB) *Repository {
	return &Repository{DB: DB}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

type EntradaFilter struct {
	Tipo       string
	Proveedor  string
	EnCreacion *bool
}

func (r *Repository) ListEntradas(f EntradaFilter) ([]Entrada, error) {
	q := r.DB.Model(&Entrada{}).Order("id")
	if f.Tipo != "" {
		q = q.Where("tipo = ?", f.Tipo)
	}
	if f.Proveedor != "" {
		q = q.Where("proveedor LIKE ?", "%"+f.Proveedor+"%")
	}
	if f.EnCreacion != nil {
		q = q.Where("en_creacion = ?", *f.EnCreacion)
	}
	var out []Entrada
	return out, q.Find(&out).Error
}

func (r *Repository) GetEntrada(id int) (Entrada, error) {
	var e Entrada
	err := r.DB.First(&e, id).Error
	return e, notFound(err)
}

// FinishEntrada closes an intake. It happens once.
func (r *Repository) FinishEntrada(id int) (Entrada, error) {
	var e Entrada
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&e, id).Error; err != nil {
			return notFound(err)
		}
		if !e.EnCreacion {
			return ErrEntradaCerrada
		}
		e.EnCreacion = false
		return tx.Model(&e).Update("en_creacion", false).Error
	})
	return e, err
}

func (r *Repository) ListDetalles(entradaID int) ([]Detalle, error) {
	q := r.DB.Preload("Entrada").Order("id")
	if entradaID > 0 {
		q = q.Where("entrada_id = ?", entradaID)
	}
	var out []Detalle
	return out, q.Find(&out).Error
}

func (r *Repository) GetDetalle(id int) (Detalle, error) {
	var d Detalle
	err := r.DB.Preload("Entrada").First(&d, id).Error
	return d, notFound(err)
}

func (r *Repository) AddDetalle(d *Detalle) error {
	e, err := r.GetEntrada(d.EntradaID)
	if err != nil {
		return err
	}
	if !e.EnCreacion {
		return ErrEntradaCerrada
	}
	if d.Util < 0 || d.Repuesto < 0 || d.Desecho < 0 {
		return ErrCantidadInvalida
	}
	d.Total = d.Util + d.Repuesto + d.Desecho
	if d.Total == 0 {
		return ErrCantidadInvalida
	}
	return r.DB.Omit("Entrada").Create(d).Error
}

// UpdateDetalle applies an edit. Quantities of resources already created
// are kept.
func (r *Repository) UpdateDetalle(id int, changes Detalle) (Detalle, error) {
	d, err := r.GetDetalle(id)
	if err != nil {
		return d, err
	}
	if !d.DispositivosCreados && changes.Util >= 0 {
		d.Util = changes.Util
	}
	if !d.RepuestosCreados && changes.Repuesto >= 0 {
		d.Repuesto = changes.Repuesto
	}
	if changes.Desecho >= 0 {
		d.Desecho = changes.Desecho
	}
	if changes.Descripcion != "" {
		d.Descripcion = changes.Descripcion
	}
	d.Total = d.Util + d.Repuesto + d.Desecho
	err = r.DB.Model(&Detalle{ID: id}).Updates(map[string]interface{}{
		"util":        d.Util,
		"repuesto":    d.Repuesto,
		"desecho":     d.Desecho,
		"total":       d.Total,
		"descripcion": d.Descripcion,
	}).Error
	return d, err
}

func triagePrefix(tipo string) string {
	letters := strings.ToUpper(strings.ReplaceAll(tipo, " ", ""))
	if len(letters) > 3 {
		letters = letters[:3]
	}
	if letters == "" {
		letters = "DSP"
	}
	return letters
}

func (r *Repository) checkCreatable(d Detalle, created bool) error {
	if d.Entrada.Tipo == TipoEntradaEspecial {
		return ErrEntradaEspecial
	}
	if !d.UsaTriage {
		return ErrSinTriage
	}
	if created {
		return ErrYaCreados
	}
	return nil
}

// CreateDispositivos spawns one unit per usable item of the line.
func (r *Repository) CreateDispositivos(detalleID int) ([]Dispositivo, error) {
	var out []Dispositivo
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		var d Detalle
		if err := tx.Preload("Entrada").First(&d, detalleID).Error; err != nil {
			return notFound(err)
		}
		if err := r.checkCreatable(d, d.DispositivosCreados); err != nil {
			return err
		}
		prefix := triagePrefix(d.TipoDispositivo)
		for i := 1; i <= d.Util; i++ {
			out = append(out, Dispositivo{
				Triage:    fmt.Sprintf("%s-%04d-%03d", prefix, d.ID, i),
				Tipo:      d.TipoDispositivo,
				EntradaID: d.EntradaID,
				DetalleID: d.ID,
				Estado:    EstadoNuevo,
				Etapa:     EtapaRecepcion,
			})
		}
		if len(out) > 0 {
			if err := tx.Create(&out).Error; err != nil {
				return err
			}
		}
		return tx.Model(&Detalle{ID: d.ID}).Update("dispositivos_creados", true).Error
	})
	return out, err
}

// CreateRepuestos spawns the spare parts of the line.
func (r *Repository) CreateRepuestos(detalleID int) ([]Repuesto, error) {
	var out []Repuesto
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		var d Detalle
		if err := tx.Preload("Entrada").First(&d, detalleID).Error; err != nil {
			return notFound(err)
		}
		if err := r.checkCreatable(d, d.RepuestosCreados); err != nil {
			return err
		}
		for i := 1; i <= d.Repuesto; i++ {
			out = append(out, Repuesto{
				Numero:      fmt.Sprintf("R-%04d-%03d", d.ID, i),
				Tipo:        d.TipoDispositivo,
				Descripcion: d.Descripcion,
				Estado:      RepuestoDisponible,
				DetalleID:   d.ID,
			})
		}
		if len(out) > 0 {
			if err := tx.Create(&out).Error; err != nil {
				return err
			}
		}
		return tx.Model(&Detalle{ID: d.ID}).Update("repuestos_creados", true).Error
	})
	return out, err
}

// MarkPrinted records that labels of a line were requested.
func (r *Repository) MarkPrinted(detalleID int, tipo string) error {
	d, err := r.GetDetalle(detalleID)
	if err != nil {
		return err
	}
	var column string
	switch tipo {
	case "dispositivo":
		if !d.DispositivosCreados {
			return ErrNoCreados
		}
		column = "qr_dispositivo"
	case "repuestos":
		if !d.RepuestosCreados {
			return ErrNoCreados
		}
		column = "qr_repuestos"
	default:
		return ErrTipoInvalido
	}
	return r.DB.Model(&Detalle{ID: detalleID}).Update(column, true).Error
}

type DispositivoFilter struct {
	Tipo      string
	Estado    int
	Etapa     int
	Search    string
	DetalleID int
	// SinAsignar keeps units that are in no package.
	SinAsignar bool
}

func (r *Repository) ListDispositivos(f DispositivoFilter) ([]Dispositivo, error) {
	q := r.DB.Model(&Dispositivo{}).Order("triage")
	if f.Tipo != "" {
		q = q.Where("tipo = ?", f.Tipo)
	}
	if f.Estado > 0 {
		q = q.Where("estado = ?", f.Estado)
	}
	if f.Etapa > 0 {
		q = q.Where("etapa = ?", f.Etapa)
	}
	if f.Search != "" {
		q = q.Where("triage LIKE ?", "%"+f.Search+"%")
	}
	if f.DetalleID > 0 {
		q = q.Where("detalle_id = ?", f.DetalleID)
	}
	if f.SinAsignar {
		q = q.Where("id NOT IN (?)", r.DB.Model(&Asignacion{}).Select("dispositivo_id"))
	}
	var out []Dispositivo
	return out, q.Find(&out).Error
}

func (r *Repository) dispositivoByTriage(tx *gorm.DB, triage string) (Dispositivo, error) {
	var d Dispositivo
	err := tx.Where("triage = ?", triage).First(&d).Error
	return d, notFound(err)
}

func (r *Repository) ListRepuestos(tipo string, estado int) ([]Repuesto, error) {
	q := r.DB.Model(&Repuesto{}).Order("id")
	if tipo != "" {
		q = q.Where("tipo = ?", tipo)
	}
	if estado > 0 {
		q = q.Where("estado = ?", estado)
	}
	var out []Repuesto
	return out, q.Find(&out).Error
}

// AssignRepuesto gives a spare part to the unit with the triage tag.
func (r *Repository) AssignRepuesto(repuestoID int, triage string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var rep Repuesto
		if err := tx.First(&rep, repuestoID).Error; err != nil {
			return notFound(err)
		}
		if rep.Estado == RepuestoAsignado {
			return ErrRepuestoAsignado
		}
		d, err := r.dispositivoByTriage(tx, triage)
		if err != nil {
			return err
		}
		return tx.Model(&rep).Updates(map[string]interface{}{
			"estado":         RepuestoAsignado,
			"dispositivo_id": d.ID,
		}).Error
	})
}

func (r *Repository) GetSalida(id int) (Salida, error) {
	var s Salida
	err := r.DB.First(&s, id).Error
	return s, notFound(err)
}

func (r *Repository) ListSalidaDetalles(salidaID int) ([]SalidaDetalle, error) {
	q := r.DB.Model(&SalidaDetalle{}).Order("id")
	if salidaID > 0 {
		q = q.Where("salida_id = ?", salidaID)
	}
	var out []SalidaDetalle
	return out, q.Find(&out).Error
}

func (r *Repository) AddSalidaDetalle(d *SalidaDetalle) error {
	s, err := r.GetSalida(d.SalidaID)
	if err != nil {
		return err
	}
	if !s.EnCreacion {
		return ErrSalidaCerrada
	}
	if d.Cantidad <= 0 && d.Desecho <= 0 {
		return ErrCantidadInvalida
	}
	return r.DB.Create(d).Error
}

// FinishSalida closes an outbound batch and opens its review.
func (r *Repository) FinishSalida(id int, usuario string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var s Salida
		if err := tx.First(&s, id).Error; err != nil {
			return notFound(err)
		}
		if !s.EnCreacion {
			return ErrSalidaCerrada
		}
		if err := tx.Model(&s).Update("en_creacion", false).Error; err != nil {
			return err
		}
		return tx.Create(&RevisionSalida{SalidaID: id, FechaRevision: time.Now(), RevisadoPor: usuario}).Error
	})
}

// withAsignaciones loads the units of a package in assignment order.
func withAsignaciones(db *gorm.DB) *gorm.DB {
	return db.Preload("Asignaciones", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("id")
	}).Preload("Asignaciones.Dispositivo")
}

type PaqueteFilter struct {
	SalidaID        int
	TipoDispositivo string
	Aprobado        *bool
}

func (r *Repository) ListPaquetes(f PaqueteFilter) ([]Paquete, error) {
	q := withAsignaciones(r.DB).Order("id")
	if f.SalidaID > 0 {
		q = q.Where("salida_id = ?", f.SalidaID)
	}
	if f.TipoDispositivo != "" {
		q = q.Where("tipo_dispositivo = ?", f.TipoDispositivo)
	}
	if f.Aprobado != nil {
		q = q.Where("aprobado = ?", *f.Aprobado)
	}
	var out []Paquete
	return out, q.Find(&out).Error
}

func (r *Repository) GetPaquete(id int) (Paquete, error) {
	var p Paquete
	err := withAsignaciones(r.DB).First(&p, id).Error
	return p, notFound(err)
}

// ApprovePaquete approves a package and moves its units forward.
func (r *Repository) ApprovePaquete(id int) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var p Paquete
		if err := tx.Preload("Asignaciones").First(&p, id).Error; err != nil {
			return notFound(err)
		}
		if p.Aprobado {
			return ErrPaqueteAprobado
		}
		if err := tx.Model(&p).Update("aprobado", true).Error; err != nil {
			return err
		}
		ids := make([]int, 0, len(p.Asignaciones))
		for _, a := range p.Asignaciones {
			ids = append(ids, a.DispositivoID)
		}
		if len(ids) == 0 {
			return nil
		}
		return tx.Model(&Dispositivo{}).Where("id IN ?", ids).Update("etapa", EtapaAprobado).Error
	})
}

// AssignDispositivo puts a unit in a pending package.
func (r *Repository) AssignDispositivo(paqueteID int, triage string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var p Paquete
		if err := tx.First(&p, paqueteID).Error; err != nil {
			return notFound(err)
		}
		if p.Aprobado {
			return ErrPaqueteAprobado
		}
		d, err := r.dispositivoByTriage(tx, triage)
		if err != nil {
			return err
		}
		var n int64
		if err := tx.Model(&Asignacion{}).Where("dispositivo_id = ?", d.ID).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrYaAsignado
		}
		return tx.Create(&Asignacion{PaqueteID: p.ID, DispositivoID: d.ID}).Error
	})
}

// RejectDispositivo takes a unit out of its package and sends it back to
// the outbound stage.
func (r *Repository) RejectDispositivo(paqueteID int, triage string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		d, err := r.dispositivoByTriage(tx, triage)
		if err != nil {
			return err
		}
		res := tx.Where("paquete_id = ? AND dispositivo_id = ?", paqueteID, d.ID).Delete(&Asignacion{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNoAsignado
		}
		return tx.Model(&d).Update("etapa", EtapaSalida).Error
	})
}

func (r *Repository) ListRevisiones(aprobada *bool) ([]RevisionSalida, error) {
	q := r.DB.Model(&RevisionSalida{}).Order("id")
	if aprobada != nil {
		q = q.Where("aprobada = ?", *aprobada)
	}
	var out []RevisionSalida
	return out, q.Find(&out).Error
}

// DecideSalida records the outcome of the review of a Salida.
func (r *Repository) DecideSalida(salidaID int, aprobada bool, usuario string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var rev RevisionSalida
		if err := tx.Where("salida_id = ?", salidaID).First(&rev).Error; err != nil {
			return notFound(err)
		}
		if rev.Aprobada || rev.Rechazada {
			return ErrSalidaRevisada
		}
		estado := "rechazada"
		if aprobada {
			estado = "aprobada"
		}
		if err := tx.Model(&Salida{ID: salidaID}).Update("estado", estado).Error; err != nil {
			return err
		}
		return tx.Model(&rev).Updates(map[string]interface{}{
			"aprobada":       aprobada,
			"rechazada":      !aprobada,
			"revisado_por":   usuario,
			"fecha_revision": time.Now(),
		}).Error
	})
}

func (r *Repository) AddHistorial(salidaID int, usuario, comentario string) (Historial, error) {
	if strings.TrimSpace(comentario) == "" {
		return Historial{}, ErrComentarioVacio
	}
	if _, err := r.GetSalida(salidaID); err != nil {
		return Historial{}, err
	}
	h := Historial{SalidaID: salidaID, Usuario: usuario, Comentario: comentario}
	return h, r.DB.Create(&h).Error
}

func (r *Repository) ListHistorial(salidaID int) ([]Historial, error) {
	var out []Historial
	return out, r.DB.Where("salida_id = ?", salidaID).Order("created_at, id").Find(&out).Error
}
