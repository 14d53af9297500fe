package store

import (
	"time"

	"gorm.io/gorm"

	"inventario-app/idgen"
)

// Estado and etapa codes of a Dispositivo.
const (
	EstadoNuevo      = 1
	EstadoDisponible = 2

	EtapaRecepcion = 1
	EtapaSalida    = 2
	EtapaAprobado  = 3
)

// Estado codes of a Repuesto.
const (
	RepuestoDisponible = 1
	RepuestoAsignado   = 2
)

type Entrada struct {
	ID          int `gorm:"primaryKey"`
	Tipo        string
	Fecha       time.Time
	EnCreacion  bool `gorm:"default:true"`
	CreadaPor   string
	RecibidaPor string
	Proveedor   string
}

type Detalle struct {
	ID               int `gorm:"primaryKey"`
	EntradaID        int `gorm:"index"`
	TipoDispositivo  string
	UsaTriage        bool
	Util             int
	Repuesto         int
	Desecho          int
	Total            int
	PrecioUnitario   *string
	PrecioSubtotal   *string
	PrecioDescontado *string
	PrecioTotal      *string
	Descripcion      string
	CreadoPor        string

	DispositivosCreados bool
	RepuestosCreados    bool
	QRDispositivo       bool
	QRRepuestos         bool

	Entrada Entrada `gorm:"foreignKey:EntradaID"`
}

type Dispositivo struct {
	ID        int    `gorm:"primaryKey"`
	Triage    string `gorm:"uniqueIndex;size:64"`
	Tipo      string `gorm:"index"`
	EntradaID int
	DetalleID int `gorm:"index"`
	Marca     string
	Modelo    string
	Serie     string
	Tarima    string
	Estado    int
	Etapa     int
}

type Repuesto struct {
	ID            int    `gorm:"primaryKey"`
	Numero        string `gorm:"size:64"`
	Tipo          string `gorm:"index"`
	Descripcion   string
	Tarima        string
	Estado        int
	DetalleID     int
	DispositivoID *int
}

type Salida struct {
	ID         int `gorm:"primaryKey"`
	Fecha      time.Time
	EnCreacion bool `gorm:"default:true"`
	Estado     string
	CreadaPor  string
}

type SalidaDetalle struct {
	ID               int `gorm:"primaryKey"`
	SalidaID         int `gorm:"index"`
	TipoDispositivo  string
	Cantidad         int
	Desecho          int
	EntradaDetalleID int
}

type Paquete struct {
	ID              int `gorm:"primaryKey"`
	SalidaID        int `gorm:"index"`
	TipoPaquete     string
	TipoDispositivo string
	Aprobado        bool
	CreatedAt       time.Time

	Asignaciones []Asignacion `gorm:"foreignKey:PaqueteID;constraint:OnDelete:CASCADE"`
}

type Asignacion struct {
	ID            int `gorm:"primaryKey"`
	PaqueteID     int `gorm:"index"`
	DispositivoID int
	Dispositivo   Dispositivo `gorm:"foreignKey:DispositivoID"`
}

type RevisionSalida struct {
	ID            int `gorm:"primaryKey"`
	SalidaID      int `gorm:"index"`
	FechaRevision time.Time
	RevisadoPor   string
	Aprobada      bool
	Rechazada     bool
}

// Historial is an append-only comment on a Salida.
type Historial struct {
	ID         int64 `gorm:"primaryKey;autoIncrement:false"`
	SalidaID   int   `gorm:"index"`
	Usuario    string
	Comentario string
	CreatedAt  time.Time
}

func (h *Historial) BeforeCreate(tx *gorm.DB) (err error) {
	h.ID = idgen.GenerateID()
	return
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Entrada{},
		&Detalle{},
		&Dispositivo{},
		&Repuesto{},
		&Salida{},
		&SalidaDetalle{},
		&Paquete{},
		&Asignacion{},
		&RevisionSalida{},
		&Historial{},
	)
}
