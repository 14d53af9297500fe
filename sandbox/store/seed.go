package store

import (
	"time"

	"gorm.io/gorm"
)

func price(s string) *string { return &s }

// Seed loads a small working set: intakes in every state, units ready to be
// packed, a Salida being packed and one waiting for review. It does nothing
// when intakes already exist.
func Seed(db *gorm.DB) error {
	var n int64
	if err := db.Model(&Entrada{}).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	now := time.Now()
	return db.Transaction(func(tx *gorm.DB) error {
		entradas := []Entrada{
			{ID: 1, Tipo: "Compra", Fecha: now, EnCreacion: true, CreadaPor: "admin", RecibidaPor: "bodega", Proveedor: "ACME"},
			{ID: 2, Tipo: TipoEntradaEspecial, Fecha: now, EnCreacion: true, CreadaPor: "admin", RecibidaPor: "bodega", Proveedor: "Municipalidad"},
			{ID: 3, Tipo: "Donacion", Fecha: now.AddDate(0, 0, -7), EnCreacion: true, CreadaPor: "admin", RecibidaPor: "bodega", Proveedor: "Fundacion"},
		}
		if err := tx.Create(&entradas).Error; err != nil {
			return err
		}
		// Boolean defaults would turn a false EnCreacion back into true.
		if err := tx.Model(&Entrada{ID: 3}).Update("en_creacion", false).Error; err != nil {
			return err
		}

		detalles := []Detalle{
			{ID: 1, EntradaID: 1, TipoDispositivo: "Laptop", UsaTriage: true, Util: 3, Repuesto: 2, Total: 5,
				PrecioUnitario: price("350.00"), PrecioSubtotal: price("1750.00"), PrecioDescontado: price("0.00"), PrecioTotal: price("1750.00"),
				Descripcion: "Laptops usadas", CreadoPor: "admin"},
			{ID: 2, EntradaID: 1, TipoDispositivo: "Cable", Util: 10, Total: 10, Descripcion: "Cables de poder", CreadoPor: "admin"},
			{ID: 3, EntradaID: 2, TipoDispositivo: "Monitor", UsaTriage: true, Util: 2, Total: 2, Descripcion: "Monitores", CreadoPor: "admin"},
			{ID: 4, EntradaID: 3, TipoDispositivo: "Laptop", UsaTriage: true, Util: 3, Repuesto: 2, Total: 5,
				DispositivosCreados: true, RepuestosCreados: true, QRDispositivo: true, QRRepuestos: true,
				Descripcion: "Laptops donadas", CreadoPor: "admin"},
		}
		if err := tx.Omit("Entrada").Create(&detalles).Error; err != nil {
			return err
		}

		dispositivos := []Dispositivo{
			{ID: 1, Triage: "LAP-0004-001", Tipo: "Laptop", EntradaID: 3, DetalleID: 4, Marca: "Dell", Modelo: "Latitude", Serie: "D1", Tarima: "T1", Estado: EstadoDisponible, Etapa: EtapaSalida},
			{ID: 2, Triage: "LAP-0004-002", Tipo: "Laptop", EntradaID: 3, DetalleID: 4, Marca: "Dell", Modelo: "Latitude", Serie: "D2", Tarima: "T1", Estado: EstadoDisponible, Etapa: EtapaSalida},
			{ID: 3, Triage: "LAP-0004-003", Tipo: "Laptop", EntradaID: 3, DetalleID: 4, Marca: "HP", Modelo: "ProBook", Serie: "H3", Tarima: "T2", Estado: EstadoDisponible, Etapa: EtapaAprobado},
		}
		if err := tx.Create(&dispositivos).Error; err != nil {
			return err
		}
		repuestos := []Repuesto{
			{ID: 1, Numero: "R-0004-001", Tipo: "Laptop", Descripcion: "Bateria 6 celdas", Tarima: "T9", Estado: RepuestoDisponible, DetalleID: 4},
			{ID: 2, Numero: "R-0004-002", Tipo: "Laptop", Descripcion: "Cargador 65W", Tarima: "T9", Estado: RepuestoDisponible, DetalleID: 4},
		}
		if err := tx.Create(&repuestos).Error; err != nil {
			return err
		}

		salidas := []Salida{
			{ID: 1, Fecha: now, EnCreacion: true, Estado: "pendiente", CreadaPor: "admin"},
			{ID: 2, Fecha: now.AddDate(0, 0, -1), EnCreacion: true, Estado: "pendiente", CreadaPor: "admin"},
		}
		if err := tx.Create(&salidas).Error; err != nil {
			return err
		}
		if err := tx.Model(&Salida{ID: 2}).Update("en_creacion", false).Error; err != nil {
			return err
		}
		if err := tx.Create(&SalidaDetalle{ID: 1, SalidaID: 1, TipoDispositivo: "Laptop", Cantidad: 2, EntradaDetalleID: 4}).Error; err != nil {
			return err
		}

		paquetes := []Paquete{
			{ID: 1, SalidaID: 1, TipoPaquete: "Laptop", TipoDispositivo: "Laptop", CreatedAt: now},
			{ID: 2, SalidaID: 2, TipoPaquete: "Laptop", TipoDispositivo: "Laptop", Aprobado: true, CreatedAt: now.AddDate(0, 0, -1)},
		}
		if err := tx.Create(&paquetes).Error; err != nil {
			return err
		}
		asignaciones := []Asignacion{
			{ID: 1, PaqueteID: 1, DispositivoID: 1},
			{ID: 2, PaqueteID: 2, DispositivoID: 3},
		}
		if err := tx.Omit("Dispositivo").Create(&asignaciones).Error; err != nil {
			return err
		}
		return tx.Create(&RevisionSalida{ID: 1, SalidaID: 2, FechaRevision: now, RevisadoPor: "supervisor"}).Error
	})
}
