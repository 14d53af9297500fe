package models

import (
	"strconv"

	"inventario-app/types"
)

const TipoEntradaEspecial = "Especial"

// Entrada is a row of the intake list.
type Entrada struct {
	ID          int        `json:"id"`
	Tipo        string     `json:"tipo"`
	Fecha       string     `json:"fecha"`
	EnCreacion  types.Flag `json:"en_creacion"`
	CreadaPor   string     `json:"creada_por"`
	RecibidaPor string     `json:"recibida_por"`
	Proveedor   string     `json:"proveedor"`
	URLSi       string     `json:"urlSi"`
	URLNo       string     `json:"urlNo"`
}

func (e Entrada) Field(key string) string {
	switch key {
	case "id":
		return strconv.Itoa(e.ID)
	case "tipo":
		return e.Tipo
	case "fecha":
		return e.Fecha
	case "en_creacion":
		return e.EnCreacion.Label()
	case "creada_por":
		return e.CreadaPor
	case "recibida_por":
		return e.RecibidaPor
	case "proveedor":
		return e.Proveedor
	}
	return ""
}

// Detalle is one line item of an Entrada. It is the row type of the
// entrada detail and update grids.
type Detalle struct {
	ID               int     `json:"id"`
	Entrada          int     `json:"entrada"`
	TipoDispositivo  string  `json:"tdispositivo"`
	Util             int     `json:"util"`
	Repuesto         int     `json:"repuesto"`
	Desecho          int     `json:"desecho"`
	Total            int     `json:"total"`
	PrecioUnitario   *string `json:"precio_unitario"`
	PrecioSubtotal   *string `json:"precio_subtotal"`
	PrecioDescontado *string `json:"precio_descontado"`
	PrecioTotal      *string `json:"precio_total"`
	Descripcion      string  `json:"descripcion"`
	CreadoPor        string  `json:"creado_por"`

	TipoEntrada         string     `json:"tipo_entrada"`
	UsaTriage           types.Flag `json:"usa_triage"`
	DispositivosCreados types.Flag `json:"dispositivos_creados"`
	RepuestosCreados    types.Flag `json:"repuestos_creados"`
	QRDispositivo       types.Flag `json:"qr_dispositivo"`
	QRRepuestos         types.Flag `json:"qr_repuestos"`

	UpdateURL       string `json:"update_url"`
	DispositivoList string `json:"dispositivo_list"`
	DispositivoQR   string `json:"dispositivo_qr"`
	RepuestoList    string `json:"repuesto_list"`
	RepuestoQR      string `json:"repuesto_qr"`
}

// Especial reports whether the line belongs to a special entry, which never
// spawns devices or parts from the controller.
func (d Detalle) Especial() bool {
	return d.TipoEntrada == TipoEntradaEspecial
}

func (d Detalle) Field(key string) string {
	switch key {
	case "id":
		return strconv.Itoa(d.ID)
	case "tdispositivo":
		return d.TipoDispositivo
	case "util":
		return strconv.Itoa(d.Util)
	case "repuesto":
		return strconv.Itoa(d.Repuesto)
	case "desecho":
		return strconv.Itoa(d.Desecho)
	case "total":
		return strconv.Itoa(d.Total)
	case "precio_unitario":
		return deref(d.PrecioUnitario)
	case "precio_subtotal":
		return deref(d.PrecioSubtotal)
	case "precio_descontado":
		return deref(d.PrecioDescontado)
	case "precio_total":
		return deref(d.PrecioTotal)
	case "descripcion":
		return d.Descripcion
	case "creado_por":
		return d.CreadoPor
	}
	return ""
}

// SalidaDetalle is a row of the outbound detail grid.
type SalidaDetalle struct {
	ID              int    `json:"id"`
	TipoDispositivo string `json:"tdispositivo"`
	Cantidad        int    `json:"cantidad"`
	Desecho         int    `json:"desecho"`
	EntradaDetalle  string `json:"entrada_detalle"`
}

func (s SalidaDetalle) Field(key string) string {
	switch key {
	case "id":
		return strconv.Itoa(s.ID)
	case "tdispositivo":
		return s.TipoDispositivo
	case "cantidad":
		return strconv.Itoa(s.Cantidad)
	case "desecho":
		return strconv.Itoa(s.Desecho)
	case "entrada_detalle":
		return s.EntradaDetalle
	}
	return ""
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Resource is what a line item can spawn. The values are the ones the label
// print endpoint expects in "tipo".
type Resource string

const (
	Dispositivos Resource = "dispositivo"
	Repuestos    Resource = "repuestos"
)

// Creados reports whether r was already created for the line.
func (d Detalle) Creados(r Resource) bool {
	if r == Repuestos {
		return d.RepuestosCreados.Bool()
	}
	return d.DispositivosCreados.Bool()
}

// Impresos reports whether labels for r were already printed.
func (d Detalle) Impresos(r Resource) bool {
	if r == Repuestos {
		return d.QRRepuestos.Bool()
	}
	return d.QRDispositivo.Bool()
}
