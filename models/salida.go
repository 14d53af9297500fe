package models

import (
	"strconv"

	"inventario-app/types"
)

// RevisionSalida is a pending review of an outbound batch.
type RevisionSalida struct {
	ID            int    `json:"id"`
	FechaRevision string `json:"fecha_revision"`
	Salida        string `json:"salida"`
	RevisadoPor   string `json:"revisado_por"`
	URLSalida     string `json:"urlSalida"`
}

func (r RevisionSalida) Field(key string) string {
	switch key {
	case "id":
		return strconv.Itoa(r.ID)
	case "fecha_revision":
		return FormatFechaLarga(r.FechaRevision)
	case "salida":
		return r.Salida
	case "revisado_por":
		return r.RevisadoPor
	}
	return ""
}

type Asignacion struct {
	Dispositivo struct {
		Triage string `json:"triage"`
	} `json:"dispositivo"`
}

// Paquete groups units of a Salida for approval.
type Paquete struct {
	ID            int          `json:"id"`
	IDPaquete     int          `json:"id_paquete"`
	Salida        int          `json:"salida"`
	TipoPaquete   string       `json:"tipo_paquete"`
	Aprobado      types.Flag   `json:"aprobado"`
	Asignacion    []Asignacion `json:"asignacion"`
	FechaCreacion string       `json:"fecha_creacion"`
	URLPaquete    string       `json:"urlPaquet"`
}

const SinDispositivos = "No cuenta con dispositivos"

// UltimoTriage returns the triage of the last assigned unit.
func (p Paquete) UltimoTriage() string {
	if len(p.Asignacion) == 0 {
		return SinDispositivos
	}
	triage := p.Asignacion[len(p.Asignacion)-1].Dispositivo.Triage
	if triage == "" {
		return SinDispositivos
	}
	return triage
}

// Estado is the approval label shown in package grids.
func (p Paquete) Estado() string {
	if p.Aprobado {
		return "Aprobado"
	}
	return "Pendiente"
}

func (p Paquete) Field(key string) string {
	switch key {
	case "id":
		return strconv.Itoa(p.ID)
	case "id_paquete":
		return strconv.Itoa(p.IDPaquete)
	case "tipo_paquete":
		return p.TipoPaquete
	case "asignacion":
		return p.UltimoTriage()
	case "aprobado":
		return p.Estado()
	case "fecha_creacion":
		return FormatFechaLarga(p.FechaCreacion)
	}
	return ""
}
