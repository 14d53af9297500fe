package models

import "strconv"

// Dispositivo is an individually tracked unit, identified on the floor by
// its triage tag.
type Dispositivo struct {
	ID      int    `json:"id"`
	Triage  string `json:"triage"`
	Tipo    string `json:"tipo"`
	Entrada int    `json:"entrada"`
	Marca   string `json:"marca"`
	Modelo  string `json:"modelo"`
	Serie   string `json:"serie"`
	Tarima  string `json:"tarima"`
	Estado  string `json:"estado"`
	Etapa   string `json:"etapa"`
	URL     string `json:"url"`
}

func (d Dispositivo) Field(key string) string {
	switch key {
	case "id":
		return strconv.Itoa(d.ID)
	case "triage":
		return d.Triage
	case "tipo":
		return d.Tipo
	case "marca":
		return d.Marca
	case "modelo":
		return d.Modelo
	case "serie":
		return d.Serie
	case "tarima":
		return d.Tarima
	case "estado":
		return d.Estado
	case "etapa":
		return d.Etapa
	}
	return ""
}

// Repuesto is a bulk consumable. It can be assigned to a Dispositivo.
type Repuesto struct {
	ID          int    `json:"id"`
	Numero      string `json:"No"`
	Tipo        string `json:"tipo"`
	Descripcion string `json:"descripcion"`
	Tarima      string `json:"tarima"`
	Estado      string `json:"estado"`
}

func (r Repuesto) Field(key string) string {
	switch key {
	case "id":
		return strconv.Itoa(r.ID)
	case "No":
		return r.Numero
	case "tipo":
		return r.Tipo
	case "descripcion":
		return r.Descripcion
	case "tarima":
		return r.Tarima
	case "estado":
		return r.Estado
	}
	return ""
}

// Opcion is an entry of a device picker or dropdown.
type Opcion struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}
