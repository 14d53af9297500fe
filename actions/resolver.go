package actions

import "inventario-app/models"

type Kind int

const (
	None Kind = iota
	Create
	Print
	ViewList
	Edit
	Open
	Approve
)

func (k Kind) String() string {
	switch k {
	case Create:
		return "create"
	case Print:
		return "print"
	case ViewList:
		return "view-list"
	case Edit:
		return "edit"
	case Open:
		return "open"
	case Approve:
		return "approve"
	}
	return "none"
}

// Fact is a boolean guard a rule can test.
type Fact string

const (
	Special    Fact = "especial"
	Created    Fact = "creados"
	UsesTriage Fact = "usa_triage"
	Printed    Fact = "impresos"
	InCreation Fact = "en_creacion"
	Approved   Fact = "aprobado"
)

type Facts map[Fact]bool

// Rule matches when every fact in When has the given value. A rule with an
// empty When always matches.
type Rule struct {
	When Facts
	Then Kind
}

func (r Rule) matches(f Facts) bool {
	for fact, want := range r.When {
		if f[fact] != want {
			return false
		}
	}
	return true
}

// Table is evaluated top-down; the first matching rule wins.
type Table []Rule

func (t Table) Resolve(f Facts) Kind {
	for _, r := range t {
		if r.matches(f) {
			return r.Then
		}
	}
	return None
}

// ResourceTable decides the device and part columns of a line item.
var ResourceTable = Table{
	{When: Facts{Special: true}, Then: None},
	{When: Facts{Created: false, UsesTriage: true}, Then: Create},
	{When: Facts{Created: false}, Then: None},
	{When: Facts{UsesTriage: true, Printed: true}, Then: ViewList},
	{When: Facts{UsesTriage: true}, Then: Print},
	{Then: None},
}

// EditTable decides the edit column: a line stays editable until its
// devices exist, unless the type is not triage tracked.
var EditTable = Table{
	{When: Facts{Created: false}, Then: Edit},
	{When: Facts{UsesTriage: false}, Then: Edit},
	{Then: None},
}

// EntradaTable picks between the editable and the read-only view.
var EntradaTable = Table{
	{When: Facts{InCreation: true}, Then: Edit},
	{Then: Open},
}

var PaqueteTable = Table{
	{When: Facts{Approved: true}, Then: None},
	{Then: Approve},
}

// Action is a resolved affordance for one row.
type Action struct {
	Kind  Kind
	Label string
	URL   string
}

func (a Action) Available() bool { return a.Kind != None }

// Render is the cell text of the action.
func (a Action) Render() string {
	if a.Kind == None {
		return ""
	}
	return "[" + a.Label + "]"
}

func ResourceFacts(d models.Detalle, r models.Resource) Facts {
	return Facts{
		Special:    d.Especial(),
		Created:    d.Creados(r),
		UsesTriage: d.UsaTriage.Bool(),
		Printed:    d.Impresos(r),
	}
}

var resourceLabels = map[models.Resource]map[Kind]string{
	models.Dispositivos: {Create: "Crear Disp", ViewList: "Listado Dispositivo", Print: "QR Dispositivo"},
	models.Repuestos:    {Create: "Crear Rep", ViewList: "Listado Repuestos", Print: "QR Repuestos"},
}

// ForResource resolves the device or part column of a line item.
func ForResource(d models.Detalle, r models.Resource) Action {
	kind := ResourceTable.Resolve(ResourceFacts(d, r))
	a := Action{Kind: kind, Label: resourceLabels[r][kind]}
	switch {
	case kind == ViewList && r == models.Repuestos:
		a.URL = d.RepuestoList
	case kind == ViewList:
		a.URL = d.DispositivoList
	case kind == Print && r == models.Repuestos:
		a.URL = d.RepuestoQR
	case kind == Print:
		a.URL = d.DispositivoQR
	}
	return a
}

func ForEdit(d models.Detalle) Action {
	kind := EditTable.Resolve(Facts{
		Created:    d.DispositivosCreados.Bool(),
		UsesTriage: d.UsaTriage.Bool(),
	})
	if kind == None {
		return Action{}
	}
	return Action{Kind: Edit, Label: "Editar", URL: d.UpdateURL}
}

type LineItemActions struct {
	Edit        Action
	Dispositivo Action
	Repuesto    Action
}

func ForLineItem(d models.Detalle) LineItemActions {
	return LineItemActions{
		Edit:        ForEdit(d),
		Dispositivo: ForResource(d, models.Dispositivos),
		Repuesto:    ForResource(d, models.Repuestos),
	}
}

func ForEntrada(e models.Entrada) Action {
	if EntradaTable.Resolve(Facts{InCreation: e.EnCreacion.Bool()}) == Edit {
		return Action{Kind: Edit, Label: "Abrir", URL: e.URLSi}
	}
	return Action{Kind: Open, Label: "Abrir", URL: e.URLNo}
}

func ForPaquete(p models.Paquete) Action {
	if PaqueteTable.Resolve(Facts{Approved: p.Aprobado.Bool()}) == None {
		return Action{}
	}
	return Action{Kind: Approve, Label: "Aprobar"}
}
