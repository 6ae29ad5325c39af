package command

// Type enumerates the closed set of staff commands. Anything the phrase table
// does not recognize stays TypeUnknown and is denied downstream.
type Type string

const (
	TypeCreateProperty Type = "create_property"
	TypeUpdateProperty Type = "update_property"
	TypeDeleteProperty Type = "delete_property"
	TypeCreateClient   Type = "create_client"
	TypeUpdateClient   Type = "update_client"
	TypeCreateAgent    Type = "create_agent"
	TypeUpdateAgent    Type = "update_agent"
	TypeListData       Type = "list_data"
	TypeHelp           Type = "help"
	TypeUnknown        Type = "unknown"
)

// Command is a parsed, typed staff intent ready to forward to the backend.
type Command struct {
	Type            Type       `json:"type"`
	OriginalMessage string     `json:"originalMessage"`
	Parameters      Parameters `json:"parameters"`
}

// Parameters aggregates the per-command parameter shapes; only the slot for
// the parsed command type is populated. Missing matches collapse to zero
// values, never to nils the backend has to guard against.
type Parameters struct {
	PropertyData *PropertyData `json:"propertyData,omitempty"`
	PropertyID   int           `json:"propertyId,omitempty"`
	UpdateData   *PropertyData `json:"updateData,omitempty"`
	ClientData   *PersonData   `json:"clientData,omitempty"`
	AgentData    *AgentData    `json:"agentData,omitempty"`
	ListType     string        `json:"listType,omitempty"`
	Filters      *ListFilters  `json:"filters,omitempty"`
	Topic        string        `json:"topic,omitempty"`
	Raw          string        `json:"raw,omitempty"`
}

// PropertyData mirrors the property columns of the database module.
type PropertyData struct {
	NombrePropiedad string `json:"nombre_propiedad"`
	Descripcion     string `json:"descripcion"`
	Precio          int    `json:"precio"`
	Ubicacion       string `json:"ubicacion"`
	TipoPropiedad   string `json:"tipo_propiedad"`
	Dormitorios     int    `json:"dormitorios"`
	Banos           int    `json:"banos"`
}

// PersonData is the positional parse of client registration commands.
type PersonData struct {
	Nombre   string `json:"nombre"`
	Apellido string `json:"apellido"`
	Telefono string `json:"telefono"`
	Email    string `json:"email"`
}

// AgentData is the positional parse of agent registration commands.
type AgentData struct {
	Nombre   string `json:"nombre"`
	Apellido string `json:"apellido"`
	Telefono string `json:"telefono"`
	Cargo    string `json:"cargo"`
}

type ListFilters struct {
	Ubicacion string `json:"ubicacion,omitempty"`
	PrecioMax int    `json:"precio_max,omitempty"`
}

// Authorization is the permission engine verdict. DeniedUnknown distinguishes
// "the command itself was not recognized" from "the role lacks this
// permission"; callers surface different user-facing text for each.
type Authorization struct {
	Allowed       bool   `json:"allowed"`
	Reason        string `json:"reason,omitempty"`
	DeniedUnknown bool   `json:"deniedUnknown,omitempty"`
}

type IPermissionUsecase interface {
	Authorize(role string, commandType Type) Authorization
}

// IParserUsecase extracts structured parameters from free text. Pure and
// total: no I/O, defined for every string input.
type IParserUsecase interface {
	ExtractParameters(text string, commandType Type) Parameters
}
