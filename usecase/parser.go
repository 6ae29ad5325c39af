package usecase

import (
	"regexp"
	"strconv"
	"strings"

	domainCommand "github.com/AxelF0/whatsapp-system/domains/command"
)

// Extraction patterns for free-text property commands. Numbers bind to their
// trailing unit word so "3 dormitorios 2 baños" keeps each count with its
// field.
var (
	pricePattern    = regexp.MustCompile(`(?i)(\d+)\s*(bs|bolivianos?)`)
	bedroomPattern  = regexp.MustCompile(`(?i)(\d+)\s*(dormitorio|cuarto|habitacion)`)
	bathroomPattern = regexp.MustCompile(`(?i)(\d+)\s*(baño|bathroom)`)
	// La ubicación es el texto tras "en" hasta el primer dígito.
	locationPattern   = regexp.MustCompile(`(?i)en\s+([^0-9]+)`)
	propertyIDPattern = regexp.MustCompile(`(?i)propiedad\s+(\d+)`)
	plainIDPattern    = regexp.MustCompile(`(?i)id\s+(\d+)`)

	filterLocationPattern = regexp.MustCompile(`(?i)ubicacion\s+(\S+)`)
	filterPricePattern    = regexp.MustCompile(`(?i)precio\s+(\d+)`)

	localPhonePattern = regexp.MustCompile(`^\d{8}$`)
)

type parserService struct{}

func NewParserService() domainCommand.IParserUsecase {
	return &parserService{}
}

// ExtractParameters pulls the structured payload for a command out of the
// raw message text. Unknown command types keep the raw text so the caller
// can still forward something meaningful.
func (s *parserService) ExtractParameters(text string, commandType domainCommand.Type) domainCommand.Parameters {
	switch commandType {
	case domainCommand.TypeCreateProperty:
		data := parsePropertyText(text)
		return domainCommand.Parameters{PropertyData: &data}

	case domainCommand.TypeUpdateProperty:
		data := parsePropertyText(text)
		return domainCommand.Parameters{PropertyID: extractPropertyID(text), UpdateData: &data}

	case domainCommand.TypeDeleteProperty:
		return domainCommand.Parameters{PropertyID: extractPropertyID(text)}

	case domainCommand.TypeCreateClient, domainCommand.TypeUpdateClient:
		data := parsePersonText(text)
		return domainCommand.Parameters{ClientData: &data}

	case domainCommand.TypeCreateAgent, domainCommand.TypeUpdateAgent:
		data := parseAgentText(text)
		return domainCommand.Parameters{AgentData: &data}

	case domainCommand.TypeListData:
		return domainCommand.Parameters{ListType: extractListType(text), Filters: extractListFilters(text)}

	case domainCommand.TypeHelp:
		return domainCommand.Parameters{Topic: extractHelpTopic(text)}

	default:
		return domainCommand.Parameters{Raw: text}
	}
}

func parsePropertyText(text string) domainCommand.PropertyData {
	data := domainCommand.PropertyData{Descripcion: strings.TrimSpace(text)}

	if m := pricePattern.FindStringSubmatch(text); m != nil {
		data.Precio, _ = strconv.Atoi(m[1])
	}
	if m := bedroomPattern.FindStringSubmatch(text); m != nil {
		data.Dormitorios, _ = strconv.Atoi(m[1])
	}
	if m := bathroomPattern.FindStringSubmatch(text); m != nil {
		data.Banos, _ = strconv.Atoi(m[1])
	}
	if m := locationPattern.FindStringSubmatch(text); m != nil {
		data.Ubicacion = strings.TrimSpace(m[1])
	}

	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "casa"):
		data.TipoPropiedad = "casa"
		data.NombrePropiedad = "Casa"
	case strings.Contains(lower, "departamento"):
		data.TipoPropiedad = "departamento"
		data.NombrePropiedad = "Departamento"
	default:
		data.TipoPropiedad = "inmueble"
		data.NombrePropiedad = "Propiedad"
	}
	if data.Ubicacion != "" {
		data.NombrePropiedad += " en " + data.Ubicacion
	}

	return data
}

func extractPropertyID(text string) int {
	if m := propertyIDPattern.FindStringSubmatch(text); m != nil {
		id, _ := strconv.Atoi(m[1])
		return id
	}
	if m := plainIDPattern.FindStringSubmatch(text); m != nil {
		id, _ := strconv.Atoi(m[1])
		return id
	}
	return 0
}

// parsePersonText reads the positional format
// "NUEVO CLIENTE <nombre> <apellido> <telefono> [email]".
func parsePersonText(text string) domainCommand.PersonData {
	data := domainCommand.PersonData{}
	fields := strings.Fields(text)
	if len(fields) < 3 {
		return data
	}

	rest := fields[2:]
	if len(rest) > 0 {
		data.Nombre = rest[0]
	}
	if len(rest) > 1 {
		data.Apellido = rest[1]
	}
	for _, field := range rest {
		if data.Telefono == "" && localPhonePattern.MatchString(field) {
			data.Telefono = field
		}
		if data.Email == "" && strings.Contains(field, "@") {
			data.Email = field
		}
	}

	return data
}

// parseAgentText reads "REGISTRAR AGENTE <nombre> <apellido> <telefono> [cargo]".
func parseAgentText(text string) domainCommand.AgentData {
	data := domainCommand.AgentData{Cargo: "AGENTE"}
	fields := strings.Fields(text)
	if len(fields) < 3 {
		return data
	}

	rest := fields[2:]
	if len(rest) > 0 {
		data.Nombre = rest[0]
	}
	if len(rest) > 1 {
		data.Apellido = rest[1]
	}
	for _, field := range rest {
		upper := strings.ToUpper(field)
		if data.Telefono == "" && localPhonePattern.MatchString(field) {
			data.Telefono = field
		}
		if upper == "AGENTE" || upper == "GERENTE" {
			data.Cargo = upper
		}
	}

	return data
}

func extractListType(text string) string {
	upper := strings.ToUpper(text)
	switch {
	case strings.Contains(upper, "PROPIEDAD"):
		return "properties"
	case strings.Contains(upper, "CLIENTE"):
		return "clients"
	case strings.Contains(upper, "AGENTE"):
		return "agents"
	case strings.Contains(upper, "USUARIO"):
		return "users"
	default:
		return "all"
	}
}

func extractListFilters(text string) *domainCommand.ListFilters {
	filters := &domainCommand.ListFilters{}
	found := false

	if m := filterLocationPattern.FindStringSubmatch(text); m != nil {
		filters.Ubicacion = m[1]
		found = true
	}
	if m := filterPricePattern.FindStringSubmatch(text); m != nil {
		filters.PrecioMax, _ = strconv.Atoi(m[1])
		found = true
	}

	if !found {
		return nil
	}
	return filters
}

func extractHelpTopic(text string) string {
	upper := strings.ToUpper(text)
	switch {
	case strings.Contains(upper, "PROPIEDAD"):
		return "properties"
	case strings.Contains(upper, "CLIENTE"):
		return "clients"
	case strings.Contains(upper, "AGENTE"):
		return "agents"
	case strings.Contains(upper, "COMANDO"):
		return "commands"
	default:
		return "general"
	}
}
