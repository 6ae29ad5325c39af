package usecase

import (
	"context"
	"regexp"
	"strings"

	domainCommand "github.com/AxelF0/whatsapp-system/domains/command"
	domainIdentity "github.com/AxelF0/whatsapp-system/domains/identity"
	domainMessage "github.com/AxelF0/whatsapp-system/domains/message"
	"github.com/sirupsen/logrus"
)

// Keyword tables for the lightweight content analysis. Kept small on
// purpose: this is routing support, not NLP.
var (
	greetingPhrases = []string{"hola", "buenas", "buenos dias", "buenas tardes", "buenas noches", "saludos"}

	propertyKeywords = []string{"casa", "departamento", "propiedad", "inmueble", "terreno", "oficina", "local"}

	helpKeywords = []string{"ayuda", "help"}

	// Ubicaciones comunes en Santa Cruz.
	knownLocations = []string{"zona norte", "zona sur", "zona este", "zona oeste", "centro", "plan 3000", "la ramada", "equipetrol"}

	priceRangePattern = regexp.MustCompile(`(?i)(\d+)\s*(bs|bolivianos?|\$|dolares?|usd)`)

	imperativeVerbs = []string{"registrar", "crear", "nueva", "nuevo", "modificar", "actualizar", "eliminar", "borrar", "listar", "mostrar"}
)

// commandPhrases maps fixed command phrases to their command type. Order
// matters: the generic LISTAR/MOSTRAR and AYUDA entries must come after the
// specific ones.
var commandPhrases = []struct {
	phrases []string
	cmdType domainCommand.Type
}{
	{[]string{"NUEVA PROPIEDAD", "REGISTRAR PROPIEDAD"}, domainCommand.TypeCreateProperty},
	{[]string{"MODIFICAR PROPIEDAD", "ACTUALIZAR PROPIEDAD"}, domainCommand.TypeUpdateProperty},
	{[]string{"ELIMINAR PROPIEDAD"}, domainCommand.TypeDeleteProperty},
	{[]string{"NUEVO CLIENTE", "REGISTRAR CLIENTE"}, domainCommand.TypeCreateClient},
	{[]string{"MODIFICAR CLIENTE", "ACTUALIZAR CLIENTE"}, domainCommand.TypeUpdateClient},
	{[]string{"REGISTRAR AGENTE", "NUEVO AGENTE"}, domainCommand.TypeCreateAgent},
	{[]string{"MODIFICAR AGENTE", "ACTUALIZAR AGENTE"}, domainCommand.TypeUpdateAgent},
	{[]string{"LISTAR", "MOSTRAR"}, domainCommand.TypeListData},
	{[]string{"AYUDA", "HELP"}, domainCommand.TypeHelp},
}

type analyzerService struct {
	validator domainIdentity.IIdentityUsecase
}

func NewAnalyzerService(validator domainIdentity.IIdentityUsecase) domainMessage.IAnalyzerUsecase {
	return &analyzerService{validator: validator}
}

// Analyze runs the classification decision tree for one envelope. It is
// total: any internal failure comes back as a TypeError analysis with both
// routing flags off, never as a panic escaping this boundary.
func (s *analyzerService) Analyze(ctx context.Context, envelope domainMessage.InboundEnvelope) (analysis domainMessage.Analysis) {
	defer func() {
		if r := recover(); r != nil {
			logrus.Errorf("[ANALYZER] recovered while analyzing %s: %v", envelope.ID, r)
			analysis = domainMessage.Analysis{
				MessageID:   envelope.ID,
				Type:        domainMessage.TypeError,
				Description: "Error interno durante el análisis",
			}
		}
	}()

	analysis = domainMessage.Analysis{MessageID: envelope.ID}

	switch envelope.Source {
	case domainMessage.SourceWebSession:
		// The web-session bridge runs on staff phones, so whatever arrives
		// through it is an external client writing to staff. No validation.
		analysis.Type = domainMessage.TypeClientQuery
		analysis.Description = "Cliente consultando sobre propiedades"
		analysis.ClientPhone = envelope.From
		analysis.AgentPhone = envelope.To
		analysis.RequiresIA = true
		analysis.Content = analyzeClientContent(envelope.Body)

	case domainMessage.SourceOfficialAPI:
		validation := s.validator.Validate(ctx, envelope.From)
		if !validation.IsValid {
			// Silently dropped: replying to unregistered numbers would make
			// the system a probing vector for spam.
			analysis.Type = domainMessage.TypeInvalidSender
			analysis.Description = "Usuario no autorizado"
			return analysis
		}

		analysis.Type = domainMessage.TypeStaffCommand
		analysis.Description = validation.Identity.Cargo + " enviando comando"
		analysis.UserPhone = envelope.From
		analysis.UserData = validation.Identity
		analysis.RequiresBackend = true
		analysis.Content = analyzeCommandContent(envelope.Body)

	default:
		analysis.Type = domainMessage.TypeUnknownSource
		analysis.Description = "Origen de mensaje no reconocido"
	}

	return analysis
}

// analyzeClientContent derives the conversational intent of a client query.
// Precedence: property request > greeting > explicit help > general.
func analyzeClientContent(body string) domainMessage.ContentAnalysis {
	lower := strings.ToLower(body)

	content := domainMessage.ContentAnalysis{
		HasGreeting:           containsAny(lower, greetingPhrases),
		HasPropertyRequest:    containsAny(lower, propertyKeywords),
		HasPriceRange:         priceRangePattern.MatchString(body),
		HasLocationPreference: containsAny(lower, knownLocations),
	}

	switch {
	case content.HasPropertyRequest:
		content.Intent = domainMessage.IntentPropertySearch
	case content.HasGreeting:
		content.Intent = domainMessage.IntentGreeting
	case containsAny(lower, helpKeywords):
		content.Intent = domainMessage.IntentHelpRequest
	default:
		content.Intent = domainMessage.IntentGeneralQuery
	}

	return content
}

// analyzeCommandContent detects which staff command the text carries, if any.
func analyzeCommandContent(body string) domainMessage.ContentAnalysis {
	upper := strings.ToUpper(body)

	content := domainMessage.ContentAnalysis{
		CommandType: domainCommand.TypeUnknown,
		IsCommand:   containsAny(strings.ToLower(body), imperativeVerbs),
	}

	for _, entry := range commandPhrases {
		for _, phrase := range entry.phrases {
			if strings.Contains(upper, phrase) {
				content.CommandType = entry.cmdType
				return content
			}
		}
	}

	return content
}

func containsAny(haystack string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(haystack, needle) {
			return true
		}
	}
	return false
}
