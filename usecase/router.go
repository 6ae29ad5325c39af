package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/AxelF0/whatsapp-system/config"
	domainCommand "github.com/AxelF0/whatsapp-system/domains/command"
	domainIdentity "github.com/AxelF0/whatsapp-system/domains/identity"
	domainMessage "github.com/AxelF0/whatsapp-system/domains/message"
	domainRouting "github.com/AxelF0/whatsapp-system/domains/routing"
	"github.com/AxelF0/whatsapp-system/integrations/backend"
	"github.com/AxelF0/whatsapp-system/integrations/database"
	"github.com/AxelF0/whatsapp-system/integrations/ia"
	pkgError "github.com/AxelF0/whatsapp-system/pkg/error"
	"github.com/AxelF0/whatsapp-system/validations"
	"github.com/sirupsen/logrus"
)

// Canned replies. Clients get apologies, staff gets operational detail.
const (
	clientApologyText = "Disculpa, tengo problemas técnicos en este momento. Un agente te contactará pronto. ¡Gracias por tu paciencia!"

	backendUnavailableText = "⚠️ El sistema está temporalmente no disponible. Por favor intenta de nuevo en unos minutos."

	processingErrorText = "❌ Error procesando tu solicitud. Verifica el formato del comando o escribe AYUDA."

	unknownCommandText = "❓ *Comando no reconocido*\n\nEscribe *AYUDA* para ver los comandos disponibles."
)

const (
	dedupeWindow     = 10 * time.Second
	dedupeSweepEvery = 2 * time.Minute
	dedupeKeyBodyLen = 50
)

// ClientDirectory is the slice of the data module the router needs for the
// client path.
type ClientDirectory interface {
	UpsertClient(ctx context.Context, record database.ClientRecord) error
	ConversationHistory(ctx context.Context, clientPhone, agentPhone string) (*database.Conversation, error)
	AgentInfo(ctx context.Context, phone string) (*domainIdentity.Identity, error)
}

// AIGateway answers client property queries.
type AIGateway interface {
	Query(ctx context.Context, request ia.QueryRequest) (ia.QueryResponse, error)
}

// BackendGateway executes structured staff commands.
type BackendGateway interface {
	Execute(ctx context.Context, request backend.CommandRequest) (backend.CommandResult, error)
}

// ReplySender delivers outbound replies through the responses module.
type ReplySender interface {
	SendSystem(ctx context.Context, reply domainMessage.Reply) error
	SendToClient(ctx context.Context, reply domainMessage.Reply) error
}

type routerService struct {
	analyzer    domainMessage.IAnalyzerUsecase
	parser      domainCommand.IParserUsecase
	permissions domainCommand.IPermissionUsecase
	directory   ClientDirectory
	ai          AIGateway
	backend     BackendGateway
	sender      ReplySender
	timeouts    config.TimeoutsConfig

	seenMu    sync.Mutex
	seen      map[string]time.Time
	lastSweep time.Time
}

func NewRouterService(
	analyzer domainMessage.IAnalyzerUsecase,
	parser domainCommand.IParserUsecase,
	permissions domainCommand.IPermissionUsecase,
	directory ClientDirectory,
	ai AIGateway,
	backendGw BackendGateway,
	sender ReplySender,
	timeouts config.TimeoutsConfig,
) domainRouting.IRoutingUsecase {
	return &routerService{
		analyzer:    analyzer,
		parser:      parser,
		permissions: permissions,
		directory:   directory,
		ai:          ai,
		backend:     backendGw,
		sender:      sender,
		timeouts:    timeouts,
		seen:        make(map[string]time.Time),
		lastSweep:   time.Now(),
	}
}

// Route takes one envelope through classification and dispatch. Collaborator
// failures degrade to canned replies, never to a returned error; the only
// error is a ValidationError for malformed envelopes, raised before any
// collaborator is touched.
func (s *routerService) Route(ctx context.Context, envelope domainMessage.InboundEnvelope) (domainRouting.Outcome, error) {
	if err := validations.ValidateInboundEnvelope(ctx, envelope); err != nil {
		return domainRouting.Outcome{
			Action: domainRouting.ActionRejected,
			Error:  err.Error(),
		}, err
	}

	if s.isDuplicate(envelope) {
		logrus.Debugf("[ROUTER] duplicado ignorado de %s", envelope.From)
		return domainRouting.Outcome{Action: domainRouting.ActionDuplicateSkipped}, nil
	}

	analysis := s.analyzer.Analyze(ctx, envelope)
	logrus.Infof("[ROUTER] mensaje %s clasificado como %s", envelope.ID, analysis.Type)

	switch analysis.Type {
	case domainMessage.TypeClientQuery:
		return s.routeClientQuery(ctx, envelope, analysis), nil

	case domainMessage.TypeStaffCommand:
		return s.routeStaffCommand(ctx, envelope, analysis), nil

	case domainMessage.TypeInvalidSender:
		// Ninguna respuesta: contestar revelaría que el número existe.
		return domainRouting.Outcome{
			Action:   domainRouting.ActionDroppedInvalid,
			Analysis: analysis,
		}, nil

	default:
		logrus.Warnf("[ROUTER] mensaje %s ignorado: %s", envelope.ID, analysis.Description)
		return domainRouting.Outcome{
			Action:   domainRouting.ActionIgnoredUnknown,
			Analysis: analysis,
		}, nil
	}
}

// routeClientQuery forwards a client question to the IA module with as much
// context as the data module can provide. Context gathering is best effort,
// the query itself is not.
func (s *routerService) routeClientQuery(ctx context.Context, envelope domainMessage.InboundEnvelope, analysis domainMessage.Analysis) domainRouting.Outcome {
	record := database.ClientRecord{
		Telefono:     analysis.ClientPhone,
		Preferencias: string(analysis.Content.Intent),
		Estado:       1,
	}
	if err := s.directory.UpsertClient(ctx, record); err != nil {
		logrus.Warnf("[ROUTER] no se pudo registrar cliente %s: %v", analysis.ClientPhone, err)
	}

	request := ia.QueryRequest{
		Message: ia.QueryMessage{
			ID:        envelope.ID,
			From:      envelope.From,
			To:        envelope.To,
			Body:      envelope.Body,
			Timestamp: envelope.Timestamp,
		},
	}
	request.Context.Client.Phone = analysis.ClientPhone
	request.Context.Client.ConversationHistory = s.historyLines(ctx, analysis.ClientPhone, analysis.AgentPhone)
	request.Context.Agent.Phone = analysis.AgentPhone
	request.Context.MessageAnalysis = analysis.Content

	if agent, err := s.directory.AgentInfo(ctx, analysis.AgentPhone); err == nil && agent != nil {
		request.Context.Agent.Name = agent.Nombre
		request.Context.Agent.Role = agent.Role()
	}

	iaCtx, cancel := context.WithTimeout(ctx, s.timeouts.IA)
	defer cancel()

	answer, err := s.ai.Query(iaCtx, request)
	if err != nil {
		logrus.Errorf("[ROUTER] consulta IA falló para %s: %v", envelope.ID, err)
		return s.sendClientFallback(ctx, analysis)
	}

	reply := domainMessage.Reply{
		To:            analysis.ClientPhone,
		AgentPhone:    analysis.AgentPhone,
		Message:       answer.Response.Message,
		RequiresFiles: answer.Response.RequiresFiles,
	}
	if err := s.sender.SendToClient(ctx, reply); err != nil {
		logrus.Errorf("[ROUTER] no se pudo responder al cliente %s: %v", analysis.ClientPhone, err)
		return domainRouting.Outcome{
			Action:   domainRouting.ActionFailedToRespond,
			Analysis: analysis,
			Error:    err.Error(),
		}
	}

	return domainRouting.Outcome{
		Action:    domainRouting.ActionSentToIA,
		Processed: true,
		Analysis:  analysis,
		Reply:     &reply,
	}
}

func (s *routerService) sendClientFallback(ctx context.Context, analysis domainMessage.Analysis) domainRouting.Outcome {
	reply := domainMessage.Reply{
		To:                     analysis.ClientPhone,
		AgentPhone:             analysis.AgentPhone,
		Message:                clientApologyText,
		RequiresAgentAttention: true,
	}
	if err := s.sender.SendToClient(ctx, reply); err != nil {
		return domainRouting.Outcome{
			Action:   domainRouting.ActionFailedToRespond,
			Analysis: analysis,
			Error:    err.Error(),
		}
	}
	return domainRouting.Outcome{
		Action:   domainRouting.ActionErrorReplySent,
		Analysis: analysis,
		Reply:    &reply,
	}
}

// routeStaffCommand enforces permissions and only then lets the backend see
// the command.
func (s *routerService) routeStaffCommand(ctx context.Context, envelope domainMessage.InboundEnvelope, analysis domainMessage.Analysis) domainRouting.Outcome {
	user := analysis.UserData
	commandType := analysis.Content.CommandType

	auth := s.permissions.Authorize(user.Role(), commandType)
	if !auth.Allowed {
		text := unknownCommandText
		if !auth.DeniedUnknown {
			text = fmt.Sprintf("🚫 *Acceso Denegado*\n\n%s\n\n💡 Contacta a tu supervisor si necesitas estos permisos.", auth.Reason)
		}
		logrus.Warnf("[ROUTER] comando %s denegado para %s (%s)", commandType, user.Telefono, user.Cargo)
		return s.sendStaffReply(ctx, analysis, text, domainRouting.ActionPermissionDenied, true)
	}

	command := domainCommand.Command{
		Type:            commandType,
		OriginalMessage: envelope.Body,
		Parameters:      s.parser.ExtractParameters(envelope.Body, commandType),
	}

	backendCtx, cancel := context.WithTimeout(ctx, s.timeouts.Backend)
	defer cancel()

	result, err := s.backend.Execute(backendCtx, backend.CommandRequest{
		Command: command,
		User: backend.CommandUser{
			Phone: analysis.UserPhone,
			Name:  user.Nombre,
			Role:  user.Role(),
			ID:    user.ID,
		},
	})
	if err != nil {
		logrus.Errorf("[ROUTER] backend falló para %s: %v", envelope.ID, err)
		text := processingErrorText
		var collabErr pkgError.CollaboratorError
		if errors.As(err, &collabErr) {
			text = backendUnavailableText
		}
		return s.sendStaffReply(ctx, analysis, text, domainRouting.ActionErrorReplySent, false)
	}

	text := result.Message
	if !result.Success {
		if result.Error != "" {
			text = "❌ " + result.Error
		} else {
			text = processingErrorText
		}
	}
	return s.sendStaffReply(ctx, analysis, text, domainRouting.ActionBackendProcessed, result.Success)
}

func (s *routerService) sendStaffReply(ctx context.Context, analysis domainMessage.Analysis, text string, action domainRouting.Action, processed bool) domainRouting.Outcome {
	reply := domainMessage.Reply{
		To:      analysis.UserPhone,
		Message: text,
	}
	if err := s.sender.SendSystem(ctx, reply); err != nil {
		logrus.Errorf("[ROUTER] no se pudo notificar a %s: %v", analysis.UserPhone, err)
		return domainRouting.Outcome{
			Action:   domainRouting.ActionFailedToRespond,
			Analysis: analysis,
			Error:    err.Error(),
		}
	}
	return domainRouting.Outcome{
		Action:    action,
		Processed: processed,
		Analysis:  analysis,
		Reply:     &reply,
	}
}

func (s *routerService) historyLines(ctx context.Context, clientPhone, agentPhone string) []string {
	conversation, err := s.directory.ConversationHistory(ctx, clientPhone, agentPhone)
	if err != nil || conversation == nil {
		return nil
	}
	lines := make([]string, 0, len(conversation.Messages))
	for _, msg := range conversation.Messages {
		lines = append(lines, msg.From+": "+msg.Body)
	}
	return lines
}

// isDuplicate records the envelope and reports whether an identical one was
// seen inside the suppression window. WhatsApp bridges redeliver on flaky
// connections, so identical (from, to, body prefix) inside the window is
// treated as the same message.
func (s *routerService) isDuplicate(envelope domainMessage.InboundEnvelope) bool {
	body := envelope.Body
	if len(body) > dedupeKeyBodyLen {
		body = body[:dedupeKeyBodyLen]
	}
	key := envelope.From + "|" + envelope.To + "|" + body

	now := time.Now()

	s.seenMu.Lock()
	defer s.seenMu.Unlock()

	if now.Sub(s.lastSweep) > dedupeSweepEvery {
		for k, seenAt := range s.seen {
			if now.Sub(seenAt) > dedupeWindow {
				delete(s.seen, k)
			}
		}
		s.lastSweep = now
	}

	if seenAt, ok := s.seen[key]; ok && now.Sub(seenAt) <= dedupeWindow {
		return true
	}
	s.seen[key] = now
	return false
}
