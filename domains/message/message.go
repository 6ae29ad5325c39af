package message

import (
	"context"
	"time"

	domainCommand "github.com/AxelF0/whatsapp-system/domains/command"
	domainIdentity "github.com/AxelF0/whatsapp-system/domains/identity"
)

// Source identifies which transport delivered an envelope. The web-session
// bridge is staff-operated, so traffic arriving through it belongs to
// external clients writing to staff; the official API carries staff traffic.
type Source string

const (
	SourceWebSession  Source = "whatsapp-web"
	SourceOfficialAPI Source = "whatsapp-api"
)

// InboundEnvelope is one received message at the transport boundary. It is
// created at ingestion and immutable afterwards; the analyzer consumes it
// exactly once.
type InboundEnvelope struct {
	ID        string    `json:"messageId"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Body      string    `json:"body"`
	Type      string    `json:"type"`
	Source    Source    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
}

type AnalysisType string

const (
	TypeClientQuery   AnalysisType = "client_query"
	TypeStaffCommand  AnalysisType = "staff_command"
	TypeInvalidSender AnalysisType = "invalid_sender"
	TypeUnknownSource AnalysisType = "unknown_source"
	TypeError         AnalysisType = "error"
)

type Intent string

const (
	IntentPropertySearch Intent = "property_search"
	IntentGreeting       Intent = "greeting"
	IntentHelpRequest    Intent = "help_request"
	IntentGeneralQuery   Intent = "general_query"
)

// ContentAnalysis is the lightweight text analysis attached to an Analysis.
// Client queries fill the intent fields; staff commands fill the command
// fields. Both halves are cheap keyword/regexp checks, never NLP.
type ContentAnalysis struct {
	Intent                Intent `json:"intent,omitempty"`
	HasGreeting           bool   `json:"hasGreeting"`
	HasPropertyRequest    bool   `json:"hasPropertyRequest"`
	HasPriceRange         bool   `json:"hasPriceRange"`
	HasLocationPreference bool   `json:"hasLocationPreference"`

	CommandType domainCommand.Type `json:"commandType,omitempty"`
	IsCommand   bool               `json:"isCommand"`
}

// Analysis is the classifier verdict for one envelope. It lives only long
// enough for the router to decide; nothing persists it.
type Analysis struct {
	MessageID       string                   `json:"messageId"`
	Type            AnalysisType             `json:"type"`
	Description     string                   `json:"description,omitempty"`
	RequiresIA      bool                     `json:"requiresIA"`
	RequiresBackend bool                     `json:"requiresBackend"`
	ClientPhone     string                   `json:"clientPhone,omitempty"`
	AgentPhone      string                   `json:"agentPhone,omitempty"`
	UserPhone       string                   `json:"userPhone,omitempty"`
	UserData        *domainIdentity.Identity `json:"userData,omitempty"`
	Content         ContentAnalysis          `json:"contentAnalysis"`
}

// ReplyFile is an attachment the responses module should deliver alongside a
// reply (property photos, mostly).
type ReplyFile struct {
	URL     string `json:"url"`
	Caption string `json:"caption"`
	Type    string `json:"type"`
}

// Reply is the final outbound decision handed to the responses collaborator.
// RequiresAgentAttention marks fallback apologies so the agent console can
// surface the conversation for manual follow-up.
type Reply struct {
	To                     string      `json:"to"`
	AgentPhone             string      `json:"agentPhone,omitempty"`
	Message                string      `json:"message"`
	RequiresFiles          bool        `json:"requiresFiles"`
	RequiresAgentAttention bool        `json:"requiresAgentAttention,omitempty"`
	Files                  []ReplyFile `json:"files,omitempty"`
}

// IAnalyzerUsecase classifies envelopes. It never returns an error: any
// internal failure is reported as a TypeError analysis.
type IAnalyzerUsecase interface {
	Analyze(ctx context.Context, envelope InboundEnvelope) Analysis
}
