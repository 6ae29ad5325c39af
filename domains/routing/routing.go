package routing

import (
	"context"

	domainMessage "github.com/AxelF0/whatsapp-system/domains/message"
)

// Action names what the dispatcher ended up doing with an envelope. They feed
// logs and the gateway response, not control flow.
type Action string

const (
	ActionSentToIA         Action = "sent_to_ia"
	ActionBackendProcessed Action = "backend_processed"
	ActionPermissionDenied Action = "permission_denied"
	ActionDroppedInvalid   Action = "dropped_invalid_sender"
	ActionIgnoredUnknown   Action = "ignored_unknown_source"
	ActionErrorReplySent   Action = "error_response_sent"
	ActionFailedToRespond  Action = "failed_to_respond"
	ActionRejected         Action = "rejected_invalid_envelope"
	ActionDuplicateSkipped Action = "duplicate_skipped"
)

// Outcome is the result of routing one envelope end to end.
type Outcome struct {
	Action    Action                 `json:"action"`
	Processed bool                   `json:"processed"`
	Analysis  domainMessage.Analysis `json:"analysis"`
	Reply     *domainMessage.Reply   `json:"reply,omitempty"`
	Error     string                 `json:"error,omitempty"`
}

// IRoutingUsecase is the failure boundary of the pipeline: Route never
// returns an error for collaborator trouble, it degrades to a best-effort
// reply and reports what happened in the Outcome. The only error returned is
// a pre-classification ValidationError for malformed envelopes.
type IRoutingUsecase interface {
	Route(ctx context.Context, envelope domainMessage.InboundEnvelope) (Outcome, error)
}
