package gateway

import (
	"strconv"
	"strings"
	"time"

	domainMessage "github.com/AxelF0/whatsapp-system/domains/message"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// WebhookPayload mirrors the WhatsApp Business webhook envelope down to the
// parts this service reads. Everything else in the payload is ignored.
type WebhookPayload struct {
	Object string `json:"object"`
	Entry  []struct {
		ID      string `json:"id"`
		Changes []struct {
			Field string       `json:"field"`
			Value WebhookValue `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

type WebhookValue struct {
	MessagingProduct string `json:"messaging_product"`
	Metadata         struct {
		DisplayPhoneNumber string `json:"display_phone_number"`
		PhoneNumberID      string `json:"phone_number_id"`
	} `json:"metadata"`
	Messages []WebhookMessage `json:"messages"`
}

type WebhookMessage struct {
	ID        string `json:"id"`
	From      string `json:"from"`
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"`
	Text      *struct {
		Body string `json:"body"`
	} `json:"text,omitempty"`
	Image *struct {
		Caption string `json:"caption"`
	} `json:"image,omitempty"`
	Video *struct {
		Caption string `json:"caption"`
	} `json:"video,omitempty"`
	Audio *struct {
		Voice bool `json:"voice"`
	} `json:"audio,omitempty"`
	Document *struct {
		Filename string `json:"filename"`
		Caption  string `json:"caption"`
	} `json:"document,omitempty"`
	Interactive *struct {
		Type        string `json:"type"`
		ButtonReply *struct {
			Title string `json:"title"`
		} `json:"button_reply,omitempty"`
		ListReply *struct {
			Title string `json:"title"`
		} `json:"list_reply,omitempty"`
	} `json:"interactive,omitempty"`
	Button *struct {
		Text string `json:"text"`
	} `json:"button,omitempty"`
}

// DecodeWebhook flattens a webhook payload into inbound envelopes, one per
// carried message. Status-only notifications produce an empty slice.
func DecodeWebhook(payload WebhookPayload) []domainMessage.InboundEnvelope {
	var envelopes []domainMessage.InboundEnvelope

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				envelopes = append(envelopes, decodeMessage(change.Value, msg))
			}
		}
	}

	return envelopes
}

func decodeMessage(value WebhookValue, msg WebhookMessage) domainMessage.InboundEnvelope {
	envelope := domainMessage.InboundEnvelope{
		ID:        msg.ID,
		From:      msg.From,
		To:        value.Metadata.DisplayPhoneNumber,
		Body:      extractBody(msg),
		Type:      mapType(msg.Type),
		Source:    domainMessage.SourceOfficialAPI,
		Timestamp: parseTimestamp(msg.Timestamp),
	}
	if envelope.ID == "" {
		envelope.ID = uuid.NewString()
	}
	return envelope
}

// extractBody produces a text rendering for every message type so the
// pipeline downstream only ever deals with strings.
func extractBody(msg WebhookMessage) string {
	switch msg.Type {
	case "text":
		if msg.Text == nil {
			return ""
		}
		return msg.Text.Body
	case "image":
		if msg.Image != nil && msg.Image.Caption != "" {
			return "[IMAGEN] " + msg.Image.Caption
		}
		return "[IMAGEN]"
	case "video":
		if msg.Video != nil && msg.Video.Caption != "" {
			return "[VIDEO] " + msg.Video.Caption
		}
		return "[VIDEO]"
	case "audio":
		return "[AUDIO]"
	case "document":
		if msg.Document != nil && msg.Document.Filename != "" {
			return "[DOCUMENTO] " + msg.Document.Filename
		}
		return "[DOCUMENTO]"
	case "interactive":
		if msg.Interactive != nil {
			if msg.Interactive.ButtonReply != nil {
				return msg.Interactive.ButtonReply.Title
			}
			if msg.Interactive.ListReply != nil {
				return msg.Interactive.ListReply.Title
			}
		}
	case "button":
		if msg.Button != nil {
			return msg.Button.Text
		}
	}
	if msg.Type == "" {
		return ""
	}
	return "[" + strings.ToUpper(msg.Type) + "]"
}

// mapType collapses the webhook message types onto the five the pipeline
// understands.
func mapType(webhookType string) string {
	switch webhookType {
	case "text", "image", "video", "audio", "document":
		return webhookType
	case "sticker":
		return "image"
	case "contacts":
		return "document"
	default:
		// interactive, button, reaction, system y demás llegan como texto.
		return "text"
	}
}

func parseTimestamp(raw string) time.Time {
	if raw == "" {
		return time.Now()
	}
	seconds, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		logrus.Debugf("[GATEWAY] timestamp de webhook ilegible: %q", raw)
		return time.Now()
	}
	return time.Unix(seconds, 0)
}

// NormalizeEnvelope fills the defaults for envelopes submitted directly to
// the processing endpoint instead of through the webhook.
func NormalizeEnvelope(envelope domainMessage.InboundEnvelope) domainMessage.InboundEnvelope {
	if envelope.ID == "" {
		envelope.ID = uuid.NewString()
	}
	if envelope.Type == "" {
		envelope.Type = "text"
	}
	if envelope.Source == "" {
		envelope.Source = domainMessage.SourceWebSession
	}
	if envelope.Timestamp.IsZero() {
		envelope.Timestamp = time.Now()
	}
	return envelope
}
