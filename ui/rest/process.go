package rest

import (
	"context"

	"github.com/AxelF0/whatsapp-system/config"
	domainMessage "github.com/AxelF0/whatsapp-system/domains/message"
	domainRouting "github.com/AxelF0/whatsapp-system/domains/routing"
	"github.com/AxelF0/whatsapp-system/infrastructure/gateway"
	"github.com/AxelF0/whatsapp-system/pkg/msgworker"
	"github.com/AxelF0/whatsapp-system/pkg/utils"
	"github.com/AxelF0/whatsapp-system/validations"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type Process struct {
	Service domainRouting.IRoutingUsecase
	Pool    *msgworker.Pool
}

func InitRestProcess(app fiber.Router, service domainRouting.IRoutingUsecase, pool *msgworker.Pool) Process {
	rest := Process{Service: service, Pool: pool}
	app.Post("/api/process/message", rest.ProcessMessage)
	app.Get("/webhook", rest.VerifyWebhook)
	app.Post("/webhook", rest.ReceiveWebhook)
	app.Get("/api/stats", rest.Stats)

	return rest
}

// ProcessMessage recibe un envelope ya armado (el puente de sesión web lo
// usa) y lo encola. La respuesta confirma el encolado, no el ruteo.
func (handler *Process) ProcessMessage(c *fiber.Ctx) error {
	var envelope domainMessage.InboundEnvelope
	err := c.BodyParser(&envelope)
	utils.PanicIfNeeded(err)

	envelope = gateway.NormalizeEnvelope(envelope)
	err = validations.ValidateInboundEnvelope(c.UserContext(), envelope)
	utils.PanicIfNeeded(err)

	if !handler.enqueue(envelope) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(utils.ResponseData{
			Status:  503,
			Code:    "QUEUE_FULL",
			Message: "Cola de procesamiento llena, intenta de nuevo",
		})
	}

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Mensaje encolado para procesamiento",
		Results: map[string]any{
			"messageId": envelope.ID,
			"source":    envelope.Source,
		},
	})
}

// VerifyWebhook responde el handshake de suscripción de la Business API.
func (handler *Process) VerifyWebhook(c *fiber.Ctx) error {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "subscribe" && token == config.Global.App.WebhookVerifyToken {
		return c.SendString(challenge)
	}

	logrus.Warn("[GATEWAY] verificación de webhook rechazada")
	return c.SendStatus(fiber.StatusForbidden)
}

// ReceiveWebhook acepta notificaciones de la Business API. Siempre responde
// 200 rápido: la API oficial reintenta ante cualquier otra cosa y eso solo
// duplica tráfico.
func (handler *Process) ReceiveWebhook(c *fiber.Ctx) error {
	var payload gateway.WebhookPayload
	if err := c.BodyParser(&payload); err != nil {
		logrus.Warnf("[GATEWAY] webhook ilegible: %v", err)
		return c.JSON(utils.ResponseData{Status: 200, Code: "IGNORED", Message: "Payload no reconocido"})
	}

	envelopes := gateway.DecodeWebhook(payload)
	enqueued := 0
	for _, envelope := range envelopes {
		if handler.enqueue(envelope) {
			enqueued++
		}
	}

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Webhook procesado",
		Results: map[string]any{
			"received": len(envelopes),
			"enqueued": enqueued,
		},
	})
}

func (handler *Process) Stats(c *fiber.Ctx) error {
	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Estadísticas del pool de workers",
		Results: handler.Pool.Stats(),
	})
}

func (handler *Process) enqueue(envelope domainMessage.InboundEnvelope) bool {
	env := envelope
	return handler.Pool.TryDispatch(msgworker.Job{
		SenderKey: env.From,
		MessageID: env.ID,
		Handler: func(ctx context.Context) error {
			outcome, err := handler.Service.Route(ctx, env)
			if err != nil {
				return err
			}
			logrus.Debugf("[GATEWAY] mensaje %s resuelto: %s", env.ID, outcome.Action)
			return nil
		},
	})
}
