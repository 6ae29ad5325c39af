package rest

import (
	"io"
	"net/http"

	"github.com/AxelF0/whatsapp-system/infrastructure/gateway"
	"github.com/AxelF0/whatsapp-system/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type Forward struct {
	Connector *gateway.Connector
}

func InitRestForward(app fiber.Router, connector *gateway.Connector) Forward {
	rest := Forward{Connector: connector}
	app.All("/api/forward/:module/*", rest.Relay)

	return rest
}

// Relay reenvía la petición tal cual al módulo registrado, conservando
// método, cuerpo y ruta. El conector rechaza módulos desconocidos o
// marcados como no disponibles.
func (handler *Forward) Relay(c *fiber.Ctx) error {
	name := c.Params("module")
	path := "/" + c.Params("*")
	if query := string(c.Request().URI().QueryString()); query != "" {
		path += "?" + query
	}

	header := http.Header{}
	if contentType := c.Get(fiber.HeaderContentType); contentType != "" {
		header.Set(fiber.HeaderContentType, contentType)
	}

	resp, err := handler.Connector.Forward(c.UserContext(), name, c.Method(), path, c.Body(), header)
	utils.PanicIfNeeded(err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	utils.PanicIfNeeded(err)

	logrus.Debugf("[GATEWAY] reenvío a %s%s respondió %d", name, path, resp.StatusCode)

	if contentType := resp.Header.Get(fiber.HeaderContentType); contentType != "" {
		c.Set(fiber.HeaderContentType, contentType)
	}
	return c.Status(resp.StatusCode).Send(body)
}
