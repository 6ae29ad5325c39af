package rest

import (
	domainHealth "github.com/AxelF0/whatsapp-system/domains/health"
	"github.com/AxelF0/whatsapp-system/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

type Health struct {
	Service domainHealth.IHealthUsecase
}

func InitRestHealth(app fiber.Router, service domainHealth.IHealthUsecase) Health {
	rest := Health{Service: service}
	app.Get("/api/health", rest.Status)
	app.Get("/api/health/modules", rest.Modules)
	app.Post("/api/health/check-all", rest.CheckAll)

	return rest
}

// Modules expone el último estado conocido de cada módulo sin disparar
// nuevos pings.
func (handler *Health) Modules(c *fiber.Ctx) error {
	summary := handler.Service.Status(c.UserContext())

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Estado de los módulos registrados",
		Results: summary.Modules,
	})
}

func (handler *Health) Status(c *fiber.Ctx) error {
	summary := handler.Service.Status(c.UserContext())

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Estado del servicio",
		Results: summary,
	})
}

// CheckAll fuerza un ping inmediato a todos los módulos registrados.
func (handler *Health) CheckAll(c *fiber.Ctx) error {
	records := handler.Service.CheckAll(c.UserContext())

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Chequeo de módulos ejecutado",
		Results: records,
	})
}
