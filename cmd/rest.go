package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AxelF0/whatsapp-system/config"
	"github.com/AxelF0/whatsapp-system/infrastructure/gateway"
	"github.com/AxelF0/whatsapp-system/integrations/backend"
	"github.com/AxelF0/whatsapp-system/integrations/database"
	"github.com/AxelF0/whatsapp-system/integrations/ia"
	"github.com/AxelF0/whatsapp-system/integrations/responses"
	"github.com/AxelF0/whatsapp-system/pkg/msgworker"
	"github.com/AxelF0/whatsapp-system/ui/rest"
	"github.com/AxelF0/whatsapp-system/ui/rest/middleware"
	"github.com/AxelF0/whatsapp-system/usecase"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var restCmd = &cobra.Command{
	Use:   "rest",
	Short: "Levanta el gateway HTTP de procesamiento de mensajes",
	Run:   restServer,
}

func init() {
	rootCmd.AddCommand(restCmd)
}

func restServer(_ *cobra.Command, _ []string) {
	cfg := config.Global

	// Clientes hacia los módulos colaboradores.
	databaseClient := database.NewClient(cfg.Services.DatabaseURL, cfg.Timeouts.Identity)
	backendClient := backend.NewClient(cfg.Services.BackendURL, cfg.Timeouts.Backend)
	iaClient := ia.NewClient(cfg.Services.IAURL, cfg.Timeouts.IA)
	responsesClient := responses.NewClient(cfg.Services.ResponsesURL, cfg.Timeouts.Gateway,
		cfg.Timeouts.SendRetries, cfg.Timeouts.RetryBackoff)

	// Servicios.
	validatorService := usecase.NewIdentityService(databaseClient, cfg.Phone, cfg.Cache, cfg.Timeouts.Identity)
	analyzerService := usecase.NewAnalyzerService(validatorService)
	parserService := usecase.NewParserService()
	permissionService := usecase.NewPermissionService()
	routerService := usecase.NewRouterService(
		analyzerService,
		parserService,
		permissionService,
		databaseClient,
		iaClient,
		backendClient,
		responsesClient,
		cfg.Timeouts,
	)

	// Registro de módulos y monitor de salud.
	connector := gateway.NewConnector(cfg.Timeouts.Gateway)
	connector.Register("database", cfg.Services.DatabaseURL, databaseClient)
	connector.Register("backend", cfg.Services.BackendURL, backendClient)
	connector.Register("ia", cfg.Services.IAURL, iaClient)
	connector.Register("responses", cfg.Services.ResponsesURL, responsesClient)

	monitorCtx, cancelMonitor := context.WithCancel(context.Background())
	monitor := gateway.NewMonitor(connector, 30*time.Second)
	monitor.Start(monitorCtx)

	healthService := usecase.NewHealthService("whatsapp-system", cfg.App.Version, connector)

	// Pool de procesamiento fuera del ciclo HTTP.
	poolCtx, cancelPool := context.WithCancel(context.Background())
	pool := msgworker.NewPool(cfg.WorkerPool.Size, cfg.WorkerPool.QueueSize)
	pool.Start(poolCtx)

	app := fiber.New(fiber.Config{
		Network:      "tcp",
		AppName:      "WhatsApp System Gateway",
		ServerHeader: "Hidden",
	})

	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Source, X-Request-ID",
	}))
	app.Use(middleware.Recovery())
	if cfg.App.Debug {
		app.Use(logger.New())
	}

	rest.InitRestProcess(app, routerService, pool)
	rest.InitRestHealth(app, healthService)
	rest.InitRestForward(app, connector)

	// Apagado ordenado: primero dejar de aceptar HTTP, después drenar el
	// pool y recién ahí soltar los auxiliares.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logrus.Info("[REST] señal de terminación recibida, apagando...")
		if err := app.Shutdown(); err != nil {
			logrus.Errorf("[REST] error durante el apagado de Fiber: %v", err)
		}

		pool.Stop()
		cancelPool()
		monitor.Stop()
		cancelMonitor()
		validatorService.Close()
	}()

	if err := app.Listen(":" + cfg.App.Port); err != nil {
		logrus.Fatalf("[REST] el servidor no pudo iniciar: %v", err)
	}
}
