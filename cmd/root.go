package cmd

import (
	"os"
	"time"

	"github.com/AxelF0/whatsapp-system/config"
	"github.com/AxelF0/whatsapp-system/pkg/utils"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "whatsapp-system",
	Short: "Enrutador de mensajes WhatsApp para la inmobiliaria",
	Long: `Servicio de ruteo de mensajes WhatsApp: clasifica lo entrante,
valida identidades del personal y despacha hacia los módulos de IA y backend.`,
}

func init() {
	utils.LoadEnv(".")

	time.Local = time.UTC

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	cobra.OnInitialize(initConfig)
}

func initConfig() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("configuración inválida: %v", err)
	}

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if cfg.App.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
