// Package cmd implements the lenah command-line interface.
package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/nhle/lenah/internal/credential"
	"github.com/nhle/lenah/internal/logging"
	"github.com/nhle/lenah/internal/mail"
	"github.com/nhle/lenah/internal/model"
)

var (
	cfgFile string
	envFile string
	dryRun  bool
	cfg     *model.AppConfig
	logger  *log.Logger
)

// Seams replaced in tests.
var (
	newStore   = credential.NewStore
	newGateway = func(c model.GmailConfig, l *log.Logger) mail.Gateway {
		return mail.NewGmailGateway(c, l)
	}
)

var rootCmd = &cobra.Command{
	Use:   "lenah",
	Short: "Conversational property-enquiry email assistant",
	Long: `LENAH collects your email address and the recipient's, drafts a
property enquiry with a language model, shows you a preview and sends it
through Gmail with you in CC.

Run without a subcommand to start the chat.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default ~/.config/lenah/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env",
		"dotenv file loaded before the config")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false,
		"record emails in memory instead of contacting Gmail")
}

// setup loads the environment, the config and a stderr logger.
func setup() error {
	if err := loadEnv(envFile); err != nil {
		return err
	}

	c, err := model.LoadConfig(configPath())
	if err != nil {
		return err
	}
	cfg = c

	l, err := logging.New(os.Stderr, cfg.Log)
	if err != nil {
		return err
	}
	logger = l
	return nil
}

// loadEnv reads a dotenv file without overriding variables already set.
// A missing file is not an error.
func loadEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// openGateway returns the Gmail gateway, or an in-memory recorder when
// --dry-run is set.
func openGateway(l *log.Logger) mail.Gateway {
	if dryRun {
		l.Warn("dry run: emails are recorded, not delivered")
		return mail.NewMockGateway()
	}
	return newGateway(cfg.Gmail, l)
}

func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return model.DefaultConfigPath()
}
