package cmd

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nhle/lenah/internal/app"
	"github.com/nhle/lenah/internal/conversation"
	"github.com/nhle/lenah/internal/logging"
	"github.com/nhle/lenah/internal/model"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start the enquiry chat (default)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd)
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

// runChat starts the TUI. Logs go to the log file while it runs.
func runChat(cmd *cobra.Command) error {
	fileLogger, closer, err := logging.NewFile(cfg.Log)
	if err != nil {
		return err
	}
	defer closer.Close()

	gen, notice := buildGenerator(cfg, newStore(), fileLogger)
	gw := openGateway(fileLogger)
	if dryRun {
		notice = strings.TrimSpace(notice + "\n\nDry run: confirmed emails are recorded, not delivered.")
	}
	machine := conversation.New(gen, gw, conversation.OptionsFromConfig(cfg), fileLogger)

	sess := model.NewSession()
	fileLogger.Info("chat started", "session", sess.ID, "generator", gen.Name(), "mode", cfg.Gmail.Mode)

	root := app.New(machine, sess, app.Options{
		Display:       cfg.Display,
		MarkdownStyle: "auto",
		Notice:        notice,
	})

	p := tea.NewProgram(root, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running chat: %w", err)
	}

	fileLogger.Info("chat ended", "session", sess.ID)
	return nil
}
