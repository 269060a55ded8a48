package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/stratos/coinsage/internal/config"
	"github.com/stratos/coinsage/internal/memory"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Show or reset the anonymous session",
	Long: `Show the anonymous session ID used for personalization, or reset it.

The session ID keys your preference profile and analysis memory. Resetting
it makes the next run start as a fresh user; stored profiles for old IDs
are kept on disk but no longer used.`,
	Run: runSession,
}

var sessionReset bool

func init() {
	sessionCmd.Flags().BoolVar(&sessionReset, "reset", false, "Discard the persisted session ID")
}

func runSession(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig()
	if err != nil {
		cfg = config.DefaultConfig()
	}

	if sessionReset {
		if err := memory.ResetSession(cfg.Memory.Dir); err != nil {
			fmt.Println(lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).
				Render(fmt.Sprintf("Failed to reset session: %v", err)))
			return
		}
		fmt.Println(lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).
			Render("Session reset. A new ID will be created on the next run."))
		return
	}

	id := memory.AnonymousUserID(cfg.Memory.PersistSession, cfg.Memory.Dir)
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#06B6D4"))
	fmt.Printf("%s %s\n", labelStyle.Render("Session ID:"), valueStyle.Render(id))
	if !cfg.Memory.PersistSession {
		fmt.Println(labelStyle.Render("Session persistence is disabled; this ID is ephemeral."))
	}
}
