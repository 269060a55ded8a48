package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/stratos/coinsage/internal/assistant"
	"github.com/stratos/coinsage/internal/config"
	"github.com/stratos/coinsage/internal/ui"
)

var (
	configPath  string
	verbose     bool
	interactive bool
)

var rootCmd = &cobra.Command{
	Use:   "coinsage [question]",
	Short: "AI-powered crypto research assistant",
	Long: `
 ██████╗ ██████╗ ██╗███╗   ██╗███████╗ █████╗  ██████╗ ███████╗
██╔════╝██╔═══██╗██║████╗  ██║██╔════╝██╔══██╗██╔════╝ ██╔════╝
██║     ██║   ██║██║██╔██╗ ██║███████╗███████║██║  ███╗█████╗
██║     ██║   ██║██║██║╚██╗██║╚════██║██╔══██║██║   ██║██╔══╝
╚██████╗╚██████╔╝██║██║ ╚████║███████║██║  ██║╚██████╔╝███████╗
 ╚═════╝ ╚═════╝ ╚═╝╚═╝  ╚═══╝╚══════╝╚═╝  ╚═╝ ╚═════╝ ╚══════╝

  AI-powered crypto market research in your terminal.
  Live prices, technical indicators, sentiment, and futures data
  synthesized into an analysis report.

Usage:
  coinsage "BTC short-term outlook?"   Run a one-shot question
  coinsage --it                        Start interactive mode
  coinsage tools                       List research tools
  coinsage config                      View/edit configuration

Examples:
  coinsage "is ETH oversold on the 4h chart?"
  coinsage "current fear and greed index?"
  coinsage --it`,

	Run: func(cmd *cobra.Command, args []string) {
		if interactive {
			runInteractive()
			return
		}
		if len(args) > 0 {
			runOneShot(args)
			return
		}
		cmd.Help()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolVar(&interactive, "it", false, "Start interactive mode")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(toolsCmd)
	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(versionCmd)
}

func runInteractive() {
	asst := initAssistant()
	defer asst.Close()

	p := tea.NewProgram(ui.NewModel(asst), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		printError("UI failed", err)
		os.Exit(1)
	}
}

func runOneShot(args []string) {
	question := strings.Join(args, " ")
	asst := initAssistant()
	defer asst.Close()

	headerStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#F7931A")).Bold(true)
	fmt.Printf("%s %s\n\n", headerStyle.Render("Question:"), question)

	for chunk := range asst.RunStream(context.Background(), question) {
		fmt.Print(chunk)
	}
	fmt.Println()
}

// initAssistant loads config, checks LLM connectivity, and returns a ready
// assistant.
func initAssistant() *assistant.Assistant {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Printf("Warning: Could not load config: %v\n", err)
		cfg = config.DefaultConfig()
	}

	logger := createLogger()

	asst, err := assistant.New(cfg, logger)
	if err != nil {
		printError("Failed to initialize assistant", err)
		os.Exit(1)
	}

	// Check LLM connectivity.
	fmt.Print(lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B")).Render("Connecting to LLM... "))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := asst.Ping(ctx); err != nil {
		cancel()
		fmt.Println(lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Render("✗"))
		fmt.Println()
		printConnectionHelp(cfg)
		os.Exit(1)
	}
	cancel()
	fmt.Println(lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Render("✓"))
	fmt.Printf("Using model: %s\n", cfg.LLM.Model)

	return asst
}

func loadConfig() (*config.Config, error) {
	return config.Load(configPath)
}

func createLogger() *zap.Logger {
	if verbose {
		logger, _ := zap.NewDevelopment()
		return logger
	}
	logger, _ := zap.NewProduction()
	return logger
}

func printError(msg string, err error) {
	fmt.Println(lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).
		Render(fmt.Sprintf("Error: %s: %v", msg, err)))
}

func printConnectionHelp(cfg *config.Config) {
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))
	cmdStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#06B6D4"))
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))

	fmt.Println(errStyle.Render("Could not connect to LLM at " + cfg.LLM.Endpoint))
	fmt.Println()
	fmt.Println(helpStyle.Render("Make sure Ollama is running:"))
	fmt.Println(cmdStyle.Render("  ollama serve"))
	fmt.Println()
	fmt.Println(helpStyle.Render("And pull the required model:"))
	fmt.Println(cmdStyle.Render("  ollama pull " + cfg.LLM.Model))
	fmt.Println()
	fmt.Println(helpStyle.Render("Or configure a different endpoint:"))
	fmt.Println(cmdStyle.Render("  Edit config.yaml and set llm.endpoint"))
}
