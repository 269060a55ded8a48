package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/stratos/coinsage/internal/market"
	"github.com/stratos/coinsage/internal/tools"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List available research tools",
	Long: `List the market research tools the assistant can call.

The agent chooses among these automatically while collecting evidence
for a question; you can also steer it by naming a tool in your question.

Examples:
  coinsage tools
  coinsage "use fear_greed for the last 14 days"`,
	Run: func(cmd *cobra.Command, args []string) {
		runTools()
	},
}

func runTools() {
	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#F7931A")).
		Bold(true)

	toolStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#F59E0B")).
		Bold(true)

	descStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#9CA3AF"))

	// Build the registry without touching the network; tool descriptions are
	// static and do not need a live assistant.
	registry := tools.NewRegistry(zap.NewNop())
	analyzer, err := market.NewAnalyzer(
		market.NewCoinGecko("", nil, nil),
		market.NewBinance("", nil, nil),
		market.NewFearGreed("", nil, nil),
		market.NewFutures("", market.NewBinance("", nil, nil), nil, nil),
		zap.NewNop(),
	)
	if err != nil {
		fmt.Println(lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).
			Render(fmt.Sprintf("Failed to assemble tools: %v", err)))
		return
	}
	defer analyzer.Close()
	analyzer.Register(registry)

	fmt.Println(headerStyle.Render("Available Tools"))
	fmt.Println()

	for _, line := range strings.Split(registry.Describe(), "\n") {
		name, desc, found := strings.Cut(strings.TrimPrefix(line, "- "), ": ")
		if !found {
			continue
		}
		fmt.Printf("  %s\n", toolStyle.Render(name))
		fmt.Printf("    %s\n\n", descStyle.Render(desc))
	}

	fmt.Println(descStyle.Render(fmt.Sprintf("  Total: %d tools available", registry.Len())))
	fmt.Println(descStyle.Render("  The memory tool is added when retrieval is enabled in config."))
}
