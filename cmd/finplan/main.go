// Package main собирает бинарник finplan: HTTP API поверх инструментов
// расчета и разовый запуск инструмента из командной строки.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const (
	Version = "1.0.0"
	appName = "finplan"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   appName,
		Short: "Personal finance calculators",
		Long: `finplan computes loan amortization schedules, mortgage breakdowns,
compound growth, retirement projections, savings goal pacing, budgets
and salary summaries.

Run "finplan serve" for the HTTP API or "finplan calc <tool>" for a single calculation.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(serveCmd(), calcCmd(), toolsCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
		},
	})

	return cmd
}
