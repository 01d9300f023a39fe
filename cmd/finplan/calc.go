package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cloud-ru/finplan-go/internal/config"
	"github.com/cloud-ru/finplan-go/internal/export"
	"github.com/cloud-ru/finplan-go/internal/logging"
	"github.com/cloud-ru/finplan-go/internal/tools"
	"github.com/cloud-ru/finplan-go/internal/tracing"
)

func newRegistry() (*tools.Registry, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	return tools.NewRegistry(cfg, tracing.Noop(), logging.New(cfg.LogLevel, "text", os.Stderr)), nil
}

func calcCmd() *cobra.Command {
	var (
		paramsFile string
		exportPath string
		format     string
	)

	cmd := &cobra.Command{
		Use:   "calc <tool>",
		Short: "Run one calculation with JSON parameters",
		Long: `Reads tool parameters as a JSON object from --file (or stdin when the
file is "-") and prints the result as JSON. With --export the schedule or
growth series is also written to a spreadsheet.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := newRegistry()
			if err != nil {
				return err
			}

			params, err := readParams(cmd.InOrStdin(), paramsFile)
			if err != nil {
				return err
			}

			result, err := registry.Call(cmd.Context(), args[0], params)
			if err != nil {
				return err
			}

			if exportPath != "" {
				if err := writeExport(exportPath, format, result); err != nil {
					return err
				}
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}

	cmd.Flags().StringVarP(&paramsFile, "file", "f", "-", "JSON file with tool parameters (- for stdin)")
	cmd.Flags().StringVar(&exportPath, "export", "", "Write schedule or series to this file")
	cmd.Flags().StringVar(&format, "format", "xlsx", "Export format (xlsx, csv)")
	return cmd
}

func readParams(stdin io.Reader, path string) (map[string]interface{}, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open params: %w", err)
		}
		defer f.Close()
		r = f
	}

	params := map[string]interface{}{}
	if err := json.NewDecoder(r).Decode(&params); err != nil {
		return nil, fmt.Errorf("decode params: %w", err)
	}
	return params, nil
}

func writeExport(path, format string, result interface{}) error {
	f, err := export.ParseFormat(format)
	if err != nil {
		return err
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	if err := export.Write(out, f, result); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func toolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List available calculation tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := newRegistry()
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TOOL\tKIND\tDESCRIPTION")
			for _, t := range registry.List() {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", t.Name, t.Kind, t.Description)
			}
			return tw.Flush()
		},
	}
}
