// Package main provides rmsctl, the command-line front end of the RMS
// offline dashboard.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"rms-dashboard-go/internal/actionable"
	"rms-dashboard-go/internal/chart"
	"rms-dashboard-go/internal/navigation"
	"rms-dashboard-go/internal/pipeline"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "rmsctl",
		Short:        "Analyze RMS offline-site spreadsheets",
		SilenceUsage: true,
	}
	root.AddCommand(newAnalyzeCmd(), newChartsCmd(), newURLCmd())
	return root
}

func newAnalyzeCmd() *cobra.Command {
	var region string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "analyze [file.xlsx]",
		Short: "Print domain totals, aging and reason histograms",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("file not found: %s", args[0])
			}
			res, _, err := pipeline.LoadAndAnalyze(filepath.Base(args[0]), data, region)
			if err != nil {
				return fmt.Errorf("analysis failed: %w", err)
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(actionable.Generate(res))
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderReport(res))
			return nil
		},
	}
	cmd.Flags().StringVarP(&region, "region", "r", "", "Scope the analysis to one region")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the dashboard model as JSON")
	return cmd
}

func newChartsCmd() *cobra.Command {
	var region, outDir string
	var width, height int

	cmd := &cobra.Command{
		Use:   "charts [file.xlsx]",
		Short: "Render the dashboard charts as PNG files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("file not found: %s", args[0])
			}
			res, _, err := pipeline.LoadAndAnalyze(filepath.Base(args[0]), data, region)
			if err != nil {
				return fmt.Errorf("analysis failed: %w", err)
			}
			if err := os.MkdirAll(outDir, 0755); err != nil {
				return err
			}

			r := chart.PNGRenderer{Width: width, Height: height}
			for _, m := range actionable.Generate(res).Charts {
				img, err := chart.Bytes(r, m)
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "skipping %s: %v\n", m.ID, err)
					continue
				}
				name := filepath.Join(outDir, m.ID+".png")
				if err := os.WriteFile(name, img, 0644); err != nil {
					return fmt.Errorf("failed to write chart: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&region, "region", "r", "", "Scope the charts to one region")
	cmd.Flags().StringVarP(&outDir, "out", "o", "charts", "Output directory")
	cmd.Flags().IntVar(&width, "width", 1024, "Image width in pixels")
	cmd.Flags().IntVar(&height, "height", 640, "Image height in pixels")
	return cmd
}

func newURLCmd() *cobra.Command {
	var region, page string

	builder := func() navigation.Builder {
		b := navigation.NewBuilder(region)
		if page != "" {
			b.Page = page
		}
		return b
	}
	domain := func(s string) (navigation.DomainKey, error) {
		d := navigation.DomainKey(s)
		switch d {
		case navigation.DomainEnfra, navigation.DomainSmsLd, navigation.DomainAll, navigation.DomainTotal:
			return d, nil
		}
		return "", fmt.Errorf("invalid domain: %s (must be enfra, smsld, all or total)", s)
	}
	emit := func(cmd *cobra.Command, q string) {
		fmt.Fprintln(cmd.OutOrStdout(), builder().URL(q))
	}

	cmd := &cobra.Command{
		Use:   "url",
		Short: "Print the table-view URL a dashboard click opens",
	}
	cmd.PersistentFlags().StringVarP(&region, "region", "r", "", "Active region of the page")
	cmd.PersistentFlags().StringVar(&page, "page", "", "Table-view page (default "+navigation.DefaultPage+")")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "card [domain]",
			Short: "Stat card or pie slice",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				d, err := domain(args[0])
				if err != nil {
					return err
				}
				emit(cmd, builder().Card(d))
				return nil
			},
		},
		&cobra.Command{
			Use:   "aging [label] [domain]",
			Short: "Bar of an aging chart",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				d, err := domain(args[1])
				if err != nil {
					return err
				}
				emit(cmd, builder().Aging(args[0], d))
				return nil
			},
		},
		&cobra.Command{
			Use:   "reason [label]",
			Short: "Bar of the reason chart",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				emit(cmd, builder().Reason(args[0]))
				return nil
			},
		},
		&cobra.Command{
			Use:   "region [region] [domain]",
			Short: "Per-region card of the whole-network page",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				d, err := domain(args[1])
				if err != nil {
					return err
				}
				emit(cmd, builder().RegionCard(args[0], d))
				return nil
			},
		},
	)
	return cmd
}
