package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/Hazboun6/gwa/config"
	"github.com/Hazboun6/gwa/errors"
	"github.com/Hazboun6/gwa/psr"
	"github.com/Hazboun6/gwa/sym"
)

// PulsarsCmd represents the pulsars command
var PulsarsCmd = &cobra.Command{
	Use:   "pulsars",
	Short: sym.Psr + " List pulsar datasets in the data directory",
	Long: sym.Psr + ` List the par/tim datasets gwa can see.

Walks data.dir for par files with matching tim files, applies the
data.pulsars allow-list, and loads each dataset to report TOA counts and
backends. Datasets without a residual product are listed but cannot be
sampled until the timing fit produces one.

Examples:
  gwa pulsars                 # Table of datasets under data.dir
  gwa pulsars --data ./sim    # Override the data directory
  gwa pulsars --json          # Machine-readable listing`,
	RunE: runPulsars,
}

func init() {
	PulsarsCmd.Flags().String("data", "", "Data directory (overrides data.dir)")
	PulsarsCmd.Flags().BoolP("json", "j", false, "Output dataset listing as JSON")
}

type pulsarRow struct {
	Name      string   `json:"name"`
	Par       string   `json:"par"`
	Tim       string   `json:"tim"`
	TOAs      int      `json:"toas"`
	SpanYears float64  `json:"span_years"`
	Backends  []string `json:"backends,omitempty"`
	Resid     bool     `json:"resid"`
	Problem   string   `json:"problem,omitempty"`
}

func runPulsars(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	dataDir, _ := cmd.Flags().GetString("data")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if dataDir == "" {
		dataDir = cfg.Data.Dir
	}

	sets, err := psr.Discover(dataDir)
	if err != nil {
		return err
	}
	sets = psr.Filter(sets, cfg.Data.Pulsars)
	if len(sets) == 0 {
		pterm.Info.Println("No datasets after applying the data.pulsars allow-list")
		return nil
	}

	rows := make([]pulsarRow, 0, len(sets))
	for _, ds := range sets {
		row := pulsarRow{Name: ds.Name, Par: ds.Par, Tim: ds.Tim}
		p, err := psr.Load(ds)
		switch {
		case err == nil:
			row.TOAs = p.N()
			row.SpanYears = p.Tspan() / (psr.SecPerDay * 365.25)
			row.Backends = p.UniqueBackends()
			row.Resid = true
		case errors.Is(err, errors.ErrNoResiduals):
			// Count TOAs from the tim file alone so the listing stays useful
			if toas, timErr := psr.ParseTim(ds.Tim); timErr == nil {
				row.TOAs = len(toas)
			}
		default:
			row.Problem = err.Error()
		}
		rows = append(rows, row)
	}

	if jsonOutput {
		output, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal dataset listing: %w", err)
		}
		fmt.Println(string(output))
		return nil
	}

	data := pterm.TableData{{"pulsar", "toas", "span (yr)", "backends", "resid"}}
	for _, row := range rows {
		resid := sym.Fail
		if row.Resid {
			resid = sym.OK
		}
		if row.Problem != "" {
			resid = sym.Fail + " " + truncate(row.Problem, 40)
		}
		data = append(data, []string{
			row.Name,
			fmt.Sprintf("%d", row.TOAs),
			fmt.Sprintf("%.1f", row.SpanYears),
			truncate(strings.Join(row.Backends, ","), 30),
			resid,
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

// truncate shortens a string for table display.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
