package commands

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/Hazboun6/gwa/catalog"
	"github.com/Hazboun6/gwa/chain"
	"github.com/Hazboun6/gwa/config"
	"github.com/Hazboun6/gwa/logger"
	"github.com/Hazboun6/gwa/sym"
)

// RunsCmd represents the runs command
var RunsCmd = &cobra.Command{
	Use:   "runs",
	Short: sym.Catalog + " Manage the run catalog",
	Long: sym.Catalog + ` The run catalog.

Every sampling run is recorded in a SQLite catalog (catalog.path) so
past chains can be found without walking output directories: what ran,
which model, where the chain lives, how far it got, and on what data
release.

Commands:
  gwa runs                  # List cataloged runs, newest first
  gwa runs show <id>        # Full record for one run
  gwa runs rm <id>          # Drop a run from the catalog
  gwa runs import <dir>     # Catalog an existing run directory

Examples:
  gwa runs --pulsar J1713+0747
  gwa runs --status interrupted        # Runs worth resuming
  gwa runs show J1713+0747_wn-rn_4xKwm2Qp
  gwa runs import chains/J1713+0747_wn-rn_4xKwm2Qp`,
	RunE: runRunsList,
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show the full catalog record for one run",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

var runsRmCmd = &cobra.Command{
	Use:   "rm <run-id>",
	Short: "Remove a run from the catalog",
	Long: `Remove a run's catalog record. The run directory and its chain
files are left untouched; re-catalog them later with gwa runs import.`,
	Args: cobra.ExactArgs(1),
	RunE: runRunsRm,
}

var runsImportCmd = &cobra.Command{
	Use:   "import <run-dir>",
	Short: "Catalog an existing run directory",
	Long: `Read a run directory's manifest and record it in the catalog.

Useful for chains sampled on another machine or before the catalog
existed. Acceptance and maximum posterior are recovered from the chain
file when it is readable.`,
	Args: cobra.ExactArgs(1),
	RunE: runRunsImport,
}

func init() {
	RunsCmd.Flags().StringP("pulsar", "p", "", "Only runs for this pulsar")
	RunsCmd.Flags().String("status", "", "Only runs with this status (running, complete, interrupted)")
	RunsCmd.Flags().Int("limit", 50, "Maximum rows to list")
	RunsCmd.Flags().BoolP("json", "j", false, "Output records as JSON")

	RunsCmd.AddCommand(runsShowCmd)
	RunsCmd.AddCommand(runsRmCmd)
	RunsCmd.AddCommand(runsImportCmd)
}

// openCatalogStrict opens the catalog for commands whose whole job is
// the catalog, so unavailability is an error rather than a warning.
func openCatalogStrict() (*catalog.Store, error) {
	path, err := config.GetCatalogPath()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return catalog.Open(path, logger.Logger)
}

func runRunsList(cmd *cobra.Command, args []string) error {
	pulsar, _ := cmd.Flags().GetString("pulsar")
	status, _ := cmd.Flags().GetString("status")
	limit, _ := cmd.Flags().GetInt("limit")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	store, err := openCatalogStrict()
	if err != nil {
		return err
	}
	defer store.Close()

	recs, err := store.List(catalog.Filter{Pulsar: pulsar, Status: status, Limit: limit})
	if err != nil {
		return err
	}

	if jsonOutput {
		output, err := json.MarshalIndent(recs, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal run records: %w", err)
		}
		fmt.Println(string(output))
		return nil
	}
	return catalog.Render(recs)
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	store, err := openCatalogStrict()
	if err != nil {
		return err
	}
	defer store.Close()

	rec, err := store.Get(args[0])
	if err != nil {
		return err
	}

	pterm.DefaultSection.Println(rec.ID)
	fmt.Printf("  pulsar:      %s\n", rec.Pulsar)
	fmt.Printf("  model:       %s\n", rec.Model)
	fmt.Printf("  params:      %d\n", rec.NDim)
	fmt.Printf("  status:      %s\n", rec.Status)
	fmt.Printf("  progress:    %d/%d\n", rec.Completed, rec.Iterations)
	fmt.Printf("  acceptance:  %.3f\n", rec.Acceptance)
	fmt.Printf("  max lnpost:  %.2f\n", rec.MaxLnPost)
	fmt.Printf("  directory:   %s\n", rec.OutDir)
	fmt.Printf("  gwa version: %s\n", rec.Version)
	if rec.DataCommit != "" {
		fmt.Printf("  data commit: %s\n", rec.DataCommit)
	}
	if rec.HostMemTotal > 0 {
		fmt.Printf("  host memory: %.1f GiB total, %.1f GiB available\n",
			float64(rec.HostMemTotal)/(1<<30), float64(rec.HostMemAvailable)/(1<<30))
	}
	fmt.Printf("  created:     %s\n", rec.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Printf("  updated:     %s\n", rec.UpdatedAt.Local().Format("2006-01-02 15:04:05"))
	return nil
}

func runRunsRm(cmd *cobra.Command, args []string) error {
	store, err := openCatalogStrict()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Delete(args[0]); err != nil {
		return err
	}
	fmt.Printf("%s Removed %s from the catalog\n", sym.OK, args[0])
	return nil
}

func runRunsImport(cmd *cobra.Command, args []string) error {
	dir := args[0]

	m, err := chain.ReadManifest(dir)
	if err != nil {
		return err
	}

	id := filepath.Base(dir)
	rec := catalog.FromManifest(id, dir, m)

	// Recover summary stats from the chain when it is readable; a
	// manifest-only directory still gets cataloged.
	if c, err := chain.Load(dir); err == nil {
		rec.Acceptance = chain.Acceptance(c)
		_, rec.MaxLnPost = c.MaxPosterior()
	} else {
		logger.Debugw("Importing run without chain stats", "dir", dir, "error", err)
	}

	store, err := openCatalogStrict()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Save(rec); err != nil {
		return err
	}
	fmt.Printf("%s Cataloged %s (%s, %s, %d/%d iterations)\n",
		sym.OK, id, rec.Pulsar, rec.Model, rec.Completed, rec.Iterations)
	return nil
}
