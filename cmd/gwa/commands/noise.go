package commands

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/Hazboun6/gwa/config"
	"github.com/Hazboun6/gwa/psr"
	"github.com/Hazboun6/gwa/sym"
)

// NoiseCmd represents the noise command
var NoiseCmd = &cobra.Command{
	Use:   "noise [pulsar]",
	Short: sym.Noise + " Show merged white-noise dictionaries",
	Long: sym.Noise + ` Show the white-noise parameter dictionaries gwa would apply.

Merges every noise JSON file under data.noise_dir (data.dir when unset)
in sorted name order, later files winning on key collisions. With a
pulsar argument, only that pulsar's entries are shown — the same subset
'gwa run --noise' fixes as model constants.

Examples:
  gwa noise                      # Every merged entry
  gwa noise J1713+0747           # One pulsar's entries
  gwa noise --json               # Machine-readable dictionary`,
	Args: cobra.MaximumNArgs(1),
	RunE: runNoise,
}

func init() {
	NoiseCmd.Flags().String("dir", "", "Noise dictionary directory (overrides data.noise_dir)")
	NoiseCmd.Flags().BoolP("json", "j", false, "Output dictionary as JSON")
}

func runNoise(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	dir, _ := cmd.Flags().GetString("dir")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if dir == "" {
		dir = cfg.GetNoiseDir()
	}

	merged, err := psr.LoadNoiseDicts(dir)
	if err != nil {
		return err
	}
	if len(args) == 1 {
		merged = psr.NoiseForPulsar(merged, args[0])
	}

	if len(merged) == 0 {
		pterm.Info.Printfln("No noise entries under %s", dir)
		return nil
	}

	if jsonOutput {
		output, err := json.MarshalIndent(merged, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal noise dictionary: %w", err)
		}
		fmt.Println(string(output))
		return nil
	}

	keys := make([]string, 0, len(merged))
	for key := range merged {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Printf("%-40s %g\n", key, merged[key])
	}
	fmt.Printf("\n%d entries from %s\n", len(merged), dir)
	return nil
}
