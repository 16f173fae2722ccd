package signals

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/Hazboun6/gwa/errors"
)

// Tri-state switches for conditional signals.
const (
	// SwitchAuto enables the signal when the pulsar qualifies (dataset
	// flag for ECORR, known dip pulsar for the dispersion dip).
	SwitchAuto = "auto"
	SwitchOn   = "on"
	SwitchOff  = "off"
)

// Recipe declares the signal stack of a noise model. Recipes are built in
// (wn, wn-rn, wn-rn-dm) or loaded from TOML files for custom models.
type Recipe struct {
	Name string `toml:"name"`

	WhiteNoise bool   `toml:"white_noise"`
	Ecorr      string `toml:"ecorr"` // on | off | auto (default auto)

	RedNoise bool `toml:"red_noise"`
	RedModes int  `toml:"red_modes"`

	DMGP    bool `toml:"dm_gp"`
	DMModes int  `toml:"dm_modes"`

	Dip       string     `toml:"dip"`        // on | off | auto (default auto)
	DipWindow [2]float64 `toml:"dip_window"` // t0 prior window, MJD
}

// Built-in recipes, in increasing model complexity. The names are the
// model labels used in run IDs and the hypermodel.
var builtinRecipes = map[string]Recipe{
	"wn": {
		Name:       "wn",
		WhiteNoise: true,
		Ecorr:      SwitchAuto,
		Dip:        SwitchOff,
	},
	"wn-rn": {
		Name:       "wn-rn",
		WhiteNoise: true,
		Ecorr:      SwitchAuto,
		RedNoise:   true,
		Dip:        SwitchOff,
	},
	"wn-rn-dm": {
		Name:       "wn-rn-dm",
		WhiteNoise: true,
		Ecorr:      SwitchAuto,
		RedNoise:   true,
		DMGP:       true,
		Dip:        SwitchAuto,
	},
}

// DefaultDipWindow brackets the first observed J1713+0747 dispersion event.
var DefaultDipWindow = [2]float64{54650, 54850}

// BuiltinRecipe returns a named built-in recipe.
func BuiltinRecipe(name string) (Recipe, error) {
	r, ok := builtinRecipes[name]
	if !ok {
		return Recipe{}, errors.WithHintf(
			errors.Wrapf(errors.ErrNotFound, "no built-in model %q", name),
			"built-in models: wn, wn-rn, wn-rn-dm; or pass a recipe TOML path")
	}
	return r.withDefaults(), nil
}

// BuiltinRecipeNames lists the built-in model names in complexity order.
func BuiltinRecipeNames() []string {
	return []string{"wn", "wn-rn", "wn-rn-dm"}
}

// LoadRecipe reads a recipe TOML file.
func LoadRecipe(path string) (Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Recipe{}, errors.Wrapf(err, "reading recipe %s", path)
	}

	var r Recipe
	if err := toml.Unmarshal(data, &r); err != nil {
		return Recipe{}, errors.Wrapf(err, "parsing recipe %s", path)
	}
	if r.Name == "" {
		return Recipe{}, errors.Newf("recipe %s has no name", path)
	}
	r = r.withDefaults()
	if err := r.Validate(); err != nil {
		return Recipe{}, errors.Wrapf(err, "recipe %s", path)
	}
	return r, nil
}

// ResolveRecipe treats the argument as a built-in name first, then as a
// recipe file path.
func ResolveRecipe(nameOrPath string) (Recipe, error) {
	if r, err := BuiltinRecipe(nameOrPath); err == nil {
		return r, nil
	}
	if _, err := os.Stat(nameOrPath); err == nil {
		return LoadRecipe(nameOrPath)
	}
	return Recipe{}, errors.WithHintf(
		errors.Wrapf(errors.ErrNotFound, "model %q is neither built-in nor a recipe file", nameOrPath),
		"built-in models: wn, wn-rn, wn-rn-dm")
}

func (r Recipe) withDefaults() Recipe {
	if r.Ecorr == "" {
		r.Ecorr = SwitchAuto
	}
	if r.Dip == "" {
		r.Dip = SwitchAuto
	}
	if r.RedModes == 0 {
		r.RedModes = DefaultRedModes
	}
	if r.DMModes == 0 {
		r.DMModes = DefaultDMModes
	}
	if r.DipWindow == [2]float64{} {
		r.DipWindow = DefaultDipWindow
	}
	return r
}

// Validate checks switch values and mode counts.
func (r Recipe) Validate() error {
	for _, s := range []struct {
		field, value string
	}{{"ecorr", r.Ecorr}, {"dip", r.Dip}} {
		switch s.value {
		case SwitchAuto, SwitchOn, SwitchOff:
		default:
			return errors.Newf("%s must be on, off, or auto, got %q", s.field, s.value)
		}
	}
	if r.RedNoise && r.RedModes < 1 {
		return errors.Newf("red_modes must be >= 1, got %d", r.RedModes)
	}
	if r.DMGP && r.DMModes < 1 {
		return errors.Newf("dm_modes must be >= 1, got %d", r.DMModes)
	}
	if r.Dip != SwitchOff && r.DipWindow[1] <= r.DipWindow[0] {
		return errors.Newf("dip_window must be an increasing MJD pair, got [%g, %g]",
			r.DipWindow[0], r.DipWindow[1])
	}
	return nil
}
