// Package cli contains the meaningfield commands.
package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"meaningfield/internal/config"
	"meaningfield/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "meaningfield",
	Short: "Render meaning vectors as a living procedural field",
	Long: `meaningfield turns an 8-dimensional meaning vector into a continuously
evolving procedural animation. Vectors come from a YAML file, a scripted
timeline, or the built-in calm vector.

Dimensions:
  TEMPORAL_FLOW, INEFFABLE_QUALITY, EMOTIONAL_SUBSTRATE, RELATIONAL_DYNAMICS,
  CONSCIOUSNESS_LEVEL, PARADOX_TENSION, ARCHETYPAL_RESONANCE,
  TRANSFORMATIVE_POTENTIAL`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.ConfigureRuntime()
		if lvl := viper.GetString("log_level"); lvl != "" && !logging.SetLevel(lvl) {
			return fmt.Errorf("unknown log level %q", lvl)
		}
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "TOML config file")
	rootCmd.PersistentFlags().String("log-level", "", "log level (trace, debug, info, warn, error, off)")

	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
}

// initConfig enables MEANINGFIELD_* environment overrides, e.g.
// MEANINGFIELD_SURFACE_WIDTH for surface.width.
func initConfig() {
	viper.SetEnvPrefix("MEANINGFIELD")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

// flagKeys maps command flags to config keys.
var flagKeys = map[string]string{
	"width":    "surface.width",
	"height":   "surface.height",
	"scale":    "surface.scale",
	"format":   "surface.pixel_format",
	"hz":       "driver.hz",
	"seed":     "driver.seed",
	"fade":     "salience.fade",
	"keep":     "salience.keep",
	"strategy": "compositor.strategy",
	"workers":  "compositor.workers",
	"labels":   "compositor.labels",
	"overlays": "compositor.overlays",
	"vector":   "feed.vector",
	"script":   "feed.script",
}

// bindFlags binds the flags of the command being run. Commands share config
// keys, so binding happens per invocation rather than in init.
func bindFlags(cmd *cobra.Command) error {
	var err error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok || err != nil {
			return
		}
		err = viper.BindPFlag(key, f)
	})
	return err
}

// loadConfig resolves defaults, the config file, then environment and flag
// overrides.
func loadConfig() (config.Config, error) {
	cfg := config.Default()
	if path := viper.GetString("config"); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return config.Config{}, err
		}
	}

	if viper.IsSet("surface.width") {
		cfg.Surface.Width = viper.GetInt("surface.width")
	}
	if viper.IsSet("surface.height") {
		cfg.Surface.Height = viper.GetInt("surface.height")
	}
	if viper.IsSet("surface.scale") {
		cfg.Surface.Scale = viper.GetInt("surface.scale")
	}
	if viper.IsSet("surface.pixel_format") {
		cfg.Surface.PixelFormat = viper.GetString("surface.pixel_format")
	}
	if viper.IsSet("driver.hz") {
		cfg.Driver.Hz = viper.GetInt("driver.hz")
	}
	if viper.IsSet("driver.seed") {
		cfg.Driver.Seed = viper.GetUint64("driver.seed")
	}
	if viper.IsSet("salience.fade") {
		cfg.Salience.Fade = viper.GetFloat64("salience.fade")
	}
	if viper.IsSet("salience.keep") {
		cfg.Salience.Keep = viper.GetInt("salience.keep")
	}
	if viper.IsSet("compositor.strategy") {
		cfg.Compositor.Strategy = strings.ToLower(viper.GetString("compositor.strategy"))
	}
	if viper.IsSet("compositor.workers") {
		cfg.Compositor.Workers = viper.GetInt("compositor.workers")
	}
	if viper.IsSet("compositor.labels") {
		cfg.Compositor.Labels = viper.GetBool("compositor.labels")
	}
	if viper.IsSet("compositor.overlays") {
		cfg.Compositor.Overlays = viper.GetBool("compositor.overlays")
	}
	if viper.IsSet("feed.vector") {
		cfg.Feed.Vector = viper.GetString("feed.vector")
	}
	if viper.IsSet("feed.script") {
		cfg.Feed.Script = viper.GetString("feed.script")
	}
	if viper.IsSet("log_level") && viper.GetString("log_level") != "" {
		cfg.LogLevel = viper.GetString("log_level")
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	if !logging.SetLevel(cfg.LogLevel) {
		return config.Config{}, fmt.Errorf("unknown log level %q", cfg.LogLevel)
	}
	return cfg, nil
}

// surfaceFlags registers the flags shared by run and render.
func surfaceFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Int("width", 0, "surface width in pixels")
	f.Int("height", 0, "surface height in pixels")
	f.Int("scale", 1, "output pixels per surface pixel")
	f.Int("hz", 60, "frames per second")
	f.Uint64("seed", 0, "seed for the generators' randomness")
	f.String("strategy", "unified", "compositor strategy: unified or layered")
	f.Int("workers", 0, "unified field worker goroutines (0 = GOMAXPROCS)")
	f.Bool("labels", false, "draw dimension captions")
	f.Bool("overlays", true, "draw geometry overlays above the unified field")
	f.String("format", "rgba8888", "framebuffer pixel format: rgba8888 or rgb565")
	f.String("vector", "", "YAML meaning vector file")
	f.String("script", "", "YAML timeline of vector updates")
	f.Uint64("frames", 0, "stop after N frames (0 = run until interrupted)")
}
