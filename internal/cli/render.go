package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"meaningfield/app"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render frames offline to PNG files or an animated GIF",
	Long: `Render a fixed number of frames on a fixed clock, as fast as possible.
The output is deterministic for a given config, vector, script and seed.

--out names a directory for frame-NNNNN.png files, or a file ending in .gif.

Example:
  meaningfield render --vector vector.yaml --frames 120 --out frames/
  meaningfield render --script timeline.yaml --frames 240 --scale 2 --out field.gif`,
	Args:    cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error { return bindFlags(cmd) },
	RunE:    runRender,
}

func init() {
	surfaceFlags(renderCmd)
	renderCmd.Flags().StringP("out", "o", "", "output directory or .gif file")
	renderCmd.MarkFlagRequired("out")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	frames, _ := cmd.Flags().GetUint64("frames")
	if frames == 0 {
		return errors.New("render needs --frames greater than zero")
	}
	out, _ := cmd.Flags().GetString("out")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	if err := app.Run(ctx, app.Options{Config: cfg, Mode: app.ModeRender, Frames: frames, Out: out}); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d frames to %s\n", frames, out)
	return nil
}
