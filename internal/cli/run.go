package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"meaningfield/app"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Animate the field live in a window or headless",
	Long: `Animate the meaning field in real time.

Window mode keys:
  space   toggle the analyzing state
  c       show the calm vector
  x       clear the vector (idle pulse)
  esc     quit

Example:
  meaningfield run --vector vector.yaml --strategy layered
  meaningfield run --headless --script timeline.yaml --frames 600`,
	Args:    cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error { return bindFlags(cmd) },
	RunE:    runRun,
}

func init() {
	surfaceFlags(runCmd)
	runCmd.Flags().Bool("window", true, "show a desktop window")
	runCmd.Flags().Bool("headless", false, "render without a window on a wall-clock ticker")
	runCmd.MarkFlagsMutuallyExclusive("window", "headless")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	frames, _ := cmd.Flags().GetUint64("frames")
	headless, _ := cmd.Flags().GetBool("headless")
	mode := app.ModeWindow
	if headless {
		mode = app.ModeHeadless
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	err = app.Run(ctx, app.Options{Config: cfg, Mode: mode, Frames: frames})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
