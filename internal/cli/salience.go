package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"meaningfield/field/meaning"
)

var salienceCmd = &cobra.Command{
	Use:   "salience [dimension=value ...]",
	Short: "Print the salience weighting of a meaning vector",
	Long: `Compute the salience weights the renderer would use for a vector: the
strongest dimensions keep full strength, the rest are faded.

Values come from --vector, then from dimension=value arguments, which
override the file. Dimension names are case-insensitive and accept '-' for '_'.

Example:
  meaningfield salience temporal_flow=0.9 consciousness-level=0.8 archetypal_resonance=0.85
  meaningfield salience --vector vector.yaml --fade 0.3`,
	PreRunE: func(cmd *cobra.Command, args []string) error { return bindFlags(cmd) },
	RunE:    runSalience,
}

func init() {
	salienceCmd.Flags().String("vector", "", "YAML meaning vector file")
	salienceCmd.Flags().Float64("fade", meaning.DefaultFadeFactor, "multiplier for non-salient dimensions")
	salienceCmd.Flags().Int("keep", meaning.DefaultKeep, "number of dimensions kept at full strength")
	rootCmd.AddCommand(salienceCmd)
}

var (
	salienceBoxStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("#3d5a80")).
				Padding(0, 1)
	salienceHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#4ecdc4"))
	salienceNameStyle = lipgloss.NewStyle().
				Width(26)
	salienceNumStyle = lipgloss.NewStyle().
				Width(8).
				Align(lipgloss.Right)
	salienceTopStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#ffe66d"))
	salienceFadedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#888888"))
)

const salienceBarWidth = 20

func runSalience(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	var v meaning.Vector
	if cfg.Feed.Vector != "" {
		loaded, err := meaning.LoadVector(cfg.Feed.Vector)
		if err != nil {
			return err
		}
		if loaded != nil {
			v = *loaded
		}
	}
	if v, err = applyAssignments(v, args); err != nil {
		return err
	}

	s := meaning.ComputeSalience(v, cfg.SalienceOptions()...)
	fmt.Fprintln(cmd.OutOrStdout(), renderSalience(s))
	return nil
}

// applyAssignments sets dimension=value pairs on v.
func applyAssignments(v meaning.Vector, args []string) (meaning.Vector, error) {
	for _, arg := range args {
		name, raw, ok := strings.Cut(arg, "=")
		if !ok {
			return v, fmt.Errorf("expected dimension=value, got %q", arg)
		}
		d, err := meaning.ParseDimension(name)
		if err != nil {
			return v, err
		}
		x, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return v, fmt.Errorf("value for %s: %w", d, err)
		}
		v = v.With(d, x)
	}
	return v, nil
}

// renderSalience draws one row per dimension in rank order.
func renderSalience(s meaning.Salience) string {
	header := salienceHeaderStyle.Render(
		salienceNameStyle.Render("DIMENSION") +
			salienceNumStyle.Render("RAW") +
			salienceNumStyle.Render("WEIGHT") + "  BAR")

	rows := []string{header}
	for _, d := range s.Ordered {
		w := s.Intensity(d)
		bar := strings.Repeat("█", int(w*salienceBarWidth+0.5))
		style := salienceFadedStyle
		if s.Salient(d) {
			style = salienceTopStyle
		}
		rows = append(rows, style.Render(
			salienceNameStyle.Render(d.String())+
				salienceNumStyle.Render(strconv.FormatFloat(s.Raw.Get(d), 'f', 3, 64))+
				salienceNumStyle.Render(strconv.FormatFloat(w, 'f', 3, 64))+
				"  "+bar))
	}
	return salienceBoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
