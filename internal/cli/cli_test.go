package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"meaningfield/field/meaning"
	"meaningfield/internal/logging"
)

func init() { logging.ConfigureTests() }

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out, "meaningfield ") {
		t.Fatalf("out=%q", out)
	}
}

func TestSalienceCommand(t *testing.T) {
	out, err := execute(t, "salience",
		"temporal_flow=0.9", "consciousness-level=0.8", "ARCHETYPAL_RESONANCE=0.85", "paradox_tension=0.2")
	if err != nil {
		t.Fatalf("salience: %v", err)
	}
	for _, want := range []string{"TEMPORAL_FLOW", "1.000", "PARADOX_TENSION"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "TEMPORAL_FLOW") > strings.Index(out, "PARADOX_TENSION") {
		t.Fatalf("rows not ranked:\n%s", out)
	}
}

func TestApplyAssignments(t *testing.T) {
	v, err := applyAssignments(meaning.Vector{}, []string{"relational dynamics=0.5"})
	if err != nil {
		t.Fatalf("applyAssignments: %v", err)
	}
	if v.Get(meaning.RelationalDynamics) != 0.5 {
		t.Fatalf("v=%v", v)
	}
	for _, bad := range []string{"temporal_flow", "mood=1", "temporal_flow=high"} {
		if _, err := applyAssignments(meaning.Vector{}, []string{bad}); err == nil {
			t.Fatalf("%q: expected error", bad)
		}
	}
}

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()
	vec := filepath.Join(dir, "vector.yaml")
	if err := os.WriteFile(vec, []byte("TEMPORAL_FLOW: 0.9\nPARADOX_TENSION: 0.6\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	frames := filepath.Join(dir, "frames")
	out, err := execute(t, "render", "--frames", "2", "--width", "16", "--height", "12",
		"--vector", vec, "--strategy", "layered", "--out", frames)
	if err != nil {
		t.Fatalf("render: %v\n%s", err, out)
	}
	entries, err := os.ReadDir(frames)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("frames=%d", len(entries))
	}
}

func TestRenderRejectsBadStrategy(t *testing.T) {
	_, err := execute(t, "render", "--frames", "1", "--width", "4", "--height", "4",
		"--strategy", "mosaic", "--out", t.TempDir())
	if err == nil || !strings.Contains(err.Error(), "strategy") {
		t.Fatalf("err=%v", err)
	}
}
