package meaning

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestParseDimension(t *testing.T) {
	cases := map[string]Dimension{
		"TEMPORAL_FLOW":            TemporalFlow,
		"temporal-flow":            TemporalFlow,
		" paradox tension ":        ParadoxTension,
		"Transformative_Potential": TransformativePotential,
	}
	for in, want := range cases {
		got, err := ParseDimension(in)
		if err != nil {
			t.Fatalf("%q: %v", in, err)
		}
		if got != want {
			t.Fatalf("%q: got %s want %s", in, got, want)
		}
	}
	if _, err := ParseDimension("VIBES"); err == nil {
		t.Fatal("expected error for unknown dimension")
	}
}

func TestDimensionStrings(t *testing.T) {
	if ArchetypalResonance.String() != "ARCHETYPAL_RESONANCE" {
		t.Fatalf("got %q", ArchetypalResonance.String())
	}
	if ArchetypalResonance.Label() != "ARCHETYPAL RESONANCE" {
		t.Fatalf("got %q", ArchetypalResonance.Label())
	}
	if Dimension(9).Valid() {
		t.Fatal("dimension 9 should be invalid")
	}
}

func TestClamped(t *testing.T) {
	v := Vector{math.NaN(), -1, 2, math.Inf(1), math.Inf(-1), 0.5, 0, 1}
	got := v.Clamped()
	want := Vector{0, 0, 1, 1, 0, 0.5, 0, 1}
	if got != want {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestParseVector(t *testing.T) {
	v, err := ParseVector([]byte("TEMPORAL_FLOW: 0.9\nconsciousness_level: 0.8\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if v == nil || v[TemporalFlow] != 0.9 || v[ConsciousnessLevel] != 0.8 || v[ParadoxTension] != 0 {
		t.Fatalf("unexpected vector: %v", v)
	}

	v, err = ParseVector([]byte(`{"PARADOX_TENSION": 0.4}`))
	if err != nil || v == nil || v[ParadoxTension] != 0.4 {
		t.Fatalf("json form: %v %v", v, err)
	}

	v, err = ParseVector([]byte("null\n"))
	if err != nil || v != nil {
		t.Fatalf("null should be absent: %v %v", v, err)
	}

	if _, err := ParseVector([]byte("MOOD: 1\n")); err == nil {
		t.Fatal("expected unknown dimension error")
	}
}

func TestLoadVector(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "v.yaml")
	if err := os.WriteFile(path, []byte("INEFFABLE_QUALITY: 0.7\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	v, err := LoadVector(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if v[IneffableQuality] != 0.7 {
		t.Fatalf("unexpected vector: %v", v)
	}
	if _, err := LoadVector(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestVectorYAMLRoundTripInStruct(t *testing.T) {
	type doc struct {
		V Vector `yaml:"v"`
	}
	in := doc{V: Calm()}
	data, err := yaml.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out doc
	if err := yaml.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.V != in.V {
		t.Fatalf("got %v want %v", out.V, in.V)
	}
}
