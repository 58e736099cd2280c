// Package meaning defines the 8-dimensional meaning vector consumed by the
// renderer and the salience weighting applied to it.
package meaning

import (
	"fmt"
	"math"
	"strings"
)

// Dimension identifies one of the eight meaning dimensions.
//
// The declaration order is fixed; it is the tie-break order for salience
// ranking and the default draw order of the layered compositor.
type Dimension uint8

const (
	TemporalFlow Dimension = iota
	IneffableQuality
	EmotionalSubstrate
	RelationalDynamics
	ConsciousnessLevel
	ParadoxTension
	ArchetypalResonance
	TransformativePotential
)

// NumDimensions is the size of every meaning vector.
const NumDimensions = 8

var dimensionNames = [NumDimensions]string{
	"TEMPORAL_FLOW",
	"INEFFABLE_QUALITY",
	"EMOTIONAL_SUBSTRATE",
	"RELATIONAL_DYNAMICS",
	"CONSCIOUSNESS_LEVEL",
	"PARADOX_TENSION",
	"ARCHETYPAL_RESONANCE",
	"TRANSFORMATIVE_POTENTIAL",
}

// Dimensions returns all dimensions in declaration order.
func Dimensions() [NumDimensions]Dimension {
	var out [NumDimensions]Dimension
	for i := range out {
		out[i] = Dimension(i)
	}
	return out
}

func (d Dimension) Valid() bool { return int(d) < NumDimensions }

func (d Dimension) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Dimension(%d)", uint8(d))
	}
	return dimensionNames[d]
}

// Label is the human-readable form used in captions ("TEMPORAL FLOW").
func (d Dimension) Label() string {
	return strings.ReplaceAll(d.String(), "_", " ")
}

// ParseDimension accepts the canonical name in any case, with '-' or ' '
// allowed in place of '_'.
func ParseDimension(s string) (Dimension, error) {
	key := strings.ToUpper(strings.TrimSpace(s))
	key = strings.NewReplacer("-", "_", " ", "_").Replace(key)
	for i, name := range dimensionNames {
		if name == key {
			return Dimension(i), nil
		}
	}
	return 0, fmt.Errorf("unknown meaning dimension %q", s)
}

// Vector is a complete meaning vector indexed by Dimension.
//
// Values are not constrained by the type; use Clamped before rendering.
// An absent vector is represented by a nil *Vector.
type Vector [NumDimensions]float64

// Get returns the raw value for d (0 for an invalid dimension).
func (v Vector) Get(d Dimension) float64 {
	if !d.Valid() {
		return 0
	}
	return v[d]
}

// With returns a copy of v with d set to value.
func (v Vector) With(d Dimension, value float64) Vector {
	if d.Valid() {
		v[d] = value
	}
	return v
}

// Clamped returns a copy with every value forced into [0,1]. NaN and -Inf
// become 0, +Inf becomes 1.
func (v Vector) Clamped() Vector {
	var out Vector
	for i, x := range v {
		out[i] = Clamp01(x)
	}
	return out
}

// Max returns the largest raw value.
func (v Vector) Max() float64 {
	m := math.Inf(-1)
	for _, x := range v {
		if x > m {
			m = x
		}
	}
	return m
}

func (v Vector) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, x := range v {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s:%.3g", dimensionNames[i], x)
	}
	b.WriteByte('}')
	return b.String()
}

// FromMap builds a vector from dimension names. Missing dimensions are 0;
// unknown names are an error because the dimension set is fixed.
func FromMap(m map[string]float64) (Vector, error) {
	var v Vector
	for name, x := range m {
		d, err := ParseDimension(name)
		if err != nil {
			return Vector{}, err
		}
		v[d] = x
	}
	return v, nil
}

// Calm is the low-energy vector shown by demo runs that have no input.
func Calm() Vector {
	return Vector{
		TemporalFlow:            0.1,
		IneffableQuality:        0.1,
		EmotionalSubstrate:      0.1,
		RelationalDynamics:      0.1,
		ConsciousnessLevel:      0.2,
		ParadoxTension:          0.0,
		ArchetypalResonance:     0.1,
		TransformativePotential: 0.1,
	}
}

// Clamp01 clamps x into [0,1], mapping NaN to 0.
func Clamp01(x float64) float64 {
	switch {
	case math.IsNaN(x):
		return 0
	case x < 0:
		return 0
	case x > 1:
		return 1
	}
	return x
}
