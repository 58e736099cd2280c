package meaning

import "sort"

const (
	// DefaultFadeFactor scales every dimension outside the salient set.
	DefaultFadeFactor = 0.15
	// DefaultKeep is the number of dimensions kept at full strength.
	DefaultKeep = 3

	normEpsilon = 1e-5
)

// Salience is the weighted view of one vector. It is recomputed whenever a
// new vector arrives, never per frame.
type Salience struct {
	// Intensities holds the weighted value of each dimension, in [0,1].
	Intensities [NumDimensions]float64
	// Ordered ranks dimensions by raw magnitude, strongest first. Ties keep
	// declaration order.
	Ordered [NumDimensions]Dimension
	// Raw is the clamped input the weights were computed from.
	Raw Vector
	// Keep is the number of leading entries of Ordered kept at full strength.
	Keep int
}

// Intensity returns the weighted intensity of d.
func (s *Salience) Intensity(d Dimension) float64 {
	if s == nil || !d.Valid() {
		return 0
	}
	return s.Intensities[d]
}

// Top returns the n strongest dimensions.
func (s *Salience) Top(n int) []Dimension {
	if s == nil || n <= 0 {
		return nil
	}
	if n > NumDimensions {
		n = NumDimensions
	}
	out := make([]Dimension, n)
	copy(out, s.Ordered[:n])
	return out
}

// Salient reports whether d is in the full-strength set.
func (s *Salience) Salient(d Dimension) bool {
	if s == nil {
		return false
	}
	for _, top := range s.Ordered[:s.Keep] {
		if top == d {
			return true
		}
	}
	return false
}

type salienceOptions struct {
	fade float64
	keep int
}

// SalienceOption tunes ComputeSalience.
type SalienceOption func(*salienceOptions)

// WithFadeFactor sets the multiplier for non-salient dimensions. Values
// outside (0,1] fall back to DefaultFadeFactor.
func WithFadeFactor(f float64) SalienceOption {
	return func(o *salienceOptions) {
		if f > 0 && f <= 1 {
			o.fade = f
		}
	}
}

// WithKeep sets how many dimensions keep full strength. Values outside
// [1,NumDimensions] fall back to DefaultKeep.
func WithKeep(n int) SalienceOption {
	return func(o *salienceOptions) {
		if n >= 1 && n <= NumDimensions {
			o.keep = n
		}
	}
}

// ComputeSalience normalises v by its maximum and fades every dimension
// outside the strongest few. It is pure and deterministic.
func ComputeSalience(v Vector, opts ...SalienceOption) Salience {
	o := salienceOptions{fade: DefaultFadeFactor, keep: DefaultKeep}
	for _, opt := range opts {
		opt(&o)
	}

	raw := v.Clamped()
	maxVal := max(raw.Max(), normEpsilon)

	var s Salience
	s.Raw = raw
	s.Keep = o.keep
	s.Ordered = Dimensions()
	sort.SliceStable(s.Ordered[:], func(i, j int) bool {
		return raw[s.Ordered[i]] > raw[s.Ordered[j]]
	})

	var salient [NumDimensions]bool
	for _, d := range s.Ordered[:o.keep] {
		salient[d] = true
	}
	for i, x := range raw {
		n := Clamp01(x / maxVal)
		if !salient[i] {
			n *= o.fade
		}
		s.Intensities[i] = n
	}
	return s
}
