package primitives

// Params are the recursion and geometry knobs of the generators. Zero depths
// and a zero BranchProbability switch the recursion off; zero BranchReseedHz
// keeps tether branches fixed. Negative or NaN values, and zero ring
// geometry, take the DefaultParams value.
type Params struct {
	// SubSpiralDepth is how many levels of sub-spirals hang off each
	// timeline strand.
	SubSpiralDepth int
	// TetherMaxDepth bounds tether branch recursion.
	TetherMaxDepth int
	// BranchProbability is scaled by intensity for each tether branch.
	BranchProbability float64
	// BranchReseedHz is how often per second tether branches re-roll.
	BranchReseedHz float64
	// BloomMaxDepth bounds nested sub-blooms.
	BloomMaxDepth int

	InterferenceRings     int
	InterferenceSpacing   float64
	InterferenceMaxRadius float64
}

func DefaultParams() Params {
	return Params{
		SubSpiralDepth:        1,
		TetherMaxDepth:        3,
		BranchProbability:     0.7,
		BranchReseedHz:        2,
		BloomMaxDepth:         3,
		InterferenceRings:     20,
		InterferenceSpacing:   20,
		InterferenceMaxRadius: 400,
	}
}

func (p Params) withDefaults() Params {
	d := DefaultParams()
	if p.SubSpiralDepth < 0 {
		p.SubSpiralDepth = d.SubSpiralDepth
	}
	if p.TetherMaxDepth < 0 {
		p.TetherMaxDepth = d.TetherMaxDepth
	}
	if !(p.BranchProbability >= 0) {
		p.BranchProbability = d.BranchProbability
	}
	if p.BranchProbability > 1 {
		p.BranchProbability = 1
	}
	if !(p.BranchReseedHz >= 0) {
		p.BranchReseedHz = d.BranchReseedHz
	}
	if p.BloomMaxDepth < 0 {
		p.BloomMaxDepth = d.BloomMaxDepth
	}
	if p.InterferenceRings <= 0 {
		p.InterferenceRings = d.InterferenceRings
	}
	if !(p.InterferenceSpacing > 0) {
		p.InterferenceSpacing = d.InterferenceSpacing
	}
	if !(p.InterferenceMaxRadius > 0) {
		p.InterferenceMaxRadius = d.InterferenceMaxRadius
	}
	return p
}
