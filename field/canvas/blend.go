package canvas

import (
	"fmt"
	"strings"
)

// BlendMode selects how a source color combines with the backdrop.
type BlendMode uint8

const (
	BlendNormal BlendMode = iota
	BlendLighter
	BlendMultiply
	BlendScreen
	BlendOverlay
	BlendSoftLight
)

var blendNames = [...]string{
	BlendNormal:    "normal",
	BlendLighter:   "lighter",
	BlendMultiply:  "multiply",
	BlendScreen:    "screen",
	BlendOverlay:   "overlay",
	BlendSoftLight: "soft-light",
}

func (m BlendMode) String() string {
	if int(m) < len(blendNames) {
		return blendNames[m]
	}
	return fmt.Sprintf("BlendMode(%d)", uint8(m))
}

// ParseBlendMode accepts the mode names plus the canvas aliases
// "source-over" and "additive".
func ParseBlendMode(s string) (BlendMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "normal", "source-over", "":
		return BlendNormal, nil
	case "lighter", "additive", "add":
		return BlendLighter, nil
	case "multiply":
		return BlendMultiply, nil
	case "screen":
		return BlendScreen, nil
	case "overlay":
		return BlendOverlay, nil
	case "soft-light", "softlight", "soft_light":
		return BlendSoftLight, nil
	}
	return BlendNormal, fmt.Errorf("unknown blend mode %q", s)
}

// blendChannel composites one channel of a source with alpha a over an
// opaque backdrop cb.
func blendChannel(mode BlendMode, cb, cs, a float32) float32 {
	if mode == BlendLighter {
		v := cb + cs*a
		if v > 1 {
			return 1
		}
		return v
	}
	var mixed float32
	switch mode {
	case BlendMultiply:
		mixed = cb * cs
	case BlendScreen:
		mixed = cb + cs - cb*cs
	case BlendOverlay:
		mixed = hardLight(cs, cb)
	case BlendSoftLight:
		mixed = softLight(cb, cs)
	default:
		mixed = cs
	}
	return cb*(1-a) + mixed*a
}

// hardLight switches on cs; overlay(cb, cs) is hardLight(cs, cb).
func hardLight(cb, cs float32) float32 {
	if cs <= 0.5 {
		return cb * 2 * cs
	}
	s := 2*cs - 1
	return cb + s - cb*s
}

func softLight(cb, cs float32) float32 {
	if cs <= 0.5 {
		return cb - (1-2*cs)*cb*(1-cb)
	}
	var d float32
	if cb <= 0.25 {
		d = ((16*cb-12)*cb + 4) * cb
	} else {
		d = sqrt32(cb)
	}
	return cb + (2*cs-1)*(d-cb)
}
