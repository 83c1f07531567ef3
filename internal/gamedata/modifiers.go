package gamedata

import "math"

// Bounds for host-settable values. Out-of-range inputs are clamped, never
// rejected.
const (
	MinTargetScore = 3
	MaxTargetScore = 30
	MinRoundTime   = 8
	MaxRoundTime   = 30
	MaxRotateEvery = 10
	MaxCloseCall   = 10
)

// Modifiers is the host-configurable rule bundle for a match.
type Modifiers struct {
	CloseCallThreshold float64 `json:"closeCallThreshold"`
	PerfectRoundBonus  bool    `json:"perfectRoundBonus"`
	RotateStatEvery    int     `json:"rotateStatEvery"`
	RoundTimeSec       int     `json:"roundTimeSec"`
}

func DefaultModifiers() Modifiers {
	return Modifiers{
		CloseCallThreshold: 2,
		PerfectRoundBonus:  true,
		RotateStatEvery:    4,
		RoundTimeSec:       15,
	}
}

func ClampTargetScore(n int) int {
	return clampInt(n, MinTargetScore, MaxTargetScore)
}

func ClampRoundTime(n int) int {
	return clampInt(n, MinRoundTime, MaxRoundTime)
}

func ClampRotateEvery(n int) int {
	return clampInt(n, 0, MaxRotateEvery)
}

// ClampCloseCall bounds the close-call tolerance; non-finite input returns
// the prior value unchanged.
func ClampCloseCall(v, prior float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return prior
	}
	if v < 0 {
		return 0
	}
	if v > MaxCloseCall {
		return MaxCloseCall
	}
	return v
}

func clampInt(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
