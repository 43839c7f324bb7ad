// Package score implements the deterministic demo scorer used on the
// landing page, where no provider or AI integration is involved.
package score

import "strings"

// Plan is the requested level of detail for a mock score.
type Plan string

const (
	PlanSimple Plan = "simple"
	PlanPro    Plan = "pro"
)

const (
	simpleBase = 520
	proBonus   = 60

	variabilityRange = 320

	minScore = 300
	maxScore = 900
)

// ParsePlan maps a raw plan string to a Plan, defaulting to "simple".
func ParsePlan(raw string) Plan {
	if raw == string(PlanPro) {
		return PlanPro
	}
	return PlanSimple
}

// Generate returns a deterministic mock score for the address in
// [minScore, maxScore]. The same address and plan always produce the
// same value.
func Generate(address string, plan Plan) int {
	base := simpleBase
	if plan == PlanPro {
		base += proBonus
	}
	variability := hashString(strings.ToLower(address)) % variabilityRange
	return clamp(base+variability, minScore, maxScore)
}

// hashString is a 31x rolling hash over the code points of the input,
// wrapping at 32-bit signed boundaries each step, absolute value taken
// at the end.
func hashString(input string) int {
	var hash int32
	for _, r := range input {
		hash = (hash << 5) - hash + int32(r)
	}
	v := int64(hash)
	if v < 0 {
		v = -v
	}
	return int(v)
}

func clamp(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
