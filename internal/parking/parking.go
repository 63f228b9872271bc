// Package parking: minimum parking-slot calculation from a parking rule.
package parking

import (
	"fmt"
	"math"

	"zoning-api/internal/rules"
)

// Result: computed slot requirement plus the inputs that produced it, so the
// report can show its work.
type Result struct {
	Slots          int     `json:"slots"`
	RuleType       string  `json:"rule_type"`
	BuiltAreaM2    float64 `json:"built_area_m2"`
	Units          int     `json:"units,omitempty"`
	UnitsEstimated bool    `json:"units_estimated,omitempty"`
	Details        string  `json:"details,omitempty"`
}

// Multi-family unit estimate when the form does not say: one unit per 60 m²
// of built area, at least one.
const estimateM2PerUnit = 60.0

// Calc: evaluate a parking rule against the built area. Units only matters
// for per_unit rules; zero means unknown and triggers the estimate for
// multi-family use.
func Calc(r *rules.ParkingRule, builtAreaM2 float64, units int) Result {
	out := Result{RuleType: r.RuleType, BuiltAreaM2: builtAreaM2, Units: units}
	var slots float64
	switch r.RuleType {
	case "per_m2":
		if r.RatioM2 > 0 {
			slots = builtAreaM2 / r.RatioM2
		}
	case "per_unit":
		if units <= 0 {
			units = int(math.Ceil(builtAreaM2 / estimateM2PerUnit))
			if units < 1 {
				units = 1
			}
			out.Units = units
			out.UnitsEstimated = true
		}
		per := r.SlotsPerUnit
		if per <= 0 {
			per = 1
		}
		slots = per * float64(units)
	case "fixed":
		slots = r.FixedSlots
	default:
		// Unknown rule type: fall back to the area ratio when present.
		if r.RatioM2 > 0 {
			slots = builtAreaM2 / r.RatioM2
		}
	}

	switch r.Rounding {
	case "floor":
		slots = math.Floor(slots)
	case "round":
		slots = math.Round(slots)
	default:
		slots = math.Ceil(slots)
	}
	if slots < r.MinSlots {
		slots = r.MinSlots
	}
	out.Slots = int(slots)
	out.Details = fmt.Sprintf("rule_type=%s built_area=%.1fm2 units=%d min=%.0f", r.RuleType, builtAreaM2, out.Units, r.MinSlots)
	return out
}
