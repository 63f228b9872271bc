// Package viability: feasibility arithmetic over a resolved zone rule.
// Pure functions; the rule's stored values are never altered, only projected
// onto the lot.
package viability

import (
	"errors"

	"zoning-api/internal/rules"
)

const epsilon = 1e-9

// Inputs: lot description from the form. Zero means "not informed" for the
// optional fields; LotAreaM2 is required and must be positive.
type Inputs struct {
	LotAreaM2     float64 `json:"lot_area_m2"`
	FrontageM     float64 `json:"frontage_m"`
	DepthM        float64 `json:"depth_m"`
	GroundAreaM2  float64 `json:"ground_area_m2"`
	Floors        int     `json:"floors"`
	TargetBuiltM2 float64 `json:"target_built_m2"`
	Units         int     `json:"units"`
}

var ErrBadLotArea = errors.New("lot area must be positive")

// Envelope: buildable footprint after setbacks, and the ground-floor maximum
// once the occupancy limit is also applied.
type Envelope struct {
	BuildableM2 float64 `json:"buildable_m2"`
	MaxGroundM2 float64 `json:"max_ground_m2"`
}

// Report: the layperson-facing numbers derived from one rule and one lot.
type Report struct {
	ToMaxPct float64 `json:"to_max_pct"`
	TpMinPct float64 `json:"tp_min_pct"`
	IaMax    float64 `json:"ia_max"`

	ToMaxM2 float64 `json:"to_max_m2"`
	TpMinM2 float64 `json:"tp_min_m2"`
	IaMaxM2 float64 `json:"ia_max_m2"`

	Standard Envelope `json:"option_standard"`
	// Present only when the rule allows attaching to one lateral boundary
	// (Art.112 of the local code).
	OneSideAttach *Envelope `json:"option_one_side_attach,omitempty"`

	GroundAreaOK bool  `json:"ground_area_ok"`
	TargetOKByIA *bool `json:"target_ok_by_ia,omitempty"`

	// Height estimate from the floor count, checked against the rule's
	// max height when the table carries one.
	EstHeightM float64 `json:"est_height_m,omitempty"`
	HeightOK   *bool   `json:"height_ok,omitempty"`
}

// Per-floor height estimate when only a floor count is informed.
const floorHeightM = 3.0

// Fraction: normalize a ratio that may be stored as 0.6 or as 60.
// The consolidated tables carry both conventions; anything above 1.5 is read
// as a percentage.
func Fraction(v float64) float64 {
	if v > 1.5 {
		return v / 100.0
	}
	return v
}

// buildableArea: footprint left after subtracting setbacks from the lot
// rectangle. Unknown frontage or depth yields 0, not an error; the area
// limits still apply.
func buildableArea(frontageM, depthM, frontM, backM, leftM, rightM float64) float64 {
	if frontageM <= 0 || depthM <= 0 {
		return 0
	}
	w := frontageM - leftM - rightM
	if w < 0 {
		w = 0
	}
	d := depthM - frontM - backM
	if d < 0 {
		d = 0
	}
	return w * d
}

// Compute: project the rule's limits onto the lot.
func Compute(in Inputs, r *rules.ZoneRule) (*Report, error) {
	if in.LotAreaM2 <= 0 {
		return nil, ErrBadLotArea
	}

	toFrac := Fraction(r.ToMaxPct)
	tpFrac := Fraction(r.TpMinPct)

	rep := &Report{
		ToMaxPct: toFrac * 100.0,
		TpMinPct: tpFrac * 100.0,
		IaMax:    r.IaMax,
		ToMaxM2:  in.LotAreaM2 * toFrac,
		TpMinM2:  in.LotAreaM2 * tpFrac,
		IaMaxM2:  in.LotAreaM2 * r.IaMax,
	}

	std := buildableArea(in.FrontageM, in.DepthM,
		r.RecuoFrontalM, r.RecuoFundosM, r.RecuoLateralM, r.RecuoLateralM)
	rep.Standard = Envelope{BuildableM2: std, MaxGroundM2: minf(rep.ToMaxM2, std)}

	if r.AllowAttachOneSide {
		att := buildableArea(in.FrontageM, in.DepthM,
			r.RecuoFrontalM, r.RecuoFundosM, 0, r.RecuoLateralM)
		rep.OneSideAttach = &Envelope{BuildableM2: att, MaxGroundM2: minf(rep.ToMaxM2, att)}
	}

	rep.GroundAreaOK = in.GroundAreaM2 <= rep.ToMaxM2+epsilon

	if in.TargetBuiltM2 > 0 {
		ok := in.TargetBuiltM2 <= rep.IaMaxM2+epsilon
		rep.TargetOKByIA = &ok
	}

	if in.Floors > 0 {
		rep.EstHeightM = float64(in.Floors) * floorHeightM
		if r.MaxHeightM != nil {
			ok := rep.EstHeightM <= *r.MaxHeightM+epsilon
			rep.HeightOK = &ok
		}
	}
	return rep, nil
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
