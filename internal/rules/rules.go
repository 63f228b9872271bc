// Package rules: shared domain model for zoning rules and the resolver contract.
package rules

import (
	"context"
	"errors"
)

// Use-type codes accepted by the MVP form. The table may carry more; these are
// the ones the front end offers.
const (
	UseResUni   = "RES_UNI"
	UseResMulti = "RES_MULTI"
)

// ErrNotFound: the composite key has no row. A defined outcome, not a failure;
// callers must halt result rendering and never substitute a default rule.
var ErrNotFound = errors.New("zone rule not found")

// ErrEmptyKey: one of the identifiers is empty. Matching is exact and
// unnormalized, so an empty identifier can never resolve.
var ErrEmptyKey = errors.New("zone rule key must not be empty")

// ZoneRule: one permitted (zone, use type) combination with its dimensional
// limits. Numeric fields pass through from the rule table unchanged.
type ZoneRule struct {
	ZoneSigla     string  `json:"zone_sigla" yaml:"zone_sigla"`
	UseTypeCode   string  `json:"use_type_code" yaml:"use_type_code"`
	ToMaxPct      float64 `json:"to_max_pct" yaml:"to_max_pct"`
	TpMinPct      float64 `json:"tp_min_pct" yaml:"tp_min_pct"`
	IaMax         float64 `json:"ia_max" yaml:"ia_max"`
	RecuoFrontalM float64 `json:"recuo_frontal_m" yaml:"recuo_frontal_m"`
	RecuoLateralM float64 `json:"recuo_lateral_m" yaml:"recuo_lateral_m"`
	RecuoFundosM  float64 `json:"recuo_fundos_m" yaml:"recuo_fundos_m"`

	// Optional columns carried by the consolidated table.
	MaxHeightM         *float64 `json:"max_height_m,omitempty" yaml:"max_height_m,omitempty"`
	AllowAttachOneSide bool     `json:"allow_attach_one_side" yaml:"allow_attach_one_side"`
	Notes              string   `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// Source: a rule backend. Resolve returns the unique matching rule,
// ErrNotFound on an authoritative miss, or a transport error (never conflated
// with a miss).
type Source interface {
	Resolve(ctx context.Context, zoneSigla, useTypeCode string) (*ZoneRule, error)
}

// ValidateKey: exact-match precondition shared by every source.
func ValidateKey(zoneSigla, useTypeCode string) error {
	if zoneSigla == "" || useTypeCode == "" {
		return ErrEmptyKey
	}
	return nil
}

// ParkingRule: minimum parking-slot requirement keyed by use type.
type ParkingRule struct {
	UseTypeCode  string  `json:"use_type_code" yaml:"use_type_code"`
	RuleType     string  `json:"rule_type" yaml:"rule_type"` // per_m2 | per_unit | fixed
	RatioM2      float64 `json:"ratio_m2" yaml:"ratio_m2"`
	SlotsPerUnit float64 `json:"slots_per_unit" yaml:"slots_per_unit"`
	FixedSlots   float64 `json:"fixed_slots" yaml:"fixed_slots"`
	MinSlots     float64 `json:"min_slots" yaml:"min_slots"`
	Rounding     string  `json:"rounding" yaml:"rounding"` // ceil | floor | round
}

// SanitaryRule: sanitary-installation requirement keyed by use type.
type SanitaryRule struct {
	UseTypeCode string `json:"use_type_code" yaml:"use_type_code"`
	Requirement string `json:"requirement" yaml:"requirement"`
	Notes       string `json:"notes,omitempty" yaml:"notes,omitempty"`
}
