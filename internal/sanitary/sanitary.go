// Package sanitary: sanitary-installation requirement for a use type.
// The municipal annex mostly targets commerce and services; residential uses
// without an explicit row report "not applicable" rather than a miss.
package sanitary

import "zoning-api/internal/rules"

type Result struct {
	Applicable  bool   `json:"applicable"`
	Requirement string `json:"requirement,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

// Evaluate: map a looked-up rule (nil = no row) onto the report entry.
func Evaluate(r *rules.SanitaryRule, useTypeCode string) Result {
	if r != nil {
		return Result{Applicable: true, Requirement: r.Requirement, Notes: r.Notes}
	}
	switch useTypeCode {
	case rules.UseResUni, rules.UseResMulti:
		return Result{Applicable: false, Notes: "residential use: no sanitary annex requirement registered"}
	}
	return Result{Applicable: false}
}
