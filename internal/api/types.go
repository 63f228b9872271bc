package api

import (
	"zoning-api/internal/parking"
	"zoning-api/internal/rules"
	"zoning-api/internal/sanitary"
	"zoning-api/internal/streets"
	"zoning-api/internal/viability"
)

// Outward-facing response models. Field sets are stable; additions need a
// compatibility check against the form front end.

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Zone    string `json:"zone,omitempty"`
	Use     string `json:"use,omitempty"`
}

type viabilityResponse struct {
	Zone     string            `json:"zone"`
	Use      string            `json:"use"`
	Rule     *rules.ZoneRule   `json:"rule"`
	Report   *viability.Report `json:"report"`
	Parking  *parking.Result   `json:"parking,omitempty"`
	Sanitary sanitary.Result   `json:"sanitary"`
}

type zoneResponse struct {
	Lat       float64      `json:"lat"`
	Lon       float64      `json:"lon"`
	ZoneSigla string       `json:"zone_sigla,omitempty"`
	Found     bool         `json:"found"`
	Street    *streets.Hit `json:"street,omitempty"`
}

type statsResponse struct {
	Total  int64 `json:"total"`
	Today  int64 `json:"today"`
	Misses int64 `json:"misses"`
}
