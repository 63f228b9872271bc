// Package api: HTTP route registration, kept out of the entrypoint so the
// surface can grow without touching wiring.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"zoning-api/internal/logger"
	"zoning-api/internal/metrics"
	"zoning-api/internal/parking"
	"zoning-api/internal/rules"
	"zoning-api/internal/sanitary"
	"zoning-api/internal/store"
	"zoning-api/internal/streets"
	"zoning-api/internal/viability"
	"zoning-api/internal/zonemap"

	"github.com/redis/go-redis/v9"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.Header().Set("cache-control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeResolveError: shared rendering of resolver outcomes. A miss halts the
// request with 404 and a user-facing message; it is final, nothing is
// substituted. A source failure is 502 and is never presented as a miss.
func writeResolveError(w http.ResponseWriter, err error, zone, use string) {
	switch {
	case errors.Is(err, rules.ErrEmptyKey):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "zone and use must not be empty"})
	case errors.Is(err, rules.ErrNotFound):
		metrics.RuleMissesTotal.Inc()
		writeJSON(w, http.StatusNotFound, errorResponse{
			Error:   "rule_not_found",
			Message: "no zoning rule registered for this zone and use type; review the zone code",
			Zone:    zone,
			Use:     use,
		})
	default:
		metrics.SourceErrorsTotal.Inc()
		logger.L().Error("rule_source_error", "zone", zone, "use", use, "err", err)
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "source_unavailable"})
	}
}

// cachedResolve: optional Redis cache-aside around the rule source. Off by
// default so repeated lookups always reflect the external table;
// RULE_CACHE_TTL_S>0 opts in.
func cachedResolve(r *http.Request, src rules.Source, rc *redis.Client, ttl time.Duration, zone, use string) (*rules.ZoneRule, error) {
	ctx := r.Context()
	key := "rule:" + zone + ":" + use
	if rc != nil && ttl > 0 {
		if s, _ := rc.Get(ctx, key).Result(); s != "" {
			var cached rules.ZoneRule
			if err := json.Unmarshal([]byte(s), &cached); err == nil {
				metrics.RedisHitsTotal.Inc()
				return &cached, nil
			}
		}
		metrics.RedisMissesTotal.Inc()
	}
	rule, err := src.Resolve(ctx, zone, use)
	if err != nil {
		return nil, err
	}
	if rc != nil && ttl > 0 {
		if b, err := json.Marshal(rule); err == nil {
			rc.Set(ctx, key, string(b), ttl)
		}
	}
	return rule, nil
}

func ruleCacheTTL() time.Duration {
	if s := os.Getenv("RULE_CACHE_TTL_S"); s != "" {
		if n, e := strconv.Atoi(s); e == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return 0
}

func queryFloat(r *http.Request, name string) (float64, bool, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, fmt.Errorf("invalid %s", name)
	}
	return v, true, nil
}

func queryInt(r *http.Request, name string) (int, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return v, nil
}

// BuildRoutes: API mux, mounted under the base path by the entrypoint.
func BuildRoutes(st *store.Store, src rules.Source, rc *redis.Client, zones *zonemap.Index, ways *streets.Index) *http.ServeMux {
	cacheTTL := ruleCacheTTL()
	apiMux := http.NewServeMux()

	apiMux.HandleFunc("/rule", func(w http.ResponseWriter, r *http.Request) {
		t0 := time.Now()
		metrics.RequestsTotal.Inc()
		zone := r.URL.Query().Get("zone")
		use := r.URL.Query().Get("use")
		if use == "" {
			use = rules.UseResUni
		}
		rule, err := cachedResolve(r, src, rc, cacheTTL, zone, use)
		if err != nil {
			if errors.Is(err, rules.ErrNotFound) {
				_ = st.IncrStats(r.Context(), false)
				_ = st.RecordRecent(r.Context(), zone, use, false)
			}
			writeResolveError(w, err, zone, use)
			return
		}
		metrics.RuleHitsTotal.Inc()
		_ = st.IncrStats(r.Context(), true)
		_ = st.RecordRecent(r.Context(), zone, use, true)
		metrics.RequestDurationMs.Observe(float64(time.Since(t0).Milliseconds()))
		writeJSON(w, http.StatusOK, rule)
	})

	apiMux.HandleFunc("/viability", func(w http.ResponseWriter, r *http.Request) {
		metrics.ViabilityRequestsTotal.Inc()
		zone := r.URL.Query().Get("zone")
		use := r.URL.Query().Get("use")
		if use == "" {
			use = rules.UseResUni
		}
		var in viability.Inputs
		var err error
		if in.LotAreaM2, _, err = queryFloat(r, "lot_area"); err == nil {
			if in.FrontageM, _, err = queryFloat(r, "frontage"); err == nil {
				if in.DepthM, _, err = queryFloat(r, "depth"); err == nil {
					if in.GroundAreaM2, _, err = queryFloat(r, "ground_area"); err == nil {
						in.TargetBuiltM2, _, err = queryFloat(r, "target")
					}
				}
			}
		}
		if err == nil {
			if in.Floors, err = queryInt(r, "floors"); err == nil {
				in.Units, err = queryInt(r, "units")
			}
		}
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: err.Error()})
			return
		}

		rule, err := cachedResolve(r, src, rc, cacheTTL, zone, use)
		if err != nil {
			if errors.Is(err, rules.ErrNotFound) {
				_ = st.IncrStats(r.Context(), false)
				_ = st.RecordRecent(r.Context(), zone, use, false)
			}
			writeResolveError(w, err, zone, use)
			return
		}
		metrics.RuleHitsTotal.Inc()
		_ = st.IncrStats(r.Context(), true)
		_ = st.RecordRecent(r.Context(), zone, use, true)

		report, err := viability.Compute(in, rule)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: err.Error()})
			return
		}

		resp := viabilityResponse{Zone: zone, Use: use, Rule: rule, Report: report}

		// Built area for the parking estimate: the stated target, else a
		// conservative 70% of the IA ceiling, else the lot area itself.
		builtArea := in.TargetBuiltM2
		if builtArea <= 0 {
			if report.IaMaxM2 > 0 {
				builtArea = report.IaMaxM2 * 0.7
			} else {
				builtArea = in.LotAreaM2
			}
		}
		if pr, err := st.ParkingRule(r.Context(), use); err == nil {
			res := parking.Calc(pr, builtArea, in.Units)
			resp.Parking = &res
		} else if !errors.Is(err, rules.ErrNotFound) {
			logger.L().Error("parking_rule_error", "use", use, "err", err)
		}

		sr, err := st.SanitaryRule(r.Context(), use)
		if err != nil && !errors.Is(err, rules.ErrNotFound) {
			logger.L().Error("sanitary_rule_error", "use", use, "err", err)
		}
		resp.Sanitary = sanitary.Evaluate(sr, use)

		writeJSON(w, http.StatusOK, resp)
	})

	apiMux.HandleFunc("/zone", func(w http.ResponseWriter, r *http.Request) {
		metrics.ZoneLookupsTotal.Inc()
		lat, okLat, errLat := queryFloat(r, "lat")
		lon, okLon, errLon := queryFloat(r, "lon")
		if errLat != nil || errLon != nil || !okLat || !okLon {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "lat and lon are required"})
			return
		}
		ctx := r.Context()
		cacheKey := fmt.Sprintf("zone:%.4f:%.4f", lat, lon)
		if rc != nil {
			if s, _ := rc.Get(ctx, cacheKey).Result(); s != "" {
				var cached zoneResponse
				if err := json.Unmarshal([]byte(s), &cached); err == nil {
					metrics.RedisHitsTotal.Inc()
					writeJSON(w, http.StatusOK, cached)
					return
				}
			}
			metrics.RedisMissesTotal.Inc()
		}
		resp := zoneResponse{Lat: lat, Lon: lon}
		if sigla, ok := zones.ZoneAt(lat, lon); ok {
			resp.ZoneSigla = sigla
			resp.Found = true
		} else {
			metrics.ZoneMissesTotal.Inc()
		}
		radius := 150.0
		if v, ok, err := queryFloat(r, "radius"); err == nil && ok && v > 0 {
			radius = v
		}
		if hit, ok := ways.Nearest(lat, lon, radius); ok {
			resp.Street = hit
		} else {
			metrics.StreetMissesTotal.Inc()
		}
		logger.L().Debug("zone_lookup", "lat", lat, "lon", lon, "zone", resp.ZoneSigla, "found", resp.Found)
		if rc != nil {
			if b, err := json.Marshal(resp); err == nil {
				rc.Set(ctx, cacheKey, string(b), time.Hour)
			}
		}
		writeJSON(w, http.StatusOK, resp)
	})

	apiMux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		t, _ := st.GetTotals(r.Context())
		writeJSON(w, http.StatusOK, statsResponse{Total: t.Total, Today: t.Today, Misses: t.TotalMisses})
	})

	return apiMux
}
