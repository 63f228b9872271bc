package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "zoning_requests_total",
		Help: "Total number of /api/rule requests",
	})
	RequestDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "zoning_request_duration_ms",
		Help:    "Request duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
	})
	RuleHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "zoning_rule_hits_total",
		Help: "Total rule lookups that matched a row",
	})
	RuleMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "zoning_rule_misses_total",
		Help: "Total rule lookups with no matching row",
	})
	SourceErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "zoning_source_errors_total",
		Help: "Total rule lookups that failed to reach the rule source",
	})
	RedisHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "zoning_redis_hits_total",
		Help: "Total redis cache hits",
	})
	RedisMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "zoning_redis_misses_total",
		Help: "Total redis cache misses",
	})
	SupabaseRequestsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "zoning_supabase_requests_total",
		Help: "Total Supabase REST requests",
	})
	SupabaseFailTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "zoning_supabase_fail_total",
		Help: "Total Supabase REST failures",
	})
	SupabaseDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "zoning_supabase_duration_ms",
		Help:    "Supabase REST call duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
	})
	ViabilityRequestsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "zoning_viability_requests_total",
		Help: "Total /api/viability requests",
	})
	ZoneLookupsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "zoning_zone_lookups_total",
		Help: "Total /api/zone point-in-polygon lookups",
	})
	ZoneMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "zoning_zone_misses_total",
		Help: "Total coordinate lookups outside every zone polygon",
	})
	StreetMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "zoning_street_misses_total",
		Help: "Total street searches with nothing inside the radius",
	})
)

func init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(RequestDurationMs)
	prometheus.MustRegister(RuleHitsTotal)
	prometheus.MustRegister(RuleMissesTotal)
	prometheus.MustRegister(SourceErrorsTotal)
	prometheus.MustRegister(RedisHitsTotal)
	prometheus.MustRegister(RedisMissesTotal)
	prometheus.MustRegister(SupabaseRequestsTotal)
	prometheus.MustRegister(SupabaseFailTotal)
	prometheus.MustRegister(SupabaseDurationMs)
	prometheus.MustRegister(ViabilityRequestsTotal)
	prometheus.MustRegister(ZoneLookupsTotal)
	prometheus.MustRegister(ZoneMissesTotal)
	prometheus.MustRegister(StreetMissesTotal)
}

// Handler: the Prometheus scrape endpoint, mounted by the entrypoint.
func Handler() http.Handler { return promhttp.Handler() }
