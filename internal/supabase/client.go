// Package supabase: zone-rule source over the Supabase PostgREST API.
// Kept interchangeable with the Postgres store so deployments that only hold
// the consolidated tables in Supabase need no direct database credential.
package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"zoning-api/internal/logger"
	"zoning-api/internal/metrics"
	"zoning-api/internal/rules"
)

const selectColumns = "zone_sigla,use_type_code,to_max_pct,tp_min_pct,ia_max," +
	"recuo_frontal_m,recuo_lateral_m,recuo_fundos_m,max_height_m,allow_attach_one_side,notes"

// Client: REST access to the zone_rules table. The anon key goes in both the
// apikey header and the bearer token, as PostgREST expects.
type Client struct {
	baseURL string
	anonKey string
	http    *http.Client
}

// New: client from explicit endpoint and key; hc may be nil for a default
// 5s-timeout client.
func New(baseURL, anonKey string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 5 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), anonKey: anonKey, http: hc}
}

// NewFromEnv: client from SUPABASE_URL / SUPABASE_ANON_KEY. Both are required
// to connect; the error names the missing variables so the operator can fix
// the secret configuration directly.
func NewFromEnv() (*Client, error) {
	u := strings.TrimSpace(os.Getenv("SUPABASE_URL"))
	k := strings.TrimSpace(os.Getenv("SUPABASE_ANON_KEY"))
	var missing []string
	if u == "" {
		missing = append(missing, "SUPABASE_URL")
	}
	if k == "" {
		missing = append(missing, "SUPABASE_ANON_KEY")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing supabase secrets: %s", strings.Join(missing, ", "))
	}
	return New(u, k, nil), nil
}

// row: wire shape of one zone_rules record. Required numerics are pointers so
// a null in the table is caught instead of silently becoming zero.
type row struct {
	ZoneSigla          string   `json:"zone_sigla"`
	UseTypeCode        string   `json:"use_type_code"`
	ToMaxPct           *float64 `json:"to_max_pct"`
	TpMinPct           *float64 `json:"tp_min_pct"`
	IaMax              *float64 `json:"ia_max"`
	RecuoFrontalM      *float64 `json:"recuo_frontal_m"`
	RecuoLateralM      *float64 `json:"recuo_lateral_m"`
	RecuoFundosM       *float64 `json:"recuo_fundos_m"`
	MaxHeightM         *float64 `json:"max_height_m"`
	AllowAttachOneSide *bool    `json:"allow_attach_one_side"`
	Notes              *string  `json:"notes"`
}

// Resolve: exact-match lookup through PostgREST. A 200 with an empty array is
// an authoritative miss (rules.ErrNotFound); any transport or status failure
// is returned as an error so the caller never mistakes an outage for a miss.
func (c *Client) Resolve(ctx context.Context, zoneSigla, useTypeCode string) (*rules.ZoneRule, error) {
	if err := rules.ValidateKey(zoneSigla, useTypeCode); err != nil {
		return nil, err
	}
	q := url.Values{}
	q.Set("select", selectColumns)
	q.Set("zone_sigla", "eq."+zoneSigla)
	q.Set("use_type_code", "eq."+useTypeCode)
	q.Set("limit", "1")
	u := c.baseURL + "/rest/v1/zone_rules?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("authorization", "Bearer "+c.anonKey)
	req.Header.Set("accept", "application/json")

	t0 := time.Now()
	metrics.SupabaseRequestsTotal.Inc()
	logger.L().Debug("supabase_req", "zone", zoneSigla, "use", useTypeCode)
	resp, err := c.http.Do(req)
	if err != nil {
		logger.L().Error("supabase_http_error", "err", err)
		metrics.SupabaseFailTotal.Inc()
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		logger.L().Error("supabase_status_error", "status", resp.StatusCode)
		metrics.SupabaseFailTotal.Inc()
		return nil, fmt.Errorf("supabase status %d", resp.StatusCode)
	}
	var rows []row
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		logger.L().Error("supabase_decode_error", "err", err)
		metrics.SupabaseFailTotal.Inc()
		return nil, err
	}
	dur := time.Since(t0).Milliseconds()
	metrics.SupabaseDurationMs.Observe(float64(dur))
	if len(rows) == 0 {
		logger.L().Debug("supabase_miss", "zone", zoneSigla, "use", useTypeCode, "duration_ms", dur)
		return nil, rules.ErrNotFound
	}
	r, err := rows[0].toRule()
	if err != nil {
		metrics.SupabaseFailTotal.Inc()
		return nil, err
	}
	logger.L().Debug("supabase_hit", "zone", r.ZoneSigla, "use", r.UseTypeCode, "duration_ms", dur)
	return r, nil
}

func (w row) toRule() (*rules.ZoneRule, error) {
	req := map[string]*float64{
		"to_max_pct":      w.ToMaxPct,
		"tp_min_pct":      w.TpMinPct,
		"ia_max":          w.IaMax,
		"recuo_frontal_m": w.RecuoFrontalM,
		"recuo_lateral_m": w.RecuoLateralM,
		"recuo_fundos_m":  w.RecuoFundosM,
	}
	for name, v := range req {
		if v == nil {
			return nil, errors.New("required zone_rules field is null: " + name)
		}
	}
	r := &rules.ZoneRule{
		ZoneSigla:     w.ZoneSigla,
		UseTypeCode:   w.UseTypeCode,
		ToMaxPct:      *w.ToMaxPct,
		TpMinPct:      *w.TpMinPct,
		IaMax:         *w.IaMax,
		RecuoFrontalM: *w.RecuoFrontalM,
		RecuoLateralM: *w.RecuoLateralM,
		RecuoFundosM:  *w.RecuoFundosM,
		MaxHeightM:    w.MaxHeightM,
	}
	if w.AllowAttachOneSide != nil {
		r.AllowAttachOneSide = *w.AllowAttachOneSide
	}
	if w.Notes != nil {
		r.Notes = *w.Notes
	}
	return r, nil
}
