// Package store: data access layer over PostgreSQL for zone rules, parking
// and sanitary tables, plus query statistics.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"zoning-api/internal/logger"
	"zoning-api/internal/rules"

	_ "github.com/lib/pq"
)

// Store: database entry point; holds the pool and exposes lookup, admin and
// stats operations.
type Store struct {
	db *sql.DB
}

func AttachDB(db *sql.DB) *Store { return &Store{db: db} }

// Open: open a connection with pool settings from the DSN.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

const ruleColumns = `zone_sigla, use_type_code, to_max_pct, tp_min_pct, ia_max,
        recuo_frontal_m, recuo_lateral_m, recuo_fundos_m,
        max_height_m, allow_attach_one_side, notes`

func scanRule(row *sql.Row) (*rules.ZoneRule, error) {
	var r rules.ZoneRule
	var maxHeight sql.NullFloat64
	err := row.Scan(&r.ZoneSigla, &r.UseTypeCode, &r.ToMaxPct, &r.TpMinPct, &r.IaMax,
		&r.RecuoFrontalM, &r.RecuoLateralM, &r.RecuoFundosM,
		&maxHeight, &r.AllowAttachOneSide, &r.Notes)
	if err != nil {
		return nil, err
	}
	if maxHeight.Valid {
		v := maxHeight.Float64
		r.MaxHeightM = &v
	}
	return &r, nil
}

// Resolve: exact-match lookup by (zone_sigla, use_type_code). Returns the
// unique matching rule, rules.ErrNotFound when no row matches, or a wrapped
// query error when the database cannot be reached. A miss is authoritative;
// no fallback row is ever substituted.
func (s *Store) Resolve(ctx context.Context, zoneSigla, useTypeCode string) (*rules.ZoneRule, error) {
	if err := rules.ValidateKey(zoneSigla, useTypeCode); err != nil {
		return nil, err
	}
	logger.L().Debug("rule_lookup_begin", "zone", zoneSigla, "use", useTypeCode)
	row := s.db.QueryRowContext(ctx,
		`SELECT `+ruleColumns+` FROM zone_rules WHERE zone_sigla=$1 AND use_type_code=$2 LIMIT 1`,
		zoneSigla, useTypeCode)
	r, err := scanRule(row)
	if errors.Is(err, sql.ErrNoRows) {
		logger.L().Debug("rule_lookup_miss", "zone", zoneSigla, "use", useTypeCode)
		return nil, rules.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("zone_rules query: %w", err)
	}
	logger.L().Debug("rule_lookup_hit", "zone", r.ZoneSigla, "use", r.UseTypeCode)
	return r, nil
}

// UpsertRule: insert or replace a rule row. Used by the seed importer and the
// admin CLI only; the serving path never writes zone_rules.
func (s *Store) UpsertRule(ctx context.Context, r *rules.ZoneRule) error {
	if err := rules.ValidateKey(r.ZoneSigla, r.UseTypeCode); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO zone_rules
        (zone_sigla, use_type_code, to_max_pct, tp_min_pct, ia_max,
         recuo_frontal_m, recuo_lateral_m, recuo_fundos_m,
         max_height_m, allow_attach_one_side, notes)
        VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        ON CONFLICT (zone_sigla, use_type_code) DO UPDATE SET
            to_max_pct=EXCLUDED.to_max_pct,
            tp_min_pct=EXCLUDED.tp_min_pct,
            ia_max=EXCLUDED.ia_max,
            recuo_frontal_m=EXCLUDED.recuo_frontal_m,
            recuo_lateral_m=EXCLUDED.recuo_lateral_m,
            recuo_fundos_m=EXCLUDED.recuo_fundos_m,
            max_height_m=EXCLUDED.max_height_m,
            allow_attach_one_side=EXCLUDED.allow_attach_one_side,
            notes=EXCLUDED.notes,
            updated_at=now()`,
		r.ZoneSigla, r.UseTypeCode, r.ToMaxPct, r.TpMinPct, r.IaMax,
		r.RecuoFrontalM, r.RecuoLateralM, r.RecuoFundosM,
		nullableFloat(r.MaxHeightM), r.AllowAttachOneSide, r.Notes)
	return err
}

func nullableFloat(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

func (s *Store) DeleteRule(ctx context.Context, zoneSigla, useTypeCode string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM zone_rules WHERE zone_sigla=$1 AND use_type_code=$2`,
		zoneSigla, useTypeCode)
	return err
}

// ListRules: rules for one zone (or all zones when empty), most recently
// updated first. Admin CLI helper.
func (s *Store) ListRules(ctx context.Context, zoneSigla string, limit int) ([]rules.ZoneRule, error) {
	if limit <= 0 {
		limit = 50
	}
	q := `SELECT ` + ruleColumns + ` FROM zone_rules ORDER BY updated_at DESC LIMIT $1`
	args := []any{limit}
	if zoneSigla != "" {
		q = `SELECT ` + ruleColumns + ` FROM zone_rules WHERE zone_sigla=$1 ORDER BY updated_at DESC LIMIT $2`
		args = []any{zoneSigla, limit}
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []rules.ZoneRule
	for rows.Next() {
		var r rules.ZoneRule
		var maxHeight sql.NullFloat64
		if err := rows.Scan(&r.ZoneSigla, &r.UseTypeCode, &r.ToMaxPct, &r.TpMinPct, &r.IaMax,
			&r.RecuoFrontalM, &r.RecuoLateralM, &r.RecuoFundosM,
			&maxHeight, &r.AllowAttachOneSide, &r.Notes); err != nil {
			return nil, err
		}
		if maxHeight.Valid {
			v := maxHeight.Float64
			r.MaxHeightM = &v
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ParkingRule: parking requirement for a use type; rules.ErrNotFound on miss.
func (s *Store) ParkingRule(ctx context.Context, useTypeCode string) (*rules.ParkingRule, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT use_type_code, rule_type, ratio_m2, slots_per_unit, fixed_slots, min_slots, rounding
         FROM parking_rules WHERE use_type_code=$1 LIMIT 1`, useTypeCode)
	var p rules.ParkingRule
	err := row.Scan(&p.UseTypeCode, &p.RuleType, &p.RatioM2, &p.SlotsPerUnit, &p.FixedSlots, &p.MinSlots, &p.Rounding)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, rules.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("parking_rules query: %w", err)
	}
	return &p, nil
}

func (s *Store) UpsertParkingRule(ctx context.Context, p *rules.ParkingRule) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO parking_rules
        (use_type_code, rule_type, ratio_m2, slots_per_unit, fixed_slots, min_slots, rounding)
        VALUES($1,$2,$3,$4,$5,$6,$7)
        ON CONFLICT (use_type_code) DO UPDATE SET
            rule_type=EXCLUDED.rule_type, ratio_m2=EXCLUDED.ratio_m2,
            slots_per_unit=EXCLUDED.slots_per_unit, fixed_slots=EXCLUDED.fixed_slots,
            min_slots=EXCLUDED.min_slots, rounding=EXCLUDED.rounding`,
		p.UseTypeCode, p.RuleType, p.RatioM2, p.SlotsPerUnit, p.FixedSlots, p.MinSlots, p.Rounding)
	return err
}

// SanitaryRule: sanitary requirement for a use type; rules.ErrNotFound on miss.
func (s *Store) SanitaryRule(ctx context.Context, useTypeCode string) (*rules.SanitaryRule, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT use_type_code, requirement, notes FROM sanitary_rules WHERE use_type_code=$1 LIMIT 1`,
		useTypeCode)
	var r rules.SanitaryRule
	err := row.Scan(&r.UseTypeCode, &r.Requirement, &r.Notes)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, rules.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sanitary_rules query: %w", err)
	}
	return &r, nil
}

func (s *Store) UpsertSanitaryRule(ctx context.Context, r *rules.SanitaryRule) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO sanitary_rules(use_type_code, requirement, notes)
        VALUES($1,$2,$3)
        ON CONFLICT (use_type_code) DO UPDATE SET
            requirement=EXCLUDED.requirement, notes=EXCLUDED.notes`,
		r.UseTypeCode, r.Requirement, r.Notes)
	return err
}

// IncrStats: bump total and daily counters after a resolve; misses are
// counted separately so calibration can spot zones people ask about but the
// rule book does not cover. Failures are ignored, stats never block lookups.
func (s *Store) IncrStats(ctx context.Context, hit bool) error {
	_, _ = s.db.ExecContext(ctx, "UPDATE zr_stats_total SET total_queries=total_queries+1 WHERE id=1")
	_, _ = s.db.ExecContext(ctx, "INSERT INTO zr_stats_daily(day, queries) VALUES(current_date, 1) ON CONFLICT (day) DO UPDATE SET queries=zr_stats_daily.queries+1")
	if !hit {
		_, _ = s.db.ExecContext(ctx, "UPDATE zr_stats_total SET total_misses=total_misses+1 WHERE id=1")
		_, _ = s.db.ExecContext(ctx, "INSERT INTO zr_stats_daily(day, misses) VALUES(current_date, 1) ON CONFLICT (day) DO UPDATE SET misses=zr_stats_daily.misses+1")
	}
	logger.L().Debug("stats_incr", "hit", hit)
	return nil
}

// Totals: cumulative and daily resolve counts for the stats endpoint.
type Totals struct {
	Total       int64
	Today       int64
	TotalMisses int64
}

func (s *Store) GetTotals(ctx context.Context) (*Totals, error) {
	var t Totals
	row := s.db.QueryRowContext(ctx, "SELECT total_queries, total_misses FROM zr_stats_total WHERE id=1")
	_ = row.Scan(&t.Total, &t.TotalMisses)
	row2 := s.db.QueryRowContext(ctx, "SELECT queries FROM zr_stats_daily WHERE day=current_date")
	_ = row2.Scan(&t.Today)
	logger.L().Debug("stats_totals", "total", t.Total, "today", t.Today)
	return &t, nil
}

// RecordRecent: remember a queried key (deduplicated, counted). Keeps the
// recently requested keys visible for rule-book review; invalid keys are
// skipped silently and the main lookup path is never affected.
func (s *Store) RecordRecent(ctx context.Context, zoneSigla, useTypeCode string, hit bool) error {
	if zoneSigla == "" || useTypeCode == "" {
		return nil
	}
	_, _ = s.db.ExecContext(ctx, `INSERT INTO zr_recent_queries(zone_sigla, use_type_code, hit, last_seen, queries)
        VALUES($1, $2, $3, now(), 1)
        ON CONFLICT (zone_sigla, use_type_code) DO UPDATE SET hit=$3, last_seen=now(), queries=zr_recent_queries.queries+1`,
		zoneSigla, useTypeCode, hit)
	return nil
}

// FetchRecentMisses: keys queried in the last window that found no rule,
// newest first. Input for rule-book calibration.
func (s *Store) FetchRecentMisses(ctx context.Context, hours int, limit int) ([]string, error) {
	if hours <= 0 {
		hours = 24
	}
	if limit <= 0 {
		limit = 1000
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT zone_sigla, use_type_code
        FROM zr_recent_queries
        WHERE hit = FALSE AND last_seen >= now() - make_interval(hours => $1)
        ORDER BY last_seen DESC
        LIMIT $2`, hours, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var z, u string
		if err := rows.Scan(&z, &u); err != nil {
			return nil, err
		}
		out = append(out, z+"/"+u)
	}
	return out, rows.Err()
}
