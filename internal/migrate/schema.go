package migrate

import (
	"database/sql"

	"zoning-api/internal/logger"
)

// EnsureSchema: create the tables and indexes the service reads on first run.
// IF NOT EXISTS keeps this safe against an existing consolidated database;
// only the minimum required structure is created. The zone_rules content
// itself is owned by the external rule process (or the seed importer); the
// service never mutates rule rows outside the admin tooling.
func EnsureSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS zone_rules (
            zone_sigla TEXT NOT NULL,
            use_type_code TEXT NOT NULL,
            to_max_pct DOUBLE PRECISION NOT NULL,
            tp_min_pct DOUBLE PRECISION NOT NULL,
            ia_max DOUBLE PRECISION NOT NULL,
            recuo_frontal_m DOUBLE PRECISION NOT NULL,
            recuo_lateral_m DOUBLE PRECISION NOT NULL,
            recuo_fundos_m DOUBLE PRECISION NOT NULL,
            max_height_m DOUBLE PRECISION,
            allow_attach_one_side BOOLEAN NOT NULL DEFAULT FALSE,
            notes TEXT NOT NULL DEFAULT '',
            updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
            PRIMARY KEY (zone_sigla, use_type_code)
        )`,
		`CREATE TABLE IF NOT EXISTS parking_rules (
            use_type_code TEXT PRIMARY KEY,
            rule_type TEXT NOT NULL,
            ratio_m2 DOUBLE PRECISION NOT NULL DEFAULT 0,
            slots_per_unit DOUBLE PRECISION NOT NULL DEFAULT 0,
            fixed_slots DOUBLE PRECISION NOT NULL DEFAULT 0,
            min_slots DOUBLE PRECISION NOT NULL DEFAULT 0,
            rounding TEXT NOT NULL DEFAULT 'ceil'
        )`,
		`CREATE TABLE IF NOT EXISTS sanitary_rules (
            use_type_code TEXT PRIMARY KEY,
            requirement TEXT NOT NULL,
            notes TEXT NOT NULL DEFAULT ''
        )`,
		`CREATE TABLE IF NOT EXISTS zr_stats_total (
            id INT PRIMARY KEY,
            total_queries BIGINT NOT NULL DEFAULT 0,
            total_misses BIGINT NOT NULL DEFAULT 0
        )`,
		`CREATE TABLE IF NOT EXISTS zr_stats_daily (
            day DATE PRIMARY KEY,
            queries BIGINT NOT NULL DEFAULT 0,
            misses BIGINT NOT NULL DEFAULT 0
        )`,
		`INSERT INTO zr_stats_total(id, total_queries, total_misses)
         VALUES(1, 0, 0)
         ON CONFLICT (id) DO NOTHING`,
		`CREATE TABLE IF NOT EXISTS zr_recent_queries (
            zone_sigla TEXT NOT NULL,
            use_type_code TEXT NOT NULL,
            hit BOOLEAN NOT NULL,
            last_seen TIMESTAMPTZ NOT NULL DEFAULT now(),
            queries BIGINT NOT NULL DEFAULT 1,
            PRIMARY KEY (zone_sigla, use_type_code)
        )`,
	}
	for i, s := range stmts {
		logger.L().Debug("schema_exec", "idx", i)
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	logger.L().Debug("schema_done")
	return nil
}
