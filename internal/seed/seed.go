// Package seed: YAML rule-book importer. Runs once at startup when enabled;
// every row upserts, so re-running against an already seeded database is safe.
package seed

import (
	"context"
	"fmt"
	"os"

	"zoning-api/internal/logger"
	"zoning-api/internal/rules"
	"zoning-api/internal/store"

	"gopkg.in/yaml.v3"
)

// File: on-disk rule book. Sections are independent; an empty section is fine.
type File struct {
	Rules    []rules.ZoneRule     `yaml:"rules"`
	Parking  []rules.ParkingRule  `yaml:"parking"`
	Sanitary []rules.SanitaryRule `yaml:"sanitary"`
}

func Load(path string) (*File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return &f, nil
}

// Import: upsert every row. Stops on the first database error so a broken
// connection does not spam; a single invalid rule row is skipped and logged.
func Import(ctx context.Context, st *store.Store, f *File) error {
	var imported int
	for i := range f.Rules {
		r := &f.Rules[i]
		if err := rules.ValidateKey(r.ZoneSigla, r.UseTypeCode); err != nil {
			logger.L().Warn("seed_rule_skipped", "index", i, "err", err)
			continue
		}
		if err := st.UpsertRule(ctx, r); err != nil {
			return fmt.Errorf("seed rule %s/%s: %w", r.ZoneSigla, r.UseTypeCode, err)
		}
		imported++
	}
	for i := range f.Parking {
		if err := st.UpsertParkingRule(ctx, &f.Parking[i]); err != nil {
			return fmt.Errorf("seed parking %s: %w", f.Parking[i].UseTypeCode, err)
		}
	}
	for i := range f.Sanitary {
		if err := st.UpsertSanitaryRule(ctx, &f.Sanitary[i]); err != nil {
			return fmt.Errorf("seed sanitary %s: %w", f.Sanitary[i].UseTypeCode, err)
		}
	}
	logger.L().Info("seed_done", "rules", imported, "parking", len(f.Parking), "sanitary", len(f.Sanitary))
	return nil
}

// Run: load and import in one call, for the startup goroutine.
func Run(ctx context.Context, st *store.Store, path string) error {
	f, err := Load(path)
	if err != nil {
		return err
	}
	return Import(ctx, st, f)
}
