package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"zoning-api/internal/rules"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return AttachDB(db), mock
}

var ruleCols = []string{
	"zone_sigla", "use_type_code", "to_max_pct", "tp_min_pct", "ia_max",
	"recuo_frontal_m", "recuo_lateral_m", "recuo_fundos_m",
	"max_height_m", "allow_attach_one_side", "notes",
}

func TestResolveHit(t *testing.T) {
	st, mock := newMockStore(t)
	mock.ExpectQuery("SELECT (.+) FROM zone_rules WHERE zone_sigla=(.+)").
		WithArgs("ZR-3", "RES_UNI").
		WillReturnRows(sqlmock.NewRows(ruleCols).
			AddRow("ZR-3", "RES_UNI", 60.0, 20.0, 1.5, 5.0, 1.5, 3.0, nil, true, ""))

	r, err := st.Resolve(context.Background(), "ZR-3", "RES_UNI")
	require.NoError(t, err)
	assert.Equal(t, "ZR-3", r.ZoneSigla)
	assert.Equal(t, "RES_UNI", r.UseTypeCode)
	assert.Equal(t, 60.0, r.ToMaxPct)
	assert.Equal(t, 1.5, r.IaMax)
	assert.True(t, r.AllowAttachOneSide)
	assert.Nil(t, r.MaxHeightM)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveMaxHeight(t *testing.T) {
	st, mock := newMockStore(t)
	mock.ExpectQuery("SELECT (.+) FROM zone_rules").
		WithArgs("ZR-3", "RES_MULTI").
		WillReturnRows(sqlmock.NewRows(ruleCols).
			AddRow("ZR-3", "RES_MULTI", 60.0, 20.0, 2.0, 5.0, 2.5, 3.0, 15.0, false, ""))

	r, err := st.Resolve(context.Background(), "ZR-3", "RES_MULTI")
	require.NoError(t, err)
	require.NotNil(t, r.MaxHeightM)
	assert.Equal(t, 15.0, *r.MaxHeightM)
}

func TestResolveMiss(t *testing.T) {
	st, mock := newMockStore(t)
	mock.ExpectQuery("SELECT (.+) FROM zone_rules").
		WithArgs("ZR-9", "RES_UNI").
		WillReturnError(sql.ErrNoRows)

	_, err := st.Resolve(context.Background(), "ZR-9", "RES_UNI")
	assert.ErrorIs(t, err, rules.ErrNotFound)
}

func TestResolveEmptyKey(t *testing.T) {
	st, _ := newMockStore(t)
	_, err := st.Resolve(context.Background(), "", "RES_UNI")
	assert.ErrorIs(t, err, rules.ErrEmptyKey)
	_, err = st.Resolve(context.Background(), "ZR-3", "")
	assert.ErrorIs(t, err, rules.ErrEmptyKey)
}

func TestResolveQueryError(t *testing.T) {
	st, mock := newMockStore(t)
	boom := errors.New("connection refused")
	mock.ExpectQuery("SELECT (.+) FROM zone_rules").
		WithArgs("ZR-3", "RES_UNI").
		WillReturnError(boom)

	_, err := st.Resolve(context.Background(), "ZR-3", "RES_UNI")
	require.Error(t, err)
	assert.NotErrorIs(t, err, rules.ErrNotFound)
	assert.ErrorIs(t, err, boom)
}

func TestUpsertRule(t *testing.T) {
	st, mock := newMockStore(t)
	mock.ExpectExec("INSERT INTO zone_rules").
		WithArgs("ZR-3", "RES_UNI", 60.0, 20.0, 1.5, 5.0, 1.5, 3.0, nil, true, "").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := st.UpsertRule(context.Background(), &rules.ZoneRule{
		ZoneSigla: "ZR-3", UseTypeCode: "RES_UNI",
		ToMaxPct: 60, TpMinPct: 20, IaMax: 1.5,
		RecuoFrontalM: 5, RecuoLateralM: 1.5, RecuoFundosM: 3,
		AllowAttachOneSide: true,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertRuleEmptyKey(t *testing.T) {
	st, _ := newMockStore(t)
	err := st.UpsertRule(context.Background(), &rules.ZoneRule{ZoneSigla: "ZR-3"})
	assert.ErrorIs(t, err, rules.ErrEmptyKey)
}

func TestParkingRule(t *testing.T) {
	st, mock := newMockStore(t)
	cols := []string{"use_type_code", "rule_type", "ratio_m2", "slots_per_unit", "fixed_slots", "min_slots", "rounding"}
	mock.ExpectQuery("SELECT (.+) FROM parking_rules").
		WithArgs("RES_MULTI").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("RES_MULTI", "per_unit", 0.0, 1.0, 0.0, 1.0, "ceil"))

	p, err := st.ParkingRule(context.Background(), "RES_MULTI")
	require.NoError(t, err)
	assert.Equal(t, "per_unit", p.RuleType)
	assert.Equal(t, 1.0, p.SlotsPerUnit)
}

func TestParkingRuleMiss(t *testing.T) {
	st, mock := newMockStore(t)
	mock.ExpectQuery("SELECT (.+) FROM parking_rules").
		WithArgs("IND_1").
		WillReturnError(sql.ErrNoRows)
	_, err := st.ParkingRule(context.Background(), "IND_1")
	assert.ErrorIs(t, err, rules.ErrNotFound)
}

func TestSanitaryRuleMiss(t *testing.T) {
	st, mock := newMockStore(t)
	mock.ExpectQuery("SELECT (.+) FROM sanitary_rules").
		WithArgs("RES_UNI").
		WillReturnError(sql.ErrNoRows)
	_, err := st.SanitaryRule(context.Background(), "RES_UNI")
	assert.ErrorIs(t, err, rules.ErrNotFound)
}

func TestGetTotals(t *testing.T) {
	st, mock := newMockStore(t)
	mock.ExpectQuery("SELECT total_queries, total_misses FROM zr_stats_total").
		WillReturnRows(sqlmock.NewRows([]string{"total_queries", "total_misses"}).AddRow(42, 7))
	mock.ExpectQuery("SELECT queries FROM zr_stats_daily").
		WillReturnRows(sqlmock.NewRows([]string{"queries"}).AddRow(5))

	tt, err := st.GetTotals(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(42), tt.Total)
	assert.Equal(t, int64(7), tt.TotalMisses)
	assert.Equal(t, int64(5), tt.Today)
}

func TestFetchRecentMisses(t *testing.T) {
	st, mock := newMockStore(t)
	mock.ExpectQuery("SELECT zone_sigla, use_type_code").
		WithArgs(24, 100).
		WillReturnRows(sqlmock.NewRows([]string{"zone_sigla", "use_type_code"}).
			AddRow("ZR-9", "RES_UNI").
			AddRow("ZE", "RES_MULTI"))

	out, err := st.FetchRecentMisses(context.Background(), 24, 100)
	require.NoError(t, err)
	assert.Equal(t, []string{"ZR-9/RES_UNI", "ZE/RES_MULTI"}, out)
}
