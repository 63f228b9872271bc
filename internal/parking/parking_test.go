package parking

import (
	"testing"

	"zoning-api/internal/rules"

	"github.com/stretchr/testify/assert"
)

func TestCalcPerM2(t *testing.T) {
	r := &rules.ParkingRule{UseTypeCode: "COM_LOCAL", RuleType: "per_m2", RatioM2: 50, MinSlots: 1}
	res := Calc(r, 180, 0)
	assert.Equal(t, 4, res.Slots) // ceil(3.6)
	assert.Equal(t, "per_m2", res.RuleType)
}

func TestCalcPerM2RoundingModes(t *testing.T) {
	r := &rules.ParkingRule{RuleType: "per_m2", RatioM2: 50, Rounding: "floor"}
	assert.Equal(t, 3, Calc(r, 180, 0).Slots)
	r.Rounding = "round"
	assert.Equal(t, 4, Calc(r, 180, 0).Slots)
	r.Rounding = "ceil"
	assert.Equal(t, 4, Calc(r, 180, 0).Slots)
}

func TestCalcPerUnit(t *testing.T) {
	r := &rules.ParkingRule{UseTypeCode: rules.UseResMulti, RuleType: "per_unit", SlotsPerUnit: 1.5, MinSlots: 1}
	res := Calc(r, 600, 8)
	assert.Equal(t, 12, res.Slots)
	assert.False(t, res.UnitsEstimated)
}

func TestCalcPerUnitEstimatesUnits(t *testing.T) {
	r := &rules.ParkingRule{RuleType: "per_unit", SlotsPerUnit: 1, MinSlots: 1}
	res := Calc(r, 600, 0)
	assert.Equal(t, 10, res.Units) // 600 / 60
	assert.True(t, res.UnitsEstimated)
	assert.Equal(t, 10, res.Slots)
}

func TestCalcPerUnitTinyAreaStillOneUnit(t *testing.T) {
	r := &rules.ParkingRule{RuleType: "per_unit", SlotsPerUnit: 1}
	res := Calc(r, 10, 0)
	assert.Equal(t, 1, res.Units)
	assert.True(t, res.UnitsEstimated)
}

func TestCalcFixed(t *testing.T) {
	r := &rules.ParkingRule{UseTypeCode: rules.UseResUni, RuleType: "fixed", FixedSlots: 1, MinSlots: 1}
	assert.Equal(t, 1, Calc(r, 5000, 0).Slots)
}

func TestCalcMinSlotsFloor(t *testing.T) {
	r := &rules.ParkingRule{RuleType: "per_m2", RatioM2: 100, MinSlots: 2}
	assert.Equal(t, 2, Calc(r, 80, 0).Slots)
}

func TestCalcUnknownRuleTypeFallsBackToRatio(t *testing.T) {
	r := &rules.ParkingRule{RuleType: "mystery", RatioM2: 50}
	assert.Equal(t, 4, Calc(r, 180, 0).Slots)
}
