package viability

import (
	"testing"

	"zoning-api/internal/rules"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func zr3ResUni() *rules.ZoneRule {
	return &rules.ZoneRule{
		ZoneSigla:          "ZR-3",
		UseTypeCode:        rules.UseResUni,
		ToMaxPct:           60,
		TpMinPct:           20,
		IaMax:              1.5,
		RecuoFrontalM:      5,
		RecuoLateralM:      1.5,
		RecuoFundosM:       3,
		AllowAttachOneSide: true,
	}
}

func TestFraction(t *testing.T) {
	assert.Equal(t, 0.6, Fraction(60))
	assert.Equal(t, 0.6, Fraction(0.6))
	assert.Equal(t, 1.5, Fraction(1.5))
	assert.Equal(t, 0.016, Fraction(1.6))
	assert.Equal(t, 0.0, Fraction(0))
}

func TestComputeStandardLot(t *testing.T) {
	in := Inputs{LotAreaM2: 360, FrontageM: 12, DepthM: 30}
	rep, err := Compute(in, zr3ResUni())
	require.NoError(t, err)

	assert.InDelta(t, 60.0, rep.ToMaxPct, 1e-9)
	assert.InDelta(t, 20.0, rep.TpMinPct, 1e-9)
	assert.InDelta(t, 216.0, rep.ToMaxM2, 1e-9)
	assert.InDelta(t, 72.0, rep.TpMinM2, 1e-9)
	assert.InDelta(t, 540.0, rep.IaMaxM2, 1e-9)

	// Standard: (12 - 2*1.5) x (30 - 5 - 3) = 9 x 22
	assert.InDelta(t, 198.0, rep.Standard.BuildableM2, 1e-9)
	assert.InDelta(t, 198.0, rep.Standard.MaxGroundM2, 1e-9)

	// One-side attach: (12 - 1.5) x 22
	require.NotNil(t, rep.OneSideAttach)
	assert.InDelta(t, 231.0, rep.OneSideAttach.BuildableM2, 1e-9)
	assert.InDelta(t, 216.0, rep.OneSideAttach.MaxGroundM2, 1e-9)
}

func TestComputeNoAttachOption(t *testing.T) {
	r := zr3ResUni()
	r.AllowAttachOneSide = false
	rep, err := Compute(Inputs{LotAreaM2: 360, FrontageM: 12, DepthM: 30}, r)
	require.NoError(t, err)
	assert.Nil(t, rep.OneSideAttach)
}

func TestComputeFractionConvention(t *testing.T) {
	r := zr3ResUni()
	r.ToMaxPct = 0.6
	r.TpMinPct = 0.2
	rep, err := Compute(Inputs{LotAreaM2: 360}, r)
	require.NoError(t, err)
	assert.InDelta(t, 216.0, rep.ToMaxM2, 1e-9)
	assert.InDelta(t, 72.0, rep.TpMinM2, 1e-9)
}

func TestComputeTargetByIA(t *testing.T) {
	r := zr3ResUni()
	in := Inputs{LotAreaM2: 360, TargetBuiltM2: 540}
	rep, err := Compute(in, r)
	require.NoError(t, err)
	require.NotNil(t, rep.TargetOKByIA)
	assert.True(t, *rep.TargetOKByIA)

	in.TargetBuiltM2 = 540.1
	rep, err = Compute(in, r)
	require.NoError(t, err)
	require.NotNil(t, rep.TargetOKByIA)
	assert.False(t, *rep.TargetOKByIA)

	in.TargetBuiltM2 = 0
	rep, err = Compute(in, r)
	require.NoError(t, err)
	assert.Nil(t, rep.TargetOKByIA)
}

func TestComputeHeightCheck(t *testing.T) {
	r := zr3ResUni()
	h := 9.0
	r.MaxHeightM = &h

	rep, err := Compute(Inputs{LotAreaM2: 360, Floors: 3}, r)
	require.NoError(t, err)
	assert.InDelta(t, 9.0, rep.EstHeightM, 1e-9)
	require.NotNil(t, rep.HeightOK)
	assert.True(t, *rep.HeightOK)

	rep, err = Compute(Inputs{LotAreaM2: 360, Floors: 4}, r)
	require.NoError(t, err)
	require.NotNil(t, rep.HeightOK)
	assert.False(t, *rep.HeightOK)

	// No max height in the rule: estimate only, no verdict.
	r.MaxHeightM = nil
	rep, err = Compute(Inputs{LotAreaM2: 360, Floors: 2}, r)
	require.NoError(t, err)
	assert.InDelta(t, 6.0, rep.EstHeightM, 1e-9)
	assert.Nil(t, rep.HeightOK)

	// No floors informed: no estimate.
	rep, err = Compute(Inputs{LotAreaM2: 360}, r)
	require.NoError(t, err)
	assert.Zero(t, rep.EstHeightM)
	assert.Nil(t, rep.HeightOK)
}

func TestComputeGroundAreaCheck(t *testing.T) {
	r := zr3ResUni()
	rep, err := Compute(Inputs{LotAreaM2: 360, GroundAreaM2: 216}, r)
	require.NoError(t, err)
	assert.True(t, rep.GroundAreaOK)

	rep, err = Compute(Inputs{LotAreaM2: 360, GroundAreaM2: 216.5}, r)
	require.NoError(t, err)
	assert.False(t, rep.GroundAreaOK)
}

func TestComputeSetbacksExceedLot(t *testing.T) {
	// 4 m frontage minus 3 m of lateral setbacks still leaves width, but a
	// 6 m depth is fully consumed by front plus back.
	rep, err := Compute(Inputs{LotAreaM2: 24, FrontageM: 4, DepthM: 6}, zr3ResUni())
	require.NoError(t, err)
	assert.Zero(t, rep.Standard.BuildableM2)
}

func TestComputeUnknownDimensions(t *testing.T) {
	rep, err := Compute(Inputs{LotAreaM2: 360}, zr3ResUni())
	require.NoError(t, err)
	assert.Zero(t, rep.Standard.BuildableM2)
	assert.InDelta(t, 216.0, rep.ToMaxM2, 1e-9)
}

func TestComputeBadLotArea(t *testing.T) {
	_, err := Compute(Inputs{LotAreaM2: 0}, zr3ResUni())
	assert.ErrorIs(t, err, ErrBadLotArea)
	_, err = Compute(Inputs{LotAreaM2: -10}, zr3ResUni())
	assert.ErrorIs(t, err, ErrBadLotArea)
}
