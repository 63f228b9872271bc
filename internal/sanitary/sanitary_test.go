package sanitary

import (
	"testing"

	"zoning-api/internal/rules"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateExplicitRule(t *testing.T) {
	r := &rules.SanitaryRule{UseTypeCode: "COM_LOCAL", Requirement: "1 per 100 m2", Notes: "annex IV"}
	res := Evaluate(r, "COM_LOCAL")
	assert.True(t, res.Applicable)
	assert.Equal(t, "1 per 100 m2", res.Requirement)
	assert.Equal(t, "annex IV", res.Notes)
}

func TestEvaluateResidentialWithoutRow(t *testing.T) {
	res := Evaluate(nil, rules.UseResUni)
	assert.False(t, res.Applicable)
	assert.NotEmpty(t, res.Notes)

	res = Evaluate(nil, rules.UseResMulti)
	assert.False(t, res.Applicable)
}

func TestEvaluateOtherUseWithoutRow(t *testing.T) {
	res := Evaluate(nil, "IND_1")
	assert.False(t, res.Applicable)
	assert.Empty(t, res.Notes)
}
