package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateKey(t *testing.T) {
	assert.NoError(t, ValidateKey("ZR-3", "RES_UNI"))
	assert.ErrorIs(t, ValidateKey("", "RES_UNI"), ErrEmptyKey)
	assert.ErrorIs(t, ValidateKey("ZR-3", ""), ErrEmptyKey)
	assert.ErrorIs(t, ValidateKey("", ""), ErrEmptyKey)

	// Matching is exact: casing and whitespace are the caller's problem and
	// never normalized here.
	assert.NoError(t, ValidateKey("zr-3 ", "res_uni"))
}
