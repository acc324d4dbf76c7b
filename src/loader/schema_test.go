package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDocument(t *testing.T) {
	ok := map[string]any{
		"env":     map[string]any{"node": true},
		"extends": "./base",
		"rules": map[string]any{
			"semi":   "Error",
			"eqeqeq": int64(2),
			"quotes": []any{"warn", "single"},
		},
		"overrides": []any{
			map[string]any{"files": []any{"*.ts"}, "excludedFiles": "*.d.ts"},
		},
	}
	assert.NoError(t, ValidateDocument(ok))

	err := ValidateDocument(map[string]any{
		"rules":     map[string]any{"semi": []any{}},
		"overrides": []any{map[string]any{"files": 3}},
	})
	var serr *SchemaError
	require.ErrorAs(t, err, &serr)
	assert.NotEmpty(t, serr.Problems)
}

func TestValidateDocumentNotJSON(t *testing.T) {
	err := ValidateDocument(map[string]any{"parserOptions": map[any]any{1: "x"}})
	assert.ErrorContains(t, err, "not JSON-compatible")
}

func TestJSONPointerToPath(t *testing.T) {
	assert.Equal(t, "(root)", jsonPointerToPath(""))
	assert.Equal(t, "overrides[0].files", jsonPointerToPath("/overrides/0/files"))
	assert.Equal(t, "rules.mocha/no-exclusive-tests", jsonPointerToPath("/rules/mocha~1no-exclusive-tests"))
}
