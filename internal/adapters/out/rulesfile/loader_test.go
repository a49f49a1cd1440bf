package rulesfile_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fulfillment/internal/adapters/out/rulesfile"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/pkg/errs"
)

func TestLoad_EmptyPathUsesBuiltInTable(t *testing.T) {
	table, err := rulesfile.Load("")

	require.NoError(t, err)
	assert.Equal(t, services.DefaultSurchargeRules(), table.Rules())
	assert.Equal(t, services.StackAll, table.Stacking())
}

func TestLoad_ReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
stacking: first-match
rules:
  - patterns: ["fragile", "dễ vỡ"]
    percent: 30
  - patterns: ["frozen"]
    percent: 5
`), 0o600))

	table, err := rulesfile.Load(path)
	require.NoError(t, err)

	assert.Equal(t, services.StackFirstMatch, table.Stacking())
	require.Len(t, table.Rules(), 2)
	assert.Equal(t, int64(30), table.PercentFor("Hàng dễ vỡ"))
	assert.Equal(t, int64(35), table.Percent("Fragile", "Frozen fish"))
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := rulesfile.Load(filepath.Join(t.TempDir(), "absent.yaml"))

	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestParse_RejectsInvalidTables(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		is   error
	}{
		{name: "negative percent", yaml: "rules:\n  - patterns: [cold]\n    percent: -5\n", is: errs.ErrValueIsOutOfRange},
		{name: "no patterns", yaml: "rules:\n  - percent: 5\n", is: errs.ErrValueIsRequired},
		{name: "unknown stacking", yaml: "stacking: max\nrules: []\n", is: errs.ErrValueIsInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := rulesfile.Parse(strings.NewReader(tt.yaml))

			require.ErrorIs(t, err, tt.is)
		})
	}
}

func TestParse_RejectsUnknownKeysAndEmptyInput(t *testing.T) {
	_, err := rulesfile.Parse(strings.NewReader("rule:\n  - percent: 5\n"))
	require.Error(t, err)

	_, err = rulesfile.Parse(strings.NewReader(""))
	require.Error(t, err)
}
