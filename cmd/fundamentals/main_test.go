package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/fundamentals/internal/analysis/fundamental"
	"github.com/seenimoa/fundamentals/pkg/models"
)

// writeConfig points the CLI at the snapshot fixture.
func writeConfig(t *testing.T) string {
	t.Helper()
	fixture, err := filepath.Abs(filepath.Join("testdata", "statements.json"))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "provider:\n" +
		"  name: snapshot\n" +
		"  snapshot:\n" +
		"    path: " + fixture + "\n" +
		"logging:\n" +
		"  level: error\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("FMP_API_KEY", "")
	t.Setenv("FRED_API_KEY", "")

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", writeConfig(t)}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestRootPrintsDefaultDCF(t *testing.T) {
	out, err := run(t)
	require.NoError(t, err)
	assert.Equal(t, "$5,628\n", out)
}

func TestRootRejectsArguments(t *testing.T) {
	_, err := run(t, "AAPL")
	assert.Error(t, err)
}

func TestDCFFlags(t *testing.T) {
	out, err := run(t, "dcf", "aapl", "--years", "2")
	require.NoError(t, err)
	assert.Equal(t, "$2,138\n", out)

	out, err = run(t, "dcf", "--growth", "0", "--years", "3")
	require.NoError(t, err)
	assert.Equal(t, "$3,000\n", out)
}

func TestDCFInvalidYears(t *testing.T) {
	_, err := run(t, "dcf", "--years", "0")
	var invalid *fundamental.ErrInvalidParameter
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "years", invalid.Name)
}

func TestDCFMissingCapex(t *testing.T) {
	_, err := run(t, "dcf", "NOCAPEX")
	var missing *fundamental.ErrMissingField
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "capitalExpenditures", missing.Field)
}

func TestDCFMarketDiscountNeedsKey(t *testing.T) {
	_, err := run(t, "dcf", "--market-discount")
	assert.ErrorContains(t, err, "api_key")
}

func TestBook(t *testing.T) {
	out, err := run(t, "book")
	require.NoError(t, err)
	assert.Contains(t, out, "2022")
	assert.Contains(t, out, "$-200")
	assert.Contains(t, out, "$500")
}

func TestFCFJSON(t *testing.T) {
	out, err := run(t, "fcf", "AAPL", "--json")
	require.NoError(t, err)

	var records []models.CashFlowRecord
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	assert.Equal(t, []models.CashFlowRecord{
		{Year: 2022, FreeCashFlow: 500},
		{Year: 2023, FreeCashFlow: 1000},
	}, records)
}

func TestSummary(t *testing.T) {
	out, err := run(t, "summary", "AAPL", "--years", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "AAPL (source: snapshot)")
	assert.Contains(t, out, "FCF growth:  +100.00%")
	assert.Contains(t, out, "$2,138")
}

func TestSources(t *testing.T) {
	out, err := run(t, "sources")
	require.NoError(t, err)
	assert.Contains(t, out, "* snapshot")
	assert.Contains(t, out, "yfinance")
	assert.Contains(t, out, "FMP API Key:")
}

func TestVersion(t *testing.T) {
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"version", "--config", "/nonexistent/config.yaml"})
	require.NoError(t, root.Execute(), "version should not load configuration")
	assert.Contains(t, out.String(), "fundamentals dev")
}

func TestUnknownSourceOverride(t *testing.T) {
	_, err := run(t, "--source", "bloomberg")
	assert.ErrorContains(t, err, "unknown provider")
}
