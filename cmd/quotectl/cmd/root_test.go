package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/YaswanthVanama123/enviromaster-sub004/internal/quote"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const agreement = `{
	"title": "Acme Offices",
	"services": [
		{"serviceId":"saniclean","frequency":"weekly","quantities":{"fixtures":3}},
		{"serviceId":"sanipod","frequency":"weekly","quantities":{"pods":10}}
	]
}`

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "quotectl version")
}

func TestSeedThenShow(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cli.db")

	out, err := run(t, "--db", dbPath, "config", "show", "sanipod")
	require.NoError(t, err)
	assert.Contains(t, out, "using defaults: true")

	out, err = run(t, "--db", dbPath, "config", "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "8 inserted, 0 updated")

	out, err = run(t, "--db", dbPath, "config", "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "0 inserted, 0 updated")

	out, err = run(t, "--db", dbPath, "config", "show", "sanipod")
	require.NoError(t, err)
	assert.Contains(t, out, "using defaults: false")
	assert.Contains(t, out, "tripCharge")

	_, err = run(t, "--db", dbPath, "config", "show", "nope")
	assert.Error(t, err)

	_, err = run(t, "--offline", "config", "seed")
	assert.Error(t, err)
}

func TestQuoteOffline(t *testing.T) {
	dir := t.TempDir()
	form := writeFile(t, dir, "form.json", `{"serviceId":"saniclean","frequency":"weekly","quantities":{"fixtures":3}}`)

	out, err := run(t, "--offline", "quote", form)
	require.NoError(t, err)
	assert.Contains(t, out, "SaniClean")
	assert.Contains(t, out, "priced from default rates")

	out, err = run(t, "--offline", "quote", "--format", "json", form)
	require.NoError(t, err)
	var res quote.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.True(t, decimal.RequireFromString("173.20").Equal(res.Totals.MonthlyRecurring))
}

func TestProposalAndExport(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "agreement.json", agreement)

	out, err := run(t, "--offline", "proposal", "--months", "24", in)
	require.NoError(t, err)
	var p quote.Proposal
	require.NoError(t, json.Unmarshal([]byte(out), &p))
	assert.Len(t, p.Services, 2)
	assert.Equal(t, 24, p.ContractMonths)
	assert.True(t, decimal.RequireFromString("118").Equal(p.PerVisitTotal))

	xlsx := filepath.Join(dir, "proposal.xlsx")
	out, err = run(t, "--offline", "export", "-o", xlsx, in)
	require.NoError(t, err)
	assert.Contains(t, out, "2 services")

	f, err := excelize.OpenFile(xlsx)
	require.NoError(t, err)
	defer f.Close()
	title, err := f.GetCellValue("Summary", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Acme Offices", title)
}
