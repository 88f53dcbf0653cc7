package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/duckdb/duckdb-go/v2"
	_ "github.com/mattn/go-sqlite3"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beantrace/internal/db"
	"beantrace/internal/domain"
)

// seedTestLedger builds a fresh ledger database with the demo roastery
// dataset and returns its path. The write pool is closed before the CLI
// opens the file read-only.
func seedTestLedger(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "ledger.sqlite")
	conn, err := db.OpenSQLite(path, db.ModeWrite, 0)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations(conn))
	require.NoError(t, db.Seed(context.Background(), conn))
	require.NoError(t, conn.Close())
	return path
}

// runCLI executes a fresh root command with the given args and returns
// the captured command output.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	rootCmd := newRootCmd()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCLI_TraceTableOutput(t *testing.T) {
	path := seedTestLedger(t)

	out, err := runCLI(t, "trace", "ROAST-300", "--sqlite", path)
	require.NoError(t, err)

	assert.Contains(t, out, "ROAST-300: 5 lots traced (depth limit 10)")
	assert.Contains(t, out, "LOT")
	assert.Contains(t, out, "GREEN-100")
	assert.Contains(t, out, "origin")
	assert.Contains(t, out, "PACK-500")
}

func TestCLI_TraceJSONOutput(t *testing.T) {
	path := seedTestLedger(t)

	out, err := runCLI(t, "trace", "ROAST-300", "--sqlite", path, "--output", "json")
	require.NoError(t, err)

	var result domain.TraceResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "ROAST-300", result.QueriedLot)
	assert.Equal(t, 5, result.TotalNodesTraced)
	require.NotNil(t, result.Tree)
	assert.Len(t, result.Tree.Sources, 2)
}

func TestCLI_TraceWritesFile(t *testing.T) {
	path := seedTestLedger(t)
	outFile := filepath.Join(t.TempDir(), "trace.json")

	out, err := runCLI(t, "trace", "ROAST-300", "--sqlite", path, "--out", outFile)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote "+outFile)

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	var result domain.TraceResult
	require.NoError(t, json.Unmarshal(data, &result))
	assert.Equal(t, "ROAST-300", result.QueriedLot)
}

func TestCLI_TraceUnknownLotIsLeaf(t *testing.T) {
	path := seedTestLedger(t)

	out, err := runCLI(t, "trace", "NOPE-1", "--sqlite", path, "--output", "json")
	require.NoError(t, err)

	var result domain.TraceResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, 1, result.TotalNodesTraced)
}

func TestCLI_TraceDepthLimitInHeader(t *testing.T) {
	path := seedTestLedger(t)

	out, err := runCLI(t, "trace", "ROAST-300", "--sqlite", path, "--max-depth", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "(depth limit 3)")
}

func TestCLI_TraceMissingLedger(t *testing.T) {
	_, err := runCLI(t, "trace", "ROAST-300", "--sqlite", filepath.Join(t.TempDir(), "nope.sqlite"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestCLI_BatchTableOutput(t *testing.T) {
	path := seedTestLedger(t)

	out, err := runCLI(t, "batch", "ROAST-300", "NOPE-1", "--sqlite", path)
	require.NoError(t, err)

	assert.Contains(t, out, "2 lots traced")
	assert.Contains(t, out, "ROAST-300")
	assert.Contains(t, out, "not found")
}

func TestCLI_BatchJSONKeepsOrder(t *testing.T) {
	path := seedTestLedger(t)

	out, err := runCLI(t, "batch", "GREEN-200", "ROAST-300", "--sqlite", path, "-o", "json")
	require.NoError(t, err)

	var result domain.BatchTraceResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, 2, result.Requested)
	require.Len(t, result.Results, 2)
	assert.Equal(t, "GREEN-200", result.Results[0].QueriedLot)
	assert.Equal(t, "ROAST-300", result.Results[1].QueriedLot)
}

func TestCLI_ResolveJSON(t *testing.T) {
	path := seedTestLedger(t)

	out, err := runCLI(t, "resolve", "SC-ALPHA", "--sqlite", path, "-o", "json")
	require.NoError(t, err)

	var result struct {
		SaleContract string   `json:"sale_contract"`
		Lots         []string `json:"lots"`
		Count        int      `json:"count"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "SC-ALPHA", result.SaleContract)
	assert.Equal(t, []string{"GREEN-100", "GREEN-200"}, result.Lots)
	assert.Equal(t, 2, result.Count)
}

func TestCLI_ResolveUnknownContract(t *testing.T) {
	path := seedTestLedger(t)

	_, err := runCLI(t, "resolve", "SC-NOPE", "--sqlite", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown sale contract")
}

func TestCLI_ReportJSON(t *testing.T) {
	path := seedTestLedger(t)

	out, err := runCLI(t, "report", "SC-ALPHA", "--sqlite", path, "-o", "json")
	require.NoError(t, err)

	var report domain.ContractReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "SC-ALPHA", report.SaleContract)
	assert.NotEmpty(t, report.ExportID)
	assert.Equal(t, 2, report.Summary.ConsumptionLotsFound)
	assert.Equal(t, 8, report.Summary.TotalRelatedLotsTraced)
	require.Len(t, report.LineageTraces, 2)
}

func TestCLI_ReportTableOutput(t *testing.T) {
	path := seedTestLedger(t)

	out, err := runCLI(t, "report", "SC-ALPHA", "--sqlite", path)
	require.NoError(t, err)

	assert.Contains(t, out, "sale contract:")
	assert.Contains(t, out, "SC-ALPHA")
	assert.Contains(t, out, "CONSUMPTION LOT")
	assert.Contains(t, out, "GREEN-100")
}

func TestCLI_StatsTableOutput(t *testing.T) {
	path := seedTestLedger(t)

	out, err := runCLI(t, "stats", "GREEN-100", "--sqlite", path)
	require.NoError(t, err)

	assert.Contains(t, out, "GREEN-100")
	assert.Contains(t, out, "records:")
	assert.Contains(t, out, "2")
	assert.Contains(t, out, "400")
}

func TestCLI_StatsUnknownLot(t *testing.T) {
	path := seedTestLedger(t)

	_, err := runCLI(t, "stats", "NOPE-1", "--sqlite", path)
	require.Error(t, err)
}

func TestCLI_TablesJSON(t *testing.T) {
	path := seedTestLedger(t)

	out, err := runCLI(t, "tables", "--sqlite", path, "-o", "json")
	require.NoError(t, err)

	var result struct {
		Tables []string `json:"tables"`
		Count  int      `json:"count"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, 7, result.Count)
	assert.Contains(t, result.Tables, "item_ledger")
}

func TestCLI_TablesFromCSVDir(t *testing.T) {
	dir := t.TempDir()
	csv := "lot_no,process_type,quantity\nGREEN-100,Purchase,1000\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "item_ledger.csv"), []byte(csv), 0644))

	out, err := runCLI(t, "tables", "--csv-dir", dir, "-o", "json")
	require.NoError(t, err)

	var result struct {
		Tables []string `json:"tables"`
		Count  int      `json:"count"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, []string{"item_ledger"}, result.Tables)
}

func TestCLI_Version(t *testing.T) {
	out, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "beantrace version dev (commit: none)\n", out)
}

func TestCLI_VersionJSON(t *testing.T) {
	out, err := runCLI(t, "version", "-o", "json")
	require.NoError(t, err)

	var result map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Contains(t, result, "version")
	assert.Contains(t, result, "commit")
}

func TestCLI_InvalidOutputFormat(t *testing.T) {
	_, err := runCLI(t, "version", "-o", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output format")
}

func TestCLI_SQLiteConflictsWithCSVDir(t *testing.T) {
	_, err := runCLI(t, "tables", "--sqlite", "x.sqlite", "--csv-dir", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be combined")
}

func TestCLI_MaxDepthValidation(t *testing.T) {
	_, err := runCLI(t, "version", "--max-depth", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 1")
}

func TestCLI_EnvProvidesLedgerPath(t *testing.T) {
	path := seedTestLedger(t)
	t.Setenv("BEANTRACE_SQLITE", path)

	out, err := runCLI(t, "trace", "ROAST-300")
	require.NoError(t, err)
	assert.Contains(t, out, "5 lots traced")
}

func TestCLI_EnvMaxDepthMustBeNumeric(t *testing.T) {
	t.Setenv("BEANTRACE_MAX_DEPTH", "plenty")

	_, err := runCLI(t, "version")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is not a number")
}

func TestCLI_FlagOverridesEnvOutput(t *testing.T) {
	path := seedTestLedger(t)
	t.Setenv("BEANTRACE_OUTPUT", "json")

	out, err := runCLI(t, "trace", "ROAST-300", "--sqlite", path, "-o", "table")
	require.NoError(t, err)
	assert.Contains(t, out, "lots traced (depth limit")
	assert.NotContains(t, out, `"queried_lot"`)
}

func TestCLI_UnknownCommand(t *testing.T) {
	_, err := runCLI(t, "nonexistent")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")
}

func TestCLI_CommandTree(t *testing.T) {
	rootCmd := newRootCmd()
	cmdNames := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		cmdNames[cmd.Name()] = true
	}

	expectedCommands := []string{
		"trace", "batch", "resolve", "report",
		"stats", "tables", "commands", "version",
	}
	for _, name := range expectedCommands {
		t.Run(name, func(t *testing.T) {
			assert.True(t, cmdNames[name], "expected command %q to exist on root", name)
		})
	}
}
