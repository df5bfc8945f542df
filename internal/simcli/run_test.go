package simcli_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kevintm78/zswap/internal/simcli"
	"github.com/kevintm78/zswap/pkg/zswap"
)

func run(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()

	var out, errOut bytes.Buffer

	code := simcli.Run(strings.NewReader(stdin), &out, &errOut,
		append([]string{"zswapsim"}, args...), map[string]string{})

	return code, out.String(), errOut.String()
}

func Test_Run_Workload_Reports_Stats_And_Exits_Zero(t *testing.T) {
	t.Parallel()

	code, out, errOut := run(t, "",
		"--pages", "128", "--workers", "2", "--seed", "7",
		"--total-ram", "64MiB", "--duplicates")

	require.Equal(t, 0, code, "stderr: %s", errOut)
	require.Contains(t, out, "mismatches 0")
	require.Contains(t, out, "stored_pages")
}

func Test_Run_Writes_A_Stats_File_Atomically(t *testing.T) {
	t.Parallel()

	statsPath := filepath.Join(t.TempDir(), "stats.json")

	code, _, errOut := run(t, "",
		"--pages", "64", "--total-ram", "64MiB",
		"--stats-out", statsPath)

	require.Equal(t, 0, code, "stderr: %s", errOut)

	data, err := os.ReadFile(statsPath)
	require.NoError(t, err)

	var stats zswap.Stats
	require.NoError(t, json.Unmarshal(data, &stats))
	require.Positive(t, stats.StoredPages)
}

func Test_Run_Loads_HuJSON_Config_And_Lets_Flags_Override(t *testing.T) {
	t.Parallel()

	cfgPath := filepath.Join(t.TempDir(), "zswapsim.json")

	cfg := `{
  // simulator config
  "compressor": "zstd",
  "pages": 32,
  "total_ram": "32MiB",
}`

	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o600))

	code, out, errOut := run(t, "", "--config", cfgPath, "--pages", "16")

	require.Equal(t, 0, code, "stderr: %s", errOut)
	require.Contains(t, out, "mismatches 0")
}

func Test_Run_Honors_Enabled_False(t *testing.T) {
	t.Parallel()

	cfgPath := filepath.Join(t.TempDir(), "zswapsim.json")

	require.NoError(t, os.WriteFile(cfgPath, []byte(`{"enabled": false}`), 0o600))

	code, out, _ := run(t, "", "--config", cfgPath)

	require.Equal(t, 0, code)
	require.Contains(t, out, "disabled")
}

func Test_Run_Rejects_Invalid_Flags_And_Config(t *testing.T) {
	t.Parallel()

	code, _, errOut := run(t, "", "--no-such-flag")
	require.Equal(t, 1, code)
	require.Contains(t, errOut, "error:")

	code, _, errOut = run(t, "", "--config", "/nonexistent/zswapsim.json")
	require.Equal(t, 1, code)
	require.Contains(t, errOut, "error:")

	code, _, errOut = run(t, "", "--total-ram", "lots")
	require.Equal(t, 1, code)
	require.Contains(t, errOut, "total-ram")
}

func Test_Shell_Executes_Scripted_Commands(t *testing.T) {
	t.Parallel()

	script := strings.Join([]string{
		"store 0x10 65",
		"load 0x10",
		"stats",
		"invalidate 0x10",
		"load 0x10",
		"writeback 4",
		"purge",
		"help",
		"bogus",
		"quit",
	}, "\n") + "\n"

	code, out, errOut := run(t, script, "--interactive", "--total-ram", "64MiB")

	require.Equal(t, 0, code, "stderr: %s", errOut)
	require.Contains(t, out, "stored")
	require.Contains(t, out, "hit: 41 41")
	require.Contains(t, out, "stored_pages")
	require.Contains(t, out, "miss:")
	require.Contains(t, out, "freed 0")
	require.Contains(t, out, "purged")
	require.Contains(t, errOut, "unknown command: bogus")
}
