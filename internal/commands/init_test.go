package commands_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallied-dev/tallied/internal/accounts"
)

var binaryPath string

func TestMain(m *testing.M) {
	// Build the binary once for all tests.
	tmpDir, err := os.MkdirTemp("", "tallied-test-*")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(tmpDir)

	binaryPath = filepath.Join(tmpDir, "tallied")
	cmd := exec.Command("go", "build", "-o", binaryPath, "../../cmd/tallied")
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		panic("failed to build binary: " + err.Error())
	}

	// Auto-commits must not depend on the machine's git identity.
	os.Setenv("GIT_CONFIG_GLOBAL", os.DevNull)
	os.Setenv("GIT_CONFIG_SYSTEM", os.DevNull)

	os.Exit(m.Run())
}

func runTallied(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(binaryPath, args...)
	out, err := cmd.CombinedOutput()
	return string(out), err
}

func initRepo(t *testing.T, name string) string {
	t.Helper()
	dir := t.TempDir()
	out, err := runTallied(t, "init", dir, "--name", name)
	require.NoError(t, err, "init failed: %s", out)
	return dir
}

func TestInitCreatesStructure(t *testing.T) {
	dir := initRepo(t, "Test Biz")

	for _, d := range []string{"accounts", "agents", "logs", "import", filepath.Join("import", "processed")} {
		info, err := os.Stat(filepath.Join(dir, d))
		require.NoError(t, err, "directory %s should exist", d)
		assert.True(t, info.IsDir())
	}
}

func TestInitConfig(t *testing.T) {
	dir := initRepo(t, "My Company")

	data, err := os.ReadFile(filepath.Join(dir, "tallied.yaml"))
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "name: My Company")
	assert.Contains(t, contents, "entity_type: llc_single_member")
	assert.Contains(t, contents, "granularity: month")
}

func TestInitChartOfAccounts(t *testing.T) {
	dir := initRepo(t, "Test Biz")

	f, err := os.Open(filepath.Join(dir, "accounts", "chart-of-accounts.csv"))
	require.NoError(t, err)
	defer f.Close()

	accts, err := accounts.ReadAccounts(f)
	require.NoError(t, err)
	assert.Len(t, accts, 14, "default LLC single member chart has 14 accounts")
}

func TestInitGitRepo(t *testing.T) {
	dir := initRepo(t, "Test Biz")

	_, err := os.Stat(filepath.Join(dir, ".git"))
	require.NoError(t, err)

	log := exec.Command("git", "log", "--format=%s|%an <%ae>|%cn <%ce>", "-1")
	log.Dir = dir
	out, err := log.Output()
	require.NoError(t, err)
	assert.Contains(t, string(out), "init:")
	assert.Contains(t, string(out), "Tallied Agent <agent@tallied.dev>|Tallied Agent <agent@tallied.dev>")
}

func TestInitRequiresName(t *testing.T) {
	dir := t.TempDir()
	_, err := runTallied(t, "init", dir)
	require.Error(t, err, "init without --name should fail")
}
