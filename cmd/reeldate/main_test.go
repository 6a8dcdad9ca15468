package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heimdex/reeldate/internal/config"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestVersionCmd_Executes(t *testing.T) {
	originalVersion := version
	version = "test-version-1.0.0"
	defer func() { version = originalVersion }()

	out, err := execute(t, "version")

	require.NoError(t, err)
	assert.Contains(t, out, "reeldate version test-version-1.0.0")
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	var names []string
	for _, cmd := range rootCmd.Commands() {
		names = append(names, cmd.Name())
	}
	for _, want := range []string{"import", "prefixes", "analyze", "stamp", "restore", "organize", "serve", "version"} {
		assert.Contains(t, names, want)
	}
}

func TestOverrides_OnlyChangedFlagsApply(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	ov := join(sourceFlags(cmd), stampFlags(cmd))
	require.NoError(t, cmd.ParseFlags([]string{"--mode", "earliest", "--frame-rate", "25", "--scene=false"}))

	opts := config.DefaultOptions()
	opts.Fallback = config.FallbackModification
	ov.apply(cmd, &opts)

	assert.Equal(t, config.ModeEarliest, opts.Mode)
	assert.Equal(t, 25.0, opts.FrameRate)
	assert.False(t, opts.UpdateScene)
	assert.True(t, opts.UpdateStartTC)
	assert.Equal(t, config.FallbackModification, opts.Fallback, "unset flags keep the file's value")
}

func TestRestoreFlags_OnlyEmptyTargetsRestoreOption(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	ov := restoreFlags(cmd)
	require.NoError(t, cmd.ParseFlags([]string{"--only-empty=false"}))

	opts := config.DefaultOptions()
	ov.apply(cmd, &opts)

	assert.False(t, opts.RestoreOnlyEmpty)
	assert.False(t, opts.UpdateOnlyEmpty)
}

func TestCommands_ImportStampAnalyze(t *testing.T) {
	dataDir := t.TempDir()
	t.Setenv(config.EnvDataDir, dataDir)
	t.Setenv(config.EnvOptions, "")

	mediaDir := t.TempDir()
	for _, name := range []string{"20250623_193700.mp4", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(mediaDir, name), []byte("x"), 0644))
	}

	out, err := execute(t, "import", mediaDir)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 1 new, 0 already present, 0 failed.")

	out, err = execute(t, "import", mediaDir)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 0 new, 1 already present, 0 failed.")

	out, err = execute(t, "prefixes")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, config.AllPrefixes+"\n"), out)

	out, err = execute(t, "stamp", "--timezone", "UTC", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "Total clips scanned: 1")
	assert.Contains(t, out, "Start TC updated: 1 (File: 1, Create: 0, Modify: 0)")
	assert.Contains(t, out, "Dry run: no properties were written.")
	assert.Contains(t, out, "Run ")

	out, err = execute(t, "analyze")
	require.NoError(t, err)
	assert.Contains(t, out, "(1 clips) =====")
}

func TestCommands_InvalidOptionsFile(t *testing.T) {
	t.Setenv(config.EnvDataDir, t.TempDir())

	optionsPath := filepath.Join(t.TempDir(), "options.yaml")
	require.NoError(t, os.WriteFile(optionsPath, []byte("mode: sideways\n"), 0644))

	_, err := execute(t, "--options", optionsPath, "restore")
	defer func() { optionsFile = "" }()

	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrInvalidOptions)
}
