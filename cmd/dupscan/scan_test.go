package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/dupscan/internal/core/model"
)

func TestScanCommand(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "worklist.csv")
	require.NoError(t, os.WriteFile(input, []byte(
		"id,name,description\n"+
			"1,Customer Risk Dashboard - Compliance,\n"+
			"2,Customer Risk Dashboard Compliance,\n"+
			"3,Vendor Onboarding Tracker,\n"+
			"4,TBD,\n"), 0o644))
	output := filepath.Join(dir, "report.json")

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs([]string{
		"scan",
		"--config", filepath.Join(dir, "missing.toml"),
		"-a", input,
		"-o", output,
		"--workers", "2",
	})
	require.NoError(t, rootCmd.Execute())

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	var rep model.Report
	require.NoError(t, json.Unmarshal(data, &rep))

	assert.True(t, rep.Complete)
	require.Len(t, rep.Clusters, 1)
	assert.Equal(t, "1", rep.Clusters[0].Representative.ID)
	require.Len(t, rep.Skipped, 1)
	assert.Equal(t, model.SkipUnscoreable, rep.Skipped[0].Reason)
	assert.Equal(t, "4", rep.Skipped[0].Key.ID)
	assert.Equal(t, -1, rep.ClusterOf(rep.Skipped[0].Key))

	assert.Contains(t, stdout.String(), "Duplicate scan")
	assert.Contains(t, stdout.String(), "A:1, A:2")
	assert.Contains(t, stdout.String(), output)
}

func TestCheckCommand_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "dupscan.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("[scan]\nthreshold = 2.0\n"), 0o644))

	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetArgs([]string{"check", "--config", cfgPath})

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scan.threshold")
}
