package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/provelab/sigma/pkg/comm"
	"github.com/provelab/sigma/pkg/protocol"
	"github.com/provelab/sigma/pkg/sigma"
)

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join("testdata", "dlog.toml"))
	require.NoError(t, err)
	assert.Equal(t, "dlog", cfg.Protocol)
	assert.Equal(t, 4, cfg.T)
	assert.Equal(t, "47", cfg.Group.P)

	grp, err := cfg.BuildGroup()
	require.NoError(t, err)
	assert.NoError(t, grp.Validate())
}

func TestLoadConfigRejects(t *testing.T) {
	write := func(content string) string {
		path := filepath.Join(t.TempDir(), "config.toml")
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
		return path
	}

	_, err := LoadConfig(write(`protocol = "or"` + "\nt = 4\n"))
	assert.Error(t, err)

	_, err = LoadConfig(write(`protocol = "dlog"` + "\nt = 0\n"))
	assert.Error(t, err)

	_, err = LoadConfig(filepath.Join("testdata", "missing.toml"))
	assert.Error(t, err)
}

// A full configured run: both parties built from the same file,
// talking through envelopes over an in-memory pipe.
func runConfigured(t *testing.T, path string) {
	t.Helper()
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	grp, err := cfg.BuildGroup()
	require.NoError(t, err)

	prover, input, err := cfg.BuildProver(grp)
	require.NoError(t, err)
	verifier, common, err := cfg.BuildVerifier(grp)
	require.NoError(t, err)

	ssid := cfg.SessionID(grp)
	proverSide, verifierSide := comm.Pipe()

	var g errgroup.Group
	g.Go(func() error {
		channel := protocol.NewChannel(proverSide, ssid, "prover", "verifier")
		return sigma.NewProtocolProver(channel, prover).Prove(input)
	})
	var accepted bool
	g.Go(func() error {
		channel := protocol.NewChannel(verifierSide, ssid, "verifier", "prover")
		ok, err := sigma.NewProtocolVerifier(channel, verifier).Verify(common)
		accepted = ok
		return err
	})
	require.NoError(t, g.Wait())
	assert.True(t, accepted)
}

func TestConfiguredDlogRun(t *testing.T) {
	runConfigured(t, filepath.Join("testdata", "dlog.toml"))
}

func TestConfiguredAndRun(t *testing.T) {
	runConfigured(t, filepath.Join("testdata", "and.toml"))
}
