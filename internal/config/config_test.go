package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/fieldsweep/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "fieldsweep.yaml", `
input: water.fdf
aux: [O.psf, H.psf]
script: run.sh
base_dir: calc
solver:
  timeout: 2h
store:
  backend: badger
  path: state
ledger:
  path: attempts.db
`)
	cfg, err := config.Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "water.fdf", cfg.Input)
	assert.Equal(t, []string{"O.psf", "H.psf"}, cfg.Aux)
	assert.Equal(t, "calc", cfg.BaseDir)
	assert.Equal(t, 2*time.Hour, cfg.Solver.Timeout)
	assert.Equal(t, config.BackendBadger, cfg.Store.Backend)
	assert.Equal(t, "attempts.db", cfg.Ledger.Path)
	assert.Equal(t, "default", cfg.SweepID)

	// The script becomes the solver command.
	assert.Equal(t, "sh", cfg.Solver.Command)
	assert.Equal(t, []string{"run.sh"}, cfg.Solver.Args)
	assert.Equal(t, "concluido.txt", cfg.Solver.CompletionMarker)
}

func TestLoad_JSON(t *testing.T) {
	path := writeFile(t, "fieldsweep.json", `{"input": "a.fdf", "solver": {"command": "siesta-wrapper", "args": ["{dir}"]}}`)
	cfg, err := config.Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "a.fdf", cfg.Input)
	assert.Equal(t, "siesta-wrapper", cfg.Solver.Command)
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := config.Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, config.BackendFile, cfg.Store.Backend)
	assert.True(t, cfg.Store.Checksum)
	assert.Equal(t, config.SelfCommand, cfg.Solver.Command)
	assert.Equal(t, []string{"solve", "{dir}"}, cfg.Solver.Args)

	_, err = config.Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.Error(t, err, "an explicit path must exist")
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeFile(t, "fieldsweep.yaml", "input: water.fdf\n")
	cfg, err := config.Load(path, []string{
		"FIELDSWEEP_INPUT=other.fdf",
		"FIELDSWEEP_AUX=O.psf, H.psf",
		"FIELDSWEEP_STORE__BACKEND=redis",
		"FIELDSWEEP_STORE__REDIS__ADDR=redis:6380",
		"FIELDSWEEP_STORE__REDIS__DB=2",
		"FIELDSWEEP_SOLVER__TIMEOUT=90s",
		"FIELDSWEEP_DIR=/ignored",
		"HOME=/root",
	})
	require.NoError(t, err)

	assert.Equal(t, "other.fdf", cfg.Input)
	assert.Equal(t, []string{"O.psf", "H.psf"}, cfg.Aux)
	assert.Equal(t, config.BackendRedis, cfg.Store.Backend)
	assert.Equal(t, "redis:6380", cfg.Store.Redis.Addr)
	assert.Equal(t, 2, cfg.Store.Redis.DB)
	assert.Equal(t, 90*time.Second, cfg.Solver.Timeout)
}

func TestLoad_Invalid(t *testing.T) {
	path := writeFile(t, "fieldsweep.yaml", "store:\n  backend: etcd\n")
	_, err := config.Load(path, nil)
	assert.ErrorContains(t, err, "invalid configuration")

	path = writeFile(t, "fieldsweep.yaml", "store:\n  backend: redis\n  redis:\n    addr: \"\"\n")
	_, err = config.Load(path, nil)
	assert.Error(t, err, "redis backend needs an address")

	path = writeFile(t, "fieldsweep.yaml", "input: [unclosed\n")
	_, err = config.Load(path, nil)
	assert.ErrorContains(t, err, "failed to parse")
}

func TestLoad_HTTPAllowedOrigins(t *testing.T) {
	path := writeFile(t, "fieldsweep.yaml", `
http:
  addr: localhost:8080
  allowed_origins: [http://dashboard.local]
`)
	cfg, err := config.Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"http://dashboard.local"}, cfg.HTTP.AllowedOrigins)

	cfg, err = config.Load(path, []string{"FIELDSWEEP_HTTP__ALLOWED_ORIGINS=http://a.test, http://b.test"})
	require.NoError(t, err)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.HTTP.AllowedOrigins)

	assert.Empty(t, config.Default().HTTP.AllowedOrigins, "no browser origin is trusted by default")
}
