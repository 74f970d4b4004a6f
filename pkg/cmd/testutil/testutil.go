// Package testutil provides helpers for testing gatekeeper commands: config
// fixtures backed by temp directories, CLI execution harnesses, and Docker
// test support.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/pseudomuto/gatekeeper/pkg/config"
	"github.com/pseudomuto/gatekeeper/pkg/consts"
	"github.com/stretchr/testify/require"
)

// ConfigFixture is a test project environment: a temp directory holding a
// gatekeeper.yaml that commands can load and write back to.
type ConfigFixture struct {
	Dir    string
	Config *config.Config
	t      *testing.T
}

// NewConfigFixture creates an isolated temp directory containing a default
// gatekeeper.yaml and returns the loaded configuration. The config remembers
// its file path, so a Save from the code under test writes back into the
// fixture directory.
func NewConfigFixture(t *testing.T) *ConfigFixture {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, consts.ConfigFile)

	require.NoError(t, DefaultConfig().SaveFile(path), "Failed to write config file")

	cfg, err := config.LoadConfigFile(path)
	require.NoError(t, err, "Failed to load config file")

	return &ConfigFixture{
		Dir:    dir,
		Config: cfg,
		t:      t,
	}
}

// WithEnvironment sets the environment name and persists the change.
func (f *ConfigFixture) WithEnvironment(environment string) *ConfigFixture {
	f.t.Helper()

	f.Config.Environment = environment
	return f.save()
}

// WithDatabase sets the target database name and persists the change.
func (f *ConfigFixture) WithDatabase(name string) *ConfigFixture {
	f.t.Helper()

	f.Config.Database.Name = name
	return f.save()
}

// WithConnection sets the server address and persists the change.
func (f *ConfigFixture) WithConnection(host string, port int) *ConfigFixture {
	f.t.Helper()

	f.Config.Database.Connection.Host = host
	f.Config.Database.Connection.Port = port
	return f.save()
}

// WithCredentials sets the connection user and password and persists the
// change.
func (f *ConfigFixture) WithCredentials(user, password string) *ConfigFixture {
	f.t.Helper()

	f.Config.Database.Connection.User = user
	f.Config.Database.Connection.Password = password
	return f.save()
}

// ConfigPath returns the path to the fixture's gatekeeper.yaml file.
func (f *ConfigFixture) ConfigPath() string {
	return filepath.Join(f.Dir, consts.ConfigFile)
}

// Reload re-reads the config from disk, returning what a subsequent command
// run would see.
func (f *ConfigFixture) Reload() *config.Config {
	f.t.Helper()

	cfg, err := config.LoadConfigFile(f.ConfigPath())
	require.NoError(f.t, err, "Failed to reload config file")

	return cfg
}

func (f *ConfigFixture) save() *ConfigFixture {
	require.NoError(f.t, f.Config.Save(), "Failed to write updated config")
	return f
}

// DefaultConfig returns a default configuration for testing. The credentials
// match the dev server defaults, so fixture-driven tests work against a
// container started with the docker package.
func DefaultConfig() *config.Config {
	return &config.Config{
		Environment: consts.DefaultEnvironment,
		Database: config.Database{
			Engine: consts.DefaultEngine,
			Name:   "ghost_testing",
			Connection: config.Connection{
				Host:     consts.DefaultMySQLHost,
				User:     "root",
				Password: "gatekeeper",
			},
		},
	}
}
