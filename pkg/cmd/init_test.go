package cmd

import (
	"os"
	"testing"

	"github.com/pseudomuto/gatekeeper/pkg/cmd/testutil"
	"github.com/pseudomuto/gatekeeper/pkg/config"
	"github.com/pseudomuto/gatekeeper/pkg/consts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitCommand(t *testing.T) {
	chdirTemp(t)

	out, err := testutil.RunCommandCapture(t, initCmd(), "--database", "ghost_prod")
	require.NoError(t, err)

	assert.Contains(t, out, "✅ Created gatekeeper.yaml")
	assert.Contains(t, out, "💡 Fill in the administrative password")

	testutil.RequireConfigValid(t, consts.ConfigFile,
		testutil.RequireFileContains(t, "name: ghost_prod"),
		testutil.RequireFileContains(t, "user: root"),
		testutil.RequireFileContains(t, "host: localhost"),
		testutil.RequireFileNotContains(t, "password:"),
	)

	cfg, err := config.LoadConfigFile(consts.ConfigFile)
	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "mysql", cfg.Database.Engine)
	assert.Equal(t, "ghost_prod", cfg.Database.Name)
	assert.Equal(t, 3306, cfg.Database.Connection.Port)
}

func TestInitCommand_CustomFlags(t *testing.T) {
	chdirTemp(t)

	_, err := testutil.RunCommandCapture(t, initCmd(),
		"--database", "ghost_prod",
		"--environment", "production",
		"--host", "db.example.com",
		"--port", "3307",
		"--user", "admin",
		"--password", "hunter2",
	)
	require.NoError(t, err)

	cfg, err := config.LoadConfigFile(consts.ConfigFile)
	require.NoError(t, err)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "db.example.com", cfg.Database.Connection.Host)
	assert.Equal(t, 3307, cfg.Database.Connection.Port)
	assert.Equal(t, "admin", cfg.Database.Connection.User)
	assert.Equal(t, "hunter2", cfg.Database.Connection.Password)
}

func TestInitCommand_PasswordFromEnv(t *testing.T) {
	chdirTemp(t)
	t.Setenv("MYSQL_PWD", "from-env")

	_, err := testutil.RunCommandCapture(t, initCmd(), "--database", "ghost_prod")
	require.NoError(t, err)

	cfg, err := config.LoadConfigFile(consts.ConfigFile)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Database.Connection.Password)
}

func TestInitCommand_ExistingConfig(t *testing.T) {
	chdirTemp(t)

	require.NoError(t, os.WriteFile(consts.ConfigFile, []byte("environment: development\n"), consts.ModeFile))

	_, err := testutil.RunCommandCapture(t, initCmd(), "--database", "ghost_prod")
	testutil.RequireError(t, err, "gatekeeper.yaml already exists")
}

func TestInitCommand_RequiresDatabase(t *testing.T) {
	chdirTemp(t)

	_, err := testutil.RunCommandCapture(t, initCmd())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database")

	testutil.RequireNoFile(t, consts.ConfigFile)
}

func TestInitCommand_CommandStructure(t *testing.T) {
	command := initCmd()

	assert.Equal(t, "init", command.Name)
	assert.Equal(t, "Create a starter gatekeeper.yaml in the current directory", command.Usage)
	assert.NotEmpty(t, command.Description)
	assert.NotNil(t, command.Action)
	assert.Nil(t, command.Before, "init must work before any config exists")
}

// chdirTemp moves the test into a fresh temp directory, restoring the
// original working directory when the test ends.
func chdirTemp(t *testing.T) string {
	t.Helper()

	pwd, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Chdir(pwd) })

	dir := t.TempDir()
	require.NoError(t, os.Chdir(dir))

	return dir
}
