package cmd

import (
	"testing"

	"github.com/pseudomuto/gatekeeper/pkg/cmd/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gotest.tools/v3/golden"
)

func TestPlanCommand(t *testing.T) {
	command := plan(planParams{Config: testutil.DefaultConfig()})

	out, err := testutil.RunCommandCapture(t, command)
	require.NoError(t, err)

	golden.Assert(t, out, "plan.golden")
}

func TestPlanCommand_NonRootUser(t *testing.T) {
	cfg := testutil.DefaultConfig()
	cfg.Database.Connection.User = "ghost-123"

	command := plan(planParams{Config: cfg})

	out, err := testutil.RunCommandCapture(t, command)
	require.NoError(t, err)

	assert.Contains(t, out, "⚠️  The connection user is ghost-123, not root, so provisioning would be skipped")
	assert.NotContains(t, out, "gatekeeper provision' runs")
}

func TestPlanCommand_CustomServer(t *testing.T) {
	cfg := testutil.DefaultConfig()
	cfg.Environment = "production"
	cfg.Database.Connection.Host = "db.internal"
	cfg.Database.Connection.Port = 3307

	command := plan(planParams{Config: cfg})

	out, err := testutil.RunCommandCapture(t, command)
	require.NoError(t, err)

	assert.Contains(t, out, "Provisioning plan for ghost_testing on db.internal:3307 (environment: production)")
	assert.Contains(t, out, "CREATE USER 'ghost-<n>'@'db.internal' IDENTIFIED WITH mysql_native_password;")
	assert.Contains(t, out, "GRANT ALL PRIVILEGES ON `ghost_testing`.* TO 'ghost-<n>'@'db.internal';")
}

func TestPlanCommand_CommandStructure(t *testing.T) {
	command := plan(planParams{Config: testutil.DefaultConfig()})

	assert.Equal(t, "plan", command.Name)
	assert.Equal(t, "Show the SQL statements provisioning would execute", command.Usage)
	assert.NotEmpty(t, command.Description)
	assert.NotNil(t, command.Action)
	assert.NotNil(t, command.Before) // Should have requireConfig
}

func TestPlanCommand_RequiresConfig(t *testing.T) {
	command := plan(planParams{Config: nil})

	err := testutil.RunCommand(t, command)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gatekeeper.yaml not found")
}
