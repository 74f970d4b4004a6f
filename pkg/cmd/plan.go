package cmd

import (
	"context"
	"fmt"

	"github.com/pseudomuto/gatekeeper/pkg/config"
	"github.com/pseudomuto/gatekeeper/pkg/provision"
	"github.com/urfave/cli/v3"
	"go.uber.org/fx"
)

// Placeholders rendered in place of the generated credentials. The real
// values only exist at provisioning time.
const (
	planUsername = "ghost-<n>"
	planPassword = "<generated>"
)

type planParams struct {
	fx.In

	Config *config.Config
}

// plan creates the plan command for previewing the provisioning statements.
//
// The plan command renders the exact SQL a provisioning run would execute
// against the configured server, with placeholders for the generated username
// and password. Nothing is executed and no connection is made, so the command
// is safe to run anywhere.
//
// Example usage:
//
//	# Show the statements provisioning would run
//	gatekeeper plan
func plan(p planParams) *cli.Command {
	return &cli.Command{
		Name:  "plan",
		Usage: "Show the SQL statements provisioning would execute",
		Description: `Render the provisioning statements for the configured database without
connecting to the server.

The output uses ghost-<n> and <generated> as placeholders for the username and
password, which are generated fresh on every provisioning run.`,
		Before: requireConfig(p.Config),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runPlan(cmd, p)
		},
	}
}

func runPlan(cmd *cli.Command, p planParams) error {
	conn := p.Config.Database.Connection

	fmt.Fprintf(cmd.Writer, "Provisioning plan for %s on %s (environment: %s)\n",
		p.Config.Database.Name, serverAddress(p.Config), p.Config.Environment)
	fmt.Fprintln(cmd.Writer)

	statements := []string{
		provision.CreateUserStatement(planUsername, conn.Host),
		provision.DisableLegacyPasswordsStatement(),
		provision.SetPasswordStatement(planUsername, conn.Host, planPassword),
		provision.GrantAllStatement(p.Config.Database.Name, planUsername, conn.Host),
		provision.FlushPrivilegesStatement(),
	}

	for i, stmt := range statements {
		fmt.Fprintf(cmd.Writer, "  %d. %s\n", i+1, stmt)
	}

	fmt.Fprintln(cmd.Writer)

	if conn.User != provision.RootUser {
		fmt.Fprintf(cmd.Writer, "⚠️  The connection user is %s, not root, so provisioning would be skipped\n", conn.User)
		return nil
	}

	fmt.Fprintln(cmd.Writer, "ℹ️  The username and password are generated when 'gatekeeper provision' runs")
	return nil
}
