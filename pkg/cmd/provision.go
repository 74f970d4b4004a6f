package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/pkg/errors"
	"github.com/pseudomuto/gatekeeper/pkg/config"
	"github.com/pseudomuto/gatekeeper/pkg/consts"
	"github.com/pseudomuto/gatekeeper/pkg/provision"
	"github.com/urfave/cli/v3"
	"go.uber.org/fx"
)

type provisionParams struct {
	fx.In

	Config *config.Config
}

// provisionCmd creates the provision command for creating the application's
// MySQL user.
//
// The provision command connects to the configured MySQL server with the
// administrative credentials from gatekeeper.yaml, creates a randomly named
// user with a generated password, grants it full access to the configured
// database and nothing else, and saves the new credentials back to
// gatekeeper.yaml.
//
// Provisioning only runs when the configured engine is mysql and the
// configured user is root; any other user is assumed to already be an
// application account and the command skips without error.
//
// Command flags:
//   - --host, --port, --user, --password, --database: Connection overrides
//     applied on top of gatekeeper.yaml for this run only
//   - --timeout: Connection timeout for the administrative connection
//   - --max-attempts: Give up after this many username collisions (0 retries forever)
//
// Example usage:
//
//	# Provision a user for the configured database
//	gatekeeper provision
//
//	# Provision against a server other than the configured one
//	gatekeeper provision --host db.internal --password s3cret
//
//	# Fail fast when the server is slow to accept connections
//	gatekeeper provision --timeout 5s
func provisionCmd(p provisionParams) *cli.Command {
	return &cli.Command{
		Name:  "provision",
		Usage: "Create a least-privilege MySQL user for the configured database",
		Description: `Create a new MySQL user scoped to the configured database.

The provision command runs a fixed sequence against the server:
- CREATE USER with the mysql_native_password plugin
- SET old_passwords = 0 to force native password hashing
- SET PASSWORD with a generated 10 character password
- GRANT ALL PRIVILEGES on the configured database only
- FLUSH PRIVILEGES so the grant takes effect immediately

Usernames are drawn from a small namespace (ghost-0 through ghost-999), so a
clash with a user from an earlier run is expected and handled by retrying with
a fresh name. On success the connection user and password in gatekeeper.yaml
are replaced with the new credentials, so subsequent commands run as the
provisioned user.`,
		Before: requireConfig(p.Config),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "MySQL server host (overrides gatekeeper.yaml)",
				Config: cli.StringConfig{
					TrimSpace: true,
				},
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "MySQL server port (overrides gatekeeper.yaml)",
			},
			&cli.StringFlag{
				Name:  "user",
				Usage: "administrative user to connect as (overrides gatekeeper.yaml)",
				Config: cli.StringConfig{
					TrimSpace: true,
				},
			},
			&cli.StringFlag{
				Name:    "password",
				Usage:   "administrative password (overrides gatekeeper.yaml)",
				Sources: cli.EnvVars("MYSQL_PWD"),
			},
			&cli.StringFlag{
				Name:  "database",
				Usage: "database to grant access to (overrides gatekeeper.yaml)",
				Config: cli.StringConfig{
					TrimSpace: true,
				},
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Connection timeout for the administrative connection",
				Value: consts.DefaultConnectTimeout,
			},
			&cli.IntFlag{
				Name:  "max-attempts",
				Usage: "Give up after this many username collisions (0 retries forever)",
				Value: 0,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runProvision(ctx, cmd, p)
		},
	}
}

func runProvision(ctx context.Context, cmd *cli.Command, p provisionParams) error {
	if engine := p.Config.Database.Engine; engine != consts.DefaultEngine {
		fmt.Fprintf(cmd.Writer, "⏭  Database engine is %s, skipping user creation\n", engine)
		return nil
	}

	conn := connectionConfig(p.Config)
	applyConnectionOverrides(cmd, &conn)

	slog.Info("Starting MySQL user provisioning",
		"host", conn.Host,
		"database", conn.Database,
		"environment", conn.Environment,
	)

	prov := provision.New(provision.Config{
		Connect:     provision.MySQLConnector(cmd.Duration("timeout")),
		Store:       p.Config,
		Reporter:    &consoleReporter{w: cmd.Writer},
		MaxAttempts: int(cmd.Int("max-attempts")),
	})

	result := prov.Run(ctx, conn)

	switch result.State {
	case provision.StateSkipped:
		return nil
	case provision.StateDone:
		fmt.Fprintln(cmd.Writer)
		fmt.Fprintf(cmd.Writer, "✅ Created MySQL user %s with access to %s\n",
			result.Credential.Username, conn.Database)
		fmt.Fprintf(cmd.Writer, "📄 New credentials saved to %s\n", consts.ConfigFile)
		return nil
	default:
		fmt.Fprintln(cmd.Writer)
		renderProvisionError(cmd.Writer, result.Err)
		return errors.New("provisioning failed")
	}
}

// applyConnectionOverrides layers any connection flags the caller passed over
// the values from gatekeeper.yaml. Overrides only affect this run; the config
// file keeps its original connection settings apart from the credentials the
// pipeline saves on success.
func applyConnectionOverrides(cmd *cli.Command, conn *provision.ConnectionConfig) {
	if cmd.IsSet("host") {
		conn.Host = cmd.String("host")
	}

	if cmd.IsSet("port") {
		conn.Port = int(cmd.Int("port"))
	}

	if cmd.IsSet("user") {
		conn.User = cmd.String("user")
	}

	if cmd.IsSet("password") {
		conn.Password = cmd.String("password")
	}

	if cmd.IsSet("database") {
		conn.Database = cmd.String("database")
	}
}

// consoleReporter prints each pipeline step as it completes, matching the
// check-mark style of the rest of the CLI.
type consoleReporter struct {
	w io.Writer
}

func (r *consoleReporter) Run(name string, fn func() error) error {
	if err := fn(); err != nil {
		fmt.Fprintf(r.w, "❌ %s\n", name)
		return err
	}

	fmt.Fprintf(r.w, "✅ %s\n", name)
	return nil
}

func (r *consoleReporter) Skip(message string) {
	fmt.Fprintf(r.w, "⏭  %s\n", message)
}

// renderProvisionError writes an operator-facing explanation of a failed run.
// Configuration problems list the offending keys with their current values and
// a remediation hint; engine rejections surface the server's own message.
func renderProvisionError(w io.Writer, err error) {
	var cfgErr *provision.ConfigError
	if errors.As(err, &cfgErr) {
		fmt.Fprintf(w, "❌ %s\n", cfgErr.Message)
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Check your configuration (environment: %s):\n", cfgErr.Environment)

		keys := make([]string, 0, len(cfgErr.Config))
		for key := range cfgErr.Config {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			value := cfgErr.Config[key]
			if value == "" {
				value = "(not set)"
			}

			fmt.Fprintf(w, "  %s: %s\n", key, value)
		}

		if cfgErr.Help != "" {
			fmt.Fprintln(w)
			fmt.Fprintf(w, "💡 %s\n", cfgErr.Help)
		}

		return
	}

	var sysErr *provision.SystemError
	if errors.As(err, &sysErr) {
		fmt.Fprintf(w, "❌ %s\n", sysErr.Message)
		return
	}

	fmt.Fprintf(w, "❌ %s\n", err)
}
