package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/pseudomuto/gatekeeper/pkg/config"
	"github.com/pseudomuto/gatekeeper/pkg/consts"
	"github.com/pseudomuto/gatekeeper/pkg/mysql"
	"github.com/pseudomuto/gatekeeper/pkg/provision"
	"github.com/urfave/cli/v3"
	"go.uber.org/fx"
)

type statusParams struct {
	fx.In

	Config *config.Config
}

// status creates the status command for inspecting the project state.
//
// The status command summarizes the configuration, reports any gatekeeper
// managed dev servers running in Docker, and probes the configured MySQL
// server with the credentials currently in gatekeeper.yaml. Connection
// problems are reported rather than returned, so the command succeeds as
// long as the configuration itself is readable.
//
// Command flags:
//   - --timeout: Connection timeout for the server probe
//
// Example usage:
//
//	# Show configuration and connectivity
//	gatekeeper status
func status(p statusParams) *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show configuration, dev server, and connection status",
		Description: `Display the current state of the project.

The status command shows:
- The configured environment, database, server, and user
- Whether an application user has been provisioned yet
- Any gatekeeper managed MySQL dev servers running in Docker
- Whether the server accepts the configured credentials, and its version`,
		Before: requireConfig(p.Config),
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Connection timeout for the server probe",
				Value: consts.DefaultConnectTimeout,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runStatus(ctx, cmd, p)
		},
	}
}

func runStatus(ctx context.Context, cmd *cli.Command, p statusParams) error {
	slog.Info("Checking project status",
		"host", p.Config.Database.Connection.Host,
		"database", p.Config.Database.Name,
	)

	showConfigSummary(cmd.Writer, p.Config)
	showDevServers(ctx, cmd.Writer)
	checkServer(ctx, cmd.Writer, p.Config, cmd.Duration("timeout"))

	return nil
}

func showConfigSummary(w io.Writer, cfg *config.Config) {
	conn := cfg.Database.Connection

	password := "(not set)"
	if conn.Password != "" {
		password = "(set)"
	}

	fmt.Fprintln(w, "Configuration")
	fmt.Fprintf(w, "  Environment: %s\n", cfg.Environment)
	fmt.Fprintf(w, "  Engine:      %s\n", cfg.Database.Engine)
	fmt.Fprintf(w, "  Database:    %s\n", cfg.Database.Name)
	fmt.Fprintf(w, "  Server:      %s\n", serverAddress(cfg))
	fmt.Fprintf(w, "  User:        %s\n", conn.User)
	fmt.Fprintf(w, "  Password:    %s\n", password)
	fmt.Fprintln(w)

	if conn.User == provision.RootUser {
		fmt.Fprintln(w, "💡 Still connecting as root - run 'gatekeeper provision' to create an application user")
		fmt.Fprintln(w)
	}
}

func showDevServers(ctx context.Context, w io.Writer) {
	engine, err := newDockerEngine()
	if err != nil {
		fmt.Fprintln(w, "Dev server: Docker not available")
		fmt.Fprintln(w)
		return
	}

	containers, err := engine.ListManaged(ctx)
	if err != nil {
		fmt.Fprintln(w, "Dev server: Docker not available")
		fmt.Fprintln(w)
		return
	}

	if len(containers) == 0 {
		fmt.Fprintln(w, "Dev server: not running")
	} else {
		for _, container := range containers {
			fmt.Fprintf(w, "Dev server: %s (%s, %s)\n",
				strings.Join(container.Names, ", "), container.Image, container.Status)
		}
	}

	fmt.Fprintln(w)
}

func checkServer(ctx context.Context, w io.Writer, cfg *config.Config, timeout time.Duration) {
	user := cfg.Database.Connection.User

	client, err := mysql.NewClient(ctx, clientOptions(cfg, timeout))
	if err != nil {
		fmt.Fprintf(w, "❌ Cannot connect to %s as %s\n", serverAddress(cfg), user)
		fmt.Fprintf(w, "   %v\n", err)
		return
	}
	defer func() { _ = client.Close() }()

	version, err := client.GetVersion(ctx)
	if err != nil {
		fmt.Fprintf(w, "✅ Connected to %s as %s\n", serverAddress(cfg), user)
		return
	}

	fmt.Fprintf(w, "✅ Connected to %s (MySQL %s) as %s\n", serverAddress(cfg), version, user)

	if version.NativePasswordDisabled() {
		fmt.Fprintf(w, "⚠️  MySQL %d.%d ships with mysql_native_password disabled - provisioning requires the plugin to be enabled\n",
			version.Major, version.Minor)
	}
}
