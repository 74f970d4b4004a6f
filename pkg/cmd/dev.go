package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/pseudomuto/gatekeeper/pkg/config"
	"github.com/pseudomuto/gatekeeper/pkg/consts"
	"github.com/pseudomuto/gatekeeper/pkg/docker"
	"github.com/pseudomuto/gatekeeper/pkg/mysql"
	"github.com/pseudomuto/gatekeeper/pkg/provision"
	"github.com/urfave/cli/v3"
	"go.uber.org/fx"
)

const (
	devContainerName = "gatekeeper-dev"
	devStartTimeout  = 2 * time.Minute
)

type devParams struct {
	fx.In

	Config *config.Config
}

// dev creates the dev command group for managing a local MySQL server. The
// server runs as a named, labeled Docker container that outlives the CLI
// process, so 'dev up' and 'dev down' can be run independently.
func dev(p devParams) *cli.Command {
	return &cli.Command{
		Name:  "dev",
		Usage: "Manage the local MySQL development server",
		Commands: []*cli.Command{
			devUp(p),
			devDown(),
		},
	}
}

// devUp creates the dev up command.
//
// The command starts a MySQL container with the configured database precreated
// and a known root password, waits until the server accepts connections, and
// prints the connection details. The container keeps running after the command
// exits.
//
// Command flags:
//   - --version: MySQL version to run
//   - --pull: Pull the MySQL image before starting
//
// Example usage:
//
//	# Start a local MySQL 8.0 server
//	gatekeeper dev up
//
//	# Pull and run a specific version
//	gatekeeper dev up --version 8.4 --pull
func devUp(p devParams) *cli.Command {
	return &cli.Command{
		Name:   "up",
		Usage:  "Start a MySQL development server for the configured database",
		Before: requireConfig(p.Config),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "version",
				Usage: "MySQL version to run",
				Value: consts.DefaultMySQLVersion,
				Config: cli.StringConfig{
					TrimSpace: true,
				},
			},
			&cli.BoolFlag{
				Name:  "pull",
				Usage: "Pull the MySQL image before starting",
				Value: false,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runDevUp(ctx, cmd, p)
		},
	}
}

func devDown() *cli.Command {
	return &cli.Command{
		Name:   "down",
		Usage:  "Stop and remove the MySQL development server",
		Action: runDevDown,
	}
}

func runDevUp(ctx context.Context, cmd *cli.Command, p devParams) error {
	engine, err := newDockerEngine()
	if err != nil {
		return err
	}

	if _, err := engine.Get(ctx, devContainerName); err == nil {
		fmt.Fprintln(cmd.Writer, "MySQL development server is already running")
		fmt.Fprintln(cmd.Writer, "Use 'gatekeeper dev down' to stop it first")
		return nil
	}

	img := fmt.Sprintf("mysql:%s", cmd.String("version"))

	if cmd.Bool("pull") {
		fmt.Fprintf(cmd.Writer, "⏳ Pulling %s...\n", img)
		if err := engine.Pull(ctx, img); err != nil {
			return err
		}
	}

	port := devPort(p.Config)

	fmt.Fprintf(cmd.Writer, "⏳ Starting %s container...\n", img)

	err = engine.Start(ctx, docker.ContainerOptions{
		Name:  devContainerName,
		Image: img,
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": docker.DefaultRootPassword,
			"MYSQL_DATABASE":      p.Config.Database.Name,
		},
		Ports: map[int]int{port: 3306},
		Labels: map[string]string{
			docker.ManagedLabel: "true",
		},
	})
	if err != nil {
		return errors.Wrap(err, "failed to start MySQL container")
	}

	fmt.Fprintln(cmd.Writer, "⏳ Waiting for MySQL to accept connections...")

	if err := waitForMySQL(ctx, mysql.Options{
		Host:     "127.0.0.1",
		Port:     port,
		User:     provision.RootUser,
		Password: docker.DefaultRootPassword,
		Timeout:  5 * time.Second,
	}); err != nil {
		return err
	}

	printDevConnectionDetails(cmd.Writer, p.Config, port)
	return nil
}

func runDevDown(ctx context.Context, cmd *cli.Command) error {
	engine, err := newDockerEngine()
	if err != nil {
		return err
	}

	if _, err := engine.Get(ctx, devContainerName); err != nil {
		fmt.Fprintln(cmd.Writer, "No MySQL development server is currently running")
		return nil
	}

	if err := engine.Stop(ctx, devContainerName); err != nil {
		return err
	}

	fmt.Fprintln(cmd.Writer, "MySQL development server stopped")
	return nil
}

// devPort returns the host port to publish the dev server on. The configured
// port keeps 'dev up' and 'provision' pointed at the same address.
func devPort(cfg *config.Config) int {
	if port := cfg.Database.Connection.Port; port != 0 {
		return port
	}

	return consts.DefaultMySQLPort
}

// waitForMySQL polls the server until it accepts a root connection. MySQL
// containers restart once during initialization, so early connection
// failures are expected here.
func waitForMySQL(ctx context.Context, opts mysql.Options) error {
	deadline := time.Now().Add(devStartTimeout)

	for {
		client, err := mysql.NewClient(ctx, opts)
		if err == nil {
			return client.Close()
		}

		if time.Now().After(deadline) {
			return errors.Wrap(err, "timed out waiting for MySQL to accept connections")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
		}
	}
}

func printDevConnectionDetails(w io.Writer, cfg *config.Config, port int) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintln(w, "MySQL Development Server Started")
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintf(w, "Host:     %s\n", consts.DefaultMySQLHost)
	fmt.Fprintf(w, "Port:     %d\n", port)
	fmt.Fprintf(w, "User:     %s\n", provision.RootUser)
	fmt.Fprintf(w, "Password: %s\n", docker.DefaultRootPassword)
	fmt.Fprintf(w, "Database: %s\n", cfg.Database.Name)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Use 'gatekeeper provision' to create an application user")
	fmt.Fprintln(w, "Use 'gatekeeper dev down' to stop the server")
	fmt.Fprintln(w, strings.Repeat("=", 60))
}
