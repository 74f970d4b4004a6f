package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/pseudomuto/gatekeeper/pkg/config"
	"github.com/pseudomuto/gatekeeper/pkg/consts"
	"github.com/pseudomuto/gatekeeper/pkg/provision"
	"github.com/urfave/cli/v3"
)

// initCmd creates the init command for generating a starter configuration
// file. The command refuses to overwrite an existing gatekeeper.yaml.
//
// Command flags:
//   - --database: Database the provisioned user is granted access to (required)
//   - --environment: Environment name
//   - --host: MySQL server host
//   - --port: MySQL server port
//   - --user: Administrative user for provisioning
//   - --password: Administrative password (also read from MYSQL_PWD)
//
// Example usage:
//
//	# Create a config for a local database
//	gatekeeper init --database ghost_dev
//
//	# Create a config for a remote server
//	gatekeeper init --database ghost_prod --host db.example.com --environment production
func initCmd() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Create a starter gatekeeper.yaml in the current directory",
		Description: `Write a gatekeeper.yaml describing the target database and the
administrative connection used for provisioning.

The generated config connects as root, which is what provisioning requires.
Once 'gatekeeper provision' succeeds, the root credentials in the file are
replaced with the provisioned application user.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "database",
				Usage:    "database the provisioned user is granted access to",
				Required: true,
				Config: cli.StringConfig{
					TrimSpace: true,
				},
			},
			&cli.StringFlag{
				Name:  "environment",
				Usage: "environment name",
				Value: consts.DefaultEnvironment,
				Config: cli.StringConfig{
					TrimSpace: true,
				},
			},
			&cli.StringFlag{
				Name:  "host",
				Usage: "MySQL server host",
				Value: consts.DefaultMySQLHost,
				Config: cli.StringConfig{
					TrimSpace: true,
				},
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "MySQL server port",
				Value: consts.DefaultMySQLPort,
			},
			&cli.StringFlag{
				Name:  "user",
				Usage: "administrative user for provisioning",
				Value: provision.RootUser,
				Config: cli.StringConfig{
					TrimSpace: true,
				},
			},
			&cli.StringFlag{
				Name:    "password",
				Usage:   "administrative password",
				Sources: cli.EnvVars("MYSQL_PWD"),
			},
		},
		Action: runInit,
	}
}

func runInit(ctx context.Context, cmd *cli.Command) error {
	if _, err := os.Stat(consts.ConfigFile); err == nil {
		return errors.Errorf("%s already exists", consts.ConfigFile)
	}

	cfg := &config.Config{
		Environment: cmd.String("environment"),
		Database: config.Database{
			Engine: consts.DefaultEngine,
			Name:   cmd.String("database"),
			Connection: config.Connection{
				Host:     cmd.String("host"),
				Port:     int(cmd.Int("port")),
				User:     cmd.String("user"),
				Password: cmd.String("password"),
			},
		},
	}

	if err := cfg.SaveFile(consts.ConfigFile); err != nil {
		return err
	}

	fmt.Fprintf(cmd.Writer, "✅ Created %s\n", consts.ConfigFile)
	fmt.Fprintln(cmd.Writer, "💡 Fill in the administrative password, then run 'gatekeeper provision'")
	return nil
}
