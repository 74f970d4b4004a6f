package docker

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/pseudomuto/gatekeeper/pkg/consts"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mysql"
)

// DefaultRootPassword is the root password assigned to throwaway MySQL
// containers. These containers hold no real data.
const DefaultRootPassword = "gatekeeper"

type (
	// DockerOptions represents options for running MySQL in Docker
	DockerOptions struct {
		// Version is the MySQL version to run (default: 8.0)
		Version string

		// Name is the container name (optional, Docker assigns one when empty)
		Name string

		// Database is created on first startup (optional)
		Database string

		// RootPassword is the root account password (default: "gatekeeper")
		RootPassword string

		// InitScripts are SQL files executed on first startup (relative paths
		// will be converted to absolute)
		InitScripts []string

		// Labels are applied to the container
		Labels map[string]string
	}

	// MySQLContainer manages throwaway MySQL servers for provisioning tests
	// and local development
	MySQLContainer struct {
		options   DockerOptions
		container *mysql.MySQLContainer
	}
)

// New creates a new MySQL container with default options
//
// Example:
//
//	container := docker.New()
//
//	// Start MySQL container
//	if err := container.Start(ctx); err != nil {
//		log.Fatal(err)
//	}
//	defer container.Stop(ctx)
func New() *MySQLContainer {
	return &MySQLContainer{
		options: DockerOptions{},
	}
}

// NewWithOptions creates a new MySQL container with custom options
//
// Example:
//
//	opts := docker.DockerOptions{
//		Version:  "8.0",
//		Database: "ghost_dev",
//	}
//	container := docker.NewWithOptions(opts)
//
//	// Start MySQL container
//	if err := container.Start(ctx); err != nil {
//		log.Fatal(err)
//	}
//	defer container.Stop(ctx)
func NewWithOptions(opts DockerOptions) *MySQLContainer {
	return &MySQLContainer{
		options: opts,
	}
}

// Start starts a MySQL Docker container with the configured version. The
// server comes up with a usable root account so provisioning runs can connect
// immediately.
func (c *MySQLContainer) Start(ctx context.Context) error {
	if c.container != nil {
		return errors.New("container is already running")
	}

	version := c.options.Version
	if version == "" {
		version = consts.DefaultMySQLVersion
	}

	rootPassword := c.options.RootPassword
	if rootPassword == "" {
		rootPassword = DefaultRootPassword
	}

	// Build list of container customizers
	customizers := []testcontainers.ContainerCustomizer{
		mysql.WithUsername("root"),
		mysql.WithPassword(rootPassword),
	}

	if c.options.Database != "" {
		customizers = append(customizers, mysql.WithDatabase(c.options.Database))
	}

	if len(c.options.InitScripts) > 0 {
		// Convert to absolute paths so the files resolve regardless of cwd
		scripts := make([]string, len(c.options.InitScripts))
		for i, script := range c.options.InitScripts {
			abs, err := filepath.Abs(script)
			if err != nil {
				return errors.Wrapf(err, "failed to get absolute path for init script: %s", script)
			}
			scripts[i] = abs
		}

		customizers = append(customizers, mysql.WithScripts(scripts...))
	}

	if c.options.Name != "" || len(c.options.Labels) > 0 {
		customizers = append(customizers, testcontainers.CustomizeRequest(testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Name:   c.options.Name,
				Labels: c.options.Labels,
			},
		}))
	}

	container, err := mysql.Run(ctx,
		fmt.Sprintf("mysql:%s", version),
		customizers...,
	)
	if err != nil {
		return errors.Wrap(err, "failed to start MySQL container")
	}

	c.container = container
	return nil
}

// Stop stops and removes the MySQL Docker container
func (c *MySQLContainer) Stop(ctx context.Context) error {
	if c.container == nil {
		return nil // Already stopped
	}

	err := c.container.Terminate(ctx)
	c.container = nil

	if err != nil {
		return errors.Wrap(err, "failed to stop MySQL container")
	}

	return nil
}

// GetDSN returns the DSN for connecting to the Docker MySQL instance as root.
func (c *MySQLContainer) GetDSN(ctx context.Context) (string, error) {
	if c.container == nil {
		return "", errors.New("container is not running")
	}

	connectionString, err := c.container.ConnectionString(ctx)
	if err != nil {
		return "", errors.Wrap(err, "failed to get connection string")
	}

	return connectionString, nil
}

// HostPort returns the host address and mapped port for the MySQL server.
// Testcontainers assigns a random host port, so callers must not assume 3306.
func (c *MySQLContainer) HostPort(ctx context.Context) (string, int, error) {
	if c.container == nil {
		return "", 0, errors.New("container is not running")
	}

	host, err := c.container.Host(ctx)
	if err != nil {
		return "", 0, errors.Wrap(err, "failed to get container host")
	}

	port, err := c.container.MappedPort(ctx, "3306/tcp")
	if err != nil {
		return "", 0, errors.Wrap(err, "failed to get container port")
	}

	return host, port.Int(), nil
}

// RootPassword returns the password for the container's root account.
func (c *MySQLContainer) RootPassword() string {
	if c.options.RootPassword != "" {
		return c.options.RootPassword
	}

	return DefaultRootPassword
}

// IsRunning returns true if the container is currently running
func (c *MySQLContainer) IsRunning() bool {
	return c.container != nil
}
