package cmd

import (
	"net"
	"strconv"
	"time"

	"github.com/docker/docker/client"
	"github.com/pkg/errors"
	"github.com/pseudomuto/gatekeeper/pkg/config"
	"github.com/pseudomuto/gatekeeper/pkg/consts"
	"github.com/pseudomuto/gatekeeper/pkg/docker"
	"github.com/pseudomuto/gatekeeper/pkg/mysql"
	"github.com/pseudomuto/gatekeeper/pkg/provision"
)

// newDockerEngine creates a Docker engine from the ambient environment
// (DOCKER_HOST et al), negotiating the API version with the daemon.
func newDockerEngine() (*docker.Engine, error) {
	cl, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Docker client")
	}

	return docker.NewEngine(cl), nil
}

// connectionConfig maps the project configuration onto the provisioning
// pipeline's connection parameters.
func connectionConfig(cfg *config.Config) provision.ConnectionConfig {
	conn := cfg.Database.Connection

	return provision.ConnectionConfig{
		Host:        conn.Host,
		Port:        conn.Port,
		User:        conn.User,
		Password:    conn.Password,
		Database:    cfg.Database.Name,
		Environment: cfg.Environment,
	}
}

// clientOptions maps the project configuration onto MySQL client options. The
// configured user is whatever the config currently holds, so before
// provisioning this connects as the administrative user and afterwards as the
// provisioned one.
func clientOptions(cfg *config.Config, timeout time.Duration) mysql.Options {
	conn := cfg.Database.Connection

	return mysql.Options{
		Host:     conn.Host,
		Port:     conn.Port,
		User:     conn.User,
		Password: conn.Password,
		Timeout:  timeout,
	}
}

// serverAddress renders the configured server as host:port, filling in the
// default MySQL port when the config omits one.
func serverAddress(cfg *config.Config) string {
	port := cfg.Database.Connection.Port
	if port == 0 {
		port = consts.DefaultMySQLPort
	}

	return net.JoinHostPort(cfg.Database.Connection.Host, strconv.Itoa(port))
}
