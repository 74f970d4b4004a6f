// Package docker provides Docker integration for running temporary MySQL
// instances for provisioning runs and local development.
//
// Two levels of control are offered. MySQLContainer wraps the testcontainers
// MySQL module for throwaway servers with automatic lifecycle management,
// used by integration tests. Engine wraps the Docker SDK directly for named,
// labeled containers that outlive the gatekeeper process, used by the dev
// server commands.
//
// # Usage Example
//
//	import (
//		"context"
//		"github.com/pseudomuto/gatekeeper/pkg/docker"
//		"github.com/pseudomuto/gatekeeper/pkg/mysql"
//	)
//
//	// Create and configure MySQL container
//	container := docker.NewWithOptions(docker.DockerOptions{
//		Version:  "8.0",
//		Database: "ghost_dev",
//	})
//
//	ctx := context.Background()
//	defer container.Stop(ctx)
//
//	if err := container.Start(ctx); err != nil {
//		log.Fatal(err)
//	}
//
//	// Get connection details
//	host, port, _ := container.HostPort(ctx)
//
//	// Connect using the MySQL client
//	client, _ := mysql.NewClient(ctx, mysql.Options{
//		Host:     host,
//		Port:     port,
//		User:     "root",
//		Password: container.RootPassword(),
//	})
//	defer client.Close()
//
// Containers started through Engine carry the gatekeeper managed label so
// later invocations can find and stop them without guessing at names.
package docker
