package mysql

import (
	"context"
	"database/sql"
	"net"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
	"github.com/pseudomuto/gatekeeper/pkg/consts"
)

type (
	// Options configures a MySQL client connection. Database is optional;
	// administrative connections are opened without selecting one so the
	// target database does not need to exist yet.
	Options struct {
		// Host is the server hostname or IP address (default: localhost)
		Host string

		// Port is the server port (default: 3306)
		Port int

		// User is the account to authenticate as
		User string

		// Password is the account password
		Password string

		// Database is the schema to select after connecting (optional)
		Database string

		// Timeout bounds the initial dial (optional)
		Timeout time.Duration
	}

	// Client represents a MySQL database connection
	Client struct {
		db *sql.DB
	}
)

// DSN renders the options as a go-sql-driver DSN string, applying the
// default host and port when unset.
func (o Options) DSN() string {
	host := o.Host
	if host == "" {
		host = consts.DefaultMySQLHost
	}

	port := o.Port
	if port == 0 {
		port = consts.DefaultMySQLPort
	}

	cfg := mysql.NewConfig()
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	cfg.User = o.User
	cfg.Passwd = o.Password
	cfg.DBName = o.Database
	cfg.Timeout = o.Timeout

	return cfg.FormatDSN()
}

// NewClient opens a MySQL client connection and verifies it with a ping.
// The underlying driver error from a failed ping is preserved in the chain so
// callers can classify it (unreachable host vs. rejected credentials).
//
// Example:
//
//	client, err := mysql.NewClient(ctx, mysql.Options{
//	    Host: "db.local",
//	    User: "root",
//	    Password: "hunter2",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	db, err := sql.Open("mysql", opts.DSN())
	if err != nil {
		return nil, errors.Wrap(err, "failed to open mysql connection")
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to ping mysql server")
	}

	return &Client{db: db}, nil
}

// Close closes the MySQL connection
func (c *Client) Close() error {
	return c.db.Close()
}

// Ping verifies the connection is still alive
func (c *Client) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// Exec executes a statement without returning rows
func (c *Client) Exec(ctx context.Context, query string, args ...any) error {
	_, err := c.db.ExecContext(ctx, query, args...)
	return err
}

// Query executes a query that returns rows
func (c *Client) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return c.db.QueryContext(ctx, query, args...)
}

// QueryRow executes a query that returns at most one row
func (c *Client) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return c.db.QueryRowContext(ctx, query, args...)
}
