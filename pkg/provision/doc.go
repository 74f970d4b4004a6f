// Package provision implements the MySQL user provisioning pipeline.
//
// A run connects to the server with an administrative account, creates a new
// least-privilege user with a random name and password, grants it full rights
// on a single database, and persists the credentials to the configuration
// store. The pipeline only runs when the administrative user is root; any
// other account cannot create users, so the run is skipped rather than
// failed.
//
// # States
//
// A run moves strictly forward through connecting, creating_user,
// granting_privileges and committing, ending in done. creating_user re-enters
// itself when the generated username collides with an existing account, and
// failed absorbs the first error from any step. A non-root administrative
// user short-circuits to skipped before any connection is opened.
//
// # Errors
//
// Failures the operator can fix (unreachable server, rejected credentials)
// surface as *ConfigError naming the configuration keys to change. Failures
// inside the engine surface as *SystemError carrying the engine's own
// message. Anything else propagates unchanged.
//
// Example usage:
//
//	p := provision.New(provision.Config{
//		Connect:  provision.MySQLConnector(10 * time.Second),
//		Store:    cfg,
//		Reporter: reporter,
//	})
//
//	result := p.Run(ctx, provision.ConnectionConfig{
//		Host:        cfg.Database.Connection.Host,
//		Port:        cfg.Database.Connection.Port,
//		User:        cfg.Database.Connection.User,
//		Password:    cfg.Database.Connection.Password,
//		Database:    cfg.Database.Name,
//		Environment: cfg.Environment,
//	})
package provision
