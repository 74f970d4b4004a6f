// Package mysql provides the client used to talk to MySQL servers.
//
// This package offers connection management on top of database/sql with the
// go-sql-driver backend, plus server version discovery. It serves as the
// bridge between the Gatekeeper tool and actual MySQL deployments.
//
// Key features:
//   - DSN construction from structured options with sensible defaults
//   - Connection verification via ping at open time, with the underlying
//     driver error preserved for classification by callers
//   - Administrative connections that do not select a database (the target
//     database does not need to exist at connect time)
//   - Server version retrieval and parsing, including MariaDB detection and
//     a check for servers that ship with mysql_native_password disabled
//
// The client is intentionally thin: provisioning logic lives in the provision
// package, which drives this client through a narrow interface so that tests
// can substitute doubles.
//
// Example usage:
//
//	client, err := mysql.NewClient(ctx, mysql.Options{
//	    Host:     "db.local",
//	    Port:     3306,
//	    User:     "root",
//	    Password: "hunter2",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	version, err := client.GetVersion(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Connected to MySQL %s\n", version)
package mysql
