package provision

import (
	"context"
	"time"

	"github.com/pseudomuto/gatekeeper/pkg/mysql"
)

// MySQLConnector returns a Connector backed by pkg/mysql. The connection is
// opened without selecting a database (the target database does not need to
// exist yet) and verified with a ping before it is handed to the pipeline;
// ping failures are classified into operator-facing errors.
func MySQLConnector(timeout time.Duration) Connector {
	return func(ctx context.Context, cfg ConnectionConfig) (Conn, error) {
		client, err := mysql.NewClient(ctx, mysql.Options{
			Host:     cfg.Host,
			Port:     cfg.Port,
			User:     cfg.User,
			Password: cfg.Password,
			Timeout:  timeout,
		})
		if err != nil {
			return nil, ClassifyConnectError(err, cfg)
		}

		return client, nil
	}
}
