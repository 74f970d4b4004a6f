package provision

import (
	"fmt"
	"net"
	"strconv"

	"github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
	"github.com/pseudomuto/gatekeeper/pkg/config"
	"github.com/pseudomuto/gatekeeper/pkg/consts"
)

// MySQL server error codes the pipeline reacts to.
const (
	errAccessDenied uint16 = 1045 // ER_ACCESS_DENIED_ERROR
	errCannotUser   uint16 = 1396 // ER_CANNOT_USER
)

// RedactedValue is what ConfigError carries in place of secret values.
const RedactedValue = "(hidden)"

type (
	// ConfigError indicates the run failed because of a value the operator
	// controls. It names the offending configuration keys with their current
	// values so the operator knows exactly what to fix, and carries a
	// remediation hint.
	ConfigError struct {
		// Message is the operator-facing description of the failure
		Message string

		// Config maps the offending configuration keys to their current
		// values (secrets redacted)
		Config map[string]string

		// Environment is the configuration environment the run used
		Environment string

		// Help is a remediation hint
		Help string

		cause error
	}

	// SystemError indicates the database engine rejected an operation for a
	// reason outside the operator's configuration. The engine's own message
	// is preserved so the operator sees the real cause.
	SystemError struct {
		// Message describes the failed operation, including the engine's
		// error message
		Message string

		cause error
	}
)

func (e *ConfigError) Error() string { return e.Message }

// Unwrap exposes the underlying driver error.
func (e *ConfigError) Unwrap() error { return e.cause }

func (e *SystemError) Error() string { return e.Message }

// Unwrap exposes the underlying driver error.
func (e *SystemError) Unwrap() error { return e.cause }

// newSystemError wraps an engine failure, surfacing the engine's message
// rather than the driver's full error string.
func newSystemError(op string, err error) *SystemError {
	return &SystemError{
		Message: fmt.Sprintf("%s errored with message: %s", op, engineMessage(err)),
		cause:   err,
	}
}

// engineMessage extracts the server-side message from a driver error, falling
// back to the error's own rendering for non-server failures.
func engineMessage(err error) string {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Message
	}

	return err.Error()
}

// ClassifyConnectError translates a connection failure into an operator
// facing error. Network failures point at the host and port keys, rejected
// credentials point at the user and password keys, and anything else is
// returned unchanged.
func ClassifyConnectError(err error, cfg ConnectionConfig) error {
	if err == nil {
		return nil
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == errAccessDenied {
		return &ConfigError{
			Message:     "Invalid database username or password",
			Environment: cfg.Environment,
			Config: map[string]string{
				config.KeyUser:     cfg.User,
				config.KeyPassword: RedactedValue,
			},
			Help:  "Fix the credentials in " + consts.ConfigFile + " and run `gatekeeper provision` again",
			cause: err,
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return &ConfigError{
			Message:     "Unable to connect to the MySQL server",
			Environment: cfg.Environment,
			Config: map[string]string{
				config.KeyHost: cfg.Host,
				config.KeyPort: displayPort(cfg.Port),
			},
			Help:  "Verify the MySQL server is running and reachable at the configured host and port",
			cause: err,
		}
	}

	return err
}

// isDuplicateUser reports whether err is the server rejecting CREATE USER
// because the account already exists.
func isDuplicateUser(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == errCannotUser
}

// displayPort renders the configured port for error output, substituting the
// default when the operator never set one.
func displayPort(port int) string {
	if port == 0 {
		return strconv.Itoa(consts.DefaultMySQLPort)
	}

	return strconv.Itoa(port)
}
