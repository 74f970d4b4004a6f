package consts

import (
	"os"
	"time"
)

const (
	// ConfigFile is the name of the project configuration file
	ConfigFile = "gatekeeper.yaml"

	// DefaultEngine is the database engine provisioning targets by default
	DefaultEngine = "mysql"

	// DefaultMySQLHost is the host used when the connection config omits one
	DefaultMySQLHost = "localhost"

	// DefaultMySQLPort is the port used when the connection config omits one
	DefaultMySQLPort = 3306

	// DefaultMySQLVersion is the MySQL version used for the dev server
	DefaultMySQLVersion = "8.0"

	// DefaultEnvironment is the environment name used when none is configured
	DefaultEnvironment = "development"

	// DefaultConnectTimeout bounds how long connection attempts wait for the
	// MySQL server before failing
	DefaultConnectTimeout = 30 * time.Second

	// ModeDir is the standard file mode for creating directories
	ModeDir = os.FileMode(0o755)

	// ModeFile is the standard file mode for creating files
	ModeFile = os.FileMode(0o644)
)
