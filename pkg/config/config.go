package config

import (
	"io"
	"os"
	"strconv"

	"github.com/pkg/errors"
	"github.com/pseudomuto/gatekeeper/pkg/consts"
	"gopkg.in/yaml.v3"
)

// Dotted keys accepted by Get and Set. These are the names surfaced to users
// in error messages, so they are part of the tool's contract.
const (
	KeyEnvironment = "environment"
	KeyEngine      = "database.engine"
	KeyDatabase    = "database.name"
	KeyHost        = "database.connection.host"
	KeyPort        = "database.connection.port"
	KeyUser        = "database.connection.user"
	KeyPassword    = "database.connection.password"
)

type (
	// Connection holds the parameters used to reach the database server. User
	// and Password start out as administrative credentials and are replaced by
	// the provisioned application credentials on a successful run.
	Connection struct {
		// Host is the database server hostname or IP address
		Host string `yaml:"host,omitempty"`

		// Port is the database server port (0 means the engine default)
		Port int `yaml:"port,omitempty"`

		// User is the account used to connect
		User string `yaml:"user,omitempty"`

		// Password is the account password
		Password string `yaml:"password,omitempty"`
	}

	// Database groups the engine selection, the target database name, and the
	// connection parameters.
	Database struct {
		// Engine selects the database engine ("mysql" or "sqlite3")
		Engine string `yaml:"engine,omitempty"`

		// Name is the database the provisioned user is granted rights on
		Name string `yaml:"name,omitempty"`

		// Connection holds the server connection parameters
		Connection Connection `yaml:"connection"`
	}

	// Config represents the project configuration for user provisioning.
	Config struct {
		// Environment names the configuration environment (e.g. "production")
		Environment string `yaml:"environment,omitempty"`

		// Database contains the engine, target database, and connection settings
		Database Database `yaml:"database"`

		// path remembers where the config was loaded from so Save can write back
		path string
	}
)

// LoadConfig parses a project configuration from the provided io.Reader.
//
// The function expects YAML-formatted configuration data naming the target
// environment, database engine, database name, and connection parameters. It
// uses a streaming YAML decoder and applies defaults for the environment and
// engine when they are not specified.
//
// Parameters:
//   - r: An io.Reader containing YAML configuration data
//
// Returns:
//   - *Config: Successfully parsed configuration
//   - error: Any parsing errors encountered
//
// Example:
//
//	import (
//		"strings"
//		"github.com/pseudomuto/gatekeeper/pkg/config"
//	)
//
//	yamlData := `
//	environment: production
//	database:
//	  name: ghost_prod
//	  connection:
//	    host: db.local
//	    user: root
//	    password: hunter2
//	`
//
//	cfg, err := config.LoadConfig(strings.NewReader(yamlData))
//	if err != nil {
//		panic(err)
//	}
//
//	fmt.Printf("Target database: %s\n", cfg.Database.Name)
func LoadConfig(r io.Reader) (*Config, error) {
	var cfg Config
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	// Apply defaults for values that are not specified
	if cfg.Environment == "" {
		cfg.Environment = consts.DefaultEnvironment
	}
	if cfg.Database.Engine == "" {
		cfg.Database.Engine = consts.DefaultEngine
	}

	return &cfg, nil
}

// LoadConfigFile loads a project configuration from the specified file path.
// This is a convenience function that opens the file and calls LoadConfig. The
// path is remembered so that a later Save writes back to the same file.
//
// Example:
//
//	cfg, err := config.LoadConfigFile("gatekeeper.yaml")
//	if err != nil {
//		log.Fatal("Failed to load config:", err)
//	}
//
//	fmt.Printf("Environment: %s\n", cfg.Environment)
func LoadConfigFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open file: %s", path)
	}
	defer func() { _ = f.Close() }()

	cfg, err := LoadConfig(f)
	if err != nil {
		return nil, err
	}

	cfg.path = path
	return cfg, nil
}

// Get returns the value stored under a dotted configuration key. The second
// return value reports whether the key is one this config understands.
// Unset string values are returned as "", and an unset port is returned as "".
func (c *Config) Get(key string) (string, bool) {
	switch key {
	case KeyEnvironment:
		return c.Environment, true
	case KeyEngine:
		return c.Database.Engine, true
	case KeyDatabase:
		return c.Database.Name, true
	case KeyHost:
		return c.Database.Connection.Host, true
	case KeyPort:
		if c.Database.Connection.Port == 0 {
			return "", true
		}
		return strconv.Itoa(c.Database.Connection.Port), true
	case KeyUser:
		return c.Database.Connection.User, true
	case KeyPassword:
		return c.Database.Connection.Password, true
	}

	return "", false
}

// Set stores a value under a dotted configuration key. The change is only
// in-memory until Save or SaveFile is called.
func (c *Config) Set(key, value string) error {
	switch key {
	case KeyEnvironment:
		c.Environment = value
	case KeyEngine:
		c.Database.Engine = value
	case KeyDatabase:
		c.Database.Name = value
	case KeyHost:
		c.Database.Connection.Host = value
	case KeyPort:
		port, err := strconv.Atoi(value)
		if err != nil {
			return errors.Wrapf(err, "invalid port value: %s", value)
		}
		c.Database.Connection.Port = port
	case KeyUser:
		c.Database.Connection.User = value
	case KeyPassword:
		c.Database.Connection.Password = value
	default:
		return errors.Errorf("unknown config key: %s", key)
	}

	return nil
}

// Save persists the configuration back to the file it was loaded from.
// Configs that were not loaded from a file cannot be saved this way.
func (c *Config) Save() error {
	if c.path == "" {
		return errors.New("config was not loaded from a file")
	}

	return c.SaveFile(c.path)
}

// SaveFile writes the configuration to the specified path in YAML form.
//
// Example:
//
//	if err := cfg.SaveFile("gatekeeper.yaml"); err != nil {
//		log.Fatal("Failed to save config:", err)
//	}
func (c *Config) SaveFile(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}

	if err := os.WriteFile(path, data, consts.ModeFile); err != nil {
		return errors.Wrapf(err, "failed to write file: %s", path)
	}

	c.path = path
	return nil
}
