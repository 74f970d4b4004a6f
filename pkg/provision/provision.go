package provision

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"
	"github.com/pseudomuto/gatekeeper/pkg/config"
	"github.com/pseudomuto/gatekeeper/pkg/utils"
)

type (
	// Conn is the slice of a database connection the pipeline needs. It is
	// satisfied by *mysql.Client and by test doubles.
	Conn interface {
		Exec(ctx context.Context, query string, args ...any) error
		Close() error
	}

	// Connector opens an administrative connection for the given parameters.
	// Implementations classify their failures (see ConfigError) and must not
	// leave a half-open connection behind when returning an error.
	Connector func(ctx context.Context, cfg ConnectionConfig) (Conn, error)

	// Store is the slice of the configuration store the pipeline writes the
	// provisioned credentials into. It is satisfied by *config.Config.
	Store interface {
		Set(key, value string) error
		Save() error
	}

	// ConnectionConfig carries the caller-supplied connection parameters. The
	// pipeline treats it as read-only.
	ConnectionConfig struct {
		// Host is the database server address, also used as the host part of
		// the provisioned account
		Host string

		// Port is the database server port (0 means the default, 3306)
		Port int

		// User is the administrative account used to connect
		User string

		// Password is the administrative account password
		Password string

		// Database is the single database the new user is granted rights on
		Database string

		// Environment names the configuration environment, used in errors
		Environment string
	}

	// Credential is the username/password pair produced by a successful run.
	Credential struct {
		Username string
		Password string
	}

	// Config contains configuration options for creating a Provisioner.
	Config struct {
		// Connect opens the administrative connection
		Connect Connector

		// Store receives the provisioned credentials on success
		Store Store

		// Reporter receives named progress steps (defaults to NopReporter)
		Reporter Reporter

		// UsernameFunc generates candidate usernames (defaults to NewUsername)
		UsernameFunc func() (string, error)

		// PasswordFunc generates account passwords (defaults to NewPassword)
		PasswordFunc func() (string, error)

		// MaxAttempts caps the username collision retry loop. Zero means
		// unlimited, matching the historical behavior.
		MaxAttempts int
	}

	// Provisioner runs the user provisioning pipeline: connect with
	// administrative credentials, create a least-privilege user, grant it
	// rights on a single database, and persist the new credentials.
	//
	// Example usage:
	//
	//	p := provision.New(provision.Config{
	//		Connect:  connector,
	//		Store:    cfg,
	//		Reporter: reporter,
	//	})
	//
	//	result := p.Run(ctx, provision.ConnectionConfig{
	//		Host:     "db.local",
	//		User:     "root",
	//		Password: "hunter2",
	//		Database: "ghost_prod",
	//	})
	//	if result.Err != nil {
	//		log.Fatal(result.Err)
	//	}
	Provisioner struct {
		connect     Connector
		store       Store
		reporter    Reporter
		username    func() (string, error)
		password    func() (string, error)
		maxAttempts int
	}

	// Result describes the terminal state of a pipeline run.
	Result struct {
		// State is the terminal pipeline state
		State State

		// Credential holds the provisioned account when State is StateDone
		Credential *Credential

		// Err is set when State is StateFailed
		Err error
	}

	// State identifies a pipeline state.
	State string
)

// Pipeline states. Control flows strictly forward; StateCreatingUser is the
// only state that re-enters itself (on a duplicate-user collision), and
// StateFailed absorbs the first non-collision error from any step.
const (
	StateIdle               State = "idle"
	StateConnecting         State = "connecting"
	StateCreatingUser       State = "creating_user"
	StateGrantingPrivileges State = "granting_privileges"
	StateCommitting         State = "committing"
	StateDone               State = "done"
	StateFailed             State = "failed"
	StateSkipped            State = "skipped"
)

// Progress step names surfaced through the Reporter.
const (
	StepConnect    = "Connecting to database"
	StepCreateUser = "Creating new MySQL user"
	StepGrant      = "Granting new user permissions"
	StepSave       = "Saving new config"
)

// RootUser is the administrative username that gates provisioning. Running
// under any other account skips the pipeline entirely, since only a
// root-equivalent account can create users and grant privileges.
const RootUser = "root"

// New creates a provisioner with the provided configuration. Connect and
// Store are required; the remaining collaborators default to the production
// implementations.
func New(cfg Config) *Provisioner {
	p := &Provisioner{
		connect:     cfg.Connect,
		store:       cfg.Store,
		reporter:    cfg.Reporter,
		username:    cfg.UsernameFunc,
		password:    cfg.PasswordFunc,
		maxAttempts: cfg.MaxAttempts,
	}

	if p.reporter == nil {
		p.reporter = NopReporter{}
	}
	if p.username == nil {
		p.username = NewUsername
	}
	if p.password == nil {
		p.password = NewPassword
	}

	return p
}

// Run executes the provisioning pipeline against the given connection config.
//
// The pipeline is strictly sequential: connect, create user (retrying with a
// fresh username on a duplicate-user collision), grant privileges on the
// target database, then persist the credentials. The first non-collision
// error aborts the remaining steps. The administrative connection is closed
// exactly once on every path where it was successfully opened.
//
// When the administrative user is not root, the run is skipped (reported
// through the Reporter, not as an error) and no statements are issued.
func (p *Provisioner) Run(ctx context.Context, cfg ConnectionConfig) *Result {
	if cfg.User != RootUser {
		p.reporter.Skip("MySQL user is not root, skipping user creation")
		return &Result{State: StateSkipped}
	}

	if err := validateConfig(cfg); err != nil {
		return &Result{State: StateFailed, Err: err}
	}

	var conn Conn
	if err := p.reporter.Run(StepConnect, func() error {
		c, err := p.connect(ctx, cfg)
		if err != nil {
			return err
		}

		conn = c
		return nil
	}); err != nil {
		return &Result{State: StateFailed, Err: err}
	}

	// Single scoped release: every later exit path closes the connection
	// exactly once, before the result reaches the caller.
	defer func() { _ = conn.Close() }()

	var cred *Credential
	if err := p.reporter.Run(StepCreateUser, func() error {
		c, err := p.createUser(ctx, conn, cfg)
		if err != nil {
			return err
		}

		cred = c
		return nil
	}); err != nil {
		return &Result{State: StateFailed, Err: err}
	}

	if err := p.reporter.Run(StepGrant, func() error {
		return p.grant(ctx, conn, cred, cfg)
	}); err != nil {
		return &Result{State: StateFailed, Err: err}
	}

	if err := p.reporter.Run(StepSave, func() error {
		return p.commit(cred)
	}); err != nil {
		return &Result{State: StateFailed, Err: err}
	}

	return &Result{State: StateDone, Credential: cred}
}

// createUser provisions a new account on the server. Candidate usernames are
// drawn from a small namespace, so collisions with accounts from earlier runs
// are the expected, handled case: the attempt is discarded and a fresh
// username generated. Collided accounts remain on the server with no usable
// password; they are not cleaned up.
func (p *Provisioner) createUser(ctx context.Context, conn Conn, cfg ConnectionConfig) (*Credential, error) {
	for attempt := 1; ; attempt++ {
		username, err := p.username()
		if err != nil {
			return nil, errors.Wrap(err, "failed to generate username")
		}

		password, err := p.password()
		if err != nil {
			return nil, errors.Wrap(err, "failed to generate password")
		}

		err = conn.Exec(ctx, CreateUserStatement(username, cfg.Host))
		if isDuplicateUser(err) {
			slog.Debug("MySQL user already exists, regenerating username",
				"username", username,
				"attempt", attempt,
			)

			if p.maxAttempts > 0 && attempt >= p.maxAttempts {
				return nil, errors.Errorf("gave up creating a MySQL user after %d name collisions", attempt)
			}
			continue
		}
		if err != nil {
			return nil, newSystemError("creating new MySQL user", err)
		}

		if err := conn.Exec(ctx, DisableLegacyPasswordsStatement()); err != nil {
			return nil, newSystemError("disabling legacy password hashing", err)
		}

		if err := conn.Exec(ctx, SetPasswordStatement(username, cfg.Host, password)); err != nil {
			return nil, newSystemError("setting MySQL user password", err)
		}

		return &Credential{Username: username, Password: password}, nil
	}
}

// grant gives the account full rights on exactly the target database, then
// flushes the privilege cache so the grant takes effect without a restart.
func (p *Provisioner) grant(ctx context.Context, conn Conn, cred *Credential, cfg ConnectionConfig) error {
	if err := conn.Exec(ctx, GrantAllStatement(cfg.Database, cred.Username, cfg.Host)); err != nil {
		return newSystemError("granting database permissions", err)
	}

	if err := conn.Exec(ctx, FlushPrivilegesStatement()); err != nil {
		return newSystemError("flushing privileges", err)
	}

	return nil
}

// commit writes the provisioned credentials into the configuration store and
// triggers a durable save. This only runs after both the user creation and
// the privilege grant succeeded, so no partial credential is ever persisted.
func (p *Provisioner) commit(cred *Credential) error {
	if err := p.store.Set(config.KeyUser, cred.Username); err != nil {
		return errors.Wrap(err, "failed to store username")
	}

	if err := p.store.Set(config.KeyPassword, cred.Password); err != nil {
		return errors.Wrap(err, "failed to store password")
	}

	return errors.Wrap(p.store.Save(), "failed to save config")
}

func validateConfig(cfg ConnectionConfig) error {
	if !utils.IsSafeHostPart(cfg.Host) {
		return errors.Errorf("invalid connection host: %q", cfg.Host)
	}

	if !utils.IsSafeIdentifier(cfg.Database) {
		return errors.Errorf("invalid database name: %q", cfg.Database)
	}

	return nil
}
