package provision_test

import (
	"context"
	"strings"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
	"github.com/pseudomuto/gatekeeper/pkg/config"
	"github.com/pseudomuto/gatekeeper/pkg/provision"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockConn struct {
	execFunc func(context.Context, string) error
	execs    []string
	closes   int
}

func (m *mockConn) Exec(ctx context.Context, query string, _ ...any) error {
	m.execs = append(m.execs, query)
	if m.execFunc != nil {
		return m.execFunc(ctx, query)
	}
	return nil
}

func (m *mockConn) Close() error {
	m.closes++
	return nil
}

type mockStore struct {
	setFunc  func(key, value string) error
	saveFunc func() error
	values   map[string]string
	saves    int
}

func (m *mockStore) Set(key, value string) error {
	if m.values == nil {
		m.values = map[string]string{}
	}
	m.values[key] = value

	if m.setFunc != nil {
		return m.setFunc(key, value)
	}
	return nil
}

func (m *mockStore) Save() error {
	m.saves++
	if m.saveFunc != nil {
		return m.saveFunc()
	}
	return nil
}

type mockReporter struct {
	steps    []string
	failures []string
	skips    []string
}

func (m *mockReporter) Run(name string, fn func() error) error {
	m.steps = append(m.steps, name)

	err := fn()
	if err != nil {
		m.failures = append(m.failures, name)
	}
	return err
}

func (m *mockReporter) Skip(message string) {
	m.skips = append(m.skips, message)
}

// sequence returns successive values on each call, repeating the last one
// once exhausted.
func sequence(values ...string) func() (string, error) {
	i := 0
	return func() (string, error) {
		v := values[i]
		if i < len(values)-1 {
			i++
		}
		return v, nil
	}
}

func TestNew(t *testing.T) {
	p := provision.New(provision.Config{
		Connect: func(context.Context, provision.ConnectionConfig) (provision.Conn, error) {
			return &mockConn{}, nil
		},
		Store: &mockStore{},
	})

	assert.NotNil(t, p)
}

func TestProvisioner_Run(t *testing.T) {
	tests := []struct {
		name           string
		database       string
		connectErr     error
		setupConn      func(*mockConn)
		setupStore     func(*mockStore)
		usernames      []string
		passwords      []string
		maxAttempts    int
		wantState      provision.State
		wantErr        string
		wantExecs      []string
		wantCredential *provision.Credential
		wantStored     map[string]string
		wantSaves      int
		wantCloses     int
	}{
		{
			name:      "successful provisioning",
			usernames: []string{"ghost-42"},
			passwords: []string{"aB3$efghij"},
			wantState: provision.StateDone,
			wantExecs: []string{
				"CREATE USER 'ghost-42'@'localhost' IDENTIFIED WITH mysql_native_password;",
				"SET old_passwords = 0;",
				"SET PASSWORD FOR 'ghost-42'@'localhost' = PASSWORD('aB3$efghij');",
				"GRANT ALL PRIVILEGES ON `ghost_prod`.* TO 'ghost-42'@'localhost';",
				"FLUSH PRIVILEGES;",
			},
			wantCredential: &provision.Credential{Username: "ghost-42", Password: "aB3$efghij"},
			wantStored: map[string]string{
				config.KeyUser:     "ghost-42",
				config.KeyPassword: "aB3$efghij",
			},
			wantSaves:  1,
			wantCloses: 1,
		},
		{
			name: "username collision retries with fresh credentials",
			setupConn: func(m *mockConn) {
				m.execFunc = func(_ context.Context, query string) error {
					if strings.HasPrefix(query, "CREATE USER 'ghost-42'") {
						return &mysql.MySQLError{
							Number:  1396,
							Message: "Operation CREATE USER failed for 'ghost-42'@'localhost'",
						}
					}
					return nil
				}
			},
			usernames: []string{"ghost-42", "ghost-17"},
			passwords: []string{"firstPW1!x", "secondPW2@"},
			wantState: provision.StateDone,
			wantExecs: []string{
				"CREATE USER 'ghost-42'@'localhost' IDENTIFIED WITH mysql_native_password;",
				"CREATE USER 'ghost-17'@'localhost' IDENTIFIED WITH mysql_native_password;",
				"SET old_passwords = 0;",
				"SET PASSWORD FOR 'ghost-17'@'localhost' = PASSWORD('secondPW2@');",
				"GRANT ALL PRIVILEGES ON `ghost_prod`.* TO 'ghost-17'@'localhost';",
				"FLUSH PRIVILEGES;",
			},
			wantCredential: &provision.Credential{Username: "ghost-17", Password: "secondPW2@"},
			wantStored: map[string]string{
				config.KeyUser:     "ghost-17",
				config.KeyPassword: "secondPW2@",
			},
			wantSaves:  1,
			wantCloses: 1,
		},
		{
			name: "gives up after max collision attempts",
			setupConn: func(m *mockConn) {
				m.execFunc = func(_ context.Context, query string) error {
					if strings.HasPrefix(query, "CREATE USER") {
						return &mysql.MySQLError{Number: 1396, Message: "Operation CREATE USER failed"}
					}
					return nil
				}
			},
			usernames:   []string{"ghost-1", "ghost-2", "ghost-3"},
			passwords:   []string{"aB3$efghij"},
			maxAttempts: 3,
			wantState:   provision.StateFailed,
			wantErr:     "gave up creating a MySQL user after 3 name collisions",
			wantExecs: []string{
				"CREATE USER 'ghost-1'@'localhost' IDENTIFIED WITH mysql_native_password;",
				"CREATE USER 'ghost-2'@'localhost' IDENTIFIED WITH mysql_native_password;",
				"CREATE USER 'ghost-3'@'localhost' IDENTIFIED WITH mysql_native_password;",
			},
			wantCloses: 1,
		},
		{
			name:       "connect failure propagates classified error",
			connectErr: errors.New("Unable to connect to the MySQL server"),
			usernames:  []string{"ghost-42"},
			passwords:  []string{"aB3$efghij"},
			wantState:  provision.StateFailed,
			wantErr:    "Unable to connect to the MySQL server",
		},
		{
			name: "create user failure surfaces engine message",
			setupConn: func(m *mockConn) {
				m.execFunc = func(_ context.Context, query string) error {
					if strings.HasPrefix(query, "CREATE USER") {
						return &mysql.MySQLError{Number: 1142, Message: "CREATE command denied to user"}
					}
					return nil
				}
			},
			usernames: []string{"ghost-42"},
			passwords: []string{"aB3$efghij"},
			wantState: provision.StateFailed,
			wantErr:   "creating new MySQL user errored with message: CREATE command denied to user",
			wantExecs: []string{
				"CREATE USER 'ghost-42'@'localhost' IDENTIFIED WITH mysql_native_password;",
			},
			wantCloses: 1,
		},
		{
			name: "grant failure aborts before commit",
			setupConn: func(m *mockConn) {
				m.execFunc = func(_ context.Context, query string) error {
					if strings.HasPrefix(query, "GRANT") {
						return &mysql.MySQLError{Number: 1044, Message: "Access denied for user"}
					}
					return nil
				}
			},
			usernames: []string{"ghost-42"},
			passwords: []string{"aB3$efghij"},
			wantState: provision.StateFailed,
			wantErr:   "granting database permissions errored with message: Access denied for user",
			wantExecs: []string{
				"CREATE USER 'ghost-42'@'localhost' IDENTIFIED WITH mysql_native_password;",
				"SET old_passwords = 0;",
				"SET PASSWORD FOR 'ghost-42'@'localhost' = PASSWORD('aB3$efghij');",
				"GRANT ALL PRIVILEGES ON `ghost_prod`.* TO 'ghost-42'@'localhost';",
			},
			wantCloses: 1,
		},
		{
			name: "flush failure aborts before commit",
			setupConn: func(m *mockConn) {
				m.execFunc = func(_ context.Context, query string) error {
					if strings.HasPrefix(query, "FLUSH") {
						return &mysql.MySQLError{Number: 1227, Message: "Access denied; you need the RELOAD privilege"}
					}
					return nil
				}
			},
			usernames: []string{"ghost-42"},
			passwords: []string{"aB3$efghij"},
			wantState: provision.StateFailed,
			wantErr:   "flushing privileges errored with message: Access denied; you need the RELOAD privilege",
			wantExecs: []string{
				"CREATE USER 'ghost-42'@'localhost' IDENTIFIED WITH mysql_native_password;",
				"SET old_passwords = 0;",
				"SET PASSWORD FOR 'ghost-42'@'localhost' = PASSWORD('aB3$efghij');",
				"GRANT ALL PRIVILEGES ON `ghost_prod`.* TO 'ghost-42'@'localhost';",
				"FLUSH PRIVILEGES;",
			},
			wantCloses: 1,
		},
		{
			name: "save failure",
			setupStore: func(m *mockStore) {
				m.saveFunc = func() error { return errors.New("disk full") }
			},
			usernames: []string{"ghost-42"},
			passwords: []string{"aB3$efghij"},
			wantState: provision.StateFailed,
			wantErr:   "failed to save config",
			wantExecs: []string{
				"CREATE USER 'ghost-42'@'localhost' IDENTIFIED WITH mysql_native_password;",
				"SET old_passwords = 0;",
				"SET PASSWORD FOR 'ghost-42'@'localhost' = PASSWORD('aB3$efghij');",
				"GRANT ALL PRIVILEGES ON `ghost_prod`.* TO 'ghost-42'@'localhost';",
				"FLUSH PRIVILEGES;",
			},
			wantStored: map[string]string{
				config.KeyUser:     "ghost-42",
				config.KeyPassword: "aB3$efghij",
			},
			wantSaves:  1,
			wantCloses: 1,
		},
		{
			name:      "invalid database name",
			database:  "bad`name",
			usernames: []string{"ghost-42"},
			passwords: []string{"aB3$efghij"},
			wantState: provision.StateFailed,
			wantErr:   "invalid database name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := &mockConn{}
			if tt.setupConn != nil {
				tt.setupConn(conn)
			}

			store := &mockStore{}
			if tt.setupStore != nil {
				tt.setupStore(store)
			}

			database := tt.database
			if database == "" {
				database = "ghost_prod"
			}

			p := provision.New(provision.Config{
				Connect: func(context.Context, provision.ConnectionConfig) (provision.Conn, error) {
					if tt.connectErr != nil {
						return nil, tt.connectErr
					}
					return conn, nil
				},
				Store:        store,
				UsernameFunc: sequence(tt.usernames...),
				PasswordFunc: sequence(tt.passwords...),
				MaxAttempts:  tt.maxAttempts,
			})

			result := p.Run(context.Background(), provision.ConnectionConfig{
				Host:        "localhost",
				User:        "root",
				Password:    "hunter2",
				Database:    database,
				Environment: "development",
			})

			assert.Equal(t, tt.wantState, result.State)

			if tt.wantErr != "" {
				require.Error(t, result.Err)
				assert.Contains(t, result.Err.Error(), tt.wantErr)
			} else {
				require.NoError(t, result.Err)
			}

			assert.Equal(t, tt.wantExecs, conn.execs)
			assert.Equal(t, tt.wantCredential, result.Credential)
			assert.Equal(t, tt.wantCloses, conn.closes, "connection close count mismatch")
			assert.Equal(t, tt.wantSaves, store.saves, "store save count mismatch")

			if tt.wantStored == nil {
				assert.Empty(t, store.values)
			} else {
				assert.Equal(t, tt.wantStored, store.values)
			}
		})
	}
}

func TestProvisioner_Run_SkipsNonRoot(t *testing.T) {
	connects := 0
	conn := &mockConn{}
	store := &mockStore{}
	reporter := &mockReporter{}

	p := provision.New(provision.Config{
		Connect: func(context.Context, provision.ConnectionConfig) (provision.Conn, error) {
			connects++
			return conn, nil
		},
		Store:    store,
		Reporter: reporter,
	})

	result := p.Run(context.Background(), provision.ConnectionConfig{
		Host:     "localhost",
		User:     "ghost_admin",
		Password: "hunter2",
		Database: "ghost_prod",
	})

	require.NoError(t, result.Err)
	assert.Equal(t, provision.StateSkipped, result.State)
	assert.Nil(t, result.Credential)

	// The entire pipeline is bypassed: no connection, no statements, no save.
	assert.Zero(t, connects)
	assert.Empty(t, conn.execs)
	assert.Zero(t, store.saves)
	assert.Empty(t, reporter.steps)
	assert.Equal(t, []string{"MySQL user is not root, skipping user creation"}, reporter.skips)
}

func TestProvisioner_Run_ReportsSteps(t *testing.T) {
	tests := []struct {
		name         string
		setupConn    func(*mockConn)
		wantSteps    []string
		wantFailures []string
	}{
		{
			name: "all steps reported in order",
			wantSteps: []string{
				provision.StepConnect,
				provision.StepCreateUser,
				provision.StepGrant,
				provision.StepSave,
			},
		},
		{
			name: "failed step reported and later steps never start",
			setupConn: func(m *mockConn) {
				m.execFunc = func(_ context.Context, query string) error {
					if strings.HasPrefix(query, "GRANT") {
						return &mysql.MySQLError{Number: 1044, Message: "Access denied"}
					}
					return nil
				}
			},
			wantSteps: []string{
				provision.StepConnect,
				provision.StepCreateUser,
				provision.StepGrant,
			},
			wantFailures: []string{provision.StepGrant},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := &mockConn{}
			if tt.setupConn != nil {
				tt.setupConn(conn)
			}

			reporter := &mockReporter{}

			p := provision.New(provision.Config{
				Connect: func(context.Context, provision.ConnectionConfig) (provision.Conn, error) {
					return conn, nil
				},
				Store:        &mockStore{},
				Reporter:     reporter,
				UsernameFunc: sequence("ghost-42"),
				PasswordFunc: sequence("aB3$efghij"),
			})

			p.Run(context.Background(), provision.ConnectionConfig{
				Host:     "localhost",
				User:     "root",
				Password: "hunter2",
				Database: "ghost_prod",
			})

			assert.Equal(t, tt.wantSteps, reporter.steps)
			assert.Equal(t, tt.wantFailures, reporter.failures)
		})
	}
}
