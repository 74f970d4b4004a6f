package provision

import (
	"github.com/pseudomuto/gatekeeper/pkg/utils"
)

// The pipeline issues a fixed set of statements, interpolated from validated
// and escaped inputs. MySQL does not reliably accept placeholders in account
// management statements, so these are built as strings: identifiers are
// backtick-quoted and literals single-quoted with their escapes applied.

// CreateUserStatement creates the account using the engine's native password
// plugin, so the password set next works on both 5.x and 8.x servers.
func CreateUserStatement(username, host string) string {
	return "CREATE USER " + account(username, host) + " IDENTIFIED WITH mysql_native_password;"
}

// DisableLegacyPasswordsStatement forces the session out of pre-4.1 password
// hashing before a password is set.
func DisableLegacyPasswordsStatement() string {
	return "SET old_passwords = 0;"
}

// SetPasswordStatement assigns the account password via the server-side
// PASSWORD() hash.
func SetPasswordStatement(username, host, password string) string {
	return "SET PASSWORD FOR " + account(username, host) + " = PASSWORD(" + utils.QuoteLiteral(password) + ");"
}

// GrantAllStatement grants the account full rights on every table of exactly
// one database.
func GrantAllStatement(database, username, host string) string {
	return "GRANT ALL PRIVILEGES ON " + utils.BacktickIdentifier(database) + ".* TO " + account(username, host) + ";"
}

// FlushPrivilegesStatement reloads the server's privilege cache so grants
// take effect immediately.
func FlushPrivilegesStatement() string {
	return "FLUSH PRIVILEGES;"
}

// account renders the 'user'@'host' pair used by all account statements.
func account(username, host string) string {
	return utils.QuoteLiteral(username) + "@" + utils.QuoteLiteral(host)
}
