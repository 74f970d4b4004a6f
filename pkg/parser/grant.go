package parser

import (
	"strings"

	"github.com/pseudomuto/gatekeeper/pkg/utils"
)

type (
	// Grants is a parsed collection of GRANT statements, one per SHOW GRANTS
	// row.
	Grants struct {
		Statements []*GrantStmt `parser:"@@*"`
	}

	// GrantStmt represents a single GRANT statement as reported by the
	// server.
	// Syntax: GRANT privilege [,...] ON target TO account [IDENTIFIED BY [PASSWORD] 'secret'] [WITH GRANT OPTION];
	//
	// MySQL 5.7 quotes account parts ('user'@'host') and may append the
	// legacy IDENTIFIED BY PASSWORD clause; 8.0 backticks account parts
	// (`user`@`host`). Both forms are accepted. Role grants (GRANT role TO
	// account) are not covered; provisioned accounts never receive them.
	GrantStmt struct {
		Privileges []*Privilege `parser:"'GRANT' @@ (',' @@)*"`
		Target     *GrantTarget `parser:"'ON' @@"`
		Grantee    *Account     `parser:"'TO' @@"`
		Password   *string      `parser:"('IDENTIFIED' 'BY' 'PASSWORD'? @String)?"`
		WithGrant  bool         `parser:"@('WITH' 'GRANT' 'OPTION')?"`
		Semicolon  bool         `parser:"@';'?"`
	}

	// Privilege is a single privilege, possibly multi-word (ALL PRIVILEGES,
	// CREATE TEMPORARY TABLES), with an optional column list.
	Privilege struct {
		Words   []string `parser:"@Ident+"`
		Columns []string `parser:"('(' @(Ident | BacktickIdent) (',' @(Ident | BacktickIdent))* ')')?"`
	}

	// GrantTarget is the object a privilege applies to: *.*, db.*, or
	// db.table. Identifier parts retain their backticks as parsed; use
	// DatabaseName and TableName for the unquoted forms.
	GrantTarget struct {
		Database string `parser:"@('*' | Ident | BacktickIdent) '.'"`
		Table    string `parser:"@('*' | Ident | BacktickIdent)"`
	}

	// Account is the user@host pair receiving the grant.
	Account struct {
		User string `parser:"@(String | BacktickIdent | Ident)"`
		Host string `parser:"'@' @(String | BacktickIdent | Ident)"`
	}
)

// Name returns the privilege name with multi-word privileges joined by single
// spaces (e.g. "ALL PRIVILEGES").
func (p *Privilege) Name() string {
	return strings.Join(p.Words, " ")
}

// ColumnNames returns the privilege's column list without quoting, or nil
// when the privilege applies to whole tables.
func (p *Privilege) ColumnNames() []string {
	if len(p.Columns) == 0 {
		return nil
	}

	names := make([]string, 0, len(p.Columns))
	for _, c := range p.Columns {
		names = append(names, unquote(c))
	}

	return names
}

// PrivilegeNames returns the names of all privileges conveyed by the grant.
func (g *GrantStmt) PrivilegeNames() []string {
	names := make([]string, 0, len(g.Privileges))
	for _, p := range g.Privileges {
		names = append(names, p.Name())
	}

	return names
}

// IsUsageOnly reports whether the grant conveys only USAGE, MySQL's way of
// saying "no privileges". Every account has a USAGE row in SHOW GRANTS.
func (g *GrantStmt) IsUsageOnly() bool {
	return len(g.Privileges) == 1 && g.Privileges[0].Name() == "USAGE"
}

// HasAllPrivileges reports whether the grant conveys ALL PRIVILEGES.
func (g *GrantStmt) HasAllPrivileges() bool {
	for _, p := range g.Privileges {
		name := p.Name()
		if name == "ALL" || name == "ALL PRIVILEGES" {
			return true
		}
	}

	return false
}

// DatabaseName returns the target database without quoting. The global
// target returns "*".
func (t *GrantTarget) DatabaseName() string {
	return unquote(t.Database)
}

// TableName returns the target table without quoting. Database-wide targets
// return "*".
func (t *GrantTarget) TableName() string {
	return unquote(t.Table)
}

// IsGlobal reports whether the target is *.* (server-wide).
func (t *GrantTarget) IsGlobal() bool {
	return t.Database == "*" && t.Table == "*"
}

// Username returns the account's user part without quoting.
func (a *Account) Username() string {
	return unquote(a.User)
}

// Hostname returns the account's host part without quoting.
func (a *Account) Hostname() string {
	return unquote(a.Host)
}

// String renders the account in the canonical 'user'@'host' form.
func (a *Account) String() string {
	return utils.QuoteLiteral(a.Username()) + "@" + utils.QuoteLiteral(a.Hostname())
}

// unquote strips one layer of backtick or single-quote quoting from a parsed
// token, leaving bare tokens untouched.
func unquote(s string) string {
	if utils.IsBackticked(s) {
		return utils.StripBackticks(s)
	}

	return utils.StripQuotes(s)
}
