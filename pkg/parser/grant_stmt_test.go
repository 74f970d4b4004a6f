package parser_test

import (
	"testing"

	"github.com/pseudomuto/gatekeeper/pkg/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRow(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		row   string
		check func(*testing.T, *parser.GrantStmt)
	}{
		{
			name: "all privileges with backticked account",
			row:  "GRANT ALL PRIVILEGES ON `ghost_prod`.* TO `ghost-17`@`localhost`",
			check: func(t *testing.T, stmt *parser.GrantStmt) {
				assert.True(t, stmt.HasAllPrivileges())
				assert.False(t, stmt.IsUsageOnly())
				assert.Equal(t, "ghost_prod", stmt.Target.DatabaseName())
				assert.Equal(t, "*", stmt.Target.TableName())
				assert.False(t, stmt.Target.IsGlobal())
				assert.Equal(t, "ghost-17", stmt.Grantee.Username())
				assert.Equal(t, "localhost", stmt.Grantee.Hostname())
				assert.False(t, stmt.WithGrant)
			},
		},
		{
			name: "all privileges with quoted account",
			row:  "GRANT ALL PRIVILEGES ON `ghost_prod`.* TO 'ghost-17'@'localhost'",
			check: func(t *testing.T, stmt *parser.GrantStmt) {
				assert.True(t, stmt.HasAllPrivileges())
				assert.Equal(t, "ghost-17", stmt.Grantee.Username())
				assert.Equal(t, "localhost", stmt.Grantee.Hostname())
			},
		},
		{
			name: "usage row",
			row:  "GRANT USAGE ON *.* TO `ghost-17`@`localhost`",
			check: func(t *testing.T, stmt *parser.GrantStmt) {
				assert.True(t, stmt.IsUsageOnly())
				assert.True(t, stmt.Target.IsGlobal())
				assert.Nil(t, stmt.Password)
			},
		},
		{
			name: "legacy usage row with password hash",
			row:  "GRANT USAGE ON *.* TO 'ghost-17'@'localhost' IDENTIFIED BY PASSWORD '*94BDCEBE19083CE2A1F959FD02F964C7AF4CFC29'",
			check: func(t *testing.T, stmt *parser.GrantStmt) {
				assert.True(t, stmt.IsUsageOnly())
				require.NotNil(t, stmt.Password)
			},
		},
		{
			name: "multiple privileges on a table",
			row:  "GRANT SELECT, INSERT, UPDATE ON `ghost_prod`.`posts` TO `app`@`%`",
			check: func(t *testing.T, stmt *parser.GrantStmt) {
				assert.Equal(t, []string{"SELECT", "INSERT", "UPDATE"}, stmt.PrivilegeNames())
				assert.Equal(t, "posts", stmt.Target.TableName())
				assert.Equal(t, "%", stmt.Grantee.Hostname())
			},
		},
		{
			name: "multi word privileges",
			row:  "GRANT CREATE TEMPORARY TABLES, LOCK TABLES ON `ghost_prod`.* TO `app`@`%`",
			check: func(t *testing.T, stmt *parser.GrantStmt) {
				assert.Equal(t, []string{"CREATE TEMPORARY TABLES", "LOCK TABLES"}, stmt.PrivilegeNames())
			},
		},
		{
			name: "column privileges",
			row:  "GRANT SELECT (`id`, `title`) ON `ghost_prod`.`posts` TO `app`@`%`",
			check: func(t *testing.T, stmt *parser.GrantStmt) {
				require.Len(t, stmt.Privileges, 1)
				assert.Equal(t, "SELECT", stmt.Privileges[0].Name())
				assert.Equal(t, []string{"id", "title"}, stmt.Privileges[0].ColumnNames())
			},
		},
		{
			name: "with grant option",
			row:  "GRANT ALL PRIVILEGES ON *.* TO `root`@`localhost` WITH GRANT OPTION",
			check: func(t *testing.T, stmt *parser.GrantStmt) {
				assert.True(t, stmt.WithGrant)
				assert.True(t, stmt.Target.IsGlobal())
			},
		},
		{
			name: "trailing semicolon",
			row:  "GRANT USAGE ON *.* TO `ghost-17`@`localhost`;",
			check: func(t *testing.T, stmt *parser.GrantStmt) {
				assert.True(t, stmt.IsUsageOnly())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			stmt, err := parser.ParseRow(tt.row)
			require.NoError(t, err)
			tt.check(t, stmt)
		})
	}
}

func TestParseRow_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		row  string
	}{
		{name: "not a grant", row: "CREATE USER 'ghost-17'@'localhost';"},
		{name: "missing target", row: "GRANT ALL PRIVILEGES TO `ghost-17`@`localhost`"},
		{name: "empty input", row: ""},
		{
			name: "multiple statements",
			row:  "GRANT USAGE ON *.* TO `a`@`b`; GRANT USAGE ON *.* TO `a`@`b`;",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := parser.ParseRow(tt.row)
			require.Error(t, err)
		})
	}
}

func TestParseString_MultipleStatements(t *testing.T) {
	t.Parallel()

	grants, err := parser.ParseString(
		"GRANT USAGE ON *.* TO `ghost-17`@`localhost`;\n" +
			"GRANT ALL PRIVILEGES ON `ghost_prod`.* TO `ghost-17`@`localhost`;",
	)
	require.NoError(t, err)
	require.Len(t, grants.Statements, 2)

	assert.True(t, grants.Statements[0].IsUsageOnly())
	assert.True(t, grants.Statements[1].HasAllPrivileges())
}

func TestAccount_String(t *testing.T) {
	t.Parallel()

	stmt, err := parser.ParseRow("GRANT USAGE ON *.* TO `ghost-17`@`localhost`")
	require.NoError(t, err)

	assert.Equal(t, "'ghost-17'@'localhost'", stmt.Grantee.String())
}
