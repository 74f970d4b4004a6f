package parser

import (
	"io"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/pkg/errors"
)

var (
	// grantLexer tokenizes SHOW GRANTS output. Structural keywords get their
	// own token type so privilege names (which are plain identifier
	// sequences) can never swallow them.
	grantLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Keyword", Pattern: `\b(?:GRANT|ON|TO|WITH|OPTION|IDENTIFIED|BY|PASSWORD)\b`},
		{Name: "String", Pattern: `'([^'\\]|\\.)*'`},
		{Name: "BacktickIdent", Pattern: "`([^`\\\\]|\\\\.)*`"},
		{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_$]*`},
		{Name: "Punct", Pattern: `[(),.;@*]`},
		{Name: "Whitespace", Pattern: `\s+`},
	})

	// parser is the participle parser instance for GRANT statements
	parser = participle.MustBuild[Grants](
		participle.Lexer(grantLexer),
		participle.Elide("Whitespace"),
		participle.UseLookahead(4),
	)
)

// Parse parses GRANT statements from an io.Reader and returns the parsed
// structure. Statements may be separated by whitespace and optionally
// terminated with semicolons, so both SHOW GRANTS rows and grant dump files
// are accepted.
//
// Example usage:
//
//	grants, err := parser.Parse(strings.NewReader(
//		"GRANT ALL PRIVILEGES ON `ghost_prod`.* TO `ghost-17`@`localhost`",
//	))
//	if err != nil {
//		log.Fatalf("Parse error: %v", err)
//	}
//
//	for _, stmt := range grants.Statements {
//		fmt.Printf("%s on %s\n", stmt.PrivilegeNames(), stmt.Target.DatabaseName())
//	}
func Parse(reader io.Reader) (*Grants, error) {
	grants, err := parser.Parse("", reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse grants")
	}

	return grants, nil
}

// ParseString parses GRANT statements from a string.
func ParseString(sql string) (*Grants, error) {
	return Parse(strings.NewReader(sql))
}

// ParseRow parses a single row of SHOW GRANTS output. It is an error for the
// row to contain anything other than exactly one GRANT statement.
func ParseRow(row string) (*GrantStmt, error) {
	grants, err := ParseString(row)
	if err != nil {
		return nil, err
	}

	if len(grants.Statements) != 1 {
		return nil, errors.Errorf("expected a single GRANT statement, got %d", len(grants.Statements))
	}

	return grants.Statements[0], nil
}
