package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/pkg/errors"
	"github.com/pseudomuto/gatekeeper/pkg/config"
	"github.com/pseudomuto/gatekeeper/pkg/consts"
	"github.com/pseudomuto/gatekeeper/pkg/mysql"
	"github.com/pseudomuto/gatekeeper/pkg/parser"
	"github.com/pseudomuto/gatekeeper/pkg/provision"
	"github.com/urfave/cli/v3"
	"go.uber.org/fx"
)

type verifyParams struct {
	fx.In

	Config *config.Config
}

// verify creates the verify command for auditing the provisioned user.
//
// The verify command connects to the server as the provisioned user from
// gatekeeper.yaml, reads its grants with SHOW GRANTS, and checks them against
// the least-privilege contract: full access to the configured database and
// nothing else. Both a missing grant and any grant beyond the configured
// database fail the check.
//
// Command flags:
//   - --timeout: Connection timeout
//
// Example usage:
//
//	# Audit the provisioned user's grants
//	gatekeeper verify
func verify(p verifyParams) *cli.Command {
	return &cli.Command{
		Name:  "verify",
		Usage: "Check the provisioned user's grants against the configured database",
		Description: `Connect as the provisioned user and audit its privileges.

The check passes when the user holds ALL PRIVILEGES on the configured database
and no other grants (the USAGE row every MySQL account carries is ignored).
Grants on other databases, global grants, and table or column level grants all
fail the check, since provisioning never creates them.`,
		Before: requireConfig(p.Config),
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Connection timeout",
				Value: consts.DefaultConnectTimeout,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runVerify(ctx, cmd, p)
		},
	}
}

func runVerify(ctx context.Context, cmd *cli.Command, p verifyParams) error {
	conn := p.Config.Database.Connection

	if conn.User == provision.RootUser {
		return errors.New("connection user is still root - run 'gatekeeper provision' first")
	}

	slog.Info("Verifying provisioned user",
		"user", conn.User,
		"database", p.Config.Database.Name,
	)

	client, err := mysql.NewClient(ctx, clientOptions(p.Config, cmd.Duration("timeout")))
	if err != nil {
		return errors.Wrap(err, "failed to connect as the provisioned user")
	}
	defer func() { _ = client.Close() }()

	grants, err := fetchGrants(ctx, client)
	if err != nil {
		return err
	}

	return reportGrants(cmd.Writer, grants, p.Config.Database.Name)
}

// fetchGrants reads SHOW GRANTS output for the current user and parses each
// row into a grant statement.
func fetchGrants(ctx context.Context, client *mysql.Client) ([]*parser.GrantStmt, error) {
	rows, err := client.Query(ctx, "SHOW GRANTS")
	if err != nil {
		return nil, errors.Wrap(err, "failed to read grants")
	}
	defer func() { _ = rows.Close() }()

	var grants []*parser.GrantStmt
	for rows.Next() {
		var row string
		if err := rows.Scan(&row); err != nil {
			return nil, errors.Wrap(err, "failed to scan grant row")
		}

		stmt, err := parser.ParseRow(row)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse grant: %s", row)
		}

		grants = append(grants, stmt)
	}

	return grants, errors.Wrap(rows.Err(), "failed to read grants")
}

// reportGrants prints each grant with a verdict and returns an error when the
// set strays from the expected shape: the USAGE baseline plus ALL PRIVILEGES
// on exactly the configured database.
func reportGrants(w io.Writer, grants []*parser.GrantStmt, database string) error {
	if len(grants) == 0 {
		return errors.New("server returned no grants")
	}

	fmt.Fprintf(w, "Grants for %s:\n", grants[0].Grantee.String())

	var granted bool
	var extra int

	for _, grant := range grants {
		switch {
		case grant.IsUsageOnly():
			// The baseline row every account has; grants nothing.
			fmt.Fprintf(w, "  ✅ %s\n", describeGrant(grant))
		case isDatabaseGrant(grant, database):
			granted = true
			fmt.Fprintf(w, "  ✅ %s\n", describeGrant(grant))
		default:
			extra++
			fmt.Fprintf(w, "  ⚠️  %s\n", describeGrant(grant))
		}
	}

	fmt.Fprintln(w)

	switch {
	case !granted:
		return errors.Errorf("user is missing ALL PRIVILEGES on %s", database)
	case extra > 0:
		return errors.Errorf("user holds %d grants beyond %s", extra, database)
	}

	fmt.Fprintf(w, "✅ Full access to %s and nothing else\n", database)
	return nil
}

// isDatabaseGrant reports whether the grant is the one provisioning creates:
// ALL PRIVILEGES on every table of the target database.
func isDatabaseGrant(grant *parser.GrantStmt, database string) bool {
	return grant.HasAllPrivileges() &&
		grant.Target.DatabaseName() == database &&
		grant.Target.TableName() == "*"
}

func describeGrant(grant *parser.GrantStmt) string {
	return fmt.Sprintf("%s on %s.%s",
		strings.Join(grant.PrivilegeNames(), ", "),
		grant.Target.DatabaseName(),
		grant.Target.TableName(),
	)
}
