// Package parser provides parsing of MySQL GRANT statements into structured
// types.
//
// The grammar covers the statements MySQL emits from SHOW GRANTS: privilege
// lists (including multi-word names and column lists), the *.* / db.* /
// db.table targets, both the 5.7 quoted and 8.0 backticked account forms, the
// legacy IDENTIFIED BY PASSWORD clause, and WITH GRANT OPTION. Keywords are
// expected in the uppercase form the server prints them in.
//
// Example usage:
//
//	stmt, err := parser.ParseRow("GRANT ALL PRIVILEGES ON `ghost_prod`.* TO `ghost-17`@`localhost`")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	fmt.Println(stmt.HasAllPrivileges())        // true
//	fmt.Println(stmt.Target.DatabaseName())     // ghost_prod
//	fmt.Println(stmt.Grantee.Username())        // ghost-17
package parser
