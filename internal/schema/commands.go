package schema

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// OpenFunc opens a database handle; replaced in tests.
var OpenFunc = sql.Open

func connectionFlags(cmd *cobra.Command) {
	cmd.Flags().String("driver", envOr("DATABASE_DRIVER", "mysql"), "database driver (mysql or pgx)")
	cmd.Flags().String("dsn", os.Getenv("DATABASE_URL"), "database connection string")
}

// UpCmd applies the schema to the configured database.
func UpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "up",
		Short: "Create the rentflow tables and constraints",
		RunE: func(cmd *cobra.Command, args []string) error {
			driver, _ := cmd.Flags().GetString("driver")
			driver = NormalizeDriver(driver)
			dsn, _ := cmd.Flags().GetString("dsn")
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			if dryRun {
				return printStatements(cmd, driver)
			}
			if dsn == "" {
				return fmt.Errorf("dsn is required (flag --dsn or DATABASE_URL)")
			}

			db, err := OpenFunc(driver, dsn)
			if err != nil {
				return fmt.Errorf("failed to open database: %v", err)
			}
			defer db.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()

			n, err := Apply(ctx, db, driver)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Applied %d statements.\n", n)
			return nil
		},
	}
	connectionFlags(cmd)
	cmd.Flags().Bool("dry-run", false, "print statements without executing them")
	return cmd
}

// PrintCmd writes the DDL for a driver to stdout.
func PrintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "print",
		Short: "Print the schema DDL",
		RunE: func(cmd *cobra.Command, args []string) error {
			driver, _ := cmd.Flags().GetString("driver")
			return printStatements(cmd, driver)
		},
	}
	cmd.Flags().String("driver", envOr("DATABASE_DRIVER", "mysql"), "database driver (mysql or pgx)")
	return cmd
}

func printStatements(cmd *cobra.Command, driver string) error {
	stmts, err := Statements(driver)
	if err != nil {
		return err
	}
	for _, stmt := range stmts {
		fmt.Fprintf(cmd.OutOrStdout(), "%s;\n\n", stmt)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
