package main

import (
	"fmt"
	"os"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"rentflow/internal/schema"
)

func main() {
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:           "rentflow-migrate",
		Short:         "Manage the rentflow database schema",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(schema.UpCmd(), schema.PrintCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
