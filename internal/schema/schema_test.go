package schema

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatementsCarryUniqueConstraints(t *testing.T) {
	for _, driver := range []string{"mysql", "pgx"} {
		stmts, err := Statements(driver)
		require.NoError(t, err)
		joined := strings.Join(stmts, "\n")
		assert.Contains(t, joined, "uq_payment_transactions_txid", driver)
		assert.Contains(t, joined, "uq_payment_transactions_period", driver)
		assert.Contains(t, joined, "uq_rent_month_records_offer_month", driver)
		for _, table := range []string{"offers", "payment_transactions", "rent_month_records", "agreements", "properties"} {
			assert.Contains(t, joined, "CREATE TABLE IF NOT EXISTS "+table, driver)
		}
	}

	_, err := Statements("sqlite")
	assert.Error(t, err)
}

func TestApply(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()

	stmts, err := Statements("mysql")
	require.NoError(t, err)

	mock.ExpectBegin()
	for _, stmt := range stmts {
		mock.ExpectExec(stmt).WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectCommit()

	n, err := Apply(context.Background(), db, "mysql")
	require.NoError(t, err)
	assert.Equal(t, len(stmts), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyRollsBackOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()

	stmts, err := Statements("pgx")
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec(stmts[0]).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(stmts[1]).WillReturnError(errors.New("permission denied"))
	mock.ExpectRollback()

	_, err = Apply(context.Background(), db, "pgx")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "statement 2")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpCmd(t *testing.T) {
	cmd := UpCmd()
	assert.Equal(t, "up", cmd.Use)
	assert.Equal(t, "Create the rentflow tables and constraints", cmd.Short)

	flags := cmd.Flags()
	assert.NotNil(t, flags.Lookup("dry-run"))
	assert.NotNil(t, flags.Lookup("driver"))
	assert.NotNil(t, flags.Lookup("dsn"))
}

func TestUpCmdAppliesSchema(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)

	stmts, err := Statements("mysql")
	require.NoError(t, err)
	mock.ExpectBegin()
	for _, stmt := range stmts {
		mock.ExpectExec(stmt).WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectCommit()
	mock.ExpectClose()

	prev := OpenFunc
	OpenFunc = func(driver, dsn string) (*sql.DB, error) {
		assert.Equal(t, "mysql", driver)
		assert.Equal(t, "user:pass@tcp(localhost:3306)/rentflow", dsn)
		return db, nil
	}
	defer func() { OpenFunc = prev }()

	var out bytes.Buffer
	cmd := UpCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--driver", "mysql", "--dsn", "user:pass@tcp(localhost:3306)/rentflow"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Applied")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpCmdNormalizesPostgresDriver(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)

	stmts, err := Statements("pgx")
	require.NoError(t, err)
	mock.ExpectBegin()
	for _, stmt := range stmts {
		mock.ExpectExec(stmt).WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectCommit()
	mock.ExpectClose()

	prev := OpenFunc
	OpenFunc = func(driver, dsn string) (*sql.DB, error) {
		assert.Equal(t, "pgx", driver)
		return db, nil
	}
	defer func() { OpenFunc = prev }()

	cmd := UpCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--driver", "postgres", "--dsn", "postgres://localhost/rentflow"})
	require.NoError(t, cmd.Execute())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNormalizeDriver(t *testing.T) {
	for in, want := range map[string]string{
		"pgx":        "pgx",
		"postgres":   "pgx",
		"PostgreSQL": "pgx",
		"mysql":      "mysql",
		"sqlite":     "sqlite",
	} {
		assert.Equal(t, want, NormalizeDriver(in), in)
	}
}

func TestUpCmdRequiresDSN(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	cmd := UpCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--driver", "mysql"})
	assert.Error(t, cmd.Execute())
}

func TestPrintCmd(t *testing.T) {
	var out bytes.Buffer
	cmd := PrintCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--driver", "pgx"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "TIMESTAMPTZ")
	assert.NotContains(t, out.String(), "DATETIME")
}
