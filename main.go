package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/cantart/dupkey-upsert/upsert"
)

const defaultDSN = "root:root@tcp(localhost:3306)/upsertbenchmark"

var (
	dsnFlag   = flag.String("dsn", "", "MySQL DSN, overrides DUPKEY_UPSERT_DSN")
	tableFlag = flag.String("table", "users", "demo table name")
)

func main() {
	flag.Parse()

	dsn, err := resolveDSN(*dsnFlag)
	if err != nil {
		log.Fatalf("resolve dsn: %v", err)
	}

	db, err := sqlx.Connect("mysql", dsn)
	if err != nil {
		log.Printf("open mysql: %v", err)
		return
	}
	defer db.Close()

	if err := run(context.Background(), db, *tableFlag); err != nil {
		log.Printf("demo failed: %+v", err)
	}
}

// resolveDSN picks the DSN from the flag, then the environment, and forces parseTime.
func resolveDSN(flagValue string) (string, error) {
	dsn := flagValue
	if dsn == "" {
		dsn = os.Getenv("DUPKEY_UPSERT_DSN")
	}
	if dsn == "" {
		dsn = defaultDSN
	}
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", errors.Wrap(err, "parse dsn")
	}
	cfg.ParseTime = true
	return cfg.FormatDSN(), nil
}

func run(ctx context.Context, db *sqlx.DB, table string) error {
	ddl := fmt.Sprintf("CREATE TABLE IF NOT EXISTS `%s` (id BIGINT PRIMARY KEY, name VARCHAR(64) NOT NULL, visits INT NOT NULL DEFAULT 0)", table)
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return errors.Wrap(err, "create table")
	}

	opts := upsert.Options{StrictRows: true, CheckIdentifiers: true}
	batch := upsert.NewDuplicateKeyUpserter(db).WithOptions(opts)

	users := []map[string]any{
		{"id": int64(1), "name": "John"},
		{"id": int64(2), "name": "Mike"},
	}
	res, err := batch.Upsert(ctx, table, users, nil)
	if err != nil {
		return errors.Wrap(err, "upsert users")
	}
	if n, err := res.RowsAffected(); err == nil {
		log.Printf("upserted %d users, %d rows affected", len(users), n)
	}

	// Bump visits for existing rows, keep the stored name.
	rowwise := upsert.NewRowwiseUpserter(db).WithOptions(opts)
	update := upsert.UpdateSpec{upsert.Set("visits", "visits + 1")}
	outcomes, err := rowwise.UpsertEach(ctx, table, []upsert.Row{
		{{Column: "id", Value: int64(1)}, {Column: "name", Value: "John"}},
		{{Column: "id", Value: int64(3)}, {Column: "name", Value: "Jane"}},
	}, update)
	if err != nil {
		return errors.Wrap(err, "record visits")
	}
	for i, o := range outcomes {
		log.Printf("- row %d: %s", i, o)
	}

	var count int
	if err := db.GetContext(ctx, &count, fmt.Sprintf("SELECT COUNT(*) FROM `%s`", table)); err != nil {
		return errors.Wrap(err, "count users")
	}
	log.Printf("table %s holds %d users", table, count)
	return nil
}
