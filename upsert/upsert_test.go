package upsert

import (
	"context"
	"database/sql/driver"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func BenchmarkBuild(b *testing.B) {
	for _, count := range []int{1, 32, 1024} {
		rows := generateBenchmarkRows(count)
		b.Run(fmt.Sprintf("rows=%d", count), func(b *testing.B) {
			b.ReportAllocs()
			for b.Loop() {
				if _, err := Build("users", rows, nil); err != nil {
					b.Fatalf("Build: %v", err)
				}
			}
		})
	}
}

func BenchmarkUpserters(b *testing.B) {
	rowCounts := []int{1, 32, 128}
	for _, count := range rowCounts {
		rows := generateBenchmarkRows(count)
		name := fmt.Sprintf("rows=%d", count)
		b.Run(name, func(b *testing.B) {
			b.Run("Rowwise", func(b *testing.B) {
				benchmarkRowwiseUpserter(b, rows)
			})
			b.Run("DuplicateKey", func(b *testing.B) {
				benchmarkDuplicateKeyUpserter(b, rows)
			})
			b.Run("Batched", func(b *testing.B) {
				benchmarkBatchedUpserter(b, rows, 128)
			})
		})
	}
}

func benchmarkRowwiseUpserter(b *testing.B, rows []Row) {
	b.Helper()
	b.ReportAllocs()

	ctx := context.Background()

	for b.Loop() {
		b.StopTimer()
		db, mock, err := sqlmock.New()
		if err != nil {
			b.Fatalf("sqlmock.New: %v", err)
		}
		upserter := NewRowwiseUpserter(db)

		mock.ExpectBegin()
		for _, row := range rows {
			mock.ExpectExec("INSERT INTO .*").
				WithArgs(driverArgs(row)...).
				WillReturnResult(sqlmock.NewResult(0, 1))
		}
		mock.ExpectCommit()
		mock.ExpectClose()

		b.StartTimer()
		if _, err := upserter.Upsert(ctx, "users", rows, nil); err != nil {
			b.Fatalf("Upsert: %v", err)
		}
		b.StopTimer()

		if err := db.Close(); err != nil {
			b.Fatalf("db.Close: %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			b.Fatalf("unmet expectations: %v", err)
		}
		b.StartTimer()
	}
}

func benchmarkDuplicateKeyUpserter(b *testing.B, rows []Row) {
	b.Helper()
	b.ReportAllocs()

	ctx := context.Background()
	args := flattenDriverValues(rows)

	for b.Loop() {
		b.StopTimer()
		db, mock, err := sqlmock.New()
		if err != nil {
			b.Fatalf("sqlmock.New: %v", err)
		}
		upserter := NewDuplicateKeyUpserter(db)

		mock.ExpectExec("INSERT INTO .*").
			WithArgs(args...).
			WillReturnResult(sqlmock.NewResult(0, int64(len(rows))))
		mock.ExpectClose()

		b.StartTimer()
		if _, err := upserter.Upsert(ctx, "users", rows, nil); err != nil {
			b.Fatalf("Upsert: %v", err)
		}
		b.StopTimer()

		if err := db.Close(); err != nil {
			b.Fatalf("db.Close: %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			b.Fatalf("unmet expectations: %v", err)
		}
		b.StartTimer()
	}
}

func benchmarkBatchedUpserter(b *testing.B, rows []Row, batchSize int) {
	b.Helper()
	b.ReportAllocs()

	ctx := context.Background()
	chunks := chunkRows(rows, batchSize, MaxPlaceholders)

	for b.Loop() {
		b.StopTimer()
		db, mock, err := sqlmock.New()
		if err != nil {
			b.Fatalf("sqlmock.New: %v", err)
		}
		upserter := NewBatchedUpserter(db).WithBatchSize(batchSize)

		if len(chunks) > 1 {
			mock.ExpectBegin()
		}
		for _, chunk := range chunks {
			mock.ExpectExec("INSERT INTO .*").
				WithArgs(flattenDriverValues(chunk)...).
				WillReturnResult(sqlmock.NewResult(0, int64(len(chunk))))
		}
		if len(chunks) > 1 {
			mock.ExpectCommit()
		}
		mock.ExpectClose()

		b.StartTimer()
		if _, err := upserter.Upsert(ctx, "users", rows, nil); err != nil {
			b.Fatalf("Upsert: %v", err)
		}
		b.StopTimer()

		if err := db.Close(); err != nil {
			b.Fatalf("db.Close: %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			b.Fatalf("unmet expectations: %v", err)
		}
		b.StartTimer()
	}
}

func generateBenchmarkRows(count int) []Row {
	rows := make([]Row, count)
	for i := 0; i < count; i++ {
		rows[i] = Row{
			{Column: "id", Value: int64(i + 1)},
			{Column: "name", Value: fmt.Sprintf("name-%d", i+1)},
		}
	}
	return rows
}

func driverArgs(row Row) []driver.Value {
	vals := make([]driver.Value, len(row))
	for i, f := range row {
		vals[i] = f.Value
	}
	return vals
}

func flattenDriverValues(rows []Row) []driver.Value {
	if len(rows) == 0 {
		return nil
	}
	flattened := make([]driver.Value, 0, len(rows)*len(rows[0]))
	for _, row := range rows {
		flattened = append(flattened, driverArgs(row)...)
	}
	return flattened
}
