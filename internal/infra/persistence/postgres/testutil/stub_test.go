package testutil

import (
	"context"
	"database/sql/driver"
	"testing"
)

func upsert(t *testing.T, conn *StubConn, bucket, payload string) {
	t.Helper()
	_, err := conn.ExecContext(context.Background(),
		"INSERT INTO state(bucket,payload) VALUES($1,$2) ON CONFLICT(bucket) DO UPDATE SET payload=EXCLUDED.payload",
		[]driver.NamedValue{{Value: bucket}, {Value: []byte(payload)}})
	if err != nil {
		t.Fatalf("upsert %s: %v", bucket, err)
	}
}

func TestStubStagesWritesUntilCommit(t *testing.T) {
	_, conn := NewStubDB()
	tx, err := conn.BeginTx(context.Background(), driver.TxOptions{})
	if err != nil {
		t.Fatalf("BeginTx: %v", err)
	}
	upsert(t, conn, "next_id", "2")
	if len(conn.Buckets) != 0 {
		t.Fatalf("staged write visible before commit: %v", conn.Buckets)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if string(conn.Buckets["next_id"]) != "2" {
		t.Fatalf("expected committed bucket, got %v", conn.Buckets)
	}

	tx, _ = conn.BeginTx(context.Background(), driver.TxOptions{})
	upsert(t, conn, "next_id", "9")
	_ = tx.Rollback()
	if string(conn.Buckets["next_id"]) != "2" {
		t.Fatalf("rollback leaked write: %s", conn.Buckets["next_id"])
	}
}

func TestStubQueryReturnsBucketsInOrder(t *testing.T) {
	_, conn := NewStubDB()
	upsert(t, conn, "resources", "{}")
	upsert(t, conn, "admins", "[]")
	rows, err := conn.QueryContext(context.Background(), "SELECT bucket, payload FROM state", nil)
	if err != nil {
		t.Fatalf("QueryContext: %v", err)
	}
	defer func() { _ = rows.Close() }()
	dest := make([]driver.Value, 2)
	if err := rows.Next(dest); err != nil {
		t.Fatalf("Next: %v", err)
	}
	if dest[0] != "admins" || string(dest[1].([]byte)) != "[]" {
		t.Fatalf("unexpected first row %v", dest)
	}
}

func TestStubRejectsUnknownStatements(t *testing.T) {
	_, conn := NewStubDB()
	if _, err := conn.ExecContext(context.Background(), "DELETE FROM state", nil); err == nil {
		t.Fatalf("expected unsupported statement error")
	}
	if _, err := conn.QueryContext(context.Background(), "SELECT id FROM resources", nil); err == nil {
		t.Fatalf("expected unsupported query error")
	}
}
