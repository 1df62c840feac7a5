package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

type stubExecutor struct {
	query string
	err   error
}

func (s *stubExecutor) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	s.query = query
	return pgconn.NewCommandTag("UPDATE 1"), s.err
}

func (s *stubExecutor) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	s.query = query
	return nil
}

func (s *stubExecutor) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	s.query = query
	return nil, s.err
}

const testQuery = "--sql 8a8e0d52-7f5d-4f21-8b7d-f7d4b821eed7\nupdate users set plan_type = $1;"

func logLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("log line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestSQLRunnerLogsMarkerField(t *testing.T) {
	var buf bytes.Buffer
	exec := &stubExecutor{}
	runner := NewSQLRunner(exec, zerolog.New(&buf).Level(zerolog.DebugLevel))

	if _, err := runner.Exec(context.Background(), testQuery, "premium"); err != nil {
		t.Fatalf("Exec error: %v", err)
	}
	if strings.Contains(exec.query, "--sql") {
		t.Fatalf("marker was not stripped: %q", exec.query)
	}
	lines := logLines(t, &buf)
	if len(lines) != 1 {
		t.Fatalf("expected 1 log line, got %d", len(lines))
	}
	if lines[0]["sql"] != "8a8e0d52-7f5d-4f21-8b7d-f7d4b821eed7" || lines[0]["message"] != "sql exec" || lines[0]["level"] != "debug" {
		t.Fatalf("unexpected log line: %v", lines[0])
	}
}

func TestSQLRunnerLogsFailures(t *testing.T) {
	var buf bytes.Buffer
	runner := NewSQLRunner(&stubExecutor{err: errors.New("conn refused")}, zerolog.New(&buf).Level(zerolog.InfoLevel))

	if _, err := runner.Exec(context.Background(), testQuery); err == nil {
		t.Fatal("expected error")
	}
	if _, err := runner.Query(context.Background(), testQuery); err == nil {
		t.Fatal("expected error")
	}
	lines := logLines(t, &buf)
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines, got %d: %s", len(lines), buf.String())
	}
	for i, want := range []string{"sql exec failed", "sql query failed"} {
		if lines[i]["message"] != want || lines[i]["level"] != "error" || lines[i]["error"] != "conn refused" {
			t.Fatalf("line %d = %v, want message %q", i, lines[i], want)
		}
	}
}

func TestSQLRunnerRejectsUnmarkedQuery(t *testing.T) {
	exec := &stubExecutor{}
	runner := NewSQLRunner(exec, zerolog.Nop())
	if _, err := runner.Exec(context.Background(), "update users set plan_type = 'basic';"); err == nil {
		t.Fatal("expected error for unmarked query")
	}
	if exec.query != "" {
		t.Fatalf("unmarked query reached the database: %q", exec.query)
	}
}
