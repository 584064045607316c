// Package record keeps a SQLite log of every decision a driver makes, for
// replay and post-match analysis.
package record

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ararabots/vsscore/internal/action"
	"github.com/ararabots/vsscore/internal/arena"
	"github.com/ararabots/vsscore/internal/decision"
	"github.com/ararabots/vsscore/internal/world"
)

//go:embed schema.sql
var schemaSQL string

// SQLite is a decision.Recorder backed by a SQLite file. Unseen positions
// are stored as NULL.
type SQLite struct {
	db *sql.DB
}

var _ decision.Recorder = (*SQLite)(nil)

// Open opens or creates the database at path. ":memory:" works for tests.
func Open(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("record: open %s: %w", path, err)
	}
	// One writer; SQLite serialises anyway and :memory: is per connection.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("record: create schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error { return s.db.Close() }

// BeginRun registers a run so its ticks can be listed by role.
func (s *SQLite) BeginRun(ctx context.Context, runID, role string, robot int, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, role, robot, started_ns) VALUES (?, ?, ?, ?)`,
		runID, role, robot, at.UnixNano())
	if err != nil {
		return fmt.Errorf("record: begin run %s: %w", runID, err)
	}
	return nil
}

// Run describes a recorded run.
type Run struct {
	ID      string
	Role    string
	Robot   int
	Started time.Time
	Ticks   int
}

// Runs lists recorded runs, oldest first.
func (s *SQLite) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.role, r.robot, r.started_ns,
		       (SELECT COUNT(*) FROM ticks t WHERE t.run_id = r.id)
		FROM runs r ORDER BY r.started_ns, r.id`)
	if err != nil {
		return nil, fmt.Errorf("record: list runs: %w", err)
	}
	defer rows.Close()
	var out []Run
	for rows.Next() {
		var r Run
		var ns int64
		if err := rows.Scan(&r.ID, &r.Role, &r.Robot, &ns, &r.Ticks); err != nil {
			return nil, fmt.Errorf("record: scan run: %w", err)
		}
		r.Started = time.Unix(0, ns).UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLite) Record(ctx context.Context, e decision.Entry) error {
	rx, ry := nullable(e.Robot)
	bx, by := nullable(e.Ball)
	var errText sql.NullString
	if e.Err != "" {
		errText = sql.NullString{String: e.Err, Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ticks (run_id, seq, time_ns, phase, side, robot_x, robot_y, ball_x, ball_y,
		                   state, op, arg_a, arg_b, domain, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.RunID, int64(e.Seq), e.Time.UnixNano(), int(e.Phase), int(e.Side), rx, ry, bx, by,
		e.State, int(e.Action.Op), e.Action.A, e.Action.B, int(e.Action.Domain), errText)
	if err != nil {
		return fmt.Errorf("record: insert tick %s/%d: %w", e.RunID, e.Seq, err)
	}
	return nil
}

// Entries returns the ticks of runID in order.
func (s *SQLite) Entries(ctx context.Context, runID string) ([]decision.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, time_ns, phase, side, robot_x, robot_y, ball_x, ball_y,
		       state, op, arg_a, arg_b, domain, error
		FROM ticks WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("record: query %s: %w", runID, err)
	}
	defer rows.Close()

	var out []decision.Entry
	for rows.Next() {
		var (
			e              decision.Entry
			seq, ns        int64
			phase, side    int
			op, domain     int
			rx, ry, bx, by sql.NullFloat64
			errText        sql.NullString
		)
		if err := rows.Scan(&seq, &ns, &phase, &side, &rx, &ry, &bx, &by,
			&e.State, &op, &e.Action.A, &e.Action.B, &domain, &errText); err != nil {
			return nil, fmt.Errorf("record: scan tick: %w", err)
		}
		e.RunID, e.Seq, e.Time = runID, uint64(seq), time.Unix(0, ns).UTC()
		e.Phase, e.Side = world.GamePhase(phase), arena.Side(side)
		e.Robot, e.Ball = vec(rx, ry), vec(bx, by)
		e.Action.Op, e.Action.Domain = action.Opcode(op), action.Domain(domain)
		e.Err = errText.String
		out = append(out, e)
	}
	return out, rows.Err()
}

func nullable(v arena.Vec2) (x, y sql.NullFloat64) {
	if !v.Seen() {
		return x, y
	}
	return sql.NullFloat64{Float64: v.X, Valid: true}, sql.NullFloat64{Float64: v.Y, Valid: true}
}

func vec(x, y sql.NullFloat64) arena.Vec2 {
	if !x.Valid || !y.Valid {
		return arena.Unseen
	}
	return arena.V(x.Float64, y.Float64)
}
