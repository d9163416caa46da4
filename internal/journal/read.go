package journal

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/scorebridge/internal/render"
	"github.com/roach88/scorebridge/internal/score"
)

// ReadRun retrieves a single run by ID.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, reason, code, blocks, finished
		FROM runs
		WHERE id = ?
	`, id)

	r, err := scanRun(row)
	if err != nil {
		return Run{}, err
	}
	return r, nil
}

// ListRuns returns every run ordered by ID. UUIDv7 run IDs sort by start time.
// Returns an empty slice (not nil) if the journal is empty.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, reason, code, blocks, finished
		FROM runs
		ORDER BY id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadCommands returns the commands of a run in application order:
// ORDER BY seq ASC, id ASC COLLATE BINARY.
// Returns an empty slice (not nil) if the run recorded nothing.
func (s *Store) ReadCommands(ctx context.Context, runID string) ([]Command, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, run_id, seq, block, kind, opcode, fields, text
		FROM commands
		WHERE run_id = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query commands: %w", err)
	}
	defer rows.Close()

	cmds := []Command{}
	for rows.Next() {
		c, err := scanCommand(rows)
		if err != nil {
			return nil, err
		}
		cmds = append(cmds, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate commands: %w", err)
	}
	return cmds, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var (
		r        Run
		reason   string
		finished int
	)
	if err := sc.Scan(&r.ID, &reason, &r.Code, &r.Blocks, &finished); err != nil {
		if err == sql.ErrNoRows {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	r.Reason = render.Reason(reason)
	r.Finished = finished != 0
	return r, nil
}

func scanCommand(sc scanner) (Command, error) {
	var (
		c      Command
		kind   string
		opcode string
		fields string
	)
	if err := sc.Scan(&c.ID, &c.RunID, &c.Seq, &c.Block, &kind, &opcode, &fields, &c.Text); err != nil {
		return Command{}, fmt.Errorf("scan command: %w", err)
	}
	c.Kind = Kind(kind)
	if len(opcode) == 1 {
		c.Opcode = score.Opcode(opcode[0])
	}
	if c.Kind == KindEvent {
		f, err := decodeFields(fields)
		if err != nil {
			return Command{}, fmt.Errorf("decode fields of %s: %w", c.ID, err)
		}
		c.Fields = f
	}
	return c, nil
}
