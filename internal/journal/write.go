package journal

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/scorebridge/internal/render"
)

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// BeginRun records that a run started.
// Uses ON CONFLICT(id) DO NOTHING for idempotency.
func (s *Store) BeginRun(ctx context.Context, runID string) error {
	if err := beginRun(ctx, s.db, runID); err != nil {
		return fmt.Errorf("begin run: %w", err)
	}
	return nil
}

// FinishRun records how a run ended. Creates the run row if it is missing.
func (s *Store) FinishRun(ctx context.Context, out render.Outcome) error {
	if err := finishRun(ctx, s.db, out); err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// WriteCommands inserts commands in one transaction.
// Duplicate IDs are silently ignored; the run row must already exist.
// Commands with an empty ID get their content address assigned.
func (s *Store) WriteCommands(ctx context.Context, cmds []Command) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write commands: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	for _, c := range cmds {
		if err := writeCommand(ctx, tx, c); err != nil {
			return fmt.Errorf("write commands: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write commands: commit: %w", err)
	}
	return nil
}

func beginRun(ctx context.Context, ex execer, runID string) error {
	_, err := ex.ExecContext(ctx, `
		INSERT INTO runs (id) VALUES (?)
		ON CONFLICT(id) DO NOTHING
	`, runID)
	return err
}

func finishRun(ctx context.Context, ex execer, out render.Outcome) error {
	_, err := ex.ExecContext(ctx, `
		INSERT INTO runs (id, reason, code, blocks, finished)
		VALUES (?, ?, ?, ?, 1)
		ON CONFLICT(id) DO UPDATE SET
			reason = excluded.reason,
			code = excluded.code,
			blocks = excluded.blocks,
			finished = 1
	`,
		out.RunID,
		string(out.Reason),
		out.Code,
		out.Blocks,
	)
	return err
}

func writeCommand(ctx context.Context, ex execer, c Command) error {
	if c.ID == "" {
		c.ID = CommandID(c)
	}

	var opcode string
	if c.Opcode != 0 {
		opcode = string(rune(c.Opcode))
	}

	_, err := ex.ExecContext(ctx, `
		INSERT INTO commands
		(id, run_id, seq, block, kind, opcode, fields, text)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		c.ID,
		c.RunID,
		c.Seq,
		c.Block,
		string(c.Kind),
		opcode,
		encodeFields(c.Fields),
		c.Text,
	)
	if err != nil {
		return fmt.Errorf("insert seq %d: %w", c.Seq, err)
	}
	return nil
}
