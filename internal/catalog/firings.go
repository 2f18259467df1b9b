package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/heeddb/heed/internal/trigger"
)

// FiringQuery filters a firing-log read. Zero values mean no filter:
// an empty CommandID matches every command, an empty Event every
// event, and a non-positive Limit returns all rows.
type FiringQuery struct {
	// CommandID restricts to one command execution.
	CommandID string

	// Event restricts to one lifecycle event, by its canonical tag.
	Event string

	// Limit caps the number of rows returned.
	Limit int64
}

// AppendFiring records one callback invocation in the firing log and
// returns its content-addressed ID. A firing with an empty ID has one
// computed from its identity fields. Appending the same firing twice
// is a no-op.
func (s *Store) AppendFiring(ctx context.Context, firing trigger.Firing) (string, error) {
	id := firing.ID
	if id == "" {
		var err error
		id, err = trigger.FiringID(
			firing.CommandID, firing.Event, firing.Tag,
			firing.Registration, firing.CallbackID, firing.Seq,
		)
		if err != nil {
			return "", fmt.Errorf("append firing: %w", err)
		}
	}

	canceled := 0
	if firing.Canceled {
		canceled = 1
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO firings
		(id, command_id, event, tag, registration, callback_id,
		 schema_name, object_name, canceled, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		id,
		firing.CommandID,
		firing.Event.String(),
		firing.Tag,
		firing.Registration,
		firing.CallbackID,
		firing.SchemaName,
		firing.ObjectName,
		canceled,
		firing.Seq,
	)
	if err != nil {
		return "", fmt.Errorf("append firing: %w", err)
	}

	return id, nil
}

// ListFirings reads the firing log in audit order (seq ascending, ID
// as tiebreak) with optional filters.
//
// Returns an empty slice (not nil) if nothing matches.
func (s *Store) ListFirings(ctx context.Context, q FiringQuery) ([]trigger.Firing, error) {
	query := strings.Builder{}
	query.WriteString(`
		SELECT id, command_id, event, tag, registration, callback_id,
		       schema_name, object_name, canceled, seq
		FROM firings
	`)

	var conds []string
	var args []any
	if q.CommandID != "" {
		conds = append(conds, "command_id = ?")
		args = append(args, q.CommandID)
	}
	if q.Event != "" {
		event, err := trigger.ParseEvent(q.Event)
		if err != nil {
			return nil, err
		}
		conds = append(conds, "event = ?")
		args = append(args, event.String())
	}
	if len(conds) > 0 {
		query.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}

	query.WriteString(" ORDER BY seq ASC, id COLLATE BINARY ASC")

	if q.Limit > 0 {
		query.WriteString(" LIMIT ?")
		args = append(args, q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query firings: %w", err)
	}
	defer rows.Close()

	var firings []trigger.Firing
	for rows.Next() {
		firing, err := scanFiring(rows)
		if err != nil {
			return nil, err
		}
		firings = append(firings, firing)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate firings: %w", err)
	}

	if firings == nil {
		firings = []trigger.Firing{}
	}

	return firings, nil
}

// scanFiring scans a row into a Firing struct.
func scanFiring(rows *sql.Rows) (trigger.Firing, error) {
	var firing trigger.Firing
	var eventTag string
	var canceled int

	if err := rows.Scan(
		&firing.ID, &firing.CommandID, &eventTag, &firing.Tag,
		&firing.Registration, &firing.CallbackID,
		&firing.SchemaName, &firing.ObjectName, &canceled, &firing.Seq,
	); err != nil {
		return trigger.Firing{}, fmt.Errorf("scan firing: %w", err)
	}

	event, err := trigger.ParseEvent(eventTag)
	if err != nil {
		return trigger.Firing{}, fmt.Errorf("firing %s: stored event: %w", firing.ID, err)
	}
	firing.Event = event
	firing.Canceled = canceled != 0

	return firing, nil
}
