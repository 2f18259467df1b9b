package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/heeddb/heed/internal/trigger"
)

// ScanByEvent returns every registration for an event, ordered by name
// (COLLATE BINARY, via the unique (event, name) index). The dispatch
// cache consumes this order as-is and never sorts.
//
// Returns an empty slice (not nil) if no registrations exist.
func (s *Store) ScanByEvent(ctx context.Context, event trigger.Event) ([]trigger.Registration, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, event, timing, enabled, callback_id, tags
		FROM registrations
		WHERE event = ?
		ORDER BY name COLLATE BINARY ASC
	`, event.String())
	if err != nil {
		return nil, fmt.Errorf("query registrations: %w", err)
	}
	defer rows.Close()

	var regs []trigger.Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate registrations: %w", err)
	}

	if regs == nil {
		regs = []trigger.Registration{}
	}

	return regs, nil
}

// GetByEventAndName retrieves a single registration. A missing name
// reports a NAME_NOT_FOUND configuration error.
func (s *Store) GetByEventAndName(ctx context.Context, event trigger.Event, name string) (*trigger.Registration, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, event, timing, enabled, callback_id, tags
		FROM registrations
		WHERE event = ? AND name = ?
	`, event.String(), name)

	reg, err := scanRegistrationRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, trigger.NewNameNotFoundError(event, name)
		}
		return nil, err
	}
	return &reg, nil
}

// Insert adds a registration and returns its rowid. The registration
// is validated first; a duplicate (event, name) reports a
// DUPLICATE_NAME configuration error. Broadcasts on success.
func (s *Store) Insert(ctx context.Context, reg trigger.Registration) (int64, error) {
	if errs := reg.Validate(); len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		return 0, &trigger.ConfigError{
			Code:         trigger.ErrCodeInvalidRegistration,
			Message:      "invalid registration: " + strings.Join(msgs, "; "),
			Registration: reg.Name,
		}
	}

	tags, err := marshalTags(reg.Tags)
	if err != nil {
		return 0, fmt.Errorf("insert registration: %w", err)
	}

	// ON CONFLICT DO NOTHING plus RowsAffected distinguishes the
	// duplicate without depending on driver error codes.
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO registrations
		(name, event, timing, enabled, callback_id, tags)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(event, name) DO NOTHING
	`,
		reg.Name,
		reg.Event.String(),
		reg.Timing.String(),
		reg.Enabled.String(),
		reg.CallbackID,
		tags,
	)
	if err != nil {
		return 0, fmt.Errorf("insert registration: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("insert registration: rows affected: %w", err)
	}
	if affected == 0 {
		return 0, trigger.NewDuplicateNameError(reg.Event, reg.Name)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert registration: last insert id: %w", err)
	}

	s.notify()
	return id, nil
}

// InsertBatch adds a set of registrations in one transaction: either
// every registration lands or none does. Each registration is
// validated before any write; the first duplicate (event, name),
// including collisions inside the batch itself, rolls everything
// back. Returns the rowids in input order and broadcasts once on
// success. An empty batch is a no-op.
func (s *Store) InsertBatch(ctx context.Context, regs []trigger.Registration) ([]int64, error) {
	ids := make([]int64, 0, len(regs))
	if len(regs) == 0 {
		return ids, nil
	}

	for _, reg := range regs {
		if errs := reg.Validate(); len(errs) > 0 {
			msgs := make([]string, len(errs))
			for i, e := range errs {
				msgs[i] = e.Error()
			}
			return nil, &trigger.ConfigError{
				Code:         trigger.ErrCodeInvalidRegistration,
				Message:      "invalid registration: " + strings.Join(msgs, "; "),
				Registration: reg.Name,
			}
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("insert batch: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	for _, reg := range regs {
		tags, err := marshalTags(reg.Tags)
		if err != nil {
			return nil, fmt.Errorf("insert batch: %w", err)
		}

		result, err := tx.ExecContext(ctx, `
			INSERT INTO registrations
			(name, event, timing, enabled, callback_id, tags)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(event, name) DO NOTHING
		`,
			reg.Name,
			reg.Event.String(),
			reg.Timing.String(),
			reg.Enabled.String(),
			reg.CallbackID,
			tags,
		)
		if err != nil {
			return nil, fmt.Errorf("insert batch: %w", err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("insert batch: rows affected: %w", err)
		}
		if affected == 0 {
			return nil, trigger.NewDuplicateNameError(reg.Event, reg.Name)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("insert batch: last insert id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("insert batch: commit: %w", err)
	}

	s.notify()
	return ids, nil
}

// UpdateEnabled sets the enabled state of a registration by rowid.
// Broadcasts on success.
func (s *Store) UpdateEnabled(ctx context.Context, id int64, state trigger.EnabledState) error {
	if !state.Valid() {
		return &trigger.ConfigError{
			Code:    trigger.ErrCodeEnabledUnknown,
			Message: fmt.Sprintf("invalid enabled state %d", int(state)),
		}
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE registrations SET enabled = ? WHERE id = ?
	`, state.String(), id)
	if err != nil {
		return fmt.Errorf("update enabled: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update enabled: rows affected: %w", err)
	}
	if affected == 0 {
		return registrationNotFound(id)
	}

	s.notify()
	return nil
}

// Rename changes a registration's name by rowid. The new name must be
// free within the registration's event; a collision reports a
// DUPLICATE_NAME configuration error. Broadcasts on success.
func (s *Store) Rename(ctx context.Context, id int64, newName string) error {
	if newName == "" {
		return &trigger.ConfigError{
			Code:    trigger.ErrCodeInvalidRegistration,
			Message: "new name must not be empty",
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("rename registration: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	var eventTag string
	err = tx.QueryRowContext(ctx, `
		SELECT event FROM registrations WHERE id = ?
	`, id).Scan(&eventTag)
	if errors.Is(err, sql.ErrNoRows) {
		return registrationNotFound(id)
	}
	if err != nil {
		return fmt.Errorf("rename registration: %w", err)
	}

	// UPDATE OR IGNORE skips the row on a unique collision; with
	// existence already established, zero rows means duplicate.
	result, err := tx.ExecContext(ctx, `
		UPDATE OR IGNORE registrations SET name = ? WHERE id = ?
	`, newName, id)
	if err != nil {
		return fmt.Errorf("rename registration: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rename registration: rows affected: %w", err)
	}
	if affected == 0 {
		event, perr := trigger.ParseEvent(eventTag)
		if perr != nil {
			return fmt.Errorf("rename registration: stored event %q: %w", eventTag, perr)
		}
		return trigger.NewDuplicateNameError(event, newName)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("rename registration: commit: %w", err)
	}

	s.notify()
	return nil
}

// Delete removes a registration by rowid. Broadcasts on success.
func (s *Store) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM registrations WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("delete registration: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete registration: rows affected: %w", err)
	}
	if affected == 0 {
		return registrationNotFound(id)
	}

	s.notify()
	return nil
}

func registrationNotFound(id int64) error {
	return &trigger.ConfigError{
		Code:    trigger.ErrCodeNameNotFound,
		Message: fmt.Sprintf("registration %d not found", id),
	}
}

// marshalTags converts a tag filter to canonical JSON TEXT for
// storage. Empty filters (wildcard) store as NULL.
func marshalTags(tags []string) (sql.NullString, error) {
	if len(tags) == 0 {
		return sql.NullString{}, nil
	}
	arr := make([]any, len(tags))
	for i, tag := range tags {
		arr[i] = tag
	}
	data, err := trigger.MarshalCanonical(arr)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("marshal tags: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// unmarshalTags parses the stored tag filter. NULL means wildcard.
func unmarshalTags(data sql.NullString) ([]string, error) {
	if !data.Valid || data.String == "" {
		return nil, nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(data.String), &tags); err != nil {
		return nil, fmt.Errorf("unmarshal tags: %w", err)
	}
	return tags, nil
}

// scanRegistration scans a row into a Registration struct.
func scanRegistration(rows *sql.Rows) (trigger.Registration, error) {
	var reg trigger.Registration
	var eventTag, timingTag, enabledTag string
	var tags sql.NullString

	if err := rows.Scan(
		&reg.ID, &reg.Name, &eventTag, &timingTag, &enabledTag,
		&reg.CallbackID, &tags,
	); err != nil {
		return trigger.Registration{}, fmt.Errorf("scan registration: %w", err)
	}

	return buildRegistration(reg, eventTag, timingTag, enabledTag, tags)
}

// scanRegistrationRow scans a single-row query into a Registration.
func scanRegistrationRow(row *sql.Row) (trigger.Registration, error) {
	var reg trigger.Registration
	var eventTag, timingTag, enabledTag string
	var tags sql.NullString

	if err := row.Scan(
		&reg.ID, &reg.Name, &eventTag, &timingTag, &enabledTag,
		&reg.CallbackID, &tags,
	); err != nil {
		return trigger.Registration{}, err
	}

	return buildRegistration(reg, eventTag, timingTag, enabledTag, tags)
}

// buildRegistration resolves the stored string tags into typed fields.
func buildRegistration(reg trigger.Registration, eventTag, timingTag, enabledTag string, tags sql.NullString) (trigger.Registration, error) {
	event, err := trigger.ParseEvent(eventTag)
	if err != nil {
		return trigger.Registration{}, fmt.Errorf("registration %q: stored event: %w", reg.Name, err)
	}
	reg.Event = event

	timing, err := trigger.ParseTiming(timingTag)
	if err != nil {
		return trigger.Registration{}, fmt.Errorf("registration %q: stored timing: %w", reg.Name, err)
	}
	reg.Timing = timing

	enabled, err := trigger.ParseEnabled(enabledTag)
	if err != nil {
		return trigger.Registration{}, fmt.Errorf("registration %q: stored enabled state: %w", reg.Name, err)
	}
	reg.Enabled = enabled

	parsed, err := unmarshalTags(tags)
	if err != nil {
		return trigger.Registration{}, fmt.Errorf("registration %q: %w", reg.Name, err)
	}
	reg.Tags = parsed

	return reg, nil
}
