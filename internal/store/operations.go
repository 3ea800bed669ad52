package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/conn-castle/core-installer/internal/messages"
)

// BeginOperation inserts op and returns its journal id.
func (s *Store) BeginOperation(op Operation) (int64, error) {
	startedAt := op.StartedAt
	if startedAt.IsZero() {
		startedAt = s.now()
	}
	status := op.Status
	if status == "" {
		status = OperationStarted
	}
	result, err := s.db.Exec(`
		INSERT INTO operations
		(kind, package, from_version, from_reference, to_version, to_reference, status, scratch_dir, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(op.Kind),
		op.Package,
		op.FromVersion,
		op.FromReference,
		op.ToVersion,
		op.ToReference,
		string(status),
		op.ScratchDir,
		startedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, wrapErr(messages.StoreBeginOperationFmt, op.Package, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf(messages.StoreBeginOperationFmt, op.Package, err)
	}
	return id, nil
}

// FinishOperation records the outcome of an operation started with BeginOperation.
func (s *Store) FinishOperation(op Operation) error {
	if op.ID <= 0 {
		return errors.New(messages.StoreOperationIDRequired)
	}
	finishedAt := op.FinishedAt
	if finishedAt.IsZero() {
		finishedAt = s.now()
	}
	result, err := s.db.Exec(`
		UPDATE operations
		SET status = ?, scratch_dir = ?, deleted_count = ?, failure_step = ?, failure_error = ?, finished_at = ?
		WHERE id = ?`,
		string(op.Status),
		op.ScratchDir,
		op.DeletedCount,
		op.FailureStep,
		op.FailureError,
		finishedAt.UTC().Format(time.RFC3339Nano),
		op.ID,
	)
	if err != nil {
		return wrapErr(messages.StoreFinishOperationFmt, op.ID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf(messages.StoreFinishOperationFmt, op.ID, err)
	}
	if affected == 0 {
		return fmt.Errorf(messages.StoreOperationNotFoundFmt, op.ID)
	}
	return nil
}

// ListOperations returns up to limit operations, newest first. limit <= 0 returns all.
func (s *Store) ListOperations(limit int) ([]Operation, error) {
	query := `
		SELECT id, kind, package, from_version, from_reference, to_version, to_reference,
		       status, scratch_dir, deleted_count, failure_step, failure_error, started_at, finished_at
		FROM operations
		ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, wrapErr(messages.StoreListOperationsFmt, err)
	}
	defer func() { _ = rows.Close() }()

	ops := []Operation{}
	for rows.Next() {
		var op Operation
		var kind, status, startedAt string
		var finishedAt sql.NullString
		if err := rows.Scan(
			&op.ID,
			&kind,
			&op.Package,
			&op.FromVersion,
			&op.FromReference,
			&op.ToVersion,
			&op.ToReference,
			&status,
			&op.ScratchDir,
			&op.DeletedCount,
			&op.FailureStep,
			&op.FailureError,
			&startedAt,
			&finishedAt,
		); err != nil {
			return nil, fmt.Errorf(messages.StoreListOperationsFmt, err)
		}
		op.Kind = OperationKind(kind)
		op.Status = OperationStatus(status)
		if op.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
			return nil, fmt.Errorf(messages.StoreParseTimeFmt, op.ID, err)
		}
		if finishedAt.Valid && finishedAt.String != "" {
			if op.FinishedAt, err = time.Parse(time.RFC3339Nano, finishedAt.String); err != nil {
				return nil, fmt.Errorf(messages.StoreParseTimeFmt, op.ID, err)
			}
		}
		ops = append(ops, op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf(messages.StoreListOperationsFmt, err)
	}
	return ops, nil
}
