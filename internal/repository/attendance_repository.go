package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// AttendanceRepo records which games a user attended.  A row in
// `attendances` means attended; its absence means not attended.
type AttendanceRepo struct {
	db *sql.DB
}

// NewAttendanceRepo returns an AttendanceRepo bound to db.
func NewAttendanceRepo(db *sql.DB) *AttendanceRepo { return &AttendanceRepo{db: db} }

// Set marks (attended=true) or clears (attended=false) the user's attendance
// at a game and returns the stored state afterwards.  Both directions are
// idempotent: attending twice leaves a single row.  ErrGameNotFound is
// returned for unknown games.
func (r *AttendanceRepo) Set(ctx context.Context, userID, gameID uint64, attended bool) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var id uint64
	if err := tx.QueryRowContext(ctx, `SELECT id FROM games WHERE id = ? FOR UPDATE`, gameID).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, ErrGameNotFound
		}
		return false, fmt.Errorf("lock game: %w", err)
	}
	if attended {
		_, err = tx.ExecContext(ctx, `INSERT IGNORE INTO attendances (user_id, game_id) VALUES (?, ?)`, userID, gameID)
	} else {
		_, err = tx.ExecContext(ctx, `DELETE FROM attendances WHERE user_id = ? AND game_id = ?`, userID, gameID)
	}
	if err != nil {
		return false, fmt.Errorf("update attendance: %w", err)
	}
	var now bool
	if err := tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM attendances WHERE user_id = ? AND game_id = ?)`, userID, gameID).Scan(&now); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	committed = true
	return now, nil
}

// CountForSeason returns how many games of a season the user attended.
func (r *AttendanceRepo) CountForSeason(ctx context.Context, userID uint64, season int) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM attendances a JOIN games g ON g.id = a.game_id WHERE a.user_id = ? AND g.season = ?`,
		userID, season).Scan(&n)
	return n, err
}
