// Package repository contains data access logic for the calendar.  This
// file covers games, their ticket sale dates and the season list.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/hammers-calendar/internal/model"
)

// GameRepo manages persistence for games and their ticket sale dates.
type GameRepo struct {
	db *sql.DB
}

// NewGameRepo constructs a GameRepo with the given DB handle.
func NewGameRepo(db *sql.DB) *GameRepo { return &GameRepo{db: db} }

const gameColumns = `g.id, g.season, g.played_at, g.opponents, g.competition, g.location,
	g.result, g.attendance, g.match_report, g.television_channel,
	(a.user_id IS NOT NULL) AS attended`

// Seasons returns every season that has at least one game, oldest first.
func (r *GameRepo) Seasons(ctx context.Context) ([]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT season FROM games ORDER BY season`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []int
	for rows.Next() {
		var y int
		if err := rows.Scan(&y); err != nil {
			return nil, err
		}
		out = append(out, y)
	}
	return out, rows.Err()
}

// LatestSeason returns the most recent season, or 0 when no games exist.
func (r *GameRepo) LatestSeason(ctx context.Context) (int, error) {
	var y sql.NullInt64
	if err := r.db.QueryRowContext(ctx, `SELECT MAX(season) FROM games`).Scan(&y); err != nil {
		return 0, err
	}
	if !y.Valid {
		return 0, nil
	}
	return int(y.Int64), nil
}

// ListBySeason returns the games of a season in kick-off order.  Attended is
// filled in for userID; pass 0 for anonymous callers.
func (r *GameRepo) ListBySeason(ctx context.Context, season int, userID uint64) ([]model.Game, error) {
	q := `SELECT ` + gameColumns + `
	      FROM games g
	      LEFT JOIN attendances a ON a.game_id = g.id AND a.user_id = ?
	      WHERE g.season = ?
	      ORDER BY g.played_at, g.id`
	rows, err := r.db.QueryContext(ctx, q, userID, season)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	games := []model.Game{}
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		games = append(games, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadTickets(ctx, games); err != nil {
		return nil, err
	}
	return games, nil
}

// GetByID returns a single game with Attended computed for userID.  It
// returns ErrGameNotFound if no such game exists.
func (r *GameRepo) GetByID(ctx context.Context, id, userID uint64) (*model.Game, error) {
	q := `SELECT ` + gameColumns + `
	      FROM games g
	      LEFT JOIN attendances a ON a.game_id = g.id AND a.user_id = ?
	      WHERE g.id = ?`
	g, err := scanGame(r.db.QueryRowContext(ctx, q, userID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}
	games := []model.Game{g}
	if err := r.loadTickets(ctx, games); err != nil {
		return nil, err
	}
	return &games[0], nil
}

// Save inserts a game, or updates the existing row with the same
// competition, location, season and opponents, and replaces its ticket
// sale dates.  The game's ID is set on return.
func (r *GameRepo) Save(ctx context.Context, g *model.Game) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	const up = `INSERT INTO games (season, played_at, opponents, competition, location, result, attendance, match_report, television_channel)
	            VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	            ON DUPLICATE KEY UPDATE id = LAST_INSERT_ID(id), played_at = VALUES(played_at), result = VALUES(result),
	              attendance = VALUES(attendance), match_report = VALUES(match_report), television_channel = VALUES(television_channel)`
	res, err := tx.ExecContext(ctx, up,
		g.Season, g.At.UTC(), g.Opponents, string(g.Competition), string(g.Location),
		nullString(g.Result), nullInt(g.Attendance), nullString(g.MatchReport), nullString(g.TelevisionChannel))
	if err != nil {
		return fmt.Errorf("save game: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	g.ID = uint64(id)
	if _, err := tx.ExecContext(ctx, `DELETE FROM game_tickets WHERE game_id = ?`, g.ID); err != nil {
		return fmt.Errorf("clear tickets: %w", err)
	}
	if len(g.Tickets) > 0 {
		q := `INSERT INTO game_tickets (game_id, ticket_type, on_sale_at) VALUES `
		args := make([]interface{}, 0, len(g.Tickets)*3)
		i := 0
		for tt, at := range g.Tickets {
			if i > 0 {
				q += ","
			}
			q += "(?, ?, ?)"
			args = append(args, g.ID, tt, at.UTC())
			i++
		}
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("save tickets: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// loadTickets fills the Tickets map of each game with a single query.
func (r *GameRepo) loadTickets(ctx context.Context, games []model.Game) error {
	if len(games) == 0 {
		return nil
	}
	idx := make(map[uint64]int, len(games))
	placeholders := make([]string, 0, len(games))
	args := make([]interface{}, 0, len(games))
	for i, g := range games {
		idx[g.ID] = i
		placeholders = append(placeholders, "?")
		args = append(args, g.ID)
	}
	q := `SELECT game_id, ticket_type, on_sale_at FROM game_tickets WHERE game_id IN (` + strings.Join(placeholders, ",") + `)`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			gameID uint64
			tt     string
			at     time.Time
		)
		if err := rows.Scan(&gameID, &tt, &at); err != nil {
			return err
		}
		i, ok := idx[gameID]
		if !ok {
			continue
		}
		if games[i].Tickets == nil {
			games[i].Tickets = make(map[string]time.Time)
		}
		games[i].Tickets[tt] = at.UTC()
	}
	return rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanGame(s scanner) (model.Game, error) {
	var (
		g                                  model.Game
		competition, location              string
		result, matchReport, televisionCh  sql.NullString
		attendance                         sql.NullInt64
	)
	err := s.Scan(&g.ID, &g.Season, &g.At, &g.Opponents, &competition, &location,
		&result, &attendance, &matchReport, &televisionCh, &g.Attended)
	if err != nil {
		return model.Game{}, err
	}
	g.At = g.At.UTC()
	g.Competition = model.Competition(competition)
	g.Location = model.Location(location)
	g.Result = result.String
	g.MatchReport = matchReport.String
	g.TelevisionChannel = televisionCh.String
	if attendance.Valid {
		n := int(attendance.Int64)
		g.Attendance = &n
	}
	return g, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}
