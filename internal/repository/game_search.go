package repository

import (
	"context"
	"strings"

	"github.com/iliyamo/hammers-calendar/internal/model"
)

// GameSearchQuery defines filters & pagination for searching games across
// seasons.
type GameSearchQuery struct {
	Opponents   string
	Competition string
	Location    string
	TimeFilter  string // upcoming (default) | played | any
	Page        int
	PageSize    int
}

// Search returns one page of games matching q, in kick-off order, and the
// total number of matches.  Attended is filled in for userID.
func (r *GameRepo) Search(ctx context.Context, q GameSearchQuery, userID uint64) ([]model.Game, int64, error) {
	where := []string{}
	args := []any{}

	switch strings.ToLower(q.TimeFilter) {
	case "any":
	case "played":
		where = append(where, "g.played_at < UTC_TIMESTAMP()")
	default:
		where = append(where, "g.played_at >= UTC_TIMESTAMP()")
	}

	if q.Opponents != "" {
		where = append(where, "LOWER(g.opponents) LIKE ?")
		args = append(args, "%"+strings.ToLower(q.Opponents)+"%")
	}
	if q.Competition != "" {
		where = append(where, "g.competition = ?")
		args = append(args, strings.ToUpper(q.Competition))
	}
	if q.Location != "" {
		where = append(where, "g.location = ?")
		args = append(args, strings.ToUpper(q.Location))
	}

	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM games g WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := q.PageSize
	offset := (q.Page - 1) * q.PageSize

	dataSQL := `SELECT ` + gameColumns + `
		FROM games g
		LEFT JOIN attendances a ON a.game_id = g.id AND a.user_id = ?
		WHERE ` + cond + `
		ORDER BY g.played_at ASC, g.id ASC
		LIMIT ? OFFSET ?`
	argsData := append(append([]any{userID}, args...), limit, offset)

	rows, err := r.db.QueryContext(ctx, dataSQL, argsData...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.Game, 0, limit)
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if err := r.loadTickets(ctx, out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
