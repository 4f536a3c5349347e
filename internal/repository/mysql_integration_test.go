//go:build integration

package repository

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mysql"

	"github.com/iliyamo/hammers-calendar/internal/database"
	"github.com/iliyamo/hammers-calendar/internal/model"
)

var testDB *sql.DB

func TestMain(m *testing.M) {
	ctx := context.Background()
	ctr, err := mysql.Run(ctx, "mysql:8.0",
		mysql.WithDatabase("calendar_test"),
		mysql.WithUsername("calendar"),
		mysql.WithPassword("calendar"),
	)
	if err != nil {
		panic("failed to start MySQL container: " + err.Error())
	}
	dsn, err := ctr.ConnectionString(ctx, "parseTime=true", "loc=UTC", "multiStatements=true")
	if err != nil {
		_ = ctr.Terminate(context.Background())
		panic("failed to get connection string: " + err.Error())
	}
	testDB, err = database.Open(ctx, dsn)
	if err == nil {
		err = database.Migrate(ctx, testDB)
	}
	if err != nil {
		_ = ctr.Terminate(context.Background())
		panic("failed to prepare database: " + err.Error())
	}

	code := m.Run()
	_ = testDB.Close()
	_ = ctr.Terminate(context.Background())
	os.Exit(code)
}

func saveGame(t *testing.T, games *GameRepo, season int, opponents string, at time.Time) *model.Game {
	t.Helper()
	g := &model.Game{
		Season:      season,
		At:          at,
		Opponents:   opponents,
		Competition: model.Premiership,
		Location:    model.Home,
		Tickets:     map[string]time.Time{"season": at.AddDate(0, -1, 0)},
	}
	require.NoError(t, games.Save(t.Context(), g))
	require.NotZero(t, g.ID)
	return g
}

func TestGameRepo_SaveListAndSeasons(t *testing.T) {
	ctx := t.Context()
	games := NewGameRepo(testDB)
	kickoff := time.Date(2015, time.August, 9, 13, 30, 0, 0, time.UTC)

	g := saveGame(t, games, 2015, "Chelsea", kickoff)

	// Same fixture again updates in place.
	again := *g
	again.ID = 0
	again.Result = "2-1"
	require.NoError(t, games.Save(ctx, &again))
	assert.Equal(t, g.ID, again.ID)

	list, err := games.ListBySeason(ctx, 2015, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "2-1", list[0].Result)
	assert.True(t, kickoff.Equal(list[0].At))
	assert.Contains(t, list[0].Tickets, "season")

	seasons, err := games.Seasons(ctx)
	require.NoError(t, err)
	assert.Contains(t, seasons, 2015)

	latest, err := games.LatestSeason(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, latest, 2015)

	_, err = games.GetByID(ctx, 999999, 0)
	assert.ErrorIs(t, err, ErrGameNotFound)
}

func TestAttendanceRepo_SetIsIdempotent(t *testing.T) {
	ctx := t.Context()
	games := NewGameRepo(testDB)
	att := NewAttendanceRepo(testDB)
	users := NewUserRepo(testDB)

	uid, err := users.Create(ctx, "Attender", "long enough password", model.RoleUser, 4)
	require.NoError(t, err)
	g := saveGame(t, games, 2016, "Arsenal", time.Date(2016, time.September, 10, 14, 0, 0, 0, time.UTC))

	for i := 0; i < 2; i++ {
		now, err := att.Set(ctx, uid, g.ID, true)
		require.NoError(t, err)
		assert.True(t, now)
	}
	n, err := att.CountForSeason(ctx, uid, 2016)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := games.GetByID(ctx, g.ID, uid)
	require.NoError(t, err)
	assert.True(t, got.Attended)
	got, err = games.GetByID(ctx, g.ID, 0)
	require.NoError(t, err)
	assert.False(t, got.Attended, "guests never see attendance")

	now, err := att.Set(ctx, uid, g.ID, false)
	require.NoError(t, err)
	assert.False(t, now)

	_, err = att.Set(ctx, uid, 424242, true)
	assert.True(t, errors.Is(err, ErrGameNotFound))
}

func TestUserRepo_DuplicateUsername(t *testing.T) {
	ctx := t.Context()
	users := NewUserRepo(testDB)

	_, err := users.Create(ctx, "dupe", "long enough password", model.RoleUser, 4)
	require.NoError(t, err)
	_, err = users.Create(ctx, " DUPE ", "long enough password", model.RoleUser, 4)
	assert.ErrorIs(t, err, ErrUsernameExists)

	u, err := users.GetByUsername(ctx, "Dupe")
	require.NoError(t, err)
	assert.Equal(t, "dupe", u.Username)
}

func TestTokenRepo_Revoke(t *testing.T) {
	ctx := t.Context()
	users := NewUserRepo(testDB)
	tokens := NewTokenRepo(testDB)

	uid, err := users.Create(ctx, "tokens", "long enough password", model.RoleUser, 4)
	require.NoError(t, err)
	require.NoError(t, tokens.StoreRefresh(ctx, uid, "hash-1", time.Now().Add(time.Hour)))

	got, err := tokens.ValidateRefresh(ctx, "hash-1")
	require.NoError(t, err)
	assert.Equal(t, uid, got)

	require.NoError(t, tokens.RevokeAllForUser(ctx, uid))
	_, err = tokens.ValidateRefresh(ctx, "hash-1")
	assert.Error(t, err)

	require.NoError(t, tokens.StoreRefresh(ctx, uid, "hash-2", time.Now().Add(time.Hour)))
	require.NoError(t, tokens.RevokeByHash(ctx, "hash-2"))
	assert.ErrorIs(t, tokens.RevokeByHash(ctx, "hash-2"), ErrTokenRevoked)
}

func TestGameRepo_Search(t *testing.T) {
	ctx := t.Context()
	games := NewGameRepo(testDB)
	past := time.Now().UTC().AddDate(0, -1, 0).Truncate(time.Second)
	future := time.Now().UTC().AddDate(0, 1, 0).Truncate(time.Second)
	saveGame(t, games, 2030, "Searchable Rovers", past)
	saveGame(t, games, 2031, "Searchable Athletic", future)

	got, total, err := games.Search(ctx, GameSearchQuery{Opponents: "searchable", TimeFilter: "any", Page: 1, PageSize: 10}, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, got, 2)
	assert.Equal(t, "Searchable Rovers", got[0].Opponents)

	got, total, err = games.Search(ctx, GameSearchQuery{Opponents: "SEARCHABLE", Page: 1, PageSize: 10}, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, got, 1)
	assert.Equal(t, "Searchable Athletic", got[0].Opponents)

	got, _, err = games.Search(ctx, GameSearchQuery{Opponents: "searchable", TimeFilter: "played", Location: "away", Page: 1, PageSize: 10}, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}
