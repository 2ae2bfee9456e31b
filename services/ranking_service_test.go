package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"bolao/models"
)

type rankingFixture struct {
	db      *gorm.DB
	pools   *PoolService
	guesses *GuessService
	games   *GameService
	ranking *RankingService
	pool    *models.Pool
	users   []*models.User
}

// Three members joined in order u0, u1, u2; scoring is 3 for the exact
// score plus 1 for the correct outcome (tests pin the table, production
// reads it from config).
func newRankingFixture(t *testing.T) *rankingFixture {
	t.Helper()

	db := testDB(t)
	pools := NewPoolService(db)
	ranking := NewRankingService(db, testRedis(t), TablePolicy{ExactScore: 3, CorrectOutcome: 1})

	f := &rankingFixture{
		db:      db,
		pools:   pools,
		guesses: NewGuessService(db),
		games:   NewGameService(db, ranking),
		ranking: ranking,
	}

	f.users = append(f.users, createUser(t, db, "u0"))
	pool, err := pools.CreatePool(f.users[0].ID, &CreatePoolRequest{Title: "Ranked"})
	require.NoError(t, err)
	f.pool = pool

	for _, name := range []string{"u1", "u2"} {
		user := createUser(t, db, name)
		_, err := pools.JoinPool(user.ID, &JoinPoolRequest{Code: pool.Code})
		require.NoError(t, err)
		f.users = append(f.users, user)
	}

	return f
}

func (f *rankingFixture) playGame(t *testing.T, guesses map[uint][2]int, first, second int) {
	t.Helper()

	game := createGame(t, f.db, time.Now().Add(time.Hour))
	for userID, points := range guesses {
		_, err := f.guesses.SubmitGuess(f.pool.ID, game.ID, userID, points[0], points[1])
		require.NoError(t, err)
	}

	_, err := f.games.SetResult(context.Background(), game.ID, &SetResultRequest{
		FirstTeamScore:  &first,
		SecondTeamScore: &second,
	})
	require.NoError(t, err)
}

func TestRankParticipants(t *testing.T) {
	f := newRankingFixture(t)
	u0, u1, u2 := f.users[0], f.users[1], f.users[2]

	// u1 nails the score, u0 gets the outcome, u2 never guesses.
	f.playGame(t, map[uint][2]int{
		u0.ID: {1, 0},
		u1.ID: {2, 1},
	}, 2, 1)

	standings, err := f.ranking.RankParticipants(context.Background(), f.pool.ID)
	require.NoError(t, err)
	require.Len(t, standings, 3)

	require.Equal(t, u1.ID, standings[0].UserID)
	require.Equal(t, 4, standings[0].Total)
	require.Equal(t, u0.ID, standings[1].UserID)
	require.Equal(t, 1, standings[1].Total)
	require.Equal(t, u2.ID, standings[2].UserID)
	require.Equal(t, 0, standings[2].Total)

	// Totals never increase down the sequence.
	for i := 1; i < len(standings); i++ {
		require.LessOrEqual(t, standings[i].Total, standings[i-1].Total)
	}
}

func TestRankParticipants_TieBrokenByJoinTime(t *testing.T) {
	f := newRankingFixture(t)

	// Nobody guesses: all totals are zero, so standings follow join order.
	f.playGame(t, nil, 1, 1)

	standings, err := f.ranking.RankParticipants(context.Background(), f.pool.ID)
	require.NoError(t, err)
	require.Len(t, standings, 3)

	for i, user := range f.users {
		require.Equal(t, user.ID, standings[i].UserID)
	}
	for i := 1; i < len(standings); i++ {
		require.False(t, standings[i].JoinedAt.Before(standings[i-1].JoinedAt))
	}
}

func TestRankParticipants_UnfinishedGamesScoreNothing(t *testing.T) {
	f := newRankingFixture(t)
	u0 := f.users[0]

	game := createGame(t, f.db, time.Now().Add(time.Hour))
	_, err := f.guesses.SubmitGuess(f.pool.ID, game.ID, u0.ID, 2, 1)
	require.NoError(t, err)

	standings, err := f.ranking.RankParticipants(context.Background(), f.pool.ID)
	require.NoError(t, err)
	for _, s := range standings {
		require.Equal(t, 0, s.Total)
	}
}

func TestRankParticipants_PoolNotFound(t *testing.T) {
	f := newRankingFixture(t)

	_, err := f.ranking.RankParticipants(context.Background(), f.pool.ID+100)
	require.ErrorIs(t, err, ErrPoolNotFound)
}

func TestRankParticipants_ServesCachedCopyWithinTTL(t *testing.T) {
	f := newRankingFixture(t)
	u0 := f.users[0]

	game := createGame(t, f.db, time.Now().Add(time.Hour))
	_, err := f.guesses.SubmitGuess(f.pool.ID, game.ID, u0.ID, 2, 1)
	require.NoError(t, err)

	standings, err := f.ranking.RankParticipants(context.Background(), f.pool.ID)
	require.NoError(t, err)
	require.Equal(t, 0, standings[0].Total)

	// Post the result behind the cache's back. A recompute would now score
	// the guess, so identical standings prove the cached copy was served.
	require.NoError(t, f.db.Model(&models.Game{}).
		Where("id = ?", game.ID).
		Updates(map[string]interface{}{"first_team_score": 2, "second_team_score": 1}).Error)

	cached, err := f.ranking.RankParticipants(context.Background(), f.pool.ID)
	require.NoError(t, err)
	require.Len(t, cached, len(standings))
	for i := range standings {
		require.Equal(t, standings[i].ParticipantID, cached[i].ParticipantID)
		require.Equal(t, standings[i].Total, cached[i].Total)
	}
	require.Equal(t, 0, cached[0].Total, "a recompute would have scored the guess")

	// Dropping the cache exposes the new result.
	f.ranking.InvalidateAll(context.Background())

	fresh, err := f.ranking.RankParticipants(context.Background(), f.pool.ID)
	require.NoError(t, err)
	require.Equal(t, u0.ID, fresh[0].UserID)
	require.Equal(t, 4, fresh[0].Total)
}

func TestRankParticipants_CacheInvalidatedByResult(t *testing.T) {
	f := newRankingFixture(t)
	u0 := f.users[0]

	game := createGame(t, f.db, time.Now().Add(time.Hour))
	_, err := f.guesses.SubmitGuess(f.pool.ID, game.ID, u0.ID, 2, 1)
	require.NoError(t, err)

	// Prime the cache while the game is still open.
	standings, err := f.ranking.RankParticipants(context.Background(), f.pool.ID)
	require.NoError(t, err)
	require.Equal(t, 0, standings[0].Total)

	first, second := 2, 1
	_, err = f.games.SetResult(context.Background(), game.ID, &SetResultRequest{
		FirstTeamScore:  &first,
		SecondTeamScore: &second,
	})
	require.NoError(t, err)

	// The posted result must be visible immediately, not after the TTL.
	standings, err = f.ranking.RankParticipants(context.Background(), f.pool.ID)
	require.NoError(t, err)
	require.Equal(t, u0.ID, standings[0].UserID)
	require.Equal(t, 4, standings[0].Total)
}
