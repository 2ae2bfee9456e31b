package services

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"bolao/models"
)

type guessFixture struct {
	db      *gorm.DB
	pools   *PoolService
	guesses *GuessService
	user    *models.User
	pool    *models.Pool
	game    *models.Game
}

func newGuessFixture(t *testing.T, kickoff time.Time) *guessFixture {
	t.Helper()

	db := testDB(t)
	pools := NewPoolService(db)
	user := createUser(t, db, "guesser")

	pool, err := pools.CreatePool(user.ID, &CreatePoolRequest{Title: "World Cup"})
	require.NoError(t, err)

	return &guessFixture{
		db:      db,
		pools:   pools,
		guesses: NewGuessService(db),
		user:    user,
		pool:    pool,
		game:    createGame(t, db, kickoff),
	}
}

func TestSubmitGuess(t *testing.T) {
	f := newGuessFixture(t, time.Now().Add(time.Hour))

	guess, err := f.guesses.SubmitGuess(f.pool.ID, f.game.ID, f.user.ID, 2, 1)
	require.NoError(t, err)
	require.Equal(t, 2, guess.FirstTeamPoints)
	require.Equal(t, 1, guess.SecondTeamPoints)
	require.False(t, guess.CreatedAt.IsZero())
	require.True(t, guess.CreatedAt.Before(f.game.KickoffAt))
}

func TestSubmitGuess_NegativePointsRejectedBeforeStoreAccess(t *testing.T) {
	f := newGuessFixture(t, time.Now().Add(time.Hour))

	// Nonexistent pool and game on purpose: validation must fire first.
	_, err := f.guesses.SubmitGuess(9999, 9999, f.user.ID, -1, 0)
	require.ErrorIs(t, err, ErrInvalidGuess)

	_, err = f.guesses.SubmitGuess(9999, 9999, f.user.ID, 0, -3)
	require.ErrorIs(t, err, ErrInvalidGuess)
}

func TestSubmitGuess_NotAParticipant(t *testing.T) {
	f := newGuessFixture(t, time.Now().Add(time.Hour))
	outsider := createUser(t, f.db, "outsider")

	_, err := f.guesses.SubmitGuess(f.pool.ID, f.game.ID, outsider.ID, 1, 0)
	require.ErrorIs(t, err, ErrNotAParticipant)
}

func TestSubmitGuess_GameNotFound(t *testing.T) {
	f := newGuessFixture(t, time.Now().Add(time.Hour))

	_, err := f.guesses.SubmitGuess(f.pool.ID, f.game.ID+1, f.user.ID, 1, 0)
	require.ErrorIs(t, err, ErrGameNotFound)
}

func TestSubmitGuess_AfterKickoff(t *testing.T) {
	f := newGuessFixture(t, time.Now().Add(-time.Minute))

	_, err := f.guesses.SubmitGuess(f.pool.ID, f.game.ID, f.user.ID, 1, 0)
	require.ErrorIs(t, err, ErrGameAlreadyStarted)
}

func TestSubmitGuess_AtKickoffInstant(t *testing.T) {
	kickoff := time.Now().Add(time.Hour)
	f := newGuessFixture(t, kickoff)
	f.guesses.now = func() time.Time { return kickoff }

	_, err := f.guesses.SubmitGuess(f.pool.ID, f.game.ID, f.user.ID, 1, 0)
	require.ErrorIs(t, err, ErrGameAlreadyStarted)
}

func TestSubmitGuess_DuplicateKeepsFirstValues(t *testing.T) {
	f := newGuessFixture(t, time.Now().Add(time.Hour))

	first, err := f.guesses.SubmitGuess(f.pool.ID, f.game.ID, f.user.ID, 2, 1)
	require.NoError(t, err)

	_, err = f.guesses.SubmitGuess(f.pool.ID, f.game.ID, f.user.ID, 0, 0)
	require.ErrorIs(t, err, ErrDuplicateGuess)

	var stored models.Guess
	require.NoError(t, f.db.First(&stored, first.ID).Error)
	require.Equal(t, 2, stored.FirstTeamPoints)
	require.Equal(t, 1, stored.SecondTeamPoints)
}

func TestSubmitGuess_DuplicateReportedEvenAfterKickoff(t *testing.T) {
	kickoff := time.Now().Add(time.Hour)
	f := newGuessFixture(t, kickoff)

	_, err := f.guesses.SubmitGuess(f.pool.ID, f.game.ID, f.user.ID, 2, 1)
	require.NoError(t, err)

	// The game has started since the first submission. The resubmission
	// must stay a duplicate, not flip to a started-game failure.
	f.guesses.now = func() time.Time { return kickoff.Add(time.Minute) }

	_, err = f.guesses.SubmitGuess(f.pool.ID, f.game.ID, f.user.ID, 2, 1)
	require.ErrorIs(t, err, ErrDuplicateGuess)
}

func TestSubmitGuess_ConcurrentDuplicates(t *testing.T) {
	f := newGuessFixture(t, time.Now().Add(time.Hour))

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.guesses.SubmitGuess(f.pool.ID, f.game.ID, f.user.ID, i, i+1)
		}(i)
	}
	wg.Wait()

	var okCount, dupCount int
	for _, err := range errs {
		switch {
		case err == nil:
			okCount++
		case err == ErrDuplicateGuess:
			dupCount++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	require.Equal(t, 1, okCount, "exactly one submission must win")
	require.Equal(t, 1, dupCount, "the loser must observe a duplicate")

	var count int64
	require.NoError(t, f.db.Model(&models.Guess{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestGetGuess(t *testing.T) {
	f := newGuessFixture(t, time.Now().Add(time.Hour))

	// No guess yet: explicit absence, not an error.
	guess, err := f.guesses.GetGuess(f.pool.ID, f.game.ID, f.user.ID)
	require.NoError(t, err)
	require.Nil(t, guess)

	submitted, err := f.guesses.SubmitGuess(f.pool.ID, f.game.ID, f.user.ID, 2, 1)
	require.NoError(t, err)

	guess, err = f.guesses.GetGuess(f.pool.ID, f.game.ID, f.user.ID)
	require.NoError(t, err)
	require.NotNil(t, guess)
	require.Equal(t, submitted.ID, guess.ID)
}

func TestGetGuess_NotYetAParticipant(t *testing.T) {
	f := newGuessFixture(t, time.Now().Add(time.Hour))
	outsider := createUser(t, f.db, "outsider")

	guess, err := f.guesses.GetGuess(f.pool.ID, f.game.ID, outsider.ID)
	require.NoError(t, err)
	require.Nil(t, guess)
}

func TestCountGuesses(t *testing.T) {
	f := newGuessFixture(t, time.Now().Add(time.Hour))

	count, err := f.guesses.CountGuesses()
	require.NoError(t, err)
	require.EqualValues(t, 0, count)

	_, err = f.guesses.SubmitGuess(f.pool.ID, f.game.ID, f.user.ID, 2, 1)
	require.NoError(t, err)

	count, err = f.guesses.CountGuesses()
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
}

func TestEndToEnd(t *testing.T) {
	db := testDB(t)
	pools := NewPoolService(db)
	guesses := NewGuessService(db)

	u1 := createUser(t, db, "u1")
	u2 := createUser(t, db, "u2")

	pool, err := pools.CreatePool(u1.ID, &CreatePoolRequest{Title: "Finals"})
	require.NoError(t, err)

	_, err = pools.JoinPool(u2.ID, &JoinPoolRequest{Code: pool.Code})
	require.NoError(t, err)

	game := createGame(t, db, time.Now().Add(time.Hour))

	_, err = guesses.SubmitGuess(pool.ID, game.ID, u2.ID, 2, 1)
	require.NoError(t, err)

	guess, err := guesses.GetGuess(pool.ID, game.ID, u2.ID)
	require.NoError(t, err)
	require.NotNil(t, guess)
	require.Equal(t, 2, guess.FirstTeamPoints)
	require.Equal(t, 1, guess.SecondTeamPoints)

	_, err = guesses.SubmitGuess(pool.ID, game.ID, u2.ID, 0, 0)
	require.ErrorIs(t, err, ErrDuplicateGuess)

	guess, err = guesses.GetGuess(pool.ID, game.ID, u2.ID)
	require.NoError(t, err)
	require.Equal(t, 2, guess.FirstTeamPoints)
	require.Equal(t, 1, guess.SecondTeamPoints)
}
