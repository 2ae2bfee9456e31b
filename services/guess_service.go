package services

import (
	"errors"
	"time"

	"bolao/models"

	"gorm.io/gorm"
)

// GuessService enforces the guess lifecycle: for a (participant, game) pair a
// guess is either absent or recorded, and the transition is one-way. There is
// no in-process lock; the unique index on guesses is the final arbiter when
// concurrent submissions race, the pre-check below is only a fast path.
type GuessService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewGuessService(db *gorm.DB) *GuessService {
	return &GuessService{db: db, now: time.Now}
}

type SubmitGuessRequest struct {
	FirstTeamPoints  *int `json:"first_team_points" binding:"required"`
	SecondTeamPoints *int `json:"second_team_points" binding:"required"`
}

func (s *GuessService) SubmitGuess(poolID, gameID, userID uint, firstPoints, secondPoints int) (*models.Guess, error) {
	// Malformed input is rejected before any store access.
	if firstPoints < 0 || secondPoints < 0 {
		return nil, ErrInvalidGuess
	}

	var participant models.Participant
	err := s.db.Where("user_id = ? AND pool_id = ?", userID, poolID).First(&participant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotAParticipant
		}
		return nil, err
	}

	var game models.Game
	if err := s.db.First(&game, gameID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}

	// The duplicate check runs before the kickoff check so a resubmission
	// keeps reporting ErrDuplicateGuess even after the game has started.
	var existing models.Guess
	err = s.db.Where("participant_id = ? AND game_id = ?", participant.ID, gameID).First(&existing).Error
	if err == nil {
		return nil, ErrDuplicateGuess
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if !s.now().Before(game.KickoffAt) {
		return nil, ErrGameAlreadyStarted
	}

	guess := models.Guess{
		ParticipantID:    participant.ID,
		GameID:           gameID,
		FirstTeamPoints:  firstPoints,
		SecondTeamPoints: secondPoints,
		CreatedAt:        s.now(),
	}
	if err := s.db.Create(&guess).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost the race against a concurrent submission.
			return nil, ErrDuplicateGuess
		}
		return nil, err
	}

	return &guess, nil
}

// GetGuess returns the caller's recorded guess for a game, or (nil, nil) when
// none exists yet. Absence is a normal answer here, not a failure: callers
// poll their own guess status before guessing, including before they join.
func (s *GuessService) GetGuess(poolID, gameID, userID uint) (*models.Guess, error) {
	var participant models.Participant
	err := s.db.Where("user_id = ? AND pool_id = ?", userID, poolID).First(&participant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var guess models.Guess
	err = s.db.Where("participant_id = ? AND game_id = ?", participant.ID, gameID).First(&guess).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &guess, nil
}

func (s *GuessService) CountGuesses() (int64, error) {
	var count int64
	err := s.db.Model(&models.Guess{}).Count(&count).Error
	return count, err
}
