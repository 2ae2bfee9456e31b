package services

import (
	"context"
	"errors"
	"time"

	"bolao/models"

	"gorm.io/gorm"
)

// GameService is the seeding surface for the shared game catalogue. Games
// belong to no pool; every pool guesses against the same fixtures.
type GameService struct {
	db      *gorm.DB
	ranking *RankingService
}

func NewGameService(db *gorm.DB, ranking *RankingService) *GameService {
	return &GameService{db: db, ranking: ranking}
}

type CreateGameRequest struct {
	FirstTeamCode  string    `json:"first_team_code" binding:"required"`
	SecondTeamCode string    `json:"second_team_code" binding:"required"`
	KickoffAt      time.Time `json:"kickoff_at" binding:"required"`
}

type SetResultRequest struct {
	FirstTeamScore  *int `json:"first_team_score" binding:"required"`
	SecondTeamScore *int `json:"second_team_score" binding:"required"`
}

// GameWithGuess pairs a game with the requesting participant's own guess,
// nil when they have not guessed.
type GameWithGuess struct {
	models.Game
	Guess *models.Guess `json:"guess"`
}

func (s *GameService) CreateGame(req *CreateGameRequest) (*models.Game, error) {
	game := models.Game{
		FirstTeamCode:  req.FirstTeamCode,
		SecondTeamCode: req.SecondTeamCode,
		KickoffAt:      req.KickoffAt,
	}
	if err := s.db.Create(&game).Error; err != nil {
		return nil, err
	}
	return &game, nil
}

// SetResult posts the final score exactly once. Kickoff time and an already
// posted result are immutable, so the update is guarded by a NULL check and
// never touches other columns.
func (s *GameService) SetResult(ctx context.Context, gameID uint, req *SetResultRequest) (*models.Game, error) {
	if *req.FirstTeamScore < 0 || *req.SecondTeamScore < 0 {
		return nil, ErrInvalidScore
	}

	var game models.Game
	if err := s.db.First(&game, gameID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}

	if game.Finished() {
		return nil, ErrResultAlreadySet
	}

	result := s.db.Model(&models.Game{}).
		Where("id = ? AND first_team_score IS NULL AND second_team_score IS NULL", gameID).
		Updates(map[string]interface{}{
			"first_team_score":  *req.FirstTeamScore,
			"second_team_score": *req.SecondTeamScore,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		// A concurrent SetResult won the race.
		return nil, ErrResultAlreadySet
	}

	game.FirstTeamScore = req.FirstTeamScore
	game.SecondTeamScore = req.SecondTeamScore

	// Standings derived from this game are stale everywhere.
	if s.ranking != nil {
		s.ranking.InvalidateAll(ctx)
	}

	return &game, nil
}

// ListPoolGames returns the catalogue for a pool member, newest kickoff
// first, with the caller's own guess attached to each game.
func (s *GameService) ListPoolGames(poolID, userID uint) ([]GameWithGuess, error) {
	var participant models.Participant
	err := s.db.Where("user_id = ? AND pool_id = ?", userID, poolID).First(&participant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotAParticipant
		}
		return nil, err
	}

	var games []models.Game
	if err := s.db.Order("kickoff_at DESC").Find(&games).Error; err != nil {
		return nil, err
	}

	var guesses []models.Guess
	if err := s.db.Where("participant_id = ?", participant.ID).Find(&guesses).Error; err != nil {
		return nil, err
	}

	byGame := make(map[uint]*models.Guess, len(guesses))
	for i := range guesses {
		byGame[guesses[i].GameID] = &guesses[i]
	}

	withGuesses := make([]GameWithGuess, len(games))
	for i, game := range games {
		withGuesses[i] = GameWithGuess{
			Game:  game,
			Guess: byGame[game.ID],
		}
	}

	return withGuesses, nil
}

func (s *GameService) GetGame(gameID uint) (*models.Game, error) {
	var game models.Game
	if err := s.db.First(&game, gameID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}
	return &game, nil
}
