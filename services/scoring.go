package services

import (
	"bolao/config"
	"bolao/models"
)

// ScoringPolicy awards points for one guess against one finished game. The
// actual rule (exact-score bonus, outcome credit, goal-difference credit) is
// a deployment decision, so ranking accepts any policy implementation.
type ScoringPolicy interface {
	Award(guess *models.Guess, game *models.Game) int
}

// TablePolicy awards points from a configurable table. Awards stack: an
// exact score also matches the outcome, so it earns both values.
type TablePolicy struct {
	ExactScore     int
	CorrectOutcome int
	GoalDifference int
}

func NewTablePolicy(cfg config.ScoringConfig) TablePolicy {
	return TablePolicy{
		ExactScore:     cfg.ExactScore,
		CorrectOutcome: cfg.CorrectOutcome,
		GoalDifference: cfg.GoalDifference,
	}
}

func (p TablePolicy) Award(guess *models.Guess, game *models.Game) int {
	if guess == nil || !game.Finished() {
		return 0
	}

	first, second := *game.FirstTeamScore, *game.SecondTeamScore
	points := 0

	if guess.FirstTeamPoints == first && guess.SecondTeamPoints == second {
		points += p.ExactScore
	}
	if outcome(guess.FirstTeamPoints, guess.SecondTeamPoints) == outcome(first, second) {
		points += p.CorrectOutcome
	}
	if guess.FirstTeamPoints-guess.SecondTeamPoints == first-second {
		points += p.GoalDifference
	}

	return points
}

func outcome(first, second int) int {
	switch {
	case first > second:
		return 1
	case first < second:
		return -1
	default:
		return 0
	}
}
