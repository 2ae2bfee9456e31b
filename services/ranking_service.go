package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"bolao/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const standingsTTL = 30 * time.Second

type RankingService struct {
	db     *gorm.DB
	redis  *redis.Client
	policy ScoringPolicy
}

func NewRankingService(db *gorm.DB, redisClient *redis.Client, policy ScoringPolicy) *RankingService {
	return &RankingService{
		db:     db,
		redis:  redisClient,
		policy: policy,
	}
}

type Standing struct {
	ParticipantID uint      `json:"participant_id"`
	UserID        uint      `json:"user_id"`
	Name          string    `json:"name"`
	AvatarURL     string    `json:"avatar_url"`
	JoinedAt      time.Time `json:"joined_at"`
	Total         int       `json:"total"`
}

// RankParticipants computes pool standings: per-game awards from the scoring
// policy, aggregated per participant, ordered by total descending with ties
// broken by earliest join time. Results are served from a short-lived redis
// cache when available.
func (s *RankingService) RankParticipants(ctx context.Context, poolID uint) ([]Standing, error) {
	if cached := s.getCachedStandings(ctx, poolID); cached != nil {
		return cached, nil
	}

	var pool models.Pool
	if err := s.db.WithContext(ctx).First(&pool, poolID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPoolNotFound
		}
		return nil, err
	}

	var participants []models.Participant
	err := s.db.WithContext(ctx).
		Where("pool_id = ?", poolID).
		Preload("User").
		Order("joined_at ASC").
		Find(&participants).Error
	if err != nil {
		return nil, err
	}

	var games []models.Game
	err = s.db.WithContext(ctx).
		Where("first_team_score IS NOT NULL AND second_team_score IS NOT NULL").
		Find(&games).Error
	if err != nil {
		return nil, err
	}

	participantIDs := make([]uint, len(participants))
	for i, p := range participants {
		participantIDs[i] = p.ID
	}

	var guesses []models.Guess
	if len(participantIDs) > 0 {
		err = s.db.WithContext(ctx).
			Where("participant_id IN ?", participantIDs).
			Find(&guesses).Error
		if err != nil {
			return nil, err
		}
	}

	type key struct{ participantID, gameID uint }
	byPair := make(map[key]*models.Guess, len(guesses))
	for i := range guesses {
		byPair[key{guesses[i].ParticipantID, guesses[i].GameID}] = &guesses[i]
	}

	standings := make([]Standing, 0, len(participants))
	for _, participant := range participants {
		total := 0
		for i := range games {
			guess := byPair[key{participant.ID, games[i].ID}] // nil when no guess was made
			total += s.policy.Award(guess, &games[i])
		}
		standings = append(standings, Standing{
			ParticipantID: participant.ID,
			UserID:        participant.UserID,
			Name:          participant.User.Name,
			AvatarURL:     participant.User.AvatarURL,
			JoinedAt:      participant.JoinedAt,
			Total:         total,
		})
	}

	// Participants were loaded in join order, so the stable sort keeps the
	// earliest joiner first among equal totals.
	sort.SliceStable(standings, func(i, j int) bool {
		return standings[i].Total > standings[j].Total
	})

	s.cacheStandings(ctx, poolID, standings)
	return standings, nil
}

// InvalidateAll drops every cached standings entry. Called when a game result
// is posted, since one game affects every pool.
func (s *RankingService) InvalidateAll(ctx context.Context) {
	if s.redis == nil {
		return
	}

	iter := s.redis.Scan(ctx, 0, "standings:*", 0).Iterator()
	for iter.Next(ctx) {
		if err := s.redis.Del(ctx, iter.Val()).Err(); err != nil {
			log.Printf("Failed to drop cached standings %s: %v", iter.Val(), err)
		}
	}
	if err := iter.Err(); err != nil {
		log.Printf("Failed to scan cached standings: %v", err)
	}
}

func (s *RankingService) cacheStandings(ctx context.Context, poolID uint, standings []Standing) {
	if s.redis == nil {
		return
	}

	data, err := json.Marshal(standings)
	if err != nil {
		log.Printf("Failed to marshal standings for pool %d: %v", poolID, err)
		return
	}

	if err := s.redis.Set(ctx, standingsKey(poolID), data, standingsTTL).Err(); err != nil {
		log.Printf("Failed to cache standings for pool %d: %v", poolID, err)
	}
}

func (s *RankingService) getCachedStandings(ctx context.Context, poolID uint) []Standing {
	if s.redis == nil {
		return nil
	}

	data, err := s.redis.Get(ctx, standingsKey(poolID)).Result()
	if err != nil {
		if err != redis.Nil {
			log.Printf("Redis error getting standings for pool %d: %v", poolID, err)
		}
		return nil
	}

	var standings []Standing
	if err := json.Unmarshal([]byte(data), &standings); err != nil {
		log.Printf("Failed to unmarshal cached standings for pool %d: %v", poolID, err)
		return nil
	}

	return standings
}

func standingsKey(poolID uint) string {
	return fmt.Sprintf("standings:%d", poolID)
}
