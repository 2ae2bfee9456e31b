package services

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"bolao/models"

	"gorm.io/gorm"
)

const createPoolAttempts = 5

type PoolService struct {
	db      *gorm.DB
	newCode func() (string, error)
}

func NewPoolService(db *gorm.DB) *PoolService {
	return &PoolService{db: db, newCode: randomCode}
}

type CreatePoolRequest struct {
	Title string `json:"title" binding:"required"`
}

type JoinPoolRequest struct {
	Code string `json:"code" binding:"required"`
}

// PoolSummary is what pool listings return: the pool plus enough context to
// render it without extra round trips.
type PoolSummary struct {
	models.Pool
	ParticipantCount int64 `json:"participant_count"`
}

// CreatePool creates the pool and enrolls the owner as its first participant
// in a single transaction, so a pool can never exist without a participant
// record for its owner. A code collision retries with a fresh code: the
// lookup is the fast path, the unique index on pools.code catches the race
// where a concurrent creation commits the same code between check and
// insert.
func (s *PoolService) CreatePool(userID uint, req *CreatePoolRequest) (*models.Pool, error) {
	for attempt := 0; attempt < createPoolAttempts; attempt++ {
		code, err := s.newCode()
		if err != nil {
			return nil, err
		}

		var count int64
		if err := s.db.Model(&models.Pool{}).Where("code = ?", code).Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			continue
		}

		pool := models.Pool{
			Title:   req.Title,
			Code:    code,
			OwnerID: userID,
		}
		err = s.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&pool).Error; err != nil {
				return err
			}

			participant := models.Participant{
				UserID:   userID,
				PoolID:   pool.ID,
				JoinedAt: time.Now(),
			}
			return tx.Create(&participant).Error
		})
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost the code race to a concurrent creation.
			continue
		}
		if err != nil {
			return nil, err
		}

		return &pool, nil
	}

	return nil, fmt.Errorf("could not generate a unique pool code")
}

// JoinPool enrolls userID in the pool identified by code. A second join with
// the same pair is rejected with ErrAlreadyJoined whether it is caught by the
// pre-check or by the unique index on a lost race.
func (s *PoolService) JoinPool(userID uint, req *JoinPoolRequest) (*models.Participant, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))

	var pool models.Pool
	if err := s.db.Where("code = ?", code).First(&pool).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPoolNotFound
		}
		return nil, err
	}

	var existing models.Participant
	err := s.db.Where("user_id = ? AND pool_id = ?", userID, pool.ID).First(&existing).Error
	if err == nil {
		return nil, ErrAlreadyJoined
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	participant := models.Participant{
		UserID:   userID,
		PoolID:   pool.ID,
		JoinedAt: time.Now(),
	}
	if err := s.db.Create(&participant).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyJoined
		}
		return nil, err
	}

	return &participant, nil
}

// ListUserPools returns every pool the user participates in, newest first.
func (s *PoolService) ListUserPools(userID uint) ([]PoolSummary, error) {
	var pools []models.Pool
	err := s.db.
		Joins("JOIN participants ON participants.pool_id = pools.id").
		Where("participants.user_id = ?", userID).
		Preload("Owner").
		Order("pools.created_at DESC").
		Find(&pools).Error
	if err != nil {
		return nil, err
	}

	poolIDs := make([]uint, len(pools))
	for i, pool := range pools {
		poolIDs[i] = pool.ID
	}

	var counts []struct {
		PoolID uint
		Count  int64
	}
	if len(poolIDs) > 0 {
		err = s.db.Model(&models.Participant{}).
			Select("pool_id, COUNT(*) AS count").
			Where("pool_id IN ?", poolIDs).
			Group("pool_id").
			Scan(&counts).Error
		if err != nil {
			return nil, err
		}
	}

	countByPool := make(map[uint]int64, len(counts))
	for _, c := range counts {
		countByPool[c.PoolID] = c.Count
	}

	summaries := make([]PoolSummary, 0, len(pools))
	for _, pool := range pools {
		summaries = append(summaries, PoolSummary{Pool: pool, ParticipantCount: countByPool[pool.ID]})
	}

	return summaries, nil
}

// GetPool returns pool details to one of its participants.
func (s *PoolService) GetPool(poolID, userID uint) (*models.Pool, error) {
	if _, err := s.findParticipant(userID, poolID); err != nil {
		return nil, err
	}

	var pool models.Pool
	err := s.db.
		Preload("Owner").
		Preload("Participants").
		Preload("Participants.User").
		First(&pool, poolID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPoolNotFound
		}
		return nil, err
	}

	return &pool, nil
}

func (s *PoolService) CountPools() (int64, error) {
	var count int64
	err := s.db.Model(&models.Pool{}).Count(&count).Error
	return count, err
}

func (s *PoolService) CountUsers() (int64, error) {
	var count int64
	err := s.db.Model(&models.User{}).Count(&count).Error
	return count, err
}

func (s *PoolService) findParticipant(userID, poolID uint) (*models.Participant, error) {
	var participant models.Participant
	err := s.db.Where("user_id = ? AND pool_id = ?", userID, poolID).First(&participant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotAParticipant
		}
		return nil, err
	}
	return &participant, nil
}

// randomCode produces a 6-char join code candidate.
func randomCode() (string, error) {
	bytes := make([]byte, 3)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(bytes)), nil
}
