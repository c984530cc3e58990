package services

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"edulabs/backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestRarityForXP(t *testing.T) {
	assert.Equal(t, RarityCommon, RarityForXP(0))
	assert.Equal(t, RarityCommon, RarityForXP(19))
	assert.Equal(t, RarityRare, RarityForXP(20))
	assert.Equal(t, RarityRare, RarityForXP(49))
	assert.Equal(t, RarityEpic, RarityForXP(50))
	assert.Equal(t, RarityEpic, RarityForXP(75))
	assert.Equal(t, RarityEpic, RarityForXP(99))
	assert.Equal(t, RarityLegendary, RarityForXP(100))
	assert.Equal(t, RarityLegendary, RarityForXP(500))
}

func TestResolveStatuses(t *testing.T) {
	earnedAt := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	catalog := []models.Achievement{
		achievementWithID(1, "veteran", 100),
		achievementWithID(2, "graduate", 75),
		achievementWithID(3, "first-steps", 10),
	}
	earned := []models.UserAchievement{
		{UserID: 7, AchievementID: 2, EarnedAt: earnedAt},
	}

	statuses := ResolveStatuses(catalog, earned)
	require.Len(t, statuses, 3)

	assert.False(t, statuses[0].Unlocked)
	assert.Nil(t, statuses[0].UnlockedAt)
	assert.Equal(t, RarityLegendary, statuses[0].Rarity)

	assert.True(t, statuses[1].Unlocked)
	require.NotNil(t, statuses[1].UnlockedAt)
	assert.Equal(t, earnedAt, *statuses[1].UnlockedAt)
	assert.Equal(t, RarityEpic, statuses[1].Rarity)

	assert.False(t, statuses[2].Unlocked)
	assert.Equal(t, RarityCommon, statuses[2].Rarity)
}

func TestResolveStatusesDropsRecordsMissingFromCatalog(t *testing.T) {
	catalog := []models.Achievement{
		achievementWithID(1, "first-steps", 10),
	}
	earned := []models.UserAchievement{
		{UserID: 7, AchievementID: 1, EarnedAt: time.Now()},
		{UserID: 7, AchievementID: 99, EarnedAt: time.Now()}, // removed from catalog
	}

	statuses := ResolveStatuses(catalog, earned)
	require.Len(t, statuses, 1)
	assert.Equal(t, "first-steps", statuses[0].Slug)
	assert.True(t, statuses[0].Unlocked)
}

func TestResolveStatusesEmptyInputs(t *testing.T) {
	assert.Empty(t, ResolveStatuses(nil, nil))

	statuses := ResolveStatuses([]models.Achievement{achievementWithID(1, "x", 10)}, nil)
	require.Len(t, statuses, 1)
	assert.False(t, statuses[0].Unlocked)
}

func TestMeetsThreshold(t *testing.T) {
	counters := map[string]int{
		"lessons_completed": 12,
		"courses_completed": 1,
		"level":             3,
	}

	assert.True(t, meetsThreshold(counters, map[string]int{"lessons_completed": 10}))
	assert.True(t, meetsThreshold(counters, map[string]int{"lessons_completed": 10, "courses_completed": 1}))
	assert.False(t, meetsThreshold(counters, map[string]int{"lessons_completed": 50}))
	assert.False(t, meetsThreshold(counters, map[string]int{"level": 5}))
	assert.True(t, meetsThreshold(counters, map[string]int{}))
}

func TestDefaultAchievementsCoverAllTriggers(t *testing.T) {
	defined := make(map[string]bool)
	for _, a := range DefaultAchievements {
		defined[a.Slug] = true
	}
	for _, trigger := range achievementTriggers {
		assert.True(t, defined[trigger.Slug], "trigger %s has no seeded achievement", trigger.Slug)
	}
}

func TestAwardIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := NewAchievementService(db, log.New(io.Discard, "", 0), 100)
	require.NoError(t, svc.SeedCatalog())

	user := &models.User{Username: "gopher", Email: "gopher@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(user).Error)

	awarded, err := svc.Award(context.Background(), user.ID, "first-steps")
	require.NoError(t, err)
	assert.True(t, awarded)

	again, err := svc.Award(context.Background(), user.ID, "first-steps")
	require.NoError(t, err)
	assert.False(t, again)

	// the XP credit and the feed entry happened exactly once
	var fresh models.User
	require.NoError(t, db.First(&fresh, user.ID).Error)
	assert.Equal(t, 10, fresh.TotalXP)

	var earned int64
	db.Model(&models.UserAchievement{}).Where("user_id = ?", user.ID).Count(&earned)
	assert.EqualValues(t, 1, earned)

	var feed int64
	db.Model(&models.ActivityLog{}).
		Where("user_id = ? AND action_type = ?", user.ID, models.ActivityAchievementUnlocked).
		Count(&feed)
	assert.EqualValues(t, 1, feed)
}

func TestAwardUnknownSlug(t *testing.T) {
	db := newTestDB(t)
	svc := NewAchievementService(db, log.New(io.Discard, "", 0), 100)

	user := &models.User{Username: "gopher", Email: "gopher@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(user).Error)

	awarded, err := svc.Award(context.Background(), user.ID, "no-such-achievement")
	assert.False(t, awarded)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func achievementWithID(id uint, slug string, xp int) models.Achievement {
	a := models.Achievement{Slug: slug, Title: slug, XPReward: xp}
	a.ID = id
	return a
}
