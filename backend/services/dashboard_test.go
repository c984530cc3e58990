package services

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"edulabs/backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeDashboardStore lets each test fail or stub individual fetches.
type fakeDashboardStore struct {
	profileXP        func() (int, error)
	progressRows     func() ([]models.UserCourseProgress, error)
	favoriteCourses  func() ([]models.Course, error)
	recentActivity   func() ([]models.ActivityLog, error)
	publishedCourses func() ([]models.Course, error)
}

func (f *fakeDashboardStore) GetProfileXP(ctx context.Context, userID uint) (int, error) {
	if f.profileXP == nil {
		return 0, nil
	}
	return f.profileXP()
}

func (f *fakeDashboardStore) GetProgressRows(ctx context.Context, userID uint) ([]models.UserCourseProgress, error) {
	if f.progressRows == nil {
		return nil, nil
	}
	return f.progressRows()
}

func (f *fakeDashboardStore) GetFavoriteCourses(ctx context.Context, userID uint, limit int) ([]models.Course, error) {
	if f.favoriteCourses == nil {
		return nil, nil
	}
	return f.favoriteCourses()
}

func (f *fakeDashboardStore) GetRecentActivity(ctx context.Context, userID uint, limit int) ([]models.ActivityLog, error) {
	if f.recentActivity == nil {
		return nil, nil
	}
	return f.recentActivity()
}

func (f *fakeDashboardStore) GetPublishedCourses(ctx context.Context) ([]models.Course, error) {
	if f.publishedCourses == nil {
		return nil, nil
	}
	return f.publishedCourses()
}

func newTestDashboardService(store DashboardStore) *DashboardService {
	svc := NewDashboardService(store, log.New(io.Discard, "", 0))
	svc.Retry = RetryPolicy{MaxAttempts: 2, Delay: time.Millisecond}
	return svc
}

func publishedCourse(id uint, slug string, lessons int) models.Course {
	c := models.Course{
		Slug:         slug,
		Title:        slug,
		Status:       models.CourseStatusPublished,
		LessonsCount: lessons,
	}
	c.ID = id
	return c
}

func TestGetStatsAggregatesProgressRows(t *testing.T) {
	store := &fakeDashboardStore{
		profileXP: func() (int, error) { return 250, nil },
		progressRows: func() ([]models.UserCourseProgress, error) {
			return []models.UserCourseProgress{
				{CourseID: 1, CompletedLessonsCount: 3, Course: publishedCourse(1, "go-basics", 10)},
				{CourseID: 2, CompletedLessonsCount: 5, Course: publishedCourse(2, "sql-intro", 5)},
				{CourseID: 3, CompletedLessonsCount: 0, Course: publishedCourse(3, "untouched", 8)},
			}, nil
		},
	}

	stats := newTestDashboardService(store).GetStats(context.Background(), 7)

	assert.Equal(t, 250, stats.TotalXP)
	assert.Equal(t, 8, stats.LessonsCompletedCount)
	assert.Equal(t, 23, stats.TotalLessonsInSubscribedCourses)
	assert.Equal(t, 1, stats.CoursesInProgressCount)
	assert.Equal(t, 1, stats.CoursesCompletedCount)
	assert.Equal(t, 0, stats.CurrentStreak)
}

func TestGetStatsSkipsCoursesWithoutLessons(t *testing.T) {
	store := &fakeDashboardStore{
		progressRows: func() ([]models.UserCourseProgress, error) {
			return []models.UserCourseProgress{
				{CourseID: 1, CompletedLessonsCount: 2, Course: publishedCourse(1, "empty-shell", 0)},
			}, nil
		},
	}

	stats := newTestDashboardService(store).GetStats(context.Background(), 7)

	assert.Equal(t, 0, stats.CoursesInProgressCount)
	assert.Equal(t, 0, stats.CoursesCompletedCount)
}

func TestGetStatsMissingProfileRendersAsZeros(t *testing.T) {
	store := &fakeDashboardStore{
		profileXP: func() (int, error) { return 0, gorm.ErrRecordNotFound },
	}

	stats := newTestDashboardService(store).GetStats(context.Background(), 42)

	assert.Equal(t, models.DashboardStats{}, stats)
}

func TestGetStatsProgressFailureKeepsProfileXP(t *testing.T) {
	store := &fakeDashboardStore{
		profileXP:    func() (int, error) { return 420, nil },
		progressRows: func() ([]models.UserCourseProgress, error) { return nil, errors.New("db down") },
	}

	stats := newTestDashboardService(store).GetStats(context.Background(), 7)

	assert.Equal(t, 420, stats.TotalXP)
	assert.Equal(t, 0, stats.CoursesInProgressCount)
	assert.Equal(t, 0, stats.LessonsCompletedCount)
}

func TestGetCoursesInProgressFiltersAndCaps(t *testing.T) {
	unpublished := publishedCourse(99, "draft-course", 10)
	unpublished.Status = models.CourseStatusDraft

	rows := []models.UserCourseProgress{
		{CourseID: 99, CompletedLessonsCount: 2, Course: unpublished},
		{CourseID: 50, CompletedLessonsCount: 5, Course: publishedCourse(50, "finished", 5)},
		{CourseID: 51, CompletedLessonsCount: 0, Course: publishedCourse(51, "not-started", 5)},
	}
	for i := 0; i < CoursesInProgressLimit+3; i++ {
		id := uint(100 + i)
		rows = append(rows, models.UserCourseProgress{
			CourseID:              id,
			CompletedLessonsCount: 1,
			Course:                publishedCourse(id, "active", 10),
		})
	}

	store := &fakeDashboardStore{
		progressRows: func() ([]models.UserCourseProgress, error) { return rows, nil },
	}

	inProgress := newTestDashboardService(store).GetCoursesInProgress(context.Background(), 7)

	require.Len(t, inProgress, CoursesInProgressLimit)
	for _, entry := range inProgress {
		assert.Equal(t, models.CourseStatusPublished, entry.Course.Status)
		assert.Equal(t, 10, entry.Progress)
	}
}

func TestGetFavoriteCoursesDegradesToEmptyOnFailure(t *testing.T) {
	store := &fakeDashboardStore{
		favoriteCourses: func() ([]models.Course, error) { return nil, errors.New("timeout") },
	}

	favorites := newTestDashboardService(store).GetFavoriteCourses(context.Background(), 7)

	require.NotNil(t, favorites)
	assert.Empty(t, favorites)
}

func TestGetRecentActivityMapsLogEntries(t *testing.T) {
	entry := models.ActivityLog{
		UserID:     7,
		ActionType: models.ActivityLessonCompleted,
		Title:      "Completed: Pointers",
		XP:         10,
	}
	entry.ID = 3
	entry.CreatedAt = time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)

	store := &fakeDashboardStore{
		recentActivity: func() ([]models.ActivityLog, error) { return []models.ActivityLog{entry}, nil },
	}

	activity := newTestDashboardService(store).GetRecentActivity(context.Background(), 7)

	require.Len(t, activity, 1)
	assert.Equal(t, uint(3), activity[0].ID)
	assert.Equal(t, models.ActivityLessonCompleted, activity[0].Type)
	assert.Equal(t, "Completed: Pointers", activity[0].Title)
	assert.Equal(t, 10, activity[0].XP)
	assert.Equal(t, entry.CreatedAt, activity[0].Timestamp)
}

func TestGetRecommendedCoursesExcludesEnrolled(t *testing.T) {
	store := &fakeDashboardStore{
		publishedCourses: func() ([]models.Course, error) {
			return []models.Course{
				publishedCourse(1, "taken", 5),
				publishedCourse(2, "fresh", 5),
				publishedCourse(3, "also-fresh", 5),
			}, nil
		},
		progressRows: func() ([]models.UserCourseProgress, error) {
			return []models.UserCourseProgress{{CourseID: 1, CompletedLessonsCount: 2}}, nil
		},
	}

	recommended := newTestDashboardService(store).GetRecommendedCourses(context.Background(), 7)

	require.Len(t, recommended, 2)
	assert.Equal(t, "fresh", recommended[0].Slug)
	assert.Equal(t, "also-fresh", recommended[1].Slug)
}

func TestGetRecommendedCoursesRetriesProgressFetch(t *testing.T) {
	calls := 0
	store := &fakeDashboardStore{
		publishedCourses: func() ([]models.Course, error) {
			return []models.Course{
				publishedCourse(1, "taken", 5),
				publishedCourse(2, "fresh", 5),
			}, nil
		},
		progressRows: func() ([]models.UserCourseProgress, error) {
			calls++
			if calls == 1 {
				return nil, errors.New("connection reset")
			}
			return []models.UserCourseProgress{{CourseID: 1, CompletedLessonsCount: 2}}, nil
		},
	}

	recommended := newTestDashboardService(store).GetRecommendedCourses(context.Background(), 7)

	// the transient failure was retried, so the enrolled course is filtered out
	assert.Equal(t, 2, calls)
	require.Len(t, recommended, 1)
	assert.Equal(t, "fresh", recommended[0].Slug)
}

func TestGetDashboardDataToleratesSingleSectionFailure(t *testing.T) {
	store := &fakeDashboardStore{
		profileXP:       func() (int, error) { return 300, nil },
		favoriteCourses: func() ([]models.Course, error) { return nil, errors.New("favorites shard down") },
		recentActivity: func() ([]models.ActivityLog, error) {
			return []models.ActivityLog{{UserID: 7, ActionType: models.ActivityCourseStarted, Title: "Started: Go"}}, nil
		},
	}

	data := newTestDashboardService(store).GetDashboardData(context.Background(), 7)

	// The broken section is empty, everything else is intact.
	assert.Equal(t, 300, data.Stats.TotalXP)
	require.NotNil(t, data.FavoriteCourses)
	assert.Empty(t, data.FavoriteCourses)
	assert.Len(t, data.RecentActivity, 1)
	require.NotNil(t, data.CoursesInProgress)
	assert.Empty(t, data.CoursesInProgress)
}

func TestGetDashboardDataAllSectionsPopulated(t *testing.T) {
	store := &fakeDashboardStore{
		profileXP: func() (int, error) { return 120, nil },
		progressRows: func() ([]models.UserCourseProgress, error) {
			return []models.UserCourseProgress{
				{CourseID: 1, CompletedLessonsCount: 4, Course: publishedCourse(1, "go-basics", 10)},
			}, nil
		},
		favoriteCourses: func() ([]models.Course, error) {
			return []models.Course{publishedCourse(2, "sql-intro", 5)}, nil
		},
		recentActivity: func() ([]models.ActivityLog, error) {
			return []models.ActivityLog{{UserID: 7, ActionType: models.ActivityLessonCompleted, Title: "Completed: Slices", XP: 10}}, nil
		},
	}

	data := newTestDashboardService(store).GetDashboardData(context.Background(), 7)

	assert.Equal(t, 120, data.Stats.TotalXP)
	require.Len(t, data.CoursesInProgress, 1)
	assert.Equal(t, 40, data.CoursesInProgress[0].Progress)
	assert.Len(t, data.FavoriteCourses, 1)
	assert.Len(t, data.RecentActivity, 1)
}
