package services

import (
	"context"
	"errors"
	"log"
	"sync"

	"edulabs/backend/models"

	"gorm.io/gorm"
)

// Display caps for the dashboard lists.
const (
	CoursesInProgressLimit = 6
	FavoriteCoursesLimit   = 12
	RecentActivityLimit    = 10
	RecommendedLimit       = 6
)

// DashboardStore is the data access needed by the aggregator. Keeping it an
// interface lets tests swap in failing or canned collaborators.
type DashboardStore interface {
	GetProfileXP(ctx context.Context, userID uint) (int, error)
	GetProgressRows(ctx context.Context, userID uint) ([]models.UserCourseProgress, error)
	GetFavoriteCourses(ctx context.Context, userID uint, limit int) ([]models.Course, error)
	GetRecentActivity(ctx context.Context, userID uint, limit int) ([]models.ActivityLog, error)
	GetPublishedCourses(ctx context.Context) ([]models.Course, error)
}

type gormDashboardStore struct {
	db *gorm.DB
}

// NewDashboardStore wraps a gorm handle in the DashboardStore interface.
func NewDashboardStore(db *gorm.DB) DashboardStore {
	return &gormDashboardStore{db: db}
}

func (s *gormDashboardStore) GetProfileXP(ctx context.Context, userID uint) (int, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Select("total_xp").First(&user, userID).Error; err != nil {
		return 0, err
	}
	return user.TotalXP, nil
}

func (s *gormDashboardStore) GetProgressRows(ctx context.Context, userID uint) ([]models.UserCourseProgress, error) {
	var rows []models.UserCourseProgress
	err := s.db.WithContext(ctx).Preload("Course").
		Where("user_id = ?", userID).
		Order("last_accessed DESC").
		Find(&rows).Error
	return rows, err
}

func (s *gormDashboardStore) GetFavoriteCourses(ctx context.Context, userID uint, limit int) ([]models.Course, error) {
	var favorites []models.FavoriteCourse
	err := s.db.WithContext(ctx).Preload("Course").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&favorites).Error
	if err != nil {
		return nil, err
	}

	courses := make([]models.Course, 0, len(favorites))
	for _, fav := range favorites {
		if fav.Course.Status != models.CourseStatusPublished {
			continue
		}
		courses = append(courses, fav.Course)
	}
	return courses, nil
}

func (s *gormDashboardStore) GetRecentActivity(ctx context.Context, userID uint, limit int) ([]models.ActivityLog, error) {
	var entries []models.ActivityLog
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

func (s *gormDashboardStore) GetPublishedCourses(ctx context.Context) ([]models.Course, error) {
	var courses []models.Course
	err := s.db.WithContext(ctx).
		Where("status = ?", models.CourseStatusPublished).
		Order("avg_rating DESC").
		Find(&courses).Error
	return courses, err
}

// DashboardService assembles the dashboard view models. All reads, no
// writes, recomputed per request. A failing fetch degrades its own section
// to zeroed/empty values; it never takes the rest of the dashboard down.
type DashboardService struct {
	Store  DashboardStore
	Logger *log.Logger
	Retry  RetryPolicy
}

func NewDashboardService(store DashboardStore, logger *log.Logger) *DashboardService {
	return &DashboardService{
		Store:  store,
		Logger: logger,
		Retry:  DefaultRetryPolicy,
	}
}

// GetStats derives the headline statistics. A missing profile means the
// provisioning trigger has not run yet; that renders as zeros, not an error.
func (s *DashboardService) GetStats(ctx context.Context, userID uint) models.DashboardStats {
	var stats models.DashboardStats

	var totalXP int
	err := s.Retry.Do(ctx, func() error {
		var fetchErr error
		totalXP, fetchErr = s.Store.GetProfileXP(ctx, userID)
		return fetchErr
	})
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.Logger.Printf("dashboard: profile fetch failed for user %d: %v", userID, err)
		}
		return stats
	}
	stats.TotalXP = totalXP

	var rows []models.UserCourseProgress
	err = s.Retry.Do(ctx, func() error {
		var fetchErr error
		rows, fetchErr = s.Store.GetProgressRows(ctx, userID)
		return fetchErr
	})
	if err != nil {
		s.Logger.Printf("dashboard: progress fetch failed for user %d: %v", userID, err)
		return stats
	}

	for _, row := range rows {
		totalLessons := row.Course.LessonsCount

		stats.LessonsCompletedCount += row.CompletedLessonsCount
		stats.TotalLessonsInSubscribedCourses += totalLessons

		// Courses with no lessons land in neither bucket.
		switch ClassifyProgress(row.CompletedLessonsCount, totalLessons) {
		case StatusCompleted:
			stats.CoursesCompletedCount++
		case StatusInProgress:
			stats.CoursesInProgressCount++
		}
	}

	// Streak tracking is not implemented; there is no per-day activity
	// aggregation to derive it from yet.
	stats.CurrentStreak = 0

	return stats
}

// GetCoursesInProgress lists started-but-unfinished published courses,
// most recently accessed first.
func (s *DashboardService) GetCoursesInProgress(ctx context.Context, userID uint) []models.CourseInProgress {
	var rows []models.UserCourseProgress
	err := s.Retry.Do(ctx, func() error {
		var fetchErr error
		rows, fetchErr = s.Store.GetProgressRows(ctx, userID)
		return fetchErr
	})
	if err != nil {
		s.Logger.Printf("dashboard: courses-in-progress fetch failed for user %d: %v", userID, err)
		return []models.CourseInProgress{}
	}

	inProgress := make([]models.CourseInProgress, 0, CoursesInProgressLimit)
	for _, row := range rows {
		if row.Course.Status != models.CourseStatusPublished {
			continue
		}
		if ClassifyProgress(row.CompletedLessonsCount, row.Course.LessonsCount) != StatusInProgress {
			continue
		}

		inProgress = append(inProgress, models.CourseInProgress{
			Course:           row.Course,
			Progress:         ProgressPercent(row.CompletedLessonsCount, row.Course.LessonsCount),
			CompletedLessons: row.CompletedLessonsCount,
			LastAccessedAt:   row.LastAccessed,
		})
		if len(inProgress) == CoursesInProgressLimit {
			break
		}
	}
	return inProgress
}

func (s *DashboardService) GetFavoriteCourses(ctx context.Context, userID uint) []models.Course {
	var courses []models.Course
	err := s.Retry.Do(ctx, func() error {
		var fetchErr error
		courses, fetchErr = s.Store.GetFavoriteCourses(ctx, userID, FavoriteCoursesLimit)
		return fetchErr
	})
	if err != nil {
		s.Logger.Printf("dashboard: favorites fetch failed for user %d: %v", userID, err)
		return []models.Course{}
	}
	if courses == nil {
		courses = []models.Course{}
	}
	return courses
}

func (s *DashboardService) GetRecentActivity(ctx context.Context, userID uint) []models.RecentActivity {
	var entries []models.ActivityLog
	err := s.Retry.Do(ctx, func() error {
		var fetchErr error
		entries, fetchErr = s.Store.GetRecentActivity(ctx, userID, RecentActivityLimit)
		return fetchErr
	})
	if err != nil {
		s.Logger.Printf("dashboard: activity fetch failed for user %d: %v", userID, err)
		return []models.RecentActivity{}
	}

	activity := make([]models.RecentActivity, 0, len(entries))
	for _, entry := range entries {
		activity = append(activity, models.RecentActivity{
			ID:        entry.ID,
			Type:      entry.ActionType,
			Title:     entry.Title,
			XP:        entry.XP,
			Timestamp: entry.CreatedAt,
		})
	}
	return activity
}

// GetRecommendedCourses returns published courses the user has not touched:
// the catalog minus every course with a progress row, capped for preview.
func (s *DashboardService) GetRecommendedCourses(ctx context.Context, userID uint) []models.Course {
	var published []models.Course
	err := s.Retry.Do(ctx, func() error {
		var fetchErr error
		published, fetchErr = s.Store.GetPublishedCourses(ctx)
		return fetchErr
	})
	if err != nil {
		s.Logger.Printf("dashboard: catalog fetch failed for user %d: %v", userID, err)
		return []models.Course{}
	}

	enrolled := make(map[uint]struct{})
	var rows []models.UserCourseProgress
	err = s.Retry.Do(ctx, func() error {
		var fetchErr error
		rows, fetchErr = s.Store.GetProgressRows(ctx, userID)
		return fetchErr
	})
	if err != nil {
		s.Logger.Printf("dashboard: progress fetch failed for user %d: %v", userID, err)
	} else {
		for _, row := range rows {
			enrolled[row.CourseID] = struct{}{}
		}
	}

	recommended := make([]models.Course, 0, RecommendedLimit)
	for _, course := range published {
		if _, ok := enrolled[course.ID]; ok {
			continue
		}
		recommended = append(recommended, course)
		if len(recommended) == RecommendedLimit {
			break
		}
	}
	return recommended
}

// GetDashboardData runs the four section fetches concurrently and combines
// them once all have settled. Sections are independent: none of them waits
// on another's result, and a failed one only blanks itself.
func (s *DashboardService) GetDashboardData(ctx context.Context, userID uint) models.DashboardData {
	var data models.DashboardData

	var wg sync.WaitGroup
	wg.Add(4)

	go func() {
		defer wg.Done()
		data.Stats = s.GetStats(ctx, userID)
	}()
	go func() {
		defer wg.Done()
		data.CoursesInProgress = s.GetCoursesInProgress(ctx, userID)
	}()
	go func() {
		defer wg.Done()
		data.FavoriteCourses = s.GetFavoriteCourses(ctx, userID)
	}()
	go func() {
		defer wg.Done()
		data.RecentActivity = s.GetRecentActivity(ctx, userID)
	}()

	wg.Wait()
	return data
}
