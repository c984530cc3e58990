package models

import "time"

// Derived view models for the dashboard. Nothing here is persisted; every
// request recomputes them from the tables above.

// DashboardStats is the aggregated headline statistics block.
type DashboardStats struct {
	TotalXP                         int `json:"total_xp"`
	CoursesInProgressCount          int `json:"courses_in_progress_count"`
	CoursesCompletedCount           int `json:"courses_completed_count"`
	LessonsCompletedCount           int `json:"lessons_completed_count"`
	TotalLessonsInSubscribedCourses int `json:"total_lessons_in_subscribed_courses"`

	// CurrentStreak is not implemented yet: there is no activity-day
	// tracking to derive it from, so it is always 0.
	CurrentStreak int `json:"current_streak"`
}

// CourseInProgress is a course the user has started but not finished.
type CourseInProgress struct {
	Course           Course    `json:"course"`
	Progress         int       `json:"progress"` // percent, 0-100
	CompletedLessons int       `json:"completed_lessons"`
	LastAccessedAt   time.Time `json:"last_accessed_at"`
}

// AchievementWithStatus joins an achievement definition with the user's
// earned record, if any.
type AchievementWithStatus struct {
	ID          uint       `json:"id"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	IconURL     string     `json:"icon_url"`
	XPReward    int        `json:"xp_reward"`
	Unlocked    bool       `json:"unlocked"`
	UnlockedAt  *time.Time `json:"unlocked_at"`
	Rarity      string     `json:"rarity"` // common, rare, epic, legendary
}

type RecentActivity struct {
	ID        uint      `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	XP        int       `json:"xp"`
	Timestamp time.Time `json:"timestamp"`
}

// DashboardData is the full payload for the dashboard page, assembled from
// four independent fetches.
type DashboardData struct {
	Stats             DashboardStats     `json:"stats"`
	CoursesInProgress []CourseInProgress `json:"courses_in_progress"`
	FavoriteCourses   []Course           `json:"favorite_courses"`
	RecentActivity    []RecentActivity   `json:"recent_activity"`
}
