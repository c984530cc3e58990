package services

import "math"

// CourseStatus classifies a user's standing in a single course.
type CourseStatus string

const (
	StatusNotStarted CourseStatus = "not_started"
	StatusInProgress CourseStatus = "in_progress"
	StatusCompleted  CourseStatus = "completed"
)

// ClassifyProgress buckets a (completed, total) lesson pair. A course with
// no lessons can never be in progress or completed. completed > total should
// not happen, but is treated as completed rather than rejected.
func ClassifyProgress(completedLessons, totalLessons int) CourseStatus {
	if totalLessons == 0 || completedLessons == 0 {
		return StatusNotStarted
	}
	if completedLessons >= totalLessons {
		return StatusCompleted
	}
	return StatusInProgress
}

// ProgressPercent returns the completion percentage, clamped to [0, 100].
func ProgressPercent(completedLessons, totalLessons int) int {
	if totalLessons == 0 {
		return 0
	}
	if completedLessons >= totalLessons {
		return 100
	}
	return int(math.Round(float64(completedLessons) / float64(totalLessons) * 100))
}
