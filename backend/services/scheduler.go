package services

import (
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

// AggregateRefresher keeps the denormalized course columns honest:
// lessons_count from published lessons, reviews_count and avg_rating from
// course reviews. Writes elsewhere never touch these columns directly.
type AggregateRefresher struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewAggregateRefresher(db *gorm.DB, logger *log.Logger) *AggregateRefresher {
	return &AggregateRefresher{DB: db, Logger: logger}
}

// Start schedules the periodic refresh. The first run happens immediately
// so freshly migrated databases do not wait a full interval.
func (r *AggregateRefresher) Start(interval time.Duration) error {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return err
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(r.Refresh),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return err
	}

	sched.Start()
	return nil
}

// Refresh recomputes every course's aggregates in bulk.
func (r *AggregateRefresher) Refresh() {
	if err := r.DB.Exec(`
		UPDATE courses SET lessons_count = (
			SELECT COUNT(*) FROM lessons
			WHERE lessons.course_id = courses.id
			  AND lessons.published = true
			  AND lessons.deleted_at IS NULL
		)`).Error; err != nil {
		r.Logger.Printf("scheduler: lessons_count refresh failed: %v", err)
	}

	if err := r.DB.Exec(`
		UPDATE courses SET
			reviews_count = (
				SELECT COUNT(*) FROM course_reviews
				WHERE course_reviews.course_id = courses.id
				  AND course_reviews.deleted_at IS NULL
			),
			avg_rating = (
				SELECT COALESCE(AVG(rating), 0) FROM course_reviews
				WHERE course_reviews.course_id = courses.id
				  AND course_reviews.deleted_at IS NULL
			)`).Error; err != nil {
		r.Logger.Printf("scheduler: rating refresh failed: %v", err)
	}
}
