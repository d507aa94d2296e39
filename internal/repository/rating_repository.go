package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/UltraCapJjang-2-11/Timetable-Generator-sub000/internal/models"
)

// RatingRepository aggregates lecture-review ratings per (course, instructor).
type RatingRepository struct {
	db *sqlx.DB
}

// NewRatingRepository constructs the repository.
func NewRatingRepository(db *sqlx.DB) *RatingRepository {
	return &RatingRepository{db: db}
}

type ratingRow struct {
	CourseName string  `db:"course_name"`
	Instructor string  `db:"instructor"`
	AvgRating  float64 `db:"avg_rating"`
}

// Snapshot returns the full average-rating table as an immutable lookup map.
// The generation service takes one snapshot per request.
func (r *RatingRepository) Snapshot(ctx context.Context) (map[models.RatingKey]float64, error) {
	const query = `SELECT course_name, instructor, AVG(rating) AS avg_rating
		FROM lecture_reviews GROUP BY course_name, instructor`
	var rows []ratingRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("load rating snapshot: %w", err)
	}
	ratings := make(map[models.RatingKey]float64, len(rows))
	for _, row := range rows {
		ratings[models.RatingKey{Course: row.CourseName, Instructor: row.Instructor}] = row.AvgRating
	}
	return ratings, nil
}
