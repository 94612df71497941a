package models

import "time"

// ReviewGrade records an instructor's evaluation of a reviewer's
// performance, keyed by participant and upserted on save.
type ReviewGrade struct {
	ReviewGradeID      int        `gorm:"primaryKey;column:review_grade_id" json:"review_grade_id"`
	ParticipantID      int        `gorm:"column:participant_id;unique" json:"participant_id"`
	GradeForReviewer   *int       `gorm:"column:grade_for_reviewer" json:"grade_for_reviewer,omitempty"`
	CommentForReviewer *string    `gorm:"column:comment_for_reviewer" json:"comment_for_reviewer,omitempty"`
	ReviewGradedAt     *time.Time `gorm:"column:review_graded_at" json:"review_graded_at,omitempty"`
	ReviewerID         int        `gorm:"column:reviewer_id" json:"reviewer_id"`
}

func (ReviewGrade) TableName() string {
	return "review_grades"
}
