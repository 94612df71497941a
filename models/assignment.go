package models

import "time"

// Assignment represents a reviewing exercise. Quota and staggered-mode
// policies live on the assignment row itself.
type Assignment struct {
	AssignmentID            int        `gorm:"primaryKey;column:assignment_id" json:"assignment_id"`
	Name                    string     `gorm:"column:name" json:"name"`
	InstructorID            int        `gorm:"column:instructor_id" json:"instructor_id"`
	HasTopics               bool       `gorm:"column:has_topics" json:"has_topics"`
	CanChooseTopicToReview  bool       `gorm:"column:can_choose_topic_to_review" json:"can_choose_topic_to_review"`
	NumReviewsAllowed       int        `gorm:"column:num_reviews_allowed" json:"num_reviews_allowed"`
	NumReviewsPerSubmission int        `gorm:"column:num_reviews_per_submission" json:"num_reviews_per_submission"`
	MaxOutstandingReviews   int        `gorm:"column:max_outstanding_reviews" json:"max_outstanding_reviews"`
	MaxTeamSize             int        `gorm:"column:max_team_size" json:"max_team_size"`
	NumReviews              int        `gorm:"column:num_reviews" json:"num_reviews"`
	NumMetareviews          int        `gorm:"column:num_metareviews" json:"num_metareviews"`
	AutoAssignMentor        bool       `gorm:"column:auto_assign_mentor" json:"auto_assign_mentor"`
	IsCalibrated            bool       `gorm:"column:is_calibrated" json:"is_calibrated"`
	CreateAt                *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt                *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt                *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	// Relations
	Instructor *User `gorm:"foreignKey:InstructorID" json:"instructor,omitempty"`
}

func (Assignment) TableName() string {
	return "assignments"
}

// IsIndividual reports whether the assignment is done by single-person
// teams, which changes how the bulk mapper counts reviewees.
func (a *Assignment) IsIndividual() bool {
	return a.MaxTeamSize == 1
}
