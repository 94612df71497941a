package models

import "time"

// Participant enrolls a user in an assignment. ParentID follows the
// original schema naming for the owning assignment id; at most one
// participant exists per (parent_id, user_id).
type Participant struct {
	ParticipantID int        `gorm:"primaryKey;column:participant_id" json:"participant_id"`
	ParentID      int        `gorm:"column:parent_id;uniqueIndex:idx_participant_parent_user" json:"parent_id"`
	UserID        int        `gorm:"column:user_id;uniqueIndex:idx_participant_parent_user" json:"user_id"`
	CanSubmit     bool       `gorm:"column:can_submit" json:"can_submit"`
	CanReview     bool       `gorm:"column:can_review" json:"can_review"`
	CanTakeQuiz   bool       `gorm:"column:can_take_quiz" json:"can_take_quiz"`
	Handle        string     `gorm:"column:handle" json:"handle"`
	CreateAt      *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt      *time.Time `gorm:"column:update_at" json:"update_at"`

	// Relations
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Participant) TableName() string {
	return "participants"
}

// Name returns the participant's display name when the user relation is
// loaded, falling back to the handle.
func (p *Participant) Name() string {
	if p.User != nil && p.User.Name != "" {
		return p.User.Name
	}
	return p.Handle
}
