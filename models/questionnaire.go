package models

import "time"

// Questionnaire is the quiz instrument a participant can take. Quiz maps
// bind the taker to the questionnaire's owning instructor.
type Questionnaire struct {
	QuestionnaireID int        `gorm:"primaryKey;column:questionnaire_id" json:"questionnaire_id"`
	Name            string     `gorm:"column:name" json:"name"`
	InstructorID    int        `gorm:"column:instructor_id" json:"instructor_id"`
	CreateAt        *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt        *time.Time `gorm:"column:update_at" json:"update_at"`
}

func (Questionnaire) TableName() string {
	return "questionnaires"
}
