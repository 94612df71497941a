package models

import "time"

// Response is a submitted or draft review instance tied to a mapping.
// A submitted response blocks deletion of its owning map.
type Response struct {
	ResponseID  int        `gorm:"primaryKey;column:response_id" json:"response_id"`
	MapID       int        `gorm:"column:map_id" json:"map_id"`
	IsSubmitted bool       `gorm:"column:is_submitted" json:"is_submitted"`
	CreateAt    *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt    *time.Time `gorm:"column:update_at" json:"update_at"`
}

// Answer is a single scored item under a response.
type Answer struct {
	AnswerID   int     `gorm:"primaryKey;column:answer_id" json:"answer_id"`
	ResponseID int     `gorm:"column:response_id" json:"response_id"`
	QuestionID int     `gorm:"column:question_id" json:"question_id"`
	Score      *int    `gorm:"column:score" json:"score,omitempty"`
	Comments   *string `gorm:"column:comments" json:"comments,omitempty"`
}

// AnswerTag is reader-applied metadata on an answer.
type AnswerTag struct {
	AnswerTagID int    `gorm:"primaryKey;column:answer_tag_id" json:"answer_tag_id"`
	AnswerID    int    `gorm:"column:answer_id" json:"answer_id"`
	Value       string `gorm:"column:value" json:"value"`
}

// TableName overrides
func (Response) TableName() string {
	return "responses"
}

func (Answer) TableName() string {
	return "answers"
}

func (AnswerTag) TableName() string {
	return "answer_tags"
}
