package models

import "time"

// Map types stored in the response_maps type discriminator column. The
// original store keeps all mapping variants in a single table; the type
// decides how reviewed_object_id and reviewee_id are interpreted.
const (
	MapTypeReview     = "ReviewResponseMap"
	MapTypeMetareview = "MetareviewResponseMap"
	MapTypeQuiz       = "QuizResponseMap"
	MapTypeSelfReview = "SelfReviewResponseMap"
)

// ResponseMap is a committed assignment of a reviewer to a reviewee.
//
//   - review maps: reviewed_object_id = assignment, reviewee_id = team
//   - metareview maps: reviewed_object_id = the review map under
//     metareview, reviewee_id = that map's reviewer participant
//   - quiz maps: reviewed_object_id = questionnaire, reviewee_id = the
//     questionnaire's instructor
//   - self-review maps: reviewed_object_id = assignment, reviewee_id =
//     the reviewer's own team
type ResponseMap struct {
	MapID            int        `gorm:"primaryKey;column:map_id" json:"map_id"`
	ReviewedObjectID int        `gorm:"column:reviewed_object_id" json:"reviewed_object_id"`
	ReviewerID       int        `gorm:"column:reviewer_id" json:"reviewer_id"`
	RevieweeID       int        `gorm:"column:reviewee_id" json:"reviewee_id"`
	Type             string     `gorm:"column:type" json:"type"`
	CalibrateTo      bool       `gorm:"column:calibrate_to" json:"calibrate_to"`
	CreateAt         *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt         *time.Time `gorm:"column:update_at" json:"update_at"`
}

func (ResponseMap) TableName() string {
	return "response_maps"
}

func (m *ResponseMap) IsCalibration() bool {
	return m.Type == MapTypeReview && m.CalibrateTo
}
