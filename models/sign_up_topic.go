package models

// SignUpTopic is a reviewable topic offered by a topic-based assignment.
type SignUpTopic struct {
	TopicID      int    `gorm:"primaryKey;column:topic_id" json:"topic_id"`
	AssignmentID int    `gorm:"column:assignment_id" json:"assignment_id"`
	Name         string `gorm:"column:name" json:"name"`
}

// SignedUpTeam records a team's signup for a topic. Reviewer topic
// selection resolves through this relation.
type SignedUpTeam struct {
	SignedUpTeamID int  `gorm:"primaryKey;column:signed_up_team_id" json:"signed_up_team_id"`
	TopicID        int  `gorm:"column:topic_id" json:"topic_id"`
	TeamID         int  `gorm:"column:team_id" json:"team_id"`
	IsWaitlisted   bool `gorm:"column:is_waitlisted" json:"is_waitlisted"`
}

// TableName overrides
func (SignUpTopic) TableName() string {
	return "sign_up_topics"
}

func (SignedUpTeam) TableName() string {
	return "signed_up_teams"
}
