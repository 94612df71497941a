package models

import "time"

// Team is the reviewee side of most mappings. ParentID is the owning
// assignment id.
type Team struct {
	TeamID   int        `gorm:"primaryKey;column:team_id" json:"team_id"`
	ParentID int        `gorm:"column:parent_id" json:"parent_id"`
	Name     string     `gorm:"column:name" json:"name"`
	CreateAt *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt *time.Time `gorm:"column:update_at" json:"update_at"`

	// Relations
	Members []TeamsUser `gorm:"foreignKey:TeamID" json:"members,omitempty"`
}

// TeamsUser links a user to a team.
type TeamsUser struct {
	TeamsUserID int `gorm:"primaryKey;column:teams_user_id" json:"teams_user_id"`
	TeamID      int `gorm:"column:team_id;uniqueIndex:idx_teams_user" json:"team_id"`
	UserID      int `gorm:"column:user_id;uniqueIndex:idx_teams_user" json:"user_id"`
}

// TableName overrides
func (Team) TableName() string {
	return "teams"
}

func (TeamsUser) TableName() string {
	return "teams_users"
}
