package store

import (
	"errors"

	"gorm.io/gorm"

	"peer-review-api/models"
)

// GormStore implements the engine's Store contract on top of gorm.
// Lookup methods translate gorm.ErrRecordNotFound into (nil, nil) so the
// engine can run its lookup-then-create flows without error sniffing.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func first[T any](db *gorm.DB, dest *T, query string, args ...interface{}) (*T, error) {
	err := db.Where(query, args...).First(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return dest, nil
}

// Assignments

func (s *GormStore) FindAssignment(id int) (*models.Assignment, error) {
	return first(s.db, &models.Assignment{}, "assignment_id = ?", id)
}

// Participants and users

func (s *GormStore) FindParticipant(id int) (*models.Participant, error) {
	return first(s.db.Preload("User"), &models.Participant{}, "participant_id = ?", id)
}

func (s *GormStore) FindParticipantByUser(assignmentID, userID int) (*models.Participant, error) {
	return first(s.db.Preload("User"), &models.Participant{}, "parent_id = ? AND user_id = ?", assignmentID, userID)
}

func (s *GormStore) ParticipantsByAssignment(assignmentID int) ([]models.Participant, error) {
	var participants []models.Participant
	err := s.db.Where("parent_id = ?", assignmentID).Find(&participants).Error
	return participants, err
}

func (s *GormStore) CreateParticipant(p *models.Participant) error {
	return s.db.Create(p).Error
}

func (s *GormStore) FindUserByName(name string) (*models.User, error) {
	return first(s.db, &models.User{}, "name = ? AND delete_at IS NULL", name)
}

func (s *GormStore) FindUser(id int) (*models.User, error) {
	return first(s.db, &models.User{}, "user_id = ?", id)
}

// Teams

func (s *GormStore) FindTeam(id int) (*models.Team, error) {
	return first(s.db.Preload("Members"), &models.Team{}, "team_id = ?", id)
}

func (s *GormStore) TeamsByAssignment(assignmentID int) ([]models.Team, error) {
	var teams []models.Team
	err := s.db.Preload("Members").Where("parent_id = ?", assignmentID).Find(&teams).Error
	return teams, err
}

func (s *GormStore) TeamForUser(assignmentID, userID int) (*models.Team, error) {
	var team models.Team
	err := s.db.
		Joins("JOIN teams_users ON teams_users.team_id = teams.team_id").
		Where("teams.parent_id = ? AND teams_users.user_id = ?", assignmentID, userID).
		First(&team).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &team, nil
}

func (s *GormStore) TeamMemberUserIDs(teamID int) ([]int, error) {
	var ids []int
	err := s.db.Model(&models.TeamsUser{}).Where("team_id = ?", teamID).Pluck("user_id", &ids).Error
	return ids, err
}

func (s *GormStore) CreateTeam(t *models.Team) error {
	return s.db.Create(t).Error
}

func (s *GormStore) AddTeamMember(teamID, userID int) error {
	return s.db.Create(&models.TeamsUser{TeamID: teamID, UserID: userID}).Error
}

// Topics

func (s *GormStore) FindTopic(topicID int) (*models.SignUpTopic, error) {
	return first(s.db, &models.SignUpTopic{}, "topic_id = ?", topicID)
}

func (s *GormStore) TeamForTopic(topicID int) (*models.Team, error) {
	var signup models.SignedUpTeam
	err := s.db.Where("topic_id = ? AND is_waitlisted = ?", topicID, false).First(&signup).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s.FindTeam(signup.TeamID)
}

// Questionnaires

func (s *GormStore) FindQuestionnaire(id int) (*models.Questionnaire, error) {
	return first(s.db, &models.Questionnaire{}, "questionnaire_id = ?", id)
}

// Mappings

func (s *GormStore) FindMap(mapID int) (*models.ResponseMap, error) {
	return first(s.db, &models.ResponseMap{}, "map_id = ?", mapID)
}

func (s *GormStore) FindMapByKey(mapType string, reviewedObjectID, reviewerID, revieweeID int, calibrateTo bool) (*models.ResponseMap, error) {
	return first(s.db, &models.ResponseMap{},
		"type = ? AND reviewed_object_id = ? AND reviewer_id = ? AND reviewee_id = ? AND calibrate_to = ?",
		mapType, reviewedObjectID, reviewerID, revieweeID, calibrateTo)
}

func (s *GormStore) ReviewMapsByReviewer(assignmentID, reviewerID int) ([]models.ResponseMap, error) {
	var maps []models.ResponseMap
	err := s.db.
		Where("type = ? AND reviewed_object_id = ? AND reviewer_id = ?", models.MapTypeReview, assignmentID, reviewerID).
		Find(&maps).Error
	return maps, err
}

func (s *GormStore) ReviewMapsByAssignment(assignmentID int) ([]models.ResponseMap, error) {
	var maps []models.ResponseMap
	err := s.db.
		Where("type = ? AND reviewed_object_id = ?", models.MapTypeReview, assignmentID).
		Find(&maps).Error
	return maps, err
}

func (s *GormStore) ReviewMapsByTeam(teamID int) ([]models.ResponseMap, error) {
	var maps []models.ResponseMap
	err := s.db.
		Where("type = ? AND reviewee_id = ?", models.MapTypeReview, teamID).
		Find(&maps).Error
	return maps, err
}

func (s *GormStore) CalibrationMapsByAssignment(assignmentID int) ([]models.ResponseMap, error) {
	var maps []models.ResponseMap
	err := s.db.
		Where("type = ? AND reviewed_object_id = ? AND calibrate_to = ?", models.MapTypeReview, assignmentID, true).
		Find(&maps).Error
	return maps, err
}

func (s *GormStore) MetareviewMapsFor(reviewMapID int) ([]models.ResponseMap, error) {
	var maps []models.ResponseMap
	err := s.db.
		Where("type = ? AND reviewed_object_id = ?", models.MapTypeMetareview, reviewMapID).
		Find(&maps).Error
	return maps, err
}

func (s *GormStore) QuizMapExists(reviewerID, questionnaireID int) (bool, error) {
	var count int64
	err := s.db.Model(&models.ResponseMap{}).
		Where("type = ? AND reviewer_id = ? AND reviewed_object_id = ?", models.MapTypeQuiz, reviewerID, questionnaireID).
		Count(&count).Error
	return count > 0, err
}

func (s *GormStore) CreateMap(m *models.ResponseMap) error {
	return s.db.Create(m).Error
}

func (s *GormStore) DeleteMap(mapID int) error {
	return s.db.Delete(&models.ResponseMap{}, "map_id = ?", mapID).Error
}

// Responses and answers

func (s *GormStore) ResponsesByMap(mapID int) ([]models.Response, error) {
	var responses []models.Response
	err := s.db.Where("map_id = ?", mapID).Find(&responses).Error
	return responses, err
}

func (s *GormStore) SubmittedResponseExists(mapID int) (bool, error) {
	var count int64
	err := s.db.Model(&models.Response{}).
		Where("map_id = ? AND is_submitted = ?", mapID, true).
		Count(&count).Error
	return count > 0, err
}

func (s *GormStore) SetResponsesSubmitted(mapID int, submitted bool) error {
	return s.db.Model(&models.Response{}).
		Where("map_id = ?", mapID).
		Update("is_submitted", submitted).Error
}

func (s *GormStore) AnswerIDsByResponses(responseIDs []int) ([]int, error) {
	var ids []int
	err := s.db.Model(&models.Answer{}).Where("response_id IN ?", responseIDs).Pluck("answer_id", &ids).Error
	return ids, err
}

func (s *GormStore) DeleteAnswerTagsByAnswers(answerIDs []int) error {
	return s.db.Delete(&models.AnswerTag{}, "answer_id IN ?", answerIDs).Error
}

func (s *GormStore) DeleteAnswers(answerIDs []int) error {
	return s.db.Delete(&models.Answer{}, "answer_id IN ?", answerIDs).Error
}

func (s *GormStore) DeleteResponses(responseIDs []int) error {
	return s.db.Delete(&models.Response{}, "response_id IN ?", responseIDs).Error
}

// Review grades

func (s *GormStore) FindOrCreateReviewGrade(participantID int) (*models.ReviewGrade, error) {
	existing, err := first(s.db, &models.ReviewGrade{}, "participant_id = ?", participantID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	grade := &models.ReviewGrade{ParticipantID: participantID}
	if err := s.db.Create(grade).Error; err != nil {
		return nil, err
	}
	return grade, nil
}

func (s *GormStore) SaveReviewGrade(g *models.ReviewGrade) error {
	return s.db.Save(g).Error
}
