package services

import (
	"peer-review-api/models"
)

// Store is the entity adapter the engine consumes. Implementations back
// it with a durable store (see store.GormStore); tests use an in-memory
// fake. Lookup methods return (nil, nil) when the entity is absent so
// find-or-create callers can branch without error sniffing.
type Store interface {
	AssignmentStore
	ParticipantStore
	TeamStore
	TopicStore
	QuestionnaireStore
	MappingStore
	ResponseStore
	GradeStore
}

type AssignmentStore interface {
	FindAssignment(id int) (*models.Assignment, error)
}

type ParticipantStore interface {
	FindParticipant(id int) (*models.Participant, error)
	FindParticipantByUser(assignmentID, userID int) (*models.Participant, error)
	ParticipantsByAssignment(assignmentID int) ([]models.Participant, error)
	CreateParticipant(p *models.Participant) error
	FindUserByName(name string) (*models.User, error)
	FindUser(id int) (*models.User, error)
}

type TeamStore interface {
	FindTeam(id int) (*models.Team, error)
	TeamsByAssignment(assignmentID int) ([]models.Team, error)
	TeamForUser(assignmentID, userID int) (*models.Team, error)
	TeamMemberUserIDs(teamID int) ([]int, error)
	CreateTeam(t *models.Team) error
	AddTeamMember(teamID, userID int) error
}

type TopicStore interface {
	FindTopic(topicID int) (*models.SignUpTopic, error)
	// TeamForTopic resolves the team signed up for a topic, waitlist
	// entries excluded.
	TeamForTopic(topicID int) (*models.Team, error)
}

type QuestionnaireStore interface {
	FindQuestionnaire(id int) (*models.Questionnaire, error)
}

type MappingStore interface {
	FindMap(mapID int) (*models.ResponseMap, error)
	// FindMapByKey locates a map by its composite key. calibrateTo is
	// only meaningful for review maps.
	FindMapByKey(mapType string, reviewedObjectID, reviewerID, revieweeID int, calibrateTo bool) (*models.ResponseMap, error)
	// ReviewMapsByReviewer returns the review maps where the participant
	// reviews for the assignment, calibration maps included.
	ReviewMapsByReviewer(assignmentID, reviewerID int) ([]models.ResponseMap, error)
	ReviewMapsByAssignment(assignmentID int) ([]models.ResponseMap, error)
	ReviewMapsByTeam(teamID int) ([]models.ResponseMap, error)
	CalibrationMapsByAssignment(assignmentID int) ([]models.ResponseMap, error)
	MetareviewMapsFor(reviewMapID int) ([]models.ResponseMap, error)
	QuizMapExists(reviewerID, questionnaireID int) (bool, error)
	CreateMap(m *models.ResponseMap) error
	DeleteMap(mapID int) error
}

type ResponseStore interface {
	ResponsesByMap(mapID int) ([]models.Response, error)
	SubmittedResponseExists(mapID int) (bool, error)
	SetResponsesSubmitted(mapID int, submitted bool) error
	AnswerIDsByResponses(responseIDs []int) ([]int, error)
	DeleteAnswerTagsByAnswers(answerIDs []int) error
	DeleteAnswers(answerIDs []int) error
	DeleteResponses(responseIDs []int) error
}

type GradeStore interface {
	FindOrCreateReviewGrade(participantID int) (*models.ReviewGrade, error)
	SaveReviewGrade(g *models.ReviewGrade) error
}
