package services

import (
	"fmt"

	"github.com/google/uuid"

	"peer-review-api/models"
)

// AddCalibration maps an instructor to a calibration artifact team,
// creating the instructor's participant record on first use. Both steps
// are find-or-create, so repeated calls return the existing map.
func (e *Engine) AddCalibration(assignmentID, teamID, instructorUserID int) (*models.ResponseMap, error) {
	if _, err := e.requireAssignment(assignmentID); err != nil {
		return nil, err
	}
	team, err := e.store.FindTeam(teamID)
	if err != nil {
		return nil, err
	}
	if team == nil {
		return nil, notFound("Team not found.")
	}

	participant, err := e.store.FindParticipantByUser(assignmentID, instructorUserID)
	if err != nil {
		return nil, err
	}
	if participant == nil {
		participant = &models.Participant{
			ParentID:    assignmentID,
			UserID:      instructorUserID,
			CanSubmit:   true,
			CanReview:   true,
			CanTakeQuiz: true,
			Handle:      uuid.NewString(),
		}
		if err := e.store.CreateParticipant(participant); err != nil {
			return nil, delegateFailure(err.Error())
		}
	}

	m, _, err := e.findOrCreateMap(&models.ResponseMap{
		Type:             models.MapTypeReview,
		ReviewedObjectID: assignmentID,
		ReviewerID:       participant.ParticipantID,
		RevieweeID:       teamID,
		CalibrateTo:      true,
	})
	return m, err
}

// AddReviewer assigns a named user as reviewer of a team. Used by
// instructors to hand-place reviewers outside the dynamic strategies.
func (e *Engine) AddReviewer(assignmentID, teamID int, userName string) (string, error) {
	a, err := e.requireAssignment(assignmentID)
	if err != nil {
		return "", err
	}
	u, err := e.store.FindUserByName(userName)
	if err != nil {
		return "", err
	}
	if u == nil {
		return "", notFound(fmt.Sprintf("User %q was not found.", userName))
	}

	members, err := e.store.TeamMemberUserIDs(teamID)
	if err != nil {
		return "", err
	}
	for _, id := range members {
		if id == u.UserID {
			return "", selfAssignment(MsgSelfReviewForbidden)
		}
	}

	reviewer, err := e.requireParticipant(assignmentID, u.UserID)
	if err != nil {
		return "", err
	}
	team, err := e.store.FindTeam(teamID)
	if err != nil {
		return "", err
	}
	if team == nil {
		return "", notFound("Team not found.")
	}

	if err := e.eval.CanAssign(a, reviewer, team, ModeManual); err != nil {
		return "", err
	}

	if _, _, err := e.findOrCreateMap(&models.ResponseMap{
		Type:             models.MapTypeReview,
		ReviewedObjectID: assignmentID,
		ReviewerID:       reviewer.ParticipantID,
		RevieweeID:       teamID,
	}); err != nil {
		return "", err
	}
	return fmt.Sprintf("%q has been assigned to review team %q.", u.Name, team.Name), nil
}

// AddMetareviewer assigns a named user to metareview an existing review
// map. At most one metareview map exists per (review map, reviewer).
func (e *Engine) AddMetareviewer(mapID int, userName string) (string, error) {
	m, err := e.store.FindMap(mapID)
	if err != nil {
		return "", err
	}
	if m == nil || m.Type != models.MapTypeReview {
		return "", notFound(MsgMapNotFound)
	}

	u, err := e.store.FindUserByName(userName)
	if err != nil {
		return "", err
	}
	if u == nil {
		return "", notFound("Registration error: " + userName)
	}
	reviewer, err := e.store.FindParticipantByUser(m.ReviewedObjectID, u.UserID)
	if err != nil {
		return "", err
	}
	if reviewer == nil {
		return "", notFound("Registration error: " + u.Name)
	}

	metas, err := e.store.MetareviewMapsFor(mapID)
	if err != nil {
		return "", err
	}
	for _, mm := range metas {
		if mm.ReviewerID == reviewer.ParticipantID {
			return "", alreadyExists(MsgMetareviewerDuplicate)
		}
	}

	if err := e.store.CreateMap(&models.ResponseMap{
		Type:             models.MapTypeMetareview,
		ReviewedObjectID: mapID,
		ReviewerID:       reviewer.ParticipantID,
		RevieweeID:       m.ReviewerID,
	}); err != nil {
		return "", delegateFailure(err.Error())
	}
	return MsgMetareviewerAssigned, nil
}
