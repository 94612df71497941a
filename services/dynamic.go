package services

import (
	"peer-review-api/models"
)

// AssignReviewerDynamically picks one reviewee team for the reviewer at
// call time. Topic-based assignments resolve the requested topic's team;
// open-pool assignments choose uniformly at random among the teams the
// reviewer is still eligible to review. The pick is validated again by
// the evaluator before the map is written, so a successful return never
// leaves partial state.
func (e *Engine) AssignReviewerDynamically(assignmentID, userID, topicID int) (string, error) {
	a, err := e.requireAssignment(assignmentID)
	if err != nil {
		return "", err
	}
	reviewer, err := e.requireParticipant(assignmentID, userID)
	if err != nil {
		return "", err
	}

	var team *models.Team
	if a.HasTopics && topicID == 0 && a.CanChooseTopicToReview {
		return "", configurationInvalid(MsgNoTopicSelected)
	}
	if a.HasTopics && topicID != 0 {
		team, err = e.teamForTopicPick(topicID)
	} else {
		team, err = e.openPoolPick(a, reviewer)
	}
	if err != nil {
		return "", err
	}

	if err := e.eval.CanAssign(a, reviewer, team, ModeDynamic); err != nil {
		return "", err
	}

	_, created, err := e.findOrCreateMap(&models.ResponseMap{
		Type:             models.MapTypeReview,
		ReviewedObjectID: a.AssignmentID,
		ReviewerID:       reviewer.ParticipantID,
		RevieweeID:       team.TeamID,
	})
	if err != nil {
		return "", err
	}
	if !created {
		return "", alreadyExists("You are already assigned to review this submission.")
	}
	return MsgReviewerAssigned, nil
}

func (e *Engine) teamForTopicPick(topicID int) (*models.Team, error) {
	topic, err := e.store.FindTopic(topicID)
	if err != nil {
		return nil, err
	}
	if topic == nil {
		return nil, notFound("Topic not found.")
	}
	team, err := e.store.TeamForTopic(topicID)
	if err != nil {
		return nil, err
	}
	if team == nil {
		return nil, notFound(MsgNoCandidateTeams)
	}
	return team, nil
}

// openPoolPick chooses uniformly at random among candidate teams: not the
// reviewer's own team, not already reviewed by them, not a calibration
// artifact, and not saturated under the per-submission policy.
func (e *Engine) openPoolPick(a *models.Assignment, reviewer *models.Participant) (*models.Team, error) {
	candidates, err := e.candidateTeams(a, reviewer)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, notFound(MsgNoCandidateTeams)
	}
	return &candidates[e.pick(len(candidates))], nil
}

func (e *Engine) candidateTeams(a *models.Assignment, reviewer *models.Participant) ([]models.Team, error) {
	teams, err := e.store.TeamsByAssignment(a.AssignmentID)
	if err != nil {
		return nil, err
	}

	reviewed := make(map[int]bool)
	own, err := e.store.TeamForUser(a.AssignmentID, reviewer.UserID)
	if err != nil {
		return nil, err
	}
	reviewerMaps, err := e.store.ReviewMapsByReviewer(a.AssignmentID, reviewer.ParticipantID)
	if err != nil {
		return nil, err
	}
	for _, m := range reviewerMaps {
		reviewed[m.RevieweeID] = true
	}

	calibration := make(map[int]bool)
	calMaps, err := e.store.CalibrationMapsByAssignment(a.AssignmentID)
	if err != nil {
		return nil, err
	}
	for _, m := range calMaps {
		calibration[m.RevieweeID] = true
	}

	perTeam := make(map[int]int)
	if a.NumReviewsPerSubmission > 0 {
		all, err := e.store.ReviewMapsByAssignment(a.AssignmentID)
		if err != nil {
			return nil, err
		}
		for _, m := range all {
			if !m.IsCalibration() {
				perTeam[m.RevieweeID]++
			}
		}
	}

	var candidates []models.Team
	for _, t := range teams {
		if own != nil && t.TeamID == own.TeamID {
			continue
		}
		if reviewed[t.TeamID] || calibration[t.TeamID] {
			continue
		}
		if a.NumReviewsPerSubmission > 0 && perTeam[t.TeamID] >= a.NumReviewsPerSubmission {
			continue
		}
		candidates = append(candidates, t)
	}
	return candidates, nil
}

// AssignMetareviewerDynamically mirrors the dynamic single pick over
// review maps instead of teams: the metareviewer gets a random review map
// they did not author and have not metareviewed yet.
func (e *Engine) AssignMetareviewerDynamically(assignmentID, userID int) (string, error) {
	if _, err := e.requireAssignment(assignmentID); err != nil {
		return "", err
	}
	metareviewer, err := e.requireParticipant(assignmentID, userID)
	if err != nil {
		return "", err
	}

	maps, err := e.store.ReviewMapsByAssignment(assignmentID)
	if err != nil {
		return "", err
	}
	var candidates []models.ResponseMap
	for _, m := range maps {
		if m.IsCalibration() || m.ReviewerID == metareviewer.ParticipantID {
			continue
		}
		metas, err := e.store.MetareviewMapsFor(m.MapID)
		if err != nil {
			return "", err
		}
		taken := false
		for _, mm := range metas {
			if mm.ReviewerID == metareviewer.ParticipantID {
				taken = true
				break
			}
		}
		if !taken {
			candidates = append(candidates, m)
		}
	}
	if len(candidates) == 0 {
		return "", notFound(MsgNoCandidateReviews)
	}

	target := candidates[e.pick(len(candidates))]
	_, _, err = e.findOrCreateMap(&models.ResponseMap{
		Type:             models.MapTypeMetareview,
		ReviewedObjectID: target.MapID,
		ReviewerID:       metareviewer.ParticipantID,
		RevieweeID:       target.ReviewerID,
	})
	if err != nil {
		return "", err
	}
	return MsgMetareviewerAssigned, nil
}

// AssignQuizDynamically links the participant to a questionnaire as quiz
// taker. Invoking it twice is an idempotent no-op reported as
// AlreadyExists, not a failure.
func (e *Engine) AssignQuizDynamically(assignmentID, userID, questionnaireID int) (string, error) {
	participant, err := e.store.FindParticipantByUser(assignmentID, userID)
	if err != nil {
		return "", err
	}
	if participant == nil {
		return "", notFound(MsgParticipantNotRegistered)
	}

	taken, err := e.store.QuizMapExists(participant.ParticipantID, questionnaireID)
	if err != nil {
		return "", err
	}
	if taken {
		return "", alreadyExists(MsgQuizAlreadyTaken)
	}

	q, err := e.store.FindQuestionnaire(questionnaireID)
	if err != nil {
		return "", err
	}
	if q == nil {
		return "", notFound("Questionnaire not found.")
	}

	if err := e.store.CreateMap(&models.ResponseMap{
		Type:             models.MapTypeQuiz,
		ReviewedObjectID: q.QuestionnaireID,
		ReviewerID:       participant.ParticipantID,
		RevieweeID:       q.InstructorID,
	}); err != nil {
		return "", delegateFailure(err.Error())
	}
	return MsgQuizAssigned, nil
}

// StartSelfReview creates the one self-review map a team member gets for
// their own submission.
func (e *Engine) StartSelfReview(assignmentID, userID, participantID int) (string, error) {
	team, err := e.store.TeamForUser(assignmentID, userID)
	if err != nil {
		return "", err
	}
	if team == nil {
		return "", notFound(MsgNoTeamForUser)
	}

	existing, err := e.store.FindMapByKey(models.MapTypeSelfReview, assignmentID, participantID, team.TeamID, false)
	if err != nil {
		return "", err
	}
	if existing != nil {
		return "", alreadyExists(MsgSelfReviewExists)
	}

	if err := e.store.CreateMap(&models.ResponseMap{
		Type:             models.MapTypeSelfReview,
		ReviewedObjectID: assignmentID,
		ReviewerID:       participantID,
		RevieweeID:       team.TeamID,
	}); err != nil {
		return "", delegateFailure(err.Error())
	}
	return "Self review started.", nil
}
