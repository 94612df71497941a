package services

import (
	"fmt"
	"sort"

	"peer-review-api/models"
)

// BulkParams carries the per-invocation knobs for automatic review
// mapping. Exactly one of NumReviewsPerStudent and
// NumReviewsPerSubmission must be non-zero.
type BulkParams struct {
	NumReviewsPerStudent     int
	NumReviewsPerSubmission  int
	NumCalibratedArtifacts   int
	NumUncalibratedArtifacts int
	MaxTeamSize              int
	ExcludeEmptyTeams        bool
}

// AutomaticReviewMapping distributes the full reviewer population over
// the assignment's teams in one pass. Validation happens before any map
// is written; the commit itself is best-effort and re-runnable, since
// existing (reviewer, reviewee) pairs are counted as satisfied rather
// than recreated.
func (e *Engine) AutomaticReviewMapping(assignmentID int, p BulkParams) (string, error) {
	a, err := e.requireAssignment(assignmentID)
	if err != nil {
		return "", err
	}

	participants, err := e.reviewerParticipants(assignmentID)
	if err != nil {
		return "", err
	}
	teams, err := e.store.TeamsByAssignment(assignmentID)
	if err != nil {
		return "", err
	}

	studentNum := p.NumReviewsPerStudent
	submissionNum := p.NumReviewsPerSubmission

	// Individual assignments may not have teams yet; materialize a
	// one-participant team for anyone lacking one before planning.
	if len(teams) == 0 && (p.MaxTeamSize == 1 || a.IsIndividual()) && (studentNum != 0 || submissionNum != 0) {
		if err := e.materializeIndividualTeams(assignmentID, participants); err != nil {
			return "", err
		}
		teams, err = e.store.TeamsByAssignment(assignmentID)
		if err != nil {
			return "", err
		}
	}

	if p.NumCalibratedArtifacts > 0 && p.NumUncalibratedArtifacts > 0 {
		return e.calibratedBulkMapping(a, participants, teams, p)
	}

	switch {
	case studentNum != 0 && submissionNum != 0:
		return "", configurationInvalid(MsgChooseOneNotBoth)
	case studentNum == 0 && submissionNum == 0:
		return "", configurationInvalid(MsgChooseOne)
	}

	eligible := filterEligibleTeams(teams, p.ExcludeEmptyTeams)
	if studentNum != 0 && studentNum >= len(eligible) {
		return "", configurationInvalid(MsgReviewsExceedTeams)
	}

	created, failed, err := e.runReviewStrategy(a, participants, eligible, studentNum, submissionNum, false)
	if err != nil {
		return "", err
	}
	return bulkOutcome(created, failed)
}

// calibratedBulkMapping first norms every reviewer on the flagged
// calibration artifacts, outside the main quota, then distributes the
// uncalibrated count over the remaining teams.
func (e *Engine) calibratedBulkMapping(a *models.Assignment, participants []models.Participant, teams []models.Team, p BulkParams) (string, error) {
	calMaps, err := e.store.CalibrationMapsByAssignment(a.AssignmentID)
	if err != nil {
		return "", err
	}
	calTeamIDs := make(map[int]bool)
	for _, m := range calMaps {
		calTeamIDs[m.RevieweeID] = true
	}

	var calTeams, rest []models.Team
	for _, t := range teams {
		if calTeamIDs[t.TeamID] {
			calTeams = append(calTeams, t)
		} else {
			rest = append(rest, t)
		}
	}

	created, failed, err := e.runReviewStrategy(a, participants, calTeams, p.NumCalibratedArtifacts, 0, true)
	if err != nil {
		return "", err
	}
	c2, f2, err := e.runReviewStrategy(a, participants, filterEligibleTeams(rest, p.ExcludeEmptyTeams), p.NumUncalibratedArtifacts, 0, false)
	if err != nil {
		return "", err
	}
	return bulkOutcome(created+c2, failed+f2)
}

func bulkOutcome(created, failed int) (string, error) {
	if failed > 0 {
		return "", delegateFailure(fmt.Sprintf("%d review mappings could not be created.", failed))
	}
	return fmt.Sprintf("Automatic review mapping completed: %d review mappings created.", created), nil
}

func (e *Engine) reviewerParticipants(assignmentID int) ([]models.Participant, error) {
	all, err := e.store.ParticipantsByAssignment(assignmentID)
	if err != nil {
		return nil, err
	}
	var reviewers []models.Participant
	for _, p := range all {
		if p.CanReview {
			reviewers = append(reviewers, p)
		}
	}
	return reviewers, nil
}

func (e *Engine) materializeIndividualTeams(assignmentID int, participants []models.Participant) error {
	for _, p := range participants {
		existing, err := e.store.TeamForUser(assignmentID, p.UserID)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}
		name := p.Handle
		if u, err := e.store.FindUser(p.UserID); err == nil && u != nil {
			name = u.Name
		}
		team := &models.Team{ParentID: assignmentID, Name: name}
		if err := e.store.CreateTeam(team); err != nil {
			return delegateFailure(err.Error())
		}
		if err := e.store.AddTeamMember(team.TeamID, p.UserID); err != nil {
			return delegateFailure(err.Error())
		}
	}
	return nil
}

// filterEligibleTeams drops teams with no members when exclusion is
// requested.
func filterEligibleTeams(teams []models.Team, excludeEmpty bool) []models.Team {
	if !excludeEmpty {
		return teams
	}
	var eligible []models.Team
	for _, t := range teams {
		if len(t.Members) > 0 {
			eligible = append(eligible, t)
		}
	}
	return eligible
}

// reviewStrategy fixes the per-reviewer and per-team targets for one bulk
// run. Student-count-driven runs derive the team target from the total
// review volume and vice versa, keeping the distribution balanced.
type reviewStrategy struct {
	perStudent       int
	perTeam          int
	submissionDriven bool
}

func newReviewStrategy(numParticipants, numTeams, studentNum, submissionNum int) reviewStrategy {
	if studentNum > 0 {
		return reviewStrategy{
			perStudent: studentNum,
			perTeam:    ceilDiv(studentNum*numParticipants, numTeams),
		}
	}
	return reviewStrategy{
		perStudent:       ceilDiv(submissionNum*numTeams, numParticipants),
		perTeam:          submissionNum,
		submissionDriven: true,
	}
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

// reviewPlanState is the shared bookkeeping both assignment phases use,
// so nothing is double counted between them.
type reviewPlanState struct {
	calibrate      bool
	strategy       reviewStrategy
	reviewerCounts map[int]int
	teamCounts     map[int]int
	pairs          map[[2]int]bool
	members        map[int]map[int]bool
	created        int
	failed         int
}

func (e *Engine) runReviewStrategy(a *models.Assignment, participants []models.Participant, teams []models.Team, studentNum, submissionNum int, calibrate bool) (created, failed int, err error) {
	if len(participants) == 0 || len(teams) == 0 {
		return 0, 0, nil
	}

	state := &reviewPlanState{
		calibrate:      calibrate,
		strategy:       newReviewStrategy(len(participants), len(teams), studentNum, submissionNum),
		reviewerCounts: initializeReviewerCounts(participants),
		teamCounts:     make(map[int]int),
		pairs:          make(map[[2]int]bool),
		members:        make(map[int]map[int]bool),
	}

	for _, t := range teams {
		ids, err := e.store.TeamMemberUserIDs(t.TeamID)
		if err != nil {
			return 0, 0, err
		}
		set := make(map[int]bool, len(ids))
		for _, id := range ids {
			set[id] = true
		}
		state.members[t.TeamID] = set
	}

	// Re-running the operation must skip already-satisfied pairs, so
	// existing maps seed the counters.
	existing, err := e.store.ReviewMapsByAssignment(a.AssignmentID)
	if err != nil {
		return 0, 0, err
	}
	for _, m := range existing {
		if m.CalibrateTo != calibrate {
			continue
		}
		state.pairs[[2]int{m.ReviewerID, m.RevieweeID}] = true
		if _, ok := state.reviewerCounts[m.ReviewerID]; ok {
			state.reviewerCounts[m.ReviewerID]++
		}
		state.teamCounts[m.RevieweeID]++
	}

	e.assignInitialReviews(a, participants, teams, state)
	e.assignRemainingReviews(a, participants, teams, state)
	return state.created, state.failed, nil
}

func initializeReviewerCounts(participants []models.Participant) map[int]int {
	counts := make(map[int]int, len(participants))
	for _, p := range participants {
		counts[p.ParticipantID] = 0
	}
	return counts
}

// assignInitialReviews is the coverage pass: every team gets at least one
// reviewer before anyone gets a second review.
func (e *Engine) assignInitialReviews(a *models.Assignment, participants []models.Participant, teams []models.Team, state *reviewPlanState) {
	for _, t := range teams {
		if state.teamCounts[t.TeamID] > 0 {
			continue
		}
		reviewer := pickReviewer(participants, t, state)
		if reviewer == nil {
			continue
		}
		e.commitPlannedReview(a, reviewer, &t, state)
	}
}

// assignRemainingReviews fills the residual quota gaps left by the
// coverage pass, always growing the least-reviewed side first.
func (e *Engine) assignRemainingReviews(a *models.Assignment, participants []models.Participant, teams []models.Team, state *reviewPlanState) {
	for i := range participants {
		p := &participants[i]
		for state.reviewerCounts[p.ParticipantID] < state.strategy.perStudent {
			team := pickTeam(teams, p, state)
			if team == nil {
				break
			}
			e.commitPlannedReview(a, p, team, state)
		}
	}

	if !state.strategy.submissionDriven {
		return
	}
	// Submission-driven runs owe every team exactly its reviewer count;
	// top up teams the per-student rounding left short.
	for i := range teams {
		t := &teams[i]
		for state.teamCounts[t.TeamID] < state.strategy.perTeam {
			reviewer := pickReviewer(participants, *t, state)
			if reviewer == nil {
				break
			}
			e.commitPlannedReview(a, reviewer, t, state)
		}
	}
}

// pickReviewer returns the least-loaded participant eligible to review
// the team, nil when everyone is excluded.
func pickReviewer(participants []models.Participant, t models.Team, state *reviewPlanState) *models.Participant {
	var best *models.Participant
	for i := range participants {
		p := &participants[i]
		if !planEligible(p, &t, state) {
			continue
		}
		if best == nil || state.reviewerCounts[p.ParticipantID] < state.reviewerCounts[best.ParticipantID] {
			best = p
		}
	}
	return best
}

// pickTeam returns the least-reviewed team the participant may still
// review, nil when none remains.
func pickTeam(teams []models.Team, p *models.Participant, state *reviewPlanState) *models.Team {
	candidates := make([]*models.Team, 0, len(teams))
	for i := range teams {
		t := &teams[i]
		if planEligible(p, t, state) {
			candidates = append(candidates, t)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return state.teamCounts[candidates[i].TeamID] < state.teamCounts[candidates[j].TeamID]
	})
	// Do not overfill a team past its balanced share.
	if state.teamCounts[candidates[0].TeamID] >= state.strategy.perTeam {
		return nil
	}
	return candidates[0]
}

func planEligible(p *models.Participant, t *models.Team, state *reviewPlanState) bool {
	if state.members[t.TeamID][p.UserID] {
		return false
	}
	if state.pairs[[2]int{p.ParticipantID, t.TeamID}] {
		return false
	}
	return true
}

func (e *Engine) commitPlannedReview(a *models.Assignment, p *models.Participant, t *models.Team, state *reviewPlanState) {
	_, created, err := e.findOrCreateMap(&models.ResponseMap{
		Type:             models.MapTypeReview,
		ReviewedObjectID: a.AssignmentID,
		ReviewerID:       p.ParticipantID,
		RevieweeID:       t.TeamID,
		CalibrateTo:      state.calibrate,
	})
	// Failed creations still mark the pair so the planner moves on; the
	// operation is re-runnable and will retry them on the next pass.
	state.pairs[[2]int{p.ParticipantID, t.TeamID}] = true
	if err != nil {
		state.failed++
		return
	}
	state.reviewerCounts[p.ParticipantID]++
	state.teamCounts[t.TeamID]++
	if created {
		state.created++
	}
}
