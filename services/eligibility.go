package services

import (
	"fmt"

	"peer-review-api/models"
)

// AssignMode tells the evaluator which checks apply. Manual assignment by
// an instructor skips the topic requirement; bulk mapping manages its own
// quota bookkeeping, so only the self-review guard applies there.
type AssignMode int

const (
	ModeDynamic AssignMode = iota
	ModeManual
	ModeBulk
)

// Evaluator performs the eligibility and quota checks that gate every
// review-map creation. It is side-effect free: all counters are read
// fresh from the store and nothing is written.
type Evaluator struct {
	store Store
}

func NewEvaluator(s Store) *Evaluator {
	return &Evaluator{store: s}
}

// CanAssign reports whether reviewer may be mapped to team under the
// assignment's policies. Checks run in a fixed order so the caller always
// sees the most specific rejection: self-review, per-student quota,
// outstanding-review cap. The topic requirement is the dynamic entry
// point's concern; it only applies when no topic was passed in.
func (ev *Evaluator) CanAssign(a *models.Assignment, reviewer *models.Participant, team *models.Team, mode AssignMode) error {
	own, err := ev.isOwnTeam(team, reviewer.UserID)
	if err != nil {
		return err
	}
	if own {
		return selfAssignment(MsgSelfReviewForbidden)
	}
	if mode == ModeBulk {
		return nil
	}

	maps, err := ev.store.ReviewMapsByReviewer(a.AssignmentID, reviewer.ParticipantID)
	if err != nil {
		return err
	}

	if a.NumReviewsAllowed > 0 {
		assigned := 0
		for _, m := range maps {
			if !m.IsCalibration() {
				assigned++
			}
		}
		if assigned >= a.NumReviewsAllowed {
			return quotaExceeded(fmt.Sprintf(
				"You cannot review more than %d artifacts based on assignment policy.", a.NumReviewsAllowed))
		}
	}

	if mode == ModeDynamic && a.MaxOutstandingReviews >= 0 {
		outstanding, err := ev.outstandingCount(maps)
		if err != nil {
			return err
		}
		if outstanding > a.MaxOutstandingReviews {
			return quotaExceeded(
				"You cannot review another artifact until you complete the reviews you have already started.")
		}
	}

	return nil
}

// outstandingCount counts maps with no submitted response yet.
func (ev *Evaluator) outstandingCount(maps []models.ResponseMap) (int, error) {
	outstanding := 0
	for _, m := range maps {
		if m.IsCalibration() {
			continue
		}
		submitted, err := ev.store.SubmittedResponseExists(m.MapID)
		if err != nil {
			return 0, err
		}
		if !submitted {
			outstanding++
		}
	}
	return outstanding, nil
}

func (ev *Evaluator) isOwnTeam(team *models.Team, userID int) (bool, error) {
	members, err := ev.store.TeamMemberUserIDs(team.TeamID)
	if err != nil {
		return false, err
	}
	for _, id := range members {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}
