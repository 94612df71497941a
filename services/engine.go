package services

import (
	"math/rand"

	"peer-review-api/models"
)

// Engine is the reviewer-assignment façade. It composes the eligibility
// evaluator, the allocation strategies and the mapping lifecycle manager
// over a single Store. Engines hold no per-request state and are safe to
// share across handlers.
type Engine struct {
	store     Store
	eval      *Evaluator
	staggered StaggeredAssigner

	// pick selects an index in [0,n) for the dynamic single-pick
	// strategies. Overridden in tests for determinism.
	pick func(n int) int
}

func NewEngine(s Store) *Engine {
	return &Engine{
		store:     s,
		eval:      NewEvaluator(s),
		staggered: &rotationStaggeredAssigner{store: s},
		pick:      rand.Intn,
	}
}

// SetStaggeredAssigner replaces the staggered-mapping delegate. The
// default rotates reviewers over the assignment's teams.
func (e *Engine) SetStaggeredAssigner(sa StaggeredAssigner) {
	e.staggered = sa
}

// requireAssignment loads an assignment or reports NotFound.
func (e *Engine) requireAssignment(id int) (*models.Assignment, error) {
	a, err := e.store.FindAssignment(id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, notFound("Assignment not found.")
	}
	return a, nil
}

// requireParticipant resolves the participant enrolled for (assignment,
// user) or reports NotFound with the registration message.
func (e *Engine) requireParticipant(assignmentID, userID int) (*models.Participant, error) {
	p, err := e.store.FindParticipantByUser(assignmentID, userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, notFound(MsgParticipantNotRegistered)
	}
	return p, nil
}

func (e *Engine) mapNames(m *models.ResponseMap) (reviewee, reviewer string) {
	reviewee, reviewer = "unknown", "unknown"
	if team, err := e.store.FindTeam(m.RevieweeID); err == nil && team != nil {
		reviewee = team.Name
	}
	if p, err := e.store.FindParticipant(m.ReviewerID); err == nil && p != nil {
		reviewer = e.participantName(p)
	}
	return reviewee, reviewer
}

func (e *Engine) participantName(p *models.Participant) string {
	if p.User == nil {
		if u, err := e.store.FindUser(p.UserID); err == nil && u != nil {
			return u.Name
		}
	}
	return p.Name()
}
