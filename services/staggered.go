package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"peer-review-api/models"
)

// StaggeredAssigner is the collaborator that computes staggered review
// and metareview pairings. Failures are reported as errors and surfaced
// with their original message; they never abort the caller.
type StaggeredAssigner interface {
	AssignReviewersStaggered(assignmentID, numReviews, numMetareviews int) (string, error)
}

// AutomaticReviewMappingStaggered runs the staggered strategy with
// per-invocation counts rather than the assignment's stored defaults.
func (e *Engine) AutomaticReviewMappingStaggered(assignmentID int, numReviews, numMetareviews string) (string, error) {
	a, err := e.requireAssignment(assignmentID)
	if err != nil {
		return "", err
	}

	nr, err1 := strconv.Atoi(strings.TrimSpace(numReviews))
	nm, err2 := strconv.Atoi(strings.TrimSpace(numMetareviews))
	if err1 != nil || err2 != nil || nr <= 0 || nm < 0 {
		return "", configurationInvalid(MsgSpecifyReviewCounts)
	}

	msg, err := e.staggered.AssignReviewersStaggered(a.AssignmentID, nr, nm)
	if err != nil {
		return "", delegateFailure(err.Error())
	}
	return msg, nil
}

// rotationStaggeredAssigner is the default staggered strategy: reviewers
// walk the team ring starting after their own team, and metareviewers
// walk the reviewer ring the same way.
type rotationStaggeredAssigner struct {
	store Store
}

func (r *rotationStaggeredAssigner) AssignReviewersStaggered(assignmentID, numReviews, numMetareviews int) (string, error) {
	teams, err := r.store.TeamsByAssignment(assignmentID)
	if err != nil {
		return "", err
	}
	participants, err := r.store.ParticipantsByAssignment(assignmentID)
	if err != nil {
		return "", err
	}
	var reviewers []models.Participant
	for _, p := range participants {
		if p.CanReview {
			reviewers = append(reviewers, p)
		}
	}
	if len(teams) < 2 || len(reviewers) == 0 {
		return "", fmt.Errorf("not enough teams or reviewers to stagger assignment %d", assignmentID)
	}

	sort.Slice(teams, func(i, j int) bool { return teams[i].TeamID < teams[j].TeamID })
	sort.Slice(reviewers, func(i, j int) bool { return reviewers[i].ParticipantID < reviewers[j].ParticipantID })

	teamIndex := make(map[int]int, len(teams))
	for i, t := range teams {
		teamIndex[t.TeamID] = i
	}

	createdReviews := 0
	for _, p := range reviewers {
		start := 0
		if own, err := r.store.TeamForUser(assignmentID, p.UserID); err == nil && own != nil {
			start = teamIndex[own.TeamID]
		}
		for k := 1; k <= numReviews && k < len(teams); k++ {
			target := teams[(start+k)%len(teams)]
			created, err := r.findOrCreateReview(assignmentID, p.ParticipantID, target.TeamID)
			if err != nil {
				return "", err
			}
			if created {
				createdReviews++
			}
		}
	}

	createdMetas, err := r.staggerMetareviews(assignmentID, reviewers, numMetareviews)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d review mappings and %d metareview mappings were created.", createdReviews, createdMetas), nil
}

func (r *rotationStaggeredAssigner) findOrCreateReview(assignmentID, reviewerID, teamID int) (bool, error) {
	existing, err := r.store.FindMapByKey(models.MapTypeReview, assignmentID, reviewerID, teamID, false)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}
	err = r.store.CreateMap(&models.ResponseMap{
		Type:             models.MapTypeReview,
		ReviewedObjectID: assignmentID,
		ReviewerID:       reviewerID,
		RevieweeID:       teamID,
	})
	return err == nil, err
}

func (r *rotationStaggeredAssigner) staggerMetareviews(assignmentID int, reviewers []models.Participant, numMetareviews int) (int, error) {
	if numMetareviews == 0 {
		return 0, nil
	}
	maps, err := r.store.ReviewMapsByAssignment(assignmentID)
	if err != nil {
		return 0, err
	}
	byReviewer := make(map[int][]models.ResponseMap)
	for _, m := range maps {
		if !m.IsCalibration() {
			byReviewer[m.ReviewerID] = append(byReviewer[m.ReviewerID], m)
		}
	}

	created := 0
	for i, p := range reviewers {
		assigned := 0
		for k := 1; k < len(reviewers) && assigned < numMetareviews; k++ {
			peer := reviewers[(i+k)%len(reviewers)]
			for _, m := range byReviewer[peer.ParticipantID] {
				if assigned >= numMetareviews {
					break
				}
				metas, err := r.store.MetareviewMapsFor(m.MapID)
				if err != nil {
					return created, err
				}
				taken := false
				for _, mm := range metas {
					if mm.ReviewerID == p.ParticipantID {
						taken = true
						break
					}
				}
				if taken {
					continue
				}
				if err := r.store.CreateMap(&models.ResponseMap{
					Type:             models.MapTypeMetareview,
					ReviewedObjectID: m.MapID,
					ReviewerID:       p.ParticipantID,
					RevieweeID:       m.ReviewerID,
				}); err != nil {
					return created, err
				}
				created++
				assigned++
			}
		}
	}
	return created, nil
}
