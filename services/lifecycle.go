package services

import (
	"fmt"

	"peer-review-api/models"
)

// findOrCreateMap implements the lookup-then-create contract every
// idempotent creation path uses. A store-level uniqueness conflict on
// create is the adapter's concern; the engine only promises to return
// the pre-existing map when the lookup finds one.
func (e *Engine) findOrCreateMap(m *models.ResponseMap) (*models.ResponseMap, bool, error) {
	existing, err := e.store.FindMapByKey(m.Type, m.ReviewedObjectID, m.ReviewerID, m.RevieweeID, m.CalibrateTo)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}
	if err := e.store.CreateMap(m); err != nil {
		return nil, false, delegateFailure(err.Error())
	}
	return m, true, nil
}

// cascadeDeleteMap removes a mapping and its dependent records in
// child-first order: answer tags, answers, responses, then the map.
func (e *Engine) cascadeDeleteMap(mapID int) error {
	responses, err := e.store.ResponsesByMap(mapID)
	if err != nil {
		return err
	}
	responseIDs := make([]int, 0, len(responses))
	for _, r := range responses {
		responseIDs = append(responseIDs, r.ResponseID)
	}

	if len(responseIDs) > 0 {
		answerIDs, err := e.store.AnswerIDsByResponses(responseIDs)
		if err != nil {
			return err
		}
		if len(answerIDs) > 0 {
			if err := e.store.DeleteAnswerTagsByAnswers(answerIDs); err != nil {
				return err
			}
			if err := e.store.DeleteAnswers(answerIDs); err != nil {
				return err
			}
		}
		if err := e.store.DeleteResponses(responseIDs); err != nil {
			return err
		}
	}
	return e.store.DeleteMap(mapID)
}

// DeleteReviewer removes a single review mapping. A submitted response
// makes the review permanent; draft responses are cascade-deleted with
// the map.
func (e *Engine) DeleteReviewer(mapID int) (string, error) {
	m, err := e.store.FindMap(mapID)
	if err != nil {
		return "", err
	}
	if m == nil || m.Type != models.MapTypeReview {
		return "", notFound(MsgMapNotFound)
	}

	submitted, err := e.store.SubmittedResponseExists(mapID)
	if err != nil {
		return "", err
	}
	if submitted {
		return "", partialDeletion(MsgReviewAlreadyDone)
	}

	reviewee, reviewer := e.mapNames(m)
	if err := e.cascadeDeleteMap(mapID); err != nil {
		return "", delegateFailure(err.Error())
	}
	return fmt.Sprintf("The review mapping for %q and %q has been deleted.", reviewee, reviewer), nil
}

// DeleteOutstandingReviewers removes every review mapping for a team
// whose review has not been started. Mappings with a submitted response
// are counted and reported; the rest are deleted regardless, so partial
// success is possible.
func (e *Engine) DeleteOutstandingReviewers(assignmentID, teamID int) (string, error) {
	team, err := e.store.FindTeam(teamID)
	if err != nil {
		return "", err
	}
	if team == nil {
		return "", notFound("Team not found.")
	}

	maps, err := e.store.ReviewMapsByTeam(teamID)
	if err != nil {
		return "", err
	}

	notDeleted := 0
	for _, m := range maps {
		submitted, err := e.store.SubmittedResponseExists(m.MapID)
		if err != nil || submitted {
			notDeleted++
			continue
		}
		if err := e.cascadeDeleteMap(m.MapID); err != nil {
			notDeleted++
		}
	}

	if notDeleted > 0 {
		return "", partialDeletion(fmt.Sprintf(
			"%d reviewer(s) cannot be deleted because they have already started a review.", notDeleted))
	}
	return fmt.Sprintf("All review mappings for %q have been deleted.", team.Name), nil
}

// DeleteAllMetareviewers deletes every metareview mapping under a review
// map, best-effort. Failures are accumulated and reported with a
// force-retry link rather than aborting the sweep.
func (e *Engine) DeleteAllMetareviewers(mapID int, force bool) (string, error) {
	m, err := e.store.FindMap(mapID)
	if err != nil {
		return "", err
	}
	if m == nil || m.Type != models.MapTypeReview {
		return "", notFound(MsgMapNotFound)
	}

	metas, err := e.store.MetareviewMapsFor(mapID)
	if err != nil {
		return "", err
	}

	failed := 0
	for _, mm := range metas {
		if err := e.deleteMetareviewMap(&mm, force); err != nil {
			failed++
		}
	}

	if failed > 0 {
		return "", partialDeletion(fmt.Sprintf(
			"A delete action failed:<br/>%d metareviews exist for these mappings. "+
				"Delete these mappings anyway?&nbsp;"+
				"<a href='/api/v1/review-maps/%d/metareviewers?force=1'>Yes</a>&nbsp;|&nbsp;"+
				"<a href='/api/v1/review-maps/%d/metareviewers'>No</a><br/>",
			failed, mapID, mapID))
	}

	contributor, reviewer := e.mapNames(m)
	return fmt.Sprintf(
		"All metareview mappings for contributor %q and reviewer %q have been deleted.",
		contributor, reviewer), nil
}

// deleteMetareviewMap refuses to drop a completed metareview unless
// forced, then cascades like any other map deletion.
func (e *Engine) deleteMetareviewMap(mm *models.ResponseMap, force bool) error {
	if !force {
		submitted, err := e.store.SubmittedResponseExists(mm.MapID)
		if err != nil {
			return err
		}
		if submitted {
			return fmt.Errorf("a completed metareview exists for mapping %d", mm.MapID)
		}
	}
	return e.cascadeDeleteMap(mm.MapID)
}

// DeleteMetareviewer removes one metareview mapping, reporting a
// delete-anyway link when the mapping is blocked by a completed review.
func (e *Engine) DeleteMetareviewer(mapID int) (string, error) {
	mm, err := e.store.FindMap(mapID)
	if err != nil {
		return "", err
	}
	if mm == nil || mm.Type != models.MapTypeMetareview {
		return "", notFound("Metareview mapping not found.")
	}

	reviewee, reviewer := e.metaMapNames(mm)
	if err := e.deleteMetareviewMap(mm, false); err != nil {
		return "", partialDeletion(fmt.Sprintf(
			"A delete action failed:<br/>%s<a href='/api/v1/metareviews/%d?force=1'>Delete this mapping anyway?</a>",
			err.Error(), mapID))
	}
	return fmt.Sprintf("The metareview mapping for %s and %s has been deleted.", reviewee, reviewer), nil
}

// DeleteMetareview force-deletes a metareview mapping with its dependent
// records.
func (e *Engine) DeleteMetareview(mapID int) (string, error) {
	mm, err := e.store.FindMap(mapID)
	if err != nil {
		return "", err
	}
	if mm == nil || mm.Type != models.MapTypeMetareview {
		return "", notFound("Metareview mapping not found.")
	}
	if err := e.deleteMetareviewMap(mm, true); err != nil {
		return "", delegateFailure(err.Error())
	}
	return "The metareview mapping has been deleted.", nil
}

// metaMapNames resolves display names for a metareview map, whose
// reviewee side is the original reviewer participant.
func (e *Engine) metaMapNames(mm *models.ResponseMap) (reviewee, reviewer string) {
	reviewee, reviewer = "unknown", "unknown"
	if p, err := e.store.FindParticipant(mm.RevieweeID); err == nil && p != nil {
		reviewee = e.participantName(p)
	}
	if p, err := e.store.FindParticipant(mm.ReviewerID); err == nil && p != nil {
		reviewer = e.participantName(p)
	}
	return reviewee, reviewer
}

// UnsubmitReview flips every response under the map back to draft state.
func (e *Engine) UnsubmitReview(mapID int) (string, error) {
	m, err := e.store.FindMap(mapID)
	if err != nil {
		return "", err
	}
	if m == nil || m.Type != models.MapTypeReview {
		return "", notFound(MsgMapNotFound)
	}

	reviewee, reviewer := e.mapNames(m)
	if err := e.store.SetResponsesSubmitted(mapID, false); err != nil {
		return "", delegateFailure(fmt.Sprintf(
			"The review by %q for %q could not be unsubmitted.", reviewer, reviewee))
	}
	return fmt.Sprintf("The review by %q for %q has been unsubmitted.", reviewer, reviewee), nil
}
