package services

import "time"

// SaveGradeAndCommentForReviewer upserts the instructor's evaluation of a
// reviewer's performance, stamping the grading time and grader.
func (e *Engine) SaveGradeAndCommentForReviewer(participantID int, grade *int, comment string, graderUserID int) (string, error) {
	g, err := e.store.FindOrCreateReviewGrade(participantID)
	if err != nil {
		return "", delegateFailure(err.Error())
	}

	if grade != nil {
		g.GradeForReviewer = grade
	}
	if comment != "" {
		g.CommentForReviewer = &comment
	}
	now := time.Now()
	g.ReviewGradedAt = &now
	g.ReviewerID = graderUserID

	if err := e.store.SaveReviewGrade(g); err != nil {
		return "", delegateFailure(err.Error())
	}
	return MsgGradeSaved, nil
}
