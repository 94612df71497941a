package services

// User-facing messages. Wording is kept stable because the web frontend
// matches on several of these strings.
const (
	MsgSelfReviewForbidden      = "You cannot assign this student to review his/her own artifact."
	MsgNoTopicSelected          = "No topic is selected.  Please go back and select a topic."
	MsgParticipantNotRegistered = "Participant not registered for this assignment"
	MsgQuizAlreadyTaken         = "Already taken this quiz"
	MsgQuizAssigned             = "Quiz successfully assigned"
	MsgMetareviewerAssigned     = "Metareviewer assigned."
	MsgMetareviewerDuplicate    = "Metareviewer already assigned"
	MsgMapNotFound              = "Review response map not found."
	MsgReviewAlreadyDone        = "This review has already been done. It cannot be deleted."
	MsgNoTeamForUser            = "No team is found for this user"
	MsgSelfReviewExists         = "Self review already exists"
	MsgGradeSaved               = "Grade and comment for reviewer successfully saved."
	MsgSpecifyReviewCounts      = "Please specify the number of reviews and metareviews per student."
	MsgNoCandidateTeams         = "No teams are available to review at this time. Please try again later."
	MsgNoCandidateReviews       = "No review mappings are available to metareview at this time."
	MsgReviewerAssigned         = "Reviewer assigned."

	MsgChooseOne = "Please choose either the number of reviews per student or the number of reviewers per team (student)."

	MsgChooseOneNotBoth = "Please choose either the number of reviews per student or the number of reviewers per team (student), not both."

	MsgReviewsExceedTeams = "You cannot set the number of reviews done " +
		"by each student to be greater than or equal to total number of teams " +
		`[or "participants" if it is an individual assignment].`
)
