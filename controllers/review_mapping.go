package controllers

import (
	"net/http"
	"strconv"
	"sync"

	"peer-review-api/config"
	"peer-review-api/services"
	"peer-review-api/store"
	"peer-review-api/utils"

	"github.com/gin-gonic/gin"
)

var (
	engineOnce sync.Once
	engine     *services.Engine
)

// reviewEngine lazily builds the shared reviewer-assignment engine over
// the global DB handle.
func reviewEngine() *services.Engine {
	engineOnce.Do(func() {
		engine = services.NewEngine(store.NewGormStore(config.DB))
	})
	return engine
}

func intParam(c *gin.Context, name string) (int, bool) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil || v <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return v, true
}

// respond translates an engine outcome into the JSON reply. AlreadyExists
// is an idempotent no-op and reported with 200; validation rejections map
// to 400, missing entities to 404, blocked deletions to 409.
func respond(c *gin.Context, msg string, err error) {
	if err == nil {
		c.JSON(http.StatusOK, gin.H{"success": true, "message": msg})
		return
	}
	switch services.KindOf(err) {
	case services.KindAlreadyExists:
		c.JSON(http.StatusOK, gin.H{"success": false, "note": err.Error()})
	case services.KindNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case services.KindQuotaExceeded, services.KindSelfAssignmentForbidden, services.KindConfigurationInvalid:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case services.KindPartialDeletionFailure:
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// AddCalibration maps the current instructor to a calibration artifact.
func AddCalibration(c *gin.Context) {
	assignmentID, ok := intParam(c, "id")
	if !ok {
		return
	}
	teamID, err := strconv.Atoi(c.Query("team_id"))
	if err != nil || teamID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid team_id"})
		return
	}
	userID := c.GetInt("userID")

	m, aerr := reviewEngine().AddCalibration(assignmentID, teamID, userID)
	if aerr != nil {
		respond(c, "", aerr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "map_id": m.MapID})
}

// AddReviewer hand-assigns a named user as reviewer of a team.
func AddReviewer(c *gin.Context) {
	assignmentID, ok := intParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		TeamID   int    `json:"team_id" binding:"required"`
		UserName string `json:"user_name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	msg, err := reviewEngine().AddReviewer(assignmentID, req.TeamID, utils.SanitizeInput(req.UserName))
	respond(c, msg, err)
}

// AssignReviewerDynamically picks a reviewee for the requesting reviewer.
func AssignReviewerDynamically(c *gin.Context) {
	assignmentID, ok := intParam(c, "id")
	if !ok {
		return
	}
	topicID, _ := strconv.Atoi(c.Query("topic_id"))
	userID := c.GetInt("userID")

	msg, err := reviewEngine().AssignReviewerDynamically(assignmentID, userID, topicID)
	respond(c, msg, err)
}

// AssignQuizDynamically links the requesting participant to a quiz.
func AssignQuizDynamically(c *gin.Context) {
	assignmentID, ok := intParam(c, "id")
	if !ok {
		return
	}
	questionnaireID, err := strconv.Atoi(c.Query("questionnaire_id"))
	if err != nil || questionnaireID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid questionnaire_id"})
		return
	}
	userID := c.GetInt("userID")

	msg, aerr := reviewEngine().AssignQuizDynamically(assignmentID, userID, questionnaireID)
	respond(c, msg, aerr)
}

// AddMetareviewer hand-assigns a named user to metareview a review map.
func AddMetareviewer(c *gin.Context) {
	mapID, ok := intParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		UserName string `json:"user_name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	msg, err := reviewEngine().AddMetareviewer(mapID, utils.SanitizeInput(req.UserName))
	respond(c, msg, err)
}

// AssignMetareviewerDynamically picks a review map for the requesting
// metareviewer.
func AssignMetareviewerDynamically(c *gin.Context) {
	assignmentID, ok := intParam(c, "id")
	if !ok {
		return
	}
	userID := c.GetInt("userID")

	msg, err := reviewEngine().AssignMetareviewerDynamically(assignmentID, userID)
	respond(c, msg, err)
}

// DeleteOutstandingReviewers drops the not-yet-started review mappings of
// a team.
func DeleteOutstandingReviewers(c *gin.Context) {
	assignmentID, ok := intParam(c, "id")
	if !ok {
		return
	}
	teamID, err := strconv.Atoi(c.Query("contributor_id"))
	if err != nil || teamID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid contributor_id"})
		return
	}

	msg, derr := reviewEngine().DeleteOutstandingReviewers(assignmentID, teamID)
	respond(c, msg, derr)
}

// DeleteAllMetareviewers sweeps the metareview mappings under a review map.
func DeleteAllMetareviewers(c *gin.Context) {
	mapID, ok := intParam(c, "id")
	if !ok {
		return
	}
	force := c.Query("force") == "1"

	msg, err := reviewEngine().DeleteAllMetareviewers(mapID, force)
	if err == nil {
		c.JSON(http.StatusOK, gin.H{"success": true, "note": msg})
		return
	}
	respond(c, msg, err)
}

// DeleteReviewer removes a single review mapping.
func DeleteReviewer(c *gin.Context) {
	mapID, ok := intParam(c, "id")
	if !ok {
		return
	}
	msg, err := reviewEngine().DeleteReviewer(mapID)
	respond(c, msg, err)
}

// DeleteMetareviewer removes a single metareview mapping unless a
// completed metareview blocks it.
func DeleteMetareviewer(c *gin.Context) {
	mapID, ok := intParam(c, "id")
	if !ok {
		return
	}
	msg, err := reviewEngine().DeleteMetareviewer(mapID)
	respond(c, msg, err)
}

// DeleteMetareview force-deletes a metareview mapping.
func DeleteMetareview(c *gin.Context) {
	mapID, ok := intParam(c, "id")
	if !ok {
		return
	}
	msg, err := reviewEngine().DeleteMetareview(mapID)
	respond(c, msg, err)
}

// UnsubmitReview flips a review's responses back to draft.
func UnsubmitReview(c *gin.Context) {
	mapID, ok := intParam(c, "id")
	if !ok {
		return
	}
	msg, err := reviewEngine().UnsubmitReview(mapID)
	respond(c, msg, err)
}

// AutomaticReviewMapping bulk-distributes reviewers over teams.
func AutomaticReviewMapping(c *gin.Context) {
	assignmentID, ok := intParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		MaxTeamSize              int  `json:"max_team_size"`
		NumReviewsPerStudent     int  `json:"num_reviews_per_student"`
		NumReviewsPerSubmission  int  `json:"num_reviews_per_submission"`
		NumCalibratedArtifacts   int  `json:"num_calibrated_artifacts"`
		NumUncalibratedArtifacts int  `json:"num_uncalibrated_artifacts"`
		ExcludeEmptyTeams        bool `json:"exclude_empty_teams"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	msg, err := reviewEngine().AutomaticReviewMapping(assignmentID, services.BulkParams{
		NumReviewsPerStudent:     req.NumReviewsPerStudent,
		NumReviewsPerSubmission:  req.NumReviewsPerSubmission,
		NumCalibratedArtifacts:   req.NumCalibratedArtifacts,
		NumUncalibratedArtifacts: req.NumUncalibratedArtifacts,
		MaxTeamSize:              req.MaxTeamSize,
		ExcludeEmptyTeams:        req.ExcludeEmptyTeams,
	})
	respond(c, msg, err)
}

// AutomaticReviewMappingStaggered runs the staggered strategy with
// per-invocation counts.
func AutomaticReviewMappingStaggered(c *gin.Context) {
	assignmentID, ok := intParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		NumReviews     string `json:"num_reviews"`
		NumMetareviews string `json:"num_metareviews"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	msg, err := reviewEngine().AutomaticReviewMappingStaggered(assignmentID, req.NumReviews, req.NumMetareviews)
	if err == nil {
		c.JSON(http.StatusOK, gin.H{"success": true, "note": msg})
		return
	}
	respond(c, msg, err)
}

// SaveGradeAndCommentForReviewer upserts a reviewer's performance grade.
func SaveGradeAndCommentForReviewer(c *gin.Context) {
	var req struct {
		ParticipantID      int    `json:"participant_id" binding:"required"`
		GradeForReviewer   *int   `json:"grade_for_reviewer"`
		CommentForReviewer string `json:"comment_for_reviewer"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	graderID := c.GetInt("userID")

	msg, err := reviewEngine().SaveGradeAndCommentForReviewer(
		req.ParticipantID, req.GradeForReviewer, utils.SanitizeInput(req.CommentForReviewer), graderID)
	respond(c, msg, err)
}

// StartSelfReview opens the reviewer's self review for their own team.
func StartSelfReview(c *gin.Context) {
	assignmentID, ok := intParam(c, "id")
	if !ok {
		return
	}
	participantID, err := strconv.Atoi(c.Query("reviewer_id"))
	if err != nil || participantID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reviewer_id"})
		return
	}
	userID := c.GetInt("userID")

	msg, serr := reviewEngine().StartSelfReview(assignmentID, userID, participantID)
	respond(c, msg, serr)
}

// ListMappings returns teams with their review and metareview mappings.
func ListMappings(c *gin.Context) {
	assignmentID, ok := intParam(c, "id")
	if !ok {
		return
	}
	mappings, err := reviewEngine().ListMappings(assignmentID)
	if err != nil {
		respond(c, "", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"mappings": mappings,
		"total":    len(mappings),
	})
}
