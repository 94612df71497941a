package services

import "peer-review-api/models"

// TeamMappings groups a team with the review maps targeting it and their
// metareview maps, for the instructor's mapping listing.
type TeamMappings struct {
	Team           models.Team          `json:"team"`
	ReviewMaps     []models.ResponseMap `json:"review_maps"`
	MetareviewMaps []models.ResponseMap `json:"metareview_maps"`
}

// ListMappings returns every team of the assignment with its review and
// metareview mappings. Read-only.
func (e *Engine) ListMappings(assignmentID int) ([]TeamMappings, error) {
	if _, err := e.requireAssignment(assignmentID); err != nil {
		return nil, err
	}
	teams, err := e.store.TeamsByAssignment(assignmentID)
	if err != nil {
		return nil, err
	}

	out := make([]TeamMappings, 0, len(teams))
	for _, t := range teams {
		maps, err := e.store.ReviewMapsByTeam(t.TeamID)
		if err != nil {
			return nil, err
		}
		var metas []models.ResponseMap
		for _, m := range maps {
			mm, err := e.store.MetareviewMapsFor(m.MapID)
			if err != nil {
				return nil, err
			}
			metas = append(metas, mm...)
		}
		out = append(out, TeamMappings{Team: t, ReviewMaps: maps, MetareviewMaps: metas})
	}
	return out, nil
}
