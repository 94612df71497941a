package services

import (
	"errors"
	"sort"

	"peer-review-api/models"
)

// fakeStore is an in-memory Store used by the engine tests. IDs are
// assigned sequentially; create/delete failures can be injected per
// operation to exercise the partial-failure paths.
type fakeStore struct {
	assignments    map[int]*models.Assignment
	participants   map[int]*models.Participant
	users          map[int]*models.User
	teams          map[int]*models.Team
	teamMembers    map[int][]int
	topics         map[int]*models.SignUpTopic
	signups        []models.SignedUpTeam
	questionnaires map[int]*models.Questionnaire
	maps           map[int]*models.ResponseMap
	responses      map[int]*models.Response
	answers        map[int]*models.Answer
	answerTags     map[int]*models.AnswerTag
	grades         map[int]*models.ReviewGrade

	nextID        int
	createMapErr  error
	deleteMapErrs map[int]error
	saveGradeErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		assignments:    make(map[int]*models.Assignment),
		participants:   make(map[int]*models.Participant),
		users:          make(map[int]*models.User),
		teams:          make(map[int]*models.Team),
		teamMembers:    make(map[int][]int),
		topics:         make(map[int]*models.SignUpTopic),
		questionnaires: make(map[int]*models.Questionnaire),
		maps:           make(map[int]*models.ResponseMap),
		responses:      make(map[int]*models.Response),
		answers:        make(map[int]*models.Answer),
		answerTags:     make(map[int]*models.AnswerTag),
		grades:         make(map[int]*models.ReviewGrade),
		deleteMapErrs:  make(map[int]error),
		nextID:         1000,
	}
}

func (f *fakeStore) id() int {
	f.nextID++
	return f.nextID
}

// Seeding helpers

func (f *fakeStore) addAssignment(a models.Assignment) *models.Assignment {
	f.assignments[a.AssignmentID] = &a
	return &a
}

func (f *fakeStore) addUser(id int, name string) *models.User {
	u := &models.User{UserID: id, Name: name}
	f.users[id] = u
	return u
}

func (f *fakeStore) addParticipant(id, assignmentID, userID int) *models.Participant {
	p := &models.Participant{
		ParticipantID: id, ParentID: assignmentID, UserID: userID,
		CanSubmit: true, CanReview: true, CanTakeQuiz: true,
	}
	f.participants[id] = p
	return p
}

func (f *fakeStore) addTeam(id, assignmentID int, name string, memberUserIDs ...int) *models.Team {
	t := &models.Team{TeamID: id, ParentID: assignmentID, Name: name}
	for _, uid := range memberUserIDs {
		t.Members = append(t.Members, models.TeamsUser{TeamID: id, UserID: uid})
	}
	f.teams[id] = t
	f.teamMembers[id] = memberUserIDs
	return t
}

func (f *fakeStore) addMap(m models.ResponseMap) *models.ResponseMap {
	if m.MapID == 0 {
		m.MapID = f.id()
	}
	f.maps[m.MapID] = &m
	return f.maps[m.MapID]
}

func (f *fakeStore) addResponse(mapID int, submitted bool) *models.Response {
	r := &models.Response{ResponseID: f.id(), MapID: mapID, IsSubmitted: submitted}
	f.responses[r.ResponseID] = r
	return r
}

func (f *fakeStore) addAnswer(responseID int) *models.Answer {
	a := &models.Answer{AnswerID: f.id(), ResponseID: responseID}
	f.answers[a.AnswerID] = a
	return a
}

func (f *fakeStore) addAnswerTag(answerID int) *models.AnswerTag {
	t := &models.AnswerTag{AnswerTagID: f.id(), AnswerID: answerID}
	f.answerTags[t.AnswerTagID] = t
	return t
}

func (f *fakeStore) mapsOfType(mapType string) []models.ResponseMap {
	var out []models.ResponseMap
	for _, m := range f.maps {
		if m.Type == mapType {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MapID < out[j].MapID })
	return out
}

// Store implementation

func (f *fakeStore) FindAssignment(id int) (*models.Assignment, error) {
	return f.assignments[id], nil
}

func (f *fakeStore) FindParticipant(id int) (*models.Participant, error) {
	return f.participants[id], nil
}

func (f *fakeStore) FindParticipantByUser(assignmentID, userID int) (*models.Participant, error) {
	for _, p := range f.participants {
		if p.ParentID == assignmentID && p.UserID == userID {
			return p, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ParticipantsByAssignment(assignmentID int) ([]models.Participant, error) {
	var out []models.Participant
	for _, p := range f.participants {
		if p.ParentID == assignmentID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ParticipantID < out[j].ParticipantID })
	return out, nil
}

func (f *fakeStore) CreateParticipant(p *models.Participant) error {
	if p.ParticipantID == 0 {
		p.ParticipantID = f.id()
	}
	clone := *p
	f.participants[p.ParticipantID] = &clone
	return nil
}

func (f *fakeStore) FindUserByName(name string) (*models.User, error) {
	for _, u := range f.users {
		if u.Name == name {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) FindUser(id int) (*models.User, error) {
	return f.users[id], nil
}

func (f *fakeStore) FindTeam(id int) (*models.Team, error) {
	return f.teams[id], nil
}

func (f *fakeStore) TeamsByAssignment(assignmentID int) ([]models.Team, error) {
	var out []models.Team
	for _, t := range f.teams {
		if t.ParentID == assignmentID {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TeamID < out[j].TeamID })
	return out, nil
}

func (f *fakeStore) TeamForUser(assignmentID, userID int) (*models.Team, error) {
	for id, members := range f.teamMembers {
		t := f.teams[id]
		if t == nil || t.ParentID != assignmentID {
			continue
		}
		for _, uid := range members {
			if uid == userID {
				return t, nil
			}
		}
	}
	return nil, nil
}

func (f *fakeStore) TeamMemberUserIDs(teamID int) ([]int, error) {
	return f.teamMembers[teamID], nil
}

func (f *fakeStore) CreateTeam(t *models.Team) error {
	if t.TeamID == 0 {
		t.TeamID = f.id()
	}
	clone := *t
	f.teams[t.TeamID] = &clone
	return nil
}

func (f *fakeStore) AddTeamMember(teamID, userID int) error {
	f.teamMembers[teamID] = append(f.teamMembers[teamID], userID)
	return nil
}

func (f *fakeStore) FindTopic(topicID int) (*models.SignUpTopic, error) {
	return f.topics[topicID], nil
}

func (f *fakeStore) TeamForTopic(topicID int) (*models.Team, error) {
	for _, s := range f.signups {
		if s.TopicID == topicID && !s.IsWaitlisted {
			return f.teams[s.TeamID], nil
		}
	}
	return nil, nil
}

func (f *fakeStore) FindQuestionnaire(id int) (*models.Questionnaire, error) {
	return f.questionnaires[id], nil
}

func (f *fakeStore) FindMap(mapID int) (*models.ResponseMap, error) {
	return f.maps[mapID], nil
}

func (f *fakeStore) FindMapByKey(mapType string, reviewedObjectID, reviewerID, revieweeID int, calibrateTo bool) (*models.ResponseMap, error) {
	for _, m := range f.maps {
		if m.Type == mapType && m.ReviewedObjectID == reviewedObjectID &&
			m.ReviewerID == reviewerID && m.RevieweeID == revieweeID && m.CalibrateTo == calibrateTo {
			return m, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ReviewMapsByReviewer(assignmentID, reviewerID int) ([]models.ResponseMap, error) {
	var out []models.ResponseMap
	for _, m := range f.mapsOfType(models.MapTypeReview) {
		if m.ReviewedObjectID == assignmentID && m.ReviewerID == reviewerID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeStore) ReviewMapsByAssignment(assignmentID int) ([]models.ResponseMap, error) {
	var out []models.ResponseMap
	for _, m := range f.mapsOfType(models.MapTypeReview) {
		if m.ReviewedObjectID == assignmentID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeStore) ReviewMapsByTeam(teamID int) ([]models.ResponseMap, error) {
	var out []models.ResponseMap
	for _, m := range f.mapsOfType(models.MapTypeReview) {
		if m.RevieweeID == teamID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeStore) CalibrationMapsByAssignment(assignmentID int) ([]models.ResponseMap, error) {
	var out []models.ResponseMap
	for _, m := range f.mapsOfType(models.MapTypeReview) {
		if m.ReviewedObjectID == assignmentID && m.CalibrateTo {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeStore) MetareviewMapsFor(reviewMapID int) ([]models.ResponseMap, error) {
	var out []models.ResponseMap
	for _, m := range f.mapsOfType(models.MapTypeMetareview) {
		if m.ReviewedObjectID == reviewMapID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeStore) QuizMapExists(reviewerID, questionnaireID int) (bool, error) {
	for _, m := range f.mapsOfType(models.MapTypeQuiz) {
		if m.ReviewerID == reviewerID && m.ReviewedObjectID == questionnaireID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) CreateMap(m *models.ResponseMap) error {
	if f.createMapErr != nil {
		return f.createMapErr
	}
	if m.MapID == 0 {
		m.MapID = f.id()
	}
	clone := *m
	f.maps[m.MapID] = &clone
	return nil
}

func (f *fakeStore) DeleteMap(mapID int) error {
	if err := f.deleteMapErrs[mapID]; err != nil {
		return err
	}
	if _, ok := f.maps[mapID]; !ok {
		return errors.New("map not found")
	}
	delete(f.maps, mapID)
	return nil
}

func (f *fakeStore) ResponsesByMap(mapID int) ([]models.Response, error) {
	var out []models.Response
	for _, r := range f.responses {
		if r.MapID == mapID {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ResponseID < out[j].ResponseID })
	return out, nil
}

func (f *fakeStore) SubmittedResponseExists(mapID int) (bool, error) {
	for _, r := range f.responses {
		if r.MapID == mapID && r.IsSubmitted {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) SetResponsesSubmitted(mapID int, submitted bool) error {
	for _, r := range f.responses {
		if r.MapID == mapID {
			r.IsSubmitted = submitted
		}
	}
	return nil
}

func (f *fakeStore) AnswerIDsByResponses(responseIDs []int) ([]int, error) {
	var ids []int
	for _, a := range f.answers {
		for _, rid := range responseIDs {
			if a.ResponseID == rid {
				ids = append(ids, a.AnswerID)
			}
		}
	}
	sort.Ints(ids)
	return ids, nil
}

func (f *fakeStore) DeleteAnswerTagsByAnswers(answerIDs []int) error {
	for id, t := range f.answerTags {
		for _, aid := range answerIDs {
			if t.AnswerID == aid {
				delete(f.answerTags, id)
			}
		}
	}
	return nil
}

func (f *fakeStore) DeleteAnswers(answerIDs []int) error {
	for _, id := range answerIDs {
		delete(f.answers, id)
	}
	return nil
}

func (f *fakeStore) DeleteResponses(responseIDs []int) error {
	for _, id := range responseIDs {
		delete(f.responses, id)
	}
	return nil
}

func (f *fakeStore) FindOrCreateReviewGrade(participantID int) (*models.ReviewGrade, error) {
	if g, ok := f.grades[participantID]; ok {
		return g, nil
	}
	g := &models.ReviewGrade{ReviewGradeID: f.id(), ParticipantID: participantID}
	f.grades[participantID] = g
	return g, nil
}

func (f *fakeStore) SaveReviewGrade(g *models.ReviewGrade) error {
	if f.saveGradeErr != nil {
		return f.saveGradeErr
	}
	f.grades[g.ParticipantID] = g
	return nil
}

// newTestEngine builds an engine with a deterministic picker.
func newTestEngine(f *fakeStore) *Engine {
	e := NewEngine(f)
	e.pick = func(n int) int { return 0 }
	return e
}
