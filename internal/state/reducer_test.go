package state

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plannerhq/planner/internal/models"
)

var t0 = time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC)

func employees(ids ...string) []models.Employee {
	out := make([]models.Employee, len(ids))
	for i, id := range ids {
		out[i] = models.Employee{ID: id, Name: "Name" + id, Surname: "Surname" + id}
	}
	return out
}

func projects(ids ...string) []models.Project {
	out := make([]models.Project, len(ids))
	for i, id := range ids {
		out[i] = models.Project{ID: id, Name: "Project" + id, Color: "#112233"}
	}
	return out
}

func assignment(id, emp string, day models.Date) models.Assignment {
	return models.Assignment{ID: id, EmployeeID: emp, ProjectID: "p1", Date: day}
}

// reduceAll folds actions over the initial snapshot.
func reduceAll(actions ...Action) *State {
	s := Initial(t0)
	for _, a := range actions {
		s = Reduce(s, a)
	}
	return s
}

func TestInitial(t *testing.T) {
	s := Initial(t0)

	assert.Nil(t, s.User)
	assert.Equal(t, models.PagedRequest{Page: 0, PageSize: 5}, s.EmployeeRequest)
	assert.Equal(t, models.PagedRequest{Page: 0, PageSize: 5}, s.ProjectRequest)
	assert.Equal(t, 1, s.Employees.CurrentPage)
	assert.Equal(t, 1, s.Projects.CurrentPage)
	assert.Empty(t, s.Employees.Results)
	assert.Empty(t, s.Assignments)
	assert.False(t, s.IsLoadingEmployees)
	assert.False(t, s.IsLoadingProjects)
	assert.False(t, s.IsWaitingForMessageResponse)

	require.Len(t, s.Messages, 1)
	assert.Equal(t, Greeting, s.Messages[0].Message)
	assert.Equal(t, models.SenderBot, s.Messages[0].Sender)
	assert.Equal(t, t0, s.Messages[0].Timestamp)
}

func TestReduceUnhandledIsIdentity(t *testing.T) {
	s := Initial(t0)

	unhandled := []Action{
		SetUserRedirectDone{},
		CreateEmployee{},
		UpdateEmployee{ID: "1"},
		RemoveEmployee{ID: "1"},
		CreateProject{},
		UpdateProject{ID: "1"},
		RemoveProject{ID: "1"},
		LoadAssignments{},
		CreateAssignment{},
		DeleteAssignment{ID: "a1"},
		NetworkError{Message: "boom"},
	}
	for _, a := range unhandled {
		t.Run(string(a.Kind()), func(t *testing.T) {
			assert.Same(t, s, Reduce(s, a))
		})
	}
}

func TestReduceIsDeterministic(t *testing.T) {
	seq := []Action{
		LoadEmployees{Request: models.PagedRequest{Page: 2, PageSize: 5}},
		LoadEmployeesDone{Employees: models.EmployeePage{Results: employees("1", "2"), TotalItems: 12}},
		AddOrUpdateProject{Project: projects("p1")[0]},
		SendBotMessage{Message: models.ChatMessage{Message: "hello", Sender: models.SenderUser, Timestamp: t0}},
	}
	assert.Equal(t, reduceAll(seq...), reduceAll(seq...))
}

func TestReduceDoesNotMutateInput(t *testing.T) {
	s := reduceAll(
		LoadEmployeesDone{Employees: models.EmployeePage{Results: employees("1", "2")}},
		LoadProjectsDone{Projects: models.ProjectPage{Results: projects("p1", "p2")}},
		LoadAssignmentsDone{Assignments: []models.Assignment{assignment("a1", "1", models.NewDate(2024, 3, 4))}},
	)
	before := *s
	beforeEmployees := append([]models.Employee(nil), s.Employees.Results...)
	beforeMessages := append([]models.ChatMessage(nil), s.Messages...)

	Reduce(s, AddOrUpdateEmployee{Employee: models.Employee{ID: "1", Name: "Changed"}})
	Reduce(s, AddOrUpdateProject{Project: models.Project{ID: "p1", Name: "Changed"}})
	Reduce(s, RemoveAssignmentFromState{ID: "a1"})
	Reduce(s, SendBotMessage{Message: models.ChatMessage{Message: "hi"}})
	Reduce(s, LoadEmployees{Request: models.PagedRequest{Page: 3, PageSize: 5}})

	assert.Equal(t, before, *s)
	assert.Equal(t, beforeEmployees, s.Employees.Results)
	assert.Equal(t, beforeMessages, s.Messages)
}

func TestSetUser(t *testing.T) {
	u := &models.User{ID: "u1", Language: models.LanguageFR}
	s := reduceAll(SetUser{User: u})

	require.NotNil(t, s.User)
	assert.Equal(t, *u, *s.User)
	assert.NotSame(t, u, s.User, "user is stored as a copy")

	u.Language = models.LanguageIT
	assert.Equal(t, models.LanguageFR, s.User.Language)

	s = Reduce(s, SetUser{User: nil})
	assert.Nil(t, s.User)
}

func TestLoadEmployeesFlow(t *testing.T) {
	s := reduceAll(LoadEmployees{Request: models.PagedRequest{Page: 2, PageSize: 5}})
	assert.True(t, IsLoadingEmployees(s))
	assert.Equal(t, models.PagedRequest{Page: 2, PageSize: 5}, SelectEmployeeRequest(s))

	s = Reduce(s, LoadEmployeesDone{Employees: models.EmployeePage{
		Results: employees("1"), TotalItems: 11, TotalPages: 3, PageSize: 5, CurrentPage: 99,
	}})
	assert.False(t, IsLoadingEmployees(s))
	page := SelectPagedEmployees(s)
	assert.Equal(t, 3, page.CurrentPage)
	assert.Equal(t, 11, page.TotalItems)
	assert.Equal(t, 3, page.TotalPages)
}

func TestLoadEmployeesDoneForcesFirstPage(t *testing.T) {
	for _, echoed := range []int{0, 1, 5, -3} {
		s := reduceAll(
			LoadEmployees{Request: models.PagedRequest{Page: 0, PageSize: 5}},
			LoadEmployeesDone{Employees: models.EmployeePage{Results: employees("1"), CurrentPage: echoed}},
		)
		assert.Equal(t, 1, SelectPagedEmployees(s).CurrentPage, "echoed page %d", echoed)
	}
}

func TestAddOrUpdateEmployee(t *testing.T) {
	base := reduceAll(LoadEmployeesDone{Employees: models.EmployeePage{Results: employees("1", "2", "3"), TotalItems: 3}})

	t.Run("replaces in place", func(t *testing.T) {
		updated := models.Employee{ID: "2", Name: "Berta", Surname: "Beispiel"}
		s := Reduce(base, AddOrUpdateEmployee{Employee: updated})

		got := SelectEmployees(s)
		require.Len(t, got, 3)
		assert.Equal(t, "1", got[0].ID)
		assert.Equal(t, updated, got[1])
		assert.Equal(t, "3", got[2].ID)
		assert.Equal(t, 3, s.Employees.TotalItems)
	})

	t.Run("unknown id is a no-op", func(t *testing.T) {
		s := Reduce(base, AddOrUpdateEmployee{Employee: models.Employee{ID: "42"}})

		assert.Same(t, base, s)
		assert.Equal(t, employees("1", "2", "3"), SelectEmployees(s))
	})
}

func TestAddOrUpdateProject(t *testing.T) {
	base := reduceAll(LoadProjectsDone{Projects: models.ProjectPage{Results: projects("p1", "p2", "p3")}})

	t.Run("unknown id appends", func(t *testing.T) {
		s := Reduce(base, AddOrUpdateProject{Project: models.Project{ID: "p4"}})
		got := SelectProjects(s)
		require.Len(t, got, 4)
		assert.Equal(t, "p4", got[3].ID)
	})

	t.Run("known id moves to the tail", func(t *testing.T) {
		updated := models.Project{ID: "p1", Name: "Renamed", Color: "#ffffff"}
		s := Reduce(base, AddOrUpdateProject{Project: updated})
		got := SelectProjects(s)
		require.Len(t, got, 3)
		assert.Equal(t, []string{"p2", "p3", "p1"}, []string{got[0].ID, got[1].ID, got[2].ID})
		assert.Equal(t, updated, got[2])
	})
}

func TestLoadProjectsOutOfOrder(t *testing.T) {
	// Two page requests are in flight; the response of the first arrives
	// last. Nothing guards against it, so whichever lands last wins and the
	// current page follows the latest stored request.
	s := reduceAll(
		LoadProjects{Request: models.PagedRequest{Page: 0, PageSize: 5}},
		LoadProjects{Request: models.PagedRequest{Page: 1, PageSize: 5}},
		LoadProjectsDone{Projects: models.ProjectPage{Results: projects("second")}},
		LoadProjectsDone{Projects: models.ProjectPage{Results: projects("first")}},
	)
	assert.Equal(t, "first", SelectProjects(s)[0].ID)
	assert.Equal(t, 2, SelectPagedProjects(s).CurrentPage)
	assert.False(t, IsLoadingProjects(s))
}

func TestAssignments(t *testing.T) {
	mon := models.NewDate(2024, time.March, 4)
	base := reduceAll(LoadAssignmentsDone{Assignments: []models.Assignment{
		assignment("a1", "1", mon),
		assignment("a2", "1", mon.AddDays(1)),
		assignment("a3", "2", mon),
	}})

	t.Run("load replaces", func(t *testing.T) {
		s := Reduce(base, LoadAssignmentsDone{Assignments: []models.Assignment{assignment("a9", "9", mon)}})
		require.Len(t, SelectAssignments(s), 1)
		assert.Equal(t, "a9", SelectAssignments(s)[0].ID)
	})

	t.Run("add appends", func(t *testing.T) {
		s := Reduce(base, AddOrUpdateAssignment{Assignment: assignment("a4", "3", mon)})
		require.Len(t, SelectAssignments(s), 4)
		assert.Equal(t, "a4", SelectAssignments(s)[3].ID)
	})

	t.Run("update filters then appends", func(t *testing.T) {
		moved := assignment("a1", "1", mon.AddDays(2))
		s := Reduce(base, AddOrUpdateAssignment{Assignment: moved})
		got := SelectAssignments(s)
		require.Len(t, got, 3)
		assert.Equal(t, moved, got[2])
	})

	t.Run("remove drops exactly the match", func(t *testing.T) {
		s := Reduce(base, RemoveAssignmentFromState{ID: "a2"})
		got := SelectAssignments(s)
		require.Len(t, got, 2)
		assert.Equal(t, "a1", got[0].ID)
		assert.Equal(t, "a3", got[1].ID)
	})

	t.Run("remove unknown keeps all", func(t *testing.T) {
		s := Reduce(base, RemoveAssignmentFromState{ID: "nope"})
		assert.Equal(t, SelectAssignments(base), SelectAssignments(s))
	})
}

func TestChatTranscript(t *testing.T) {
	s := Initial(t0)
	require.Len(t, SelectMessages(s), 1)

	s = Reduce(s, SendBotMessage{Message: models.ChatMessage{Message: "hello", Sender: models.SenderUser, Timestamp: t0}})
	assert.Len(t, SelectMessages(s), 2)
	assert.True(t, SelectIsWaitingForMessageResponse(s))

	reply := models.ChatReply{ID: "r1", Message: "Hi there", Sender: models.SenderBot, Timestamp: t0.Add(time.Second)}
	s = Reduce(s, SendBotMessageDone{Reply: reply})
	msgs := SelectMessages(s)
	require.Len(t, msgs, 3)
	assert.False(t, SelectIsWaitingForMessageResponse(s))
	assert.Equal(t, models.ChatMessage{Message: "Hi there", Sender: models.SenderBot, Timestamp: t0.Add(time.Second)}, msgs[2])
	assert.Equal(t, "hello", msgs[1].Message)
	assert.Equal(t, Greeting, msgs[0].Message)
}

func TestNetworkErrorLeavesStateUntouched(t *testing.T) {
	s := reduceAll(
		LoadEmployees{Request: models.PagedRequest{Page: 1, PageSize: 5}},
		SendBotMessage{Message: models.ChatMessage{Message: "hi"}},
	)
	assert.Same(t, s, Reduce(s, NetworkError{Message: "Employees could not be loaded."}))
}
