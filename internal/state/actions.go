// Package state holds the planner's state tree, the actions that drive it,
// the pure reducer and the selectors read by the views.
package state

import "github.com/plannerhq/planner/internal/models"

// Kind names an action. Values are stable and show up in debug logs.
type Kind string

const (
	KindSetUser             Kind = "Set User [Direct]"
	KindSetUserRedirectDone Kind = "Set User Redirect Done"

	KindLoadEmployees       Kind = "Load Employees"
	KindLoadEmployeesDone   Kind = "Load Employees [Done]"
	KindCreateEmployee      Kind = "Create Employee"
	KindUpdateEmployee      Kind = "Update Employee"
	KindRemoveEmployee      Kind = "Remove Employee"
	KindAddOrUpdateEmployee Kind = "Add or update Employee"

	KindLoadProjects       Kind = "Load Projects"
	KindLoadProjectsDone   Kind = "Load Projects [Done]"
	KindCreateProject      Kind = "Create Project"
	KindUpdateProject      Kind = "Update Project"
	KindRemoveProject      Kind = "Remove Project"
	KindAddOrUpdateProject Kind = "Add or update Project"

	KindLoadAssignments           Kind = "Load Assignments"
	KindLoadAssignmentsDone       Kind = "Load Assignments [Done]"
	KindCreateAssignment          Kind = "Create Assignment"
	KindDeleteAssignment          Kind = "Delete Assignment"
	KindRemoveAssignmentFromState Kind = "Remove Assignment from State"
	KindAddOrUpdateAssignment     Kind = "Add or update Assignment"

	KindSendBotMessage     Kind = "Send Bot Message"
	KindSendBotMessageDone Kind = "Send Bot Message [Done]"

	KindNetworkError Kind = "Network Error occurred"
)

// Action is a request for a state transition or the outcome of one.
// The set of actions is closed: only types in this package implement it.
type Action interface {
	Kind() Kind
	action()
}

type (
	// SetUser replaces the current user. A nil User clears it.
	SetUser struct{ User *models.User }
	// SetUserRedirectDone marks locale reconciliation as finished.
	SetUserRedirectDone struct{}
)

type (
	LoadEmployees       struct{ Request models.PagedRequest }
	LoadEmployeesDone   struct{ Employees models.EmployeePage }
	CreateEmployee      struct{ Properties models.EmployeeProperties }
	UpdateEmployee      struct {
		ID         string
		Properties models.EmployeeProperties
	}
	RemoveEmployee      struct{ ID string }
	AddOrUpdateEmployee struct{ Employee models.Employee }
)

type (
	LoadProjects       struct{ Request models.PagedRequest }
	LoadProjectsDone   struct{ Projects models.ProjectPage }
	CreateProject      struct{ Properties models.ProjectProperties }
	UpdateProject      struct {
		ID         string
		Properties models.ProjectProperties
	}
	RemoveProject      struct{ ID string }
	AddOrUpdateProject struct{ Project models.Project }
)

type (
	LoadAssignments           struct{ Request models.AssignmentRequest }
	LoadAssignmentsDone       struct{ Assignments []models.Assignment }
	CreateAssignment          struct{ Properties models.AssignmentProperties }
	DeleteAssignment          struct{ ID string }
	RemoveAssignmentFromState struct{ ID string }
	AddOrUpdateAssignment     struct{ Assignment models.Assignment }
)

type (
	// SendBotMessage appends a user-authored message and waits for the reply.
	SendBotMessage struct{ Message models.ChatMessage }
	// SendBotMessageDone carries the assistant reply, real or synthesized.
	SendBotMessageDone struct{ Reply models.ChatReply }
)

// NetworkError reports a failed gateway call with a user-facing message.
type NetworkError struct{ Message string }

func (SetUser) Kind() Kind             { return KindSetUser }
func (SetUserRedirectDone) Kind() Kind { return KindSetUserRedirectDone }

func (LoadEmployees) Kind() Kind       { return KindLoadEmployees }
func (LoadEmployeesDone) Kind() Kind   { return KindLoadEmployeesDone }
func (CreateEmployee) Kind() Kind      { return KindCreateEmployee }
func (UpdateEmployee) Kind() Kind      { return KindUpdateEmployee }
func (RemoveEmployee) Kind() Kind      { return KindRemoveEmployee }
func (AddOrUpdateEmployee) Kind() Kind { return KindAddOrUpdateEmployee }

func (LoadProjects) Kind() Kind       { return KindLoadProjects }
func (LoadProjectsDone) Kind() Kind   { return KindLoadProjectsDone }
func (CreateProject) Kind() Kind      { return KindCreateProject }
func (UpdateProject) Kind() Kind      { return KindUpdateProject }
func (RemoveProject) Kind() Kind      { return KindRemoveProject }
func (AddOrUpdateProject) Kind() Kind { return KindAddOrUpdateProject }

func (LoadAssignments) Kind() Kind           { return KindLoadAssignments }
func (LoadAssignmentsDone) Kind() Kind       { return KindLoadAssignmentsDone }
func (CreateAssignment) Kind() Kind          { return KindCreateAssignment }
func (DeleteAssignment) Kind() Kind          { return KindDeleteAssignment }
func (RemoveAssignmentFromState) Kind() Kind { return KindRemoveAssignmentFromState }
func (AddOrUpdateAssignment) Kind() Kind     { return KindAddOrUpdateAssignment }

func (SendBotMessage) Kind() Kind     { return KindSendBotMessage }
func (SendBotMessageDone) Kind() Kind { return KindSendBotMessageDone }

func (NetworkError) Kind() Kind { return KindNetworkError }

func (SetUser) action()             {}
func (SetUserRedirectDone) action() {}

func (LoadEmployees) action()       {}
func (LoadEmployeesDone) action()   {}
func (CreateEmployee) action()      {}
func (UpdateEmployee) action()      {}
func (RemoveEmployee) action()      {}
func (AddOrUpdateEmployee) action() {}

func (LoadProjects) action()       {}
func (LoadProjectsDone) action()   {}
func (CreateProject) action()      {}
func (UpdateProject) action()      {}
func (RemoveProject) action()      {}
func (AddOrUpdateProject) action() {}

func (LoadAssignments) action()           {}
func (LoadAssignmentsDone) action()       {}
func (CreateAssignment) action()          {}
func (DeleteAssignment) action()          {}
func (RemoveAssignmentFromState) action() {}
func (AddOrUpdateAssignment) action()     {}

func (SendBotMessage) action()     {}
func (SendBotMessageDone) action() {}

func (NetworkError) action() {}

// IsKind returns a matcher for WaitFor-style helpers.
func IsKind(kinds ...Kind) func(Action) bool {
	return func(a Action) bool {
		for _, k := range kinds {
			if a.Kind() == k {
				return true
			}
		}
		return false
	}
}
