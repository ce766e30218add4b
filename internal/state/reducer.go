package state

import (
	"slices"

	"github.com/plannerhq/planner/internal/models"
)

// Reduce computes the snapshot that follows s after a.
//
// Reduce never modifies s. Actions it does not handle return s itself, so
// callers can compare pointers to detect a no-op.
func Reduce(s *State, a Action) *State {
	switch a := a.(type) {
	case SetUser:
		next := *s
		if a.User != nil {
			u := *a.User
			next.User = &u
		} else {
			next.User = nil
		}
		return &next

	case LoadEmployees:
		next := *s
		next.EmployeeRequest = a.Request
		next.IsLoadingEmployees = true
		return &next

	case LoadEmployeesDone:
		next := *s
		next.Employees = a.Employees
		next.Employees.CurrentPage = s.EmployeeRequest.Page + 1
		next.IsLoadingEmployees = false
		return &next

	case AddOrUpdateEmployee:
		i := slices.IndexFunc(s.Employees.Results, func(e models.Employee) bool { return e.ID == a.Employee.ID })
		if i < 0 {
			// Unknown employees are not inserted; a reload picks them up.
			return s
		}
		next := *s
		next.Employees.Results = slices.Clone(s.Employees.Results)
		next.Employees.Results[i] = a.Employee
		return &next

	case LoadProjects:
		next := *s
		next.ProjectRequest = a.Request
		next.IsLoadingProjects = true
		return &next

	case LoadProjectsDone:
		next := *s
		next.Projects = a.Projects
		next.Projects.CurrentPage = s.ProjectRequest.Page + 1
		next.IsLoadingProjects = false
		return &next

	case AddOrUpdateProject:
		next := *s
		next.Projects.Results = upsert(s.Projects.Results, a.Project, func(p models.Project) bool {
			return p.ID == a.Project.ID
		})
		return &next

	case LoadAssignmentsDone:
		next := *s
		next.Assignments = a.Assignments
		return &next

	case AddOrUpdateAssignment:
		next := *s
		next.Assignments = upsert(s.Assignments, a.Assignment, func(x models.Assignment) bool {
			return x.ID == a.Assignment.ID
		})
		return &next

	case RemoveAssignmentFromState:
		next := *s
		next.Assignments = without(s.Assignments, func(x models.Assignment) bool { return x.ID == a.ID })
		return &next

	case SendBotMessage:
		next := *s
		next.Messages = appendFresh(s.Messages, a.Message)
		next.IsWaitingForMessageResponse = true
		return &next

	case SendBotMessageDone:
		next := *s
		next.Messages = appendFresh(s.Messages, models.ChatMessage{
			Message:   a.Reply.Message,
			Timestamp: a.Reply.Timestamp,
			Sender:    a.Reply.Sender,
		})
		next.IsWaitingForMessageResponse = false
		return &next
	}
	return s
}

// upsert drops every element matching and appends v. An update therefore
// moves the element to the end of the list.
func upsert[T any](list []T, v T, match func(T) bool) []T {
	out := make([]T, 0, len(list)+1)
	for _, x := range list {
		if !match(x) {
			out = append(out, x)
		}
	}
	return append(out, v)
}

func without[T any](list []T, match func(T) bool) []T {
	out := make([]T, 0, len(list))
	for _, x := range list {
		if !match(x) {
			out = append(out, x)
		}
	}
	return out
}

// appendFresh appends into a new backing array so earlier snapshots never
// observe the write.
func appendFresh[T any](list []T, v T) []T {
	out := make([]T, len(list), len(list)+1)
	copy(out, list)
	return append(out, v)
}
