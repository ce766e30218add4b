package state

import (
	"time"

	"github.com/plannerhq/planner/internal/models"
)

// DefaultPageSize is the page size of the employee and project requests
// in the initial snapshot.
const DefaultPageSize = 5

// Greeting is the assistant's first message in every session.
const Greeting = "Hi! I am your chat assistant. How can I help you?"

// State is one snapshot of the planner's client-side data.
//
// Snapshots are never mutated after Reduce returns them. Transitions copy
// the struct and replace the fields they touch, so unchanged slices are
// shared between consecutive snapshots.
type State struct {
	User *models.User

	Employees          models.EmployeePage
	EmployeeRequest    models.PagedRequest
	IsLoadingEmployees bool

	Projects          models.ProjectPage
	ProjectRequest    models.PagedRequest
	IsLoadingProjects bool

	Assignments []models.Assignment

	Messages                    []models.ChatMessage
	IsWaitingForMessageResponse bool
}

// Initial returns the snapshot a session starts from.
func Initial(now time.Time) *State {
	return &State{
		Employees:       models.EmployeePage{Results: []models.Employee{}, CurrentPage: 1},
		EmployeeRequest: models.PagedRequest{Page: 0, PageSize: DefaultPageSize},
		Projects:        models.ProjectPage{Results: []models.Project{}, CurrentPage: 1},
		ProjectRequest:  models.PagedRequest{Page: 0, PageSize: DefaultPageSize},
		Assignments:     []models.Assignment{},
		Messages: []models.ChatMessage{{
			Message:   Greeting,
			Sender:    models.SenderBot,
			Timestamp: now,
		}},
	}
}
