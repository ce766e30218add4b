package state

import (
	"sync"

	"github.com/plannerhq/planner/internal/models"
)

// Selector is a pure projection of a snapshot.
type Selector[T any] func(*State) T

func SelectUser(s *State) *models.User { return s.User }

func SelectPagedEmployees(s *State) models.EmployeePage { return s.Employees }

func SelectEmployees(s *State) []models.Employee { return s.Employees.Results }

func IsLoadingEmployees(s *State) bool { return s.IsLoadingEmployees }

func SelectEmployeeRequest(s *State) models.PagedRequest { return s.EmployeeRequest }

func SelectPagedProjects(s *State) models.ProjectPage { return s.Projects }

func SelectProjects(s *State) []models.Project { return s.Projects.Results }

func IsLoadingProjects(s *State) bool { return s.IsLoadingProjects }

func SelectProjectRequest(s *State) models.PagedRequest { return s.ProjectRequest }

func SelectAssignments(s *State) []models.Assignment { return s.Assignments }

func SelectMessages(s *State) []models.ChatMessage { return s.Messages }

func SelectIsWaitingForMessageResponse(s *State) bool { return s.IsWaitingForMessageResponse }

// AssignmentFor returns the first assignment of employeeID on day.
func AssignmentFor(s *State, employeeID string, day models.Date) (models.Assignment, bool) {
	for _, a := range s.Assignments {
		if a.EmployeeID == employeeID && a.Date.Equal(day) {
			return a, true
		}
	}
	return models.Assignment{}, false
}

// Cell addresses one (employee, day) slot of the planner grid.
type Cell struct {
	EmployeeID string
	Day        string
}

// CellOf returns the grid key for employeeID on day.
func CellOf(employeeID string, day models.Date) Cell {
	return Cell{EmployeeID: employeeID, Day: day.String()}
}

// SelectGrid indexes the loaded assignments by cell. Like AssignmentFor,
// the first assignment of a cell wins.
func SelectGrid(s *State) map[Cell]models.Assignment {
	grid := make(map[Cell]models.Assignment, len(s.Assignments))
	for _, a := range s.Assignments {
		key := CellOf(a.EmployeeID, a.Date)
		if _, taken := grid[key]; !taken {
			grid[key] = a
		}
	}
	return grid
}

// SelectProjectIndex indexes the loaded projects by ID.
func SelectProjectIndex(s *State) map[string]models.Project {
	index := make(map[string]models.Project, len(s.Projects.Results))
	for _, p := range s.Projects.Results {
		index[p.ID] = p
	}
	return index
}

// Memo wraps sel so repeated calls with the same snapshot reuse the last
// result. Snapshots are immutable, so pointer identity is a sound key.
func Memo[T any](sel Selector[T]) Selector[T] {
	var (
		mu   sync.Mutex
		last *State
		val  T
	)
	return func(s *State) T {
		mu.Lock()
		defer mu.Unlock()
		if last != nil && last == s {
			return val
		}
		val = sel(s)
		last = s
		return val
	}
}
