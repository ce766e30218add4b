// Package names resolves employee and project references given on the
// command line. Matching runs in this order:
// 1. ID passthrough
// 2. Exact match (case-sensitive)
// 3. Case-insensitive match
// 4. Partial match (contains)
package names

import (
	"context"
	"strings"
	"sync"

	"github.com/plannerhq/planner/internal/models"
	"github.com/plannerhq/planner/internal/output"
)

// Source lists every employee and project the user can see.
type Source interface {
	AllEmployees(ctx context.Context) ([]models.Employee, error)
	AllProjects(ctx context.Context) ([]models.Project, error)
}

// Resolver resolves names to employees and projects.
type Resolver struct {
	src Source

	// Session-scoped cache
	mu        sync.Mutex
	employees []models.Employee
	projects  []models.Project
}

// NewResolver creates a new name resolver.
func NewResolver(src Source) *Resolver {
	return &Resolver{src: src}
}

// ResolveEmployee resolves an ID, email address or name.
func (r *Resolver) ResolveEmployee(ctx context.Context, input string) (models.Employee, error) {
	employees, err := r.Employees(ctx)
	if err != nil {
		return models.Employee{}, err
	}

	for _, e := range employees {
		if e.ID == input || strings.EqualFold(e.Email, input) {
			return e, nil
		}
	}

	match, matches := resolve(input, employees, models.Employee.FullName)
	if match != nil {
		return *match, nil
	}
	if len(matches) > 1 {
		return models.Employee{}, output.ErrAmbiguous("employee", labels(matches, models.Employee.FullName))
	}

	if suggestions := suggest(input, employees, models.Employee.FullName); len(suggestions) > 0 {
		return models.Employee{}, output.ErrNotFoundHint("Employee", input, "Did you mean: "+strings.Join(suggestions, ", "))
	}
	return models.Employee{}, output.ErrNotFound("Employee", input)
}

// ResolveProject resolves an ID or project name.
func (r *Resolver) ResolveProject(ctx context.Context, input string) (models.Project, error) {
	projects, err := r.Projects(ctx)
	if err != nil {
		return models.Project{}, err
	}

	for _, p := range projects {
		if p.ID == input {
			return p, nil
		}
	}

	name := func(p models.Project) string { return p.Name }
	match, matches := resolve(input, projects, name)
	if match != nil {
		return *match, nil
	}
	if len(matches) > 1 {
		return models.Project{}, output.ErrAmbiguous("project", labels(matches, name))
	}

	if suggestions := suggest(input, projects, name); len(suggestions) > 0 {
		return models.Project{}, output.ErrNotFoundHint("Project", input, "Did you mean: "+strings.Join(suggestions, ", "))
	}
	return models.Project{}, output.ErrNotFound("Project", input)
}

// Employees returns all employees (useful for pickers).
func (r *Resolver) Employees(ctx context.Context) ([]models.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.employees != nil {
		return r.employees, nil
	}
	employees, err := r.src.AllEmployees(ctx)
	if err != nil {
		return nil, err
	}
	if employees == nil {
		employees = []models.Employee{}
	}
	r.employees = employees
	return employees, nil
}

// Projects returns all projects (useful for pickers).
func (r *Resolver) Projects(ctx context.Context) ([]models.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.projects != nil {
		return r.projects, nil
	}
	projects, err := r.src.AllProjects(ctx)
	if err != nil {
		return nil, err
	}
	if projects == nil {
		projects = []models.Project{}
	}
	r.projects = projects
	return projects, nil
}

// ClearCache clears the session cache.
func (r *Resolver) ClearCache() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.employees = nil
	r.projects = nil
}

// resolve performs name resolution in priority order:
// 1. Exact match (case-sensitive)
// 2. Case-insensitive match
// 3. Partial match (contains)
// Returns the single match if unambiguous, or all candidates if ambiguous.
func resolve[T any](input string, items []T, name func(T) string) (*T, []T) {
	inputLower := strings.ToLower(input)

	for i := range items {
		if name(items[i]) == input {
			return &items[i], nil
		}
	}

	var caseMatches []T
	for i := range items {
		if strings.ToLower(name(items[i])) == inputLower {
			caseMatches = append(caseMatches, items[i])
		}
	}
	if len(caseMatches) == 1 {
		return &caseMatches[0], nil
	}
	if len(caseMatches) > 1 {
		return nil, caseMatches
	}

	var partialMatches []T
	for i := range items {
		if strings.Contains(strings.ToLower(name(items[i])), inputLower) {
			partialMatches = append(partialMatches, items[i])
		}
	}
	if len(partialMatches) == 1 {
		return &partialMatches[0], nil
	}
	return nil, partialMatches
}

// suggest returns up to 3 suggestions for similar names.
func suggest[T any](input string, items []T, getName func(T) string) []string {
	inputLower := strings.ToLower(input)
	var suggestions []string

	for _, item := range items {
		name := getName(item)
		nameLower := strings.ToLower(name)

		commonLen := 0
		for i := 0; i < len(inputLower) && i < len(nameLower); i++ {
			if inputLower[i] != nameLower[i] {
				break
			}
			commonLen++
		}

		if commonLen >= 2 || containsWord(nameLower, inputLower) {
			suggestions = append(suggestions, name)
			if len(suggestions) >= 3 {
				break
			}
		}
	}

	return suggestions
}

// containsWord checks if haystack contains any word from needle.
func containsWord(haystack, needle string) bool {
	for _, word := range strings.Fields(needle) {
		if len(word) >= 2 && strings.Contains(haystack, word) {
			return true
		}
	}
	return false
}

func labels[T any](items []T, name func(T) string) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = name(item)
	}
	return out
}
