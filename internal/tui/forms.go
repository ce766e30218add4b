package tui

import (
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/plannerhq/planner/internal/models"
)

// ConfirmDangerous asks before an irreversible action.
func ConfirmDangerous(message string) (bool, error) {
	var result bool
	err := huh.NewConfirm().
		Title(message).
		Description("This action cannot be undone.").
		Affirmative("Yes, I'm sure").
		Negative("Cancel").
		Value(&result).
		Run()
	if err != nil {
		return false, err
	}
	return result, nil
}

// EmployeeForm builds a form that edits p in place. Pre-filled values are
// shown for editing an existing employee.
func EmployeeForm(title string, p *models.EmployeeProperties) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Name").Value(&p.Name).Validate(MinLength(MinNameLength)),
			huh.NewInput().Title("Surname").Value(&p.Surname).Validate(MinLength(MinNameLength)),
			huh.NewInput().Title("Email").Placeholder("ada@example.com").Value(&p.Email).Validate(Email),
			huh.NewConfirm().Title("Works remotely?").Value(&p.WorksRemotely),
		).Title(title),
	)
}

// ProjectForm builds a form that edits p in place.
func ProjectForm(title string, p *models.ProjectProperties) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Name").Value(&p.Name).Validate(MinLength(MinNameLength)),
			huh.NewInput().Title("Color").Placeholder("#1a73e8").Value(&p.Color).Validate(Color),
			huh.NewConfirm().Title("Must be on premises?").Value(&p.MustBeOnPremises),
		).Title(title),
	)
}

// PromptEmployee runs EmployeeForm and returns the trimmed result.
func PromptEmployee(title string, initial models.EmployeeProperties) (models.EmployeeProperties, error) {
	p := initial
	if err := EmployeeForm(title, &p).Run(); err != nil {
		return initial, err
	}
	return TrimEmployee(p), nil
}

// PromptProject runs ProjectForm and returns the trimmed result.
func PromptProject(title string, initial models.ProjectProperties) (models.ProjectProperties, error) {
	p := initial
	if err := ProjectForm(title, &p).Run(); err != nil {
		return initial, err
	}
	return TrimProject(p), nil
}

func TrimEmployee(p models.EmployeeProperties) models.EmployeeProperties {
	p.Name = strings.TrimSpace(p.Name)
	p.Surname = strings.TrimSpace(p.Surname)
	p.Email = strings.TrimSpace(p.Email)
	return p
}

func TrimProject(p models.ProjectProperties) models.ProjectProperties {
	p.Name = strings.TrimSpace(p.Name)
	p.Color = strings.ToLower(strings.TrimSpace(p.Color))
	return p
}
