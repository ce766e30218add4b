package views

import "github.com/plannerhq/planner/internal/tui/workspace"

// Factory builds the view for a navigation target. It satisfies
// workspace.ViewFactory.
func Factory(target workspace.ViewTarget, session *workspace.Session, scope workspace.Scope) workspace.View {
	switch target {
	case workspace.ViewEmployees:
		return NewEmployees(session)
	case workspace.ViewProjects:
		return NewProjects(session)
	case workspace.ViewChat:
		return NewChat(session)
	case workspace.ViewEmployeeForm:
		return NewEmployeeForm(session, scope.EmployeeID)
	case workspace.ViewProjectForm:
		return NewProjectForm(session, scope.ProjectID)
	case workspace.ViewCellPicker:
		return NewCellPicker(session, scope)
	default:
		return NewPlanner(session)
	}
}
