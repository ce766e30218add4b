// Package models provides canonical type definitions for planner API entities.
// These types are shared by the gateway, the state container and the CLI.
package models

import (
	"strings"
	"time"
)

// Language is a user's preferred UI language as sent by the backend.
type Language string

const (
	LanguageDE Language = "DE"
	LanguageEN Language = "EN"
	LanguageFR Language = "FR"
	LanguageIT Language = "IT"
)

// Languages lists the supported languages in display order.
var Languages = []Language{LanguageDE, LanguageEN, LanguageFR, LanguageIT}

// ParseLanguage accepts "de", "DE", "de-CH" and similar forms.
func ParseLanguage(s string) (Language, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) > 2 {
		s = s[:2]
	}
	for _, l := range Languages {
		if string(l) == s {
			return l, true
		}
	}
	return "", false
}

// Locale returns the lower-case locale segment, e.g. "de".
func (l Language) Locale() string {
	return strings.ToLower(string(l))
}

// User is the authenticated planner user.
type User struct {
	ID       string   `json:"id"`
	Email    string   `json:"email,omitempty"`
	Name     string   `json:"name,omitempty"`
	Language Language `json:"language,omitempty"`
}

// EmployeeProperties is the create/update input for an employee.
type EmployeeProperties struct {
	Name          string `json:"name"`
	Surname       string `json:"surname"`
	Email         string `json:"email"`
	WorksRemotely bool   `json:"worksRemotely"`
}

// Employee is a schedulable person.
type Employee struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Surname       string `json:"surname"`
	Email         string `json:"email"`
	WorksRemotely bool   `json:"worksRemotely"`
}

// Properties returns the editable fields of the employee.
func (e Employee) Properties() EmployeeProperties {
	return EmployeeProperties{Name: e.Name, Surname: e.Surname, Email: e.Email, WorksRemotely: e.WorksRemotely}
}

// FullName joins name and surname.
func (e Employee) FullName() string {
	return strings.TrimSpace(e.Name + " " + e.Surname)
}

// ProjectProperties is the create/update input for a project.
type ProjectProperties struct {
	Name             string `json:"name"`
	Color            string `json:"color"`
	MustBeOnPremises bool   `json:"mustBeOnPremises"`
}

// Project is something employees get assigned to.
type Project struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Color            string `json:"color"`
	MustBeOnPremises bool   `json:"mustBeOnPremises"`
}

// Properties returns the editable fields of the project.
func (p Project) Properties() ProjectProperties {
	return ProjectProperties{Name: p.Name, Color: p.Color, MustBeOnPremises: p.MustBeOnPremises}
}

// AssignmentProperties is the create input for an assignment.
type AssignmentProperties struct {
	EmployeeID string `json:"employeeId"`
	ProjectID  string `json:"projectId"`
	Date       Date   `json:"date"`
}

// Assignment places one employee on one project for one day.
type Assignment struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employeeId"`
	ProjectID  string `json:"projectId"`
	Date       Date   `json:"date"`
}

// AssignmentRequest is a range query over assignments. Both bounds are inclusive.
type AssignmentRequest struct {
	StartDate  Date   `json:"startDate"`
	EndDate    Date   `json:"endDate"`
	EmployeeID string `json:"employeeId,omitempty"`
	ProjectID  string `json:"projectId,omitempty"`
}

// Sender identifies the author of a chat message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// ChatMessage is one entry of the assistant transcript.
type ChatMessage struct {
	Message   string    `json:"message"`
	Sender    Sender    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatReply is the assistant's answer as returned by the backend.
type ChatReply struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Sender    Sender    `json:"sender,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// PagedRequest selects one page of a collection. Page is zero-based.
type PagedRequest struct {
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}

// PagedResponse is one page of a collection. CurrentPage is one-based.
type PagedResponse[T any] struct {
	Results     []T `json:"results"`
	TotalItems  int `json:"totalItems"`
	TotalPages  int `json:"totalPages"`
	PageSize    int `json:"pageSize"`
	CurrentPage int `json:"currentPage"`
}

// EmployeePage is a page of employees.
type EmployeePage = PagedResponse[Employee]

// ProjectPage is a page of projects.
type ProjectPage = PagedResponse[Project]
