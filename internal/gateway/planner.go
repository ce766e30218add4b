package gateway

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/plannerhq/planner/internal/models"
	"github.com/plannerhq/planner/internal/observability"
)

func op(resource, operation string, mutation bool) observability.OperationInfo {
	return observability.OperationInfo{Resource: resource, Operation: operation, IsMutation: mutation}
}

func pageQuery(req models.PagedRequest) url.Values {
	return url.Values{
		"page":     {strconv.Itoa(req.Page)},
		"pageSize": {strconv.Itoa(req.PageSize)},
	}
}

// GetEmployees fetches one page of employees.
func (c *Client) GetEmployees(ctx context.Context, req models.PagedRequest) (models.EmployeePage, error) {
	var page models.EmployeePage
	err := c.call(ctx, op("Employees", "List", false), http.MethodGet, "/api/employees", pageQuery(req), nil, &page)
	return page, err
}

func (c *Client) CreateEmployee(ctx context.Context, props models.EmployeeProperties) (models.Employee, error) {
	var e models.Employee
	err := c.call(ctx, op("Employees", "Create", true), http.MethodPost, "/api/employees", nil, props, &e)
	return e, err
}

func (c *Client) UpdateEmployee(ctx context.Context, id string, props models.EmployeeProperties) (models.Employee, error) {
	var e models.Employee
	err := c.call(ctx, op("Employees", "Update", true), http.MethodPut, "/api/employees/"+url.PathEscape(id), nil, props, &e)
	return e, err
}

func (c *Client) RemoveEmployee(ctx context.Context, id string) error {
	return c.call(ctx, op("Employees", "Remove", true), http.MethodDelete, "/api/employees/"+url.PathEscape(id), nil, nil, nil)
}

// GetProjects fetches one page of projects.
func (c *Client) GetProjects(ctx context.Context, req models.PagedRequest) (models.ProjectPage, error) {
	var page models.ProjectPage
	err := c.call(ctx, op("Projects", "List", false), http.MethodGet, "/api/projects", pageQuery(req), nil, &page)
	return page, err
}

func (c *Client) CreateProject(ctx context.Context, props models.ProjectProperties) (models.Project, error) {
	var p models.Project
	err := c.call(ctx, op("Projects", "Create", true), http.MethodPost, "/api/projects", nil, props, &p)
	return p, err
}

func (c *Client) UpdateProject(ctx context.Context, id string, props models.ProjectProperties) (models.Project, error) {
	var p models.Project
	err := c.call(ctx, op("Projects", "Update", true), http.MethodPut, "/api/projects/"+url.PathEscape(id), nil, props, &p)
	return p, err
}

func (c *Client) RemoveProject(ctx context.Context, id string) error {
	return c.call(ctx, op("Projects", "Remove", true), http.MethodDelete, "/api/projects/"+url.PathEscape(id), nil, nil, nil)
}

// GetAssignments lists assignments in the inclusive date range, optionally
// narrowed to one employee or project.
func (c *Client) GetAssignments(ctx context.Context, req models.AssignmentRequest) ([]models.Assignment, error) {
	q := url.Values{
		"startDate": {req.StartDate.String()},
		"endDate":   {req.EndDate.String()},
	}
	if req.EmployeeID != "" {
		q.Set("employeeId", req.EmployeeID)
	}
	if req.ProjectID != "" {
		q.Set("projectId", req.ProjectID)
	}
	var list []models.Assignment
	if err := c.call(ctx, op("Assignments", "List", false), http.MethodGet, "/api/assignments", q, nil, &list); err != nil {
		return nil, err
	}
	if list == nil {
		list = []models.Assignment{}
	}
	return list, nil
}

func (c *Client) CreateAssignment(ctx context.Context, props models.AssignmentProperties) (models.Assignment, error) {
	var a models.Assignment
	err := c.call(ctx, op("Assignments", "Create", true), http.MethodPost, "/api/assignments", nil, props, &a)
	return a, err
}

func (c *Client) RemoveAssignment(ctx context.Context, id string) error {
	return c.call(ctx, op("Assignments", "Remove", true), http.MethodDelete, "/api/assignments/"+url.PathEscape(id), nil, nil, nil)
}

// SendBotMessage posts a chat message and returns the assistant's reply.
// The backend omits the sender, so replies are attributed to the bot.
func (c *Client) SendBotMessage(ctx context.Context, msg models.ChatMessage) (models.ChatReply, error) {
	var reply models.ChatReply
	if err := c.call(ctx, op("Chat", "Send", false), http.MethodPost, "/api/chat", nil, msg, &reply); err != nil {
		return models.ChatReply{}, err
	}
	if reply.Sender == "" {
		reply.Sender = models.SenderBot
	}
	return reply, nil
}

// GetCurrentUser returns the authenticated user.
func (c *Client) GetCurrentUser(ctx context.Context) (models.User, error) {
	var u models.User
	err := c.call(ctx, op("User", "Get", false), http.MethodGet, "/api/user", nil, nil, &u)
	return u, err
}

// PutLanguage stores the user's preferred language. The backend answers
// without a body.
func (c *Client) PutLanguage(ctx context.Context, lang models.Language) error {
	body := struct {
		Language models.Language `json:"language"`
	}{lang}
	return c.call(ctx, op("User", "SetLanguage", true), http.MethodPut, "/api/user/language", nil, body, nil)
}
