// Package effects turns request actions into gateway calls and reports the
// outcomes back to the store as follow-up actions.
package effects

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/plannerhq/planner/internal/i18n"
	"github.com/plannerhq/planner/internal/models"
	"github.com/plannerhq/planner/internal/state"
)

// Gateway is the backend surface the coordinator needs.
// gateway.Client implements it.
type Gateway interface {
	GetEmployees(ctx context.Context, req models.PagedRequest) (models.EmployeePage, error)
	CreateEmployee(ctx context.Context, props models.EmployeeProperties) (models.Employee, error)
	UpdateEmployee(ctx context.Context, id string, props models.EmployeeProperties) (models.Employee, error)
	RemoveEmployee(ctx context.Context, id string) error

	GetProjects(ctx context.Context, req models.PagedRequest) (models.ProjectPage, error)
	CreateProject(ctx context.Context, props models.ProjectProperties) (models.Project, error)
	UpdateProject(ctx context.Context, id string, props models.ProjectProperties) (models.Project, error)
	RemoveProject(ctx context.Context, id string) error

	GetAssignments(ctx context.Context, req models.AssignmentRequest) ([]models.Assignment, error)
	CreateAssignment(ctx context.Context, props models.AssignmentProperties) (models.Assignment, error)
	RemoveAssignment(ctx context.Context, id string) error

	SendBotMessage(ctx context.Context, msg models.ChatMessage) (models.ChatReply, error)
}

// Notifier shows transient error messages to the user.
type Notifier interface {
	Error(message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(message string)

func (f NotifierFunc) Error(message string) { f(message) }

// Options configures a Coordinator.
type Options struct {
	Gateway  Gateway
	Notifier Notifier
	Location Location
	Locale   i18n.Locale
	Logger   *slog.Logger

	// OnFailure sees the underlying gateway error before it is collapsed
	// into a NetworkError.
	OnFailure func(a state.Action, err error)

	// Now and NewID default to time.Now and uuid.NewString.
	Now   func() time.Time
	NewID func() string
}

// Coordinator implements store.Effect. Gateway calls run on their own
// goroutine each; nothing is cancelled or deduplicated, so when two loads of
// the same list overlap the later response wins regardless of request order.
type Coordinator struct {
	gw       Gateway
	notifier Notifier
	location Location
	locale   i18n.Locale
	log      *slog.Logger
	onFail   func(state.Action, error)
	now      func() time.Time
	newID    func() string

	wg sync.WaitGroup
}

// New builds a coordinator. Gateway is required.
func New(opts Options) *Coordinator {
	c := &Coordinator{
		gw:       opts.Gateway,
		notifier: opts.Notifier,
		location: opts.Location,
		locale:   opts.Locale,
		log:      opts.Logger,
		onFail:   opts.OnFailure,
		now:      opts.Now,
		newID:    opts.NewID,
	}
	if c.notifier == nil {
		c.notifier = NotifierFunc(func(string) {})
	}
	if c.location == nil {
		c.location = NewMemoryLocation("")
	}
	if c.log == nil {
		c.log = slog.New(slog.DiscardHandler)
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.newID == nil {
		c.newID = uuid.NewString
	}
	return c
}

// Wait blocks until every gateway call started so far has reported back.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

// Handle reacts to a reduced action. s is the snapshot after reduction.
func (c *Coordinator) Handle(ctx context.Context, a state.Action, s *state.State, dispatch func(state.Action)) {
	switch a := a.(type) {
	case state.SetUser:
		dispatch(c.reconcileLocale(a.User))
	case state.NetworkError:
		c.notifier.Error(a.Message)

	case state.LoadEmployees:
		c.spawn(ctx, a, dispatch, func(ctx context.Context) state.Action {
			page, err := c.gw.GetEmployees(ctx, a.Request)
			if err != nil {
				return c.failed(a, err, i18n.ErrLoadEmployees)
			}
			return state.LoadEmployeesDone{Employees: page}
		})
	case state.CreateEmployee:
		req := s.EmployeeRequest
		c.spawn(ctx, a, dispatch, func(ctx context.Context) state.Action {
			if _, err := c.gw.CreateEmployee(ctx, a.Properties); err != nil {
				return c.failed(a, err, i18n.ErrCreateEmployee)
			}
			return state.LoadEmployees{Request: req}
		})
	case state.UpdateEmployee:
		c.spawn(ctx, a, dispatch, func(ctx context.Context) state.Action {
			e, err := c.gw.UpdateEmployee(ctx, a.ID, a.Properties)
			if err != nil {
				return c.failed(a, err, i18n.ErrUpdateEmployee)
			}
			return state.AddOrUpdateEmployee{Employee: e}
		})
	case state.RemoveEmployee:
		req := s.EmployeeRequest
		c.spawn(ctx, a, dispatch, func(ctx context.Context) state.Action {
			if err := c.gw.RemoveEmployee(ctx, a.ID); err != nil {
				return c.failed(a, err, i18n.ErrRemoveEmployee)
			}
			return state.LoadEmployees{Request: req}
		})

	case state.LoadProjects:
		c.spawn(ctx, a, dispatch, func(ctx context.Context) state.Action {
			page, err := c.gw.GetProjects(ctx, a.Request)
			if err != nil {
				return c.failed(a, err, i18n.ErrLoadProjects)
			}
			return state.LoadProjectsDone{Projects: page}
		})
	case state.CreateProject:
		req := s.ProjectRequest
		c.spawn(ctx, a, dispatch, func(ctx context.Context) state.Action {
			if _, err := c.gw.CreateProject(ctx, a.Properties); err != nil {
				return c.failed(a, err, i18n.ErrCreateProject)
			}
			return state.LoadProjects{Request: req}
		})
	case state.UpdateProject:
		c.spawn(ctx, a, dispatch, func(ctx context.Context) state.Action {
			p, err := c.gw.UpdateProject(ctx, a.ID, a.Properties)
			if err != nil {
				return c.failed(a, err, i18n.ErrUpdateProject)
			}
			return state.AddOrUpdateProject{Project: p}
		})
	case state.RemoveProject:
		req := s.ProjectRequest
		c.spawn(ctx, a, dispatch, func(ctx context.Context) state.Action {
			if err := c.gw.RemoveProject(ctx, a.ID); err != nil {
				return c.failed(a, err, i18n.ErrRemoveProject)
			}
			return state.LoadProjects{Request: req}
		})

	case state.LoadAssignments:
		c.spawn(ctx, a, dispatch, func(ctx context.Context) state.Action {
			list, err := c.gw.GetAssignments(ctx, a.Request)
			if err != nil {
				return c.failed(a, err, i18n.ErrLoadAssignments)
			}
			return state.LoadAssignmentsDone{Assignments: list}
		})
	case state.CreateAssignment:
		c.spawn(ctx, a, dispatch, func(ctx context.Context) state.Action {
			created, err := c.gw.CreateAssignment(ctx, a.Properties)
			if err != nil {
				return c.failed(a, err, i18n.ErrCreateAssignment)
			}
			return state.AddOrUpdateAssignment{Assignment: created}
		})
	case state.DeleteAssignment:
		c.spawn(ctx, a, dispatch, func(ctx context.Context) state.Action {
			if err := c.gw.RemoveAssignment(ctx, a.ID); err != nil {
				return c.failed(a, err, i18n.ErrDeleteAssignment)
			}
			return state.RemoveAssignmentFromState{ID: a.ID}
		})

	case state.SendBotMessage:
		c.spawn(ctx, a, dispatch, func(ctx context.Context) state.Action {
			reply, err := c.gw.SendBotMessage(ctx, a.Message)
			if err != nil {
				c.log.WarnContext(ctx, "chat request failed", "error", err)
				return state.SendBotMessageDone{Reply: models.ChatReply{
					ID:        c.newID(),
					Message:   c.locale.T(i18n.ChatFallback),
					Sender:    models.SenderBot,
					Timestamp: c.now(),
				}}
			}
			return state.SendBotMessageDone{Reply: reply}
		})
	}
}

func (c *Coordinator) spawn(ctx context.Context, a state.Action, dispatch func(state.Action), call func(context.Context) state.Action) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		start := time.Now()
		next := call(ctx)
		c.log.DebugContext(ctx, "effect finished", "action", a.Kind(), "result", next.Kind(), "duration", time.Since(start))
		dispatch(next)
	}()
}

func (c *Coordinator) failed(a state.Action, err error, key i18n.Key) state.Action {
	c.log.Warn("gateway call failed", "action", a.Kind(), "error", err)
	if c.onFail != nil {
		c.onFail(a, err)
	}
	return state.NetworkError{Message: c.locale.T(key)}
}

// reconcileLocale moves the location to the user's language segment when
// the active locale does not already carry it.
func (c *Coordinator) reconcileLocale(user *models.User) state.Action {
	lang := models.LanguageDE
	if user != nil && user.Language != "" {
		lang = user.Language
	}
	userLocale := lang.Locale()

	if c.locale.Contains(userLocale) {
		c.log.Info("user locale present in current locale", "user_locale", userLocale, "locale", c.locale.String())
		return state.SetUserRedirectDone{}
	}

	current := "/" + c.locale.Language() + "/"
	if href := c.location.Href(); strings.Contains(href, current) {
		next := strings.Replace(href, current, "/"+userLocale+"/", 1)
		c.log.Info("replacing locale", "from", c.locale.Language(), "to", userLocale, "href", href)
		c.location.Assign(next)
	}
	c.log.Info("done redirecting for user locale", "user_locale", userLocale, "href", c.location.Href())
	return state.SetUserRedirectDone{}
}
