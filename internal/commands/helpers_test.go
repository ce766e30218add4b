package commands_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/plannerhq/planner/internal/appctx"
	"github.com/plannerhq/planner/internal/auth"
	"github.com/plannerhq/planner/internal/cli"
	"github.com/plannerhq/planner/internal/models"
	"github.com/plannerhq/planner/internal/output"
)

// backend is an in-memory planner API.
type backend struct {
	mu          sync.Mutex
	employees   []models.Employee
	projects    []models.Project
	assignments []models.Assignment
	user        models.User
	failChat    bool
	requests    []string
	seq         int
}

func newBackend() *backend {
	return &backend{
		employees: []models.Employee{
			{ID: "e1", Name: "Ada", Surname: "Lovelace", Email: "ada@example.com"},
			{ID: "e2", Name: "Grace", Surname: "Hopper", Email: "grace@example.com", WorksRemotely: true},
		},
		projects: []models.Project{
			{ID: "p1", Name: "Apollo", Color: "#1a73e8"},
			{ID: "p2", Name: "Gemini", Color: "#ff8800", MustBeOnPremises: true},
		},
		assignments: []models.Assignment{
			{ID: "a1", EmployeeID: "e1", ProjectID: "p1", Date: models.NewDate(2024, time.March, 4)},
			{ID: "a2", EmployeeID: "e2", ProjectID: "p2", Date: models.NewDate(2024, time.March, 5)},
			{ID: "a3", EmployeeID: "e1", ProjectID: "p2", Date: models.NewDate(2024, time.March, 12)},
		},
		user: models.User{ID: "u1", Name: "Planner", Email: "planner@example.com", Language: models.LanguageDE},
	}
}

func (b *backend) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/employees", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, paginate(b.employees, r))
	})
	mux.HandleFunc("POST /api/employees", func(w http.ResponseWriter, r *http.Request) {
		var p models.EmployeeProperties
		decode(w, r, &p)
		e := models.Employee{ID: b.nextID("e"), Name: p.Name, Surname: p.Surname, Email: p.Email, WorksRemotely: p.WorksRemotely}
		b.employees = append(b.employees, e)
		writeJSON(w, e)
	})
	mux.HandleFunc("PUT /api/employees/{id}", func(w http.ResponseWriter, r *http.Request) {
		i := slices.IndexFunc(b.employees, func(e models.Employee) bool { return e.ID == r.PathValue("id") })
		if i < 0 {
			http.NotFound(w, r)
			return
		}
		var p models.EmployeeProperties
		decode(w, r, &p)
		b.employees[i] = models.Employee{ID: b.employees[i].ID, Name: p.Name, Surname: p.Surname, Email: p.Email, WorksRemotely: p.WorksRemotely}
		writeJSON(w, b.employees[i])
	})
	mux.HandleFunc("DELETE /api/employees/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.employees = slices.DeleteFunc(b.employees, func(e models.Employee) bool { return e.ID == r.PathValue("id") })
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("GET /api/projects", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, paginate(b.projects, r))
	})
	mux.HandleFunc("POST /api/projects", func(w http.ResponseWriter, r *http.Request) {
		var p models.ProjectProperties
		decode(w, r, &p)
		proj := models.Project{ID: b.nextID("p"), Name: p.Name, Color: p.Color, MustBeOnPremises: p.MustBeOnPremises}
		b.projects = append(b.projects, proj)
		writeJSON(w, proj)
	})
	mux.HandleFunc("PUT /api/projects/{id}", func(w http.ResponseWriter, r *http.Request) {
		i := slices.IndexFunc(b.projects, func(p models.Project) bool { return p.ID == r.PathValue("id") })
		if i < 0 {
			http.NotFound(w, r)
			return
		}
		var p models.ProjectProperties
		decode(w, r, &p)
		b.projects[i] = models.Project{ID: b.projects[i].ID, Name: p.Name, Color: p.Color, MustBeOnPremises: p.MustBeOnPremises}
		writeJSON(w, b.projects[i])
	})
	mux.HandleFunc("DELETE /api/projects/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.projects = slices.DeleteFunc(b.projects, func(p models.Project) bool { return p.ID == r.PathValue("id") })
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("GET /api/assignments", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		start, _ := models.ParseDate(q.Get("startDate"))
		end, _ := models.ParseDate(q.Get("endDate"))
		list := []models.Assignment{}
		for _, a := range b.assignments {
			if a.Date.Before(start) || end.Before(a.Date) {
				continue
			}
			if id := q.Get("employeeId"); id != "" && a.EmployeeID != id {
				continue
			}
			if id := q.Get("projectId"); id != "" && a.ProjectID != id {
				continue
			}
			list = append(list, a)
		}
		writeJSON(w, list)
	})
	mux.HandleFunc("POST /api/assignments", func(w http.ResponseWriter, r *http.Request) {
		var p models.AssignmentProperties
		decode(w, r, &p)
		a := models.Assignment{ID: b.nextID("a"), EmployeeID: p.EmployeeID, ProjectID: p.ProjectID, Date: p.Date}
		b.assignments = append(b.assignments, a)
		writeJSON(w, a)
	})
	mux.HandleFunc("DELETE /api/assignments/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.assignments = slices.DeleteFunc(b.assignments, func(a models.Assignment) bool { return a.ID == r.PathValue("id") })
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("POST /api/chat", func(w http.ResponseWriter, r *http.Request) {
		if b.failChat {
			http.Error(w, "assistant unavailable", http.StatusBadGateway)
			return
		}
		var m models.ChatMessage
		decode(w, r, &m)
		writeJSON(w, models.ChatReply{ID: "r1", Message: "You asked: " + m.Message, Timestamp: time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)})
	})

	mux.HandleFunc("GET /api/user", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, b.user)
	})
	mux.HandleFunc("PUT /api/user/language", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Language models.Language `json:"language"`
		}
		decode(w, r, &body)
		b.user.Language = body.Language
		w.WriteHeader(http.StatusNoContent)
	})

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.requests = append(b.requests, r.Method+" "+r.URL.Path)
		mux.ServeHTTP(w, r)
	})
}

func (b *backend) nextID(prefix string) string {
	b.seq++
	return prefix + "-new-" + strconv.Itoa(b.seq)
}

// sent reports how often method and path were requested.
func (b *backend) sent(request string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, r := range b.requests {
		if r == request {
			n++
		}
	}
	return n
}

func paginate[T any](items []T, r *http.Request) models.PagedResponse[T] {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	size, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
	if size <= 0 {
		size = 5
	}
	start := min(page*size, len(items))
	end := min(start+size, len(items))
	return models.PagedResponse[T]{
		Results:     slices.Clone(items[start:end]),
		TotalItems:  len(items),
		TotalPages:  (len(items) + size - 1) / size,
		PageSize:    size,
		CurrentPage: page,
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// envelope is the decoded --json output.
type envelope struct {
	OK          bool                `json:"ok"`
	Data        json.RawMessage     `json:"data"`
	Summary     string              `json:"summary"`
	Breadcrumbs []output.Breadcrumb `json:"breadcrumbs"`
	Meta        map[string]any      `json:"meta"`
}

// testEnv isolates config and credentials and points the CLI at b.
type testEnv struct {
	backend *backend
	url     string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	b := newBackend()
	srv := httptest.NewServer(b.handler())
	t.Cleanup(srv.Close)

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("PLANNER_NO_KEYRING", "1")
	t.Setenv(auth.TokenEnv, "test-token")
	t.Setenv(appctx.DebugEnv, "")
	t.Setenv("PLANNER_LOCALE", "en-US")
	return &testEnv{backend: b, url: srv.URL}
}

// run executes the CLI against the test backend and returns stdout.
func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := cli.NewRootCmd()
	cli.AddCommands(root)

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetIn(&bytes.Buffer{})
	root.SetArgs(append(args, "--base-url", e.url))
	err := root.Execute()
	return out.String(), err
}

// runJSON runs args with --json and decodes the envelope.
func (e *testEnv) runJSON(t *testing.T, args ...string) envelope {
	t.Helper()
	out, err := e.run(t, append(args, "--json")...)
	require.NoError(t, err, out)

	var env envelope
	require.NoError(t, json.Unmarshal([]byte(out), &env), out)
	require.True(t, env.OK)
	return env
}

func dataAs[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v), string(env.Data))
	return v
}
