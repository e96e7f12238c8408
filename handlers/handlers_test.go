package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"html"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/secfolio/portfolio/analytics"
	"github.com/secfolio/portfolio/contact"
	"github.com/secfolio/portfolio/content"
	"github.com/secfolio/portfolio/feed"
	"github.com/secfolio/portfolio/github"
	"github.com/secfolio/portfolio/middleware"
	"github.com/secfolio/portfolio/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type staticFeed struct {
	projects []models.ProjectSummary
}

func (f staticFeed) Resolve(ctx context.Context) feed.State {
	return feed.State{Projects: f.projects}
}

type testServer struct {
	router   *gin.Engine
	sessions *contact.Sessions
	cookies  []*http.Cookie
}

func newTestServer(t *testing.T, deps Deps, delivery contact.Delivery) *testServer {
	t.Helper()
	if deps.Feed == nil {
		deps.Feed = staticFeed{}
	}
	if deps.ResetDelay == 0 {
		deps.ResetDelay = time.Second
	}
	logger := zaptest.NewLogger(t)
	deps.Logger = logger
	deps.Sessions = contact.NewSessions(time.Hour, func() *contact.Controller {
		return contact.NewController(delivery,
			contact.WithResetDelay(deps.ResetDelay),
			contact.WithLogger(logger))
	})
	r, err := SetupRouter(deps)
	require.NoError(t, err)
	return &testServer{router: r, sessions: deps.Sessions}
}

// do sends req with the cookies collected so far and keeps any new ones.
func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	for _, c := range s.cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	if cookies := w.Result().Cookies(); len(cookies) > 0 {
		s.cookies = cookies
	}
	return w
}

func (s *testServer) get(path string) *httptest.ResponseRecorder {
	return s.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (s *testServer) post(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return s.do(req)
}

// controller returns the form controller behind the current session cookie.
func (s *testServer) controller(t *testing.T) *contact.Controller {
	t.Helper()
	require.NotEmpty(t, s.cookies)
	ctl, ok := s.sessions.Lookup(s.cookies[0].Value)
	require.True(t, ok)
	return ctl
}

// startSession creates a form session up front, as an earlier post would.
func (s *testServer) startSession(t *testing.T) *contact.Controller {
	t.Helper()
	ctl, id := s.sessions.Get("")
	s.cookies = []*http.Cookie{{Name: sessionCookie, Value: id}}
	return ctl
}

// postAsync sends a form in the background with the current cookies.
func (s *testServer) postAsync(form url.Values) <-chan *httptest.ResponseRecorder {
	out := make(chan *httptest.ResponseRecorder, 1)
	cookies := s.cookies
	go func() {
		req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		for _, c := range cookies {
			req.AddCookie(c)
		}
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)
		out <- w
	}()
	return out
}

func validForm() url.Values {
	return url.Values{
		"name":    {"Ada Lovelace"},
		"email":   {"ada@example.com"},
		"message": {"Let's talk about pipelines."},
	}
}

func TestSetupRouter_RequiresDeps(t *testing.T) {
	_, err := SetupRouter(Deps{Sessions: contact.NewSessions(time.Minute, func() *contact.Controller { return contact.NewController(nil) })})
	assert.Error(t, err)

	_, err = SetupRouter(Deps{Feed: staticFeed{}})
	assert.Error(t, err)
}

func TestIndex(t *testing.T) {
	s := newTestServer(t, Deps{
		Links: content.Links{GitHub: "https://github.com/octo", LinkedIn: "https://linkedin.com/in/octo", Email: "octo@example.com"},
	}, nil)

	w := s.get("/")

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, content.HeroTitle)
	assert.Contains(t, body, `hx-get="/projects"`)
	assert.Equal(t, skeletonCards, strings.Count(body, `class="project-card skeleton"`))
	assert.Contains(t, body, "mailto:octo@example.com")
	assert.Contains(t, body, "https://github.com/octo")
	for _, skill := range content.Skills {
		assert.Contains(t, body, html.EscapeString(skill))
	}
	assert.Contains(t, body, `id="contact-form"`)
	assert.Empty(t, s.cookies, "viewing the page starts no session")
	assert.Zero(t, s.sessions.Len())
}

func TestContactSession_StartedByPost(t *testing.T) {
	s := newTestServer(t, Deps{}, contact.DeliveryFunc(func(ctx context.Context, sub contact.Submission) error {
		return nil
	}))

	s.get("/")
	s.get("/contact-form")
	assert.Zero(t, s.sessions.Len())

	s.post("/contact", validForm())
	require.Len(t, s.cookies, 1)
	assert.Equal(t, sessionCookie, s.cookies[0].Name)
	first := s.cookies[0].Value

	w := s.post("/contact", validForm())
	assert.Empty(t, w.Result().Cookies())
	assert.Equal(t, first, s.cookies[0].Value)
	assert.Equal(t, 1, s.sessions.Len())
}

func TestProjectsFragment_FromUpstream(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/octo/repos", r.URL.Path)
		assert.Equal(t, "stars", r.URL.Query().Get("sort"))
		assert.Equal(t, "6", r.URL.Query().Get("per_page"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id": 1, "name": "vault-ops", "description": "Secrets tooling", "html_url": "https://github.com/octo/vault-ops", "language": "Go", "stargazers_count": 5},
			{"id": 2, "name": "dotfiles", "description": null, "html_url": "https://github.com/octo/dotfiles", "language": null, "stargazers_count": 0}
		]`))
	}))
	defer upstream.Close()

	loader := feed.NewLoader(github.NewClient(upstream.URL, "", time.Second), feed.Config{Account: "octo"}, zaptest.NewLogger(t))
	s := newTestServer(t, Deps{Feed: loader}, nil)

	w := s.get("/projects")

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Equal(t, 2, strings.Count(body, `class="project-card"`))
	assert.Less(t, strings.Index(body, "vault-ops"), strings.Index(body, "dotfiles"))
	assert.Contains(t, body, "⭐ 5")
	assert.NotContains(t, body, "⭐ 0")
	assert.Contains(t, body, feed.NoDescription)
	assert.Contains(t, body, feed.NoLanguage)
	assert.Contains(t, body, `href="https://github.com/octo/dotfiles"`)
}

func TestProjectsFragment_UpstreamFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"API rate limit exceeded"}`, http.StatusForbidden)
	}))
	defer upstream.Close()

	loader := feed.NewLoader(github.NewClient(upstream.URL, "", time.Second), feed.Config{Account: "octo"}, zaptest.NewLogger(t))
	s := newTestServer(t, Deps{Feed: loader}, nil)

	w := s.get("/projects")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `class="project-grid"`)
	assert.NotContains(t, w.Body.String(), `class="project-card"`)
}

func TestListProjects(t *testing.T) {
	projects := []models.ProjectSummary{
		{ID: 7, Name: "scanner", Description: "SAST wrapper", URL: "https://github.com/octo/scanner", Language: "Go", Stars: 3},
		{ID: 8, Name: "notes", Description: feed.NoDescription, URL: "https://github.com/octo/notes", Language: feed.NoLanguage},
	}
	s := newTestServer(t, Deps{Feed: staticFeed{projects: projects}}, nil)

	w := s.get("/api/projects")

	require.Equal(t, http.StatusOK, w.Code)
	var got models.ProjectsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 2, got.Total)
	assert.Equal(t, projects, got.Projects)
}

func TestListProjects_Empty(t *testing.T) {
	s := newTestServer(t, Deps{Feed: staticFeed{projects: []models.ProjectSummary{}}}, nil)

	w := s.get("/api/projects")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"projects":[],"total":0}`, w.Body.String())
}

func TestContact_SubmitCycle(t *testing.T) {
	delivered := make(chan contact.Submission, 1)
	delivery := contact.DeliveryFunc(func(ctx context.Context, sub contact.Submission) error {
		delivered <- sub
		return nil
	})
	s := newTestServer(t, Deps{ResetDelay: 50 * time.Millisecond}, delivery)

	w := s.post("/contact", validForm())

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, contact.StatusSuccess.Message())
	assert.Contains(t, body, `hx-trigger="load delay:50ms"`)
	assert.NotContains(t, body, "Ada Lovelace")

	sub := <-delivered
	assert.Equal(t, "ada@example.com", sub.Fields.Email)

	ctl := s.controller(t)
	assert.Equal(t, contact.StatusSuccess, ctl.Status())
	assert.Equal(t, contact.Fields{}, ctl.Fields())

	require.Eventually(t, func() bool {
		return !strings.Contains(s.get("/contact-form").Body.String(), contact.StatusSuccess.Message())
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, contact.StatusIdle, ctl.Status())
}

func TestContact_Incomplete(t *testing.T) {
	tests := []struct {
		name string
		form url.Values
	}{
		{name: "missing name", form: url.Values{"email": {"a@b.c"}, "message": {"hi"}}},
		{name: "empty email", form: url.Values{"name": {"Ada"}, "email": {""}, "message": {"hi"}}},
		{name: "blank message", form: url.Values{"name": {"Ada"}, "email": {"a@b.c"}, "message": {"   "}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, Deps{}, contact.DeliveryFunc(func(ctx context.Context, sub contact.Submission) error {
				t.Error("incomplete form must not be delivered")
				return nil
			}))

			w := s.post("/contact", tt.form)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), problemIncomplete)
			ctl := s.controller(t)
			assert.Equal(t, contact.StatusIdle, ctl.Status())
			assert.Equal(t, contact.Fields{}, ctl.Fields())
			_, submitted := ctl.LastSubmission()
			assert.False(t, submitted)
		})
	}
}

func TestContact_DeliveryFailure(t *testing.T) {
	s := newTestServer(t, Deps{}, contact.DeliveryFunc(func(ctx context.Context, sub contact.Submission) error {
		return errors.New("relay unavailable")
	}))

	w := s.post("/contact", validForm())

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, contact.StatusError.Message())
	assert.Contains(t, body, `value="Ada Lovelace"`)
	assert.NotContains(t, body, "hx-trigger=\"load delay")
	assert.Equal(t, contact.StatusError, s.controller(t).Status())
}

func TestContact_SubmitWhileSending(t *testing.T) {
	release := make(chan struct{})
	var calls int
	s := newTestServer(t, Deps{}, contact.DeliveryFunc(func(ctx context.Context, sub contact.Submission) error {
		calls++
		<-release
		return nil
	}))
	ctl := s.startSession(t)

	first := s.postAsync(validForm())

	require.Eventually(t, func() bool { return ctl.Status() == contact.StatusSending }, time.Second, 5*time.Millisecond)

	page := s.get("/contact-form")
	assert.Contains(t, page.Body.String(), "Sending...")
	assert.Contains(t, page.Body.String(), `type="submit" disabled`)

	w := s.post("/contact", validForm())
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), problemInFlight)

	close(release)
	assert.Equal(t, http.StatusOK, (<-first).Code)
	assert.Equal(t, 1, calls)
	assert.Equal(t, contact.StatusSuccess, ctl.Status())
}

func TestContact_PostWhileSendingKeepsSentFields(t *testing.T) {
	release := make(chan struct{})
	s := newTestServer(t, Deps{}, contact.DeliveryFunc(func(ctx context.Context, sub contact.Submission) error {
		<-release
		return errors.New("relay unavailable")
	}))
	ctl := s.startSession(t)

	first := s.postAsync(validForm())
	require.Eventually(t, func() bool { return ctl.Status() == contact.StatusSending }, time.Second, 5*time.Millisecond)

	w := s.post("/contact", url.Values{
		"name":    {"Mallory"},
		"email":   {"m@example.com"},
		"message": {"something else"},
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.NotContains(t, w.Body.String(), "Mallory")

	close(release)
	failed := <-first
	require.Equal(t, http.StatusOK, failed.Code)
	assert.Contains(t, failed.Body.String(), contact.StatusError.Message())
	assert.Contains(t, failed.Body.String(), `value="Ada Lovelace"`)
	assert.NotContains(t, failed.Body.String(), "Mallory")

	assert.Equal(t, contact.StatusError, ctl.Status())
	assert.Equal(t, "Ada Lovelace", ctl.Fields().Name)
}

func TestContact_IncompleteEchoesInput(t *testing.T) {
	s := newTestServer(t, Deps{}, nil)

	w := s.post("/contact", url.Values{"name": {"Ada"}, "email": {"ada@example.com"}, "message": {" "}})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `value="Ada"`)
	assert.Equal(t, contact.Fields{}, s.controller(t).Fields())
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, Deps{}, nil)

	w := s.get("/health")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestStaticAssets(t *testing.T) {
	s := newTestServer(t, Deps{}, nil)

	w := s.get("/static/site.css")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), ".project-card")
}

func TestAdminStats(t *testing.T) {
	store, err := analytics.Open(context.Background(), filepath.Join(t.TempDir(), "visits.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	tracker := middleware.NewVisitTracker(store, analytics.NewHasherWithSalt([]byte("salt")), zaptest.NewLogger(t))
	s := newTestServer(t, Deps{
		Tracker:    tracker,
		Analytics:  store,
		AdminToken: "secret",
	}, nil)

	s.get("/")
	tracker.Wait()

	unauthorized := s.get("/admin/api/stats")
	assert.Equal(t, http.StatusUnauthorized, unauthorized.Code)

	req := httptest.NewRequest(http.MethodGet, "/admin/api/stats", nil)
	req.Header.Set("Authorization", "Bearer secret")
	w := s.do(req)
	require.Equal(t, http.StatusOK, w.Code)
	var stats analytics.Stats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, int64(1), stats.TotalVisits)
	assert.Equal(t, int64(1), stats.UniqueVisitors)
}

func TestAdminStats_DisabledWithoutToken(t *testing.T) {
	store, err := analytics.Open(context.Background(), filepath.Join(t.TempDir(), "visits.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	s := newTestServer(t, Deps{Analytics: store}, nil)

	w := s.get("/admin/api/stats")

	assert.Equal(t, http.StatusNotFound, w.Code)
}
