package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/secfolio/portfolio/github"
	"github.com/secfolio/portfolio/models"
)

type fakeSource struct {
	mu      sync.Mutex
	records []json.RawMessage
	err     error

	calls   int
	gotUser string
	gotOpts github.ListOptions
}

func (f *fakeSource) ListUserRepos(ctx context.Context, user string, opts github.ListOptions) ([]json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.gotUser = user
	f.gotOpts = opts
	return f.records, f.err
}

func rawRecords(t *testing.T, body string) []json.RawMessage {
	t.Helper()
	var records []json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(body), &records))
	return records
}

func repoJSON(id int, stars int) string {
	return fmt.Sprintf(`{"id":%d,"name":"repo-%d","description":"d%d","html_url":"https://example.com/%d","language":"Go","stargazers_count":%d}`,
		id, id, id, id, stars)
}

func TestLoad_NullFieldsScenario(t *testing.T) {
	src := &fakeSource{records: rawRecords(t,
		`[{"id":1,"name":"proj","description":null,"html_url":"https://x","language":null,"stargazers_count":0}]`)}
	loader := NewLoader(src, Config{Account: "octocat"}, zaptest.NewLogger(t))

	got := loader.Load(context.Background())

	want := []models.ProjectSummary{{
		ID:          1,
		Name:        "proj",
		Description: "No description provided",
		URL:         "https://x",
		Language:    "N/A",
		Stars:       0,
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
	assert.False(t, got[0].ShowStars())
}

func TestLoad_RequestShape(t *testing.T) {
	src := &fakeSource{records: rawRecords(t, `[]`)}
	loader := NewLoader(src, Config{Account: "octocat"}, nil)

	loader.Load(context.Background())

	assert.Equal(t, 1, src.calls)
	assert.Equal(t, "octocat", src.gotUser)
	assert.Equal(t, github.ListOptions{Sort: "stars", PerPage: 6}, src.gotOpts)
}

func TestLoad_PreservesCountAndOrder(t *testing.T) {
	for n := 0; n <= DefaultPerPage; n++ {
		t.Run(fmt.Sprintf("%d records", n), func(t *testing.T) {
			body := "["
			for i := 0; i < n; i++ {
				if i > 0 {
					body += ","
				}
				// Upstream order is deliberately not sorted by stars.
				body += repoJSON(i+1, (i*7)%5)
			}
			body += "]"

			loader := NewLoader(&fakeSource{records: rawRecords(t, body)}, Config{Account: "octocat"}, nil)
			got := loader.Load(context.Background())

			require.NotNil(t, got)
			require.Len(t, got, n)
			for i, p := range got {
				assert.Equal(t, int64(i+1), p.ID)
				assert.Equal(t, (i*7)%5, p.Stars)
			}
		})
	}
}

func TestLoad_Placeholders(t *testing.T) {
	tests := []struct {
		name     string
		record   string
		wantDesc string
		wantLang string
	}{
		{
			name:     "both present",
			record:   `{"id":1,"name":"a","description":"hello","html_url":"u","language":"Rust","stargazers_count":3}`,
			wantDesc: "hello",
			wantLang: "Rust",
		},
		{
			name:     "both null",
			record:   `{"id":1,"name":"a","description":null,"html_url":"u","language":null,"stargazers_count":3}`,
			wantDesc: NoDescription,
			wantLang: NoLanguage,
		},
		{
			name:     "both absent",
			record:   `{"id":1,"name":"a","html_url":"u","stargazers_count":3}`,
			wantDesc: NoDescription,
			wantLang: NoLanguage,
		},
		{
			name:     "empty strings",
			record:   `{"id":1,"name":"a","description":"","html_url":"u","language":"","stargazers_count":3}`,
			wantDesc: NoDescription,
			wantLang: NoLanguage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Summarize(json.RawMessage(tt.record))
			require.NoError(t, err)
			assert.Equal(t, tt.wantDesc, p.Description)
			assert.Equal(t, tt.wantLang, p.Language)
		})
	}
}

func TestSummarize_Malformed(t *testing.T) {
	tests := []struct {
		name   string
		record string
		errMsg string
	}{
		{name: "not an object", record: `"repo"`, errMsg: "decode"},
		{name: "null record", record: `null`, errMsg: "missing id"},
		{name: "missing id", record: `{"name":"a","html_url":"u","stargazers_count":1}`, errMsg: "missing id"},
		{name: "missing name", record: `{"id":1,"html_url":"u","stargazers_count":1}`, errMsg: "missing name"},
		{name: "missing url", record: `{"id":1,"name":"a","stargazers_count":1}`, errMsg: "missing html_url"},
		{name: "missing stars", record: `{"id":1,"name":"a","html_url":"u"}`, errMsg: "missing stargazers_count"},
		{name: "negative stars", record: `{"id":1,"name":"a","html_url":"u","stargazers_count":-2}`, errMsg: "negative"},
		{name: "wrong id type", record: `{"id":"one","name":"a","html_url":"u","stargazers_count":1}`, errMsg: "decode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Summarize(json.RawMessage(tt.record))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoad_SkipsMalformedRecords(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	src := &fakeSource{records: rawRecords(t, "["+
		repoJSON(1, 5)+`,`+
		`{"name":"no-id","html_url":"u","stargazers_count":1}`+`,`+
		repoJSON(3, 0)+"]")}
	loader := NewLoader(src, Config{Account: "octocat"}, zap.New(core))

	got := loader.Load(context.Background())

	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, int64(3), got[1].ID)

	skipped := logs.FilterMessage("skipping repository record").All()
	require.Len(t, skipped, 1)
	assert.Equal(t, zapcore.WarnLevel, skipped[0].Level)
	assert.Contains(t, skipped[0].ContextMap()["error"], "index 1")
}

func TestLoad_FailureYieldsEmpty(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "http 500", err: &github.APIError{StatusCode: 500, Body: "boom"}},
		{name: "transport", err: errors.New("dial tcp: connection refused")},
		{name: "timeout", err: context.DeadlineExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			loader := NewLoader(&fakeSource{err: tt.err}, Config{Account: "octocat"}, zap.New(core))

			var got []models.ProjectSummary
			require.NotPanics(t, func() { got = loader.Load(context.Background()) })

			assert.NotNil(t, got)
			assert.Empty(t, got)
			assert.Equal(t, 1, logs.FilterMessage("fetching projects failed").Len())
		})
	}
}

func TestLoad_NoCachingBetweenActivations(t *testing.T) {
	src := &fakeSource{records: rawRecords(t, "["+repoJSON(1, 1)+"]")}
	loader := NewLoader(src, Config{Account: "octocat"}, nil)

	loader.Load(context.Background())
	loader.Load(context.Background())

	assert.Equal(t, 2, src.calls)
}

func TestResolve_Settled(t *testing.T) {
	loader := NewLoader(&fakeSource{records: rawRecords(t, "["+repoJSON(7, 2)+"]")}, Config{Account: "octocat"}, nil)

	state := loader.Resolve(context.Background())

	assert.False(t, state.Loading)
	assert.False(t, state.Empty())
	require.Len(t, state.Projects, 1)
	assert.True(t, state.Projects[0].ShowStars())
}

func TestPending(t *testing.T) {
	p := Pending()
	assert.True(t, p.Loading)
	assert.Empty(t, p.Projects)
	assert.False(t, p.Empty())
}
