package github

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/tlscope/internal/core/domain"
)

// fakeRepo serves the subset of the GitHub API the source uses for a
// repository acme/schema with a schemes/ directory on master.
type fakeRepo struct {
	files   map[string]string    // name in schemes/ -> content
	dates   map[string]time.Time // path -> last commit date
	calls   atomic.Int32
	noPath  bool
	headSHA string
}

func (f *fakeRepo) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/repos/acme/schema/commits", func(w http.ResponseWriter, r *http.Request) {
		f.calls.Add(1)
		q := r.URL.Query()
		p := q.Get("path")
		if p == "" {
			assert.Equal(t, "master", q.Get("sha"))
			fmt.Fprintf(w, `[{"sha":%q,"commit":{"tree":{"sha":"root"},"committer":{"date":"2024-06-01T00:00:00Z"}}}]`, f.headSHA)
			return
		}
		assert.Equal(t, f.headSHA, q.Get("sha"))
		d, ok := f.dates[p]
		if !ok {
			fmt.Fprint(w, `[]`)
			return
		}
		fmt.Fprintf(w, `[{"sha":"c-%s","commit":{"committer":{"date":%q}}}]`, p, d.Format(time.RFC3339))
	})

	mux.HandleFunc("/repos/acme/schema/git/trees/root", func(w http.ResponseWriter, _ *http.Request) {
		f.calls.Add(1)
		if f.noPath {
			fmt.Fprint(w, `{"sha":"root","tree":[{"path":"README.md","type":"blob","sha":"r"}]}`)
			return
		}
		fmt.Fprint(w, `{"sha":"root","tree":[
			{"path":"README.md","type":"blob","sha":"r"},
			{"path":"schemes","type":"tree","sha":"schemes-tree"}
		]}`)
	})

	mux.HandleFunc("/repos/acme/schema/git/trees/schemes-tree", func(w http.ResponseWriter, _ *http.Request) {
		f.calls.Add(1)
		fmt.Fprint(w, `{"sha":"schemes-tree","tree":[
			{"path":"160.tl","type":"blob","sha":"b160"},
			{"path":"158.tl","type":"blob","sha":"b158"},
			{"path":"unknown.tl","type":"blob","sha":"bu"},
			{"path":"latest.tl","type":"blob","sha":"bl"},
			{"path":"notes.md","type":"blob","sha":"bn"},
			{"path":"old.tl","type":"tree","sha":"bo"}
		]}`)
	})

	mux.HandleFunc("/repos/acme/schema/contents/schemes/", func(w http.ResponseWriter, r *http.Request) {
		f.calls.Add(1)
		assert.Equal(t, f.headSHA, r.URL.Query().Get("ref"))
		name := r.URL.Path[len("/repos/acme/schema/contents/schemes/"):]
		content, ok := f.files[name]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"message":"Not Found"}`)
			return
		}
		fmt.Fprintf(w, `{"type":"file","encoding":"base64","name":%q,"path":"schemes/%s","content":%q}`,
			name, name, base64.StdEncoding.EncodeToString([]byte(content)))
	})

	return mux
}

func newTestSource(t *testing.T, repo *fakeRepo) *Source {
	t.Helper()
	server := httptest.NewServer(repo.handler(t))
	t.Cleanup(server.Close)

	client := NewClientWithHTTPClient(server.Client())
	client.rateLimiter = newRateLimiter(AuthenticatedRateLimit, rate.Inf)
	require.NoError(t, client.SetBaseURL(server.URL))

	return NewSource(client, Config{Owner: "acme", Repo: "schema", Branch: "master", Path: "schemes"})
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		headSHA: "head1",
		files: map[string]string{
			"158.tl": "user#1 id:int = User;",
			"160.tl": "user#1 id:long = User;",
		},
		dates: map[string]time.Time{
			"schemes/158.tl": time.Date(2023, time.May, 20, 12, 0, 0, 0, time.UTC),
			"schemes/160.tl": time.Date(2023, time.July, 31, 23, 30, 0, 0, time.UTC),
		},
	}
}

func TestSource_Name(t *testing.T) {
	src := NewSource(nil, Config{Owner: "acme", Repo: "schema", Branch: "main"})
	assert.Equal(t, "github:acme/schema@main", src.Name())
}

func TestSource_ListLayers(t *testing.T) {
	src := newTestSource(t, newFakeRepo())

	files, err := src.ListLayers(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []domain.LayerFile{
		{LayerID: 158, Path: "schemes/158.tl", Revision: "b158"},
		{LayerID: 160, Path: "schemes/160.tl", Revision: "b160"},
	}, files)
}

func TestSource_ListLayers_PathMissing(t *testing.T) {
	repo := newFakeRepo()
	repo.noPath = true
	src := newTestSource(t, repo)

	_, err := src.ListLayers(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPathNotFound)
	assert.True(t, IsNotFound(err))
}

func TestSource_FetchLayer(t *testing.T) {
	src := newTestSource(t, newFakeRepo())
	ctx := context.Background()

	files, err := src.ListLayers(ctx)
	require.NoError(t, err)

	layer, err := src.FetchLayer(ctx, files[1])
	require.NoError(t, err)
	assert.Equal(t, domain.RawLayer{
		LayerID:      160,
		ReleaseYear:  2023,
		ReleaseMonth: time.July,
		Text:         "user#1 id:long = User;",
	}, layer)
}

func TestSource_FetchLayer_NoHistory(t *testing.T) {
	repo := newFakeRepo()
	delete(repo.dates, "schemes/158.tl")
	src := newTestSource(t, repo)
	ctx := context.Background()

	files, err := src.ListLayers(ctx)
	require.NoError(t, err)

	_, err = src.FetchLayer(ctx, files[0])
	assert.ErrorIs(t, err, ErrNoCommits)
}

func TestSource_FetchLayer_MissingFile(t *testing.T) {
	repo := newFakeRepo()
	repo.dates["schemes/999.tl"] = time.Now()
	src := newTestSource(t, repo)
	ctx := context.Background()

	_, err := src.ListLayers(ctx)
	require.NoError(t, err)

	_, err = src.FetchLayer(ctx, domain.LayerFile{LayerID: 999, Path: "schemes/999.tl"})
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestSource_ContextCancelled(t *testing.T) {
	repo := newFakeRepo()
	src := newTestSource(t, repo)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := src.ListLayers(ctx)
	assert.Error(t, err)
	assert.Equal(t, int32(0), repo.calls.Load())
}
