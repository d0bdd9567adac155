package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbaille/thoughts/internal/domain"
)

const samplePage = `<!doctype html>
<html><head><title>  Deep
 Work </title><style>body{}</style></head>
<body>
<nav>Home | About</nav>
<h1>Focus</h1>
<p>Schedule   blocks of <b>uninterrupted</b> time.</p>
<script>alert("x")</script>
<ul><li>One</li><li>Two</li></ul>
<footer>copyright</footer>
</body></html>`

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.UserAgent(), "thoughts")
		fmt.Fprint(w, samplePage)
	}))
	defer srv.Close()

	page, err := New(srv.Client()).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, "Deep Work", page.Title)
	assert.Equal(t, "Focus\nSchedule blocks of uninterrupted time.\nOne\nTwo", page.Text)
	assert.NotContains(t, page.Text, "alert")
	assert.NotContains(t, page.Text, "copyright")
	assert.True(t, strings.HasSuffix(page.Thought(), "Source: "+srv.URL))
}

func TestFetch_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/empty" {
			fmt.Fprint(w, "<html><body><script>x()</script></body></html>")
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()
	f := New(srv.Client())

	_, err := f.Fetch(context.Background(), srv.URL+"/missing")
	assert.ErrorIs(t, err, domain.ErrUpstream)

	_, err = f.Fetch(context.Background(), srv.URL+"/empty")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.Fetch(context.Background(), "ftp://example.com/file")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNormalize(t *testing.T) {
	u, err := Normalize("www.example.com/a")
	require.NoError(t, err)
	assert.Equal(t, "https://www.example.com/a", u)

	_, err = Normalize("https://")
	assert.Error(t, err)
}

func TestIsURL(t *testing.T) {
	assert.True(t, IsURL(" https://example.com"))
	assert.True(t, IsURL("www.example.com"))
	assert.False(t, IsURL("just a thought"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "學習...", truncate("學習日文", 2))
	assert.Equal(t, "abc", truncate("abc", 3))
}
