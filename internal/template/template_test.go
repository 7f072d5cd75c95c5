package template

import (
	"net/http/httptest"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplate_Render(t *testing.T) {
	views := fstest.MapFS{
		"job.html": &fstest.MapFile{Data: []byte(`{{define "job.html"}}<h1>{{.Title}}</h1>{{markdown .Intro}}<p>{{date .Deadline}}</p>{{end}}`)},
	}
	tmpl, err := NewTemplate(views)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	err = tmpl.Render(rec, 200, "job.html", map[string]interface{}{
		"Title":    "<b>Go</b>",
		"Intro":    "**bold** <script>alert(1)</script>",
		"Deadline": time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	body := rec.Body.String()
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, body, "<h1>&lt;b&gt;Go&lt;/b&gt;</h1>")
	assert.Contains(t, body, "<strong>bold</strong>")
	assert.NotContains(t, body, "<script>")
	assert.Contains(t, body, "30 Jun 2025")
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
}

func TestDeadlinePassed(t *testing.T) {
	deadline := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	assert.False(t, DeadlinePassed(deadline, time.Date(2025, 6, 29, 23, 59, 0, 0, time.UTC)))
	assert.False(t, DeadlinePassed(deadline, deadline))
	assert.False(t, DeadlinePassed(deadline, time.Date(2025, 6, 30, 18, 0, 0, 0, time.UTC)), "open for the whole final day")
	assert.True(t, DeadlinePassed(deadline, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)))
}

func TestNewTemplate_ParseError(t *testing.T) {
	views := fstest.MapFS{
		"broken.html": &fstest.MapFile{Data: []byte(`{{define "broken.html"}}{{.Title}`)},
	}
	_, err := NewTemplate(views)
	assert.Error(t, err)
}
