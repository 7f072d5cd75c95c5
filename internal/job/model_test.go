package job

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobRq_Apply(t *testing.T) {
	createdAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	post := JobPost{ID: 9, LogoURL: "uploads/acme.png", CreatedAt: createdAt}
	rq := JobRqFromPost(*samplePost())
	rq.Deadline = "2025-03-01"

	require.NoError(t, rq.Apply(&post))
	assert.Equal(t, 9, post.ID)
	assert.Equal(t, createdAt, post.CreatedAt)
	assert.Equal(t, "uploads/acme.png", post.LogoURL)
	assert.Equal(t, "Senior Engineer", post.Position)
	assert.Equal(t, date("2025-03-01"), post.Deadline)
}

func TestJobRq_ApplyRejectsBadDeadline(t *testing.T) {
	post := JobPost{Title: "unchanged"}
	rq := JobRqFromPost(*samplePost())
	rq.Deadline = "10/01/2025"

	require.Error(t, rq.Apply(&post))
	assert.Equal(t, "unchanged", post.Title)
}

func TestJobRq_Trim(t *testing.T) {
	rq := JobRq{Title: "  Backend  ", ApplyLink: "\thttps://acme.test\n", Position: "   "}
	rq.Trim()
	assert.Equal(t, "Backend", rq.Title)
	assert.Equal(t, "https://acme.test", rq.ApplyLink)
	assert.Empty(t, rq.Position)
}
