package posting

import (
	"mime/multipart"
	"strings"
	"testing"

	"github.com/jobadverts/board/internal/job"
	"github.com/jobadverts/board/internal/job/jobtest"
	"github.com/jobadverts/board/internal/listing"
	"github.com/jobadverts/board/internal/logo"
	"github.com/jobadverts/board/internal/session"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var admin = session.AdminSession{Authenticated: true}

type fakeLogos struct {
	ref   string
	err   error
	calls int
}

func (f *fakeLogos) Store(fh *multipart.FileHeader) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if fh == nil || fh.Filename == "" {
		return job.DefaultLogoURL, nil
	}
	return f.ref, nil
}

func validRq(position, deadline string) job.JobRq {
	return job.JobRq{
		Title:            position + " at Acme",
		CompanyName:      "Acme",
		Position:         position,
		Location:         "Remote",
		JobType:          "Full-time",
		Deadline:         deadline,
		Intro:            "We build things.",
		Responsibilities: "Build more things.",
		CandidateProfile: "Builder.",
		Qualifications:   "Has built things.",
		WhatsOnOffer:     "Money.",
		ApplicationEmail: "jobs@acme.test",
		ApplyLink:        "https://acme.test/apply",
	}
}

func newWorkflow() (*Workflow, *jobtest.Repository, *fakeLogos) {
	repo := jobtest.NewRepository()
	logos := &fakeLogos{ref: "uploads/acme.png"}
	return NewWorkflow(repo, logos), repo, logos
}

func TestWorkflow_CreateRoundTrip(t *testing.T) {
	wf, repo, _ := newWorkflow()

	id, err := wf.Create(admin, validRq("Backend Engineer", "2025-06-30"), nil)
	require.NoError(t, err)

	got, err := repo.GetByID(id)
	require.NoError(t, err)
	assert.Equal(t, "Backend Engineer", got.Position)
	assert.Equal(t, "2025-06-30", got.DeadlineString())
	assert.Equal(t, job.DefaultLogoURL, got.LogoURL)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestWorkflow_CreateWithLogo(t *testing.T) {
	wf, repo, _ := newWorkflow()

	id, err := wf.Create(admin, validRq("Designer", "2025-06-30"), &multipart.FileHeader{Filename: "Acme.png"})
	require.NoError(t, err)
	got, err := repo.GetByID(id)
	require.NoError(t, err)
	assert.Equal(t, "uploads/acme.png", got.LogoURL)
}

func TestWorkflow_CreateTrimsFields(t *testing.T) {
	wf, repo, _ := newWorkflow()
	rq := validRq("  Go Developer ", " 2025-06-30 ")

	id, err := wf.Create(admin, rq, nil)
	require.NoError(t, err)
	got, err := repo.GetByID(id)
	require.NoError(t, err)
	assert.Equal(t, "Go Developer", got.Position)
}

func TestWorkflow_CreateValidation(t *testing.T) {
	wf, repo, logos := newWorkflow()
	rq := validRq("Backend Engineer", "30/06/2025")
	rq.Title = "   "
	rq.ApplyLink = ""

	_, err := wf.Create(admin, rq, &multipart.FileHeader{Filename: "acme.png"})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "title")
	assert.Contains(t, verr.Fields, "apply_link")
	assert.Contains(t, verr.Fields, "deadline")
	assert.Equal(t, "apply link is required", verr.Fields["apply_link"])
	assert.Len(t, verr.Messages(), 3)

	assert.Zero(t, logos.calls, "logo must not be stored when the form is invalid")
	all, err := repo.ListAll(job.OrderByDeadlineAsc)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestWorkflow_RejectsValuesLongerThanColumns(t *testing.T) {
	wf, repo, logos := newWorkflow()
	rq := validRq("Backend Engineer", "2025-06-30")
	rq.Location = strings.Repeat("l", 101)
	rq.JobType = strings.Repeat("j", 101)
	rq.Title = strings.Repeat("t", 256)
	rq.Position = strings.Repeat("p", 256)
	rq.ApplyLink = "https://acme.test/" + strings.Repeat("a", 240)

	_, err := wf.Create(admin, rq, &multipart.FileHeader{Filename: "acme.png"})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Fields, 5)
	assert.Equal(t, "location must be at most 100 characters", verr.Fields["location"])
	assert.Equal(t, "job type must be at most 100 characters", verr.Fields["job_type"])
	assert.Equal(t, "title must be at most 255 characters", verr.Fields["title"])
	assert.Equal(t, "position must be at most 255 characters", verr.Fields["position"])
	assert.Equal(t, "apply link must be at most 255 characters", verr.Fields["apply_link"])
	assert.Zero(t, logos.calls)
	all, err := repo.ListAll(job.OrderByDeadlineAsc)
	require.NoError(t, err)
	assert.Empty(t, all)

	edge := validRq("Backend Engineer", "2025-06-30")
	edge.Location = strings.Repeat("l", 100)
	id, err := wf.Create(admin, edge, nil)
	require.NoError(t, err)

	edge.Location = strings.Repeat("l", 101)
	err = wf.Edit(admin, id, edge, nil)
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "location")
	got, err := repo.GetByID(id)
	require.NoError(t, err)
	assert.Len(t, got.Location, 100)
}

func TestWorkflow_CreateRejectsInvalidLogo(t *testing.T) {
	wf, repo, logos := newWorkflow()
	logos.err = &logo.InvalidError{Reason: "file must be a png, jpeg, gif or webp image"}

	_, err := wf.Create(admin, validRq("Backend Engineer", "2025-06-30"), &multipart.FileHeader{Filename: "run.sh"})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "file must be a png, jpeg, gif or webp image", verr.Fields["logo"])

	all, err := repo.ListAll(job.OrderByDeadlineAsc)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestWorkflow_StorageFailures(t *testing.T) {
	t.Run("logo write", func(t *testing.T) {
		wf, _, logos := newWorkflow()
		logos.err = errors.New("disk full")
		_, err := wf.Create(admin, validRq("Backend Engineer", "2025-06-30"), &multipart.FileHeader{Filename: "a.png"})
		var serr *StorageError
		require.True(t, errors.As(err, &serr))
	})

	t.Run("insert", func(t *testing.T) {
		wf, repo, _ := newWorkflow()
		repo.Err = errors.New("connection refused")
		_, err := wf.Create(admin, validRq("Backend Engineer", "2025-06-30"), nil)
		var serr *StorageError
		require.True(t, errors.As(err, &serr))
		assert.Equal(t, "connection refused", errors.Cause(err).Error())
	})
}

func TestWorkflow_AuthDenied(t *testing.T) {
	wf, repo, logos := newWorkflow()
	id, err := wf.Create(admin, validRq("Backend Engineer", "2025-06-30"), nil)
	require.NoError(t, err)
	anon := session.AdminSession{}

	_, err = wf.Create(anon, validRq("Other", "2025-06-30"), nil)
	assert.ErrorIs(t, err, ErrAuthDenied)
	err = wf.Edit(anon, id, validRq("Changed", "2025-06-30"), nil)
	assert.ErrorIs(t, err, ErrAuthDenied)
	err = wf.Delete(anon, id)
	assert.ErrorIs(t, err, ErrAuthDenied)
	_, err = wf.Get(anon, id)
	assert.ErrorIs(t, err, ErrAuthDenied)

	got, err := repo.GetByID(id)
	require.NoError(t, err)
	assert.Equal(t, "Backend Engineer", got.Position)
	assert.Equal(t, 1, logos.calls)
}

func TestWorkflow_Edit(t *testing.T) {
	wf, repo, _ := newWorkflow()
	id, err := wf.Create(admin, validRq("Designer", "2025-06-30"), &multipart.FileHeader{Filename: "acme.png"})
	require.NoError(t, err)
	before, err := repo.GetByID(id)
	require.NoError(t, err)

	t.Run("keeps logo when none uploaded", func(t *testing.T) {
		require.NoError(t, wf.Edit(admin, id, validRq("Senior Designer", "2025-07-15"), nil))
		got, err := repo.GetByID(id)
		require.NoError(t, err)
		assert.Equal(t, "Senior Designer", got.Position)
		assert.Equal(t, "2025-07-15", got.DeadlineString())
		assert.Equal(t, "uploads/acme.png", got.LogoURL)
		assert.Equal(t, before.CreatedAt, got.CreatedAt)
	})

	t.Run("replaces logo when uploaded", func(t *testing.T) {
		wf.logos.(*fakeLogos).ref = "uploads/new.png"
		require.NoError(t, wf.Edit(admin, id, validRq("Senior Designer", "2025-07-15"), &multipart.FileHeader{Filename: "new.png"}))
		got, err := repo.GetByID(id)
		require.NoError(t, err)
		assert.Equal(t, "uploads/new.png", got.LogoURL)
	})

	t.Run("invalid leaves record untouched", func(t *testing.T) {
		rq := validRq("", "2025-07-15")
		err := wf.Edit(admin, id, rq, nil)
		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		got, err := repo.GetByID(id)
		require.NoError(t, err)
		assert.Equal(t, "Senior Designer", got.Position)
	})

	t.Run("missing advert", func(t *testing.T) {
		assert.ErrorIs(t, wf.Edit(admin, id+100, validRq("X", "2025-07-15"), nil), ErrNotFound)
	})
}

func TestWorkflow_Delete(t *testing.T) {
	wf, repo, _ := newWorkflow()
	id, err := wf.Create(admin, validRq("Backend Engineer", "2025-06-30"), nil)
	require.NoError(t, err)

	require.NoError(t, wf.Delete(admin, id))
	_, err = repo.GetByID(id)
	assert.ErrorIs(t, err, job.ErrNotFound)
	assert.ErrorIs(t, wf.Delete(admin, id), ErrNotFound)
	_, err = wf.Get(admin, id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWorkflow_DeadlineOrderingScenario(t *testing.T) {
	wf, repo, _ := newWorkflow()
	a, err := wf.Create(admin, validRq("Engineer A", "2025-03-01"), nil)
	require.NoError(t, err)
	b, err := wf.Create(admin, validRq("Engineer B", "2025-01-01"), nil)
	require.NoError(t, err)
	svc := listing.NewService(repo)

	public, err := svc.PublicListing("")
	require.NoError(t, err)
	require.Len(t, public, 2)
	assert.Equal(t, []int{b, a}, []int{public[0].ID, public[1].ID})

	dashboard, err := svc.AdminListing()
	require.NoError(t, err)
	require.Len(t, dashboard, 2)
	assert.Equal(t, []int{b, a}, []int{dashboard[0].ID, dashboard[1].ID})

	require.NoError(t, wf.Edit(admin, b, validRq("Engineer B", "2025-12-31"), nil))
	public, err = svc.PublicListing("")
	require.NoError(t, err)
	assert.Equal(t, []int{a, b}, []int{public[0].ID, public[1].ID})
}
