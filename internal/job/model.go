package job

import (
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	// DeadlineLayout is the only accepted textual format for a deadline.
	DeadlineLayout = "2006-01-02"

	// DefaultLogoURL is the logo reference used when no image was uploaded.
	// The file must always exist in the upload directory.
	DefaultLogoURL = "uploads/default.png"
)

var ErrNotFound = errors.New("job advert not found")

// Order selects how ListAll sorts job adverts.
type Order int

const (
	OrderByDeadlineAsc Order = iota
	OrderByCreatedAtDesc
)

type JobPost struct {
	ID               int
	Title            string
	CompanyName      string
	Position         string
	Location         string
	JobType          string
	Deadline         time.Time
	Intro            string
	Responsibilities string
	CandidateProfile string
	Qualifications   string
	WhatsOnOffer     string
	ApplicationEmail string
	ApplyLink        string
	LogoURL          string
	CreatedAt        time.Time
}

// DeadlineString formats the deadline the way the add/edit form expects it.
func (j JobPost) DeadlineString() string {
	return j.Deadline.Format(DeadlineLayout)
}

// JobRq is the typed add/edit form submitted by the admin. The max lengths
// mirror the job_advert column sizes.
type JobRq struct {
	Title            string `form:"title" validate:"required,max=255"`
	CompanyName      string `form:"company_name" validate:"required"`
	Position         string `form:"position" validate:"required,max=255"`
	Location         string `form:"location" validate:"required,max=100"`
	JobType          string `form:"job_type" validate:"required,max=100"`
	Deadline         string `form:"deadline" validate:"required,datetime=2006-01-02"`
	Intro            string `form:"intro" validate:"required"`
	Responsibilities string `form:"responsibilities" validate:"required"`
	CandidateProfile string `form:"candidate_profile" validate:"required"`
	Qualifications   string `form:"qualifications" validate:"required"`
	WhatsOnOffer     string `form:"whats_on_offer" validate:"required"`
	ApplicationEmail string `form:"application_email" validate:"required"`
	ApplyLink        string `form:"apply_link" validate:"required,max=255"`
}

// JobRqFromPost prefills the edit form from a stored job advert.
func JobRqFromPost(j JobPost) JobRq {
	return JobRq{
		Title:            j.Title,
		CompanyName:      j.CompanyName,
		Position:         j.Position,
		Location:         j.Location,
		JobType:          j.JobType,
		Deadline:         j.DeadlineString(),
		Intro:            j.Intro,
		Responsibilities: j.Responsibilities,
		CandidateProfile: j.CandidateProfile,
		Qualifications:   j.Qualifications,
		WhatsOnOffer:     j.WhatsOnOffer,
		ApplicationEmail: j.ApplicationEmail,
		ApplyLink:        j.ApplyLink,
	}
}

// Trim strips surrounding whitespace from every field so a blank value
// counts as missing.
func (rq *JobRq) Trim() {
	for _, f := range rq.fields() {
		*f = strings.TrimSpace(*f)
	}
}

func (rq *JobRq) fields() []*string {
	return []*string{
		&rq.Title, &rq.CompanyName, &rq.Position, &rq.Location, &rq.JobType,
		&rq.Deadline, &rq.Intro, &rq.Responsibilities, &rq.CandidateProfile,
		&rq.Qualifications, &rq.WhatsOnOffer, &rq.ApplicationEmail, &rq.ApplyLink,
	}
}

// Apply copies the mutable fields of rq onto j. ID, CreatedAt and LogoURL
// are left untouched.
func (rq JobRq) Apply(j *JobPost) error {
	deadline, err := time.Parse(DeadlineLayout, rq.Deadline)
	if err != nil {
		return errors.Wrapf(err, "invalid deadline %q", rq.Deadline)
	}
	j.Title = rq.Title
	j.CompanyName = rq.CompanyName
	j.Position = rq.Position
	j.Location = rq.Location
	j.JobType = rq.JobType
	j.Deadline = deadline
	j.Intro = rq.Intro
	j.Responsibilities = rq.Responsibilities
	j.CandidateProfile = rq.CandidateProfile
	j.Qualifications = rq.Qualifications
	j.WhatsOnOffer = rq.WhatsOnOffer
	j.ApplicationEmail = rq.ApplicationEmail
	j.ApplyLink = rq.ApplyLink
	return nil
}
