package template

import (
	"io/fs"
	"net/http"
	"time"

	stdtemplate "html/template"

	humanize "github.com/dustin/go-humanize"
	"github.com/microcosm-cc/bluemonday"
	blackfriday "github.com/russross/blackfriday/v2"
)

type Template struct {
	templates *stdtemplate.Template
	policy    *bluemonday.Policy
}

// NewTemplate parses every *.html view found at the root of views.
func NewTemplate(views fs.FS) (*Template, error) {
	t := &Template{policy: bluemonday.UGCPolicy()}
	funcMap := stdtemplate.FuncMap{
		"humantime": humanize.Time,
		"markdown":  t.MarkdownToHTML,
		"date": func(tm time.Time) string {
			return tm.Format("02 Jan 2006")
		},
		"isDeadlinePassed": func(deadline time.Time) bool {
			return DeadlinePassed(deadline, time.Now())
		},
	}
	tmpl, err := stdtemplate.New("stdtmpl").Funcs(funcMap).ParseFS(views, "*.html")
	if err != nil {
		return nil, err
	}
	t.templates = tmpl
	return t, nil
}

// DeadlinePassed reports whether now is past the whole deadline day.
func DeadlinePassed(deadline, now time.Time) bool {
	return !now.Before(deadline.AddDate(0, 0, 1))
}

func (t *Template) Render(w http.ResponseWriter, status int, name string, data interface{}) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	return t.templates.ExecuteTemplate(w, name, data)
}

// MarkdownToHTML renders admin supplied markdown. The output is sanitized
// since the HTML renderer passes raw HTML through.
func (t *Template) MarkdownToHTML(s string) stdtemplate.HTML {
	renderer := blackfriday.NewHTMLRenderer(blackfriday.HTMLRendererParameters{
		Flags: blackfriday.Safelink |
			blackfriday.NofollowLinks |
			blackfriday.NoreferrerLinks |
			blackfriday.HrefTargetBlank,
	})
	out := blackfriday.Run([]byte(s), blackfriday.WithRenderer(renderer))
	return stdtemplate.HTML(t.policy.SanitizeBytes(out))
}
