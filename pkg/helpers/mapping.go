package helpers

import (
	"errors"
	"strings"

	"github.com/oksasatya/local-business-directory/pkg/mailer"
	mailtpl "github.com/oksasatya/local-business-directory/pkg/mailer/templates"
)

var ErrEmptyJob = errors.New("email job has neither template nor body")

// RenderJob resolves the subject and bodies of a queued job. Templated jobs
// are rendered; raw jobs are passed through.
func RenderJob(job mailer.EmailJob) (subject, text, html string, err error) {
	if strings.TrimSpace(job.To) == "" {
		return "", "", "", errors.New("email job has no recipient")
	}
	if job.Template != "" {
		s, t, h, rerr := mailtpl.Render(strings.ToLower(job.Template), job.Data)
		if rerr != nil {
			return "", "", "", rerr
		}
		if job.Subject != "" {
			s = job.Subject
		}
		return s, t, h, nil
	}
	if job.Subject == "" || (job.Text == "" && job.HTML == "") {
		return "", "", "", ErrEmptyJob
	}
	return job.Subject, job.Text, job.HTML, nil
}
