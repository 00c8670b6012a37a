package mailer

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/url"
	"strings"
	"time"

	"github.com/talx-hub/gopher-users/internal/model/email"
)

//go:embed templates/*.html
var templatesFS embed.FS

type templateData struct {
	ProjectName string
	Username    string
	Password    string
	Link        string
	ValidHours  int
}

type Renderer struct {
	templates   *template.Template
	projectName string
	serverHost  string
	validHours  int
}

func NewRenderer(projectName, serverHost string, resetTokenExpire time.Duration,
) (*Renderer, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse e-mail templates: %w", err)
	}
	return &Renderer{
		templates:   tmpl,
		projectName: projectName,
		serverHost:  strings.TrimRight(serverHost, "/"),
		validHours:  int(resetTokenExpire / time.Hour),
	}, nil
}

func (r *Renderer) Render(job email.Job) (email.Message, error) {
	if err := job.Validate(); err != nil {
		return email.Message{}, fmt.Errorf("invalid e-mail job: %w", err)
	}

	data := templateData{
		ProjectName: r.projectName,
		Username:    job.Username,
	}
	var name, subject string
	switch job.Kind {
	case email.KindNewAccount:
		name = "new_account.html"
		subject = fmt.Sprintf("%s - New account for user %s", r.projectName, job.Username)
		data.Password = job.Password
		data.Link = r.serverHost
	case email.KindResetPassword:
		name = "reset_password.html"
		subject = fmt.Sprintf("%s - Password recovery for user %s", r.projectName, job.Username)
		data.Link = r.serverHost + "/reset-password?token=" + url.QueryEscape(job.Token)
		data.ValidHours = r.validHours
	}

	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return email.Message{}, fmt.Errorf("failed to render %s: %w", name, err)
	}
	return email.Message{
		To:      job.To,
		Subject: subject,
		HTML:    buf.String(),
	}, nil
}
