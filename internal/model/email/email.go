package email

import "errors"

type Kind string

const (
	KindNewAccount    Kind = "new_account"
	KindResetPassword Kind = "reset_password"
)

// Job is what travels through the e-mail queue.
type Job struct {
	Kind     Kind   `json:"kind"`
	To       string `json:"to"`
	Username string `json:"username"`
	Password string `json:"password,omitempty"`
	Token    string `json:"token,omitempty"`
}

func (j *Job) Validate() error {
	var errs []error
	if j.To == "" {
		errs = append(errs, errors.New("recipient is empty"))
	}
	switch j.Kind {
	case KindNewAccount:
		if j.Password == "" {
			errs = append(errs, errors.New("new account e-mail without password"))
		}
	case KindResetPassword:
		if j.Token == "" {
			errs = append(errs, errors.New("reset e-mail without token"))
		}
	default:
		errs = append(errs, errors.New("unknown e-mail kind: "+string(j.Kind)))
	}
	return errors.Join(errs...)
}

// Message is a rendered e-mail ready to be sent.
type Message struct {
	To      string
	Subject string
	HTML    string
}
