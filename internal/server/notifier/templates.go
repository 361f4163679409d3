package notifier

import (
	"bytes"
	"html/template"
	"net/url"
	"strings"
)

const (
	SubjectVerification  = "Email verification"
	SubjectPasswordReset = "Password reset"
)

var (
	verificationTmpl = template.Must(template.New("verification").Parse(
		`<b>Please validate your email</b> <br> <a href="{{.}}">{{.}}</a>`))
	resetTmpl = template.Must(template.New("reset").Parse(
		`<b>Please reset your password on link:</b> <br> <a href="{{.}}">{{.}}</a>`))
)

// VerificationLink is {base}/verification/{key}/{email}.
func VerificationLink(baseURL, key, email string) string {
	return link(baseURL, "verification", key, email)
}

// PasswordResetLink is {base}/password/reset/{key}/{email}.
func PasswordResetLink(baseURL, key, email string) string {
	return link(baseURL, "password/reset", key, email)
}

func VerificationMessage(baseURL, to, key string) (Message, error) {
	l := VerificationLink(baseURL, key, to)
	body, err := render(verificationTmpl, l)
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:       to,
		Subject:  SubjectVerification,
		HTMLBody: body,
		TextBody: "Please validate your email: " + l,
	}, nil
}

func PasswordResetMessage(baseURL, to, key string) (Message, error) {
	l := PasswordResetLink(baseURL, key, to)
	body, err := render(resetTmpl, l)
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:       to,
		Subject:  SubjectPasswordReset,
		HTMLBody: body,
		TextBody: "Please reset your password on link: " + l,
	}, nil
}

func link(baseURL, path, key, email string) string {
	return strings.TrimRight(baseURL, "/") + "/" + path + "/" + url.PathEscape(key) + "/" + url.PathEscape(email)
}

func render(t *template.Template, link string) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, link); err != nil {
		return "", wrap(err)
	}
	return buf.String(), nil
}
