package email

import (
	"bytes"
	"fmt"
	"html/template"
	texttemplate "text/template"
	"time"
)

type TemplateName string

const (
	TemplateWelcome         TemplateName = "welcome"
	TemplateSessionBooked   TemplateName = "session_booked"
	TemplateSessionStatus   TemplateName = "session_status"
	TemplateSessionReminder TemplateName = "session_reminder"
	TemplatePaymentReceipt  TemplateName = "payment_receipt"
)

// WelcomeData feeds TemplateWelcome.
type WelcomeData struct {
	Name     string
	IsMentor bool
}

// SessionData feeds the session templates.
type SessionData struct {
	RecipientName string
	StudentName   string
	MentorName    string
	Subject       string
	ScheduledAt   time.Time
	Duration      int
	Status        string
	Reason        string
}

// ReceiptData feeds TemplatePaymentReceipt.
type ReceiptData struct {
	Name    string
	Subject string
	Amount  string
}

const layout = `{{define "layout"}}<!DOCTYPE html>
<html><body style="font-family:Arial,sans-serif;color:#1f2937">
<div style="max-width:560px;margin:0 auto;padding:24px">
<h2 style="color:#4f46e5">EduVibe</h2>
{{template "content" .}}
<p style="font-size:12px;color:#6b7280">You receive this email because you have an EduVibe account.</p>
</div></body></html>{{end}}`

type mailTemplate struct {
	subject string
	body    string
}

var sources = map[TemplateName]mailTemplate{
	TemplateWelcome: {
		subject: "Welcome to EduVibe, {{.Name}}",
		body: `{{define "content"}}<p>Hi {{.Name}},</p>
{{if .IsMentor}}<p>Complete your mentor profile so our team can review and publish it.</p>
{{else}}<p>Tell us what you want to learn and we will recommend mentors that fit.</p>{{end}}{{end}}`,
	},
	TemplateSessionBooked: {
		subject: "New session request: {{.Subject}}",
		body: `{{define "content"}}<p>Hi {{.RecipientName}},</p>
<p>{{.StudentName}} requested a {{.Duration}} minute session on <b>{{.Subject}}</b> with {{.MentorName}}
on {{fmtTime .ScheduledAt}}.</p>{{end}}`,
	},
	TemplateSessionStatus: {
		subject: "Your {{.Subject}} session is {{.Status}}",
		body: `{{define "content"}}<p>Hi {{.RecipientName}},</p>
<p>The {{.Subject}} session scheduled for {{fmtTime .ScheduledAt}} is now <b>{{.Status}}</b>.</p>
{{with .Reason}}<p>Reason: {{.}}</p>{{end}}{{end}}`,
	},
	TemplateSessionReminder: {
		subject: "Reminder: {{.Subject}} on {{fmtTime .ScheduledAt}}",
		body: `{{define "content"}}<p>Hi {{.RecipientName}},</p>
<p>Your {{.Duration}} minute {{.Subject}} session between {{.StudentName}} and {{.MentorName}}
starts {{fmtTime .ScheduledAt}}.</p>{{end}}`,
	},
	TemplatePaymentReceipt: {
		subject: "Receipt for your {{.Subject}} session",
		body: `{{define "content"}}<p>Hi {{.Name}},</p>
<p>We received your payment of <b>{{.Amount}}</b>. The PDF receipt is attached.</p>{{end}}`,
	},
}

var funcs = map[string]interface{}{
	"fmtTime": func(t time.Time) string { return t.UTC().Format("Mon, 02 Jan 2006 15:04 MST") },
}

// Subjects are plain text; bodies are escaped HTML.
type compiled struct {
	subject *texttemplate.Template
	body    *template.Template
}

var registry = mustCompile()

func mustCompile() map[TemplateName]compiled {
	out := make(map[TemplateName]compiled, len(sources))
	for name, src := range sources {
		subject := texttemplate.Must(texttemplate.New(string(name) + "_subject").Funcs(funcs).Parse(src.subject))
		body := template.Must(template.Must(template.New(string(name)).Funcs(funcs).Parse(layout)).Parse(src.body))
		out[name] = compiled{subject: subject, body: body}
	}
	return out
}

// Render produces the subject line and HTML body for a template.
func Render(name TemplateName, data interface{}) (string, string, error) {
	tmpl, ok := registry[name]
	if !ok {
		return "", "", fmt.Errorf("unknown email template %q", name)
	}

	var subject, body bytes.Buffer
	if err := tmpl.subject.Execute(&subject, data); err != nil {
		return "", "", fmt.Errorf("render %s subject: %w", name, err)
	}
	if err := tmpl.body.ExecuteTemplate(&body, "layout", data); err != nil {
		return "", "", fmt.Errorf("render %s body: %w", name, err)
	}
	return subject.String(), body.String(), nil
}
