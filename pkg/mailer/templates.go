package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

const layout = `{{define "layout"}}<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><meta name="viewport" content="width=device-width, initial-scale=1.0"></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; margin: 0; padding: 0;">
<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
	<div style="text-align: center; margin-bottom: 30px; background-color: #f9f9f9; padding: 20px;">
		<h2 style="color: #e05a47; margin: 0;">Lala Rental</h2>
	</div>
	{{template "content" .}}
	<div style="text-align: center; margin-top: 20px; font-size: 12px; color: #666; border-top: 1px solid #eee; padding-top: 20px;">
		<p>This is an automated message, please do not reply to this email.</p>
	</div>
</div>
</body>
</html>{{end}}`

const welcomeContent = `{{define "content"}}
<p>Hello {{.Name}},</p>
<p>Welcome to Lala Rental. Your account is ready and you can start browsing properties right away.</p>
<p style="text-align: center;"><a href="{{.FrontendURL}}" style="background-color: #e05a47; color: #fff; padding: 10px 20px; text-decoration: none; border-radius: 4px;">Explore properties</a></p>
{{end}}`

const bookingContent = `{{define "content"}}
<p>Hello {{.RenterName}},</p>
<p>{{.Headline}}</p>
<table style="width: 100%; border-collapse: collapse;">
	<tr><td style="padding: 6px 0; color: #666;">Property</td><td>{{.PropertyTitle}}</td></tr>
	<tr><td style="padding: 6px 0; color: #666;">Check-in</td><td>{{date .CheckIn}}</td></tr>
	<tr><td style="padding: 6px 0; color: #666;">Check-out</td><td>{{date .CheckOut}}</td></tr>
	<tr><td style="padding: 6px 0; color: #666;">Status</td><td>{{.Status}}</td></tr>
</table>
<p style="text-align: center;"><a href="{{.FrontendURL}}/bookings/{{.BookingID}}">View booking</a></p>
{{end}}`

var funcs = template.FuncMap{
	"date": func(t time.Time) string { return t.UTC().Format("Mon, 02 Jan 2006") },
}

var (
	welcomeTmpl = template.Must(template.Must(template.New("welcome").Funcs(funcs).Parse(layout)).Parse(welcomeContent))
	bookingTmpl = template.Must(template.Must(template.New("booking").Funcs(funcs).Parse(layout)).Parse(bookingContent))
)

type WelcomeData struct {
	Name        string
	FrontendURL string
}

type BookingData struct {
	BookingID     string
	RenterName    string
	PropertyTitle string
	CheckIn       time.Time
	CheckOut      time.Time
	Status        string
	Headline      string
	FrontendURL   string
}

func RenderWelcome(data WelcomeData) (string, error) {
	return render(welcomeTmpl, data)
}

func RenderBooking(data BookingData) (string, error) {
	return render(bookingTmpl, data)
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return "", fmt.Errorf("mailer: render %s: %w", t.Name(), err)
	}
	return buf.String(), nil
}
