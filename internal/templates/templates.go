package templates

import (
	"embed"
	"html/template"
)

//go:embed *.html
var files embed.FS

// BookingEmail is the HTML body of every booking notification.
var BookingEmail = template.Must(template.ParseFS(files, "booking_email.html"))
