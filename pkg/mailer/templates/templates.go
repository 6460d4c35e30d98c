package templates

import (
	"bytes"
	"embed"
	"fmt"
	htmpl "html/template"
	texttpl "text/template"
)

//go:embed *.tmpl
var FS embed.FS

const (
	BusinessRegistered = "business_registered"
	BusinessDeleted    = "business_deleted"
)

var subjects = map[string]string{
	BusinessRegistered: "Your business is now listed",
	BusinessDeleted:    "Your business listing was removed",
}

// ListingData is the template input for listing notifications.
type ListingData struct {
	OwnerName    string
	BusinessID   int64
	BusinessName string
	Category     string
	ListingURL   string
	CompanyName  string
	SupportURL   string
}

// ToMap converts ListingData to the map carried by EmailJob.Data.
func (d ListingData) ToMap() map[string]any {
	return map[string]any{
		"OwnerName":    d.OwnerName,
		"BusinessID":   d.BusinessID,
		"BusinessName": d.BusinessName,
		"Category":     d.Category,
		"ListingURL":   d.ListingURL,
		"CompanyName":  d.CompanyName,
		"SupportURL":   d.SupportURL,
	}
}

// Subject returns the subject line for a template name.
func Subject(name string) string {
	if s, ok := subjects[name]; ok {
		return s
	}
	return "Notification"
}

// Render executes <name>.txt.tmpl and <name>.html.tmpl with data.
func Render(name string, data map[string]any) (subject, text, html string, err error) {
	if _, ok := subjects[name]; !ok {
		return "", "", "", fmt.Errorf("unknown template %q", name)
	}

	tt, err := texttpl.ParseFS(FS, name+".txt.tmpl")
	if err != nil {
		return "", "", "", err
	}
	var tb bytes.Buffer
	if err := tt.Execute(&tb, data); err != nil {
		return "", "", "", err
	}

	ht, err := htmpl.ParseFS(FS, name+".html.tmpl")
	if err != nil {
		return "", "", "", err
	}
	var hb bytes.Buffer
	if err := ht.Execute(&hb, data); err != nil {
		return "", "", "", err
	}
	return Subject(name), tb.String(), hb.String(), nil
}
