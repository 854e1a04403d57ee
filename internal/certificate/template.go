package certificate

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/brgy-records/apiserver/types"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(
	template.New("certificates").
		Funcs(template.FuncMap{
			"officialName": officialName,
			"issuedOn":     issuedOn,
		}).
		ParseFS(templateFS, "templates/*.html"),
)

var titles = map[types.CertificateType]string{
	types.CertificateResidency:      "Certificate of Residency",
	types.CertificateIndigency:      "Certificate of Indigency",
	types.CertificateEmployment:     "Barangay Certification",
	types.CertificateBusinessPermit: "Barangay Business Clearance",
}

type page struct {
	Document
	Title string
}

// Field is called from the templates; absent fields print as blank.
func (p page) Field(name string) string {
	return p.Fields[name]
}

// RenderHTML executes the template for doc.Kind.
func RenderHTML(doc Document) ([]byte, error) {
	title, ok := titles[doc.Kind]
	if !ok {
		return nil, fmt.Errorf("no template for certificate kind %q", doc.Kind)
	}
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, string(doc.Kind), page{Document: doc, Title: title}); err != nil {
		return nil, fmt.Errorf("render %s certificate: %w", doc.Kind, err)
	}
	return buf.Bytes(), nil
}

func officialName(o types.Official) string {
	if o.Title != nil && *o.Title != "" {
		return *o.Title + " " + o.Name
	}
	return o.Name
}

func issuedOn(d types.Date) string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%s day of %s, %d", ordinal(d.Day()), d.Month(), d.Year())
}

func ordinal(n int) string {
	suffix := "th"
	switch {
	case n%100 >= 11 && n%100 <= 13:
	case n%10 == 1:
		suffix = "st"
	case n%10 == 2:
		suffix = "nd"
	case n%10 == 3:
		suffix = "rd"
	}
	return fmt.Sprintf("%d%s", n, suffix)
}
