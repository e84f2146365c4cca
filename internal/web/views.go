package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	sprig "github.com/go-task/slim-sprig/v3"

	cssreport "github.com/yacobolo/cssreport"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

// Views renders the HTML pages.
type Views struct {
	upload *template.Template
	report *template.Template
	error  *template.Template
}

// NewViews parses the embedded templates.
func NewViews() (*Views, error) {
	parse := func(name string) (*template.Template, error) {
		t, err := template.New(name).
			Funcs(template.FuncMap(sprig.GenericFuncMap())).
			ParseFS(templateFS, "templates/layout.html.tmpl", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("unable to parse template %s: %w", name, err)
		}
		return t, nil
	}

	var (
		v   Views
		err error
	)
	if v.upload, err = parse("upload.html.tmpl"); err != nil {
		return nil, err
	}
	if v.report, err = parse("report.html.tmpl"); err != nil {
		return nil, err
	}
	if v.error, err = parse("error.html.tmpl"); err != nil {
		return nil, err
	}
	return &v, nil
}

type uploadPage struct {
	Title   string
	Field   string
	Accept  string
	MaxSize int64
}

type countRow struct {
	Property string
	Count    int
}

type valuesRow struct {
	Property string
	Values   []string
}

type reportPage struct {
	Title         string
	FileName      string
	SessionID     string
	ReportURL     string
	StylesheetURL string
	NumSelectors  int
	Counts        []countRow
	Unique        []valuesRow
	Warnings      []string
}

type errorPage struct {
	Title        string
	ErrorMessage string
}

func newReportPage(res *cssreport.Result) reportPage {
	page := reportPage{
		Title:         "CSS Report: " + res.FileName,
		FileName:      res.FileName,
		SessionID:     res.SessionID,
		ReportURL:     res.ReportURL,
		StylesheetURL: res.StylesheetURL,
		NumSelectors:  res.Report.NumSelectors(),
		Warnings:      res.Warnings,
	}
	unique := res.Report.UniqueValues()
	for _, name := range res.Report.Properties() {
		page.Counts = append(page.Counts, countRow{Property: name, Count: res.Report.Count(name)})
		if values, ok := unique[name]; ok {
			page.Unique = append(page.Unique, valuesRow{Property: name, Values: values})
		}
	}
	return page
}

func (v *Views) renderUpload(w io.Writer, page uploadPage) error {
	return v.upload.ExecuteTemplate(w, "upload.html.tmpl", page)
}

func (v *Views) renderReport(w io.Writer, res *cssreport.Result) error {
	return v.report.ExecuteTemplate(w, "report.html.tmpl", newReportPage(res))
}

func (v *Views) renderError(w io.Writer, message string) error {
	return v.error.ExecuteTemplate(w, "error.html.tmpl", errorPage{Title: "Error", ErrorMessage: message})
}
