package templates

import (
	"bytes"
	"html/template"
	"log"
)

// AnalysisReportProps carries the wardrobe analysis summary rendered into
// the report email.
type AnalysisReportProps struct {
	Name            string
	ItemCount       int
	Season          string
	Summary         string
	Recommendations []string
	GapCategories   []string
}

var analysisReportTemplate = template.Must(template.New("analysisReport").Parse(`
<h1 style="font-family: Helvetica, sans-serif; font-size: 24px; font-weight: bold; margin: 0 0 16px;">Your wardrobe analysis is ready</h1>
<p style="font-family: Helvetica, sans-serif; font-size: 16px; margin: 0 0 16px;">Hi {{.Name}},</p>
<p style="font-family: Helvetica, sans-serif; font-size: 16px; margin: 0 0 16px;">We analyzed the {{.ItemCount}} items in your wardrobe for the {{.Season}} season. Here is what we found:</p>
<p style="font-family: Helvetica, sans-serif; font-size: 16px; margin: 0 0 16px;">{{.Summary}}</p>
{{if .Recommendations}}
<h2 style="font-family: Helvetica, sans-serif; font-size: 18px; font-weight: bold; margin: 24px 0 8px;">Recommendations</h2>
<ul style="font-family: Helvetica, sans-serif; font-size: 16px; margin: 0 0 16px; padding-left: 24px;">
{{range .Recommendations}}  <li style="margin: 0 0 8px;">{{.}}</li>
{{end}}</ul>
{{end}}
{{if .GapCategories}}
<h2 style="font-family: Helvetica, sans-serif; font-size: 18px; font-weight: bold; margin: 24px 0 8px;">Gaps we spotted</h2>
<p style="font-family: Helvetica, sans-serif; font-size: 16px; margin: 0 0 16px;">Your wardrobe is light on: {{range $i, $c := .GapCategories}}{{if $i}}, {{end}}{{$c}}{{end}}.</p>
{{end}}
<p style="font-family: Helvetica, sans-serif; font-size: 16px; margin: 16px 0 0;">Open the app to see the full breakdown.</p>`))

// GetAnalysisReportContent renders the analysis report body for the
// shared email layout.
func GetAnalysisReportContent(props AnalysisReportProps) string {
	var buf bytes.Buffer
	if err := analysisReportTemplate.Execute(&buf, props); err != nil {
		log.Printf("Error executing analysis report template: %v", err)
		return "<p>Your wardrobe analysis is ready. Open the app to view it.</p>"
	}
	return buf.String()
}
