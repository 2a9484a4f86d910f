package ogc

import (
	"bytes"
	"html/template"
)

var docsTemplate = template.Must(template.New("api.html").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{.Title}}</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js" crossorigin></script>
  <script>
    window.onload = () => {
      window.ui = SwaggerUIBundle({ url: {{.SpecURL}}, dom_id: "#swagger-ui" });
    };
  </script>
</body>
</html>
`))

// renderDocs renders the Swagger UI page bound to specURL.
func renderDocs(title, specURL string) (string, error) {
	var buf bytes.Buffer
	err := docsTemplate.Execute(&buf, struct {
		Title   string
		SpecURL string
	}{title, specURL})
	return buf.String(), err
}
