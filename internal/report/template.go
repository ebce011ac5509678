package report

// ReportTemplate is the HTML template for the growth report.
// It is embedded as a Go constant with no external file dependencies.
const ReportTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<style>
  :root {
    --bg: #ffffff;
    --text: #1a1a2e;
    --muted: #6b7280;
    --border: #e5e7eb;
    --accent: #2563eb;
    --green: #16a34a;
    --red: #dc2626;
  }
  * { margin: 0; padding: 0; box-sizing: border-box; }
  body {
    font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
    color: var(--text);
    background: var(--bg);
    line-height: 1.6;
    max-width: 1100px;
    margin: 0 auto;
    padding: 20px;
  }
  h1 { font-size: 1.5rem; font-weight: 600; color: var(--accent); margin-bottom: 4px; }
  .muted { color: var(--muted); font-size: 0.85rem; }
  .header { border-bottom: 3px solid var(--accent); padding-bottom: 12px; margin-bottom: 16px; }
  table { width: 100%; border-collapse: collapse; font-size: 0.9rem; }
  th, td { padding: 6px 10px; border-bottom: 1px solid var(--border); text-align: right; white-space: nowrap; }
  th:first-child, td:first-child { text-align: left; }
  th { background: #f8fafc; font-weight: 600; }
  .pos { color: var(--green); }
  .neg { color: var(--red); }
  .na { color: var(--muted); }
  .empty { padding: 24px; text-align: center; color: var(--muted); }
</style>
</head>
<body>
<div class="header">
  <h1>{{.Title}}</h1>
  <p class="muted">Cutoff: {{.Cutoff}} | Provider: {{.Provider}} | Generated: {{.GeneratedAt}}</p>
</div>
{{if .Rows}}
<table>
  <thead>
    <tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr>
  </thead>
  <tbody>
  {{range .Rows}}
    <tr>{{range .}}<td{{if .Class}} class="{{.Class}}"{{end}}>{{.Text}}</td>{{end}}</tr>
  {{end}}
  </tbody>
</table>
{{else}}
<p class="empty">{{.NoData}}</p>
{{end}}
{{if .Skipped}}
<p class="muted">Skipped: {{range $i, $s := .Skipped}}{{if $i}}, {{end}}{{$s}}{{end}}</p>
{{end}}
</body>
</html>
`
