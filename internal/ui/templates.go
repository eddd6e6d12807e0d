package ui

import (
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/me/schedsim/pkg/model"
)

// pidPalette matches the seven terminal colours of the text timeline.
var pidPalette = []string{"#dc2626", "#16a34a", "#ca8a04", "#2563eb", "#c026d3", "#0891b2", "#6b7280"}

// Template functions available in all templates.
var templateFuncs = template.FuncMap{
	"formatTime": func(t time.Time) string {
		if t.IsZero() {
			return "-"
		}
		return t.Format("2006-01-02 15:04:05")
	},
	"ago": func(t time.Time) string {
		if t.IsZero() {
			return "-"
		}
		return humanize.Time(t)
	},
	"comma": func(n int) string {
		return humanize.Comma(int64(n))
	},
	"statusColor": func(status model.RunStatus) string {
		switch status {
		case model.RunStatusCompleted:
			return "bg-green-100 text-green-800"
		case model.RunStatusDiverged:
			return "bg-orange-100 text-orange-800"
		case model.RunStatusFailed:
			return "bg-red-100 text-red-800"
		default:
			return "bg-gray-100 text-gray-800"
		}
	},
	"pidColor": func(pid int) string {
		if pid < 0 {
			return "transparent"
		}
		return pidPalette[pid%len(pidPalette)]
	},
	"idle": func(pid int) bool {
		return pid == model.IdleSlot
	},
	"na": func(v int) string {
		if v < 0 {
			return "N/A"
		}
		return fmt.Sprint(v)
	},
	"pct": func(v float64) string {
		return fmt.Sprintf("%.2f%%", v)
	},
	"f2": func(v float64) string {
		return fmt.Sprintf("%.2f", v)
	},
	"upper": strings.ToUpper,
}

// renderTemplate renders a page template inside the layout.
func renderTemplate(w io.Writer, name string, data map[string]any) error {
	content, ok := templates[name]
	if !ok {
		return fmt.Errorf("template not found: %s", name)
	}
	layout, ok := templates["layout"]
	if !ok {
		return fmt.Errorf("layout template not found")
	}

	tmpl, err := template.New("layout").Funcs(templateFuncs).Parse(layout)
	if err != nil {
		return fmt.Errorf("parse layout: %w", err)
	}
	if _, err := tmpl.New("content").Parse(content); err != nil {
		return fmt.Errorf("parse content: %w", err)
	}
	return tmpl.Execute(w, data)
}

var templates = map[string]string{
	"layout": `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
    <script src="https://cdn.tailwindcss.com"></script>
</head>
<body class="bg-gray-50 min-h-screen">
    <nav class="bg-white shadow-sm border-b">
        <div class="max-w-7xl mx-auto px-4 sm:px-6 lg:px-8">
            <div class="flex h-16">
                <a href="/ui/" class="flex items-center px-2 py-2 text-xl font-bold text-indigo-600">schedsim</a>
                <a href="/api/v1/" class="ml-6 flex items-center text-sm text-gray-500 hover:text-gray-700">API</a>
            </div>
        </div>
    </nav>
    <main class="max-w-7xl mx-auto py-6 sm:px-6 lg:px-8">
        {{template "content" .}}
    </main>
</body>
</html>`,

	"dashboard": `{{define "content"}}
<div class="px-4 sm:px-0">
    <h1 class="text-2xl font-semibold text-gray-900">Simulations</h1>
    <p class="mt-1 text-sm text-gray-500">{{.Total}} stored runs, server up {{.Uptime}}</p>

    <div class="mt-4 flex space-x-4 text-sm">
        {{range $status, $n := .Stats}}<span class="px-2 py-1 rounded bg-white shadow">{{$status}}: {{$n}}</span>{{end}}
    </div>

    <div class="mt-4 text-sm">
        Algorithm:
        <a href="/ui/" class="{{if not .Algorithm}}font-bold{{end}} text-indigo-600">all</a>
        {{$sel := .Algorithm}}{{range .Algorithms}}
        <a href="/ui/?algorithm={{.}}" class="{{if eq (print .) $sel}}font-bold{{end}} ml-2 text-indigo-600">{{.}}</a>
        {{end}}
    </div>

    {{if .Runs}}
    <table class="mt-4 min-w-full divide-y divide-gray-200 bg-white shadow rounded">
        <thead class="bg-gray-50 text-left text-xs font-medium text-gray-500 uppercase">
            <tr><th class="px-4 py-2">ID</th><th class="px-4 py-2">Name</th><th class="px-4 py-2">Algorithm</th><th class="px-4 py-2">CPUs</th><th class="px-4 py-2">Status</th><th class="px-4 py-2">Ticks</th><th class="px-4 py-2">Avg Waiting</th><th class="px-4 py-2">Created</th></tr>
        </thead>
        <tbody class="divide-y divide-gray-200 text-sm">
            {{range .Runs}}
            <tr>
                <td class="px-4 py-2 font-mono"><a href="/ui/simulations/{{.ID}}" class="text-indigo-600">{{.ID}}</a></td>
                <td class="px-4 py-2">{{.Name}}</td>
                <td class="px-4 py-2">{{.Algorithm}}</td>
                <td class="px-4 py-2">{{.CPUs}}</td>
                <td class="px-4 py-2"><span class="px-2 rounded {{statusColor .Status}}">{{.Status}}</span></td>
                <td class="px-4 py-2">{{comma .TotalTicks}}</td>
                <td class="px-4 py-2">{{f2 .Summary.AvgWaiting}}</td>
                <td class="px-4 py-2" title="{{formatTime .CreatedAt}}">{{ago .CreatedAt}}</td>
            </tr>
            {{end}}
        </tbody>
    </table>
    <div class="mt-4 flex justify-between text-sm">
        {{if .Pagination.HasPrev}}<a href="/ui/?offset={{.Pagination.PrevOffset}}&limit={{.Pagination.Limit}}&algorithm={{.Algorithm}}" class="text-indigo-600">Previous</a>{{else}}<span></span>{{end}}
        {{if .Pagination.HasMore}}<a href="/ui/?offset={{.Pagination.NextOffset}}&limit={{.Pagination.Limit}}&algorithm={{.Algorithm}}" class="text-indigo-600">Next</a>{{end}}
    </div>
    {{else}}
    <p class="mt-6 text-gray-500">No simulations stored yet.</p>
    {{end}}
</div>
{{end}}`,

	"simulations/detail": `{{define "content"}}
{{$run := .Run}}
<div class="px-4 sm:px-0">
    <h1 class="text-2xl font-semibold text-gray-900">{{if $run.Name}}{{$run.Name}}{{else}}{{$run.ID}}{{end}}</h1>
    <p class="mt-1 text-sm text-gray-500 font-mono">{{$run.ID}}</p>
    <dl class="mt-4 grid grid-cols-4 gap-4 text-sm">
        <div><dt class="text-gray-500">Algorithm</dt><dd>{{$run.Algorithm.Name}}{{if $run.Algorithm.UsesQuantum}} (quantum {{$run.Quantum}}){{end}}</dd></div>
        <div><dt class="text-gray-500">CPUs</dt><dd>{{$run.CPUs}}</dd></div>
        <div><dt class="text-gray-500">Status</dt><dd><span class="px-2 rounded {{statusColor $run.Status}}">{{$run.Status}}</span></dd></div>
        <div><dt class="text-gray-500">Ticks</dt><dd>{{comma $run.TotalTicks}}</dd></div>
        <div><dt class="text-gray-500">Avg Turnaround</dt><dd>{{f2 $run.Summary.AvgTurnaround}}</dd></div>
        <div><dt class="text-gray-500">Avg Waiting</dt><dd>{{f2 $run.Summary.AvgWaiting}}</dd></div>
        <div><dt class="text-gray-500">Avg Response</dt><dd>{{f2 $run.Summary.AvgResponse}}</dd></div>
        <div><dt class="text-gray-500">Utilization</dt><dd>{{pct $run.Summary.Utilization}}</dd></div>
    </dl>
    {{if $run.Error}}<div class="mt-4 rounded-md bg-red-50 p-4 text-sm text-red-700">{{$run.Error}}</div>{{end}}

    {{with $run.Result}}
    <h2 class="mt-8 text-lg font-medium">Timeline</h2>
    <div class="mt-2 overflow-x-auto">
        <table class="text-xs font-mono border-collapse">
            {{range $cpu, $row := $.CPURows}}
            <tr>
                <th class="pr-2 text-right text-gray-500">CPU {{$cpu}}</th>
                {{range $row}}<td class="w-6 h-6 text-center text-white" style="background: {{pidColor .}}">{{if idle .}}<span class="text-gray-400">.</span>{{else}}{{.}}{{end}}</td>{{end}}
            </tr>
            {{end}}
        </table>
    </div>

    <h2 class="mt-8 text-lg font-medium">Process Statistics</h2>
    <table class="mt-2 min-w-full divide-y divide-gray-200 bg-white shadow rounded text-sm">
        <thead class="bg-gray-50 text-left text-xs text-gray-500">
            <tr>{{range $.Columns}}<th class="px-3 py-2">{{upper .}}</th>{{end}}</tr>
        </thead>
        <tbody class="divide-y divide-gray-200">
            {{range .Processes}}
            <tr>
                <td class="px-3 py-1"><span class="inline-block w-3 h-3 rounded-full mr-1" style="background: {{pidColor .PID}}"></span>{{.PID}}</td>
                <td class="px-3 py-1">{{.Arrival}}</td><td class="px-3 py-1">{{.Burst}}</td><td class="px-3 py-1">{{.Priority}}</td>
                <td class="px-3 py-1">{{na .Start}}</td><td class="px-3 py-1">{{na .Finish}}</td>
                <td class="px-3 py-1">{{na .Turnaround}}</td><td class="px-3 py-1">{{na .Waiting}}</td><td class="px-3 py-1">{{na .Response}}</td>
            </tr>
            {{end}}
        </tbody>
    </table>

    <h2 class="mt-8 text-lg font-medium">CPU Statistics</h2>
    <table class="mt-2 divide-y divide-gray-200 bg-white shadow rounded text-sm">
        <thead class="bg-gray-50 text-left text-xs text-gray-500"><tr><th class="px-3 py-2">CPU</th><th class="px-3 py-2">BUSY</th><th class="px-3 py-2">IDLE</th><th class="px-3 py-2">UTILIZATION</th></tr></thead>
        <tbody class="divide-y divide-gray-200">
            {{range .CPUStats}}<tr><td class="px-3 py-1">{{.ID}}</td><td class="px-3 py-1">{{.BusyTicks}}</td><td class="px-3 py-1">{{.IdleTicks}}</td><td class="px-3 py-1">{{pct .Utilization}}</td></tr>{{end}}
        </tbody>
    </table>
    {{else}}
    <p class="mt-6 text-gray-500">No result stored for this run.</p>
    {{end}}

    <p class="mt-8 text-sm">
        Report:
        <a href="/api/v1/simulations/{{$run.ID}}/report?format=text" class="text-indigo-600">text</a>
        <a href="/api/v1/simulations/{{$run.ID}}/report?format=csv" class="ml-2 text-indigo-600">csv</a>
        <a href="/api/v1/simulations/{{$run.ID}}/report?format=json" class="ml-2 text-indigo-600">json</a>
        <a href="/api/v1/simulations/{{$run.ID}}/report?format=yaml" class="ml-2 text-indigo-600">yaml</a>
    </p>
</div>
{{end}}`,

	"error": `{{define "content"}}
<div class="px-4 sm:px-0">
    <div class="rounded-md bg-red-50 p-4">
        <h3 class="text-sm font-medium text-red-800">{{.Message}}</h3>
    </div>
    <a href="/ui/" class="mt-4 inline-block text-sm text-indigo-600">Back to simulations</a>
</div>
{{end}}`,
}
