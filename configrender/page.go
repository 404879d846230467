package configrender

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"net/url"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/language"

	"github.com/hazyhaar/confstatus/printer"
)

// BundleProvider is the i18n provider name of the page strings.
const BundleProvider = "configstatus"

const (
	fileBaseLayout = "20060102-1504-0700"
	displayLayout  = "January 2, 2006 3:04:05 PM MST"
)

//go:embed bundles/*.yaml
var bundleFS embed.FS

//go:embed res
var resFS embed.FS

var pageLanguages = []language.Tag{language.English, language.French}

var pageMatcher = language.NewMatcher(pageLanguages)

// titlePolicy keeps inline formatting in tab titles and drops the rest.
var titlePolicy = bluemonday.NewPolicy().
	AllowElements("b", "i", "em", "strong", "code", "sub", "sup", "small")

var indexTmpl = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="{{.Lang}}">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<link rel="stylesheet" href="{{.Res}}/configstatus.css">
</head>
<body>
<h1>{{.Title}}</h1>
<p class="statline">{{.DateLabel}}: {{.Date}}</p>
<p class="downloads">{{.DownloadLabel}}: <a href="{{.TextURL}}">{{.TextLabel}}</a> | <a href="{{.ZipURL}}">{{.ZipLabel}}</a></p>
{{- if .Tabs}}
<div id="tabs">
<ul>
{{- range .Tabs}}
<li><a href="{{.URL}}" data-label="{{.Label}}">{{.Title}}</a></li>
{{- end}}
</ul>
<div id="tab-panel"></div>
</div>
{{- else}}
<p class="empty">{{.EmptyLabel}}</p>
{{- end}}
<script src="{{.Res}}/configstatus.js"></script>
</body>
</html>
`))

type indexTab struct {
	Label string
	URL   string
	Title template.HTML
}

type indexPage struct {
	Lang          string
	Title         string
	Res           string
	DateLabel     string
	Date          string
	DownloadLabel string
	TextLabel     string
	ZipLabel      string
	TextURL       string
	ZipURL        string
	EmptyLabel    string
	Tabs          []indexTab
}

// FileBaseName is the download name, without extension, of a dump taken
// at t.
func FileBaseName(t time.Time) string {
	return "configuration-status-" + t.Format(fileBaseLayout)
}

// pageLanguage picks the page language from the Accept-Language header.
func pageLanguage(r *http.Request) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(r.Header.Get("Accept-Language"))
	if err != nil || len(tags) == 0 {
		return language.English
	}
	_, idx, _ := pageMatcher.Match(tags...)
	return pageLanguages[idx]
}

func (p *Plugin) handleIndex(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := indexTmpl.Execute(&buf, p.indexPage(pageLanguage(r))); err != nil {
		p.logger.Error("configrender: index page", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func (p *Plugin) indexPage(lang language.Tag) indexPage {
	b := p.bundles.Bundle(BundleProvider, lang)
	now := p.now()
	base := p.root + "/" + FileBaseName(now)

	title := p.title
	if title == "" {
		title = b.String("configStatus.pluginTitle")
	}
	page := indexPage{
		Lang:          lang.String(),
		Title:         title,
		Res:           p.root + "/res",
		DateLabel:     b.String("configStatus.date"),
		Date:          now.Format(displayLayout),
		DownloadLabel: b.String("configStatus.download"),
		TextLabel:     b.String("configStatus.downloadText"),
		ZipLabel:      b.String("configStatus.downloadZip"),
		TextURL:       base + ".txt",
		ZipURL:        base + ".zip",
		EmptyLabel:    b.String("configStatus.empty"),
	}
	for _, d := range p.registry.Printers() {
		if !d.Match(printer.ModeWeb) {
			continue
		}
		page.Tabs = append(page.Tabs, indexTab{
			Label: d.Label(),
			URL:   p.root + "/" + url.PathEscape(d.Label()) + ".nfo",
			Title: template.HTML(titlePolicy.Sanitize(d.Title())),
		})
	}
	return page
}
