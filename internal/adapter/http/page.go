package http

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/couchcryptid/carbon-emissions-tracker/internal/domain"
)

// pageTitle heads the dashboard.
const pageTitle = "Global Carbon Emissions"

// loadErrorMessage is shown instead of the charts when no data can be displayed.
const loadErrorMessage = "Unable to load data. Please try again later."

//go:embed templates/*.html.tmpl
var templateFS embed.FS

type pageRenderer struct {
	index *template.Template
}

func newPageRenderer() *pageRenderer {
	return &pageRenderer{
		index: template.Must(template.ParseFS(templateFS, "templates/index.html.tmpl")),
	}
}

// pageData feeds templates/index.html.tmpl. Figures is rendered into a script
// block, where html/template encodes it as JSON.
type pageData struct {
	Title     string
	Indicator domain.Indicator
	SourceURL string
	Error     string
	MinYear   int
	MaxYear   int
	Year      int
	Figures   figuresResponse
}

func (p *pageRenderer) render(w http.ResponseWriter, status int, data pageData) error {
	var buf bytes.Buffer
	if err := p.index.Execute(&buf, data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := w.Write(buf.Bytes())
	return err
}

// sourceURL links to the indicator's page on the World Bank data site.
func sourceURL(indicator string) string {
	return "https://data.worldbank.org/indicator/" + indicator
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := pageData{Title: pageTitle}

	table, err := s.tables.Table(r.Context(), refreshParam(r))
	status := http.StatusOK
	switch {
	case err != nil:
		s.logger.Error("load table failed", "path", r.URL.Path, "error", err)
		status = http.StatusBadGateway
		data.Error = loadErrorMessage
	case table.Empty():
		data.Error = loadErrorMessage
	}

	if data.Error == "" {
		data.Indicator = table.Indicator
		data.SourceURL = sourceURL(table.Indicator.ID)
		data.MinYear, data.MaxYear, _ = table.YearBounds()

		data.Year = data.MaxYear
		if year, given, err := yearParam(r); err == nil && given && year >= data.MinYear && year <= data.MaxYear {
			data.Year = year
		}
		data.Figures = buildFigures(table, data.Year)
	}

	if err := s.pages.render(w, status, data); err != nil {
		s.logger.Error("render page failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
