package http

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/couchcryptid/carbon-emissions-tracker/internal/domain"
	"github.com/couchcryptid/carbon-emissions-tracker/internal/render"
)

const (
	errUpstream = "upstream data unavailable"
	errNoData   = "no data available"
)

// yearsResponse is the body of GET /api/years.
type yearsResponse struct {
	Min   int   `json:"min"`
	Max   int   `json:"max"`
	Years []int `json:"years"`
}

// figuresResponse carries everything the page needs to redraw for one year.
type figuresResponse struct {
	Year           int            `json:"year"`
	Summary        domain.Summary `json:"summary"`
	CountriesLabel string         `json:"countries_label"`
	AverageLabel   string         `json:"average_label"`
	Map            render.Figure  `json:"map"`
	Top            render.Figure  `json:"top"`
}

// yearParam reads the optional ?year= query parameter. ok is false when the
// parameter is absent.
func yearParam(r *http.Request) (year int, ok bool, err error) {
	raw := strings.TrimSpace(r.URL.Query().Get("year"))
	if raw == "" {
		return 0, false, nil
	}
	year, err = strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("invalid year %q", raw)
	}
	return year, true, nil
}

func refreshParam(r *http.Request) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get("refresh"))
	return v
}

// loadTable fetches the table, writing a 502 on failure. ok is false when the
// caller should stop.
func (s *Server) loadTable(w http.ResponseWriter, r *http.Request) (domain.Table, bool) {
	table, err := s.tables.Table(r.Context(), refreshParam(r))
	if err != nil {
		s.logger.Error("load table failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusBadGateway, errUpstream)
		return domain.Table{}, false
	}
	return table, true
}

// latestYear is the default selection: the most recent year with data.
func latestYear(table domain.Table) int {
	_, maxYear, _ := table.YearBounds()
	return maxYear
}

func (s *Server) handleYears(w http.ResponseWriter, r *http.Request) {
	table, ok := s.loadTable(w, r)
	if !ok {
		return
	}
	minYear, maxYear, _ := table.YearBounds()
	writeJSON(w, http.StatusOK, yearsResponse{Min: minYear, Max: maxYear, Years: table.Years()})
}

func (s *Server) handleObservations(w http.ResponseWriter, r *http.Request) {
	year, given, err := yearParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	table, ok := s.loadTable(w, r)
	if !ok {
		return
	}
	if !given {
		writeJSON(w, http.StatusOK, table.InRange(domain.YearRange{}))
		return
	}
	writeJSON(w, http.StatusOK, table.ForYear(year))
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	year, given, err := yearParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	table, ok := s.loadTable(w, r)
	if !ok {
		return
	}
	if !given {
		year = latestYear(table)
	}
	writeJSON(w, http.StatusOK, table.Summarize(year))
}

func (s *Server) handleFigures(w http.ResponseWriter, r *http.Request) {
	year, given, err := yearParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	table, ok := s.loadTable(w, r)
	if !ok {
		return
	}
	if !given {
		year = latestYear(table)
	}
	writeJSON(w, http.StatusOK, buildFigures(table, year))
}

func buildFigures(table domain.Table, year int) figuresResponse {
	summary := table.Summarize(year)
	return figuresResponse{
		Year:           year,
		Summary:        summary,
		CountriesLabel: render.FormatCount(summary.Countries),
		AverageLabel:   render.FormatAverage(summary.Average),
		Map:            render.ChoroplethFigure(table.ForYear(year)),
		Top:            render.TopEmittersFigure(table.Top(year, render.TopN)),
	}
}

func (s *Server) handleTopSVG(w http.ResponseWriter, r *http.Request) {
	year, given, err := yearParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	table, ok := s.loadTable(w, r)
	if !ok {
		return
	}
	if !given {
		year = latestYear(table)
	}

	var buf bytes.Buffer
	err = render.TopEmittersSVG(&buf, fmt.Sprintf("Top Emitters (%d)", year), table.Top(year, render.TopN))
	if errors.Is(err, render.ErrNoData) {
		writeError(w, http.StatusNotFound, errNoData)
		return
	}
	if err != nil {
		s.logger.Error("render chart failed", "year", year, "error", err)
		writeError(w, http.StatusInternalServerError, "chart rendering failed")
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	year, given, err := yearParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	table, ok := s.loadTable(w, r)
	if !ok {
		return
	}

	rows, suffix := table.InRange(domain.YearRange{}), "all"
	if given {
		rows, suffix = table.ForYear(year), strconv.Itoa(year)
	}
	domain.SortByKey(rows)

	var buf bytes.Buffer
	if err := render.WriteXLSX(&buf, table, rows); err != nil {
		s.logger.Error("xlsx export failed", "error", err)
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}

	filename := fmt.Sprintf("%s-%s.xlsx", strings.ToLower(table.Indicator.ID), suffix)
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	_, _ = w.Write(buf.Bytes())
}
