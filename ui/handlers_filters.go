package ui

import (
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"dashlab/domain/synth"
	"dashlab/domain/table"
	"dashlab/internal/session"
	"dashlab/ui/charts"
)

const dateLayout = "2006-01-02"

// lastFiltersKey holds the last-applied form filter set in the session,
// encoded as a query string.
const lastFiltersKey = "filters:last"

// trendFilters is one parsed filter set over the trend series: category
// membership, date range and value range, combined conjunctively.
type trendFilters struct {
	Cats    []string
	AllCats []string

	From, To           time.Time
	FromBound, ToBound time.Time

	Min, Max           float64
	LoBound, HiBound   float64
}

// Selected reports whether a category is part of the filter, for
// checkbox round-trips in templates.
func (f *trendFilters) Selected(cat string) bool {
	return containsString(f.Cats, cat)
}

func (f *trendFilters) FromVal() string { return f.From.Format(dateLayout) }
func (f *trendFilters) ToVal() string   { return f.To.Format(dateLayout) }

// trendFiltersFrom parses a filter set from query values, defaulting
// every dimension to its full bounds so an empty query passes all rows.
func trendFiltersFrom(t *table.Table, q url.Values) (*trendFilters, error) {
	f := &trendFilters{}
	var err error
	if f.AllCats, err = t.Uniques("category"); err != nil {
		return nil, err
	}
	if f.FromBound, f.ToBound, err = t.TimeBounds("date"); err != nil {
		return nil, err
	}
	if f.LoBound, f.HiBound, err = t.NumBounds("value"); err != nil {
		return nil, err
	}

	f.Cats = q["cat"]
	if len(f.Cats) == 0 {
		f.Cats = f.AllCats
	}

	f.From, f.To = f.FromBound, f.ToBound
	if v, err := time.Parse(dateLayout, q.Get("from")); err == nil {
		f.From = v
	}
	if v, err := time.Parse(dateLayout, q.Get("to")); err == nil {
		f.To = v
	}

	f.Min, f.Max = f.LoBound, f.HiBound
	if raw := q.Get("min"); raw != "" {
		if v := table.ParseNumber(raw); !math.IsNaN(v) {
			f.Min = v
		}
	}
	if raw := q.Get("max"); raw != "" {
		if v := table.ParseNumber(raw); !math.IsNaN(v) {
			f.Max = v
		}
	}
	return f, nil
}

// apply builds the three masks, ANDs them and filters the table.
func (f *trendFilters) apply(t *table.Table) (*table.Table, int, error) {
	catMask, err := t.MaskIn("category", f.Cats)
	if err != nil {
		return nil, 0, err
	}
	dateMask, err := t.MaskTimeBetween("date", f.From, f.To)
	if err != nil {
		return nil, 0, err
	}
	valMask, err := t.MaskNumBetween("value", f.Min, f.Max)
	if err != nil {
		return nil, 0, err
	}
	combined := catMask.And(dateMask).And(valMask)
	filtered, err := t.Filter(combined)
	if err != nil {
		return nil, 0, err
	}
	return filtered, combined.Count(), nil
}

// filterView renders one filtered view of the trend series into common
// template fields.
func (s *Server) filterView(data gin.H, f *trendFilters, t *table.Table) error {
	filtered, matched, err := f.apply(t)
	if err != nil {
		return err
	}

	line := charts.New(charts.Records(filtered))
	line.Height = 300
	line.Mark = &charts.Mark{Type: "line"}
	line.Encoding = &charts.Encoding{
		X:     &charts.Field{Field: "date", Type: charts.Temporal, Title: "Date"},
		Y:     &charts.Field{Field: "value", Type: charts.Quantitative, Title: "Value"},
		Color: &charts.Field{Field: "category", Type: charts.Nominal},
	}
	js, err := line.JSON()
	if err != nil {
		return err
	}

	data["Filters"] = f
	data["Matched"] = matched
	data["Total"] = t.NumRows()
	data["Spec"] = js
	data["Preview"] = viewTable(filtered, 15)
	return nil
}

// handleFilters applies filters straight from query parameters: every
// control change submits the form, so the page always reflects the URL.
func (s *Server) handleFilters(c *gin.Context) {
	t := synth.TrendSeries(synth.DefaultTrendConfig())
	f, err := trendFiltersFrom(t, c.Request.URL.Query())
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}

	data := s.pageData(c, "Filters", "filters")
	if err := s.filterView(data, f, t); err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	data["Prose"] = renderMarkdown(`## Conjunctive masks

Each control contributes one boolean mask over the table: category membership, date
range, value range. The masks are ANDed and the table filtered once. Rows with a
missing value in any filtered column never match. The filter state *is* the URL, so
a filtered view is shareable and the back button works.`)
	s.renderTemplate(c, "filters.html", data)
}

// handleFiltersForm renders the form-batched variant: the last applied
// filter set comes from the session, not the URL.
func (s *Server) handleFiltersForm(c *gin.Context) {
	t := synth.TrendSeries(synth.DefaultTrendConfig())

	sess := session.FromContext(c)
	stored := sess.Get(c.Request.Context(), lastFiltersKey)
	q, err := url.ParseQuery(stored)
	if err != nil {
		q = url.Values{}
	}
	f, err := trendFiltersFrom(t, q)
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}

	data := s.pageData(c, "Filters: Forms", "filters-form")
	if err := s.filterView(data, f, t); err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	data["Applied"] = stored != ""
	data["Prose"] = renderMarkdown(`## Batch with a form

The live page re-renders on every control change, which gets expensive when each
render recomputes something real. A form batches instead: edit every control, then
apply once. The applied set is stored in your session, so the page shows your last
filters even after navigating away and back.`)
	s.renderTemplate(c, "filters_form.html", data)
}

// handleFiltersFormApply stores the submitted filter set and redirects,
// the post/redirect/get shape again.
func (s *Server) handleFiltersFormApply(c *gin.Context) {
	if err := c.Request.ParseForm(); err != nil {
		s.renderError(c, http.StatusBadRequest, err)
		return
	}
	sess := session.FromContext(c)
	ctx := c.Request.Context()

	if c.PostForm("action") == "clear" {
		if err := sess.Delete(ctx, lastFiltersKey); err != nil {
			s.renderError(c, http.StatusInternalServerError, err)
			return
		}
	} else {
		if err := sess.Set(ctx, lastFiltersKey, c.Request.PostForm.Encode()); err != nil {
			s.renderError(c, http.StatusInternalServerError, err)
			return
		}
	}
	c.Redirect(http.StatusSeeOther, "/filters/form")
}

// handleFiltersPlacement is the same live filtering with the controls in
// a sidebar, the layout most multi-filter dashboards settle on.
func (s *Server) handleFiltersPlacement(c *gin.Context) {
	t := synth.TrendSeries(synth.DefaultTrendConfig())
	f, err := trendFiltersFrom(t, c.Request.URL.Query())
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}

	data := s.pageData(c, "Filters: Placement", "filters-placement")
	if err := s.filterView(data, f, t); err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	data["Prose"] = renderMarkdown(`## Where filters live

Inline controls sit next to the content they affect and work for one or two filters.
Past that, a sidebar keeps the content column clean and makes the filter set read as
one unit. The filtering logic is identical to the live page; only placement differs.`)
	s.renderTemplate(c, "filters_placement.html", data)
}
