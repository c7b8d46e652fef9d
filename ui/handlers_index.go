package ui

import (
	"github.com/gin-gonic/gin"
)

type labEntry struct {
	Path    string
	Name    string
	Summary string
}

var labs = []labEntry{
	{"/formatting", "Formatting & Layout", "Headings, prose, metric tiles, columns, tabs, expanders, status boxes and tables."},
	{"/concepts", "Key Concepts", "The request/render cycle, instant vs form-batched inputs, and a persistent counter."},
	{"/charts", "Chart Essentials", "Quick charts plus the full declarative gallery over the house-flips dataset."},
	{"/caching", "Caching & Fragments", "The market analysis pipeline cached vs uncached, with a fragment-scoped city drill-down."},
	{"/filters", "Filters", "Conjunctive masks: live query-param filters, form-batched filters, placement patterns."},
	{"/interactivity", "Interactivity", "Value formatting and widget round-trips."},
	{"/secrets", "Secrets & Connections", "The secrets file, redacted display, and a live spreadsheet connection."},
}

func (s *Server) handleIndex(c *gin.Context) {
	data := s.pageData(c, "dashlab", "index")
	data["Labs"] = labs
	data["Intro"] = renderMarkdown(`Each lab is a self-contained page demonstrating one
dashboard-building concept. Pages re-render from scratch on every request; anything
that must survive a render lives in the per-browser session store. The run counter in
the header shows how many times your session has rendered the current page.`)
	s.renderTemplate(c, "index.html", data)
}
