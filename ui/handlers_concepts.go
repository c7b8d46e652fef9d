package ui

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"dashlab/internal/session"
)

const counterKey = "concepts:counter"

// handleConcepts demonstrates the request/render model: the whole page is
// rebuilt on every request, inputs arrive as query parameters, and only
// session values survive between renders.
func (s *Server) handleConcepts(c *gin.Context) {
	sess := session.FromContext(c)
	data := s.pageData(c, "Key Concepts", "concepts")

	// Instant input: the name field submits on change, so every
	// keystroke-commit is a fresh render.
	name := strings.TrimSpace(c.Query("name"))
	data["Name"] = name
	if name != "" {
		data["Greeting"] = "Hello, " + name + "!"
	}

	// Form-batched inputs: nothing happens until the form submits, then
	// both values arrive in the same request.
	aStr, bStr := c.Query("a"), c.Query("b")
	data["A"], data["B"] = aStr, bStr
	if aStr != "" && bStr != "" {
		a, errA := strconv.ParseFloat(aStr, 64)
		b, errB := strconv.ParseFloat(bStr, 64)
		if errA == nil && errB == nil {
			data["Sum"] = formatComma(a + b)
		} else {
			data["SumError"] = "both fields must be numbers"
		}
	}

	data["Counter"] = sess.GetInt(c.Request.Context(), counterKey)
	data["Prose"] = renderMarkdown(`## The request/render cycle

There is no long-lived page process. Every interaction is an HTTP request, and the
handler rebuilds the page from scratch each time. Local variables vanish when the
response is written; the run counter above only climbs because it lives in the
session store, keyed by your browser cookie.

The greeting updates on every change because its input resubmits the page
immediately. The adder below batches: you can edit both fields freely and nothing
recomputes until you press the button.`)
	s.renderTemplate(c, "concepts.html", data)
}

// handleConceptsCounter mutates the persistent counter then redirects
// back, the post/redirect/get shape of a rerun.
func (s *Server) handleConceptsCounter(c *gin.Context) {
	sess := session.FromContext(c)
	ctx := c.Request.Context()

	switch c.PostForm("action") {
	case "increment":
		sess.Increment(ctx, counterKey, 1)
	case "reset":
		if err := sess.Delete(ctx, counterKey); err != nil {
			s.renderError(c, http.StatusInternalServerError, err)
			return
		}
	}
	c.Redirect(http.StatusSeeOther, "/concepts")
}
