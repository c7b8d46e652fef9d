package ui

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"dashlab/internal/config"
)

type secretRow struct {
	Key   string
	Value string
}

type secretGroup struct {
	Name string
	Rows []secretRow
}

// handleSecrets explains the secrets file and, when a spreadsheet
// connection is configured, performs a live fetch with it. A configured
// connection that fails halts the page on the error screen, matching how
// a dashboard should refuse to render over broken credentials.
func (s *Server) handleSecrets(c *gin.Context) {
	groups := secretGroups(s.cfg.Secrets)

	data := s.pageData(c, "Secrets & Connections", "secrets")
	data["Groups"] = groups
	data["SecretsFile"] = s.cfg.Data.SecretsFile
	data["Prose"] = renderMarkdown(`## Keep credentials out of the code

Connection parameters live in a TOML secrets file next to the app, never in source.
The file holds one table per connection plus any extra secret tables you define.
Values render redacted below; the application reads the real ones at startup.

A missing secrets file is fine until a page actually needs a connection. This page
needs one: if a spreadsheet connection is configured it fetches live data with it,
and a failing fetch stops the render with an error instead of showing stale or
partial results.`)

	if _, err := s.cfg.Secrets.SpreadsheetURL(connectionName); err != nil {
		data["Configured"] = false
		s.renderTemplate(c, "secrets.html", data)
		return
	}

	sales, err := s.source.RemoteSales(c.Request.Context())
	if err != nil {
		s.renderError(c, http.StatusBadGateway, err)
		return
	}
	data["Configured"] = true
	data["Origin"] = sales.Origin
	data["Rows"] = sales.Table.NumRows()
	data["Preview"] = viewTable(sales.Table, 10)
	s.renderTemplate(c, "secrets.html", data)
}

// secretGroups flattens the secrets into display groups with every value
// redacted. Usernames stay readable; everything else is masked.
func secretGroups(secrets *config.Secrets) []secretGroup {
	var groups []secretGroup

	names := make([]string, 0, len(secrets.Connections))
	for name := range secrets.Connections {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		conn := secrets.Connections[name]
		var rows []secretRow
		if conn.Spreadsheet != "" {
			rows = append(rows, secretRow{"spreadsheet", config.Redact(conn.Spreadsheet)})
		}
		if conn.URL != "" {
			rows = append(rows, secretRow{"url", config.Redact(conn.URL)})
		}
		if conn.Username != "" {
			rows = append(rows, secretRow{"username", conn.Username})
		}
		if conn.Password != "" {
			rows = append(rows, secretRow{"password", config.Redact(conn.Password)})
		}
		groups = append(groups, secretGroup{Name: "connections." + name, Rows: rows})
	}

	extraNames := make([]string, 0, len(secrets.Extra))
	for name := range secrets.Extra {
		extraNames = append(extraNames, name)
	}
	sort.Strings(extraNames)
	for _, name := range extraNames {
		values := secrets.Extra[name]
		keys := make([]string, 0, len(values))
		for k := range values {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		rows := make([]secretRow, 0, len(keys))
		for _, k := range keys {
			rows = append(rows, secretRow{k, config.Redact(values[k])})
		}
		groups = append(groups, secretGroup{Name: name, Rows: rows})
	}
	return groups
}
