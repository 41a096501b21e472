package testutil

import (
	"fmt"
	"strings"
)

// ToolRow describes one row of the tools table in a generated dump.
type ToolRow struct {
	ID          int
	Key         string
	Name        string
	Description string
	CreditCost  int
	Provider    string
}

// InsertLine renders row as a single-line INSERT INTO tools statement
// without a trailing newline. Quotes in text fields are doubled.
func (r ToolRow) InsertLine() string {
	return fmt.Sprintf("INSERT INTO tools VALUES (%d, %s, %s, %s, %d, %s);",
		r.ID, quote(r.Key), quote(r.Name), quote(r.Description), r.CreditCost, quote(r.Provider))
}

// GenerateToolRows generates n rows with plain-text descriptions.
func GenerateToolRows(n int) []ToolRow {
	rows := make([]ToolRow, n)
	for i := 0; i < n; i++ {
		rows[i] = ToolRow{
			ID:          i + 1,
			Key:         fmt.Sprintf("tool_%d", i+1),
			Name:        fmt.Sprintf("Tool %d", i+1),
			Description: fmt.Sprintf("Description for tool %d", i+1),
			CreditCost:  (i % 10) + 1,
			Provider:    "gemini-pro",
		}
	}
	return rows
}

// GenerateDump renders a pg_dump style file around rows.
func GenerateDump(rows []ToolRow) string {
	var b strings.Builder
	b.WriteString("--\n-- PostgreSQL database dump\n--\n\n")
	b.WriteString("CREATE TABLE tools (id integer, tool_key text, name jsonb, description jsonb, base_credit_cost integer, provider text);\n\n")
	for _, r := range rows {
		b.WriteString(r.InsertLine())
		b.WriteByte('\n')
	}
	b.WriteString("\n-- PostgreSQL database dump complete\n")
	return b.String()
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
