package sqlgen

import (
	"fmt"
	"io"
	"strings"
)

// Column is one target column with its formatted value.
// Note, when set, is emitted as a trailing line comment.
type Column struct {
	Name  string
	Value Literal
	Note  string
}

// Insert is a single-row INSERT ... VALUES statement.
type Insert struct {
	Table   string
	Columns []Column
}

// SQL renders the statement one column per line.
func (s Insert) SQL() string {
	var b strings.Builder
	b.Grow(64 + len(s.Columns)*48)

	b.WriteString("INSERT INTO ")
	b.WriteString(s.Table)
	b.WriteString(" (\n")
	for i, c := range s.Columns {
		b.WriteString("    ")
		b.WriteString(c.Name)
		if i < len(s.Columns)-1 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
	b.WriteString(") VALUES (\n")
	for i, c := range s.Columns {
		b.WriteString("    ")
		b.WriteString(string(c.Value))
		if i < len(s.Columns)-1 {
			b.WriteByte(',')
		}
		if c.Note != "" {
			b.WriteString(" -- ")
			b.WriteString(c.Note)
		}
		b.WriteByte('\n')
	}
	b.WriteString(");")
	return b.String()
}

// Value returns the literal for the named column.
func (s Insert) Value(name string) (Literal, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c.Value, true
		}
	}
	return "", false
}

// ColumnDef declares a column of a table created by the script.
type ColumnDef struct {
	Name string
	Type string
}

// TempTable is a session-scoped table declared with an existence guard,
// so the declaration can run any number of times.
type TempTable struct {
	Name    string
	Columns []ColumnDef
}

// SQL renders CREATE TEMP TABLE IF NOT EXISTS.
func (t TempTable) SQL() string {
	var b strings.Builder
	b.WriteString("CREATE TEMP TABLE IF NOT EXISTS ")
	b.WriteString(t.Name)
	b.WriteString(" (\n")
	for i, c := range t.Columns {
		b.WriteString("    ")
		b.WriteString(c.Name)
		b.WriteByte(' ')
		b.WriteString(c.Type)
		if i < len(t.Columns)-1 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
	b.WriteString(");")
	return b.String()
}

// MappingInsert records legacy id -> surrogate id by reading back the row
// that was just inserted into the business table.
type MappingInsert struct {
	Table           string  // temp mapping table
	LegacyColumn    string  // legacy id column of the mapping table
	SurrogateColumn string  // new id column of the mapping table
	Legacy          Literal // legacy id value
	Source          string  // business table
	SourceKey       string  // surrogate key column of the business table
	SourceLegacy    string  // legacy id column of the business table
}

// SQL renders INSERT ... SELECT joined on the legacy id.
func (m MappingInsert) SQL() string {
	return fmt.Sprintf("INSERT INTO %s (%s, %s) SELECT %s, %s FROM %s WHERE %s = %s;",
		m.Table, m.LegacyColumn, m.SurrogateColumn,
		m.Legacy, m.SourceKey, m.Source, m.SourceLegacy, m.Legacy)
}

// Banner renders a boxed comment block.
func Banner(lines ...string) string {
	const rule = "-- ============================================================================"
	var b strings.Builder
	b.WriteString(rule)
	b.WriteByte('\n')
	for _, l := range lines {
		b.WriteString("-- ")
		b.WriteString(l)
		b.WriteByte('\n')
	}
	b.WriteString(rule)
	return b.String()
}

// Writer writes statements to an io.Writer, keeping the first error.
type Writer struct {
	w   io.Writer
	err error
}

// NewWriter wraps w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Line writes s followed by a newline.
func (w *Writer) Line(s string) {
	if w.err != nil {
		return
	}
	if _, err := io.WriteString(w.w, s); err != nil {
		w.err = fmt.Errorf("failed to write output: %w", err)
		return
	}
	if _, err := io.WriteString(w.w, "\n"); err != nil {
		w.err = fmt.Errorf("failed to write output: %w", err)
	}
}

// Linef formats and writes one line.
func (w *Writer) Linef(format string, args ...interface{}) {
	w.Line(fmt.Sprintf(format, args...))
}

// Err returns the first write error.
func (w *Writer) Err() error {
	return w.err
}
