package dmx

import (
	"bufio"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/clarita-9850/dmxload/converters"
	"github.com/clarita-9850/dmxload/converters/common"
	"github.com/clarita-9850/dmxload/sqlgen"

	"golang.org/x/net/html/charset"
)

// ErrMalformedInput matches every MalformedInputError via errors.Is.
var ErrMalformedInput = errors.New("malformed DMX input")

// MalformedInputError reports a source that is not well-formed XML.
type MalformedInputError struct {
	Source string
	Err    error
}

func (e *MalformedInputError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("malformed DMX input: %v", e.Err)
	}
	return fmt.Sprintf("malformed DMX input %s: %v", e.Source, e.Err)
}

func (e *MalformedInputError) Unwrap() error { return e.Err }

func (e *MalformedInputError) Is(target error) bool { return target == ErrMalformedInput }

type document struct {
	Name    string           `xml:"name,attr"`
	Columns []documentColumn `xml:"column"`
	Rows    []documentRow    `xml:"row"`
}

type documentColumn struct {
	Name string `xml:"name,attr"`
	Type string `xml:"type,attr"`
}

type documentRow struct {
	Attributes []documentAttribute `xml:"attribute"`
}

type documentAttribute struct {
	Name  string         `xml:"name,attr"`
	Value *documentValue `xml:"value"`
}

type documentValue struct {
	Text string `xml:",chardata"`
}

// Parse reads one DMX export unit. It is purely structural: declared columns
// and row attributes are not cross-checked and no values are type checked.
func Parse(r io.Reader) (*LegacyTable, error) {
	return parseNamed(r, "")
}

func parseNamed(r io.Reader, source string) (*LegacyTable, error) {
	dec := xml.NewDecoder(bufio.NewReaderSize(r, 65536))
	dec.CharsetReader = charset.NewReaderLabel

	var doc document
	if err := dec.Decode(&doc); err != nil {
		return nil, &MalformedInputError{Source: source, Err: err}
	}
	if err := expectEOF(dec); err != nil {
		return nil, &MalformedInputError{Source: source, Err: err}
	}

	table := &LegacyTable{
		Name:    doc.Name,
		Columns: make([]Column, 0, len(doc.Columns)),
		Rows:    make([]Row, 0, len(doc.Rows)),
	}
	for _, c := range doc.Columns {
		table.Columns = append(table.Columns, Column{Name: c.Name, Type: c.Type})
	}
	for _, dr := range doc.Rows {
		row := Row{values: make(map[string]*string, len(dr.Attributes))}
		for _, a := range dr.Attributes {
			row.set(a.Name, a.Value.text())
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// text returns nil when the value element is missing or carries no text.
// Whitespace-only text trims to a non-null empty string.
func (v *documentValue) text() *string {
	if v == nil || v.Text == "" {
		return nil
	}
	s := strings.TrimSpace(v.Text)
	return &s
}

// expectEOF rejects content after the root element.
func expectEOF(dec *xml.Decoder) error {
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			return fmt.Errorf("unexpected element <%s> after document element", t.Name.Local)
		case xml.CharData:
			if len(strings.TrimSpace(string(t))) > 0 {
				return fmt.Errorf("unexpected text after document element")
			}
		}
	}
}

// ParseFile parses the DMX document at path.
func ParseFile(path string) (*LegacyTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open DMX file: %w", err)
	}
	defer f.Close()
	return parseNamed(f, path)
}

func init() {
	converters.Register("dmx", &dmxDriver{})
}

type dmxDriver struct{}

func (d *dmxDriver) Open(source io.Reader, config *common.ConversionConfig) (common.RowProvider, error) {
	var sourceName, fallback string
	if config != nil {
		sourceName = config.InputPath
		fallback = config.TableName
		if fallback == "" && config.InputPath != "" {
			base := filepath.Base(config.InputPath)
			fallback = strings.TrimSuffix(base, filepath.Ext(base))
		}
	}
	table, err := parseNamed(source, sourceName)
	if err != nil {
		return nil, err
	}
	if table.Name == "" && fallback != "" {
		labeled := *table
		labeled.Name = fallback
		table = &labeled
	}
	return NewConverter(table), nil
}

// Converter exposes parsed legacy tables, untouched, as a RowProvider for staging.
type Converter struct {
	tables     []*LegacyTable
	tableNames []string
	headers    [][]string
	attributes [][]string
}

// Ensure Converter implements RowProvider
var _ common.RowProvider = (*Converter)(nil)

// Ensure Converter implements StreamConverter
var _ common.StreamConverter = (*Converter)(nil)

// NewConverter creates a Converter over one or more parsed tables.
// Unnamed tables are labelled table0, table1, ...
func NewConverter(tables ...*LegacyTable) *Converter {
	rawNames := make([]string, len(tables))
	headers := make([][]string, len(tables))
	attributes := make([][]string, len(tables))
	for i, t := range tables {
		rawNames[i] = t.Label(fmt.Sprintf("table%d", i))
		attributes[i] = t.Attributes()
		headers[i] = common.GenColumnNames(attributes[i])
	}
	return &Converter{
		tables:     tables,
		tableNames: common.GenTableNames(rawNames),
		headers:    headers,
		attributes: attributes,
	}
}

func (c *Converter) index(tableName string) int {
	for i, name := range c.tableNames {
		if name == tableName {
			return i
		}
	}
	return -1
}

// GetTableNames implements RowProvider
func (c *Converter) GetTableNames() []string {
	return c.tableNames
}

// GetHeaders implements RowProvider
func (c *Converter) GetHeaders(tableName string) []string {
	if i := c.index(tableName); i >= 0 {
		return c.headers[i]
	}
	return nil
}

// GetColumnTypes returns SQLite column types derived from the declared DMX types.
func (c *Converter) GetColumnTypes(tableName string) []string {
	i := c.index(tableName)
	if i < 0 {
		return nil
	}
	types := make([]string, len(c.attributes[i]))
	for j, name := range c.attributes[i] {
		types[j] = SQLiteAffinity(c.tables[i].ColumnType(name))
	}
	return types
}

// ScanRows implements RowProvider.
// Note: The slice passed to the yield function is reused across iterations.
func (c *Converter) ScanRows(ctx context.Context, tableName string, yield func([]interface{}, error) error) error {
	i := c.index(tableName)
	if i < 0 {
		return nil
	}
	attrs := c.attributes[i]
	values := make([]interface{}, len(attrs))
	for _, row := range c.tables[i].Rows {
		for j, name := range attrs {
			if v, ok := row.Get(name); ok {
				values[j] = v
			} else {
				values[j] = nil
			}
		}
		if err := yield(values, nil); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}
	return nil
}

// ConvertToSQL writes every table as a CREATE TABLE followed by one INSERT per row,
// keeping the legacy attribute values as-is.
func (c *Converter) ConvertToSQL(ctx context.Context, writer io.Writer) error {
	for i, tableName := range c.tableNames {
		if len(c.headers[i]) == 0 {
			continue
		}
		createTableSQL := common.GenCreateTableSQLWithTypes(tableName, c.headers[i], c.GetColumnTypes(tableName))
		if _, err := fmt.Fprintf(writer, "%s;\n\n", createTableSQL); err != nil {
			return fmt.Errorf("failed to write CREATE TABLE: %w", err)
		}

		columnList := strings.Join(c.headers[i], ", ")
		err := c.ScanRows(ctx, tableName, func(row []interface{}, _ error) error {
			values := make([]string, len(row))
			for j, v := range row {
				if s, ok := v.(string); ok {
					values[j] = string(sqlgen.Quote(s))
				} else {
					values[j] = string(sqlgen.Null)
				}
			}
			if _, err := fmt.Fprintf(writer, "INSERT INTO %s (%s) VALUES (%s);\n", tableName, columnList, strings.Join(values, ", ")); err != nil {
				return fmt.Errorf("failed to write INSERT: %w", err)
			}
			return nil
		})
		if err != nil {
			return err
		}
		if _, err := io.WriteString(writer, "\n"); err != nil {
			return fmt.Errorf("failed to write table separator: %w", err)
		}
	}
	return nil
}
