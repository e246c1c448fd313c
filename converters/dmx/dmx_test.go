package dmx

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/clarita-9850/dmxload/converters"
	"github.com/clarita-9850/dmxload/converters/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const orgUnitDMX = `<?xml version="1.0" encoding="UTF-8"?>
<table name="ORGANISATIONUNIT">
  <column name="organisationUnitID" type="SVR_INT64"/>
  <column name="name" type="SVR_STRING"/>
  <column name="creationDate" type="SVR_DATE"/>
  <row>
    <attribute name="organisationUnitID"><value>101</value></attribute>
    <attribute name="name"><value>  Sacramento County Office  </value></attribute>
    <attribute name="creationDate"><value>2000-1-1-00.00.00</value></attribute>
  </row>
  <row>
    <attribute name="organisationUnitID"><value>102</value></attribute>
    <attribute name="name"/>
    <attribute name="comments"><value></value></attribute>
    <attribute name="webAddress"><value>   </value></attribute>
  </row>
</table>
`

func TestParse(t *testing.T) {
	table, err := Parse(strings.NewReader(orgUnitDMX))
	require.NoError(t, err)

	assert.Equal(t, "ORGANISATIONUNIT", table.Name)
	assert.Equal(t, []Column{
		{Name: "organisationUnitID", Type: "SVR_INT64"},
		{Name: "name", Type: "SVR_STRING"},
		{Name: "creationDate", Type: "SVR_DATE"},
	}, table.Columns)
	require.Len(t, table.Rows, 2)

	first := table.Rows[0]
	v, ok := first.Get("name")
	assert.True(t, ok)
	assert.Equal(t, "Sacramento County Office", v)
	assert.Equal(t, []string{"organisationUnitID", "name", "creationDate"}, first.Attributes())

	second := table.Rows[1]
	assert.True(t, second.Has("name"))
	assert.True(t, second.IsNull("name"), "missing value element is null")
	assert.True(t, second.IsNull("comments"), "empty value element is null")
	assert.False(t, second.IsNull("webAddress"), "whitespace trims to a non-null empty string")
	v, ok = second.Get("webAddress")
	assert.True(t, ok)
	assert.Equal(t, "", v)
	assert.False(t, second.Has("creationDate"))
	_, ok = second.Get("creationDate")
	assert.False(t, ok)
}

func TestParseNoNameAttribute(t *testing.T) {
	table, err := Parse(strings.NewReader(`<table><row><attribute name="a"><value>1</value></attribute></row></table>`))
	require.NoError(t, err)
	assert.Equal(t, "", table.Name)
	assert.Equal(t, "JOB", table.Label("JOB"))
	assert.Empty(t, table.Columns)
	require.Len(t, table.Rows, 1)
}

func TestParseEmptyTable(t *testing.T) {
	table, err := Parse(strings.NewReader(`<table name="JOB"/>`))
	require.NoError(t, err)
	assert.Equal(t, "JOB", table.Name)
	assert.Empty(t, table.Rows)
}

func TestParseMalformed(t *testing.T) {
	inputs := map[string]string{
		"empty":         "",
		"unclosed":      `<table name="X"><row>`,
		"mismatched":    `<table><row></table></row>`,
		"trailing":      `<table/><table/>`,
		"trailing text": `<table/>junk`,
		"not xml":       `name,value`,
	}
	for name, in := range inputs {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(in))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedInput)
			var malformed *MalformedInputError
			assert.True(t, errors.As(err, &malformed))
		})
	}
}

func TestParseDeclaredCharset(t *testing.T) {
	// "Muñoz" in ISO-8859-1
	doc := []byte("<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?><table name=\"USERS\"><row><attribute name=\"SURNAME\"><value>Mu\xf1oz</value></attribute></row></table>")
	table, err := Parse(bytes.NewReader(doc))
	require.NoError(t, err)
	v, _ := table.Rows[0].Get("SURNAME")
	assert.Equal(t, "Muñoz", v)
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ORGANISATIONUNIT.dmx")
	require.NoError(t, os.WriteFile(path, []byte(orgUnitDMX), 0644))

	table, err := ParseFile(path)
	require.NoError(t, err)
	assert.Len(t, table.Rows, 2)

	require.NoError(t, os.WriteFile(path, []byte("<table>"), 0644))
	_, err = ParseFile(path)
	var malformed *MalformedInputError
	require.True(t, errors.As(err, &malformed))
	assert.Equal(t, path, malformed.Source)

	_, err = ParseFile(filepath.Join(t.TempDir(), "missing.dmx"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMalformedInput)
}

func TestTableAttributes(t *testing.T) {
	table, err := Parse(strings.NewReader(orgUnitDMX))
	require.NoError(t, err)
	assert.Equal(t, []string{"organisationUnitID", "name", "creationDate", "comments", "webAddress"}, table.Attributes())
	assert.Equal(t, "SVR_INT64", table.ColumnType("organisationUnitID"))
	assert.Equal(t, "", table.ColumnType("comments"))
}

func TestSQLiteAffinity(t *testing.T) {
	assert.Equal(t, "INTEGER", SQLiteAffinity("SVR_INT64"))
	assert.Equal(t, "INTEGER", SQLiteAffinity("svr_int32"))
	assert.Equal(t, "REAL", SQLiteAffinity("SVR_DOUBLE"))
	assert.Equal(t, "REAL", SQLiteAffinity("SVR_MONEY"))
	assert.Equal(t, "TEXT", SQLiteAffinity("SVR_DATETIME"))
	assert.Equal(t, "TEXT", SQLiteAffinity(""))
}

func TestNewRowOverwrite(t *testing.T) {
	r := NewRow(Text("a", "1"), Null("b"), Text("a", "2"))
	assert.Equal(t, 2, r.Len())
	v, _ := r.Get("a")
	assert.Equal(t, "2", v)
	assert.Equal(t, []string{"a", "b"}, r.Attributes())
}

func TestConverterRowProvider(t *testing.T) {
	table, err := Parse(strings.NewReader(orgUnitDMX))
	require.NoError(t, err)
	c := NewConverter(table)

	assert.Equal(t, []string{"organisationunit"}, c.GetTableNames())
	assert.Equal(t, []string{"organisationunitid", "name", "creationdate", "comments", "webaddress"}, c.GetHeaders("organisationunit"))
	assert.Equal(t, []string{"INTEGER", "TEXT", "TEXT", "TEXT", "TEXT"}, c.GetColumnTypes("organisationunit"))
	assert.Nil(t, c.GetHeaders("other"))

	var rows [][]interface{}
	err = c.ScanRows(context.Background(), "organisationunit", func(row []interface{}, err error) error {
		rows = append(rows, append([]interface{}(nil), row...))
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, [][]interface{}{
		{"101", "Sacramento County Office", "2000-1-1-00.00.00", nil, nil},
		{"102", nil, nil, nil, ""},
	}, rows)
}

func TestConvertToSQL(t *testing.T) {
	table, err := Parse(strings.NewReader(`<table name="USERS"><column name="USERNAME" type="SVR_STRING"/><row><attribute name="USERNAME"><value>o'neil</value></attribute><attribute name="SURNAME"/></row></table>`))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, NewConverter(table).ConvertToSQL(context.Background(), &buf))
	assert.Equal(t, "CREATE TABLE users (username TEXT, surname TEXT);\n\nINSERT INTO users (username, surname) VALUES ('o''neil', NULL);\n\n", buf.String())
}

func TestDriverStagesIntoSQLite(t *testing.T) {
	assert.Contains(t, converters.Drivers(), "dmx")

	provider, err := converters.Open("dmx", strings.NewReader(`<table><row><attribute name="jobID"><value>7</value></attribute></row></table>`),
		&common.ConversionConfig{InputPath: "/tmp/initial/JOB.dmx"})
	require.NoError(t, err)
	assert.Equal(t, []string{"job"}, provider.GetTableNames())

	outputPath := filepath.Join(t.TempDir(), "job.db")
	f, err := os.Create(outputPath)
	require.NoError(t, err)
	require.NoError(t, converters.ImportToSQLite(context.Background(), provider, f, nil))
	f.Close()

	db, err := sql.Open("sqlite", outputPath)
	require.NoError(t, err)
	defer db.Close()
	var id int
	require.NoError(t, db.QueryRow("SELECT jobid FROM job").Scan(&id))
	assert.Equal(t, 7, id)
}

func TestDriverRejectsMalformed(t *testing.T) {
	_, err := converters.Open("dmx", strings.NewReader("<table>"), nil)
	assert.ErrorIs(t, err, ErrMalformedInput)
}
