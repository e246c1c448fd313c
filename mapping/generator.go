// Package mapping turns parsed legacy tables into INSERT statements for the
// ihss_org schema, one generator per target table.
package mapping

import (
	"context"
	"io"

	"github.com/clarita-9850/dmxload/converters/dmx"
	"github.com/clarita-9850/dmxload/sqlgen"
)

// Schema is the target schema every generator writes to.
const Schema = "ihss_org"

// Target describes a business table and the temp table mapping its legacy ids
// to the surrogate ids assigned at load time.
type Target struct {
	Source        string           // legacy export file, e.g. ORGANISATIONUNIT.dmx
	Table         string           // qualified business table
	Key           string           // surrogate key column, filled by gen_random_uuid()
	LegacyColumn  string           // business column retaining the legacy id
	Mapping       string           // temp mapping table
	MappingLegacy sqlgen.ColumnDef // legacy id column of the mapping table
}

// MappingTable returns the temp table declaration for the target.
func (t Target) MappingTable() sqlgen.TempTable {
	return sqlgen.TempTable{
		Name:    t.Mapping,
		Columns: []sqlgen.ColumnDef{t.MappingLegacy, {Name: "new_uuid", Type: "UUID"}},
	}
}

// Generator maps legacy rows of one export to rows of one target table.
type Generator interface {
	Target() Target
	// Map returns the business columns for a row, without the surrogate key
	// and legacy id columns, plus the formatted legacy id.
	// ok is false when the row must be dropped.
	Map(row dmx.Row) (columns []sqlgen.Column, legacy sqlgen.Literal, ok bool)
}

// Result counts the rows seen by one Generate call.
type Result struct {
	Read    int
	Emitted int
	Skipped int
}

// Generate writes the banner, the mapping table declaration and one
// INSERT / mapping INSERT pair per emitted row.
func Generate(ctx context.Context, w io.Writer, g Generator, rows []dmx.Row) (Result, error) {
	target := g.Target()
	out := sqlgen.NewWriter(w)
	res := Result{Read: len(rows)}

	out.Line("")
	out.Line(sqlgen.Banner(
		"INSERT STATEMENTS FOR "+target.Table,
		"Generated from "+target.Source,
	))
	out.Line("")
	out.Linef("-- Create temporary mapping table for %s ids", target.Table)
	out.Line(target.MappingTable().SQL())

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		columns, legacy, ok := g.Map(row)
		if !ok {
			res.Skipped++
			continue
		}

		stmt := sqlgen.Insert{Table: target.Table}
		stmt.Columns = make([]sqlgen.Column, 0, len(columns)+2)
		stmt.Columns = append(stmt.Columns, sqlgen.Column{Name: target.Key, Value: sqlgen.GenRandomUUID})
		stmt.Columns = append(stmt.Columns, columns...)
		stmt.Columns = append(stmt.Columns, sqlgen.Column{Name: target.LegacyColumn, Value: legacy})

		out.Line("")
		out.Line(stmt.SQL())
		out.Line(sqlgen.MappingInsert{
			Table:           target.Mapping,
			LegacyColumn:    target.MappingLegacy.Name,
			SurrogateColumn: "new_uuid",
			Legacy:          legacy,
			Source:          target.Table,
			SourceKey:       target.Key,
			SourceLegacy:    target.LegacyColumn,
		}.SQL())
		if err := out.Err(); err != nil {
			return res, err
		}
		res.Emitted++
	}

	return res, out.Err()
}

// Generators returns the generators in load order. Program units come first
// because staff accounts reference them.
func Generators() []Generator {
	return []Generator{
		ProgramUnits{},
		JobClassifications{},
		StaffAccounts{},
		CaseQueues{},
	}
}

func enumType(name string) string {
	return Schema + "." + name
}

var legacyIDColumn = sqlgen.ColumnDef{Name: "legacy_id", Type: "BIGINT"}
