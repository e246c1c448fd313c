package mapping

import (
	"github.com/clarita-9850/dmxload/converters/dmx"
	"github.com/clarita-9850/dmxload/sqlgen"
)

// ORGANISATIONUNIT attributes.
const (
	orgUnitID           attr = "organisationUnitID"
	orgUnitName         attr = "name"
	orgUnitStatus       attr = "statusCode"
	orgUnitBusinessType attr = "businessTypeCode"
	orgUnitComments     attr = "comments"
	orgUnitWebAddress   attr = "webAddress"
	orgUnitCreationDate attr = "creationDate"
	orgUnitCreatedBy    attr = "createdBy"
	orgUnitCreatedOn    attr = "createdOn"
	orgUnitVersion      attr = "versionNo"
)

// ProgramUnits maps ORGANISATIONUNIT to ihss_org.program_unit.
type ProgramUnits struct{}

func (ProgramUnits) Target() Target {
	return Target{
		Source:        "ORGANISATIONUNIT.dmx",
		Table:         Schema + ".program_unit",
		Key:           "program_unit_id",
		LegacyColumn:  "legacy_org_unit_id",
		Mapping:       "temp_org_unit_mapping",
		MappingLegacy: legacyIDColumn,
	}
}

func (ProgramUnits) Map(r dmx.Row) ([]sqlgen.Column, sqlgen.Literal, bool) {
	id := orgUnitID.in(r)
	name := orgUnitName.or(r, "Unit "+id)
	businessType := orgUnitBusinessType.in(r)

	return []sqlgen.Column{
		{Name: "unit_code", Value: sqlgen.String("ORG-" + id)},
		{Name: "unit_name", Value: sqlgen.String(name)},
		{Name: "unit_type", Value: sqlgen.Enum(string(InferUnitType(name, businessType)), enumType("unit_type_enum"))},
		{Name: "status", Value: sqlgen.Enum(string(InferUnitStatus(orgUnitStatus.in(r))), enumType("unit_status_enum"))},
		{Name: "business_type_code", Value: sqlgen.String(businessType)},
		{Name: "comments", Value: sqlgen.String(orgUnitComments.in(r))},
		{Name: "web_address", Value: sqlgen.String(orgUnitWebAddress.in(r))},
		{Name: "effective_start", Value: sqlgen.Date(orgUnitCreationDate.in(r))},
		{Name: "created_by", Value: sqlgen.String(orgUnitCreatedBy.or(r, migrationUser))},
		{Name: "created_at", Value: sqlgen.Timestamp(orgUnitCreatedOn.or(r, "2024-01-01-00.00.00"))},
		{Name: "version_number", Value: sqlgen.Number(orgUnitVersion.or(r, "1"))},
	}, sqlgen.Number(id), true
}

const migrationUser = "MIGRATION"
