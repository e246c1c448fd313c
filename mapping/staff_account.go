package mapping

import (
	"strings"

	"github.com/clarita-9850/dmxload/converters/dmx"
	"github.com/clarita-9850/dmxload/sqlgen"
)

// USERS attributes.
const (
	userName           attr = "USERNAME"
	userFirstName      attr = "FIRSTNAME"
	userSurname        attr = "SURNAME"
	userFullName       attr = "FULLNAME"
	userAccountEnabled attr = "ACCOUNTENABLED"
	userStatusCode     attr = "STATUSCODE"
)

// Every staff account is linked to the same arbitrary program unit until a
// location mapping exists; the emitted column carries a TODO marker.
const (
	staffLocationPlaceholder = "SELECT program_unit_id FROM " + Schema + ".program_unit LIMIT 1"
	staffLocationNote        = "TODO: Map to actual location"
)

// StaffAccounts maps USERS to ihss_org.staff_account.
// Users without a username are dropped.
type StaffAccounts struct{}

func (StaffAccounts) Target() Target {
	return Target{
		Source:        "USERS.dmx",
		Table:         Schema + ".staff_account",
		Key:           "staff_id",
		LegacyColumn:  "legacy_username",
		Mapping:       "temp_staff_mapping",
		MappingLegacy: sqlgen.ColumnDef{Name: "legacy_username", Type: "VARCHAR(120)"},
	}
}

func (StaffAccounts) Map(r dmx.Row) ([]sqlgen.Column, sqlgen.Literal, bool) {
	username := userName.in(r)
	if username == "" {
		return nil, "", false
	}
	first := userFirstName.in(r)
	surname := userSurname.in(r)
	fullName := userFullName.or(r, strings.TrimSpace(first+" "+surname))
	status := InferEmploymentStatus(userStatusCode.or(r, "ACTIVE"))

	return []sqlgen.Column{
		{Name: "staff_identifier", Value: sqlgen.String(username)},
		{Name: "username", Value: sqlgen.String(username)},
		{Name: "first_name", Value: sqlgen.String(first)},
		{Name: "surname", Value: sqlgen.String(surname)},
		{Name: "full_name", Value: sqlgen.String(fullName)},
		{Name: "employment_status", Value: sqlgen.Enum(string(status), enumType("employment_status_enum"))},
		{Name: "account_enabled", Value: sqlgen.Bool(userAccountEnabled.or(r, "1"))},
		{Name: "location_id", Value: sqlgen.Subquery(staffLocationPlaceholder), Note: staffLocationNote},
		{Name: "created_by", Value: sqlgen.String(migrationUser)},
		{Name: "created_at", Value: sqlgen.Now},
		{Name: "version_number", Value: "1"},
	}, sqlgen.String(username), true
}
