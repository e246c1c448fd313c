package mapping

import "strings"

// UnitType is the ihss_org.unit_type_enum value of a program unit.
type UnitType string

const (
	UnitTypeCounty      UnitType = "COUNTY"
	UnitTypeDistrict    UnitType = "DISTRICT"
	UnitTypeFieldOffice UnitType = "FIELD_OFFICE"
	UnitTypeTeam        UnitType = "TEAM"
)

// unitTypeRule matches either a substring of the upper-cased unit name or
// an exact business type code.
type unitTypeRule struct {
	nameContains string
	businessType string
	unitType     UnitType
}

func (r unitTypeRule) matches(upperName, businessType string) bool {
	if r.nameContains != "" {
		return strings.Contains(upperName, r.nameContains)
	}
	return businessType == r.businessType
}

// unitTypeRules is evaluated top to bottom; the first match wins.
var unitTypeRules = []unitTypeRule{
	{nameContains: "COUNTY", unitType: UnitTypeCounty},
	{businessType: "OUBTC100", unitType: UnitTypeCounty},
	{nameContains: "DISTRICT", unitType: UnitTypeDistrict},
	{businessType: "OUBTC102", unitType: UnitTypeDistrict},
	{nameContains: "FIELD", unitType: UnitTypeFieldOffice},
	{nameContains: "TEAM", unitType: UnitTypeTeam},
}

// InferUnitType classifies a program unit from its name and business type code.
// Units matching no rule are field offices.
func InferUnitType(name, businessType string) UnitType {
	upper := strings.ToUpper(name)
	for _, rule := range unitTypeRules {
		if rule.matches(upper, businessType) {
			return rule.unitType
		}
	}
	return UnitTypeFieldOffice
}

// UnitStatus is the ihss_org.unit_status_enum value of a program unit.
type UnitStatus string

const (
	UnitStatusActive   UnitStatus = "ACTIVE"
	UnitStatusInactive UnitStatus = "INACTIVE"
)

// InferUnitStatus maps a legacy status code. Only OUSC1 and RST1 are active.
func InferUnitStatus(statusCode string) UnitStatus {
	switch statusCode {
	case "OUSC1", "RST1":
		return UnitStatusActive
	default:
		return UnitStatusInactive
	}
}

// EmploymentStatus is the ihss_org.employment_status_enum value of a staff account.
type EmploymentStatus string

const (
	EmploymentActive    EmploymentStatus = "ACTIVE"
	EmploymentOnLeave   EmploymentStatus = "ON_LEAVE"
	EmploymentSeparated EmploymentStatus = "SEPARATED"
)

// InferEmploymentStatus maps a legacy user status code.
// SEPARATED is a catch-all for every unrecognised code, not a reviewed mapping.
func InferEmploymentStatus(statusCode string) EmploymentStatus {
	switch statusCode {
	case "ACTIVE", "USR1":
		return EmploymentActive
	case "SUSPENDED":
		return EmploymentOnLeave
	default:
		return EmploymentSeparated
	}
}
