package mapping

import (
	"github.com/clarita-9850/dmxload/converters/dmx"
	"github.com/clarita-9850/dmxload/sqlgen"
)

// JOB attributes.
const (
	jobID          attr = "jobID"
	jobName        attr = "name"
	jobFamily      attr = "jobFamily"
	jobGradeLevel  attr = "gradeLevel"
	jobDescription attr = "description"
	jobCreatedBy   attr = "createdBy"
)

// JobClassifications maps JOB to ihss_org.job_classification.
type JobClassifications struct{}

func (JobClassifications) Target() Target {
	return Target{
		Source:        "JOB.dmx",
		Table:         Schema + ".job_classification",
		Key:           "job_classification_id",
		LegacyColumn:  "legacy_job_id",
		Mapping:       "temp_job_mapping",
		MappingLegacy: legacyIDColumn,
	}
}

func (JobClassifications) Map(r dmx.Row) ([]sqlgen.Column, sqlgen.Literal, bool) {
	id := jobID.in(r)

	return []sqlgen.Column{
		{Name: "classification_code", Value: sqlgen.String("JOB-" + id)},
		{Name: "title", Value: sqlgen.String(jobName.or(r, "Job "+id))},
		{Name: "classification_family", Value: sqlgen.String(jobFamily.in(r))},
		{Name: "grade_level", Value: sqlgen.String(jobGradeLevel.in(r))},
		{Name: "description", Value: sqlgen.String(jobDescription.in(r))},
		{Name: "created_by", Value: sqlgen.String(jobCreatedBy.or(r, migrationUser))},
		{Name: "created_at", Value: sqlgen.Now},
		{Name: "version_number", Value: "1"},
	}, sqlgen.Number(id), true
}
