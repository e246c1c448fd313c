package mapping

import (
	"github.com/clarita-9850/dmxload/converters/dmx"
	"github.com/clarita-9850/dmxload/sqlgen"
)

// WORKQUEUE attributes.
const (
	queueID                attr = "workQueueID"
	queueName              attr = "name"
	queueAllowSubscription attr = "allowUserSubscriptionInd"
	queueSensitivity       attr = "sensitivity"
	queueComments          attr = "comments"
	queueVersion           attr = "versionNo"
)

// CaseQueues maps WORKQUEUE to ihss_org.case_queue.
type CaseQueues struct{}

func (CaseQueues) Target() Target {
	return Target{
		Source:        "WORKQUEUE.dmx",
		Table:         Schema + ".case_queue",
		Key:           "case_queue_id",
		LegacyColumn:  "legacy_workqueue_id",
		Mapping:       "temp_case_queue_mapping",
		MappingLegacy: legacyIDColumn,
	}
}

func (CaseQueues) Map(r dmx.Row) ([]sqlgen.Column, sqlgen.Literal, bool) {
	id := queueID.in(r)

	return []sqlgen.Column{
		{Name: "queue_code", Value: sqlgen.String("QUEUE-" + id)},
		{Name: "queue_name", Value: sqlgen.String(queueName.or(r, "Queue "+id))},
		{Name: "allow_user_subscription", Value: sqlgen.Bool(queueAllowSubscription.or(r, "1"))},
		{Name: "sensitivity", Value: sqlgen.String(queueSensitivity.in(r))},
		{Name: "comments", Value: sqlgen.String(queueComments.in(r))},
		{Name: "is_active", Value: sqlgen.True},
		{Name: "created_by", Value: sqlgen.String(migrationUser)},
		{Name: "created_at", Value: sqlgen.Now},
		{Name: "version_number", Value: sqlgen.Number(queueVersion.or(r, "1"))},
	}, sqlgen.Number(id), true
}
