package migrate

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/clarita-9850/dmxload/converters"
	"github.com/clarita-9850/dmxload/converters/dmx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixtures = map[string]string{
	"ORGANISATIONUNIT.dmx": `<table name="ORGANISATIONUNIT">
  <column name="organisationUnitID" type="SVR_INT64"/>
  <row>
    <attribute name="organisationUnitID"><value>101</value></attribute>
    <attribute name="name"><value>Sacramento County Office</value></attribute>
    <attribute name="statusCode"><value>OUSC1</value></attribute>
  </row>
  <row>
    <attribute name="organisationUnitID"><value>102</value></attribute>
    <attribute name="name"><value>North Field Station</value></attribute>
  </row>
</table>`,
	"JOB.dmx": `<table name="JOB">
  <row><attribute name="jobID"><value>7</value></attribute><attribute name="name"><value>Social Worker</value></attribute></row>
</table>`,
	"USERS.dmx": `<table>
  <row><attribute name="USERNAME"><value>jdoe</value></attribute><attribute name="STATUSCODE"><value>USR1</value></attribute></row>
  <row><attribute name="USERNAME"/><attribute name="FIRSTNAME"><value>Ghost</value></attribute></row>
  <row><attribute name="USERNAME"><value>o'neil</value></attribute></row>
</table>`,
	"WORKQUEUE.dmx": `<table name="WORKQUEUE">
  <row><attribute name="workQueueID"><value>55</value></attribute><attribute name="name"><value>Intake</value></attribute></row>
</table>`,
}

func writeFixtures(t *testing.T, overrides map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range fixtures {
		if o, ok := overrides[name]; ok {
			content = o
		}
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	return dir
}

func fixedOptions(dir string, progress io.Writer) Options {
	return Options{
		DMXDir:   dir,
		Progress: progress,
		Now:      func() time.Time { return time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC) },
		RunID:    "run-1",
	}
}

func TestRun(t *testing.T) {
	dir := writeFixtures(t, nil)
	var out, progress bytes.Buffer

	sum, err := Run(context.Background(), fixedOptions(dir, &progress), &out)
	require.NoError(t, err)

	script := out.String()
	assert.True(t, strings.HasPrefix(script, "-- ============================================================================\n-- INITIAL DATA LOAD FOR IHSS MODERNIZED SCHEMA\n"))
	assert.Contains(t, script, "-- Generated: 2026-10-17T09:30:00Z\n-- Run: run-1\n")
	assert.Contains(t, script, "-- Prerequisites: Run ihss_postgresql_complete_ddl.sql first\n\nBEGIN;\n")
	assert.True(t, strings.HasSuffix(script, "COMMIT;\n\n-- ============================================================================\n-- DATA LOAD COMPLETE\n-- ============================================================================\n"))

	// fixed table order
	order := []string{
		"INSERT STATEMENTS FOR ihss_org.program_unit",
		"INSERT STATEMENTS FOR ihss_org.job_classification",
		"INSERT STATEMENTS FOR ihss_org.staff_account",
		"INSERT STATEMENTS FOR ihss_org.case_queue",
		"COMMIT;",
	}
	last := -1
	for _, marker := range order {
		idx := strings.Index(script, marker)
		require.Greater(t, idx, last, marker)
		last = idx
	}
	assert.Equal(t, 1, strings.Count(script, "BEGIN;"))
	assert.Equal(t, 1, strings.Count(script, "COMMIT;"))
	assert.NotContains(t, script, "Ghost")

	require.Len(t, sum.Tables, 4)
	assert.Equal(t, "run-1", sum.RunID)
	assert.Equal(t, 2, sum.Tables[0].Emitted)
	assert.Equal(t, 1, sum.Tables[1].Emitted)
	assert.Equal(t, 3, sum.Tables[2].Read)
	assert.Equal(t, 2, sum.Tables[2].Emitted)
	assert.Equal(t, 1, sum.Tables[2].Skipped)
	assert.Equal(t, 1, sum.Tables[3].Emitted)
	assert.Equal(t, 6, sum.Emitted())

	// every emitted row has a mapping row
	assert.Equal(t, sum.Emitted(), strings.Count(script, "\nINSERT INTO ihss_org."))
	assert.Equal(t, sum.Emitted(), strings.Count(script, "\nINSERT INTO temp_"))

	assert.Equal(t, `Processing ORGANISATIONUNIT.dmx...
  Generated 2 program_unit inserts
Processing JOB.dmx...
  Generated 1 job_classification inserts
Processing USERS.dmx...
  Generated 2 staff_account inserts
Processing WORKQUEUE.dmx...
  Generated 1 case_queue inserts
`, progress.String())

	require.Len(t, sum.Legacy, 4)
	assert.Equal(t, "USERS", sum.Legacy[2].Name, "unnamed exports are labelled by file name")
}

func TestRunGeneratesRunID(t *testing.T) {
	dir := writeFixtures(t, nil)
	var out bytes.Buffer
	sum, err := Run(context.Background(), Options{DMXDir: dir}, &out)
	require.NoError(t, err)
	assert.Len(t, sum.RunID, 36)
	assert.Contains(t, out.String(), "-- Run: "+sum.RunID)
}

func TestRunStopsOnMalformedSource(t *testing.T) {
	dir := writeFixtures(t, map[string]string{"USERS.dmx": "<table><row>"})
	var out, progress bytes.Buffer

	sum, err := Run(context.Background(), fixedOptions(dir, &progress), &out)
	require.Error(t, err)
	assert.ErrorIs(t, err, dmx.ErrMalformedInput)

	script := out.String()
	assert.Contains(t, script, "ihss_org.job_classification", "output before the failure is kept")
	assert.NotContains(t, script, "ihss_org.staff_account")
	assert.NotContains(t, script, "COMMIT;")
	assert.Len(t, sum.Tables, 2)
	assert.NotContains(t, progress.String(), "WORKQUEUE")
}

func TestRunMissingSource(t *testing.T) {
	dir := writeFixtures(t, nil)
	require.NoError(t, os.Remove(filepath.Join(dir, "WORKQUEUE.dmx")))

	var out bytes.Buffer
	_, err := Run(context.Background(), Options{DMXDir: dir}, &out)
	require.Error(t, err)
	assert.NotContains(t, out.String(), "COMMIT;")
}

func TestRunInterrupted(t *testing.T) {
	dir := writeFixtures(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	_, err := Run(ctx, Options{DMXDir: dir}, &out)
	assert.ErrorIs(t, err, converters.ErrInterrupted)
}

func TestRunFile(t *testing.T) {
	dir := writeFixtures(t, nil)
	outputPath := filepath.Join(t.TempDir(), "out", "initial_data_inserts.sql")

	sum, err := RunFile(context.Background(), fixedOptions(dir, nil), outputPath)
	require.NoError(t, err)
	assert.Equal(t, 6, sum.Emitted())

	data, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "DATA LOAD COMPLETE")
}

func TestRunFileKeepsPartialOutput(t *testing.T) {
	dir := writeFixtures(t, map[string]string{"WORKQUEUE.dmx": "not xml"})
	outputPath := filepath.Join(t.TempDir(), "partial.sql")

	_, err := RunFile(context.Background(), fixedOptions(dir, nil), outputPath)
	require.Error(t, err)

	data, readErr := os.ReadFile(outputPath)
	require.NoError(t, readErr)
	assert.Contains(t, string(data), "INSERT INTO temp_staff_mapping")
	assert.NotContains(t, string(data), "COMMIT;")
}
