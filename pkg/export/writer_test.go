package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loomworks/loomplan/pkg/alloc"
	"github.com/loomworks/loomplan/pkg/rules"
)

func TestBuildRecords(t *testing.T) {
	yards := 42.5
	jobs := []*alloc.Job{
		{ID: "J-1", GroupKey: "20/2/120", Category: rules.Denim, Selvedge: "8 DİŞ",
			DueDate: time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)},
		{ID: "J-2", GroupKey: "20/2/120", Category: rules.Denim, Remark: "numune"},
		{ID: "J-3", GroupKey: "60/4/180", Category: rules.Dyed},
	}
	jobs[0].Assign(2301)
	jobs[1].Skip()
	// J-3 stays pending and appears in neither list.

	machines := []alloc.Machine{
		{Number: 2301, GroupKey: "30/2/140", Selvedge: "10 DİŞ", RemainingYardage: yards, HasYardage: true},
	}

	assigned, skipped := BuildRecords(jobs, machines)
	require.Len(t, assigned, 1)
	require.Len(t, skipped, 1)

	a := assigned[0]
	assert.Equal(t, "J-1", a.JobID)
	assert.Equal(t, 2301, a.Machine)
	assert.Equal(t, "8 DİŞ", a.JobSelvedge)
	assert.Equal(t, "10 DİŞ", a.MachineSelvedge)
	assert.True(t, a.SelvedgeMismatch)
	require.NotNil(t, a.RemainingYards)
	assert.Equal(t, yards, *a.RemainingYards)
	assert.Equal(t, "2026-03-05", a.DueDate)

	assert.Equal(t, "J-2", skipped[0].JobID)
	assert.Equal(t, "numune", skipped[0].Remark)
}

func TestJSONLWriterEnvelope(t *testing.T) {
	var buf bytes.Buffer
	w := NewJSONLWriter(&buf, "run-1")

	require.NoError(t, w.WriteAssignment(&AssignmentRecord{
		JobID: "J-1", GroupKey: "20/2/120", Category: rules.Denim, Machine: 2301,
	}))
	require.NoError(t, w.WriteSkip(&SkipRecord{JobID: "J-2", GroupKey: "20/2/120"}))
	require.NoError(t, w.WriteSummary(&SummaryRecord{Assigned: 1, Skipped: 1, Groups: 1}))
	require.NoError(t, w.Close())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)

	var rec Record
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, TypeAssignment, rec.Type)
	assert.Equal(t, "run-1", rec.RunID)
	assert.False(t, rec.TS.IsZero())

	var a AssignmentRecord
	require.NoError(t, json.Unmarshal(rec.Data, &a))
	assert.Equal(t, "J-1", a.JobID)
	assert.Equal(t, 2301, a.Machine)

	require.NoError(t, json.Unmarshal([]byte(lines[1]), &rec))
	assert.Equal(t, TypeSkip, rec.Type)
	require.NoError(t, json.Unmarshal([]byte(lines[2]), &rec))
	assert.Equal(t, TypeSummary, rec.Type)

	assert.ErrorIs(t, w.WriteSummary(&SummaryRecord{}), ErrWriterClosed)
}

func TestCSVWriterKnotList(t *testing.T) {
	var buf bytes.Buffer
	w := NewCSVWriter(&buf)

	yards := 42.5
	require.NoError(t, w.WriteAssignment(&AssignmentRecord{
		JobID: "J-1", GroupKey: "20/2/120", Category: rules.Denim, Machine: 2301,
		JobSelvedge: "8 DİŞ", MachineSelvedge: "10 DİŞ", SelvedgeMismatch: true,
		Weave: "3A", RemainingYards: &yards, DueDate: "2026-03-05",
	}))
	require.NoError(t, w.WriteSkip(&SkipRecord{
		JobID: "J-2", GroupKey: "20/2/120", Category: rules.Denim, WeftShortage: true,
	}))
	require.NoError(t, w.WriteSummary(&SummaryRecord{}))
	require.NoError(t, w.Close())

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3) // header + assignment + skip

	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, []string{
		"2301", "20/2/120", "denim", "J-1",
		"8 DİŞ", "10 DİŞ", "x", "3A", "42.5", "2026-03-05", "",
	}, rows[1])
	assert.Equal(t, "", rows[2][0])
	assert.Equal(t, "weft shortage", rows[2][10])

	assert.ErrorIs(t, w.WriteAssignment(&AssignmentRecord{}), ErrWriterClosed)
}
