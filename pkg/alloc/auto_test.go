package alloc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loomworks/loomplan/pkg/rules"
)

func date(day int) time.Time {
	return time.Date(2026, time.March, day, 0, 0, 0, 0, time.UTC)
}

func TestNextJobOrdersByDueDate(t *testing.T) {
	jobs := []*Job{
		{ID: "late", GroupKey: "20/2/120", Category: rules.Denim, DueDate: date(20)},
		{ID: "none", GroupKey: "20/2/120", Category: rules.Denim},
		{ID: "soon", GroupKey: "20/2/120", Category: rules.Denim, DueDate: date(5)},
		{ID: "other", GroupKey: "30/2/140", Category: rules.Denim, DueDate: date(1)},
	}

	j := NextJob(jobs, "20/2/120", rules.Denim)
	require.NotNil(t, j)
	assert.Equal(t, "soon", j.ID)

	j.Assign(2201)
	j = NextJob(jobs, "20/2/120", rules.Denim)
	require.NotNil(t, j)
	assert.Equal(t, "late", j.ID)

	j.Skip()
	// Undated jobs come last but still come.
	j = NextJob(jobs, "20/2/120", rules.Denim)
	require.NotNil(t, j)
	assert.Equal(t, "none", j.ID)

	j.Skip()
	assert.Nil(t, NextJob(jobs, "20/2/120", rules.Denim))
}

func TestAutoPlanGroupAssignsUntilMachinesRunOut(t *testing.T) {
	// Three jobs queue on 20/2/120; the neighbouring 30/2/140 group runs
	// three machines against one job, so two can be repurposed. The third
	// job must be left pending with the group halted.
	jobs := []*Job{
		denimJob("j1", "20/2/120", date(1)),
		denimJob("j2", "20/2/120", date(2)),
		denimJob("j3", "20/2/120", date(3)),
		denimJob("keep", "30/2/140", date(9)),
	}
	machines := []Machine{
		openMachine(2301, "30/2/140"),
		busyMachine(2303, "30/2/140", 40),
		busyMachine(2305, "30/2/140", 60),
	}
	sess := NewSession()

	res := AutoPlanGroup("20/2/120", rules.Denim, jobs, machines, sess, testConfig())

	assert.Equal(t, 2, res.Assigned)
	assert.Equal(t, 0, res.Skipped)

	assert.Equal(t, Assigned, jobs[0].Disposition)
	assert.Equal(t, 2301, jobs[0].Machine)
	assert.Equal(t, Assigned, jobs[1].Disposition)
	assert.Equal(t, 2303, jobs[1].Machine)
	assert.Equal(t, Pending, jobs[2].Disposition)
	assert.Equal(t, Pending, jobs[3].Disposition)
	assert.Equal(t, 2, sess.Count())
}

func TestAutoPlanGroupSkipsFlaggedJobsWithoutConsumingMachines(t *testing.T) {
	jobs := []*Job{
		{ID: "flagged", GroupKey: "20/2/120", Category: rules.Denim, DueDate: date(1), Remark: "numune bekliyor"},
		{ID: "short", GroupKey: "20/2/120", Category: rules.Denim, DueDate: date(2), WeftShortage: true},
		denimJob("plain", "20/2/120", date(3)),
	}
	machines := []Machine{openMachine(2301, "30/2/140")}
	sess := NewSession()

	res := AutoPlanGroup("20/2/120", rules.Denim, jobs, machines, sess, testConfig())

	assert.Equal(t, 1, res.Assigned)
	assert.Equal(t, 2, res.Skipped)
	assert.Equal(t, Skipped, jobs[0].Disposition)
	assert.Equal(t, Skipped, jobs[1].Disposition)
	assert.Equal(t, Assigned, jobs[2].Disposition)
	assert.Equal(t, 2301, jobs[2].Machine)
	assert.Equal(t, 1, sess.Count())
}

func TestAutoPlanGroupHonorsToolingChecks(t *testing.T) {
	jobs := []*Job{
		{ID: "j", GroupKey: "20/2/120", Category: rules.Denim, DueDate: date(1), Selvedge: "8 DİŞ", Weave: "3A"},
	}
	machines := []Machine{
		func() Machine {
			m := openMachine(2301, "30/2/140")
			m.Weave = "K2" // 3 and K never mix
			return m
		}(),
		func() Machine {
			m := openMachine(2303, "30/2/140")
			m.Selvedge = "10 DİŞ" // tolerant tooth count
			m.Weave = "3B"
			return m
		}(),
	}
	sess := NewSession()

	res := AutoPlanGroup("20/2/120", rules.Denim, jobs, machines, sess, testConfig())

	assert.Equal(t, 1, res.Assigned)
	assert.Equal(t, 2303, jobs[0].Machine)
}

func TestAutoPlanAllRunsDenimBeforeDyed(t *testing.T) {
	jobs := []*Job{
		{ID: "d1", GroupKey: "60/4/180", Category: rules.Dyed, DueDate: date(1)},
		denimJob("n1", "30/2/140", date(1)),
		denimJob("n2", "20/2/120", date(1)),
	}
	machines := []Machine{
		openMachine(2301, "90/6/220"),
		openMachine(2303, "90/6/220"),
		openMachine(2460, "70/5/200"),
	}
	sess := NewSession()

	run := AutoPlanAll(jobs, machines, sess, testConfig())

	require.Len(t, run.Groups, 3)
	// Denim groups first, ordered by leading number, then dyed.
	assert.Equal(t, "20/2/120", run.Groups[0].GroupKey)
	assert.Equal(t, rules.Denim, run.Groups[0].Category)
	assert.Equal(t, "30/2/140", run.Groups[1].GroupKey)
	assert.Equal(t, "60/4/180", run.Groups[2].GroupKey)
	assert.Equal(t, rules.Dyed, run.Groups[2].Category)

	assert.Equal(t, 3, run.Assigned())
	assert.Equal(t, 2460, jobs[0].Machine) // dyed job on a dyed-range machine
}

func TestAutoPlanAllNeverDoubleBooks(t *testing.T) {
	// Two groups compete for the same pool; every machine may carry at
	// most one job across the whole run.
	jobs := []*Job{
		denimJob("a1", "20/2/120", date(1)),
		denimJob("a2", "20/2/120", date(2)),
		denimJob("b1", "30/2/140", date(1)),
		denimJob("b2", "30/2/140", date(2)),
	}
	machines := []Machine{
		openMachine(2301, "90/6/220"),
		openMachine(2303, "90/6/220"),
		openMachine(2305, "90/6/220"),
	}
	sess := NewSession()

	run := AutoPlanAll(jobs, machines, sess, testConfig())

	assert.Equal(t, 3, run.Assigned())
	booked := make(map[int]string)
	for _, j := range jobs {
		if j.Disposition != Assigned {
			continue
		}
		prev, dup := booked[j.Machine]
		assert.False(t, dup, "machine %d booked by %s and %s", j.Machine, prev, j.ID)
		booked[j.Machine] = j.ID
	}
}

func TestAutoPlanAllRerunIsIdempotent(t *testing.T) {
	jobs := []*Job{
		denimJob("j1", "20/2/120", date(1)),
		denimJob("j2", "20/2/120", date(2)),
	}
	machines := []Machine{
		openMachine(2301, "90/6/220"),
		openMachine(2303, "90/6/220"),
	}
	sess := NewSession()

	first := AutoPlanAll(jobs, machines, sess, testConfig())
	assert.Equal(t, 2, first.Changed())

	second := AutoPlanAll(jobs, machines, sess, testConfig())
	assert.Equal(t, 0, second.Changed())
	assert.Equal(t, 2301, jobs[0].Machine)
	assert.Equal(t, 2303, jobs[1].Machine)
}

func TestGroupKeysOrderedByLeadingNumber(t *testing.T) {
	jobs := []*Job{
		denimJob("a", "110/2", time.Time{}),
		denimJob("b", "20/2/120", time.Time{}),
		denimJob("c", "67.5/4/194", time.Time{}),
		denimJob("d", "20/2/120", time.Time{}),
		{ID: "e", GroupKey: "60/4/180", Category: rules.Dyed},
		denimJob("f", "", time.Time{}),
	}

	assert.Equal(t, []string{"20/2/120", "67.5/4/194", "110/2"}, GroupKeys(jobs, rules.Denim))
	assert.Equal(t, []string{"60/4/180"}, GroupKeys(jobs, rules.Dyed))
}
