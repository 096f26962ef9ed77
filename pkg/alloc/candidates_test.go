package alloc

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loomworks/loomplan/pkg/rules"
)

func testConfig() Config {
	return Config{Ruleset: rules.DefaultRuleset(), ThresholdMeters: 100}
}

func openMachine(number int, group string) Machine {
	return Machine{Number: number, GroupKey: group, Open: true}
}

func busyMachine(number int, group string, remaining float64) Machine {
	return Machine{Number: number, GroupKey: group, RemainingYardage: remaining, HasYardage: true}
}

func denimJob(id, group string, due time.Time) *Job {
	return &Job{ID: id, GroupKey: group, Category: rules.Denim, DueDate: due}
}

func machineNumbers(cands []Candidate) []int {
	out := make([]int, len(cands))
	for i, c := range cands {
		out[i] = c.Machine.Number
	}
	return out
}

func TestBuildCandidatesBacklogEmptyTier(t *testing.T) {
	// Group 30/2/140 has machines but zero backlog: all of its viable
	// machines are tier-0 candidates for the target group.
	machines := []Machine{
		openMachine(2210, "30/2/140"),
		busyMachine(2212, "30/2/140", 50),
		busyMachine(2214, "30/2/140", 900), // beyond threshold: not viable
		openMachine(2216, "20/2/120"),      // target's own machine: excluded
	}
	jobs := []*Job{
		denimJob("j1", "20/2/120", time.Time{}),
	}

	cands := BuildCandidates("20/2/120", rules.Denim, machines, jobs, NewSession(), testConfig())

	require.Len(t, cands, 2)
	assert.Equal(t, []int{2210, 2212}, machineNumbers(cands))
	for _, c := range cands {
		assert.Equal(t, TierBacklogEmpty, c.Tier)
	}
}

func TestBuildCandidatesExcessTierTakesOnlyExcess(t *testing.T) {
	// Group 30/2/140 holds 3 active machines against 1 job: 2 excess.
	machines := []Machine{
		busyMachine(2220, "30/2/140", 40),
		openMachine(2222, "30/2/140"),
		busyMachine(2224, "30/2/140", 60),
	}
	jobs := []*Job{
		denimJob("t1", "20/2/120", time.Time{}),
		denimJob("o1", "30/2/140", time.Time{}),
	}

	cands := BuildCandidates("20/2/120", rules.Denim, machines, jobs, NewSession(), testConfig())

	require.Len(t, cands, 2)
	// Open machine first, then the lowest-yardage busy one by number.
	assert.Equal(t, []int{2222, 2220}, machineNumbers(cands))
	for _, c := range cands {
		assert.Equal(t, TierExcess, c.Tier)
	}
}

func TestBuildCandidatesFallbackTier(t *testing.T) {
	// Nothing to repurpose anywhere: only then the target group's own
	// viable machines are offered.
	machines := []Machine{
		openMachine(2230, "20/2/120"),
		busyMachine(2232, "20/2/120", 80),
		busyMachine(2234, "20/2/120", 500), // not viable
	}
	jobs := []*Job{
		denimJob("t1", "20/2/120", time.Time{}),
	}

	cands := BuildCandidates("20/2/120", rules.Denim, machines, jobs, NewSession(), testConfig())

	require.Len(t, cands, 2)
	assert.Equal(t, []int{2230, 2232}, machineNumbers(cands))
	for _, c := range cands {
		assert.Equal(t, TierFallback, c.Tier)
	}
}

func TestBuildCandidatesFallbackNotUsedWhenRepurposable(t *testing.T) {
	machines := []Machine{
		openMachine(2240, "30/2/140"), // backlog-empty group
		openMachine(2242, "20/2/120"), // target's own
	}
	jobs := []*Job{denimJob("t1", "20/2/120", time.Time{})}

	cands := BuildCandidates("20/2/120", rules.Denim, machines, jobs, NewSession(), testConfig())

	require.Len(t, cands, 1)
	assert.Equal(t, 2240, cands[0].Machine.Number)
}

func TestBuildCandidatesTierOrdering(t *testing.T) {
	machines := []Machine{
		// Tier 1 source: 2 active vs 1 job.
		openMachine(2250, "40/3/160"),
		busyMachine(2252, "40/3/160", 30),
		// Tier 0 source: no backlog.
		busyMachine(2254, "30/2/140", 70),
	}
	jobs := []*Job{
		denimJob("t1", "20/2/120", time.Time{}),
		denimJob("o1", "40/3/160", time.Time{}),
	}

	cands := BuildCandidates("20/2/120", rules.Denim, machines, jobs, NewSession(), testConfig())

	require.Len(t, cands, 2)
	assert.Equal(t, TierBacklogEmpty, cands[0].Tier)
	assert.Equal(t, 2254, cands[0].Machine.Number)
	assert.Equal(t, TierExcess, cands[1].Tier)
	assert.Equal(t, 2250, cands[1].Machine.Number)
}

func TestBuildCandidatesExperienceBreaksYardageTies(t *testing.T) {
	a := busyMachine(2260, "30/2/140", 50)
	a.Experience = 2
	b := busyMachine(2258, "30/2/140", 50)
	b.Experience = 7

	cands := BuildCandidates("20/2/120", rules.Denim, []Machine{a, b},
		[]*Job{denimJob("t1", "20/2/120", time.Time{})}, NewSession(), testConfig())

	require.Len(t, cands, 2)
	assert.Equal(t, []int{2258, 2260}, machineNumbers(cands))

	// With different yardage, machine number decides again.
	b.RemainingYardage = 60
	cands = BuildCandidates("20/2/120", rules.Denim, []Machine{a, b},
		[]*Job{denimJob("t1", "20/2/120", time.Time{})}, NewSession(), testConfig())
	assert.Equal(t, []int{2258, 2260}, machineNumbers(cands)) // still number asc
}

func TestBuildCandidatesExcludesUsedAndIneligible(t *testing.T) {
	sess := NewSession()
	sess.Use(2270)

	machines := []Machine{
		openMachine(2270, "30/2/140"), // consumed this session
		openMachine(2432, "30/2/140"), // never-allowed number
		openMachine(2500, "30/2/140"), // dyed range, not denim
		openMachine(2272, "30/2/140"),
	}
	jobs := []*Job{denimJob("t1", "20/2/120", time.Time{})}

	cands := BuildCandidates("20/2/120", rules.Denim, machines, jobs, sess, testConfig())

	require.Len(t, cands, 1)
	assert.Equal(t, 2272, cands[0].Machine.Number)
}

func TestBuildCandidatesEmptyKeyYieldsNothing(t *testing.T) {
	machines := []Machine{openMachine(2210, "30/2/140")}
	assert.Nil(t, BuildCandidates("", rules.Denim, machines, nil, NewSession(), testConfig()))
}

func TestRestrictedMachinesNeverSurface(t *testing.T) {
	// Property: whatever subset of machines is restricted, no restricted
	// machine appears in candidates or in active-machine statistics.
	rng := rand.New(rand.NewSource(1))

	groups := []string{"20/2/120", "30/2/140", "40/3/160", "50/4/180"}
	for trial := 0; trial < 50; trial++ {
		var machines []Machine
		restricted := make(map[int]bool)
		for i := 0; i < 20; i++ {
			m := Machine{
				Number:   2201 + i*2,
				GroupKey: groups[rng.Intn(len(groups))],
				Open:     rng.Intn(2) == 0,
			}
			if !m.Open {
				m.HasYardage = true
				m.RemainingYardage = float64(rng.Intn(200))
			}
			if rng.Intn(3) == 0 {
				m.Restricted = true
				restricted[m.Number] = true
			}
			machines = append(machines, m)
		}
		var jobs []*Job
		for i := 0; i < 10; i++ {
			jobs = append(jobs, denimJob("j", groups[rng.Intn(len(groups))], time.Time{}))
		}

		for _, target := range groups {
			cands := BuildCandidates(target, rules.Denim, machines, jobs, NewSession(), testConfig())
			for _, c := range cands {
				assert.False(t, restricted[c.Machine.Number],
					"restricted machine %d surfaced as candidate", c.Machine.Number)
			}
		}

		stats := Stats(machines, jobs, rules.Denim, NewSession(), testConfig())
		activeTotal := 0
		for _, st := range stats {
			activeTotal += st.ActiveMachines
		}
		unrestrictedEligible := 0
		for _, m := range machines {
			if !m.Restricted && rules.DefaultRuleset().IsEligible(m.Number, rules.Denim) {
				unrestrictedEligible++
			}
		}
		assert.Equal(t, unrestrictedEligible, activeTotal)
	}
}

func TestSession(t *testing.T) {
	s := NewSession()
	assert.False(t, s.Used(2201))
	s.Use(2201)
	s.Use(2203)
	assert.True(t, s.Used(2201))
	assert.Equal(t, 2, s.Count())
	assert.ElementsMatch(t, []int{2201, 2203}, s.UsedMachines())

	s.Reset()
	assert.Equal(t, 0, s.Count())
	assert.False(t, s.Used(2201))
}
