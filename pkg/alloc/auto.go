package alloc

import (
	"sort"

	"github.com/loomworks/loomplan/pkg/reedgroup"
	"github.com/loomworks/loomplan/pkg/rules"
)

// NextJob returns the earliest-due pending job of the given group and
// category, or nil when none remain. Jobs without a due date sort after
// every dated job; within equal due dates the table order decides.
func NextJob(jobs []*Job, groupKey string, cat rules.Category) *Job {
	var best *Job
	for _, j := range jobs {
		if j.Terminal() || j.GroupKey != groupKey || j.Category != cat {
			continue
		}
		if best == nil || dueBefore(j, best) {
			best = j
		}
	}
	return best
}

func dueBefore(a, b *Job) bool {
	switch {
	case a.DueDate.IsZero():
		return false
	case b.DueDate.IsZero():
		return true
	default:
		return a.DueDate.Before(b.DueDate)
	}
}

// GroupResult reports what one automatic group run did.
type GroupResult struct {
	GroupKey string         `json:"group_key"`
	Category rules.Category `json:"category"`
	Assigned int            `json:"assigned"`
	Skipped  int            `json:"skipped"`
}

// Changed is the number of jobs that reached a terminal state in this run.
func (r GroupResult) Changed() int {
	return r.Assigned + r.Skipped
}

// AutoPlanGroup runs the automatic allocator for one (reed group, category)
// pair, mutating job dispositions in place and consuming machines from the
// session.
//
// Each iteration takes the earliest-due pending job. A job carrying any
// remark or a weft shortage is skipped immediately without consuming a
// machine. Otherwise the candidate list is walked in order and the first
// compatible, unconsumed machine takes the job. When the front job cannot
// be placed on any candidate the group halts: no later job could have been
// reached without it progressing, so continuing would loop forever.
func AutoPlanGroup(groupKey string, cat rules.Category, jobs []*Job, machines []Machine, sess *Session, cfg Config) GroupResult {
	res := GroupResult{GroupKey: groupKey, Category: cat}
	if groupKey == "" {
		return res
	}

	// The candidate list is fixed for the whole group run; consumed
	// machines are filtered at use time via the session.
	candidates := BuildCandidates(groupKey, cat, machines, jobs, sess, cfg)

	for {
		job := NextJob(jobs, groupKey, cat)
		if job == nil {
			return res
		}

		if job.NeedsConfirmation() {
			job.Skip()
			res.Skipped++
			continue
		}

		placed := false
		for _, c := range candidates {
			if sess.Used(c.Machine.Number) {
				continue
			}
			if !c.Machine.Compatible(job) {
				continue
			}
			job.Assign(c.Machine.Number)
			sess.Use(c.Machine.Number)
			res.Assigned++
			placed = true
			break
		}
		if !placed {
			// The front job fits nowhere; leave it for manual review.
			return res
		}
	}
}

// RunResult is the outcome of a full automatic planning run.
type RunResult struct {
	Groups []GroupResult `json:"groups"`
}

// Changed sums the terminal-state transitions across all groups.
func (r RunResult) Changed() int {
	total := 0
	for _, g := range r.Groups {
		total += g.Changed()
	}
	return total
}

// Assigned sums committed assignments across all groups.
func (r RunResult) Assigned() int {
	total := 0
	for _, g := range r.Groups {
		total += g.Assigned
	}
	return total
}

// AutoPlanAll drives the automatic allocator over every reed group found in
// the job backlog: all denim groups first, then all dyed groups, each set
// in ascending group-key order. Re-running over the same tables is
// idempotent — terminal jobs are never reconsidered.
func AutoPlanAll(jobs []*Job, machines []Machine, sess *Session, cfg Config) RunResult {
	var run RunResult
	for _, cat := range []rules.Category{rules.Denim, rules.Dyed} {
		for _, key := range GroupKeys(jobs, cat) {
			run.Groups = append(run.Groups, AutoPlanGroup(key, cat, jobs, machines, sess, cfg))
		}
	}
	return run
}

// GroupKeys returns the distinct reed-group keys present in the backlog for
// one category, ordered by the key's leading number and then by text.
func GroupKeys(jobs []*Job, cat rules.Category) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, j := range jobs {
		if j.Category != cat || j.GroupKey == "" || seen[j.GroupKey] {
			continue
		}
		seen[j.GroupKey] = true
		keys = append(keys, j.GroupKey)
	}
	sort.Slice(keys, func(i, k int) bool {
		ai, aok := reedgroup.LeadingNumber(keys[i])
		bi, bok := reedgroup.LeadingNumber(keys[k])
		if aok != bok {
			return aok
		}
		if aok && ai != bi {
			return ai < bi
		}
		return keys[i] < keys[k]
	})
	return keys
}
