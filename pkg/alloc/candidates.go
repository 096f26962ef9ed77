package alloc

import (
	"sort"

	"github.com/loomworks/loomplan/pkg/rules"
)

// Candidate tiers, in priority order. The interactive allocator shows the
// tier to the operator; the automatic allocator only relies on the order.
const (
	// TierBacklogEmpty holds machines mounted with a reed group whose job
	// backlog is zero — repurposing them strands no work.
	TierBacklogEmpty = 0
	// TierExcess holds machines from groups that have more active machines
	// than jobs; only the excess count is offered.
	TierExcess = 1
	// TierFallback holds the target group's own viable machines. Used only
	// when the first two tiers are empty.
	TierFallback = 2
)

// Candidate is one machine offered for repurposing, with its tier.
type Candidate struct {
	Machine Machine
	Tier    int
}

// Config carries the inputs the candidate builder and the allocators need
// beyond the tables themselves.
type Config struct {
	// Ruleset decides category eligibility by machine number.
	Ruleset rules.Ruleset
	// ThresholdMeters separates busy machines from about-to-open ones.
	ThresholdMeters float64
}

// GroupStats summarizes one reed group as seen by the candidate builder.
type GroupStats struct {
	Key            string
	JobBacklog     int
	ActiveMachines int
}

// eligible reports whether a machine may be offered at all for the given
// category: number eligibility, not restricted, not consumed this session.
func eligible(m Machine, cat rules.Category, sess *Session, cfg Config) bool {
	if m.Restricted {
		return false
	}
	if sess != nil && sess.Used(m.Number) {
		return false
	}
	return cfg.Ruleset.IsEligible(m.Number, cat)
}

// Stats computes per-group backlog and active-machine counts over the full
// tables. Restricted machines and machines consumed this session are not
// counted; the backlog counts every job in the group, terminal or not,
// because a job already placed still occupies its machine.
func Stats(machines []Machine, jobs []*Job, cat rules.Category, sess *Session, cfg Config) map[string]GroupStats {
	stats := make(map[string]GroupStats)

	for _, m := range machines {
		if m.GroupKey == "" || !eligible(m, cat, sess, cfg) {
			continue
		}
		st := stats[m.GroupKey]
		st.Key = m.GroupKey
		st.ActiveMachines++
		stats[m.GroupKey] = st
	}
	for _, j := range jobs {
		if j.GroupKey == "" {
			continue
		}
		st, ok := stats[j.GroupKey]
		if !ok {
			st.Key = j.GroupKey
		}
		st.JobBacklog++
		stats[j.GroupKey] = st
	}
	return stats
}

// BuildCandidates produces the ordered candidate machines for one target
// reed group and category.
//
// Tier 0 collects machines from other groups whose backlog is zero. Tier 1
// collects the excess machines of groups holding more active machines than
// jobs. Machines mounted with the target group itself are excluded from
// both — the point is to find machines to repurpose. Only when both tiers
// are empty does tier 2 fall back to the target group's own machines.
//
// Every returned machine is viable (open, or within the threshold) and the
// whole list is ordered by (tier, open first, within-threshold first,
// machine number ascending); exact yardage ties prefer higher experience.
func BuildCandidates(groupKey string, cat rules.Category, machines []Machine, jobs []*Job, sess *Session, cfg Config) []Candidate {
	if groupKey == "" {
		return nil
	}

	stats := Stats(machines, jobs, cat, sess, cfg)

	byGroup := make(map[string][]Machine)
	for _, m := range machines {
		if m.GroupKey == "" || !eligible(m, cat, sess, cfg) {
			continue
		}
		byGroup[m.GroupKey] = append(byGroup[m.GroupKey], m)
	}

	var out []Candidate

	// Tier 0: backlog-empty groups.
	for key, ms := range byGroup {
		if key == groupKey {
			continue
		}
		if stats[key].JobBacklog != 0 {
			continue
		}
		for _, m := range ms {
			if m.Viable(cfg.ThresholdMeters) {
				out = append(out, Candidate{Machine: m, Tier: TierBacklogEmpty})
			}
		}
	}

	// Tier 1: excess machines of oversupplied groups.
	for key, ms := range byGroup {
		if key == groupKey {
			continue
		}
		st := stats[key]
		extra := st.ActiveMachines - st.JobBacklog
		if st.JobBacklog <= 0 || extra <= 0 {
			continue
		}
		sorted := append([]Machine(nil), ms...)
		sortMachines(sorted, cfg.ThresholdMeters)
		taken := 0
		for _, m := range sorted {
			if taken >= extra {
				break
			}
			if !m.Viable(cfg.ThresholdMeters) {
				continue
			}
			out = append(out, Candidate{Machine: m, Tier: TierExcess})
			taken++
		}
	}

	// Tier 2: the target group's own machines, only as a last resort.
	if len(out) == 0 {
		for _, m := range byGroup[groupKey] {
			if m.Viable(cfg.ThresholdMeters) {
				out = append(out, Candidate{Machine: m, Tier: TierFallback})
			}
		}
	}

	sort.SliceStable(out, func(i, k int) bool {
		return lessCandidate(out[i], out[k], cfg.ThresholdMeters)
	})
	return out
}

// sortMachines orders machines by (open first, within-threshold first,
// number ascending) for intra-group selection.
func sortMachines(ms []Machine, threshold float64) {
	sort.SliceStable(ms, func(i, k int) bool {
		return lessCandidate(
			Candidate{Machine: ms[i]},
			Candidate{Machine: ms[k]},
			threshold,
		)
	})
}

// lessCandidate is the one total ordering every candidate list obeys.
// Any change here changes committed assignments; the order is contract,
// not presentation.
func lessCandidate(a, b Candidate, threshold float64) bool {
	if a.Tier != b.Tier {
		return a.Tier < b.Tier
	}
	ao, bo := prio(a.Machine.Open), prio(b.Machine.Open)
	if ao != bo {
		return ao < bo
	}
	aw, bw := prio(a.Machine.WithinThreshold(threshold)), prio(b.Machine.WithinThreshold(threshold))
	if aw != bw {
		return aw < bw
	}
	if yardageEqual(a.Machine, b.Machine) && a.Machine.Experience != b.Machine.Experience {
		return a.Machine.Experience > b.Machine.Experience
	}
	return a.Machine.Number < b.Machine.Number
}

func prio(b bool) int {
	if b {
		return 0
	}
	return 1
}

func yardageEqual(a, b Machine) bool {
	if a.HasYardage != b.HasYardage {
		return false
	}
	if !a.HasYardage {
		return true
	}
	return a.RemainingYardage == b.RemainingYardage
}
