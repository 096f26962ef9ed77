package alloc

import (
	"errors"

	"github.com/loomworks/loomplan/pkg/rules"
)

// Decision is the operator's answer to a proposed assignment.
type Decision int

const (
	// Proceed commits the assignment, warnings and all.
	Proceed Decision = iota
	// SkipJob marks the job as skipped; no machine is consumed.
	SkipJob
	// Reselect abandons the proposal without mutating anything, so the
	// operator can pick a different machine for the same job.
	Reselect
)

// Proposal pairs the current job with an operator-chosen machine and the
// outcome of every pre-commit check. The host UI renders these flags and
// collects a Decision; the engine itself holds no UI references.
type Proposal struct {
	Job     *Job
	Machine Machine

	// NeedsConfirmation is raised before compatibility is even evaluated:
	// the job carries a remark or a weft shortage the operator must see.
	NeedsConfirmation bool
	// SelvedgeOK and WeaveOK report the two tooling checks.
	SelvedgeOK bool
	WeaveOK    bool
}

// Clean reports whether the proposal raised no warning at all.
func (p Proposal) Clean() bool {
	return !p.NeedsConfirmation && p.SelvedgeOK && p.WeaveOK
}

// Errors returned by the interactive allocator.
var (
	// ErrNoPendingJob means the group has no pending job for the category.
	ErrNoPendingJob = errors.New("no pending job in group")
	// ErrMachineUnavailable means the chosen machine is not in the current
	// candidate list (consumed, restricted, or simply not offered).
	ErrMachineUnavailable = errors.New("machine not available")
	// ErrStaleProposal means the proposal's job reached a terminal state
	// between Propose and Commit.
	ErrStaleProposal = errors.New("proposal is stale")
)

// Interactive walks one reed group job by job, letting the host confirm or
// refuse each pairing. State advances only through Commit; Propose is pure.
type Interactive struct {
	groupKey string
	category rules.Category
	jobs     []*Job
	machines []Machine
	sess     *Session
	cfg      Config
}

// NewInteractive prepares an interactive pass over one group and category.
// The session may already carry machines consumed by earlier groups or by
// an automatic run; those machines are never offered again.
func NewInteractive(groupKey string, cat rules.Category, jobs []*Job, machines []Machine, sess *Session, cfg Config) *Interactive {
	return &Interactive{
		groupKey: groupKey,
		category: cat,
		jobs:     jobs,
		machines: machines,
		sess:     sess,
		cfg:      cfg,
	}
}

// Current returns the job the operator is deciding on: the earliest-due
// pending job of the group, or nil when the group is done.
func (it *Interactive) Current() *Job {
	return NextJob(it.jobs, it.groupKey, it.category)
}

// Candidates returns the machines currently offered for the group, in the
// canonical order. The list shrinks as the session consumes machines.
func (it *Interactive) Candidates() []Candidate {
	return BuildCandidates(it.groupKey, it.category, it.machines, it.jobs, it.sess, it.cfg)
}

// Propose evaluates assigning the current job to the given machine number.
// Nothing is mutated; the host inspects the returned flags and calls
// Commit with the operator's decision.
func (it *Interactive) Propose(machineNumber int) (Proposal, error) {
	job := it.Current()
	if job == nil {
		return Proposal{}, ErrNoPendingJob
	}

	for _, c := range it.Candidates() {
		if c.Machine.Number != machineNumber {
			continue
		}
		return Proposal{
			Job:               job,
			Machine:           c.Machine,
			NeedsConfirmation: job.NeedsConfirmation(),
			SelvedgeOK:        rules.SelvedgeCompatible(job.Selvedge, c.Machine.Selvedge),
			WeaveOK:           rules.WeaveCompatible(job.Weave, c.Machine.Weave),
		}, nil
	}
	return Proposal{}, ErrMachineUnavailable
}

// Commit applies the operator's decision to a proposal.
//
// Proceed assigns the job and consumes the machine, even over warnings —
// the operator has seen them. SkipJob terminally skips the job without
// consuming anything. Reselect changes nothing.
func (it *Interactive) Commit(p Proposal, d Decision) error {
	if p.Job == nil {
		return ErrStaleProposal
	}
	if p.Job.Terminal() {
		return ErrStaleProposal
	}

	switch d {
	case Proceed:
		if it.sess.Used(p.Machine.Number) {
			return ErrMachineUnavailable
		}
		p.Job.Assign(p.Machine.Number)
		it.sess.Use(p.Machine.Number)
	case SkipJob:
		p.Job.Skip()
	case Reselect:
		// No mutation: the host loops back to candidate selection.
	}
	return nil
}

// SkipCurrent terminally skips the current job without a proposal, the
// "skip this job" button of the planning screen.
func (it *Interactive) SkipCurrent() error {
	job := it.Current()
	if job == nil {
		return ErrNoPendingJob
	}
	job.Skip()
	return nil
}
