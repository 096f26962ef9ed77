package planstore

import (
	"context"
	"fmt"
)

// Restriction lists. Blocked machines are looms the planner must not touch
// (maintenance, reserved); hidden machines are dummy rows in the floor
// export that do not physically exist. The allocator treats both the same,
// so RestrictedSet merges them.

// Block adds a machine to the blocked list. Adding an already blocked
// machine is a no-op.
func (s *Store) Block(ctx context.Context, machine int) error {
	return s.addTo(ctx, "blocked_machines", machine)
}

// Unblock removes a machine from the blocked list.
func (s *Store) Unblock(ctx context.Context, machine int) error {
	return s.removeFrom(ctx, "blocked_machines", machine)
}

// Hide adds a machine to the hidden list.
func (s *Store) Hide(ctx context.Context, machine int) error {
	return s.addTo(ctx, "hidden_machines", machine)
}

// Unhide removes a machine from the hidden list.
func (s *Store) Unhide(ctx context.Context, machine int) error {
	return s.removeFrom(ctx, "hidden_machines", machine)
}

// Blocked returns the blocked machine numbers in ascending order.
func (s *Store) Blocked(ctx context.Context) ([]int, error) {
	return s.listOf(ctx, "blocked_machines")
}

// Hidden returns the hidden machine numbers in ascending order.
func (s *Store) Hidden(ctx context.Context) ([]int, error) {
	return s.listOf(ctx, "hidden_machines")
}

// RestrictedSet returns the union of both lists as a membership set, the
// shape the table adapter consumes.
func (s *Store) RestrictedSet(ctx context.Context) (map[int]bool, error) {
	set := make(map[int]bool)
	for _, table := range []string{"blocked_machines", "hidden_machines"} {
		nums, err := s.listOf(ctx, table)
		if err != nil {
			return nil, err
		}
		for _, n := range nums {
			set[n] = true
		}
	}
	return set, nil
}

func (s *Store) addTo(ctx context.Context, table string, machine int) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO `+table+` (machine, added_at) VALUES (?, ?)
			ON CONFLICT(machine) DO NOTHING`, machine, now())
	if err != nil {
		return fmt.Errorf("add to %s: %w", table, err)
	}
	return nil
}

func (s *Store) removeFrom(ctx context.Context, table string, machine int) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM `+table+` WHERE machine = ?`, machine)
	if err != nil {
		return fmt.Errorf("remove from %s: %w", table, err)
	}
	return nil
}

func (s *Store) listOf(ctx context.Context, table string) ([]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT machine FROM `+table+` ORDER BY machine`)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	defer rows.Close()

	var out []int
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
