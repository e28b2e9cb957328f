package rbac

import (
	"errors"
	"fmt"
	"sort"
)

// Lineage violations reported by ValidateLineage.
var (
	ErrLineageUnknownParent = errors.New("rbac: lineage parent does not exist")
	ErrLineageCycle         = errors.New("rbac: lineage cycle")
	ErrLineageInverted      = errors.New("rbac: lineage parent less privileged than child")
)

// LineageNode is the part of a principal the lineage check needs.
type LineageNode struct {
	ID       string
	ParentID string
	Level    Level
}

// LineageViolation ties a node to the rule it breaks.
type LineageViolation struct {
	ID  string
	Err error
}

func (v LineageViolation) Error() string {
	return fmt.Sprintf("%s: %v", v.ID, v.Err)
}

func (v LineageViolation) Unwrap() error {
	return v.Err
}

// ValidateLineage inspects back-references between principals. A node may
// have no parent; when it has one the parent must exist, must not lead back
// to the node, and must be at least as privileged as the node. Violations are
// sorted by node id.
func ValidateLineage(nodes []LineageNode) []LineageViolation {
	byID := make(map[string]LineageNode, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}
	var out []LineageViolation
	for _, n := range nodes {
		if n.ParentID == "" {
			continue
		}
		parent, ok := byID[n.ParentID]
		if !ok {
			out = append(out, LineageViolation{ID: n.ID, Err: ErrLineageUnknownParent})
			continue
		}
		if inCycle(n.ID, byID) {
			out = append(out, LineageViolation{ID: n.ID, Err: ErrLineageCycle})
			continue
		}
		if !IsAtLeast(parent.Level, n.Level) {
			out = append(out, LineageViolation{ID: n.ID, Err: ErrLineageInverted})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func inCycle(start string, byID map[string]LineageNode) bool {
	seen := make(map[string]struct{}, len(byID))
	cur := byID[start].ParentID
	for cur != "" {
		if cur == start {
			return true
		}
		if _, ok := seen[cur]; ok {
			return false
		}
		seen[cur] = struct{}{}
		next, ok := byID[cur]
		if !ok {
			return false
		}
		cur = next.ParentID
	}
	return false
}

// LineagePolicy decides whether lineage violations block writes. When Enforce
// is false violations are only reported.
type LineagePolicy struct {
	Enforce bool
}

// Admit validates nodes and, when enforcing, returns the joined violations
// that involve id: the node itself or one of its direct children.
// Inconsistencies elsewhere in the set do not block a write to id.
func (p LineagePolicy) Admit(nodes []LineageNode, id string) error {
	if !p.Enforce {
		return nil
	}
	involved := map[string]struct{}{id: {}}
	for _, n := range nodes {
		if n.ParentID == id {
			involved[n.ID] = struct{}{}
		}
	}
	var errs []error
	for _, v := range ValidateLineage(nodes) {
		if _, ok := involved[v.ID]; ok {
			errs = append(errs, v)
		}
	}
	return errors.Join(errs...)
}
