package store

import (
	"sort"
	"strings"
)

// ResolveContinuation finds the session this one continues: the most
// recent plan-mode entry (timestamp descending) whose plan_paths
// intersect the referenced paths. When that finds nothing and a slug
// is known, any plan-mode entry with a path ending in "/<slug>.md"
// matches instead, again most recent first. Returns "" when nothing
// matches.
func (l *Ledger) ResolveContinuation(referencedPlanPaths []string, slug string) (string, error) {
	entries, err := l.Load()
	if err != nil {
		return "", err
	}

	var planEntries []IndexEntry
	for _, e := range entries {
		if e.PlanMode {
			planEntries = append(planEntries, e)
		}
	}
	sort.SliceStable(planEntries, func(i, j int) bool {
		return planEntries[i].Timestamp > planEntries[j].Timestamp
	})

	if len(referencedPlanPaths) > 0 {
		referenced := make(map[string]bool, len(referencedPlanPaths))
		for _, p := range referencedPlanPaths {
			referenced[p] = true
		}
		for _, e := range planEntries {
			for _, p := range e.PlanPaths {
				if referenced[p] {
					return e.SessionID, nil
				}
			}
		}
	}

	if slug != "" {
		suffix := "/" + slug + ".md"
		for _, e := range planEntries {
			for _, p := range e.PlanPaths {
				if strings.HasSuffix(p, suffix) {
					return e.SessionID, nil
				}
			}
		}
	}

	return "", nil
}

// LinkedSessions computes the full connected component of a session
// under the continues_session relation, traversed in both directions.
// Breadth-first with a visited set, so cycles terminate. The queried
// id is always part of the result, which is returned sorted.
func (l *Ledger) LinkedSessions(sessionID string) ([]string, error) {
	entries, err := l.Load()
	if err != nil {
		return nil, err
	}

	// continues_session edges in both directions
	parentOf := make(map[string]string)
	childrenOf := make(map[string][]string)
	for _, e := range entries {
		if e.ContinuesSession == "" {
			continue
		}
		parentOf[e.SessionID] = e.ContinuesSession
		childrenOf[e.ContinuesSession] = append(childrenOf[e.ContinuesSession], e.SessionID)
	}

	visited := map[string]bool{sessionID: true}
	queue := []string{sessionID}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if parent, ok := parentOf[current]; ok && !visited[parent] {
			visited[parent] = true
			queue = append(queue, parent)
		}
		for _, child := range childrenOf[current] {
			if !visited[child] {
				visited[child] = true
				queue = append(queue, child)
			}
		}
	}

	linked := make([]string, 0, len(visited))
	for id := range visited {
		linked = append(linked, id)
	}
	sort.Strings(linked)
	return linked, nil
}
