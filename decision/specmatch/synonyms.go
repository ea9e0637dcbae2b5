package specmatch

// SynonymTable resolves alternate spec names to a canonical group, so that
// e.g. "voltage_grade", "rated voltage" and "voltage" all land on the same
// candidate feature. The table is configuration data injected at
// construction, never hardcoded lookup logic.
type SynonymTable struct {
	groupOf map[string]int
}

// NewSynonymTable builds a table from canonical-name -> alternates. Every
// member is stored under its normalized form; the canonical name itself is a
// member of its own group.
func NewSynonymTable(table map[string][]string) *SynonymTable {
	t := &SynonymTable{groupOf: make(map[string]int)}
	group := 0
	for canonical, alternates := range table {
		t.add(NormalizeName(canonical), group)
		for _, alt := range alternates {
			t.add(NormalizeName(alt), group)
		}
		group++
	}
	return t
}

func (t *SynonymTable) add(member string, group int) {
	if member == "" {
		return
	}
	if _, exists := t.groupOf[member]; !exists {
		t.groupOf[member] = group
	}
}

// SameGroup reports whether two normalized names belong to one synonym
// group. Names absent from the table belong to no group.
func (t *SynonymTable) SameGroup(a, b string) bool {
	ga, ok := t.groupOf[a]
	if !ok {
		return false
	}
	gb, ok := t.groupOf[b]
	if !ok {
		return false
	}
	return ga == gb
}

// Size returns the number of known synonym members.
func (t *SynonymTable) Size() int {
	return len(t.groupOf)
}
