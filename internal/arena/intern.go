package arena

// internTable is a monotonically growing name<->id map, issuing dense
// uint32 ids. Grounded on the teacher's registry.go id-issuance pattern
// (eventloop.registry.nextID), minus the weak-pointer scavenging: intern
// tables never shrink (spec.md §4.3: "two monotonically growing maps").
type internTable struct {
	ids   map[string]uint32
	names []string
}

func newInternTable() *internTable {
	return &internTable{ids: make(map[string]uint32)}
}

// restoreInternTable rebuilds a table from an ordered name list (snapshot
// restore), so that names[i] maps back to id i exactly as it did when the
// snapshot was taken.
func restoreInternTable(names []string) *internTable {
	t := &internTable{
		ids:   make(map[string]uint32, len(names)),
		names: append([]string(nil), names...),
	}
	for i, n := range t.names {
		t.ids[n] = uint32(i)
	}
	return t
}

func (t *internTable) intern(name string) uint32 {
	if id, ok := t.ids[name]; ok {
		return id
	}
	id := uint32(len(t.names))
	t.names = append(t.names, name)
	t.ids[name] = id
	return id
}

func (t *internTable) lookup(id uint32) (string, bool) {
	if int(id) >= len(t.names) {
		return "", false
	}
	return t.names[id], true
}

// list returns the table's contents in id order, suitable for snapshot
// serialization.
func (t *internTable) list() []string {
	return append([]string(nil), t.names...)
}
