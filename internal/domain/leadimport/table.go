package leadimport

// Table is a parsed upload: header-derived column names and raw string rows.
type Table struct {
	Columns    []string   `json:"columns"`
	Rows       [][]string `json:"rows"`
	Source     string     `json:"source"`
	ArchiveKey string     `json:"archive_key,omitempty"`
}

// ColumnIndex returns the position of name, or -1.
func (t *Table) ColumnIndex(name string) int {
	if name == "" {
		return -1
	}
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

func (t *Table) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// Preview returns up to n leading rows.
func (t *Table) Preview(n int) [][]string {
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	out := make([][]string, n)
	copy(out, t.Rows[:n])
	return out
}
