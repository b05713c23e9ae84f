package core

import "strings"

type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

// ParseOrderings parses a comma separated ordering param, eg. "name,-appliedDate".
// Fields not present in `allowed` are dropped; `allowed` maps param names to column names.
func ParseOrderings(param string, allowed map[string]string) []DBOrdering {
	var ords []DBOrdering
	for _, field := range strings.Split(param, ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		col, ok := allowed[field]
		if !ok {
			continue
		}
		ords = append(ords, DBOrdering{Field: col, Ascending: !descending})
	}
	return ords
}
