package matchform

import "matchctl/internal/model"

// IsUnset reports whether a select value is the no-selection placeholder.
func IsUnset(value string) bool {
	return value == Unset
}

func isEmpty(value string) bool {
	return value == ""
}

// fieldRules return true when the value is invalid.
var fieldRules = map[FieldKey]func(string) bool{
	FieldTeam1Name:    isEmpty,
	FieldTeam1Country: IsUnset,
	FieldTeam2Name:    isEmpty,
	FieldTeam2Country: IsUnset,
	FieldMatchGroup:   IsUnset,
	FieldServer:       IsUnset,
	FieldMap:          isEmpty,
	FieldKnifeConfig:  IsUnset,
	FieldMainConfig:   IsUnset,
}

// ResolveMap returns the default map of the first server whose identity equals
// selection. The bool is false when no server matches, in which case the
// caller keeps its current map.
func ResolveMap(selection string, servers []model.Server) (string, bool) {
	for _, srv := range servers {
		if srv.Identity() == selection {
			return srv.DefaultMap, true
		}
	}
	return "", false
}
