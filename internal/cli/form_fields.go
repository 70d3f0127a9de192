package cli

import (
	"matchctl/internal/countries"
	"matchctl/internal/matchform"
	"matchctl/internal/model"
)

type fieldLabel struct {
	Label       string
	Placeholder string
	Help        string
}

var fieldLabels = map[matchform.FieldKey]fieldLabel{
	matchform.FieldTeam1Name:    {Label: "Team 1 Name", Help: "Name of the first team"},
	matchform.FieldTeam1Country: {Label: "Team 1 Country Code", Placeholder: "Select country", Help: "ISO country code of the first team"},
	matchform.FieldTeam2Name:    {Label: "Team 2 Name", Help: "Name of the second team"},
	matchform.FieldTeam2Country: {Label: "Team 2 Country Code", Placeholder: "Select country", Help: "ISO country code of the second team"},
	matchform.FieldMatchGroup:   {Label: "Match Group", Placeholder: "Select a group", Help: "Group this match belongs to"},
	matchform.FieldServer:       {Label: "Server", Placeholder: "Select a server", Help: "Changing the server fills in its default map"},
	matchform.FieldMap:          {Label: "Default Server Map", Help: "Filled from the server; can be overridden"},
	matchform.FieldKnifeConfig:  {Label: "CSGO Knife Config", Placeholder: "Select a config", Help: "Config loaded for the knife round"},
	matchform.FieldMainConfig:   {Label: "CSGO Main Config", Placeholder: "Select a config", Help: "Config loaded for the match"},
}

func labelFor(key matchform.FieldKey) string {
	if l, ok := fieldLabels[key]; ok {
		return l.Label
	}
	return string(key)
}

// selectOption is one choice of a select field. Value is what gets stored in
// the registry; Label is what the user sees.
type selectOption struct {
	Value string
	Label string
}

// selectOptions lists the choices for a select field from the snapshot, with
// the unset placeholder first.
func selectOptions(key matchform.FieldKey, snap model.Snapshot) []selectOption {
	out := []selectOption{{Value: matchform.Unset, Label: fieldLabels[key].Placeholder}}
	switch key {
	case matchform.FieldTeam1Country, matchform.FieldTeam2Country:
		for _, c := range countries.List() {
			out = append(out, selectOption{Value: c.Code, Label: c.Code + " - " + c.Name})
		}
	case matchform.FieldMatchGroup:
		out = appendPlain(out, snap.Groups)
	case matchform.FieldServer:
		out = appendPlain(out, snap.ServerIdentities())
	case matchform.FieldKnifeConfig:
		out = appendPlain(out, snap.Configs.Knife)
	case matchform.FieldMainConfig:
		out = appendPlain(out, snap.Configs.Main)
	}
	return out
}

func appendPlain(out []selectOption, values []string) []selectOption {
	for _, v := range values {
		out = append(out, selectOption{Value: v, Label: v})
	}
	return out
}

func optionIndex(options []selectOption, value string) int {
	for i, o := range options {
		if o.Value == value {
			return i
		}
	}
	return -1
}

func displayValue(key matchform.FieldKey, value string) string {
	if matchform.IsUnset(value) {
		return fieldLabels[key].Placeholder
	}
	if key == matchform.FieldTeam1Country || key == matchform.FieldTeam2Country {
		if c, ok := countries.Lookup(value); ok {
			return c.Code + " - " + c.Name
		}
	}
	return value
}
