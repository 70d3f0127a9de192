package devfeed

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"matchctl/internal/model"
)

func SampleSnapshot() model.Snapshot {
	return model.Snapshot{
		Servers: []model.Server{
			{IP: "10.0.0.10", Port: 27015, DefaultMap: "de_dust2"},
			{IP: "10.0.0.10", Port: 27016, DefaultMap: "de_inferno"},
			{IP: "10.0.0.11", Port: 27015, DefaultMap: "de_mirage"},
		},
		Matches: []model.Match{},
		Groups:  []string{"Group A", "Group B", "Finals"},
		Configs: model.ConfigSet{
			Main:  []string{"esl5on5.cfg", "esl2on2.cfg"},
			Knife: []string{"knife.cfg"},
		},
	}
}

// LoadSnapshot reads a snapshot from a YAML (or JSON) file. An empty path
// returns the sample snapshot.
func LoadSnapshot(path string) (model.Snapshot, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return SampleSnapshot(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("read snapshot %s: %w", path, err)
	}
	var snap model.Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return model.Snapshot{}, fmt.Errorf("parse snapshot %s: %w", path, err)
	}
	return snap.Normalize(), nil
}
