package model

import "strconv"

// Snapshot is the replicated view of server-side state pushed over the feed.
// It is replaced wholesale on every update.
type Snapshot struct {
	Servers []Server  `json:"servers" yaml:"servers"`
	Matches []Match   `json:"matches" yaml:"matches"`
	Groups  []string  `json:"groups" yaml:"groups"`
	Configs ConfigSet `json:"configs" yaml:"configs"`
}

type ConfigSet struct {
	Main  []string `json:"main" yaml:"main"`
	Knife []string `json:"knife" yaml:"knife"`
}

type Server struct {
	IP         string `json:"ip" yaml:"ip"`
	Port       int    `json:"port" yaml:"port"`
	DefaultMap string `json:"default_map" yaml:"default_map"`
}

// Identity is the "ip:port" string used both as selection value and lookup key.
func (s Server) Identity() string {
	return s.IP + ":" + strconv.Itoa(s.Port)
}

type Team struct {
	Name    string `json:"name" yaml:"name"`
	Country string `json:"country" yaml:"country"`
}

type Match struct {
	ID          string `json:"id" yaml:"id"`
	Team1       Team   `json:"team1" yaml:"team1"`
	Team2       Team   `json:"team2" yaml:"team2"`
	MatchGroup  string `json:"match_group" yaml:"match_group"`
	Map         string `json:"map" yaml:"map"`
	KnifeConfig string `json:"knife_config" yaml:"knife_config"`
	MatchConfig string `json:"match_config" yaml:"match_config"`
	Server      string `json:"server" yaml:"server"`
	Status      int    `json:"status" yaml:"status"`
}

// MatchDraft is the outbound payload of a match_create command.
type MatchDraft Match

// Breadcrumb is one entry of the navigation trail. An empty URL marks the
// current page, which is not a link.
type Breadcrumb struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

const (
	ColorSuccess = "success"
	ColorDanger  = "danger"
	ColorWarning = "warning"
	ColorInfo    = "info"
)

type Notification struct {
	Title string `json:"title"`
	Color string `json:"color"`
}

func (s Snapshot) Normalize() Snapshot {
	out := Snapshot{
		Servers: append([]Server{}, s.Servers...),
		Matches: append([]Match{}, s.Matches...),
		Groups:  append([]string{}, s.Groups...),
		Configs: ConfigSet{
			Main:  append([]string{}, s.Configs.Main...),
			Knife: append([]string{}, s.Configs.Knife...),
		},
	}
	return out
}

func (s Snapshot) ServerIdentities() []string {
	out := make([]string, 0, len(s.Servers))
	for _, srv := range s.Servers {
		out = append(out, srv.Identity())
	}
	return out
}
