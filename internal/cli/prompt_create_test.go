package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchctl/internal/config"
	"matchctl/internal/devfeed"
	"matchctl/internal/feed"
	"matchctl/internal/model"
)

// scriptedAsker answers prompts from per-label queues. An input with no
// scripted answer accepts the default.
type scriptedAsker struct {
	inputs  map[string][]string
	selects map[string][]string
	asked   []string
}

func (a *scriptedAsker) Input(message, _, def string) (string, error) {
	a.asked = append(a.asked, message)
	q := a.inputs[message]
	if len(q) == 0 {
		return def, nil
	}
	a.inputs[message] = q[1:]
	return q[0], nil
}

func (a *scriptedAsker) Select(message, _ string, options []string, _ int) (int, error) {
	a.asked = append(a.asked, message)
	q := a.selects[message]
	want := ""
	if len(q) > 0 {
		want = q[0]
		a.selects[message] = q[1:]
	}
	for i, o := range options {
		if o == want {
			return i, nil
		}
	}
	return 0, nil
}

func newScriptedAsker() *scriptedAsker {
	return &scriptedAsker{
		inputs: map[string][]string{
			"Team 1 Name": {"Navi"},
			"Team 2 Name": {"Astralis"},
		},
		selects: map[string][]string{
			"Team 1 Country Code": {"UA - Ukraine"},
			"Team 2 Country Code": {"DK - Denmark"},
			"Match Group":         {"Finals"},
			"Server":              {"10.0.0.10:27016"},
			"CSGO Knife Config":   {"knife.cfg"},
			"CSGO Main Config":    {"esl2on2.cfg"},
		},
	}
}

func TestPromptCreateSendsMatch(t *testing.T) {
	f := newRecordingFeed(devfeed.SampleSnapshot())
	asker := newScriptedAsker()
	var out bytes.Buffer

	err := runPromptCreate(config.Default(), f, nil, asker, &out)
	require.NoError(t, err)

	sent := f.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, feed.CommandMatchCreate, sent[0].name)
	draft, ok := sent[0].payload.(model.MatchDraft)
	require.True(t, ok)
	assert.Equal(t, "Navi", draft.Team1.Name)
	assert.Equal(t, "UA", draft.Team1.Country)
	assert.Equal(t, "DK", draft.Team2.Country)
	assert.Equal(t, "Finals", draft.MatchGroup)
	assert.Equal(t, "de_inferno", draft.Map, "map defaults to the server's map")
	assert.Equal(t, "esl2on2.cfg", draft.MatchConfig)

	assert.Contains(t, out.String(), "Create new match | CSGO Remote development")
	assert.Contains(t, out.String(), "Home / Match / Create")
	assert.Contains(t, out.String(), "Match created!")
	assert.Equal(t, 0, f.Subscribers())
}

func TestPromptCreateReasksOnlyInvalidFields(t *testing.T) {
	f := newRecordingFeed(devfeed.SampleSnapshot())
	asker := newScriptedAsker()
	asker.inputs["Team 2 Name"] = []string{"", "Astralis"}
	var out bytes.Buffer

	require.NoError(t, runPromptCreate(config.Default(), f, nil, asker, &out))
	require.Len(t, f.Sent(), 1)
	assert.Contains(t, out.String(), "missing values: Team 2 Name")
	assert.Len(t, asker.asked, 10)
	assert.Equal(t, "Team 2 Name", asker.asked[9])
}

func TestPromptCreateFailsWithoutFeedOptions(t *testing.T) {
	f := newRecordingFeed(model.Snapshot{})
	var out bytes.Buffer

	err := runPromptCreate(config.Default(), f, nil, newScriptedAsker(), &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no options for match group")
	assert.Empty(t, f.Sent())
}

func TestPromptCreateGivesUpAfterRepeatedBlanks(t *testing.T) {
	f := newRecordingFeed(devfeed.SampleSnapshot())
	asker := newScriptedAsker()
	asker.inputs["Team 1 Name"] = []string{"", "", ""}

	err := runPromptCreate(config.Default(), f, nil, asker, &bytes.Buffer{})
	require.Error(t, err)
	assert.Empty(t, f.Sent())
}
