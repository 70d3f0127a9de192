package devfeed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchctl/internal/feed"
	"matchctl/internal/model"
)

func TestRoutesHealthzAndSnapshot(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	srv := httptest.NewServer(Routes(NewHub(ctx, SampleSnapshot(), nil)))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/snapshot")
	require.NoError(t, err)
	defer resp.Body.Close()
	var snap model.Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	assert.Len(t, snap.Servers, 3)
}

func TestClientCreatesMatchThroughDevFeed(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv := httptest.NewServer(Routes(NewHub(ctx, SampleSnapshot(), nil)))
	defer srv.Close()

	c, err := feed.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", feed.ClientOptions{})
	require.NoError(t, err)
	defer c.Close()
	<-c.Ready()

	updates := make(chan model.Snapshot, 4)
	c.Subscribe(feed.EventUpdate, func(s model.Snapshot) { updates <- s })

	c.Send(feed.CommandMatchCreate, model.MatchDraft{ID: "m-42", Server: "10.0.0.11:27015"})

	select {
	case s := <-updates:
		require.Len(t, s.Matches, 1)
		assert.Equal(t, "m-42", s.Matches[0].ID)
	case <-ctx.Done():
		t.Fatal("no update after match_create")
	}
}

func TestLoadSnapshotFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`servers:
  - ip: 1.2.3.4
    port: 27015
    default_map: de_dust2
groups: [A]
configs:
  main: [m1]
  knife: [k1]
`), 0o644))

	snap, err := LoadSnapshot(path)
	require.NoError(t, err)
	require.Len(t, snap.Servers, 1)
	assert.Equal(t, "1.2.3.4:27015", snap.Servers[0].Identity())
	assert.Equal(t, []string{"A"}, snap.Groups)
	assert.NotNil(t, snap.Matches)
}

func TestLoadSnapshotDefaultsToSample(t *testing.T) {
	snap, err := LoadSnapshot("")
	require.NoError(t, err)
	assert.Equal(t, SampleSnapshot(), snap)
}

func TestLoadSnapshotMissingFile(t *testing.T) {
	_, err := LoadSnapshot(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestWebsocketClosedWhenHubAlreadyStopped(t *testing.T) {
	hubCtx, stop := context.WithCancel(context.Background())
	h := NewHub(hubCtx, SampleSnapshot(), nil)
	stop()
	<-h.Done()

	srv := httptest.NewServer(Routes(h))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c, err := feed.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", feed.ClientOptions{})
	require.NoError(t, err)
	defer c.Close()

	select {
	case <-c.Done():
	case <-ctx.Done():
		t.Fatal("connection left open after hub shutdown")
	}
}
