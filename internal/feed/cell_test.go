package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchctl/internal/model"
)

func TestCellPublishReplacesSnapshot(t *testing.T) {
	c := NewCell(model.Snapshot{})

	c.Publish(model.Snapshot{
		Servers: []model.Server{{IP: "1.1.1.1", Port: 1}},
		Groups:  []string{"old"},
	})
	c.Publish(model.Snapshot{Groups: []string{"new"}})

	got := c.CurrentValue()
	assert.Empty(t, got.Servers, "servers from the first update must not survive the second")
	assert.Equal(t, []string{"new"}, got.Groups)
}

func TestCellDeliversInSubscriptionOrder(t *testing.T) {
	c := NewCell(model.Snapshot{})
	var order []string
	c.Subscribe(EventUpdate, func(model.Snapshot) { order = append(order, "first") })
	c.Subscribe(EventUpdate, func(model.Snapshot) { order = append(order, "second") })
	c.Subscribe("other", func(model.Snapshot) { order = append(order, "other") })

	c.Publish(model.Snapshot{})

	assert.Equal(t, []string{"first", "second"}, order)
}

func TestCellUnsubscribeStopsDelivery(t *testing.T) {
	c := NewCell(model.Snapshot{})
	calls := 0
	sub := c.Subscribe(EventUpdate, func(model.Snapshot) { calls++ })
	require.True(t, sub.Valid())

	c.Publish(model.Snapshot{})
	c.Unsubscribe(sub)
	c.Publish(model.Snapshot{})

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, c.Subscribers())
}

func TestCellUnsubscribeZeroValueIsNoop(t *testing.T) {
	c := NewCell(model.Snapshot{})
	c.Subscribe(EventUpdate, func(model.Snapshot) {})
	c.Unsubscribe(Subscription{})
	assert.Equal(t, 1, c.Subscribers())
}

func TestCellNilHandlerNotRegistered(t *testing.T) {
	c := NewCell(model.Snapshot{})
	sub := c.Subscribe(EventUpdate, nil)
	assert.False(t, sub.Valid())
	assert.Equal(t, 0, c.Subscribers())
}
