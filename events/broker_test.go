package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcastReachesEveryClient(t *testing.T) {
	b := NewBroker()
	c1 := make(chan string, 1)
	c2 := make(chan string, 1)
	b.Register(c1)
	b.Register(c2)
	assert.Equal(t, 2, b.ClientCount())

	b.Broadcast(StageStarted, map[string]interface{}{"stage": "extract"})

	want := "event: stage_started\ndata: {\"stage\":\"extract\"}\n\n"
	assert.Equal(t, want, <-c1)
	assert.Equal(t, want, <-c2)
}

func TestBroadcastDropsForSlowClients(t *testing.T) {
	b := NewBroker()
	c := make(chan string, 1)
	b.Register(c)

	b.Broadcast(RunStarted, map[string]int{"run_id": 1})
	b.Broadcast(RunFinished, map[string]int{"run_id": 1})

	require.Len(t, c, 1)
	assert.Contains(t, <-c, RunStarted)
}

func TestUnregisterClosesOnce(t *testing.T) {
	b := NewBroker()
	c := make(chan string, 1)
	b.Register(c)

	b.Unregister(c)
	b.Unregister(c)
	assert.Equal(t, 0, b.ClientCount())

	_, open := <-c
	assert.False(t, open)
}

func TestBroadcastUnmarshalableData(t *testing.T) {
	b := NewBroker()
	c := make(chan string, 1)
	b.Register(c)

	b.Broadcast(RunStarted, map[string]interface{}{"bad": make(chan int)})
	assert.Len(t, c, 0)
}

func TestGetBrokerIsShared(t *testing.T) {
	assert.Same(t, GetBroker(), GetBroker())
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "event: connected\ndata: {}\n\n", Format("connected", []byte("{}")))
}
