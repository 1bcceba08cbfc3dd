package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStopSignalFirstCallWins(t *testing.T) {
	stop := NewStopSignal()
	assert.False(t, stop.Requested())
	assert.False(t, stop.StoppedEarly())

	assert.True(t, stop.Request(true))
	assert.True(t, stop.Requested())
	assert.True(t, stop.StoppedEarly())

	// later calls are no-ops, whatever they claim about earliness
	assert.False(t, stop.Request(false))
	assert.True(t, stop.Requested())
	assert.True(t, stop.StoppedEarly())
}

func TestStopSignalLateStopIsNeverEarly(t *testing.T) {
	stop := NewStopSignal()
	assert.True(t, stop.Request(false))
	assert.False(t, stop.Request(true))

	assert.True(t, stop.Requested())
	assert.False(t, stop.StoppedEarly())
}

func TestStopSignalDoneCloses(t *testing.T) {
	stop := NewStopSignal()

	select {
	case <-stop.Done():
		t.Fatal("done closed before any request")
	default:
	}

	stop.Request(false)

	select {
	case <-stop.Done():
	default:
		t.Fatal("done not closed after request")
	}
}

func TestStopSignalConcurrentRequests(t *testing.T) {
	stop := NewStopSignal()

	var wg sync.WaitGroup
	firsts := make(chan bool, 16)
	for i := 0; i < 16; i++ {
		early := i%2 == 0
		wg.Add(1)
		go func() {
			defer wg.Done()
			firsts <- stop.Request(early)
		}()
	}
	wg.Wait()
	close(firsts)

	count := 0
	for first := range firsts {
		if first {
			count++
		}
	}
	assert.Equal(t, 1, count)
	assert.True(t, stop.Requested())
}
