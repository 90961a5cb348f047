package service

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestConfirmationTimer_Fires(t *testing.T) {
	timers := NewConfirmationTimer()
	defer timers.Stop()

	fired := make(chan struct{})
	timers.Schedule(uuid.New(), 10*time.Millisecond, func() {
		close(fired)
	})

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("timer did not fire")
	}
}

func TestConfirmationTimer_CancelBeforeFire(t *testing.T) {
	timers := NewConfirmationTimer()
	defer timers.Stop()

	id := uuid.New()
	var fires int32
	timers.Schedule(id, 50*time.Millisecond, func() {
		atomic.AddInt32(&fires, 1)
	})

	assert.True(t, timers.Cancel(id))
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&fires))
}

func TestConfirmationTimer_CancelAfterFire(t *testing.T) {
	timers := NewConfirmationTimer()
	defer timers.Stop()

	id := uuid.New()
	fired := make(chan struct{})
	timers.Schedule(id, 5*time.Millisecond, func() {
		close(fired)
	})

	<-fired
	// Сработавший таймер уже снят, повторная отмена - no-op
	assert.False(t, timers.Cancel(id))
}

func TestConfirmationTimer_RescheduleReplacesTimer(t *testing.T) {
	timers := NewConfirmationTimer()
	defer timers.Stop()

	id := uuid.New()
	var first, second int32
	timers.Schedule(id, 20*time.Millisecond, func() {
		atomic.AddInt32(&first, 1)
	})
	timers.Schedule(id, 20*time.Millisecond, func() {
		atomic.AddInt32(&second, 1)
	})

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&first))
	assert.Equal(t, int32(1), atomic.LoadInt32(&second))
}

func TestConfirmationTimer_StopCancelsAll(t *testing.T) {
	timers := NewConfirmationTimer()

	var fires int32
	for i := 0; i < 5; i++ {
		timers.Schedule(uuid.New(), 50*time.Millisecond, func() {
			atomic.AddInt32(&fires, 1)
		})
	}

	timers.Stop()
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&fires))
}
