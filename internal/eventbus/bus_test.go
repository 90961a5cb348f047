package eventbus

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func publishStatus(b *Bus, incidentID uuid.UUID, status string) {
	b.Publish(Event{
		Kind:       KindIncidentStatus,
		IncidentID: incidentID,
		Status:     status,
		Timestamp:  time.Now(),
	})
}

func TestPublish_PerIncidentOrdering(t *testing.T) {
	bus := New(16, nil)
	defer bus.Close()

	sub := bus.Subscribe(nil)
	defer sub.Close()

	incidentID := uuid.New()
	statuses := []string{"pending", "confirmed", "assigned", "in_progress", "completed"}
	for _, s := range statuses {
		publishStatus(bus, incidentID, s)
	}

	for _, want := range statuses {
		select {
		case ev := <-sub.C:
			assert.Equal(t, incidentID, ev.IncidentID)
			assert.Equal(t, want, ev.Status)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for event")
		}
	}
}

func TestSubscribe_FilterByIncident(t *testing.T) {
	bus := New(16, nil)
	defer bus.Close()

	wanted := uuid.New()
	other := uuid.New()
	sub := bus.Subscribe(&wanted)
	defer sub.Close()

	publishStatus(bus, other, "pending")
	publishStatus(bus, wanted, "confirmed")

	select {
	case ev := <-sub.C:
		assert.Equal(t, wanted, ev.IncidentID)
		assert.Equal(t, "confirmed", ev.Status)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for filtered event")
	}
	assert.Empty(t, sub.C)
}

func TestPublish_SlowSubscriberDoesNotBlock(t *testing.T) {
	bus := New(2, nil)
	defer bus.Close()

	slow := bus.Subscribe(nil)
	defer slow.Close()
	fast := bus.Subscribe(nil)
	defer fast.Close()

	incidentID := uuid.New()
	done := make(chan struct{})
	go func() {
		// Никто не читает из slow - публикации не должны зависнуть
		for i := 0; i < 100; i++ {
			publishStatus(bus, incidentID, fmt.Sprintf("s%d", i))
			<-fast.C
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publisher blocked on a slow subscriber")
	}
}

func TestPublish_OverflowDisconnectsSubscriber(t *testing.T) {
	bus := New(1, nil)
	defer bus.Close()

	sub := bus.Subscribe(nil)
	defer sub.Close()

	incidentID := uuid.New()
	publishStatus(bus, incidentID, "pending")
	publishStatus(bus, incidentID, "confirmed")
	publishStatus(bus, incidentID, "assigned")

	// Буферизованное событие доставляется, затем канал закрыт:
	// потерь без сигнала не бывает
	ev, open := <-sub.C
	require.True(t, open)
	assert.Equal(t, "pending", ev.Status)
	_, open = <-sub.C
	assert.False(t, open)

	// Переподписка получает последующие события
	resub := bus.Subscribe(nil)
	defer resub.Close()
	publishStatus(bus, incidentID, "in_progress")
	select {
	case ev := <-resub.C:
		assert.Equal(t, "in_progress", ev.Status)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event after resubscribe")
	}
}

func TestClose_ClosesSubscriberChannels(t *testing.T) {
	bus := New(4, nil)
	sub := bus.Subscribe(nil)
	bus.Close()

	_, open := <-sub.C
	assert.False(t, open)

	// Подписка после закрытия сразу возвращает закрытый канал
	late := bus.Subscribe(nil)
	_, open = <-late.C
	assert.False(t, open)
}

func TestSubscriptionClose_Idempotent(t *testing.T) {
	bus := New(4, nil)
	defer bus.Close()

	sub := bus.Subscribe(nil)
	sub.Close()
	require.NotPanics(t, func() { sub.Close() })
}
