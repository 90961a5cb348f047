package service

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// ConfirmationTimer держит по одному таймеру на pending-инцидент.
// Отмена уже сработавшего таймера - no-op, срабатывание происходит
// не более одного раза.
type ConfirmationTimer struct {
	mu     sync.Mutex
	timers map[uuid.UUID]*time.Timer
}

func NewConfirmationTimer() *ConfirmationTimer {
	return &ConfirmationTimer{timers: make(map[uuid.UUID]*time.Timer)}
}

// Schedule запускает отсчет для инцидента. Повторный вызов для того же
// инцидента заменяет предыдущий таймер.
func (c *ConfirmationTimer) Schedule(incidentID uuid.UUID, d time.Duration, fire func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if old, ok := c.timers[incidentID]; ok {
		old.Stop()
	}
	c.timers[incidentID] = time.AfterFunc(d, func() {
		c.mu.Lock()
		delete(c.timers, incidentID)
		c.mu.Unlock()
		fire()
	})
}

// Cancel снимает таймер инцидента. Возвращает false, если таймер уже
// сработал или не существовал.
func (c *ConfirmationTimer) Cancel(incidentID uuid.UUID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	t, ok := c.timers[incidentID]
	if !ok {
		return false
	}
	delete(c.timers, incidentID)
	return t.Stop()
}

// Stop снимает все таймеры (graceful shutdown)
func (c *ConfirmationTimer) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, t := range c.timers {
		t.Stop()
		delete(c.timers, id)
	}
}
