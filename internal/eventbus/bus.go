package eventbus

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Kind - тип события на шине
type Kind string

const (
	KindIncidentStatus    Kind = "incident.status"
	KindAmbulanceStatus   Kind = "ambulance.status"
	KindAmbulancePosition Kind = "ambulance.position"
)

// Event - событие изменения состояния, рассылаемое подписчикам
type Event struct {
	Kind       Kind            `json:"kind"`
	IncidentID uuid.UUID       `json:"incident_id,omitempty"`
	Status     string          `json:"status,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

// Subscription - подписка на события с буферизованным каналом.
// Канал закрывается при Close() подписки, переполнении буфера
// или остановке шины.
type Subscription struct {
	C      chan Event
	bus    *Bus
	id     int64
	filter *uuid.UUID
	closed bool
}

// Close снимает подписку; повторный вызов безопасен
func (s *Subscription) Close() {
	s.bus.unsubscribe(s)
}

// Bus - внутрипроцессная шина событий. Публикация никогда не блокирует
// координатор: подписчик, не успевающий вычитывать буфер, отключается
// и переподписывается заново. Живая подписка получает каждое событие,
// события одного инцидента приходят в порядке публикации.
type Bus struct {
	mu      sync.Mutex
	subs    map[int64]*Subscription
	nextID  int64
	bufSize int
	closed  bool
	logger  *logrus.Logger
}

func New(bufSize int, logger *logrus.Logger) *Bus {
	if bufSize <= 0 {
		bufSize = 64
	}
	return &Bus{
		subs:    make(map[int64]*Subscription),
		bufSize: bufSize,
		logger:  logger,
	}
}

// Subscribe оформляет подписку. При filter == nil подписчик получает
// события по всем инцидентам.
func (b *Bus) Subscribe(filter *uuid.UUID) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := &Subscription{
		C:      make(chan Event, b.bufSize),
		bus:    b,
		id:     b.nextID,
		filter: filter,
	}
	if b.closed {
		sub.closed = true
		close(sub.C)
		return sub
	}
	b.subs[sub.id] = sub
	return sub
}

func (b *Bus) unsubscribe(s *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	delete(b.subs, s.id)
	close(s.C)
}

// Publish рассылает событие всем подходящим подписчикам без блокировки
func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}

	for id, sub := range b.subs {
		if sub.filter != nil && (ev.IncidentID == uuid.Nil || *sub.filter != ev.IncidentID) {
			continue
		}
		select {
		case sub.C <- ev:
		default:
			// Буфер переполнен - подписка снимается, чтобы не потерять
			// событие молча. Клиент видит закрытый канал и пересинхронизируется.
			sub.closed = true
			delete(b.subs, id)
			close(sub.C)
			if b.logger != nil {
				b.logger.WithFields(logrus.Fields{
					"subscriber": sub.id,
					"kind":       ev.Kind,
				}).Warn("Event bus subscriber is too slow, disconnecting it")
			}
		}
	}
}

// Close закрывает шину и каналы всех подписчиков
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, sub := range b.subs {
		sub.closed = true
		close(sub.C)
		delete(b.subs, id)
	}
}
