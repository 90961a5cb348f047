package geoindex

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/ems_dispatch_system/internal/models"
	"github.com/shenikar/ems_dispatch_system/pkg/geo"
)

// ErrNotAvailable возвращается при попытке зарезервировать машину,
// которая больше не находится в статусе available.
var ErrNotAvailable = errors.New("ambulance is not available")

// ErrUnknownAmbulance возвращается для неизвестного идентификатора машины
var ErrUnknownAmbulance = errors.New("ambulance is not registered in geo index")

// Candidate - результат запроса ближайшего ресурса
type Candidate struct {
	ID         uuid.UUID
	DistanceKm float64
}

type ambulanceEntry struct {
	lat, lon  float64
	status    models.AmbulanceStatus
	updatedAt time.Time
}

type hospitalEntry struct {
	lat, lon float64
}

// Index хранит текущие позиции и статусы машин и координаты больниц.
// Все мутации идут через явные вызовы, чтение конкурентное.
type Index struct {
	mu         sync.RWMutex
	ambulances map[uuid.UUID]*ambulanceEntry
	hospitals  map[uuid.UUID]*hospitalEntry
}

func New() *Index {
	return &Index{
		ambulances: make(map[uuid.UUID]*ambulanceEntry),
		hospitals:  make(map[uuid.UUID]*hospitalEntry),
	}
}

// UpsertAmbulance регистрирует машину или обновляет ее позицию и статус
func (x *Index) UpsertAmbulance(id uuid.UUID, lat, lon float64, status models.AmbulanceStatus) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.ambulances[id] = &ambulanceEntry{lat: lat, lon: lon, status: status, updatedAt: time.Now()}
}

// UpsertHospital регистрирует больницу
func (x *Index) UpsertHospital(id uuid.UUID, lat, lon float64) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.hospitals[id] = &hospitalEntry{lat: lat, lon: lon}
}

// SetPosition обновляет координаты машины (симуляция движения)
func (x *Index) SetPosition(id uuid.UUID, lat, lon float64) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	e, ok := x.ambulances[id]
	if !ok {
		return ErrUnknownAmbulance
	}
	e.lat, e.lon = lat, lon
	e.updatedAt = time.Now()
	return nil
}

// SetStatus принудительно выставляет статус машины
func (x *Index) SetStatus(id uuid.UUID, status models.AmbulanceStatus) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	e, ok := x.ambulances[id]
	if !ok {
		return ErrUnknownAmbulance
	}
	e.status = status
	e.updatedAt = time.Now()
	return nil
}

// Position возвращает текущие координаты машины
func (x *Index) Position(id uuid.UUID) (float64, float64, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	e, ok := x.ambulances[id]
	if !ok {
		return 0, 0, ErrUnknownAmbulance
	}
	return e.lat, e.lon, nil
}

// Status возвращает текущий статус машины
func (x *Index) Status(id uuid.UUID) (models.AmbulanceStatus, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	e, ok := x.ambulances[id]
	if !ok {
		return "", ErrUnknownAmbulance
	}
	return e.status, nil
}

// Reserve атомарно переводит машину available -> en_route_incident.
// Конкурирующие вызовы сериализуются: резервацию получает ровно один.
func (x *Index) Reserve(id uuid.UUID) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	e, ok := x.ambulances[id]
	if !ok {
		return ErrUnknownAmbulance
	}
	if e.status != models.AmbulanceAvailable {
		return ErrNotAvailable
	}
	e.status = models.AmbulanceEnRouteIncident
	e.updatedAt = time.Now()
	return nil
}

// Release возвращает машину в указанный статус, снимая резервацию
func (x *Index) Release(id uuid.UUID, to models.AmbulanceStatus) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	e, ok := x.ambulances[id]
	if !ok {
		return ErrUnknownAmbulance
	}
	e.status = to
	e.updatedAt = time.Now()
	return nil
}

// NearestAvailable возвращает доступную машину с минимальным расстоянием
// по формуле гаверсинусов в пределах maxRadiusKm. Второе значение false -
// штатный исход "никого нет", а не ошибка. При равных расстояниях
// детерминированно побеждает меньший идентификатор.
func (x *Index) NearestAvailable(lat, lon, maxRadiusKm float64) (Candidate, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	var best Candidate
	found := false
	for id, e := range x.ambulances {
		if e.status != models.AmbulanceAvailable {
			continue
		}
		d := geo.HaversineKm(lat, lon, e.lat, e.lon)
		if d > maxRadiusKm {
			continue
		}
		if !found || d < best.DistanceKm || (d == best.DistanceKm && lessID(id, best.ID)) {
			best = Candidate{ID: id, DistanceKm: d}
			found = true
		}
	}
	return best, found
}

// NearestHospital возвращает ближайшую больницу без фильтра по статусу и радиусу
func (x *Index) NearestHospital(lat, lon float64) (Candidate, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	var best Candidate
	found := false
	for id, e := range x.hospitals {
		d := geo.HaversineKm(lat, lon, e.lat, e.lon)
		if !found || d < best.DistanceKm || (d == best.DistanceKm && lessID(id, best.ID)) {
			best = Candidate{ID: id, DistanceKm: d}
			found = true
		}
	}
	return best, found
}

func lessID(a, b uuid.UUID) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
