package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/ems_dispatch_system/internal/eventbus"
	"github.com/shenikar/ems_dispatch_system/internal/geoindex"
	"github.com/shenikar/ems_dispatch_system/internal/models"
	"github.com/sirupsen/logrus"
)

// AmbulanceRepository определяет контракт для работы с бд машин.
// UpdateStatusCAS обновляет статус только из ожидаемого исходного.
type AmbulanceRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Ambulance, error)
	ListAmbulances(ctx context.Context) ([]*models.Ambulance, error)
	UpdateStatusCAS(ctx context.Context, id uuid.UUID, from, to models.AmbulanceStatus) (bool, error)
	UpdatePosition(ctx context.Context, id uuid.UUID, lat, lon float64) error
}

// HospitalRepository определяет контракт для справочника больниц
type HospitalRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Hospital, error)
	ListHospitals(ctx context.Context) ([]*models.Hospital, error)
}

// FleetService владеет изменяемым состоянием машин: позиции из симуляции
// движения, статусы, резервации. Бд и гео-индекс меняются только здесь.
type FleetService interface {
	FleetControl
	LoadIndex(ctx context.Context) error
	ListAmbulances(ctx context.Context) ([]*models.Ambulance, error)
	UpdatePosition(ctx context.Context, id uuid.UUID, lat, lon float64) error
	UpdateStatus(ctx context.Context, id uuid.UUID, to models.AmbulanceStatus) error
	ReserveAmbulance(ctx context.Context, id uuid.UUID) error
	RollbackReservation(ctx context.Context, id uuid.UUID) error
}

type fleetService struct {
	ambulances AmbulanceRepository
	hospitals  HospitalRepository
	index      *geoindex.Index
	bus        *eventbus.Bus
	locks      *keyMutex
	logger     *logrus.Logger
}

func NewFleetService(
	ambulances AmbulanceRepository,
	hospitals HospitalRepository,
	index *geoindex.Index,
	bus *eventbus.Bus,
	logger *logrus.Logger,
) FleetService {
	return &fleetService{
		ambulances: ambulances,
		hospitals:  hospitals,
		index:      index,
		bus:        bus,
		locks:      newKeyMutex(),
		logger:     logger,
	}
}

// LoadIndex наполняет гео-индекс текущим состоянием машин и больниц
func (s *fleetService) LoadIndex(ctx context.Context) error {
	ambulances, err := s.ambulances.ListAmbulances(ctx)
	if err != nil {
		return fmt.Errorf("service: could not load ambulances: %w", err)
	}
	for _, a := range ambulances {
		s.index.UpsertAmbulance(a.ID, a.Latitude, a.Longitude, a.Status)
	}

	hospitals, err := s.hospitals.ListHospitals(ctx)
	if err != nil {
		return fmt.Errorf("service: could not load hospitals: %w", err)
	}
	for _, h := range hospitals {
		s.index.UpsertHospital(h.ID, h.Latitude, h.Longitude)
	}

	s.logger.WithFields(logrus.Fields{
		"ambulances": len(ambulances),
		"hospitals":  len(hospitals),
	}).Info("Geo index loaded")
	return nil
}

// ListAmbulances возвращает все машины
func (s *fleetService) ListAmbulances(ctx context.Context) ([]*models.Ambulance, error) {
	ambulances, err := s.ambulances.ListAmbulances(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: could not list ambulances: %w", err)
	}
	return ambulances, nil
}

// UpdatePosition принимает позицию из симуляции движения
func (s *fleetService) UpdatePosition(ctx context.Context, id uuid.UUID, lat, lon float64) error {
	key := "ambulance:" + id.String()
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	if err := s.ambulances.UpdatePosition(ctx, id, lat, lon); err != nil {
		return fmt.Errorf("service: could not update ambulance position: %w", err)
	}
	if err := s.index.SetPosition(id, lat, lon); err != nil {
		// Машина добавлена в бд после старта - регистрируем со статусом из бд
		ambulance, getErr := s.ambulances.GetByID(ctx, id)
		if getErr != nil {
			return fmt.Errorf("service: ambulance missing from geo index: %w", err)
		}
		s.index.UpsertAmbulance(ambulance.ID, lat, lon, ambulance.Status)
	}

	s.publishAmbulance(eventbus.KindAmbulancePosition, id, lat, lon, "")
	return nil
}

// UpdateStatus - операторская смена статуса (available/busy/offline).
// Зарезервированную машину из-под активного инцидента так забрать нельзя.
func (s *fleetService) UpdateStatus(ctx context.Context, id uuid.UUID, to models.AmbulanceStatus) error {
	key := "ambulance:" + id.String()
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	ambulance, err := s.ambulances.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrAmbulanceNotFound, id)
	}
	if ambulance.IsReserved() {
		return fmt.Errorf("%w: ambulance %s is held by an active incident", ErrReservationConflict, id)
	}

	ok, err := s.ambulances.UpdateStatusCAS(ctx, id, ambulance.Status, to)
	if err != nil {
		return fmt.Errorf("service: could not update ambulance status: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: ambulance %s status changed concurrently", ErrReservationConflict, id)
	}
	if err := s.index.SetStatus(id, to); err != nil {
		s.index.UpsertAmbulance(id, ambulance.Latitude, ambulance.Longitude, to)
	}

	s.publishAmbulance(eventbus.KindAmbulanceStatus, id, ambulance.Latitude, ambulance.Longitude, to)
	return nil
}

// ReserveAmbulance атомарно резервирует машину под инцидент.
// Проигравший конкурент получает ErrReservationConflict и повторяет подбор.
func (s *fleetService) ReserveAmbulance(ctx context.Context, id uuid.UUID) error {
	key := "ambulance:" + id.String()
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	if err := s.index.Reserve(id); err != nil {
		if errors.Is(err, geoindex.ErrUnknownAmbulance) {
			return fmt.Errorf("%w: %s", ErrAmbulanceNotFound, id)
		}
		return fmt.Errorf("%w: %s", ErrReservationConflict, id)
	}

	ok, err := s.ambulances.UpdateStatusCAS(ctx, id, models.AmbulanceAvailable, models.AmbulanceEnRouteIncident)
	if err != nil || !ok {
		// Бд не подтвердила резервацию - откатываем индекс
		if idxErr := s.index.Release(id, models.AmbulanceAvailable); idxErr != nil {
			s.logger.WithError(idxErr).WithField("ambulance_id", id).Error("Failed to roll back geo index reservation")
		}
		if err != nil {
			return fmt.Errorf("service: could not persist reservation: %w", err)
		}
		return fmt.Errorf("%w: %s", ErrReservationConflict, id)
	}

	lat, lon, _ := s.index.Position(id)
	s.publishAmbulance(eventbus.KindAmbulanceStatus, id, lat, lon, models.AmbulanceEnRouteIncident)
	return nil
}

// RollbackReservation возвращает машину в available после неудачного назначения
func (s *fleetService) RollbackReservation(ctx context.Context, id uuid.UUID) error {
	return s.release(ctx, id, models.AmbulanceEnRouteIncident, models.AmbulanceAvailable)
}

// MarkTransporting переводит машину en_route_incident -> en_route_hospital
func (s *fleetService) MarkTransporting(ctx context.Context, id uuid.UUID) error {
	return s.release(ctx, id, models.AmbulanceEnRouteIncident, models.AmbulanceEnRouteHospital)
}

// ReleaseAmbulance возвращает машину в available по завершении инцидента
func (s *fleetService) ReleaseAmbulance(ctx context.Context, id uuid.UUID) error {
	key := "ambulance:" + id.String()
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	ambulance, err := s.ambulances.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrAmbulanceNotFound, id)
	}
	if !ambulance.IsReserved() {
		return nil
	}

	ok, err := s.ambulances.UpdateStatusCAS(ctx, id, ambulance.Status, models.AmbulanceAvailable)
	if err != nil {
		return fmt.Errorf("service: could not release ambulance: %w", err)
	}
	if ok {
		if idxErr := s.index.Release(id, models.AmbulanceAvailable); idxErr != nil {
			s.logger.WithError(idxErr).WithField("ambulance_id", id).Warn("Ambulance missing from geo index on release")
		}
		s.publishAmbulance(eventbus.KindAmbulanceStatus, id, ambulance.Latitude, ambulance.Longitude, models.AmbulanceAvailable)
	}
	return nil
}

func (s *fleetService) release(ctx context.Context, id uuid.UUID, from, to models.AmbulanceStatus) error {
	key := "ambulance:" + id.String()
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	ok, err := s.ambulances.UpdateStatusCAS(ctx, id, from, to)
	if err != nil {
		return fmt.Errorf("service: could not update ambulance status: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: ambulance %s is not in status %s", ErrReservationConflict, id, from)
	}
	if idxErr := s.index.Release(id, to); idxErr != nil {
		s.logger.WithError(idxErr).WithField("ambulance_id", id).Warn("Ambulance missing from geo index")
	}
	lat, lon, _ := s.index.Position(id)
	s.publishAmbulance(eventbus.KindAmbulanceStatus, id, lat, lon, to)
	return nil
}

type ambulanceEventPayload struct {
	AmbulanceID uuid.UUID              `json:"ambulance_id"`
	Latitude    float64                `json:"latitude,omitempty"`
	Longitude   float64                `json:"longitude,omitempty"`
	Status      models.AmbulanceStatus `json:"status,omitempty"`
}

func (s *fleetService) publishAmbulance(kind eventbus.Kind, id uuid.UUID, lat, lon float64, status models.AmbulanceStatus) {
	payload, err := json.Marshal(ambulanceEventPayload{
		AmbulanceID: id,
		Latitude:    lat,
		Longitude:   lon,
		Status:      status,
	})
	if err != nil {
		return
	}
	s.bus.Publish(eventbus.Event{
		Kind:      kind,
		Status:    string(status),
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	})
}
