package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/ems_dispatch_system/internal/config"
	"github.com/shenikar/ems_dispatch_system/internal/geoindex"
	"github.com/shenikar/ems_dispatch_system/internal/models"
	"github.com/sirupsen/logrus"
)

// Assigner - контракт ручного назначения для HTTP-слоя
type Assigner interface {
	ManualAssign(ctx context.Context, incidentID, ambulanceID, hospitalID uuid.UUID, actor models.Actor) (*models.Incident, error)
}

// AssignmentEngine подбирает машину и больницу для confirmed-инцидента.
// Резервация машины, выбор больницы и переход в assigned выполняются как
// единое целое: неудача любого шага откатывает резервацию.
type AssignmentEngine struct {
	incidents IncidentService
	fleet     FleetService
	hospitals HospitalRepository
	index     *geoindex.Index
	logger    *logrus.Logger
	cfg       *config.Config
	baseCtx   context.Context
}

func NewAssignmentEngine(
	baseCtx context.Context,
	incidents IncidentService,
	fleet FleetService,
	hospitals HospitalRepository,
	index *geoindex.Index,
	logger *logrus.Logger,
	cfg *config.Config,
) *AssignmentEngine {
	return &AssignmentEngine{
		incidents: incidents,
		fleet:     fleet,
		hospitals: hospitals,
		index:     index,
		logger:    logger,
		cfg:       cfg,
		baseCtx:   baseCtx,
	}
}

// Dispatch запускает фоновый подбор ресурсов для подтвержденного инцидента
func (e *AssignmentEngine) Dispatch(incidentID uuid.UUID) {
	go e.run(incidentID)
}

// run повторяет подбор с экспоненциальной задержкой. После исчерпания
// попыток инцидент остается confirmed и помечается для ручного назначения.
func (e *AssignmentEngine) run(incidentID uuid.UUID) {
	log := e.logger.WithFields(logrus.Fields{
		"service":     "assignment",
		"incident_id": incidentID,
	})

	delay := e.cfg.AssignRetryBaseDelay
	retries := 0
	for {
		err := e.Assign(e.baseCtx, incidentID)
		if err == nil {
			return
		}

		switch {
		case errors.Is(err, ErrReservationConflict):
			// Машину увели конкурентным назначением - сразу новый подбор
			log.Debug("Lost ambulance reservation race, retrying lookup")
			continue
		case errors.Is(err, ErrNoAmbulanceAvailable):
			if retries >= e.cfg.AssignMaxRetries {
				log.WithField("retries", retries).Warn("Assignment retries exhausted, surfacing incident to operators")
				if flagErr := e.incidents.FlagNoAmbulance(e.baseCtx, incidentID,
					fmt.Sprintf("no ambulance within %.0f km after %d attempts", e.cfg.AssignRadiusKm, retries+1)); flagErr != nil {
					log.WithError(flagErr).Error("Failed to flag incident as unassigned")
				}
				return
			}
			retries++
			log.WithFields(logrus.Fields{"retry": retries, "delay": delay}).Info("No ambulance available, scheduling retry")
			select {
			case <-time.After(delay):
			case <-e.baseCtx.Done():
				return
			}
			delay *= 2
		case errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrIncidentNotFound):
			// Инцидент успели отменить или назначить вручную
			log.WithError(err).Debug("Incident left the confirmed state, stopping assignment")
			return
		default:
			log.WithError(err).Error("Assignment failed")
			return
		}
	}
}

// Assign выполняет одну попытку назначения.
// Предусловие: инцидент существует и находится в статусе confirmed.
func (e *AssignmentEngine) Assign(ctx context.Context, incidentID uuid.UUID) error {
	incident, err := e.incidents.GetIncident(ctx, incidentID)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrIncidentNotFound, incidentID)
	}
	if incident.Status != models.IncidentConfirmed {
		return fmt.Errorf("%w: incident %s is %s, want confirmed", ErrInvalidTransition, incidentID, incident.Status)
	}

	candidate, found := e.index.NearestAvailable(incident.Latitude, incident.Longitude, e.cfg.AssignRadiusKm)
	if !found {
		return ErrNoAmbulanceAvailable
	}

	if err := e.fleet.ReserveAmbulance(ctx, candidate.ID); err != nil {
		return err
	}

	hospital, found := e.index.NearestHospital(incident.Latitude, incident.Longitude)
	if !found {
		e.rollback(ctx, candidate.ID)
		return fmt.Errorf("%w: no hospitals registered", ErrHospitalNotFound)
	}

	note := fmt.Sprintf("nearest ambulance at %.2f km", candidate.DistanceKm)
	if _, err := e.incidents.MarkAssigned(ctx, incidentID, candidate.ID, hospital.ID, models.SystemActor(), note); err != nil {
		// Переход не состоялся - резервация обязана откатиться
		e.rollback(ctx, candidate.ID)
		return err
	}

	e.logger.WithFields(logrus.Fields{
		"service":      "assignment",
		"incident_id":  incidentID,
		"ambulance_id": candidate.ID,
		"hospital_id":  hospital.ID,
		"distance_km":  candidate.DistanceKm,
	}).Info("Incident assigned")
	return nil
}

// ManualAssign - операторский путь: пара машина/больница задана явно,
// но проходит через ту же дисциплину резервации и отката.
func (e *AssignmentEngine) ManualAssign(ctx context.Context, incidentID, ambulanceID, hospitalID uuid.UUID, actor models.Actor) (*models.Incident, error) {
	if _, err := e.hospitals.GetByID(ctx, hospitalID); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrHospitalNotFound, hospitalID)
	}

	if err := e.fleet.ReserveAmbulance(ctx, ambulanceID); err != nil {
		return nil, err
	}

	incident, err := e.incidents.MarkAssigned(ctx, incidentID, ambulanceID, hospitalID, actor, "manual override")
	if err != nil {
		e.rollback(ctx, ambulanceID)
		return nil, err
	}

	e.logger.WithFields(logrus.Fields{
		"service":      "assignment",
		"incident_id":  incidentID,
		"ambulance_id": ambulanceID,
		"hospital_id":  hospitalID,
		"actor":        actor.String(),
	}).Info("Incident assigned manually")
	return incident, nil
}

func (e *AssignmentEngine) rollback(ctx context.Context, ambulanceID uuid.UUID) {
	if err := e.fleet.RollbackReservation(ctx, ambulanceID); err != nil {
		e.logger.WithError(err).WithField("ambulance_id", ambulanceID).Error("Failed to roll back ambulance reservation")
	}
}
