package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/ems_dispatch_system/internal/config"
	"github.com/shenikar/ems_dispatch_system/internal/eventbus"
	"github.com/shenikar/ems_dispatch_system/internal/models"
	"github.com/shenikar/ems_dispatch_system/internal/webhook"
	"github.com/sirupsen/logrus"
)

// IncidentRepository определяет контракт для работы с бд инцидентов.
// UpdateCAS выполняет атомарный read-modify-write: обновление проходит
// только если статус в бд равен from.
type IncidentRepository interface {
	Create(ctx context.Context, incident *models.Incident) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Incident, error)
	UpdateCAS(ctx context.Context, incident *models.Incident, from models.IncidentStatus) (bool, error)
	FindOpenByDevice(ctx context.Context, deviceID uuid.UUID) (*models.Incident, error)
	ListIncidents(ctx context.Context, page, pageSize int) ([]*models.Incident, error)
	ListUnresolved(ctx context.Context) ([]*models.Incident, error)
	GetIncidentFromCache(ctx context.Context, id uuid.UUID) (*models.Incident, error)
	SetIncidentCache(ctx context.Context, incident *models.Incident) error
	InvalidateIncidentCache(ctx context.Context, id uuid.UUID) error
}

// IncidentLogRepository определяет контракт для журнала аудита
type IncidentLogRepository interface {
	Create(ctx context.Context, entry *models.IncidentLog) error
	ListByIncident(ctx context.Context, incidentID uuid.UUID) ([]*models.IncidentLog, error)
}

// FleetControl - узкий контракт для смены статуса машины по ходу инцидента
type FleetControl interface {
	MarkTransporting(ctx context.Context, ambulanceID uuid.UUID) error
	ReleaseAmbulance(ctx context.Context, ambulanceID uuid.UUID) error
}

// CreateIncidentCommand - команда создания инцидента
type CreateIncidentCommand struct {
	DeviceID  *uuid.UUID
	Latitude  float64
	Longitude float64
	Mode      models.IncidentMode
	Actor     models.Actor
	Note      string
}

// IncidentService определяет контракт машины состояний инцидента.
// Каждый успешный переход добавляет ровно одну запись журнала и
// публикует ровно одно событие на шине.
type IncidentService interface {
	CreateIncident(ctx context.Context, cmd CreateIncidentCommand) (*models.Incident, error)
	CancelIncident(ctx context.Context, id uuid.UUID, actor models.Actor, note string) (*models.Incident, error)
	MarkAssigned(ctx context.Context, id, ambulanceID, hospitalID uuid.UUID, actor models.Actor, note string) (*models.Incident, error)
	ProgressIncident(ctx context.Context, id uuid.UUID, actor models.Actor) (*models.Incident, error)
	CompleteIncident(ctx context.Context, id uuid.UUID, actor models.Actor) (*models.Incident, error)
	FlagNoAmbulance(ctx context.Context, id uuid.UUID, note string) error
	GetIncident(ctx context.Context, id uuid.UUID) (*models.Incident, error)
	ListIncidents(ctx context.Context, page, pageSize int) ([]*models.Incident, error)
	ListLogs(ctx context.Context, id uuid.UUID) ([]*models.IncidentLog, error)
	OpenIncidentForDevice(ctx context.Context, deviceID uuid.UUID) (*models.Incident, error)
}

type incidentService struct {
	repo        IncidentRepository
	logs        IncidentLogRepository
	fleet       FleetControl
	bus         *eventbus.Bus
	notifier    webhook.NotificationPublisher
	timers      *ConfirmationTimer
	locks       *keyMutex
	logger      *logrus.Logger
	cfg         *config.Config
	onConfirmed func(incidentID uuid.UUID)
}

func NewIncidentService(
	repo IncidentRepository,
	logs IncidentLogRepository,
	fleet FleetControl,
	bus *eventbus.Bus,
	notifier webhook.NotificationPublisher,
	timers *ConfirmationTimer,
	logger *logrus.Logger,
	cfg *config.Config,
) *incidentService {
	return &incidentService{
		repo:     repo,
		logs:     logs,
		fleet:    fleet,
		bus:      bus,
		notifier: notifier,
		timers:   timers,
		locks:    newKeyMutex(),
		logger:   logger,
		cfg:      cfg,
	}
}

// SetOnConfirmed задает обработчик, вызываемый после перехода в confirmed.
// Подключается к AssignmentEngine при сборке приложения.
func (s *incidentService) SetOnConfirmed(fn func(incidentID uuid.UUID)) {
	s.onConfirmed = fn
}

// Recover восстанавливает внутрипроцессное состояние после рестарта.
// Таймеры и очередь подбора живут только в памяти, а дедлайн и статус -
// в бд: pending-инцидентам перевзводится окно подтверждения от
// сохраненного дедлайна (просроченное срабатывает сразу), confirmed без
// машины возвращаются в подбор. Вызывается после SetOnConfirmed.
func (s *incidentService) Recover(ctx context.Context) error {
	incidents, err := s.repo.ListUnresolved(ctx)
	if err != nil {
		return fmt.Errorf("service: could not list unresolved incidents: %w", err)
	}

	rearmed, redispatched := 0, 0
	for _, incident := range incidents {
		switch {
		case incident.Status == models.IncidentPending:
			remaining := s.cfg.ConfirmationWindow
			if incident.ConfirmationDeadline != nil {
				remaining = time.Until(*incident.ConfirmationDeadline)
			}
			id := incident.ID
			s.timers.Schedule(id, remaining, func() {
				s.handleDeadline(id)
			})
			rearmed++
		case incident.Status == models.IncidentConfirmed && incident.AmbulanceID == nil && !incident.NoAmbulanceAvailable:
			if s.onConfirmed != nil {
				s.onConfirmed(incident.ID)
				redispatched++
			}
		}
	}

	s.logger.WithFields(logrus.Fields{
		"service":      "incident",
		"rearmed":      rearmed,
		"redispatched": redispatched,
	}).Info("Incident state recovered")
	return nil
}

// CreateIncident создает pending-инцидент и запускает окно подтверждения
func (s *incidentService) CreateIncident(ctx context.Context, cmd CreateIncidentCommand) (*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "incident",
		"method":  "CreateIncident",
		"mode":    cmd.Mode,
	})
	log.Info("Creating a new incident")

	now := time.Now().UTC()
	deadline := now.Add(s.cfg.ConfirmationWindow)
	incident := &models.Incident{
		ID:                   uuid.New(),
		DeviceID:             cmd.DeviceID,
		Status:               models.IncidentPending,
		Mode:                 cmd.Mode,
		Latitude:             cmd.Latitude,
		Longitude:            cmd.Longitude,
		ConfirmationDeadline: &deadline,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if err := s.repo.Create(ctx, incident); err != nil {
		log.WithError(err).Error("Failed to create incident in repository")
		return nil, fmt.Errorf("service: could not create incident: %w", err)
	}

	s.appendLog(ctx, incident, "created", cmd.Actor, cmd.Note)
	s.publish(incident)
	s.notify(ctx, "incident.created", incident)

	s.timers.Schedule(incident.ID, s.cfg.ConfirmationWindow, func() {
		s.handleDeadline(incident.ID)
	})

	log.WithField("incident_id", incident.ID).Info("Incident created, confirmation window started")
	return incident, nil
}

// CancelIncident отменяет pending-инцидент. Безопасно гонится с истечением
// окна подтверждения: побеждает первый переход, второй получает
// ErrInvalidTransition.
func (s *incidentService) CancelIncident(ctx context.Context, id uuid.UUID, actor models.Actor, note string) (*models.Incident, error) {
	s.timers.Cancel(id) // отмена уже сработавшего таймера - no-op
	return s.transition(ctx, id, models.IncidentCanceled, actor, note, nil)
}

// MarkAssigned переводит инцидент в assigned с закреплением машины и больницы.
// Вызывается AssignmentEngine после успешной резервации; ручной путь
// проходит через тот же метод.
func (s *incidentService) MarkAssigned(ctx context.Context, id, ambulanceID, hospitalID uuid.UUID, actor models.Actor, note string) (*models.Incident, error) {
	incident, err := s.transition(ctx, id, models.IncidentAssigned, actor, note, func(i *models.Incident) {
		i.AmbulanceID = &ambulanceID
		i.HospitalID = &hospitalID
		i.NoAmbulanceAvailable = false
	})
	if err != nil {
		return nil, err
	}
	// Ручной прыжок из pending снимает таймер подтверждения
	s.timers.Cancel(id)
	return incident, nil
}

// ProgressIncident переводит инцидент в in_progress (экипаж на месте,
// транспортировка в больницу)
func (s *incidentService) ProgressIncident(ctx context.Context, id uuid.UUID, actor models.Actor) (*models.Incident, error) {
	incident, err := s.transition(ctx, id, models.IncidentInProgress, actor, "", nil)
	if err != nil {
		return nil, err
	}
	if incident.AmbulanceID != nil {
		if err := s.fleet.MarkTransporting(ctx, *incident.AmbulanceID); err != nil {
			s.logger.WithError(err).WithField("incident_id", id).Error("Failed to mark ambulance as transporting")
		}
	}
	return incident, nil
}

// CompleteIncident завершает инцидент и возвращает машину в available
func (s *incidentService) CompleteIncident(ctx context.Context, id uuid.UUID, actor models.Actor) (*models.Incident, error) {
	incident, err := s.transition(ctx, id, models.IncidentCompleted, actor, "", nil)
	if err != nil {
		return nil, err
	}
	if incident.AmbulanceID != nil {
		if err := s.fleet.ReleaseAmbulance(ctx, *incident.AmbulanceID); err != nil {
			s.logger.WithError(err).WithField("incident_id", id).Error("Failed to release ambulance after completion")
		}
	}
	return incident, nil
}

// FlagNoAmbulance помечает confirmed-инцидент после исчерпания повторов
// подбора машины. Это не переход статуса: инцидент остается confirmed
// и подсвечивается операторам для ручного назначения.
func (s *incidentService) FlagNoAmbulance(ctx context.Context, id uuid.UUID, note string) error {
	key := "incident:" + id.String()
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	incident, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("service: could not load incident for flagging: %w", err)
	}
	if incident.Status != models.IncidentConfirmed || incident.NoAmbulanceAvailable {
		return nil
	}

	incident.NoAmbulanceAvailable = true
	incident.UpdatedAt = time.Now().UTC()
	ok, err := s.repo.UpdateCAS(ctx, incident, models.IncidentConfirmed)
	if err != nil {
		return fmt.Errorf("service: could not flag incident: %w", err)
	}
	if !ok {
		return nil // статус уже сменился, флаг неактуален
	}

	if err := s.repo.InvalidateIncidentCache(ctx, id); err != nil {
		s.logger.WithError(err).Warn("Failed to invalidate incident cache")
	}
	s.appendLog(ctx, incident, "dispatch_unassigned", models.SystemActor(), note)
	s.publish(incident)
	s.notify(ctx, "dispatch.unassigned", incident)
	return nil
}

// GetIncident получает инцидент, сначала из кеша, затем из бд
func (s *incidentService) GetIncident(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	cached, err := s.repo.GetIncidentFromCache(ctx, id)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to read incident from cache")
	}
	if cached != nil {
		return cached, nil
	}

	incident, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: could not get incident: %w", err)
	}
	if err := s.repo.SetIncidentCache(ctx, incident); err != nil {
		s.logger.WithError(err).Warn("Failed to cache incident")
	}
	return incident, nil
}

// ListIncidents возвращает список инцидентов с пагинацией
func (s *incidentService) ListIncidents(ctx context.Context, page, pageSize int) ([]*models.Incident, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	incidents, err := s.repo.ListIncidents(ctx, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("service: could not list incidents: %w", err)
	}
	return incidents, nil
}

// ListLogs возвращает журнал инцидента в порядке времени
func (s *incidentService) ListLogs(ctx context.Context, id uuid.UUID) ([]*models.IncidentLog, error) {
	entries, err := s.logs.ListByIncident(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: could not list incident logs: %w", err)
	}
	return entries, nil
}

// OpenIncidentForDevice возвращает незакрытый инцидент устройства или nil
func (s *incidentService) OpenIncidentForDevice(ctx context.Context, deviceID uuid.UUID) (*models.Incident, error) {
	incident, err := s.repo.FindOpenByDevice(ctx, deviceID)
	if err != nil {
		return nil, fmt.Errorf("service: could not find open incident for device: %w", err)
	}
	return incident, nil
}

// handleDeadline вызывается таймером по истечении окна подтверждения
func (s *incidentService) handleDeadline(id uuid.UUID) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	log := s.logger.WithFields(logrus.Fields{
		"service":     "incident",
		"method":      "handleDeadline",
		"incident_id": id,
	})

	incident, err := s.transition(ctx, id, models.IncidentConfirmed, models.SystemActor(), "confirmation window elapsed", nil)
	if err != nil {
		if errors.Is(err, ErrInvalidTransition) {
			// Отмена успела раньше - определенный исход, не ошибка
			log.Debug("Confirmation deadline lost the race to a cancel")
			return
		}
		log.WithError(err).Error("Failed to confirm incident on deadline")
		return
	}

	log.Info("Incident confirmed, handing over to assignment")
	if s.onConfirmed != nil {
		s.onConfirmed(incident.ID)
	}
}

// transition - единственная точка смены статуса: блокировка по инциденту,
// проверка таблицы переходов, CAS-запись, журнал, события.
func (s *incidentService) transition(
	ctx context.Context,
	id uuid.UUID,
	to models.IncidentStatus,
	actor models.Actor,
	note string,
	mutate func(*models.Incident),
) (*models.Incident, error) {
	key := "incident:" + id.String()
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	log := s.logger.WithFields(logrus.Fields{
		"service":     "incident",
		"incident_id": id,
		"to":          to,
		"actor":       actor.String(),
	})

	incident, err := s.repo.GetByID(ctx, id)
	if err != nil {
		log.WithError(err).Warn("Incident not found for transition")
		return nil, fmt.Errorf("%w: %s", ErrIncidentNotFound, id)
	}

	from := incident.Status
	if !models.CanTransition(from, to, incident.Mode) {
		log.WithField("from", from).Warn("Rejected invalid incident transition")
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}

	if mutate != nil {
		mutate(incident)
	}
	incident.ApplyTransition(to, time.Now().UTC())

	ok, err := s.repo.UpdateCAS(ctx, incident, from)
	if err != nil {
		log.WithError(err).Error("Failed to persist incident transition")
		return nil, fmt.Errorf("service: could not persist transition: %w", err)
	}
	if !ok {
		// Статус в бд успел измениться - команда проиграла гонку
		log.WithField("from", from).Warn("Incident transition lost a concurrent update")
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}

	if err := s.repo.InvalidateIncidentCache(ctx, id); err != nil {
		log.WithError(err).Warn("Failed to invalidate incident cache")
	}

	s.appendLog(ctx, incident, string(to), actor, note)
	s.publish(incident)
	s.notify(ctx, "incident."+string(to), incident)

	log.WithField("from", from).Info("Incident transition applied")
	return incident, nil
}

// appendLog добавляет ровно одну запись журнала на переход
func (s *incidentService) appendLog(ctx context.Context, incident *models.Incident, action string, actor models.Actor, note string) {
	entry := &models.IncidentLog{
		IncidentID: incident.ID,
		Action:     action,
		Actor:      actor,
		Note:       note,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.logs.Create(ctx, entry); err != nil {
		s.logger.WithError(err).WithField("incident_id", incident.ID).Error("Failed to append incident log")
	}
}

// publish отправляет событие перехода на шину
func (s *incidentService) publish(incident *models.Incident) {
	payload, err := json.Marshal(incident)
	if err != nil {
		s.logger.WithError(err).Error("Failed to marshal incident for event")
		return
	}
	s.bus.Publish(eventbus.Event{
		Kind:       eventbus.KindIncidentStatus,
		IncidentID: incident.ID,
		Status:     string(incident.Status),
		Timestamp:  time.Now().UTC(),
		Payload:    payload,
	})
}

// notify предлагает событие sink-у нотификаций, без гарантий доставки
func (s *incidentService) notify(ctx context.Context, kind string, incident *models.Incident) {
	payload, err := json.Marshal(incident)
	if err != nil {
		return
	}
	event := webhook.NotificationEvent{
		Kind:      kind,
		Recipient: "dispatch",
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
	if err := s.notifier.Publish(ctx, event); err != nil {
		s.logger.WithError(err).WithField("kind", kind).Warn("Failed to queue notification")
	}
}
