package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/shenikar/ems_dispatch_system/internal/config"
	"github.com/shenikar/ems_dispatch_system/internal/models"
	"github.com/sirupsen/logrus"
)

// DeviceRepository определяет контракт для справочника устройств.
// GetByUID возвращает (nil, nil), если устройство не зарегистрировано.
type DeviceRepository interface {
	GetByUID(ctx context.Context, uid string) (*models.Device, error)
	UpdateLastSeen(ctx context.Context, id uuid.UUID, t time.Time) error
}

// HardwareRequestRepository определяет контракт для архива запросов устройств
type HardwareRequestRepository interface {
	Create(ctx context.Context, req *models.HardwareRequest) error
}

// SubmitCommand - входящий запрос от устройства
type SubmitCommand struct {
	DeviceUID  string
	Kind       models.RequestKind
	Latitude   float64
	Longitude  float64
	RawPayload json.RawMessage
}

// SubmitResult - ответ устройству. Отклонение команды не обязывает
// устройство повторять запрос.
type SubmitResult struct {
	Accepted   bool
	IncidentID *uuid.UUID
	Reason     string
}

// IngestGateway валидирует и дедуплицирует запросы устройств, превращая
// их в доменные команды. Каждый запрос архивируется, включая отклоненные.
type IngestGateway interface {
	SubmitHardwareRequest(ctx context.Context, cmd SubmitCommand) (*SubmitResult, error)
}

type ingestGateway struct {
	devices   DeviceRepository
	requests  HardwareRequestRepository
	incidents IncidentService
	cache     *lru.LRU[string, *models.Device]
	locks     *keyMutex
	logger    *logrus.Logger
}

func NewIngestGateway(
	devices DeviceRepository,
	requests HardwareRequestRepository,
	incidents IncidentService,
	logger *logrus.Logger,
	cfg *config.Config,
) IngestGateway {
	return &ingestGateway{
		devices:   devices,
		requests:  requests,
		incidents: incidents,
		cache:     lru.NewLRU[string, *models.Device](cfg.DeviceCacheSize, nil, cfg.DeviceCacheTTL),
		locks:     newKeyMutex(),
		logger:    logger,
	}
}

// SubmitHardwareRequest обрабатывает одну передачу от устройства
func (g *ingestGateway) SubmitHardwareRequest(ctx context.Context, cmd SubmitCommand) (*SubmitResult, error) {
	log := g.logger.WithFields(logrus.Fields{
		"service":    "ingest",
		"device_uid": cmd.DeviceUID,
		"kind":       cmd.Kind,
	})

	request := &models.HardwareRequest{
		ID:         uuid.New(),
		DeviceUID:  cmd.DeviceUID,
		Kind:       cmd.Kind,
		Latitude:   cmd.Latitude,
		Longitude:  cmd.Longitude,
		RawPayload: cmd.RawPayload,
		ReceivedAt: time.Now().UTC(),
	}
	// Запрос архивируется всегда, каким бы ни был исход
	defer g.archive(ctx, request)

	device, err := g.lookupDevice(ctx, cmd.DeviceUID)
	if err != nil {
		request.Rejected = true
		return nil, fmt.Errorf("service: could not look up device: %w", err)
	}
	if device == nil {
		log.Warn("Request from unknown device rejected")
		request.Rejected = true
		return &SubmitResult{Accepted: false, Reason: "unknown_device"}, ErrUnknownDevice
	}
	request.DeviceID = &device.ID
	if device.Status != models.DeviceActive {
		log.WithField("device_status", device.Status).Warn("Request from inactive device rejected")
		request.Rejected = true
		return &SubmitResult{Accepted: false, Reason: "inactive_device"}, ErrInactiveDevice
	}

	switch cmd.Kind {
	case models.RequestAlert:
		return g.handleAlert(ctx, device, request, log)
	case models.RequestCancel:
		return g.handleCancel(ctx, device, request, log)
	case models.RequestHeartbeat, models.RequestStatus:
		if err := g.devices.UpdateLastSeen(ctx, device.ID, request.ReceivedAt); err != nil {
			log.WithError(err).Warn("Failed to update device liveness")
		}
		return &SubmitResult{Accepted: true}, nil
	default:
		request.Rejected = true
		return &SubmitResult{Accepted: false, Reason: "unsupported_kind"}, fmt.Errorf("service: unsupported request kind %q", cmd.Kind)
	}
}

// handleAlert создает инцидент либо возвращает id уже открытого.
// Повторный alert в окне подтверждения - no-op, дубликаты не создаются.
// Блокировка по устройству сериализует проверку дедупликации с созданием.
func (g *ingestGateway) handleAlert(ctx context.Context, device *models.Device, request *models.HardwareRequest, log *logrus.Entry) (*SubmitResult, error) {
	key := "device:" + device.ID.String()
	g.locks.Lock(key)
	defer g.locks.Unlock(key)

	existing, err := g.incidents.OpenIncidentForDevice(ctx, device.ID)
	if err != nil {
		request.Rejected = true
		return nil, err
	}
	if existing != nil {
		log.WithField("incident_id", existing.ID).Info("Alert deduplicated against open incident")
		request.IncidentID = &existing.ID
		return &SubmitResult{Accepted: true, IncidentID: &existing.ID, Reason: "duplicate_alert"}, nil
	}

	incident, err := g.incidents.CreateIncident(ctx, CreateIncidentCommand{
		DeviceID:  &device.ID,
		Latitude:  request.Latitude,
		Longitude: request.Longitude,
		Mode:      models.ModeAuto,
		Actor:     models.HardwareActor(device.HardwareUID),
	})
	if err != nil {
		request.Rejected = true
		return nil, err
	}
	request.IncidentID = &incident.ID
	return &SubmitResult{Accepted: true, IncidentID: &incident.ID}, nil
}

// handleCancel отменяет pending-инцидент устройства; отсутствие такого
// инцидента - no-op, а не ошибка.
func (g *ingestGateway) handleCancel(ctx context.Context, device *models.Device, request *models.HardwareRequest, log *logrus.Entry) (*SubmitResult, error) {
	key := "device:" + device.ID.String()
	g.locks.Lock(key)
	defer g.locks.Unlock(key)

	existing, err := g.incidents.OpenIncidentForDevice(ctx, device.ID)
	if err != nil {
		request.Rejected = true
		return nil, err
	}
	if existing == nil || existing.Status != models.IncidentPending {
		log.Info("Cancel with no pending incident, ignoring")
		return &SubmitResult{Accepted: true, Reason: "no_pending_incident"}, nil
	}

	request.IncidentID = &existing.ID
	if _, err := g.incidents.CancelIncident(ctx, existing.ID, models.HardwareActor(device.HardwareUID), "canceled by device"); err != nil {
		if errors.Is(err, ErrInvalidTransition) {
			// Окно подтверждения истекло параллельно - победил таймер
			log.Info("Cancel lost the race to the confirmation deadline")
			return &SubmitResult{Accepted: true, IncidentID: &existing.ID, Reason: "already_resolved"}, nil
		}
		request.Rejected = true
		return nil, err
	}
	return &SubmitResult{Accepted: true, IncidentID: &existing.ID}, nil
}

// lookupDevice ищет устройство через горячий кеш, затем в бд
func (g *ingestGateway) lookupDevice(ctx context.Context, uid string) (*models.Device, error) {
	if device, ok := g.cache.Get(uid); ok {
		return device, nil
	}
	device, err := g.devices.GetByUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if device != nil {
		g.cache.Add(uid, device)
	}
	return device, nil
}

func (g *ingestGateway) archive(ctx context.Context, request *models.HardwareRequest) {
	if err := g.requests.Create(ctx, request); err != nil {
		g.logger.WithError(err).WithField("device_uid", request.DeviceUID).Error("Failed to archive hardware request")
	}
}
