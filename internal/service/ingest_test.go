package service

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/ems_dispatch_system/internal/config"
	"github.com/shenikar/ems_dispatch_system/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type ingestFixture struct {
	gateway   IngestGateway
	devices   *MockDeviceRepository
	requests  *MockHardwareRequestRepository
	incidents *MockIncidentService
}

// newTestIngestGateway - вспомогательная функция для создания шлюза с моками.
func newTestIngestGateway(t *testing.T) *ingestFixture {
	ctrl := gomock.NewController(t)
	devicesMock := NewMockDeviceRepository(ctrl)
	requestsMock := NewMockHardwareRequestRepository(ctrl)
	incidentsMock := NewMockIncidentService(ctrl)

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})

	cfg := &config.Config{
		DeviceCacheSize: 16,
		DeviceCacheTTL:  time.Minute,
	}

	gateway := NewIngestGateway(devicesMock, requestsMock, incidentsMock, logger, cfg)
	return &ingestFixture{
		gateway:   gateway,
		devices:   devicesMock,
		requests:  requestsMock,
		incidents: incidentsMock,
	}
}

func activeDevice(uid string) *models.Device {
	return &models.Device{
		ID:          uuid.New(),
		HardwareUID: uid,
		Status:      models.DeviceActive,
	}
}

func TestSubmitHardwareRequest_UnknownDevice(t *testing.T) {
	// Подготовка
	f := newTestIngestGateway(t)
	ctx := context.Background()

	// Ожидания: запрос архивируется как отклоненный
	f.devices.EXPECT().GetByUID(ctx, "ghost-01").Return(nil, nil).Times(1)
	f.requests.EXPECT().
		Create(ctx, gomock.Any()).
		Do(func(ctx context.Context, req *models.HardwareRequest) {
			assert.True(t, req.Rejected)
			assert.Equal(t, "ghost-01", req.DeviceUID)
		}).Return(nil).Times(1)

	// Действие
	result, err := f.gateway.SubmitHardwareRequest(ctx, SubmitCommand{
		DeviceUID: "ghost-01",
		Kind:      models.RequestAlert,
	})

	// Проверки
	require.ErrorIs(t, err, ErrUnknownDevice)
	require.NotNil(t, result)
	assert.False(t, result.Accepted)
	assert.Equal(t, "unknown_device", result.Reason)
}

func TestSubmitHardwareRequest_InactiveDevice(t *testing.T) {
	// Подготовка
	f := newTestIngestGateway(t)
	ctx := context.Background()
	device := activeDevice("dev-05")
	device.Status = models.DeviceMaintenance

	// Ожидания
	f.devices.EXPECT().GetByUID(ctx, "dev-05").Return(device, nil).Times(1)
	f.requests.EXPECT().
		Create(ctx, gomock.Any()).
		Do(func(ctx context.Context, req *models.HardwareRequest) {
			assert.True(t, req.Rejected)
			assert.Equal(t, &device.ID, req.DeviceID)
		}).Return(nil).Times(1)

	// Действие
	result, err := f.gateway.SubmitHardwareRequest(ctx, SubmitCommand{
		DeviceUID: "dev-05",
		Kind:      models.RequestAlert,
	})

	// Проверки
	require.ErrorIs(t, err, ErrInactiveDevice)
	assert.False(t, result.Accepted)
	assert.Equal(t, "inactive_device", result.Reason)
}

func TestSubmitHardwareRequest_AlertCreatesIncident(t *testing.T) {
	// Подготовка
	f := newTestIngestGateway(t)
	ctx := context.Background()
	device := activeDevice("dev-01")
	incidentID := uuid.New()

	// Ожидания
	f.devices.EXPECT().GetByUID(ctx, "dev-01").Return(device, nil).Times(1)
	f.incidents.EXPECT().OpenIncidentForDevice(ctx, device.ID).Return(nil, nil).Times(1)
	f.incidents.EXPECT().
		CreateIncident(ctx, gomock.Any()).
		DoAndReturn(func(ctx context.Context, cmd CreateIncidentCommand) (*models.Incident, error) {
			assert.Equal(t, &device.ID, cmd.DeviceID)
			assert.Equal(t, models.ModeAuto, cmd.Mode)
			assert.Equal(t, models.ActorHardware, cmd.Actor.Kind)
			assert.Equal(t, 55.75, cmd.Latitude)
			return &models.Incident{ID: incidentID, Status: models.IncidentPending}, nil
		}).Times(1)
	f.requests.EXPECT().
		Create(ctx, gomock.Any()).
		Do(func(ctx context.Context, req *models.HardwareRequest) {
			assert.False(t, req.Rejected)
			assert.Equal(t, &incidentID, req.IncidentID)
		}).Return(nil).Times(1)

	// Действие
	result, err := f.gateway.SubmitHardwareRequest(ctx, SubmitCommand{
		DeviceUID: "dev-01",
		Kind:      models.RequestAlert,
		Latitude:  55.75,
		Longitude: 37.61,
	})

	// Проверки
	require.NoError(t, err)
	assert.True(t, result.Accepted)
	assert.Equal(t, &incidentID, result.IncidentID)
}

func TestSubmitHardwareRequest_DuplicateAlert(t *testing.T) {
	// Подготовка: у устройства уже есть открытый инцидент
	f := newTestIngestGateway(t)
	ctx := context.Background()
	device := activeDevice("dev-02")
	existing := &models.Incident{ID: uuid.New(), Status: models.IncidentPending}

	// Ожидания: новый инцидент не создается
	f.devices.EXPECT().GetByUID(ctx, "dev-02").Return(device, nil).Times(1)
	f.incidents.EXPECT().OpenIncidentForDevice(ctx, device.ID).Return(existing, nil).Times(1)
	f.requests.EXPECT().Create(ctx, gomock.Any()).Return(nil).Times(1)

	// Действие
	result, err := f.gateway.SubmitHardwareRequest(ctx, SubmitCommand{
		DeviceUID: "dev-02",
		Kind:      models.RequestAlert,
	})

	// Проверки
	require.NoError(t, err)
	assert.True(t, result.Accepted)
	assert.Equal(t, &existing.ID, result.IncidentID)
	assert.Equal(t, "duplicate_alert", result.Reason)
}

func TestSubmitHardwareRequest_CancelPendingIncident(t *testing.T) {
	// Подготовка
	f := newTestIngestGateway(t)
	ctx := context.Background()
	device := activeDevice("dev-03")
	pending := &models.Incident{ID: uuid.New(), Status: models.IncidentPending}

	// Ожидания
	f.devices.EXPECT().GetByUID(ctx, "dev-03").Return(device, nil).Times(1)
	f.incidents.EXPECT().OpenIncidentForDevice(ctx, device.ID).Return(pending, nil).Times(1)
	f.incidents.EXPECT().
		CancelIncident(ctx, pending.ID, gomock.Any(), "canceled by device").
		Return(&models.Incident{ID: pending.ID, Status: models.IncidentCanceled}, nil).
		Times(1)
	f.requests.EXPECT().Create(ctx, gomock.Any()).Return(nil).Times(1)

	// Действие
	result, err := f.gateway.SubmitHardwareRequest(ctx, SubmitCommand{
		DeviceUID: "dev-03",
		Kind:      models.RequestCancel,
	})

	// Проверки
	require.NoError(t, err)
	assert.True(t, result.Accepted)
	assert.Equal(t, &pending.ID, result.IncidentID)
}

func TestSubmitHardwareRequest_CancelWithoutPendingIncident(t *testing.T) {
	// Подготовка: отменять нечего, это no-op
	f := newTestIngestGateway(t)
	ctx := context.Background()
	device := activeDevice("dev-04")

	// Ожидания
	f.devices.EXPECT().GetByUID(ctx, "dev-04").Return(device, nil).Times(1)
	f.incidents.EXPECT().OpenIncidentForDevice(ctx, device.ID).Return(nil, nil).Times(1)
	f.requests.EXPECT().Create(ctx, gomock.Any()).Return(nil).Times(1)

	// Действие
	result, err := f.gateway.SubmitHardwareRequest(ctx, SubmitCommand{
		DeviceUID: "dev-04",
		Kind:      models.RequestCancel,
	})

	// Проверки
	require.NoError(t, err)
	assert.True(t, result.Accepted)
	assert.Equal(t, "no_pending_incident", result.Reason)
}

func TestSubmitHardwareRequest_CancelLosesRaceToDeadline(t *testing.T) {
	// Подготовка: окно подтверждения истекло между чтением и отменой
	f := newTestIngestGateway(t)
	ctx := context.Background()
	device := activeDevice("dev-06")
	pending := &models.Incident{ID: uuid.New(), Status: models.IncidentPending}

	// Ожидания
	f.devices.EXPECT().GetByUID(ctx, "dev-06").Return(device, nil).Times(1)
	f.incidents.EXPECT().OpenIncidentForDevice(ctx, device.ID).Return(pending, nil).Times(1)
	f.incidents.EXPECT().
		CancelIncident(ctx, pending.ID, gomock.Any(), gomock.Any()).
		Return(nil, ErrInvalidTransition).
		Times(1)
	f.requests.EXPECT().
		Create(ctx, gomock.Any()).
		Do(func(ctx context.Context, req *models.HardwareRequest) {
			// Проигранная гонка - определенный исход, запрос не отклонен
			assert.False(t, req.Rejected)
		}).Return(nil).Times(1)

	// Действие
	result, err := f.gateway.SubmitHardwareRequest(ctx, SubmitCommand{
		DeviceUID: "dev-06",
		Kind:      models.RequestCancel,
	})

	// Проверки
	require.NoError(t, err)
	assert.True(t, result.Accepted)
	assert.Equal(t, "already_resolved", result.Reason)
}

func TestSubmitHardwareRequest_HeartbeatUpdatesLiveness(t *testing.T) {
	// Подготовка
	f := newTestIngestGateway(t)
	ctx := context.Background()
	device := activeDevice("dev-07")

	// Ожидания
	f.devices.EXPECT().GetByUID(ctx, "dev-07").Return(device, nil).Times(1)
	f.devices.EXPECT().UpdateLastSeen(ctx, device.ID, gomock.Any()).Return(nil).Times(1)
	f.requests.EXPECT().Create(ctx, gomock.Any()).Return(nil).Times(1)

	// Действие
	result, err := f.gateway.SubmitHardwareRequest(ctx, SubmitCommand{
		DeviceUID: "dev-07",
		Kind:      models.RequestHeartbeat,
	})

	// Проверки
	require.NoError(t, err)
	assert.True(t, result.Accepted)
}

func TestSubmitHardwareRequest_DeviceLookupUsesCache(t *testing.T) {
	// Подготовка: два запроса подряд, бд опрашивается один раз
	f := newTestIngestGateway(t)
	ctx := context.Background()
	device := activeDevice("dev-08")

	// Ожидания
	f.devices.EXPECT().GetByUID(ctx, "dev-08").Return(device, nil).Times(1)
	f.devices.EXPECT().UpdateLastSeen(ctx, device.ID, gomock.Any()).Return(nil).Times(2)
	f.requests.EXPECT().Create(ctx, gomock.Any()).Return(nil).Times(2)

	// Действие
	for i := 0; i < 2; i++ {
		result, err := f.gateway.SubmitHardwareRequest(ctx, SubmitCommand{
			DeviceUID: "dev-08",
			Kind:      models.RequestHeartbeat,
		})
		require.NoError(t, err)
		assert.True(t, result.Accepted)
	}
}

func TestSubmitHardwareRequest_ConcurrentAlertsCreateOneIncident(t *testing.T) {
	// Подготовка: два alert от одного устройства в один момент
	f := newTestIngestGateway(t)
	ctx := context.Background()
	device := activeDevice("dev-09")

	var mu sync.Mutex
	var open *models.Incident

	// Ожидания: проверка дедупликации видит состояние на момент входа,
	// пауза растягивает гонку между проверкой и созданием
	f.devices.EXPECT().GetByUID(gomock.Any(), "dev-09").Return(device, nil).MaxTimes(2)
	f.incidents.EXPECT().
		OpenIncidentForDevice(gomock.Any(), device.ID).
		DoAndReturn(func(ctx context.Context, deviceID uuid.UUID) (*models.Incident, error) {
			mu.Lock()
			existing := open
			mu.Unlock()
			time.Sleep(20 * time.Millisecond)
			return existing, nil
		}).Times(2)
	f.incidents.EXPECT().
		CreateIncident(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, cmd CreateIncidentCommand) (*models.Incident, error) {
			incident := &models.Incident{
				ID:       uuid.New(),
				DeviceID: cmd.DeviceID,
				Status:   models.IncidentPending,
				Mode:     models.ModeAuto,
			}
			mu.Lock()
			open = incident
			mu.Unlock()
			return incident, nil
		}).Times(1)
	f.requests.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil).Times(2)

	// Действие
	var wg sync.WaitGroup
	results := make(chan *SubmitResult, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := f.gateway.SubmitHardwareRequest(ctx, SubmitCommand{
				DeviceUID: "dev-09",
				Kind:      models.RequestAlert,
			})
			assert.NoError(t, err)
			results <- result
		}()
	}
	wg.Wait()
	close(results)

	// Проверки: оба приняты и указывают на один и тот же инцидент
	var ids []uuid.UUID
	for result := range results {
		require.NotNil(t, result)
		assert.True(t, result.Accepted)
		require.NotNil(t, result.IncidentID)
		ids = append(ids, *result.IncidentID)
	}
	require.Len(t, ids, 2)
	assert.Equal(t, ids[0], ids[1])
}
