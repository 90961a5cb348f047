package service

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/ems_dispatch_system/internal/config"
	"github.com/shenikar/ems_dispatch_system/internal/eventbus"
	"github.com/shenikar/ems_dispatch_system/internal/models"
	webhook_mocks "github.com/shenikar/ems_dispatch_system/internal/webhook/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type incidentServiceFixture struct {
	service  *incidentService
	repo     *MockIncidentRepository
	logs     *MockIncidentLogRepository
	fleet    *MockFleetControl
	notifier *webhook_mocks.MockNotificationPublisher
	bus      *eventbus.Bus
}

// newTestIncidentService - вспомогательная функция для создания инстанса сервиса с моками.
func newTestIncidentService(t *testing.T, cfg *config.Config) *incidentServiceFixture {
	ctrl := gomock.NewController(t)
	repoMock := NewMockIncidentRepository(ctrl)
	logsMock := NewMockIncidentLogRepository(ctrl)
	fleetMock := NewMockFleetControl(ctrl)
	notifierMock := webhook_mocks.NewMockNotificationPublisher(ctrl)

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	if cfg == nil {
		cfg = &config.Config{ConfirmationWindow: time.Hour}
	}

	bus := eventbus.New(16, logger)
	t.Cleanup(bus.Close)
	timers := NewConfirmationTimer()
	t.Cleanup(timers.Stop)

	svc := NewIncidentService(repoMock, logsMock, fleetMock, bus, notifierMock, timers, logger, cfg)
	return &incidentServiceFixture{
		service:  svc,
		repo:     repoMock,
		logs:     logsMock,
		fleet:    fleetMock,
		notifier: notifierMock,
		bus:      bus,
	}
}

func TestGetIncident_Success_FromCache(t *testing.T) {
	// Подготовка
	f := newTestIncidentService(t, nil)
	ctx := context.Background()
	incidentID := uuid.New()
	expectedIncident := &models.Incident{
		ID:     incidentID,
		Status: models.IncidentPending,
	}

	// Ожидания
	f.repo.EXPECT().
		GetIncidentFromCache(ctx, incidentID).
		Return(expectedIncident, nil).
		Times(1)

	// Действие
	incident, err := f.service.GetIncident(ctx, incidentID)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, expectedIncident, incident)
}

func TestGetIncident_Success_FromDB(t *testing.T) {
	// Подготовка
	f := newTestIncidentService(t, nil)
	ctx := context.Background()
	incidentID := uuid.New()
	expectedIncident := &models.Incident{
		ID:     incidentID,
		Status: models.IncidentConfirmed,
	}

	// Ожидания
	// 1. Промах кеша
	f.repo.EXPECT().
		GetIncidentFromCache(ctx, incidentID).
		Return(nil, nil).
		Times(1)

	// 2. Попадание в БД
	f.repo.EXPECT().
		GetByID(ctx, incidentID).
		Return(expectedIncident, nil).
		Times(1)

	// 3. Запись в кеш
	f.repo.EXPECT().
		SetIncidentCache(ctx, expectedIncident).
		Return(nil).
		Times(1)

	// Действие
	incident, err := f.service.GetIncident(ctx, incidentID)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, expectedIncident, incident)
}

func TestGetIncident_NotFound(t *testing.T) {
	// Подготовка
	f := newTestIncidentService(t, nil)
	ctx := context.Background()
	incidentID := uuid.New()
	dbError := fmt.Errorf("не найдено")

	// Ожидания
	f.repo.EXPECT().GetIncidentFromCache(ctx, incidentID).Return(nil, nil).Times(1)
	f.repo.EXPECT().GetByID(ctx, incidentID).Return(nil, dbError).Times(1)

	// Действие
	incident, err := f.service.GetIncident(ctx, incidentID)

	// Проверки
	require.Error(t, err)
	assert.Nil(t, incident)
	assert.ErrorContains(t, err, "could not get incident")
}

func TestCreateIncident_Success(t *testing.T) {
	// Подготовка
	f := newTestIncidentService(t, nil)
	ctx := context.Background()
	deviceID := uuid.New()

	// Ожидания
	f.repo.EXPECT().
		Create(ctx, gomock.Any()).
		Do(func(ctx context.Context, inc *models.Incident) {
			assert.Equal(t, models.IncidentPending, inc.Status)
			assert.NotNil(t, inc.ConfirmationDeadline)
		}).Return(nil).Times(1)
	f.logs.EXPECT().
		Create(ctx, gomock.Any()).
		Do(func(ctx context.Context, entry *models.IncidentLog) {
			assert.Equal(t, "created", entry.Action)
		}).Return(nil).Times(1)
	f.notifier.EXPECT().Publish(ctx, gomock.Any()).Return(nil).Times(1)

	// Действие
	incident, err := f.service.CreateIncident(ctx, CreateIncidentCommand{
		DeviceID:  &deviceID,
		Latitude:  55.75,
		Longitude: 37.61,
		Mode:      models.ModeAuto,
		Actor:     models.HardwareActor("dev-1"),
	})

	// Проверки
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, incident.ID)
	assert.Equal(t, models.IncidentPending, incident.Status)
	assert.Equal(t, &deviceID, incident.DeviceID)
}

func TestCreateIncident_DeadlineConfirmsAndHandsOver(t *testing.T) {
	// Подготовка: короткое окно подтверждения, таймер срабатывает сам
	cfg := &config.Config{ConfirmationWindow: 20 * time.Millisecond}
	f := newTestIncidentService(t, cfg)
	ctx := context.Background()

	confirmed := make(chan uuid.UUID, 1)
	f.service.SetOnConfirmed(func(id uuid.UUID) {
		confirmed <- id
	})

	var created *models.Incident

	// Ожидания: создание
	f.repo.EXPECT().
		Create(ctx, gomock.Any()).
		Do(func(ctx context.Context, inc *models.Incident) {
			created = inc
		}).Return(nil).Times(1)

	// Ожидания: переход по дедлайну (контекст там свой)
	f.repo.EXPECT().
		GetByID(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
			clone := *created
			return &clone, nil
		}).Times(1)
	f.repo.EXPECT().
		UpdateCAS(gomock.Any(), gomock.Any(), models.IncidentPending).
		DoAndReturn(func(ctx context.Context, inc *models.Incident, from models.IncidentStatus) (bool, error) {
			assert.Equal(t, models.IncidentConfirmed, inc.Status)
			assert.NotNil(t, inc.ConfirmedAt)
			return true, nil
		}).Times(1)
	f.repo.EXPECT().InvalidateIncidentCache(gomock.Any(), gomock.Any()).Return(nil).Times(1)
	f.logs.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil).Times(2) // created + confirmed
	f.notifier.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil).Times(2)

	// Действие
	incident, err := f.service.CreateIncident(ctx, CreateIncidentCommand{
		Latitude:  55.75,
		Longitude: 37.61,
		Mode:      models.ModeAuto,
		Actor:     models.HardwareActor("dev-1"),
	})
	require.NoError(t, err)

	// Проверки: управление передано подбору машины
	select {
	case id := <-confirmed:
		assert.Equal(t, incident.ID, id)
	case <-time.After(time.Second):
		t.Fatal("confirmation deadline never fired")
	}
}

func TestCancelIncident_Success(t *testing.T) {
	// Подготовка
	f := newTestIncidentService(t, nil)
	ctx := context.Background()
	incidentID := uuid.New()
	pending := &models.Incident{ID: incidentID, Status: models.IncidentPending, Mode: models.ModeAuto}

	sub := f.bus.Subscribe(nil)
	defer sub.Close()

	// Ожидания
	f.repo.EXPECT().GetByID(ctx, incidentID).Return(pending, nil).Times(1)
	f.repo.EXPECT().UpdateCAS(ctx, gomock.Any(), models.IncidentPending).Return(true, nil).Times(1)
	f.repo.EXPECT().InvalidateIncidentCache(ctx, incidentID).Return(nil).Times(1)
	f.logs.EXPECT().
		Create(ctx, gomock.Any()).
		Do(func(ctx context.Context, entry *models.IncidentLog) {
			assert.Equal(t, "canceled", entry.Action)
			assert.Equal(t, models.ActorOperator, entry.Actor.Kind)
		}).Return(nil).Times(1)
	f.notifier.EXPECT().Publish(ctx, gomock.Any()).Return(nil).Times(1)

	// Действие
	incident, err := f.service.CancelIncident(ctx, incidentID, models.OperatorActor("op-1"), "false alarm")

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, models.IncidentCanceled, incident.Status)
	require.NotNil(t, incident.ResolvedAt)

	// Ровно одно событие на переход
	event := <-sub.C
	assert.Equal(t, eventbus.KindIncidentStatus, event.Kind)
	assert.Equal(t, incidentID, event.IncidentID)
	assert.Equal(t, string(models.IncidentCanceled), event.Status)
}

func TestCancelIncident_AfterConfirm_Rejected(t *testing.T) {
	// Подготовка: инцидент уже подтвержден, отмена опоздала
	f := newTestIncidentService(t, nil)
	ctx := context.Background()
	incidentID := uuid.New()
	confirmedIncident := &models.Incident{ID: incidentID, Status: models.IncidentConfirmed, Mode: models.ModeAuto}

	// Ожидания: до CAS-записи дело не доходит
	f.repo.EXPECT().GetByID(ctx, incidentID).Return(confirmedIncident, nil).Times(1)

	// Действие
	incident, err := f.service.CancelIncident(ctx, incidentID, models.OperatorActor("op-1"), "")

	// Проверки
	require.Error(t, err)
	assert.Nil(t, incident)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestTransition_LostConcurrentUpdate(t *testing.T) {
	// Подготовка: CAS в бд проигрывает конкурентному переходу
	f := newTestIncidentService(t, nil)
	ctx := context.Background()
	incidentID := uuid.New()
	pending := &models.Incident{ID: incidentID, Status: models.IncidentPending, Mode: models.ModeAuto}

	// Ожидания
	f.repo.EXPECT().GetByID(ctx, incidentID).Return(pending, nil).Times(1)
	f.repo.EXPECT().UpdateCAS(ctx, gomock.Any(), models.IncidentPending).Return(false, nil).Times(1)

	// Действие
	_, err := f.service.CancelIncident(ctx, incidentID, models.OperatorActor("op-1"), "")

	// Проверки: проигравший переход получает ErrInvalidTransition
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestMarkAssigned_SetsResources(t *testing.T) {
	// Подготовка
	f := newTestIncidentService(t, nil)
	ctx := context.Background()
	incidentID := uuid.New()
	ambulanceID := uuid.New()
	hospitalID := uuid.New()
	confirmedIncident := &models.Incident{
		ID:                   incidentID,
		Status:               models.IncidentConfirmed,
		Mode:                 models.ModeAuto,
		NoAmbulanceAvailable: true,
	}

	// Ожидания
	f.repo.EXPECT().GetByID(ctx, incidentID).Return(confirmedIncident, nil).Times(1)
	f.repo.EXPECT().
		UpdateCAS(ctx, gomock.Any(), models.IncidentConfirmed).
		DoAndReturn(func(ctx context.Context, inc *models.Incident, from models.IncidentStatus) (bool, error) {
			assert.Equal(t, models.IncidentAssigned, inc.Status)
			assert.Equal(t, &ambulanceID, inc.AmbulanceID)
			assert.Equal(t, &hospitalID, inc.HospitalID)
			assert.False(t, inc.NoAmbulanceAvailable)
			return true, nil
		}).Times(1)
	f.repo.EXPECT().InvalidateIncidentCache(ctx, incidentID).Return(nil).Times(1)
	f.logs.EXPECT().Create(ctx, gomock.Any()).Return(nil).Times(1)
	f.notifier.EXPECT().Publish(ctx, gomock.Any()).Return(nil).Times(1)

	// Действие
	incident, err := f.service.MarkAssigned(ctx, incidentID, ambulanceID, hospitalID, models.SystemActor(), "nearest ambulance at 1.20 km")

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, models.IncidentAssigned, incident.Status)
}

func TestCompleteIncident_ReleasesAmbulance(t *testing.T) {
	// Подготовка
	f := newTestIncidentService(t, nil)
	ctx := context.Background()
	incidentID := uuid.New()
	ambulanceID := uuid.New()
	inProgress := &models.Incident{
		ID:          incidentID,
		Status:      models.IncidentInProgress,
		Mode:        models.ModeAuto,
		AmbulanceID: &ambulanceID,
	}

	// Ожидания
	f.repo.EXPECT().GetByID(ctx, incidentID).Return(inProgress, nil).Times(1)
	f.repo.EXPECT().UpdateCAS(ctx, gomock.Any(), models.IncidentInProgress).Return(true, nil).Times(1)
	f.repo.EXPECT().InvalidateIncidentCache(ctx, incidentID).Return(nil).Times(1)
	f.logs.EXPECT().Create(ctx, gomock.Any()).Return(nil).Times(1)
	f.notifier.EXPECT().Publish(ctx, gomock.Any()).Return(nil).Times(1)
	f.fleet.EXPECT().ReleaseAmbulance(ctx, ambulanceID).Return(nil).Times(1)

	// Действие
	incident, err := f.service.CompleteIncident(ctx, incidentID, models.OperatorActor("op-1"))

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, models.IncidentCompleted, incident.Status)
	require.NotNil(t, incident.ResolvedAt)
}

func TestProgressIncident_MarksTransporting(t *testing.T) {
	// Подготовка
	f := newTestIncidentService(t, nil)
	ctx := context.Background()
	incidentID := uuid.New()
	ambulanceID := uuid.New()
	assigned := &models.Incident{
		ID:          incidentID,
		Status:      models.IncidentAssigned,
		Mode:        models.ModeAuto,
		AmbulanceID: &ambulanceID,
	}

	// Ожидания
	f.repo.EXPECT().GetByID(ctx, incidentID).Return(assigned, nil).Times(1)
	f.repo.EXPECT().UpdateCAS(ctx, gomock.Any(), models.IncidentAssigned).Return(true, nil).Times(1)
	f.repo.EXPECT().InvalidateIncidentCache(ctx, incidentID).Return(nil).Times(1)
	f.logs.EXPECT().Create(ctx, gomock.Any()).Return(nil).Times(1)
	f.notifier.EXPECT().Publish(ctx, gomock.Any()).Return(nil).Times(1)
	f.fleet.EXPECT().MarkTransporting(ctx, ambulanceID).Return(nil).Times(1)

	// Действие
	incident, err := f.service.ProgressIncident(ctx, incidentID, models.OperatorActor("op-1"))

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, models.IncidentInProgress, incident.Status)
}

func TestFlagNoAmbulance_FlagsConfirmedIncident(t *testing.T) {
	// Подготовка
	f := newTestIncidentService(t, nil)
	ctx := context.Background()
	incidentID := uuid.New()
	confirmedIncident := &models.Incident{ID: incidentID, Status: models.IncidentConfirmed, Mode: models.ModeAuto}

	// Ожидания
	f.repo.EXPECT().GetByID(ctx, incidentID).Return(confirmedIncident, nil).Times(1)
	f.repo.EXPECT().
		UpdateCAS(ctx, gomock.Any(), models.IncidentConfirmed).
		DoAndReturn(func(ctx context.Context, inc *models.Incident, from models.IncidentStatus) (bool, error) {
			// Статус не меняется, поднимается только флаг
			assert.Equal(t, models.IncidentConfirmed, inc.Status)
			assert.True(t, inc.NoAmbulanceAvailable)
			return true, nil
		}).Times(1)
	f.repo.EXPECT().InvalidateIncidentCache(ctx, incidentID).Return(nil).Times(1)
	f.logs.EXPECT().
		Create(ctx, gomock.Any()).
		Do(func(ctx context.Context, entry *models.IncidentLog) {
			assert.Equal(t, "dispatch_unassigned", entry.Action)
		}).Return(nil).Times(1)
	f.notifier.EXPECT().
		Publish(ctx, gomock.Any()).
		Return(nil).Times(1)

	// Действие
	err := f.service.FlagNoAmbulance(ctx, incidentID, "no ambulance within 50 km after 6 attempts")

	// Проверки
	require.NoError(t, err)
}

func TestFlagNoAmbulance_NoopWhenNotConfirmed(t *testing.T) {
	// Подготовка: инцидент уже назначен, флаг неактуален
	f := newTestIncidentService(t, nil)
	ctx := context.Background()
	incidentID := uuid.New()
	assigned := &models.Incident{ID: incidentID, Status: models.IncidentAssigned, Mode: models.ModeAuto}

	// Ожидания: ни CAS, ни журнала, ни событий
	f.repo.EXPECT().GetByID(ctx, incidentID).Return(assigned, nil).Times(1)

	// Действие
	err := f.service.FlagNoAmbulance(ctx, incidentID, "")

	// Проверки
	require.NoError(t, err)
}

func TestListIncidents_NormalizesPagination(t *testing.T) {
	// Подготовка
	f := newTestIncidentService(t, nil)
	ctx := context.Background()
	expected := []*models.Incident{{ID: uuid.New()}, {ID: uuid.New()}}

	// Ожидания: нулевые значения приводятся к дефолтам
	f.repo.EXPECT().ListIncidents(ctx, 1, 20).Return(expected, nil).Times(1)

	// Действие
	incidents, err := f.service.ListIncidents(ctx, 0, 0)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, expected, incidents)
}

func TestRecover_RearmsExpiredConfirmationWindow(t *testing.T) {
	// Подготовка: pending-инцидент с уже прошедшим дедлайном в бд
	f := newTestIncidentService(t, nil)
	ctx := context.Background()

	confirmed := make(chan uuid.UUID, 1)
	f.service.SetOnConfirmed(func(id uuid.UUID) {
		confirmed <- id
	})

	past := time.Now().UTC().Add(-time.Second)
	pending := &models.Incident{
		ID:                   uuid.New(),
		Status:               models.IncidentPending,
		Mode:                 models.ModeAuto,
		ConfirmationDeadline: &past,
	}

	// Ожидания: скан незакрытых и переход по дедлайну (контекст там свой)
	f.repo.EXPECT().ListUnresolved(ctx).Return([]*models.Incident{pending}, nil).Times(1)
	f.repo.EXPECT().
		GetByID(gomock.Any(), pending.ID).
		DoAndReturn(func(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
			clone := *pending
			return &clone, nil
		}).Times(1)
	f.repo.EXPECT().
		UpdateCAS(gomock.Any(), gomock.Any(), models.IncidentPending).
		DoAndReturn(func(ctx context.Context, inc *models.Incident, from models.IncidentStatus) (bool, error) {
			assert.Equal(t, models.IncidentConfirmed, inc.Status)
			return true, nil
		}).Times(1)
	f.repo.EXPECT().InvalidateIncidentCache(gomock.Any(), pending.ID).Return(nil).Times(1)
	f.logs.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil).Times(1)
	f.notifier.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	// Действие
	require.NoError(t, f.service.Recover(ctx))

	// Проверки: просроченное окно срабатывает сразу после рестарта
	select {
	case id := <-confirmed:
		assert.Equal(t, pending.ID, id)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for the recovered deadline to fire")
	}
}

func TestRecover_RedispatchesConfirmedWithoutAmbulance(t *testing.T) {
	// Подготовка
	f := newTestIncidentService(t, nil)
	ctx := context.Background()

	dispatched := make(chan uuid.UUID, 2)
	f.service.SetOnConfirmed(func(id uuid.UUID) {
		dispatched <- id
	})

	unassigned := &models.Incident{ID: uuid.New(), Status: models.IncidentConfirmed}
	flagged := &models.Incident{
		ID:                   uuid.New(),
		Status:               models.IncidentConfirmed,
		NoAmbulanceAvailable: true,
	}

	// Ожидания
	f.repo.EXPECT().
		ListUnresolved(ctx).
		Return([]*models.Incident{unassigned, flagged}, nil).Times(1)

	// Действие
	require.NoError(t, f.service.Recover(ctx))

	// Проверки: в подбор возвращается только confirmed без машины и без
	// флага, помеченные ждут ручного назначения
	select {
	case id := <-dispatched:
		assert.Equal(t, unassigned.ID, id)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for redispatch")
	}
	assert.Empty(t, dispatched)
}
