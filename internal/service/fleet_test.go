package service

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/ems_dispatch_system/internal/eventbus"
	"github.com/shenikar/ems_dispatch_system/internal/geoindex"
	"github.com/shenikar/ems_dispatch_system/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type fleetFixture struct {
	service    FleetService
	ambulances *MockAmbulanceRepository
	hospitals  *MockHospitalRepository
	index      *geoindex.Index
	bus        *eventbus.Bus
}

// newTestFleetService - вспомогательная функция для создания сервиса парка
// с моками репозиториев и настоящим гео-индексом.
func newTestFleetService(t *testing.T) *fleetFixture {
	ctrl := gomock.NewController(t)
	ambulancesMock := NewMockAmbulanceRepository(ctrl)
	hospitalsMock := NewMockHospitalRepository(ctrl)

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})

	index := geoindex.New()
	bus := eventbus.New(16, logger)
	t.Cleanup(bus.Close)

	svc := NewFleetService(ambulancesMock, hospitalsMock, index, bus, logger)
	return &fleetFixture{
		service:    svc,
		ambulances: ambulancesMock,
		hospitals:  hospitalsMock,
		index:      index,
		bus:        bus,
	}
}

func TestReserveAmbulance_UnknownAmbulance(t *testing.T) {
	// Подготовка: машины нет ни в индексе, ни в бд
	f := newTestFleetService(t)
	ctx := context.Background()

	// Действие
	err := f.service.ReserveAmbulance(ctx, uuid.New())

	// Проверки: неизвестный идентификатор - not found, а не конфликт
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAmbulanceNotFound)
	assert.NotErrorIs(t, err, ErrReservationConflict)
}

func TestReserveAmbulance_BusyAmbulanceConflicts(t *testing.T) {
	// Подготовка
	f := newTestFleetService(t)
	ctx := context.Background()
	id := uuid.New()
	f.index.UpsertAmbulance(id, 55.75, 37.61, models.AmbulanceBusy)

	// Действие
	err := f.service.ReserveAmbulance(ctx, id)

	// Проверки
	assert.ErrorIs(t, err, ErrReservationConflict)
}

func TestReserveAmbulance_StatusEventCarriesPosition(t *testing.T) {
	// Подготовка
	f := newTestFleetService(t)
	ctx := context.Background()
	id := uuid.New()
	f.index.UpsertAmbulance(id, 55.75, 37.61, models.AmbulanceAvailable)

	sub := f.bus.Subscribe(nil)
	defer sub.Close()

	// Ожидания
	f.ambulances.EXPECT().
		UpdateStatusCAS(ctx, id, models.AmbulanceAvailable, models.AmbulanceEnRouteIncident).
		Return(true, nil).Times(1)

	// Действие
	require.NoError(t, f.service.ReserveAmbulance(ctx, id))

	// Проверки: событие со сменой статуса несет реальные координаты
	select {
	case ev := <-sub.C:
		assert.Equal(t, eventbus.KindAmbulanceStatus, ev.Kind)
		assert.Equal(t, string(models.AmbulanceEnRouteIncident), ev.Status)

		var payload ambulanceEventPayload
		require.NoError(t, json.Unmarshal(ev.Payload, &payload))
		assert.Equal(t, id, payload.AmbulanceID)
		assert.InDelta(t, 55.75, payload.Latitude, 1e-9)
		assert.InDelta(t, 37.61, payload.Longitude, 1e-9)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for ambulance status event")
	}
}

func TestReserveAmbulance_DBRejectionRollsBackIndex(t *testing.T) {
	// Подготовка
	f := newTestFleetService(t)
	ctx := context.Background()
	id := uuid.New()
	f.index.UpsertAmbulance(id, 55.75, 37.61, models.AmbulanceAvailable)

	// Ожидания: бд не подтверждает резервацию
	f.ambulances.EXPECT().
		UpdateStatusCAS(ctx, id, models.AmbulanceAvailable, models.AmbulanceEnRouteIncident).
		Return(false, nil).Times(1)

	// Действие
	err := f.service.ReserveAmbulance(ctx, id)

	// Проверки: индекс откатился, машина снова доступна
	assert.ErrorIs(t, err, ErrReservationConflict)
	status, idxErr := f.index.Status(id)
	require.NoError(t, idxErr)
	assert.Equal(t, models.AmbulanceAvailable, status)
}
