package service

import (
	"bytes"
	"context"
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shenikar/flood_dispatch_system/internal/config"
	"github.com/shenikar/flood_dispatch_system/internal/ledger"
	"github.com/shenikar/flood_dispatch_system/internal/models"
	"github.com/shenikar/flood_dispatch_system/internal/observability"
	"github.com/shenikar/flood_dispatch_system/internal/service/mocks"
	"github.com/shenikar/flood_dispatch_system/internal/webhook"
	webhook_mocks "github.com/shenikar/flood_dispatch_system/internal/webhook/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var testNow = time.Date(2026, time.October, 18, 8, 15, 0, 0, time.UTC)

type testDeps struct {
	publisher *webhook_mocks.MockWebhookPublisher
	metrics   *observability.Metrics
	events    []webhook.WebhookEvent
}

// newTestIncidentService - вспомогательная функция для создания сервиса поверх переданного леджера
func newTestIncidentService(t *testing.T, l Ledger, strict bool) (*incidentService, *testDeps) {
	t.Helper()
	ctrl := gomock.NewController(t)
	deps := &testDeps{
		publisher: webhook_mocks.NewMockWebhookPublisher(ctrl),
		metrics:   observability.NewMetricsForTesting(),
	}
	deps.publisher.EXPECT().Name().Return("redis").AnyTimes()

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	cfg := &config.Config{StrictValidation: strict}
	svc := NewIncidentService(l, logger, cfg, deps.publisher, deps.metrics, clockwork.NewFakeClockAt(testNow))
	return svc.(*incidentService), deps
}

// capture записывает все опубликованные события
func (d *testDeps) capture() {
	d.publisher.EXPECT().
		Publish(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, e webhook.WebhookEvent) error {
			d.events = append(d.events, e)
			return nil
		}).AnyTimes()
}

func newRealLedger() *ledger.Ledger {
	return ledger.New(ledger.Seed(),
		ledger.WithRand(rand.New(rand.NewPCG(21, 22))),
		ledger.WithClock(clockwork.NewFakeClockAt(testNow)))
}

func TestGetSnapshot_ReturnsLedgerState(t *testing.T) {
	service, _ := newTestIncidentService(t, newRealLedger(), false)

	snap := service.GetSnapshot(context.Background())

	assert.Equal(t, ledger.Seed(), snap)
}

func TestCreateIncident_Success(t *testing.T) {
	service, deps := newTestIncidentService(t, newRealLedger(), false)
	deps.capture()

	snap, err := service.CreateIncident(context.Background(), models.IncidentInput{
		Location: "Pul Prahladpur Underpass",
		Category: "Water Logging",
	})

	require.NoError(t, err)
	require.Len(t, snap.Incidents, 4)
	created := snap.Incidents[0]
	assert.Equal(t, "Pul Prahladpur Underpass", created.Location)
	assert.Equal(t, models.StatusNew, created.Status)
	assert.Regexp(t, `^INC-2026-\d{3,4}$`, created.ID)

	require.Len(t, deps.events, 1)
	assert.Equal(t, webhook.EventIncidentCreated, deps.events[0].Type)
	assert.Equal(t, created.ID, deps.events[0].IncidentID)
	assert.Equal(t, testNow, deps.events[0].Timestamp)
	assert.InDelta(t, 1, testutil.ToFloat64(deps.metrics.LedgerOperations.WithLabelValues("create", "applied")), 0)
}

func TestCreateIncident_PermissiveAcceptsEmptyInput(t *testing.T) {
	service, deps := newTestIncidentService(t, newRealLedger(), false)
	deps.capture()

	snap, err := service.CreateIncident(context.Background(), models.IncidentInput{})

	require.NoError(t, err)
	assert.Len(t, snap.Incidents, 4)
	assert.True(t, snap.Incidents[0].Severe)
}

func TestCreateIncident_StrictRejectsMissingLocation(t *testing.T) {
	ctrl := gomock.NewController(t)
	ledgerMock := mocks.NewMockLedger(ctrl)
	service, deps := newTestIncidentService(t, ledgerMock, true)

	ledgerMock.EXPECT().CreateIncident(gomock.Any()).Times(0)
	deps.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Times(0)

	_, err := service.CreateIncident(context.Background(), models.IncidentInput{Location: "  "})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidIncident)
	assert.InDelta(t, 1, testutil.ToFloat64(deps.metrics.LedgerOperations.WithLabelValues("create", "rejected")), 0)
}

func TestCreateIncident_PublishFailureDoesNotFailOperation(t *testing.T) {
	service, deps := newTestIncidentService(t, newRealLedger(), false)
	deps.publisher.EXPECT().
		Publish(gomock.Any(), gomock.Any()).
		Return(errors.New("redis: connection refused")).
		Times(1)

	snap, err := service.CreateIncident(context.Background(), models.IncidentInput{Location: "Rohini"})

	require.NoError(t, err)
	assert.Len(t, snap.Incidents, 4)
	assert.InDelta(t, 1, testutil.ToFloat64(deps.metrics.EventsPublished.WithLabelValues("redis", "error")), 0)
}

func TestUpdateIncidentStatus_AssignEmitsStatusAndDispatchEvents(t *testing.T) {
	service, deps := newTestIncidentService(t, newRealLedger(), false)
	deps.capture()

	snap, err := service.UpdateIncidentStatus(context.Background(), "INC-2024-001", models.StatusAssigned)

	require.NoError(t, err)
	assert.Equal(t, 11, snap.Resources.ResponseTeams.Available)
	require.Len(t, snap.Dispatches, 1)
	assert.Contains(t, snap.Dispatches[0].Action, "Minto Bridge")

	require.Len(t, deps.events, 2)
	statusEvent, dispatchEvent := deps.events[0], deps.events[1]
	assert.Equal(t, webhook.EventIncidentStatusChanged, statusEvent.Type)
	assert.Equal(t, models.StatusNew, statusEvent.OldStatus)
	assert.Equal(t, models.StatusAssigned, statusEvent.Incident.Status)
	assert.Equal(t, webhook.EventDispatchCreated, dispatchEvent.Type)
	assert.Equal(t, snap.Dispatches[0], *dispatchEvent.Dispatch)
	assert.Equal(t, 11, dispatchEvent.Resources.ResponseTeams.Available)

	dispatched := testutil.ToFloat64(deps.metrics.Dispatches.WithLabelValues("heavy_pump")) +
		testutil.ToFloat64(deps.metrics.Dispatches.WithLabelValues("suction_tanker"))
	assert.InDelta(t, 1, dispatched, 0)
}

func TestUpdateIncidentStatus_ResolveEmitsOnlyStatusEvent(t *testing.T) {
	service, deps := newTestIncidentService(t, newRealLedger(), false)
	deps.capture()
	ctx := context.Background()

	_, err := service.UpdateIncidentStatus(ctx, "INC-2024-001", models.StatusAssigned)
	require.NoError(t, err)
	snap, err := service.UpdateIncidentStatus(ctx, "INC-2024-001", models.StatusResolved)

	require.NoError(t, err)
	assert.Equal(t, 12, snap.Resources.ResponseTeams.Available)
	assert.Len(t, snap.Dispatches, 1)
	require.Len(t, deps.events, 3)
	assert.Equal(t, webhook.EventIncidentStatusChanged, deps.events[2].Type)
	assert.Equal(t, models.StatusAssigned, deps.events[2].OldStatus)
}

func TestUpdateIncidentStatus_NotFoundIsSilent(t *testing.T) {
	ctrl := gomock.NewController(t)
	ledgerMock := mocks.NewMockLedger(ctrl)
	service, deps := newTestIncidentService(t, ledgerMock, false)
	seed := ledger.Seed()

	ledgerMock.EXPECT().
		UpdateIncidentStatus("INC-9999-999", models.StatusResolved).
		Return(ledger.StatusChange{Outcome: ledger.NotFound}, seed).
		Times(1)
	deps.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Times(0)

	snap, err := service.UpdateIncidentStatus(context.Background(), "INC-9999-999", models.StatusResolved)

	require.NoError(t, err)
	assert.Equal(t, seed, snap)
	assert.InDelta(t, 1, testutil.ToFloat64(deps.metrics.LedgerOperations.WithLabelValues("update_status", "not_found")), 0)
}

func TestUpdateIncidentStatus_PermissiveStoresUnknownStatus(t *testing.T) {
	service, deps := newTestIncidentService(t, newRealLedger(), false)
	deps.capture()

	snap, err := service.UpdateIncidentStatus(context.Background(), "INC-2024-002", "Escalated")

	require.NoError(t, err)
	assert.Equal(t, models.IncidentStatus("Escalated"), snap.Incidents[1].Status)
}

func TestUpdateIncidentStatus_StrictRejectsUnknownStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	ledgerMock := mocks.NewMockLedger(ctrl)
	service, _ := newTestIncidentService(t, ledgerMock, true)

	ledgerMock.EXPECT().UpdateIncidentStatus(gomock.Any(), gomock.Any()).Times(0)

	_, err := service.UpdateIncidentStatus(context.Background(), "INC-2024-001", "Escalated")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestDeleteIncident_Success(t *testing.T) {
	service, deps := newTestIncidentService(t, newRealLedger(), false)
	deps.capture()

	snap, err := service.DeleteIncident(context.Background(), "INC-2024-002")

	require.NoError(t, err)
	assert.Len(t, snap.Incidents, 2)
	assert.Equal(t, ledger.Seed().Resources, snap.Resources)
	require.Len(t, deps.events, 1)
	assert.Equal(t, webhook.EventIncidentDeleted, deps.events[0].Type)
	assert.Equal(t, "INC-2024-002", deps.events[0].IncidentID)
}

func TestDeleteIncident_NotFoundIsSilent(t *testing.T) {
	service, deps := newTestIncidentService(t, newRealLedger(), false)
	deps.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Times(0)

	snap, err := service.DeleteIncident(context.Background(), "INC-9999-999")

	require.NoError(t, err)
	assert.Equal(t, ledger.Seed(), snap)
}

func TestCheckEventSink(t *testing.T) {
	service, deps := newTestIncidentService(t, newRealLedger(), false)
	ctx := context.Background()

	deps.publisher.EXPECT().Ping(ctx).Return(nil).Times(1)
	assert.NoError(t, service.CheckEventSink(ctx))

	deps.publisher.EXPECT().Ping(ctx).Return(errors.New("dial tcp: refused")).Times(1)
	err := service.CheckEventSink(ctx)
	require.Error(t, err)
	assert.ErrorContains(t, err, "event sink redis unavailable")
}

func TestStrictValidation(t *testing.T) {
	strict, _ := newTestIncidentService(t, newRealLedger(), true)
	lenient, _ := newTestIncidentService(t, newRealLedger(), false)

	assert.True(t, strict.StrictValidation())
	assert.False(t, lenient.StrictValidation())
}
