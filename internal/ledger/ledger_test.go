package ledger

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/shenikar/flood_dispatch_system/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, time.October, 18, 12, 0, 0, 0, time.UTC)

func newTestLedger(r Rand) *Ledger {
	return New(Seed(), WithRand(r), WithClock(clockwork.NewFakeClockAt(testNow)))
}

func findIncident(t *testing.T, snap models.Snapshot, id string) models.Incident {
	t.Helper()
	for _, inc := range snap.Incidents {
		if inc.ID == id {
			return inc
		}
	}
	require.Failf(t, "incident not found", "id %s", id)
	return models.Incident{}
}

func assertPoolsBounded(t *testing.T, res models.Resources) {
	t.Helper()
	for name, pool := range res.Pools() {
		assert.GreaterOrEqual(t, pool.Available, 0, name)
		assert.LessOrEqual(t, pool.Available, pool.Total, name)
	}
}

func TestSnapshot_SeedState(t *testing.T) {
	l := newTestLedger(&fixedRand{})

	snap := l.Snapshot()

	require.Len(t, snap.Incidents, 3)
	assert.Empty(t, snap.Dispatches)
	assert.Equal(t, models.ResourcePool{Available: 5, Total: 5}, snap.Resources.HeavyPumps)
	assert.Equal(t, models.ResourcePool{Available: 8, Total: 8}, snap.Resources.SuctionTankers)
	assert.Equal(t, models.ResourcePool{Available: 12, Total: 12}, snap.Resources.ResponseTeams)
	assert.Equal(t, models.StatusNew, snap.Incidents[0].Status)
	assert.True(t, snap.Incidents[0].Severe)
	assert.Equal(t, models.StatusAssigned, snap.Incidents[1].Status)
	assert.Equal(t, models.StatusResolved, snap.Incidents[2].Status)
}

func TestSnapshot_IsACopy(t *testing.T) {
	l := newTestLedger(&fixedRand{})

	snap := l.Snapshot()
	snap.Incidents[0].Status = models.StatusResolved
	snap.Resources.ResponseTeams.Available = 0

	fresh := l.Snapshot()
	assert.Equal(t, models.StatusNew, fresh.Incidents[0].Status)
	assert.Equal(t, 12, fresh.Resources.ResponseTeams.Available)
}

func TestCreateIncident_PrependsWithDefaults(t *testing.T) {
	l := newTestLedger(&fixedRand{ints: []int{42}})

	inc, snap := l.CreateIncident(models.IncidentInput{
		Location: "ITO Crossing",
		Category: "Water Logging",
	})

	assert.Equal(t, "INC-2026-042", inc.ID)
	assert.Equal(t, models.StatusNew, inc.Status)
	assert.Equal(t, models.JustNow, inc.ReportedAt)
	assert.True(t, inc.Severe)
	require.Len(t, snap.Incidents, 4)
	assert.Equal(t, inc, snap.Incidents[0])
}

func TestCreateIncident_FourDigitSequence(t *testing.T) {
	l := newTestLedger(&fixedRand{ints: []int{1234}})

	inc, _ := l.CreateIncident(models.IncidentInput{})

	assert.Equal(t, "INC-2026-1234", inc.ID)
}

func TestCreateIncident_SevereFalseIsKept(t *testing.T) {
	l := newTestLedger(&fixedRand{})
	severe := false

	inc, _ := l.CreateIncident(models.IncidentInput{Location: "Okhla", Severe: &severe})

	assert.False(t, inc.Severe)
}

func TestCreateIncident_CollisionDrawsAgain(t *testing.T) {
	initial := Seed()
	initial.Incidents = initial.Incidents[:1] // только INC-2024-001
	l := New(initial, WithRand(&fixedRand{ints: []int{1, 2, 5}}), WithClock(clockwork.NewFakeClockAt(
		time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC))))

	// Первая попытка попадает в занятый номер 001, вторая дает 002
	first, _ := l.CreateIncident(models.IncidentInput{})
	second, _ := l.CreateIncident(models.IncidentInput{})

	assert.Equal(t, "INC-2024-002", first.ID)
	assert.Equal(t, "INC-2024-005", second.ID)
}

func TestNextIncidentID_UniqueAcrossLargeBatch(t *testing.T) {
	l := New(models.Snapshot{}, WithRand(rand.New(rand.NewPCG(1, 2))), WithClock(clockwork.NewFakeClockAt(testNow)))

	const n = 10000
	seen := make(map[string]struct{}, n+500)
	for range n + 500 {
		id := l.nextIncidentID()
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
	assert.Len(t, seen, n+500)
}

func TestCreateIncident_UniqueIDsAfterDelete(t *testing.T) {
	l := New(Seed(), WithRand(rand.New(rand.NewPCG(3, 4))), WithClock(clockwork.NewFakeClockAt(testNow)))

	seen := map[string]struct{}{}
	for range 500 {
		inc, _ := l.CreateIncident(models.IncidentInput{Location: "Yamuna Bank"})
		_, dup := seen[inc.ID]
		require.False(t, dup, "duplicate id %s", inc.ID)
		seen[inc.ID] = struct{}{}
		l.DeleteIncident(inc.ID)
	}
}

// Сценарий A: назначение нового инцидента
func TestUpdateIncidentStatus_AssignNewIncident(t *testing.T) {
	l := newTestLedger(&fixedRand{floats: []float64{0.9}, ints: []int{3, 10}})

	change, snap := l.UpdateIncidentStatus("INC-2024-001", models.StatusAssigned)

	assert.Equal(t, Applied, change.Outcome)
	assert.Equal(t, models.StatusNew, change.OldStatus)
	assert.Equal(t, models.StatusAssigned, findIncident(t, snap, "INC-2024-001").Status)
	assert.Equal(t, 11, snap.Resources.ResponseTeams.Available)
	assert.Equal(t, 7, snap.Resources.SuctionTankers.Available)
	assert.Equal(t, 5, snap.Resources.HeavyPumps.Available)

	require.Len(t, snap.Dispatches, 1)
	d := snap.Dispatches[0]
	assert.Contains(t, d.Action, "Minto Bridge")
	assert.Equal(t, "en route to Minto Bridge", d.Action)
	assert.Equal(t, "Suction Tanker 4", d.Team)
	assert.Equal(t, "15 mins", d.ETA)
	assert.Equal(t, models.JustNow, d.CreatedAt)
	assert.Equal(t, fmt.Sprintf("DIS-%04d", testNow.UnixMilli()%10000), d.ID)
	require.NotNil(t, change.Dispatch)
	assert.Equal(t, d, *change.Dispatch)
	assert.Equal(t, VehicleSuctionTanker, change.Vehicle)
}

func TestUpdateIncidentStatus_AssignWithRealRandomness(t *testing.T) {
	l := New(Seed())

	_, snap := l.UpdateIncidentStatus("INC-2024-001", models.StatusAssigned)

	assert.Equal(t, 11, snap.Resources.ResponseTeams.Available)
	require.Len(t, snap.Dispatches, 1)
	assert.Contains(t, snap.Dispatches[0].Action, "Minto Bridge")
	pumps, tankers := snap.Resources.HeavyPumps.Available, snap.Resources.SuctionTankers.Available
	assert.Equal(t, 12, pumps+tankers, "exactly one vehicle is taken")
}

// Сценарий B: закрытие после назначения
func TestUpdateIncidentStatus_ResolveAfterAssign(t *testing.T) {
	l := newTestLedger(&fixedRand{floats: []float64{0.1, 0.1}})

	l.UpdateIncidentStatus("INC-2024-001", models.StatusAssigned)
	change, snap := l.UpdateIncidentStatus("INC-2024-001", models.StatusResolved)

	assert.Equal(t, models.StatusAssigned, change.OldStatus)
	assert.Equal(t, 12, snap.Resources.ResponseTeams.Available)
	assert.Equal(t, 5, snap.Resources.HeavyPumps.Available)
	assert.Len(t, snap.Dispatches, 1)
	assert.Nil(t, change.Dispatch)
	assert.Equal(t, []string{"response_teams", "heavy_pumps"}, change.Restored)
}

func TestUpdateIncidentStatus_ResolveNeverRestoresTankers(t *testing.T) {
	l := newTestLedger(&fixedRand{floats: []float64{0.9, 0.1}})

	l.UpdateIncidentStatus("INC-2024-001", models.StatusAssigned)
	_, snap := l.UpdateIncidentStatus("INC-2024-001", models.StatusResolved)

	assert.Equal(t, 7, snap.Resources.SuctionTankers.Available)
	assert.Equal(t, 5, snap.Resources.HeavyPumps.Available, "pump pool is already full")
}

func TestUpdateIncidentStatus_ResolveKeepsPoolsAtTotal(t *testing.T) {
	l := newTestLedger(&fixedRand{floats: []float64{0.1}})

	// INC-2024-002 уже Assigned, ресурсы полные
	change, snap := l.UpdateIncidentStatus("INC-2024-002", models.StatusResolved)

	assert.Empty(t, change.Restored)
	assert.Equal(t, 12, snap.Resources.ResponseTeams.Available)
	assert.Equal(t, 5, snap.Resources.HeavyPumps.Available)
}

func TestUpdateIncidentStatus_AssignTwiceDispatchesOnce(t *testing.T) {
	l := newTestLedger(&fixedRand{})

	_, first := l.UpdateIncidentStatus("INC-2024-001", models.StatusAssigned)
	change, second := l.UpdateIncidentStatus("INC-2024-001", models.StatusAssigned)

	assert.Equal(t, Applied, change.Outcome)
	assert.Nil(t, change.Dispatch)
	assert.Equal(t, first.Resources, second.Resources)
	assert.Equal(t, first.Dispatches, second.Dispatches)
}

func TestUpdateIncidentStatus_ReassignFromResolvedDispatches(t *testing.T) {
	l := newTestLedger(&fixedRand{})

	change, snap := l.UpdateIncidentStatus("INC-2024-003", models.StatusAssigned)

	require.NotNil(t, change.Dispatch)
	assert.Contains(t, change.Dispatch.Action, "Connaught Place")
	assert.Equal(t, 11, snap.Resources.ResponseTeams.Available)
}

func TestUpdateIncidentStatus_IllegalTransitionIsAccepted(t *testing.T) {
	l := newTestLedger(&fixedRand{})

	change, snap := l.UpdateIncidentStatus("INC-2024-003", models.StatusNew)

	assert.Equal(t, Applied, change.Outcome)
	assert.Equal(t, models.StatusNew, findIncident(t, snap, "INC-2024-003").Status)
	assert.Equal(t, Seed().Resources, snap.Resources)
	assert.Empty(t, snap.Dispatches)
}

func TestUpdateIncidentStatus_UnknownStatusIsStored(t *testing.T) {
	l := newTestLedger(&fixedRand{})

	_, snap := l.UpdateIncidentStatus("INC-2024-001", models.IncidentStatus("Escalated"))

	assert.Equal(t, models.IncidentStatus("Escalated"), findIncident(t, snap, "INC-2024-001").Status)
	assert.Equal(t, Seed().Resources, snap.Resources)
}

func TestUpdateIncidentStatus_MissingIDIsNoop(t *testing.T) {
	l := newTestLedger(&fixedRand{})

	change, snap := l.UpdateIncidentStatus("INC-9999-999", models.StatusResolved)

	assert.Equal(t, NotFound, change.Outcome)
	assert.Equal(t, Seed(), snap)
}

func TestUpdateIncidentStatus_TeamsNeverGoNegative(t *testing.T) {
	initial := Seed()
	initial.Resources.ResponseTeams.Available = 0
	initial.Resources.HeavyPumps.Available = 0
	initial.Resources.SuctionTankers.Available = 0
	l := New(initial, WithRand(&fixedRand{floats: []float64{0.1}, ints: []int{1}}),
		WithClock(clockwork.NewFakeClockAt(testNow)))

	change, snap := l.UpdateIncidentStatus("INC-2024-001", models.StatusAssigned)

	assert.Equal(t, 0, snap.Resources.ResponseTeams.Available)
	assert.Equal(t, 0, snap.Resources.HeavyPumps.Available)
	assert.Equal(t, 0, snap.Resources.SuctionTankers.Available)
	require.NotNil(t, change.Dispatch)
	assert.Equal(t, "Team Bravo", change.Dispatch.Team)
	assert.Equal(t, VehicleGenericTeam, change.Vehicle)
}

func TestUpdateIncidentStatus_DispatchLogIsPrependOnly(t *testing.T) {
	l := newTestLedger(rand.New(rand.NewPCG(5, 6)))

	var ids []string
	for range 20 {
		inc, _ := l.CreateIncident(models.IncidentInput{Location: "Ring Road"})
		ids = append(ids, inc.ID)
	}

	prev := l.Snapshot().Dispatches
	for k, id := range ids {
		_, snap := l.UpdateIncidentStatus(id, models.StatusAssigned)
		require.Len(t, snap.Dispatches, k+1)
		assert.Equal(t, prev, snap.Dispatches[1:])
		prev = snap.Dispatches
	}
}

func TestUpdateIncidentStatus_DispatchIDsAreUnique(t *testing.T) {
	l := newTestLedger(rand.New(rand.NewPCG(7, 8)))

	for range 30 {
		inc, _ := l.CreateIncident(models.IncidentInput{})
		l.UpdateIncidentStatus(inc.ID, models.StatusAssigned)
	}

	seen := map[string]struct{}{}
	for _, d := range l.Snapshot().Dispatches {
		_, dup := seen[d.ID]
		require.False(t, dup, "duplicate dispatch id %s", d.ID)
		seen[d.ID] = struct{}{}
	}
}

func TestResourceConservation_RandomTransitions(t *testing.T) {
	r := rand.New(rand.NewPCG(11, 12))
	l := New(Seed(), WithRand(r), WithClock(clockwork.NewFakeClockAt(testNow)))
	statuses := []models.IncidentStatus{models.StatusNew, models.StatusAssigned, models.StatusResolved}

	for range 3000 {
		snap := l.Snapshot()
		switch op := r.IntN(10); {
		case op < 2 || len(snap.Incidents) == 0:
			_, snap = l.CreateIncident(models.IncidentInput{Location: "Dwarka"})
		case op < 9:
			inc := snap.Incidents[r.IntN(len(snap.Incidents))]
			_, snap = l.UpdateIncidentStatus(inc.ID, statuses[r.IntN(len(statuses))])
		default:
			inc := snap.Incidents[r.IntN(len(snap.Incidents))]
			_, snap = l.DeleteIncident(inc.ID)
		}
		assertPoolsBounded(t, snap.Resources)
	}
}

// Сценарий C: архивирование
func TestDeleteIncident_RemovesOnlyIncident(t *testing.T) {
	l := newTestLedger(&fixedRand{})
	l.UpdateIncidentStatus("INC-2024-001", models.StatusAssigned)
	before := l.Snapshot()

	outcome, snap := l.DeleteIncident("INC-2024-002")

	assert.Equal(t, Applied, outcome)
	assert.Len(t, snap.Incidents, len(before.Incidents)-1)
	for _, inc := range snap.Incidents {
		assert.NotEqual(t, "INC-2024-002", inc.ID)
	}
	assert.Equal(t, before.Resources, snap.Resources)
	assert.Equal(t, before.Dispatches, snap.Dispatches)
}

func TestDeleteIncident_MissingIDIsNoop(t *testing.T) {
	l := newTestLedger(&fixedRand{})

	outcome, snap := l.DeleteIncident("INC-9999-999")

	assert.Equal(t, NotFound, outcome)
	assert.Equal(t, Seed(), snap)
}

func TestLedger_ConcurrentOperations(t *testing.T) {
	l := New(Seed())

	var wg sync.WaitGroup
	for w := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 50 {
				inc, _ := l.CreateIncident(models.IncidentInput{Location: fmt.Sprintf("Ward %d-%d", w, i)})
				l.UpdateIncidentStatus(inc.ID, models.StatusAssigned)
				l.UpdateIncidentStatus(inc.ID, models.StatusResolved)
				if i%5 == 0 {
					l.DeleteIncident(inc.ID)
				}
			}
		}()
	}
	wg.Wait()

	snap := l.Snapshot()
	assertPoolsBounded(t, snap.Resources)
	assert.Len(t, snap.Dispatches, 16*50)
	assert.Len(t, snap.Incidents, 3+16*50-16*10)
}
