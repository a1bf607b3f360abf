// Package ledger хранит инциденты, журнал выездов и пулы ресурсов в памяти
// процесса и применяет к ним переходы статусов. Каждая операция атомарна
// относительно остальных: все состояние защищено одним мьютексом.
package ledger

import (
	"fmt"
	"slices"
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/shenikar/flood_dispatch_system/internal/models"
)

// Outcome - результат изменяющей операции
type Outcome int

const (
	Applied Outcome = iota
	NotFound
)

func (o Outcome) String() string {
	if o == NotFound {
		return "not_found"
	}
	return "applied"
}

// StatusChange описывает, что произошло при смене статуса
type StatusChange struct {
	Outcome   Outcome
	OldStatus models.IncidentStatus
	Incident  models.Incident
	// Dispatch заполнен, если переход в Assigned создал выезд
	Dispatch *models.Dispatch
	// Vehicle - выбранная для выезда единица
	Vehicle VehicleKind
	// Restored - имена пулов, в которые вернулись ресурсы при закрытии
	Restored []string
}

// Ledger - единственный владелец инцидентов, выездов и пулов ресурсов
type Ledger struct {
	mu         sync.Mutex
	incidents  []models.Incident
	dispatches []models.Dispatch
	resources  models.Resources

	incidentIDs map[string]struct{}
	dispatchIDs map[string]struct{}

	rnd   Rand
	clock clockwork.Clock
}

// Option настраивает Ledger при создании
type Option func(*Ledger)

// WithRand подменяет источник случайности
func WithRand(r Rand) Option {
	return func(l *Ledger) { l.rnd = r }
}

// WithClock подменяет часы (год в номере инцидента, суффикс номера выезда)
func WithClock(c clockwork.Clock) Option {
	return func(l *Ledger) { l.clock = c }
}

// New создает леджер с начальным состоянием initial
func New(initial models.Snapshot, opts ...Option) *Ledger {
	l := &Ledger{
		incidents:   slices.Clone(initial.Incidents),
		dispatches:  slices.Clone(initial.Dispatches),
		resources:   initial.Resources,
		incidentIDs: make(map[string]struct{}, len(initial.Incidents)),
		dispatchIDs: make(map[string]struct{}, len(initial.Dispatches)),
		rnd:         processRand{},
		clock:       clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.incidents == nil {
		l.incidents = []models.Incident{}
	}
	if l.dispatches == nil {
		l.dispatches = []models.Dispatch{}
	}
	for _, inc := range l.incidents {
		l.incidentIDs[inc.ID] = struct{}{}
	}
	for _, d := range l.dispatches {
		l.dispatchIDs[d.ID] = struct{}{}
	}
	return l
}

// Snapshot возвращает копию текущего состояния
func (l *Ledger) Snapshot() models.Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshotLocked()
}

// CreateIncident добавляет новый инцидент в начало списка.
// Входные данные не проверяются.
func (l *Ledger) CreateIncident(in models.IncidentInput) (models.Incident, models.Snapshot) {
	l.mu.Lock()
	defer l.mu.Unlock()

	severe := true
	if in.Severe != nil {
		severe = *in.Severe
	}

	inc := models.Incident{
		ID:          l.nextIncidentID(),
		Location:    in.Location,
		Category:    in.Category,
		ReportedAt:  models.JustNow,
		Status:      models.StatusNew,
		Severe:      severe,
		Description: in.Description,
	}
	l.incidents = slices.Insert(l.incidents, 0, inc)

	return inc, l.snapshotLocked()
}

// UpdateIncidentStatus выставляет статус без проверки допустимости перехода.
// Побочные эффекты на ресурсы есть только у переходов в Assigned и в Resolved.
func (l *Ledger) UpdateIncidentStatus(id string, status models.IncidentStatus) (StatusChange, models.Snapshot) {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := l.indexOf(id)
	if idx < 0 {
		return StatusChange{Outcome: NotFound}, l.snapshotLocked()
	}

	inc := &l.incidents[idx]
	change := StatusChange{Outcome: Applied, OldStatus: inc.Status}
	inc.Status = status

	switch {
	case status == models.StatusAssigned && change.OldStatus != models.StatusAssigned:
		d, kind := l.dispatchLocked(*inc)
		change.Dispatch = &d
		change.Vehicle = kind
	case status == models.StatusResolved && change.OldStatus != models.StatusResolved:
		change.Restored = l.releaseLocked()
	}

	change.Incident = *inc
	return change, l.snapshotLocked()
}

// DeleteIncident убирает инцидент из списка (архивирование).
// Пулы и журнал выездов не меняются.
func (l *Ledger) DeleteIncident(id string) (Outcome, models.Snapshot) {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := l.indexOf(id)
	if idx < 0 {
		return NotFound, l.snapshotLocked()
	}
	l.incidents = slices.Delete(l.incidents, idx, idx+1)
	return Applied, l.snapshotLocked()
}

func (l *Ledger) dispatchLocked(inc models.Incident) (models.Dispatch, VehicleKind) {
	res := &l.resources
	if res.ResponseTeams.Available > 0 {
		res.ResponseTeams.Available--
	}

	vehicle := ChooseVehicle(l.rnd, *res)
	switch vehicle.Kind {
	case VehicleHeavyPump:
		res.HeavyPumps.Available--
	case VehicleSuctionTanker:
		res.SuctionTankers.Available--
	}

	d := models.Dispatch{
		ID:        l.nextDispatchID(),
		Team:      vehicle.Label,
		Action:    "en route to " + inc.Location,
		ETA:       RandomETA(l.rnd),
		CreatedAt: models.JustNow,
	}
	l.dispatches = slices.Insert(l.dispatches, 0, d)
	return d, vehicle.Kind
}

func (l *Ledger) releaseLocked() []string {
	var restored []string
	res := &l.resources
	if res.ResponseTeams.Available < res.ResponseTeams.Total {
		res.ResponseTeams.Available++
		restored = append(restored, "response_teams")
	}
	if ReturnsHeavyPump(l.rnd) && res.HeavyPumps.Available < res.HeavyPumps.Total {
		res.HeavyPumps.Available++
		restored = append(restored, "heavy_pumps")
	}
	return restored
}

func (l *Ledger) indexOf(id string) int {
	return slices.IndexFunc(l.incidents, func(inc models.Incident) bool {
		return inc.ID == id
	})
}

func (l *Ledger) snapshotLocked() models.Snapshot {
	return models.Snapshot{
		Incidents:  slices.Clone(l.incidents),
		Dispatches: slices.Clone(l.dispatches),
		Resources:  l.resources,
	}
}

const (
	incidentSeqSpace = 10000
	dispatchSeqSpace = 10000
	randomAttempts   = 8
)

// nextIncidentID выдает INC-<год>-<номер>. Номер случайный, но не повторяет
// ни один номер, выданный за время жизни процесса, включая удаленные.
func (l *Ledger) nextIncidentID() string {
	year := l.clock.Now().Year()
	format := func(n int) string { return fmt.Sprintf("INC-%d-%03d", year, n) }

	for range randomAttempts {
		if id := format(l.rnd.IntN(incidentSeqSpace)); l.claimIncidentID(id) {
			return id
		}
	}

	// пространство почти занято: линейный поиск свободного номера
	start := l.rnd.IntN(incidentSeqSpace)
	for i := range incidentSeqSpace {
		if id := format((start + i) % incidentSeqSpace); l.claimIncidentID(id) {
			return id
		}
	}
	for n := incidentSeqSpace; ; n++ {
		if id := format(n); l.claimIncidentID(id) {
			return id
		}
	}
}

func (l *Ledger) claimIncidentID(id string) bool {
	if _, taken := l.incidentIDs[id]; taken {
		return false
	}
	l.incidentIDs[id] = struct{}{}
	return true
}

// nextDispatchID выдает DIS-<последние 4 цифры времени в мс>.
// При совпадении берется следующая миллисекунда.
func (l *Ledger) nextDispatchID() string {
	ms := l.clock.Now().UnixMilli()
	for i := range int64(dispatchSeqSpace) {
		id := fmt.Sprintf("DIS-%04d", (ms+i)%dispatchSeqSpace)
		if _, taken := l.dispatchIDs[id]; !taken {
			l.dispatchIDs[id] = struct{}{}
			return id
		}
	}
	for n := len(l.dispatchIDs); ; n++ {
		id := fmt.Sprintf("DIS-%04d-%d", ms%dispatchSeqSpace, n)
		if _, taken := l.dispatchIDs[id]; !taken {
			l.dispatchIDs[id] = struct{}{}
			return id
		}
	}
}
