package ledger

import (
	"fmt"
	"math/rand/v2"

	"github.com/shenikar/flood_dispatch_system/internal/models"
)

// Rand - источник случайности для политики выбора техники, ETA и номеров.
// *rand.Rand из math/rand/v2 удовлетворяет интерфейсу.
type Rand interface {
	Float64() float64
	IntN(n int) int
}

// processRand использует общий несидированный генератор процесса
type processRand struct{}

func (processRand) Float64() float64 { return rand.Float64() }
func (processRand) IntN(n int) int   { return rand.IntN(n) }

// VehicleKind - тип выделенной на выезд единицы
type VehicleKind string

const (
	VehicleHeavyPump     VehicleKind = "heavy_pump"
	VehicleSuctionTanker VehicleKind = "suction_tanker"
	VehicleGenericTeam   VehicleKind = "generic_team"
)

// Vehicle - выбранная единица и ее подпись в журнале выездов
type Vehicle struct {
	Kind  VehicleKind
	Label string
}

var genericTeams = [...]string{"Alpha", "Bravo", "Charlie", "Delta"}

// ChooseVehicle выбирает технику для выезда.
// С вероятностью 0.5 и при наличии насосов берется насос, иначе цистерна,
// если они остались, иначе одна из именных бригад без списания из пула.
// Монетка бросается всегда, даже если насосов нет.
func ChooseVehicle(r Rand, res models.Resources) Vehicle {
	coin := r.Float64() < 0.5

	switch {
	case coin && res.HeavyPumps.Available > 0:
		return Vehicle{Kind: VehicleHeavyPump, Label: fmt.Sprintf("Heavy Pump %d", r.IntN(10)+1)}
	case res.SuctionTankers.Available > 0:
		return Vehicle{Kind: VehicleSuctionTanker, Label: fmt.Sprintf("Suction Tanker %d", r.IntN(10)+1)}
	default:
		return Vehicle{Kind: VehicleGenericTeam, Label: "Team " + genericTeams[r.IntN(len(genericTeams))]}
	}
}

// RandomETA возвращает время прибытия в минутах из [5, 25)
func RandomETA(r Rand) string {
	return fmt.Sprintf("%d mins", r.IntN(20)+5)
}

// ReturnsHeavyPump решает, возвращается ли насос при закрытии инцидента.
// Цистерны при закрытии не возвращаются никогда.
// TODO: confirm with operations whether tankers should be restored on resolve.
func ReturnsHeavyPump(r Rand) bool {
	return r.Float64() < 0.5
}
