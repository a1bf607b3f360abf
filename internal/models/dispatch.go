package models

// Dispatch - запись о выезде ресурса на инцидент. После создания не изменяется.
type Dispatch struct {
	ID        string `json:"id"`
	Team      string `json:"team"`
	Action    string `json:"action"`
	ETA       string `json:"eta"`
	CreatedAt string `json:"timestamp"`
}

// ResourcePool - ограниченный пул техники или бригад
type ResourcePool struct {
	Available int `json:"available"`
	Total     int `json:"total"`
}

// Resources - все пулы ресурсов
type Resources struct {
	HeavyPumps     ResourcePool `json:"heavyPumps"`
	SuctionTankers ResourcePool `json:"suctionTankers"`
	ResponseTeams  ResourcePool `json:"responseTeams"`
}

// Pools возвращает пулы по их именам (для метрик и логов)
func (r Resources) Pools() map[string]ResourcePool {
	return map[string]ResourcePool{
		"heavy_pumps":     r.HeavyPumps,
		"suction_tankers": r.SuctionTankers,
		"response_teams":  r.ResponseTeams,
	}
}

// Snapshot - полное текущее состояние леджера
type Snapshot struct {
	Incidents  []Incident `json:"incidents"`
	Dispatches []Dispatch `json:"dispatches"`
	Resources  Resources  `json:"resources"`
}
