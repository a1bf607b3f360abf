package v1

// Теги действий дашборда
const (
	ActionCreateIncident = "create_incident"
	ActionUpdateIncident = "update_incident"
	ActionDeleteIncident = "delete_incident"
)

// IncidentData DTO с полями нового инцидента
// @Description DTO с полями нового инцидента
type IncidentData struct {
	Location    string `json:"loc" validate:"required,max=255"`
	Category    string `json:"type" validate:"max=128"`
	Description string `json:"description,omitempty"`
	Severe      *bool  `json:"severe,omitempty"`
}

// DashboardActionRequest DTO для действия дашборда
// @Description Тегированное действие: create_incident, update_incident или delete_incident
type DashboardActionRequest struct {
	Action string       `json:"action"`
	Data   IncidentData `json:"data" validate:"-"`
	Severe *bool        `json:"severe,omitempty"`
	ID     string       `json:"id" validate:"required_if=Action update_incident,required_if=Action delete_incident"`
	Status string       `json:"status" validate:"required_if=Action update_incident"`
}

// CreateIncidentRequest DTO для создания инцидента
// @Description DTO для создания инцидента
type CreateIncidentRequest struct {
	IncidentData
}

// UpdateStatusRequest DTO для смены статуса инцидента
// @Description DTO для смены статуса инцидента
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// IncidentResponse DTO для ответа с информацией об инциденте
// @Description DTO для ответа с информацией об инциденте
type IncidentResponse struct {
	ID          string `json:"id"`
	Location    string `json:"loc"`
	Category    string `json:"type"`
	Time        string `json:"time"`
	Status      string `json:"status"`
	Severe      bool   `json:"severe"`
	Description string `json:"description,omitempty"`
}

// DispatchResponse DTO записи журнала выездов
// @Description DTO записи журнала выездов
type DispatchResponse struct {
	ID        string `json:"id"`
	Team      string `json:"team"`
	Action    string `json:"action"`
	ETA       string `json:"eta"`
	Timestamp string `json:"timestamp"`
}

// PoolResponse DTO пула ресурсов
type PoolResponse struct {
	Available int `json:"available"`
	Total     int `json:"total"`
}

// ResourcesResponse DTO всех пулов ресурсов
// @Description DTO всех пулов ресурсов
type ResourcesResponse struct {
	HeavyPumps     PoolResponse `json:"heavyPumps"`
	SuctionTankers PoolResponse `json:"suctionTankers"`
	ResponseTeams  PoolResponse `json:"responseTeams"`
}

// SnapshotResponse DTO полного состояния дашборда
// @Description DTO полного состояния дашборда
type SnapshotResponse struct {
	Incidents  []IncidentResponse `json:"incidents"`
	Dispatches []DispatchResponse `json:"dispatches"`
	Resources  ResourcesResponse  `json:"resources"`
}

// HealthResponse DTO ответа health-check
type HealthResponse struct {
	Status    string `json:"status"`
	EventSink string `json:"event_sink"`
	Error     string `json:"error,omitempty"`
}
