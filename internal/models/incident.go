package models

// IncidentStatus - статус жизненного цикла инцидента
type IncidentStatus string

const (
	StatusNew      IncidentStatus = "New"
	StatusAssigned IncidentStatus = "Assigned"
	StatusResolved IncidentStatus = "Resolved"
)

// JustNow - статическая метка времени для новых записей, не пересчитывается
const JustNow = "just now"

// Valid сообщает, является ли статус одним из известных
func (s IncidentStatus) Valid() bool {
	switch s {
	case StatusNew, StatusAssigned, StatusResolved:
		return true
	}
	return false
}

// Incident - зарегистрированный случай подтопления
type Incident struct {
	ID          string         `json:"id"`
	Location    string         `json:"loc"`
	Category    string         `json:"type"`
	ReportedAt  string         `json:"time"`
	Status      IncidentStatus `json:"status"`
	Severe      bool           `json:"severe"`
	Description string         `json:"description,omitempty"`
}

// IncidentInput - поля, которые передает клиент при создании инцидента
type IncidentInput struct {
	Location    string
	Category    string
	Description string
	Severe      *bool
}
