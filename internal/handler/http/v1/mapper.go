package v1

import "github.com/shenikar/flood_dispatch_system/internal/models"

// DTOToIncidentInput преобразует данные запроса в доменный ввод.
// data.severe имеет приоритет над флагом severe верхнего уровня.
func DTOToIncidentInput(data IncidentData, severe *bool) models.IncidentInput {
	in := models.IncidentInput{
		Location:    data.Location,
		Category:    data.Category,
		Description: data.Description,
		Severe:      severe,
	}
	if data.Severe != nil {
		in.Severe = data.Severe
	}
	return in
}

// ModelToIncidentResponse преобразует доменную модель в DTO для ответа
func ModelToIncidentResponse(model models.Incident) IncidentResponse {
	return IncidentResponse{
		ID:          model.ID,
		Location:    model.Location,
		Category:    model.Category,
		Time:        model.ReportedAt,
		Status:      string(model.Status),
		Severe:      model.Severe,
		Description: model.Description,
	}
}

// ModelsToIncidentResponses преобразует слайс моделей в слайс DTO
func ModelsToIncidentResponses(incidents []models.Incident) []IncidentResponse {
	responses := make([]IncidentResponse, len(incidents))
	for i, model := range incidents {
		responses[i] = ModelToIncidentResponse(model)
	}
	return responses
}

func ModelsToDispatchResponses(dispatches []models.Dispatch) []DispatchResponse {
	responses := make([]DispatchResponse, len(dispatches))
	for i, d := range dispatches {
		responses[i] = DispatchResponse{
			ID:        d.ID,
			Team:      d.Team,
			Action:    d.Action,
			ETA:       d.ETA,
			Timestamp: d.CreatedAt,
		}
	}
	return responses
}

func ModelToResourcesResponse(res models.Resources) ResourcesResponse {
	return ResourcesResponse{
		HeavyPumps:     PoolResponse(res.HeavyPumps),
		SuctionTankers: PoolResponse(res.SuctionTankers),
		ResponseTeams:  PoolResponse(res.ResponseTeams),
	}
}

// ModelToSnapshotResponse преобразует снимок леджера в DTO дашборда
func ModelToSnapshotResponse(snap models.Snapshot) SnapshotResponse {
	return SnapshotResponse{
		Incidents:  ModelsToIncidentResponses(snap.Incidents),
		Dispatches: ModelsToDispatchResponses(snap.Dispatches),
		Resources:  ModelToResourcesResponse(snap.Resources),
	}
}
