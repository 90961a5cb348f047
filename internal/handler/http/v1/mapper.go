package v1

import "github.com/shenikar/ems_dispatch_system/internal/models"

// ModelToIncidentResponse преобразует доменную модель в DTO для ответа
func ModelToIncidentResponse(model *models.Incident) *IncidentResponse {
	return &IncidentResponse{
		ID:                   model.ID,
		DeviceID:             model.DeviceID,
		Status:               string(model.Status),
		Mode:                 string(model.Mode),
		Latitude:             model.Latitude,
		Longitude:            model.Longitude,
		AmbulanceID:          model.AmbulanceID,
		HospitalID:           model.HospitalID,
		ConfirmationDeadline: model.ConfirmationDeadline,
		NoAmbulanceAvailable: model.NoAmbulanceAvailable,
		CreatedAt:            model.CreatedAt,
		ConfirmedAt:          model.ConfirmedAt,
		ResolvedAt:           model.ResolvedAt,
		UpdatedAt:            model.UpdatedAt,
	}
}

// ModelsToIncidentResponses преобразует слайс моделей в слайс DTO
func ModelsToIncidentResponses(incidents []*models.Incident) []*IncidentResponse {
	responses := make([]*IncidentResponse, len(incidents))
	for i, model := range incidents {
		responses[i] = ModelToIncidentResponse(model)
	}
	return responses
}

// ModelToAmbulanceResponse преобразует доменную модель машины в DTO
func ModelToAmbulanceResponse(model *models.Ambulance) *AmbulanceResponse {
	return &AmbulanceResponse{
		ID:        model.ID,
		CallSign:  model.CallSign,
		Latitude:  model.Latitude,
		Longitude: model.Longitude,
		Status:    string(model.Status),
		UpdatedAt: model.UpdatedAt,
	}
}

// ModelsToAmbulanceResponses преобразует слайс моделей машин в слайс DTO
func ModelsToAmbulanceResponses(ambulances []*models.Ambulance) []*AmbulanceResponse {
	responses := make([]*AmbulanceResponse, len(ambulances))
	for i, model := range ambulances {
		responses[i] = ModelToAmbulanceResponse(model)
	}
	return responses
}

// ModelToLogResponse преобразует запись журнала в DTO
func ModelToLogResponse(model *models.IncidentLog) *IncidentLogResponse {
	return &IncidentLogResponse{
		ID:         model.ID,
		IncidentID: model.IncidentID,
		Action:     model.Action,
		ActorKind:  string(model.Actor.Kind),
		ActorRef:   model.Actor.Ref,
		Note:       model.Note,
		CreatedAt:  model.CreatedAt,
	}
}

// ModelsToLogResponses преобразует слайс записей журнала в слайс DTO
func ModelsToLogResponses(entries []*models.IncidentLog) []*IncidentLogResponse {
	responses := make([]*IncidentLogResponse, len(entries))
	for i, model := range entries {
		responses[i] = ModelToLogResponse(model)
	}
	return responses
}
