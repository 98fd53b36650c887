package handler

import (
	"visitflow/internal/audit"
	"visitflow/internal/visit/models"
	"visitflow/internal/visit/service/checkpoint"
	id "visitflow/pkg/domain"
)

// RegisterCheckpointResponse is returned by POST /checkpoints.
type RegisterCheckpointResponse struct {
	Record          *models.CheckpointRecord `json:"record"`
	Transitions     []models.Transition      `json:"transitions"`
	EvaluationError string                   `json:"evaluation_error,omitempty"`
}

func fromRegisterResult(result *checkpoint.RegisterResult) RegisterCheckpointResponse {
	resp := RegisterCheckpointResponse{
		Record:      result.Record,
		Transitions: result.Transitions,
	}
	if resp.Transitions == nil {
		resp.Transitions = []models.Transition{}
	}
	if result.EvaluationErr != nil {
		resp.EvaluationError = "compliance evaluation failed; the checkpoint was recorded"
	}
	return resp
}

// RouteViolationResponse is the 422 body of a rejected checkpoint.
type RouteViolationResponse struct {
	Error            string          `json:"error"`
	ErrorDescription string          `json:"error_description"`
	AllowedPavilions []id.PavilionID `json:"allowed_pavilions"`
}

// OverdueResponse is returned by GET /overdue.
type OverdueResponse struct {
	Count  int                   `json:"count"`
	Visits []models.OverdueVisit `json:"visits"`
}

// AuditResponse is returned by GET /visitors/{id}/audit.
type AuditResponse struct {
	Events []audit.Event `json:"events"`
}

// nonNil keeps empty collections rendering as [] rather than null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
