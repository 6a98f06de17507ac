package dto

import "github.com/google/uuid"

type CompetenceResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type CategoryResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type CategoryGroupResponse struct {
	ID          *uuid.UUID           `json:"id,omitempty"`
	Name        string               `json:"name"`
	Competences []CompetenceResponse `json:"competences"`
}
