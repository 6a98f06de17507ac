package dto

import "github.com/google/uuid"

type SlotResponse struct {
	ID             uuid.UUID `json:"id"`
	Date           string    `json:"date"`
	OwnerName      string    `json:"owner_name"`
	CompetenceID   uuid.UUID `json:"competence_id"`
	CompetenceName string    `json:"competence_name"`
	IsAvailable    bool      `json:"is_available"`
	Purpose        string    `json:"purpose"`
}

type CreatedSlotResponse struct {
	SlotID     uuid.UUID  `json:"slot_id"`
	ActivityID *uuid.UUID `json:"activity_id,omitempty"`
}
