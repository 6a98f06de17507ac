package dto

import "github.com/google/uuid"

type ActivityResponse struct {
	ID             uuid.UUID  `json:"id"`
	Description    string     `json:"description"`
	RequesterName  string     `json:"requester_name"`
	CompetenceID   uuid.UUID  `json:"competence_id"`
	CompetenceName string     `json:"competence_name"`
	SlotID         uuid.UUID  `json:"slot_id"`
	SlotDate       string     `json:"slot_date"`
	VolunteerID    *uuid.UUID `json:"volunteer_id,omitempty"`
	Claimable      bool       `json:"claimable"`
}

type ContactPartyResponse struct {
	ID          uuid.UUID `json:"id"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email"`
	Phone       *string   `json:"phone,omitempty"`
}

type ContactResponse struct {
	ActivityID  uuid.UUID             `json:"activity_id"`
	Matched     bool                  `json:"matched"`
	Counterpart *ContactPartyResponse `json:"counterpart,omitempty"`
}
