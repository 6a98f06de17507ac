package handler

import (
	"errors"

	"competence-exchange/internal/delivery/http/dto"
	"competence-exchange/internal/delivery/http/middleware"
	"competence-exchange/internal/pkg/response"
	"competence-exchange/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type ActivityHandler struct {
	uc usecase.ActivityUsecase
}

func NewActivityHandler(uc usecase.ActivityUsecase) *ActivityHandler {
	return &ActivityHandler{uc: uc}
}

func (h *ActivityHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	grp := r.Group("/activities")
	grp.Get("/matching", h.Matching)
	grp.Get("/mine", h.Mine)
	grp.Post("/:id/volunteer", h.Volunteer)
	grp.Get("/:id/contact", h.Contact)
}

func (h *ActivityHandler) Matching(c fiber.Ctx) error {
	userID, ok := c.Locals(middleware.CtxUserIDKey).(uuid.UUID)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	items, err := h.uc.ListMatching(c.Context(), userID)
	if err != nil {
		return mapActivityUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, toActivityResponses(items))
}

func (h *ActivityHandler) Mine(c fiber.Ctx) error {
	userID, ok := c.Locals(middleware.CtxUserIDKey).(uuid.UUID)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	items, err := h.uc.ListMine(c.Context(), userID)
	if err != nil {
		return mapActivityUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, toActivityResponses(items))
}

func (h *ActivityHandler) Volunteer(c fiber.Ctx) error {
	userID, ok := c.Locals(middleware.CtxUserIDKey).(uuid.UUID)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	activityID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	claimed, err := h.uc.Claim(c.Context(), userID, activityID)
	if err != nil {
		return mapActivityUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, toActivityResponse(claimed))
}

func (h *ActivityHandler) Contact(c fiber.Ctx) error {
	userID, ok := c.Locals(middleware.CtxUserIDKey).(uuid.UUID)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	activityID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	info, err := h.uc.ContactInfo(c.Context(), userID, activityID)
	if err != nil {
		return mapActivityUsecaseError(err)
	}

	res := dto.ContactResponse{ActivityID: info.ActivityID, Matched: info.Matched}
	if info.Counterpart != nil {
		res.Counterpart = &dto.ContactPartyResponse{
			ID:          info.Counterpart.ID,
			DisplayName: info.Counterpart.DisplayName,
			Email:       info.Counterpart.Email,
			Phone:       info.Counterpart.Phone,
		}
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, res)
}

func toActivityResponses(items []usecase.ActivityItem) []dto.ActivityResponse {
	res := make([]dto.ActivityResponse, 0, len(items))
	for _, it := range items {
		res = append(res, toActivityResponse(it))
	}
	return res
}

func toActivityResponse(it usecase.ActivityItem) dto.ActivityResponse {
	return dto.ActivityResponse{
		ID:             it.ID,
		Description:    it.Description,
		RequesterName:  it.RequesterName,
		CompetenceID:   it.CompetenceID,
		CompetenceName: it.CompetenceName,
		SlotID:         it.SlotID,
		SlotDate:       it.SlotDate,
		VolunteerID:    it.VolunteerID,
		Claimable:      it.Claimable,
	}
}

func mapActivityUsecaseError(err error) error {
	switch {
	case errors.Is(err, usecase.ErrForbidden):
		return middleware.NewAppError(fiber.StatusForbidden, response.MessageForbidden, nil, err)
	case errors.Is(err, usecase.ErrConflict):
		return middleware.NewAppError(fiber.StatusConflict, "No longer available", nil, err)
	case errors.Is(err, usecase.ErrNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Activity not found", nil, err)
	case errors.Is(err, usecase.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
