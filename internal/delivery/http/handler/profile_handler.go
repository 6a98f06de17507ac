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

type ProfileHandler struct {
	uc usecase.ProfileUsecase
}

type setCompetencesRequest struct {
	CompetenceIDs []uuid.UUID `json:"competence_ids"`
}

func NewProfileHandler(uc usecase.ProfileUsecase) *ProfileHandler {
	return &ProfileHandler{uc: uc}
}

func (h *ProfileHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	grp := r.Group("/me/competences")
	grp.Get("/", h.List)
	grp.Put("/", h.Set)
}

func (h *ProfileHandler) List(c fiber.Ctx) error {
	userID, ok := c.Locals(middleware.CtxUserIDKey).(uuid.UUID)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	items, err := h.uc.ListOwnedCompetences(c.Context(), userID)
	if err != nil {
		return mapProfileUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, toCompetenceResponses(items))
}

func (h *ProfileHandler) Set(c fiber.Ctx) error {
	userID, ok := c.Locals(middleware.CtxUserIDKey).(uuid.UUID)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	var req setCompetencesRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	items, err := h.uc.SetOwnedCompetences(c.Context(), userID, req.CompetenceIDs)
	if err != nil {
		return mapProfileUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, toCompetenceResponses(items))
}

func toCompetenceResponses(items []usecase.CompetenceItem) []dto.CompetenceResponse {
	res := make([]dto.CompetenceResponse, 0, len(items))
	for _, it := range items {
		res = append(res, dto.CompetenceResponse{ID: it.ID, Name: it.Name})
	}
	return res
}

func mapProfileUsecaseError(err error) error {
	switch {
	case errors.Is(err, usecase.ErrNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Unknown competence", nil, err)
	case errors.Is(err, usecase.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
