package handler

import (
	"errors"
	"time"

	"competence-exchange/internal/delivery/http/dto"
	"competence-exchange/internal/delivery/http/middleware"
	"competence-exchange/internal/pkg/response"
	"competence-exchange/internal/pkg/validation"
	"competence-exchange/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type SlotHandler struct {
	uc usecase.SlotUsecase
}

type createSlotRequest struct {
	Date         string    `json:"date" validate:"required,datetime=2006-01-02"`
	CompetenceID uuid.UUID `json:"competence_id" validate:"required"`
	Purpose      string    `json:"purpose" validate:"required,oneof=aid request"`
	Description  string    `json:"description"`
}

func NewSlotHandler(uc usecase.SlotUsecase) *SlotHandler {
	return &SlotHandler{uc: uc}
}

// RegisterPublicRoutes exposes the anonymous feed; no personal data
// beyond display names is included there.
func (h *SlotHandler) RegisterPublicRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/slots/available", h.PublicFeed)
}

func (h *SlotHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	grp := r.Group("/slots")
	grp.Post("/", h.Create)
	grp.Get("/mine", h.Mine)
	grp.Get("/help-available", h.AvailableHelp)
	grp.Delete("/:id", h.Delete)
}

func (h *SlotHandler) PublicFeed(c fiber.Ctx) error {
	items, err := h.uc.ListPublicFeed(c.Context())
	if err != nil {
		return mapSlotUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, toSlotResponses(items))
}

func (h *SlotHandler) Create(c fiber.Ctx) error {
	userID, ok := c.Locals(middleware.CtxUserIDKey).(uuid.UUID)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	var req createSlotRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}
	if err := validation.Struct(req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, err.Error(), nil, err)
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "date must be formatted as 2006-01-02", nil, err)
	}

	created, err := h.uc.CreateSlot(c.Context(), userID, usecase.CreateSlotInput{
		Date:         date,
		CompetenceID: req.CompetenceID,
		Purpose:      req.Purpose,
		Description:  req.Description,
	})
	if err != nil {
		return mapSlotUsecaseError(err)
	}

	res := dto.CreatedSlotResponse{SlotID: created.SlotID, ActivityID: created.ActivityID}
	return response.Success(c, fiber.StatusCreated, "created", res)
}

func (h *SlotHandler) Mine(c fiber.Ctx) error {
	userID, ok := c.Locals(middleware.CtxUserIDKey).(uuid.UUID)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	items, err := h.uc.ListMine(c.Context(), userID)
	if err != nil {
		return mapSlotUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, toSlotResponses(items))
}

func (h *SlotHandler) AvailableHelp(c fiber.Ctx) error {
	userID, ok := c.Locals(middleware.CtxUserIDKey).(uuid.UUID)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	items, err := h.uc.ListAvailableHelp(c.Context(), userID)
	if err != nil {
		return mapSlotUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, toSlotResponses(items))
}

func (h *SlotHandler) Delete(c fiber.Ctx) error {
	userID, ok := c.Locals(middleware.CtxUserIDKey).(uuid.UUID)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	slotID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	if err := h.uc.DeleteSlot(c.Context(), userID, slotID); err != nil {
		return mapSlotUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}

func toSlotResponses(items []usecase.SlotItem) []dto.SlotResponse {
	res := make([]dto.SlotResponse, 0, len(items))
	for _, it := range items {
		res = append(res, dto.SlotResponse{
			ID:             it.ID,
			Date:           it.Date,
			OwnerName:      it.OwnerName,
			CompetenceID:   it.CompetenceID,
			CompetenceName: it.CompetenceName,
			IsAvailable:    it.IsAvailable,
			Purpose:        it.Purpose,
		})
	}
	return res
}

func mapSlotUsecaseError(err error) error {
	switch {
	case errors.Is(err, usecase.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	case errors.Is(err, usecase.ErrNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, response.MessageNotFound, nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
