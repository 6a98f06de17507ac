package handler

import (
	"competence-exchange/internal/delivery/http/dto"
	"competence-exchange/internal/delivery/http/middleware"
	"competence-exchange/internal/pkg/response"
	"competence-exchange/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type CompetenceHandler struct {
	uc usecase.CompetenceUsecase
}

func NewCompetenceHandler(uc usecase.CompetenceUsecase) *CompetenceHandler {
	return &CompetenceHandler{uc: uc}
}

func (h *CompetenceHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/competences", h.ListCatalog)
	r.Get("/categories", h.ListCategories)
}

func (h *CompetenceHandler) ListCatalog(c fiber.Ctx) error {
	groups, err := h.uc.ListCatalog(c.Context())
	if err != nil {
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}

	res := make([]dto.CategoryGroupResponse, 0, len(groups))
	for _, g := range groups {
		res = append(res, toCategoryGroupResponse(g))
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, res)
}

func (h *CompetenceHandler) ListCategories(c fiber.Ctx) error {
	cats, err := h.uc.ListCategories(c.Context())
	if err != nil {
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}

	res := make([]dto.CategoryResponse, 0, len(cats))
	for _, cat := range cats {
		res = append(res, dto.CategoryResponse{ID: cat.ID, Name: cat.Name})
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, res)
}

func toCategoryGroupResponse(g usecase.CategoryGroup) dto.CategoryGroupResponse {
	comps := make([]dto.CompetenceResponse, 0, len(g.Competences))
	for _, cmp := range g.Competences {
		comps = append(comps, dto.CompetenceResponse{ID: cmp.ID, Name: cmp.Name})
	}
	return dto.CategoryGroupResponse{ID: g.ID, Name: g.Name, Competences: comps}
}
