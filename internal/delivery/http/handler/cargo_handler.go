package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"cargo-transport/internal/usecase/cargo"
	"cargo-transport/pkg/utils"
)

type CargoHandler struct {
	service *cargo.Service
}

func NewCargoHandler(service *cargo.Service) *CargoHandler {
	return &CargoHandler{service: service}
}

func (h *CargoHandler) RegisterRoutes(router *gin.RouterGroup) {
	cargos := router.Group("/cargos")
	{
		cargos.POST("", h.CreateCargo)
		cargos.GET("", h.ListCargos)
		cargos.GET("/:id", h.GetCargo)
		cargos.PUT("/:id", h.UpdateCargo)
		cargos.DELETE("/:id", h.DeleteCargo)
	}
}

func (h *CargoHandler) CreateCargo(c *gin.Context) {
	var req cargo.CreateCargoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.service.CreateCargo(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Cargo created successfully", resp)
}

func (h *CargoHandler) GetCargo(c *gin.Context) {
	cargoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid cargo ID")
		return
	}

	resp, err := h.service.GetCargo(c.Request.Context(), cargoID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Cargo retrieved successfully", resp)
}

func (h *CargoHandler) ListCargos(c *gin.Context) {
	if raw := c.Query("client_id"); raw != "" {
		clientID, err := uuid.Parse(raw)
		if err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "Invalid client ID")
			return
		}
		resp, err := h.service.ListCargosByClient(c.Request.Context(), clientID)
		if err != nil {
			respondError(c, err)
			return
		}
		utils.SuccessResponse(c, http.StatusOK, "Cargos retrieved successfully", resp)
		return
	}

	resp, err := h.service.ListCargos(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Cargos retrieved successfully", resp)
}

func (h *CargoHandler) UpdateCargo(c *gin.Context) {
	cargoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid cargo ID")
		return
	}

	var req cargo.UpdateCargoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.service.UpdateCargo(c.Request.Context(), cargoID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Cargo updated successfully", resp)
}

func (h *CargoHandler) DeleteCargo(c *gin.Context) {
	cargoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid cargo ID")
		return
	}

	if err := h.service.DeleteCargo(c.Request.Context(), cargoID); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Cargo deleted successfully", nil)
}
