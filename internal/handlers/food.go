package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/HammerMeetNail/fittrack/internal/models"
	"github.com/HammerMeetNail/fittrack/internal/services"
)

type FoodHandler struct {
	foodService services.FoodServiceInterface
}

func NewFoodHandler(foodService services.FoodServiceInterface) *FoodHandler {
	return &FoodHandler{foodService: foodService}
}

type CreateFoodRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Calories int    `json:"calories" validate:"gt=0,lt=1000000"`
}

type FoodListResponse struct {
	Envelope
	Foods []models.Food `json:"foods"`
}

type FoodResponse struct {
	Envelope
	Food *models.Food `json:"food,omitempty"`
}

func (h *FoodHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, authed := requireUser(w, r)
	if !authed {
		return
	}

	foods, err := h.foodService.List(r.Context(), userID)
	if err != nil {
		writeServerError(w, r, "Get foods error", err)
		return
	}

	writeJSON(w, http.StatusOK, FoodListResponse{Envelope: ok(""), Foods: foods})
}

func (h *FoodHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, authed := requireUser(w, r)
	if !authed {
		return
	}

	var req CreateFoodRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	food, err := h.foodService.Create(r.Context(), userID, strings.TrimSpace(req.Name), req.Calories)
	if errors.Is(err, services.ErrInvalidFood) {
		writeError(w, http.StatusBadRequest, KindValidation, "name and calories are required")
		return
	}
	if err != nil {
		writeServerError(w, r, "Add food error", err)
		return
	}

	writeJSON(w, http.StatusCreated, FoodResponse{Envelope: ok("Food added successfully"), Food: food})
}
