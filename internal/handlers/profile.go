package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/HammerMeetNail/fittrack/internal/models"
	"github.com/HammerMeetNail/fittrack/internal/services"
)

type ProfileHandler struct {
	userService services.UserServiceInterface
	now         func() time.Time
}

func NewProfileHandler(userService services.UserServiceInterface) *ProfileHandler {
	return &ProfileHandler{userService: userService, now: time.Now}
}

type ProfileView struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Age            *int      `json:"age"`
	DateOfBirth    *string   `json:"dateOfBirth"`
	Weight         *float64  `json:"weight"`
	StartingWeight *float64  `json:"startingWeight"`
	Height         *float64  `json:"height"`
	CalorieGoal    *int      `json:"calorieGoal"`
	WeightGoal     *float64  `json:"weightGoal"`
}

type ProfileResponse struct {
	Envelope
	User *ProfileView `json:"user,omitempty"`
}

type UpdateProfileRequest struct {
	Age         *int     `json:"age" validate:"omitempty,gte=1,lte=150"`
	DateOfBirth *string  `json:"dateOfBirth" validate:"omitempty,datetime=2006-01-02"`
	Weight      *float64 `json:"weight" validate:"omitempty,gt=0,lt=10000"`
	Height      *float64 `json:"height" validate:"omitempty,gt=0,lt=1000"`
	CalorieGoal *int     `json:"calorieGoal" validate:"omitempty,gt=0,lt=1000000"`
}

type UpdateGoalsRequest struct {
	CalorieGoal *int     `json:"calorieGoal" validate:"omitempty,gt=0,lt=1000000"`
	WeightGoal  *float64 `json:"weightGoal" validate:"omitempty,gt=0,lt=10000"`
}

func newProfileView(u *models.User) *ProfileView {
	view := &ProfileView{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		Age:            u.Age,
		Weight:         u.Weight,
		StartingWeight: u.StartingWeight,
		Height:         u.Height,
		CalorieGoal:    u.CalorieGoal,
		WeightGoal:     u.WeightGoal,
	}
	if u.DateOfBirth != nil {
		dob := u.DateOfBirth.Format(models.DateLayout)
		view.DateOfBirth = &dob
	}
	return view
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, authed := requireUser(w, r)
	if !authed {
		return
	}

	user, err := h.userService.GetByID(r.Context(), userID)
	if errors.Is(err, services.ErrUserNotFound) {
		writeError(w, http.StatusNotFound, KindUserNotFound, "User not found")
		return
	}
	if err != nil {
		writeServerError(w, r, "Get profile error", err)
		return
	}

	writeJSON(w, http.StatusOK, ProfileResponse{Envelope: ok(""), User: newProfileView(user)})
}

// Update saves the profile form. A submitted weight also becomes today's weight
// entry and the statistics baseline, written together with the profile.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, authed := requireUser(w, r)
	if !authed {
		return
	}

	var req UpdateProfileRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	params := models.UpdateProfileParams{
		Age:         req.Age,
		Weight:      req.Weight,
		Height:      req.Height,
		CalorieGoal: req.CalorieGoal,
		WeightDay:   h.now(),
	}
	if req.DateOfBirth != nil {
		dob, err := models.ParseDay(*req.DateOfBirth)
		if err != nil {
			writeError(w, http.StatusBadRequest, KindValidation, "dateOfBirth must be a date in YYYY-MM-DD format")
			return
		}
		params.DateOfBirth = &dob
	}

	err := h.userService.UpdateProfile(r.Context(), userID, params)
	if errors.Is(err, services.ErrUserNotFound) {
		writeError(w, http.StatusNotFound, KindUserNotFound, "User not found")
		return
	}
	if errors.Is(err, services.ErrInvalidValue) {
		writeError(w, http.StatusBadRequest, KindValidation, "weight must be greater than 0 and less than 10000")
		return
	}
	if err != nil {
		writeServerError(w, r, "Update profile error", err)
		return
	}

	writeJSON(w, http.StatusOK, ok("Profile updated successfully"))
}

func (h *ProfileHandler) UpdateGoals(w http.ResponseWriter, r *http.Request) {
	userID, authed := requireUser(w, r)
	if !authed {
		return
	}

	var req UpdateGoalsRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	err := h.userService.UpdateGoals(r.Context(), userID, models.UpdateGoalsParams{
		CalorieGoal: req.CalorieGoal,
		WeightGoal:  req.WeightGoal,
	})
	if errors.Is(err, services.ErrUserNotFound) {
		writeError(w, http.StatusNotFound, KindUserNotFound, "User not found")
		return
	}
	if err != nil {
		writeServerError(w, r, "Update goals error", err)
		return
	}

	writeJSON(w, http.StatusOK, ok("Goals updated successfully"))
}
