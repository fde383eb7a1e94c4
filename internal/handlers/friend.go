package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/HammerMeetNail/fittrack/internal/models"
	"github.com/HammerMeetNail/fittrack/internal/services"
)

const friendRequestNotFound = "Friend request not found or already processed"

type FriendHandler struct {
	friendService services.FriendServiceInterface
}

func NewFriendHandler(friendService services.FriendServiceInterface) *FriendHandler {
	return &FriendHandler{friendService: friendService}
}

type SendFriendRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type FriendListResponse struct {
	Envelope
	Friends []models.FriendListEntry `json:"friends"`
}

type FriendRequestResponse struct {
	Envelope
	FriendshipID uuid.UUID `json:"friendshipId"`
}

func (h *FriendHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, authed := requireUser(w, r)
	if !authed {
		return
	}

	friends, err := h.friendService.List(r.Context(), userID)
	if err != nil {
		writeServerError(w, r, "Get friends error", err)
		return
	}

	writeJSON(w, http.StatusOK, FriendListResponse{Envelope: ok(""), Friends: friends})
}

func (h *FriendHandler) SendRequest(w http.ResponseWriter, r *http.Request) {
	userID, authed := requireUser(w, r)
	if !authed {
		return
	}

	var req SendFriendRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	friendship, err := h.friendService.Request(r.Context(), userID, req.Email)
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		writeError(w, http.StatusNotFound, KindUserNotFound, "User not found")
		return
	case errors.Is(err, services.ErrCannotFriendSelf):
		writeError(w, http.StatusBadRequest, KindSelfFriendship, "Cannot add yourself as a friend")
		return
	case errors.Is(err, services.ErrFriendshipExists):
		writeError(w, http.StatusBadRequest, KindAlreadyExists, "Friendship already exists or pending")
		return
	case err != nil:
		writeServerError(w, r, "Send friend request error", err)
		return
	}

	writeJSON(w, http.StatusCreated, FriendRequestResponse{
		Envelope:     ok("Friend request sent successfully"),
		FriendshipID: friendship.ID,
	})
}

func (h *FriendHandler) Accept(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, h.friendService.Accept, "Friend request accepted")
}

func (h *FriendHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, h.friendService.Reject, "Friend request rejected")
}

// resolve runs accept or reject for a pending request addressed to the caller.
// Requests the caller sent, already-answered ones and unknown IDs all read as
// not found.
func (h *FriendHandler) resolve(w http.ResponseWriter, r *http.Request, action func(context.Context, uuid.UUID, uuid.UUID) error, message string) {
	userID, authed := requireUser(w, r)
	if !authed {
		return
	}

	friendshipID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, KindNotFound, friendRequestNotFound)
		return
	}

	err = action(r.Context(), friendshipID, userID)
	if errors.Is(err, services.ErrFriendRequestNotFound) {
		writeError(w, http.StatusNotFound, KindNotFound, friendRequestNotFound)
		return
	}
	if err != nil {
		writeServerError(w, r, "Resolve friend request error", err)
		return
	}

	writeJSON(w, http.StatusOK, ok(message))
}
