package api

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/flashquiz/flashquiz-api/internal/api/shared"
	"github.com/flashquiz/flashquiz-api/internal/domain"
	"github.com/flashquiz/flashquiz-api/internal/platform/logger"
	"github.com/flashquiz/flashquiz-api/internal/service"
	"github.com/flashquiz/flashquiz-api/internal/service/auth"
)

// UserHandler handles account and per-user study progress HTTP requests.
type UserHandler struct {
	userService *service.UserService
	jwtService  auth.JWTService
	logger      *slog.Logger
}

// NewUserHandler creates a new UserHandler with its dependencies.
func NewUserHandler(
	userService *service.UserService,
	jwtService auth.JWTService,
	logger *slog.Logger,
) *UserHandler {
	if userService == nil {
		panic("user service cannot be nil")
	}
	if jwtService == nil {
		panic("jwt service cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &UserHandler{
		userService: userService,
		jwtService:  jwtService,
		logger:      logger.With(slog.String("component", "user_handler")),
	}
}

// Register handles POST /api/users/register. A successful registration
// returns the new account together with a token pair.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req RegisterRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	user, err := h.userService.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to register user")
		return
	}

	resp, err := h.authResponse(r, user.ID, user.Username, user.Email)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to generate tokens")
		return
	}

	log.Info("user registered", slog.String("user_id", user.ID.String()))
	shared.RespondWithData(w, r, http.StatusCreated, resp)
}

// Login handles POST /api/users/login.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	user, err := h.userService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to log in")
		return
	}

	resp, err := h.authResponse(r, user.ID, user.Username, user.Email)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to generate tokens")
		return
	}

	shared.RespondWithData(w, r, http.StatusOK, resp)
}

// Refresh handles POST /api/users/refresh, exchanging a valid refresh
// token for a fresh token pair.
func (h *UserHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshTokenRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	claims, err := h.jwtService.ValidateRefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	user, err := h.userService.GetByID(r.Context(), claims.UserID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to refresh tokens")
		return
	}

	resp, err := h.authResponse(r, user.ID, user.Username, user.Email)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to generate tokens")
		return
	}

	shared.RespondWithData(w, r, http.StatusOK, resp)
}

// Profile handles GET /api/users/profile, returning the account details
// with the bookmark and known/unknown sets.
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserIDFromContext(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	profile, err := h.userService.Profile(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load profile")
		return
	}

	shared.RespondWithData(w, r, http.StatusOK, ProfileResponse{
		ID:        profile.User.ID,
		Username:  profile.User.Username,
		Email:     profile.User.Email,
		Bookmarks: profile.Bookmarks,
		Known:     profile.Progress.Known,
		Unknown:   profile.Progress.Unknown,
	})
}

// ToggleBookmark handles POST /api/users/bookmarks, flipping the bookmark
// state of a card and returning the resulting bookmark set.
func (h *UserHandler) ToggleBookmark(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserIDFromContext(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req BookmarkRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	cardID, err := uuid.Parse(req.CardID)
	if err != nil {
		HandleAPIError(w, r, domain.NewValidationError("cardId", "must be a valid UUID", domain.ErrInvalidID), "")
		return
	}

	bookmarks, err := h.userService.ToggleBookmark(r.Context(), userID, cardID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to toggle bookmark")
		return
	}

	shared.RespondWithData(w, r, http.StatusOK, map[string][]uuid.UUID{
		"bookmarks": bookmarks,
	})
}

// GetBookmarks handles GET /api/users/bookmarks.
func (h *UserHandler) GetBookmarks(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserIDFromContext(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	bookmarks, err := h.userService.GetBookmarks(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load bookmarks")
		return
	}

	shared.RespondWithData(w, r, http.StatusOK, map[string][]uuid.UUID{
		"bookmarks": bookmarks,
	})
}

// UpdateProgress handles POST /api/users/progress, marking a card known or
// unknown. The two sets stay mutually exclusive.
func (h *UserHandler) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserIDFromContext(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req ProgressRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	cardID, err := uuid.Parse(req.CardID)
	if err != nil {
		HandleAPIError(w, r, domain.NewValidationError("cardId", "must be a valid UUID", domain.ErrInvalidID), "")
		return
	}

	progress, err := h.userService.SetProgress(r.Context(), userID, cardID, *req.IsKnown)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update progress")
		return
	}

	shared.RespondWithData(w, r, http.StatusOK, progress)
}

// GetProgress handles GET /api/users/progress.
func (h *UserHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserIDFromContext(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	progress, err := h.userService.GetProgress(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load progress")
		return
	}

	shared.RespondWithData(w, r, http.StatusOK, progress)
}

// authResponse builds the auth payload with a fresh access/refresh token
// pair for the user.
func (h *UserHandler) authResponse(
	r *http.Request,
	userID uuid.UUID,
	username, email string,
) (AuthResponse, error) {
	token, err := h.jwtService.GenerateToken(r.Context(), userID)
	if err != nil {
		return AuthResponse{}, err
	}
	refreshToken, err := h.jwtService.GenerateRefreshToken(r.Context(), userID)
	if err != nil {
		return AuthResponse{}, err
	}
	return AuthResponse{
		ID:           userID,
		Username:     username,
		Email:        email,
		Token:        token,
		RefreshToken: refreshToken,
	}, nil
}
