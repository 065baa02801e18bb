package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/flashquiz/flashquiz-api/internal/domain"
	"github.com/flashquiz/flashquiz-api/internal/platform/logger"
	"github.com/flashquiz/flashquiz-api/internal/service/auth"
	"github.com/flashquiz/flashquiz-api/internal/store"
)

// Profile is the read projection of a user's account and study state.
type Profile struct {
	User      *domain.User
	Bookmarks []uuid.UUID
	Progress  *domain.Progress
}

// UserService implements registration, login, and per-user study progress.
type UserService struct {
	users    store.UserStore
	progress store.ProgressStore
	hasher   auth.PasswordHasher
	verifier auth.PasswordVerifier
	logger   *slog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(
	users store.UserStore,
	progress store.ProgressStore,
	hasher auth.PasswordHasher,
	verifier auth.PasswordVerifier,
	logger *slog.Logger,
) *UserService {
	if users == nil {
		panic("user store cannot be nil")
	}
	if progress == nil {
		panic("progress store cannot be nil")
	}
	if hasher == nil || verifier == nil {
		panic("password hasher and verifier cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &UserService{
		users:    users,
		progress: progress,
		hasher:   hasher,
		verifier: verifier,
		logger:   logger.With(slog.String("component", "user_service")),
	}
}

// Register validates the input, hashes the password, and persists a new
// user. Returns store.ErrEmailExists or store.ErrUsernameExists when the
// account is already taken.
func (s *UserService) Register(
	ctx context.Context,
	username, email, password string,
) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := domain.NewUser(username, email, password)
	if err != nil {
		return nil, err
	}

	hashed, err := s.hasher.Hash(user.Password)
	if err != nil {
		log.Error("failed to hash password", slog.String("error", err.Error()))
		return nil, err
	}
	user.HashedPassword = hashed
	user.Password = ""

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	log.Info("user registered",
		slog.String("user_id", user.ID.String()),
		slog.String("username", user.Username))
	return user, nil
}

// Login verifies the credentials and returns the user. Unknown email and
// wrong password both produce ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := s.verifier.Compare(user.HashedPassword, password); err != nil {
		log.Debug("password mismatch on login",
			slog.String("user_id", user.ID.String()))
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// GetByID returns the user for the given ID.
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

// Profile returns the user's account details together with their bookmark
// and known/unknown card sets.
func (s *UserService) Profile(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	bookmarks, err := s.progress.GetBookmarks(ctx, userID)
	if err != nil {
		return nil, err
	}

	progress, err := s.progress.GetProgress(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &Profile{User: user, Bookmarks: bookmarks, Progress: progress}, nil
}

// ToggleBookmark flips the bookmark state of the card for the user and
// returns the resulting bookmark set. The user must exist.
func (s *UserService) ToggleBookmark(
	ctx context.Context,
	userID, cardID uuid.UUID,
) ([]uuid.UUID, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.progress.ToggleBookmark(ctx, userID, cardID)
}

// SetProgress marks the card known or unknown for the user and returns the
// resulting progress. The user must exist.
func (s *UserService) SetProgress(
	ctx context.Context,
	userID, cardID uuid.UUID,
	known bool,
) (*domain.Progress, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.progress.SetProgress(ctx, userID, cardID, known)
}

// GetProgress returns the user's known/unknown sets. The user must exist.
func (s *UserService) GetProgress(
	ctx context.Context,
	userID uuid.UUID,
) (*domain.Progress, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.progress.GetProgress(ctx, userID)
}

// GetBookmarks returns the user's bookmarked card IDs. The user must exist.
func (s *UserService) GetBookmarks(
	ctx context.Context,
	userID uuid.UUID,
) ([]uuid.UUID, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.progress.GetBookmarks(ctx, userID)
}
