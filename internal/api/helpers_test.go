package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/flashquiz/flashquiz-api/internal/api/middleware"
	"github.com/flashquiz/flashquiz-api/internal/api/shared"
	"github.com/flashquiz/flashquiz-api/internal/domain"
	"github.com/flashquiz/flashquiz-api/internal/service"
	"github.com/flashquiz/flashquiz-api/internal/service/auth"
	"github.com/flashquiz/flashquiz-api/internal/store"
)

// memCardStore is an in-memory CardStore for handler tests.
type memCardStore struct {
	mu    sync.Mutex
	cards map[uuid.UUID]*domain.Card
}

func newMemCardStore() *memCardStore {
	return &memCardStore{cards: make(map[uuid.UUID]*domain.Card)}
}

var _ store.CardStore = (*memCardStore)(nil)

func (m *memCardStore) Create(ctx context.Context, card *domain.Card) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *card
	m.cards[card.ID] = &copied
	return nil
}

func (m *memCardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	card, ok := m.cards[id]
	if !ok {
		return nil, store.ErrCardNotFound
	}
	copied := *card
	return &copied, nil
}

func (m *memCardStore) Update(ctx context.Context, card *domain.Card) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.cards[card.ID]; !ok {
		return store.ErrCardNotFound
	}
	copied := *card
	m.cards[card.ID] = &copied
	return nil
}

func (m *memCardStore) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.cards[id]; !ok {
		return store.ErrCardNotFound
	}
	delete(m.cards, id)
	return nil
}

func (m *memCardStore) List(
	ctx context.Context,
	query store.CardQuery,
) ([]*domain.Card, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []*domain.Card
	for _, card := range m.cards {
		if query.PublicOnly && !card.IsPublic {
			continue
		}
		if query.OwnerID != nil &&
			(card.CreatedBy == nil || *card.CreatedBy != *query.OwnerID) {
			continue
		}
		if query.Topic != "" && card.Topic != query.Topic {
			continue
		}
		if query.Category != "" && card.Category != query.Category {
			continue
		}
		if query.Difficulty != "" && string(card.Difficulty) != query.Difficulty {
			continue
		}
		if query.Keyword != "" &&
			!strings.Contains(strings.ToLower(card.Question), strings.ToLower(query.Keyword)) &&
			!strings.Contains(strings.ToLower(card.Answer), strings.ToLower(query.Keyword)) {
			continue
		}
		copied := *card
		matched = append(matched, &copied)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].ID.String() < matched[j].ID.String()
	})

	total := int64(len(matched))
	start := query.Offset()
	if start > len(matched) {
		return []*domain.Card{}, total, nil
	}
	end := start + query.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (m *memCardStore) Random(ctx context.Context, query store.CardQuery) (*domain.Card, error) {
	cards, _, err := m.List(ctx, query.Normalize())
	if err != nil {
		return nil, err
	}
	if len(cards) == 0 {
		return nil, store.ErrCardNotFound
	}
	return cards[0], nil
}

func (m *memCardStore) IncrementViewCount(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	card, ok := m.cards[id]
	if !ok {
		return store.ErrCardNotFound
	}
	card.ViewCount++
	return nil
}

func (m *memCardStore) RecordAttempt(ctx context.Context, id uuid.UUID, correct bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	card, ok := m.cards[id]
	if !ok {
		return store.ErrCardNotFound
	}
	if correct {
		card.CorrectCount++
	} else {
		card.IncorrectCount++
	}
	return nil
}

// memUserStore is an in-memory UserStore for handler tests.
type memUserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[uuid.UUID]*domain.User)}
}

var _ store.UserStore = (*memUserStore)(nil)

func (m *memUserStore) Create(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == user.Email {
			return store.ErrEmailExists
		}
		if existing.Username == user.Username {
			return store.ErrUsernameExists
		}
	}
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func (m *memUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (m *memUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, store.ErrUserNotFound
}

// memProgressStore is an in-memory ProgressStore for handler tests.
type memProgressStore struct {
	mu        sync.Mutex
	bookmarks map[uuid.UUID][]uuid.UUID
	known     map[uuid.UUID]map[uuid.UUID]bool
}

func newMemProgressStore() *memProgressStore {
	return &memProgressStore{
		bookmarks: make(map[uuid.UUID][]uuid.UUID),
		known:     make(map[uuid.UUID]map[uuid.UUID]bool),
	}
}

var _ store.ProgressStore = (*memProgressStore)(nil)

func (m *memProgressStore) ToggleBookmark(
	ctx context.Context,
	userID, cardID uuid.UUID,
) ([]uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	set := m.bookmarks[userID]
	for i, id := range set {
		if id == cardID {
			m.bookmarks[userID] = append(set[:i], set[i+1:]...)
			return append([]uuid.UUID{}, m.bookmarks[userID]...), nil
		}
	}
	m.bookmarks[userID] = append(set, cardID)
	return append([]uuid.UUID{}, m.bookmarks[userID]...), nil
}

func (m *memProgressStore) SetProgress(
	ctx context.Context,
	userID, cardID uuid.UUID,
	known bool,
) (*domain.Progress, error) {
	m.mu.Lock()
	if m.known[userID] == nil {
		m.known[userID] = make(map[uuid.UUID]bool)
	}
	m.known[userID][cardID] = known
	m.mu.Unlock()
	return m.GetProgress(ctx, userID)
}

func (m *memProgressStore) GetProgress(
	ctx context.Context,
	userID uuid.UUID,
) (*domain.Progress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	progress := domain.NewProgress()
	for cardID, known := range m.known[userID] {
		if known {
			progress.Known = append(progress.Known, cardID)
		} else {
			progress.Unknown = append(progress.Unknown, cardID)
		}
	}
	return progress, nil
}

func (m *memProgressStore) GetBookmarks(
	ctx context.Context,
	userID uuid.UUID,
) ([]uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]uuid.UUID{}, m.bookmarks[userID]...), nil
}

// stubJWTService issues transparent tokens of the form "access:<uuid>" and
// "refresh:<uuid>" so handler tests can authenticate without real signing.
type stubJWTService struct{}

var _ auth.JWTService = (*stubJWTService)(nil)

func (s *stubJWTService) GenerateToken(ctx context.Context, userID uuid.UUID) (string, error) {
	return "access:" + userID.String(), nil
}

func (s *stubJWTService) GenerateRefreshToken(
	ctx context.Context,
	userID uuid.UUID,
) (string, error) {
	return "refresh:" + userID.String(), nil
}

func (s *stubJWTService) ValidateToken(
	ctx context.Context,
	tokenString string,
) (*auth.Claims, error) {
	return s.validate(tokenString, "access")
}

func (s *stubJWTService) ValidateRefreshToken(
	ctx context.Context,
	tokenString string,
) (*auth.Claims, error) {
	return s.validate(tokenString, "refresh")
}

func (s *stubJWTService) validate(tokenString, wantType string) (*auth.Claims, error) {
	parts := strings.SplitN(tokenString, ":", 2)
	if len(parts) != 2 {
		return nil, auth.ErrInvalidToken
	}
	userID, err := uuid.Parse(parts[1])
	if err != nil {
		return nil, auth.ErrInvalidToken
	}
	if parts[0] != wantType {
		return nil, auth.ErrWrongTokenType
	}
	return &auth.Claims{UserID: userID, TokenType: parts[0]}, nil
}

// testPasswordHasher keeps handler tests fast by skipping bcrypt.
type testPasswordHasher struct{}

func (testPasswordHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

type testPasswordVerifier struct{}

func (testPasswordVerifier) Compare(hashedPassword, password string) error {
	if hashedPassword != "hashed:"+password {
		return service.ErrInvalidCredentials
	}
	return nil
}

// testEnv bundles the stores and router for a handler test.
type testEnv struct {
	router    chi.Router
	cardStore *memCardStore
	userStore *memUserStore
	progress  *memProgressStore
	cards     *service.CardService
	users     *service.UserService
}

// newTestEnv builds a router with the same shape as the server's route
// table, backed by in-memory stores.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		cardStore: newMemCardStore(),
		userStore: newMemUserStore(),
		progress:  newMemProgressStore(),
	}
	env.cards = service.NewCardService(env.cardStore, nil)
	env.users = service.NewUserService(
		env.userStore, env.progress, testPasswordHasher{}, testPasswordVerifier{}, nil)

	jwtService := &stubJWTService{}
	cardHandler := NewCardHandler(env.cards, nil)
	userHandler := NewUserHandler(env.users, jwtService, nil)
	authMiddleware := middleware.NewAuthMiddleware(jwtService)

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Route("/flashcards", func(r chi.Router) {
			r.With(authMiddleware.OptionalAuthenticate).Post("/", cardHandler.Create)
			r.Get("/", cardHandler.List)
			r.Get("/search", cardHandler.Search)
			r.Get("/random", cardHandler.Random)
			r.With(authMiddleware.Authenticate).Get("/user", cardHandler.OwnCards)
			r.Get("/topic/{topic}", cardHandler.ByTopic)
			r.Get("/category/{category}", cardHandler.ByCategory)

			r.Get("/{id}", cardHandler.GetByID)
			r.With(authMiddleware.Authenticate).Put("/{id}", cardHandler.Update)
			r.With(authMiddleware.Authenticate).Delete("/{id}", cardHandler.Delete)
			r.With(authMiddleware.Authenticate).Post("/{id}/attempt", cardHandler.Attempt)
		})

		r.Route("/users", func(r chi.Router) {
			r.Post("/register", userHandler.Register)
			r.Post("/login", userHandler.Login)
			r.Post("/refresh", userHandler.Refresh)

			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.Authenticate)
				r.Get("/profile", userHandler.Profile)
				r.Post("/bookmarks", userHandler.ToggleBookmark)
				r.Get("/bookmarks", userHandler.GetBookmarks)
				r.Post("/progress", userHandler.UpdateProgress)
				r.Get("/progress", userHandler.GetProgress)
			})
		})
	})
	env.router = r

	return env
}

// do executes a request against the test router. token may be empty for
// anonymous requests.
func (env *testEnv) do(
	t *testing.T,
	method, target, token string,
	body interface{},
) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

// decodeEnvelope unmarshals the response body into the uniform envelope.
func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) shared.Envelope {
	t.Helper()
	var envelope shared.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope
}

// seedUser registers a user directly through the service and returns the
// user plus a valid access token for the stub JWT service.
func (env *testEnv) seedUser(t *testing.T, username, email string) (*domain.User, string) {
	t.Helper()
	user, err := env.users.Register(context.Background(), username, email, "secret123")
	require.NoError(t, err)
	return user, "access:" + user.ID.String()
}

// seedCard creates a card directly through the service.
func (env *testEnv) seedCard(
	t *testing.T,
	input service.CreateCardInput,
	createdBy *uuid.UUID,
) *domain.Card {
	t.Helper()
	card, err := env.cards.Create(context.Background(), input, createdBy)
	require.NoError(t, err)
	return card
}
