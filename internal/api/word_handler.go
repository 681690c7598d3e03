package api

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/smashenglish/review-api/internal/api/shared"
	"github.com/smashenglish/review-api/internal/domain"
	"github.com/smashenglish/review-api/internal/platform/logger"
	"github.com/smashenglish/review-api/internal/store"
)

// WordHandler handles word management API requests.
type WordHandler struct {
	wordStore store.WordStore
	validator *validator.Validate
	logger    *slog.Logger
}

// NewWordHandler creates a new WordHandler with the given dependencies.
func NewWordHandler(wordStore store.WordStore, logger *slog.Logger) *WordHandler {
	if wordStore == nil {
		panic("wordStore cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &WordHandler{
		wordStore: wordStore,
		validator: validator.New(),
		logger:    logger.With(slog.String("component", "word_handler")),
	}
}

// CreateWord handles POST /words. A saved word starts unreviewed and is
// eligible for the next unlocked daily queue.
func (h *WordHandler) CreateWord(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		log.Warn("user ID not found in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req CreateWordRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	word, err := domain.NewWord(userID, req.Term, req.Content)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid word data: "+err.Error())
		return
	}

	if err := h.wordStore.Create(r.Context(), word); err != nil {
		log.Error("failed to create word",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		HandleAPIError(w, r, err, "Failed to save word")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, NewWordResponse(word))
}
