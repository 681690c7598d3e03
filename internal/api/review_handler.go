package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/smashenglish/review-api/internal/api/shared"
	"github.com/smashenglish/review-api/internal/domain"
	"github.com/smashenglish/review-api/internal/platform/logger"
	"github.com/smashenglish/review-api/internal/service/review"
)

// ReviewHandler handles review workflow API requests.
type ReviewHandler struct {
	reviewService review.ReviewService
	validator     *validator.Validate
	timeFunc      func() time.Time // Injectable for testing
	logger        *slog.Logger
}

// NewReviewHandler creates a new ReviewHandler with the given dependencies.
func NewReviewHandler(reviewService review.ReviewService, logger *slog.Logger) *ReviewHandler {
	if reviewService == nil {
		panic("reviewService cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &ReviewHandler{
		reviewService: reviewService,
		validator:     validator.New(),
		timeFunc:      func() time.Time { return time.Now().UTC() },
		logger:        logger.With(slog.String("component", "review_handler")),
	}
}

// GetDailyQueue handles GET /review/queue. The first call of the day locks
// the queue; later calls return the same word list.
func (h *ReviewHandler) GetDailyQueue(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		log.Warn("user ID not found in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	view, err := h.reviewService.GetDailyQueue(r.Context(), userID, h.timeFunc())
	if err != nil {
		log.Error("failed to get daily queue",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		HandleAPIError(w, r, err, "Failed to get daily queue")
		return
	}

	words := make([]WordResponse, len(view.Words))
	for i, word := range view.Words {
		words[i] = NewWordResponse(word)
	}

	shared.RespondWithJSON(w, r, http.StatusOK, DailyQueueResponse{
		QueueDate: view.Queue.QueueDate,
		Locked:    !view.Queue.IsEmpty(),
		Words:     words,
		Story:     view.Queue.Story,
	})
}

// SubmitReview handles POST /words/{id}/review.
func (h *ReviewHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		log.Warn("user ID not found in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	wordID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "Invalid word ID")
		return
	}

	var req SubmitReviewRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	rating, ok := domain.ParseRating(req.Rating)
	if !ok {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid rating")
		return
	}

	summary, err := h.reviewService.SubmitReview(r.Context(), userID, wordID, rating, h.timeFunc())
	if err != nil {
		// A same-day repeat is a defined outcome, not a server fault.
		if errors.Is(err, review.ErrAlreadyReviewedToday) {
			shared.RespondWithError(w, r, http.StatusConflict, "Word already reviewed today")
			return
		}

		log.Error("failed to submit review",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("word_id", wordID.String()))
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, SubmitReviewResponse{
		WordID:        summary.WordID,
		Rating:        string(summary.Rating),
		State:         string(summary.Review.State),
		Repetitions:   summary.Review.Repetitions,
		ScheduledDays: summary.Review.ScheduledDays,
		DueAt:         summary.Review.DueAt,
	})
}
