package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smashenglish/review-api/internal/api/shared"
	"github.com/smashenglish/review-api/internal/domain"
	"github.com/smashenglish/review-api/internal/service/review"
)

var handlerNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func newTestReviewHandler(svc review.ReviewService) *ReviewHandler {
	h := NewReviewHandler(svc, nil)
	h.timeFunc = func() time.Time { return handlerNow }
	return h
}

// withUser places an authenticated user ID on the request context, the way
// the auth middleware does.
func withUser(r *http.Request, userID uuid.UUID) *http.Request {
	ctx := context.WithValue(r.Context(), shared.UserIDContextKey, userID)
	return r.WithContext(ctx)
}

// withPathID attaches a chi route parameter so getPathUUID can resolve it.
func withPathID(r *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestGetDailyQueueHandler(t *testing.T) {
	userID := uuid.New()
	word, err := domain.NewWord(userID, "see", nil)
	require.NoError(t, err)
	queue, err := domain.NewDailyQueue(userID, handlerNow, []uuid.UUID{word.ID})
	require.NoError(t, err)
	queue.Story = "a tiny story"

	svc := &review.MockReviewService{
		GetDailyQueueFn: func(ctx context.Context, uid uuid.UUID, now time.Time) (*review.DailyQueueView, error) {
			assert.Equal(t, userID, uid)
			assert.True(t, now.Equal(handlerNow))
			return &review.DailyQueueView{Queue: queue, Words: []*domain.Word{word}}, nil
		},
	}
	handler := newTestReviewHandler(svc)

	req := withUser(httptest.NewRequest(http.MethodGet, "/api/review/queue", nil), userID)
	rr := httptest.NewRecorder()
	handler.GetDailyQueue(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp DailyQueueResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.Locked)
	assert.Equal(t, "a tiny story", resp.Story)
	require.Len(t, resp.Words, 1)
	assert.Equal(t, word.ID, resp.Words[0].ID)
	assert.Equal(t, "see", resp.Words[0].Term)
	assert.Equal(t, string(domain.CardStateNew), resp.Words[0].State)
}

func TestGetDailyQueueHandlerEmptyQueue(t *testing.T) {
	userID := uuid.New()
	svc := &review.MockReviewService{}
	handler := newTestReviewHandler(svc)

	req := withUser(httptest.NewRequest(http.MethodGet, "/api/review/queue", nil), userID)
	rr := httptest.NewRecorder()
	handler.GetDailyQueue(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp DailyQueueResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.False(t, resp.Locked)
	assert.Empty(t, resp.Words)
	assert.Empty(t, resp.Story)
}

func TestGetDailyQueueHandlerUnauthenticated(t *testing.T) {
	handler := newTestReviewHandler(&review.MockReviewService{})

	req := httptest.NewRequest(http.MethodGet, "/api/review/queue", nil)
	rr := httptest.NewRecorder()
	handler.GetDailyQueue(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestSubmitReviewHandler(t *testing.T) {
	userID := uuid.New()
	wordID := uuid.New()

	svc := &review.MockReviewService{
		SubmitReviewFn: func(ctx context.Context, uid, wid uuid.UUID, rating domain.Rating, now time.Time) (*review.ReviewSummary, error) {
			assert.Equal(t, userID, uid)
			assert.Equal(t, wordID, wid)
			assert.Equal(t, domain.RatingGood, rating)
			return &review.ReviewSummary{
				WordID: wordID,
				Rating: rating,
				Review: domain.ReviewState{
					State:          domain.CardStateLearning,
					Repetitions:    1,
					ScheduledDays:  3,
					DueAt:          now.AddDate(0, 0, 3),
					LastReviewedAt: now,
				},
			}, nil
		},
	}
	handler := newTestReviewHandler(svc)

	body := strings.NewReader(`{"rating":"good"}`)
	req := httptest.NewRequest(http.MethodPost,
		fmt.Sprintf("/api/words/%s/review", wordID), body)
	req = withPathID(withUser(req, userID), wordID.String())

	rr := httptest.NewRecorder()
	handler.SubmitReview(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp SubmitReviewResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, wordID, resp.WordID)
	assert.Equal(t, "good", resp.Rating)
	assert.Equal(t, string(domain.CardStateLearning), resp.State)
	assert.Equal(t, 1, resp.Repetitions)
	assert.Equal(t, 3, resp.ScheduledDays)
}

func TestSubmitReviewHandlerLegacyRating(t *testing.T) {
	userID := uuid.New()
	wordID := uuid.New()

	var received domain.Rating
	svc := &review.MockReviewService{
		SubmitReviewFn: func(ctx context.Context, uid, wid uuid.UUID, rating domain.Rating, now time.Time) (*review.ReviewSummary, error) {
			received = rating
			return &review.ReviewSummary{WordID: wid, Rating: rating}, nil
		},
	}
	handler := newTestReviewHandler(svc)

	body := strings.NewReader(`{"rating":"know"}`)
	req := httptest.NewRequest(http.MethodPost,
		fmt.Sprintf("/api/words/%s/review", wordID), body)
	req = withPathID(withUser(req, userID), wordID.String())

	rr := httptest.NewRecorder()
	handler.SubmitReview(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, domain.RatingGood, received)
}

func TestSubmitReviewHandlerErrors(t *testing.T) {
	userID := uuid.New()
	wordID := uuid.New()

	testCases := []struct {
		name           string
		pathID         string
		body           string
		serviceErr     error
		expectedStatus int
	}{
		{
			name:           "Already reviewed today",
			pathID:         wordID.String(),
			body:           `{"rating":"good"}`,
			serviceErr:     review.ErrAlreadyReviewedToday,
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "Word not found",
			pathID:         wordID.String(),
			body:           `{"rating":"good"}`,
			serviceErr:     review.ErrWordNotFound,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "Word owned by someone else",
			pathID:         wordID.String(),
			body:           `{"rating":"good"}`,
			serviceErr:     review.ErrWordNotOwned,
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "Unknown rating",
			pathID:         wordID.String(),
			body:           `{"rating":"brilliant"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Missing rating",
			pathID:         wordID.String(),
			body:           `{}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Malformed body",
			pathID:         wordID.String(),
			body:           `{not json`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Invalid word ID",
			pathID:         "not-a-uuid",
			body:           `{"rating":"good"}`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &review.MockReviewService{
				SubmitReviewFn: func(ctx context.Context, uid, wid uuid.UUID, rating domain.Rating, now time.Time) (*review.ReviewSummary, error) {
					if tc.serviceErr != nil {
						return nil, tc.serviceErr
					}
					return &review.ReviewSummary{WordID: wid, Rating: rating}, nil
				},
			}
			handler := newTestReviewHandler(svc)

			req := httptest.NewRequest(http.MethodPost,
				"/api/words/"+tc.pathID+"/review", strings.NewReader(tc.body))
			req = withPathID(withUser(req, userID), tc.pathID)

			rr := httptest.NewRecorder()
			handler.SubmitReview(rr, req)

			assert.Equal(t, tc.expectedStatus, rr.Code)
		})
	}
}
