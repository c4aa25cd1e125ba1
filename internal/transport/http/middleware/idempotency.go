package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"hrms/internal/platform/db"
	"hrms/internal/transport/http/api"
)

const IdempotencyHeader = "Idempotency-Key"

var ErrIdempotencyConflict = errors.New("idempotency key conflicts with existing request")

// StoredResponse is a response kept for replay.
type StoredResponse struct {
	Status int
	Body   json.RawMessage
}

type IdempotencyStore interface {
	Check(ctx context.Context, userID int64, endpoint, key, requestHash string) (StoredResponse, bool, error)
	Save(ctx context.Context, userID int64, endpoint, key, requestHash string, resp StoredResponse) error
}

type PGIdempotencyStore struct {
	db db.Querier
}

func NewIdempotencyStore(q db.Querier) *PGIdempotencyStore {
	return &PGIdempotencyStore{db: q}
}

func RequestHash(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

func (s *PGIdempotencyStore) Check(ctx context.Context, userID int64, endpoint, key, requestHash string) (StoredResponse, bool, error) {
	var storedHash string
	var resp StoredResponse
	err := s.db.QueryRow(ctx, `
    SELECT request_hash, status, response_json
    FROM idempotency_keys
    WHERE user_id = $1 AND key = $2 AND endpoint = $3
  `, userID, key, endpoint).Scan(&storedHash, &resp.Status, &resp.Body)
	if errors.Is(err, pgx.ErrNoRows) {
		return StoredResponse{}, false, nil
	}
	if err != nil {
		return StoredResponse{}, false, err
	}
	if storedHash != requestHash {
		return StoredResponse{}, false, ErrIdempotencyConflict
	}
	return resp, true, nil
}

// Save keeps the first response stored for a key. A concurrent duplicate
// that finishes later leaves it untouched; a different body is a conflict.
func (s *PGIdempotencyStore) Save(ctx context.Context, userID int64, endpoint, key, requestHash string, resp StoredResponse) error {
	tag, err := s.db.Exec(ctx, `
    INSERT INTO idempotency_keys (user_id, key, endpoint, request_hash, status, response_json)
    VALUES ($1, $2, $3, $4, $5, $6)
    ON CONFLICT (user_id, key, endpoint) DO NOTHING
  `, userID, key, endpoint, requestHash, resp.Status, resp.Body)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	var storedHash string
	err = s.db.QueryRow(ctx, `
    SELECT request_hash FROM idempotency_keys
    WHERE user_id = $1 AND key = $2 AND endpoint = $3
  `, userID, key, endpoint).Scan(&storedHash)
	if err != nil {
		return err
	}
	if storedHash != requestHash {
		return ErrIdempotencyConflict
	}
	return nil
}

type captureWriter struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (c *captureWriter) WriteHeader(code int) {
	c.status = code
	c.ResponseWriter.WriteHeader(code)
}

func (c *captureWriter) Write(b []byte) (int, error) {
	c.body.Write(b)
	return c.ResponseWriter.Write(b)
}

// Idempotency replays the stored response when an authenticated caller
// repeats a request with the same Idempotency-Key. Reusing a key with a
// different body is a conflict. Only non-5xx JSON responses are stored.
func Idempotency(store IdempotencyStore, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(IdempotencyHeader)
			user, ok := GetUser(r.Context())
			if key == "" || !ok {
				next.ServeHTTP(w, r)
				return
			}
			requestID := GetRequestID(r.Context())

			payload, err := io.ReadAll(r.Body)
			if err != nil {
				api.Fail(w, http.StatusBadRequest, "validation", "invalid request payload", requestID)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(payload))
			endpoint := r.Method + " " + r.URL.Path
			hash := RequestHash(payload)

			stored, found, err := store.Check(r.Context(), user.UserID, endpoint, key, hash)
			if errors.Is(err, ErrIdempotencyConflict) {
				api.Fail(w, http.StatusConflict, "idempotency_conflict", err.Error(), requestID)
				return
			}
			if err != nil {
				logger.Error("idempotency lookup failed", zap.Error(err))
				api.Fail(w, http.StatusInternalServerError, "internal", "internal server error", requestID)
				return
			}
			if found {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Idempotent-Replay", "true")
				w.WriteHeader(stored.Status)
				_, _ = w.Write(stored.Body)
				return
			}

			capture := &captureWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(capture, r)
			if capture.status >= http.StatusInternalServerError || !json.Valid(capture.body.Bytes()) {
				return
			}
			resp := StoredResponse{Status: capture.status, Body: capture.body.Bytes()}
			if err := store.Save(r.Context(), user.UserID, endpoint, key, hash, resp); err != nil {
				logger.Warn("idempotency save failed", zap.String("endpoint", endpoint), zap.Error(err))
			}
		})
	}
}
