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
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ledgerhq/ledgercore/internal/apperrors"
)

// idempotencyRetention is the 30-day replay window spec §7 requires for
// IDEMPOTENCY_CONFLICT detection: a key is remembered long enough to catch
// a mismatched retry, then falls out of the store.
const idempotencyRetention = 30 * 24 * time.Hour

// IdempotencyStore persists the outcome of an Idempotency-Key'd request so
// a retry with the same key and payload replays the original response,
// and a retry with the same key but a different payload is rejected with
// IDEMPOTENCY_CONFLICT. This lives outside the core per spec §7: the core
// never sees idempotency keys.
type IdempotencyStore struct {
	pool *pgxpool.Pool
}

// NewIdempotencyStore creates a Postgres-backed IdempotencyStore.
func NewIdempotencyStore(pool *pgxpool.Pool) *IdempotencyStore {
	return &IdempotencyStore{pool: pool}
}

type storedResponse struct {
	status int
	body   []byte
}

func (s *IdempotencyStore) find(ctx context.Context, organizationID, key string) (*storedResponse, string, error) {
	var requestHash string
	var status int
	var body []byte
	err := s.pool.QueryRow(ctx,
		`SELECT request_hash, response_status, response_body FROM idempotency_keys
		 WHERE organization_id = $1 AND idempotency_key = $2 AND expires_at > now()`,
		organizationID, key,
	).Scan(&requestHash, &status, &body)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", nil
		}
		return nil, "", err
	}
	return &storedResponse{status: status, body: body}, requestHash, nil
}

func (s *IdempotencyStore) save(ctx context.Context, organizationID, key, requestHash string, status int, body []byte) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO idempotency_keys (organization_id, idempotency_key, request_hash, response_status, response_body, created_at, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (organization_id, idempotency_key) DO NOTHING`,
		organizationID, key, requestHash, status, body, time.Now().UTC(), time.Now().UTC().Add(idempotencyRetention),
	)
	return err
}

type bufferingResponseWriter struct {
	gin.ResponseWriter
	buf    bytes.Buffer
	status int
}

func (w *bufferingResponseWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bufferingResponseWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Idempotency consults store for the Idempotency-Key header on every
// request that carries it, whatever its HTTP method, replaying a prior response for an identical retry and
// rejecting a replay whose payload differs from the original with
// apperrors.ErrIdempotencyConflict. Requests without the header pass
// through untouched.
func Idempotency(store *IdempotencyStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader("Idempotency-Key")
		if key == "" {
			c.Next()
			return
		}
		organizationID, _ := GetOrganizationIDFromContext(c)
		logger := GetLoggerFromCtx(c.Request.Context())

		bodyBytes, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		sum := sha256.Sum256(bodyBytes)
		requestHash := hex.EncodeToString(sum[:])

		existing, storedHash, err := store.find(c.Request.Context(), organizationID, key)
		if err != nil {
			logger.Error("idempotency lookup failed", "error", err.Error())
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "idempotency check failed"})
			return
		}
		if existing != nil {
			if storedHash != requestHash {
				ae := apperrors.IdempotencyConflict("idempotency key reused with a different request payload", map[string]any{
					"idempotencyKey": key,
				})
				c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{
					"code":    ae.Code,
					"message": ae.Message,
					"details": ae.Details,
				})
				return
			}
			var payload json.RawMessage
			if len(existing.body) > 0 {
				payload = existing.body
			}
			c.Data(existing.status, "application/json", payload)
			c.Abort()
			return
		}

		bw := &bufferingResponseWriter{ResponseWriter: c.Writer, status: http.StatusOK}
		c.Writer = bw

		c.Next()

		if err := store.save(c.Request.Context(), organizationID, key, requestHash, bw.status, bw.buf.Bytes()); err != nil {
			logger.Error("failed to persist idempotency record", "error", err.Error())
		}
	}
}
