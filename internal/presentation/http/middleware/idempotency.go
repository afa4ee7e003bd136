package middleware

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/domain/entity"
	"github.com/sangkips/pos-api/internal/domain/repository"
	"github.com/sangkips/pos-api/internal/presentation/http/dto/response"
	"github.com/sangkips/pos-api/pkg/logger"
	"github.com/sirupsen/logrus"
)

const (
	// IdempotencyKeyHeader is the HTTP header for idempotency keys
	IdempotencyKeyHeader = "Idempotency-Key"
	// DefaultIdempotencyTTL is how long keys are valid when no TTL is configured
	DefaultIdempotencyTTL = 24 * time.Hour
)

// IdempotencyConfig holds configuration for the idempotency middleware
type IdempotencyConfig struct {
	Repo repository.IdempotencyRepository
	TTL  time.Duration
	Log  *logger.Logger
	Now  func() time.Time
	// Required rejects requests that carry no key
	Required bool
}

// responseWriter wraps gin.ResponseWriter to capture the response body
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Idempotency replays the stored response when a terminal retries a request
// with the same Idempotency-Key. Requests without the header pass through.
// Server errors are not stored so the retry runs again.
func Idempotency(cfg IdempotencyConfig) gin.HandlerFunc {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultIdempotencyTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Log == nil {
		cfg.Log = logger.NewNop()
	}
	log := cfg.Log.Component("idempotency")

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost && c.Request.Method != http.MethodPut && c.Request.Method != http.MethodPatch {
			c.Next()
			return
		}

		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			if cfg.Required {
				response.BadRequest(c, "Idempotency-Key header is required for this request")
				c.Abort()
				return
			}
			c.Next()
			return
		}

		subjectValue, exists := c.Get(SubjectIDKey)
		if !exists {
			response.Unauthorized(c, "Subject not authenticated")
			c.Abort()
			return
		}
		subject, ok := subjectValue.(uuid.UUID)
		if !ok {
			response.Unauthorized(c, "Invalid subject")
			c.Abort()
			return
		}

		existing, err := cfg.Repo.GetByKey(c.Request.Context(), key, subject)
		if err != nil {
			log.WithError(err).WithField("key", key).Error("failed to look up idempotency key")
			response.InternalServerError(c, "Failed to check idempotency key")
			c.Abort()
			return
		}

		endpoint := c.Request.Method + " " + c.FullPath()
		if existing != nil && !existing.IsExpired(cfg.Now()) {
			if existing.Endpoint != endpoint {
				response.ErrorWithCode(c, http.StatusUnprocessableEntity, "Idempotency-Key was already used for a different request")
				c.Abort()
				return
			}
			c.Header("X-Idempotency-Replayed", "true")
			c.Data(existing.ResponseCode, "application/json; charset=utf-8", []byte(existing.ResponseBody))
			c.Abort()
			return
		}

		blw := &responseWriter{body: bytes.NewBufferString(""), ResponseWriter: c.Writer}
		c.Writer = blw

		c.Next()

		if c.Writer.Status() >= http.StatusInternalServerError {
			return
		}

		now := cfg.Now()
		ikey := &entity.IdempotencyKey{
			Key:          key,
			Subject:      subject,
			Endpoint:     endpoint,
			ResponseCode: c.Writer.Status(),
			ResponseBody: blw.body.String(),
			CreatedAt:    now,
			ExpiresAt:    now.Add(cfg.TTL),
		}

		// an expired record under the same key is overwritten
		if err := cfg.Repo.Save(c.Request.Context(), ikey); err != nil {
			log.WithError(err).WithFields(logrus.Fields{"key": key, "subject_id": subject}).Warn("failed to store idempotency key")
		}
	}
}
