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
	"strings"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/angelmondragon/pricing-profiles-backend/api/responses"
	"github.com/angelmondragon/pricing-profiles-backend/api/validators"
	pkgerrors "github.com/angelmondragon/pricing-profiles-backend/pkg/errors"
	"github.com/angelmondragon/pricing-profiles-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/pricing-profiles-backend/pkg/redis"
	"github.com/angelmondragon/pricing-profiles-backend/pkg/types"
)

const (
	idempotencyHeader     = "Idempotency-Key"
	defaultIdempotencyTTL = 24 * time.Hour
	reservationTTL        = time.Minute
)

// storedResponse is what a key maps to in Redis. A pending entry marks a
// request that is still running.
type storedResponse struct {
	RequestHash string `json:"request_hash"`
	Pending     bool   `json:"pending,omitempty"`
	Status      int    `json:"status,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body,omitempty"`
}

type idempotencyGuard struct {
	store pkgredis.IdempotencyStore
	ttl   time.Duration
	logg  *logger.Logger
}

// Idempotency makes a mutating route safe to retry with an Idempotency-Key
// header. The first request reserves the key while it runs; a concurrent
// duplicate gets CONFLICT. Its response is then kept for ttl and replayed to
// later requests with the same key and body. A different body under the same
// key is IDEMPOTENCY_KEY_REUSED. Server errors and CONFLICT responses are not
// kept, so the client can retry. Requests without the header, or without a
// store, pass through. Bodies are capped at validators.MaxBodyBytes.
func Idempotency(store pkgredis.IdempotencyStore, ttl time.Duration, logg *logger.Logger) func(http.Handler) http.Handler {
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	g := &idempotencyGuard{store: store, ttl: ttl, logg: logg}
	return g.wrap
}

func (g *idempotencyGuard) wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientKey := strings.TrimSpace(r.Header.Get(idempotencyHeader))
		if g.store == nil || clientKey == "" {
			next.ServeHTTP(w, r)
			return
		}
		ctx := r.Context()

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, validators.MaxBodyBytes))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				g.fail(ctx, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "request body too large").
					WithDetail("limit_bytes", tooLarge.Limit))
				return
			}
			g.fail(ctx, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request body"))
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))
		hash := requestHash(body)
		key := g.store.IdempotencyKey(r.Method+"|"+r.URL.Path, clientKey)

		prior, err := g.lookup(ctx, key)
		if err != nil {
			g.fail(ctx, w, err)
			return
		}
		if prior != nil {
			g.replay(ctx, w, prior, hash)
			return
		}

		if err := g.reserve(ctx, key, hash); err != nil {
			g.fail(ctx, w, err)
			return
		}

		var captured bytes.Buffer
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		ww.Tee(&captured)
		next.ServeHTTP(ww, r)

		g.finish(context.WithoutCancel(ctx), key, storedResponse{
			RequestHash: hash,
			Status:      statusOrOK(ww.Status()),
			ContentType: ww.Header().Get("Content-Type"),
			Body:        captured.Bytes(),
		})
	})
}

func (g *idempotencyGuard) lookup(ctx context.Context, key string) (*storedResponse, error) {
	raw, err := g.store.Get(ctx, key)
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency key")
	}
	var stored storedResponse
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode idempotency record")
	}
	return &stored, nil
}

func (g *idempotencyGuard) replay(ctx context.Context, w http.ResponseWriter, prior *storedResponse, hash string) {
	switch {
	case prior.RequestHash != hash:
		g.fail(ctx, w, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with different request body"))
	case prior.Pending:
		g.fail(ctx, w, errInFlight())
	default:
		if prior.ContentType != "" {
			w.Header().Set("Content-Type", prior.ContentType)
		}
		w.WriteHeader(prior.Status)
		_, _ = w.Write(prior.Body)
	}
}

func (g *idempotencyGuard) reserve(ctx context.Context, key, hash string) error {
	pending, err := json.Marshal(storedResponse{RequestHash: hash, Pending: true})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode idempotency reservation")
	}
	ok, err := g.store.SetNX(ctx, key, string(pending), reservationTTL)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserve idempotency key")
	}
	if !ok {
		return errInFlight()
	}
	return nil
}

// finish overwrites the reservation with the final response, or drops it when
// the handler failed on the server side or lost a lock race.
func (g *idempotencyGuard) finish(ctx context.Context, key string, resp storedResponse) {
	if resp.Status >= http.StatusInternalServerError || isTransientConflict(resp) {
		g.release(ctx, key)
		return
	}
	payload, err := json.Marshal(resp)
	if err != nil {
		g.logError(ctx, "encode idempotency record", err)
		g.release(ctx, key)
		return
	}
	if err := g.store.Set(ctx, key, string(payload), g.ttl); err != nil {
		g.logError(ctx, "persist idempotency record", err)
	}
}

func (g *idempotencyGuard) release(ctx context.Context, key string) {
	if err := g.store.Del(ctx, key); err != nil {
		g.logError(ctx, "release idempotency reservation", err)
	}
}

func (g *idempotencyGuard) fail(ctx context.Context, w http.ResponseWriter, err error) {
	responses.WriteError(ctx, g.logg, w, err)
}

func (g *idempotencyGuard) logError(ctx context.Context, msg string, err error) {
	if g.logg != nil {
		g.logg.Error(ctx, msg, err)
	}
}

func errInFlight() error {
	return pkgerrors.New(pkgerrors.CodeConflict, "request with this idempotency key is in progress")
}

// isTransientConflict reports a CONFLICT response, such as a held save lock,
// that a retry with the same key may get past.
func isTransientConflict(resp storedResponse) bool {
	if resp.Status != http.StatusConflict {
		return false
	}
	var envelope types.ErrorEnvelope
	if err := json.Unmarshal(resp.Body, &envelope); err != nil {
		return false
	}
	return envelope.Error.Code == string(pkgerrors.CodeConflict)
}

func requestHash(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

func statusOrOK(status int) int {
	if status == 0 {
		return http.StatusOK
	}
	return status
}
