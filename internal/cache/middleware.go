package cache

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HeaderName reports whether a response was served from the cache.
const HeaderName = "X-Cache"

type cachedResponse struct {
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

type bodyRecorder struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *bodyRecorder) Write(data []byte) (int, error) {
	w.body.Write(data)
	return w.ResponseWriter.Write(data)
}

func (w *bodyRecorder) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Middleware caches successful GET responses keyed by request URI under the
// given tags. Store failures are logged and the request is served uncached.
// The tag version is read before the handler runs, so a response rendered
// while one of its tags was invalidated is never stored.
func Middleware(store Store, ttl time.Duration, log *zap.Logger, tags ...string) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := "page:" + c.Request.URL.RequestURI()
		ctx := c.Request.Context()

		if data, ok, err := store.Get(ctx, key); err != nil {
			log.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		} else if ok {
			var cached cachedResponse
			if err := json.Unmarshal(data, &cached); err == nil {
				c.Header(HeaderName, "HIT")
				c.Data(http.StatusOK, cached.ContentType, cached.Body)
				c.Abort()
				return
			}
		}

		version, err := store.Version(ctx, tags...)
		if err != nil {
			log.Warn("cache version failed", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}

		recorder := &bodyRecorder{ResponseWriter: c.Writer}
		c.Writer = recorder
		c.Header(HeaderName, "MISS")
		c.Next()

		if recorder.Status() != http.StatusOK {
			return
		}
		payload, err := json.Marshal(cachedResponse{
			ContentType: recorder.Header().Get("Content-Type"),
			Body:        recorder.body.Bytes(),
		})
		if err != nil {
			return
		}
		stored, err := store.SetIfVersion(ctx, key, payload, ttl, version, tags...)
		if err != nil {
			log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
			return
		}
		if !stored {
			log.Debug("cache write skipped, tags changed", zap.String("key", key))
		}
	}
}
