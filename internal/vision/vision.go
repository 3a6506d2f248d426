// internal/vision talks to the camera sidecar that classifies facelet
// colors. The sidecar owns the camera and the color pipeline; this client
// just fetches its latest reading and validates it into a cube state.
package vision

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/SeamusWaldron/cubebot"
	"github.com/SeamusWaldron/cubebot/internal/config"
)

// DefaultMinConfidence is the classification confidence below which a
// reading is treated as uncertain rather than trusted.
const DefaultMinConfidence = 0.85

// reading is the sidecar's response payload.
type reading struct {
	Facelets   string  `json:"facelets"`
	Confidence float64 `json:"confidence"`
}

// Camera fetches cube states from the vision sidecar. It implements
// cubebot.Sensor.
type Camera struct {
	url           string
	client        *http.Client
	retries       int
	minConfidence float64
	log           *zap.Logger
}

// New builds a camera client from the profile's camera block.
func New(cfg config.CameraConfig, log *zap.Logger) *Camera {
	if log == nil {
		log = zap.NewNop()
	}
	return &Camera{
		url:           cfg.URL,
		client:        &http.Client{Timeout: cfg.Timeout},
		retries:       cfg.Retries,
		minConfidence: DefaultMinConfidence,
		log:           log,
	}
}

// SetMinConfidence overrides the confidence threshold.
func (c *Camera) SetMinConfidence(v float64) { c.minConfidence = v }

// Observe fetches the physical cube state. Low classification confidence
// and invalid facelet sets both yield ErrSensingUncertain so callers can
// retry after a reposition; transport failures surface as-is.
func (c *Camera) Observe(ctx context.Context) (*cubebot.Cube, error) {
	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			c.log.Debug("retrying observation", zap.Int("attempt", attempt))
			select {
			case <-time.After(200 * time.Millisecond):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		cube, err := c.observe(ctx)
		if err == nil {
			return cube, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

func (c *Camera) observe(ctx context.Context) (*cubebot.Cube, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("vision: build request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("vision: fetch state: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("vision: sidecar returned %s", resp.Status)
	}

	var r reading
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("vision: decode response: %w", err)
	}
	if r.Confidence < c.minConfidence {
		c.log.Info("low confidence reading",
			zap.Float64("confidence", r.Confidence),
			zap.Float64("min", c.minConfidence))
		return nil, fmt.Errorf("vision: confidence %.2f: %w", r.Confidence, cubebot.ErrSensingUncertain)
	}

	cube, err := cubebot.ParseFacelets(r.Facelets)
	if err != nil {
		return nil, fmt.Errorf("vision: bad facelet string: %w", cubebot.ErrSensingUncertain)
	}
	if err := cube.Verify(); err != nil {
		// A misread sticker shows up as an illegal state, not a transport
		// problem. Let the caller re-observe.
		return nil, fmt.Errorf("vision: inconsistent state: %w", cubebot.ErrSensingUncertain)
	}
	return cube, nil
}
