package detection

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/covercellhq/covercell-backend/internal/catalog"
	"github.com/covercellhq/covercell-backend/internal/media"
	"github.com/covercellhq/covercell-backend/pkg/config"
)

// Result is a device recognition outcome.
type Result struct {
	Model      string  `json:"model"`
	Confidence float64 `json:"confidence"`
}

// Detector identifies a device from an uploaded photo.
type Detector interface {
	Detect(ctx context.Context, image media.Upload) (Result, error)
}

// StubDetector fakes recognition by picking a random catalog model after a
// simulated processing delay. It stands in until a real recognition backend
// is wired up.
type StubDetector struct {
	models   []string
	minDelay time.Duration
	maxDelay time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

// NewStubDetector builds a stub over the catalog's selectable models.
func NewStubDetector(cat *catalog.Catalog, cfg config.DetectionConfig) *StubDetector {
	entries := cat.Devices()
	models := make([]string, 0, len(entries))
	for _, e := range entries {
		models = append(models, e.Model)
	}
	return &StubDetector{
		models:   models,
		minDelay: cfg.MinDelay,
		maxDelay: cfg.MaxDelay,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Detect returns a random model with a plausible confidence. The image bytes
// are ignored; the simulated delay honors context cancellation.
func (d *StubDetector) Detect(ctx context.Context, _ media.Upload) (Result, error) {
	delay, model, confidence := d.roll()

	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	return Result{Model: model, Confidence: confidence}, nil
}

func (d *StubDetector) roll() (time.Duration, string, float64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	delay := d.minDelay
	if d.maxDelay > d.minDelay {
		delay += time.Duration(d.rng.Int63n(int64(d.maxDelay - d.minDelay)))
	}
	model := ""
	if len(d.models) > 0 {
		model = d.models[d.rng.Intn(len(d.models))]
	}
	confidence := 0.80 + d.rng.Float64()*0.19
	return delay, model, confidence
}
