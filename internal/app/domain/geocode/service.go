package geocode

import (
	"context"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/FACorreiaa/aid-map/internal/pkg/csvtable"
	"github.com/FACorreiaa/aid-map/pkg/logger"
)

const (
	ColumnAddress = "Approx. Address"
	ColumnLat     = "Lat"
	ColumnLon     = "Lon"
)

var ErrMissingColumns = errors.New("csv is missing required columns")

type Stats struct {
	Total     int
	Attempted int
	Updated   int
	Failed    int
}

type ServiceConfig struct {
	// Workers bounds the number of concurrent geocoding calls.
	Workers int
	// Interval is the minimum spacing between calls. Zero disables pacing.
	Interval time.Duration
}

type Service struct {
	geocoder Geocoder
	workers  int
	limiter  *rate.Limiter
	logger   *zap.Logger
}

func NewService(g Geocoder, cfg ServiceConfig, l *zap.Logger) *Service {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.Interval > 0 {
		limiter = rate.NewLimiter(rate.Every(cfg.Interval), 1)
	}
	return &Service{
		geocoder: g,
		workers:  workers,
		limiter:  limiter,
		logger:   logger.OrNop(l),
	}
}

// GeocodeTable fills in Lat/Lon for rows that have an address but lack at
// least one coordinate. Rows are updated in place; a failed lookup leaves the
// row untouched and is counted in Stats.Failed.
func (s *Service) GeocodeTable(ctx context.Context, t *csvtable.Table) (Stats, error) {
	stats := Stats{Total: t.Len()}

	if missing := t.MissingColumns(ColumnAddress, ColumnLat, ColumnLon); len(missing) > 0 {
		return stats, errors.Wrap(ErrMissingColumns, strings.Join(missing, ", "))
	}

	var pending []int
	for i := 0; i < t.Len(); i++ {
		lat := strings.TrimSpace(t.Get(i, ColumnLat))
		lon := strings.TrimSpace(t.Get(i, ColumnLon))
		if lat != "" && lon != "" {
			continue
		}
		if strings.TrimSpace(t.Get(i, ColumnAddress)) == "" {
			continue
		}
		pending = append(pending, i)
	}
	stats.Attempted = len(pending)

	var updated, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for _, row := range pending {
		address := strings.TrimSpace(t.Get(row, ColumnAddress))
		if err := s.limiter.Wait(gctx); err != nil {
			break
		}
		g.Go(func() error {
			coords, err := s.geocoder.Forward(gctx, address)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				failed.Add(1)
				s.logger.Warn("Geocode failed", zap.Int("row", row+1), zap.String("address", address), zap.Error(err))
				return nil
			}
			if coords == nil {
				s.logger.Debug("No geocode match", zap.Int("row", row+1), zap.String("address", address))
				return nil
			}
			// Each goroutine owns a distinct row, so no locking is needed.
			t.Set(row, ColumnLat, FormatCoordinate(coords.Lat))
			t.Set(row, ColumnLon, FormatCoordinate(coords.Lon))
			updated.Add(1)
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	stats.Updated = int(updated.Load())
	stats.Failed = int(failed.Load())
	if err != nil {
		return stats, errors.Wrap(err, "geocode table")
	}

	s.logger.Info("Geocoding finished",
		zap.Int("total", stats.Total),
		zap.Int("attempted", stats.Attempted),
		zap.Int("updated", stats.Updated),
		zap.Int("failed", stats.Failed))
	return stats, nil
}

// FormatCoordinate renders a coordinate with seven decimals (about 1 cm).
func FormatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', 7, 64)
}
