package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/capacity-api/internal/models"
	appErrors "github.com/noah-isme/capacity-api/pkg/errors"
	"github.com/noah-isme/capacity-api/pkg/middleware/requestid"
)

type capacityStore interface {
	CapacityRows(ctx context.Context, poolID int64, period string) ([]models.CapacityRow, error)
	ReservedMinutes(ctx context.Context, slot models.SlotKey) (float64, error)
	InsertReservation(ctx context.Context, res *models.Reservation) (int64, error)
	ScheduleBlockCount(ctx context.Context, dayOfWeek int, date string) (int, error)
	OrderScheduleDates(ctx context.Context, orderID int64) ([]string, error)
	LockSlot(ctx context.Context, poolID int64, date, period string) error
}

type parameterReader interface {
	IntValue(ctx context.Context, name string, fallback int) (int, error)
}

type txRunner interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// CapacityEngineConfig tunes the engine.
type CapacityEngineConfig struct {
	TravelBufferParameter string
	StrictScheduleMatch   bool
	CacheTTL              time.Duration
}

// AvailabilityInput is a validated availability query.
type AvailabilityInput struct {
	PoolID   int64
	Dates    []string
	Quantity int
	OrderID  int64
	Period   string
}

// ScheduleInput is a validated reservation request.
type ScheduleInput struct {
	Date     string
	Period   string
	Quantity int
	PoolID   int64
}

// CapacityEngine computes availability from the capacity tables and books reservations.
type CapacityEngine struct {
	store   capacityStore
	params  parameterReader
	tx      txRunner
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger
	cfg     CapacityEngineConfig
}

// NewCapacityEngine constructs the engine. cache and metrics may be nil.
func NewCapacityEngine(store capacityStore, params parameterReader, tx txRunner, cache *CacheService, metrics *MetricsService, logger *zap.Logger, cfg CapacityEngineConfig) *CapacityEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.TravelBufferParameter == "" {
		cfg.TravelBufferParameter = "MIN_VIAJE_CLIENTE_ENTRE_ORDEN"
	}
	return &CapacityEngine{
		store:   store,
		params:  params,
		tx:      tx,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
		cfg:     cfg,
	}
}

// QueryCapacity returns the capacity table of a pool. An empty table is NOT_FOUND.
func (e *CapacityEngine) QueryCapacity(ctx context.Context, poolID int64, period string) ([]models.CapacityRow, error) {
	return Remember(ctx, e.cache, capacityCacheKey(poolID, period), e.cfg.CacheTTL, func(ctx context.Context) ([]models.CapacityRow, error) {
		return e.loadCapacity(ctx, poolID, period)
	})
}

// InvalidateCapacity drops every cached capacity table of poolID.
func (e *CapacityEngine) InvalidateCapacity(ctx context.Context, poolID int64) error {
	if err := e.cache.Invalidate(ctx, capacityCachePrefix(poolID)+"*"); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to invalidate capacity cache")
	}
	e.log(ctx).Info("capacity cache invalidated", zap.Int64("pool_id", poolID))
	return nil
}

// ComputeAvailability evaluates every candidate date against the pool's capacity table.
// Each emitted slot reports quota - reserved - travel buffer - requested quantity.
// Any repository failure aborts the whole computation.
func (e *CapacityEngine) ComputeAvailability(ctx context.Context, in AvailabilityInput) ([]models.AvailabilitySlot, error) {
	log := e.log(ctx).With(zap.Int64("pool_id", in.PoolID), zap.String("period", in.Period))

	rows, err := e.QueryCapacity(ctx, in.PoolID, in.Period)
	if err != nil {
		return nil, err
	}
	log.Debug("capacity categories fetched", zap.Int("rows", len(rows)), zap.Int("quantity", in.Quantity))

	buffer, err := e.travelBuffer(ctx)
	if err != nil {
		return nil, err
	}
	log.Debug("travel buffer", zap.Int("minutes", buffer))

	var allowed map[string]struct{}
	if in.OrderID > 0 {
		dates, err := e.store.OrderScheduleDates(ctx, in.OrderID)
		if err != nil {
			return nil, err
		}
		if len(dates) > 0 {
			allowed = make(map[string]struct{}, len(dates))
			for _, d := range dates {
				allowed[d] = struct{}{}
			}
		}
		log.Debug("order schedule dates", zap.Int64("order_id", in.OrderID), zap.Strings("dates", dates))
	}

	type emittedKey struct {
		categoryID int64
		date       string
	}
	seen := make(map[emittedKey]struct{})
	slots := make([]models.AvailabilitySlot, 0)

	for _, date := range in.Dates {
		dow, err := weekday(date)
		if err != nil {
			return nil, err
		}

		blocks, err := e.store.ScheduleBlockCount(ctx, dow, date)
		if err != nil {
			return nil, err
		}
		if blocks > 0 {
			log.Debug("date blocked", zap.String("date", date), zap.Int("day_of_week", dow))
			continue
		}

		if allowed != nil {
			if _, ok := allowed[date]; !ok {
				log.Debug("date not selected for order", zap.String("date", date))
				continue
			}
		}

		for _, row := range rows {
			if row.DayOfWeek != dow {
				continue
			}
			key := emittedKey{categoryID: row.CategoryID, date: date}
			if _, dup := seen[key]; dup {
				continue
			}

			reserved, err := e.store.ReservedMinutes(ctx, models.SlotKey{
				CategoryID: row.CategoryID,
				Date:       date,
				PoolID:     in.PoolID,
				Period:     in.Period,
			})
			if err != nil {
				return nil, err
			}
			seen[key] = struct{}{}

			slot := models.AvailabilitySlot{
				Date:         date,
				CategoryID:   row.CategoryID,
				CategoryName: row.CategoryName,
				SkillIDs:     row.SkillIDs,
				Quota:        row.QuotaMinutes,
				Reserved:     reserved,
				Available:    row.QuotaMinutes - reserved - float64(buffer) - float64(in.Quantity),
			}
			log.Debug("slot evaluated",
				zap.String("date", date),
				zap.Int64("category_id", row.CategoryID),
				zap.Float64("quota", slot.Quota),
				zap.Float64("reserved", slot.Reserved),
				zap.Float64("available", slot.Available),
			)
			slots = append(slots, slot)
		}
	}

	return slots, nil
}

// Schedule reserves in.Quantity minutes on in.Date split evenly across every
// category calendared on that weekday. The availability check and all inserts
// run in one transaction holding an advisory lock on (pool, date, period), so
// concurrent reservations of the same slot are serialized.
func (e *CapacityEngine) Schedule(ctx context.Context, in ScheduleInput) (*models.ScheduleResult, error) {
	log := e.log(ctx).With(
		zap.Int64("pool_id", in.PoolID),
		zap.String("date", in.Date),
		zap.String("period", in.Period),
		zap.Int("quantity", in.Quantity),
	)

	dow, err := weekday(in.Date)
	if err != nil {
		return nil, err
	}

	var result *models.ScheduleResult
	outcome := models.OutcomeError
	err = e.tx.Do(ctx, func(ctx context.Context) error {
		if err := e.store.LockSlot(ctx, in.PoolID, in.Date, in.Period); err != nil {
			return err
		}

		rows, err := e.loadCapacity(ctx, in.PoolID, in.Period)
		if err != nil {
			if errors.Is(err, appErrors.ErrNotFound) {
				outcome = models.OutcomeNotFound
			}
			return err
		}
		log.Debug("capacity categories fetched", zap.Int("rows", len(rows)))

		var (
			sumQuota    float64
			sumReserved float64
			categories  []int64
		)
		for _, row := range rows {
			if row.DayOfWeek != dow {
				continue
			}
			reserved, err := e.store.ReservedMinutes(ctx, models.SlotKey{
				CategoryID: row.CategoryID,
				Date:       in.Date,
				PoolID:     in.PoolID,
				Period:     in.Period,
			})
			if err != nil {
				return err
			}
			sumQuota += row.QuotaMinutes
			sumReserved += reserved
			categories = append(categories, row.CategoryID)
		}

		n := float64(len(categories))
		if n == 0 {
			if e.cfg.StrictScheduleMatch {
				outcome = models.OutcomeNotFound
				return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("no capacity category is calendared for %s", in.Date))
			}
			outcome = models.OutcomeNoMatch
			log.Info("no category matches weekday, nothing reserved", zap.Int("day_of_week", dow))
			result = &models.ScheduleResult{Categories: []int64{}, ReservationIDs: []int64{}}
			return nil
		}

		buffer, err := e.travelBuffer(ctx)
		if err != nil {
			return err
		}

		avgQuota := sumQuota / n
		avgReserved := sumReserved / n
		bufferShare := float64(buffer) / n
		available := avgQuota - avgReserved - bufferShare
		log.Debug("slot evaluated",
			zap.Int("categories", len(categories)),
			zap.Float64("avg_quota", avgQuota),
			zap.Float64("avg_reserved", avgReserved),
			zap.Float64("buffer_share", bufferShare),
			zap.Float64("available", available),
		)

		if available <= 0 || available < float64(in.Quantity) {
			outcome = models.OutcomeExhausted
			log.Info("insufficient capacity", zap.Float64("available", available))
			return appErrors.Clone(appErrors.ErrCapacityExhausted, "")
		}

		share := float64(in.Quantity) / n
		ids := make([]int64, 0, len(categories))
		for _, categoryID := range categories {
			id, err := e.store.InsertReservation(ctx, &models.Reservation{
				Date:            in.Date,
				CategoryID:      categoryID,
				PoolID:          in.PoolID,
				Period:          in.Period,
				ReservedMinutes: share,
				BufferMinutes:   bufferShare,
			})
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}

		outcome = models.OutcomeReserved
		result = &models.ScheduleResult{
			Categories:      categories,
			ReservationIDs:  ids,
			ReservedMinutes: share,
			BufferMinutes:   bufferShare,
		}
		return nil
	})

	reserved := 0.0
	if err == nil && outcome == models.OutcomeReserved {
		reserved = float64(in.Quantity)
	}
	e.metrics.RecordReservation(outcome, reserved)

	if err != nil {
		if appErrors.FromError(err).Status >= 500 {
			log.Error("reservation failed", zap.Error(err))
		}
		return nil, err
	}
	if outcome == models.OutcomeReserved {
		log.Info("reservation stored", zap.Int64s("reservation_ids", result.ReservationIDs))
	}
	return result, nil
}

func (e *CapacityEngine) loadCapacity(ctx context.Context, poolID int64, period string) ([]models.CapacityRow, error) {
	rows, err := e.store.CapacityRows(ctx, poolID, period)
	if err != nil {
		e.log(ctx).Error("capacity rows query failed", zap.Int64("pool_id", poolID), zap.Error(err))
		return nil, err
	}
	if len(rows) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no capacity categories found for pool")
	}
	return rows, nil
}

func (e *CapacityEngine) travelBuffer(ctx context.Context) (int, error) {
	return e.params.IntValue(ctx, e.cfg.TravelBufferParameter, 0)
}

func (e *CapacityEngine) log(ctx context.Context) *zap.Logger {
	if id := requestid.FromContext(ctx); id != "" {
		return e.logger.With(zap.String("request_id", id))
	}
	return e.logger
}

func capacityCachePrefix(poolID int64) string {
	return fmt.Sprintf("capacity:rows:%d:", poolID)
}

func capacityCacheKey(poolID int64, period string) string {
	return capacityCachePrefix(poolID) + period
}

// weekday returns 0 for Sunday through 6 for Saturday.
func weekday(date string) (int, error) {
	t, err := time.Parse(models.DateLayout, date)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status,
			fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", date))
	}
	return int(t.Weekday()), nil
}
