package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/capacity-api/internal/models"
	"github.com/noah-isme/capacity-api/pkg/database"
	appErrors "github.com/noah-isme/capacity-api/pkg/errors"
)

// QueryObserver receives the duration of every repository query.
type QueryObserver interface {
	ObserveDBQuery(label string, duration time.Duration)
}

// CapacityRepository reads the capacity reference tables and appends to the reservation ledger.
// Every method runs on the transaction carried by ctx when there is one.
type CapacityRepository struct {
	db       *sqlx.DB
	timeout  time.Duration
	observer QueryObserver
}

// NewCapacityRepository constructs the repository. A zero timeout disables the per-query deadline.
func NewCapacityRepository(db *sqlx.DB, timeout time.Duration, observer QueryObserver) *CapacityRepository {
	return &CapacityRepository{db: db, timeout: timeout, observer: observer}
}

const (
	reservedMinutesQuery = `SELECT COALESCE(SUM(reserved_quota + travel_buffer), 0)
FROM quota_reserved
WHERE capacity_category_id = $1 AND reserved_date = $2 AND pool_id = $3 AND periodo = $4`

	insertReservationQuery = `INSERT INTO quota_reserved (reserved_date, capacity_category_id, reserved_quota, travel_buffer, pool_id, periodo)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id`

	scheduleBlockCountQuery = `SELECT COUNT(*)
FROM schedule_block sb
WHERE sb.status_block = 1
  AND ((sb.block_type = $1 AND sb.block_value = $2) OR (sb.block_type = $3 AND sb.block_value = $4))`

	orderScheduleDatesQuery = `SELECT DISTINCT to_char(ld.date_select, 'YYYY-MM-DD') AS date_select
FROM load_orders lo
JOIN load_autoschedule la ON la.id_load = lo.id_load
JOIN load_dates ld ON ld.id_load = la.id_load
WHERE lo.id_order = $1
ORDER BY date_select`

	lockSlotQuery = `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`
)

// CapacityRows returns the capacity table of poolID, optionally restricted to one period.
func (r *CapacityRepository) CapacityRows(ctx context.Context, poolID int64, period string) ([]models.CapacityRow, error) {
	query, args, err := capacityRowsQuery(poolID, period)
	if err != nil {
		return nil, appErrors.Repository(fmt.Errorf("build capacity rows query: %w", err))
	}

	ctx, done := r.begin(ctx, "capacity_rows")
	defer done()

	var rows []models.CapacityRow
	if err := sqlx.SelectContext(ctx, database.Executor(ctx, r.db), &rows, query, args...); err != nil {
		return nil, mapError("list capacity rows", err)
	}
	return rows, nil
}

// ReservedMinutes sums reserved and buffer minutes already booked against slot.
func (r *CapacityRepository) ReservedMinutes(ctx context.Context, slot models.SlotKey) (float64, error) {
	ctx, done := r.begin(ctx, "reserved_minutes")
	defer done()

	var total decimal.Decimal
	err := database.Executor(ctx, r.db).
		QueryRowxContext(ctx, reservedMinutesQuery, slot.CategoryID, slot.Date, slot.PoolID, slot.Period).
		Scan(&total)
	if err != nil {
		return 0, mapError("sum reserved minutes", err)
	}
	return total.InexactFloat64(), nil
}

// InsertReservation appends a ledger row and returns its id.
func (r *CapacityRepository) InsertReservation(ctx context.Context, res *models.Reservation) (int64, error) {
	ctx, done := r.begin(ctx, "insert_reservation")
	defer done()

	var id int64
	err := database.Executor(ctx, r.db).
		QueryRowxContext(ctx, insertReservationQuery,
			res.Date,
			res.CategoryID,
			minutes(res.ReservedMinutes),
			minutes(res.BufferMinutes),
			res.PoolID,
			res.Period,
		).Scan(&id)
	if err != nil {
		return 0, mapError("insert reservation", err)
	}
	res.ID = id
	return id, nil
}

// ScheduleBlockCount counts active blocks for the weekday or the exact date.
func (r *CapacityRepository) ScheduleBlockCount(ctx context.Context, dayOfWeek int, date string) (int, error) {
	ctx, done := r.begin(ctx, "schedule_block_count")
	defer done()

	var count int
	err := database.Executor(ctx, r.db).
		QueryRowxContext(ctx, scheduleBlockCountQuery,
			int(models.ScheduleBlockWeekday), strconv.Itoa(dayOfWeek),
			int(models.ScheduleBlockDate), date).
		Scan(&count)
	if err != nil {
		return 0, mapError("count schedule blocks", err)
	}
	return count, nil
}

// OrderScheduleDates lists the dates preselected for orderID by a bulk scheduling load.
func (r *CapacityRepository) OrderScheduleDates(ctx context.Context, orderID int64) ([]string, error) {
	ctx, done := r.begin(ctx, "order_schedule_dates")
	defer done()

	var dates []string
	if err := sqlx.SelectContext(ctx, database.Executor(ctx, r.db), &dates, orderScheduleDatesQuery, orderID); err != nil {
		return nil, mapError("list order schedule dates", err)
	}
	return dates, nil
}

// LockSlot takes a transaction scoped advisory lock on (poolID, date, period).
// The lock is released when the surrounding transaction ends.
func (r *CapacityRepository) LockSlot(ctx context.Context, poolID int64, date, period string) error {
	if !database.InTransaction(ctx) {
		return appErrors.Repository(errors.New("lock slot: no transaction in context"))
	}

	ctx, done := r.begin(ctx, "lock_slot")
	defer done()

	key := fmt.Sprintf("quota:%d:%s:%s", poolID, date, period)
	if _, err := database.Executor(ctx, r.db).ExecContext(ctx, lockSlotQuery, key); err != nil {
		return mapError("lock capacity slot", err)
	}
	return nil
}

func (r *CapacityRepository) begin(ctx context.Context, label string) (context.Context, func()) {
	start := time.Now()
	cancel := func() {}
	if r.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
	}
	return ctx, func() {
		cancel()
		if r.observer != nil {
			r.observer.ObserveDBQuery(label, time.Since(start))
		}
	}
}

// capacityRowsQuery builds the pool -> child pool -> category -> skill -> period -> calendar
// join. Quota is summed over distinct calendar windows so the skill fan-out of the join
// never multiplies a window's minutes.
func capacityRowsQuery(poolID int64, period string) (string, []interface{}, error) {
	cover := sq.Select("1").
		From("rel_category_capacity_period wp").
		Join("period p ON p.id = wp.id_period").
		Where("wp.id_category_capacity = cc.id").
		Where("p.start_time BETWEEN w.start_time AND w.end_time").
		Where("p.end_time BETWEEN w.start_time AND w.end_time")
	if period != "" {
		cover = cover.Where(sq.Eq{"p.id::text": period})
	}

	quota := sq.Select("COALESCE(SUM(EXTRACT(EPOCH FROM (w.end_time - w.start_time)) / 60), 0)::float8").
		From("calendar_day w").
		Where("w.id_calendar = pool.id_calendar").
		Where("w.day_of_week = cal.day_of_week").
		Where(sq.Expr("EXISTS (?)", cover))

	periodJoin := "period perid ON perid.id = rcp.id_period"
	var periodArgs []interface{}
	if period != "" {
		periodJoin += " AND perid.id::text = ?"
		periodArgs = append(periodArgs, period)
	}

	return sq.Select(
		"cc.id AS category_id",
		"cc.name_category AS category_name",
		"cal.day_of_week",
		"STRING_AGG(DISTINCT s.id::text, ',' ORDER BY s.id::text) AS skill_ids",
	).
		Column(sq.Alias(quota, "quota")).
		From("routing_pool pool").
		Join("routing_pool poolchild ON poolchild.parent_id = pool.id_pool").
		Join("rel_pool_capacity pc ON pc.id_pool = poolchild.id_pool").
		Join("capacity_category cc ON cc.id = pc.id_capacity").
		Join("rel_category_capacity_skill rcs ON rcs.id_category_capacity = cc.id").
		Join("skill s ON s.id = rcs.id_skill").
		Join("rel_category_capacity_period rcp ON rcp.id_category_capacity = cc.id").
		Join(periodJoin, periodArgs...).
		Join("calendar_day cal ON cal.id_calendar = pool.id_calendar" +
			" AND perid.start_time BETWEEN cal.start_time AND cal.end_time" +
			" AND perid.end_time BETWEEN cal.start_time AND cal.end_time").
		Where(sq.Eq{"poolchild.id_pool": poolID}).
		GroupBy("cc.id", "cc.name_category", "cal.day_of_week", "pool.id_calendar").
		OrderBy("cc.id", "cal.day_of_week").
		PlaceholderFormat(sq.Dollar).
		ToSql()
}

func minutes(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(4)
}

// mapError converts driver failures into repository errors. Lock and
// serialization failures surface as conflicts so callers may retry.
func mapError(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "40001", "40P01", "55P03":
			return appErrors.Wrap(fmt.Errorf("%s: %w", op, err), appErrors.ErrConflict.Code, appErrors.ErrConflict.Status,
				"concurrent reservation in progress, retry the request")
		}
	}
	return appErrors.Repository(fmt.Errorf("%s: %w", op, err))
}
