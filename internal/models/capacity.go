package models

// DateLayout is the wire and storage format of reservation dates.
const DateLayout = "2006-01-02"

// CapacityRow is one (category, weekday) entry of a pool's capacity table.
// QuotaMinutes is the total length of the calendar windows that cover at
// least one of the category's periods on that weekday.
type CapacityRow struct {
	CategoryID   int64   `db:"category_id" json:"categoria"`
	CategoryName string  `db:"category_name" json:"nombre"`
	DayOfWeek    int     `db:"day_of_week" json:"dia_semana"`
	SkillIDs     string  `db:"skill_ids" json:"idskills"`
	QuotaMinutes float64 `db:"quota" json:"quota"`
}

// AvailabilitySlot reports what would remain of a category's quota on a date
// after the requested quantity is taken.
type AvailabilitySlot struct {
	Date         string  `json:"fecha"`
	CategoryID   int64   `json:"categoria"`
	CategoryName string  `json:"nombre"`
	SkillIDs     string  `json:"idskills"`
	Quota        float64 `json:"quota"`
	Reserved     float64 `json:"reservada"`
	Available    float64 `json:"disponible"`
}

// SlotKey identifies the reservation ledger bucket a reservation is counted against.
type SlotKey struct {
	CategoryID int64
	Date       string
	PoolID     int64
	Period     string
}

// Reservation is an append-only entry of the quota_reserved ledger.
type Reservation struct {
	ID              int64   `db:"id" json:"id"`
	Date            string  `db:"reserved_date" json:"fecha"`
	CategoryID      int64   `db:"capacity_category_id" json:"categoria"`
	PoolID          int64   `db:"pool_id" json:"id_pool"`
	Period          string  `db:"periodo" json:"periodo"`
	ReservedMinutes float64 `db:"reserved_quota" json:"reservada"`
	BufferMinutes   float64 `db:"travel_buffer" json:"min_entre_viaje"`
}

// ScheduleBlockType distinguishes weekday blocks from calendar date blocks.
type ScheduleBlockType int

const (
	ScheduleBlockWeekday ScheduleBlockType = 1
	ScheduleBlockDate    ScheduleBlockType = 2
)

// ScheduleOutcome labels the result of a reservation attempt.
type ScheduleOutcome string

const (
	OutcomeReserved  ScheduleOutcome = "reserved"
	OutcomeExhausted ScheduleOutcome = "exhausted"
	OutcomeNotFound  ScheduleOutcome = "not_found"
	OutcomeNoMatch   ScheduleOutcome = "no_match"
	OutcomeError     ScheduleOutcome = "error"
)

// ScheduleResult summarises a successful reservation.
type ScheduleResult struct {
	Categories      []int64 `json:"categorias"`
	ReservationIDs  []int64 `json:"ids"`
	ReservedMinutes float64 `json:"reservada_por_categoria"`
	BufferMinutes   float64 `json:"min_entre_viaje_por_categoria"`
}
