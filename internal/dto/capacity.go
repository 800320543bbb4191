package dto

// AvailabilityRequest asks for the remaining capacity of a pool on a list of dates.
// Fechas is a comma separated list of YYYY-MM-DD dates.
type AvailabilityRequest struct {
	PoolID   int64  `json:"id_pool" validate:"required,gt=0"`
	Fechas   string `json:"fechas" validate:"required"`
	Cantidad *int   `json:"cantidad" validate:"required,gt=0"`
	OrderID  int64  `json:"id_order" validate:"omitempty,gt=0"`
	Periodo  string `json:"periodo" validate:"omitempty,max=50"`
}

// ScheduleRequest reserves Cantidad minutes of a pool's capacity on Fecha.
type ScheduleRequest struct {
	Fecha    string `json:"fecha" validate:"required,datetime=2006-01-02"`
	Periodo  string `json:"periodo" validate:"required,max=50"`
	Cantidad *int   `json:"cantidad" validate:"required,gt=0"`
	PoolID   int64  `json:"id_pool" validate:"required,gt=0"`
}

// CapacityTableQuery selects a pool's capacity table.
type CapacityTableQuery struct {
	PoolID  int64  `uri:"poolId" validate:"required,gt=0"`
	Periodo string `form:"periodo" validate:"omitempty,max=50"`
}
