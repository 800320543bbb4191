package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/capacity-api/internal/dto"
	"github.com/noah-isme/capacity-api/internal/models"
	appErrors "github.com/noah-isme/capacity-api/pkg/errors"
)

type capacityEngine interface {
	QueryCapacity(ctx context.Context, poolID int64, period string) ([]models.CapacityRow, error)
	ComputeAvailability(ctx context.Context, in AvailabilityInput) ([]models.AvailabilitySlot, error)
	Schedule(ctx context.Context, in ScheduleInput) (*models.ScheduleResult, error)
	InvalidateCapacity(ctx context.Context, poolID int64) error
}

// SchedulingService validates inbound capacity requests and delegates them to the engine.
type SchedulingService struct {
	engine    capacityEngine
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSchedulingService constructs the service. A nil validator gets NewValidator().
func NewSchedulingService(engine capacityEngine, validate *validator.Validate, logger *zap.Logger) *SchedulingService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SchedulingService{engine: engine, validator: validate, logger: logger}
}

// NewValidator returns a validator that reports fields by their JSON, uri or form name.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "uri", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})
	return v
}

// DecodeJSON decodes body into dest rejecting unknown fields, wrong types and trailing data.
func DecodeJSON(body io.Reader, dest interface{}) error {
	if body == nil {
		return appErrors.Clone(appErrors.ErrValidation, "request body is required")
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unable to read request body")
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return appErrors.Clone(appErrors.ErrValidation, "request body is required")
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, decodeMessage(err))
	}
	if dec.More() {
		return appErrors.Clone(appErrors.ErrValidation, "request body must contain a single JSON object")
	}
	return nil
}

// Availability returns the remaining capacity of every matching category on each requested date.
func (s *SchedulingService) Availability(ctx context.Context, req dto.AvailabilityRequest) ([]models.AvailabilitySlot, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	dates, err := parseDateList(req.Fechas)
	if err != nil {
		return nil, err
	}

	slots, err := s.engine.ComputeAvailability(ctx, AvailabilityInput{
		PoolID:   req.PoolID,
		Dates:    dates,
		Quantity: *req.Cantidad,
		OrderID:  req.OrderID,
		Period:   strings.TrimSpace(req.Periodo),
	})
	if err != nil {
		return nil, err
	}
	return slots, nil
}

// Schedule books the requested minutes on a single date.
func (s *SchedulingService) Schedule(ctx context.Context, req dto.ScheduleRequest) (*models.ScheduleResult, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	return s.engine.Schedule(ctx, ScheduleInput{
		Date:     req.Fecha,
		Period:   strings.TrimSpace(req.Periodo),
		Quantity: *req.Cantidad,
		PoolID:   req.PoolID,
	})
}

// CapacityTable returns the capacity table of a pool.
func (s *SchedulingService) CapacityTable(ctx context.Context, query dto.CapacityTableQuery) ([]models.CapacityRow, error) {
	if err := s.validate(query); err != nil {
		return nil, err
	}
	return s.engine.QueryCapacity(ctx, query.PoolID, strings.TrimSpace(query.Periodo))
}

// InvalidateCapacityTable drops the cached capacity tables of a pool so the next
// read goes to the database.
func (s *SchedulingService) InvalidateCapacityTable(ctx context.Context, query dto.CapacityTableQuery) error {
	if err := s.validate(query); err != nil {
		return err
	}
	return s.engine.InvalidateCapacity(ctx, query.PoolID)
}

func (s *SchedulingService) validate(req interface{}) error {
	err := s.validator.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request")
	}
	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		messages = append(messages, fieldMessage(fe))
	}
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, strings.Join(messages, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "datetime":
		return fmt.Sprintf("%s must be a date formatted YYYY-MM-DD", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

func decodeMessage(err error) string {
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError
	switch {
	case errors.As(err, &typeErr):
		return fmt.Sprintf("%s must be of type %s", typeErr.Field, typeErr.Type.String())
	case errors.As(err, &syntaxErr):
		return "malformed JSON body"
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		return fmt.Sprintf("unknown field %s", strings.TrimPrefix(err.Error(), "json: unknown field "))
	case errors.Is(err, io.ErrUnexpectedEOF):
		return "malformed JSON body"
	default:
		return "invalid request body"
	}
}

// parseDateList splits a comma separated list of dates, skipping blanks.
func parseDateList(raw string) ([]string, error) {
	parts := strings.Split(raw, ",")
	dates := make([]string, 0, len(parts))
	for _, part := range parts {
		date := strings.TrimSpace(part)
		if date == "" {
			continue
		}
		if _, err := time.Parse(models.DateLayout, date); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status,
				fmt.Sprintf("fechas contains invalid date %q, expected YYYY-MM-DD", date))
		}
		dates = append(dates, date)
	}
	if len(dates) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "fechas must contain at least one date")
	}
	return dates, nil
}
