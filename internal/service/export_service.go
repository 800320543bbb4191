package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/noah-isme/capacity-api/internal/dto"
	"github.com/noah-isme/capacity-api/internal/models"
	appErrors "github.com/noah-isme/capacity-api/pkg/errors"
	"github.com/noah-isme/capacity-api/pkg/export"
)

type availabilitySource interface {
	Availability(ctx context.Context, req dto.AvailabilityRequest) ([]models.AvailabilitySlot, error)
}

// ExportResult is a rendered export ready to be streamed.
type ExportResult struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ExportService renders availability results as downloadable files.
type ExportService struct {
	source availabilitySource
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(source availabilitySource, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{source: source, logger: logger, now: time.Now}
}

// Availability computes availability for req and renders it in the requested format.
func (s *ExportService) Availability(ctx context.Context, req dto.AvailabilityRequest, format string) (*ExportResult, error) {
	f, err := export.ParseFormat(format)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}

	slots, err := s.source.Availability(ctx, req)
	if err != nil {
		return nil, err
	}

	payload, err := export.RendererFor(f).Render(availabilityDataset(req.PoolID, slots))
	if err != nil {
		s.logger.Error("failed to render availability export", zap.String("format", string(f)), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	return &ExportResult{
		Filename:    fmt.Sprintf("availability_pool%d_%s.%s", req.PoolID, s.now().UTC().Format("20060102T150405"), f),
		ContentType: f.ContentType(),
		Payload:     payload,
	}, nil
}

func availabilityDataset(poolID int64, slots []models.AvailabilitySlot) export.Dataset {
	rows := make([]map[string]string, 0, len(slots))
	for _, slot := range slots {
		rows = append(rows, map[string]string{
			"fecha":      slot.Date,
			"categoria":  strconv.FormatInt(slot.CategoryID, 10),
			"nombre":     slot.CategoryName,
			"idskills":   slot.SkillIDs,
			"quota":      formatMinutes(slot.Quota),
			"reservada":  formatMinutes(slot.Reserved),
			"disponible": formatMinutes(slot.Available),
		})
	}
	return export.Dataset{
		Title: fmt.Sprintf("Availability pool %d", poolID),
		Columns: []export.Column{
			{Key: "fecha", Title: "Date"},
			{Key: "categoria", Title: "Category"},
			{Key: "nombre", Title: "Name"},
			{Key: "idskills", Title: "Skills"},
			{Key: "quota", Title: "Quota", Numeric: true},
			{Key: "reservada", Title: "Reserved", Numeric: true},
			{Key: "disponible", Title: "Available", Numeric: true},
		},
		Rows: rows,
	}
}

func formatMinutes(v float64) string {
	return decimal.NewFromFloat(v).Round(2).String()
}
