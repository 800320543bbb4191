package service

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/capacity-api/internal/dto"
	"github.com/noah-isme/capacity-api/internal/models"
	appErrors "github.com/noah-isme/capacity-api/pkg/errors"
)

type parameterRepository interface {
	GetByName(ctx context.Context, name string) (*models.Parameter, error)
}

// ParameterService exposes tunable parameters by name.
type ParameterService struct {
	repo   parameterRepository
	logger *zap.Logger
}

// NewParameterService constructs the service.
func NewParameterService(repo parameterRepository, logger *zap.Logger) *ParameterService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ParameterService{repo: repo, logger: logger}
}

// GetByName returns the parameter named exactly name.
func (s *ParameterService) GetByName(ctx context.Context, name string) (*dto.ParameterItem, error) {
	if strings.TrimSpace(name) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "parameter name is required")
	}

	param, err := s.repo.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "parameter not found")
		}
		return nil, err
	}

	item := &dto.ParameterItem{ID: param.ID, Name: param.Name, Value: param.Value}
	if param.FormType != nil {
		item.FormType = *param.FormType
	}
	if param.Group != nil {
		item.Group = *param.Group
	}
	return item, nil
}

// IntValue reads name as an integer. Missing parameters and values without a
// leading number yield fallback; fractional values are truncated.
func (s *ParameterService) IntValue(ctx context.Context, name string, fallback int) (int, error) {
	param, err := s.repo.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Debug("parameter not configured", zap.String("name", name), zap.Int("fallback", fallback))
			return fallback, nil
		}
		return 0, err
	}

	value, ok := parseLeadingNumber(param.Value)
	if !ok {
		s.logger.Warn("parameter is not numeric", zap.String("name", name), zap.String("value", param.Value))
		return fallback, nil
	}
	return value, nil
}

func parseLeadingNumber(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	end := 0
	for end < len(raw) {
		c := raw[end]
		if (c >= '0' && c <= '9') || c == '.' || ((c == '-' || c == '+') && end == 0) {
			end++
			continue
		}
		break
	}
	f, err := strconv.ParseFloat(raw[:end], 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return int(f), true
}
