package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/provalon/quality-engine/internal/application/port"
	"github.com/provalon/quality-engine/internal/domain/qerrors"
)

// NumberingService issues collision-free sequential document numbers in the
// form PREFIX-YYYY-NNNNN. Counters are per (org, prefix, year) and never
// reused; the increment happens atomically in the store, never as an
// application-level read-then-write.
type NumberingService interface {
	Next(ctx context.Context, orgID, prefix string, year int) (string, error)
}

type numberingServiceImpl struct {
	sequences port.SequenceRepository
	logger    Logger
}

// NewNumberingService creates a NumberingService.
func NewNumberingService(sequences port.SequenceRepository, logger Logger) NumberingService {
	return &numberingServiceImpl{sequences: sequences, logger: logger}
}

// Next returns the next document number for the key, zero-padded to 5 digits.
func (s *numberingServiceImpl) Next(ctx context.Context, orgID, prefix string, year int) (string, error) {
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	if prefix == "" {
		return "", &qerrors.ValidationError{Errors: []string{"Document prefix is required"}}
	}
	if year < 2000 || year > 9999 {
		return "", &qerrors.ValidationError{Errors: []string{fmt.Sprintf("Invalid year: %d", year)}}
	}

	n, err := s.sequences.Increment(ctx, orgID, prefix, year)
	if err != nil {
		s.logger.Error("Failed to increment sequence", "org_id", orgID, "prefix", prefix, "year", year, "error", err)
		return "", fmt.Errorf("increment sequence: %w", err)
	}

	return fmt.Sprintf("%s-%d-%05d", prefix, year, n), nil
}
