package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/power-rankings/internal/logger"
	"github.com/yourusername/power-rankings/internal/metrics"
	"github.com/yourusername/power-rankings/internal/models"
)

// reasonMissingDate is the rejection reason for a zero match date
const reasonMissingDate = "played_on.required"

// RecordValidator drops malformed match records before they reach the engine
type RecordValidator struct {
	validate *validator.Validate
	audit    *logger.AuditLogger
}

// ValidationReport summarizes one validation pass
type ValidationReport struct {
	Accepted int
	Rejected int
	Reasons  map[string]int
}

// NewRecordValidator creates a new record validator
func NewRecordValidator(log *logrus.Logger) *RecordValidator {
	if log == nil {
		log = logger.NewDiscardLogger()
	}
	return &RecordValidator{
		validate: validator.New(),
		audit:    logger.NewAuditLogger(log),
	}
}

// ValidateRecord returns the failed rules of a single record, empty when valid
func (v *RecordValidator) ValidateRecord(r models.MatchRecord) []string {
	var reasons []string

	if err := v.validate.Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return []string{err.Error()}
		}
		for _, fe := range verrs {
			reasons = append(reasons, fmt.Sprintf("%s.%s", strings.ToLower(fe.Field()), fe.Tag()))
		}
	}

	if r.PlayedOn.IsZero() {
		reasons = append(reasons, reasonMissingDate)
	}

	return reasons
}

// Filter returns the valid records in input order. Rejections are counted,
// audited and exported as metrics under the source name.
func (v *RecordValidator) Filter(source string, records []models.MatchRecord) ([]models.MatchRecord, ValidationReport) {
	report := ValidationReport{Reasons: make(map[string]int)}
	valid := make([]models.MatchRecord, 0, len(records))

	for _, r := range records {
		reasons := v.ValidateRecord(r)
		if len(reasons) == 0 {
			valid = append(valid, r)
			continue
		}
		report.Rejected++
		sort.Strings(reasons)
		for _, reason := range reasons {
			report.Reasons[reason]++
		}
	}
	report.Accepted = len(valid)

	if report.Rejected > 0 {
		v.audit.LogRecordsRejected(source, report.Rejected, report.Reasons)
		metrics.RecordRecordsRejected(source, report.Rejected)
	}

	return valid, report
}
