package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/killsub/backend/internal/models"
)

type exportService struct{}

// NewExportService creates a new export service
func NewExportService() ExportService {
	return &exportService{}
}

// SubscriptionsCSV renders the subscription list as CSV with monthly
// equivalents and categories included, the shape spreadsheet imports want.
func (s *exportService) SubscriptionsCSV(ctx context.Context, subs []models.Subscription) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"name", "category", "cadence", "last_amount", "monthly_equivalent", "last_date", "charge_count", "confidence"}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, sub := range subs {
		cadence := sub.Cadence
		if cadence == "" {
			cadence = models.CadenceMonthly
		}
		row := []string{
			sub.Name,
			Categorize(sub.Name),
			strings.ToLower(cadence),
			fmt.Sprintf("%.2f", sub.LastAmount),
			fmt.Sprintf("%.2f", MonthlyAmount(sub)),
			sub.LastDate,
			fmt.Sprintf("%d", sub.Count),
			fmt.Sprintf("%.2f", sub.Confidence),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}

	return buf.Bytes(), nil
}
