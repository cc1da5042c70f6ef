package jobs

import (
	"context"
	"time"

	"github.com/killsub/backend/internal/logger"
	"github.com/killsub/backend/internal/repository"
	"github.com/killsub/backend/internal/service"
)

// sweepLookbackDays is how much transaction history each sweep considers.
// Matches the dashboard's detection window so scheduled alerts and
// on-demand detection agree.
const sweepLookbackDays = 180

// AlertSweep periodically re-detects subscriptions for every user with a
// bank connection and evaluates their alert rules against the result.
type AlertSweep struct {
	profiles repository.ProfileRepository
	bank     service.BankService
	detect   service.DetectService
	alerts   service.AlertService
}

// NewAlertSweep creates the scheduled alert evaluation job.
func NewAlertSweep(profiles repository.ProfileRepository, bank service.BankService, detect service.DetectService, alerts service.AlertService) *AlertSweep {
	return &AlertSweep{
		profiles: profiles,
		bank:     bank,
		detect:   detect,
		alerts:   alerts,
	}
}

// Run executes one sweep. A failure for one user does not stop the sweep;
// it is logged and the sweep moves on.
func (j *AlertSweep) Run(ctx context.Context) error {
	profiles, err := j.profiles.ListWithConnections(ctx)
	if err != nil {
		return err
	}

	log := logger.Ctx(ctx)
	endDate := time.Now().UTC().Format("2006-01-02")
	startDate := time.Now().UTC().AddDate(0, 0, -sweepLookbackDays).Format("2006-01-02")

	evaluated := 0
	fired := 0
	for _, profile := range profiles {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		txs, err := j.bank.GetTransactions(ctx, profile.ID, startDate, endDate)
		if err != nil {
			log.Warn("alert sweep: transaction fetch failed",
				logger.String("user_id", profile.ID),
				logger.Err(err),
			)
			continue
		}

		subs := j.detect.DetectSubscriptions(txs)

		triggered, err := j.alerts.Evaluate(ctx, profile.ID, subs)
		if err != nil {
			log.Warn("alert sweep: evaluation failed",
				logger.String("user_id", profile.ID),
				logger.Err(err),
			)
			continue
		}

		evaluated++
		fired += len(triggered)
	}

	log.Info("alert sweep finished",
		logger.Int("users", evaluated),
		logger.Int("alerts_fired", fired),
	)
	return nil
}
