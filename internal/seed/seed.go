package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/hypnolab/sleep-analysis/internal/domain"
	"github.com/hypnolab/sleep-analysis/internal/hypnogram"
	"gorm.io/gorm"
)

const seededNights = 14

// Run seeds the database with sample users and analyzed recordings.
// Safe to call multiple times.
func Run(db *gorm.DB, engineCfg hypnogram.Config) error {
	if err := db.AutoMigrate(&domain.User{}, &domain.Analysis{}); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}

	users := []domain.User{
		{ID: uuid.MustParse("11111111-1111-1111-1111-111111111111"), Timezone: "Europe/Amsterdam"},
		{ID: uuid.MustParse("22222222-2222-2222-2222-222222222222"), Timezone: "America/New_York"},
		{ID: uuid.MustParse("33333333-3333-3333-3333-333333333333"), Timezone: "Asia/Tokyo"},
		{ID: uuid.MustParse("44444444-4444-4444-4444-444444444444"), Timezone: "Australia/Sydney"},
	}

	for _, user := range users {
		if err := db.Where("id = ?", user.ID).FirstOrCreate(&user).Error; err != nil {
			return fmt.Errorf("failed to create user %s: %w", user.ID, err)
		}
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	for _, user := range users {
		if err := seedAnalysesForUser(db, user, engineCfg, rng); err != nil {
			return err
		}
	}

	log.Println("Seed completed")
	return nil
}

func seedAnalysesForUser(db *gorm.DB, user domain.User, engineCfg hypnogram.Config, rng *rand.Rand) error {
	now := time.Now().UTC()
	for i := 0; i < seededNights; i++ {
		date := now.AddDate(0, 0, -i)
		bedtime := time.Date(date.Year(), date.Month(), date.Day(), 22+rng.Intn(2), rng.Intn(60), 0, 0, time.UTC)

		stages := generateNight(rng, engineCfg.EpochDuration)

		engine, err := hypnogram.New(stages, bedtime.Unix(), engineCfg)
		if err != nil {
			return fmt.Errorf("failed to derive seed report: %w", err)
		}

		clientReqID := fmt.Sprintf("seed-night-%s-%d", user.ID, i)
		analysis := domain.Analysis{
			UserID:          user.ID,
			Stages:          stages,
			Bedtime:         bedtime.Unix(),
			EpochDuration:   engineCfg.EpochDuration,
			Report:          engine.Report(),
			ClientRequestID: &clientReqID,
		}

		if err := db.Where("client_request_id = ?", clientReqID).FirstOrCreate(&analysis).Error; err != nil {
			return fmt.Errorf("failed to create analysis: %w", err)
		}
	}
	return nil
}

// generateNight produces a roughly realistic hypnogram: a short wake
// onset, then repeating NREM/REM cycles with occasional awakenings.
func generateNight(rng *rand.Rand, epochDuration int64) []domain.StageLabel {
	// Epoch durations beyond an hour still yield at least one epoch per hour
	epochsPerHour := int(3600 / epochDuration)
	if epochsPerHour < 1 {
		epochsPerHour = 1
	}
	totalEpochs := epochsPerHour * (6 + rng.Intn(3))

	stages := make([]domain.StageLabel, 0, totalEpochs)

	// Sleep onset latency of 5-25 minutes
	onsetEpochs := (10 + rng.Intn(40)) * epochsPerHour / 120
	for i := 0; i < onsetEpochs; i++ {
		stages = append(stages, domain.StageWake)
	}

	cycle := []struct {
		stage  domain.StageLabel
		weight int
	}{
		{domain.StageN1, 1},
		{domain.StageN2, 4},
		{domain.StageN3, 3},
		{domain.StageN2, 2},
		{domain.StageREM, 2},
	}

	for len(stages) < totalEpochs {
		for _, phase := range cycle {
			count := phase.weight * epochsPerHour / 8
			if count < 1 {
				count = 1
			}
			if jitter := epochsPerHour / 8; jitter > 0 {
				count += rng.Intn(jitter)
			}
			for i := 0; i < count && len(stages) < totalEpochs; i++ {
				stages = append(stages, phase.stage)
			}
			// Brief awakening between phases now and then
			if rng.Float32() < 0.15 && len(stages) < totalEpochs {
				stages = append(stages, domain.StageWake)
			}
		}
	}

	// Most nights end awake
	if rng.Float32() < 0.8 {
		wakeTail := 1 + rng.Intn(5)
		for i := 0; i < wakeTail; i++ {
			stages = append(stages, domain.StageWake)
		}
	}

	return stages
}
