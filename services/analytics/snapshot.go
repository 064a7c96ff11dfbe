package analytics

import (
	"context"
	"errors"
	"fmt"
	"log"

	"quizcore/apperrors"
	"quizcore/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Refresh recomputes the analytics of quizID and stores them as its snapshot
func (a *Aggregator) Refresh(ctx context.Context, quizID string) (*models.QuizAnalyticsSnapshot, error) {
	result, err := a.Aggregate(ctx, quizID)
	if err != nil {
		return nil, err
	}

	snapshot := models.QuizAnalyticsSnapshot{
		QuizID:        quizID,
		Analytics:     datatypes.NewJSONType(result),
		TotalAttempts: result.TotalAttempts,
		CalculatedAt:  a.now(),
	}
	err = a.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "quiz_id"}},
		UpdateAll: true,
	}).Create(&snapshot).Error
	if err != nil {
		return nil, fmt.Errorf("store analytics snapshot for quiz %s: %w", quizID, err)
	}
	return &snapshot, nil
}

// Snapshot returns the last stored analytics of quizID
func (a *Aggregator) Snapshot(ctx context.Context, quizID string) (*models.QuizAnalyticsSnapshot, error) {
	var snapshot models.QuizAnalyticsSnapshot
	err := a.db.WithContext(ctx).Where("quiz_id = ?", quizID).First(&snapshot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("analytics snapshot for quiz %s: %w", quizID, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("get analytics snapshot for quiz %s: %w", quizID, err)
	}
	return &snapshot, nil
}

// RefreshAll refreshes the snapshot of every published, live quiz and returns
// how many were refreshed. One failing quiz does not stop the others.
func (a *Aggregator) RefreshAll(ctx context.Context) (int, error) {
	var quizIDs []string
	err := a.db.WithContext(ctx).Model(&models.Quiz{}).
		Where("is_published = ? AND is_deleted = ?", true, false).
		Pluck("id", &quizIDs).Error
	if err != nil {
		return 0, fmt.Errorf("list quizzes for analytics: %w", err)
	}

	refreshed := 0
	for _, id := range quizIDs {
		if err := ctx.Err(); err != nil {
			return refreshed, err
		}
		if _, err := a.Refresh(ctx, id); err != nil {
			log.Printf("[ANALYTICS] Failed to refresh quiz %s: %v", id, err)
			continue
		}
		refreshed++
	}
	return refreshed, nil
}
