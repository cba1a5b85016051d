package logger

import (
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// AuditLogger provides a dedicated audit trail for ballot mutations.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogPickWritten logs a prediction create or update.
func (al *AuditLogger) LogPickWritten(poolID, userID uuid.UUID, categoryID, nomineeID string, odds, originalOdds *float64, switched bool) {
	al.WithFields(logrus.Fields{
		"pool_id":       poolID,
		"user_id":       userID,
		"category_id":   categoryID,
		"nominee_id":    nomineeID,
		"odds":          floatField(odds),
		"original_odds": floatField(originalOdds),
		"switched":      switched,
	}).Info("Pick recorded")
}

// LogRatchetApplied logs a stored-odds upgrade.
func (al *AuditLogger) LogRatchetApplied(poolID, userID uuid.UUID, categoryID string, oldOdds *float64, newOdds float64) {
	al.WithFields(logrus.Fields{
		"pool_id":     poolID,
		"user_id":     userID,
		"category_id": categoryID,
		"old_odds":    floatField(oldOdds),
		"new_odds":    newOdds,
	}).Info("Stored odds upgraded")
}

// LogBallotCleared logs a bulk prediction delete.
func (al *AuditLogger) LogBallotCleared(poolID, userID uuid.UUID, deleted, skipped int) {
	al.WithFields(logrus.Fields{
		"pool_id": poolID,
		"user_id": userID,
		"deleted": deleted,
		"skipped": skipped,
	}).Info("Ballot cleared")
}

// LogWinnerEntered logs a winner announcement.
func (al *AuditLogger) LogWinnerEntered(poolID uuid.UUID, categoryID, nomineeID string, enteredBy uuid.UUID, autoDetected bool, timestamp time.Time) {
	al.WithFields(logrus.Fields{
		"pool_id":       poolID,
		"category_id":   categoryID,
		"nominee_id":    nomineeID,
		"entered_by":    enteredBy,
		"auto_detected": autoDetected,
		"timestamp":     timestamp.Unix(),
	}).Info("Winner entered")
}

func floatField(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
