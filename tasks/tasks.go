package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"dressupapi/fashion"
	"dressupapi/models"
	"dressupapi/suitcase"

	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

const (
	TypeReclassifyCloset  = "generate:reclassify_closet"
	TypeLookReminders     = "notify:look_reminders"
	TypeExpireDraftPlans  = "cleanup:expire_draft_plans"
	DraftPlanTTL          = 24 * time.Hour
	maxReminderBodyLength = 100
)

type ReclassifyClosetPayload struct {
	UserID uint `json:"user_id"`
}

// Notifier delivers a push message to every device of a user.
type Notifier interface {
	Notify(ctx context.Context, userID uint, title string, body string, data map[string]string) error
}

func NewReclassifyClosetTask(userID uint) (*asynq.Task, error) {
	payload, err := json.Marshal(ReclassifyClosetPayload{UserID: userID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeReclassifyCloset, payload), nil
}

func NewLookRemindersTask() *asynq.Task {
	return asynq.NewTask(TypeLookReminders, []byte{})
}

func NewExpireDraftPlansTask() *asynq.Task {
	return asynq.NewTask(TypeExpireDraftPlans, []byte{})
}

func HandleReclassifyClosetTask(ctx context.Context, t *asynq.Task, db *gorm.DB) error {
	var payload ReclassifyClosetPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	count, err := ReclassifyCloset(db, payload.UserID)
	if err != nil {
		sentry.CaptureException(fmt.Errorf("[Closet: %v] reclassification failed: %w", payload.UserID, err))
		return err
	}
	fmt.Printf("[Closet: %v] Reclassified %v pieces\n", payload.UserID, count)
	return nil
}

// ReclassifyCloset runs the classifier again over every stored piece of the
// user. Item ids and sources stay the same.
func ReclassifyCloset(db *gorm.DB, userID uint) (int, error) {
	var records []models.Clothing
	if err := db.Where("owner_id = ?", userID).Order("id").Find(&records).Error; err != nil {
		return 0, err
	}
	updated := 0
	for _, record := range records {
		resolvers := []fashion.LabelResolver{
			func(string) (string, error) { return record.Label, nil },
			fashion.LastPathSegment,
		}
		if record.MimeType != nil {
			resolvers = append(resolvers, fashion.MimeTypeFallback(*record.MimeType))
		}
		item := fashion.Classify(record.SourceRef, fashion.ChainResolvers(resolvers...))
		record.Apply(item)
		if err := db.Save(&record).Error; err != nil {
			return updated, fmt.Errorf("save %s: %w", record.ItemID, err)
		}
		updated++
	}
	return updated, nil
}

// ScheduledLookRemindersTask pushes today's planned look to every user who
// keeps notifications on.
func ScheduledLookRemindersTask(ctx context.Context, t *asynq.Task, db *gorm.DB, notifier Notifier) error {
	sent, err := SendLookReminders(ctx, db, notifier, time.Now())
	if err != nil {
		sentry.CaptureException(fmt.Errorf("[Look Reminder] %w", err))
		return err
	}
	fmt.Printf("[Look Reminder] Sent %d reminders\n", sent)
	return nil
}

func SendLookReminders(ctx context.Context, db *gorm.DB, notifier Notifier, now time.Time) (int, error) {
	today := suitcase.Day(now).Format(suitcase.DateLayout)
	var entries []models.CalendarEntry
	result := db.Joins("JOIN user_accounts ON user_accounts.id = calendar_entries.owner_id").
		Where("calendar_entries.date = ? AND user_accounts.receive_notifications = ? AND user_accounts.banned = ?", today, true, false).
		Find(&entries)
	if result.Error != nil {
		return 0, fmt.Errorf("error fetching calendar: %w", result.Error)
	}

	sent := 0
	for _, entry := range entries {
		var look models.StoredLook
		r := db.Where("owner_id = ? AND look_id = ?", entry.OwnerID, entry.LookID).Limit(1).Find(&look)
		if r.Error != nil {
			return sent, r.Error
		}
		if r.RowsAffected == 0 {
			fmt.Printf("[Look Reminder] Look %s of user %d is gone, dropping the entry\n", entry.LookID, entry.OwnerID)
			db.Delete(&entry)
			continue
		}
		title, body := reminderMessage(look)
		err := notifier.Notify(ctx, entry.OwnerID, title, body, map[string]string{
			"type":    "look_reminder",
			"look_id": look.LookID,
			"date":    entry.Date,
		})
		if err != nil {
			fmt.Printf("[Look Reminder] Failed to send to user %d: %v\n", entry.OwnerID, err)
			sentry.CaptureException(err)
			continue
		}
		sent++
	}
	return sent, nil
}

func reminderMessage(look models.StoredLook) (string, string) {
	title := "Your look for today"
	if style, ok := fashion.ParseStyle(look.Style); ok {
		title = fmt.Sprintf("Your %s look for today", style.Title())
	}
	body := look.Narrative
	if body == "" {
		body = "Open the app to see the pieces you planned."
	}
	if runes := []rune(body); len(runes) > maxReminderBodyLength {
		body = string(runes[:maxReminderBodyLength-3]) + "..."
	}
	return title, body
}

func ScheduledExpireDraftPlansTask(ctx context.Context, t *asynq.Task, db *gorm.DB) error {
	removed, err := ExpireDraftPlans(db, time.Now())
	if err != nil {
		sentry.CaptureException(fmt.Errorf("[Suitcase] draft cleanup: %w", err))
		return err
	}
	fmt.Printf("[Suitcase] Removed %d stale drafts\n", removed)
	return nil
}

// ExpireDraftPlans removes plans nobody confirmed within DraftPlanTTL.
func ExpireDraftPlans(db *gorm.DB, now time.Time) (int64, error) {
	result := db.Where("status = ? AND created_at < ?", models.PlanDraft, now.Add(-DraftPlanTTL)).Delete(&models.StoredTravelPlan{})
	return result.RowsAffected, result.Error
}
