// Package notify turns reminder eligibility into deliveries. A ticker-driven
// scheduler evaluates which users are due each pass and dispatches over web
// push, falling back to email for users with no registered devices.
package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	retry "github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"github.com/plateful/backend/config"
	"github.com/plateful/backend/internal/models"
	"github.com/plateful/backend/internal/reminder"
)

// Reminder kinds beyond the three meals. Meal kind names come from the
// reminder package.
const (
	KindWater = "water"
	KindSleep = "sleep"
)

// Log channel and status values written to notification_logs.
const (
	ChannelPush  = "push"
	ChannelEmail = "email"

	StatusSent   = "sent"
	StatusFailed = "failed"
)

// Store is the slice of the preference layer the pipeline needs.
type Store interface {
	ListReminderSnapshots(ctx context.Context) ([]reminder.Snapshot, error)
	ListActiveDevices(ctx context.Context, userID uuid.UUID) ([]models.Device, error)
	DeactivateDevice(ctx context.Context, deviceID uuid.UUID) error
	AppendLog(ctx context.Context, entry *models.NotificationLog) error
	UpdateLastWaterReminder(ctx context.Context, userID uuid.UUID, sentAt time.Time) error
}

// UserDirectory resolves user records for the email fallback channel.
type UserDirectory interface {
	GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error)
}

// EmailSender delivers reminders to users with no active devices.
type EmailSender interface {
	SendReminderEmail(user *models.User, kind, message string) error
}

// reminderCopy is the user-facing text per reminder kind.
var reminderCopy = map[string]struct{ Title, Body string }{
	string(reminder.MealBreakfast): {"Breakfast time", "Start your day right. What's for breakfast?"},
	string(reminder.MealLunch):     {"Lunch time", "Take a break and log your lunch."},
	string(reminder.MealDinner):    {"Dinner time", "Plan something good for dinner tonight."},
	KindWater:                      {"Water break", "Time for a glass of water."},
	KindSleep:                      {"Wind-down reminder", "Time to start winding down for the night."},
}

// Service runs one delivery pass per scheduler tick. It holds no mutable
// state; every pass works from a fresh snapshot read.
type Service struct {
	store   Store
	users   UserDirectory
	push    PushSender
	email   EmailSender
	dedup   Deduper
	eval    *reminder.Evaluator
	log     *zap.Logger
	workers int
	linkURL string

	intervalWater bool
}

// NewService wires the delivery pipeline. The evaluator takes its water
// policy and quiet-window defaults from cfg. A nil logger disables logging;
// a nil deduper disables duplicate suppression.
func NewService(cfg *config.Config, store Store, users UserDirectory, push PushSender, email EmailSender, dedup Deduper, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if dedup == nil {
		dedup = nopDeduper{}
	}

	policy := reminder.WaterPolicy(cfg.WaterPolicy)
	eval := reminder.NewEvaluator(policy, log)
	quietStart := cfg.QuietStartMinutes
	quietEnd := cfg.QuietEndMinutes
	eval.QuietStart = &quietStart
	eval.QuietEnd = &quietEnd

	workers := cfg.DispatchWorkers
	if workers < 1 {
		workers = 1
	}

	return &Service{
		store:         store,
		users:         users,
		push:          push,
		email:         email,
		dedup:         dedup,
		eval:          eval,
		log:           log,
		workers:       workers,
		linkURL:       cfg.FrontendURL,
		intervalWater: policy == reminder.WaterPolicyInterval,
	}
}

type job struct {
	userID string
	kind   string
	snap   reminder.Snapshot
}

// Tick runs one full pass: snapshot, evaluate, dispatch. A failed delivery
// never aborts the pass; each job stands alone.
func (s *Service) Tick(ctx context.Context, now time.Time) {
	snaps, err := s.store.ListReminderSnapshots(ctx)
	if err != nil {
		s.log.Error("list reminder snapshots", zap.Error(err))
		return
	}

	res := s.eval.Evaluate(now, snaps)
	if res.Total() == 0 {
		return
	}
	s.log.Info("reminders due",
		zap.Int("total", res.Total()),
		zap.Int("breakfast", len(res.Breakfast)),
		zap.Int("lunch", len(res.Lunch)),
		zap.Int("dinner", len(res.Dinner)),
		zap.Int("sleep", len(res.Sleep)),
		zap.Int("water", len(res.Water)))

	byUser := make(map[string]reminder.Snapshot, len(snaps))
	for _, snap := range snaps {
		byUser[snap.UserID] = snap
	}

	jobs := make([]job, 0, res.Total())
	add := func(kind string, ids []string) {
		for _, id := range ids {
			jobs = append(jobs, job{userID: id, kind: kind, snap: byUser[id]})
		}
	}
	add(string(reminder.MealBreakfast), res.Breakfast)
	add(string(reminder.MealLunch), res.Lunch)
	add(string(reminder.MealDinner), res.Dinner)
	add(KindSleep, res.Sleep)
	add(KindWater, res.Water)

	ch := make(chan job)
	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range ch {
				s.deliver(ctx, now, j)
			}
		}()
	}
	for _, j := range jobs {
		ch <- j
	}
	close(ch)
	wg.Wait()
}

// deliver sends one reminder to one user and records the outcome.
func (s *Service) deliver(ctx context.Context, now time.Time, j job) {
	userID, err := uuid.Parse(j.userID)
	if err != nil {
		s.log.Error("bad user id in snapshot", zap.String("user_id", j.userID), zap.Error(err))
		return
	}

	local := now.In(reminder.ResolveTimezone(j.snap.Timezone))
	hourBucket := j.kind == KindWater && s.intervalWater
	won, err := s.dedup.Claim(ctx, DedupKey(j.userID, j.kind, local, hourBucket))
	if err != nil {
		// Redis being down must not silence reminders.
		s.log.Warn("dedup claim failed, sending anyway",
			zap.String("user_id", j.userID), zap.Error(err))
	} else if !won {
		s.log.Debug("duplicate delivery suppressed",
			zap.String("user_id", j.userID), zap.String("kind", j.kind))
		return
	}

	devices, err := s.store.ListActiveDevices(ctx, userID)
	if err != nil {
		s.log.Error("list active devices", zap.String("user_id", j.userID), zap.Error(err))
		return
	}

	channel := ChannelEmail
	var sendErr error
	if len(devices) > 0 {
		channel = ChannelPush
		var delivered int
		delivered, sendErr = s.pushAll(ctx, devices, j.kind)
		if delivered == 0 && sendErr == nil {
			// Every device turned out expired, so the user effectively has
			// none left; treat them like a device-less user this pass.
			channel = ChannelEmail
			sendErr = s.emailFallback(ctx, userID, j.kind)
		}
	} else {
		sendErr = s.emailFallback(ctx, userID, j.kind)
	}

	entry := &models.NotificationLog{
		UserID:  userID,
		Kind:    j.kind,
		Channel: channel,
		Status:  StatusSent,
		SentAt:  now.UTC(),
	}
	if sendErr != nil {
		entry.Status = StatusFailed
		entry.Detail = sendErr.Error()
	}
	if err := s.store.AppendLog(ctx, entry); err != nil {
		s.log.Error("append notification log", zap.String("user_id", j.userID), zap.Error(err))
	}

	if sendErr != nil {
		s.log.Warn("reminder delivery failed",
			zap.String("user_id", j.userID),
			zap.String("kind", j.kind),
			zap.String("channel", channel),
			zap.Error(sendErr))
		return
	}

	// The interval water policy measures from the last successful send.
	if j.kind == KindWater {
		if err := s.store.UpdateLastWaterReminder(ctx, userID, now); err != nil {
			s.log.Error("update last water reminder",
				zap.String("user_id", j.userID), zap.Error(err))
		}
	}
}

// pushAll delivers to every active device. One device succeeding counts as
// delivered; expired devices are deactivated as they are discovered. The
// returned error is the last transient failure, nil when everything either
// succeeded or expired.
func (s *Service) pushAll(ctx context.Context, devices []models.Device, kind string) (int, error) {
	text := reminderCopy[kind]
	payload := PushPayload{
		Title: text.Title,
		Body:  text.Body,
		URL:   s.linkURL,
		Tag:   "reminder-" + kind,
	}

	delivered := 0
	var lastErr error
	for _, device := range devices {
		err := s.withRetry(ctx, func(ctx context.Context) error {
			return s.push.Send(ctx, device, payload)
		})
		switch {
		case err == nil:
			delivered++
		case errors.Is(err, ErrExpired):
			s.log.Info("deactivating expired device",
				zap.String("device_id", device.ID.String()),
				zap.String("user_id", device.UserID.String()))
			if derr := s.store.DeactivateDevice(ctx, device.ID); derr != nil {
				s.log.Error("deactivate device",
					zap.String("device_id", device.ID.String()), zap.Error(derr))
			}
		default:
			lastErr = err
		}
	}
	return delivered, lastErr
}

// emailFallback mails the reminder to users who have nothing to push to.
func (s *Service) emailFallback(ctx context.Context, userID uuid.UUID, kind string) error {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	text := reminderCopy[kind]
	return s.withRetry(ctx, func(ctx context.Context) error {
		return s.email.SendReminderEmail(user, kind, text.Body)
	})
}

// withRetry wraps one send in capped exponential backoff. Expired
// subscriptions and context cancellation pass through untouched; everything
// else gets up to two more attempts.
func (s *Service) withRetry(ctx context.Context, fn func(context.Context) error) error {
	b := retry.WithMaxRetries(2, retry.NewExponential(200*time.Millisecond))
	return retry.Do(ctx, b, func(ctx context.Context) error {
		err := fn(ctx)
		if err == nil || errors.Is(err, ErrExpired) {
			return err
		}
		return retry.RetryableError(err)
	})
}
