package reminder

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"doctordash/models"
	"doctordash/services/notification"
)

func testEngine(repo *fakeReminderRepo, clock *fakeClock, channels ...notification.NotificationChannel) *DispatchEngine {
	return &DispatchEngine{
		Reminders: repo,
		Users: fakeDirectory{recipients: map[string]models.Recipient{
			"user-a": {UserID: "user-a", Name: "Asha", Email: "asha@example.com"},
		}},
		Channels:  notification.NewRegistry(channels...),
		Clock:     clock,
		Location:  time.UTC,
		BatchSize: 100,
		Logger:    zap.NewNop(),
	}
}

func dueReminder(id string, nextSendAt time.Time) *models.Reminder {
	return &models.Reminder{
		ID:         id,
		UserID:     "user-a",
		VitalType:  models.VitalBloodSugar,
		Frequency:  models.FrequencyDaily,
		Time:       "09:00",
		Active:     true,
		Channels:   []models.Channel{models.ChannelEmail},
		NextSendAt: nextSendAt,
	}
}

func TestRunSweepDispatchesDue(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock(monday(9, 0))
	repo := newFakeReminderRepo()
	email := &fakeChannel{kind: models.ChannelEmail}
	engine := testEngine(repo, clock, email)

	require.NoError(t, repo.Create(ctx, dueReminder("rem-due", monday(9, 0))))
	require.NoError(t, repo.Create(ctx, dueReminder("rem-future", monday(18, 0))))

	require.NoError(t, engine.RunSweep(ctx))

	require.Equal(t, 1, email.count(), "only the due reminder fires")
	assert.Contains(t, email.sent[0].Msg.Subject, "Blood Sugar")
	assert.Equal(t, "asha@example.com", email.sent[0].To.Email)

	fired, err := repo.GetByID(ctx, "rem-due")
	require.NoError(t, err)
	require.NotNil(t, fired.LastSentAt)
	assert.Equal(t, monday(9, 0).AddDate(0, 0, 1), fired.NextSendAt,
		"the schedule advances past the minimum refire gap")

	// A second sweep at the same instant finds nothing to claim.
	require.NoError(t, engine.RunSweep(ctx))
	assert.Equal(t, 1, email.count())
}

func TestRunSweepClaimLostSkipsSend(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock(monday(9, 0))
	repo := newFakeReminderRepo()
	email := &fakeChannel{kind: models.ChannelEmail}
	engine := testEngine(repo, clock, email)

	require.NoError(t, repo.Create(ctx, dueReminder("rem-1", monday(9, 0))))

	// Another sweep advanced the schedule between FindDue and our claim.
	stale := *repo.reminders["rem-1"]
	require.NoError(t, repo.SetNextSendAt(ctx, "rem-1", monday(9, 0).AddDate(0, 0, 1)))

	engine.processReminder(ctx, stale, clock.Now())
	assert.Zero(t, email.count(), "a lost claim must not send")
}

func TestRunSweepChannelFailureIsolated(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock(monday(9, 0))
	repo := newFakeReminderRepo()
	email := &fakeChannel{kind: models.ChannelEmail, err: assert.AnError}
	push := &fakeChannel{kind: models.ChannelPush}
	engine := testEngine(repo, clock, email, push)

	rem := dueReminder("rem-1", monday(9, 0))
	rem.Channels = []models.Channel{models.ChannelEmail, models.ChannelPush}
	require.NoError(t, repo.Create(ctx, rem))

	require.NoError(t, engine.RunSweep(ctx))

	assert.Equal(t, 1, push.count(), "a failing channel does not block the others")

	fired, err := repo.GetByID(ctx, "rem-1")
	require.NoError(t, err)
	assert.True(t, fired.NextSendAt.After(monday(9, 0)),
		"the schedule advances even when a channel fails")
}

func TestRunSweepUnknownRecipient(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock(monday(9, 0))
	repo := newFakeReminderRepo()
	email := &fakeChannel{kind: models.ChannelEmail}
	engine := testEngine(repo, clock, email)

	rem := dueReminder("rem-1", monday(9, 0))
	rem.UserID = "user-unknown"
	require.NoError(t, repo.Create(ctx, rem))

	require.NoError(t, engine.RunSweep(ctx))
	assert.Zero(t, email.count())
}

func TestPostpone(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock(monday(9, 0))
	repo := newFakeReminderRepo()
	engine := testEngine(repo, clock, &fakeChannel{kind: models.ChannelEmail})

	require.NoError(t, repo.Create(ctx, dueReminder("rem-1", monday(9, 0))))

	next, err := engine.Postpone(ctx, "user-a", "rem-1", 3)
	require.NoError(t, err)
	assert.Equal(t, monday(12, 0), next)

	stored, err := repo.GetByID(ctx, "rem-1")
	require.NoError(t, err)
	assert.Equal(t, monday(12, 0), stored.NextSendAt)

	_, err = engine.Postpone(ctx, "user-b", "rem-1", 3)
	assert.ErrorIs(t, err, ErrNotOwner)
}

func TestSendTestLeavesScheduleUntouched(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock(monday(9, 0))
	repo := newFakeReminderRepo()
	email := &fakeChannel{kind: models.ChannelEmail}
	engine := testEngine(repo, clock, email)

	require.NoError(t, repo.Create(ctx, dueReminder("rem-1", monday(18, 0))))

	require.NoError(t, engine.SendTest(ctx, "user-a", "rem-1"))

	require.Equal(t, 1, email.count())
	assert.Contains(t, email.sent[0].Msg.Subject, "[Test]")
	assert.Equal(t, "asha@example.com", email.sent[0].To.Email)

	stored, err := repo.GetByID(ctx, "rem-1")
	require.NoError(t, err)
	assert.Equal(t, monday(18, 0), stored.NextSendAt, "a test send never moves the schedule")
	assert.Nil(t, stored.LastSentAt)
}

func TestSendTestOwnershipAndFailure(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock(monday(9, 0))
	repo := newFakeReminderRepo()
	email := &fakeChannel{kind: models.ChannelEmail, err: assert.AnError}
	engine := testEngine(repo, clock, email)

	require.NoError(t, repo.Create(ctx, dueReminder("rem-1", monday(18, 0))))

	err := engine.SendTest(ctx, "user-b", "rem-1")
	assert.ErrorIs(t, err, ErrNotOwner)

	err = engine.SendTest(ctx, "user-a", "rem-1")
	assert.Error(t, err, "no channel delivered anything")
}
