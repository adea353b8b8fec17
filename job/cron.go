package job

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

const (
	archiveSchedule  = "@hourly"
	purgeSchedule    = "30 3 * * *"
	defaultRetention = 90
	runTimeout       = 5 * time.Minute
)

type EventArchiver interface {
	ArchivePast(ctx context.Context, now time.Time) (int64, error)
}

type ChatPurger interface {
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Maintenance holds the periodic clean-up tasks.
type Maintenance struct {
	events    EventArchiver
	chat      ChatPurger
	retention time.Duration
	now       func() time.Time
}

func NewMaintenance(events EventArchiver, chat ChatPurger, retentionDays int) *Maintenance {
	if retentionDays <= 0 {
		retentionDays = defaultRetention
	}
	return &Maintenance{
		events:    events,
		chat:      chat,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		now:       time.Now,
	}
}

// RetentionDaysFromEnv reads CHAT_RETENTION_DAYS, defaulting to 90.
func RetentionDaysFromEnv() int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv("CHAT_RETENTION_DAYS")))
	if err != nil || v <= 0 {
		return defaultRetention
	}
	return v
}

func (m *Maintenance) ArchiveEvents(ctx context.Context) error {
	n, err := m.events.ArchivePast(ctx, m.now())
	if err != nil {
		slog.Error("archive events failed", "err", err)
		return err
	}
	if n > 0 {
		slog.Info("archived past events", "count", n)
	}
	return nil
}

func (m *Maintenance) PurgeChat(ctx context.Context) error {
	cutoff := m.now().Add(-m.retention)
	n, err := m.chat.PurgeOlderThan(ctx, cutoff)
	if err != nil {
		slog.Error("purge chat failed", "err", err)
		return err
	}
	if n > 0 {
		slog.Info("purged chat messages", "count", n, "cutoff", cutoff)
	}
	return nil
}

// Start schedules the tasks and starts the scheduler. Callers stop it on shutdown.
func Start(m *Maintenance) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddFunc(archiveSchedule, withTimeout(m.ArchiveEvents)); err != nil {
		return nil, err
	}
	if _, err := c.AddFunc(purgeSchedule, withTimeout(m.PurgeChat)); err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}

func withTimeout(task func(context.Context) error) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()
		_ = task(ctx)
	}
}
