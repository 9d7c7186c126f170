package orchestrators

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/yuin/goldmark"

	emailAdapter "gymdesk/internal/adapters/email"
	"gymdesk/internal/adapters/metrics"
	leadStore "gymdesk/internal/adapters/storage/lead"
	"gymdesk/internal/domain/lead"
)

// DefaultReminderDays is the look-ahead used when the caller passes no window.
const DefaultReminderDays = 7

// SendExpiryRemindersInput carries the look-ahead window.
type SendExpiryRemindersInput struct {
	Days int
}

// SendExpiryRemindersResult reports what happened to each candidate.
type SendExpiryRemindersResult struct {
	Sent    int      `json:"sent"`
	Skipped int      `json:"skipped"`
	LeadIDs []string `json:"leadIds"`
}

// SendExpiryRemindersDeps holds dependencies for SendExpiryReminders.
type SendExpiryRemindersDeps struct {
	LeadStore   leadStore.Store
	EmailSender emailAdapter.Sender
	Now         func() time.Time
	FromAddress string
	ReplyTo     string
	GymName     string
}

// ExecuteSendExpiryReminders emails every lead whose membership expires within Days.
// PRE: EmailSender is configured (the noop sender is acceptable)
// POST: Leads without an email are skipped; one batch send covers the rest
func ExecuteSendExpiryReminders(ctx context.Context, input SendExpiryRemindersInput, deps SendExpiryRemindersDeps) (SendExpiryRemindersResult, error) {
	days := input.Days
	if days <= 0 {
		days = DefaultReminderDays
	}
	now := deps.Now()
	leads, err := deps.LeadStore.List(ctx, leadStore.ListFilter{})
	if err != nil {
		return SendExpiryRemindersResult{}, err
	}

	type candidate struct {
		l   lead.Lead
		exp time.Time
	}
	var due []candidate
	for _, l := range leads {
		if exp, ok := lead.ExpiresBetween(l, now, now.AddDate(0, 0, days)); ok {
			due = append(due, candidate{l: l, exp: exp})
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].exp.Before(due[j].exp) })

	result := SendExpiryRemindersResult{LeadIDs: []string{}}
	var reqs []emailAdapter.SendRequest
	for _, c := range due {
		if strings.TrimSpace(c.l.Email) == "" {
			result.Skipped++
			continue
		}
		html, err := renderReminder(deps.GymName, c.l, c.exp)
		if err != nil {
			return SendExpiryRemindersResult{}, err
		}
		reqs = append(reqs, emailAdapter.SendRequest{
			To:      []string{c.l.Email},
			From:    deps.FromAddress,
			Subject: fmt.Sprintf("Your %s membership expires on %s", deps.GymName, c.exp.Format("2 Jan 2006")),
			HTML:    html,
			ReplyTo: deps.ReplyTo,
		})
		result.LeadIDs = append(result.LeadIDs, c.l.ID)
	}
	if len(reqs) == 0 {
		return result, nil
	}

	sent, err := deps.EmailSender.SendBatch(ctx, reqs)
	result.Sent = len(sent)
	metrics.RemindersSent.Add(float64(len(sent)))
	if err != nil {
		slog.Error("reminder_event", "event", "reminder_batch_failed", "sent", len(sent), "error", err)
		return result, err
	}
	slog.Info("reminder_event", "event", "reminders_sent", "sent", result.Sent, "skipped", result.Skipped, "days", days)
	return result, nil
}

func renderReminder(gym string, l lead.Lead, exp time.Time) (string, error) {
	md := fmt.Sprintf("Hi %s,\n\nYour **%s** membership ends on **%s**.\n\nVisit the front desk to renew.\n",
		l.Name, gym, exp.Format("Monday, 2 January 2006"))
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
