package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"workforce/internal/domain/auth"
	"workforce/internal/domain/compliance"
	"workforce/internal/requestctx"
)

type Mailer interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

type Service struct {
	store       StoreAPI
	Mailer      Mailer
	DefaultFrom string
}

func New(store StoreAPI, mailer Mailer) *Service {
	return &Service{store: store, Mailer: mailer, DefaultFrom: "no-reply@example.com"}
}

func (s *Service) Create(ctx context.Context, tenantID, userID, ntype, title, body string) error {
	if err := s.store.CreateNotification(ctx, tenantID, userID, ntype, title, body); err != nil {
		return err
	}

	if s.Mailer == nil {
		return nil
	}

	enabled, from := s.getEmailSettings(ctx, tenantID)
	if !enabled {
		return nil
	}
	if from == "" {
		from = s.DefaultFrom
	}

	email, err := s.store.UserEmail(ctx, tenantID, userID)
	if err != nil {
		slog.Warn("notification email lookup failed", "err", err)
		return nil
	}
	if email == "" {
		return nil
	}
	if err := s.Mailer.Send(ctx, from, email, title, body); err != nil {
		slog.Warn("notification email send failed", "correlation", requestctx.Correlation(ctx), "err", err)
	}
	return nil
}

// NotifyCompliance fans the escalations of one sweep out to the people who
// act on them: every compliance manager gets one digest, and each affected
// employee with an account gets a note per record.
func (s *Service) NotifyCompliance(ctx context.Context, tenantID string, transitions []compliance.Transition) (int, error) {
	if len(transitions) == 0 {
		return 0, nil
	}
	ids := make([]string, 0, len(transitions))
	for _, t := range transitions {
		ids = append(ids, t.Record.EmployeeID)
	}
	contacts, err := s.store.EmployeeContacts(ctx, tenantID, ids)
	if err != nil {
		return 0, err
	}
	managers, err := s.store.UsersWithPermission(ctx, tenantID, auth.PermComplianceWrite)
	if err != nil {
		return 0, err
	}

	sent := 0
	title, body := Digest(transitions, contacts)
	for _, userID := range managers {
		if err := s.Create(ctx, tenantID, userID, TypeComplianceDigest, title, body); err != nil {
			return sent, err
		}
		sent++
	}

	for _, t := range transitions {
		contact, ok := contacts[t.Record.EmployeeID]
		if !ok || contact.UserID == "" {
			continue
		}
		ntype, title, body := personalNote(t)
		if err := s.Create(ctx, tenantID, contact.UserID, ntype, title, body); err != nil {
			return sent, err
		}
		sent++
	}
	return sent, nil
}

// Digest renders the manager summary, expired records first.
func Digest(transitions []compliance.Transition, contacts map[string]Contact) (string, string) {
	sorted := append([]compliance.Transition(nil), transitions...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Current != sorted[j].Current {
			return sorted[i].Current == compliance.StatusExpired
		}
		return sorted[i].DaysLeft < sorted[j].DaysLeft
	})

	expired := 0
	lines := make([]string, 0, len(sorted))
	for _, t := range sorted {
		if t.Current == compliance.StatusExpired {
			expired++
		}
		name := t.Record.EmployeeID
		if c, ok := contacts[t.Record.EmployeeID]; ok && c.Name != "" {
			name = c.Name
		}
		lines = append(lines, fmt.Sprintf("- %s: %s %s (expiry %s)", name, t.Record.Name, t.Current, t.Record.ExpiryDate.Format("2006-01-02")))
	}
	title := fmt.Sprintf("Compliance: %d expired, %d expiring soon", expired, len(sorted)-expired)
	return title, strings.Join(lines, "\n")
}

func personalNote(t compliance.Transition) (string, string, string) {
	expiry := t.Record.ExpiryDate.Format("2006-01-02")
	if t.Current == compliance.StatusExpired {
		return TypeComplianceExpired,
			t.Record.Name + " has expired",
			fmt.Sprintf("Your %s expired on %s. Contact HR to renew it.", t.Record.Name, expiry)
	}
	return TypeComplianceWarning,
		t.Record.Name + " expires soon",
		fmt.Sprintf("Your %s expires on %s (%d days left).", t.Record.Name, expiry, t.DaysLeft)
}

// NotifyAnchorChange tells an employee with an account that their rotation
// now starts from a different shift.
func (s *Service) NotifyAnchorChange(ctx context.Context, tenantID, employeeID, shiftName string) error {
	contacts, err := s.store.EmployeeContacts(ctx, tenantID, []string{employeeID})
	if err != nil {
		return err
	}
	contact, ok := contacts[employeeID]
	if !ok || contact.UserID == "" {
		return nil
	}
	body := "You no longer have an anchor shift; your rotation is paused."
	if shiftName != "" {
		body = fmt.Sprintf("Your rotation is now anchored on the %s shift.", shiftName)
	}
	return s.Create(ctx, tenantID, contact.UserID, TypeShiftAnchor, "Shift rotation changed", body)
}

func (s *Service) List(ctx context.Context, tenantID, userID string, limit, offset int) ([]Notification, error) {
	return s.store.ListNotifications(ctx, tenantID, userID, limit, offset)
}

func (s *Service) Count(ctx context.Context, tenantID, userID string, unreadOnly bool) (int, error) {
	return s.store.CountNotifications(ctx, tenantID, userID, unreadOnly)
}

func (s *Service) MarkRead(ctx context.Context, tenantID, userID, notificationID string) (bool, error) {
	return s.store.MarkRead(ctx, tenantID, userID, notificationID)
}

func (s *Service) getEmailSettings(ctx context.Context, tenantID string) (bool, string) {
	enabled, from, err := s.store.EmailSettings(ctx, tenantID)
	if err != nil {
		return false, ""
	}
	return enabled, from
}

func (s *Service) GetSettings(ctx context.Context, tenantID string) (Settings, error) {
	enabled, from, err := s.store.EmailSettings(ctx, tenantID)
	if err != nil {
		return Settings{}, err
	}
	return Settings{EmailEnabled: enabled, EmailFrom: from}, nil
}

func (s *Service) UpdateSettings(ctx context.Context, tenantID string, settings Settings) error {
	return s.store.UpdateSettings(ctx, tenantID, settings.EmailEnabled, strings.TrimSpace(settings.EmailFrom))
}
