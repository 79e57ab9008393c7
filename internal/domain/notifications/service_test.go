package notifications

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workforce/internal/domain/compliance"
)

type created struct {
	userID, ntype, title, body string
}

type memoryStore struct {
	created      []created
	emailEnabled bool
	managers     []string
	contacts     map[string]Contact
}

func (s *memoryStore) CreateNotification(_ context.Context, _ string, userID, ntype, title, body string) error {
	s.created = append(s.created, created{userID, ntype, title, body})
	return nil
}

func (s *memoryStore) UserEmail(_ context.Context, _ string, userID string) (string, error) {
	return userID + "@example.com", nil
}

func (s *memoryStore) ListNotifications(context.Context, string, string, int, int) ([]Notification, error) {
	return nil, nil
}

func (s *memoryStore) CountNotifications(context.Context, string, string, bool) (int, error) {
	return len(s.created), nil
}

func (s *memoryStore) MarkRead(context.Context, string, string, string) (bool, error) {
	return true, nil
}

func (s *memoryStore) EmailSettings(context.Context, string) (bool, string, error) {
	return s.emailEnabled, "", nil
}

func (s *memoryStore) UpdateSettings(_ context.Context, _ string, enabled bool, _ string) error {
	s.emailEnabled = enabled
	return nil
}

func (s *memoryStore) UsersWithPermission(context.Context, string, string) ([]string, error) {
	return s.managers, nil
}

func (s *memoryStore) EmployeeContacts(_ context.Context, _ string, _ []string) (map[string]Contact, error) {
	return s.contacts, nil
}

type sentMail struct {
	from, to, subject string
}

type recordingMailer struct {
	sent []sentMail
}

func (m *recordingMailer) Send(_ context.Context, from, to, subject, _ string) error {
	m.sent = append(m.sent, sentMail{from, to, subject})
	return nil
}

func transition(employeeID, name string, current compliance.Status, expiry time.Time, daysLeft int) compliance.Transition {
	return compliance.Transition{
		Record:   compliance.Record{ID: name, EmployeeID: employeeID, Name: name, ExpiryDate: expiry},
		Previous: compliance.StatusValid,
		Current:  current,
		DaysLeft: daysLeft,
	}
}

func TestNotifyComplianceDigestAndPersonalNotes(t *testing.T) {
	store := &memoryStore{
		managers: []string{"hr-1", "hr-2"},
		contacts: map[string]Contact{
			"e1": {EmployeeID: "e1", Name: "Anna Nowak", UserID: "u-anna"},
			"e2": {EmployeeID: "e2", Name: "Jan Kowalski"},
		},
	}
	svc := New(store, nil)
	transitions := []compliance.Transition{
		transition("e1", "Szkolenie BHP", compliance.StatusWarning, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), 12),
		transition("e2", "Badania Lekarskie", compliance.StatusExpired, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), -3),
	}

	sent, err := svc.NotifyCompliance(context.Background(), "t1", transitions)
	require.NoError(t, err)
	assert.Equal(t, 3, sent)

	require.Len(t, store.created, 3)
	assert.Equal(t, TypeComplianceDigest, store.created[0].ntype)
	assert.Equal(t, "hr-2", store.created[1].userID)
	assert.Equal(t, "u-anna", store.created[2].userID)
	assert.Equal(t, TypeComplianceWarning, store.created[2].ntype)
	assert.Contains(t, store.created[2].body, "12 days left")
}

func TestNotifyComplianceNothingToSend(t *testing.T) {
	store := &memoryStore{managers: []string{"hr-1"}}
	sent, err := New(store, nil).NotifyCompliance(context.Background(), "t1", nil)
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Empty(t, store.created)
}

func TestDigestOrdersExpiredFirst(t *testing.T) {
	title, body := Digest([]compliance.Transition{
		transition("e1", "UDT wózki", compliance.StatusWarning, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), 20),
		transition("e2", "Szkolenie BHP", compliance.StatusExpired, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), -3),
		transition("e3", "SEP", compliance.StatusWarning, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), 5),
	}, map[string]Contact{"e2": {Name: "Jan Kowalski"}})

	assert.Equal(t, "Compliance: 1 expired, 2 expiring soon", title)
	lines := strings.Split(body, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "- Jan Kowalski: Szkolenie BHP EXPIRED (expiry 2024-01-05)", lines[0])
	assert.Contains(t, lines[1], "SEP")
	assert.Contains(t, lines[2], "e1")
}

func TestCreateSendsEmailWhenEnabled(t *testing.T) {
	store := &memoryStore{emailEnabled: true}
	mailer := &recordingMailer{}
	svc := New(store, mailer)

	require.NoError(t, svc.Create(context.Background(), "t1", "u1", TypeComplianceExpired, "expired", "body"))
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "no-reply@example.com", mailer.sent[0].from)
	assert.Equal(t, "u1@example.com", mailer.sent[0].to)

	store.emailEnabled = false
	require.NoError(t, svc.Create(context.Background(), "t1", "u1", TypeComplianceExpired, "expired", "body"))
	assert.Len(t, mailer.sent, 1)
}

func TestNotifyAnchorChange(t *testing.T) {
	store := &memoryStore{contacts: map[string]Contact{
		"e1": {EmployeeID: "e1", Name: "Anna Nowak", UserID: "u-anna"},
		"e2": {EmployeeID: "e2", Name: "Piotr Zieliński"},
	}}
	svc := New(store, nil)
	ctx := context.Background()

	require.NoError(t, svc.NotifyAnchorChange(ctx, "t1", "e1", "Rano"))
	require.NoError(t, svc.NotifyAnchorChange(ctx, "t1", "e2", "Noc"))
	require.NoError(t, svc.NotifyAnchorChange(ctx, "t1", "e1", ""))

	require.Len(t, store.created, 2)
	assert.Equal(t, "u-anna", store.created[0].userID)
	assert.Equal(t, TypeShiftAnchor, store.created[0].ntype)
	assert.Contains(t, store.created[0].body, "Rano")
	assert.Contains(t, store.created[1].body, "paused")
}
