package service

import (
	"context"
	"time"

	"agendanotify/internal/models"
)

// MockIntentRepository mocks repository.IntentRepository
type MockIntentRepository struct {
	ListDueFunc      func(ctx context.Context, now time.Time) ([]*models.DispatchIntent, error)
	UpdateStatusFunc func(ctx context.Context, id int, status models.IntentStatus) error
	FinalizeFunc     func(ctx context.Context, id int, status models.IntentStatus, totalTargets, sentCount int) error
	FailStaleFunc    func(ctx context.Context, olderThan time.Time) (int, error)

	Calls map[string]int

	// Recorded state for assertions
	Statuses      map[int][]models.IntentStatus
	FinalStatus   map[int]models.IntentStatus
	FinalTotals   map[int]int
	FinalSent     map[int]int
	FinalizeCount map[int]int
}

func NewMockIntentRepository() *MockIntentRepository {
	return &MockIntentRepository{
		Calls:         make(map[string]int),
		Statuses:      make(map[int][]models.IntentStatus),
		FinalStatus:   make(map[int]models.IntentStatus),
		FinalTotals:   make(map[int]int),
		FinalSent:     make(map[int]int),
		FinalizeCount: make(map[int]int),
	}
}

func (m *MockIntentRepository) ListDue(ctx context.Context, now time.Time) ([]*models.DispatchIntent, error) {
	m.Calls["ListDue"]++
	if m.ListDueFunc != nil {
		return m.ListDueFunc(ctx, now)
	}
	return []*models.DispatchIntent{}, nil
}

func (m *MockIntentRepository) UpdateStatus(ctx context.Context, id int, status models.IntentStatus) error {
	m.Calls["UpdateStatus"]++
	m.Statuses[id] = append(m.Statuses[id], status)
	if status == models.IntentStatusFailed || status == models.IntentStatusCompleted {
		m.FinalStatus[id] = status
	}
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, status)
	}
	return nil
}

func (m *MockIntentRepository) Finalize(ctx context.Context, id int, status models.IntentStatus, totalTargets, sentCount int) error {
	m.Calls["Finalize"]++
	m.Statuses[id] = append(m.Statuses[id], status)
	m.FinalStatus[id] = status
	m.FinalTotals[id] = totalTargets
	m.FinalSent[id] = sentCount
	m.FinalizeCount[id]++
	if m.FinalizeFunc != nil {
		return m.FinalizeFunc(ctx, id, status, totalTargets, sentCount)
	}
	return nil
}

func (m *MockIntentRepository) FailStale(ctx context.Context, olderThan time.Time) (int, error) {
	m.Calls["FailStale"]++
	if m.FailStaleFunc != nil {
		return m.FailStaleFunc(ctx, olderThan)
	}
	return 0, nil
}

// MockContactRepository mocks repository.ContactRepository
type MockContactRepository struct {
	ListWithPhoneFunc func(ctx context.Context, tenantID int) ([]*models.Contact, error)
	GetByIDsFunc      func(ctx context.Context, tenantID int, ids []int) ([]*models.Contact, error)

	Calls map[string]int
}

func NewMockContactRepository() *MockContactRepository {
	return &MockContactRepository{Calls: make(map[string]int)}
}

func (m *MockContactRepository) ListWithPhone(ctx context.Context, tenantID int) ([]*models.Contact, error) {
	m.Calls["ListWithPhone"]++
	if m.ListWithPhoneFunc != nil {
		return m.ListWithPhoneFunc(ctx, tenantID)
	}
	return []*models.Contact{}, nil
}

func (m *MockContactRepository) GetByIDs(ctx context.Context, tenantID int, ids []int) ([]*models.Contact, error) {
	m.Calls["GetByIDs"]++
	if m.GetByIDsFunc != nil {
		return m.GetByIDsFunc(ctx, tenantID, ids)
	}
	return []*models.Contact{}, nil
}

// MockDeliveryRepository mocks repository.DeliveryRepository
type MockDeliveryRepository struct {
	InsertFunc       func(ctx context.Context, record *models.DeliveryRecord) error
	ListBySourceFunc func(ctx context.Context, kind models.SourceKind, sourceID int) ([]*models.DeliveryRecord, error)

	Inserted []*models.DeliveryRecord
}

func NewMockDeliveryRepository() *MockDeliveryRepository {
	return &MockDeliveryRepository{Inserted: []*models.DeliveryRecord{}}
}

func (m *MockDeliveryRepository) Insert(ctx context.Context, record *models.DeliveryRecord) error {
	m.Inserted = append(m.Inserted, record)
	if m.InsertFunc != nil {
		return m.InsertFunc(ctx, record)
	}
	return nil
}

func (m *MockDeliveryRepository) ListBySource(ctx context.Context, kind models.SourceKind, sourceID int) ([]*models.DeliveryRecord, error) {
	if m.ListBySourceFunc != nil {
		return m.ListBySourceFunc(ctx, kind, sourceID)
	}
	records := []*models.DeliveryRecord{}
	for _, r := range m.Inserted {
		if r.SourceKind == kind && r.SourceID == sourceID {
			records = append(records, r)
		}
	}
	return records, nil
}

// MockChannelRepository mocks repository.ChannelRepository
type MockChannelRepository struct {
	GetConnectedFunc func(ctx context.Context, tenantID int) (*models.ChannelInstance, error)

	Calls map[string]int
}

func NewMockChannelRepository() *MockChannelRepository {
	return &MockChannelRepository{Calls: make(map[string]int)}
}

func (m *MockChannelRepository) GetConnected(ctx context.Context, tenantID int) (*models.ChannelInstance, error) {
	m.Calls["GetConnected"]++
	if m.GetConnectedFunc != nil {
		return m.GetConnectedFunc(ctx, tenantID)
	}
	return NewTestChannelInstance(tenantID), nil
}

// MockReminderRuleRepository mocks repository.ReminderRuleRepository
type MockReminderRuleRepository struct {
	GetByTypeFunc func(ctx context.Context, tenantID int, ruleType models.ReminderType) (*models.ReminderRule, error)

	Calls map[string]int
}

func NewMockReminderRuleRepository() *MockReminderRuleRepository {
	return &MockReminderRuleRepository{Calls: make(map[string]int)}
}

func (m *MockReminderRuleRepository) GetByType(ctx context.Context, tenantID int, ruleType models.ReminderType) (*models.ReminderRule, error) {
	m.Calls["GetByType"]++
	if m.GetByTypeFunc != nil {
		return m.GetByTypeFunc(ctx, tenantID, ruleType)
	}
	return nil, nil
}

// MockAppointmentRepository mocks repository.AppointmentRepository
type MockAppointmentRepository struct {
	GetContextFunc func(ctx context.Context, appointmentID int) (*models.AppointmentContext, error)

	Calls map[string]int
}

func NewMockAppointmentRepository() *MockAppointmentRepository {
	return &MockAppointmentRepository{Calls: make(map[string]int)}
}

func (m *MockAppointmentRepository) GetContext(ctx context.Context, appointmentID int) (*models.AppointmentContext, error) {
	m.Calls["GetContext"]++
	if m.GetContextFunc != nil {
		return m.GetContextFunc(ctx, appointmentID)
	}
	return NewTestAppointmentContext(appointmentID), nil
}

// MockSender mocks the channel client
type MockSender struct {
	SendFunc func(ctx context.Context, instance *models.ChannelInstance, phone, body string) Outcome

	Sent []SentMessage
}

type SentMessage struct {
	InstanceName string
	Phone        string
	Body         string
}

func NewMockSender() *MockSender {
	return &MockSender{Sent: []SentMessage{}}
}

func (m *MockSender) Send(ctx context.Context, instance *models.ChannelInstance, phone, body string) Outcome {
	m.Sent = append(m.Sent, SentMessage{InstanceName: instance.InstanceName, Phone: phone, Body: body})
	if m.SendFunc != nil {
		return m.SendFunc(ctx, instance, phone, body)
	}
	return Outcome{OK: true, NormalizedPhone: phone, ProviderResponse: `{"status":"sent"}`}
}

// Test fixtures

func NewTestChannelInstance(tenantID int) *models.ChannelInstance {
	return &models.ChannelInstance{
		ID:           7,
		TenantID:     tenantID,
		InstanceName: "studio-test",
		Connected:    true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
}

func NewTestContacts(tenantID int, phones ...string) []*models.Contact {
	contacts := make([]*models.Contact, 0, len(phones))
	for i, phone := range phones {
		contacts = append(contacts, &models.Contact{
			ID:       i + 1,
			TenantID: tenantID,
			Name:     "Contact",
			Phone:    phone,
		})
	}
	return contacts
}

func NewTestIntent(id, tenantID int, mode models.TargetMode) *models.DispatchIntent {
	return &models.DispatchIntent{
		ID:           id,
		TenantID:     tenantID,
		Name:         "Test campaign",
		MessageBody:  "Visit us this week!",
		TargetMode:   mode,
		ScheduledFor: time.Now().Add(-time.Minute),
		Status:       models.IntentStatusPending,
	}
}

func NewTestAppointmentContext(appointmentID int) *models.AppointmentContext {
	return &models.AppointmentContext{
		AppointmentID:    appointmentID,
		TenantID:         1,
		CompanyName:      "Studio Bela Vista",
		ClientName:       "Ana Souza",
		ClientPhone:      "11 99999-0001",
		ServiceName:      "Corte Feminino",
		ProfessionalName: "Paula Ribeiro",
		StartsAt:         time.Date(2026, 3, 14, 15, 30, 0, 0, time.UTC),
	}
}
