package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/avoronova/salon_bot/internal/model"
	"go.uber.org/zap"
)

// ── Fake TxRunner ──

type fakeTx struct{}

func (fakeTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// ── Fake SlotStore ──

type fakeSlotStore struct {
	mu     sync.Mutex
	slots  map[int64]model.Slot
	nextID int64
}

func newFakeSlotStore() *fakeSlotStore {
	return &fakeSlotStore{slots: make(map[int64]model.Slot), nextID: 1}
}

func (f *fakeSlotStore) Create(_ context.Context, slot *model.Slot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	slot.ID = f.nextID
	f.nextID++
	slot.CreatedAt = time.Now()
	f.slots[slot.ID] = *slot
	return nil
}

func (f *fakeSlotStore) CreateIfAbsent(_ context.Context, slot *model.Slot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.slots {
		if existing.StartTime.Before(slot.EndTime) && existing.EndTime.After(slot.StartTime) {
			return nil
		}
	}
	if _, ok := f.slots[slot.ID]; ok {
		return nil
	}
	f.slots[slot.ID] = *slot
	return nil
}

func (f *fakeSlotStore) GetByID(_ context.Context, id int64) (*model.Slot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	slot, ok := f.slots[id]
	if !ok {
		return nil, nil
	}
	return &slot, nil
}

func (f *fakeSlotStore) List(_ context.Context) ([]*model.Slot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Slot
	for _, slot := range f.slots {
		s := slot
		out = append(out, &s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (f *fakeSlotStore) Earliest(ctx context.Context) (*model.Slot, error) {
	slots, _ := f.List(ctx)
	if len(slots) == 0 {
		return nil, nil
	}
	return slots[0], nil
}

func (f *fakeSlotStore) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.slots, id)
	return nil
}

func (f *fakeSlotStore) HasOverlap(_ context.Context, start, end time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, slot := range f.slots {
		if slot.StartTime.Before(end) && slot.EndTime.After(start) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeSlotStore) SlotExists(_ context.Context, startTime time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, slot := range f.slots {
		if slot.StartTime.Equal(startTime) {
			return true, nil
		}
	}
	return false, nil
}

// ids множество id открытых окон, для сравнения состояний пула
func (f *fakeSlotStore) ids() map[int64]bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[int64]bool, len(f.slots))
	for id := range f.slots {
		out[id] = true
	}
	return out
}

// ── Fake AppointmentLedger ──

type fakeLedger struct {
	mu           sync.Mutex
	appointments map[int64]model.Appointment
	nextID       int64
	failUpdateID int64 // Update по этому id возвращает ошибку
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{appointments: make(map[int64]model.Appointment), nextID: 1}
}

func (f *fakeLedger) Create(_ context.Context, a *model.Appointment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a.ID = f.nextID
	f.nextID++
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	f.appointments[a.ID] = *a
	return nil
}

func (f *fakeLedger) GetByID(_ context.Context, id int64) (*model.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.appointments[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (f *fakeLedger) GetByIDForUpdate(ctx context.Context, id int64) (*model.Appointment, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeLedger) ListByStatus(_ context.Context, status model.AppointmentStatus) ([]*model.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Appointment
	for _, a := range f.appointments {
		if a.Status == status {
			copied := a
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SlotStart.Before(out[j].SlotStart) })
	return out, nil
}

func (f *fakeLedger) HasActive(_ context.Context, clientID, slotID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.appointments {
		if a.ClientID == clientID && a.SlotID == slotID && !a.Status.IsTerminal() {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeLedger) Update(_ context.Context, a *model.Appointment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a.ID == f.failUpdateID {
		return fmt.Errorf("update appointment: forced failure")
	}
	if _, ok := f.appointments[a.ID]; !ok {
		return fmt.Errorf("appointment not found")
	}
	f.appointments[a.ID] = *a
	return nil
}

func (f *fakeLedger) SetReminderEveSent(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.appointments[id]
	if !ok {
		return fmt.Errorf("appointment not found")
	}
	a.RemindedEve = true
	f.appointments[id] = a
	return nil
}

func (f *fakeLedger) SetReminderHourSent(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.appointments[id]
	if !ok {
		return fmt.Errorf("appointment not found")
	}
	a.RemindedHour = true
	f.appointments[id] = a
	return nil
}

func (f *fakeLedger) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.appointments[id]; !ok {
		return fmt.Errorf("appointment not found")
	}
	delete(f.appointments, id)
	return nil
}

func (f *fakeLedger) get(id int64) model.Appointment {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.appointments[id]
}

// ── Fake HistoryLog ──

type fakeHistory struct {
	mu      sync.Mutex
	entries []*model.HistoryEntry
}

func (f *fakeHistory) Append(_ context.Context, entry *model.HistoryEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry.ID = int64(len(f.entries) + 1)
	entry.CreatedAt = time.Now()
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeHistory) List(_ context.Context, limit int) ([]*model.HistoryEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if limit > len(f.entries) {
		limit = len(f.entries)
	}
	out := make([]*model.HistoryEntry, 0, limit)
	for i := len(f.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, f.entries[i])
	}
	return out, nil
}

// ── Fake BlacklistAdmin ──

type fakeBlacklist struct {
	mu      sync.Mutex
	blocked map[string]bool
}

func newFakeBlacklist() *fakeBlacklist {
	return &fakeBlacklist{blocked: make(map[string]bool)}
}

func (f *fakeBlacklist) IsBlacklisted(_ context.Context, username string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.blocked[username], nil
}

func (f *fakeBlacklist) Add(_ context.Context, username string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blocked[username] = true
	return nil
}

func (f *fakeBlacklist) Remove(_ context.Context, username string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.blocked, username)
	return nil
}

func (f *fakeBlacklist) List(_ context.Context) ([]*model.BlacklistEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.BlacklistEntry
	for username := range f.blocked {
		out = append(out, &model.BlacklistEntry{Username: username})
	}
	return out, nil
}

// ── Fake ProcedureCatalog ──

type fakeProcedures struct {
	mu     sync.Mutex
	procs  map[int64]model.Procedure
	nextID int64
}

func newFakeProcedures() *fakeProcedures {
	return &fakeProcedures{procs: make(map[int64]model.Procedure), nextID: 1}
}

func (f *fakeProcedures) Create(_ context.Context, p *model.Procedure) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.ID = f.nextID
	f.nextID++
	p.CreatedAt = time.Now()
	f.procs[p.ID] = *p
	return nil
}

func (f *fakeProcedures) GetByID(_ context.Context, id int64) (*model.Procedure, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.procs[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (f *fakeProcedures) GetByKey(_ context.Context, key string) (*model.Procedure, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.procs {
		if p.Key == key {
			copied := p
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeProcedures) GetActive(_ context.Context) ([]*model.Procedure, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Procedure
	for _, p := range f.procs {
		if p.IsActive {
			copied := p
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeProcedures) KeyExists(ctx context.Context, key string) (bool, error) {
	p, err := f.GetByKey(ctx, key)
	return p != nil, err
}

// ── Fake PatternSource ──

type fakePatterns struct {
	patterns []*model.SchedulePattern
}

func (f *fakePatterns) Create(_ context.Context, p *model.SchedulePattern) error {
	p.ID = int64(len(f.patterns) + 1)
	f.patterns = append(f.patterns, p)
	return nil
}

func (f *fakePatterns) GetAllActive(_ context.Context) ([]*model.SchedulePattern, error) {
	var out []*model.SchedulePattern
	for _, p := range f.patterns {
		if p.IsActive {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePatterns) GetByID(_ context.Context, id int64) (*model.SchedulePattern, error) {
	for _, p := range f.patterns {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, nil
}

func (f *fakePatterns) Deactivate(_ context.Context, id int64) error {
	for _, p := range f.patterns {
		if p.ID == id {
			p.IsActive = false
			return nil
		}
	}
	return fmt.Errorf("schedule pattern not found")
}

// ── Fake Notifier ──

type sentMessage struct {
	ChatID int64
	Text   string
}

type fakeNotifier struct {
	mu            sync.Mutex
	clientMsgs    []sentMessage
	masterMsgs    []string
	failClientIDs map[int64]bool // доставка этим клиентам падает
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{failClientIDs: make(map[int64]bool)}
}

func (f *fakeNotifier) NotifyClient(_ context.Context, chatID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failClientIDs[chatID] {
		return fmt.Errorf("telegram unavailable")
	}
	f.clientMsgs = append(f.clientMsgs, sentMessage{ChatID: chatID, Text: text})
	return nil
}

func (f *fakeNotifier) NotifyMaster(_ context.Context, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.masterMsgs = append(f.masterMsgs, text)
	return nil
}

func (f *fakeNotifier) clientCount(chatID int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, m := range f.clientMsgs {
		if m.ChatID == chatID {
			count++
		}
	}
	return count
}

// ── Test env ──

type testEnv struct {
	slots      *fakeSlotStore
	ledger     *fakeLedger
	history    *fakeHistory
	blacklist  *fakeBlacklist
	procedures *fakeProcedures
	notifier   *fakeNotifier
	booking    *BookingService
}

func newTestEnv() *testEnv {
	env := &testEnv{
		slots:      newFakeSlotStore(),
		ledger:     newFakeLedger(),
		history:    &fakeHistory{},
		blacklist:  newFakeBlacklist(),
		procedures: newFakeProcedures(),
		notifier:   newFakeNotifier(),
	}
	env.booking = NewBookingService(
		fakeTx{},
		env.slots,
		env.ledger,
		env.history,
		env.blacklist,
		env.procedures,
		env.notifier,
		zap.NewNop(),
	)
	return env
}

// addSlot создаёт окно длиной час, начинающееся в start
func (e *testEnv) addSlot(start time.Time) *model.Slot {
	slot := &model.Slot{
		Label:     start.Format("02.01 15:04"),
		StartTime: start,
		EndTime:   start.Add(time.Hour),
	}
	if err := e.slots.Create(context.Background(), slot); err != nil {
		panic(err)
	}
	return slot
}
