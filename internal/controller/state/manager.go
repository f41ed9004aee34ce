package state

import (
	"sync"
	"time"
)

// DialogState текущее состояние чата в диалоге
type DialogState string

const (
	StateNone DialogState = "" // Нет активного диалога

	// Состояния диалога создания окна
	StateAddSlotLabel DialogState = "add_slot_label"
	StateAddSlotStart DialogState = "add_slot_start"
	StateAddSlotEnd   DialogState = "add_slot_end"

	// Состояние диалога создания услуги
	StateAddProcedureName DialogState = "add_procedure_name"
)

// DefaultTTL время жизни брошенного диалога
const DefaultTTL = 15 * time.Minute

type chatData struct {
	State     DialogState
	Data      map[string]interface{}
	ExpiresAt time.Time
}

// Manager сценарное состояние чатов. Это временные данные диалога: они живут
// только в памяти, истекают по TTL и безопасно теряются при рестарте.
type Manager struct {
	mu     sync.RWMutex
	states map[int64]*chatData // chatID -> chatData
	ttl    time.Duration

	now func() time.Time
}

// NewManager создаёт новый менеджер состояний
func NewManager(ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		states: make(map[int64]*chatData),
		ttl:    ttl,
		now:    time.Now,
	}
}

// GetState получает текущее состояние чата
func (sm *Manager) GetState(chatID int64) DialogState {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if data, ok := sm.alive(chatID); ok {
		return data.State
	}
	return StateNone
}

// SetState устанавливает состояние чата и продлевает TTL
func (sm *Manager) SetState(chatID int64, state DialogState) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.sweep()

	if state == StateNone {
		delete(sm.states, chatID)
		return
	}

	data, ok := sm.alive(chatID)
	if !ok {
		data = &chatData{Data: make(map[string]interface{})}
		sm.states[chatID] = data
	}
	data.State = state
	data.ExpiresAt = sm.now().Add(sm.ttl)
}

// GetData получает временные данные чата
func (sm *Manager) GetData(chatID int64, key string) (interface{}, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if data, ok := sm.alive(chatID); ok {
		value, ok := data.Data[key]
		return value, ok
	}
	return nil, false
}

// SetData устанавливает временные данные чата и продлевает TTL
func (sm *Manager) SetData(chatID int64, key string, value interface{}) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.sweep()

	data, ok := sm.alive(chatID)
	if !ok {
		data = &chatData{State: StateNone, Data: make(map[string]interface{})}
		sm.states[chatID] = data
	}
	data.Data[key] = value
	data.ExpiresAt = sm.now().Add(sm.ttl)
}

// ClearState очищает состояние и данные чата
func (sm *Manager) ClearState(chatID int64) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	delete(sm.states, chatID)
}

// sweep выбрасывает истёкшие записи всех чатов. Вызывается на пишущих путях
// под блокировкой записи, поэтому брошенные диалоги не копятся в карте.
func (sm *Manager) sweep() {
	now := sm.now()
	for chatID, data := range sm.states {
		if now.After(data.ExpiresAt) {
			delete(sm.states, chatID)
		}
	}
}

// alive возвращает запись чата, лениво выбрасывая истёкшую.
// Вызывается под любой из блокировок; удаление откладывается до записи.
func (sm *Manager) alive(chatID int64) (*chatData, bool) {
	data, ok := sm.states[chatID]
	if !ok {
		return nil, false
	}
	if sm.now().After(data.ExpiresAt) {
		return nil, false
	}
	return data, true
}
