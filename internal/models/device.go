package models

import "time"

// Device - серверная запись счётчика поисков устройства.
type Device struct {
	DeviceID    string    `json:"device_id"`
	SearchCount int       `json:"search_count"`
	IsPremium   bool      `json:"is_premium"`
	FirstSeen   time.Time `json:"first_seen"`
	LastSeen    time.Time `json:"last_seen"`
}

// DeviceRequest используется для приёма запросов sync и increment-search.
type DeviceRequest struct {
	DeviceID  string `json:"device_id" validate:"required,min=1,max=255"` // Идентификатор устройства
	IsPremium bool   `json:"is_premium"`                                  // Статус Premium по мнению клиента
}

// SyncResult - ответ на синхронизацию устройства.
type SyncResult struct {
	SearchCount int  `json:"search_count"`
	IsPremium   bool `json:"is_premium"`
	Offline     bool `json:"offline"`
}

// IncrementResult - ответ на учёт поиска. SearchCount равен -1, когда
// счётчик не ведётся (клиент сообщил о Premium).
type IncrementResult struct {
	Allowed     bool `json:"allowed"`
	SearchCount int  `json:"search_count"`
}

// UntrackedSearchCount - значение SearchCount для Premium-клиентов.
const UntrackedSearchCount = -1

// DeviceEvent публикуется в очередь при значимых изменениях устройства.
type DeviceEvent struct {
	Type        string    `json:"type"`
	DeviceID    string    `json:"device_id"`
	SearchCount int       `json:"search_count"`
	IsPremium   bool      `json:"is_premium"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// DeviceSync - результат upsert устройства при синхронизации.
type DeviceSync struct {
	Device         Device
	PremiumChanged bool
}

// DeviceIncrement - результат учёта поиска в хранилище.
// FirstDenial выставляется при первом отказе устройству.
type DeviceIncrement struct {
	Device      Device
	Allowed     bool
	FirstDenial bool
}
