package models

import "time"

// SubscriptionType - тип подписки Premium.
type SubscriptionType string

const (
	SubscriptionNone    SubscriptionType = ""
	SubscriptionMonthly SubscriptionType = "monthly"
	SubscriptionYearly  SubscriptionType = "yearly"
)

// ParseSubscriptionType разбирает тип подписки, неизвестные значения дают SubscriptionNone.
func ParseSubscriptionType(s string) SubscriptionType {
	switch SubscriptionType(s) {
	case SubscriptionMonthly, SubscriptionYearly:
		return SubscriptionType(s)
	}
	return SubscriptionNone
}

// PremiumStatus - сохраняемое состояние подписки. Хранит дату транзакции,
// а не дату окончания: срок действия проверяется через биллинг платформы
// при каждом запуске.
type PremiumStatus struct {
	IsPremium        bool             `json:"isPremium"`
	SubscriptionType SubscriptionType `json:"subscriptionType,omitempty"`
	TransactionDate  time.Time        `json:"transactionDate"`
}

// PremiumState - флаг Premium в памяти. Различает значение, прочитанное из
// локального кеша, и значение, подтверждённое в текущей сессии.
type PremiumState struct {
	status   PremiumStatus
	verified bool
	asOf     time.Time
}

// Cached создаёт состояние из локального кеша.
func Cached(status PremiumStatus, asOf time.Time) PremiumState {
	return PremiumState{status: status, asOf: asOf}
}

// Verified создаёт состояние, подтверждённое биллингом или действием пользователя.
func Verified(status PremiumStatus, at time.Time) PremiumState {
	return PremiumState{status: status, verified: true, asOf: at}
}

// IsPremium возвращает последнее известное значение флага.
func (p PremiumState) IsPremium() bool { return p.status.IsPremium }

// IsVerified сообщает, было ли значение подтверждено в текущей сессии.
func (p PremiumState) IsVerified() bool { return p.verified }

// AsOf возвращает момент, к которому относится значение.
func (p PremiumState) AsOf() time.Time { return p.asOf }

// Status возвращает сохраняемое представление.
func (p PremiumState) Status() PremiumStatus { return p.status }
