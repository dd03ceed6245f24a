package rabbitmq

// Типы событий устройств, они же ключи маршрутизации.
const (
	EventQuotaExhausted = "device.quota_exhausted"
	EventPremiumChanged = "device.premium_changed"
)

// QueueConfig описывает очередь и её ключ маршрутизации.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetDeviceQueues возвращает очереди событий устройств.
func GetDeviceQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "devices.quota_exhausted", RoutingKey: EventQuotaExhausted},
		{QueueName: "devices.premium_changed", RoutingKey: EventPremiumChanged},
	}
}
