package rabbitmq

// EventsExchange receives every event published by the platform.
const EventsExchange = "learning.events"

// RoutingKeyPurchaseCompleted tags events emitted after a package is granted.
const RoutingKeyPurchaseCompleted = "purchase.completed"

// QueueConfig binds a queue to the events exchange.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetEventQueues lists the queues downstream consumers read from.
func GetEventQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "purchases.completed", RoutingKey: RoutingKeyPurchaseCompleted},
	}
}
