package kafka

// Kafka headers, по которым потребители фильтруют события без разбора тела.
const (
	HeaderEventType     = "x-event-type"
	HeaderAggregateType = "x-aggregate-type"
	HeaderMessageID     = "x-message-id"
	HeaderProducer      = "x-producer"
)
