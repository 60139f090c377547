package audit

// TopicPrefix namespaces the audit topics.
const TopicPrefix = "soulbound.audit."

// TopicFor maps an action to the Kafka topic its events publish to. Routing
// is by category so retention policy can differ per topic.
func TopicFor(action Action) string {
	return TopicPrefix + string(action.Category())
}

// Topics lists every audit topic, for topic creation and consumer
// subscriptions.
func Topics() []string {
	return []string{
		TopicPrefix + string(CategoryCompliance),
		TopicPrefix + string(CategorySecurity),
		TopicPrefix + string(CategoryOperations),
	}
}
