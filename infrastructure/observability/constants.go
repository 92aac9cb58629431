package observability

// Metric name prefixes
const (
	MetricPrefix = "plushiebot"
)

// Metric names
const (
	MessagesClassifiedTotal    = MetricPrefix + ".messages.classified_total"
	DropRollsTotal             = MetricPrefix + ".drops.rolls_total"
	DropsRecordedTotal         = MetricPrefix + ".drops.recorded_total"
	CyclesTotal                = MetricPrefix + ".cycles.runs_total"
	NATSMessagesPublishedTotal = MetricPrefix + ".nats.messages_published_total"
)

// Label keys
const (
	LabelKind      = "kind"
	LabelMethod    = "method"
	LabelResult    = "result"
	LabelStatus    = "status"
	LabelEventType = "event_type"
	LabelManual    = "manual"
)
