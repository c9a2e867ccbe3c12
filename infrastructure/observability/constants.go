package observability

// Metric name prefixes
const (
	MetricPrefix = "poporingbot"
)

// Metric names
const (
	// Discord metrics
	MessagesReadTotal = MetricPrefix + ".messages.read_total"

	// Lookup metrics
	LookupsTotal = MetricPrefix + ".lookups.total"

	// Upstream API metrics
	UpstreamRequestDuration = MetricPrefix + ".upstream.request_duration"

	// Preference metrics
	PreferenceChangesTotal = MetricPrefix + ".preferences.changes_total"

	// NATS metrics
	NATSMessagesPublishedTotal = MetricPrefix + ".nats.messages_published_total"
)

// Label keys
const (
	LabelType      = "type"
	LabelEventType = "event_type"
	LabelRegion    = "region"
	LabelOutcome   = "outcome"
	LabelMatchKind = "match_kind"
	LabelScope     = "scope"
)

// Message types for Discord
const (
	MessageTypeQuery      = "query"
	MessageTypeSubcommand = "subcommand"
)
