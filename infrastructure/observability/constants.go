package observability

// Metric name prefixes
const (
	MetricPrefix = "challenge_service"
)

// Metric names
const (
	// Lifecycle metrics
	EventsTotal         = MetricPrefix + ".events.total"
	ChallengesOpen      = MetricPrefix + ".challenges.open"
	SettledStakeTotal   = MetricPrefix + ".settlements.stake_total"
	ExpirySweepsTotal   = MetricPrefix + ".expiry.sweeps_total"
	ExpiredTotal        = MetricPrefix + ".expiry.expired_total"
	BalanceChangesTotal = MetricPrefix + ".balance.transactions_total"
	NATSPublishedTotal  = MetricPrefix + ".nats.messages_published_total"
	HTTPRequestsTotal   = MetricPrefix + ".http.requests_total"
	HTTPRequestDuration = MetricPrefix + ".http.request_duration"
)

// Label keys
const (
	LabelType       = "type"
	LabelEventType  = "event_type"
	LabelGameType   = "game_type"
	LabelRoute      = "route"
	LabelMethod     = "method"
	LabelStatusCode = "status_code"
)
