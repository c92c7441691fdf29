package observability

const (
	MetricPrefix = "medals"
)

// Metric names
const (
	DistributionRunsTotal    = MetricPrefix + ".distribution.runs_total"
	MedalsDistributedTotal   = MetricPrefix + ".distribution.medals_total"
	CappedPlayersTotal       = MetricPrefix + ".distribution.capped_players_total"
	RaffleDrawsTotal         = MetricPrefix + ".raffle.draws_total"
	RaffleMedalsTotal        = MetricPrefix + ".raffle.medals_total"
	LedgerTransactionsTotal  = MetricPrefix + ".ledger.transactions_total"
	ScoresCommittedTotal     = MetricPrefix + ".scores.committed_total"
	ScoresSkippedTotal       = MetricPrefix + ".scores.skipped_total"
	HTTPRequestsTotal        = MetricPrefix + ".http.requests_total"
	HTTPRequestDuration      = MetricPrefix + ".http.request_duration"
)

// Label keys
const (
	LabelType   = "type"
	LabelMedal  = "medal_id"
	LabelRoute  = "route"
	LabelMethod = "method"
	LabelStatus = "status"
)
