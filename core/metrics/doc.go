// Package metrics defines interfaces for recording compliance reports and
// shift events. Sinks like PromSink and InfluxSink live in infra/metrics and
// are registered with the sink factory; NewMetricsSink returns a MultiSink
// when more than one sink is configured.
package metrics
