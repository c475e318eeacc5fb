package checkcmd

import (
	"fmt"
	"strings"
)

// Metric contains a single performance value.
type Metric struct {
	Name  string
	Value string
	Unit  string
	Warn  string
	Crit  string
}

// String formats the metric in plugin perfdata notation:
// label=value[unit][;warn[;crit]]
func (m *Metric) String() string {
	var res strings.Builder

	res.WriteString(m.Name)
	res.WriteString("=")
	res.WriteString(m.Value)
	res.WriteString(m.Unit)

	if m.Warn != "" || m.Crit != "" {
		res.WriteString(";")
		res.WriteString(m.Warn)
		if m.Crit != "" {
			res.WriteString(";")
			res.WriteString(m.Crit)
		}
	}

	resStr := res.String()
	// strip trailing semicolons
	for strings.HasSuffix(resStr, ";") {
		resStr = strings.TrimSuffix(resStr, ";")
	}

	return resStr
}

// Report is the finalized result of a check run.
type Report struct {
	State   Severity
	Output  string
	Metrics []*Metric
}

// PluginOutput renders the standard plugin line:
// "<SHORTNAME> <STATUS> - <message> | <perfdata>"
// The perfdata segment is omitted entirely when no metrics exist.
func (r *Report) PluginOutput(shortName string) string {
	var out strings.Builder

	fmt.Fprintf(&out, "%s %s - %s", shortName, r.State.String(), r.Output)

	if len(r.Metrics) > 0 {
		perf := make([]string, 0, len(r.Metrics))
		for _, m := range r.Metrics {
			perf = append(perf, m.String())
		}
		out.WriteString(" | ")
		out.WriteString(strings.Join(perf, " "))
	}

	return out.String()
}

// Aggregator collects messages per severity bucket and performance metrics
// during a run. Finalize builds the report exactly once, the aggregator has
// no way back from there.
type Aggregator struct {
	messages [4][]string
	metrics  []*Metric
}

func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// AddMessage appends a message to its severity bucket, insertion order is
// kept within each bucket.
func (a *Aggregator) AddMessage(state Severity, text string) {
	a.messages[state] = append(a.messages[state], text)
}

// AddMessages feeds all messages of an evaluation into their buckets.
func (a *Aggregator) AddMessages(msgs []StatusMessage) {
	for _, msg := range msgs {
		a.AddMessage(msg.Severity, msg.Text)
	}
}

// AddMetric appends a performance metric, insertion order is kept.
func (a *Aggregator) AddMetric(metric *Metric) {
	a.metrics = append(a.metrics, metric)
}

// Finalize computes the final state and message. The state is the first
// non-empty bucket in priority order critical, warning, unknown, ok. The
// message joins all buckets in that same order, so a critical result still
// shows its warnings after the critical text.
func (a *Aggregator) Finalize(separator string) *Report {
	state := SeverityOK
	decided := false
	texts := make([]string, 0)

	for _, sev := range severityPriority {
		bucket := a.messages[sev]
		if len(bucket) > 0 && !decided {
			state = sev
			decided = true
		}
		texts = append(texts, bucket...)
	}

	return &Report{
		State:   state,
		Output:  strings.Join(texts, separator),
		Metrics: a.metrics,
	}
}
