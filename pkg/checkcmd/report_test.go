package checkcmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetricString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		metric Metric
		expect string
	}{
		{Metric{Name: "http_code", Value: "200"}, "http_code=200"},
		{Metric{Name: "exec_time", Value: "0.224", Unit: "s"}, "exec_time=0.224s"},
		{Metric{Name: "load", Value: "1.5", Warn: "2", Crit: "5"}, "load=1.5;2;5"},
		{Metric{Name: "load", Value: "1.5", Warn: "2"}, "load=1.5;2"},
		{Metric{Name: "load", Value: "1.5", Crit: "5"}, "load=1.5;;5"},
		{Metric{Name: "exec_time", Value: "0.224", Unit: "s", Warn: "2", Crit: "5"}, "exec_time=0.224s;2;5"},
	}

	for _, tst := range tests {
		assert.Equalf(t, tst.expect, tst.metric.String(), "metric %s", tst.metric.Name)
	}
}

func TestAggregatorStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		messages []StatusMessage
		state    Severity
		output   string
	}{
		{
			"empty is ok",
			nil,
			SeverityOK,
			"",
		},
		{
			"single warning",
			[]StatusMessage{{SeverityWarning, "watch out"}},
			SeverityWarning,
			"watch out",
		},
		{
			"critical beats warning, both stay in the message",
			[]StatusMessage{{SeverityWarning, "watch out"}, {SeverityCritical, "on fire"}},
			SeverityCritical,
			"on fire, watch out",
		},
		{
			"unknown beats ok",
			[]StatusMessage{{SeverityOK, "fine"}, {SeverityUnknown, "no idea"}},
			SeverityUnknown,
			"no idea, fine",
		},
		{
			"warning beats unknown",
			[]StatusMessage{{SeverityUnknown, "no idea"}, {SeverityWarning, "watch out"}},
			SeverityWarning,
			"watch out, no idea",
		},
		{
			"insertion order within a bucket",
			[]StatusMessage{{SeverityWarning, "first"}, {SeverityWarning, "second"}},
			SeverityWarning,
			"first, second",
		},
	}

	for _, tst := range tests {
		agg := NewAggregator()
		agg.AddMessages(tst.messages)
		report := agg.Finalize(", ")
		assert.Equalf(t, tst.state, report.State, "%s: state", tst.name)
		assert.Equalf(t, tst.output, report.Output, "%s: output", tst.name)
	}
}

func TestAggregatorSeparator(t *testing.T) {
	t.Parallel()

	agg := NewAggregator()
	agg.AddMessage(SeverityCritical, "one")
	agg.AddMessage(SeverityCritical, "two")
	report := agg.Finalize(" / ")
	assert.Equal(t, "one / two", report.Output)
}

func TestPluginOutput(t *testing.T) {
	t.Parallel()

	agg := NewAggregator()
	agg.AddMessage(SeverityCritical, "HTTP error code detected")
	agg.AddMetric(&Metric{Name: "http_code", Value: "400"})
	agg.AddMetric(&Metric{Name: "exec_time", Value: "0.224", Unit: "s"})
	report := agg.Finalize(", ")

	assert.Equal(t,
		"HTTP CRITICAL - HTTP error code detected | http_code=400 exec_time=0.224s",
		report.PluginOutput("HTTP"))

	// without perfdata the pipe segment is omitted entirely
	empty := NewAggregator().Finalize(", ")
	empty.Output = "checked 0 labels"
	assert.Equal(t, "CMD OK - checked 0 labels", empty.PluginOutput("CMD"))
}
