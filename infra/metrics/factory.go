package metrics

import (
	"errors"

	"github.com/kilianp07/tacho/core/factory"
	coremetrics "github.com/kilianp07/tacho/core/metrics"
)

// InfluxConfig is the conf block of an "influx" sink.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

func (c *InfluxConfig) validate() error {
	if c.URL == "" {
		return errors.New("influx sink: url is required")
	}
	if c.Org == "" {
		return errors.New("influx sink: org is required")
	}
	if c.Bucket == "" {
		c.Bucket = "tacho"
	}
	return nil
}

func init() {
	_ = coremetrics.RegisterMetricsSink("nop", func(map[string]any) (coremetrics.MetricsSink, error) {
		return coremetrics.NopSink{}, nil
	})
	// served by StartPromServer
	_ = coremetrics.RegisterMetricsSink("prometheus", func(map[string]any) (coremetrics.MetricsSink, error) {
		return NewPromSink()
	})
	_ = coremetrics.RegisterMetricsSink("influx", func(conf map[string]any) (coremetrics.MetricsSink, error) {
		var c InfluxConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if err := c.validate(); err != nil {
			return nil, err
		}
		return NewInfluxSinkWithFallback(c.URL, c.Token, c.Org, c.Bucket), nil
	})
}
