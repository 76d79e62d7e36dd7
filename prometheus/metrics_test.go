package prometheus

import (
	"strings"
	"testing"

	"inventory-service/pkg/config"
)

// The configured prefix flows into every metric name.
func TestInitMetricsAppliesConfiguredPrefix(t *testing.T) {
	cfg := &config.Config{Metrics: config.MetricsConfig{Prefix: "warehouse"}}
	InitMetrics(cfg)

	cases := map[string]string{
		"login counter":    LoginCounter.Desc().String(),
		"movement counter": MovementCounter.WithLabelValues("IN").Desc().String(),
		"tenants gauge":    ActiveTenantsGauge.Desc().String(),
	}
	for name, desc := range cases {
		if !strings.Contains(desc, `"warehouse_`) {
			t.Errorf("%s not registered under configured prefix: %s", name, desc)
		}
	}
}

func TestInitMetricsRegistersOnce(t *testing.T) {
	// A second init with a different prefix must not re-register (the
	// registry would panic on duplicates) nor rename anything.
	InitMetrics(&config.Config{Metrics: config.MetricsConfig{Prefix: "other"}})
	if !strings.Contains(LoginCounter.Desc().String(), `"warehouse_`) {
		t.Errorf("metric renamed by a second init: %s", LoginCounter.Desc().String())
	}
}
