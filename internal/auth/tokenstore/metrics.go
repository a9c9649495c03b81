package tokenstore

import "github.com/prometheus/client_golang/prometheus"

var (
	codesDesc = prometheus.NewDesc(
		"bartab_oidc_tokenstore_auth_codes",
		"Number of live authorization codes.",
		nil, nil,
	)
	tokensDesc = prometheus.NewDesc(
		"bartab_oidc_tokenstore_access_tokens",
		"Number of live access tokens.",
		nil, nil,
	)
	usersDesc = prometheus.NewDesc(
		"bartab_oidc_tokenstore_users",
		"Number of users owning at least one live code or token.",
		nil, nil,
	)
)

// Collector exports Store counts as gauges, read at scrape time.
type Collector struct {
	store *Store
}

// NewCollector returns a prometheus.Collector for s.
func NewCollector(s *Store) *Collector {
	return &Collector{store: s}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- codesDesc
	ch <- tokensDesc
	ch <- usersDesc
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	stats := c.store.Stats()
	ch <- prometheus.MustNewConstMetric(codesDesc, prometheus.GaugeValue, float64(stats.Codes))
	ch <- prometheus.MustNewConstMetric(tokensDesc, prometheus.GaugeValue, float64(stats.Tokens))
	ch <- prometheus.MustNewConstMetric(usersDesc, prometheus.GaugeValue, float64(stats.Users))
}
