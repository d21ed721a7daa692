package metrics

import "github.com/prometheus/client_golang/prometheus"

var buildInfo = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "build_info",
		Help:      "Build metadata of the running binary; the value is always 1",
	},
	[]string{"version", "commit"},
)

func init() {
	prometheus.MustRegister(buildInfo)
}

// SetBuildInfo publishes the running version and commit.
func SetBuildInfo(version, commit string) {
	buildInfo.Reset()
	buildInfo.WithLabelValues(version, commit).Set(1)
}
