package store

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	openFilesGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "gsf_open_files",
		Help: "Count of currently open GSF streams.",
	})

	recordsRead = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gsf_records_read",
		Help: "Count of records decoded, by record type.",
	},
		[]string{"type"})

	recordsWritten = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gsf_records_written",
		Help: "Count of records written, by record type.",
	},
		[]string{"type"})

	bytesRead = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gsf_read_bytes",
		Help: "Count of framed record bytes read.",
	})

	bytesWritten = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gsf_write_bytes",
		Help: "Count of framed record bytes written.",
	})

	checksumFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gsf_checksum_failures",
		Help: "Count of records whose stored checksum did not match their payload.",
	})

	indexRebuilds = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gsf_index_rebuilds",
		Help: "Count of direct access indexes built by scanning a data file.",
	})
)

// RegisterMonitoring registers all of this package's monitoring metrics.
func RegisterMonitoring(reg prometheus.Registerer) {
	reg.MustRegister(
		openFilesGauge,
		recordsRead,
		recordsWritten,
		bytesRead,
		bytesWritten,
		checksumFailures,
		indexRebuilds,
	)
}
