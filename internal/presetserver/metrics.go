// Copyright (c) 2017 Western Digital Corporation or its affiliates. All rights reserved.
// SPDX-License-Identifier: MIT

package presetserver

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/westerndigitalcorporation/floe/internal/server"
)

// Metrics are per process; every Server in it shares them.
var (
	// Labelled "scan_root", "parse_preset", "publish", "reclaim".
	serverOps = server.NewOpMetric("floe_preset_server_ops", "op")

	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "floe_preset_server_cache_lookups",
		Help: "preset cache lookups by result",
	}, []string{"result"})

	cachePurged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "floe_preset_server_cache_purged",
		Help: "cache records deleted because their preset is gone",
	})

	publishedVersionGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "floe_preset_server_published_version",
		Help: "version of the latest publication",
	})
	foldersGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "floe_preset_server_folders",
		Help: "folders in the latest publication",
	})
	presetsGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "floe_preset_server_presets",
		Help: "presets in the latest publication",
	})
	pendingReclaimGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "floe_preset_server_pending_reclaim",
		Help: "removed folders waiting for readers to move on",
	})
	bytesScanned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "floe_preset_server_bytes_scanned",
		Help: "bytes of preset files read while scanning",
	})
)
