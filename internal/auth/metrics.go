// Rocksky Relay - Device Relay and Now-Playing Enrichment Hub
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rocksky-relay

package auth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeValid     = "valid"
	outcomeInvalid   = "invalid"
	outcomeNoAccount = "no_account"
)

// verifications counts per-frame token verifications.
// Labels:
//   - outcome: "valid", "invalid", "no_account"
var verifications = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "relay_token_verifications_total",
		Help: "Total number of device token verifications by outcome",
	},
	[]string{"outcome"},
)
