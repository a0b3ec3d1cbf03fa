// Rocksky Relay - Device Relay and Now-Playing Enrichment Hub
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rocksky-relay

package relay

import "errors"

// Every dispatch failure wraps exactly one of these. None of them is ever
// reported to the peer; the frame is dropped and the connection stays open.
var (
	ErrMalformedFrame = errors.New("malformed frame")
	ErrUnknownFrame   = errors.New("frame matches no known shape")
	ErrUnauthorized   = errors.New("token verification failed")
	ErrTargetNotFound = errors.New("control target not found")
	ErrEnrichment     = errors.New("enrichment failed")
	ErrRateLimited    = errors.New("frame rate limit exceeded")
)

// Drop reasons used as the relay_frames_dropped_total label.
const (
	ReasonMalformed      = "malformed"
	ReasonUnknownFrame   = "unknown_frame"
	ReasonUnauthorized   = "unauthorized"
	ReasonTargetNotFound = "target_not_found"
	ReasonEnrichment     = "enrichment_failed"
	ReasonRateLimited    = "rate_limited"
	ReasonInternal       = "internal"
)

// DropReason maps a dispatch error to its metric label.
func DropReason(err error) string {
	switch {
	case errors.Is(err, ErrMalformedFrame):
		return ReasonMalformed
	case errors.Is(err, ErrUnknownFrame):
		return ReasonUnknownFrame
	case errors.Is(err, ErrUnauthorized):
		return ReasonUnauthorized
	case errors.Is(err, ErrTargetNotFound):
		return ReasonTargetNotFound
	case errors.Is(err, ErrEnrichment):
		return ReasonEnrichment
	case errors.Is(err, ErrRateLimited):
		return ReasonRateLimited
	default:
		return ReasonInternal
	}
}
