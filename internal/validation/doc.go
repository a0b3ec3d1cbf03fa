// Rocksky Relay - Device Relay and Now-Playing Enrichment Hub
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rocksky-relay

// Package validation provides struct validation using go-playground/validator v10.
//
// The relay uses it to test decoded frames against their shapes. A single
// validator instance is built once and shared; it caches struct metadata so
// repeated validation of the same frame types is cheap.
//
// Field errors are reported by JSON name:
//
//	type registerFrame struct {
//	    Type       *string `json:"type" validate:"required,eq=register"`
//	    ClientName *string `json:"clientName" validate:"required"`
//	}
//
//	if err := validation.ValidateStruct(&f); err != nil {
//	    log.Debug().Strs("fields", err.Fields()).Msg("not a register frame")
//	}
//
// Pointer fields distinguish an absent field from an empty string: required
// only checks presence, so "" is a valid clientName.
package validation
