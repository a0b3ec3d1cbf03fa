// Rocksky Relay - Device Relay and Now-Playing Enrichment Hub
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rocksky-relay

package relay

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/rocksky-relay/internal/cache"
	"github.com/tomtom215/rocksky-relay/internal/config"
	"github.com/tomtom215/rocksky-relay/internal/logging"
	"github.com/tomtom215/rocksky-relay/internal/metrics"
	"github.com/tomtom215/rocksky-relay/internal/models"
)

// Payload fields written by enrichment.
const (
	FieldAlbumArt  = "album_art"
	FieldSongURI   = "song_uri"
	FieldAlbumURI  = "album_uri"
	FieldArtistURI = "artist_uri"
	FieldLiked     = "liked"
)

// TrackStore is the persisted catalog. TrackByFingerprint returns nil, nil
// when no track matches.
type TrackStore interface {
	TrackByFingerprint(ctx context.Context, fingerprint string) (*models.Track, error)
	IsLoved(ctx context.Context, accountID, fingerprint string) (bool, error)
}

// Enricher attaches catalog metadata and liked-state to now-playing
// payloads, reading through the cache to the store.
type Enricher struct {
	cache         cache.Store
	store         TrackStore
	trackTTL      time.Duration
	likesTTL      time.Duration
	nowPlayingTTL time.Duration
}

// NewEnricher creates an Enricher with the TTLs from cfg.
func NewEnricher(c cache.Store, store TrackStore, cfg *config.CacheConfig) *Enricher {
	return &Enricher{
		cache:         c,
		store:         store,
		trackTTL:      cfg.TrackTTL,
		likesTTL:      cfg.LikesTTL,
		nowPlayingTTL: cfg.NowPlayingTTL,
	}
}

// ShouldEnrich reports whether payload describes a concrete track. An album
// that is absent, null, empty, false or zero does not qualify.
func ShouldEnrich(payload map[string]any) bool {
	album, ok := payload["album"]
	if !ok {
		return false
	}
	switch v := album.(type) {
	case nil:
		return false
	case string:
		return v != ""
	case bool:
		return v
	case json.Number:
		f, err := v.Float64()
		return err != nil || f != 0
	default:
		return true
	}
}

// PayloadFingerprint computes the track fingerprint from the payload's
// title, artist and album, rendering each value the way the catalog writers
// stringify them (an absent field renders as "undefined").
func PayloadFingerprint(payload map[string]any) string {
	return models.Fingerprint(
		renderField(payload, "title"),
		renderField(payload, "artist"),
		renderField(payload, "album"),
	)
}

func renderField(payload map[string]any, key string) string {
	v, ok := payload[key]
	if !ok {
		return "undefined"
	}
	return renderValue(v)
}

func renderValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		return renderNumber(t)
	case map[string]any:
		return "[object Object]"
	case []any:
		parts := make([]string, len(t))
		for i, el := range t {
			if el != nil {
				parts[i] = renderValue(el)
			}
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(t)
	}
}

func renderNumber(n json.Number) string {
	f, err := n.Float64()
	if err != nil {
		return n.String()
	}
	if f == 0 {
		return "0"
	}
	if abs := math.Abs(f); abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return exponentForm(f)
}

// exponentForm renders f as "1.5e-7" / "1e+21": shortest mantissa and an
// exponent without zero padding.
func exponentForm(f float64) string {
	s := strconv.FormatFloat(f, 'e', -1, 64)
	i := strings.IndexByte(s, 'e')
	if i < 0 || i+2 >= len(s) {
		return s
	}
	digits := strings.TrimLeft(s[i+2:], "0")
	if digits == "" {
		digits = "0"
	}
	return s[:i+2] + digits
}

// trackLookup is the outcome of resolving track metadata.
type trackLookup struct {
	enrichment *models.TrackEnrichment
	fromStore  bool
}

// Enrich resolves liked-state and track metadata for payload and writes
// them onto it. Liked-state and track metadata are resolved concurrently;
// the payload is only mutated after both complete. Any cache or store error
// aborts enrichment and leaves the payload untouched.
func (e *Enricher) Enrich(ctx context.Context, accountID string, payload map[string]any) error {
	start := time.Now()
	defer func() {
		metrics.EnrichmentDuration.Observe(time.Since(start).Seconds())
	}()

	fingerprint := PayloadFingerprint(payload)

	var (
		liked bool
		track trackLookup
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		liked, err = e.resolveLiked(gctx, accountID, fingerprint)
		return err
	})
	g.Go(func() error {
		var err error
		track, err = e.resolveTrack(gctx, fingerprint)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("%w: %w", ErrEnrichment, err)
	}

	payload[FieldLiked] = liked
	if track.enrichment == nil {
		return nil
	}
	applyTrack(payload, track.enrichment)

	g, gctx = errgroup.WithContext(ctx)
	if track.fromStore {
		entry := *track.enrichment
		entry.Liked = liked
		g.Go(func() error {
			return e.setJSON(gctx, cache.TrackKey(fingerprint), entry, e.trackTTL)
		})
	}
	snapshot := nowPlayingSnapshot(payload, fingerprint, liked)
	g.Go(func() error {
		return e.setJSON(gctx, cache.NowPlayingKey(accountID), snapshot, e.nowPlayingTTL)
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("%w: %w", ErrEnrichment, err)
	}
	return nil
}

func (e *Enricher) resolveLiked(ctx context.Context, accountID, fingerprint string) (bool, error) {
	key := cache.LikesKey(accountID, fingerprint)

	raw, ok, err := e.cache.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if ok {
		var state models.LikeState
		if err := json.Unmarshal([]byte(raw), &state); err == nil {
			metrics.RecordEnrichmentLookup("likes", true)
			return state.Liked, nil
		}
		logging.Warn().Str("key", key).Msg("Ignoring unreadable liked-state cache entry")
	}
	metrics.RecordEnrichmentLookup("likes", false)

	liked, err := e.store.IsLoved(ctx, accountID, fingerprint)
	if err != nil {
		return false, err
	}
	if err := e.setJSON(ctx, key, models.LikeState{Liked: liked}, e.likesTTL); err != nil {
		return false, err
	}
	return liked, nil
}

func (e *Enricher) resolveTrack(ctx context.Context, fingerprint string) (trackLookup, error) {
	key := cache.TrackKey(fingerprint)

	raw, ok, err := e.cache.Get(ctx, key)
	if err != nil {
		return trackLookup{}, err
	}
	if ok {
		var entry models.TrackEnrichment
		if err := json.Unmarshal([]byte(raw), &entry); err == nil {
			metrics.RecordEnrichmentLookup("track", true)
			return trackLookup{enrichment: &entry}, nil
		}
		logging.Warn().Str("key", key).Msg("Ignoring unreadable track cache entry")
	}
	metrics.RecordEnrichmentLookup("track", false)

	track, err := e.store.TrackByFingerprint(ctx, fingerprint)
	if err != nil {
		return trackLookup{}, err
	}
	if track == nil {
		return trackLookup{}, nil
	}
	entry := models.NewTrackEnrichment(track, false)
	return trackLookup{enrichment: &entry, fromStore: true}, nil
}

func (e *Enricher) setJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return e.cache.SetWithExpiry(ctx, key, string(data), ttl)
}

func applyTrack(payload map[string]any, t *models.TrackEnrichment) {
	payload[FieldAlbumArt] = stringOrNil(t.AlbumArt)
	payload[FieldSongURI] = stringOrNil(t.URI)
	payload[FieldAlbumURI] = stringOrNil(t.AlbumURI)
	payload[FieldArtistURI] = stringOrNil(t.ArtistURI)
}

func stringOrNil(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// nowPlayingSnapshot copies the enriched payload for the per-account
// now-playing cache entry, adding the fingerprint.
func nowPlayingSnapshot(payload map[string]any, fingerprint string, liked bool) map[string]any {
	snapshot := make(map[string]any, len(payload)+2)
	for k, v := range payload {
		snapshot[k] = v
	}
	snapshot["sha256"] = fingerprint
	snapshot[FieldLiked] = liked
	return snapshot
}
