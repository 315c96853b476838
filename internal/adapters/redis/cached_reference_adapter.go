package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"valuation-service/internal/contextkeys"
	"valuation-service/internal/core/domain"
	"valuation-service/internal/core/port"
)

const (
	nullMarker = "__null__"

	cacheQuotes = "quotes"
	cacheZones  = "zones"

	lookupHit   = "hit"
	lookupMiss  = "miss"
	lookupError = "error"
)

// LookupObserver получает исход каждого обращения к кэшу
type LookupObserver interface {
	ObserveCacheLookup(cache, result string)
}

type noopObserver struct{}

func (noopObserver) ObserveCacheLookup(string, string) {}

// CachedReferenceAdapter кэширует котировки и зоны OMI поверх другого ReferencePricePort.
// Недоступный Redis не ломает оценку: запрос уходит напрямую в источник.
type CachedReferenceAdapter struct {
	next     port.ReferencePricePort
	client   goredis.Cmdable
	prefix   string
	ttl      time.Duration
	nullTTL  time.Duration
	observer LookupObserver
	group    singleflight.Group
}

type Option func(*CachedReferenceAdapter)

func WithPrefix(prefix string) Option {
	return func(a *CachedReferenceAdapter) { a.prefix = prefix }
}

func WithTTL(ttl time.Duration) Option {
	return func(a *CachedReferenceAdapter) { a.ttl = ttl }
}

// WithNullTTL - сколько помнить отсутствие котировки
func WithNullTTL(ttl time.Duration) Option {
	return func(a *CachedReferenceAdapter) { a.nullTTL = ttl }
}

func WithObserver(o LookupObserver) Option {
	return func(a *CachedReferenceAdapter) {
		if o != nil {
			a.observer = o
		}
	}
}

func NewCachedReferenceAdapter(next port.ReferencePricePort, client goredis.Cmdable, opts ...Option) (*CachedReferenceAdapter, error) {
	if next == nil {
		return nil, fmt.Errorf("cached reference adapter: source port cannot be nil")
	}
	if client == nil {
		return nil, fmt.Errorf("cached reference adapter: redis client cannot be nil")
	}
	a := &CachedReferenceAdapter{
		next:     next,
		client:   client,
		prefix:   "valuation:",
		ttl:      6 * time.Hour,
		nullTTL:  time.Minute,
		observer: noopObserver{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

type quoteEntry struct {
	MinPrice float64 `json:"min"`
	MaxPrice float64 `json:"max"`
	ZoneCode string  `json:"zona"`
	ZoneLink string  `json:"link"`
	Semester string  `json:"semestre"`
}

type zoneEntry struct {
	Code      string `json:"codice"`
	Link      string `json:"link"`
	PriceBand string `json:"fascia"`
}

func quoteKey(key domain.QuoteKey) string {
	return strings.Join([]string{
		"quote", key.Municipality, string(key.PriceBand), key.ZoneCode, string(key.Category), string(key.State),
	}, ":")
}

// jitterTTL разносит истечение ключей на +-10%
func jitterTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return ttl
	}
	jitter := float64(ttl) * 0.1 * (rand.Float64()*2 - 1)
	return ttl + time.Duration(jitter)
}

func (a *CachedReferenceAdapter) FindQuote(ctx context.Context, key domain.QuoteKey) (*domain.ReferenceQuote, error) {
	cacheKey := a.prefix + quoteKey(key)

	data, found, err := a.get(ctx, cacheQuotes, cacheKey)
	if err == nil && found {
		if data == nullMarker {
			return nil, fmt.Errorf("quotation for %s (cached): %w", key.Municipality, domain.ErrReferenceQuoteNotFound)
		}
		var e quoteEntry
		if jsonErr := json.Unmarshal([]byte(data), &e); jsonErr == nil {
			q := domain.NewReferenceQuote(e.MinPrice, e.MaxPrice, e.ZoneCode, e.ZoneLink, e.Semester)
			return &q, nil
		}
	}

	v, err, _ := a.group.Do(cacheKey, func() (interface{}, error) {
		q, loadErr := a.next.FindQuote(ctx, key)
		if errors.Is(loadErr, domain.ErrReferenceQuoteNotFound) {
			a.set(ctx, cacheKey, nullMarker, a.nullTTL)
			return nil, loadErr
		}
		if loadErr != nil {
			return nil, loadErr
		}
		body, _ := json.Marshal(quoteEntry{
			MinPrice: q.MinPrice, MaxPrice: q.MaxPrice,
			ZoneCode: q.ZoneCode, ZoneLink: q.ZoneLink, Semester: q.Semester,
		})
		a.set(ctx, cacheKey, string(body), jitterTTL(a.ttl))
		return q, nil
	})
	if err != nil {
		return nil, err
	}
	q := *v.(*domain.ReferenceQuote)
	return &q, nil
}

func (a *CachedReferenceAdapter) ListZones(ctx context.Context, municipality string) ([]domain.Zone, error) {
	cacheKey := a.prefix + "zones:" + strings.ToUpper(municipality)

	data, found, err := a.get(ctx, cacheZones, cacheKey)
	if err == nil && found {
		if data == nullMarker {
			return nil, fmt.Errorf("zones for %s (cached): %w", municipality, domain.ErrMunicipalityNotFound)
		}
		var entries []zoneEntry
		if jsonErr := json.Unmarshal([]byte(data), &entries); jsonErr == nil {
			zones := make([]domain.Zone, 0, len(entries))
			for _, e := range entries {
				zones = append(zones, domain.Zone{Code: e.Code, Link: e.Link, PriceBand: domain.PriceBand(e.PriceBand)})
			}
			return zones, nil
		}
	}

	v, err, _ := a.group.Do(cacheKey, func() (interface{}, error) {
		zones, loadErr := a.next.ListZones(ctx, municipality)
		if errors.Is(loadErr, domain.ErrMunicipalityNotFound) {
			a.set(ctx, cacheKey, nullMarker, a.nullTTL)
			return nil, loadErr
		}
		if loadErr != nil {
			return nil, loadErr
		}
		entries := make([]zoneEntry, 0, len(zones))
		for _, z := range zones {
			entries = append(entries, zoneEntry{Code: z.Code, Link: z.Link, PriceBand: string(z.PriceBand)})
		}
		body, _ := json.Marshal(entries)
		a.set(ctx, cacheKey, string(body), jitterTTL(a.ttl))
		return zones, nil
	})
	if err != nil {
		return nil, err
	}
	zones := v.([]domain.Zone)
	return append([]domain.Zone(nil), zones...), nil
}

// get возвращает значение и признак попадания; ошибка Redis только логируется наверху
func (a *CachedReferenceAdapter) get(ctx context.Context, cache, key string) (string, bool, error) {
	data, err := a.client.Get(ctx, key).Result()
	switch {
	case errors.Is(err, goredis.Nil):
		a.observer.ObserveCacheLookup(cache, lookupMiss)
		return "", false, nil
	case err != nil:
		a.observer.ObserveCacheLookup(cache, lookupError)
		contextkeys.LoggerFromContext(ctx).Warn("Redis lookup failed, falling back to source", port.Fields{
			"component": "CachedReferenceAdapter",
			"key":       key,
			"error":     err.Error(),
		})
		return "", false, err
	default:
		a.observer.ObserveCacheLookup(cache, lookupHit)
		return data, true, nil
	}
}

func (a *CachedReferenceAdapter) set(ctx context.Context, key, value string, ttl time.Duration) {
	if err := a.client.Set(ctx, key, value, ttl).Err(); err != nil {
		contextkeys.LoggerFromContext(ctx).Warn("Failed to write cache entry", port.Fields{
			"component": "CachedReferenceAdapter",
			"key":       key,
			"error":     err.Error(),
		})
	}
}
