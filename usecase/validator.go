package usecase

import (
	"context"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/AxelF0/whatsapp-system/config"
	domainIdentity "github.com/AxelF0/whatsapp-system/domains/identity"
	"github.com/AxelF0/whatsapp-system/integrations/database"
	"github.com/sirupsen/logrus"
)

// IdentityStore is the slice of the database module the validator consumes.
type IdentityStore interface {
	ValidateSession(ctx context.Context, phone string) (database.SessionValidation, error)
	ValidateUser(ctx context.Context, phone string) (database.UserValidation, error)
}

var nonPhoneRunes = regexp.MustCompile(`[^\d+]`)

// NormalizePhone rewrites a transport-flavored phone number into the format
// the database module indexes by: transport suffix removed, only digits and
// a possible leading plus kept, country code enforced. Idempotent.
func NormalizePhone(cfg config.PhoneConfig, phone string) string {
	if phone == "" {
		return ""
	}

	cleaned := strings.ReplaceAll(phone, cfg.TransportSuffix, "")
	cleaned = nonPhoneRunes.ReplaceAllString(cleaned, "")

	switch {
	case strings.HasPrefix(cleaned, cfg.CountryCode):
		return cleaned
	case strings.HasPrefix(cleaned, "+"+cfg.CountryCode):
		return cleaned[1:]
	case len(cleaned) == cfg.LocalDigits:
		// Bare local number, prepend the configured country code.
		return cfg.CountryCode + cleaned
	}

	return cleaned
}

type cacheEntry struct {
	identity   domainIdentity.Identity
	resolvedAt time.Time
}

type identityService struct {
	store    IdentityStore
	phoneCfg config.PhoneConfig
	ttl      time.Duration
	timeout  time.Duration

	mu    sync.RWMutex
	cache map[string]cacheEntry

	sweepStop chan struct{}
	closeOnce sync.Once
}

// NewIdentityService builds a validator with its own cache instance and
// starts the periodic sweep. Callers own teardown via Close.
func NewIdentityService(store IdentityStore, phoneCfg config.PhoneConfig, cacheCfg config.CacheConfig, timeout time.Duration) domainIdentity.IIdentityUsecase {
	svc := &identityService{
		store:     store,
		phoneCfg:  phoneCfg,
		ttl:       cacheCfg.TTL,
		timeout:   timeout,
		cache:     make(map[string]cacheEntry),
		sweepStop: make(chan struct{}),
	}

	go svc.sweepLoop(cacheCfg.SweepInterval)
	return svc
}

// Validate resolves a phone number to a registered staff identity. Any
// transport or database error fails closed: staff access is never granted on
// an ambiguous result.
func (s *identityService) Validate(ctx context.Context, phone string) domainIdentity.Validation {
	normalized := NormalizePhone(s.phoneCfg, phone)
	now := time.Now()

	if entry, ok := s.lookup(normalized, now); ok {
		return domainIdentity.Validation{
			IsValid:    true,
			Identity:   &entry.identity,
			FromCache:  true,
			Method:     domainIdentity.MethodCache,
			ResolvedAt: entry.resolvedAt,
		}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	// Session-based validation first; the database module may create a
	// session as a side effect, which is idempotent from this side.
	session, err := s.store.ValidateSession(ctx, normalized)
	if err == nil && session.Success && session.Data.Valid && session.Data.User != nil {
		s.storePositive(normalized, *session.Data.User, now)
		return domainIdentity.Validation{
			IsValid:    true,
			Identity:   session.Data.User,
			Method:     domainIdentity.MethodSession,
			ResolvedAt: now,
		}
	}
	if err != nil {
		logrus.WithError(err).Warn("[VALIDATOR] session validation unavailable, using direct fallback")
	}

	direct, err := s.store.ValidateUser(ctx, normalized)
	if err != nil {
		logrus.WithError(err).Errorf("[VALIDATOR] direct validation failed for %s", normalized)
		return domainIdentity.Validation{
			IsValid:    false,
			Method:     domainIdentity.MethodError,
			ResolvedAt: now,
		}
	}

	if !direct.Valid || direct.Data == nil {
		// Negative results are never cached so a freshly registered user is
		// picked up on their next message.
		return domainIdentity.Validation{
			IsValid:    false,
			Method:     domainIdentity.MethodDirect,
			ResolvedAt: now,
		}
	}

	s.storePositive(normalized, *direct.Data, now)
	return domainIdentity.Validation{
		IsValid:    true,
		Identity:   direct.Data,
		Method:     domainIdentity.MethodDirect,
		ResolvedAt: now,
	}
}

// ValidateMultiple fans the lookups out concurrently and aggregates by the
// phone as it was passed in. Per-item isolation: one failure never aborts or
// delays the rest.
func (s *identityService) ValidateMultiple(ctx context.Context, phones []string) map[string]domainIdentity.Validation {
	results := make(map[string]domainIdentity.Validation, len(phones))

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, phone := range phones {
		wg.Add(1)
		go func(p string) {
			defer wg.Done()
			validation := s.Validate(ctx, p)
			mu.Lock()
			results[p] = validation
			mu.Unlock()
		}(phone)
	}
	wg.Wait()

	return results
}

func (s *identityService) ValidUsers(ctx context.Context, phones []string) map[string]domainIdentity.Identity {
	valid := make(map[string]domainIdentity.Identity)
	for phone, validation := range s.ValidateMultiple(ctx, phones) {
		if validation.IsValid && validation.Identity != nil {
			valid[phone] = *validation.Identity
		}
	}
	return valid
}

func (s *identityService) Close() {
	s.closeOnce.Do(func() {
		close(s.sweepStop)
	})
}

func (s *identityService) lookup(normalized string, now time.Time) (cacheEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.cache[normalized]
	if !ok || now.Sub(entry.resolvedAt) >= s.ttl {
		return cacheEntry{}, false
	}
	return entry, true
}

func (s *identityService) storePositive(normalized string, identity domainIdentity.Identity, now time.Time) {
	s.mu.Lock()
	s.cache[normalized] = cacheEntry{identity: identity, resolvedAt: now}
	s.mu.Unlock()
}

// sweepLoop drops expired entries on a fixed interval, independent of request
// traffic. Lookups keep working while a sweep runs.
func (s *identityService) sweepLoop(interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.sweepStop:
			return
		case <-ticker.C:
			now := time.Now()
			s.mu.Lock()
			for key, entry := range s.cache {
				if now.Sub(entry.resolvedAt) >= s.ttl {
					delete(s.cache, key)
				}
			}
			s.mu.Unlock()
		}
	}
}
