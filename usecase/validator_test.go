package usecase

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/AxelF0/whatsapp-system/config"
	domainIdentity "github.com/AxelF0/whatsapp-system/domains/identity"
	"github.com/AxelF0/whatsapp-system/integrations/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStore struct {
	sessionCalls atomic.Int64
	userCalls    atomic.Int64

	session    database.SessionValidation
	sessionErr error
	user       database.UserValidation
	userErr    error
}

func (s *stubStore) ValidateSession(ctx context.Context, phone string) (database.SessionValidation, error) {
	s.sessionCalls.Add(1)
	return s.session, s.sessionErr
}

func (s *stubStore) ValidateUser(ctx context.Context, phone string) (database.UserValidation, error) {
	s.userCalls.Add(1)
	return s.user, s.userErr
}

func testPhoneCfg() config.PhoneConfig {
	return config.PhoneConfig{CountryCode: "591", LocalDigits: 8, TransportSuffix: "@c.us"}
}

func newTestValidator(store IdentityStore, ttl time.Duration) domainIdentity.IIdentityUsecase {
	return NewIdentityService(store, testPhoneCfg(), config.CacheConfig{TTL: ttl, SweepInterval: time.Hour}, time.Second)
}

func sessionHit(identity domainIdentity.Identity) database.SessionValidation {
	var session database.SessionValidation
	session.Success = true
	session.Data.Valid = true
	session.Data.User = &identity
	return session
}

func TestNormalizePhone(t *testing.T) {
	cfg := testPhoneCfg()

	cases := []struct {
		in   string
		want string
	}{
		{"59171337051@c.us", "59171337051"},
		{"+59171337051", "59171337051"},
		{"59171337051", "59171337051"},
		{"71337051", "59171337051"},
		{"591 713-370-51", "59171337051"},
		{"", ""},
	}
	for _, tc := range cases {
		got := NormalizePhone(cfg, tc.in)
		assert.Equal(t, tc.want, got, "entrada %q", tc.in)
		// Normalizar dos veces no puede cambiar el resultado.
		assert.Equal(t, got, NormalizePhone(cfg, got), "entrada %q", tc.in)
	}
}

func TestValidateCachesPositiveResults(t *testing.T) {
	store := &stubStore{session: sessionHit(domainIdentity.Identity{ID: 1, Nombre: "Carla", Cargo: "Agente", Estado: 1})}
	validator := newTestValidator(store, 8*time.Minute)
	defer validator.Close()

	first := validator.Validate(context.Background(), "59171111111")
	require.True(t, first.IsValid)
	assert.False(t, first.FromCache)
	assert.Equal(t, domainIdentity.MethodSession, first.Method)

	second := validator.Validate(context.Background(), "59171111111")
	require.True(t, second.IsValid)
	assert.True(t, second.FromCache)
	assert.Equal(t, domainIdentity.MethodCache, second.Method)
	assert.Equal(t, int64(1), store.sessionCalls.Load(), "la segunda consulta debe salir del caché")

	// Mismo número con decoración de transporte comparte entrada.
	third := validator.Validate(context.Background(), "59171111111@c.us")
	assert.True(t, third.FromCache)
}

func TestValidateCacheExpires(t *testing.T) {
	store := &stubStore{session: sessionHit(domainIdentity.Identity{ID: 1, Cargo: "Agente", Estado: 1})}
	validator := newTestValidator(store, 30*time.Millisecond)
	defer validator.Close()

	validator.Validate(context.Background(), "59171111111")
	time.Sleep(50 * time.Millisecond)
	expired := validator.Validate(context.Background(), "59171111111")

	assert.False(t, expired.FromCache)
	assert.Equal(t, int64(2), store.sessionCalls.Load())
}

func TestValidateNegativesNeverCached(t *testing.T) {
	store := &stubStore{
		session: database.SessionValidation{},
		user:    database.UserValidation{Valid: false},
	}
	validator := newTestValidator(store, 8*time.Minute)
	defer validator.Close()

	first := validator.Validate(context.Background(), "59169999999")
	second := validator.Validate(context.Background(), "59169999999")

	assert.False(t, first.IsValid)
	assert.False(t, second.IsValid)
	assert.False(t, second.FromCache)
	assert.Equal(t, int64(2), store.userCalls.Load(), "los rechazos se reconsultan siempre")
}

func TestValidateFallsBackToDirectLookup(t *testing.T) {
	store := &stubStore{
		sessionErr: errors.New("session service down"),
		user:       database.UserValidation{Valid: true, Data: &domainIdentity.Identity{ID: 2, Cargo: "Gerente", Estado: 1}},
	}
	validator := newTestValidator(store, 8*time.Minute)
	defer validator.Close()

	validation := validator.Validate(context.Background(), "59172222222")

	require.True(t, validation.IsValid)
	assert.Equal(t, domainIdentity.MethodDirect, validation.Method)
	assert.Equal(t, int64(1), store.userCalls.Load())
}

func TestValidateFailsClosedOnTotalOutage(t *testing.T) {
	store := &stubStore{
		sessionErr: errors.New("down"),
		userErr:    errors.New("down"),
	}
	validator := newTestValidator(store, 8*time.Minute)
	defer validator.Close()

	validation := validator.Validate(context.Background(), "59171111111")

	assert.False(t, validation.IsValid)
	assert.Equal(t, domainIdentity.MethodError, validation.Method)
}

func TestValidateMultipleKeysByInputPhone(t *testing.T) {
	store := &stubStore{session: sessionHit(domainIdentity.Identity{ID: 1, Cargo: "Agente", Estado: 1})}
	validator := newTestValidator(store, 8*time.Minute)
	defer validator.Close()

	phones := []string{"59171111111", "71337051", "59172222222@c.us"}
	results := validator.ValidateMultiple(context.Background(), phones)

	require.Len(t, results, 3)
	for _, phone := range phones {
		validation, ok := results[phone]
		require.True(t, ok, "falta resultado para %q", phone)
		assert.True(t, validation.IsValid)
	}
}

func TestValidUsersFiltersRejections(t *testing.T) {
	store := &stubStore{
		session: database.SessionValidation{},
		user:    database.UserValidation{Valid: false},
	}
	validator := newTestValidator(store, 8*time.Minute)
	defer validator.Close()

	valid := validator.ValidUsers(context.Background(), []string{"59169999999"})
	assert.Empty(t, valid)
}
