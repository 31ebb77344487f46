package devid

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainsession "github.com/fantastico/telesales-go/internal/domain/session"
	apperrors "github.com/fantastico/telesales-go/internal/errors"
	"github.com/fantastico/telesales-go/internal/ports"
)

func devConfig() Config {
	return Config{
		SubjectID:     "dev|rep-1",
		Email:         "dev@fantastico.example",
		EmailVerified: true,
	}
}

func TestNewProvider_Validation(t *testing.T) {
	_, err := NewProvider(Config{Email: "dev@fantastico.example"})
	require.Error(t, err)

	_, err = NewProvider(Config{SubjectID: "dev|rep-1"})
	require.Error(t, err)
}

func TestProvider_ImplementsInterface(t *testing.T) {
	p, err := NewProvider(devConfig())
	require.NoError(t, err)
	var _ ports.IdentityProvider = p
}

func TestProvider_SignInAndOut(t *testing.T) {
	p, err := NewProvider(devConfig())
	require.NoError(t, err)
	assert.Nil(t, p.CurrentUser())

	var events []*domainsession.Identity
	unsub := p.Subscribe(func(id *domainsession.Identity) { events = append(events, id) })
	defer unsub()

	identity, err := p.SignIn(context.Background(), "DEV@fantastico.example", "anything")
	require.NoError(t, err)
	assert.Equal(t, "dev|rep-1", identity.SubjectID)
	assert.True(t, identity.EmailVerified)
	assert.NotEmpty(t, identity.Credential.Token)
	assert.False(t, identity.Credential.Expired(time.Now()))

	require.NoError(t, p.SignOut(context.Background()))
	assert.Nil(t, p.CurrentUser())

	require.Len(t, events, 2)
	assert.NotNil(t, events[0])
	assert.Nil(t, events[1])
}

func TestProvider_SignIn_UnknownEmail(t *testing.T) {
	p, err := NewProvider(devConfig())
	require.NoError(t, err)

	_, err = p.SignIn(context.Background(), "other@fantastico.example", "x")
	require.Error(t, err)
	assert.True(t, apperrors.IsIdentityNotFound(err))
}

func TestProvider_SignedInAtStart(t *testing.T) {
	cfg := devConfig()
	cfg.SignedIn = true
	p, err := NewProvider(cfg)
	require.NoError(t, err)

	current := p.CurrentUser()
	require.NotNil(t, current)
	assert.Equal(t, "dev|rep-1", current.SubjectID)
}

func TestProvider_ReloadAndRefresh(t *testing.T) {
	cfg := devConfig()
	cfg.SignedIn = true
	p, err := NewProvider(cfg)
	require.NoError(t, err)

	reloaded, err := p.Reload(context.Background(), "dev|rep-1")
	require.NoError(t, err)
	assert.True(t, reloaded.EmailVerified)

	before := p.CurrentUser().Credential.Token
	cred, err := p.RefreshCredential(context.Background(), "dev|rep-1", true)
	require.NoError(t, err)
	assert.NotEqual(t, before, cred.Token)
	assert.Equal(t, cred.Token, p.CurrentUser().Credential.Token)

	_, err = p.Reload(context.Background(), "dev|other")
	assert.True(t, apperrors.IsIdentityNotFound(err))

	_, err = p.RefreshCredential(context.Background(), "dev|other", false)
	assert.True(t, apperrors.IsIdentityNotFound(err))
}
