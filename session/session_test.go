package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tranvictor/ajer/provider"
	"github.com/tranvictor/ajer/provider/providertest"
	"github.com/tranvictor/ajer/session"
)

const account = "0x71c7656ec7ab88b098defb751b7401b5f6d8976f"

func TestConnect(t *testing.T) {
	fake := providertest.New().Respond(provider.MethodRequestAccounts, []string{account, "0x02"})
	s := session.New(fake, nil)
	assert.Equal(t, session.Disconnected, s.State())

	got, err := s.Connect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, account, got)
	assert.Equal(t, account, s.Account())
	assert.Equal(t, session.Connected, s.State())

	s.Reset()
	assert.Equal(t, session.Disconnected, s.State())
	assert.Empty(t, s.Account())
}

func TestConnectWithoutProvider(t *testing.T) {
	s := session.New(nil, nil)
	_, err := s.Connect(context.Background())
	assert.ErrorIs(t, err, provider.ErrNoProvider)

	_, _, err = s.DetectExisting(context.Background())
	assert.ErrorIs(t, err, provider.ErrNoProvider)
}

func TestConnectRejected(t *testing.T) {
	fake := providertest.New().Fail(provider.MethodRequestAccounts, provider.NewError(provider.CodeUserRejected, "no"))
	s := session.New(fake, nil)
	_, err := s.Connect(context.Background())
	require.Error(t, err)
	assert.True(t, provider.IsUserRejected(err))
	assert.Equal(t, session.Disconnected, s.State())
}

func TestConnectNoAccounts(t *testing.T) {
	fake := providertest.New().Respond(provider.MethodRequestAccounts, []string{})
	s := session.New(fake, nil)
	_, err := s.Connect(context.Background())
	assert.ErrorIs(t, err, session.ErrNoAccounts)
}

func TestConnectingWhileRequestOutstanding(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	fake := providertest.New().Handle(provider.MethodRequestAccounts, func([]interface{}) (interface{}, error) {
		close(entered)
		<-release
		return []string{account}, nil
	})
	s := session.New(fake, nil)
	done := make(chan error, 1)
	go func() {
		_, err := s.Connect(context.Background())
		done <- err
	}()
	<-entered
	assert.Equal(t, session.Connecting, s.State())
	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, session.Connected, s.State())
}

func TestDetectExistingNeverPrompts(t *testing.T) {
	fake := providertest.New().Respond(provider.MethodAccounts, []string{})
	s := session.New(fake, nil)
	got, ok, err := s.DetectExisting(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, got)
	assert.Equal(t, 0, fake.Count(provider.MethodRequestAccounts))

	fake.Respond(provider.MethodAccounts, []string{account})
	got, ok, err = s.DetectExisting(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, account, got)
	assert.Equal(t, session.Connected, s.State())
}

func TestOnNetworkChanged(t *testing.T) {
	fake := providertest.New()
	s := session.New(fake, nil)
	ids := make(chan uint64, 4)
	unsubscribe := s.OnNetworkChanged(func(id uint64) { ids <- id })

	fake.Emit(provider.EventChainChanged, 12)
	fake.Emit(provider.EventChainChanged, "not a chain")
	fake.Emit(provider.EventChainChanged, "0x13881")

	select {
	case id := <-ids:
		assert.Equal(t, uint64(80001), id)
	case <-time.After(2 * time.Second):
		t.Fatal("handler not called")
	}
	unsubscribe()
	assert.Equal(t, 0, fake.Subscribers(provider.EventChainChanged))
}

func TestOnAccountsChanged(t *testing.T) {
	fake := providertest.New()
	s := session.New(fake, nil)
	got := make(chan string, 2)
	defer s.OnAccountsChanged(func(a string) { got <- a })()

	fake.Emit(provider.EventAccountsChanged, []string{})
	select {
	case a := <-got:
		assert.Empty(t, a)
	case <-time.After(2 * time.Second):
		t.Fatal("handler not called")
	}
}

func TestGeneration(t *testing.T) {
	var g session.Generation
	epoch := g.Current()
	assert.False(t, g.Stale(epoch))
	g.Advance()
	assert.True(t, g.Stale(epoch))
	assert.False(t, g.Stale(g.Current()))

	var none *session.Generation
	assert.Equal(t, uint64(0), none.Current())
	assert.False(t, none.Stale(0))
}
