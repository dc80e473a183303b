package main

import (
	"net"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// freeEndpoint returns a loopback address that was free a moment ago.
func freeEndpoint(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	return addr
}

func TestSingletonGuardPrimaryThenSecondary(t *testing.T) {
	a := NewSingletonGuard("127.0.0.1:0")
	role, err := a.Acquire()
	require.NoError(t, err)
	assert.Equal(t, RolePrimary, role)
	require.NotNil(t, a.Listener())

	b := NewSingletonGuard(a.Addr())
	role, err = b.Acquire()
	require.NoError(t, err)
	assert.Equal(t, RoleSecondary, role)
	assert.Nil(t, b.Listener())

	require.NoError(t, a.Close())

	c := NewSingletonGuard(a.Addr())
	role, err = c.Acquire()
	require.NoError(t, err)
	assert.Equal(t, RolePrimary, role)
	c.Close()
}

func TestSingletonGuardConcurrentLaunches(t *testing.T) {
	endpoint := freeEndpoint(t)

	const launches = 8
	guards := make([]*SingletonGuard, launches)
	roles := make([]InstanceRole, launches)

	var wg sync.WaitGroup
	for i := range guards {
		guards[i] = NewSingletonGuard(endpoint)
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			role, err := guards[i].Acquire()
			assert.NoError(t, err)
			roles[i] = role
		}(i)
	}
	wg.Wait()

	primaries := 0
	for i, role := range roles {
		if role == RolePrimary {
			primaries++
		} else {
			assert.Equal(t, RoleSecondary, role)
		}
		guards[i].Close()
	}
	assert.Equal(t, 1, primaries)
}

func TestSingletonGuardAcquireIsAttemptedOnce(t *testing.T) {
	g := NewSingletonGuard("127.0.0.1:0")
	defer g.Close()

	role, err := g.Acquire()
	require.NoError(t, err)
	first := g.Listener()

	again, err := g.Acquire()
	require.NoError(t, err)
	assert.Equal(t, role, again)
	assert.Same(t, first, g.Listener())
}

func TestSingletonGuardOtherBindErrorsAreFatal(t *testing.T) {
	g := NewSingletonGuard("127.0.0.1:99999")
	_, err := g.Acquire()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bind 127.0.0.1:99999")
	assert.Nil(t, g.Listener())
}

func TestInstanceRoleString(t *testing.T) {
	assert.Equal(t, "primary", RolePrimary.String())
	assert.Equal(t, "secondary", RoleSecondary.String())
	assert.Equal(t, "unknown", InstanceRole(0).String())
}
