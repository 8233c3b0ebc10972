package packet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSendable_ConnectIsClientOnly(t *testing.T) {
	assert.True(t, Sendable(RoleClient, V500, CONNECT))
	assert.False(t, Sendable(RoleServer, V500, CONNECT))
}

func TestSendable_PublishIsSendableByEitherRole(t *testing.T) {
	assert.True(t, Sendable(RoleClient, V500, PUBLISH))
	assert.True(t, Sendable(RoleServer, V500, PUBLISH))
}

func TestSendable_DisconnectWidensOnV500(t *testing.T) {
	assert.True(t, Sendable(RoleClient, V311, DISCONNECT))
	assert.False(t, Sendable(RoleServer, V311, DISCONNECT))
	assert.True(t, Sendable(RoleClient, V500, DISCONNECT))
	assert.True(t, Sendable(RoleServer, V500, DISCONNECT))
}

func TestSendable_AuthDoesNotExistOnV311(t *testing.T) {
	assert.False(t, Sendable(RoleClient, V311, AUTH))
	assert.False(t, Sendable(RoleServer, V311, AUTH))
	assert.True(t, Sendable(RoleClient, V500, AUTH))
}

func TestSendable_SubackIsServerOnly(t *testing.T) {
	assert.True(t, Sendable(RoleServer, V500, SUBACK))
	assert.False(t, Sendable(RoleClient, V500, SUBACK))
}

func TestSendable_RoleAnyMaySendEveryType(t *testing.T) {
	for t2 := CONNECT; t2 <= AUTH; t2++ {
		assert.True(t, Sendable(RoleAny, V500, t2), "RoleAny should send %s", t2)
	}
	assert.True(t, Sendable(RoleAny, V311, DISCONNECT), "RoleAny should send DISCONNECT on v3.1.1 too")
	assert.False(t, Sendable(RoleAny, V311, AUTH), "AUTH still doesn't exist on v3.1.1 for RoleAny")
}
