package logging

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFieldAttrs(t *testing.T) {
	require.Equal(t, FieldSubject, Subject("foo").Key)
	require.Equal(t, "foo", Subject("foo").Value.String())

	require.Equal(t, FieldSubscriptionID, SubscriptionID("1").Key)
	require.Equal(t, FieldEndpoint, Endpoint("nats://localhost:4222").Key)
	require.Equal(t, FieldState, State("SERVER_READY").Key)
	require.Equal(t, FieldAttempt, Attempt(3).Key)

	err := errors.New("boom")
	attr := Error(err)
	require.Equal(t, FieldError, attr.Key)
	require.Equal(t, "boom", attr.Value.String())
}
