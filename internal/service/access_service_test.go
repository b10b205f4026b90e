package service

import (
	"context"
	"testing"
	"time"

	"terapia-chat-be/internal/dto"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallbackMaxSessions(t *testing.T) {
	tests := []struct {
		name   string
		codigo string
		want   int
	}{
		{name: "ansiedade", codigo: "ansiedade", want: 10},
		{name: "depressao with tilde", codigo: "depressão", want: 14},
		{name: "depressao ascii", codigo: "depressao", want: 14},
		{name: "depressao upper with spaces", codigo: "  DEPRESSÃO ", want: 14},
		{name: "unknown", codigo: "fobia_social", want: 10},
		{name: "empty", codigo: "", want: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FallbackMaxSessions(tt.codigo))
		})
	}
}

func TestResolveMaxSessions(t *testing.T) {
	env := newTestEnv(t, time.Hour)
	ctx := context.Background()

	env.seedDiagnostico(t, "tept", true, intPtr(8))
	env.seedDiagnostico(t, "ansiedade", true, nil)

	assert.Equal(t, 8, env.access.ResolveMaxSessions(ctx, "tept"))
	// second call comes from the cache
	assert.Equal(t, 8, env.access.ResolveMaxSessions(ctx, "tept"))

	// row without an explicit limit falls back to the static rule
	assert.Equal(t, 10, env.access.ResolveMaxSessions(ctx, "ansiedade"))

	// missing row entirely
	assert.Equal(t, 14, env.access.ResolveMaxSessions(ctx, "depressão"))
}

func TestCanUserAccessDiagnostico(t *testing.T) {
	env := newTestEnv(t, time.Hour)
	ctx := context.Background()
	userId := uuid.New()

	env.seedDiagnostico(t, "ansiedade", true, intPtr(2))
	env.seedDiagnostico(t, "burnout", false, nil)

	t.Run("unknown diagnosis is denied", func(t *testing.T) {
		decision, err := env.access.CanUserAccessDiagnostico(ctx, userId, "nope")
		require.NoError(t, err)
		assert.False(t, decision.CanAccess)
		assert.Equal(t, "diagnosis not found", decision.Reason)
	})

	t.Run("inactive diagnosis is denied", func(t *testing.T) {
		decision, err := env.access.CanUserAccessDiagnostico(ctx, userId, "burnout")
		require.NoError(t, err)
		assert.False(t, decision.CanAccess)
		assert.Equal(t, "diagnosis not active", decision.Reason)
	})

	t.Run("user without metadata is allowed", func(t *testing.T) {
		decision, err := env.access.CanUserAccessDiagnostico(ctx, userId, "ansiedade")
		require.NoError(t, err)
		assert.True(t, decision.CanAccess)
	})

	t.Run("expired access window is denied", func(t *testing.T) {
		expired := uuid.New()
		past := time.Now().Add(-24 * time.Hour)
		env.seedMetadata(t, expired, "expired@example.com", &past)

		decision, err := env.access.CanUserAccessDiagnostico(ctx, expired, "ansiedade")
		require.NoError(t, err)
		assert.False(t, decision.CanAccess)
		assert.Equal(t, "access expired", decision.Reason)
	})

	t.Run("future access window is allowed", func(t *testing.T) {
		active := uuid.New()
		future := time.Now().Add(24 * time.Hour)
		env.seedMetadata(t, active, "active@example.com", &future)

		decision, err := env.access.CanUserAccessDiagnostico(ctx, active, "ansiedade")
		require.NoError(t, err)
		assert.True(t, decision.CanAccess)
	})

	t.Run("existing chat below the limit is denied with chat reason", func(t *testing.T) {
		_, err := env.lifecycle.Start(ctx, userId, &dto.StartChatRequest{DiagnosticoCodigo: "ansiedade"})
		require.NoError(t, err)

		decision, err := env.access.CanUserAccessDiagnostico(ctx, userId, "ansiedade")
		require.NoError(t, err)
		assert.False(t, decision.CanAccess)
		assert.Equal(t, "already has a chat for this diagnosis", decision.Reason)
	})
}

func TestCanUserAccessDiagnosticoSessionLimit(t *testing.T) {
	env := newTestEnv(t, time.Hour)
	ctx := context.Background()
	userId := uuid.New()

	env.seedDiagnostico(t, "ansiedade", true, intPtr(1))

	session, err := env.lifecycle.Start(ctx, userId, &dto.StartChatRequest{DiagnosticoCodigo: "ansiedade"})
	require.NoError(t, err)

	decision, err := env.access.CanUserAccessDiagnostico(ctx, userId, "ansiedade")
	require.NoError(t, err)
	assert.False(t, decision.CanAccess)
	assert.Equal(t, "session limit reached", decision.Reason)
	assert.NotEmpty(t, session.ChatId)
}
