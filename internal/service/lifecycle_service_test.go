package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"terapia-chat-be/internal/dto"
	"terapia-chat-be/internal/entity"
	"terapia-chat-be/internal/repository/specification"
	"terapia-chat-be/pkg/n8n"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startChat(t *testing.T, env *testEnv, userId uuid.UUID, codigo string) *dto.SessionResponse {
	t.Helper()
	session, err := env.lifecycle.Start(context.Background(), userId, &dto.StartChatRequest{DiagnosticoCodigo: codigo})
	require.NoError(t, err)
	return session
}

func exchangeMessages(t *testing.T, env *testEnv, userId uuid.UUID, chatId string, rounds int) {
	t.Helper()
	for i := 0; i < rounds; i++ {
		_, err := env.lifecycle.SendMessage(context.Background(), userId, chatId, &dto.SendMessageRequest{
			Content: "Tenho me sentido ansioso.",
		})
		require.NoError(t, err)
	}
}

func TestStartCreatesFirstSession(t *testing.T) {
	env := newTestEnv(t, time.Hour)
	ctx := context.Background()
	userId := uuid.New()

	env.seedDiagnostico(t, "ansiedade", true, nil)

	session := startChat(t, env, userId, "ansiedade")
	assert.Equal(t, 1, session.Sessao)
	assert.Equal(t, string(entity.ThreadStateActive), session.State)
	assert.False(t, session.HasReview)
	require.NotNil(t, session.Timer)
	assert.False(t, session.Timer.Paused)
	assert.False(t, session.Timer.Expired)

	// the user-chat binding exists, so a second start is denied
	uow := env.uowFactory.NewUnitOfWork(ctx)
	binding, err := uow.UserChatRepository().FindByUserAndDiagnostico(ctx, userId, "ansiedade")
	require.NoError(t, err)
	require.NotNil(t, binding)
	assert.Equal(t, session.ChatId, binding.ChatId)

	_, err = env.lifecycle.Start(ctx, userId, &dto.StartChatRequest{DiagnosticoCodigo: "ansiedade"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}

func TestSendMessagePersistsBothSides(t *testing.T) {
	env := newTestEnv(t, time.Hour)
	ctx := context.Background()
	userId := uuid.New()

	env.seedDiagnostico(t, "ansiedade", true, nil)
	session := startChat(t, env, userId, "ansiedade")

	res, err := env.lifecycle.SendMessage(ctx, userId, session.ChatId, &dto.SendMessageRequest{
		Content: "Olá.",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.ChatMessageRoleUser, res.Sent.Role)
	assert.Equal(t, "Olá.", res.Sent.Content)
	assert.Equal(t, entity.ChatMessageRoleAssistant, res.Reply.Role)
	assert.NotEmpty(t, res.Reply.Content)

	uow := env.uowFactory.NewUnitOfWork(ctx)
	count, err := uow.ChatMessageRepository().CountForSession(ctx, session.ChatId, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	// the workflow's thread handle is stored on first contact
	thread, err := uow.ChatThreadRepository().FindCurrent(ctx, session.ChatId)
	require.NoError(t, err)
	assert.Equal(t, "thread-"+session.ChatId, thread.ThreadId)
}

func TestSendMessageLeavesNothingOnWebhookFailure(t *testing.T) {
	env := newTestEnv(t, time.Hour)
	ctx := context.Background()
	userId := uuid.New()

	env.seedDiagnostico(t, "ansiedade", true, nil)
	session := startChat(t, env, userId, "ansiedade")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	broken := NewLifecycleService(
		env.uowFactory,
		env.access,
		env.review,
		n8n.NewClient(srv.URL, srv.URL),
		NewPublisherService("TEST_EVENTS", pubSub),
		&recordingMailer{},
		quietLogger{},
		time.Hour,
	)

	_, err := broken.SendMessage(ctx, userId, session.ChatId, &dto.SendMessageRequest{Content: "Olá."})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session assistant")

	// a failed exchange must not leave a half-conversation behind
	uow := env.uowFactory.NewUnitOfWork(ctx)
	count, err := uow.ChatMessageRepository().CountForSession(ctx, session.ChatId, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestSendMessageRejectsForeignChat(t *testing.T) {
	env := newTestEnv(t, time.Hour)
	ctx := context.Background()
	owner := uuid.New()

	env.seedDiagnostico(t, "ansiedade", true, nil)
	session := startChat(t, env, owner, "ansiedade")

	_, err := env.lifecycle.SendMessage(ctx, uuid.New(), session.ChatId, &dto.SendMessageRequest{
		Content: "Oi.",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not belong")
}

func TestFinalizeRequiresConversation(t *testing.T) {
	env := newTestEnv(t, time.Hour)
	ctx := context.Background()
	userId := uuid.New()

	env.seedDiagnostico(t, "ansiedade", true, nil)
	session := startChat(t, env, userId, "ansiedade")

	// one exchange is two rows, still below the manual threshold
	exchangeMessages(t, env, userId, session.ChatId, 1)
	_, err := env.lifecycle.Finalize(ctx, userId, session.ChatId)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 4 messages")

	exchangeMessages(t, env, userId, session.ChatId, 1)
	review, err := env.lifecycle.Finalize(ctx, userId, session.ChatId)
	require.NoError(t, err)
	assert.Equal(t, 1, review.Sessao)
	assert.NotEmpty(t, review.ResumoAtendimento)

	// finalizing twice is rejected
	_, err = env.lifecycle.Finalize(ctx, userId, session.ChatId)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already finalized")

	// and a finalized session no longer accepts messages
	_, err = env.lifecycle.SendMessage(ctx, userId, session.ChatId, &dto.SendMessageRequest{Content: "Oi."})
	require.Error(t, err)
}

func TestNextSessionGating(t *testing.T) {
	env := newTestEnv(t, time.Hour)
	ctx := context.Background()
	userId := uuid.New()

	env.seedDiagnostico(t, "ansiedade", true, intPtr(2))
	session := startChat(t, env, userId, "ansiedade")

	// current session not finalized yet
	_, err := env.lifecycle.NextSession(ctx, userId, session.ChatId)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be finalized")

	exchangeMessages(t, env, userId, session.ChatId, 2)
	_, err = env.lifecycle.Finalize(ctx, userId, session.ChatId)
	require.NoError(t, err)

	next, err := env.lifecycle.NextSession(ctx, userId, session.ChatId)
	require.NoError(t, err)
	assert.Equal(t, 2, next.Sessao)
	assert.Equal(t, session.ChatId, next.ChatId)

	// finish the last allowed session and hit the limit
	exchangeMessages(t, env, userId, session.ChatId, 2)
	_, err = env.lifecycle.Finalize(ctx, userId, session.ChatId)
	require.NoError(t, err)

	_, err = env.lifecycle.NextSession(ctx, userId, session.ChatId)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session limit reached")
}

func TestListSessionsAnnotatesReviews(t *testing.T) {
	env := newTestEnv(t, time.Hour)
	ctx := context.Background()
	userId := uuid.New()

	env.seedDiagnostico(t, "ansiedade", true, intPtr(2))
	session := startChat(t, env, userId, "ansiedade")

	exchangeMessages(t, env, userId, session.ChatId, 2)
	_, err := env.lifecycle.Finalize(ctx, userId, session.ChatId)
	require.NoError(t, err)
	_, err = env.lifecycle.NextSession(ctx, userId, session.ChatId)
	require.NoError(t, err)

	list, err := env.lifecycle.ListSessions(ctx, session.ChatId, "")
	require.NoError(t, err)
	require.Len(t, list.Sessions, 2)
	assert.Equal(t, 1, list.Sessions[0].Sessao)
	assert.True(t, list.Sessions[0].HasReview)
	assert.Equal(t, 2, list.Sessions[1].Sessao)
	assert.False(t, list.Sessions[1].HasReview)
	assert.False(t, list.CanStartNewSession)
	assert.False(t, list.ProtocolComplete)
	assert.Equal(t, 2, list.MaxSessoes)

	// lookup by the workflow thread handle resolves the same chat
	uow := env.uowFactory.NewUnitOfWork(ctx)
	thread, err := uow.ChatThreadRepository().FindCurrent(ctx, session.ChatId)
	require.NoError(t, err)
	if thread.ThreadId != "" {
		byThread, err := env.lifecycle.ListSessions(ctx, "", thread.ThreadId)
		require.NoError(t, err)
		assert.Equal(t, session.ChatId, byThread.ChatId)
	}
}

func TestProtocolCompleteAfterLastReview(t *testing.T) {
	env := newTestEnv(t, time.Hour)
	ctx := context.Background()
	userId := uuid.New()

	env.seedDiagnostico(t, "ansiedade", true, intPtr(1))
	env.seedMetadata(t, userId, "paciente@example.com", nil)
	session := startChat(t, env, userId, "ansiedade")

	exchangeMessages(t, env, userId, session.ChatId, 2)
	_, err := env.lifecycle.Finalize(ctx, userId, session.ChatId)
	require.NoError(t, err)

	list, err := env.lifecycle.ListSessions(ctx, session.ChatId, "")
	require.NoError(t, err)
	assert.True(t, list.ProtocolComplete)
	assert.False(t, list.CanStartNewSession)

	shown, err := env.lifecycle.SelectSession(ctx, session.ChatId, 1)
	require.NoError(t, err)
	assert.Equal(t, string(entity.ThreadStateProtocolComplete), shown.State)

	// completion email went to the address on file
	require.Len(t, env.mailer.protocolComplete, 1)
	assert.Equal(t, "paciente@example.com", env.mailer.protocolComplete[0])
}

func TestPauseAndResumeTimer(t *testing.T) {
	env := newTestEnv(t, time.Hour)
	ctx := context.Background()
	userId := uuid.New()

	env.seedDiagnostico(t, "ansiedade", true, nil)
	session := startChat(t, env, userId, "ansiedade")

	paused, err := env.lifecycle.PauseTimer(ctx, userId, session.ChatId)
	require.NoError(t, err)
	assert.True(t, paused.Paused)
	assert.InDelta(t, time.Hour.Milliseconds(), paused.RemainingMs, float64(time.Second.Milliseconds()))

	// pausing again is a no-op
	again, err := env.lifecycle.PauseTimer(ctx, userId, session.ChatId)
	require.NoError(t, err)
	assert.Equal(t, paused.RemainingMs, again.RemainingMs)

	resumed, err := env.lifecycle.ResumeTimer(ctx, userId, session.ChatId)
	require.NoError(t, err)
	assert.False(t, resumed.Paused)
	assert.InDelta(t, paused.RemainingMs, resumed.RemainingMs, float64(time.Second.Milliseconds()))
	assert.False(t, resumed.Expired)
}

func TestExpiryAutoFinalizes(t *testing.T) {
	env := newTestEnv(t, time.Hour)
	ctx := context.Background()
	userId := uuid.New()

	env.seedDiagnostico(t, "ansiedade", true, nil)
	session := startChat(t, env, userId, "ansiedade")
	exchangeMessages(t, env, userId, session.ChatId, 1)

	env.rewindSession(t, session.ChatId, 1, 61*time.Minute)

	uow := env.uowFactory.NewUnitOfWork(ctx)
	thread, err := uow.ChatThreadRepository().FindCurrent(ctx, session.ChatId)
	require.NoError(t, err)

	done, err := env.lifecycle.CheckExpiry(ctx, thread)
	require.NoError(t, err)
	assert.True(t, done)

	has, err := env.review.HasReview(ctx, session.ChatId, 1)
	require.NoError(t, err)
	assert.True(t, has)

	// a second pass is a no-op, the review already exists
	done, err = env.lifecycle.CheckExpiry(ctx, thread)
	require.NoError(t, err)
	assert.False(t, done)
}

func TestExpiryLeavesEmptySessionsAlone(t *testing.T) {
	env := newTestEnv(t, time.Hour)
	ctx := context.Background()
	userId := uuid.New()

	env.seedDiagnostico(t, "ansiedade", true, nil)
	session := startChat(t, env, userId, "ansiedade")
	env.rewindSession(t, session.ChatId, 1, 61*time.Minute)

	uow := env.uowFactory.NewUnitOfWork(ctx)
	thread, err := uow.ChatThreadRepository().FindCurrent(ctx, session.ChatId)
	require.NoError(t, err)

	done, err := env.lifecycle.CheckExpiry(ctx, thread)
	require.NoError(t, err)
	assert.False(t, done)

	has, err := env.review.HasReview(ctx, session.ChatId, 1)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestPausedSessionNeverExpires(t *testing.T) {
	env := newTestEnv(t, time.Hour)
	ctx := context.Background()
	userId := uuid.New()

	env.seedDiagnostico(t, "ansiedade", true, nil)
	session := startChat(t, env, userId, "ansiedade")
	exchangeMessages(t, env, userId, session.ChatId, 1)

	_, err := env.lifecycle.PauseTimer(ctx, userId, session.ChatId)
	require.NoError(t, err)
	env.rewindSession(t, session.ChatId, 1, 61*time.Minute)

	uow := env.uowFactory.NewUnitOfWork(ctx)
	thread, err := uow.ChatThreadRepository().FindCurrent(ctx, session.ChatId)
	require.NoError(t, err)

	done, err := env.lifecycle.CheckExpiry(ctx, thread)
	require.NoError(t, err)
	assert.False(t, done)
}

func TestSweepOnceFinalizesExpiredSessions(t *testing.T) {
	env := newTestEnv(t, time.Hour)
	ctx := context.Background()

	env.seedDiagnostico(t, "ansiedade", true, nil)

	// one expired session with messages, one fresh, one expired but empty
	expired := startChat(t, env, uuid.New(), "ansiedade")
	expiredUser := mustThreadOwner(t, env, expired.ChatId)
	exchangeMessages(t, env, expiredUser, expired.ChatId, 1)
	env.rewindSession(t, expired.ChatId, 1, 61*time.Minute)

	fresh := startChat(t, env, uuid.New(), "ansiedade")
	freshUser := mustThreadOwner(t, env, fresh.ChatId)
	exchangeMessages(t, env, freshUser, fresh.ChatId, 1)

	empty := startChat(t, env, uuid.New(), "ansiedade")
	env.rewindSession(t, empty.ChatId, 1, 61*time.Minute)

	finalized, err := env.sweeper.SweepOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, finalized)

	has, err := env.review.HasReview(ctx, expired.ChatId, 1)
	require.NoError(t, err)
	assert.True(t, has)

	has, err = env.review.HasReview(ctx, fresh.ChatId, 1)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestSweepSkipsFinalizedSessions(t *testing.T) {
	env := newTestEnv(t, time.Hour)
	ctx := context.Background()

	env.seedDiagnostico(t, "ansiedade", true, intPtr(2))
	session := startChat(t, env, uuid.New(), "ansiedade")
	userId := mustThreadOwner(t, env, session.ChatId)

	exchangeMessages(t, env, userId, session.ChatId, 2)
	_, err := env.lifecycle.Finalize(ctx, userId, session.ChatId)
	require.NoError(t, err)
	env.rewindSession(t, session.ChatId, 1, 61*time.Minute)

	// a finalized row never re-enters the candidate set
	uow := env.uowFactory.NewUnitOfWork(ctx)
	candidates, err := uow.ChatThreadRepository().FindAll(ctx,
		specification.TimerRunning{},
		specification.StartedBefore{Cutoff: time.Now().Add(-time.Hour)},
		specification.NotReviewed{},
	)
	require.NoError(t, err)
	assert.Empty(t, candidates)

	finalized, err := env.sweeper.SweepOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, finalized)
}

func mustThreadOwner(t *testing.T, env *testEnv, chatId string) uuid.UUID {
	t.Helper()
	uow := env.uowFactory.NewUnitOfWork(context.Background())
	thread, err := uow.ChatThreadRepository().FindOne(context.Background(), specification.ByChatId{ChatId: chatId})
	require.NoError(t, err)
	require.NotNil(t, thread)
	return thread.UserId
}
