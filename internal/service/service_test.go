package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"terapia-chat-be/internal/entity"
	"terapia-chat-be/internal/model"
	"terapia-chat-be/internal/repository/memory"
	"terapia-chat-be/internal/repository/unitofwork"
	"terapia-chat-be/pkg/n8n"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	gormsqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type quietLogger struct{}

func (quietLogger) Debug(module, message string, details map[string]interface{}) {}
func (quietLogger) Info(module, message string, details map[string]interface{})  {}
func (quietLogger) Warn(module, message string, details map[string]interface{})  {}
func (quietLogger) Error(module, message string, details map[string]interface{}) {}
func (quietLogger) Sync() error                                                  { return nil }

type recordingMailer struct {
	protocolComplete []string
	accessExpiring   []string
}

func (m *recordingMailer) SendProtocolComplete(toEmail, diagnostico string, sessoes int) error {
	m.protocolComplete = append(m.protocolComplete, toEmail)
	return nil
}

func (m *recordingMailer) SendAccessExpiring(toEmail string, daysLeft int) error {
	m.accessExpiring = append(m.accessExpiring, toEmail)
	return nil
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&model.ChatThread{},
		&model.ChatReview{},
		&model.ChatMessage{},
		&model.Diagnostico{},
		&model.UserMetadata{},
		&model.UserChat{},
	); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

// testEnv wires the full service stack against an in-memory database and a
// stub workflow server.
type testEnv struct {
	db         *gorm.DB
	uowFactory unitofwork.RepositoryFactory
	access     IAccessService
	review     IReviewService
	lifecycle  ILifecycleService
	sweeper    ISweeperService
	mailer     *recordingMailer
	duration   time.Duration
}

// stubWorkflow answers both webhook routes: /chat echoes a reply and a thread
// handle, /review returns a structured summary.
func stubWorkflow(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/chat", func(w http.ResponseWriter, r *http.Request) {
		var req n8n.ChatRequest
		json.NewDecoder(r.Body).Decode(&req)
		json.NewEncoder(w).Encode(map[string]string{
			"output":    "Entendo. Pode me contar mais sobre isso?",
			"thread_id": "thread-" + req.ChatId,
		})
	})
	mux.HandleFunc("/review", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"output": map[string]interface{}{
				"resumoAtendimento": "O paciente relatou sintomas de ansiedade.",
				"feedbackDireto":    "Boa escuta ativa ao longo da sessão.",
				"sinaisPaciente":    []string{"inquietação"},
				"pontosPositivos":   []string{"acolhimento"},
				"pontosNegativos":   []string{"interrupções"},
			},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestEnv(t *testing.T, duration time.Duration) *testEnv {
	t.Helper()

	db := openTestDB(t)
	uowFactory := unitofwork.NewRepositoryFactory(db)

	srv := stubWorkflow(t)
	webhookClient := n8n.NewClient(srv.URL+"/chat", srv.URL+"/review")

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	publisher := NewPublisherService("TEST_EVENTS", pubSub)

	log := quietLogger{}
	mail := &recordingMailer{}

	access := NewAccessService(uowFactory, memory.NewLimitCache(), log)
	review := NewReviewService(uowFactory, access, webhookClient, publisher, log)
	lifecycle := NewLifecycleService(uowFactory, access, review, webhookClient, publisher, mail, log, duration)
	sweeper := NewSweeperService(uowFactory, lifecycle, log, duration, time.Minute)

	return &testEnv{
		db:         db,
		uowFactory: uowFactory,
		access:     access,
		review:     review,
		lifecycle:  lifecycle,
		sweeper:    sweeper,
		mailer:     mail,
		duration:   duration,
	}
}

func (e *testEnv) seedDiagnostico(t *testing.T, codigo string, ativo bool, maxSessoes *int) {
	t.Helper()
	uow := e.uowFactory.NewUnitOfWork(context.Background())
	err := uow.DiagnosticoRepository().Create(context.Background(), &entity.Diagnostico{
		Codigo:     codigo,
		Nome:       codigo,
		Ativo:      ativo,
		MaxSessoes: maxSessoes,
	})
	if err != nil {
		t.Fatalf("seed diagnostico: %v", err)
	}
}

func (e *testEnv) seedMetadata(t *testing.T, userId uuid.UUID, email string, until *time.Time) {
	t.Helper()
	uow := e.uowFactory.NewUnitOfWork(context.Background())
	err := uow.UserMetadataRepository().Upsert(context.Background(), &entity.UserMetadata{
		UserId:          userId,
		Email:           email,
		Role:            entity.UserRoleUser,
		DataFinalAcesso: until,
	})
	if err != nil {
		t.Fatalf("seed metadata: %v", err)
	}
}

func (e *testEnv) rewindSession(t *testing.T, chatId string, sessao int, by time.Duration) {
	t.Helper()
	err := e.db.Model(&model.ChatThread{}).
		Where("chat_id = ? AND sessao = ?", chatId, sessao).
		Update("session_started_at", time.Now().Add(-by)).Error
	if err != nil {
		t.Fatalf("rewind session: %v", err)
	}
}

func intPtr(v int) *int { return &v }
