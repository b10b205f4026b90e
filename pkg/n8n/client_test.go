package n8n

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateReview_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"output":{"resumoAtendimento":"resumo","feedbackDireto":"feedback","sinaisPaciente":["ansiedade"],"pontosPositivos":["escuta"],"pontosNegativos":[]}}`))
	}))
	defer srv.Close()

	client := NewClient("", srv.URL)
	payload, err := client.GenerateReview(context.Background(), &ReviewRequest{
		ChatId:      "abc",
		Sessao:      1,
		Diagnostico: "ansiedade",
	})

	assert.NoError(t, err)
	assert.Equal(t, "resumo", payload.ResumoAtendimento)
	assert.Equal(t, []string{"ansiedade"}, payload.SinaisPaciente)
}

func TestGenerateReview_EmptyPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"output":{}}`))
	}))
	defer srv.Close()

	client := NewClient("", srv.URL)
	_, err := client.GenerateReview(context.Background(), &ReviewRequest{ChatId: "abc", Sessao: 1})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient data")
}

func TestGenerateReview_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient("", srv.URL)
	_, err := client.GenerateReview(context.Background(), &ReviewRequest{ChatId: "abc", Sessao: 1})

	assert.Error(t, err)
}

func TestGenerateReview_Unreachable(t *testing.T) {
	client := NewClient("", "http://127.0.0.1:1")
	_, err := client.GenerateReview(context.Background(), &ReviewRequest{ChatId: "abc", Sessao: 1})
	assert.Error(t, err)
}

func TestSendChat_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"output":"Olá, doutor.","thread_id":"th-1"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	resp, err := client.SendChat(context.Background(), &ChatRequest{
		ChatId:  "abc",
		Sessao:  1,
		Message: "Bom dia",
	})

	assert.NoError(t, err)
	assert.Equal(t, "Olá, doutor.", resp.Output)
	assert.Equal(t, "th-1", resp.ThreadId)
}

func TestSendChat_EmptyOutput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"output":""}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	_, err := client.SendChat(context.Background(), &ChatRequest{ChatId: "abc", Sessao: 1, Message: "oi"})
	assert.Error(t, err)
}
