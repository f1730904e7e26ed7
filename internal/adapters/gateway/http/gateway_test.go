package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pollbooth/pollbooth/internal/core/domain"
)

func newTestGateway(t *testing.T, handler http.HandlerFunc) *Gateway {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewGateway(server.URL, 5*time.Second, zerolog.Nop()).(*Gateway)
}

func TestGetJSONDecodesSuccess(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/poll_status/p1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"question":"Q","is_active":true}`))
	})

	var out struct {
		Question string `json:"question"`
		IsActive bool   `json:"is_active"`
	}
	err := gw.GetJSON(context.Background(), "/poll_status/p1", &out)

	require.NoError(t, err)
	assert.Equal(t, "Q", out.Question)
	assert.True(t, out.IsActive)
}

func TestErrorFieldWinsOverMessageField(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":"This poll has ended.","message":"ignored"}`))
	})

	err := gw.PostJSON(context.Background(), "/vote", map[string]string{}, nil)

	var reqErr *domain.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusForbidden, reqErr.Status)
	assert.Equal(t, "This poll has ended.", reqErr.Message)
}

func TestMessageFieldUsedWhenNoErrorField(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"Missing values"}`))
	})

	err := gw.PostJSON(context.Background(), "/create_poll", map[string]string{}, nil)

	var reqErr *domain.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, "Missing values", reqErr.Message)
}

func TestFallbackWhenBodyIsNotJSON(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("<html>nope</html>"))
	})

	err := gw.GetJSON(context.Background(), "/my_polls/alice", nil)

	var reqErr *domain.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Empty(t, reqErr.Message)
	assert.Equal(t, "Your polls could not be listed.", reqErr.MessageOr("Your polls could not be listed."))
}

func TestTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close() // nothing listens anymore
	gw := NewGateway(server.URL, time.Second, zerolog.Nop())

	err := gw.GetJSON(context.Background(), "/poll_status/p1", nil)

	var reqErr *domain.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Empty(t, reqErr.Message)
	assert.Error(t, errors.Unwrap(reqErr))
}

func TestPostJSONSendsBody(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"poll_id":"p1","voter_id":"v1","selection":"a"}`, string(body))
		_, _ = w.Write([]byte(`{"message":"ok"}`))
	})

	var out struct {
		Message string `json:"message"`
	}
	err := gw.PostJSON(context.Background(), "/vote", map[string]string{
		"poll_id": "p1", "voter_id": "v1", "selection": "a",
	}, &out)

	require.NoError(t, err)
	assert.Equal(t, "ok", out.Message)
}

func TestPostMultipartCarriesFieldsAndFile(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "Q", r.FormValue("question"))

		file, header, err := r.FormFile("voters_file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "voters.csv", header.Filename)
		data, _ := io.ReadAll(file)
		assert.Equal(t, "v1,v2", string(data))

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"poll_id":"p1"}`))
	})

	var out struct {
		PollID string `json:"poll_id"`
	}
	err := gw.PostMultipart(context.Background(), "/create_poll",
		map[string]string{"question": "Q"}, "voters_file", "voters.csv",
		strings.NewReader("v1,v2"), &out)

	require.NoError(t, err)
	assert.Equal(t, "p1", out.PollID)
}

func TestPostMultipartWithoutFile(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		_, _, err := r.FormFile("voters_file")
		assert.Error(t, err, "no file part expected")
		w.WriteHeader(http.StatusCreated)
	})

	err := gw.PostMultipart(context.Background(), "/create_poll",
		map[string]string{"question": "Q"}, "voters_file", "", nil, nil)

	require.NoError(t, err)
}

func TestDownloadReturnsRawBytes(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte("option,votes\n\"a\",1\n"))
	})

	data, err := gw.Download(context.Background(), "/export_results/p1")

	require.NoError(t, err)
	assert.Equal(t, "option,votes\n\"a\",1\n", string(data))
}
