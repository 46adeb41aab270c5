package studio

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"golang.org/x/exp/slog"

	"github.com/smcana/liveplanner"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeSidecar struct {
	server   *httptest.Server
	payloads []createPayload
	id       string
	status   int
	message  string
}

func newFakeSidecar(t *testing.T) *fakeSidecar {
	f := &fakeSidecar{id: "yt-ui-1"}
	r := mux.NewRouter()
	r.HandleFunc("/v1/broadcasts", f.handleCreate).Methods(http.MethodPost)
	f.server = httptest.NewServer(r)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeSidecar) handleCreate(res http.ResponseWriter, req *http.Request) {
	var p createPayload
	if err := json.NewDecoder(req.Body).Decode(&p); err != nil {
		res.WriteHeader(http.StatusBadRequest)
		return
	}
	f.payloads = append(f.payloads, p)
	if f.status != 0 {
		res.WriteHeader(f.status)
		res.Write([]byte(f.message))
		return
	}
	res.Header().Set("content-type", "application/json")
	json.NewEncoder(res).Encode(map[string]string{"id": f.id})
}

func testStart(t *testing.T) time.Time {
	t.Helper()
	madrid, err := time.LoadLocation("Europe/Madrid")
	assert.NoError(t, err)
	return time.Date(2026, 2, 19, 10, 0, 0, 0, madrid)
}

func Test_Client_CreateBroadcast(t *testing.T) {
	f := newFakeSidecar(t)
	c := NewClient(f.server.URL, 5*time.Second)

	state := json.RawMessage(`{"cookies":[{"name":"SID"}]}`)
	id, err := c.CreateBroadcast(context.Background(), "Misa 10h - Jueves 19 de febrero", testStart(t), "Misa 10h", state)
	assert.NoError(t, err)
	assert.Equal(t, "yt-ui-1", id)

	if assert.Len(t, f.payloads, 1) {
		p := f.payloads[0]
		assert.Equal(t, "Misa 10h - Jueves 19 de febrero", p.Title)
		assert.Equal(t, "2026-02-19T10:00:00+01:00", p.ScheduledStart)
		assert.Equal(t, "Misa 10h", p.TemplateKeyword)
		assert.JSONEq(t, string(state), string(p.StorageState))
	}
}

func Test_Client_CreateBroadcast_mapsRejections(t *testing.T) {
	f := newFakeSidecar(t)
	f.status = http.StatusUnauthorized
	f.message = "storage state session expired"
	c := NewClient(f.server.URL, 5*time.Second)

	_, err := c.CreateBroadcast(context.Background(), "Misa 10h - Jueves 19 de febrero", testStart(t), "Misa 10h", json.RawMessage(`{}`))
	var creationErr *CreationError
	if assert.ErrorAs(t, err, &creationErr) {
		assert.Equal(t, http.StatusUnauthorized, creationErr.Status)
		assert.Equal(t, "storage state session expired", creationErr.Message)
	}
}

func Test_Backend_CreateReusingTemplate(t *testing.T) {
	f := newFakeSidecar(t)
	b := NewBackend(NewClient(f.server.URL, 5*time.Second), json.RawMessage(`{}`), discardLogger())

	created, err := b.CreateReusingTemplate(context.Background(), liveplanner.CreateRequest{
		Title:          "Misa 10h - Jueves 19 de febrero",
		Description:    "Misa de la mañana.",
		ScheduledStart: testStart(t),
		Keyword:        "Misa 10h",
		PrivacyStatus:  "unlisted",
	})
	assert.NoError(t, err)
	if assert.NotNil(t, created) {
		assert.Equal(t, "yt-ui-1", created.Id)
		assert.Equal(t, "Misa 10h - Jueves 19 de febrero", created.Title())
		assert.Equal(t, "2026-02-19T10:00:00+01:00", created.Snippet.ScheduledStartTime)
	}
}

func Test_Backend_CreateReusingTemplate_synthesizesMissingIds(t *testing.T) {
	f := newFakeSidecar(t)
	f.id = ""
	b := NewBackend(NewClient(f.server.URL, 5*time.Second), json.RawMessage(`{}`), discardLogger())

	req := liveplanner.CreateRequest{
		Title:          "Misa 10h - Jueves 19 de febrero",
		ScheduledStart: testStart(t),
		Keyword:        "Misa 10h",
	}
	first, err := b.CreateReusingTemplate(context.Background(), req)
	assert.NoError(t, err)
	second, err := b.CreateReusingTemplate(context.Background(), req)
	assert.NoError(t, err)

	assert.Equal(t, "studio-1", first.Id)
	assert.Equal(t, "studio-2", second.Id)
}

func Test_Backend_CreateReusingTemplate_propagatesRejections(t *testing.T) {
	f := newFakeSidecar(t)
	f.status = http.StatusInternalServerError
	f.message = "browser automation crashed"
	b := NewBackend(NewClient(f.server.URL, 5*time.Second), json.RawMessage(`{}`), discardLogger())

	created, err := b.CreateReusingTemplate(context.Background(), liveplanner.CreateRequest{
		Title:          "Misa 10h - Jueves 19 de febrero",
		ScheduledStart: testStart(t),
		Keyword:        "Misa 10h",
	})
	assert.Nil(t, created)
	var creationErr *CreationError
	assert.ErrorAs(t, err, &creationErr)
}
