// Package apitest provides an in-process fake of the slice of the YouTube
// Data API that the scheduler touches, so that the client and the creation
// backend can be exercised over real HTTP round trips.
package apitest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/gorilla/mux"
	"github.com/smcana/liveplanner"
)

// Server simulates the liveBroadcasts surface: list with pagination, insert,
// update, delete, bind and thumbnail upload, plus a tiny image host for
// thumbnail downloads. Tests can seed broadcasts, queue structured API
// failures per operation, and inspect the resulting state.
type Server struct {
	*httptest.Server

	mu         sync.Mutex
	broadcasts []*liveplanner.Broadcast
	nextId     int
	deleted    []string

	insertFailures    []apiFailure
	bindFailures      []apiFailure
	listFailures      []apiFailure
	thumbnailFailures []apiFailure

	chatQuirk bool
	images    map[string][]byte
	uploads   map[string][]byte
}

type apiFailure struct {
	code    int
	reason  string
	message string
}

func NewServer(t *testing.T) *Server {
	s := &Server{
		images:  make(map[string][]byte),
		uploads: make(map[string][]byte),
	}
	r := mux.NewRouter()
	r.HandleFunc("/youtube/v3/liveBroadcasts", s.handleList).Methods(http.MethodGet)
	r.HandleFunc("/youtube/v3/liveBroadcasts", s.handleInsert).Methods(http.MethodPost)
	r.HandleFunc("/youtube/v3/liveBroadcasts", s.handleUpdate).Methods(http.MethodPut)
	r.HandleFunc("/youtube/v3/liveBroadcasts", s.handleDelete).Methods(http.MethodDelete)
	r.HandleFunc("/youtube/v3/liveBroadcasts/bind", s.handleBind).Methods(http.MethodPost)
	r.HandleFunc("/upload/youtube/v3/thumbnails/set", s.handleSetThumbnail).Methods(http.MethodPost)
	r.HandleFunc("/images/{name}", s.handleImage).Methods(http.MethodGet)
	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// APIURL is the base URL to configure as the client's API host.
func (s *Server) APIURL() string {
	return s.URL + "/youtube/v3"
}

// UploadURL is the base URL to configure as the client's upload host.
func (s *Server) UploadURL() string {
	return s.URL + "/upload/youtube/v3"
}

// ImageURL is the address of an image registered with AddImage.
func (s *Server) ImageURL(name string) string {
	return s.URL + "/images/" + name
}

// Seed adds a broadcast to the remote list as pre-existing history.
func (s *Server) Seed(b *liveplanner.Broadcast) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.broadcasts = append(s.broadcasts, b)
}

// AddImage registers bytes to be served at ImageURL(name).
func (s *Server) AddImage(name string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.images[name] = data
}

// Broadcasts returns a snapshot of the current remote list.
func (s *Server) Broadcasts() []*liveplanner.Broadcast {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*liveplanner.Broadcast, len(s.broadcasts))
	copy(out, s.broadcasts)
	return out
}

// Broadcast looks up one stored broadcast by id.
func (s *Server) Broadcast(id string) *liveplanner.Broadcast {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.broadcasts {
		if b.Id == id {
			return b
		}
	}
	return nil
}

// Deleted returns the ids removed via the delete operation, in order.
func (s *Server) Deleted() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.deleted...)
}

// ThumbnailFor returns the bytes uploaded as the thumbnail of a video.
func (s *Server) ThumbnailFor(videoId string) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uploads[videoId]
}

// FailNextList queues one structured failure for the next list call.
func (s *Server) FailNextList(code int, reason, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listFailures = append(s.listFailures, apiFailure{code, reason, message})
}

// FailNextInsert queues one structured failure for the next insert call.
func (s *Server) FailNextInsert(code int, reason, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertFailures = append(s.insertFailures, apiFailure{code, reason, message})
}

// FailNextBind queues one structured failure for the next bind call.
func (s *Server) FailNextBind(code int, reason, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bindFailures = append(s.bindFailures, apiFailure{code, reason, message})
}

// FailNextThumbnailUpload queues one failure for the next thumbnail upload.
func (s *Server) FailNextThumbnailUpload(code int, reason, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.thumbnailFailures = append(s.thumbnailFailures, apiFailure{code, reason, message})
}

// EnableChatQuirk makes insert ignore a disabled chat flag and store the
// broadcast with chat enabled, mimicking the platform applying its default
// over the requested value.
func (s *Server) EnableChatQuirk() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chatQuirk = true
}

func (s *Server) handleList(res http.ResponseWriter, req *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fail, ok := takeFailure(&s.listFailures); ok {
		writeAPIError(res, fail)
		return
	}

	// A lookup by id ignores pagination
	if id := req.URL.Query().Get("id"); id != "" {
		page := &liveplanner.BroadcastListPage{Items: []*liveplanner.Broadcast{}}
		for _, b := range s.broadcasts {
			if b.Id == id {
				page.Items = append(page.Items, b)
			}
		}
		writeJSON(res, page)
		return
	}

	maxResults := 50
	if raw := req.URL.Query().Get("maxResults"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			maxResults = n
		}
	}
	offset := 0
	if raw := req.URL.Query().Get("pageToken"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			offset = n
		}
	}

	end := offset + maxResults
	if end > len(s.broadcasts) {
		end = len(s.broadcasts)
	}
	page := &liveplanner.BroadcastListPage{Items: []*liveplanner.Broadcast{}}
	if offset < end {
		page.Items = s.broadcasts[offset:end]
	}
	if end < len(s.broadcasts) {
		page.NextPageToken = strconv.Itoa(end)
	}
	writeJSON(res, page)
}

func (s *Server) handleInsert(res http.ResponseWriter, req *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fail, ok := takeFailure(&s.insertFailures); ok {
		writeAPIError(res, fail)
		return
	}

	var b liveplanner.Broadcast
	if err := json.NewDecoder(req.Body).Decode(&b); err != nil {
		writeAPIError(res, apiFailure{http.StatusBadRequest, "badRequest", err.Error()})
		return
	}
	s.nextId++
	b.Id = fmt.Sprintf("yt-%d", s.nextId)
	if s.chatQuirk {
		if b.ContentDetails == nil {
			b.ContentDetails = &liveplanner.BroadcastContent{}
		}
		enabled := true
		b.ContentDetails.EnableChat = &enabled
	}
	s.broadcasts = append(s.broadcasts, &b)
	writeJSON(res, &b)
}

func (s *Server) handleUpdate(res http.ResponseWriter, req *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var update liveplanner.Broadcast
	if err := json.NewDecoder(req.Body).Decode(&update); err != nil {
		writeAPIError(res, apiFailure{http.StatusBadRequest, "badRequest", err.Error()})
		return
	}
	for _, b := range s.broadcasts {
		if b.Id == update.Id {
			if update.ContentDetails != nil {
				b.ContentDetails = update.ContentDetails
			}
			if update.Snippet != nil {
				b.Snippet = update.Snippet
			}
			writeJSON(res, b)
			return
		}
	}
	writeAPIError(res, apiFailure{http.StatusNotFound, "notFound", "broadcast not found"})
}

func (s *Server) handleDelete(res http.ResponseWriter, req *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := req.URL.Query().Get("id")
	for i, b := range s.broadcasts {
		if b.Id == id {
			s.broadcasts = append(s.broadcasts[:i], s.broadcasts[i+1:]...)
			s.deleted = append(s.deleted, id)
			res.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeAPIError(res, apiFailure{http.StatusNotFound, "notFound", "broadcast not found"})
}

func (s *Server) handleBind(res http.ResponseWriter, req *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fail, ok := takeFailure(&s.bindFailures); ok {
		writeAPIError(res, fail)
		return
	}

	id := req.URL.Query().Get("id")
	streamId := req.URL.Query().Get("streamId")
	for _, b := range s.broadcasts {
		if b.Id == id {
			if b.ContentDetails == nil {
				b.ContentDetails = &liveplanner.BroadcastContent{}
			}
			b.ContentDetails.BoundStreamId = streamId
			writeJSON(res, b)
			return
		}
	}
	writeAPIError(res, apiFailure{http.StatusNotFound, "notFound", "broadcast not found"})
}

func (s *Server) handleSetThumbnail(res http.ResponseWriter, req *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fail, ok := takeFailure(&s.thumbnailFailures); ok {
		writeAPIError(res, fail)
		return
	}

	data, err := io.ReadAll(req.Body)
	if err != nil || len(data) == 0 {
		writeAPIError(res, apiFailure{http.StatusBadRequest, "mediaBodyRequired", "no image supplied"})
		return
	}
	s.uploads[req.URL.Query().Get("videoId")] = data
	writeJSON(res, map[string]any{"kind": "youtube#thumbnailSetResponse"})
}

func (s *Server) handleImage(res http.ResponseWriter, req *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.images[mux.Vars(req)["name"]]
	if !ok {
		http.NotFound(res, req)
		return
	}
	res.Header().Set("Content-Type", "image/jpeg")
	res.Write(data)
}

func takeFailure(queue *[]apiFailure) (apiFailure, bool) {
	if len(*queue) == 0 {
		return apiFailure{}, false
	}
	fail := (*queue)[0]
	*queue = (*queue)[1:]
	return fail, true
}

func writeJSON(res http.ResponseWriter, v any) {
	res.Header().Set("Content-Type", "application/json")
	json.NewEncoder(res).Encode(v)
}

// writeAPIError renders the structured error envelope that googleapi parses
// into *googleapi.Error, reason included.
func writeAPIError(res http.ResponseWriter, fail apiFailure) {
	res.Header().Set("Content-Type", "application/json")
	res.WriteHeader(fail.code)
	json.NewEncoder(res).Encode(map[string]any{
		"error": map[string]any{
			"code":    fail.code,
			"message": fail.message,
			"errors": []map[string]any{
				{"reason": fail.reason, "message": fail.message},
			},
		},
	})
}
