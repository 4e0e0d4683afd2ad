// Package pbtest provides an in-process fake of the PocketBase auth
// collection API for tests.
package pbtest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrymomot/anilink/pkg/pocketbase"
)

const (
	CollectionID = "_pb_users_auth_"
	GoodCode     = "good-code"
)

// Created is the creation time stamped on every record.
var Created = time.Date(2024, time.March, 5, 10, 11, 12, 0, time.UTC)

// SignToken returns an HS256 JWT for record id expiring at exp.
func SignToken(id string, exp time.Time) string {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":           id,
		"type":         "auth",
		"collectionId": CollectionID,
		"exp":          exp.Unix(),
	})
	s, err := tok.SignedString([]byte("pbtest"))
	if err != nil {
		panic(err)
	}
	return s
}

type account struct {
	password string
	record   pocketbase.Record
}

// Server fakes one PocketBase auth collection.
type Server struct {
	*httptest.Server

	collection string

	mu       sync.Mutex
	accounts map[string]*account // by record id
	tokens   map[string]string   // token -> record id
	hits     map[string]int
	seq      int

	failRefresh bool
	failUpdate  bool
	failDelete  bool
}

// NewServer starts a fake serving collection and stops it when t ends.
func NewServer(t testing.TB, collection string) *Server {
	s := &Server{
		collection: collection,
		accounts:   make(map[string]*account),
		tokens:     make(map[string]string),
		hits:       make(map[string]int),
	}

	r := chi.NewRouter()
	r.Route("/api/collections/"+collection, func(r chi.Router) {
		r.Post("/auth-with-password", s.count("auth-with-password", s.authWithPassword))
		r.Get("/auth-methods", s.count("auth-methods", s.authMethods))
		r.Post("/auth-with-oauth2", s.count("auth-with-oauth2", s.authWithOAuth2))
		r.Post("/auth-refresh", s.count("auth-refresh", s.authRefresh))
		r.Post("/request-email-change", s.count("request-email-change", s.requestEmailChange))
		r.Post("/records", s.count("create", s.create))
		r.Patch("/records/{id}", s.count("update", s.update))
		r.Delete("/records/{id}", s.count("delete", s.delete))
	})

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// AddUser registers an account and returns its record.
func (s *Server) AddUser(email, password string) pocketbase.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addLocked(email, password)
}

func (s *Server) addLocked(email, password string) pocketbase.Record {
	s.seq++
	rec := pocketbase.Record{
		ID:             fmt.Sprintf("rec%d", s.seq),
		CollectionID:   CollectionID,
		CollectionName: s.collection,
		Email:          email,
		Created:        pocketbase.DateTime{Time: Created},
		Updated:        pocketbase.DateTime{Time: Created},
	}
	s.accounts[rec.ID] = &account{password: password, record: rec}
	return rec
}

// Record returns the stored record with the given id.
func (s *Server) Record(id string) (pocketbase.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return pocketbase.Record{}, false
	}
	return a.record, true
}

// Hits reports how many times the named endpoint was called, e.g. "update".
func (s *Server) Hits(endpoint string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[endpoint]
}

func (s *Server) FailRefresh(v bool) { s.mu.Lock(); s.failRefresh = v; s.mu.Unlock() }
func (s *Server) FailUpdate(v bool)  { s.mu.Lock(); s.failUpdate = v; s.mu.Unlock() }
func (s *Server) FailDelete(v bool)  { s.mu.Lock(); s.failDelete = v; s.mu.Unlock() }

func (s *Server) count(name string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.hits[name]++
		s.mu.Unlock()
		h(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"status": status, "message": msg, "data": map[string]any{}})
}

func (s *Server) issueLocked(a *account) map[string]any {
	token := SignToken(a.record.ID, time.Now().Add(time.Hour))
	s.tokens[token] = a.record.ID
	return map[string]any{"token": token, "record": a.record}
}

// caller resolves the Authorization header to an account. Callers hold s.mu.
func (s *Server) callerLocked(r *http.Request) (*account, bool) {
	id, ok := s.tokens[r.Header.Get("Authorization")]
	if !ok {
		return nil, false
	}
	a, ok := s.accounts[id]
	return a, ok
}

func (s *Server) authWithPassword(w http.ResponseWriter, r *http.Request) {
	var body struct{ Identity, Password string }
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Something went wrong while processing your request.")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.record.Email == body.Identity && a.password == body.Password {
			writeJSON(w, http.StatusOK, s.issueLocked(a))
			return
		}
	}
	writeError(w, http.StatusBadRequest, "Failed to authenticate.")
}

func provider(name string) pocketbase.AuthProvider {
	return pocketbase.AuthProvider{
		Name:         name,
		DisplayName:  name,
		State:        "state-" + name,
		CodeVerifier: "verifier-" + name,
		AuthURL:      "https://" + name + ".example/authorize?state=state-" + name + "&redirect_uri=",
	}
}

func (s *Server) authMethods(w http.ResponseWriter, r *http.Request) {
	var m pocketbase.AuthMethods
	m.Password.Enabled = true
	m.Password.IdentityFields = []string{"email"}
	m.OAuth2.Enabled = true
	m.OAuth2.Providers = []pocketbase.AuthProvider{provider("google"), provider("github")}
	writeJSON(w, http.StatusOK, m)
}

// authWithOAuth2 accepts GoodCode with the verifier handed out by
// auth-methods and signs in (or creates) <provider>@oauth.example.
func (s *Server) authWithOAuth2(w http.ResponseWriter, r *http.Request) {
	var body struct{ Provider, Code, CodeVerifier, RedirectURL string }
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Something went wrong while processing your request.")
		return
	}
	if body.Code != GoodCode || body.CodeVerifier != provider(body.Provider).CodeVerifier || body.RedirectURL == "" {
		writeError(w, http.StatusBadRequest, "Failed to authenticate.")
		return
	}

	email := body.Provider + "@oauth.example"
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.record.Email == email {
			writeJSON(w, http.StatusOK, s.issueLocked(a))
			return
		}
	}
	rec := s.addLocked(email, "")
	writeJSON(w, http.StatusOK, s.issueLocked(s.accounts[rec.ID]))
}

func (s *Server) authRefresh(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.callerLocked(r)
	if !ok || s.failRefresh {
		writeError(w, http.StatusUnauthorized, "The request requires valid record authorization token.")
		return
	}
	writeJSON(w, http.StatusOK, s.issueLocked(a))
}

func (s *Server) requestEmailChange(w http.ResponseWriter, r *http.Request) {
	var body struct{ NewEmail string }
	_ = json.NewDecoder(r.Body).Decode(&body)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.callerLocked(r); !ok {
		writeError(w, http.StatusUnauthorized, "The request requires valid record authorization token.")
		return
	}
	if body.NewEmail == "" {
		writeError(w, http.StatusBadRequest, "Failed to load the submitted data.")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email           string `json:"email"`
		Password        string `json:"password"`
		PasswordConfirm string `json:"passwordConfirm"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Failed to create record.")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if body.Email == "" || len(body.Password) < 8 || body.Password != body.PasswordConfirm {
		writeError(w, http.StatusBadRequest, "Failed to create record.")
		return
	}
	for _, a := range s.accounts {
		if a.record.Email == body.Email {
			writeError(w, http.StatusBadRequest, "Failed to create record.")
			return
		}
	}
	writeJSON(w, http.StatusOK, s.addLocked(body.Email, body.Password))
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	var patch map[string]any
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "Failed to load the submitted data.")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.callerLocked(r)
	if !ok || a.record.ID != chi.URLParam(r, "id") {
		writeError(w, http.StatusNotFound, "The requested resource wasn't found.")
		return
	}
	if s.failUpdate {
		writeError(w, http.StatusBadRequest, "Failed to update record.")
		return
	}

	current, _ := json.Marshal(a.record)
	merged := map[string]any{}
	_ = json.Unmarshal(current, &merged)
	for k, v := range patch {
		switch k {
		case "oldPassword", "password", "passwordConfirm":
			if k == "password" {
				if p, _ := v.(string); p != "" {
					a.password = p
				}
			}
		default:
			merged[k] = v
		}
	}
	buf, _ := json.Marshal(merged)
	var rec pocketbase.Record
	if err := json.Unmarshal(buf, &rec); err != nil {
		writeError(w, http.StatusBadRequest, "Failed to update record.")
		return
	}
	a.record = rec
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.callerLocked(r)
	if !ok || a.record.ID != chi.URLParam(r, "id") {
		writeError(w, http.StatusNotFound, "The requested resource wasn't found.")
		return
	}
	if s.failDelete {
		writeError(w, http.StatusBadRequest, "Failed to delete record.")
		return
	}
	delete(s.accounts, a.record.ID)
	w.WriteHeader(http.StatusNoContent)
}
