// Package client talks to the two portal channels: the JSON app API and the
// browser oriented web session that serves statistics.
package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"sync"
	"time"

	"github.com/nergy-se/wemportal/pkg/model"
	"golang.org/x/net/publicsuffix"
)

// DefaultServer is the portal both channels live on.
const DefaultServer = "https://www.wemportal.com"

// ErrConnection is returned when a channel rejects the login.
var ErrConnection = errors.New("connection error")

// session is an http.Client with its own cookie jar. Logout throws the jar away.
type session struct {
	server string
	header http.Header

	mu        sync.Mutex
	client    *http.Client
	connected bool
}

func newSession(server string, header http.Header) *session {
	return &session{
		server: server,
		header: header,
		client: newHTTPClient(),
	}
}

func newHTTPClient() *http.Client {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		// cookiejar.New never fails with a non nil Options.
		panic(err)
	}
	return &http.Client{
		Timeout: time.Second * 30,
		Jar:     jar,
	}
}

func (s *session) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

func (s *session) setConnected(c bool) {
	s.mu.Lock()
	s.connected = c
	if !c {
		s.client = newHTTPClient()
	}
	s.mu.Unlock()
}

func (s *session) send(req *http.Request) (*http.Response, error) {
	for k, v := range s.header {
		req.Header[k] = v
	}
	s.mu.Lock()
	client := s.client
	s.mu.Unlock()
	return client.Do(req)
}

func (s *session) do(req *http.Request, what string) ([]byte, error) {
	resp, err := s.send(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("error fetching %s StatusCode: %d", what, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// login sends the final login request. Any failure is an ErrConnection.
func (s *session) login(req *http.Request) error {
	resp, err := s.send(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConnection, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: authentication failed, check credentials StatusCode: %d", ErrConnection, resp.StatusCode)
	}
	s.setConnected(true)
	return nil
}

// field returns the named top level member of a JSON object.
func field(body []byte, name string) (json.RawMessage, error) {
	envelope := map[string]json.RawMessage{}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: response: %s", model.ErrMalformedPayload, err)
	}
	raw, ok := envelope[name]
	if !ok {
		return nil, fmt.Errorf("%w: response has no %s field", model.ErrMalformedPayload, name)
	}
	return raw, nil
}
