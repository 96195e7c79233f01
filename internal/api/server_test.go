package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shiodat/feelbot/internal/client"
	"github.com/shiodat/feelbot/internal/config"
	"github.com/shiodat/feelbot/internal/notifier"
	"github.com/shiodat/feelbot/internal/slack"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	creds := &config.Credentials{
		Username:      "user@example.com",
		Password:      "hunter2",
		SigningSecret: "test-signing-secret",
	}
	s := New(config.Default(), creds, notifier.NewSlackNotifier(creds))
	// No browser in unit tests; jobs fail to start and only log.
	s.newClient = func() (*client.Client, error) {
		return nil, errors.New("no browser in tests")
	}
	return s
}

func signedSlackRequest(t *testing.T, s *Server, path string, form url.Values) *http.Request {
	t.Helper()
	body := form.Encode()
	ts := fmt.Sprint(time.Now().Unix())

	req, err := http.NewRequest(http.MethodPost, path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Slack-Request-Timestamp", ts)
	req.Header.Set("X-Slack-Signature", slack.Sign(s.creds.SigningSecret, ts, []byte(body)))
	return req
}

func TestHealth(t *testing.T) {
	s := testServer(t)
	resp, err := s.App().Test(httptestGet("/health"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func httptestGet(path string) *http.Request {
	req, _ := http.NewRequest(http.MethodGet, path, nil)
	return req
}

func TestFind_Accepted(t *testing.T) {
	s := testServer(t)
	resp, err := s.App().Test(httptestGet("/find?studio=Shibuya&date=2024/3/21&time=18:30"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
}

func TestFind_BadSchedule(t *testing.T) {
	s := testServer(t)
	resp, err := s.App().Test(httptestGet("/find?studio=Shibuya&date=21&time=18:30"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestFind_MissingStudio(t *testing.T) {
	s := testServer(t)
	resp, err := s.App().Test(httptestGet("/find?date=2024/3/21&time=18:30"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSlackFind_RejectsUnsignedRequest(t *testing.T) {
	s := testServer(t)

	req, err := http.NewRequest(http.MethodPost, "/slack/find",
		strings.NewReader("command=%2Ffind&text=Shibuya+2024%2F3%2F21+18%3A30"))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.App().Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestSlackFind_RejectsStaleTimestamp(t *testing.T) {
	s := testServer(t)

	body := "command=%2Ffind&text=Shibuya+2024%2F3%2F21+18%3A30"
	ts := fmt.Sprint(time.Now().Add(-10 * time.Minute).Unix())
	req, err := http.NewRequest(http.MethodPost, "/slack/find", strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Slack-Request-Timestamp", ts)
	req.Header.Set("X-Slack-Signature", slack.Sign(s.creds.SigningSecret, ts, []byte(body)))

	resp, err := s.App().Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestSlackFind_AcknowledgesSignedCommand(t *testing.T) {
	s := testServer(t)

	req := signedSlackRequest(t, s, "/slack/find", url.Values{
		"command": {"/find"},
		"text":    {"Shibuya 2024/3/21 18:30"},
		"user_id": {"U123"},
	})
	resp, err := s.App().Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ack, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "finding...", string(ack))
}

func TestSlackFind_PollingAck(t *testing.T) {
	s := testServer(t)

	req := signedSlackRequest(t, s, "/slack/find", url.Values{
		"command": {"/find"},
		"text":    {"Shibuya 2024/3/21 18:30 auto"},
		"user_id": {"U123"},
	})
	resp, err := s.App().Test(req)
	require.NoError(t, err)

	ack, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "notify when the lesson can be reserved, please wait", string(ack))
}

func TestSlackReserve_WrongCommandRejected(t *testing.T) {
	s := testServer(t)

	req := signedSlackRequest(t, s, "/slack/reserve", url.Values{
		"command": {"/find"},
		"text":    {"Shibuya 2024/3/21 18:30"},
	})
	resp, err := s.App().Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSlackScrape_Acknowledged(t *testing.T) {
	s := testServer(t)

	req := signedSlackRequest(t, s, "/slack/scrape", url.Values{
		"command": {"/scrape"},
		"text":    {"2024/1/1 Shibuya,Ginza"},
		"user_id": {"U123"},
	})
	resp, err := s.App().Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ack, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "scraping lessons, please wait", string(ack))
}
