// Package api exposes the reservation client over HTTP: a JSON surface and
// the Slack slash-command endpoints. Automation work never runs on the
// request path; every job gets its own goroutine and its own browser
// session, and results come back through the notifier.
package api

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/shiodat/feelbot/internal/client"
	"github.com/shiodat/feelbot/internal/config"
	"github.com/shiodat/feelbot/internal/notifier"
	"github.com/shiodat/feelbot/internal/slack"
)

// Server wires the HTTP routes to the reservation client.
type Server struct {
	app      *fiber.App
	cfg      *config.Config
	creds    *config.Credentials
	notifier *notifier.SlackNotifier

	// newClient builds the per-job session; swappable in tests.
	newClient func() (*client.Client, error)
}

// New builds the server and its routes.
func New(cfg *config.Config, creds *config.Credentials, n *notifier.SlackNotifier) *Server {
	s := &Server{
		cfg:      cfg,
		creds:    creds,
		notifier: n,
	}
	s.newClient = func() (*client.Client, error) {
		return client.New(client.Config{
			Username:     creds.Username,
			Password:     creds.Password,
			Headless:     cfg.Bot.Headless,
			PageTimeout:  cfg.Bot.PageTimeout(),
			LoginTimeout: cfg.Bot.LoginTimeout(),
		})
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	app.Use(requestLogger())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	app.Get("/find", s.handleFind)
	app.Post("/reserve", s.handleReserve)
	app.Post("/relocate", s.handleRelocate)
	app.Post("/scrape", s.handleScrape)

	sg := app.Group("/slack", s.verifySlack)
	sg.Post("/find", s.handleSlackFind)
	sg.Post("/reserve", s.handleSlackReserve)
	sg.Post("/relocate", s.handleSlackRelocate)
	sg.Post("/scrape", s.handleSlackScrape)

	s.app = app
	return s
}

// Listen serves until the listener is closed.
func (s *Server) Listen() error {
	return s.app.Listen(s.cfg.Server.Addr)
}

// Shutdown drains in-flight requests. Background jobs are fire-and-forget
// and are not waited on.
func (s *Server) Shutdown() error {
	return s.app.ShutdownWithTimeout(5 * time.Second)
}

// App exposes the fiber app for in-process testing.
func (s *Server) App() *fiber.App {
	return s.app
}

// requestLogger tags each request with an ID and logs its timing.
func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("X-Request-ID", id)
		start := time.Now()
		err := c.Next()
		log.Printf("[req] id=%s %s %s status=%d dur=%s",
			id, c.Method(), c.OriginalURL(), c.Response().StatusCode(), time.Since(start))
		return err
	}
}

// verifySlack rejects requests that do not carry a valid Slack signature.
func (s *Server) verifySlack(c *fiber.Ctx) error {
	if s.creds.SigningSecret == "" {
		return fiber.ErrForbidden
	}
	ts := c.Get("X-Slack-Request-Timestamp")
	if err := slack.VerifyTimestamp(ts, time.Now()); err != nil {
		return fiber.ErrForbidden
	}
	if err := slack.VerifySignature(s.creds.SigningSecret, ts, c.Body(), c.Get("X-Slack-Signature")); err != nil {
		return fiber.ErrForbidden
	}
	return c.Next()
}

// dispatch runs work on its own goroutine owning its own browser session
// end-to-end. The caller's HTTP response does not wait for the outcome.
func (s *Server) dispatch(jobID string, work func(*client.Client)) {
	go func() {
		cl, err := s.newClient()
		if err != nil {
			log.Printf("job %s: start session: %v", jobID, err)
			return
		}
		defer cl.Close()
		work(cl)
	}()
}
