package api

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/shiodat/feelbot/internal/client"
	"github.com/shiodat/feelbot/internal/dateparse"
	"github.com/shiodat/feelbot/internal/models"
	"github.com/shiodat/feelbot/internal/slack"
)

// lessonRequest is the parsed parameter set shared by find/reserve/relocate.
type lessonRequest struct {
	user     string
	studio   string
	schedule time.Time
	polling  bool
	sleep    int
}

func parseLessonRequest(c *fiber.Ctx) (*lessonRequest, error) {
	studio := c.Query("studio")
	if studio == "" {
		return nil, fmt.Errorf("studio is required")
	}
	schedule, err := dateparse.Parse(c.Query("date"), c.Query("time"))
	if err != nil {
		return nil, err
	}

	req := &lessonRequest{
		user:     c.Query("user"),
		studio:   studio,
		schedule: schedule,
		polling:  c.QueryBool("polling"),
		sleep:    client.DefaultSleepSeconds,
	}
	if v := c.Query("sleep"); v != "" {
		if req.sleep, err = strconv.Atoi(v); err != nil {
			return nil, fmt.Errorf("invalid sleep: %q", v)
		}
	}
	return req, nil
}

func accepted(c *fiber.Ctx, jobID string) error {
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"job_id": jobID,
		"status": "accepted",
	})
}

func (s *Server) handleFind(c *fiber.Ctx) error {
	req, err := parseLessonRequest(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	jobID := uuid.NewString()
	s.dispatch(jobID, func(cl *client.Client) {
		s.runFind(cl, req.user, req.studio, req.schedule, req.polling, req.sleep)
	})
	return accepted(c, jobID)
}

func (s *Server) handleReserve(c *fiber.Ctx) error {
	return s.handleReserveOp(c, false)
}

func (s *Server) handleRelocate(c *fiber.Ctx) error {
	return s.handleReserveOp(c, true)
}

func (s *Server) handleReserveOp(c *fiber.Ctx, relocate bool) error {
	req, err := parseLessonRequest(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	jobID := uuid.NewString()
	s.dispatch(jobID, func(cl *client.Client) {
		s.runReserve(cl, req.user, req.studio, req.schedule, relocate, req.polling, req.sleep)
	})
	return accepted(c, jobID)
}

func (s *Server) handleScrape(c *fiber.Ctx) error {
	startDate, err := dateparse.Parse(c.Query("start"), "")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	studios := splitStudios(c.Query("studios"))
	if len(studios) == 0 {
		studios = s.cfg.Bot.Studios
	}
	if len(studios) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "studios is required")
	}
	user := c.Query("user")
	jobID := uuid.NewString()
	s.dispatch(jobID, func(cl *client.Client) {
		s.runScrape(cl, user, studios, startDate)
	})
	return accepted(c, jobID)
}

func (s *Server) handleSlackFind(c *fiber.Ctx) error {
	cmd, err := parseSlackCommand(c, "/find")
	if err != nil {
		return err
	}
	studio, schedule, polling, sleep, err := slack.ParseCommandText(cmd.Text)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	s.dispatch(cmd.TriggerID, func(cl *client.Client) {
		s.runFind(cl, cmd.UserID, studio, schedule, polling, sleep)
	})
	if polling {
		return c.SendString("notify when the lesson can be reserved, please wait")
	}
	return c.SendString("finding...")
}

func (s *Server) handleSlackReserve(c *fiber.Ctx) error {
	return s.handleSlackReserveOp(c, "/reserve", false,
		"reserve the lesson when it becomes vacant, please wait", "reserving...")
}

func (s *Server) handleSlackRelocate(c *fiber.Ctx) error {
	return s.handleSlackReserveOp(c, "/relocate", true,
		"relocate the lesson when it becomes vacant, please wait", "relocating...")
}

func (s *Server) handleSlackReserveOp(c *fiber.Ctx, command string, relocate bool, pollingAck, ack string) error {
	cmd, err := parseSlackCommand(c, command)
	if err != nil {
		return err
	}
	studio, schedule, polling, sleep, err := slack.ParseCommandText(cmd.Text)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	s.dispatch(cmd.TriggerID, func(cl *client.Client) {
		s.runReserve(cl, cmd.UserID, studio, schedule, relocate, polling, sleep)
	})
	if polling {
		return c.SendString(pollingAck)
	}
	return c.SendString(ack)
}

func (s *Server) handleSlackScrape(c *fiber.Ctx) error {
	cmd, err := parseSlackCommand(c, "/scrape")
	if err != nil {
		return err
	}
	startDate, studios, err := slack.ParseScrapeText(cmd.Text)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	s.dispatch(cmd.TriggerID, func(cl *client.Client) {
		s.runScrape(cl, cmd.UserID, studios, startDate)
	})
	return c.SendString("scraping lessons, please wait")
}

func parseSlackCommand(c *fiber.Ctx, command string) (*slack.Command, error) {
	var cmd slack.Command
	if err := c.BodyParser(&cmd); err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "malformed command payload")
	}
	if cmd.Command != command {
		return nil, fiber.NewError(fiber.StatusBadRequest, "endpoint does not match")
	}
	return &cmd, nil
}

// runFind executes a find job and reports through the notifier.
func (s *Server) runFind(cl *client.Client, user, studio string, schedule time.Time, polling bool, sleep int) {
	lesson, err := cl.FindLesson(studio, schedule, polling, sleep)
	if err != nil {
		s.notifier.Notify(user, fmt.Sprintf("something wrong: %v", err))
		return
	}
	s.notifier.Notify(user, lesson.Text("lesson information\n", ""))
}

// runReserve executes a reserve/relocate job and reports through the
// notifier.
func (s *Server) runReserve(cl *client.Client, user, studio string, schedule time.Time, relocate, polling bool, sleep int) {
	success, lesson, err := cl.ReserveLesson(studio, schedule, relocate, polling, sleep)
	if err != nil {
		s.notifier.Notify(user, fmt.Sprintf("something wrong: %v", err))
		return
	}
	prefix := "reservation failed\n"
	if success {
		prefix = "reservation success!\n"
	}
	s.notifier.Notify(user, lesson.Text(prefix, ""))
}

// runScrape executes a scrape job and uploads the CSV export.
func (s *Server) runScrape(cl *client.Client, user string, studios []string, startDate time.Time) {
	lessons, err := cl.ScrapeLessons(studios, startDate)
	if err != nil {
		s.notifier.Notify(user, fmt.Sprintf("something wrong: %v", err))
		return
	}
	content, err := models.LessonsToCSV(lessons)
	if err != nil {
		s.notifier.Notify(user, fmt.Sprintf("something wrong: %v", err))
		return
	}
	title := fmt.Sprintf("%s_lessons_from_%s.csv", user, startDate.Format("2006-01-02"))
	if err := s.notifier.UploadFile(user, title, content); err != nil {
		s.notifier.Notify(user, fmt.Sprintf("something wrong: %v", err))
	}
}

func splitStudios(list string) []string {
	var studios []string
	for _, s := range strings.Split(list, ",") {
		if s = strings.TrimSpace(s); s != "" {
			studios = append(studios, s)
		}
	}
	return studios
}
