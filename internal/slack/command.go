// Package slack models the slash-command payloads and implements request
// verification and command-text parsing.
package slack

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/shiodat/feelbot/internal/client"
	"github.com/shiodat/feelbot/internal/dateparse"
)

// ErrInvalidCommand means the command text did not match any accepted form.
var ErrInvalidCommand = errors.New("invalid command parameters")

// Command is the form payload Slack posts for a slash command.
type Command struct {
	Token       string `form:"token"`
	Command     string `form:"command"`
	Text        string `form:"text"`
	ResponseURL string `form:"response_url"`
	TriggerID   string `form:"trigger_id"`
	UserID      string `form:"user_id"`
	UserName    string `form:"user_name"`
	TeamID      string `form:"team_id"`
	ChannelID   string `form:"channel_id"`
}

// ParseCommandText parses the find/reserve/relocate argument forms:
//
//	studio date time
//	studio date time auto
//	studio date time auto sleep
//
// "auto" switches on polling; sleep is the base interval in seconds.
func ParseCommandText(text string) (studio string, schedule time.Time, polling bool, sleepSeconds int, err error) {
	fields := strings.Fields(text)
	sleepSeconds = client.DefaultSleepSeconds

	switch len(fields) {
	case 3:
	case 4:
		polling = fields[3] == "auto"
	case 5:
		polling = fields[3] == "auto"
		sleepSeconds, err = strconv.Atoi(fields[4])
		if err != nil {
			return "", time.Time{}, false, 0, ErrInvalidCommand
		}
	default:
		return "", time.Time{}, false, 0, ErrInvalidCommand
	}

	schedule, err = dateparse.Parse(fields[1], fields[2])
	if err != nil {
		return "", time.Time{}, false, 0, err
	}
	return fields[0], schedule, polling, sleepSeconds, nil
}

// ParseScrapeText parses the scrape argument form:
//
//	date studio[,studio...]
func ParseScrapeText(text string) (time.Time, []string, error) {
	fields := strings.Fields(text)
	if len(fields) != 2 {
		return time.Time{}, nil, ErrInvalidCommand
	}
	startDate, err := dateparse.Parse(fields[0], "")
	if err != nil {
		return time.Time{}, nil, err
	}

	var studios []string
	for _, s := range strings.Split(fields[1], ",") {
		if s = strings.TrimSpace(s); s != "" {
			studios = append(studios, s)
		}
	}
	if len(studios) == 0 {
		return time.Time{}, nil, ErrInvalidCommand
	}
	return startDate, studios, nil
}
