package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/shiodat/feelbot/internal/client"
	"github.com/shiodat/feelbot/internal/config"
	"github.com/shiodat/feelbot/internal/dateparse"
	"github.com/shiodat/feelbot/internal/models"
)

var (
	op       string
	studio   string
	date     string
	clock    string
	studios  string
	start    string
	polling  bool
	sleepSec int
	headless bool
)

func init() {
	flag.StringVar(&op, "op", "find", "operation: find, reserve, relocate or scrape")
	flag.StringVar(&studio, "studio", "", "studio name, e.g. Shibuya")
	flag.StringVar(&date, "date", "", "lesson date, e.g. 3/21 or 2024/3/21")
	flag.StringVar(&clock, "time", "", "lesson start time, e.g. 18:30")
	flag.StringVar(&studios, "studios", "", "comma-separated studios (scrape)")
	flag.StringVar(&start, "start", "", "scrape start date")
	flag.BoolVar(&polling, "polling", false, "keep retrying until a terminal status")
	flag.IntVar(&sleepSec, "sleep", client.DefaultSleepSeconds, "base polling interval in seconds")
	flag.BoolVar(&headless, "headless", true, "run the browser headless")
}

func main() {
	flag.Parse()

	config.LoadEnv()
	creds, err := config.LoadCredentials()
	if err != nil {
		log.Fatalf("load credentials: %v", err)
	}

	cl, err := client.New(client.Config{
		Username: creds.Username,
		Password: creds.Password,
		Headless: headless,
	})
	if err != nil {
		log.Fatalf("start session: %v", err)
	}
	defer cl.Close()

	switch op {
	case "find":
		runFind(cl)
	case "reserve":
		runReserve(cl, false)
	case "relocate":
		runReserve(cl, true)
	case "scrape":
		runScrape(cl)
	default:
		log.Fatalf("unknown operation: %s", op)
	}
}

func runFind(cl *client.Client) {
	schedule, err := dateparse.Parse(date, clock)
	if err != nil {
		log.Fatalf("parse schedule: %v", err)
	}
	lesson, err := cl.FindLesson(studio, schedule, polling, sleepSec)
	if err != nil {
		log.Fatalf("find lesson: %v", err)
	}
	fmt.Println(lesson.Text("lesson information\n", ""))
}

func runReserve(cl *client.Client, relocate bool) {
	schedule, err := dateparse.Parse(date, clock)
	if err != nil {
		log.Fatalf("parse schedule: %v", err)
	}
	success, lesson, err := cl.ReserveLesson(studio, schedule, relocate, polling, sleepSec)
	if err != nil {
		log.Fatalf("reserve lesson: %v", err)
	}
	prefix := "reservation failed\n"
	if success {
		prefix = "reservation success!\n"
	}
	fmt.Println(lesson.Text(prefix, ""))
}

func runScrape(cl *client.Client) {
	startDate, err := dateparse.Parse(start, "")
	if err != nil {
		log.Fatalf("parse start date: %v", err)
	}
	var list []string
	for _, s := range strings.Split(studios, ",") {
		if s = strings.TrimSpace(s); s != "" {
			list = append(list, s)
		}
	}
	if len(list) == 0 {
		log.Fatal("-studios is required for scrape")
	}
	lessons, err := cl.ScrapeLessons(list, startDate)
	if err != nil {
		log.Fatalf("scrape lessons: %v", err)
	}
	content, err := models.LessonsToCSV(lessons)
	if err != nil {
		log.Fatalf("render csv: %v", err)
	}
	os.Stdout.WriteString(content)
}
