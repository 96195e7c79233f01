// Package browser owns the automated browser session against the
// reservation portal. One Client maps to one browser context; callers that
// need an isolated session create their own Client.
package browser

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
)

const (
	baseURL    = "https://www.feelcycle.com/feelcycle_reserve"
	mypageURL  = baseURL + "/mypage.php"
	reserveURL = baseURL + "/reserve.php"

	userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

var (
	ErrNotLoggedIn    = errors.New("not logged in")
	ErrLoginFailed    = errors.New("login failed")
	ErrStudioNotFound = errors.New("studio not found")
)

// Client drives one browser session. It is not safe for concurrent use;
// each unit of work owns its Client end-to-end.
type Client struct {
	pw       *playwright.Playwright
	browser  playwright.Browser
	context  playwright.BrowserContext
	page     playwright.Page
	timeout  time.Duration
	headless bool

	// acceptDialogs is consulted by the single dialog handler installed
	// per page; registering one handler per claim attempt would stack.
	acceptDialogs bool
}

// New creates a client. Browsers must already be installed:
// go run github.com/playwright-community/playwright-go/cmd/playwright@latest install chromium
func New(pageTimeout time.Duration) (*Client, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}
	return &Client{pw: pw, timeout: pageTimeout}, nil
}

// Start launches the browser and opens the working page.
func (c *Client) Start(headless bool) error {
	browser, err := c.pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(headless),
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--disable-dev-shm-usage",
			"--no-sandbox",
			"--disable-setuid-sandbox",
		},
	})
	if err != nil {
		return fmt.Errorf("launch browser: %w", err)
	}
	c.browser = browser
	c.headless = headless
	return c.openContext()
}

func (c *Client) openContext() error {
	context, err := c.browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent: playwright.String(userAgent),
		Viewport: &playwright.Size{
			Width:  1280,
			Height: 720,
		},
	})
	if err != nil {
		return fmt.Errorf("create browser context: %w", err)
	}

	page, err := context.NewPage()
	if err != nil {
		context.Close()
		return fmt.Errorf("create page: %w", err)
	}
	page.SetDefaultTimeout(float64(c.timeout.Milliseconds()))
	page.SetDefaultNavigationTimeout(float64(c.timeout.Milliseconds()))
	page.OnDialog(c.handleDialog)

	c.context = context
	c.page = page
	return nil
}

// AcceptDialogs switches the page's native dialog handling between accept
// and dismiss. Callers that enable it must switch it back when done.
func (c *Client) AcceptDialogs(accept bool) {
	c.acceptDialogs = accept
}

func (c *Client) handleDialog(d playwright.Dialog) {
	if c.acceptDialogs {
		if err := d.Accept(); err != nil {
			log.Printf("accept dialog: %v", err)
		}
		return
	}
	if err := d.Dismiss(); err != nil {
		log.Printf("dismiss dialog: %v", err)
	}
}

// Restart discards the current context and page and builds fresh ones.
// Used when the session is suspected degraded; the login state is lost.
func (c *Client) Restart() error {
	log.Println("restarting browser session")
	if c.page != nil {
		c.page.Close()
		c.page = nil
	}
	if c.context != nil {
		c.context.Close()
		c.context = nil
	}
	return c.openContext()
}

// Close releases the browser and the playwright runtime. Safe to call on a
// partially started client.
func (c *Client) Close() error {
	if c.page != nil {
		c.page.Close()
	}
	if c.context != nil {
		c.context.Close()
	}
	if c.browser != nil {
		c.browser.Close()
	}
	if c.pw != nil {
		c.pw.Stop()
	}
	return nil
}

// Page exposes the working page for components that act on live elements.
func (c *Client) Page() playwright.Page {
	return c.page
}

// IsLoggedIn navigates to the account page and probes for the marker only
// rendered for authenticated sessions. It always navigates; the page
// position changes as a side effect.
func (c *Client) IsLoggedIn() (bool, error) {
	if _, err := c.page.Goto(mypageURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	}); err != nil {
		return false, fmt.Errorf("navigate to mypage: %w", err)
	}
	count, err := c.page.Locator(".log_in_id").Count()
	if err != nil {
		return false, fmt.Errorf("probe login marker: %w", err)
	}
	return count > 0, nil
}

// Login submits credentials unless the session is already authenticated.
// Returns ErrLoginFailed when the portal rejects the credentials.
func (c *Client) Login(username, password string, timeout time.Duration) error {
	ok, err := c.IsLoggedIn()
	if err != nil {
		return err
	}
	if ok {
		return nil
	}

	// The portal renders the login form in place of the account page.
	idField := c.page.Locator("input[name='login_id']")
	if err := idField.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	}); err != nil {
		return fmt.Errorf("wait for login form: %w", err)
	}
	if err := idField.Fill(username); err != nil {
		return fmt.Errorf("fill login id: %w", err)
	}
	if err := c.page.Locator("input[name='login_pass']").Fill(password); err != nil {
		return fmt.Errorf("fill login password: %w", err)
	}
	if err := c.page.Locator(".submit_b input").Click(); err != nil {
		return fmt.Errorf("submit login form: %w", err)
	}

	ok, err = c.IsLoggedIn()
	if err != nil {
		return err
	}
	if !ok {
		return ErrLoginFailed
	}
	log.Printf("logged in as %s", username)
	return nil
}

// GotoReservePage navigates to the reservation calendar.
func (c *Client) GotoReservePage() error {
	if _, err := c.page.Goto(reserveURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	}); err != nil {
		return fmt.Errorf("navigate to reserve page: %w", err)
	}
	return nil
}

// NextWeek advances the calendar one page forward.
func (c *Client) NextWeek() error {
	if err := c.page.Locator("#week a").Nth(1).Click(); err != nil {
		return fmt.Errorf("turn to next week: %w", err)
	}
	return nil
}

// PrevWeek turns the calendar one page toward the past.
func (c *Client) PrevWeek() error {
	if err := c.page.Locator("#week a").Nth(0).Click(); err != nil {
		return fmt.Errorf("turn to previous week: %w", err)
	}
	return nil
}

// Content returns the current page's HTML.
func (c *Client) Content() (string, error) {
	return c.page.Content()
}

// IsTimeout reports whether err is a navigation or wait timeout. Those are
// infrastructure noise, not an answer about lesson state.
func IsTimeout(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "timeout")
}
