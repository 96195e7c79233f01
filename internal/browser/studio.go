package browser

import (
	"fmt"
	"strings"

	"github.com/playwright-community/playwright-go"
)

// SelectStudio picks the studio in the reservation page's selector. The
// option labels look like "Some Area（Shibuya）"; the token inside the
// parentheses, with all spacing removed, is the studio name users pass in.
func (c *Client) SelectStudio(name string) error {
	ok, err := c.IsLoggedIn()
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotLoggedIn
	}
	if err := c.GotoReservePage(); err != nil {
		return err
	}

	want := NormalizeStudioName(name)
	selector := c.page.Locator("select[name='tenpo']")
	options, err := selector.Locator("option").All()
	if err != nil {
		return fmt.Errorf("list studio options: %w", err)
	}
	for _, opt := range options {
		text, err := opt.TextContent()
		if err != nil {
			continue
		}
		label, ok := ExtractStudioName(text)
		if !ok || label != want {
			continue
		}
		value, err := opt.GetAttribute("value")
		if err != nil {
			return fmt.Errorf("read studio option value: %w", err)
		}
		if _, err := selector.SelectOption(playwright.SelectOptionValues{
			Values: &[]string{value},
		}); err != nil {
			return fmt.Errorf("select studio %s: %w", name, err)
		}
		return nil
	}
	return fmt.Errorf("%w: %s", ErrStudioNotFound, name)
}

// ExtractStudioName pulls the studio name out of an option label such as
// "Some Area（Shibuya）". Labels without the parenthesized marker carry no
// studio and report ok=false.
func ExtractStudioName(label string) (string, bool) {
	open := strings.IndexRune(label, '（')
	if open < 0 || !strings.ContainsRune(label, '）') {
		return "", false
	}
	inner := label[open+len("（"):]
	inner = strings.ReplaceAll(inner, "）", "")
	return NormalizeStudioName(inner), true
}

// NormalizeStudioName removes half-width and full-width spaces so that
// sloppy spacing on either side of the comparison cannot break a match.
func NormalizeStudioName(name string) string {
	name = strings.ReplaceAll(name, " ", "")
	name = strings.ReplaceAll(name, "　", "")
	return name
}
