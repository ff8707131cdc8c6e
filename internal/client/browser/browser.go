// Package browser defines the minimal browser-automation surface used by the
// end-to-end scenarios, a condition-wait helper, and a Chrome implementation
// backed by chromedp.
package browser

import (
	"errors"
	"time"
)

var (
	// ErrElementNotFound reports that no element matched a locator.
	ErrElementNotFound = errors.New("element not found")
	// ErrWaitTimeout reports that a wait condition did not hold in time.
	ErrWaitTimeout = errors.New("wait timed out")
)

// By selects how a Locator's value is interpreted.
type By int

const (
	// ByID matches the element id attribute.
	ByID By = iota
	// ByCSS matches a CSS selector.
	ByCSS
	// ByTag matches a tag name.
	ByTag
)

// Locator identifies an element on a page.
type Locator struct {
	By    By
	Value string
}

// ID returns a locator matching id="value".
func ID(value string) Locator { return Locator{By: ByID, Value: value} }

// CSS returns a locator matching a CSS selector.
func CSS(selector string) Locator { return Locator{By: ByCSS, Value: selector} }

// Tag returns a locator matching the first element with the tag name.
func Tag(name string) Locator { return Locator{By: ByTag, Value: name} }

// Query renders the locator as a CSS selector.
func (l Locator) Query() string {
	if l.By == ByID {
		return "#" + l.Value
	}
	return l.Value
}

func (l Locator) String() string {
	return l.Query()
}

// Browser is a single browser tab driven synchronously.
//
// Every method blocks until the action completes. Only WaitPresent waits for
// an element to appear; the other element methods fail with
// ErrElementNotFound if nothing matches at call time.
type Browser interface {
	Navigate(url string) error
	// WaitPresent blocks until an element matches loc or timeout elapses
	// (ErrWaitTimeout).
	WaitPresent(loc Locator, timeout time.Duration) error
	// Fill clears the matched input and types value into it.
	Fill(loc Locator, value string) error
	Click(loc Locator) error
	// Text returns the visible text of the matched element.
	Text(loc Locator) (string, error)
	CurrentURL() (string, error)
	Title() (string, error)
	// Screenshot captures the viewport as PNG.
	Screenshot() ([]byte, error)
	Close() error
}
