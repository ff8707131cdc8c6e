package scenario

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atinyakov/AuthPortal/internal/client/browser"
)

var (
	// ErrUnknownField is returned by Page.Fill for a field the page lacks.
	ErrUnknownField = errors.New("unknown field")
	// ErrUnknownAction is returned by Page.Do for an action the page lacks.
	ErrUnknownAction = errors.New("unknown action")
)

// Field and action names understood by the pages.
const (
	FieldUsername  = "username"
	FieldPassword  = "password"
	FieldEmail     = "email"
	FieldPassword1 = "password1"
	FieldPassword2 = "password2"

	ActionSubmit = "submit"
	ActionLogout = "logout"
)

// Page is a page object: named inputs and actions over one browser page.
type Page interface {
	Name() string
	Fill(field, value string) error
	Do(action string) error
}

var (
	submitButton = browser.CSS("button[type='submit']")
	errorAlert   = browser.CSS("div.alert")
)

type basePage struct {
	name    string
	b       browser.Browser
	timeout time.Duration
	fields  map[string]browser.Locator
	actions map[string]browser.Locator
}

func (p *basePage) Name() string { return p.name }

func (p *basePage) Fill(field, value string) error {
	loc, ok := p.fields[field]
	if !ok {
		return fmt.Errorf("%s page: %w %q", p.name, ErrUnknownField, field)
	}
	return p.b.Fill(loc, value)
}

func (p *basePage) Do(action string) error {
	loc, ok := p.actions[action]
	if !ok {
		return fmt.Errorf("%s page: %w %q", p.name, ErrUnknownAction, action)
	}
	return p.b.Click(loc)
}

// waitAndFill waits for the field to appear before filling it. Used for the
// first input of a form, when the page may still be loading.
func (p *basePage) waitAndFill(field, value string) error {
	loc, ok := p.fields[field]
	if !ok {
		return fmt.Errorf("%s page: %w %q", p.name, ErrUnknownField, field)
	}
	if err := p.b.WaitPresent(loc, p.timeout); err != nil {
		return err
	}
	return p.b.Fill(loc, value)
}

// HasError reports whether the page shows a form error message.
func (p *basePage) HasError() (bool, error) {
	_, err := p.b.Text(errorAlert)
	if errors.Is(err, browser.ErrElementNotFound) {
		return false, nil
	}
	return err == nil, err
}

// LoginPage is the login form.
type LoginPage struct {
	basePage
	studentID browser.Locator
}

// NewLoginPage binds the login form to b. timeout bounds the wait for the
// form to appear.
func NewLoginPage(b browser.Browser, timeout time.Duration) *LoginPage {
	return &LoginPage{
		basePage: basePage{
			name:    "login",
			b:       b,
			timeout: timeout,
			fields: map[string]browser.Locator{
				FieldUsername: browser.ID("username"),
				FieldPassword: browser.ID("password"),
			},
			actions: map[string]browser.Locator{
				ActionSubmit: submitButton,
			},
		},
		studentID: browser.ID("student-id"),
	}
}

func (p *LoginPage) EnterUsername(username string) error {
	return p.waitAndFill(FieldUsername, username)
}

func (p *LoginPage) EnterPassword(password string) error {
	return p.Fill(FieldPassword, password)
}

func (p *LoginPage) ClickLogin() error {
	return p.Do(ActionSubmit)
}

// LoginUser fills both credentials and submits the form.
func (p *LoginPage) LoginUser(username, password string) error {
	if err := p.EnterUsername(username); err != nil {
		return err
	}
	if err := p.EnterPassword(password); err != nil {
		return err
	}
	return p.ClickLogin()
}

// StudentID returns the text of the #student-id header. It fails with
// browser.ErrElementNotFound when the header is absent.
func (p *LoginPage) StudentID() (string, error) {
	return p.b.Text(p.studentID)
}

// HomePage is the authenticated landing page.
type HomePage struct {
	basePage
	heading browser.Locator
}

func NewHomePage(b browser.Browser, timeout time.Duration) *HomePage {
	return &HomePage{
		basePage: basePage{
			name:    "home",
			b:       b,
			timeout: timeout,
			fields:  map[string]browser.Locator{},
			actions: map[string]browser.Locator{
				ActionLogout: browser.CSS("a.btn.btn-primary"),
			},
		},
		heading: browser.Tag("h1"),
	}
}

// IsDisplayed waits for the page heading and reports whether it reads as
// the home page. A missing heading is not an error.
func (p *HomePage) IsDisplayed() (bool, error) {
	err := p.b.WaitPresent(p.heading, p.timeout)
	if errors.Is(err, browser.ErrWaitTimeout) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	text, err := p.b.Text(p.heading)
	if errors.Is(err, browser.ErrElementNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return strings.Contains(text, "Home Page"), nil
}

func (p *HomePage) Logout() error {
	return p.Do(ActionLogout)
}

// SignupPage is the registration form.
type SignupPage struct {
	basePage
}

func NewSignupPage(b browser.Browser, timeout time.Duration) *SignupPage {
	return &SignupPage{
		basePage: basePage{
			name:    "signup",
			b:       b,
			timeout: timeout,
			fields: map[string]browser.Locator{
				FieldUsername:  browser.ID("username"),
				FieldEmail:     browser.ID("email"),
				FieldPassword1: browser.ID("password1"),
				FieldPassword2: browser.ID("password2"),
			},
			actions: map[string]browser.Locator{
				ActionSubmit: submitButton,
			},
		},
	}
}

// RegisterUser fills the form with password typed twice and submits it.
func (p *SignupPage) RegisterUser(username, email, password string) error {
	if err := p.waitAndFill(FieldUsername, username); err != nil {
		return err
	}
	for _, f := range []struct{ field, value string }{
		{FieldEmail, email},
		{FieldPassword1, password},
		{FieldPassword2, password},
	} {
		if err := p.Fill(f.field, f.value); err != nil {
			return err
		}
	}
	return p.Do(ActionSubmit)
}
