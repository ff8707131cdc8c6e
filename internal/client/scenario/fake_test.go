package scenario

import (
	"fmt"
	"strings"
	"time"

	"github.com/atinyakov/AuthPortal/internal/client/browser"
)

// fakePage is the DOM of one fake page: selector query to element text.
type fakePage struct {
	title    string
	elements map[string]string
}

// fakeBrowser serves canned pages by URL. Clicking a selector runs the
// matching handler, which usually navigates somewhere else.
type fakeBrowser struct {
	pages   map[string]fakePage
	onClick map[string]func(f *fakeBrowser)

	url     string
	current fakePage
	filled  map[string]string
	clicks  []string
	shots   int
	closed  bool

	navigateErr error
	urlErr      error
}

var _ browser.Browser = (*fakeBrowser)(nil)

func newFakeBrowser() *fakeBrowser {
	return &fakeBrowser{
		pages:   map[string]fakePage{},
		onClick: map[string]func(*fakeBrowser){},
		filled:  map[string]string{},
	}
}

func (f *fakeBrowser) Navigate(url string) error {
	if f.navigateErr != nil {
		return f.navigateErr
	}
	f.url = url
	f.current = f.pages[url]
	return nil
}

func (f *fakeBrowser) has(loc browser.Locator) bool {
	_, ok := f.current.elements[loc.Query()]
	return ok
}

func (f *fakeBrowser) WaitPresent(loc browser.Locator, timeout time.Duration) error {
	if f.has(loc) {
		return nil
	}
	return fmt.Errorf("wait for %s: %w", loc, browser.ErrWaitTimeout)
}

func (f *fakeBrowser) Fill(loc browser.Locator, value string) error {
	if !f.has(loc) {
		return fmt.Errorf("%w: %s", browser.ErrElementNotFound, loc)
	}
	f.filled[loc.Query()] = value
	return nil
}

func (f *fakeBrowser) Click(loc browser.Locator) error {
	if !f.has(loc) {
		return fmt.Errorf("%w: %s", browser.ErrElementNotFound, loc)
	}
	f.clicks = append(f.clicks, loc.Query())
	if h, ok := f.onClick[f.url+" "+loc.Query()]; ok {
		h(f)
	}
	return nil
}

func (f *fakeBrowser) Text(loc browser.Locator) (string, error) {
	text, ok := f.current.elements[loc.Query()]
	if !ok {
		return "", fmt.Errorf("%w: %s", browser.ErrElementNotFound, loc)
	}
	return text, nil
}

func (f *fakeBrowser) CurrentURL() (string, error) {
	return f.url, f.urlErr
}

func (f *fakeBrowser) Title() (string, error) {
	return f.current.title, nil
}

func (f *fakeBrowser) Screenshot() ([]byte, error) {
	f.shots++
	return []byte("\x89PNG fake"), nil
}

func (f *fakeBrowser) Close() error {
	f.closed = true
	return nil
}

const baseURL = "http://portal.test"

var (
	loginForm = fakePage{
		title: "Login",
		elements: map[string]string{
			"h1":                    "Login",
			"#student-id":           "001234567",
			"#username":             "",
			"#password":             "",
			"button[type='submit']": "Login",
		},
	}
	loginFormWithError = fakePage{
		title: "Login",
		elements: map[string]string{
			"h1":                    "Login",
			"#student-id":           "001234567",
			"#username":             "",
			"#password":             "",
			"button[type='submit']": "Login",
			"div.alert":             "Username or Password is incorrect!!!",
		},
	}
	homePage = fakePage{
		title: "Home",
		elements: map[string]string{
			"h1":                "Welcome To Home Page",
			"a.btn.btn-primary": "Logout",
		},
	}
	signupForm = fakePage{
		title: "Sign Up",
		elements: map[string]string{
			"h1":                    "Sign Up",
			"#username":             "",
			"#email":                "",
			"#password1":            "",
			"#password2":            "",
			"button[type='submit']": "Sign Up",
		},
	}
)

// portal wires the fake browser to behave like the real site for a single
// known account.
func portal(username, password string) *fakeBrowser {
	f := newFakeBrowser()
	f.pages[baseURL+"/"] = signupForm
	f.pages[baseURL+"/login/"] = loginForm
	f.pages[baseURL+"/home/"] = homePage

	f.onClick[baseURL+"/login/ button[type='submit']"] = func(f *fakeBrowser) {
		if f.filled["#username"] == username && f.filled["#password"] == password {
			_ = f.Navigate(baseURL + "/home/")
			return
		}
		f.current = loginFormWithError
	}
	f.onClick[baseURL+"/ button[type='submit']"] = func(f *fakeBrowser) {
		if f.filled["#password1"] != f.filled["#password2"] || strings.TrimSpace(f.filled["#username"]) == "" {
			page := signupForm
			page.elements = map[string]string{"div.alert": "error"}
			for k, v := range signupForm.elements {
				page.elements[k] = v
			}
			f.current = page
			return
		}
		_ = f.Navigate(baseURL + "/login/")
	}
	return f
}
