package scenario

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	"github.com/atinyakov/AuthPortal/internal/client/browser"
	"go.uber.org/zap"
)

const rule = "============================================================"

// Report is the result of one Runner.Run.
type Report struct {
	Title         string
	Status        Status
	StudentID     string
	UsernameLabel string
	Username      string
	Started       time.Time
	Finished      time.Time
	// Screenshot is the path of the PNG saved at the end of the run, if any.
	Screenshot string
	// Err is the failure behind StatusError.
	Err error
	// Stack is the goroutine stack of a panic behind StatusError.
	Stack []byte
}

// panicError is a recovered scenario panic with the stack it unwound.
type panicError struct {
	value any
	stack []byte
}

func (e *panicError) Error() string {
	return fmt.Sprintf("panic: %v", e.value)
}

// WriteSummary prints the TEST SUMMARY block.
func (r *Report) WriteSummary(w io.Writer) {
	fmt.Fprintf(w, "\n%s\nTEST SUMMARY\n%s\n", rule, rule)
	fmt.Fprintf(w, "Test Status: %s\n", r.Status)
	fmt.Fprintf(w, "Student ID: %s\n", r.StudentID)
	fmt.Fprintf(w, "Current Date: %s\n", r.Finished.Format(time.DateOnly))
	fmt.Fprintf(w, "Current Time: %s\n", r.Finished.Format(time.TimeOnly))
	fmt.Fprintf(w, "Test End Time: %s\n", r.Finished.Format(time.DateTime))
	fmt.Fprintf(w, "%s: %s\n", r.UsernameLabel, r.Username)
	fmt.Fprintf(w, "%s\n[INFO] Script execution completed!\n%s\n", rule, rule)
}

// Runner executes scenarios against one browser and owns its lifetime:
// the browser is closed when Run returns.
type Runner struct {
	Browser browser.Browser
	Config  Config
	Log     *zap.Logger

	// Pause, when set, is called after the linger delay and before the
	// browser is closed.
	Pause func()

	now   func() time.Time
	sleep func(time.Duration)
}

func NewRunner(b browser.Browser, cfg Config, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{
		Browser: b,
		Config:  cfg.withDefaults(),
		Log:     log,
		now:     time.Now,
		sleep:   time.Sleep,
	}
}

// Run executes s and returns its report. It never returns a nil report:
// errors and panics inside the scenario become StatusError.
func (r *Runner) Run(s Scenario) *Report {
	env := &Env{Browser: r.Browser, Config: r.Config}
	out := r.Config.Out
	info := s.Info()

	rep := &Report{
		Title:         info.Title,
		StudentID:     r.Config.StudentID,
		UsernameLabel: info.UsernameLabel,
		Username:      info.Username,
		Started:       r.now(),
	}

	fmt.Fprintf(out, "%s\n%s\n%s\n", rule, info.Title, rule)
	fmt.Fprintf(out, "Student ID: %s\n", r.Config.StudentID)
	fmt.Fprintf(out, "Test Start Time: %s\n", rep.Started.Format(time.DateTime))
	fmt.Fprintf(out, "Browser: %s\n%s\n\n", r.Config.BrowserName, rule)

	defer func() {
		if err := r.Browser.Close(); err != nil {
			r.Log.Warn("failed to close browser", zap.Error(err))
		}
	}()

	status, err := r.execute(env, s, info, rep)
	if err != nil {
		rep.Status = StatusError
		rep.Err = err
		env.Printf("ERROR", "Test failed with exception: %v", err)
		var pe *panicError
		if errors.As(err, &pe) {
			rep.Stack = pe.stack
			fmt.Fprintf(out, "%s\n", pe.stack)
		}
		if path, shotErr := r.saveScreenshot("error"); shotErr != nil {
			r.Log.Warn("failed to save error screenshot", zap.Error(shotErr))
		} else {
			rep.Screenshot = path
		}
	} else {
		rep.Status = status
	}

	rep.Finished = r.now()
	rep.WriteSummary(out)

	fields := []zap.Field{
		zap.String("scenario", info.ScreenshotPrefix),
		zap.String("status", string(rep.Status)),
		zap.Duration("duration", rep.Finished.Sub(rep.Started)),
	}
	if rep.Err != nil {
		fields = append(fields, zap.Error(rep.Err))
	}
	r.Log.Info("scenario finished", fields...)

	if r.Config.Linger > 0 {
		r.sleep(r.Config.Linger)
	}
	if r.Pause != nil {
		r.Pause()
	}
	return rep
}

// execute runs the scenario body plus the closing screenshot and title,
// converting a panic into an error.
func (r *Runner) execute(env *Env, s Scenario, info Info, rep *Report) (status Status, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &panicError{value: p, stack: debug.Stack()}
		}
	}()

	status, err = s.Run(env)
	if err != nil {
		return "", err
	}

	path, err := r.saveScreenshot(info.ScreenshotPrefix)
	if err != nil {
		return "", err
	}
	rep.Screenshot = path
	env.Printf("INFO", "Screenshot saved: %s", path)

	title, err := r.Browser.Title()
	if err != nil {
		return "", err
	}
	env.Printf("INFO", "Page Title: %s", title)
	return status, nil
}

func (r *Runner) saveScreenshot(prefix string) (string, error) {
	png, err := r.Browser.Screenshot()
	if err != nil {
		return "", err
	}
	name := fmt.Sprintf("%s_%s.png", prefix, r.now().Format("20060102_150405"))
	path := filepath.Join(r.Config.ScreenshotDir, name)
	if err := os.WriteFile(path, png, 0o644); err != nil {
		return "", fmt.Errorf("write screenshot: %w", err)
	}
	return path, nil
}

// StatusLine is a one-line form of the report, suitable for logs.
func (r *Report) StatusLine() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", r.Title, r.Status)
	if r.Err != nil {
		fmt.Fprintf(&b, " (%v)", r.Err)
	}
	return b.String()
}
