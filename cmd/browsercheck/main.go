// Package main runs one end-to-end browser scenario against a running
// AuthPortal server and exits non-zero unless it passes.
package main

import (
	"bufio"
	"cmp"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/atinyakov/AuthPortal/internal/client/browser"
	"github.com/atinyakov/AuthPortal/internal/client/scenario"
	"github.com/atinyakov/AuthPortal/internal/logger"
	"go.uber.org/zap"
)

var (
	version   string
	buildDate string
)

func main() {
	var (
		name     = flag.String("scenario", "login", "scenario to run: login | register")
		baseURL  = flag.String("url", "http://127.0.0.1:8000", "portal base URL")
		username = flag.String("username", "", "account username (login: testuser, register: testuser_<unix>)")
		password = flag.String("password", "testpassword", "account password")
		email    = flag.String("email", "", "account e-mail (register only)")
		student  = flag.String("student-id", "", "student id printed in the report")
		headless = flag.Bool("headless", false, "run Chrome without a window")
		insecure = flag.Bool("insecure", false, "accept self-signed HTTPS certificates")
		shots    = flag.String("shots", ".", "directory for screenshots")
		linger   = flag.Duration("linger", 5*time.Second, "keep the browser open after the summary")
		timeout  = flag.Duration("timeout", 10*time.Second, "element and page transition timeout")
		pause    = flag.Bool("pause", false, "wait for Enter before closing the browser")
		logLevel = flag.String("log-level", "warn", "log level")
	)
	flag.Parse()

	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(*logLevel); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}

	cfg := scenario.Config{
		BaseURL:           *baseURL,
		StudentID:         cmp.Or(*student, os.Getenv("STUDENT_ID")),
		Username:          *username,
		Password:          *password,
		Email:             *email,
		ScreenshotDir:     *shots,
		ElementTimeout:    *timeout,
		TransitionTimeout: *timeout,
		Linger:            *linger,
		Out:               os.Stdout,
	}

	var s scenario.Scenario
	switch *name {
	case "login":
		s = scenario.NewLoginVerification(cfg)
	case "register":
		s = scenario.NewRegistration(cfg, time.Now())
	default:
		fmt.Fprintf(os.Stderr, "unknown scenario %q\n", *name)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	b, err := browser.NewChrome(ctx, browser.ChromeOptions{
		Headless:         *headless,
		IgnoreCertErrors: *insecure,
		ActionTimeout:    *timeout,
	})
	if err != nil {
		log.Log.Fatal("cannot start browser", zap.Error(err))
	}

	runner := scenario.NewRunner(b, cfg, log.Log)
	if *pause {
		runner.Pause = func() {
			fmt.Print("\n[PAUSE] Press Enter to close the browser and complete the test")
			_, _ = bufio.NewReader(os.Stdin).ReadString('\n')
		}
	}

	rep := runner.Run(s)
	if rep.Status != scenario.StatusPassed {
		stop()
		_ = log.Log.Sync()
		os.Exit(1)
	}
}
