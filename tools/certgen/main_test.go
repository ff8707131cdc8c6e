package main

import (
	"crypto/tls"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/atinyakov/AuthPortal/internal/certgen"
)

func TestSplitHosts(t *testing.T) {
	got := splitHosts(" localhost, 127.0.0.1,,portal.test ")
	want := []string{"localhost", "127.0.0.1", "portal.test"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("splitHosts = %v; want %v", got, want)
	}
	if got := splitHosts(""); got != nil {
		t.Errorf("splitHosts(\"\") = %v; want nil", got)
	}
}

func TestRun(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "certs")

	if err := run(dir, []string{"localhost", "127.0.0.1"}); err != nil {
		t.Fatalf("run: %v", err)
	}

	if _, err := tls.LoadX509KeyPair(filepath.Join(dir, certgen.ServerCertFile), filepath.Join(dir, certgen.ServerKeyFile)); err != nil {
		t.Fatalf("server pair unusable: %v", err)
	}
	if _, _, err := certgen.LoadCA(filepath.Join(dir, certgen.CAFile), filepath.Join(dir, certgen.CAKeyFile)); err != nil {
		t.Fatalf("CA unusable: %v", err)
	}
}

func TestRun_NoHosts(t *testing.T) {
	if err := run(t.TempDir(), nil); err == nil {
		t.Fatal("expected error without hosts")
	}
}
