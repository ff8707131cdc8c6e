// Package main generates a development CA and a server certificate for
// running AuthPortal over HTTPS, writing them under the "certs" directory.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/atinyakov/AuthPortal/internal/certgen"
)

func main() {
	dir := flag.String("dir", "certs", "output directory")
	hosts := flag.String("hosts", "localhost,127.0.0.1", "comma-separated DNS names and IPs for the server certificate")
	flag.Parse()

	if err := run(*dir, splitHosts(*hosts)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("Certificates generated into %s\n", *dir)
}

func splitHosts(s string) []string {
	var hosts []string
	for _, h := range strings.Split(s, ",") {
		if h = strings.TrimSpace(h); h != "" {
			hosts = append(hosts, h)
		}
	}
	return hosts
}

// run always issues a fresh CA and server pair, overwriting existing files.
func run(dir string, hosts []string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	caCert, caKey, caPair, err := certgen.NewCA("AuthPortal Dev CA")
	if err != nil {
		return err
	}
	if err := caPair.Write(filepath.Join(dir, certgen.CAFile), filepath.Join(dir, certgen.CAKeyFile)); err != nil {
		return err
	}

	server, err := certgen.ServerCertificate(hosts, caCert, caKey)
	if err != nil {
		return err
	}
	return server.Write(filepath.Join(dir, certgen.ServerCertFile), filepath.Join(dir, certgen.ServerKeyFile))
}
