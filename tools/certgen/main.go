// Package main generates a development Certificate Authority and a server
// certificate signed by it, writing them under the "certs" directory.
// An existing CA in that directory is reused so clients that already trust
// it keep working.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/atinyakov/todokeeper/internal/certgen"
)

const caCommonName = "Todo Dev CA"

func main() {
	dir := flag.String("dir", "certs", "output directory")
	hosts := flag.String("hosts", "localhost,127.0.0.1", "comma-separated server host names and IPs")
	flag.Parse()

	if err := run(*dir, splitHosts(*hosts)); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Certificates generated into ./%s\n", *dir)
}

func run(dir string, hosts []string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	caCert := filepath.Join(dir, "ca.crt")
	caKey := filepath.Join(dir, "ca.key")

	ca, err := certgen.LoadCACredentials(caCert, caKey)
	if errors.Is(err, os.ErrNotExist) {
		ca, err = certgen.GenerateCA(caCommonName)
		if err != nil {
			return err
		}
		err = ca.WriteFiles(caCert, caKey)
	}
	if err != nil {
		return err
	}

	server, err := certgen.GenerateServerCertificate(hosts, ca)
	if err != nil {
		return err
	}
	return server.WriteFiles(filepath.Join(dir, "server.crt"), filepath.Join(dir, "server.key"))
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
