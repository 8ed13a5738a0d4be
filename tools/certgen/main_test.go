package main

import (
	"crypto/tls"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/atinyakov/todokeeper/internal/certgen"
)

func TestRun_GeneratesLoadableFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "certs")

	if err := run(dir, []string{"localhost", "127.0.0.1"}); err != nil {
		t.Fatalf("run: %v", err)
	}

	for _, name := range []string{"ca.crt", "ca.key", "server.crt", "server.key"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}

	if _, err := tls.LoadX509KeyPair(filepath.Join(dir, "server.crt"), filepath.Join(dir, "server.key")); err != nil {
		t.Errorf("server pair is not loadable by crypto/tls: %v", err)
	}
}

func TestRun_ReusesExistingCA(t *testing.T) {
	dir := t.TempDir()
	if err := run(dir, []string{"localhost"}); err != nil {
		t.Fatal(err)
	}
	first, err := os.ReadFile(filepath.Join(dir, "ca.crt"))
	if err != nil {
		t.Fatal(err)
	}

	if err := run(dir, []string{"localhost"}); err != nil {
		t.Fatal(err)
	}
	second, err := os.ReadFile(filepath.Join(dir, "ca.crt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(first) != string(second) {
		t.Error("expected existing CA to be reused")
	}

	ca, err := certgen.LoadCACredentials(filepath.Join(dir, "ca.crt"), filepath.Join(dir, "ca.key"))
	if err != nil {
		t.Fatal(err)
	}
	srv, err := os.ReadFile(filepath.Join(dir, "server.crt"))
	if err != nil {
		t.Fatal(err)
	}
	pair, err := tls.X509KeyPair(srv, mustRead(t, filepath.Join(dir, "server.key")))
	if err != nil {
		t.Fatal(err)
	}
	if pair.Leaf == nil {
		t.Skip("leaf not parsed by this Go version")
	}
	if err := pair.Leaf.CheckSignatureFrom(ca.Cert); err != nil {
		t.Errorf("server cert not signed by reused CA: %v", err)
	}
}

func TestRun_NoHosts(t *testing.T) {
	if err := run(t.TempDir(), nil); err == nil {
		t.Error("expected error without hosts")
	}
}

func TestSplitHosts(t *testing.T) {
	got := splitHosts(" localhost, ,127.0.0.1,")
	want := []string{"localhost", "127.0.0.1"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("splitHosts = %v; want %v", got, want)
	}
}

func mustRead(t *testing.T, path string) []byte {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return b
}
