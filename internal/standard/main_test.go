package standard

import (
	"os"
	"os/signal"
	"strings"
	"syscall"
	"testing"
	"time"
)

// When these variables are set the test binary acts as the controlled
// service instead of running tests.
const (
	envServiceRuntime = "SVCCTL_TEST_SERVICE_RUNTIME"
	envServiceOut     = "SVCCTL_TEST_SERVICE_OUT"
)

func TestMain(m *testing.M) {
	if dir := os.Getenv(envServiceRuntime); dir != "" {
		os.Exit(runTestService(dir))
	}
	os.Exit(m.Run())
}

func runTestService(runtimeDir string) int {
	self, err := os.Executable()
	if err != nil {
		return 2
	}
	lock, err := Register(self, Options{RuntimeDir: runtimeDir})
	if err != nil {
		return 3
	}
	defer func() { _ = lock.Unlock() }()

	if out := os.Getenv(envServiceOut); out != "" {
		wd, _ := os.Getwd()
		report := strings.Join(append(os.Args[1:], wd), "\n")
		_ = os.WriteFile(out+".tmp", []byte(report), 0o600)
		_ = os.Rename(out+".tmp", out)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGTERM, os.Interrupt)
	select {
	case <-sig:
	case <-time.After(60 * time.Second):
	}
	return 0
}
