package main

import (
	"fmt"
	"io"
	"net/http"
	"os/exec"
	"strings"
	"time"

	"github.com/kovacsdev/agentgate/internal/config"
)

type doctorCheck struct {
	name    string
	ok      bool
	details string
}

func runDoctor(output io.Writer, errorOutput io.Writer) error {
	cfg, err := config.Load("")
	if err != nil {
		return err
	}

	checks := []doctorCheck{
		checkClaudeBinary(cfg),
		checkDaemonHealth(cfg),
		checkAuthConfig(cfg),
	}

	hasFailure := false
	for _, check := range checks {
		status := "PASS"
		if !check.ok {
			status = "FAIL"
			hasFailure = true
		}
		fmt.Fprintf(output, "[%s] %s: %s\n", status, check.name, check.details)
	}
	if hasFailure {
		fmt.Fprintln(errorOutput, "")
		fmt.Fprintln(errorOutput, "agentgatectl doctor found configuration issues.")
		fmt.Fprintln(errorOutput, "Fix the failing checks and rerun: agentgatectl doctor")
		return fmt.Errorf("one or more doctor checks failed")
	}
	fmt.Fprintln(output, "")
	fmt.Fprintln(output, "agentgatectl doctor passed: daemon, auth, and claude binary look good.")
	return nil
}

func checkClaudeBinary(cfg config.Config) doctorCheck {
	path, err := exec.LookPath(cfg.ClaudeBinary)
	if err != nil {
		return doctorCheck{
			name:    "claude binary",
			ok:      false,
			details: fmt.Sprintf("%q not found on PATH (%v)", cfg.ClaudeBinary, err),
		}
	}
	return doctorCheck{name: "claude binary", ok: true, details: fmt.Sprintf("resolved to %s", path)}
}

func checkDaemonHealth(cfg config.Config) doctorCheck {
	base := fmt.Sprintf("http://127.0.0.1:%d", cfg.Port)
	request, err := http.NewRequest(http.MethodGet, base+"/healthz", nil)
	if err != nil {
		return doctorCheck{name: "daemon health", ok: false, details: err.Error()}
	}
	client := &http.Client{Timeout: 2 * time.Second}
	response, err := client.Do(request)
	if err != nil {
		return doctorCheck{
			name:    "daemon health",
			ok:      false,
			details: fmt.Sprintf("cannot reach daemon at %s/healthz (%v)", base, err),
		}
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		return doctorCheck{
			name:    "daemon health",
			ok:      false,
			details: fmt.Sprintf("daemon returned HTTP %d for /healthz", response.StatusCode),
		}
	}
	return doctorCheck{name: "daemon health", ok: true, details: "daemon is reachable and healthy"}
}

func checkAuthConfig(cfg config.Config) doctorCheck {
	if strings.TrimSpace(cfg.ProxyAPIKey) == "" {
		return doctorCheck{
			name:    "auth configuration",
			ok:      true,
			details: "no proxyApiKey configured; auth is disabled",
		}
	}
	return doctorCheck{name: "auth configuration", ok: true, details: "proxyApiKey is configured"}
}
