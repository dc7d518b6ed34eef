//go:build e2e

package e2e

import (
	"bytes"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// portfolioServer manages a running `portfolio serve` process.
type portfolioServer struct {
	cmd     *exec.Cmd
	dataDir string
	address string
	logFile string
}

// startPortfolio launches `portfolio serve` and waits for it to become healthy.
// The server is configured entirely via environment variables.
func startPortfolio(t *testing.T) *portfolioServer {
	t.Helper()
	requirePortfolio(t)

	dataDir := t.TempDir()
	port := freePort(t)
	address := fmt.Sprintf("127.0.0.1:%d", port)
	logFile := filepath.Join(dataDir, "portfolio.log")

	cmd := exec.Command(portfolioBin, "serve")
	cmd.Env = append(os.Environ(),
		"PORTFOLIO_PORT="+fmt.Sprintf("%d", port),
		"PORTFOLIO_MOCK_DB_PATH="+filepath.Join(dataDir, "users.db"),
		"PORTFOLIO_MOCK_LATENCY_MIN=0s",
		"PORTFOLIO_MOCK_LATENCY_MAX=0s",
		"PORTFOLIO_MOCK_REQUIRE_SESSION=true",
		"PORTFOLIO_JWT_SECRET=e2e-secret",
		"PORTFOLIO_LOG_LEVEL=info",
		"PORTFOLIO_CONFIG_PATH="+filepath.Join(dataDir, "nonexistent.yaml"), // skip YAML file
		"OPENAI_API_KEY=", // placeholder generator
	)

	lf, err := os.Create(logFile)
	if err != nil {
		t.Fatalf("create log file: %v", err)
	}
	cmd.Stdout = lf
	cmd.Stderr = lf

	if err := cmd.Start(); err != nil {
		lf.Close()
		t.Fatalf("start portfolio: %v", err)
	}

	s := &portfolioServer{
		cmd:     cmd,
		dataDir: dataDir,
		address: address,
		logFile: logFile,
	}

	t.Cleanup(func() {
		s.stop()
		lf.Close()
	})

	if err := s.waitHealthy(10 * time.Second); err != nil {
		t.Fatalf("portfolio not healthy: %v", err)
	}

	return s
}

func (s *portfolioServer) stop() {
	if s.cmd != nil && s.cmd.Process != nil {
		_ = s.cmd.Process.Signal(os.Interrupt)
		_ = s.cmd.Wait()
	}
}

func (s *portfolioServer) baseURL() string {
	return fmt.Sprintf("http://%s", s.address)
}

func (s *portfolioServer) waitHealthy(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	url := fmt.Sprintf("%s/health", s.baseURL())

	for time.Now().Before(deadline) {
		resp, err := http.Get(url)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(100 * time.Millisecond)
	}

	logs, _ := os.ReadFile(s.logFile)
	return fmt.Errorf("timeout after %s; logs:\n%s", timeout, logs)
}

// cli runs client commands against a server with its own session file.
type cli struct {
	server  *portfolioServer
	homeDir string
}

func newCLI(t *testing.T, srv *portfolioServer) *cli {
	t.Helper()
	return &cli{server: srv, homeDir: t.TempDir()}
}

// run executes a portfolio command pointed at the server.
func (c *cli) run(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	cmd := exec.Command(portfolioBin, append(args, "--backend", c.server.baseURL()+"/exec")...)
	cmd.Env = append(os.Environ(),
		"PORTFOLIO_SESSION_PATH="+filepath.Join(c.homeDir, "session.yaml"),
		"PORTFOLIO_MOCK_DB_PATH="+filepath.Join(c.homeDir, "unused.db"),
		"PORTFOLIO_CONFIG_PATH="+filepath.Join(c.homeDir, "nonexistent.yaml"),
	)
	cmd.Stdin = strings.NewReader(stdin)

	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	err = cmd.Run()
	return outBuf.String(), errBuf.String(), err
}

// mustRun executes a command and fails the test on a non-zero exit.
func (c *cli) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	stdout, stderr, err := c.run(t, "", args...)
	if err != nil {
		t.Fatalf("portfolio %s: %v\nstderr: %s", strings.Join(args, " "), err, stderr)
	}
	return stdout
}

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("free port: %v", err)
	}
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}
