package cli

import (
	"context"
	stdtls "crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/getmockd/wsbind/pkg/cli/internal/output"
	"github.com/getmockd/wsbind/pkg/config"
	"github.com/getmockd/wsbind/pkg/metrics"
	"github.com/getmockd/wsbind/pkg/soap"
	"github.com/getmockd/wsbind/pkg/tls"
)

// Server defaults used when the project file leaves them unset.
const (
	defaultListen          = ":8080"
	defaultReadTimeout     = 30 * time.Second
	defaultShutdownTimeout = 30 * time.Second
)

// serveFlags holds all parsed command-line flags for the serve command.
type serveFlags struct {
	listen string
}

// serveFlagVals is the package-level instance bound to cobra flags.
var serveFlagVals serveFlags

// serveCmd represents the serve command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Assemble the configured endpoints and serve them (foreground)",
	Long: `Assemble every service of the project file and serve it over HTTP.

Each endpoint answers SOAP POSTs at its URL, returns its primary WSDL for
GET <url>?wsdl and its metadata documents for GET <url>?xsd=<name>.
A GET on the bare URL shows an information page.`,
	Example: `  # Serve wsbind.yaml from the current directory
  wsbind serve

  # Serve on another address with debug logging
  wsbind serve --listen 127.0.0.1:9000 --log-level debug`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return runServe(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), &serveFlagVals, nil)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&serveFlagVals.listen, "listen", "l", "", "Listen address (default from project file, else :8080)")
}

// runServe serves until ctx is done. When ready is non-nil it receives the
// bound address once the listener is open.
func runServe(ctx context.Context, stdout, stderr io.Writer, f *serveFlags, ready chan<- net.Addr) error {
	cfg, err := loadProjectConfig()
	if err != nil {
		return err
	}

	log, closeLog, err := newLogger(cfg.Logging, stderr)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	servlet, statuses, err := newServlet(cfg, log)
	if err != nil {
		return err
	}
	defer servlet.Destroy()

	listen := cfg.Server.Listen
	if f.listen != "" {
		listen = f.listen
	}
	if listen == "" {
		listen = defaultListen
	}

	readTimeout := durationOr(cfg.Server.ReadTimeout, defaultReadTimeout)
	shutdownTimeout := durationOr(cfg.Server.ShutdownTimeout, defaultShutdownTimeout)

	ln, err := net.Listen("tcp", listen)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", listen, err)
	}
	scheme := "http"
	if cfg.Server.TLS != nil {
		tlsConf, err := serverTLS(cfg.Server.TLS, log)
		if err != nil {
			_ = ln.Close()
			return err
		}
		ln = tls.NewListener(ln, tlsConf)
		scheme = "https"
	}

	srv := &http.Server{
		Handler:           routes(cfg.Server, servlet),
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readTimeout,
		ErrorLog:          slog.NewLogLogger(log.Handler(), slog.LevelWarn),
	}

	fmt.Fprintf(stdout, "wsbind listening on %s://%s\n", scheme, ln.Addr())
	for _, st := range statuses {
		fmt.Fprintf(stdout, "  %s -> %s %s\n", st.URL, st.Service, st.Port)
	}
	if ready != nil {
		ready <- ln.Addr()
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	fmt.Fprintln(stdout, "\nShutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		output.Warn(stderr, "server shutdown error: %v", err)
	}
	return nil
}

func durationOr(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

// routes mounts the optional metrics and status endpoints beside the servlet.
func routes(cfg config.ServerConfig, servlet *soap.Servlet) http.Handler {
	if cfg.MetricsPath == "" && cfg.StatusPath == "" {
		return servlet
	}
	mux := http.NewServeMux()
	if cfg.MetricsPath != "" {
		reg := metrics.NewRegistry()
		servlet.SetMetrics(soap.NewMetrics(reg))
		mux.Handle(cfg.MetricsPath, reg.Handler())
	}
	if cfg.StatusPath != "" {
		mux.Handle(cfg.StatusPath, servlet.StatusHandler())
	}
	mux.Handle("/", servlet)
	return mux
}

// serverTLS loads, or generates when allowed, the configured certificate.
func serverTLS(cfg *config.TLSConfig, log *slog.Logger) (*stdtls.Config, error) {
	opts := tls.DefaultOptions()
	if len(cfg.Hosts) > 0 {
		opts.Hosts = cfg.Hosts
	}
	cert, generated, err := tls.Ensure(opts, cfg.CertFile, cfg.KeyFile, cfg.AutoGenerate)
	if err != nil {
		return nil, fmt.Errorf("loading TLS certificate: %w", err)
	}
	if generated {
		log.Info("generated self-signed certificate", "cert", cfg.CertFile, "key", cfg.KeyFile, "hosts", opts.Hosts)
	}
	return cert.ServerConfig()
}
