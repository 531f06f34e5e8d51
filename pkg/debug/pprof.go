// Package debug provides instrumentation for diagnosing the sampler itself.
package debug

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/sirupsen/logrus"
)

// PprofMux returns a mux serving the runtime profiles under /debug/pprof/.
func PprofMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	return mux
}

// StartPprofServer listens on addr and serves profiles until ctx is done.
// The listener is bound before it returns, so a bad or busy address is
// reported to the caller. The returned address is the one actually bound.
func StartPprofServer(ctx context.Context, addr string, logger logrus.FieldLogger) (net.Addr, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("pprof listen on %q: %w", addr, err)
	}

	server := &http.Server{
		Handler:           PprofMux(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	log := logger.WithField("addr", ln.Addr().String())

	go func() {
		log.Info("Serving pprof")
		if err := server.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Warn("pprof server stopped")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("pprof shutdown failed")
		}
	}()

	return ln.Addr(), nil
}
