package servehttp

import (
	"context"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const ShutdownTimeout = 3 * time.Second

// StartHTTPServer serves engine on addr until SIGINT or SIGTERM is received, then shuts down gracefully
func StartHTTPServer(engine *gin.Engine, addr string) error {
	// kill -9 sends SIGKILL, which can't be caught
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return Serve(ctx, listener, engine)
}

// Serve serves handler on listener until ctx is done
func Serve(ctx context.Context, listener net.Listener, handler http.Handler) error {
	srv := &http.Server{Handler: handler}

	serveErr := make(chan error, 1)
	go func() {
		logrus.Infof("http server listening on %s", listener.Addr())
		serveErr <- srv.Serve(listener)
	}()

	select {
	case err := <-serveErr:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logrus.Infof("[QUIT] shutdown signal has been received, the service will exit in %v", ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("[QUIT] http server shutdown failed: %v", err)
		return err
	}
	logrus.Info("[QUIT] http server is shutdown gracefully")
	return nil
}
