package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/darkclainer/wordmeaning/pkg/config"
	"github.com/darkclainer/wordmeaning/pkg/server"
)

const (
	codeErrorArgs = iota + 1
	codeInternalError
)

const shutdownTimeout = 10 * time.Second

func exitf(code int, format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(code)
}

func main() {
	flags := config.NewFlagSet(os.Args[0])
	if err := flags.Parse(os.Args[1:]); err != nil {
		exitf(codeErrorArgs, "Failure while parsing arguments: %s\n", err)
	}
	conf, err := config.LoadServer(flags)
	if err != nil {
		exitf(codeErrorArgs, "Failure while loading config: %s\n", err)
	}
	zapConf, err := conf.ZapConf()
	if err != nil {
		exitf(codeErrorArgs, "Failure while parsing logger config: %s\n", err)
	}
	logger, err := zapConf.Build()
	if err != nil {
		exitf(codeErrorArgs, "Failure while instatiating logger: %s\n", err)
	}
	defer logger.Sync() // nolint:errcheck // nothing to do with it

	q, err := conf.OpenQuerier(logger)
	if err != nil {
		exitf(codeInternalError, "Can not initialize dictionary: %s\n", err)
	}

	logger.Info("Starting server",
		zap.String("source", conf.Source),
		zap.String("api_prefix", conf.APIPrefix),
		zap.Int("max_words", conf.MaxWords),
	)
	srv, err := server.New(logger, conf, q)
	if err != nil {
		exitf(codeInternalError, "Can not initialize server: %s\n", err)
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		<-c
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Close(ctx); err != nil {
			logger.Error("Shutdown error", zap.Error(err))
			return
		}
	}()

	logger.Info("Listening started", zap.String("address", fmt.Sprintf("http://%s", conf.Host)))
	if err := srv.ListenAndServe(); err != nil {
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", zap.Error(err))
			return
		}
	}
	<-closed
	logger.Info("Closed")
}
