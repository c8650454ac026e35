package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/fulldump/goconfig"

	"github.com/insightdelivered/statement-desk/internal/api"
	"github.com/insightdelivered/statement-desk/internal/backend"
	"github.com/insightdelivered/statement-desk/internal/config"
	"github.com/insightdelivered/statement-desk/internal/notice"
	"github.com/insightdelivered/statement-desk/internal/workspace"
)

var VERSION = "dev"

func main() {

	c := config.Default()
	goconfig.Read(&c)

	if c.Version {
		fmt.Println("Version:", VERSION)
		return
	}

	if c.ShowConfig {
		e := json.NewEncoder(os.Stdout)
		e.SetIndent("", "    ")
		e.Encode(c)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: c.Level()}))
	slog.SetDefault(logger)

	feed := notice.NewFeed(c.NoticeBuffer)
	notifiers := []notice.Notifier{notice.Log(logger), feed}
	if c.NatsURL != "" {
		nc, err := notice.Dial(c.NatsURL, "statement-desk")
		if err != nil {
			logger.Warn("nats unavailable, notices stay local", "url", c.NatsURL, "err", err)
		} else {
			defer nc.Drain()
			notifiers = append(notifiers, notice.NATS(nc, c.NatsSubject, logger))
		}
	}

	deps := workspace.Deps{
		Backend: backend.New(c.BackendURL, backend.Options{
			Timeout: c.BackendTimeout,
			RPS:     c.BackendRPS,
			Logger:  logger,
		}),
		Notifier: notice.Multi(notifiers...),
		Logger:   logger,
		PageSize: c.PageSize,
	}

	directory := workspace.NewDirectory(deps)
	history := workspace.NewHistory(deps)
	h := &api.Handler{
		Directory: directory,
		Sessions:  workspace.NewSessions(deps),
		History:   history,
		Uploader:  workspace.NewUploader(deps, directory, history),
		Feed:      feed,
		Logger:    logger,
		StaticDir: c.StaticDir,
		Version:   VERSION,
	}
	app := h.App()

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		sig := <-signalChan
		logger.Info("signal received", "signal", sig.String())
		directory.Dispose()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Error("shutdown", "err", err)
		}
	}()

	wg := &sync.WaitGroup{}

	wg.Add(1)
	go func() {
		defer wg.Done()
		ctx := context.Background()
		if c.BackendTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, c.BackendTimeout)
			defer cancel()
		}
		if err := directory.Init(ctx); err != nil {
			logger.Warn("client registry not loaded", "err", err)
		}
		if err := history.Load(ctx); err != nil {
			logger.Warn("upload history not loaded", "err", err)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("listening", "addr", c.HttpAddr, "backend", c.BackendURL, "version", VERSION)
		if err := app.Listen(c.HttpAddr); err != nil {
			logger.Error("listen", "err", err)
		}
	}()

	wg.Wait()
}
