// Command devserver runs a local stand-in for the hosted forms API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/landingsite-ai/aifeatures-go/devserver/internal/db"
	"github.com/landingsite-ai/aifeatures-go/devserver/internal/handler"
	"github.com/landingsite-ai/aifeatures-go/devserver/internal/repository"
	"github.com/landingsite-ai/aifeatures-go/devserver/internal/router"
	"github.com/landingsite-ai/aifeatures-go/devserver/internal/seed"
	"github.com/landingsite-ai/aifeatures-go/devserver/internal/service"
	"github.com/landingsite-ai/aifeatures-go/devserver/internal/storage"
	"github.com/landingsite-ai/aifeatures-go/internal/config"
	"github.com/landingsite-ai/aifeatures-go/internal/logging"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()
	dev := cfg.Dev

	log, closeLog, err := logging.New(logging.Options{
		Service:   "aifeatures-devserver",
		Level:     cfg.LogLevel,
		Format:    cfg.LogFormat,
		GelfAddr:  cfg.GelfAddr,
		SentryDSN: cfg.SentryDSN,
	})
	if err != nil {
		logrus.Fatalf("Failed to init logging: %v", err)
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(dev.DBDriver, dev.DBDSN, log)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	log.WithField("driver", dev.DBDriver).Info("database ready")

	var blobs storage.BlobStore = storage.NewMemory()
	if dev.MinioEndpoint != "" {
		blobs, err = storage.NewMinio(ctx, storage.MinioConfig{
			Endpoint:  dev.MinioEndpoint,
			AccessKey: dev.MinioAccessKey,
			SecretKey: dev.MinioSecretKey,
			Bucket:    dev.MinioBucket,
			UseSSL:    dev.MinioUseSSL,
		}, log)
		if err != nil {
			log.Fatalf("Failed to connect to MinIO: %v", err)
		}
		log.WithField("endpoint", dev.MinioEndpoint).Info("attachments stored in MinIO")
	}

	// Repositories
	siteRepo := repository.NewSiteRepo(conn)
	formRepo := repository.NewFormRepo(conn)
	subRepo := repository.NewSubmissionRepo(conn)

	// Services
	siteSvc, err := service.NewSiteService(siteRepo, dev.OrgKey, dev.JWTSecret)
	if err != nil {
		log.Fatalf("Failed to init site service: %v", err)
	}
	formSvc := service.NewFormService(formRepo, subRepo, blobs, dev.PublicURL, log)
	subSvc := service.NewSubmissionService(subRepo, formRepo, blobs, log)

	if dev.Seed {
		created, err := seed.New(siteRepo, formRepo, subRepo, blobs).Run(ctx)
		if err != nil {
			logging.ReportError(log, "seed", err, nil)
		} else {
			token, _ := siteSvc.Token(seed.SiteID)
			log.WithFields(logrus.Fields{"created": created, "site_token": token}).Info("demo site ready")
		}
	}

	// Handlers
	siteH := handler.NewSiteHandler(siteSvc, log)
	formH := handler.NewFormHandler(formSvc, log)
	subH := handler.NewSubmissionHandler(subSvc, log)
	widgetH := handler.NewWidgetHandler(formSvc, subSvc, dev.MaxUploadMB, log)

	srv := &http.Server{
		Addr:              dev.Addr,
		Handler:           router.New(dev.JWTSecret, log, siteH, formH, subH, widgetH),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logging.ReportError(log, "shutdown", err, nil)
		}
	}()

	log.WithFields(logrus.Fields{"addr": dev.Addr, "public_url": dev.PublicURL}).Info("devserver starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logging.ReportError(log, "listen", err, map[string]interface{}{"addr": dev.Addr})
		os.Exit(1)
	}
	log.Info("devserver stopped")
}
