package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gitlab.com/open-soft/spread-dashboard/src/config"
)

func main() {
	pwd, _ := os.Getwd()
	if _, err := os.Stat(fmt.Sprintf("%s/.env", pwd)); err == nil {
		log.Println(".env is found, loading variables...")
		err = godotenv.Load()
		if err != nil {
			log.Println(err)
		}
	}

	appConfig, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}
	config.ConfigureLogger(appConfig.LogLevel)

	container := config.InitServiceContainer(appConfig)
	defer container.Db.Close()

	if container.SeriesCache.Restore() {
		log.Println("Cached dataset is restored")
	}

	server := container.StartHttpServer()

	if appConfig.IngestEnabled {
		if err := container.IngestService.IngestAll(*container.Ctx); err != nil {
			log.Warnf("Initial ingest: %s", err.Error())
		}
		if err := container.IngestScheduler.Start(); err != nil {
			log.Fatal(err)
		}
	}

	if err := container.Pipeline.Refresh(*container.Ctx); err != nil {
		log.Warnf("Initial refresh: %s", err.Error())
	}

	if appConfig.AutoRefresh {
		if err := container.RefreshController.Start(appConfig.RefreshInterval); err != nil {
			log.Fatal(err)
		}
	}

	log.Printf("Dashboard [%s] is running", container.CurrentDashboard.Uuid)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down...")

	container.RefreshController.Close()
	container.IngestScheduler.Stop()
	container.ChartHub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warnf("HTTP server shutdown: %s", err.Error())
	}
}
