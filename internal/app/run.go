package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"piweather/internal/config"
	"piweather/internal/db"
	"piweather/internal/display"
	"piweather/internal/httpapi"
	"piweather/internal/mqtt"
	"piweather/internal/repository"
	"piweather/internal/scheduler"
	"piweather/internal/sensor/bme280"
	"piweather/internal/sensor/cpu"
	"piweather/internal/sensor/dht"
	"piweather/internal/sensor/onewire"
	"piweather/internal/sensor/sensehat"
	"piweather/internal/sink/csvlog"
	"piweather/internal/sink/wunderground"
	"piweather/internal/station"
)

func Run(ctx context.Context, cfg config.Config) error {
	slog.Info("config loaded",
		"stationId", cfg.StationID,
		"measurementInterval", cfg.MeasurementInterval,
		"weatherUpload", cfg.WeatherUpload,
		"logDir", cfg.LogDir,
		"ambientSensor", cfg.AmbientSensor,
		"display", cfg.Display,
		"dhtPin", cfg.DHTPin,
		"mqttEnabled", cfg.MQTTEnabled,
		"sqlitePath", cfg.SQLitePath,
		"httpAddr", cfg.HTTPAddr,
	)

	sched, err := scheduler.New(cfg.MeasurementInterval, scheduler.WithPoll(cfg.PollInterval))
	if err != nil {
		return err
	}

	if _, err := host.Init(); err != nil {
		return fmt.Errorf("periph host init: %w", err)
	}

	disp, err := openDisplay(cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = disp.Clear()
		if err := disp.Close(); err != nil {
			slog.Error("display close", "error", err)
		}
	}()

	bus, err := i2creg.Open(cfg.I2CBus)
	if err != nil {
		return fmt.Errorf("open i2c bus %q: %w", cfg.I2CBus, err)
	}
	defer bus.Close()

	ambient, halt, err := openAmbient(cfg, bus)
	if err != nil {
		return err
	}
	defer halt()

	probe, err := onewire.Discover(cfg.W1BaseDir, onewire.DefaultPoll, cfg.W1Timeout)
	if err != nil {
		return err
	}
	slog.Info("one-wire probe found", "path", probe.Path())

	gpio, err := dht.Open(cfg.DHTPin)
	if err != nil {
		return err
	}

	logSink, err := csvlog.New(cfg.LogDir)
	if err != nil {
		return err
	}

	deps := station.Deps{
		Scheduler:          sched,
		Ambient:            ambient,
		CPU:                cpu.NewThermal(cfg.CPUTempPath),
		Probe:              probe,
		GPIO:               gpio,
		Display:            disp,
		Log:                logSink,
		Logger:             slog.Default(),
		CompensationFactor: cfg.CPUCompensationFactor,
	}
	if cfg.WeatherUpload {
		deps.Uploader = wunderground.NewClient(cfg.WUURL, cfg.StationID, cfg.StationKey, cfg.UploadTimeout)
	}

	var store httpapi.ReadingStore
	if cfg.SQLitePath != "" {
		dbConn, err := db.Open(cfg.SQLitePath, db.WithQueryLog(slog.Default()))
		if err != nil {
			return err
		}
		defer func() {
			if err := db.Close(dbConn); err != nil {
				slog.Error("db close", "error", err)
			}
		}()
		repo := repository.NewRepository(dbConn)
		store = repo
		deps.Publishers = append(deps.Publishers, station.NamedPublisher{
			Name:      "sqlite",
			Publisher: station.PublisherFunc(repo.InsertReading),
		})
	}

	if cfg.MQTTEnabled {
		mqttClient, err := mqtt.NewClient(cfg, slog.Default())
		if err != nil {
			return err
		}
		go func() {
			if err := mqttClient.Connect(ctx); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("mqtt connect failed", "error", err)
			}
		}()
		defer mqttClient.Disconnect()
		deps.Publishers = append(deps.Publishers, station.NamedPublisher{Name: "mqtt", Publisher: mqttClient})
	}

	st := station.New(deps)
	if err := st.Prime(ctx); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	var srv *http.Server
	if cfg.HTTPAddr != "" {
		srv = httpapi.NewServer(cfg.HTTPAddr, httpapi.NewMux(st, store))
		go func() {
			slog.Info("http listening", "addr", cfg.HTTPAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case err := <-errCh:
			slog.Error("http server failed", "error", err)
			cancel()
		case <-runCtx.Done():
		}
	}()

	slog.Info("station running")
	runErr := st.Run(runCtx)

	if srv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		slog.Info("http shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("http shutdown", "error", err)
		}
	}

	if ctx.Err() == nil && errors.Is(runErr, context.Canceled) {
		return errors.New("station stopped after http server failure")
	}
	return runErr
}

func openDisplay(cfg config.Config) (display.Display, error) {
	if cfg.Display == config.DisplayNone {
		return display.NewLogDisplay(slog.Default()), nil
	}
	path, err := display.FindSenseHAT("")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", station.ErrDisplayInit, err)
	}
	fb, err := display.OpenFramebuffer(path, display.DefaultScrollSpeed)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", station.ErrDisplayInit, err)
	}
	return fb, nil
}

func openAmbient(cfg config.Config, bus i2c.Bus) (station.AmbientSensor, func(), error) {
	switch cfg.AmbientSensor {
	case config.AmbientBME280:
		s, err := bme280.Open(bus, cfg.BME280Address)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {
			if err := s.Halt(); err != nil {
				slog.Error("bme280 halt", "error", err)
			}
		}, nil
	default:
		s, err := sensehat.Open(bus)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {}, nil
	}
}
