package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultWUURL = "http://weatherstation.wunderground.com/weatherstation/updateweatherstation.php"

	AmbientSenseHAT = "sensehat"
	AmbientBME280   = "bme280"

	DisplaySenseHAT = "sensehat"
	DisplayNone     = "none"
)

var ErrMissingCredentials = errors.New("missing Weather Underground station credentials")

type Config struct {
	AppEnv   string
	LogLevel slog.Level

	StationID           string
	StationKey          string
	MeasurementInterval int
	WeatherUpload       bool
	WUURL               string
	UploadTimeout       time.Duration
	LogDir              string

	AmbientSensor         string
	I2CBus                string
	BME280Address         uint16
	DHTPin                string
	W1BaseDir             string
	W1Timeout             time.Duration
	CPUTempPath           string
	CPUCompensationFactor float64
	Display               string
	PollInterval          time.Duration

	MQTTEnabled  bool
	MQTTBroker   string
	MQTTPort     int
	MQTTClientID string

	SQLitePath string
	HTTPAddr   string
}

func LoadFromEnv() (Config, error) {
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	logLevelStr := strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	if logLevelStr == "" {
		logLevelStr = "info"
	}
	level, err := parseLogLevel(logLevelStr)
	if err != nil {
		return Config{}, err
	}

	stationID := strings.TrimSpace(os.Getenv("WU_STATION_ID"))
	stationKey := strings.TrimSpace(os.Getenv("WU_STATION_KEY"))
	if stationID == "" || stationKey == "" {
		return Config{}, fmt.Errorf("%w: WU_STATION_ID and WU_STATION_KEY must be set", ErrMissingCredentials)
	}

	intervalStr := strings.TrimSpace(os.Getenv("MEASUREMENT_INTERVAL"))
	if intervalStr == "" {
		intervalStr = "1"
	}
	interval, err := strconv.Atoi(intervalStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid MEASUREMENT_INTERVAL %q: %w", intervalStr, err)
	}
	if interval < 1 || interval > 60 {
		return Config{}, fmt.Errorf("MEASUREMENT_INTERVAL must be between 1 and 60, got %d", interval)
	}

	weatherUpload, err := boolEnv("WEATHER_UPLOAD", true)
	if err != nil {
		return Config{}, err
	}

	wuURL := strings.TrimSpace(os.Getenv("WU_URL"))
	if wuURL == "" {
		wuURL = DefaultWUURL
	}

	uploadTimeout, err := durationEnv("UPLOAD_TIMEOUT", "10s")
	if err != nil {
		return Config{}, err
	}

	logDir := strings.TrimSpace(os.Getenv("LOG_DIR"))
	if logDir == "" {
		logDir = "."
	}

	ambientSensor := strings.ToLower(strings.TrimSpace(os.Getenv("AMBIENT_SENSOR")))
	if ambientSensor == "" {
		ambientSensor = AmbientSenseHAT
	}
	switch ambientSensor {
	case AmbientSenseHAT, AmbientBME280:
	default:
		return Config{}, fmt.Errorf("invalid AMBIENT_SENSOR %q (allowed: sensehat, bme280)", ambientSensor)
	}

	i2cBus := strings.TrimSpace(os.Getenv("I2C_BUS"))

	bme280AddressStr := strings.TrimSpace(os.Getenv("BME280_ADDRESS"))
	if bme280AddressStr == "" {
		bme280AddressStr = "0x76"
	}
	bme280Address, err := strconv.ParseUint(bme280AddressStr, 0, 16)
	if err != nil {
		return Config{}, fmt.Errorf("invalid BME280_ADDRESS %q: %w", bme280AddressStr, err)
	}

	dhtPin := strings.TrimSpace(os.Getenv("DHT_PIN"))
	if dhtPin == "" {
		dhtPin = "GPIO26"
	}

	w1BaseDir := strings.TrimSpace(os.Getenv("W1_BASE_DIR"))
	if w1BaseDir == "" {
		w1BaseDir = "/sys/bus/w1/devices"
	}

	w1Timeout, err := durationEnv("W1_TIMEOUT", "5s")
	if err != nil {
		return Config{}, err
	}

	cpuTempPath := strings.TrimSpace(os.Getenv("CPU_TEMP_PATH"))
	if cpuTempPath == "" {
		cpuTempPath = "/sys/class/thermal/thermal_zone0/temp"
	}

	factorStr := strings.TrimSpace(os.Getenv("CPU_COMPENSATION_FACTOR"))
	if factorStr == "" {
		factorStr = "1.5"
	}
	factor, err := strconv.ParseFloat(factorStr, 64)
	if err != nil {
		return Config{}, fmt.Errorf("invalid CPU_COMPENSATION_FACTOR %q: %w", factorStr, err)
	}
	if factor <= 0 {
		return Config{}, fmt.Errorf("CPU_COMPENSATION_FACTOR must be positive, got %v", factor)
	}

	display := strings.ToLower(strings.TrimSpace(os.Getenv("LED_DISPLAY")))
	if display == "" {
		display = DisplaySenseHAT
	}
	switch display {
	case DisplaySenseHAT, DisplayNone:
	default:
		return Config{}, fmt.Errorf("invalid LED_DISPLAY %q (allowed: sensehat, none)", display)
	}

	pollInterval, err := durationEnv("POLL_INTERVAL", "1s")
	if err != nil {
		return Config{}, err
	}

	mqttEnabled, err := boolEnv("MQTT_ENABLED", false)
	if err != nil {
		return Config{}, err
	}

	mqttBroker := strings.TrimSpace(os.Getenv("MQTT_BROKER"))
	if mqttBroker == "" {
		mqttBroker = "localhost"
	}

	mqttPortStr := strings.TrimSpace(os.Getenv("MQTT_PORT"))
	if mqttPortStr == "" {
		mqttPortStr = "1883"
	}
	mqttPort, err := strconv.Atoi(mqttPortStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid MQTT_PORT %q: %w", mqttPortStr, err)
	}

	mqttClientID := strings.TrimSpace(os.Getenv("MQTT_CLIENT_ID"))
	if mqttClientID == "" {
		mqttClientID = "piweather-" + strings.ToLower(stationID)
	}

	return Config{
		AppEnv:                appEnv,
		LogLevel:              level,
		StationID:             stationID,
		StationKey:            stationKey,
		MeasurementInterval:   interval,
		WeatherUpload:         weatherUpload,
		WUURL:                 wuURL,
		UploadTimeout:         uploadTimeout,
		LogDir:                logDir,
		AmbientSensor:         ambientSensor,
		I2CBus:                i2cBus,
		BME280Address:         uint16(bme280Address),
		DHTPin:                dhtPin,
		W1BaseDir:             w1BaseDir,
		W1Timeout:             w1Timeout,
		CPUTempPath:           cpuTempPath,
		CPUCompensationFactor: factor,
		Display:               display,
		PollInterval:          pollInterval,
		MQTTEnabled:           mqttEnabled,
		MQTTBroker:            mqttBroker,
		MQTTPort:              mqttPort,
		MQTTClientID:          mqttClientID,
		SQLitePath:            strings.TrimSpace(os.Getenv("SQLITE_PATH")),
		HTTPAddr:              strings.TrimSpace(os.Getenv("HTTP_ADDR")),
	}, nil
}

func boolEnv(key string, def bool) (bool, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return v, nil
}

func durationEnv(key, def string) (time.Duration, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		s = def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %v", key, d)
	}
	return d, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
