package services

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/jonathanmorenozapico-source/Tsv-Project/internal/config"
	"github.com/jonathanmorenozapico-source/Tsv-Project/pkg/contracts"
)

// HealthService provides health check functionality
type HealthService struct {
	version   string
	paths     *config.Paths
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// NewHealthService creates a new health service
func NewHealthService(version string, paths *config.Paths, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		version:   version,
		paths:     paths,
		startTime: time.Now(),
		logger:    logger,
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
	}
}

// ReadinessCheck reports whether the data and reports directories are usable
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services: map[string]interface{}{
			"data":    hs.checkDir(hs.dataDir()),
			"reports": hs.checkDir(hs.reportsDir()),
		},
	}

	for _, service := range status.Services {
		if sh, ok := service.(ServiceHealth); ok && sh.Status != "ready" {
			status.Status = "not_ready"
			break
		}
	}

	if status.Status != "ready" {
		hs.logger.WarnContext(ctx, "ReadinessCheck: not ready", slog.Any("services", status.Services))
	}
	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// VersionResponse is the body of GET /api/v1/version
type VersionResponse struct {
	contracts.VersionInfo
	UptimeSeconds float64   `json:"uptime_seconds"`
	StartTime     time.Time `json:"start_time"`
}

// Version reports the build, the contract versions and the uptime
func (hs *HealthService) Version() VersionResponse {
	info := contracts.GetVersionInfo()
	info.Version = hs.version
	return VersionResponse{
		VersionInfo:   info,
		UptimeSeconds: time.Since(hs.startTime).Seconds(),
		StartTime:     hs.startTime,
	}
}

func (hs *HealthService) dataDir() string {
	if hs.paths == nil {
		return ""
	}
	return hs.paths.DataDir
}

func (hs *HealthService) reportsDir() string {
	if hs.paths == nil {
		return ""
	}
	return hs.paths.ReportsDir
}

func (hs *HealthService) checkDir(dir string) ServiceHealth {
	if dir == "" {
		return ServiceHealth{Status: "not_ready", Message: "directory not configured"}
	}
	info, err := os.Stat(dir)
	if err != nil {
		return ServiceHealth{Status: "not_ready", Message: err.Error()}
	}
	if !info.IsDir() {
		return ServiceHealth{Status: "not_ready", Message: dir + " is not a directory"}
	}
	return ServiceHealth{Status: "ready"}
}
