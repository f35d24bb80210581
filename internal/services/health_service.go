package services

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	apierrors "salespulse/internal/errors"
)

// DatasetSource reports on the loaded dataset
type DatasetSource interface {
	Dataset() DatasetInfo
}

// ClientCounter reports connected live-query clients
type ClientCounter interface {
	ClientCount() int
}

// Pinger is implemented by caches backed by a remote server
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthService provides health check functionality
type HealthService struct {
	version   string
	buildTime string
	buildID   string
	data      DatasetSource
	clients   ClientCounter
	cache     Pinger
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
	// Error explains a failed readiness check
	Error *apierrors.APIError `json:"error,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Uptime  string `json:"uptime,omitempty"`
}

// NewHealthService creates a new health service. clients and cache may be
// nil when the websocket channel or a remote cache is not in use.
func NewHealthService(version, buildTime, buildID string, data DatasetSource, clients ClientCounter, cache Pinger, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "health_service"))
	logger.Info("HealthService initialized",
		slog.String("version", version),
		slog.String("build_time", buildTime),
		slog.String("build_id", buildID))

	return &HealthService{
		version:   version,
		buildTime: buildTime,
		buildID:   buildID,
		data:      data,
		clients:   clients,
		cache:     cache,
		startTime: time.Now(),
		logger:    logger,
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	hs.logger.DebugContext(ctx, "HealthCheck: performing health check",
		slog.String("uptime", time.Since(hs.startTime).String()))

	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
	}
}

// ReadinessCheck returns readiness status
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services:  make(map[string]interface{}),
	}

	status.Services["data"] = hs.checkDataHealth()
	status.Services["websocket"] = hs.checkWebSocketHealth()
	if hs.cache != nil {
		status.Services["cache"] = hs.checkCacheHealth(ctx)
	}

	for name, service := range status.Services {
		if sh, ok := service.(ServiceHealth); ok && sh.Status == "not_ready" {
			status.Status = "not_ready"
			hs.logger.WarnContext(ctx, "ReadinessCheck: dependency not ready",
				slog.String("service", name),
				slog.String("message", sh.Message))
			if name == "data" {
				status.Error = apierrors.ErrDatasetUnavailable.WithDetails(sh.Message)
			} else if status.Error == nil {
				status.Error = apierrors.ErrServiceUnavailable.WithDetails(name)
			}
		}
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

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	result := map[string]interface{}{
		"version":      hs.version,
		"go_version":   runtime.Version(),
		"os":           runtime.GOOS,
		"arch":         runtime.GOARCH,
		"uptime":       time.Since(hs.startTime).Seconds(),
		"start_time":   hs.startTime.Format(time.RFC3339),
		"current_time": time.Now().Format(time.RFC3339),
	}
	if hs.buildTime != "" {
		result["build_time"] = hs.buildTime
	}
	if hs.buildID != "" {
		result["build_id"] = hs.buildID
	}
	return result
}

func (hs *HealthService) checkDataHealth() ServiceHealth {
	if hs.data == nil {
		return ServiceHealth{Status: "not_ready", Message: "dataset not loaded"}
	}
	info := hs.data.Dataset()
	if info.Records == 0 {
		return ServiceHealth{Status: "not_ready", Message: "dataset is empty"}
	}
	return ServiceHealth{
		Status:  "ready",
		Message: fmt.Sprintf("%d records from %d files", info.Records, len(info.Files)),
		Uptime:  time.Since(info.LoadedAt).Round(time.Second).String(),
	}
}

func (hs *HealthService) checkWebSocketHealth() ServiceHealth {
	if hs.clients == nil {
		return ServiceHealth{Status: "ready", Message: "live queries disabled"}
	}
	return ServiceHealth{
		Status:  "ready",
		Message: fmt.Sprintf("%d clients connected", hs.clients.ClientCount()),
		Uptime:  time.Since(hs.startTime).String(),
	}
}

func (hs *HealthService) checkCacheHealth(ctx context.Context) ServiceHealth {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := hs.cache.Ping(ctx); err != nil {
		// Queries still work without the cache
		return ServiceHealth{Status: "degraded", Message: fmt.Sprintf("cache unreachable: %v", err)}
	}
	return ServiceHealth{Status: "ready", Message: "cache reachable"}
}
