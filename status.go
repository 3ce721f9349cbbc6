package todo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"
)

const statusOnline = "online"

type (
	systemStatus struct {
		Status           string        `json:"status"`
		Time             time.Time     `json:"time"`
		Uptime           string        `json:"uptime"`
		GitHash          string        `json:"gitHash"`
		OrganisationName string        `json:"organisationName"`
		ApplicationName  string        `json:"applicationName"`
		InstanceName     string        `json:"instanceName"`
		Environment      Environment   `json:"environment"`
		Web              HTTP          `json:"web"`
		Storage          storageStatus `json:"storage"`
	}

	storageStatus struct {
		Backend  StorageBackend `json:"backend"`
		Status   string         `json:"status"`
		Postgres *Postgres      `json:"postgres,omitempty"`
		Redis    *Redis         `json:"redis,omitempty"`
	}
)

// getSystemStatus is offline, if the storage backend is not reachable.
func getSystemStatus(ctx context.Context, c *Container) systemStatus {
	conf := c.Config

	storage := storageStatus{
		Backend: conf.Storage.Backend,
		Status:  statusOnline,
	}

	if c.PGx != nil {
		storage.Postgres = &conf.Postgres

		if err := c.PGx.Ping(ctx); err != nil {
			storage.Status = fmt.Errorf("err: %w", err).Error()
		}
	}

	if c.Redis != nil {
		storage.Redis = &conf.Redis

		if err := c.Redis.Ping(ctx).Err(); err != nil {
			storage.Status = fmt.Errorf("err: %w", err).Error()
		}
	}

	status := statusOnline
	if storage.Status != statusOnline {
		status = "offline"
	}

	return systemStatus{
		Status:           status,
		Time:             time.Now(),
		Uptime:           time.Since(c.startedAt).Round(time.Second).String(),
		GitHash:          gitHash(),
		OrganisationName: conf.OrganisationName,
		ApplicationName:  conf.ApplicationName,
		InstanceName:     instanceName(conf),
		Environment:      conf.Environment,
		Web:              conf.HTTP,
		Storage:          storage,
	}
}

func jsonEncode(w io.Writer, v any) error {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		return fmt.Errorf("could not encode json: %w", err)
	}

	return nil
}
