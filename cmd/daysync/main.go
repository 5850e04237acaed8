// Command daysync mirrors remote calendars into local storage.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/arcadia-labs/daysync/internal/adapters/driven/config/file"
	"github.com/arcadia-labs/daysync/internal/adapters/driven/storage/sqlite"
	"github.com/arcadia-labs/daysync/internal/adapters/driving/cli"
	"github.com/arcadia-labs/daysync/internal/connectors/google"
	"github.com/arcadia-labs/daysync/internal/connectors/google/calendar"
	"github.com/arcadia-labs/daysync/internal/core/services"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("initialise config: %w", err)
	}

	store, err := sqlite.NewStore(configStore.GetString("storage.data_dir"))
	if err != nil {
		return fmt.Errorf("initialise storage: %w", err)
	}
	defer store.Close()

	refresher := google.NewCredentialRefresher(store.CredentialsStore(), google.OAuthAppConfig{
		ClientID:     configStore.GetString("google.client_id"),
		ClientSecret: configStore.GetString("google.client_secret"),
	})

	calendarCfg := calendar.DefaultConfig()
	if maxResults := configStore.GetInt("google.max_results"); maxResults > 0 {
		calendarCfg.MaxResults = int64(maxResults)
	}
	factory := calendar.NewFactory(refresher, calendarCfg)

	syncCfg := services.SyncConfig{}
	if workers := configStore.GetInt("sync.workers"); workers > 0 {
		syncCfg.Workers = workers
	}
	orchestrator := services.NewSyncOrchestrator(
		store.SyncStateStore(),
		store.EventStore(),
		factory,
		syncCfg,
		nil,
	)

	schedCfg := services.SchedulerConfig{}
	if mins := configStore.GetInt("scheduler.sync_interval_minutes"); mins > 0 {
		schedCfg.SyncInterval = time.Duration(mins) * time.Minute
	}
	scheduler := services.NewScheduler(
		schedCfg,
		store.SchedulerStore(),
		store.SyncStateStore(),
		orchestrator,
	)

	cli.Configure(orchestrator, scheduler, store.SyncStateStore(), store.CredentialsStore())
	return cli.Execute()
}
