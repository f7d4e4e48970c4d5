// Package jobs runs the background work of the fulfillment backend.
//
// # Available Jobs
//
// 1. WorkerPool - N general workers and M single-item workers, each polling the
// queue every WORKER_POLL_INTERVAL and driving one batch at a time to a
// terminal status
// 2. HeartbeatJob - records a heartbeat for every pool worker on
// HEARTBEAT_SCHEDULE
// 3. RetentionJob - purges terminal batches older than RETENTION_DAYS on
// RETENTION_SCHEDULE
//
// # Usage
//
//	jobManager, err := jobs.NewJobManager(pool, heartbeatHandler, purgeHandler, cfg, logger)
//	if err != nil {
//		log.Fatal("Failed to configure jobs:", err)
//	}
//
//	if err := jobManager.StartAll(ctx); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// # Scheduling
//
// Schedules use robfig/cron expressions with an optional seconds field, or
// descriptors such as "@every 30s" and "@daily".
//
// # Error Handling
//
// - Workers ignore idle outcomes (nothing queued, paused, lost claim race)
// - Batch failures are already recorded as incidents by the use cases; workers only log them
// - A failed job start stops the jobs already running
package jobs
