package main

import (
	"context"
	"log"
	"os"
	"time"

	"dressupapi/dbhelper"
	"dressupapi/services"
	"dressupapi/tasks"

	firebase "firebase.google.com/go/v4"
	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"
)

func runScheduler() {
	scheduler := asynq.NewScheduler(asynq.RedisClientOpt{Addr: os.Getenv("ASYNC_BROKER_ADDRESS")}, &asynq.SchedulerOpts{
		LogLevel: asynq.InfoLevel,
	})

	scheduled := []struct {
		cron string
		task *asynq.Task
		desc string
	}{
		{
			cron: "0 7 * * *", // 7:00 AM daily
			task: tasks.NewLookRemindersTask(),
			desc: "Look of the day reminders",
		},
		{
			cron: "0 * * * *", // hourly
			task: tasks.NewExpireDraftPlansTask(),
			desc: "Expire draft travel plans",
		},
	}

	for _, t := range scheduled {
		entryID, err := scheduler.Register(t.cron, t.task, asynq.Queue("notify"))
		if err != nil {
			log.Fatalf("Failed to register task '%s': %v", t.desc, err)
		}
		log.Printf("Registered task '%s' with ID: %s, cron: %s", t.desc, entryID, t.cron)
	}

	log.Println("Starting scheduler...")
	if err := scheduler.Run(); err != nil {
		log.Fatalf("Scheduler failed: %v", err)
	}
}

func main() {
	err := sentry.Init(sentry.ClientOptions{
		Environment: services.GetEnv("ENV", "local"),
		Release:     "dressupapi-worker@1.0.0",
	})
	if err != nil {
		log.Fatalf("sentry.Init: %s", err)
	}
	defer sentry.Flush(2 * time.Second)

	srv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: os.Getenv("ASYNC_BROKER_ADDRESS")},
		asynq.Config{Concurrency: 10, Queues: map[string]int{
			"generate": 7,
			"notify":   3,
		}},
	)
	app, err := firebase.NewApp(context.Background(), nil)
	if err != nil {
		log.Fatalf("error initializing firebase app: %v\n", err)
		return
	}
	db := dbhelper.SetupDB()
	notifier := services.PushNotifier{App: app, DB: db}

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeReclassifyCloset, func(ctx context.Context, t *asynq.Task) error {
		return tasks.HandleReclassifyClosetTask(ctx, t, db)
	})
	mux.HandleFunc(tasks.TypeLookReminders, func(ctx context.Context, t *asynq.Task) error {
		return tasks.ScheduledLookRemindersTask(ctx, t, db, notifier)
	})
	mux.HandleFunc(tasks.TypeExpireDraftPlans, func(ctx context.Context, t *asynq.Task) error {
		return tasks.ScheduledExpireDraftPlansTask(ctx, t, db)
	})

	go runScheduler()
	if err := srv.Run(mux); err != nil {
		log.Fatal(err)
	}
}
