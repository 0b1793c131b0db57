package service

import (
	"context"
	"sync"
	"time"

	"ai-bizchat-be/internal/pkg/logger"
	"ai-bizchat-be/pkg/chat/cache"
)

const moduleWarmup = "warmup_service"

type IWarmupService interface {
	// Start launches the background refresh loop. It returns immediately.
	Start(ctx context.Context)
	// Run warms every cluster question once and blocks until done. Returns
	// how many questions were enqueued.
	Run(ctx context.Context) int
}

// warmupService keeps the response cache hot by pushing canned cluster
// questions through the real pipeline with a fixed worker pool.
type warmupService struct {
	chat     IChatService
	log      logger.ILogger
	workers  int
	interval time.Duration
}

func NewWarmupService(chat IChatService, log logger.ILogger, workers int, interval time.Duration) IWarmupService {
	if workers < 1 {
		workers = 1
	}
	return &warmupService{
		chat:     chat,
		log:      log,
		workers:  workers,
		interval: interval,
	}
}

func (w *warmupService) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				w.Run(ctx)
			}
		}
	}()
}

type warmJob struct {
	question string
	language string
}

func (w *warmupService) Run(ctx context.Context) int {
	jobs := make(chan warmJob)

	var wg sync.WaitGroup
	for i := 0; i < w.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				if err := w.chat.Prime(ctx, job.question, job.language); err != nil {
					w.log.Warn(moduleWarmup, "warm-up question failed", map[string]interface{}{
						"question": job.question,
						"error":    err.Error(),
					})
				}
			}
		}()
	}

	enqueued := 0
	for _, language := range []string{"he", "en"} {
		for _, q := range cache.WarmupQuestions(language) {
			select {
			case <-ctx.Done():
				close(jobs)
				wg.Wait()
				return enqueued
			case jobs <- warmJob{question: q, language: language}:
				enqueued++
			}
		}
	}
	close(jobs)
	wg.Wait()

	w.log.Info(moduleWarmup, "warm-up pass finished", map[string]interface{}{"questions": enqueued})
	return enqueued
}
