package downloader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"twitterdl/pkg/logger"
)

// DownloadJob represents a single media download task.
type DownloadJob struct {
	URL      string
	Filename string
	TweetID  string
}

// DownloadResult represents the outcome of a download job.
type DownloadResult struct {
	Job      DownloadJob
	Success  bool
	Skipped  bool
	Error    error
	Duration time.Duration
	Size     int
}

// MediaDownloader fetches media bytes.
type MediaDownloader interface {
	Download(ctx context.Context, url string) ([]byte, error)
}

// MediaStorage persists media bytes and answers duplicate checks.
type MediaStorage interface {
	IsSaved(name string) bool
	SaveMedia(r io.Reader, name string) error
}

// WorkerPool manages concurrent media download workers.
type WorkerPool struct {
	numWorkers  int
	jobQueue    chan DownloadJob
	resultQueue chan DownloadResult
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	client      MediaDownloader
	storage     MediaStorage
	logger      logger.Logger
}

// NewWorkerPool creates a download worker pool.
func NewWorkerPool(numWorkers int, client MediaDownloader, storage MediaStorage, log logger.Logger) *WorkerPool {
	ctx, cancel := context.WithCancel(context.Background())

	if log == nil {
		log = logger.GetLogger()
	}

	return &WorkerPool{
		numWorkers:  numWorkers,
		jobQueue:    make(chan DownloadJob, numWorkers*2),
		resultQueue: make(chan DownloadResult, numWorkers),
		ctx:         ctx,
		cancel:      cancel,
		client:      client,
		storage:     storage,
		logger:      log,
	}
}

// Start launches all workers.
func (wp *WorkerPool) Start() {
	wp.logger.InfoWithFields("Starting worker pool", map[string]interface{}{
		"num_workers": wp.numWorkers,
	})

	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

// Stop drains the queue, waits for workers, and closes the result channel.
func (wp *WorkerPool) Stop() {
	close(wp.jobQueue)
	wp.wg.Wait()
	close(wp.resultQueue)
	wp.cancel()

	wp.logger.Debug("Worker pool stopped")
}

// Submit adds a download job to the queue.
func (wp *WorkerPool) Submit(job DownloadJob) error {
	select {
	case wp.jobQueue <- job:
		wp.logger.DebugWithFields("Job submitted to queue", map[string]interface{}{
			"tweet_id": job.TweetID,
			"filename": job.Filename,
		})
		return nil
	case <-wp.ctx.Done():
		return fmt.Errorf("worker pool is shutting down")
	}
}

// Results returns the channel download results arrive on.
func (wp *WorkerPool) Results() <-chan DownloadResult {
	return wp.resultQueue
}

// worker consumes jobs until the queue closes or the pool is cancelled.
func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	for job := range wp.jobQueue {
		select {
		case <-wp.ctx.Done():
			return
		default:
		}

		result := wp.processJob(job, id)

		select {
		case wp.resultQueue <- result:
		case <-wp.ctx.Done():
			return
		}
	}
}

// processJob downloads one media file and stores it.
func (wp *WorkerPool) processJob(job DownloadJob, workerID int) DownloadResult {
	start := time.Now()
	result := DownloadResult{Job: job}

	if wp.storage.IsSaved(job.Filename) {
		wp.logger.DebugWithFields("Media already saved", map[string]interface{}{
			"worker_id": workerID,
			"filename":  job.Filename,
		})
		result.Success = true
		result.Skipped = true
		result.Duration = time.Since(start)
		return result
	}

	data, err := wp.client.Download(wp.ctx, job.URL)
	if err != nil {
		result.Error = fmt.Errorf("download failed: %w", err)
		result.Duration = time.Since(start)

		wp.logger.ErrorWithFields("Worker failed to download media", map[string]interface{}{
			"worker_id": workerID,
			"filename":  job.Filename,
			"error":     err.Error(),
		})

		return result
	}

	result.Size = len(data)

	if err := wp.storage.SaveMedia(bytes.NewReader(data), job.Filename); err != nil {
		result.Error = fmt.Errorf("save failed: %w", err)
		result.Duration = time.Since(start)

		wp.logger.ErrorWithFields("Worker failed to save media", map[string]interface{}{
			"worker_id": workerID,
			"filename":  job.Filename,
			"error":     err.Error(),
		})

		return result
	}

	result.Success = true
	result.Duration = time.Since(start)

	wp.logger.DebugWithFields("Worker completed job", map[string]interface{}{
		"worker_id": workerID,
		"filename":  job.Filename,
		"size":      result.Size,
	})

	return result
}

// GetQueueSize returns the current number of queued jobs.
func (wp *WorkerPool) GetQueueSize() int {
	return len(wp.jobQueue)
}

// GetActiveWorkers returns the number of workers in the pool.
func (wp *WorkerPool) GetActiveWorkers() int {
	return wp.numWorkers
}
