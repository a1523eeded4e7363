package downloader

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"twitterdl/pkg/models"
)

// MockClient is a mock media downloader.
type MockClient struct {
	downloadDelay   time.Duration
	downloadError   error
	downloadCounter int32
}

func (m *MockClient) Download(ctx context.Context, url string) ([]byte, error) {
	atomic.AddInt32(&m.downloadCounter, 1)
	if m.downloadDelay > 0 {
		time.Sleep(m.downloadDelay)
	}
	if m.downloadError != nil {
		return nil, m.downloadError
	}
	return []byte("mock media data"), nil
}

func (m *MockClient) GetDownloadCount() int {
	return int(atomic.LoadInt32(&m.downloadCounter))
}

// MockStorageManager is a mock media storage.
type MockStorageManager struct {
	savedFiles map[string]bool
	saveError  error
	mu         sync.Mutex
}

func NewMockStorageManager() *MockStorageManager {
	return &MockStorageManager{
		savedFiles: make(map[string]bool),
	}
}

func (m *MockStorageManager) IsSaved(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.savedFiles[name]
}

func (m *MockStorageManager) SaveMedia(r io.Reader, name string) error {
	if m.saveError != nil {
		return m.saveError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.savedFiles[name] = true
	return nil
}

func (m *MockStorageManager) GetSavedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.savedFiles)
}

func collectResults(pool *WorkerPool) (*[]DownloadResult, *sync.WaitGroup) {
	var results []DownloadResult
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for result := range pool.Results() {
			results = append(results, result)
		}
	}()
	return &results, &wg
}

func TestWorkerPoolBasicFunctionality(t *testing.T) {
	mockClient := &MockClient{downloadDelay: 10 * time.Millisecond}
	mockStorage := NewMockStorageManager()

	pool := NewWorkerPool(3, mockClient, mockStorage, nil)
	pool.Start()

	results, wg := collectResults(pool)

	numJobs := 10
	for i := 0; i < numJobs; i++ {
		job := DownloadJob{
			URL:      fmt.Sprintf("https://video.twimg.com/media%d.mp4", i),
			Filename: fmt.Sprintf("123_%d.mp4", i),
			TweetID:  "123",
		}
		if err := pool.Submit(job); err != nil {
			t.Errorf("Failed to submit job %d: %v", i, err)
		}
	}

	pool.Stop()
	wg.Wait()

	if len(*results) != numJobs {
		t.Errorf("Expected %d results, got %d", numJobs, len(*results))
	}

	successCount := 0
	for _, result := range *results {
		if result.Success {
			successCount++
		}
	}
	if successCount != numJobs {
		t.Errorf("Expected %d successful downloads, got %d", numJobs, successCount)
	}

	if mockClient.GetDownloadCount() != numJobs {
		t.Errorf("Expected %d download calls, got %d", numJobs, mockClient.GetDownloadCount())
	}
	if mockStorage.GetSavedCount() != numJobs {
		t.Errorf("Expected %d saved files, got %d", numJobs, mockStorage.GetSavedCount())
	}
}

func TestWorkerPoolWithErrors(t *testing.T) {
	mockClient := &MockClient{
		downloadError: fmt.Errorf("download error"),
	}
	mockStorage := NewMockStorageManager()

	pool := NewWorkerPool(2, mockClient, mockStorage, nil)
	pool.Start()

	results, wg := collectResults(pool)

	numJobs := 5
	for i := 0; i < numJobs; i++ {
		job := DownloadJob{
			URL:      fmt.Sprintf("https://video.twimg.com/media%d.mp4", i),
			Filename: fmt.Sprintf("123_%d.mp4", i),
			TweetID:  "123",
		}
		if err := pool.Submit(job); err != nil {
			t.Errorf("Failed to submit job %d: %v", i, err)
		}
	}

	pool.Stop()
	wg.Wait()

	if len(*results) != numJobs {
		t.Errorf("Expected %d results, got %d", numJobs, len(*results))
	}

	for _, result := range *results {
		if result.Success {
			t.Error("Expected all downloads to fail")
		}
		if result.Error == nil {
			t.Error("Expected error in result")
		}
	}
}

func TestWorkerPoolConcurrency(t *testing.T) {
	mockClient := &MockClient{downloadDelay: 100 * time.Millisecond}
	mockStorage := NewMockStorageManager()

	pool := NewWorkerPool(5, mockClient, mockStorage, nil)
	pool.Start()

	results, wg := collectResults(pool)

	numJobs := 10
	startTime := time.Now()

	for i := 0; i < numJobs; i++ {
		job := DownloadJob{
			URL:      fmt.Sprintf("https://video.twimg.com/media%d.mp4", i),
			Filename: fmt.Sprintf("123_%d.mp4", i),
			TweetID:  "123",
		}
		if err := pool.Submit(job); err != nil {
			t.Errorf("Failed to submit job %d: %v", i, err)
		}
	}

	pool.Stop()
	wg.Wait()

	elapsed := time.Since(startTime)

	// 10 jobs at 100ms across 5 workers should take roughly two batches.
	expectedTime := 300 * time.Millisecond
	if elapsed > expectedTime {
		t.Errorf("Downloads took too long: %v (expected < %v)", elapsed, expectedTime)
	}

	if len(*results) != numJobs {
		t.Errorf("Expected %d results, got %d", numJobs, len(*results))
	}
}

func TestWorkerPoolDuplicateDetection(t *testing.T) {
	mockClient := &MockClient{}
	mockStorage := NewMockStorageManager()

	mockStorage.savedFiles["123_1.jpg"] = true
	mockStorage.savedFiles["123_2.jpg"] = true

	pool := NewWorkerPool(2, mockClient, mockStorage, nil)
	pool.Start()

	results, wg := collectResults(pool)

	jobs := []DownloadJob{
		{URL: "https://pbs.twimg.com/new1.jpg", Filename: "456_1.jpg", TweetID: "456"},
		{URL: "https://pbs.twimg.com/existing1.jpg", Filename: "123_1.jpg", TweetID: "123"},
		{URL: "https://pbs.twimg.com/new2.jpg", Filename: "456_2.jpg", TweetID: "456"},
		{URL: "https://pbs.twimg.com/existing2.jpg", Filename: "123_2.jpg", TweetID: "123"},
	}

	for _, job := range jobs {
		if err := pool.Submit(job); err != nil {
			t.Errorf("Failed to submit job: %v", err)
		}
	}

	pool.Stop()
	wg.Wait()

	if len(*results) != len(jobs) {
		t.Errorf("Expected %d results, got %d", len(jobs), len(*results))
	}

	skipped := 0
	for _, result := range *results {
		if result.Skipped {
			skipped++
		}
	}
	if skipped != 2 {
		t.Errorf("Expected 2 skipped jobs, got %d", skipped)
	}

	// Only the new files should hit the network.
	if mockClient.GetDownloadCount() != 2 {
		t.Errorf("Expected 2 downloads, got %d", mockClient.GetDownloadCount())
	}
	if mockStorage.GetSavedCount() != 4 {
		t.Errorf("Expected 4 saved files, got %d", mockStorage.GetSavedCount())
	}
}

func TestJobsForTweet(t *testing.T) {
	result := &models.TweetResult{
		ID: "789",
		Media: []models.Media{
			{Type: models.MediaTypePhoto, Image: "https://pbs.twimg.com/media/a.jpg"},
			{Type: models.MediaTypeVideo, Videos: []models.VideoVariant{
				{Bitrate: 256000, URL: "https://video.twimg.com/low.mp4"},
				{Bitrate: 832000, URL: "https://video.twimg.com/high.mp4"},
			}},
			{Type: models.MediaTypeVideo}, // no variants, skipped
		},
	}

	jobs := JobsForTweet(result)
	if len(jobs) != 2 {
		t.Fatalf("Expected 2 jobs, got %d", len(jobs))
	}

	if jobs[0].URL != "https://pbs.twimg.com/media/a.jpg" || jobs[0].Filename != "789_1.jpg" {
		t.Errorf("Unexpected photo job: %+v", jobs[0])
	}
	if jobs[1].URL != "https://video.twimg.com/high.mp4" || jobs[1].Filename != "789_2.mp4" {
		t.Errorf("Expected highest-bitrate variant, got %+v", jobs[1])
	}

	if JobsForTweet(nil) != nil {
		t.Error("Nil result should produce no jobs")
	}
}
