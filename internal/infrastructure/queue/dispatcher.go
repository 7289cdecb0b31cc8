package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tesloshop/catalog-api/internal/api/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 64
)

// FileRemover deletes a stored image file by name.
type FileRemover interface {
	Remove(name string) error
}

// cleanupJob names the files orphaned by one image replacement.
type cleanupJob struct {
	productID string
	names     []string
}

// Dispatcher removes orphaned image files asynchronously after a product's
// image set is replaced. Jobs are sharded to a fixed set of workers by
// product id, so cleanups for the same product run in order.
type Dispatcher struct {
	workers []chan cleanupJob
	store   FileRemover
	prefix  string
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// urlPrefix is the public prefix of locally stored images; URLs outside it
// are skipped. If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, store FileRemover, urlPrefix string, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan cleanupJob, numWorkers),
		store:   store,
		prefix:  urlPrefix,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan cleanupJob, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// EnqueueRemoval queues the dropped URLs of one replacement. URLs that do
// not point at local storage are filtered out here; if nothing is left the
// job is skipped. Non-blocking up to channelBuffer capacity.
func (d *Dispatcher) EnqueueRemoval(productID string, urls []string) {
	names := make([]string, 0, len(urls))
	for _, url := range urls {
		if name, ok := d.localName(url); ok {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return
	}
	idx := d.shardIndex(productID)
	d.workers[idx] <- cleanupJob{productID: productID, names: names}
	metrics.ImageCleanupQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
}

// localName strips the public prefix from a URL; bare names (seed data) pass
// through as-is when they carry no scheme.
func (d *Dispatcher) localName(url string) (string, bool) {
	if d.prefix != "" && strings.HasPrefix(url, d.prefix) {
		name := strings.TrimPrefix(url, d.prefix)
		return strings.TrimPrefix(name, "/"), true
	}
	if !strings.Contains(url, "://") && !strings.Contains(url, "/") {
		return url, true
	}
	return "", false
}

// shardIndex maps a product id deterministically to a worker index.
func (d *Dispatcher) shardIndex(productID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(productID))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan cleanupJob) {
	worker := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-ch:
			if !ok {
				return
			}
			for _, name := range job.names {
				if err := d.store.Remove(name); err != nil {
					d.log.Warn().Err(err).
						Str("product_id", job.productID).
						Str("image", name).
						Msg("orphaned image cleanup failed")
				}
			}
			metrics.ImageCleanupQueueDepth.WithLabelValues(worker).Set(float64(len(ch)))
		}
	}
}
