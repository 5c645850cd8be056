package services

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/onerilhan/thankatech-ledger/internal/metrics"
	"github.com/onerilhan/thankatech-ledger/internal/notify"
)

// NotificationJob commit sonrası gönderilecek bildirim
type NotificationJob struct {
	Address  string
	Template notify.Template
	Params   map[string]string
}

// Notifier servislerin bildirim bıraktığı yer
type Notifier interface {
	Enqueue(job NotificationJob) bool
}

// NotificationQueue bildirimleri worker'larla gönderir.
// Enqueue asla bloklamaz; kuyruk doluysa bildirim düşer ve loglanır.
type NotificationQueue struct {
	jobChan    chan NotificationJob
	workers    int
	bufferSize int
	timeout    time.Duration
	wg         sync.WaitGroup
	dispatcher notify.Dispatcher

	mu     sync.RWMutex
	closed bool
}

// NewNotificationQueue yeni queue oluşturur
func NewNotificationQueue(workers int, dispatcher notify.Dispatcher, bufferSize int) *NotificationQueue {
	if workers <= 0 {
		workers = 1
	}
	return &NotificationQueue{
		jobChan:    make(chan NotificationJob, bufferSize),
		workers:    workers,
		bufferSize: bufferSize,
		timeout:    10 * time.Second,
		dispatcher: dispatcher,
	}
}

// Start worker'ları başlatır
func (q *NotificationQueue) Start() {
	log.Info().
		Int("workers", q.workers).
		Int("buffer_size", q.bufferSize).
		Msg("🔄 Bildirim kuyruğu başlatıldı")

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}
}

// Stop yeni işleri reddeder, kuyruktakileri bitirip döner
func (q *NotificationQueue) Stop() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.jobChan)
	q.mu.Unlock()

	q.wg.Wait()
	log.Info().Msg("⏹️ Bildirim kuyruğu durduruldu")
}

// Enqueue bildirimi kuyruğa bırakır; adres boşsa veya kuyruk doluysa false
func (q *NotificationQueue) Enqueue(job NotificationJob) bool {
	if job.Address == "" {
		log.Debug().Str("template", string(job.Template)).Msg("Bildirim adresi yok, atlandı")
		return false
	}

	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return false
	}

	select {
	case q.jobChan <- job:
		log.Debug().Str("template", string(job.Template)).Msg("📤 Bildirim kuyruğa eklendi")
		return true
	default:
		log.Warn().Str("template", string(job.Template)).Msg("⚠️ Bildirim kuyruğu dolu, bildirim düşürüldü")
		metrics.RecordNotification(string(job.Template), false)
		return false
	}
}

func (q *NotificationQueue) worker(id int) {
	defer q.wg.Done()

	for job := range q.jobChan {
		q.dispatch(id, job)
	}
}

// dispatch tek bildirimi gönderir; panik ve hatalar yutulur
func (q *NotificationQueue) dispatch(workerID int, job NotificationJob) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Interface("recover", r).
				Int("worker_id", workerID).
				Msg("🚨 Bildirim worker'ı panikledi ama toparlandı")
			metrics.RecordNotification(string(job.Template), false)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()

	if err := q.dispatcher.Send(ctx, job.Address, job.Template, job.Params); err != nil {
		log.Error().Err(err).
			Int("worker_id", workerID).
			Str("template", string(job.Template)).
			Msg("❌ Bildirim gönderilemedi")
		metrics.RecordNotification(string(job.Template), false)
		return
	}
	metrics.RecordNotification(string(job.Template), true)
}
