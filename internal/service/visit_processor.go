package service

import (
	"context"
	"sync"
	"time"

	"github.com/SergeiKhy/shortlinks/internal/repository"
	"go.uber.org/zap"
)

// Константы worker pool
const (
	defaultWorkerCount   = 3    // Количество воркеров
	defaultChannelBuffer = 1000 // Размер буфера канала
	maxRetries           = 3    // Максимальное количество попыток
)

// VisitEvent событие успешного разыменования ссылки
type VisitEvent struct {
	LinkID  string
	OwnerID string
}

// VisitProcessor асинхронно поддерживает кэш после посещений.
// Счётчик посещений уже атомарно записан в БД к моменту события,
// поэтому потеря события при переполнении буфера безопасна: протухает
// только кэшированный список владельца, и то не дольше его TTL.
type VisitProcessor interface {
	Start()
	Stop()
	Record(ctx context.Context, event *VisitEvent) error
}

// visitProcessor реализация на worker pool
type visitProcessor struct {
	cacheRepo    repository.CacheRepository
	logger       *zap.Logger
	visitChannel chan *VisitEvent
	workerCount  int
	wg           sync.WaitGroup
	ctx          context.Context
	cancel       context.CancelFunc
}

// NewVisitProcessor создаёт новый экземпляр процессора посещений
func NewVisitProcessor(cacheRepo repository.CacheRepository, logger *zap.Logger) VisitProcessor {
	return &visitProcessor{
		cacheRepo:    cacheRepo,
		logger:       logger,
		visitChannel: make(chan *VisitEvent, defaultChannelBuffer),
		workerCount:  defaultWorkerCount,
	}
}

// Start запускает worker pool
func (p *visitProcessor) Start() {
	p.ctx, p.cancel = context.WithCancel(context.Background())

	p.logger.Info("Запуск воркеров процессора посещений", zap.Int("count", p.workerCount))

	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Stop корректно останавливает worker pool
func (p *visitProcessor) Stop() {
	p.logger.Info("Остановка процессора посещений...")
	p.cancel()
	p.wg.Wait()
	p.logger.Info("Процессор посещений остановлен")
}

// worker обрабатывает события посещений из канала
func (p *visitProcessor) worker(id int) {
	defer p.wg.Done()

	p.logger.Debug("Воркер посещений запущен", zap.Int("id", id))

	for {
		select {
		case <-p.ctx.Done():
			p.logger.Debug("Воркер посещений остановлен", zap.Int("id", id))
			return

		case event, ok := <-p.visitChannel:
			if !ok {
				return
			}
			p.processVisit(event)
		}
	}
}

// processVisit сбрасывает кэш списка ссылок владельца с retry логикой
func (p *visitProcessor) processVisit(event *VisitEvent) {
	ctx, cancel := context.WithTimeout(p.ctx, 5*time.Second)
	defer cancel()

	var err error
	for i := 0; i < maxRetries; i++ {
		if err = p.cacheRepo.InvalidateOwner(ctx, event.OwnerID); err == nil {
			return
		}
		if i < maxRetries-1 {
			p.logger.Debug("Повторная попытка сброса кэша",
				zap.String("owner_id", event.OwnerID),
				zap.Int("attempt", i+1),
				zap.Error(err),
			)
			time.Sleep(time.Duration(i+1) * 100 * time.Millisecond)
		}
	}

	p.logger.Warn("Не удалось сбросить кэш владельца после всех попыток",
		zap.String("link_id", event.LinkID),
		zap.String("owner_id", event.OwnerID),
		zap.Error(err),
	)
}

// Record отправляет событие посещения в worker pool (неблокирующая операция)
func (p *visitProcessor) Record(ctx context.Context, event *VisitEvent) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case p.visitChannel <- event:
		return nil
	default:
		// Канал заполнен: кэш догонит по TTL, запрос не блокируем
		p.logger.Warn("Буфер канала посещений заполнен, событие потеряно",
			zap.String("link_id", event.LinkID),
		)
		return nil
	}
}
