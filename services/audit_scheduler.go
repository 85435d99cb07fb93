package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"smart_apartment/models"
)

// DefaultAuditProbability вероятность неисправности при аудите в процентах
const DefaultAuditProbability = 10

// DefaultAuditSchedule ежедневно в 9:00 (формат с секундами)
const DefaultAuditSchedule = "0 0 9 * * *"

// RandomSource источник случайных чисел для аудита
type RandomSource interface {
	Intn(n int) int
}

type lockedRandom struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func (r *lockedRandom) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.Intn(n)
}

// NewRandomSource создает потокобезопасный источник случайных чисел
func NewRandomSource(seed int64) RandomSource {
	return &lockedRandom{rnd: rand.New(rand.NewSource(seed))}
}

// AuditReport результат ежедневного аудита
type AuditReport struct {
	StartedAt  time.Time          `json:"started_at"`
	FinishedAt time.Time          `json:"finished_at"`
	Scanned    int                `json:"scanned"`
	Checked    int                `json:"checked"`
	Faults     []models.Equipment `json:"faults"`
}

// AuditScheduler ежедневный аудит оборудования, имитирующий случайные поломки
type AuditScheduler struct {
	equipment   *EquipmentService
	notifier    Notifier
	random      RandomSource
	probability int
	metrics     *Metrics
	cron        *cron.Cron

	mu      sync.Mutex
	running bool
}

// NewAuditScheduler создает новый экземпляр AuditScheduler
func NewAuditScheduler(equipment *EquipmentService, notifier Notifier, random RandomSource, probability int, metrics *Metrics) *AuditScheduler {
	if random == nil {
		random = NewRandomSource(time.Now().UnixNano())
	}
	if probability < 0 || probability > 100 {
		probability = DefaultAuditProbability
	}
	return &AuditScheduler{
		equipment:   equipment,
		notifier:    notifier,
		random:      random,
		probability: probability,
		metrics:     metrics,
		cron:        cron.New(cron.WithSeconds()),
	}
}

// RunAudit проверяет все Active оборудование и переводит "сломавшееся" в Faulty
func (as *AuditScheduler) RunAudit(ctx context.Context) (AuditReport, error) {
	report := AuditReport{StartedAt: time.Now(), Faults: []models.Equipment{}}

	items, err := as.equipment.List(ctx)
	if err != nil {
		return report, fmt.Errorf("ошибка аудита: %w", err)
	}
	report.Scanned = len(items)
	log.Printf("🔍 Ежедневный аудит: проверка %d единиц оборудования", len(items))

	for _, item := range items {
		if !item.Status.IsHealthy() {
			continue
		}
		report.Checked++

		if as.random.Intn(100) >= as.probability {
			continue
		}

		updated, changed, err := as.equipment.TransitionStatus(ctx, item.ID, models.StatusFaulty)
		if errors.Is(err, models.ErrNotFound) || errors.Is(err, models.ErrValidation) {
			// удалено или уже в ремонте
			continue
		}
		if err != nil {
			return report, fmt.Errorf("ошибка аудита %s: %w", item.Name, err)
		}
		if !changed {
			// неисправность уже зафиксирована после снимка
			continue
		}

		report.Faults = append(report.Faults, updated)
		as.metrics.RecordAuditFault()
		log.Printf("⚠️ Аудит: обнаружен скачок напряжения в %s (%s)", item.Name, item.Location)

		if as.notifier != nil {
			as.notifier.NotifyAll(ctx, fmt.Sprintf("Audit Alert: voltage spike detected in %s (%s)", item.Name, item.Location))
		}
	}

	report.FinishedAt = time.Now()
	log.Printf("✅ Аудит завершен: найдено неисправностей %d", len(report.Faults))
	return report, nil
}

// Start регистрирует аудит по расписанию и запускает планировщик
func (as *AuditScheduler) Start(schedule string) error {
	as.mu.Lock()
	defer as.mu.Unlock()

	if as.running {
		return fmt.Errorf("планировщик аудита уже запущен")
	}
	if schedule == "" {
		schedule = DefaultAuditSchedule
	}

	_, err := as.cron.AddFunc(schedule, func() {
		if _, err := as.RunAudit(context.Background()); err != nil {
			log.Printf("❌ Ошибка планового аудита: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	as.cron.Start()
	as.running = true
	log.Printf("Audit scheduler started (cron: %s)", schedule)
	return nil
}

// Stop останавливает планировщик и ждет завершения текущего аудита
func (as *AuditScheduler) Stop() {
	as.mu.Lock()
	defer as.mu.Unlock()

	if !as.running {
		return
	}
	<-as.cron.Stop().Done()
	as.running = false
	log.Println("Audit scheduler stopped")
}

// NextRun возвращает время следующего планового запуска
func (as *AuditScheduler) NextRun() *time.Time {
	entries := as.cron.Entries()
	if len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}
