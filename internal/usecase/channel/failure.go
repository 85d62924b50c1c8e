package channel

import (
	"math/rand"
	"sync"

	"github.com/LavaJover/shvark-rms-service/internal/domain"
)

// Failure - ответ OTA при симулированной ошибке.
type Failure struct {
	StatusCode int
	Message    string
}

// Таблица ошибок симулятора.
var failureTable = []Failure{
	{400, "Rate outside acceptable range"},
	{401, "Authentication failed"},
	{404, "Hotel not found"},
	{500, "Room type mapping error"},
	{503, "Network timeout"},
}

// FailureInjector решает, завершится ли пуш ошибкой.
type FailureInjector interface {
	Inject(key domain.Key) (Failure, bool)
}

// RandomInjector - детерминированный при фиксированном seed источник ошибок.
type RandomInjector struct {
	mu   sync.Mutex
	rate float64
	rnd  *rand.Rand
}

func NewRandomInjector(rate float64, seed int64) *RandomInjector {
	return &RandomInjector{rate: rate, rnd: rand.New(rand.NewSource(seed))}
}

func (r *RandomInjector) Inject(domain.Key) (Failure, bool) {
	if r.rate <= 0 {
		return Failure{}, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rnd.Float64() >= r.rate {
		return Failure{}, false
	}
	return failureTable[r.rnd.Intn(len(failureTable))], true
}

type NeverFail struct{}

func (NeverFail) Inject(domain.Key) (Failure, bool) { return Failure{}, false }

// FailChannels всегда отказывает для перечисленных каналов.
type FailChannels struct {
	Channels map[string]Failure
}

func (f FailChannels) Inject(key domain.Key) (Failure, bool) {
	failure, ok := f.Channels[key.ChannelID]
	return failure, ok
}
