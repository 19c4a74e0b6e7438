package service

import (
	"math/rand/v2"
	"sync"

	"github.com/saaayf/smartmedishop/internal/domain/model"
)

var (
	simulatedPaymentMethods = []string{"credit_card", "debit_card", "paypal", "bank_transfer"}
	simulatedDevices        = []string{"desktop", "mobile", "tablet"}
	simulatedCountries      = []string{"US", "CA", "UK", "DE", "FR"}
)

// Simulator generates random storefront transactions for exercising the
// detector. It is safe for concurrent use.
type Simulator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulator creates a Simulator drawing from rng. A nil rng uses a
// randomly seeded source.
func NewSimulator(rng *rand.Rand) *Simulator {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Simulator{rng: rng}
}

// Next returns a new random transaction. Attributes it does not draw keep
// their defaults.
func (s *Simulator) Next() model.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := model.DefaultTransaction()
	age := s.intBetween(18, 65)
	avg := s.uniform(50, 500)

	tx.Amount = s.uniform(10, 1000)
	tx.Hour = s.intBetween(0, 23)
	tx.DayOfWeek = s.intBetween(0, 6)
	tx.UserAge = &age
	tx.PaymentMethod = pick(s.rng, simulatedPaymentMethods)
	tx.TransactionCount24h = s.intBetween(1, 20)
	tx.TransactionCount7d = s.intBetween(1, 50)
	tx.AvgTransactionAmount = &avg
	tx.UserRegistrationDays = float64(s.intBetween(1, 365))
	tx.DeviceType = pick(s.rng, simulatedDevices)
	tx.LocationCountry = pick(s.rng, simulatedCountries)
	return tx
}

func (s *Simulator) uniform(lo, hi float64) float64 {
	return lo + s.rng.Float64()*(hi-lo)
}

// intBetween draws from the closed range [lo, hi].
func (s *Simulator) intBetween(lo, hi int) int {
	return lo + s.rng.IntN(hi-lo+1)
}

func pick(rng *rand.Rand, options []string) string {
	return options[rng.IntN(len(options))]
}
