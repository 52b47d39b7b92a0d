package client

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
)

// PhoneIndex is a bloom-filter membership pre-check over client phone
// numbers. Order creation looks up the client by phone on every request;
// for first-time buyers the index answers "definitely unknown" without a
// database round trip. False positives fall through to the exact query,
// so the index never changes observable behavior.
type PhoneIndex struct {
	mu     sync.RWMutex
	filter *bloom.BloomFilter
}

// NewPhoneIndex creates an index sized for the expected number of clients
// with the given false positive rate.
func NewPhoneIndex(capacity uint, fpr float64) *PhoneIndex {
	return &PhoneIndex{filter: bloom.NewWithEstimates(capacity, fpr)}
}

// Warm adds all known phone numbers, typically loaded at startup.
func (i *PhoneIndex) Warm(phones []string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	for _, p := range phones {
		i.filter.AddString(p)
	}
}

// Add records a newly created client's phone number.
func (i *PhoneIndex) Add(phone string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.filter.AddString(phone)
}

// MayExist reports whether the phone number might be known. A false result
// is definitive: no client with this phone has been seen by this index.
func (i *PhoneIndex) MayExist(phone string) bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.filter.TestString(phone)
}
