// Package memorystorage provides process-local storage: the URL store of the
// shortener and a user store used when no database DSN is configured.
package memorystorage

import (
	"sort"
	"time"

	"github.com/thoas/go-funk"

	"github.com/patric-chuzhbe/usrlinks/internal/models"
)

// URLStore maps short codes to URL records.
//
// URLStore does no locking of its own: the shortener service guards every
// call, together with the code allocation that precedes Put, with one lock.
type URLStore struct {
	records map[string]*models.ShortURL
	now     func() time.Time
}

// NewURLStore returns an empty URLStore.
func NewURLStore() *URLStore {
	return &URLStore{
		records: map[string]*models.ShortURL{},
		now:     time.Now,
	}
}

// Put creates or overwrites the record for code with zero clicks.
func (s *URLStore) Put(code, url string) {
	s.records[code] = &models.ShortURL{
		Code:      code,
		URL:       url,
		CreatedAt: s.now().UTC(),
		Clicks:    0,
	}
}

// Get returns a copy of the record for code.
func (s *URLStore) Get(code string) (models.ShortURL, bool) {
	record, found := s.records[code]
	if !found {
		return models.ShortURL{}, false
	}
	return *record, true
}

// IncrementClicks adds one click to code. Unknown codes are ignored.
func (s *URLStore) IncrementClicks(code string) {
	if record, found := s.records[code]; found {
		record.Clicks++
	}
}

// AllCodes returns the stored codes in lexical order.
func (s *URLStore) AllCodes() []string {
	codes := funk.Keys(s.records).([]string)
	sort.Strings(codes)
	return codes
}

func (s *URLStore) Len() int {
	return len(s.records)
}

func (s *URLStore) Clear() {
	clear(s.records)
}
