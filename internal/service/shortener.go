package service

import (
	"strings"
	"sync"

	"github.com/patric-chuzhbe/usrlinks/internal/models"
	"github.com/patric-chuzhbe/usrlinks/internal/shortcode"
	"github.com/patric-chuzhbe/usrlinks/internal/validate"
)

// Client-facing messages of the URL shortener.
const (
	MsgURLNotFound       = "URL not found"
	MsgInvalidURL        = "Invalid URL format"
	MsgInvalidShortCode  = "Invalid short code format"
	MsgShortCodeNotFound = "Short code not found"
)

// DefaultMaxCodeAttempts bounds the collision-avoidance loop of Shorten.
const DefaultMaxCodeAttempts = 100

type urlStore interface {
	Put(code, url string)
	Get(code string) (models.ShortURL, bool)
	IncrementClicks(code string)
}

type codeGenerator interface {
	Generate(length int) string
}

// Shortener allocates short codes and resolves them. Every access to the
// store happens while holding the injected lock.
type Shortener struct {
	store        urlStore
	mu           sync.Locker
	generator    codeGenerator
	maxAttempts  int
	shortURLBase string
}

// ShortenerOption configures Shortener.
type ShortenerOption func(*Shortener)

func WithGenerator(generator codeGenerator) ShortenerOption {
	return func(s *Shortener) {
		s.generator = generator
	}
}

// WithMaxAttempts sets the number of candidate codes tried before giving up.
// Non-positive values keep the default.
func WithMaxAttempts(attempts int) ShortenerOption {
	return func(s *Shortener) {
		if attempts > 0 {
			s.maxAttempts = attempts
		}
	}
}

// WithShortURLBase fixes the prefix of issued short URLs, e.g. "https://sho.rt".
func WithShortURLBase(base string) ShortenerOption {
	return func(s *Shortener) {
		s.shortURLBase = strings.TrimRight(base, "/")
	}
}

func NewShortener(store urlStore, mu sync.Locker, optionsProto ...ShortenerOption) *Shortener {
	result := &Shortener{
		store:       store,
		mu:          mu,
		generator:   shortcode.New(nil),
		maxAttempts: DefaultMaxCodeAttempts,
	}
	for _, protoOption := range optionsProto {
		protoOption(result)
	}

	return result
}

// Shorten stores rawURL under a fresh code. fallbackBase is used to build the
// short URL when no base was configured.
func (s *Shortener) Shorten(rawURL *string, fallbackBase string) (models.ShortenResponse, error) {
	if rawURL == nil {
		return models.ShortenResponse{}, models.NewValidationError(MsgURLNotFound)
	}
	url := strings.TrimSpace(*rawURL)
	if !validate.URL(url) {
		return models.ShortenResponse{}, models.NewValidationError(MsgInvalidURL)
	}

	code, err := s.allocate(url)
	if err != nil {
		return models.ShortenResponse{}, err
	}

	return models.ShortenResponse{
		ShortCode: code,
		ShortURL:  s.ShortURL(code, fallbackBase),
	}, nil
}

func (s *Shortener) allocate(url string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		code := s.generator.Generate(shortcode.DefaultLength)
		if _, taken := s.store.Get(code); taken {
			continue
		}
		s.store.Put(code, url)
		return code, nil
	}

	return "", models.ErrCodeSpaceExhausted
}

// Resolve returns the URL stored under code and counts the visit.
func (s *Shortener) Resolve(code string) (string, error) {
	if !validate.ShortCode(code) {
		return "", models.ErrInvalidShortCode
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record, found := s.store.Get(code)
	if !found {
		return "", models.ErrNotFound
	}
	s.store.IncrementClicks(code)

	return record.URL, nil
}

// Stats returns the record stored under code without counting a visit.
func (s *Shortener) Stats(code string) (models.StatsResponse, error) {
	if !validate.ShortCode(code) {
		return models.StatsResponse{}, models.ErrInvalidShortCode
	}

	s.mu.Lock()
	record, found := s.store.Get(code)
	s.mu.Unlock()

	if !found {
		return models.StatsResponse{}, models.ErrNotFound
	}

	return models.StatsResponse{
		URL:       record.URL,
		Clicks:    record.Clicks,
		CreatedAt: record.CreatedAt,
	}, nil
}

// ShortURL joins the configured base, or fallbackBase when none is set, with code.
func (s *Shortener) ShortURL(code, fallbackBase string) string {
	base := s.shortURLBase
	if base == "" {
		base = strings.TrimRight(fallbackBase, "/")
	}

	return base + "/" + code
}
