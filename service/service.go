package service

import (
	"errors"
	"sync"

	"github.com/nvdnkpr/hr/source"
	"github.com/nvdnkpr/hr/utils"
)

var (
	ErrorFeedAlreadyExists = errors.New("feed already exists")
	ErrorFeedNotFound      = errors.New("feed not found")
)

type Servicer interface {
	CreateFeed(name string, fields []string) (*source.Memory, error)
	GetFeed(name string) (*source.Memory, error)
	ListFeeds() []*Feed
	DeleteFeed(name string) error
}

// Feed is the public description of a registered feed.
type Feed struct {
	Name  string `json:"name"`
	Total int    `json:"total"`
}

// Service is a registry of named feeds, each backed by an ordered in-memory
// source that collections paginate against.
type Service struct {
	mu    sync.Mutex
	feeds map[string]*source.Memory
}

func NewService() *Service {
	return &Service{
		feeds: map[string]*source.Memory{},
	}
}

func (s *Service) CreateFeed(name string, fields []string) (*source.Memory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, exists := s.feeds[name]
	if exists {
		return nil, ErrorFeedAlreadyExists
	}

	feed := source.NewMemory(fields...)
	s.feeds[name] = feed

	return feed, nil
}

func (s *Service) GetFeed(name string) (*source.Memory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	feed, exists := s.feeds[name]
	if !exists {
		return nil, ErrorFeedNotFound
	}

	return feed, nil
}

func (s *Service) ListFeeds() []*Feed {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := []*Feed{}
	for _, name := range utils.GetKeys(s.feeds) {
		result = append(result, &Feed{
			Name:  name,
			Total: s.feeds[name].Len(),
		})
	}

	return result
}

func (s *Service) DeleteFeed(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, exists := s.feeds[name]
	if !exists {
		return ErrorFeedNotFound
	}

	delete(s.feeds, name)

	return nil
}
