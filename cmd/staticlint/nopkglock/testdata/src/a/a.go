package a

import "sync"

var mu sync.Mutex // want `package-level lock mu: keep it in the struct it guards`

var (
	rw    sync.RWMutex       // want `package-level lock rw: keep it in the struct it guards`
	ptrMu = &sync.Mutex{}    // want `package-level lock ptrMu: keep it in the struct it guards`
	once  sync.Once
	count int
)

type store struct {
	mu    sync.Mutex
	items map[string]string
}

func (s *store) put(k, v string) {
	var local sync.Mutex
	local.Lock()
	defer local.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[k] = v
}

func use() {
	once.Do(func() { count++ })
	mu.Lock()
	rw.RLock()
	ptrMu.Lock()
}
