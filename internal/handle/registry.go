package handle

import (
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/vaarrunii/VidVault/internal/types"
)

type entry struct {
	data        []byte
	contentType types.ContentType
}

// Registry is the in-process Minter. Each mint registers the bytes under a
// fresh token and returns a URL path below basePath; the HTTP layer
// dereferences tokens via Resolve. Revoking drops the entry, after which
// the path stops resolving.
type Registry struct {
	mutex    sync.RWMutex
	basePath string
	entries  map[string]entry
}

func NewRegistry(basePath string) *Registry {
	if !strings.HasSuffix(basePath, "/") {
		basePath += "/"
	}
	return &Registry{
		basePath: basePath,
		entries:  make(map[string]entry),
	}
}

func (r *Registry) Mint(data []byte, contentType types.ContentType) Handle {
	token := uuid.New().String()

	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.entries[token] = entry{data: data, contentType: contentType}

	return Handle(r.basePath + token)
}

func (r *Registry) Revoke(h Handle) {
	token := strings.TrimPrefix(string(h), r.basePath)

	r.mutex.Lock()
	defer r.mutex.Unlock()
	delete(r.entries, token)
}

// Resolve dereferences a token minted by this registry.
func (r *Registry) Resolve(token string) ([]byte, types.ContentType, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	e, ok := r.entries[token]
	if !ok {
		return nil, "", false
	}
	return e.data, e.contentType, true
}

// Len reports the number of live handles.
func (r *Registry) Len() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.entries)
}
