package testdb

import (
	"fmt"
	"math/rand"

	"github.com/rs/zerolog"

	"github.com/vaarrunii/VidVault/internal/store/db"
)

// NewWithChunkSize opens an ephemeral in-memory store for tests. Each call
// gets its own database name so parallel tests do not share state.
func NewWithChunkSize(chunkSize int) (*db.DB, error) {
	return db.NewWithChunkSize(ephemeralDbURI(), chunkSize, zerolog.Nop())
}

func New() (*db.DB, error) {
	return NewWithChunkSize(5)
}

func ephemeralDbURI() string {
	letters := []rune("ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789")
	name := make([]rune, 10)
	for i := range name {
		name[i] = letters[rand.Intn(len(letters))]
	}
	return fmt.Sprintf("file:%s?mode=memory&cache=shared", string(name))
}
