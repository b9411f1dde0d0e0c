// Package txid issues the human readable payment references handed to
// tenants, e.g. TXN-LT9Q2K1C-9F41A2B7.
package txid

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	xrand "golang.org/x/exp/rand"
)

const prefix = "TXN-"

// Random draws the suffix from crypto/rand. The zero value is ready to use.
type Random struct {
	Now func() time.Time
}

func (g Random) Next() (string, error) {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("txid: read random: %w", err)
	}
	return format(now(g.Now), b[:]), nil
}

// Seeded is a deterministic generator for local runs and tests. Two
// generators with the same seed and clock emit the same sequence.
type Seeded struct {
	mu  sync.Mutex
	src *xrand.Rand
	now func() time.Time
}

func NewSeeded(seed uint64, now func() time.Time) *Seeded {
	return &Seeded{src: xrand.New(xrand.NewSource(seed)), now: now}
}

func (g *Seeded) Next() (string, error) {
	g.mu.Lock()
	v := g.src.Uint32()
	g.mu.Unlock()
	b := []byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
	return format(now(g.now), b), nil
}

// Fixed replays a prepared list of ids and then fails. Used to force
// collisions.
type Fixed struct {
	mu  sync.Mutex
	ids []string
}

func NewFixed(ids ...string) *Fixed {
	return &Fixed{ids: ids}
}

func (g *Fixed) Next() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.ids) == 0 {
		return "", fmt.Errorf("txid: fixed generator exhausted")
	}
	id := g.ids[0]
	g.ids = g.ids[1:]
	return id, nil
}

func format(t time.Time, suffix []byte) string {
	ms := strconv.FormatInt(t.UnixMilli(), 36)
	return prefix + strings.ToUpper(ms) + "-" + strings.ToUpper(hex.EncodeToString(suffix))
}

func now(f func() time.Time) time.Time {
	if f == nil {
		return time.Now()
	}
	return f()
}
