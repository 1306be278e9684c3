package repository

import (
	"context"
	"sync"
)

// MemoryMirror mantém os slots serializados em memória (testes e execuções efêmeras)
type MemoryMirror struct {
	mu    sync.Mutex
	slots map[string][]byte
	saves int
}

// NewMemoryMirror cria um espelho em memória vazio
func NewMemoryMirror() *MemoryMirror {
	return &MemoryMirror{slots: make(map[string][]byte)}
}

func (m *MemoryMirror) Load(ctx context.Context) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return decodeSnapshot(m.slots)
}

func (m *MemoryMirror) Save(ctx context.Context, snap Snapshot) error {
	slots, err := encodeSnapshot(snap)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots = slots
	m.saves++
	return nil
}

// Saves retorna quantas vezes o snapshot foi gravado
func (m *MemoryMirror) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// SetRaw grava o conteúdo bruto de um slot
func (m *MemoryMirror) SetRaw(slot string, raw []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots[slot] = raw
}

func (m *MemoryMirror) Ping(ctx context.Context) error { return nil }

func (m *MemoryMirror) Close() error { return nil }
