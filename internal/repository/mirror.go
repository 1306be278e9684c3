package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cleberrangel/jusbr-consulta/internal/model"
)

// Nomes dos slots persistidos
const (
	SlotQueue   = "jusbr_queue"
	SlotResults = "jusbr_results"
)

// ErrCorruptSnapshot indica que um slot não contém JSON válido
var ErrCorruptSnapshot = errors.New("espelho com conteúdo inválido")

// Snapshot é o estado persistido do coordenador
type Snapshot struct {
	Queue   []string
	Results []model.ProcessRecord
}

// MirrorRepository guarda e recupera o snapshot de fila e resultados
type MirrorRepository interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snap Snapshot) error
	Ping(ctx context.Context) error
	Close() error
}

// encodeSnapshot serializa cada lista para o seu slot
func encodeSnapshot(snap Snapshot) (map[string][]byte, error) {
	queue := snap.Queue
	if queue == nil {
		queue = []string{}
	}
	results := snap.Results
	if results == nil {
		results = []model.ProcessRecord{}
	}

	q, err := json.Marshal(queue)
	if err != nil {
		return nil, fmt.Errorf("serializar fila: %w", err)
	}
	r, err := json.Marshal(results)
	if err != nil {
		return nil, fmt.Errorf("serializar resultados: %w", err)
	}

	return map[string][]byte{SlotQueue: q, SlotResults: r}, nil
}

// decodeSnapshot reconstrói o snapshot; slots ausentes viram listas vazias
func decodeSnapshot(slots map[string][]byte) (Snapshot, error) {
	snap := Snapshot{Queue: []string{}, Results: []model.ProcessRecord{}}

	if raw, ok := slots[SlotQueue]; ok && len(raw) > 0 {
		if err := json.Unmarshal(raw, &snap.Queue); err != nil {
			return Snapshot{}, fmt.Errorf("%w: %s: %v", ErrCorruptSnapshot, SlotQueue, err)
		}
	}
	if raw, ok := slots[SlotResults]; ok && len(raw) > 0 {
		if err := json.Unmarshal(raw, &snap.Results); err != nil {
			return Snapshot{}, fmt.Errorf("%w: %s: %v", ErrCorruptSnapshot, SlotResults, err)
		}
	}

	if snap.Queue == nil {
		snap.Queue = []string{}
	}
	if snap.Results == nil {
		snap.Results = []model.ProcessRecord{}
	}
	return snap, nil
}
