package store

import (
	"context"

	"github.com/mcclellann/welfare/pkg/ledger"
)

// Exporter writes point-in-time copies of the ledger somewhere outside the process.
// The live store never reads them back.
type Exporter interface {
	SaveSnapshot(ctx context.Context, s ledger.State) error
	Close() error
}

// Observer is told about every dispatched command.
type Observer interface {
	ObserveCommand(kind string, err error)
	SetBalance(v float64)
}

type nopObserver struct{}

func (nopObserver) ObserveCommand(string, error) {}
func (nopObserver) SetBalance(float64)           {}
