package ports

import (
	"context"

	"github.com/alejandrodnm/ahrbot/internal/domain"
)

// RunStore persiste las simulaciones completadas y sus ledgers.
type RunStore interface {
	// SaveRun guarda el run con su resumen y todas las filas del ledger.
	SaveRun(ctx context.Context, run domain.Run, ledger domain.Ledger) error

	// ListRuns devuelve los runs más recientes, hasta limit.
	ListRuns(ctx context.Context, limit int) ([]domain.Run, error)

	// GetLedger devuelve el ledger completo de un run, en orden.
	GetLedger(ctx context.Context, runID string) (domain.Ledger, error)

	// Close cierra la conexión a la base de datos limpiamente.
	Close() error
}
