package ports

import (
	"context"

	"github.com/alejandrodnm/ahrbot/internal/domain"
)

// Notifier presenta el resultado de una simulación al usuario.
type Notifier interface {
	// Notify muestra el resumen del run y, según la implementación, la
	// cola del ledger. En la implementación de consola imprime una tabla
	// formateada o una línea compacta.
	Notify(ctx context.Context, summary domain.Summary, ledger domain.Ledger) error
}
