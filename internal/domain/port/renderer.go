package port

import (
	"context"

	"derma-bot/internal/domain/entity"
)

// ReportRenderer внешний рендерер документа отчёта
type ReportRenderer interface {
	// Render возвращает непрозрачный буфер, пригодный для скачивания
	Render(ctx context.Context, report *entity.Report) ([]byte, error)

	// ContentType MIME-тип результата
	ContentType() string
}
