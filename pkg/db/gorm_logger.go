package db

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	gormlogger "gorm.io/gorm/logger"

	"github.com/angelmondragon/livehaul-backend/pkg/logger"
)

// gormWriter forwards gorm's slow-query and error lines to the structured
// logger as warnings.
type gormWriter struct {
	logg *logger.Logger
}

func (w gormWriter) Printf(format string, args ...any) {
	line := strings.TrimSpace(fmt.Sprintf(format, args...))
	w.logg.Warn(w.logg.WithField(context.Background(), "component", "gorm"), line)
}

// newGormLogger reports statements slower than slow and failing statements.
// Record-not-found is expected by the repositories and never logged. Without
// a logger gorm stays silent.
func newGormLogger(logg *logger.Logger, slow time.Duration) gormlogger.Interface {
	if logg == nil {
		return gormlogger.New(log.New(io.Discard, "", 0), gormlogger.Config{LogLevel: gormlogger.Silent})
	}
	return gormlogger.New(gormWriter{logg: logg}, gormlogger.Config{
		SlowThreshold:             slow,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
		ParameterizedQueries:      true,
		Colorful:                  false,
	})
}
