package logger

import (
	"fmt"
	"log/slog"
	"strings"
)

// DriverLogger routes the CQL driver's Print-style output into slog at
// debug level, tagged with component=gocql.
type DriverLogger struct {
	log *slog.Logger
}

func NewDriverLogger(log *slog.Logger) *DriverLogger {
	return &DriverLogger{log: log.With(slog.String("component", "gocql"))}
}

func (d *DriverLogger) Print(v ...any) {
	d.emit(fmt.Sprint(v...))
}

func (d *DriverLogger) Printf(format string, v ...any) {
	d.emit(fmt.Sprintf(format, v...))
}

func (d *DriverLogger) Println(v ...any) {
	d.emit(fmt.Sprintln(v...))
}

func (d *DriverLogger) emit(msg string) {
	d.log.Debug(strings.TrimSpace(strings.TrimPrefix(msg, "gocql: ")))
}
