package policy

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/agenticflow/agenticflow"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Decision is the outcome recorded for an audited call.
type Decision string

const (
	DecisionAllow Decision = "allow"
	DecisionDeny  Decision = "deny"
)

// Entry is one audited call.
type Entry struct {
	Operation agenticflow.Operation
	Decision  Decision
	Cost      float64
	Status    int
	RequestID string
	Duration  time.Duration
	Err       error
}

// Audit appends one JSON object per line for every recorded entry.
type Audit struct {
	logger *zap.Logger
	closer io.Closer
}

// Rotation limits for audit files opened with [OpenAudit].
const (
	AuditMaxSizeMB  = 10
	AuditMaxBackups = 5
	AuditMaxAgeDays = 90
)

// OpenAudit appends to the audit file at path, rotating it with lumberjack.
func OpenAudit(path string) (*Audit, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	lj := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    AuditMaxSizeMB,
		MaxBackups: AuditMaxBackups,
		MaxAge:     AuditMaxAgeDays,
	}
	a := NewAudit(lj)
	a.closer = lj
	return a, nil
}

// NewAudit writes entries to w.
func NewAudit(w io.Writer) *Audit {
	enc := zapcore.NewJSONEncoder(zapcore.EncoderConfig{
		TimeKey:        "time",
		MessageKey:     "event",
		LevelKey:       zapcore.OmitKey,
		EncodeTime:     zapcore.RFC3339NanoTimeEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
		LineEnding:     zapcore.DefaultLineEnding,
	})
	core := zapcore.NewCore(enc, zapcore.AddSync(w), zapcore.InfoLevel)
	return &Audit{logger: zap.New(core)}
}

// Record writes e with a fresh entry ID.
func (a *Audit) Record(e Entry) {
	fields := []zap.Field{
		zap.String("id", uuid.NewString()),
		zap.String(agenticflow.LogKeyOperation, e.Operation.ID),
		zap.String(agenticflow.LogKeyMethod, e.Operation.Method),
		zap.String("path", e.Operation.Path),
		zap.String("decision", string(e.Decision)),
		zap.Float64("cost", e.Cost),
	}
	if e.Status != 0 {
		fields = append(fields, zap.Int(agenticflow.LogKeyStatus, e.Status))
	}
	if e.RequestID != "" {
		fields = append(fields, zap.String(agenticflow.LogKeyRequestID, e.RequestID))
	}
	if e.Duration > 0 {
		fields = append(fields, zap.Duration(agenticflow.LogKeyDuration, e.Duration))
	}
	if e.Err != nil {
		fields = append(fields, zap.String("error", e.Err.Error()))
		if kind := agenticflow.KindOf(e.Err); kind != "" {
			fields = append(fields, zap.String("kind", string(kind)))
		}
	}
	a.logger.Info("call", fields...)
}

// Close flushes and closes the underlying file, if any.
func (a *Audit) Close() error {
	err := a.logger.Sync()
	// Sync on a terminal or pipe fails with EINVAL.
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		err = nil
	}
	if a.closer != nil {
		if cerr := a.closer.Close(); cerr != nil {
			return cerr
		}
	}
	return err
}
