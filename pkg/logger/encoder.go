package logger

import (
	"fmt"
	"sort"

	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

var bufferpool = buffer.NewPool()

// kvConsoleEncoder renders "[time] [LEVEL] caller msg key=value ...".
// Context fields added through With are kept in the embedded map encoder
// and printed in key order ahead of the per-entry fields.
type kvConsoleEncoder struct {
	*zapcore.MapObjectEncoder
	cfg zapcore.EncoderConfig
}

func newKVConsoleEncoder(cfg zapcore.EncoderConfig) zapcore.Encoder {
	return &kvConsoleEncoder{
		MapObjectEncoder: zapcore.NewMapObjectEncoder(),
		cfg:              cfg,
	}
}

// Clone copies the accumulated context fields
func (e *kvConsoleEncoder) Clone() zapcore.Encoder {
	clone := zapcore.NewMapObjectEncoder()
	for k, v := range e.Fields {
		clone.Fields[k] = v
	}
	return &kvConsoleEncoder{MapObjectEncoder: clone, cfg: e.cfg}
}

// EncodeEntry writes a single log line
func (e *kvConsoleEncoder) EncodeEntry(entry zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	buf := bufferpool.Get()
	sep := e.cfg.ConsoleSeparator

	prefix := &stringArray{}
	if e.cfg.EncodeTime != nil {
		e.cfg.EncodeTime(entry.Time, prefix)
	}
	if e.cfg.EncodeLevel != nil {
		e.cfg.EncodeLevel(entry.Level, prefix)
	}
	if entry.Caller.Defined && e.cfg.EncodeCaller != nil {
		e.cfg.EncodeCaller(entry.Caller, prefix)
	}
	for _, s := range prefix.elems {
		buf.AppendString(s)
		buf.AppendString(sep)
	}
	buf.AppendString(entry.Message)

	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		appendKV(buf, sep, k, e.Fields[k])
	}

	for _, f := range fields {
		m := zapcore.NewMapObjectEncoder()
		f.AddTo(m)
		for k, v := range m.Fields {
			appendKV(buf, sep, k, v)
		}
	}

	if entry.Stack != "" && e.cfg.StacktraceKey != "" {
		buf.AppendString(zapcore.DefaultLineEnding)
		buf.AppendString(entry.Stack)
	}

	if e.cfg.LineEnding != "" {
		buf.AppendString(e.cfg.LineEnding)
	} else {
		buf.AppendString(zapcore.DefaultLineEnding)
	}
	return buf, nil
}

func appendKV(buf *buffer.Buffer, sep, key string, value interface{}) {
	buf.AppendString(sep)
	buf.AppendString(key)
	buf.AppendByte('=')
	if err, ok := value.(error); ok {
		buf.AppendString(err.Error())
		return
	}
	buf.AppendString(fmt.Sprint(value))
}

// stringArray collects the output of time, level and caller encoders
type stringArray struct {
	elems []string
}

func (s *stringArray) AppendBool(v bool)             { s.add(v) }
func (s *stringArray) AppendByteString(v []byte)     { s.elems = append(s.elems, string(v)) }
func (s *stringArray) AppendComplex128(v complex128) { s.add(v) }
func (s *stringArray) AppendComplex64(v complex64)   { s.add(v) }
func (s *stringArray) AppendFloat64(v float64)       { s.add(v) }
func (s *stringArray) AppendFloat32(v float32)       { s.add(v) }
func (s *stringArray) AppendInt(v int)               { s.add(v) }
func (s *stringArray) AppendInt64(v int64)           { s.add(v) }
func (s *stringArray) AppendInt32(v int32)           { s.add(v) }
func (s *stringArray) AppendInt16(v int16)           { s.add(v) }
func (s *stringArray) AppendInt8(v int8)             { s.add(v) }
func (s *stringArray) AppendString(v string)         { s.elems = append(s.elems, v) }
func (s *stringArray) AppendUint(v uint)             { s.add(v) }
func (s *stringArray) AppendUint64(v uint64)         { s.add(v) }
func (s *stringArray) AppendUint32(v uint32)         { s.add(v) }
func (s *stringArray) AppendUint16(v uint16)         { s.add(v) }
func (s *stringArray) AppendUint8(v uint8)           { s.add(v) }
func (s *stringArray) AppendUintptr(v uintptr)       { s.add(v) }

func (s *stringArray) add(v interface{}) { s.elems = append(s.elems, fmt.Sprint(v)) }
