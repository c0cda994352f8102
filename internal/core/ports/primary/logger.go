package primary

// Logger is the structured logging port. Arguments are alternating
// key/value pairs, zap sugared style.
type Logger interface {
	Info(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Debug(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
}
