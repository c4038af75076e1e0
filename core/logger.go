package core

// Logger is the logging contract of the application services.
// args may hold errors, extra data maps or the account acting at the time of the log.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
