package i

// Logger is the logging surface used by services.
type Logger interface {
	Info(string)
	Warning(string)
	Error(string)
}
