package core

// Logger logs messages and reports errors.
// args may hold errors, map[string]interface{} extras or a Session identifying the caller.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}

// Session identifies the authenticated user on whose behalf work is done.
type Session struct {
	ID   string
	Name string
	Role string
}
