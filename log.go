package emojiwin

// Logger receives the events of a conversion. Warnings are events that leave the converted font incomplete.
type Logger interface {
	Printf(format string, args ...interface{})
	Warnf(format string, args ...interface{})
}

type discard struct{}

func (discard) Printf(string, ...interface{}) {}
func (discard) Warnf(string, ...interface{})  {}

func orDiscard(log Logger) Logger {
	if log == nil {
		return discard{}
	}
	return log
}
