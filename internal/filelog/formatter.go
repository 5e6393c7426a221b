package filelog

import (
	"strings"

	"github.com/sirupsen/logrus"
)

const timeLayout = "2006-01-02 15:04:05,000"

// LineFormatter renders "2006-01-02 15:04:05,000 - INFO - message".
// Multi-line messages are written as-is after the prefix.
type LineFormatter struct{}

var _ logrus.Formatter = (*LineFormatter)(nil)

func (f *LineFormatter) Format(e *logrus.Entry) ([]byte, error) {
	var b strings.Builder
	b.Grow(len(timeLayout) + len(e.Message) + 16)
	b.WriteString(e.Time.Format(timeLayout))
	b.WriteString(" - ")
	b.WriteString(strings.ToUpper(e.Level.String()))
	b.WriteString(" - ")
	b.WriteString(e.Message)
	b.WriteByte('\n')
	return []byte(b.String()), nil
}
