// Package logging 提供带 component/category 字段的结构化日志。
package logging

import (
	"io"
	"os"
	"strings"

	nested "github.com/antonfisher/nested-logrus-formatter"
	"github.com/sirupsen/logrus"
)

// Fields 是附加到日志条目上的键值。
type Fields = logrus.Fields

// New 创建一个输出到 w 的日志器，level 取 debug/info/warn/error，无法识别时为 info。
func New(w io.Writer, level string) *logrus.Logger {
	if w == nil {
		w = os.Stderr
	}
	log := logrus.New()
	log.SetFormatter(&nested.Formatter{
		HideKeys:    true,
		FieldsOrder: []string{"component", "category"},
	})
	log.SetOutput(w)
	log.SetLevel(ParseLevel(level))
	return log
}

// ParseLevel 解析日志级别字符串。
func ParseLevel(level string) logrus.Level {
	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

// Component 返回带 component 字段的条目。
func Component(log logrus.FieldLogger, name string) *logrus.Entry {
	if log == nil {
		log = Discard()
	}
	return log.WithField("component", name)
}

// Discard 返回丢弃所有输出的日志器。
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
