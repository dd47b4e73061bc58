package utils

import (
	"bytes"
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/sirupsen/logrus"
)

var spewConfig = &spew.ConfigState{
	Indent:                  "  ",
	DisableCapacities:       true,
	DisablePointerAddresses: true,
	SortKeys:                true,
}

func SDump(a ...interface{}) string {
	return spewConfig.Sdump(a...)
}

func LogDump(a ...interface{}) {
	if logrus.IsLevelEnabled(logrus.DebugLevel) {
		logrus.Debug(spewConfig.Sdump(a...))
	}
}

// HexDump renders bytes as space separated uppercase hex pairs.
func HexDump(buf []byte) string {
	var out bytes.Buffer
	out.Grow(len(buf) * 3)
	for i, b := range buf {
		if i != 0 {
			out.WriteByte(' ')
		}
		fmt.Fprintf(&out, "%02X", b)
	}
	return out.String()
}
