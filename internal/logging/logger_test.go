package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestLevelFollowsEnv(t *testing.T) {
	var dev, prod bytes.Buffer
	NewWithWriter("dev", &dev).Debug("cache miss")
	NewWithWriter("prod", &prod).Debug("cache miss")

	if !strings.Contains(dev.String(), "cache miss") {
		t.Errorf("dev logger dropped debug line")
	}
	if prod.Len() != 0 {
		t.Errorf("prod logger wrote debug line: %s", prod.String())
	}
}
