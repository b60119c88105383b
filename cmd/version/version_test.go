package version

import (
	"bytes"
	"os"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AtMostafa/bnd/pkg/version"
)

func TestRun(t *testing.T) {
	out := &bytes.Buffer{}
	stdout = out
	defer func() { stdout = os.Stdout }()

	run()
	assert.Equal(t, "bnd version: "+version.EmptyValue+"\n"+
		"go version:  "+runtime.Version()+" "+runtime.GOOS+"/"+runtime.GOARCH+"\n", out.String())
}
